// Package httpapi wires the HTTP transport (Gin) to application services,
// middleware, and route handlers. It centralizes cross-cutting concerns such
// as tracing, correlation IDs, logging/redaction, panic recovery, metrics,
// CORS, security headers, compression, and rate limiting.
//
// Design goals:
//   - Put observability first (OTel + Prometheus)
//   - Safe-by-default middleware ordering (RequestID → logging → recovery)
//   - Deterministic, minimal router setup; all dependencies injected
//   - Production-ready CORS and security header posture
package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"gorm.io/gorm"

	"github.com/calvada/lunchvote/internal/config"
	"github.com/calvada/lunchvote/internal/http/handlers"
	"github.com/calvada/lunchvote/internal/http/middleware"
	"github.com/calvada/lunchvote/internal/notify"
	"github.com/calvada/lunchvote/internal/services"
)

// RegisterRoutes attaches all middleware and HTTP endpoints to the given Gin
// engine. It configures observability (tracing, metrics), rate limiting,
// CORS and security headers, health and metrics endpoints, and then mounts
// the versioned public API and the admin group under /api/v*.
//
// Middleware order matters:
//  1. OpenTelemetry: trace everything
//  2. RequestID: generate/propagate correlation id
//  3. RedactingLogger: structured logs with PII scrubbing (voter emails!)
//  4. Recovery: capture panics after logger
//  5. Body size limiter
//  6. Metrics
//  7. Rate limiter (per user/IP)
//  8. CORS and security headers
//  9. Gzip (SSE stream excluded; compression would buffer it)
func RegisterRoutes(r *gin.Engine, db *gorm.DB, hub *notify.Hub, cfg config.Config) {
	r.HandleMethodNotAllowed = true

	// 1) Trace all HTTP requests
	r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))

	// 2) Correlate requests and logs
	r.Use(middleware.RequestID())

	// 3) Structured logging with redaction. Voter emails travel in the
	// X-User-Email header; mask it outright rather than relying on the
	// pattern scrub.
	r.Use(middleware.RedactingLogger(middleware.RedactOptions{
		MaskHeaders: []string{"X-User-Email"},
	}))

	// 4) Panic recovery to JSON 500 (with request id)
	r.Use(middleware.Recovery())

	// 5) Global body size limit (64 KiB; the largest legitimate payload is a
	// full option list)
	r.Use(limitBody(64 << 10))

	// 6) Prometheus metrics and /metrics endpoint
	r.Use(middleware.Metrics())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// 7) Token-bucket rate limiter per user/IP
	rl := middleware.NewRateLimiter(cfg.RateRPS, cfg.RateBurst, middleware.KeyByUserOrIP())
	r.Use(rl.Handler())

	// 8) CORS posture (safe defaults: allow all if none configured)
	allowHeaders := []string{"Origin", "Content-Type", "Accept", "Authorization", "X-User-ID", "X-User-Name", "X-User-Email"}
	if len(cfg.CORS.AllowedOrigins) == 0 {
		// Force ACAO: * even for requests without an Origin header (helps tests and simple health checks).
		r.Use(func(c *gin.Context) {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
			c.Next()
		})
		r.Use(cors.New(cors.Config{
			AllowAllOrigins:  true,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     allowHeaders,
			ExposeHeaders:    []string{"X-Request-ID", "Content-Length"},
			AllowCredentials: false, // must remain false with AllowAllOrigins
			MaxAge:           12 * time.Hour,
		}))
	} else {
		// Echo ACAO with the request Origin when it is in the allowlist (in addition to gin-contrib/cors).
		allowed := make(map[string]struct{}, len(cfg.CORS.AllowedOrigins))
		for _, o := range cfg.CORS.AllowedOrigins {
			allowed[o] = struct{}{}
		}
		r.Use(func(c *gin.Context) {
			if origin := c.GetHeader("Origin"); origin != "" {
				if _, ok := allowed[origin]; ok {
					h := c.Writer.Header()
					h.Set("Access-Control-Allow-Origin", origin)
					h.Add("Vary", "Origin")
				}
			}
			c.Next()
		})
		r.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.CORS.AllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     allowHeaders,
			ExposeHeaders:    []string{"X-Request-ID", "Content-Length"},
			AllowCredentials: false,
			MaxAge:           12 * time.Hour,
		}))
	}

	// Security headers (HSTS only when enabled and request is HTTPS)
	r.Use(middleware.SecurityHeaders(middleware.SecurityOptions{
		EnableHSTS:   cfg.Security.EnableHSTS,
		HSTSMaxAge:   cfg.Security.HSTSMaxAge,
		NoStore:      false,
		EnablePolicy: true,
	}))

	// 9) Compression; the SSE stream must stay uncompressed or proxies and
	// the gzip writer will buffer events indefinitely.
	r.Use(gzip.Gzip(gzip.DefaultCompression,
		gzip.WithExcludedPaths([]string{cfg.APIBasePath + "/events"})))

	// Fallbacks
	r.NoRoute(func(c *gin.Context) {
		handlers.Fail(c, http.StatusNotFound, handlers.ErrCodeNotFound, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		handlers.Fail(c, http.StatusMethodNotAllowed, handlers.ErrCodeMethodNotAllowed, "method not allowed")
	})

	// Liveness/health
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	// Dependency injection: services ← db/hub/config
	schedSvc := services.NewScheduleService(db, hub)
	schedSvc.WinnerClearGrace = cfg.Voting.WinnerClearGrace
	optsSvc := services.NewOptionsService(db, hub)
	optsSvc.MinChoices = cfg.Voting.MinChoices
	winnerSvc := services.NewWinnerService(db, hub)
	menuSvc := services.NewMenuService(db, hub)
	adminSvc := services.NewAdminService(db)
	voteSvc := &services.VoteService{
		DB:                 db,
		Hub:                hub,
		Schedule:           schedSvc,
		Options:            optsSvc,
		AllowedEmailDomain: cfg.Voting.AllowedEmailDomain,
	}

	h := handlers.New(schedSvc, optsSvc, voteSvc, winnerSvc, menuSvc, adminSvc, hub)

	// Public API
	apiBase := cfg.APIBasePath // e.g. "/api/v1"
	api := groupWithPrefix(r, apiBase)
	{
		// Schedule
		api.GET("/schedule", h.GetSchedule)

		// Options and tallies ("current" resolves the active week)
		api.GET("/weeks/:week/options", h.GetOptions)
		api.GET("/weeks/:week/tally", h.GetTally)
		api.GET("/weeks/:week/winner", h.GetWinner)

		// Votes
		api.POST("/votes", h.CastVote)
		api.GET("/votes/me", h.MyVote)

		// Change stream
		api.GET("/events", h.StreamEvents)

		// Admin group, gated on the allow-list
		admin := api.Group("/admin", middleware.AdminGate(adminSvc.IsAdmin))
		{
			admin.PUT("/week", h.SetWeek)
			admin.POST("/week/next", h.AdvanceWeek)
			admin.PUT("/window", h.SetWindow)

			admin.PUT("/weeks/:week/options", h.SetOptions)
			admin.POST("/weeks/:week/options/regenerate", h.RegenerateOptions)
			admin.DELETE("/weeks/:week/options/:choice", h.RemoveOption)

			admin.GET("/votes", h.ListVotes)
			admin.DELETE("/votes", h.ResetVotes)

			admin.GET("/winners", h.ListWinners)
			admin.GET("/winners.csv", h.ExportWinnersCSV)

			admin.GET("/menu", h.ListMenu)
			admin.POST("/menu", h.AddMenuItem)
			admin.PUT("/menu/:id", h.RenameMenuItem)
			admin.DELETE("/menu/:id", h.RemoveMenuItem)

			admin.GET("/admins", h.ListAdmins)
			admin.POST("/admins", h.AddAdmin)
			admin.DELETE("/admins/:email", h.RemoveAdmin)
		}
	}
}

// limitBody returns a Gin middleware that caps the request body size for all
// endpoints to maxBytes using http.MaxBytesReader. Requests exceeding the cap
// will cause downstream body reads to error.
func limitBody(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

// groupWithPrefix mounts a group at prefix, treating "/" (or empty) as root.
func groupWithPrefix(r *gin.Engine, prefix string) *gin.RouterGroup {
	if prefix == "" || prefix == "/" {
		return r.Group("")
	}
	return r.Group(prefix)
}
