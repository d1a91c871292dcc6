// Handler wiring and request identity.
//
// This file defines the Handlers aggregate that the router binds endpoints
// against, the service contracts the handlers consume, and the demo identity
// helpers. Identity is header-based (X-User-ID / X-User-Name / X-User-Email),
// standing in for a real identity provider the same way the upstream demo
// auth does; handlers trust the headers and services enforce the actual
// rules (email domain, one vote per week, admin membership).
package handlers

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/calvada/lunchvote/internal/notify"
	"github.com/calvada/lunchvote/internal/services"
	"github.com/calvada/lunchvote/internal/utils"
)

// Handlers groups the HTTP endpoints for schedule, options, votes, winners,
// menu, and admin membership. It depends on the concrete services; the
// transport layer is thin enough that interface indirection would only add
// noise here.
type Handlers struct {
	Schedule *services.ScheduleService
	Options  *services.OptionsService
	Votes    *services.VoteService
	Winner   *services.WinnerService
	Menu     *services.MenuService
	Admins   *services.AdminService
	Hub      *notify.Hub
}

// New constructs a Handlers instance bound to the given services.
func New(
	schedule *services.ScheduleService,
	options *services.OptionsService,
	votes *services.VoteService,
	winner *services.WinnerService,
	menu *services.MenuService,
	admins *services.AdminService,
	hub *notify.Hub,
) *Handlers {
	return &Handlers{
		Schedule: schedule,
		Options:  options,
		Votes:    votes,
		Winner:   winner,
		Menu:     menu,
		Admins:   admins,
		Hub:      hub,
	}
}

// userID extracts the authenticated user id from Gin context (set by upstream
// middleware). If absent, it falls back to "X-User-ID" header (tests use it),
// and finally to "demo-user". It never touches c.Request if it's nil.
func userID(c *gin.Context) string {
	if v, ok := c.Get("userID"); ok {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	if c != nil && c.Request != nil {
		if h := strings.TrimSpace(c.GetHeader("X-User-ID")); h != "" {
			return h
		}
	}
	return "demo-user"
}

// userEmail returns the caller's email from the X-User-Email header. Empty
// when absent; the vote service rejects empty emails via the domain gate.
func userEmail(c *gin.Context) string {
	if c != nil && c.Request != nil {
		return strings.TrimSpace(c.GetHeader("X-User-Email"))
	}
	return ""
}

// userName returns the caller's display name, falling back to the user id.
func userName(c *gin.Context) string {
	if c != nil && c.Request != nil {
		if h := strings.TrimSpace(c.GetHeader("X-User-Name")); h != "" {
			return h
		}
	}
	return userID(c)
}

// voter assembles the service-level identity for the current request.
func voter(c *gin.Context) services.Voter {
	return services.Voter{ID: userID(c), Name: userName(c), Email: userEmail(c)}
}

// Pagination carries pagination metadata for list responses.
type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
}

// clampPagination parses and bounds page and page_size query params to sane
// defaults and limits, returning (page, pageSize).
func clampPagination(c *gin.Context) (page, pageSize int) {
	const (
		defaultPage     = 1
		defaultPageSize = 20
		maxPageSize     = 100
	)
	page = utils.AtoiDefault(c.Query("page"), defaultPage)
	if page < 1 {
		page = 1
	}
	pageSize = utils.AtoiDefault(c.Query("page_size"), defaultPageSize)
	if pageSize < 1 {
		pageSize = 1
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return
}
