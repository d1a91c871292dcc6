// Package middleware – administrator gate.
//
// This file implements AdminGate, the middleware guarding the /admin route
// group. Identity is the demo header scheme (X-User-Email); the allow-list
// lives in the database and is consulted per request through an injected
// lookup, so the middleware stays decoupled from the service layer and
// membership changes take effect immediately without restarts.
package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// AdminLookup reports whether email belongs to an administrator.
type AdminLookup func(ctx context.Context, email string) (bool, error)

// AdminGate returns a middleware that rejects requests whose caller is not
// on the administrator allow-list.
//
// Responses:
//
//	401 {"code":"unauthorized"} when no email identity is present
//	403 {"code":"forbidden"}    when the email is not an administrator
//	500 {"code":"internal_error"} when the lookup itself fails
func AdminGate(lookup AdminLookup) gin.HandlerFunc {
	return func(c *gin.Context) {
		email := strings.TrimSpace(c.GetHeader("X-User-Email"))
		if email == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"request_id": c.Writer.Header().Get("X-Request-ID"),
				"code":       "unauthorized",
				"message":    "admin identity required",
			})
			return
		}

		isAdmin, err := lookup(c.Request.Context(), email)
		if err != nil {
			lg := LoggerFrom(c)
			lg.Error().Err(err).Msg("admin lookup failed")
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"request_id": c.Writer.Header().Get("X-Request-ID"),
				"code":       "internal_error",
				"message":    "admin lookup failed",
			})
			return
		}
		if !isAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"request_id": c.Writer.Header().Get("X-Request-ID"),
				"code":       "forbidden",
				"message":    "admin rights required",
			})
			return
		}
		c.Next()
	}
}
