// Weekly options HTTP handlers.
//
// This file exposes REST endpoints for weekly option sets and tallies:
//   - GET    /weeks/current/options                   (active week's ballot)
//   - GET    /weeks/{week}/options
//   - GET    /weeks/{week}/tally
//   - PUT    /admin/weeks/{week}/options              (replace ballot, admin)
//   - POST   /admin/weeks/{week}/options/regenerate   (sample from menu pool, admin)
//   - DELETE /admin/weeks/{week}/options/{choice}     (remove one choice, admin)
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/calvada/lunchvote/internal/services"
)

// SetOptionsRequest is the JSON payload for replacing a week's options.
type SetOptionsRequest struct {
	// Choices is the raw choice list; it is normalized and deduplicated
	// server-side.
	Choices []string `json:"choices" binding:"required" example:"Taco,Burger"`
}

// optionsWeek resolves the :week path segment, with "current" standing for
// the active week. Empty string plus a written response means resolution
// already failed.
func (h *Handlers) optionsWeek(c *gin.Context) string {
	week := c.Param("week")
	if week != "current" {
		return week
	}
	wk, err := h.Schedule.CurrentWeek(c.Request.Context())
	if err != nil {
		if errors.Is(err, services.ErrWeekNotSet) {
			fail(c, http.StatusNotFound, ErrCodeWeekNotSet, err.Error())
			return ""
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return ""
	}
	return wk
}

// GetOptions godoc
// @ID          getOptions
// @Summary     Weekly options
// @Description Returns the option set for a week. Use "current" as the week to resolve the active one.
// @Tags        Options
// @Produce     json
//
// @Param       week  path  string  true  "ISO week key or 'current'"  example(2025-W10)
//
// @Success     200  {object}  services.WeekOptions
// @Failure     404  {object}  handlers.ErrorResponse  "No options for week"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /weeks/{week}/options [get]
func (h *Handlers) GetOptions(c *gin.Context) {
	week := h.optionsWeek(c)
	if week == "" {
		return
	}

	opts, err := h.Options.Get(c.Request.Context(), week)
	if err != nil {
		if errors.Is(err, services.ErrOptionsNotFound) {
			fail(c, http.StatusNotFound, ErrCodeNotFound, "no options configured for this week")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, opts)
}

// GetTally godoc
// @ID          getTally
// @Summary     Weekly tally
// @Description Returns vote counts and percentages for a week's choices, zero-filled for unvoted choices.
// @Tags        Options
// @Produce     json
//
// @Param       week  path  string  true  "ISO week key or 'current'"  example(2025-W10)
//
// @Success     200  {object}  services.TallyView
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /weeks/{week}/tally [get]
func (h *Handlers) GetTally(c *gin.Context) {
	week := h.optionsWeek(c)
	if week == "" {
		return
	}

	tv, err := h.Options.Tally(c.Request.Context(), week)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, tv)
}

// SetOptions godoc
// @ID          setOptions
// @Summary     Replace a week's options (admin)
// @Description Replaces the ballot for a week with the normalized input. Restarts the decision epoch.
// @Tags        Admin
// @Accept      json
// @Produce     json
//
// @Param       week  path  string                       true  "ISO week key"  example(2025-W10)
// @Param       body  body  handlers.SetOptionsRequest   true  "Choices payload"
//
// @Success     200  {object}  map[string][]string
// @Failure     400  {object}  handlers.ErrorResponse  "Invalid week or empty choices"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /admin/weeks/{week}/options [put]
func (h *Handlers) SetOptions(c *gin.Context) {
	var req SetOptionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	clean, err := h.Options.SetChoices(c.Request.Context(), c.Param("week"), req.Choices)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidWeekKey):
			fail(c, http.StatusBadRequest, ErrCodeInvalidWeek, err.Error())
		case errors.Is(err, services.ErrNoChoices):
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
		default:
			fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		}
		return
	}
	ok(c, http.StatusOK, gin.H{"choices": clean})
}

// RegenerateOptions godoc
// @ID          regenerateOptions
// @Summary     Regenerate a week's options (admin)
// @Description Replaces the ballot with a random sample from the menu pool. Blocked once votes exist.
// @Tags        Admin
// @Produce     json
//
// @Param       week  path  string  true  "ISO week key"  example(2025-W10)
//
// @Success     200  {object}  map[string][]string
// @Failure     400  {object}  handlers.ErrorResponse  "Invalid week"
// @Failure     409  {object}  handlers.ErrorResponse  "Votes exist or pool too small"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /admin/weeks/{week}/options/regenerate [post]
func (h *Handlers) RegenerateOptions(c *gin.Context) {
	picked, err := h.Options.Regenerate(c.Request.Context(), c.Param("week"))
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidWeekKey):
			fail(c, http.StatusBadRequest, ErrCodeInvalidWeek, err.Error())
		case errors.Is(err, services.ErrVotesExist):
			fail(c, http.StatusConflict, ErrCodeVotesExist, err.Error())
		case errors.Is(err, services.ErrNotEnoughMenuItems):
			fail(c, http.StatusConflict, ErrCodePoolTooSmall, err.Error())
		default:
			fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		}
		return
	}
	ok(c, http.StatusOK, gin.H{"choices": picked})
}

// RemoveOption godoc
// @ID          removeOption
// @Summary     Remove one choice from a week's options (admin)
// @Description Removes a choice (matched case-insensitively) from the week's ballot.
// @Tags        Admin
// @Produce     json
//
// @Param       week    path  string  true  "ISO week key"  example(2025-W10)
// @Param       choice  path  string  true  "Choice label"  example(Taco)
//
// @Success     200  {object}  map[string][]string
// @Failure     404  {object}  handlers.ErrorResponse  "Week or choice not found"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /admin/weeks/{week}/options/{choice} [delete]
func (h *Handlers) RemoveOption(c *gin.Context) {
	kept, err := h.Options.RemoveChoice(c.Request.Context(), c.Param("week"), c.Param("choice"))
	if err != nil {
		switch {
		case errors.Is(err, services.ErrOptionsNotFound), errors.Is(err, services.ErrChoiceNotFound):
			fail(c, http.StatusNotFound, ErrCodeNotFound, err.Error())
		default:
			fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		}
		return
	}
	ok(c, http.StatusOK, gin.H{"choices": kept})
}
