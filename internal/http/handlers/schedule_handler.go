// Schedule HTTP handlers.
//
// This file exposes REST endpoints for the voting schedule:
//   - GET  /schedule              (current week + window + open state)
//   - PUT  /admin/week            (set current week, admin)
//   - POST /admin/week/next       (advance to next ISO week, admin)
//   - PUT  /admin/window          (set voting window, admin)
//
// Handlers are transport-thin: they validate input, call application services,
// and translate results into HTTP responses.
package handlers

import (
	"errors"
	"net/http"
	"time"

	humanize "github.com/dustin/go-humanize"
	"github.com/gin-gonic/gin"

	"github.com/calvada/lunchvote/internal/ballot"
	"github.com/calvada/lunchvote/internal/services"
)

//
// DTOs
//

// ScheduleResponse is the point-in-time schedule snapshot returned to
// clients. Countdown strings are humanized for direct display ("in 2
// hours"); machine consumers should use the timestamps.
type ScheduleResponse struct {
	Week       string     `json:"week,omitempty"`
	StartsAt   *time.Time `json:"starts_at,omitempty"`
	EndsAt     *time.Time `json:"ends_at,omitempty"`
	State      string     `json:"state"`
	Open       bool       `json:"open"`
	OpensIn    string     `json:"opens_in,omitempty"`
	ClosesIn   string     `json:"closes_in,omitempty"`
	ServerTime time.Time  `json:"server_time"`
}

// SetWeekRequest is the JSON payload for setting the current week.
type SetWeekRequest struct {
	// Week is the ISO week key, e.g. "2025-W10".
	Week string `json:"week" binding:"required" example:"2025-W10"`
}

// SetWindowRequest is the JSON payload for setting the voting window.
type SetWindowRequest struct {
	StartsAt time.Time `json:"starts_at" binding:"required" example:"2025-03-03T09:00:00Z"`
	EndsAt   time.Time `json:"ends_at" binding:"required" example:"2025-03-07T12:00:00Z"`
}

//
// Handlers
//

// GetSchedule godoc
// @ID          getSchedule
// @Summary     Current voting schedule
// @Description Returns the active week, the voting window, and whether voting is open right now.
// @Tags        Schedule
// @Produce     json
//
// @Success     200  {object}  handlers.ScheduleResponse
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /schedule [get]
func (h *Handlers) GetSchedule(c *gin.Context) {
	now := time.Now().UTC()
	st, err := h.Schedule.StatusAt(c.Request.Context(), now)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}

	resp := ScheduleResponse{
		Week:       st.Week,
		StartsAt:   st.StartsAt,
		EndsAt:     st.EndsAt,
		State:      string(st.State),
		Open:       st.Open,
		ServerTime: now,
	}
	if st.State == ballot.StateBefore && st.StartsAt != nil {
		resp.OpensIn = humanize.Time(*st.StartsAt)
	}
	if st.Open && st.EndsAt != nil {
		resp.ClosesIn = humanize.Time(*st.EndsAt)
	}
	ok(c, http.StatusOK, resp)
}

// SetWeek godoc
// @ID          setWeek
// @Summary     Set the current week (admin)
// @Description Sets the active ISO week and scaffolds its options record.
// @Tags        Admin
// @Accept      json
// @Produce     json
//
// @Param       body  body  handlers.SetWeekRequest  true  "Week payload"
//
// @Success     200  {object}  map[string]string
// @Failure     400  {object}  handlers.ErrorResponse  "Invalid week key"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /admin/week [put]
func (h *Handlers) SetWeek(c *gin.Context) {
	var req SetWeekRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	if err := h.Schedule.SetCurrentWeek(c.Request.Context(), req.Week); err != nil {
		if errors.Is(err, services.ErrInvalidWeekKey) {
			fail(c, http.StatusBadRequest, ErrCodeInvalidWeek, err.Error())
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, gin.H{"week": req.Week})
}

// AdvanceWeek godoc
// @ID          advanceWeek
// @Summary     Advance to the next week (admin)
// @Description Moves the current week pointer to the following ISO week.
// @Tags        Admin
// @Produce     json
//
// @Success     200  {object}  map[string]string
// @Failure     409  {object}  handlers.ErrorResponse  "No current week to advance from"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /admin/week/next [post]
func (h *Handlers) AdvanceWeek(c *gin.Context) {
	next, err := h.Schedule.AdvanceWeek(c.Request.Context())
	if err != nil {
		switch {
		case errors.Is(err, services.ErrWeekNotSet):
			fail(c, http.StatusConflict, ErrCodeWeekNotSet, err.Error())
		case errors.Is(err, services.ErrInvalidWeekKey):
			fail(c, http.StatusConflict, ErrCodeInvalidWeek, err.Error())
		default:
			fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		}
		return
	}
	ok(c, http.StatusOK, gin.H{"week": next})
}

// SetWindow godoc
// @ID          setWindow
// @Summary     Set the voting window (admin)
// @Description Sets the window during which votes are accepted. Extending a window past a fresh decision clears that decision.
// @Tags        Admin
// @Accept      json
// @Produce     json
//
// @Param       body  body  handlers.SetWindowRequest  true  "Window payload"
//
// @Success     204  {string}  string  "No Content"
// @Failure     400  {object}  handlers.ErrorResponse  "Invalid window"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /admin/window [put]
func (h *Handlers) SetWindow(c *gin.Context) {
	var req SetWindowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	if err := h.Schedule.SetWindow(c.Request.Context(), req.StartsAt, req.EndsAt); err != nil {
		if errors.Is(err, services.ErrInvalidWindow) {
			fail(c, http.StatusBadRequest, ErrCodeInvalidWindow, err.Error())
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	noContent(c)
}
