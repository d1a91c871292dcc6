// Winner HTTP handlers.
//
// This file exposes REST endpoints around decided winners:
//   - GET /weeks/{week}/winner   (the week's decided winner, if fresh)
//   - GET /admin/winners         (decision history, admin)
//   - GET /admin/winners.csv     (history export, admin)
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/calvada/lunchvote/internal/services"
)

// GetWinner godoc
// @ID          getWinner
// @Summary     Weekly winner
// @Description Returns the decided winner for a week. 404 with code "no_winner" while voting is still in progress or the decision is stale.
// @Tags        Winners
// @Produce     json
//
// @Param       week  path  string  true  "ISO week key or 'current'"  example(2025-W10)
//
// @Success     200  {object}  domain.WinnerRecord
// @Failure     404  {object}  handlers.ErrorResponse  "No winner yet"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /weeks/{week}/winner [get]
func (h *Handlers) GetWinner(c *gin.Context) {
	week := h.optionsWeek(c)
	if week == "" {
		return
	}

	rec, err := h.Winner.Get(c.Request.Context(), week)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrNoWinner):
			fail(c, http.StatusNotFound, ErrCodeNoWinner, "no winner decided for this week")
		case errors.Is(err, services.ErrOptionsNotFound):
			fail(c, http.StatusNotFound, ErrCodeNotFound, "no options configured for this week")
		default:
			fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		}
		return
	}
	ok(c, http.StatusOK, rec)
}

// ListWinners godoc
// @ID          listWinners
// @Summary     Winner history (admin)
// @Description Returns every decided week, newest decision first.
// @Tags        Admin
// @Produce     json
//
// @Success     200  {array}   services.HistoryRow
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /admin/winners [get]
func (h *Handlers) ListWinners(c *gin.Context) {
	rows, err := h.Winner.History(c.Request.Context())
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, rows)
}

// ExportWinnersCSV godoc
// @ID          exportWinnersCSV
// @Summary     Winner history export (admin)
// @Description Streams the winner history as a CSV attachment.
// @Tags        Admin
// @Produce     text/csv
//
// @Success     200  {string}  string  "CSV body"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /admin/winners.csv [get]
func (h *Handlers) ExportWinnersCSV(c *gin.Context) {
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", `attachment; filename="winners.csv"`)
	if err := h.Winner.WriteHistoryCSV(c.Request.Context(), c.Writer); err != nil {
		// Headers may already be out; log and abort.
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
	}
}
