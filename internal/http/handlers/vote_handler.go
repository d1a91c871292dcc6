// Vote HTTP handlers.
//
// This file exposes REST endpoints for vote submission and inspection:
//   - POST   /votes          (cast a vote for the active week)
//   - GET    /votes/me       (the caller's vote this week)
//   - GET    /admin/votes    (paginated vote listing, admin)
//   - DELETE /admin/votes    (reset all votes, admin)
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/calvada/lunchvote/internal/domain"
	"github.com/calvada/lunchvote/internal/services"
)

// CastVoteRequest is the JSON payload for casting a vote.
type CastVoteRequest struct {
	// Choice is the chosen option; matching against the ballot is
	// case-insensitive and whitespace-tolerant.
	Choice string `json:"choice" binding:"required" example:"Taco"`
}

// ListVotesResponse wraps a page of votes and pagination information.
type ListVotesResponse struct {
	Week       string        `json:"week"`
	Votes      []domain.Vote `json:"votes"`
	Pagination Pagination    `json:"pagination"`
}

// CastVote godoc
// @ID          castVote
// @Summary     Cast a vote
// @Description Records one vote for the active week. One vote per user per week; only while the window is open.
// @Tags        Votes
// @Accept      json
// @Produce     json
//
// @Param       X-User-ID     header  string  false "User ID (demo header)"  example(user123)
// @Param       X-User-Email  header  string  false "User email"             example(ada@calvada.com)
// @Param       body          body    handlers.CastVoteRequest  true  "Vote payload"
//
// @Success     201  {object}  domain.Vote
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request / unknown choice"
// @Failure     403  {object}  handlers.ErrorResponse  "Voting closed or email domain not allowed"
// @Failure     409  {object}  handlers.ErrorResponse  "Already voted"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /votes [post]
func (h *Handlers) CastVote(c *gin.Context) {
	var req CastVoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	v, err := h.Votes.Cast(c.Request.Context(), voter(c), req.Choice)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrVotingClosed):
			fail(c, http.StatusForbidden, ErrCodeVotingClosed, err.Error())
		case errors.Is(err, services.ErrWeekNotSet):
			fail(c, http.StatusConflict, ErrCodeWeekNotSet, err.Error())
		case errors.Is(err, services.ErrEmailDomain):
			fail(c, http.StatusForbidden, ErrCodeEmailDomain, err.Error())
		case errors.Is(err, services.ErrUnknownChoice):
			fail(c, http.StatusBadRequest, ErrCodeUnknownChoice, err.Error())
		case errors.Is(err, services.ErrAlreadyVoted):
			fail(c, http.StatusConflict, ErrCodeAlreadyVoted, err.Error())
		default:
			fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		}
		return
	}
	ok(c, http.StatusCreated, v)
}

// MyVote godoc
// @ID          myVote
// @Summary     The caller's vote this week
// @Description Returns the caller's vote for the active week, or 404 when they have not voted.
// @Tags        Votes
// @Produce     json
//
// @Param       X-User-ID  header  string  false "User ID (demo header)"  example(user123)
//
// @Success     200  {object}  domain.Vote
// @Failure     404  {object}  handlers.ErrorResponse  "No vote yet / no active week"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /votes/me [get]
func (h *Handlers) MyVote(c *gin.Context) {
	ctx := c.Request.Context()
	week, err := h.Schedule.CurrentWeek(ctx)
	if err != nil {
		if errors.Is(err, services.ErrWeekNotSet) {
			fail(c, http.StatusNotFound, ErrCodeWeekNotSet, err.Error())
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}

	v, err := h.Votes.MyVote(ctx, userID(c), week)
	if err != nil {
		if errors.Is(err, services.ErrVoteNotFound) {
			fail(c, http.StatusNotFound, ErrCodeNotFound, "no vote cast this week")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, v)
}

// ListVotes godoc
// @ID          listVotes
// @Summary     List votes (admin, paginated)
// @Description Returns a page of the active week's votes in cast order.
// @Tags        Admin
// @Produce     json
//
// @Param       page       query  int  false "Page number"     minimum(1) default(1)
// @Param       page_size  query  int  false "Items per page"  minimum(1) maximum(100) default(20)
//
// @Success     200  {object}  handlers.ListVotesResponse
// @Failure     404  {object}  handlers.ErrorResponse  "No active week"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /admin/votes [get]
func (h *Handlers) ListVotes(c *gin.Context) {
	ctx := c.Request.Context()
	week, err := h.Schedule.CurrentWeek(ctx)
	if err != nil {
		if errors.Is(err, services.ErrWeekNotSet) {
			fail(c, http.StatusNotFound, ErrCodeWeekNotSet, err.Error())
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}

	page, pageSize := clampPagination(c)
	items, total, err := h.Votes.ListPage(ctx, week, page, pageSize)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}

	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	ok(c, http.StatusOK, ListVotesResponse{
		Week:  week,
		Votes: items,
		Pagination: Pagination{
			Page:       page,
			PageSize:   pageSize,
			Total:      total,
			TotalPages: totalPages,
			HasNext:    page < totalPages,
		},
	})
}

// ResetVotes godoc
// @ID          resetVotes
// @Summary     Delete all votes (admin)
// @Description Irreversibly removes every vote across all weeks.
// @Tags        Admin
// @Produce     json
//
// @Success     200  {object}  map[string]int64
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /admin/votes [delete]
func (h *Handlers) ResetVotes(c *gin.Context) {
	n, err := h.Votes.ResetAll(c.Request.Context())
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, gin.H{"deleted": n})
}
