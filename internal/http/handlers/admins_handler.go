// Administrator allow-list HTTP handlers (admin).
//
// This file exposes CRUD over admin membership:
//   - GET    /admin/admins
//   - POST   /admin/admins
//   - DELETE /admin/admins/{email}
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/calvada/lunchvote/internal/services"
)

// AdminRequest is the JSON payload for granting admin rights.
type AdminRequest struct {
	Email string `json:"email" binding:"required" example:"ada@calvada.com"`
}

// ListAdmins godoc
// @ID          listAdmins
// @Summary     Administrator list (admin)
// @Description Returns every administrator email.
// @Tags        Admin
// @Produce     json
//
// @Success     200  {array}   string
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /admin/admins [get]
func (h *Handlers) ListAdmins(c *gin.Context) {
	list, err := h.Admins.List(c.Request.Context())
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, gin.H{"admins": list})
}

// AddAdmin godoc
// @ID          addAdmin
// @Summary     Grant admin rights (admin)
// @Description Adds an email to the administrator allow-list.
// @Tags        Admin
// @Accept      json
// @Produce     json
//
// @Param       body  body  handlers.AdminRequest  true  "Admin payload"
//
// @Success     201  {object}  domain.Admin
// @Failure     400  {object}  handlers.ErrorResponse  "Invalid email"
// @Failure     409  {object}  handlers.ErrorResponse  "Already an admin"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /admin/admins [post]
func (h *Handlers) AddAdmin(c *gin.Context) {
	var req AdminRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	a, err := h.Admins.Add(c.Request.Context(), req.Email)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidEmail):
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
		case errors.Is(err, services.ErrAdminExists):
			fail(c, http.StatusConflict, ErrCodeConflict, err.Error())
		default:
			fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		}
		return
	}
	ok(c, http.StatusCreated, a)
}

// RemoveAdmin godoc
// @ID          removeAdmin
// @Summary     Revoke admin rights (admin)
// @Description Removes an email from the administrator allow-list.
// @Tags        Admin
// @Produce     json
//
// @Param       email  path  string  true  "Admin email"  example(ada@calvada.com)
//
// @Success     204  {string}  string  "No Content"
// @Failure     400  {object}  handlers.ErrorResponse  "Invalid email"
// @Failure     404  {object}  handlers.ErrorResponse  "Not an admin"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /admin/admins/{email} [delete]
func (h *Handlers) RemoveAdmin(c *gin.Context) {
	if err := h.Admins.Remove(c.Request.Context(), c.Param("email")); err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidEmail):
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
		case errors.Is(err, services.ErrAdminNotFound):
			fail(c, http.StatusNotFound, ErrCodeNotFound, err.Error())
		default:
			fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		}
		return
	}
	noContent(c)
}
