// Menu pool HTTP handlers (admin).
//
// This file exposes CRUD over the persistent menu pool that option
// regeneration samples from:
//   - GET    /admin/menu
//   - POST   /admin/menu
//   - PUT    /admin/menu/{id}
//   - DELETE /admin/menu/{id}
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/calvada/lunchvote/internal/services"
)

// MenuItemRequest is the JSON payload for creating or renaming a menu item.
type MenuItemRequest struct {
	Name string `json:"name" binding:"required" example:"Taco Tuesday"`
}

// ListMenu godoc
// @ID          listMenu
// @Summary     Menu pool (admin)
// @Description Returns every menu item in insertion order.
// @Tags        Admin
// @Produce     json
//
// @Success     200  {array}   domain.MenuItem
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /admin/menu [get]
func (h *Handlers) ListMenu(c *gin.Context) {
	items, err := h.Menu.List(c.Request.Context())
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, items)
}

// AddMenuItem godoc
// @ID          addMenuItem
// @Summary     Add a menu item (admin)
// @Description Adds a new item to the menu pool. Duplicate under normalization is a conflict.
// @Tags        Admin
// @Accept      json
// @Produce     json
//
// @Param       body  body  handlers.MenuItemRequest  true  "Menu item payload"
//
// @Success     201  {object}  domain.MenuItem
// @Failure     400  {object}  handlers.ErrorResponse  "Blank name"
// @Failure     409  {object}  handlers.ErrorResponse  "Duplicate item"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /admin/menu [post]
func (h *Handlers) AddMenuItem(c *gin.Context) {
	var req MenuItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	it, err := h.Menu.Add(c.Request.Context(), req.Name)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidMenuItem):
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
		case errors.Is(err, services.ErrDuplicateMenuItem):
			fail(c, http.StatusConflict, ErrCodeConflict, err.Error())
		default:
			fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		}
		return
	}
	ok(c, http.StatusCreated, it)
}

// RenameMenuItem godoc
// @ID          renameMenuItem
// @Summary     Rename a menu item (admin)
// @Description Changes a menu item's display name. Colliding with another item is a conflict.
// @Tags        Admin
// @Accept      json
// @Produce     json
//
// @Param       id    path  string                    true  "Menu item ID"
// @Param       body  body  handlers.MenuItemRequest  true  "New name"
//
// @Success     200  {object}  domain.MenuItem
// @Failure     400  {object}  handlers.ErrorResponse  "Blank name"
// @Failure     404  {object}  handlers.ErrorResponse  "Item not found"
// @Failure     409  {object}  handlers.ErrorResponse  "Duplicate item"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /admin/menu/{id} [put]
func (h *Handlers) RenameMenuItem(c *gin.Context) {
	var req MenuItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	it, err := h.Menu.Rename(c.Request.Context(), c.Param("id"), req.Name)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidMenuItem):
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
		case errors.Is(err, services.ErrMenuItemNotFound):
			fail(c, http.StatusNotFound, ErrCodeNotFound, err.Error())
		case errors.Is(err, services.ErrDuplicateMenuItem):
			fail(c, http.StatusConflict, ErrCodeConflict, err.Error())
		default:
			fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		}
		return
	}
	ok(c, http.StatusOK, it)
}

// RemoveMenuItem godoc
// @ID          removeMenuItem
// @Summary     Remove a menu item (admin)
// @Description Deletes a menu item. Ballots already holding the item keep it; options are snapshots.
// @Tags        Admin
// @Produce     json
//
// @Param       id  path  string  true  "Menu item ID"
//
// @Success     204  {string}  string  "No Content"
// @Failure     404  {object}  handlers.ErrorResponse  "Item not found"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /admin/menu/{id} [delete]
func (h *Handlers) RemoveMenuItem(c *gin.Context) {
	if err := h.Menu.Remove(c.Request.Context(), c.Param("id")); err != nil {
		if errors.Is(err, services.ErrMenuItemNotFound) {
			fail(c, http.StatusNotFound, ErrCodeNotFound, err.Error())
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	noContent(c)
}
