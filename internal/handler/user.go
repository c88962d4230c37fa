package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/user-account-service/internal/middleware"
	"github.com/iliyamo/user-account-service/internal/model"
)

// UserHandler serves the profile and listing endpoints.  Both sit behind the
// session middleware, which resolves the authenticated account into the
// request context.
type UserHandler struct {
	Users UserStore
}

func NewUserHandler(users UserStore) *UserHandler {
	return &UserHandler{Users: users}
}

// Profile returns the account resolved by the session middleware.
func (h *UserHandler) Profile(c echo.Context) error {
	acc, ok := c.Get(middleware.AccountContextKey).(*model.User)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"success": false, "message": "Please login to access this resource"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"user":    acc.Public(),
	})
}

// Users lists every registered account as its public projection; password
// hashes never leave the repository layer on this path.
func (h *UserHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	users, err := h.Users.ListAll(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "message": err.Error()})
	}

	list := make([]model.PublicUser, 0, len(users))
	for i := range users {
		list = append(list, users[i].Public())
	}
	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"users":   list,
	})
}
