package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/user-account-service/internal/handler"
	"github.com/iliyamo/user-account-service/internal/middleware"
)

// RegisterRoutes registers routes that do not require authentication on the
// provided Echo instance.  Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterUserRoutes wires the account endpoints under /api/v1/user.  The
// credential endpoints (register, login) run behind the rate limiter, while
// profile and listing sit behind the session middleware that resolves the
// authenticated account.  Logout is deliberately unauthenticated: clearing
// the cookie always succeeds.
func RegisterUserRoutes(e *echo.Echo, a *handler.AuthHandler, u *handler.UserHandler,
	jwtSecret string, users middleware.AccountResolver, limiter echo.MiddlewareFunc) {

	g := e.Group("/api/v1/user")
	g.POST("/new", a.Register, limiter)
	g.POST("/login", a.Login, limiter)
	g.GET("/logout", a.Logout)

	auth := g.Group("", middleware.SessionAuth(jwtSecret, users))
	auth.GET("/profile", u.Profile)
	auth.GET("/users", u.List)
}
