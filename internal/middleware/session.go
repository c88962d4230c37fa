package middleware // contains reusable HTTP middleware functions

import (
    "context"
    "net/http"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/user-account-service/internal/model"
    "github.com/iliyamo/user-account-service/internal/utils"
)

// AccountContextKey is where SessionAuth stores the resolved account on the
// request context.  Handlers read it back with c.Get.
const AccountContextKey = "account"

// SessionCookieName is the cookie that carries the signed session token.  The
// same name is used when issuing the cookie at login and clearing it at
// logout.
const SessionCookieName = "token"

// AccountResolver loads an account by id.  The session middleware only needs
// this one lookup, so it depends on the narrow interface rather than the
// whole repository.
type AccountResolver interface {
    GetByID(ctx context.Context, id string) (*model.User, error)
}

// SessionAuth returns an Echo middleware that gates protected routes on a
// valid session cookie.  It verifies the token signature with the provided
// secret, resolves the account the token was issued for, and attaches it to
// the request context.  Any failure along the way (missing cookie, tampered
// token, deleted account) yields 401 without touching the store further.
// The middleware performs no mutation; it is a pure request-scoped gate.
func SessionAuth(secret string, users AccountResolver) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            ck, err := c.Cookie(SessionCookieName)
            if err != nil || ck.Value == "" {
                return denied(c)
            }
            userID, err := utils.ParseSessionToken(secret, ck.Value)
            if err != nil {
                return denied(c)
            }
            u, err := users.GetByID(c.Request().Context(), userID)
            if err != nil {
                return denied(c)
            }
            c.Set(AccountContextKey, u)
            return next(c)
        }
    }
}

func denied(c echo.Context) error {
    return c.JSON(http.StatusUnauthorized, echo.Map{
        "success": false,
        "message": "Please login to access this resource",
    })
}
