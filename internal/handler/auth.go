package handler

import (
	"context"
	"encoding/base64"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/user-account-service/internal/config"
	"github.com/iliyamo/user-account-service/internal/middleware"
	"github.com/iliyamo/user-account-service/internal/model"
	"github.com/iliyamo/user-account-service/internal/queue"
	"github.com/iliyamo/user-account-service/internal/repository"
	"github.com/iliyamo/user-account-service/internal/utils"
)

// UserStore is the slice of the account repository the handlers depend on.
// Accepting an interface keeps handlers testable against fakes; main wires
// in the Mongo-backed repository.
type UserStore interface {
	Create(ctx context.Context, u *model.User, password string, cost int) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetByID(ctx context.Context, id string) (*model.User, error)
	ListAll(ctx context.Context) ([]model.User, error)
}

// AvatarUploader stores an avatar image and returns its storage reference.
type AvatarUploader interface {
	Upload(ctx context.Context, data []byte, contentType string) (model.Avatar, error)
}

// EventPublisher emits a signup event after successful registration.
type EventPublisher interface {
	PublishUserRegistered(ctx context.Context, evt queue.UserRegisteredEvent) error
}

// EventPublisherFunc adapts a plain function to the EventPublisher interface.
type EventPublisherFunc func(ctx context.Context, evt queue.UserRegisteredEvent) error

func (f EventPublisherFunc) PublishUserRegistered(ctx context.Context, evt queue.UserRegisteredEvent) error {
	return f(ctx, evt)
}

// AuthHandler bundles dependencies for the register/login/logout endpoints.
// Avatars and Events may be nil; registration then proceeds without avatar
// support or signup events.
type AuthHandler struct {
	Cfg     config.Config
	Users   UserStore
	Avatars AvatarUploader
	Events  EventPublisher
}

func NewAuthHandler(cfg config.Config, users UserStore, avatars AvatarUploader, events EventPublisher) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Users: users, Avatars: avatars, Events: events}
}

// ----- DTOs -----

type registerReq struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	DOB       string `json:"dob"`
	Avatar    string `json:"avatar"` // optional image payload (data URL or raw base64)
	Email     string `json:"email"`
	Password  string `json:"password"`
}

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register: create the account, set the session cookie and return the public
// projection.  The avatar (when supplied) is uploaded before the account is
// created so a failed upload never leaves a half-registered user behind.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "invalid body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	// The unique index is what actually prevents duplicates under races; this
	// pre-check exists to answer the common case with a clean message.
	if _, err := h.Users.GetByEmail(ctx, req.Email); err == nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"success": false, "message": "User already exists"})
	} else if !errors.Is(err, repository.ErrNotFound) {
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "message": err.Error()})
	}

	u := &model.User{
		FirstName: strings.TrimSpace(req.FirstName),
		LastName:  strings.TrimSpace(req.LastName),
		Email:     req.Email,
	}
	if req.DOB != "" {
		dob, err := parseDOB(req.DOB)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "Please enter a valid date of birth"})
		}
		u.DOB = &dob
	}

	if req.Avatar != "" {
		if h.Avatars == nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "message": "avatar storage not configured"})
		}
		data, contentType, err := decodeImagePayload(req.Avatar)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "invalid avatar image"})
		}
		av, err := h.Avatars.Upload(ctx, data, contentType)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "message": err.Error()})
		}
		u.Avatar = &av
	}

	created, err := h.Users.Create(ctx, u, req.Password, h.Cfg.BcryptCost)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrEmailExists):
			return c.JSON(http.StatusUnauthorized, echo.Map{"success": false, "message": "User already exists"})
		case model.IsValidationError(err):
			return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": err.Error()})
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "message": err.Error()})
		}
	}

	token, err := utils.NewSessionToken(h.Cfg.JWTSecret, created.ID.Hex())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "message": err.Error()})
	}
	c.SetCookie(h.sessionCookie(token, time.Now().Add(time.Duration(h.Cfg.SessionTTLMin)*time.Minute)))

	if h.Events != nil {
		evt := queue.UserRegisteredEvent{
			UserID:       created.ID.Hex(),
			Email:        created.Email,
			FirstName:    created.FirstName,
			LastName:     created.LastName,
			RegisteredAt: created.CreatedAt.Format(time.RFC3339),
		}
		// Broker trouble must never fail a registration; the publisher logs.
		go func() { _ = h.Events.PublishUserRegistered(context.Background(), evt) }()
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"success": true,
		"message": "User Registered successfully",
		"result":  created.Public(),
	})
}

// Login: look the account up with its password hash, compare, and set the
// session cookie on success.  The two failure modes keep their distinct
// messages from the original behaviour.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "invalid body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "email/password required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"success": false, "message": "User Not Registered"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "message": err.Error()})
	}
	if !utils.VerifyPassword(u.PasswordHash, req.Password) {
		return c.JSON(http.StatusNotFound, echo.Map{"success": false, "message": "Password does not match"})
	}

	token, err := utils.NewSessionToken(h.Cfg.JWTSecret, u.ID.Hex())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "message": err.Error()})
	}
	c.SetCookie(h.sessionCookie(token, time.Now().Add(time.Duration(h.Cfg.SessionTTLMin)*time.Minute)))

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"message": "User Logged in successfully",
		"user":    u.Public(),
	})
}

// Logout overwrites the session cookie with an empty, already expired value
// so the client discards it.  There is no server-side invalidation: a token
// captured before logout stays cryptographically valid until its cookie
// expiry would have passed.
func (h *AuthHandler) Logout(c echo.Context) error {
	c.SetCookie(h.sessionCookie("", time.Now().Add(-time.Hour)))
	return c.JSON(http.StatusOK, echo.Map{"success": true, "message": "Logged out successfully"})
}

// sessionCookie builds the session cookie.  Cross-site attributes are relaxed
// in development (plain HTTP, same host) and strict everywhere else.
func (h *AuthHandler) sessionCookie(value string, expires time.Time) *http.Cookie {
	ck := &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
	}
	if isDevEnv(h.Cfg.Env) {
		ck.SameSite = http.SameSiteLaxMode
	} else {
		ck.SameSite = http.SameSiteNoneMode
		ck.Secure = true
	}
	return ck
}

func isDevEnv(env string) bool {
	switch strings.ToLower(env) {
	case "dev", "development":
		return true
	}
	return false
}

// parseDOB accepts a plain date or a full RFC 3339 timestamp.
func parseDOB(s string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}

// decodeImagePayload handles both browser-style data URLs
// ("data:image/png;base64,....") and raw base64 strings.
func decodeImagePayload(s string) ([]byte, string, error) {
	contentType := "application/octet-stream"
	payload := s
	if strings.HasPrefix(s, "data:") {
		meta, rest, ok := strings.Cut(strings.TrimPrefix(s, "data:"), ",")
		if !ok {
			return nil, "", errors.New("malformed data url")
		}
		if ct, _, _ := strings.Cut(meta, ";"); ct != "" {
			contentType = ct
		}
		payload = rest
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, "", err
	}
	return data, contentType, nil
}
