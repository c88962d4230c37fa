package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"

	"github.com/iliyamo/user-account-service/internal/config"
	"github.com/iliyamo/user-account-service/internal/middleware"
	"github.com/iliyamo/user-account-service/internal/model"
	"github.com/iliyamo/user-account-service/internal/repository"
	"github.com/iliyamo/user-account-service/internal/utils"
)

// --- fakes ---

// fakeUserStore keeps accounts in memory and mirrors the repository's
// create-path behaviour: validate, hash once, stamp timestamps.
type fakeUserStore struct {
	users     map[string]*model.User // keyed by lowercase email
	createErr error                  // forced error for the race path
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: map[string]*model.User{}}
}

func (f *fakeUserStore) Create(ctx context.Context, u *model.User, password string, cost int) (*model.User, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	if err := u.ValidateNew(password); err != nil {
		return nil, err
	}
	if _, ok := f.users[u.Email]; ok {
		return nil, repository.ErrEmailExists
	}
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return nil, err
	}
	u.PasswordHash = hash
	u.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	u.CreatedAt = now
	u.UpdatedAt = now
	f.users[u.Email] = u
	return u, nil
}

func (f *fakeUserStore) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	u, ok := f.users[strings.ToLower(strings.TrimSpace(email))]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return u, nil
}

func (f *fakeUserStore) GetByID(ctx context.Context, id string) (*model.User, error) {
	for _, u := range f.users {
		if u.ID.Hex() == id {
			return u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeUserStore) ListAll(ctx context.Context) ([]model.User, error) {
	out := make([]model.User, 0, len(f.users))
	for _, u := range f.users {
		out = append(out, *u)
	}
	return out, nil
}

type fakeUploader struct {
	calls int
	err   error
}

func (f *fakeUploader) Upload(ctx context.Context, data []byte, contentType string) (model.Avatar, error) {
	f.calls++
	if f.err != nil {
		return model.Avatar{}, f.err
	}
	return model.Avatar{StorageID: "avatars/test/key", URL: "http://cdn.local/avatars/test/key"}, nil
}

// --- helpers ---

func testConfig() config.Config {
	return config.Config{
		Env:           "dev",
		JWTSecret:     "test-secret",
		SessionTTLMin: 60,
		BcryptCost:    bcrypt.MinCost,
	}
}

func seedUser(t *testing.T, store *fakeUserStore, email, password string) *model.User {
	t.Helper()
	u, err := store.Create(context.Background(), &model.User{
		FirstName: "Test",
		LastName:  "User",
		Email:     email,
	}, password, bcrypt.MinCost)
	require.NoError(t, err)
	return u
}

func doJSON(t *testing.T, h echo.HandlerFunc, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	require.NoError(t, h(c))
	return rec
}

func sessionCookieFrom(rec *httptest.ResponseRecorder) *http.Cookie {
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == middleware.SessionCookieName {
			return ck
		}
	}
	return nil
}

// --- tests ---

func TestRegisterCreatesAccountAndSetsCookie(t *testing.T) {
	store := newFakeUserStore()
	h := NewAuthHandler(testConfig(), store, nil, nil)

	rec := doJSON(t, h.Register, http.MethodPost, "/api/v1/user/new",
		`{"firstName":"Alice","lastName":"Smith","email":"a@x.com","password":"abc12345","dob":"1990-04-01"}`)

	require.Equal(t, http.StatusCreated, rec.Code)

	var resp struct {
		Success bool            `json:"success"`
		Message string          `json:"message"`
		Result  json.RawMessage `json:"result"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "User Registered successfully", resp.Message)
	assert.NotContains(t, string(resp.Result), "password")

	ck := sessionCookieFrom(rec)
	require.NotNil(t, ck, "registration must set the session cookie")
	assert.True(t, ck.HttpOnly)
	assert.Equal(t, http.SameSiteLaxMode, ck.SameSite) // dev environment

	// The issued token resolves back to the created account.
	created, err := store.GetByEmail(context.Background(), "a@x.com")
	require.NoError(t, err)
	uid, err := utils.ParseSessionToken("test-secret", ck.Value)
	require.NoError(t, err)
	assert.Equal(t, created.ID.Hex(), uid)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	store := newFakeUserStore()
	seedUser(t, store, "a@x.com", "secret123")
	h := NewAuthHandler(testConfig(), store, nil, nil)

	rec := doJSON(t, h.Register, http.MethodPost, "/api/v1/user/new",
		`{"firstName":"Alice","lastName":"Smith","email":"a@x.com","password":"abc12345"}`)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "User already exists")
	assert.Len(t, store.users, 1, "a duplicate registration must not mutate the store")
}

func TestRegisterDuplicateEmailRace(t *testing.T) {
	// Two registrations racing past the pre-check: the store surfaces the
	// unique-index violation and the handler still answers 401.
	store := newFakeUserStore()
	store.createErr = repository.ErrEmailExists
	h := NewAuthHandler(testConfig(), store, nil, nil)

	rec := doJSON(t, h.Register, http.MethodPost, "/api/v1/user/new",
		`{"firstName":"Alice","lastName":"Smith","email":"a@x.com","password":"abc12345"}`)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "User already exists")
}

func TestRegisterPasswordLength(t *testing.T) {
	store := newFakeUserStore()
	h := NewAuthHandler(testConfig(), store, nil, nil)

	// 7 characters: rejected.
	rec := doJSON(t, h.Register, http.MethodPost, "/api/v1/user/new",
		`{"firstName":"Alice","lastName":"Smith","email":"b@x.com","password":"abc1234"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Password must be at least 8 characters")
	assert.Empty(t, store.users)

	// 8 characters: accepted.
	rec = doJSON(t, h.Register, http.MethodPost, "/api/v1/user/new",
		`{"firstName":"Alice","lastName":"Smith","email":"b@x.com","password":"abc12345"}`)
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Len(t, store.users, 1)
}

func TestRegisterUploadsAvatarBeforeCreate(t *testing.T) {
	store := newFakeUserStore()
	up := &fakeUploader{}
	h := NewAuthHandler(testConfig(), store, up, nil)

	// 1x1 transparent gif, base64 encoded.
	avatar := "data:image/gif;base64,R0lGODlhAQABAIAAAAAAAP///yH5BAEAAAAALAAAAAABAAEAAAIBRAA7"
	rec := doJSON(t, h.Register, http.MethodPost, "/api/v1/user/new",
		`{"firstName":"Alice","lastName":"Smith","email":"c@x.com","password":"abc12345","avatar":"`+avatar+`"}`)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, 1, up.calls)
	u, err := store.GetByEmail(context.Background(), "c@x.com")
	require.NoError(t, err)
	require.NotNil(t, u.Avatar)
	assert.Equal(t, "avatars/test/key", u.Avatar.StorageID)
}

func TestRegisterAbortsWhenUploadFails(t *testing.T) {
	store := newFakeUserStore()
	up := &fakeUploader{err: context.DeadlineExceeded}
	h := NewAuthHandler(testConfig(), store, up, nil)

	avatar := "data:image/gif;base64,R0lGODlhAQABAIAAAAAAAP///yH5BAEAAAAALAAAAAABAAEAAAIBRAA7"
	rec := doJSON(t, h.Register, http.MethodPost, "/api/v1/user/new",
		`{"firstName":"Alice","lastName":"Smith","email":"d@x.com","password":"abc12345","avatar":"`+avatar+`"}`)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Empty(t, store.users, "a failed upload must not leave a partial account behind")
	assert.Nil(t, sessionCookieFrom(rec))
}

func TestLoginSuccess(t *testing.T) {
	store := newFakeUserStore()
	u := seedUser(t, store, "a@x.com", "secret123")
	h := NewAuthHandler(testConfig(), store, nil, nil)

	rec := doJSON(t, h.Login, http.MethodPost, "/api/v1/user/login",
		`{"email":"a@x.com","password":"secret123"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "User Logged in successfully")
	assert.NotContains(t, rec.Body.String(), "password")

	ck := sessionCookieFrom(rec)
	require.NotNil(t, ck)
	uid, err := utils.ParseSessionToken("test-secret", ck.Value)
	require.NoError(t, err)
	assert.Equal(t, u.ID.Hex(), uid)
}

func TestLoginWrongPassword(t *testing.T) {
	store := newFakeUserStore()
	seedUser(t, store, "a@x.com", "secret123")
	h := NewAuthHandler(testConfig(), store, nil, nil)

	rec := doJSON(t, h.Login, http.MethodPost, "/api/v1/user/login",
		`{"email":"a@x.com","password":"wrong-password"}`)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "Password does not match")
	assert.Nil(t, sessionCookieFrom(rec), "a failed login must not issue a cookie")
}

func TestLoginUnknownEmail(t *testing.T) {
	store := newFakeUserStore()
	h := NewAuthHandler(testConfig(), store, nil, nil)

	rec := doJSON(t, h.Login, http.MethodPost, "/api/v1/user/login",
		`{"email":"nobody@x.com","password":"secret123"}`)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "User Not Registered")
	assert.Nil(t, sessionCookieFrom(rec))
}

func TestLogoutClearsCookie(t *testing.T) {
	h := NewAuthHandler(testConfig(), newFakeUserStore(), nil, nil)

	rec := doJSON(t, h.Logout, http.MethodGet, "/api/v1/user/logout", "")

	require.Equal(t, http.StatusOK, rec.Code)
	ck := sessionCookieFrom(rec)
	require.NotNil(t, ck)
	assert.Empty(t, ck.Value)
	assert.True(t, ck.Expires.Before(time.Now()), "logout cookie must already be expired")
}

func TestProdCookieAttributes(t *testing.T) {
	cfg := testConfig()
	cfg.Env = "prod"
	store := newFakeUserStore()
	seedUser(t, store, "a@x.com", "secret123")
	h := NewAuthHandler(cfg, store, nil, nil)

	rec := doJSON(t, h.Login, http.MethodPost, "/api/v1/user/login",
		`{"email":"a@x.com","password":"secret123"}`)

	ck := sessionCookieFrom(rec)
	require.NotNil(t, ck)
	assert.True(t, ck.Secure)
	assert.Equal(t, http.SameSiteNoneMode, ck.SameSite)
}
