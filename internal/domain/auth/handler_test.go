package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"cloudstore/internal/identity"
	"cloudstore/internal/pkg/upstream"
)

type mockProvider struct {
	mock.Mock
}

func (m *mockProvider) SignUp(ctx context.Context, email, password, fullName string) (*identity.User, error) {
	args := m.Called(ctx, email, password, fullName)
	u, _ := args.Get(0).(*identity.User)
	return u, args.Error(1)
}

func (m *mockProvider) SignInWithPassword(ctx context.Context, email, password string) (*identity.Session, error) {
	args := m.Called(ctx, email, password)
	s, _ := args.Get(0).(*identity.Session)
	return s, args.Error(1)
}

func (m *mockProvider) Verify(ctx context.Context, token string) (*identity.Principal, error) {
	args := m.Called(ctx, token)
	p, _ := args.Get(0).(*identity.Principal)
	return p, args.Error(1)
}

func newRouter(p identity.Provider) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	RegisterRoutes(r.Group("/api"), NewHandler(p))
	return r
}

func postJSON(r *gin.Engine, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func TestRegister(t *testing.T) {
	p := &mockProvider{}
	p.On("SignUp", mock.Anything, "a@example.com", "secret123", "Alice").
		Return(&identity.User{ID: "user-1", Email: "a@example.com", FullName: "Alice"}, nil)
	p.On("SignUp", mock.Anything, "dup@example.com", "secret123", "").
		Return(nil, identity.ErrEmailAlreadyExists)
	r := newRouter(p)

	w := postJSON(r, "/api/auth/register", `{"email":"a@example.com","password":"secret123","fullName":"Alice"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var body struct {
		Message string        `json:"message"`
		User    identity.User `json:"user"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "user-1", body.User.ID)
	assert.NotContains(t, w.Body.String(), "password")

	w = postJSON(r, "/api/auth/register", `{"email":"dup@example.com","password":"secret123"}`)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "EMAIL_EXISTS")

	w = postJSON(r, "/api/auth/register", `{"email":"nope","password":"secret123"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = postJSON(r, "/api/auth/register", `{"email":"b@example.com","password":"123"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLogin(t *testing.T) {
	p := &mockProvider{}
	p.On("SignInWithPassword", mock.Anything, "a@example.com", "secret123").
		Return(&identity.Session{
			AccessToken: "tok",
			ExpiresIn:   time.Hour,
			User:        &identity.User{ID: "user-1", Email: "a@example.com"},
		}, nil)
	p.On("SignInWithPassword", mock.Anything, "a@example.com", "wrong").
		Return(nil, identity.ErrInvalidCredentials)
	p.On("SignInWithPassword", mock.Anything, "slow@example.com", "secret123").
		Return(nil, upstream.Failure("load user", errors.New("db down")))
	r := newRouter(p)

	w := postJSON(r, "/api/auth/login", `{"email":"a@example.com","password":"secret123"}`)
	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "tok", body["token"])
	assert.EqualValues(t, 3600, body["expires_in"])
	assert.NotEmpty(t, body["message"])

	w = postJSON(r, "/api/auth/login", `{"email":"a@example.com","password":"wrong"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "INVALID_CREDENTIALS")

	w = postJSON(r, "/api/auth/login", `{"email":"slow@example.com","password":"secret123"}`)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "UPSTREAM_FAILURE")
}
