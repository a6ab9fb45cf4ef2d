package middlewarectx_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/safezone/internal/config"
	"github.com/magabrotheeeer/safezone/internal/http/middlewarectx"
	"github.com/magabrotheeeer/safezone/internal/lib/apperr"
	"github.com/magabrotheeeer/safezone/internal/models"
)

type ResolverMock struct {
	mock.Mock
}

func (m *ResolverMock) Resolve(ctx context.Context, token string) (*models.User, error) {
	args := m.Called(ctx, token)
	user, _ := args.Get(0).(*models.User)
	return user, args.Error(1)
}

type AccessCheckerMock struct {
	mock.Mock
}

func (m *AccessCheckerMock) CheckAccess(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func okHandler(called *bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*called = true
		w.WriteHeader(http.StatusOK)
	})
}

func TestJWTMiddleware(t *testing.T) {
	user := &models.User{ID: "u1", Email: "ana@example.com"}

	tests := []struct {
		name           string
		authHeader     string
		mockUser       *models.User
		mockErr        error
		wantStatusCode int
		wantCalled     bool
	}{
		{
			name:           "missing Authorization header",
			authHeader:     "",
			wantStatusCode: http.StatusUnauthorized,
		},
		{
			name:           "invalid Authorization header prefix",
			authHeader:     "Basic sometoken",
			wantStatusCode: http.StatusUnauthorized,
		},
		{
			name:           "invalid token",
			authHeader:     "Bearer token",
			mockErr:        apperr.ErrInvalidToken,
			wantStatusCode: http.StatusUnauthorized,
		},
		{
			name:           "unknown user",
			authHeader:     "Bearer token",
			mockErr:        apperr.ErrUserNotFound,
			wantStatusCode: http.StatusUnauthorized,
		},
		{
			name:           "storage failure",
			authHeader:     "Bearer token",
			mockErr:        errors.New("db down"),
			wantStatusCode: http.StatusInternalServerError,
		},
		{
			name:           "valid token",
			authHeader:     "Bearer validtoken",
			mockUser:       user,
			wantStatusCode: http.StatusOK,
			wantCalled:     true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resolver := new(ResolverMock)
			if tt.mockUser != nil || tt.mockErr != nil {
				resolver.On("Resolve", mock.Anything, mock.Anything).Return(tt.mockUser, tt.mockErr).Once()
			}

			called := false
			var gotUser *models.User
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				called = true
				gotUser, _ = middlewarectx.UserFromContext(r.Context())
				w.WriteHeader(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			rr := httptest.NewRecorder()

			middlewarectx.JWTMiddleware(resolver, newNoopLogger())(next).ServeHTTP(rr, req)

			assert.Equal(t, tt.wantStatusCode, rr.Code)
			assert.Equal(t, tt.wantCalled, called)
			if tt.wantCalled {
				assert.Equal(t, user, gotUser)
			}
			resolver.AssertExpectations(t)
		})
	}
}

func TestJWTMiddleware_PassesRawToken(t *testing.T) {
	resolver := new(ResolverMock)
	resolver.On("Resolve", mock.Anything, "abc.def.ghi").Return(&models.User{ID: "u1"}, nil).Once()

	called := false
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer abc.def.ghi")
	rr := httptest.NewRecorder()

	middlewarectx.JWTMiddleware(resolver, newNoopLogger())(okHandler(&called)).ServeHTTP(rr, req)

	assert.True(t, called)
	resolver.AssertExpectations(t)
}

func TestUserFromContext_Missing(t *testing.T) {
	_, ok := middlewarectx.UserFromContext(context.Background())
	assert.False(t, ok)

	_, ok = middlewarectx.UserFromContext(middlewarectx.WithUser(context.Background(), nil))
	assert.False(t, ok)
}

func TestAdminOnly(t *testing.T) {
	tests := []struct {
		name           string
		user           *models.User
		wantStatusCode int
		wantCalled     bool
	}{
		{name: "no user", wantStatusCode: http.StatusUnauthorized},
		{name: "regular user", user: &models.User{ID: "u1"}, wantStatusCode: http.StatusForbidden},
		{name: "admin", user: &models.User{ID: "u2", IsAdmin: true}, wantStatusCode: http.StatusOK, wantCalled: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			req := httptest.NewRequest(http.MethodGet, "/admin/stats", nil)
			if tt.user != nil {
				req = req.WithContext(middlewarectx.WithUser(req.Context(), tt.user))
			}
			rr := httptest.NewRecorder()

			middlewarectx.AdminOnly(newNoopLogger())(okHandler(&called)).ServeHTTP(rr, req)

			assert.Equal(t, tt.wantStatusCode, rr.Code)
			assert.Equal(t, tt.wantCalled, called)
		})
	}
}

func TestSubscriptionGate(t *testing.T) {
	user := &models.User{ID: "u1"}

	tests := []struct {
		name           string
		user           *models.User
		checkErr       error
		wantStatusCode int
		wantCalled     bool
	}{
		{name: "no user", wantStatusCode: http.StatusUnauthorized},
		{name: "allowed", user: user, wantStatusCode: http.StatusOK, wantCalled: true},
		{name: "blocked", user: user, checkErr: apperr.ErrSubscriptionBlocked, wantStatusCode: http.StatusPaymentRequired},
		{name: "check failure", user: user, checkErr: errors.New("db down"), wantStatusCode: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checker := new(AccessCheckerMock)
			if tt.user != nil {
				checker.On("CheckAccess", mock.Anything, tt.user).Return(tt.checkErr).Once()
			}

			called := false
			req := httptest.NewRequest(http.MethodGet, "/alerts", nil)
			if tt.user != nil {
				req = req.WithContext(middlewarectx.WithUser(req.Context(), tt.user))
			}
			rr := httptest.NewRecorder()

			middlewarectx.SubscriptionGate(newNoopLogger(), checker)(okHandler(&called)).ServeHTTP(rr, req)

			assert.Equal(t, tt.wantStatusCode, rr.Code)
			assert.Equal(t, tt.wantCalled, called)
			checker.AssertExpectations(t)
		})
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	called := false
	h := middlewarectx.RateLimitMiddleware(newNoopLogger(), config.RateLimit{RPS: 0.001, Burst: 2})(okHandler(&called))

	do := func(addr string) int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = addr
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		return rr.Code
	}

	assert.Equal(t, http.StatusOK, do("10.0.0.1:1000"))
	assert.Equal(t, http.StatusOK, do("10.0.0.1:1001"))
	assert.Equal(t, http.StatusTooManyRequests, do("10.0.0.1:1002"))

	// у другого клиента свой лимит
	assert.Equal(t, http.StatusOK, do("10.0.0.2:1000"))
}
