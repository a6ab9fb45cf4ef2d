package login

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/safezone/internal/lib/apperr"
	"github.com/magabrotheeeer/safezone/internal/models"
	"github.com/magabrotheeeer/safezone/internal/services/identity"
)

type ServiceMock struct {
	mock.Mock
}

func (m *ServiceMock) Login(ctx context.Context, email, password string) (*identity.AuthResult, error) {
	args := m.Called(ctx, email, password)
	res, _ := args.Get(0).(*identity.AuthResult)
	return res, args.Error(1)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func TestLoginHandler_ServeHTTP(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		mockRes        *identity.AuthResult
		mockErr        error
		callService    bool
		wantStatusCode int
		wantError      string
	}{
		{
			name:           "success",
			body:           `{"email":"ana@example.com","password":"secret123"}`,
			mockRes:        &identity.AuthResult{User: &models.User{ID: "u1"}, AccessToken: "tok", TokenType: identity.TokenType},
			callService:    true,
			wantStatusCode: http.StatusOK,
		},
		{
			name:           "invalid json",
			body:           `{`,
			wantStatusCode: http.StatusBadRequest,
			wantError:      "invalid request body",
		},
		{
			name:           "missing password",
			body:           `{"email":"ana@example.com"}`,
			wantStatusCode: http.StatusUnprocessableEntity,
			wantError:      "field Password is a required field",
		},
		{
			name:           "wrong credentials",
			body:           `{"email":"ana@example.com","password":"secret123"}`,
			mockErr:        apperr.ErrInvalidCredentials,
			callService:    true,
			wantStatusCode: http.StatusUnauthorized,
			wantError:      "Email ou senha incorretos",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := new(ServiceMock)
			if tt.callService {
				service.On("Login", mock.Anything, "ana@example.com", "secret123").Return(tt.mockRes, tt.mockErr).Once()
			}

			req := httptest.NewRequest(http.MethodPost, "/login", bytes.NewBufferString(tt.body))
			rr := httptest.NewRecorder()
			New(newNoopLogger(), service).ServeHTTP(rr, req)

			assert.Equal(t, tt.wantStatusCode, rr.Code)
			var resp map[string]any
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
			if tt.wantError != "" {
				assert.Contains(t, resp["error"], tt.wantError)
			} else {
				assert.Equal(t, "tok", resp["data"].(map[string]any)["access_token"])
			}
			service.AssertExpectations(t)
		})
	}
}
