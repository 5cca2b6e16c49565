// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package middleware_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/chapterhub/internal/platform/constants"
	"github.com/taibuivan/chapterhub/internal/platform/ctxutil"
	"github.com/taibuivan/chapterhub/internal/platform/middleware"
	"github.com/taibuivan/chapterhub/internal/platform/sec"
)

var okHandler = http.HandlerFunc(func(writer http.ResponseWriter, _ *http.Request) {
	writer.WriteHeader(http.StatusOK)
})

func decodeBody(t *testing.T, recorder *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
	return body
}

// # Request ID & Logging

func TestRequestID_GeneratesAndPropagates(t *testing.T) {
	var seen string
	handler := middleware.RequestID()(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		seen = ctxutil.GetRequestID(request.Context())
	}))

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Len(t, seen, 36)
	assert.Equal(t, seen, recorder.Header().Get(constants.HeaderXRequestID))

	// Client-provided IDs are kept
	request := httptest.NewRequest(http.MethodGet, "/", nil)
	request.Header.Set(constants.HeaderXRequestID, "abc-123")
	recorder = httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)
	assert.Equal(t, "abc-123", seen)
}

func TestStructuredLogger_LogsRequest(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	handler := middleware.RequestID()(middleware.StructuredLogger(logger)(http.HandlerFunc(
		func(writer http.ResponseWriter, request *http.Request) {
			ctxutil.GetLogger(request.Context()).Info("inside_handler")
			writer.WriteHeader(http.StatusTeapot)
		},
	)))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/v1/chapters", nil))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)

	var inner, final map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &inner))
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &final))

	assert.Equal(t, "/api/v1/chapters", inner["path"])
	assert.NotEmpty(t, inner["request_id"])
	assert.Equal(t, "http_request_finished", final["msg"])
	assert.Equal(t, float64(http.StatusTeapot), final["status"])
	assert.Equal(t, "WARN", final["level"])
}

// # Rate Limiting

func TestRateLimiter_PerIPBudget(t *testing.T) {
	limiter := middleware.NewRateLimiter(2)
	handler := limiter.Middleware()(okHandler)

	send := func(ip string) *httptest.ResponseRecorder {
		request := httptest.NewRequest(http.MethodGet, "/", nil)
		request.RemoteAddr = ip + ":5555"
		recorder := httptest.NewRecorder()
		handler.ServeHTTP(recorder, request)
		return recorder
	}

	assert.Equal(t, http.StatusOK, send("10.0.0.1").Code)
	assert.Equal(t, http.StatusOK, send("10.0.0.1").Code)

	blocked := send("10.0.0.1")
	assert.Equal(t, http.StatusTooManyRequests, blocked.Code)
	assert.Equal(t, "60", blocked.Header().Get("Retry-After"))

	body := decodeBody(t, blocked)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "RATE_LIMITED", body["code"])

	// Another client has its own bucket
	assert.Equal(t, http.StatusOK, send("10.0.0.2").Code)
}

// # Safety

func TestPanicRecovery(t *testing.T) {
	handler := middleware.PanicRecovery()(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, recorder.Code)
	body := decodeBody(t, recorder)
	assert.Equal(t, false, body["success"])
	assert.NotContains(t, recorder.Body.String(), "boom")
}

func TestSecureHeaders(t *testing.T) {
	recorder := httptest.NewRecorder()
	middleware.SecureHeaders()(okHandler).ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, "nosniff", recorder.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "SAMEORIGIN", recorder.Header().Get("X-Frame-Options"))
	assert.NotEmpty(t, recorder.Header().Get("Strict-Transport-Security"))
}

// # CORS

type originList []string

func (list originList) OriginAllowed(origin string) bool {
	for _, allowed := range list {
		if allowed == origin {
			return true
		}
	}
	return false
}

func TestCORS(t *testing.T) {
	handler := middleware.CORS(originList{"https://app.example.com"})(okHandler)

	t.Run("allowed_origin", func(t *testing.T) {
		request := httptest.NewRequest(http.MethodGet, "/", nil)
		request.Header.Set(constants.HeaderOrigin, "https://app.example.com")
		recorder := httptest.NewRecorder()
		handler.ServeHTTP(recorder, request)

		assert.Equal(t, "https://app.example.com", recorder.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("foreign_origin", func(t *testing.T) {
		request := httptest.NewRequest(http.MethodGet, "/", nil)
		request.Header.Set(constants.HeaderOrigin, "https://evil.example.com")
		recorder := httptest.NewRecorder()
		handler.ServeHTTP(recorder, request)

		assert.Empty(t, recorder.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, http.StatusOK, recorder.Code)
	})

	t.Run("preflight", func(t *testing.T) {
		request := httptest.NewRequest(http.MethodOptions, "/", nil)
		request.Header.Set(constants.HeaderOrigin, "https://app.example.com")
		recorder := httptest.NewRecorder()
		handler.ServeHTTP(recorder, request)

		assert.Equal(t, http.StatusNoContent, recorder.Code)
	})
}

func TestRealIP(t *testing.T) {
	request := httptest.NewRequest(http.MethodGet, "/", nil)
	request.RemoteAddr = "192.0.2.1:1234"
	assert.Equal(t, "192.0.2.1", middleware.RealIP(request))

	request.Header.Set(constants.HeaderXForwardedFor, "203.0.113.9, 10.0.0.1")
	assert.Equal(t, "203.0.113.9", middleware.RealIP(request))

	request.Header.Set(constants.HeaderXRealIP, "198.51.100.7")
	assert.Equal(t, "198.51.100.7", middleware.RealIP(request))
}

// # Authentication

func newTokens(t *testing.T) *sec.TokenService {
	t.Helper()
	tokens, err := sec.NewTokenService("test-secret", constants.AuthIssuer, time.Hour)
	require.NoError(t, err)
	return tokens
}

func TestAuthenticate_AndRequireRole(t *testing.T) {
	tokens := newTokens(t)
	adminToken, err := tokens.GenerateAccessToken("admin-id", "admin@example.com", string(sec.RoleAdmin))
	require.NoError(t, err)
	userToken, err := tokens.GenerateAccessToken("user-id", "user@example.com", string(sec.RoleUser))
	require.NoError(t, err)

	handler := middleware.Authenticate(tokens)(middleware.RequireRole(sec.RoleAdmin)(okHandler))

	tests := []struct {
		name    string
		header  string
		status  int
		message string
	}{
		{"bearer_admin", "Bearer " + adminToken, http.StatusOK, ""},
		{"bare_admin", adminToken, http.StatusOK, ""},
		{"anonymous", "", http.StatusUnauthorized, middleware.MsgNotAuthorized},
		{"garbage", "Bearer not-a-jwt", http.StatusUnauthorized, middleware.MsgNotAuthorized},
		{"wrong_scheme", "Basic " + adminToken, http.StatusUnauthorized, middleware.MsgNotAuthorized},
		{"user_role", "Bearer " + userToken, http.StatusForbidden, "User role user is not authorized to access this route"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			request := httptest.NewRequest(http.MethodPost, "/", nil)
			if tt.header != "" {
				request.Header.Set(constants.HeaderAuthorization, tt.header)
			}
			recorder := httptest.NewRecorder()
			handler.ServeHTTP(recorder, request)

			assert.Equal(t, tt.status, recorder.Code)
			if tt.message != "" {
				assert.Equal(t, tt.message, decodeBody(t, recorder)["error"])
			}
		})
	}
}

func TestAuthenticate_RejectedTokenStaysAnonymous(t *testing.T) {
	tokens := newTokens(t)
	expired, err := sec.NewTokenService("test-secret", constants.AuthIssuer, -time.Minute)
	require.NoError(t, err)
	stale, err := expired.GenerateAccessToken("admin-id", "admin@example.com", string(sec.RoleAdmin))
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
	}{
		{"garbage", "Bearer not-a-jwt"},
		{"wrong_scheme", "Basic abc"},
		{"expired", "Bearer " + stale},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reached := false
			handler := middleware.Authenticate(tokens)(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
				reached = true
				assert.Nil(t, ctxutil.GetAuthUser(request.Context()))
				writer.WriteHeader(http.StatusOK)
			}))

			request := httptest.NewRequest(http.MethodGet, "/", nil)
			request.Header.Set(constants.HeaderAuthorization, tt.header)
			recorder := httptest.NewRecorder()
			handler.ServeHTTP(recorder, request)

			assert.True(t, reached)
			assert.Equal(t, http.StatusOK, recorder.Code)
		})
	}
}

func TestAuthenticate_InjectsClaims(t *testing.T) {
	tokens := newTokens(t)
	token, err := tokens.GenerateAccessToken("admin-id", "admin@example.com", string(sec.RoleAdmin))
	require.NoError(t, err)

	var claims *sec.AuthClaims
	handler := middleware.Authenticate(tokens)(http.HandlerFunc(func(_ http.ResponseWriter, request *http.Request) {
		claims = ctxutil.GetAuthUser(request.Context())
	}))

	request := httptest.NewRequest(http.MethodGet, "/", nil)
	request.Header.Set(constants.HeaderAuthorization, "Bearer "+token)
	handler.ServeHTTP(httptest.NewRecorder(), request)

	require.NotNil(t, claims)
	assert.Equal(t, "admin-id", claims.UserID)
	assert.Equal(t, "admin", claims.Role)
}
