// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/taibuivan/chapterhub/internal/platform/apperr"
	"github.com/taibuivan/chapterhub/internal/platform/constants"
	"github.com/taibuivan/chapterhub/internal/platform/ctxutil"
	"github.com/taibuivan/chapterhub/internal/platform/respond"
	"github.com/taibuivan/chapterhub/internal/platform/sec"
)

// MsgNotAuthorized is returned for missing, malformed or rejected tokens.
const MsgNotAuthorized = "Not authorized to access this route"

// TokenVerifier defines the interface needed to verify tokens in middleware.
type TokenVerifier interface {
	VerifyToken(tokenStr string) (*sec.AuthClaims, error)
}

// Authenticate extracts and verifies the JWT from the Authorization header.
//
// # Flow
//  1. No header: the request proceeds as anonymous.
//  2. "Bearer <token>" or a bare token: verified via [TokenVerifier].
//  3. On success [*sec.AuthClaims] is injected into the request context.
//
// A rejected header never fails the request here: it proceeds as anonymous so
// that public routes stay reachable, and [RequireRole] answers 401 on the
// routes that need a user.
func Authenticate(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			authHeader := strings.TrimSpace(request.Header.Get(constants.HeaderAuthorization))

			// ── 1. Anonymous Access ───────────────────────────────────────────
			if authHeader == "" {
				next.ServeHTTP(writer, request)
				return
			}

			// ── 2. Token Extraction ───────────────────────────────────────────
			tokenStr := authHeader
			if scheme, rest, found := strings.Cut(authHeader, " "); found {
				if !strings.EqualFold(scheme, "bearer") {
					rejectToken(request, "unsupported_scheme")
					next.ServeHTTP(writer, request)
					return
				}
				tokenStr = strings.TrimSpace(rest)
			}

			// ── 3. Token Verification ─────────────────────────────────────────
			claims, err := verifier.VerifyToken(tokenStr)
			if err != nil {
				rejectToken(request, err.Error())
				next.ServeHTTP(writer, request)
				return
			}

			// ── 4. Context Injection ──────────────────────────────────────────
			ctx := ctxutil.WithAuthUser(request.Context(), claims)
			next.ServeHTTP(writer, request.WithContext(ctx))
		})
	}
}

func rejectToken(request *http.Request, reason string) {
	ctxutil.GetLogger(request.Context()).DebugContext(request.Context(), "auth_token_rejected",
		slog.String("reason", reason),
	)
}

// RequireRole blocks requests if the authenticated user doesn't have the required role.
//
// # Usage
//
// Must be registered in the router AFTER [Authenticate]. Anonymous requests
// get 401; authenticated requests below the role get 403.
func RequireRole(role sec.UserRole) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			current, authenticated := ctxutil.Role(request.Context())

			// ── 1. Authentication Check ───────────────────────────────────────
			if !authenticated {
				respond.Error(writer, request, apperr.Unauthorized(MsgNotAuthorized))
				return
			}

			// ── 2. Authorization Check ────────────────────────────────────────
			if !current.AtLeast(role) {
				respond.Error(writer, request, apperr.Forbidden(
					fmt.Sprintf("User role %s is not authorized to access this route", current),
				))
				return
			}

			next.ServeHTTP(writer, request)
		})
	}
}
