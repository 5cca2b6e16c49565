// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTP_Login(t *testing.T) {
	service, _, _ := newTestService(t)
	router := NewHandler(service).Routes()

	tests := []struct {
		name    string
		body    string
		status  int
		message string
	}{
		{"success", `{"email":"admin@example.com","password":"s3cret-pass"}`, http.StatusOK, ""},
		{"missing_password", `{"email":"admin@example.com"}`, http.StatusBadRequest, MsgMissingCredentials},
		{"blank_email", `{"email":"  ","password":"x"}`, http.StatusBadRequest, MsgMissingCredentials},
		{"wrong_password", `{"email":"admin@example.com","password":"guess"}`, http.StatusUnauthorized, MsgInvalidCredentials},
		{"broken_json", `{"email":`, http.StatusBadRequest, "Invalid JSON payload"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			request := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(tt.body))
			request.Header.Set("Content-Type", "application/json")
			recorder := httptest.NewRecorder()

			router.ServeHTTP(recorder, request)

			require.Equal(t, tt.status, recorder.Code)

			var body map[string]any
			require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))

			if tt.message != "" {
				assert.Equal(t, false, body["success"])
				assert.Equal(t, tt.message, body["error"])
				return
			}

			assert.Equal(t, true, body["success"])
			assert.NotEmpty(t, body["token"])
			user := body["user"].(map[string]any)
			assert.Equal(t, "admin@example.com", user["email"])
			assert.Equal(t, "admin", user["role"])
			assert.NotEmpty(t, user["id"])
		})
	}
}
