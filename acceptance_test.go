package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

// This test drives the real setupRouter function to ensure the wired
// application accepts a registration and serves the issued token
func TestRegisterAndAuthenticateAcceptance(t *testing.T) {
	router := newTestRouter(t)
	assert.NotNil(t, router, "Router should be initialized")

	// Register an account
	body, _ := json.Marshal(map[string]interface{}{
		"name":     "Acceptance User",
		"email":    "acceptance@example.com",
		"password": "password123",
	})
	req, _ := http.NewRequest(http.MethodPost, "/api/v1/auth/register", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)

	var response map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	token := response["data"].(map[string]interface{})["token"].(string)
	assert.NotEmpty(t, token)

	// Use the token against the profile endpoint
	req, _ = http.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "acceptance@example.com")
}
