package controllers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/helpdesk-kit/support-desk-api/config"
	"github.com/helpdesk-kit/support-desk-api/middleware"
	"github.com/helpdesk-kit/support-desk-api/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}
	if err := config.MigrateDatabase(db); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}
	return db
}

func setupTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return gin.New()
}

// seedUser inserts a user holding one of the seeded roles
func seedUser(t *testing.T, db *gorm.DB, name, email string, role models.RoleName) models.User {
	t.Helper()

	var r models.Role
	if err := db.Where("name = ?", string(role)).First(&r).Error; err != nil {
		t.Fatalf("Failed to look up role %q: %v", role, err)
	}

	user := models.User{
		Name:         name,
		Email:        email,
		PasswordHash: "$2a$10$test.hash.not.a.real.password.hash",
		RoleID:       r.ID,
		Role:         r,
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}
	return user
}

// asUser injects an authenticated identity, standing in for the real
// token middleware so handler tests don't mint JWTs
func asUser(user models.User) gin.HandlerFunc {
	return func(c *gin.Context) {
		middleware.SetAuthUser(c, &middleware.AuthUser{
			ID:    user.ID,
			Name:  user.Name,
			Email: user.Email,
			Role:  user.RoleName(),
		})
		c.Next()
	}
}

// doJSON performs a request with an optional JSON body and decodes the
// JSON envelope from the response
func doJSON(t *testing.T, router *gin.Engine, method, path string, body interface{}) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()

	var reader *bytes.Buffer
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("Failed to encode request body: %v", err)
		}
		reader = bytes.NewBuffer(encoded)
	} else {
		reader = bytes.NewBuffer(nil)
	}

	req, err := http.NewRequest(method, path, reader)
	if err != nil {
		t.Fatalf("Failed to create request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var response map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to decode response body %q: %v", w.Body.String(), err)
	}
	return w, response
}

// errorCode extracts error.code from a decoded envelope
func errorCode(t *testing.T, response map[string]interface{}) string {
	t.Helper()

	errorData, ok := response["error"].(map[string]interface{})
	if !ok {
		t.Fatalf("Response has no error object: %v", response)
	}
	code, _ := errorData["code"].(string)
	return code
}
