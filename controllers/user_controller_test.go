package controllers

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/helpdesk-kit/support-desk-api/models"
	"github.com/helpdesk-kit/support-desk-api/services"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func setupUserController(t *testing.T) (*gorm.DB, *UserController) {
	t.Helper()

	db := setupTestDB(t)
	return db, NewUserController(services.NewUserService(db))
}

func TestListUsersEndpoint(t *testing.T) {
	db, ctl := setupUserController(t)
	seedUser(t, db, "Alice", "alice@example.com", models.RoleClient)
	seedUser(t, db, "Bob", "bob@example.com", models.RoleSupport)
	admin := seedUser(t, db, "Admin", "admin@example.com", models.RoleAdmin)

	router := setupTestRouter()
	router.GET("/users", asUser(admin), ctl.List)

	w, response := doJSON(t, router, http.MethodGet, "/users", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	data := response["data"].([]interface{})
	assert.Len(t, data, 3)

	first := data[0].(map[string]interface{})
	assert.Equal(t, "alice@example.com", first["email"])
	role := first["role"].(map[string]interface{})
	assert.Equal(t, "client", role["name"])

	// Password hashes never leave the API
	_, hasHash := first["password_hash"]
	assert.False(t, hasHash)
}

func TestListRolesEndpoint(t *testing.T) {
	db, ctl := setupUserController(t)
	admin := seedUser(t, db, "Admin", "admin@example.com", models.RoleAdmin)

	router := setupTestRouter()
	router.GET("/roles", asUser(admin), ctl.Roles)

	w, response := doJSON(t, router, http.MethodGet, "/roles", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	data := response["data"].([]interface{})
	assert.Len(t, data, 3)

	names := make([]string, 0, len(data))
	for _, item := range data {
		names = append(names, item.(map[string]interface{})["name"].(string))
	}
	assert.ElementsMatch(t, []string{"client", "support", "admin"}, names)
}

func TestUpdateUserRoleEndpoint(t *testing.T) {
	db, ctl := setupUserController(t)
	user := seedUser(t, db, "Alice", "alice@example.com", models.RoleClient)
	admin := seedUser(t, db, "Admin", "admin@example.com", models.RoleAdmin)

	var supportRole models.Role
	assert.NoError(t, db.Where("name = ?", "support").First(&supportRole).Error)

	router := setupTestRouter()
	router.PATCH("/users/:id/role", asUser(admin), ctl.UpdateRole)

	t.Run("Successfully promote a client to support", func(t *testing.T) {
		w, response := doJSON(t, router, http.MethodPatch, fmt.Sprintf("/users/%d/role", user.ID),
			map[string]interface{}{"role_id": supportRole.ID})

		assert.Equal(t, http.StatusOK, w.Code)
		data := response["data"].(map[string]interface{})
		assert.Equal(t, float64(supportRole.ID), data["role_id"])
		role := data["role"].(map[string]interface{})
		assert.Equal(t, "support", role["name"])
	})

	t.Run("Unknown role id is rejected", func(t *testing.T) {
		w, response := doJSON(t, router, http.MethodPatch, fmt.Sprintf("/users/%d/role", user.ID),
			map[string]interface{}{"role_id": 9999})

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "UNKNOWN_ROLE", errorCode(t, response))
	})

	t.Run("Unknown user is 404", func(t *testing.T) {
		w, response := doJSON(t, router, http.MethodPatch, "/users/9999/role",
			map[string]interface{}{"role_id": supportRole.ID})

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "USER_NOT_FOUND", errorCode(t, response))
	})

	t.Run("Missing role_id is rejected", func(t *testing.T) {
		w, response := doJSON(t, router, http.MethodPatch, fmt.Sprintf("/users/%d/role", user.ID),
			map[string]interface{}{})

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "VALIDATION_ERROR", errorCode(t, response))
	})

	t.Run("Non-numeric user id is rejected", func(t *testing.T) {
		w, response := doJSON(t, router, http.MethodPatch, "/users/abc/role",
			map[string]interface{}{"role_id": supportRole.ID})

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "INVALID_REQUEST", errorCode(t, response))
	})
}
