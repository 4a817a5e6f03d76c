package testutil

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/helpdesk-kit/support-desk-api/config"
	"github.com/helpdesk-kit/support-desk-api/controllers"
	"github.com/helpdesk-kit/support-desk-api/middleware"
	"github.com/helpdesk-kit/support-desk-api/models"
	"github.com/helpdesk-kit/support-desk-api/services"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// TestConfig returns a configuration suitable for in-process API testing
func TestConfig() *config.Config {
	return &config.Config{
		GoEnv:       "test",
		Port:        "8080",
		JWTSecret:   "integration-test-secret",
		JWTTTL:      time.Hour,
		FrontendURL: "http://localhost:3001",
	}
}

// API bundles a fully wired in-process application for black-box tests
type API struct {
	Router   *gin.Engine
	DB       *gorm.DB
	Cfg      *config.Config
	Mailer   *services.MockMailer
	Suggest  *services.MockSuggester
	AuthSvc  *services.AuthService
	UserSvc  *services.UserService
	TicketSv *services.TicketService
}

// NewAPI builds the application against an in-memory database with mock
// mail, storage and suggestion backends. The route table mirrors the one
// the server binary registers, with real token middleware in front.
func NewAPI(t *testing.T) *API {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	if err := config.MigrateDatabase(db); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	cfg := TestConfig()
	mailer := services.NewMockMailer()
	suggester := &services.MockSuggester{
		Suggestions: []services.Suggestion{
			{ID: 1, Text: "First draft reply."},
			{ID: 2, Text: "Second draft reply."},
			{ID: 3, Text: "Third draft reply."},
		},
	}

	authService := services.NewAuthService(db, cfg)
	ticketService := services.NewTicketService(db)
	responseService := services.NewResponseService(db)
	userService := services.NewUserService(db)
	notifier := services.NewNotificationService(db, mailer)
	attachments := services.NewAttachmentService(services.NewMockS3Service())

	authCtl := controllers.NewAuthController(authService)
	ticketCtl := controllers.NewTicketController(ticketService, notifier, attachments)
	responseCtl := controllers.NewResponseController(responseService, ticketService, notifier)
	suggestionCtl := controllers.NewSuggestionController(ticketService, suggester)
	attachmentCtl := controllers.NewAttachmentController(ticketService, attachments)
	userCtl := controllers.NewUserController(userService)

	requireAuth := middleware.AuthMiddleware(authService)

	router := gin.New()
	v1 := router.Group("/api/v1")
	{
		auth := v1.Group("/auth")
		{
			auth.POST("/register", authCtl.Register)
			auth.POST("/login", authCtl.Login)
			auth.GET("/me", requireAuth, authCtl.Me)
		}

		tickets := v1.Group("/tickets", requireAuth)
		{
			tickets.POST("", ticketCtl.Create)
			tickets.GET("", ticketCtl.List)
			tickets.GET("/stats", middleware.RequireRole(models.RoleAdmin), ticketCtl.Stats)
			tickets.GET("/:id", ticketCtl.Get)
			tickets.PATCH("/:id/assign", middleware.RequireRole(models.RoleSupport, models.RoleAdmin), ticketCtl.Claim)
			tickets.PATCH("/:id/status", middleware.RequireRole(models.RoleSupport, models.RoleAdmin), ticketCtl.UpdateStatus)
			tickets.POST("/:id/responses", responseCtl.Create)
			tickets.GET("/:id/responses", responseCtl.List)
			tickets.GET("/:id/suggestions", middleware.RequireRole(models.RoleSupport, models.RoleAdmin), suggestionCtl.Get)
			tickets.POST("/:id/attachment", attachmentCtl.Upload)
		}

		admin := v1.Group("", requireAuth, middleware.RequireRole(models.RoleAdmin))
		{
			admin.GET("/users", userCtl.List)
			admin.GET("/roles", userCtl.Roles)
			admin.PATCH("/users/:id/role", userCtl.UpdateRole)
		}
	}

	return &API{
		Router:   router,
		DB:       db,
		Cfg:      cfg,
		Mailer:   mailer,
		Suggest:  suggester,
		AuthSvc:  authService,
		UserSvc:  userService,
		TicketSv: ticketService,
	}
}

// Do performs one JSON request against the in-process API. An empty token
// sends the request unauthenticated.
func (a *API) Do(t *testing.T, method, path, token string, body interface{}) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("Failed to encode request body: %v", err)
		}
	}

	req, err := http.NewRequest(method, path, &buf)
	if err != nil {
		t.Fatalf("Failed to create request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	a.Router.ServeHTTP(w, req)

	var response map[string]interface{}
	if len(w.Body.Bytes()) > 0 {
		if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
			t.Fatalf("Failed to decode response %q: %v", w.Body.String(), err)
		}
	}
	return w, response
}

// Register creates an account through the API and returns its token
func (a *API) Register(t *testing.T, name, email, password string) string {
	t.Helper()

	w, response := a.Do(t, http.MethodPost, "/api/v1/auth/register", "", map[string]interface{}{
		"name":     name,
		"email":    email,
		"password": password,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("Registration failed with status %d: %s", w.Code, w.Body.String())
	}

	data := response["data"].(map[string]interface{})
	return data["token"].(string)
}

// RegisterAs creates an account, moves it to the given role directly in
// the database, and returns a token minted after the role change
func (a *API) RegisterAs(t *testing.T, name, email, password string, role models.RoleName) string {
	t.Helper()

	a.Register(t, name, email, password)

	var user models.User
	if err := a.DB.Where("email = ?", email).First(&user).Error; err != nil {
		t.Fatalf("Failed to look up registered user: %v", err)
	}
	var r models.Role
	if err := a.DB.Where("name = ?", string(role)).First(&r).Error; err != nil {
		t.Fatalf("Failed to look up role %q: %v", role, err)
	}
	if _, err := a.UserSvc.UpdateRole(user.ID, r.ID); err != nil {
		t.Fatalf("Failed to change role: %v", err)
	}

	// Log in again so the token carries the new role
	w, response := a.Do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]interface{}{
		"email":    email,
		"password": password,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("Login failed with status %d: %s", w.Code, w.Body.String())
	}
	data := response["data"].(map[string]interface{})
	return data["token"].(string)
}
