package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/helpdesk-kit/support-desk-api/config"
	"github.com/helpdesk-kit/support-desk-api/controllers"
	"github.com/helpdesk-kit/support-desk-api/middleware"
	"github.com/helpdesk-kit/support-desk-api/models"
	"github.com/helpdesk-kit/support-desk-api/services"
)

func main() {
	log.Println("Starting Support Desk API server...")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := config.ConnectDatabase(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := config.MigrateDatabase(db); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}
	log.Println("Database migration completed successfully")

	var s3 services.S3Interface
	s3, err = services.NewS3Service(cfg)
	if err != nil {
		log.Printf("warning: S3 unavailable, attachments disabled: %v", err)
		s3 = nil
	}

	router := setupRouter(cfg, db, services.NewSMTPMailer(cfg), s3, services.NewOpenAISuggester(cfg))

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Printf("Server is running on http://localhost:%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Block until an interrupt, then drain in-flight requests
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	if err := config.CloseDatabase(db); err != nil {
		log.Printf("Failed to close database: %v", err)
	}
	log.Println("Server exited")
}

// setupRouter wires services, controllers and routes into a gin engine.
// The mailer, S3 backend and suggester are injected so tests can swap in mocks.
func setupRouter(cfg *config.Config, db *gorm.DB, mailer services.Mailer, s3 services.S3Interface, suggester services.Suggester) *gin.Engine {
	router := gin.Default()

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{cfg.FrontendURL}
	corsConfig.AllowHeaders = append(corsConfig.AllowHeaders, "Authorization")
	router.Use(cors.New(corsConfig))

	authService := services.NewAuthService(db, cfg)
	ticketService := services.NewTicketService(db)
	responseService := services.NewResponseService(db)
	userService := services.NewUserService(db)
	notifier := services.NewNotificationService(db, mailer)

	var attachments services.AttachmentService
	if s3 != nil {
		attachments = services.NewAttachmentService(s3)
	}

	authCtl := controllers.NewAuthController(authService)
	ticketCtl := controllers.NewTicketController(ticketService, notifier, attachments)
	responseCtl := controllers.NewResponseController(responseService, ticketService, notifier)
	suggestionCtl := controllers.NewSuggestionController(ticketService, suggester)
	attachmentCtl := controllers.NewAttachmentController(ticketService, attachments)
	userCtl := controllers.NewUserController(userService)

	requireAuth := middleware.AuthMiddleware(authService)

	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", healthCheck)

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

	return router
}

// healthCheck handles the health check endpoint
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Support Desk API is running",
	})
}
