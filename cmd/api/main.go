// main.go
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
	"github.com/joho/godotenv"

	"github.com/taskhive/taskhive-backend/internal/api/handlers"
	"github.com/taskhive/taskhive-backend/internal/api/middleware"
	"github.com/taskhive/taskhive-backend/internal/config"
	"github.com/taskhive/taskhive-backend/internal/cron"
	"github.com/taskhive/taskhive-backend/internal/db"
	"github.com/taskhive/taskhive-backend/internal/repository"
	"github.com/taskhive/taskhive-backend/internal/seed"
	"github.com/taskhive/taskhive-backend/internal/service"
	"github.com/taskhive/taskhive-backend/internal/storage"
)

func main() {
	// ============================================
	// Load environment variables
	// ============================================
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := config.Load()

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// ============================================
	// Run Database Migrations
	// ============================================
	log.Println("[Main] Running database migrations...")
	migrationsPath := "./internal/db/migrations"
	if err := db.RunMigrations(cfg.DatabaseURL, migrationsPath); err != nil {
		log.Fatalf("[Main] Migration failed: %v", err)
	}
	log.Println("[Main] Database migrations completed")

	// ============================================
	// Initialize PostgreSQL
	// ============================================
	ctx := context.Background()

	pg, err := db.NewPostgres(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("[Main] Failed to connect to PostgreSQL: %v", err)
	}
	defer pg.Close()
	log.Println("[Main] Connected to PostgreSQL")

	repos := repository.NewPgRepositories(pg.Pool, pg.DB)

	// ============================================
	// Initialize Redis (optional)
	// ============================================
	var redisDB *db.RedisDB
	if cfg.RedisURL != "" {
		redisDB, err = db.NewRedisDB(cfg.RedisURL)
		if err != nil {
			log.Printf("[Main] Failed to connect to Redis: %v (continuing without cache)", err)
			redisDB = nil
		} else {
			defer redisDB.Close()
			log.Println("[Main] Redis cache enabled")
		}
	}

	// ============================================
	// Initialize File Storage
	// ============================================
	files, err := storage.NewLocalStore(cfg.UploadDir)
	if err != nil {
		log.Fatalf("[Main] Failed to initialize file storage: %v", err)
	}

	// ============================================
	// Seed Data (for development)
	// ============================================
	if cfg.Environment != "production" {
		seed.SeedData(repos)
	}

	// ============================================
	// Initialize Services and Handlers
	// ============================================
	services := service.NewServices(&service.ServiceDeps{
		Config: cfg,
		Repos:  repos,
		Cache:  redisDB,
		Files:  files,
	})

	h := handlers.NewHandlers(cfg, services)

	// ============================================
	// Initialize Cron Scheduler
	// ============================================
	scheduler := cron.NewScheduler(repos.TaskRepo, repos.ProjectRepo, redisDB)
	scheduler.Start()
	defer scheduler.Stop()

	// ============================================
	// Create Gin Router
	// ============================================
	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000", "http://localhost:5173"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Health check
	r.GET("/health", func(c *gin.Context) {
		cache := "disabled"
		if redisDB != nil {
			cache = "connected"
		}
		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"timestamp": time.Now(),
			"database":  "connected",
			"cache":     cache,
		})
	})

	api := r.Group("/api")
	{
		// Public routes
		auth := api.Group("/auth")
		{
			auth.POST("/register", h.Auth.Register)
			auth.POST("/login", h.Auth.Login)
			auth.POST("/refresh", h.Auth.Refresh)
			auth.POST("/logout", h.Auth.Logout)
		}

		// Protected routes
		protected := api.Group("")
		protected.Use(middleware.AuthMiddleware(services.Auth))
		{
			projects := protected.Group("/projects")
			{
				projects.GET("", h.Project.List)
				projects.POST("", h.Project.Create)
				projects.GET("/:id", h.Project.GetByID)
				projects.PUT("/:id", h.Project.Update)
				projects.DELETE("/:id", h.Project.Delete)
				projects.GET("/:id/stats", h.Project.Stats)
				projects.GET("/:id/tasks", h.Project.ListTasks)

				projects.GET("/:id/members", h.Project.ListMembers)
				projects.POST("/:id/members", h.Project.AddMember)
				projects.PUT("/:id/members/:userId", h.Project.UpdateMemberRole)
				projects.DELETE("/:id/members/:userId", h.Project.RemoveMember)
			}

			tasks := protected.Group("/tasks")
			{
				tasks.POST("", h.Task.Create)
				tasks.GET("/my", h.Task.ListMine)
				tasks.GET("/:id", h.Task.GetByID)
				tasks.PUT("/:id", h.Task.Update)
				tasks.PATCH("/:id/status", h.Task.Transition)
				tasks.DELETE("/:id", h.Task.Delete)

				tasks.GET("/:id/comments", h.Comment.ListByTask)
				tasks.POST("/:id/comments", h.Comment.Create)
				tasks.GET("/:id/attachments", h.Comment.ListTaskAttachments)
				tasks.POST("/:id/attachments", h.Comment.UploadTaskAttachment)
			}

			comments := protected.Group("/comments")
			{
				comments.PUT("/:id", h.Comment.Update)
				comments.DELETE("/:id", h.Comment.Delete)
			}

			attachments := protected.Group("/attachments")
			{
				attachments.DELETE("/:id", h.Comment.DeleteAttachment)
			}
		}
	}

	// ============================================
	// Start Server with Graceful Shutdown
	// ============================================
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		log.Printf("[Main] Server listening on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("[Main] Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("[Main] Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("[Main] Forced shutdown: %v", err)
	}
	log.Println("[Main] Server exited")
}
