package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/trace"

	"github.com/strubloid/neotalent-sub000/internal/auth"
	"github.com/strubloid/neotalent-sub000/internal/config"
	"github.com/strubloid/neotalent-sub000/internal/gateway"
	"github.com/strubloid/neotalent-sub000/internal/history"
	"github.com/strubloid/neotalent-sub000/internal/metrics"
	"github.com/strubloid/neotalent-sub000/internal/nutrition"
	"github.com/strubloid/neotalent-sub000/internal/users"

	_ "github.com/strubloid/neotalent-sub000/docs" // swagger docs
)

// @title Calorie Tracker API
// @version 1.0
// @description AI-powered calorie and nutrition estimation API
// @description
// @description Accepts free-text food descriptions and returns estimated calories and
// @description macronutrients, with per-session search history and cookie-based accounts.

// @contact.name API Support
// @contact.email support@strubloid.dev

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /api

func main() {
	// Initialize OpenTelemetry
	if err := initTracer(); err != nil {
		log.Fatalf("Failed to initialize tracer: %v", err)
	}

	cfg := config.Load()

	userStore, pool := buildUserStore(cfg)
	if pool != nil {
		defer pool.Close()
	}

	sessions := auth.NewMemorySessionStore(cfg.SessionTTL)
	histories := history.NewService(cfg.MaxHistoryPerSession)

	analysisMetrics, err := metrics.NewAnalysisMetrics()
	if err != nil {
		log.Fatalf("Failed to initialize metrics: %v", err)
	}

	chatClient := nutrition.NewChatClient(nutrition.ChatClientConfig{
		BaseURL: cfg.OpenAIBaseURL,
		APIKey:  cfg.OpenAIAPIKey,
		Model:   cfg.OpenAIModel,
		Timeout: cfg.OpenAITimeout,
	})
	if !chatClient.Configured() {
		log.Println("Warning: OPENAI_API_KEY is not set, analysis requests will fail")
	}
	nutritionService := nutrition.NewService(chatClient)

	authHandler := gateway.NewHandler(userStore, sessions, cfg.SessionCookieName, cfg.SessionTTL)
	nutritionHandler := gateway.NewNutritionHandler(
		nutritionService, histories, userStore, analysisMetrics, cfg.MaxFoodInputLength)

	// Setup Gin router
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(structuredLoggingMiddleware())
	router.Use(gateway.BodyLimit(cfg.MaxBodyBytes))
	router.Use(gateway.ErrorHandler(cfg.IsProduction()))
	router.Use(auth.LoadSession(sessions, cfg.SessionCookieName))

	// Health checks at the root for the platform probes
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})

	router.GET("/ready", func(c *gin.Context) {
		if pool != nil {
			if err := pool.Ping(c.Request.Context()); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{
					"status": "not ready",
					"error":  "database connection failed",
				})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	router.GET("/info", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"name":        "calorie-tracker-api",
			"version":     "1.0",
			"environment": cfg.Environment,
			"model":       cfg.OpenAIModel,
		})
	})

	// Swagger documentation (public)
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// API routes
	api := router.Group("/api")

	authGroup := api.Group("/auth")
	authGroup.POST("/register", authHandler.Register)
	authGroup.POST("/login", authHandler.Login)
	authGroup.POST("/logout", authHandler.Logout)
	authGroup.GET("/me", authHandler.Me)
	authGroup.GET("/status", authHandler.Status)
	authGroup.GET("/search-history", authHandler.GetSearchHistory)
	authGroup.POST("/search-history", authHandler.AddSearchHistory)
	authGroup.DELETE("/search-history", authHandler.ClearSearchHistory)
	authGroup.DELETE("/account", authHandler.DeleteAccount)

	nutritionGroup := api.Group("/nutrition")
	nutritionGroup.POST("/analyze", nutritionHandler.Analyze)
	nutritionGroup.GET("/test", nutritionHandler.Test)
	nutritionGroup.GET("/searches", nutritionHandler.ListSearches)
	nutritionGroup.GET("/searches/recent", nutritionHandler.RecentSearches)
	nutritionGroup.GET("/searches/:searchId", nutritionHandler.GetSearch)
	nutritionGroup.DELETE("/searches", nutritionHandler.ClearSearches)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second, // covers the synchronous LLM round trip
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Printf("Starting Calorie Tracker API server on port %s\n", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}

// buildUserStore connects to PostgreSQL when DATABASE_URL is set, falling
// back to the in-memory store for local development. The returned pool is
// nil for the in-memory case.
func buildUserStore(cfg *config.Config) (users.Store, *pgxpool.Pool) {
	if cfg.DatabaseURL == "" {
		log.Println("Warning: DATABASE_URL is not set, using in-memory user store")
		return users.NewMemoryStore(), nil
	}

	log.Println("Connecting to PostgreSQL database...")
	var pool *pgxpool.Pool
	var err error

	// Retry loop for the initial connection
	for i := 0; i < 10; i++ {
		pool, err = pgxpool.New(context.Background(), cfg.DatabaseURL)
		if err == nil {
			err = pool.Ping(context.Background())
			if err == nil {
				break
			}
		}
		log.Printf("Waiting for database... (attempt %d/10): %v", i+1, err)
		time.Sleep(3 * time.Second)
	}
	if err != nil {
		log.Fatalf("Failed to connect to database after retries: %v", err)
	}

	store := users.NewPostgresStore(pool)
	if err := store.EnsureSchema(context.Background()); err != nil {
		log.Fatalf("Failed to ensure database schema: %v", err)
	}

	log.Println("Connected to PostgreSQL database")
	return store, pool
}

// initTracer initializes OpenTelemetry tracing
func initTracer() error {
	exporter, err := stdouttrace.New(stdouttrace.WithPrettyPrint())
	if err != nil {
		return fmt.Errorf("failed to create stdout exporter: %w", err)
	}

	tp := trace.NewTracerProvider(
		trace.WithBatcher(exporter),
	)

	otel.SetTracerProvider(tp)

	return nil
}

// structuredLoggingMiddleware provides structured JSON logging for all requests
func structuredLoggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		latency := time.Since(start)
		userID, _ := c.Get("user_id")

		logEntry := map[string]interface{}{
			"timestamp":  time.Now().UTC().Format(time.RFC3339),
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"status":     c.Writer.Status(),
			"latency_ms": latency.Milliseconds(),
			"client_ip":  c.ClientIP(),
			"user_agent": c.Request.UserAgent(),
		}

		if userID != nil {
			logEntry["user_id"] = userID
		}

		if len(c.Errors) > 0 {
			logEntry["errors"] = c.Errors.String()
		}

		logJSON, _ := json.Marshal(logEntry)
		log.Println(string(logJSON))
	}
}
