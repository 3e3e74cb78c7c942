package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"www.github.com/Wanderer0074348/ModelMux/src/cache"
	"www.github.com/Wanderer0074348/ModelMux/src/config"
	"www.github.com/Wanderer0074348/ModelMux/src/handlers"
	"www.github.com/Wanderer0074348/ModelMux/src/inference"
	"www.github.com/Wanderer0074348/ModelMux/src/middleware"
	"www.github.com/Wanderer0074348/ModelMux/src/providers"
	"www.github.com/Wanderer0074348/ModelMux/src/registry"
)

func init() {

	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  No .env file found, using system environment variables")
	} else {
		log.Println("✅ Loaded .env file")
	}
}

func main() {

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("❌ Failed to load config: %v", err)
	}

	log.Printf("✓ Config loaded successfully")

	redisCache, err := cache.NewRedisCache(&cfg.Redis)
	if err != nil {
		log.Fatalf("Failed to initialize Redis: %v", err)
	}
	defer redisCache.Close()
	log.Printf("✓ Redis connected")

	modelRegistry, err := registry.NewModelRegistry(cfg.Models)
	if err != nil {
		log.Fatalf("Failed to build model registry: %v", err)
	}
	log.Printf("✓ Model registry ready with %d models across %d providers", len(modelRegistry.All()), len(modelRegistry.Providers()))
	for _, desc := range modelRegistry.All() {
		log.Printf("  - %s (priority: %.1f)", desc.Key(), desc.Priority)
	}

	clients, err := providers.BuildClients(cfg.Providers, modelRegistry.All())
	if err != nil {
		log.Fatalf("Failed to initialize provider clients: %v", err)
	}
	log.Printf("✓ Provider clients ready: %s", strings.Join(modelRegistry.Providers(), ", "))

	engine, err := inference.NewEngine(&cfg.Routing, modelRegistry, clients)
	if err != nil {
		log.Fatalf("Failed to initialize routing engine: %v", err)
	}
	engine.SetCache(redisCache)
	log.Printf("✓ Routing engine initialized (%s strategy)", cfg.Routing.DefaultStrategy)

	if cfg.SemanticCache.Enabled {
		embedClient, ok := clients[cfg.SemanticCache.Provider]
		if !ok {
			log.Printf("⚠️  Semantic cache provider %q has no client, using standard cache only", cfg.SemanticCache.Provider)
		} else {
			semanticCache, err := cache.NewSemanticCache(&cfg.Redis, &cache.ProviderEmbedder{
				Client: embedClient,
				Model:  cfg.SemanticCache.Model,
			})
			if err != nil {
				log.Printf("⚠️  Failed to initialize semantic cache: %v, falling back to standard cache", err)
			} else {
				engine.SetSemanticCache(semanticCache, cfg.SemanticCache.SimilarityThreshold)
				log.Printf("✓ Semantic cache enabled (threshold: %.2f)", cfg.SemanticCache.SimilarityThreshold)
			}
		}
	} else {
		log.Println("ℹ️  Semantic cache disabled, using standard exact-match cache")
	}

	gin.SetMode(gin.ReleaseMode)
	r := gin.Default()

	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(corsMiddleware())

	routeHandler := handlers.NewRouteHandler(engine)

	v1 := r.Group("/api/v1")
	{
		v1.GET("/health", routeHandler.HealthCheck)
		v1.POST("/route", routeHandler.HandleRoute)
		v1.GET("/models", routeHandler.HandleModels)
		v1.GET("/metrics", routeHandler.HandleMetrics)
		v1.POST("/providers/preferred", routeHandler.HandlePreferredProvider)
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	log.Printf("🚀 ModelMux router running on port %s", cfg.Server.Port)
	log.Printf("📊 Default strategy: %s (ensemble size: %d)", cfg.Routing.DefaultStrategy, cfg.Routing.EnsembleSize)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exited")
}

func corsMiddleware() gin.HandlerFunc {
	// Get allowed origins from environment variable
	// Default to localhost for development if not set
	allowedOriginsEnv := os.Getenv("ALLOWED_ORIGINS")
	var allowedOrigins []string

	if allowedOriginsEnv != "" {
		// Split by comma for multiple origins
		allowedOrigins = strings.Split(allowedOriginsEnv, ",")
		for i := range allowedOrigins {
			allowedOrigins[i] = strings.TrimSpace(allowedOrigins[i])
		}
	} else {
		// Default for local development
		allowedOrigins = []string{
			"http://localhost:3000",
			"http://localhost:3001",
		}
	}

	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")

		// Allow requests without Origin header (e.g., health checks, curl)
		if origin == "" {
			c.Next()
			return
		}

		allowed := false
		for _, allowedOrigin := range allowedOrigins {
			if origin == allowedOrigin {
				allowed = true
				c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
				break
			}
		}

		// If origin is not allowed, don't set CORS headers
		if !allowed {
			c.AbortWithStatus(403)
			return
		}

		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, GET, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
