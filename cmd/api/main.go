package main

import (
	"context"
	"crypto/rand"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"itumy-key-api/internal/cache"
	"itumy-key-api/internal/config"
	"itumy-key-api/internal/handler"
	"itumy-key-api/internal/middleware"
	"itumy-key-api/internal/repository"
	"itumy-key-api/internal/router"
	"itumy-key-api/internal/service"

	_ "github.com/go-sql-driver/mysql"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("Starting itumy key API...")

	// Load configuration
	cfg := config.MustLoad()
	log.Printf("Environment: %s", cfg.App.Environment)

	// Initialize store based on config
	var (
		userKeyRepo repository.UserKeyRepository
		adminRepo   repository.AdminRepository
	)
	switch cfg.StoreDB.Type {
	case "sqlite":
		store, err := repository.NewSQLiteStore(cfg.StoreDB.Path)
		if err != nil {
			log.Fatalf("Failed to initialize SQLite: %v", err)
		}
		defer store.Close()
		userKeyRepo = store
		adminRepo = store
		log.Println("SQLite store initialized")
	default: // mysql
		db, err := sql.Open("mysql", cfg.Database.DSN())
		if err != nil {
			log.Fatalf("Failed to open MySQL: %v", err)
		}
		db.SetMaxOpenConns(10)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(5 * time.Minute)

		if err := db.Ping(); err != nil {
			log.Fatalf("MySQL ping failed: %v", err)
		}

		store, err := repository.NewMySQLStore(db)
		if err != nil {
			log.Fatalf("Failed to initialize MySQL store: %v", err)
		}
		defer store.Close()
		userKeyRepo = store
		adminRepo = store
		log.Println("MySQL store initialized")
	}

	// Session signing secret: never ship an insecure default. With no
	// configured secret, sessions do not survive a restart.
	secret := []byte(cfg.Auth.JWTSecret)
	if len(secret) == 0 {
		secret = make([]byte, 32)
		if _, err := rand.Read(secret); err != nil {
			log.Fatalf("Failed to generate session secret: %v", err)
		}
		log.Println("Warning: JWT_SECRET not set, using a random per-process secret")
	}

	// Initialize cache for the stats endpoint
	var statsCache cache.Cache
	if cfg.Cache.Type == "redis" {
		redisCache, err := cache.NewRedisCache(cache.RedisConfig{
			Addr:     cfg.Cache.RedisAddress(),
			Password: cfg.Cache.RedisPassword,
			DB:       cfg.Cache.RedisDB,
		})
		if err != nil {
			log.Printf("Warning: Redis connection failed, falling back to memory cache: %v", err)
			statsCache = cache.NewMemoryCache()
		} else {
			statsCache = redisCache
		}
	} else {
		statsCache = cache.NewMemoryCache()
	}
	defer statsCache.Close()

	// Initialize services
	keyService := service.NewKeyService(userKeyRepo, cfg.Keys, nil)
	sessionService := service.NewSessionService(secret, cfg.Auth.SessionTTL, nil)
	adminService := service.NewAdminService(adminRepo, sessionService, nil)
	statsService := service.NewStatsService(userKeyRepo, statsCache, cfg.Cache.TTL)

	// Initialize handlers
	healthHandler := handler.New(cfg.App.Version)
	userHandler := handler.NewUserHandler(keyService)
	apiKeyHandler := handler.NewAPIKeyHandler(keyService)
	adminHandler := handler.NewAdminHandler(adminService, keyService, statsService)

	// Create router
	r := router.New(router.Config{
		Handler:       healthHandler,
		UserHandler:   userHandler,
		APIKeyHandler: apiKeyHandler,
		AdminHandler:  adminHandler,
		AdminAuth:     middleware.NewAdminAuth(sessionService),
		StaticDir:     cfg.App.StaticDir,
	})

	// Create HTTP server
	srv := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server in goroutine
	go func() {
		log.Printf("Server listening on %s", cfg.Server.Address())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	log.Println("Server stopped")
}
