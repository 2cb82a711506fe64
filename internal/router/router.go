package router

import (
	"net/http"
	"path/filepath"

	"itumy-key-api/internal/handler"
	"itumy-key-api/internal/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
)

// Config holds the configuration for creating a router.
type Config struct {
	Handler       *handler.Handler
	UserHandler   *handler.UserHandler
	APIKeyHandler *handler.APIKeyHandler
	AdminHandler  *handler.AdminHandler
	AdminAuth     func(http.Handler) http.Handler
	StaticDir     string
}

// New creates and configures the HTTP router.
func New(cfg Config) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware stack (applies to ALL routes)
	r.Use(middleware.Recovery)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logging)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// PUBLIC routes (no auth required)
	if cfg.Handler != nil {
		r.Get("/api/status", cfg.Handler.Status)
	}

	if cfg.UserHandler != nil {
		r.Post("/create-user", cfg.UserHandler.CreateUser)
	}

	if cfg.APIKeyHandler != nil {
		r.Post("/checkapi", cfg.APIKeyHandler.CheckAPI)
	}

	if cfg.AdminHandler != nil {
		r.Post("/admin/register", cfg.AdminHandler.Register)
		r.Post("/admin/login", cfg.AdminHandler.Login)

		// PROTECTED admin routes (session token required)
		r.Group(func(r chi.Router) {
			if cfg.AdminAuth != nil {
				r.Use(cfg.AdminAuth)
			}

			r.Get("/admin/dashboard", cfg.AdminHandler.Dashboard)
			r.Get("/admin/stats", cfg.AdminHandler.Stats)
			r.Delete("/admin/user/{id}", cfg.AdminHandler.DeleteUser)
		})
	}

	// Static landing page and assets
	staticDir := cfg.StaticDir
	if staticDir == "" {
		staticDir = "./static"
	}
	fileServer := http.FileServer(http.Dir(staticDir))
	r.Handle("/static/*", http.StripPrefix("/static/", fileServer))
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, filepath.Join(staticDir, "landing.html"))
	})

	return r
}
