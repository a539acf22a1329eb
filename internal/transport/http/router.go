package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"petlovers/internal/handler"
	"petlovers/internal/httputil"
	authmw "petlovers/internal/transport/http/middleware"
)

// RouterConfig holds the dependencies needed to create routes
type RouterConfig struct {
	AuthHandler   *handler.AuthHandler
	PostHandler   *handler.PostHandler
	TokenVerifier authmw.TokenVerifier
}

// NewRouter creates and configures a new Chi router with all route groups
func NewRouter(cfg RouterConfig) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)

	// Health check endpoint (useful for deployment/monitoring)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteJSON(w, 200, map[string]string{"status": "ok"})
	})

	requireAuth := authmw.AuthMiddleware(cfg.TokenVerifier)

	r.Route("/auth", func(r chi.Router) {
		r.Post("/signup", cfg.AuthHandler.Signup)
		r.Post("/login", cfg.AuthHandler.Login)
		r.With(requireAuth).Get("/me", cfg.AuthHandler.Me)
	})

	r.Route("/pet-posts", func(r chi.Router) {
		// Public reads
		r.Get("/", cfg.PostHandler.List)
		r.Get("/{id}", cfg.PostHandler.GetByID)

		// Everything else requires authentication
		r.Group(func(r chi.Router) {
			r.Use(requireAuth)

			r.Get("/saved", cfg.PostHandler.ListSaved)
			r.Get("/user/{userId}", cfg.PostHandler.ListByUser)

			r.Post("/", cfg.PostHandler.Create)
			r.Put("/{id}", cfg.PostHandler.Update)
			r.Delete("/{id}", cfg.PostHandler.Delete)

			r.Post("/{id}/like", cfg.PostHandler.ToggleLike)
			r.Post("/{id}/comments", cfg.PostHandler.AddComment)
			r.Post("/{id}/save", cfg.PostHandler.ToggleSave)
			r.Delete("/unsave/{id}", cfg.PostHandler.Unsave)
		})
	})

	return r
}
