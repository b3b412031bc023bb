package api

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/Thanat-Wut/worddee-api/internal/config"
)

// RouterOptions configures the cross-cutting middleware.
type RouterOptions struct {
	AdminAPIKey string
	CORS        config.CORSConfig
	// Limiter throttles the admin routes; nil disables rate limiting.
	Limiter Limiter
	Logger  *slog.Logger
}

// NewRouter creates and configures the Chi router
func NewRouter(h *Handler, opts RouterOptions) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(RequestID)
	r.Use(Recovery(opts.Logger))
	r.Use(Logger(opts.Logger))
	r.Use(CORS(opts.CORS))

	r.Get("/", h.ServiceInfoHandler)
	r.Get("/health", h.HealthCheck)

	r.Route("/api", func(r chi.Router) {
		r.Get("/random", h.GetRandomWord)

		r.Route("/words", func(r chi.Router) {
			r.Get("/", h.ListWords)
			// Before /{id} to avoid conflicts
			r.Get("/export", h.ExportWords)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", h.GetWord)
				r.Get("/definition", h.GetWordDefinition)
			})
		})

		r.Route("/admin/words", func(r chi.Router) {
			if opts.Limiter != nil {
				r.Use(RateLimit(opts.Limiter, opts.Logger))
			}
			r.Use(APIKeyAuth(opts.AdminAPIKey, opts.Logger))

			r.Post("/", h.CreateWord)
			r.Post("/import", h.ImportWords)
			r.Put("/{id}", h.UpdateWord)
			r.Delete("/{id}", h.DeleteWord)
		})
	})

	return r
}
