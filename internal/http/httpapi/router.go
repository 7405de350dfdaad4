package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"correctnow/internal/http/handlers"
	"correctnow/internal/middleware"
)

// Options carries the router-level dependencies that are not part of the
// handler App: cross-cutting middlewares configured in cmd/api.
type Options struct {
	JWTSecret      string
	AllowedOrigins []string
	AnonLimiter    *middleware.AnonLimiter
	CountryLookup  middleware.CountryLookup
}

func NewRouter(app *handlers.App, opts Options) http.Handler {
	r := chi.NewRouter()

	r.Use(
		chimw.RealIP,
		middleware.RequestID,
		chimw.Recoverer,
		middleware.Logger(app.Logger),
		middleware.CORS(opts.AllowedOrigins),
		middleware.Language(opts.CountryLookup),
		middleware.AuthOptional(opts.JWTSecret),
	)

	r.Get("/v1/healthz", app.Health)

	r.Route("/v1", func(r chi.Router) {
		r.With(opts.AnonLimiter.Middleware).Post("/check", app.Check)

		r.Route("/changes", func(r chi.Router) {
			r.Post("/apply", app.ApplyChange)
			r.Post("/apply-all", app.ApplyAllChanges)
		})

		r.With(middleware.AuthRequired(opts.JWTSecret)).Get("/quota", app.Quota)
	})

	return r
}
