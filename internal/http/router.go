package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/pcaldeira/attest/internal/http/auth"
	"github.com/pcaldeira/attest/internal/http/importcsv"
	"github.com/pcaldeira/attest/internal/http/income"
)

func New(
	incomeV1 *income.Handler,
	importV1 *importcsv.Handler,
	authSecret string,
) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
	}))

	router.Route("/api/v1", func(r chi.Router) {
		r.Use(auth.Middleware(authSecret))

		r.Route("/cases", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			incomeV1.CaseRoutes(r)
		})

		r.Route("/sources", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			incomeV1.SourceRoutes(r)
		})

		r.Route("/import", importV1.Routes)
	})

	return router
}
