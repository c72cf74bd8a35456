package delivery

import (
	"time"

	"github.com/Vovarama1992/go-utils/httputil"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
)

func RegisterRoutes(r chi.Router, h *Handler) {
	r.Route("/", func(pr chi.Router) {
		pr.Use(httputil.RecoverMiddleware)

		// --- пайплайн ---
		pr.With(httprate.LimitByIP(10, time.Minute)).
			Post("/translate", h.Translate)

		// --- справочные ---
		pr.Get("/languages", h.Languages)
		pr.Get("/runs", h.ListRuns)
		pr.Get("/audio/{name}", h.Audio)
	})
}
