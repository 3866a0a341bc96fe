package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/julianstephens/tracked/internal/constants"
	"github.com/julianstephens/tracked/internal/metrics"
)

// routes builds the router:
//   - GET /livez, /readyz, /metrics
//   - /api/v1/... behind bearer auth when a token is configured
func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(metrics.Middleware)

	r.Get("/livez", s.handleLive)
	r.Get("/readyz", s.handleReady)
	r.Handle("/metrics", metrics.Handler())

	r.Route("/api/v1", func(api chi.Router) {
		api.Use(middleware.Timeout(constants.RequestTimeout))
		api.Use(bearerAuth(s.opts.APIToken))

		api.Get("/ping", s.handlePing)
		api.Get("/month/{year}/{month}", s.handleMonth)

		api.Route("/trackers", func(tr chi.Router) {
			tr.Get("/", s.handleListTrackers)
			tr.Post("/", s.handleCreateTracker)
			tr.Post("/reorder", s.handleReorderTrackers)
			tr.Get("/suggested", s.handleSuggestedTrackers)
			tr.Post("/quick-add/{slug}", s.handleQuickAdd)
			tr.Get("/{id}", s.handleGetTracker)
			tr.Patch("/{id}", s.handleUpdateTracker)
			tr.Delete("/{id}", s.handleDeleteTracker)
		})

		api.Post("/entries", s.handleSaveEntry)

		api.Route("/insights", func(in chi.Router) {
			in.Get("/latest", s.handleLatestInsight)
			in.Get("/history", s.handleInsightHistory)
			in.Post("/generate", s.handleGenerate)
			in.Get("/generate/status/{taskID}", s.handleGenerateStatus)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "Not found")
	})
	return r
}
