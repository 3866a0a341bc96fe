package server

import (
	"net/http"
	"time"

	"github.com/julianstephens/tracked/internal/metrics"
	"github.com/julianstephens/tracked/internal/models"
	"github.com/julianstephens/tracked/internal/monthview"
	"github.com/julianstephens/tracked/internal/utils"
)

func (s *Server) handleMonth(w http.ResponseWriter, r *http.Request) {
	year, okY := intParam(r, "year")
	month, okM := intParam(r, "month")
	if !okY || !okM || utils.ValidateMonth(year, month) != nil {
		writeError(w, http.StatusBadRequest, "Invalid year or month")
		return
	}

	if view, ok := s.cache.Get(r.Context(), year, month); ok {
		metrics.CacheRequests.WithLabelValues("hit").Inc()
		writeJSON(w, http.StatusOK, view)
		return
	}
	metrics.CacheRequests.WithLabelValues("miss").Inc()

	view, err := s.buildMonth(r, year, month)
	if err != nil {
		writeStoreError(w, err, "Not found")
		return
	}
	s.cache.Set(r.Context(), view)
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) buildMonth(r *http.Request, year, month int) (models.MonthView, error) {
	trackers, err := s.store.ListTrackers(r.Context(), false)
	if err != nil {
		return models.MonthView{}, err
	}
	start, end := utils.MonthBounds(year, time.Month(month))
	entries, err := s.store.EntriesBetween(r.Context(), start, end)
	if err != nil {
		return models.MonthView{}, err
	}
	return monthview.Build(year, month, trackers, entries, s.today())
}
