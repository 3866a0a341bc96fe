package server

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/julianstephens/tracked/internal/models"
	"github.com/julianstephens/tracked/internal/validation"
)

const trackerNotFound = "Tracker not found"

func (s *Server) handleListTrackers(w http.ResponseWriter, r *http.Request) {
	includeInactive, _ := strconv.ParseBool(r.URL.Query().Get("include_inactive"))
	trackers, err := s.store.ListTrackers(r.Context(), includeInactive)
	if err != nil {
		writeStoreError(w, err, trackerNotFound)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"trackers": trackers})
}

func (s *Server) handleGetTracker(w http.ResponseWriter, r *http.Request) {
	t, err := s.store.GetTracker(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeStoreError(w, err, trackerNotFound)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// trackerRequest is the create body. IsActive is a pointer so an omitted
// field means active.
type trackerRequest struct {
	Name     string             `json:"name"`
	Type     models.TrackerType `json:"tracker_type"`
	Unit     string             `json:"unit"`
	IsActive *bool              `json:"is_active"`
	MinValue *float64           `json:"min_value"`
	MaxValue *float64           `json:"max_value"`
}

func (s *Server) handleCreateTracker(w http.ResponseWriter, r *http.Request) {
	var req trackerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	t := models.Tracker{
		Name:     req.Name,
		Type:     req.Type,
		Unit:     req.Unit,
		IsActive: req.IsActive == nil || *req.IsActive,
		MinValue: req.MinValue,
		MaxValue: req.MaxValue,
	}
	s.createTracker(w, r, t)
}

func (s *Server) createTracker(w http.ResponseWriter, r *http.Request, t models.Tracker) {
	if err := validation.NormalizeTracker(&t); err != nil {
		writeValidationError(w, err)
		return
	}
	created, err := s.store.CreateTracker(r.Context(), t)
	if err != nil {
		writeStoreError(w, err, trackerNotFound)
		return
	}
	s.cache.InvalidateAll(r.Context())
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleUpdateTracker(w http.ResponseWriter, r *http.Request) {
	var patch models.TrackerPatch
	if err := decodeJSON(w, r, &patch); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	t, err := s.store.GetTracker(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeStoreError(w, err, trackerNotFound)
		return
	}
	patch.Apply(&t)
	if err := validation.NormalizeTracker(&t); err != nil {
		writeValidationError(w, err)
		return
	}
	if err := s.store.UpdateTracker(r.Context(), t); err != nil {
		writeStoreError(w, err, trackerNotFound)
		return
	}
	s.cache.InvalidateAll(r.Context())
	writeJSON(w, http.StatusOK, t)
}

func (s *Server) handleDeleteTracker(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteTracker(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeStoreError(w, err, trackerNotFound)
		return
	}
	s.cache.InvalidateAll(r.Context())
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleReorderTrackers(w http.ResponseWriter, r *http.Request) {
	var req struct {
		IDs []string `json:"ids"`
	}
	if err := decodeJSON(w, r, &req); err != nil || len(req.IDs) == 0 {
		writeError(w, http.StatusBadRequest, "ids must be a non-empty list")
		return
	}
	if err := s.store.ReorderTrackers(r.Context(), req.IDs); err != nil {
		writeStoreError(w, err, trackerNotFound)
		return
	}
	s.cache.InvalidateAll(r.Context())
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSuggestedTrackers(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"suggested": models.SuggestedTrackers})
}

func (s *Server) handleQuickAdd(w http.ResponseWriter, r *http.Request) {
	suggestion, ok := models.FindSuggestedTracker(chi.URLParam(r, "slug"))
	if !ok {
		writeError(w, http.StatusNotFound, "Unknown suggested tracker")
		return
	}
	s.createTracker(w, r, suggestion.Tracker())
}

func writeValidationError(w http.ResponseWriter, err error) {
	var fe *validation.FieldError
	if errors.As(err, &fe) {
		writeError(w, http.StatusBadRequest, fe.PublicMessage())
		return
	}
	writeError(w, http.StatusBadRequest, err.Error())
}
