package server

import (
	"errors"
	"net/http"

	"github.com/julianstephens/tracked/internal/models"
	"github.com/julianstephens/tracked/internal/storage"
	"github.com/julianstephens/tracked/internal/utils"
	"github.com/julianstephens/tracked/internal/validation"
)

type entryResponse struct {
	Success bool          `json:"success"`
	Deleted bool          `json:"deleted,omitempty"`
	Entry   *models.Entry `json:"entry,omitempty"`
	Error   string        `json:"error,omitempty"`
}

func entryFailure(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, entryResponse{Success: false, Error: message})
}

// handleSaveEntry stores, replaces or deletes one tracker's value for a day.
// Only the value field belonging to the tracker's type is kept.
func (s *Server) handleSaveEntry(w http.ResponseWriter, r *http.Request) {
	var p models.EntryPayload
	if err := decodeJSON(w, r, &p); err != nil {
		entryFailure(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	tracker, err := s.store.GetTracker(r.Context(), p.TrackerID)
	if errors.Is(err, storage.ErrNotFound) {
		entryFailure(w, http.StatusNotFound, "Invalid tracker")
		return
	}
	if err != nil {
		writeStoreError(w, err, "Invalid tracker")
		return
	}

	if err := validation.ValidateDate(p.Date); err != nil {
		entryFailure(w, http.StatusBadRequest, "Invalid date format")
		return
	}

	ctx := r.Context()
	if p.DeleteEntry {
		if _, err := s.store.DeleteEntry(ctx, tracker.ID, p.Date); err != nil {
			writeStoreError(w, err, "Invalid tracker")
			return
		}
		s.invalidateDate(r, p.Date)
		writeJSON(w, http.StatusOK, entryResponse{Success: true, Deleted: true})
		return
	}

	if err := validation.ValidateEntry(tracker, p.ValueFields); err != nil {
		var fe *validation.FieldError
		if errors.As(err, &fe) {
			entryFailure(w, http.StatusBadRequest, fe.PublicMessage())
			return
		}
		entryFailure(w, http.StatusBadRequest, err.Error())
		return
	}

	saved, err := s.store.SaveEntry(ctx, models.Entry{
		TrackerID:   tracker.ID,
		Date:        p.Date,
		ValueFields: models.FieldsFromValue(p.Value(tracker.Type)),
	})
	if err != nil {
		writeStoreError(w, err, "Invalid tracker")
		return
	}
	s.invalidateDate(r, p.Date)
	writeJSON(w, http.StatusOK, entryResponse{Success: true, Entry: &saved})
}

func (s *Server) invalidateDate(r *http.Request, date string) {
	d, err := utils.ParseDate(date)
	if err != nil {
		return
	}
	s.cache.Invalidate(r.Context(), d.Year(), int(d.Month()))
}
