package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/julianstephens/tracked/internal/insights"
	"github.com/julianstephens/tracked/internal/models"
)

var _ insights.Backend = (*Client)(nil)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(srv.URL+"/", "secret-token")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestClientSendsBearerToken(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer secret-token" {
			t.Errorf("Authorization = %q", got)
		}
		if r.URL.Path != "/api/v1/month/2024/3" {
			t.Errorf("path = %q", r.URL.Path)
		}
		writeJSON(w, http.StatusOK, models.MonthView{Year: 2024, Month: 3, TotalDays: 31})
	})

	view, err := c.FetchMonthData(context.Background(), 2024, 3)
	if err != nil {
		t.Fatalf("FetchMonthData() error = %v", err)
	}
	if view.TotalDays != 31 {
		t.Errorf("TotalDays = %d, want 31", view.TotalDays)
	}
}

func TestSaveEntry(t *testing.T) {
	t.Run("stored", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			var p models.EntryPayload
			if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
				t.Fatalf("decode payload: %v", err)
			}
			if p.RatingValue == nil || *p.RatingValue != 4 {
				t.Errorf("rating_value = %v", p.RatingValue)
			}
			writeJSON(w, http.StatusOK, map[string]any{
				"success": true,
				"entry":   models.Entry{ID: "e1", TrackerID: p.TrackerID, Date: p.Date, ValueFields: p.ValueFields},
			})
		})

		entry, err := c.SaveEntry(context.Background(), models.NewEntryPayload("t1", "2024-03-01", models.RatingValue(4)))
		if err != nil {
			t.Fatalf("SaveEntry() error = %v", err)
		}
		if entry == nil || entry.ID != "e1" {
			t.Fatalf("SaveEntry() = %+v", entry)
		}
	})

	t.Run("deleted", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			var p models.EntryPayload
			_ = json.NewDecoder(r.Body).Decode(&p)
			if !p.DeleteEntry {
				t.Error("delete_entry not sent")
			}
			writeJSON(w, http.StatusOK, map[string]any{"success": true, "deleted": true})
		})

		entry, err := c.SaveEntry(context.Background(), models.DeletePayload("t1", "2024-03-01"))
		if err != nil {
			t.Fatalf("SaveEntry() error = %v", err)
		}
		if entry != nil {
			t.Errorf("SaveEntry() = %+v, want nil", entry)
		}
	})

	t.Run("rejected", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "error": "Value out of range"})
		})

		_, err := c.SaveEntry(context.Background(), models.NewEntryPayload("t1", "2024-03-01", models.RatingValue(9)))
		var apiErr *APIError
		if !errors.As(err, &apiErr) {
			t.Fatalf("error = %v, want *APIError", err)
		}
		if apiErr.Status != http.StatusBadRequest || apiErr.PublicMessage() != "Value out of range" {
			t.Errorf("APIError = %+v", apiErr)
		}
		if apiErr.Transient() {
			t.Error("400 should not be transient")
		}
	})
}

func TestGetLatestInsight(t *testing.T) {
	t.Run("none", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Query().Get("report_type") != "weekly" {
				t.Errorf("report_type = %q", r.URL.Query().Get("report_type"))
			}
			writeJSON(w, http.StatusOK, map[string]any{})
		})
		got, err := c.GetLatestInsight(context.Background(), models.ReportWeekly)
		if err != nil || got != nil {
			t.Fatalf("GetLatestInsight() = %+v, %v; want nil, nil", got, err)
		}
	})

	t.Run("present", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, models.Insight{
				ID:         "i1",
				ReportType: models.ReportWeekly,
				Content:    models.InsightContent{Summary: "Good week"},
			})
		})
		got, err := c.GetLatestInsight(context.Background(), models.ReportWeekly)
		if err != nil {
			t.Fatalf("GetLatestInsight() error = %v", err)
		}
		if got == nil || got.Content.Summary != "Good week" {
			t.Fatalf("GetLatestInsight() = %+v", got)
		}
	})
}

func TestGenerateInsight(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       any
		wantTaskID string
		wantDirect bool
	}{
		{
			name:       "direct content",
			status:     http.StatusCreated,
			body:       models.Insight{ID: "i1", Content: models.InsightContent{Summary: "done"}},
			wantDirect: true,
		},
		{
			name:       "task id",
			status:     http.StatusAccepted,
			body:       map[string]string{"task_id": "abc"},
			wantTaskID: "abc",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodPost || r.URL.Path != "/api/v1/insights/generate" {
					t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
				}
				writeJSON(w, tt.status, tt.body)
			})

			res, err := c.GenerateInsight(context.Background(), models.ReportMonthly)
			if err != nil {
				t.Fatalf("GenerateInsight() error = %v", err)
			}
			if res.TaskID != tt.wantTaskID {
				t.Errorf("TaskID = %q, want %q", res.TaskID, tt.wantTaskID)
			}
			if (res.Insight != nil) != tt.wantDirect {
				t.Errorf("Insight = %+v, wantDirect %v", res.Insight, tt.wantDirect)
			}
		})
	}
}

func TestGetGenerateStatus(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/insights/generate/status/abc" {
			t.Errorf("path = %q", r.URL.Path)
		}
		writeJSON(w, http.StatusOK, models.GenerateStatus{Status: models.TaskFailed, Error: "quota exceeded"})
	})

	status, err := c.GetGenerateStatus(context.Background(), "abc")
	if err != nil {
		t.Fatalf("GetGenerateStatus() error = %v", err)
	}
	if status.Status != models.TaskFailed || status.Error != "quota exceeded" {
		t.Errorf("status = %+v", status)
	}
}

func TestIsTransient(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"server error", &APIError{Status: 502}, true},
		{"rate limited", &APIError{Status: 429}, true},
		{"not found", &APIError{Status: 404}, false},
		{"network", errors.New("connection refused"), true},
		{"canceled", context.Canceled, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsTransient(tt.err); got != tt.want {
				t.Errorf("IsTransient() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTrackerEndpoints(t *testing.T) {
	var calls []string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls = append(calls, r.Method+" "+r.URL.Path)
		switch r.URL.Path {
		case "/api/v1/trackers":
			if r.Method == http.MethodGet {
				writeJSON(w, http.StatusOK, map[string]any{"trackers": []models.Tracker{{ID: "t1", Name: "Sleep"}}})
				return
			}
			writeJSON(w, http.StatusCreated, models.Tracker{ID: "t2", Name: "Water"})
		case "/api/v1/trackers/reorder":
			w.WriteHeader(http.StatusNoContent)
		case "/api/v1/trackers/t1":
			w.WriteHeader(http.StatusNoContent)
		default:
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "Not found"})
		}
	})
	ctx := context.Background()

	trackers, err := c.ListTrackers(ctx, false)
	if err != nil || len(trackers) != 1 {
		t.Fatalf("ListTrackers() = %v, %v", trackers, err)
	}
	if _, err := c.CreateTracker(ctx, models.Tracker{Name: "Water", Type: models.TrackerNumber}); err != nil {
		t.Fatalf("CreateTracker() error = %v", err)
	}
	if err := c.ReorderTrackers(ctx, []string{"t2", "t1"}); err != nil {
		t.Fatalf("ReorderTrackers() error = %v", err)
	}
	if err := c.DeleteTracker(ctx, "t1"); err != nil {
		t.Fatalf("DeleteTracker() error = %v", err)
	}
	if _, err := c.QuickAddTracker(ctx, "nope"); !IsNotFound(err) {
		t.Errorf("QuickAddTracker() error = %v, want not found", err)
	}
	if len(calls) != 5 {
		t.Errorf("calls = %v", calls)
	}
}
