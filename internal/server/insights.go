package server

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/julianstephens/tracked/internal/analyzer"
	"github.com/julianstephens/tracked/internal/constants"
	"github.com/julianstephens/tracked/internal/logger"
	"github.com/julianstephens/tracked/internal/metrics"
	"github.com/julianstephens/tracked/internal/models"
	"github.com/julianstephens/tracked/internal/storage"
)

const generateFailedMessage = "Unable to generate insights at this time."

func publicGenerateError(err error) string {
	if errors.Is(err, analyzer.ErrNoData) {
		return analyzer.NoDataMessage
	}
	return generateFailedMessage
}

func reportTypeParam(w http.ResponseWriter, raw string) (models.ReportType, bool) {
	rt, err := models.ParseReportType(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return "", false
	}
	return rt, true
}

func (s *Server) handleLatestInsight(w http.ResponseWriter, r *http.Request) {
	rt, ok := reportTypeParam(w, r.URL.Query().Get("report_type"))
	if !ok {
		return
	}
	in, err := s.store.LatestInsight(r.Context(), rt)
	if errors.Is(err, storage.ErrNotFound) {
		writeJSON(w, http.StatusOK, struct{}{})
		return
	}
	if err != nil {
		writeStoreError(w, err, "Not found")
		return
	}
	writeJSON(w, http.StatusOK, in)
}

func (s *Server) handleInsightHistory(w http.ResponseWriter, r *http.Request) {
	rt, ok := reportTypeParam(w, r.URL.Query().Get("report_type"))
	if !ok {
		return
	}
	limit := constants.DefaultHistoryLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}
	history, err := s.store.InsightHistory(r.Context(), rt, limit)
	if err != nil {
		writeStoreError(w, err, "Not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"insights": history})
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ReportType string `json:"report_type"`
	}
	if err := decodeJSON(w, r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	rt, ok := reportTypeParam(w, body.ReportType)
	if !ok {
		return
	}
	if !s.limiter.Allow() {
		writeError(w, http.StatusTooManyRequests, "Too many requests")
		return
	}

	req, err := s.analysisRequest(r.Context(), rt)
	if errors.Is(err, analyzer.ErrNoData) {
		writeError(w, http.StatusBadRequest, analyzer.NoDataMessage)
		return
	}
	if err != nil {
		writeStoreError(w, err, "Not found")
		return
	}

	if s.opts.Async {
		id, err := s.tasks.Submit(func(ctx context.Context) (models.Insight, error) {
			in, _, err := s.generate(ctx, req)
			return in, err
		})
		if err != nil {
			writeError(w, http.StatusTooManyRequests, "Too many requests")
			return
		}
		writeJSON(w, http.StatusAccepted, map[string]string{"task_id": id})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), constants.GenerationTimeout)
	defer cancel()
	in, created, err := s.generate(ctx, req)
	if err != nil {
		writeError(w, http.StatusBadGateway, publicGenerateError(err))
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	writeJSON(w, status, in)
}

func (s *Server) handleGenerateStatus(w http.ResponseWriter, r *http.Request) {
	status, ok := s.tasks.Status(chi.URLParam(r, "taskID"))
	if !ok {
		writeError(w, http.StatusNotFound, "Task not found")
		return
	}
	writeJSON(w, http.StatusOK, status)
}

// analysisRequest gathers the active trackers' values over the report period.
func (s *Server) analysisRequest(ctx context.Context, rt models.ReportType) (analyzer.Request, error) {
	start, end := analyzer.Period(rt, s.today())
	trackers, err := s.store.ListTrackers(ctx, false)
	if err != nil {
		return analyzer.Request{}, err
	}
	entries, err := s.store.EntriesBetween(ctx, start, end)
	if err != nil {
		return analyzer.Request{}, err
	}
	data := analyzer.BuildTrackingData(trackers, entries)
	if len(data) == 0 {
		return analyzer.Request{}, analyzer.ErrNoData
	}
	return analyzer.Request{ReportType: rt, PeriodStart: start, PeriodEnd: end, Data: data}, nil
}

func (s *Server) generate(ctx context.Context, req analyzer.Request) (models.Insight, bool, error) {
	start := time.Now()
	defer func() { metrics.InsightDuration.Observe(time.Since(start).Seconds()) }()

	content, err := s.analyzer.Analyze(ctx, req)
	if err != nil {
		metrics.InsightGenerations.WithLabelValues(string(req.ReportType), "error").Inc()
		logger.Error("Insight generation failed", "report_type", req.ReportType, "analyzer", s.analyzer.Name(), "error", err)
		return models.Insight{}, false, err
	}

	in, created, err := s.store.SaveInsight(ctx, models.Insight{
		ReportType:  req.ReportType,
		PeriodStart: req.PeriodStart,
		PeriodEnd:   req.PeriodEnd,
		Content:     content,
	})
	if err != nil {
		metrics.InsightGenerations.WithLabelValues(string(req.ReportType), "error").Inc()
		return models.Insight{}, false, err
	}
	metrics.InsightGenerations.WithLabelValues(string(req.ReportType), "success").Inc()
	logger.Info("Insight generated", "report_type", req.ReportType, "period_start", req.PeriodStart, "period_end", req.PeriodEnd, "created", created)
	return in, created, nil
}
