// Package api is the HTTP client for the tracked server.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/julianstephens/tracked/internal/constants"
	"github.com/julianstephens/tracked/internal/logger"
	"github.com/julianstephens/tracked/internal/models"
)

// APIError is a non-2xx response from the server.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server returned %d %s", e.Status, http.StatusText(e.Status))
	}
	return fmt.Sprintf("server returned %d: %s", e.Status, e.Message)
}

// PublicMessage returns the server's message, passed through to the user.
func (e *APIError) PublicMessage() string {
	return e.Message
}

// Transient reports whether retrying the request may succeed.
func (e *APIError) Transient() bool {
	return e.Status >= 500 || e.Status == http.StatusTooManyRequests
}

// IsTransient reports whether err is a network failure or a retryable
// server response. Authoritative 4xx responses are not transient.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Transient()
	}
	return !errors.Is(err, context.Canceled)
}

// IsNotFound reports whether err is a 404 response.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound
}

// Client talks to the REST API. It is safe for concurrent use.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// New creates a client for the server at baseURL. An empty token sends no
// Authorization header.
func New(baseURL, token string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/") + "/api/v1",
		token:      token,
		httpClient: &http.Client{Timeout: constants.RequestTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type errorBody struct {
	Error string `json:"error"`
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	logger.Debug("API request", "method", method, "path", path)
	res, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer res.Body.Close()

	data, err := io.ReadAll(res.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if res.StatusCode < 200 || res.StatusCode > 299 {
		var eb errorBody
		_ = json.Unmarshal(data, &eb)
		return &APIError{Status: res.StatusCode, Message: eb.Error}
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode response from %s: %w", path, err)
	}
	return nil
}

// FetchMonthData returns the month grid.
func (c *Client) FetchMonthData(ctx context.Context, year, month int) (models.MonthView, error) {
	var view models.MonthView
	err := c.do(ctx, http.MethodGet, fmt.Sprintf("/month/%d/%d", year, month), nil, &view)
	return view, err
}

type entryResponse struct {
	Success bool          `json:"success"`
	Deleted bool          `json:"deleted"`
	Entry   *models.Entry `json:"entry"`
}

// SaveEntry stores or deletes an entry. It returns nil when the payload
// deleted the entry.
func (c *Client) SaveEntry(ctx context.Context, payload models.EntryPayload) (*models.Entry, error) {
	var res entryResponse
	if err := c.do(ctx, http.MethodPost, "/entries", payload, &res); err != nil {
		return nil, err
	}
	if res.Deleted {
		return nil, nil
	}
	return res.Entry, nil
}

// GetLatestInsight returns the newest insight of reportType, or nil when none
// exists yet.
func (c *Client) GetLatestInsight(ctx context.Context, reportType models.ReportType) (*models.Insight, error) {
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodGet, "/insights/latest?report_type="+url.QueryEscape(string(reportType)), nil, &raw); err != nil {
		return nil, err
	}
	return decodeInsight(raw)
}

// InsightHistory lists past insights of reportType, newest first.
func (c *Client) InsightHistory(ctx context.Context, reportType models.ReportType, limit int) ([]models.Insight, error) {
	q := url.Values{}
	q.Set("report_type", string(reportType))
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	var res struct {
		Insights []models.Insight `json:"insights"`
	}
	if err := c.do(ctx, http.MethodGet, "/insights/history?"+q.Encode(), nil, &res); err != nil {
		return nil, err
	}
	return res.Insights, nil
}

// GenerateInsight asks the server to generate an insight. The response holds
// either the finished insight or a task id to poll.
func (c *Client) GenerateInsight(ctx context.Context, reportType models.ReportType) (models.GenerateResponse, error) {
	var raw json.RawMessage
	body := map[string]string{"report_type": string(reportType)}
	if err := c.do(ctx, http.MethodPost, "/insights/generate", body, &raw); err != nil {
		return models.GenerateResponse{}, err
	}

	insight, err := decodeInsight(raw)
	if err != nil {
		return models.GenerateResponse{}, err
	}
	if insight != nil {
		return models.GenerateResponse{Insight: insight}, nil
	}

	var res models.GenerateResponse
	if err := json.Unmarshal(raw, &res); err != nil {
		return models.GenerateResponse{}, fmt.Errorf("failed to decode generate response: %w", err)
	}
	return res, nil
}

// GetGenerateStatus reports the state of a generation task.
func (c *Client) GetGenerateStatus(ctx context.Context, taskID string) (models.GenerateStatus, error) {
	var status models.GenerateStatus
	err := c.do(ctx, http.MethodGet, "/insights/generate/status/"+url.PathEscape(taskID), nil, &status)
	return status, err
}

// ListTrackers returns trackers in display order.
func (c *Client) ListTrackers(ctx context.Context, includeInactive bool) ([]models.Tracker, error) {
	path := "/trackers"
	if includeInactive {
		path += "?include_inactive=true"
	}
	var res struct {
		Trackers []models.Tracker `json:"trackers"`
	}
	if err := c.do(ctx, http.MethodGet, path, nil, &res); err != nil {
		return nil, err
	}
	return res.Trackers, nil
}

// CreateTracker adds a tracker.
func (c *Client) CreateTracker(ctx context.Context, t models.Tracker) (models.Tracker, error) {
	var created models.Tracker
	err := c.do(ctx, http.MethodPost, "/trackers", t, &created)
	return created, err
}

// UpdateTracker applies patch to the tracker with id.
func (c *Client) UpdateTracker(ctx context.Context, id string, patch models.TrackerPatch) (models.Tracker, error) {
	var updated models.Tracker
	err := c.do(ctx, http.MethodPatch, "/trackers/"+url.PathEscape(id), patch, &updated)
	return updated, err
}

// DeleteTracker removes a tracker and its entries.
func (c *Client) DeleteTracker(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/trackers/"+url.PathEscape(id), nil, nil)
}

// ReorderTrackers sets display order to the order of ids.
func (c *Client) ReorderTrackers(ctx context.Context, ids []string) error {
	return c.do(ctx, http.MethodPost, "/trackers/reorder", map[string][]string{"ids": ids}, nil)
}

// SuggestedTrackers lists the quick-add catalogue.
func (c *Client) SuggestedTrackers(ctx context.Context) ([]models.SuggestedTracker, error) {
	var res struct {
		Suggested []models.SuggestedTracker `json:"suggested"`
	}
	if err := c.do(ctx, http.MethodGet, "/trackers/suggested", nil, &res); err != nil {
		return nil, err
	}
	return res.Suggested, nil
}

// QuickAddTracker creates the suggested tracker with slug.
func (c *Client) QuickAddTracker(ctx context.Context, slug string) (models.Tracker, error) {
	var created models.Tracker
	err := c.do(ctx, http.MethodPost, "/trackers/quick-add/"+url.PathEscape(slug), nil, &created)
	return created, err
}

// Ping checks that the server is reachable.
func (c *Client) Ping(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/ping", nil, nil)
}

// decodeInsight returns nil for an empty object and an insight when the body
// carries content.
func decodeInsight(raw json.RawMessage) (*models.Insight, error) {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(raw, &probe); err != nil {
		return nil, fmt.Errorf("failed to decode insight: %w", err)
	}
	if _, ok := probe["content"]; !ok {
		return nil, nil
	}
	var insight models.Insight
	if err := json.Unmarshal(raw, &insight); err != nil {
		return nil, fmt.Errorf("failed to decode insight: %w", err)
	}
	return &insight, nil
}
