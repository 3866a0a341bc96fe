// Package insights drives the generate-then-poll workflow for AI insights.
package insights

import (
	"context"
	"errors"
	"time"

	"github.com/julianstephens/tracked/internal/constants"
	"github.com/julianstephens/tracked/internal/logger"
	"github.com/julianstephens/tracked/internal/models"
)

const (
	// TimeoutMessage is shown when the poll budget runs out.
	TimeoutMessage = "Insight generation timed out. Please try again."
	// FailedMessage is shown when the server gives no reason for a failure.
	FailedMessage = "Insight generation failed"
)

var (
	ErrTimeout       = errors.New("insight generation timed out")
	ErrBusy          = errors.New("insight generation already in progress")
	ErrNotEnoughData = errors.New("not enough data for this period")
	ErrStale         = errors.New("insight generation superseded")
)

// GenerationError is a failure reported by the server for a generation task.
type GenerationError struct {
	Message string
}

func (e *GenerationError) Error() string {
	if e.Message == "" {
		return "insight generation failed"
	}
	return "insight generation failed: " + e.Message
}

// PublicMessage returns the server's message for display.
func (e *GenerationError) PublicMessage() string {
	return e.Message
}

// Backend is the remote side of the insight workflow.
type Backend interface {
	GetLatestInsight(ctx context.Context, reportType models.ReportType) (*models.Insight, error)
	GenerateInsight(ctx context.Context, reportType models.ReportType) (models.GenerateResponse, error)
	GetGenerateStatus(ctx context.Context, taskID string) (models.GenerateStatus, error)
}

// Poller checks a generation task on a fixed interval until it succeeds,
// fails, or the attempt budget is spent.
type Poller struct {
	backend     Backend
	Interval    time.Duration
	MaxAttempts int
	sleep       func(ctx context.Context, d time.Duration) error
}

// NewPoller creates a poller with the default 2s interval and 60 attempts.
func NewPoller(backend Backend) *Poller {
	return &Poller{
		backend:     backend,
		Interval:    constants.PollInterval,
		MaxAttempts: constants.PollMaxAttempts,
		sleep:       sleepContext,
	}
}

// Poll waits for taskID to finish. The first check happens immediately.
// Transient check failures are logged and the loop moves on to the next
// tick; only an explicit failed status, a non-transient error, context
// cancellation, or running out of attempts ends the loop early.
func (p *Poller) Poll(ctx context.Context, taskID string) (*models.Insight, error) {
	for attempt := 1; attempt <= p.MaxAttempts; attempt++ {
		if attempt > 1 {
			if err := p.sleep(ctx, p.Interval); err != nil {
				return nil, err
			}
		}

		status, err := p.backend.GetGenerateStatus(ctx, taskID)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			if !retryable(err) {
				return nil, err
			}
			logger.Warn("Insight status check failed", "task_id", taskID, "attempt", attempt, "error", err)
			continue
		}

		switch status.Status {
		case models.TaskSuccess:
			if status.Insight != nil {
				logger.Debug("Insight task finished", "task_id", taskID, "attempts", attempt)
				return status.Insight, nil
			}
		case models.TaskFailed:
			return nil, &GenerationError{Message: status.Error}
		}
	}

	return nil, ErrTimeout
}

// retryable reports whether a failed status check may be retried on the next
// tick. Errors that classify themselves via Transient() are honoured; any
// other error (network, decoding) is treated as transient.
func retryable(err error) bool {
	var classified interface{ Transient() bool }
	if errors.As(err, &classified) {
		return classified.Transient()
	}
	return true
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
