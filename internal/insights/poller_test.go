package insights

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/julianstephens/tracked/internal/models"
)

type statusResult struct {
	status models.GenerateStatus
	err    error
}

type fakeBackend struct {
	mu       sync.Mutex
	latest   map[models.ReportType]*models.Insight
	generate func(ctx context.Context, rt models.ReportType) (models.GenerateResponse, error)
	statuses []statusResult
	polls    int
}

func (f *fakeBackend) GetLatestInsight(ctx context.Context, rt models.ReportType) (*models.Insight, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.latest[rt], nil
}

func (f *fakeBackend) GenerateInsight(ctx context.Context, rt models.ReportType) (models.GenerateResponse, error) {
	if f.generate != nil {
		return f.generate(ctx, rt)
	}
	return models.GenerateResponse{TaskID: "task-1"}, nil
}

func (f *fakeBackend) GetGenerateStatus(ctx context.Context, taskID string) (models.GenerateStatus, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.polls++
	if len(f.statuses) == 0 {
		return models.GenerateStatus{Status: models.TaskPending}, nil
	}
	next := f.statuses[0]
	f.statuses = f.statuses[1:]
	return next.status, next.err
}

func (f *fakeBackend) pollCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.polls
}

type transientErr struct{ transient bool }

func (e transientErr) Error() string   { return "status check failed" }
func (e transientErr) Transient() bool { return e.transient }

// fakeClock replaces the poller's sleep with a virtual clock.
type fakeClock struct {
	elapsed time.Duration
}

func (c *fakeClock) sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.elapsed += d
	return nil
}

func newTestPoller(b Backend, clock *fakeClock) *Poller {
	p := NewPoller(b)
	p.sleep = clock.sleep
	return p
}

func pending() statusResult {
	return statusResult{status: models.GenerateStatus{Status: models.TaskPending}}
}

func TestPollSucceedsAfterThreeChecks(t *testing.T) {
	insight := &models.Insight{ID: "ins-1", ReportType: models.ReportWeekly}
	backend := &fakeBackend{statuses: []statusResult{
		pending(),
		pending(),
		{status: models.GenerateStatus{Status: models.TaskSuccess, Insight: insight}},
	}}
	clock := &fakeClock{}

	got, err := newTestPoller(backend, clock).Poll(context.Background(), "task-1")
	if err != nil {
		t.Fatalf("Poll() error = %v", err)
	}
	if got != insight {
		t.Errorf("Poll() = %v, want %v", got, insight)
	}
	if backend.pollCount() != 3 {
		t.Errorf("status checks = %d, want 3", backend.pollCount())
	}
	if clock.elapsed < 4*time.Second || clock.elapsed >= 6*time.Second {
		t.Errorf("elapsed = %v, want within [4s, 6s)", clock.elapsed)
	}
}

func TestPollTimesOut(t *testing.T) {
	backend := &fakeBackend{}
	clock := &fakeClock{}

	_, err := newTestPoller(backend, clock).Poll(context.Background(), "task-1")
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("Poll() error = %v, want ErrTimeout", err)
	}
	if backend.pollCount() != 60 {
		t.Errorf("status checks = %d, want 60", backend.pollCount())
	}
	if clock.elapsed != 118*time.Second {
		t.Errorf("elapsed = %v, want 118s", clock.elapsed)
	}
}

func TestPollFailedStatus(t *testing.T) {
	backend := &fakeBackend{statuses: []statusResult{
		pending(),
		{status: models.GenerateStatus{Status: models.TaskFailed, Error: "No tracking data found."}},
	}}

	_, err := newTestPoller(backend, &fakeClock{}).Poll(context.Background(), "task-1")
	var genErr *GenerationError
	if !errors.As(err, &genErr) {
		t.Fatalf("Poll() error = %v, want GenerationError", err)
	}
	if genErr.PublicMessage() != "No tracking data found." {
		t.Errorf("PublicMessage() = %q", genErr.PublicMessage())
	}
	if backend.pollCount() != 2 {
		t.Errorf("status checks = %d, want 2", backend.pollCount())
	}
}

func TestPollContinuesThroughTransientErrors(t *testing.T) {
	insight := &models.Insight{ID: "ins-2"}
	backend := &fakeBackend{statuses: []statusResult{
		{err: errors.New("connection reset by peer")},
		{err: transientErr{transient: true}},
		{status: models.GenerateStatus{Status: models.TaskSuccess, Insight: insight}},
	}}

	got, err := newTestPoller(backend, &fakeClock{}).Poll(context.Background(), "task-1")
	if err != nil {
		t.Fatalf("Poll() error = %v", err)
	}
	if got != insight {
		t.Errorf("Poll() = %v, want %v", got, insight)
	}
}

func TestPollAbortsOnPermanentError(t *testing.T) {
	backend := &fakeBackend{statuses: []statusResult{
		{err: transientErr{transient: false}},
	}}

	_, err := newTestPoller(backend, &fakeClock{}).Poll(context.Background(), "task-1")
	if err == nil || errors.Is(err, ErrTimeout) {
		t.Fatalf("Poll() error = %v, want the permanent error", err)
	}
	if backend.pollCount() != 1 {
		t.Errorf("status checks = %d, want 1", backend.pollCount())
	}
}

func TestPollSuccessWithoutInsightKeepsPolling(t *testing.T) {
	insight := &models.Insight{ID: "ins-3"}
	backend := &fakeBackend{statuses: []statusResult{
		{status: models.GenerateStatus{Status: models.TaskSuccess}},
		{status: models.GenerateStatus{Status: models.TaskSuccess, Insight: insight}},
	}}

	got, err := newTestPoller(backend, &fakeClock{}).Poll(context.Background(), "task-1")
	if err != nil || got != insight {
		t.Fatalf("Poll() = %v, %v", got, err)
	}
}

func TestPollStopsWhenCancelled(t *testing.T) {
	backend := &fakeBackend{}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestPoller(backend, &fakeClock{}).Poll(ctx, "task-1")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Poll() error = %v, want context.Canceled", err)
	}
	if backend.pollCount() > 1 {
		t.Errorf("status checks = %d, want at most 1", backend.pollCount())
	}
}

func TestPollRealClock(t *testing.T) {
	insight := &models.Insight{ID: "ins-4"}
	backend := &fakeBackend{statuses: []statusResult{
		pending(),
		{status: models.GenerateStatus{Status: models.TaskSuccess, Insight: insight}},
	}}
	p := NewPoller(backend)
	p.Interval = 20 * time.Millisecond

	start := time.Now()
	if _, err := p.Poll(context.Background(), "task-1"); err != nil {
		t.Fatalf("Poll() error = %v", err)
	}
	if elapsed := time.Since(start); elapsed < 20*time.Millisecond {
		t.Errorf("elapsed = %v, want at least one interval", elapsed)
	}
}
