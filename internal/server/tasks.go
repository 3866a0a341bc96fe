package server

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/tracked/internal/constants"
	"github.com/julianstephens/tracked/internal/logger"
	"github.com/julianstephens/tracked/internal/metrics"
	"github.com/julianstephens/tracked/internal/models"
)

// ErrQueueFull is returned by Submit when too many tasks are waiting.
var ErrQueueFull = errors.New("generation queue is full")

const taskQueueSize = 16

// GenerateFunc produces an insight for a queued task.
type GenerateFunc func(ctx context.Context) (models.Insight, error)

type task struct {
	id         string
	status     models.TaskStatus
	insight    *models.Insight
	err        string
	finishedAt time.Time
	run        GenerateFunc
}

// TaskRegistry runs insight generations in the background and remembers
// their outcome for a retention window.
type TaskRegistry struct {
	mu        sync.Mutex
	tasks     map[string]*task
	queue     chan *task
	retention time.Duration
	now       func() time.Time

	wg     sync.WaitGroup
	cancel context.CancelFunc
}

func NewTaskRegistry(retention time.Duration) *TaskRegistry {
	return &TaskRegistry{
		tasks:     make(map[string]*task),
		queue:     make(chan *task, taskQueueSize),
		retention: retention,
		now:       time.Now,
	}
}

// Start launches the worker and the janitor that forgets finished tasks.
func (tr *TaskRegistry) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	tr.cancel = cancel

	tr.wg.Add(2)
	go tr.work(ctx)
	go tr.janitor(ctx)
}

// Stop cancels running work and waits for the goroutines to exit, or for
// ctx to expire.
func (tr *TaskRegistry) Stop(ctx context.Context) error {
	if tr.cancel != nil {
		tr.cancel()
	}
	done := make(chan struct{})
	go func() {
		tr.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Submit queues fn and returns the task id to poll.
func (tr *TaskRegistry) Submit(fn GenerateFunc) (string, error) {
	t := &task{id: uuid.NewString(), status: models.TaskPending, run: fn}

	tr.mu.Lock()
	tr.tasks[t.id] = t
	tr.mu.Unlock()

	select {
	case tr.queue <- t:
		metrics.InsightTasksInflight.Inc()
		return t.id, nil
	default:
		tr.mu.Lock()
		delete(tr.tasks, t.id)
		tr.mu.Unlock()
		return "", ErrQueueFull
	}
}

// Status reports a task's state. ok is false for unknown or expired ids.
func (tr *TaskRegistry) Status(id string) (models.GenerateStatus, bool) {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	t, ok := tr.tasks[id]
	if !ok {
		return models.GenerateStatus{}, false
	}
	return models.GenerateStatus{Status: t.status, Insight: t.insight, Error: t.err}, true
}

func (tr *TaskRegistry) work(ctx context.Context) {
	defer tr.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case t := <-tr.queue:
			tr.execute(ctx, t)
		}
	}
}

func (tr *TaskRegistry) execute(ctx context.Context, t *task) {
	defer metrics.InsightTasksInflight.Dec()

	runCtx, cancel := context.WithTimeout(ctx, constants.GenerationTimeout)
	insight, err := t.run(runCtx)
	cancel()

	tr.mu.Lock()
	defer tr.mu.Unlock()
	t.finishedAt = tr.now()
	t.run = nil
	if err != nil {
		logger.Warn("Insight task failed", "task_id", t.id, "error", err)
		t.status = models.TaskFailed
		t.err = publicGenerateError(err)
		return
	}
	t.status = models.TaskSuccess
	t.insight = &insight
}

func (tr *TaskRegistry) janitor(ctx context.Context) {
	defer tr.wg.Done()
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			tr.prune()
		}
	}
}

// prune forgets tasks finished longer than the retention window ago.
func (tr *TaskRegistry) prune() {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	cutoff := tr.now().Add(-tr.retention)
	for id, t := range tr.tasks {
		if t.status != models.TaskPending && t.finishedAt.Before(cutoff) {
			delete(tr.tasks, id)
		}
	}
}
