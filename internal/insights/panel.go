package insights

import (
	"context"
	"errors"
	"sync"

	apperrors "github.com/julianstephens/tracked/internal/errors"
	"github.com/julianstephens/tracked/internal/logger"
	"github.com/julianstephens/tracked/internal/models"
	"github.com/julianstephens/tracked/internal/stats"
)

// State is the phase of the panel's generate workflow.
type State int

const (
	StateIdle State = iota
	StateSubmitting
	StatePolling
	StateDone
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSubmitting:
		return "submitting"
	case StatePolling:
		return "polling"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	}
	return "unknown"
}

// InProgress reports whether a generate workflow is running.
func (s State) InProgress() bool {
	return s == StateSubmitting || s == StatePolling
}

// Scope is what the panel currently shows: a report type within a month.
type Scope struct {
	ReportType models.ReportType
	Month      models.MonthRef
}

// Snapshot is a copy of the panel state safe to hand to views.
type Snapshot struct {
	State    State
	Scope    Scope
	Insight  *models.Insight
	Error    string
	Coverage stats.Coverage
}

// CanGenerate reports whether the generate control should be enabled.
func (s Snapshot) CanGenerate() bool {
	return s.Coverage.HasEnoughData && !s.State.InProgress()
}

// Panel owns the insight shown for one scope and runs at most one generate
// workflow at a time. Results of a workflow are dropped when the scope has
// changed since it started.
type Panel struct {
	backend  Backend
	poller   *Poller
	onChange func(Snapshot)

	mu         sync.Mutex
	state      State
	scope      Scope
	insight    *models.Insight
	errMsg     string
	coverage   stats.Coverage
	generation uint64
	cancel     context.CancelFunc
}

// PanelOption configures a Panel.
type PanelOption func(*Panel)

// WithPoller replaces the default poller.
func WithPoller(p *Poller) PanelOption {
	return func(panel *Panel) { panel.poller = p }
}

// WithOnChange registers a callback invoked after every state change.
func WithOnChange(fn func(Snapshot)) PanelOption {
	return func(panel *Panel) { panel.onChange = fn }
}

// NewPanel creates an idle panel for the monthly report.
func NewPanel(backend Backend, opts ...PanelOption) *Panel {
	p := &Panel{
		backend: backend,
		poller:  NewPoller(backend),
		scope:   Scope{ReportType: models.ReportMonthly},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Snapshot returns the current panel state.
func (p *Panel) Snapshot() Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.snapshotLocked()
}

func (p *Panel) snapshotLocked() Snapshot {
	return Snapshot{
		State:    p.state,
		Scope:    p.scope,
		Insight:  p.insight,
		Error:    p.errMsg,
		Coverage: p.coverage,
	}
}

// SetCoverage records the coverage gate result for the current scope.
func (p *Panel) SetCoverage(c stats.Coverage) {
	p.mu.Lock()
	p.coverage = c
	snap := p.snapshotLocked()
	p.mu.Unlock()
	p.notify(snap)
}

// SetScope switches the report type or month. Any running workflow is
// cancelled and its result discarded, then the latest stored insight for
// the new report type is loaded. Load failures are logged, not surfaced.
func (p *Panel) SetScope(ctx context.Context, scope Scope) Snapshot {
	p.mu.Lock()
	p.invalidateLocked()
	p.scope = scope
	p.state = StateIdle
	p.insight = nil
	p.errMsg = ""
	token := p.generation
	p.mu.Unlock()

	insight, err := p.backend.GetLatestInsight(ctx, scope.ReportType)
	if err != nil {
		logger.Warn("Failed to load latest insight", "report_type", scope.ReportType, "error", err)
	}

	p.mu.Lock()
	if p.generation == token && err == nil {
		p.insight = insight
	}
	snap := p.snapshotLocked()
	p.mu.Unlock()
	p.notify(snap)
	return snap
}

// Generate runs the workflow for the current scope and blocks until it
// reaches Done or Failed. It returns ErrBusy if a workflow is already
// running, ErrNotEnoughData if the coverage gate is closed, and ErrStale if
// the scope changed before the result arrived.
func (p *Panel) Generate(ctx context.Context) (Snapshot, error) {
	p.mu.Lock()
	if p.state.InProgress() {
		snap := p.snapshotLocked()
		p.mu.Unlock()
		return snap, ErrBusy
	}
	if !p.coverage.HasEnoughData {
		snap := p.snapshotLocked()
		p.mu.Unlock()
		return snap, ErrNotEnoughData
	}
	p.invalidateLocked()
	ctx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	token := p.generation
	reportType := p.scope.ReportType
	p.state = StateSubmitting
	p.errMsg = ""
	snap := p.snapshotLocked()
	p.mu.Unlock()
	p.notify(snap)
	defer cancel()

	resp, err := p.backend.GenerateInsight(ctx, reportType)
	if err != nil {
		return p.finish(token, nil, err)
	}
	if resp.Insight != nil {
		return p.finish(token, resp.Insight, nil)
	}
	if resp.TaskID == "" {
		return p.finish(token, nil, &GenerationError{})
	}

	if !p.transition(token, StatePolling) {
		return p.Snapshot(), ErrStale
	}

	insight, err := p.poller.Poll(ctx, resp.TaskID)
	return p.finish(token, insight, err)
}

// Close cancels any running workflow.
func (p *Panel) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.invalidateLocked()
	if p.state.InProgress() {
		p.state = StateIdle
	}
}

func (p *Panel) invalidateLocked() {
	p.generation++
	if p.cancel != nil {
		p.cancel()
		p.cancel = nil
	}
}

func (p *Panel) transition(token uint64, state State) bool {
	p.mu.Lock()
	if p.generation != token {
		p.mu.Unlock()
		return false
	}
	p.state = state
	snap := p.snapshotLocked()
	p.mu.Unlock()
	p.notify(snap)
	return true
}

func (p *Panel) finish(token uint64, insight *models.Insight, err error) (Snapshot, error) {
	p.mu.Lock()
	if p.generation != token {
		snap := p.snapshotLocked()
		p.mu.Unlock()
		logger.Debug("Discarding stale insight result", "error", err)
		return snap, ErrStale
	}
	p.cancel = nil
	if err != nil {
		p.state = StateFailed
		p.errMsg = failureMessage(err)
	} else {
		p.state = StateDone
		p.insight = insight
		p.errMsg = ""
	}
	snap := p.snapshotLocked()
	p.mu.Unlock()
	p.notify(snap)
	return snap, err
}

func failureMessage(err error) string {
	if errors.Is(err, ErrTimeout) {
		return TimeoutMessage
	}
	return apperrors.Message(err, FailedMessage)
}

func (p *Panel) notify(s Snapshot) {
	if p.onChange != nil {
		p.onChange(s)
	}
}
