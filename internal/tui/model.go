// Package tui is the interactive month grid with its insight panel.
package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/tracked/internal/insights"
	"github.com/julianstephens/tracked/internal/models"
	"github.com/julianstephens/tracked/internal/stats"
)

// Client is the part of the server API the TUI uses.
type Client interface {
	insights.Backend
	FetchMonthData(ctx context.Context, year, month int) (models.MonthView, error)
	SaveEntry(ctx context.Context, payload models.EntryPayload) (*models.Entry, error)
}

type SessionState int

const (
	StateGrid SessionState = iota
	StateEditing
)

type editTarget struct {
	tracker models.Tracker
	date    string
}

type Model struct {
	client Client
	ctx    context.Context
	cancel context.CancelFunc
	now    func() time.Time

	state   SessionState
	keys    KeyMap
	help    help.Model
	spinner spinner.Model

	view      models.MonthView
	year      int
	month     int
	loaded    bool
	loading   bool
	jumpToday bool
	row       int // index into view.Days()
	col       int // index into view.Trackers

	panel      *insights.Panel
	reportType models.ReportType
	insight    insights.Snapshot
	generating bool

	form      *huh.Form
	editForm  *EditFormModel
	editing   editTarget
	formError string

	status    string
	statusErr bool

	width    int
	height   int
	quitting bool
}

type Option func(*Model)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(m *Model) { m.now = now }
}

// WithPoller replaces the insight panel's default poller.
func WithPoller(p *insights.Poller) Option {
	return func(m *Model) {
		m.panel = insights.NewPanel(m.client, insights.WithPoller(p))
	}
}

func NewModel(client Client, opts ...Option) Model {
	ctx, cancel := context.WithCancel(context.Background())
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = titleStyle

	m := Model{
		client:     client,
		ctx:        ctx,
		cancel:     cancel,
		now:        time.Now,
		keys:       DefaultKeyMap(),
		help:       help.New(),
		spinner:    sp,
		panel:      insights.NewPanel(client),
		reportType: models.ReportMonthly,
		jumpToday:  true,
	}
	for _, opt := range opts {
		opt(&m)
	}
	today := m.now()
	m.year, m.month = today.Year(), int(today.Month())
	m.insight = m.panel.Snapshot()
	return m
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.loadMonth(m.year, m.month), m.loadScope())
}

func (m Model) scope() insights.Scope {
	return insights.Scope{
		ReportType: m.reportType,
		Month:      models.MonthRef{Year: m.year, Month: m.month},
	}
}

// coverage evaluates the gate for the displayed month and report type,
// using today's day of month.
func (m Model) coverage() stats.Coverage {
	return stats.ComputeCoverage(m.reportType, m.view, m.view.Trackers, m.now())
}

func (m Model) days() []models.DayRecord {
	return m.view.Days()
}

// selected returns the tracker and day under the cursor.
func (m Model) selected() (models.Tracker, models.DayRecord, bool) {
	days := m.days()
	if len(days) == 0 || len(m.view.Trackers) == 0 {
		return models.Tracker{}, models.DayRecord{}, false
	}
	return m.view.Trackers[m.col], days[m.row], true
}

func (m *Model) clampCursor() {
	days := len(m.days())
	if m.row >= days {
		m.row = days - 1
	}
	if m.row < 0 {
		m.row = 0
	}
	if m.col >= len(m.view.Trackers) {
		m.col = len(m.view.Trackers) - 1
	}
	if m.col < 0 {
		m.col = 0
	}
}

func (m *Model) setStatus(msg string, isErr bool) {
	m.status = msg
	m.statusErr = isErr
}
