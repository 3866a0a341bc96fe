package tui

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	apperrors "github.com/julianstephens/tracked/internal/errors"
	"github.com/julianstephens/tracked/internal/entrycodec"
	"github.com/julianstephens/tracked/internal/insights"
	"github.com/julianstephens/tracked/internal/logger"
	"github.com/julianstephens/tracked/internal/models"
	"github.com/julianstephens/tracked/internal/stats"
)

type monthLoadedMsg struct {
	year  int
	month int
	view  models.MonthView
	err   error
}

type entrySavedMsg struct {
	trackerID string
	date      string
	entry     *models.Entry
	err       error
}

type scopeLoadedMsg struct {
	snap insights.Snapshot
}

type generateDoneMsg struct {
	snap insights.Snapshot
	err  error
}

func (m Model) loadMonth(year, month int) tea.Cmd {
	client, ctx := m.client, m.ctx
	return func() tea.Msg {
		view, err := client.FetchMonthData(ctx, year, month)
		return monthLoadedMsg{year: year, month: month, view: view, err: err}
	}
}

// loadScope points the panel at the current report type and month, which
// discards any running generation and reloads the latest stored insight.
func (m Model) loadScope() tea.Cmd {
	panel, ctx, scope := m.panel, m.ctx, m.scope()
	return func() tea.Msg {
		return scopeLoadedMsg{snap: panel.SetScope(ctx, scope)}
	}
}

func (m Model) saveEntry(trackerID, date string, d entrycodec.Decoded) tea.Cmd {
	client, ctx := m.client, m.ctx
	payload := entrycodec.Payload(trackerID, date, d)
	return func() tea.Msg {
		entry, err := client.SaveEntry(ctx, payload)
		return entrySavedMsg{trackerID: trackerID, date: date, entry: entry, err: err}
	}
}

func (m Model) generate() tea.Cmd {
	panel, ctx := m.panel, m.ctx
	return func() tea.Msg {
		snap, err := panel.Generate(ctx)
		return generateDoneMsg{snap: snap, err: err}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		if m.form != nil {
			m.form = m.form.WithWidth(msg.Width)
		}
		return m, nil

	case monthLoadedMsg:
		return m.handleMonthLoaded(msg)

	case entrySavedMsg:
		if msg.err != nil {
			m.setStatus(apperrors.Message(msg.err, "Failed to save entry"), true)
		} else if msg.entry == nil {
			m.setStatus(fmt.Sprintf("Cleared %s", msg.date), false)
		} else {
			m.setStatus(fmt.Sprintf("Saved %s", msg.date), false)
		}
		// Reload either way: the server copy wins over the optimistic edit.
		m.loading = true
		return m, m.loadMonth(m.year, m.month)

	case scopeLoadedMsg:
		if msg.snap.Scope == m.scope() {
			m.insight = msg.snap
		}
		return m, nil

	case generateDoneMsg:
		m.generating = false
		m.insight = m.panel.Snapshot()
		switch {
		case errors.Is(msg.err, insights.ErrStale):
			logger.Debug("Dropped superseded insight result")
		case msg.err != nil:
			m.setStatus(msg.snap.Error, true)
		default:
			m.setStatus("Insight ready", false)
		}
		return m, nil

	case spinner.TickMsg:
		if !m.generating {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		m.insight = m.panel.Snapshot()
		return m, cmd
	}

	if m.state == StateEditing {
		return m.updateForm(msg)
	}

	if msg, ok := msg.(tea.KeyMsg); ok {
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleMonthLoaded(msg monthLoadedMsg) (tea.Model, tea.Cmd) {
	if msg.year != m.year || msg.month != m.month {
		// The user navigated away before this month arrived.
		return m, nil
	}
	m.loading = false
	if msg.err != nil {
		m.setStatus(apperrors.Message(msg.err, "Failed to load month"), true)
		return m, nil
	}

	m.view = msg.view
	m.loaded = true
	if m.jumpToday {
		m.jumpToday = false
		m.row = 0
		for i, d := range m.days() {
			if d.Date == m.view.Today {
				m.row = i
				break
			}
		}
	}
	m.clampCursor()

	m.panel.SetCoverage(m.coverage())
	m.insight = m.panel.Snapshot()
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		m.panel.Close()
		m.cancel()
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil

	case key.Matches(msg, m.keys.Up):
		m.row--
		m.clampCursor()
	case key.Matches(msg, m.keys.Down):
		m.row++
		m.clampCursor()
	case key.Matches(msg, m.keys.Left):
		m.col--
		m.clampCursor()
	case key.Matches(msg, m.keys.Right):
		m.col++
		m.clampCursor()

	case key.Matches(msg, m.keys.PrevMonth):
		return m.gotoMonth(m.prevMonth())
	case key.Matches(msg, m.keys.NextMonth):
		return m.gotoMonth(m.nextMonth())
	case key.Matches(msg, m.keys.Today):
		now := m.now()
		m.jumpToday = true
		if m.year == now.Year() && m.month == int(now.Month()) {
			m.loading = true
			return m, m.loadMonth(m.year, m.month)
		}
		return m.gotoMonth(now.Year(), int(now.Month()))
	case key.Matches(msg, m.keys.Refresh):
		m.loading = true
		return m, m.loadMonth(m.year, m.month)

	case key.Matches(msg, m.keys.Report):
		return m.cycleReport()
	case key.Matches(msg, m.keys.Generate):
		return m.startGenerate()

	case key.Matches(msg, m.keys.Toggle):
		tracker, _, ok := m.selected()
		if !ok {
			return m, nil
		}
		if tracker.Type == models.TrackerBinary {
			return m.toggleBinary()
		}
		return m.openForm()
	case key.Matches(msg, m.keys.Edit):
		tracker, _, ok := m.selected()
		if !ok {
			return m, nil
		}
		if tracker.Type == models.TrackerBinary {
			return m.toggleBinary()
		}
		return m.openForm()
	case key.Matches(msg, m.keys.Clear):
		tracker, day, ok := m.selected()
		if !ok || day.Entry(tracker.ID) == nil {
			return m, nil
		}
		return m.commit(tracker, day.Date, entrycodec.Decoded{Delete: true})
	}
	return m, nil
}

func (m Model) prevMonth() (int, int) {
	if m.loaded && m.view.Prev.Year != 0 {
		return m.view.Prev.Year, m.view.Prev.Month
	}
	if m.month == 1 {
		return m.year - 1, 12
	}
	return m.year, m.month - 1
}

func (m Model) nextMonth() (int, int) {
	if m.loaded && m.view.Next.Year != 0 {
		return m.view.Next.Year, m.view.Next.Month
	}
	if m.month == 12 {
		return m.year + 1, 1
	}
	return m.year, m.month + 1
}

// gotoMonth loads another month and resets the insight panel for it.
func (m Model) gotoMonth(year, month int) (tea.Model, tea.Cmd) {
	m.year, m.month = year, month
	m.loading = true
	m.generating = false
	m.setStatus("", false)
	// The gate stays closed until the new month's coverage is known.
	m.panel.SetCoverage(stats.Coverage{})
	m.insight = m.panel.Snapshot()
	return m, tea.Batch(m.loadMonth(year, month), m.loadScope())
}

func (m Model) cycleReport() (tea.Model, tea.Cmd) {
	next := models.ReportTypes[0]
	for i, rt := range models.ReportTypes {
		if rt == m.reportType {
			next = models.ReportTypes[(i+1)%len(models.ReportTypes)]
			break
		}
	}
	m.reportType = next
	m.generating = false
	m.setStatus("", false)
	if m.loaded {
		m.panel.SetCoverage(m.coverage())
	}
	m.insight = m.panel.Snapshot()
	return m, m.loadScope()
}

func (m Model) startGenerate() (tea.Model, tea.Cmd) {
	snap := m.panel.Snapshot()
	switch {
	case m.generating || snap.State.InProgress():
		m.setStatus("Insight generation already in progress", true)
		return m, nil
	case !snap.Coverage.HasEnoughData:
		m.setStatus(fmt.Sprintf("Not enough data for a %s insight (%.0f%% filled, need 50%%)",
			m.reportType, snap.Coverage.Ratio*100), true)
		return m, nil
	}
	m.generating = true
	m.setStatus("", false)
	return m, tea.Batch(m.spinner.Tick, m.generate())
}

// toggleBinary cycles the cell through empty, true, false and back to empty.
func (m Model) toggleBinary() (tea.Model, tea.Cmd) {
	tracker, day, _ := m.selected()
	var current models.Value
	if e := day.Entry(tracker.ID); e != nil {
		current = e.Value(tracker.Type)
	}

	var d entrycodec.Decoded
	switch v, ok := current.(models.BinaryValue); {
	case !ok:
		d.Value = models.BinaryValue(true)
	case bool(v):
		d.Value = models.BinaryValue(false)
	default:
		d.Delete = true
	}
	return m.commit(tracker, day.Date, d)
}

func (m Model) openForm() (tea.Model, tea.Cmd) {
	tracker, day, _ := m.selected()
	m.editing = editTarget{tracker: tracker, date: day.Date}
	m.editForm = newEditFormModel(tracker, day.Entry(tracker.ID))
	m.form = newEditForm(tracker, day.Date, m.editForm)
	if m.width > 0 {
		m.form = m.form.WithWidth(m.width)
	}
	m.formError = ""
	m.state = StateEditing
	return m, m.form.Init()
}

func (m Model) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && msg.Type == tea.KeyEsc {
		m.closeForm()
		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateCompleted:
		return m.submitForm()
	case huh.StateAborted:
		m.closeForm()
		return m, nil
	}
	return m, cmd
}

// submitForm decodes the form and saves it. Invalid input keeps the form
// open with the error shown.
func (m Model) submitForm() (tea.Model, tea.Cmd) {
	d, err := decodeForm(m.editing.tracker, m.editForm)
	if err != nil {
		m.formError = apperrors.Message(err, "Invalid value")
		m.form.State = huh.StateNormal
		return m, nil
	}
	target := m.editing
	m.closeForm()
	return m.commit(target.tracker, target.date, d)
}

func (m *Model) closeForm() {
	m.state = StateGrid
	m.form = nil
	m.editForm = nil
	m.formError = ""
}

// commit applies the change locally and sends it to the server.
func (m Model) commit(tracker models.Tracker, date string, d entrycodec.Decoded) (tea.Model, tea.Cmd) {
	m.view = withEntry(m.view, tracker.ID, date, d)
	return m, m.saveEntry(tracker.ID, date, d)
}

// withEntry returns view with the entry for trackerID on date replaced. The
// day's entry map is copied so earlier views are left untouched.
func withEntry(view models.MonthView, trackerID, date string, d entrycodec.Decoded) models.MonthView {
	weeks := make([][]models.DayRecord, len(view.Weeks))
	for w, week := range view.Weeks {
		weeks[w] = append([]models.DayRecord(nil), week...)
		for i := range weeks[w] {
			day := &weeks[w][i]
			if day.Date != date {
				continue
			}
			entries := make(map[string]models.Entry, len(day.Entries)+1)
			for id, e := range day.Entries {
				entries[id] = e
			}
			if d.Delete || d.Value == nil {
				delete(entries, trackerID)
			} else {
				entries[trackerID] = models.Entry{
					TrackerID:   trackerID,
					Date:        date,
					ValueFields: models.FieldsFromValue(d.Value),
				}
			}
			day.Entries = entries
		}
	}
	view.Weeks = weeks
	return view
}
