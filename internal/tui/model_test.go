package tui

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/tracked/internal/insights"
	"github.com/julianstephens/tracked/internal/models"
	"github.com/julianstephens/tracked/internal/monthview"
)

var fixedNow = time.Date(2024, 3, 15, 9, 30, 0, 0, time.UTC)

type fakeClient struct {
	mu       sync.Mutex
	trackers []models.Tracker
	entries  []models.Entry
	months   []models.MonthRef
	saves    []models.EntryPayload
	latest   map[models.ReportType]*models.Insight
	statuses []models.GenerateStatus
	genResp  models.GenerateResponse
	genErr   error
	loadErr  error
}

func (f *fakeClient) FetchMonthData(_ context.Context, year, month int) (models.MonthView, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.months = append(f.months, models.MonthRef{Year: year, Month: month})
	if f.loadErr != nil {
		return models.MonthView{}, f.loadErr
	}
	return monthview.Build(year, month, f.trackers, f.entries, fixedNow)
}

func (f *fakeClient) SaveEntry(_ context.Context, p models.EntryPayload) (*models.Entry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saves = append(f.saves, p)

	kept := f.entries[:0]
	for _, e := range f.entries {
		if e.TrackerID != p.TrackerID || e.Date != p.Date {
			kept = append(kept, e)
		}
	}
	f.entries = kept
	if p.DeleteEntry {
		return nil, nil
	}
	e := models.Entry{TrackerID: p.TrackerID, Date: p.Date, ValueFields: p.ValueFields}
	f.entries = append(f.entries, e)
	return &e, nil
}

func (f *fakeClient) GetLatestInsight(_ context.Context, rt models.ReportType) (*models.Insight, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.latest[rt], nil
}

func (f *fakeClient) GenerateInsight(_ context.Context, _ models.ReportType) (models.GenerateResponse, error) {
	return f.genResp, f.genErr
}

func (f *fakeClient) GetGenerateStatus(_ context.Context, _ string) (models.GenerateStatus, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.statuses) == 0 {
		return models.GenerateStatus{Status: models.TaskPending}, nil
	}
	s := f.statuses[0]
	f.statuses = f.statuses[1:]
	return s, nil
}

func newTestModel(t *testing.T, client *fakeClient) Model {
	t.Helper()
	poller := insights.NewPoller(client)
	poller.Interval = time.Millisecond
	m := NewModel(client, WithClock(func() time.Time { return fixedNow }), WithPoller(poller))
	t.Cleanup(m.cancel)
	return m
}

// run executes cmd and feeds every resulting message back into the model.
func run(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	if cmd == nil {
		return m
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		for _, c := range batch {
			m = run(t, m, c)
		}
		return m
	}
	if _, ok := msg.(tea.QuitMsg); ok {
		return m
	}
	next, cmd := m.Update(msg)
	m = next.(Model)
	if _, ok := msg.(monthLoadedMsg); ok {
		return m
	}
	if _, ok := msg.(entrySavedMsg); ok {
		// Follow the reload so the grid reflects the server copy.
		return run(t, m, cmd)
	}
	return m
}

func press(t *testing.T, m Model, keys ...string) (Model, tea.Cmd) {
	t.Helper()
	var cmd tea.Cmd
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		case "esc":
			msg = tea.KeyMsg{Type: tea.KeyEsc}
		case "space":
			msg = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		next, c := m.Update(msg)
		m = next.(Model)
		cmd = c
	}
	return m, cmd
}

func testTrackers() []models.Tracker {
	five := 5.0
	one := 1.0
	return []models.Tracker{
		{ID: "gym", Name: "Gym", Type: models.TrackerBinary, IsActive: true},
		{ID: "mood", Name: "Mood", Type: models.TrackerRating, IsActive: true, MinValue: &one, MaxValue: &five},
		{ID: "sleep", Name: "Sleep", Type: models.TrackerDuration, IsActive: true},
	}
}

func TestInitLoadsCurrentMonthAtToday(t *testing.T) {
	client := &fakeClient{trackers: testTrackers()}
	m := newTestModel(t, client)
	m = run(t, m, m.Init())

	if !m.loaded || m.view.Month != 3 || m.view.Year != 2024 {
		t.Fatalf("view not loaded: %+v", m.view)
	}
	_, day, ok := m.selected()
	if !ok || day.Date != "2024-03-15" {
		t.Errorf("cursor day = %q, want today", day.Date)
	}
	if m.insight.Scope.ReportType != models.ReportMonthly {
		t.Errorf("scope = %+v", m.insight.Scope)
	}
	if !strings.Contains(m.View(), "March 2024") {
		t.Errorf("view missing month title")
	}
}

func TestCursorMovementIsClamped(t *testing.T) {
	client := &fakeClient{trackers: testTrackers()}
	m := newTestModel(t, client)
	m = run(t, m, m.Init())

	m, _ = press(t, m, "h", "h", "h", "h")
	if m.col != 0 {
		t.Errorf("col = %d, want 0", m.col)
	}
	m, _ = press(t, m, "l", "l", "l", "l")
	if m.col != 2 {
		t.Errorf("col = %d, want 2", m.col)
	}
	for i := 0; i < 40; i++ {
		m, _ = press(t, m, "j")
	}
	if _, day, _ := m.selected(); day.Date != "2024-03-31" {
		t.Errorf("cursor = %s, want last day", day.Date)
	}
}

func TestBinaryToggleCycle(t *testing.T) {
	client := &fakeClient{trackers: testTrackers()}
	m := newTestModel(t, client)
	m = run(t, m, m.Init())

	for i := 0; i < 3; i++ {
		var cmd tea.Cmd
		m, cmd = press(t, m, "space")
		m = run(t, m, cmd)
	}
	if len(client.saves) != 3 {
		t.Fatalf("saves = %d, want 3", len(client.saves))
	}
	first, second, third := client.saves[0], client.saves[1], client.saves[2]
	if first.BinaryValue == nil || !*first.BinaryValue {
		t.Errorf("first toggle = %+v, want true", first)
	}
	if second.BinaryValue == nil || *second.BinaryValue {
		t.Errorf("second toggle = %+v, want false", second)
	}
	if !third.DeleteEntry {
		t.Errorf("third toggle = %+v, want delete", third)
	}
	if m.view.DayOf(15).Entry("gym") != nil {
		t.Error("cell should be empty after a full cycle")
	}
}

func TestBinaryToggleAppliesOptimistically(t *testing.T) {
	client := &fakeClient{
		trackers: testTrackers(),
		entries: []models.Entry{
			{TrackerID: "gym", Date: "2024-03-15", ValueFields: models.ValueFields{BinaryValue: models.BoolPtr(true)}},
		},
	}
	m := newTestModel(t, client)
	m = run(t, m, m.Init())
	before := m.view

	m, _ = press(t, m, "space")
	cell := m.view.DayOf(15).Entry("gym")
	if cell == nil || cell.BinaryValue == nil || *cell.BinaryValue {
		t.Errorf("optimistic cell = %+v, want false", cell)
	}
	if old := before.DayOf(15).Entry("gym"); old == nil || !*old.BinaryValue {
		t.Error("previous view was mutated")
	}
}

func TestMonthNavigation(t *testing.T) {
	client := &fakeClient{trackers: testTrackers()}
	m := newTestModel(t, client)
	m = run(t, m, m.Init())

	m, cmd := press(t, m, "[")
	if m.year != 2024 || m.month != 2 || !m.loading {
		t.Fatalf("after [: %d-%d loading=%v", m.year, m.month, m.loading)
	}
	m = run(t, m, cmd)
	if m.view.Month != 2 || m.view.TotalDays != 29 {
		t.Errorf("view = %d days in month %d", m.view.TotalDays, m.view.Month)
	}
	if m.insight.Scope.Month != (models.MonthRef{Year: 2024, Month: 2}) {
		t.Errorf("panel scope = %+v", m.insight.Scope)
	}

	m, cmd = press(t, m, "t")
	m = run(t, m, cmd)
	if m.view.Month != 3 {
		t.Errorf("today key went to month %d", m.view.Month)
	}
	if _, day, _ := m.selected(); day.Date != "2024-03-15" {
		t.Errorf("cursor = %s", day.Date)
	}
}

func TestStaleMonthIgnored(t *testing.T) {
	client := &fakeClient{trackers: testTrackers()}
	m := newTestModel(t, client)
	m = run(t, m, m.Init())

	stale := m.loadMonth(2024, 1)()
	m, _ = press(t, m, "]")
	next, _ := m.Update(stale)
	m = next.(Model)
	if m.view.Month != 3 {
		t.Errorf("stale month applied: %d", m.view.Month)
	}
}

func TestLoadErrorShown(t *testing.T) {
	client := &fakeClient{trackers: testTrackers(), loadErr: errors.New("connection refused")}
	m := newTestModel(t, client)
	m = run(t, m, m.Init())
	if !m.statusErr || m.loading {
		t.Errorf("status = %q err=%v loading=%v", m.status, m.statusErr, m.loading)
	}
}

func TestReportCycleReloadsLatest(t *testing.T) {
	weekly := &models.Insight{ID: "w1", ReportType: models.ReportWeekly, PeriodStart: "2024-03-08", PeriodEnd: "2024-03-15"}
	client := &fakeClient{
		trackers: testTrackers(),
		latest:   map[models.ReportType]*models.Insight{models.ReportWeekly: weekly},
	}
	m := newTestModel(t, client)
	m = run(t, m, m.Init())

	// monthly -> daily -> weekly
	m, cmd := press(t, m, "r")
	m = run(t, m, cmd)
	if m.reportType != models.ReportDaily || m.insight.Insight != nil {
		t.Fatalf("daily: type=%s insight=%v", m.reportType, m.insight.Insight)
	}
	m, cmd = press(t, m, "r")
	m = run(t, m, cmd)
	if m.insight.Insight == nil || m.insight.Insight.ID != "w1" {
		t.Errorf("weekly insight = %+v", m.insight.Insight)
	}
}

func TestGenerateBlockedByCoverage(t *testing.T) {
	client := &fakeClient{trackers: testTrackers()}
	m := newTestModel(t, client)
	m = run(t, m, m.Init())

	m, cmd := press(t, m, "g")
	if cmd != nil || m.generating {
		t.Fatal("generate should be refused without data")
	}
	if !strings.Contains(m.status, "Not enough data") {
		t.Errorf("status = %q", m.status)
	}
}

func TestGeneratePollsToDone(t *testing.T) {
	insight := &models.Insight{ID: "d1", ReportType: models.ReportDaily, PeriodStart: "2024-03-14", PeriodEnd: "2024-03-15",
		Content: models.InsightContent{Summary: "Good day."}}
	client := &fakeClient{
		trackers: testTrackers(),
		entries: []models.Entry{
			{TrackerID: "gym", Date: "2024-03-15", ValueFields: models.ValueFields{BinaryValue: models.BoolPtr(true)}},
			{TrackerID: "mood", Date: "2024-03-15", ValueFields: models.ValueFields{RatingValue: ptr(4)}},
		},
		genResp: models.GenerateResponse{TaskID: "task-1"},
		statuses: []models.GenerateStatus{
			{Status: models.TaskPending},
			{Status: models.TaskSuccess, Insight: insight},
		},
	}
	m := newTestModel(t, client)
	m = run(t, m, m.Init())
	m, cmd := press(t, m, "r") // daily: 2 of 3 cells
	m = run(t, m, cmd)

	m, cmd = press(t, m, "g")
	if !m.generating || cmd == nil {
		t.Fatalf("generate not started: status=%q", m.status)
	}
	m = run(t, m, cmd)
	if m.generating {
		t.Error("generating flag not cleared")
	}
	if m.insight.State != insights.StateDone || m.insight.Insight == nil || m.insight.Insight.ID != "d1" {
		t.Errorf("snapshot = %+v", m.insight)
	}
	if !strings.Contains(m.View(), "Good day.") {
		t.Error("insight not rendered")
	}
}

func TestGenerateFailureShowsMessage(t *testing.T) {
	client := &fakeClient{
		trackers: testTrackers()[:1],
		entries: []models.Entry{
			{TrackerID: "gym", Date: "2024-03-15", ValueFields: models.ValueFields{BinaryValue: models.BoolPtr(true)}},
		},
		genResp:  models.GenerateResponse{TaskID: "task-1"},
		statuses: []models.GenerateStatus{{Status: models.TaskFailed, Error: "model overloaded"}},
	}
	m := newTestModel(t, client)
	m = run(t, m, m.Init())
	m, cmd := press(t, m, "r")
	m = run(t, m, cmd)

	m, cmd = press(t, m, "g")
	m = run(t, m, cmd)
	if m.insight.State != insights.StateFailed || m.status != "model overloaded" || !m.statusErr {
		t.Errorf("state=%s status=%q", m.insight.State, m.status)
	}
}

func TestGenerateBlockedWhileMonthLoads(t *testing.T) {
	client := &fakeClient{
		trackers: testTrackers()[:1],
		entries: []models.Entry{
			{TrackerID: "gym", Date: "2024-03-15", ValueFields: models.ValueFields{BinaryValue: models.BoolPtr(true)}},
		},
		genResp: models.GenerateResponse{TaskID: "task-1"},
	}
	m := newTestModel(t, client)
	m = run(t, m, m.Init())
	m, cmd := press(t, m, "r") // daily: 1 of 1 cells
	m = run(t, m, cmd)
	if !m.panel.Snapshot().Coverage.HasEnoughData {
		t.Fatal("March should pass the coverage gate")
	}

	m, _ = press(t, m, "[")
	m, cmd = press(t, m, "g")
	if cmd != nil || m.generating {
		t.Fatal("generate used the previous month's coverage")
	}
	if !strings.Contains(m.status, "Not enough data") {
		t.Errorf("status = %q", m.status)
	}
}

func TestStaleGenerationDropped(t *testing.T) {
	client := &fakeClient{trackers: testTrackers()}
	m := newTestModel(t, client)
	m = run(t, m, m.Init())
	m.generating = true

	next, _ := m.Update(generateDoneMsg{err: insights.ErrStale})
	m = next.(Model)
	if m.generating || m.status != "" {
		t.Errorf("stale result changed status to %q", m.status)
	}
}

func TestEditFormOpensForNonBinary(t *testing.T) {
	client := &fakeClient{trackers: testTrackers()}
	m := newTestModel(t, client)
	m = run(t, m, m.Init())

	m, _ = press(t, m, "l", "enter")
	if m.state != StateEditing || m.form == nil || m.editing.tracker.ID != "mood" {
		t.Fatalf("state=%v editing=%+v", m.state, m.editing)
	}
	m, _ = press(t, m, "esc")
	if m.state != StateGrid || m.form != nil {
		t.Errorf("esc did not close the form")
	}
}

func TestSubmitForm(t *testing.T) {
	client := &fakeClient{trackers: testTrackers()}
	m := newTestModel(t, client)
	m = run(t, m, m.Init())

	m, _ = press(t, m, "l", "enter")
	m.editForm.Value = "9"
	next, cmd := m.submitForm()
	m = next.(Model)
	if cmd != nil || m.state != StateEditing || !strings.Contains(m.formError, "at most 5") {
		t.Fatalf("out of range accepted: state=%v err=%q", m.state, m.formError)
	}

	m.editForm.Value = "4"
	next, cmd = m.submitForm()
	m = next.(Model)
	if m.state != StateGrid {
		t.Fatal("form not closed")
	}
	m = run(t, m, cmd)
	if len(client.saves) != 1 || client.saves[0].RatingValue == nil || *client.saves[0].RatingValue != 4 {
		t.Errorf("saves = %+v", client.saves)
	}
}

func TestDecodeForm(t *testing.T) {
	sleep := models.Tracker{ID: "s", Type: models.TrackerDuration}
	prayer := models.Tracker{ID: "p", Type: models.TrackerPrayer}

	d, err := decodeForm(sleep, &EditFormModel{Hours: "7", Minutes: "15"})
	if v, ok := d.Value.(models.DurationValue); err != nil || !ok || v != 435 {
		t.Errorf("duration = %+v, %v", d, err)
	}
	d, err = decodeForm(sleep, &EditFormModel{})
	if err != nil || !d.Delete {
		t.Errorf("empty duration = %+v, %v", d, err)
	}

	d, err = decodeForm(prayer, &EditFormModel{Prayers: []string{"true", "false", "", "true", ""}})
	if err != nil {
		t.Fatal(err)
	}
	pv, ok := d.Value.(models.PrayerValue)
	if !ok || models.PrayerValues(pv).Done() != 2 || pv[models.Dhuhr] == nil || pv[models.Asr] != nil {
		t.Errorf("prayer = %+v", d.Value)
	}
	d, _ = decodeForm(prayer, &EditFormModel{Prayers: make([]string, 5)})
	if !d.Delete {
		t.Error("untracked prayers should delete")
	}
}

func TestNewEditFormModelPrefill(t *testing.T) {
	ninety := 90
	fm := newEditFormModel(models.Tracker{Type: models.TrackerDuration},
		&models.Entry{ValueFields: models.ValueFields{DurationMinutes: &ninety}})
	if fm.Hours != "1" || fm.Minutes != "30" {
		t.Errorf("duration prefill = %+v", fm)
	}

	fm = newEditFormModel(models.Tracker{Type: models.TrackerPrayer},
		&models.Entry{ValueFields: models.ValueFields{PrayerValues: models.PrayerValues{models.Isha: models.BoolPtr(false)}}})
	if fm.Prayers[4] != "false" || fm.Prayers[0] != "" {
		t.Errorf("prayer prefill = %+v", fm.Prayers)
	}
}

func TestClearDeletesEntry(t *testing.T) {
	client := &fakeClient{
		trackers: testTrackers(),
		entries: []models.Entry{
			{TrackerID: "gym", Date: "2024-03-15", ValueFields: models.ValueFields{BinaryValue: models.BoolPtr(true)}},
		},
	}
	m := newTestModel(t, client)
	m = run(t, m, m.Init())

	m, cmd := press(t, m, "x")
	if m.view.DayOf(15).Entry("gym") != nil {
		t.Error("optimistic delete not applied")
	}
	run(t, m, cmd)
	if len(client.saves) != 1 || !client.saves[0].DeleteEntry {
		t.Errorf("saves = %+v", client.saves)
	}

	// An empty cell has nothing to clear.
	m, _ = press(t, m, "j")
	if _, cmd := press(t, m, "x"); cmd != nil {
		t.Error("clear on empty cell sent a request")
	}
}

func TestQuit(t *testing.T) {
	m := newTestModel(t, &fakeClient{})
	m, cmd := press(t, m, "q")
	if !m.quitting || cmd == nil {
		t.Fatal("q did not quit")
	}
	if m.View() != "" {
		t.Error("view not cleared on quit")
	}
}

func ptr[T any](v T) *T { return &v }
