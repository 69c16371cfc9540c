package reports

import (
	"bytes"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"work-tracker.com/work-tracker/internal/worktime"
)

type clock struct {
	t time.Time
}

func (c *clock) Now() time.Time { return c.t }

func (c *clock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newMachine(t *testing.T) (*worktime.Machine, *clock) {
	t.Helper()
	c := &clock{t: time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)}
	seq := 0
	m := worktime.NewMachine(worktime.New("alice"),
		worktime.WithClock(c.Now),
		worktime.WithIDGenerator(func() string {
			seq++
			return fmt.Sprintf("t%d", seq)
		}),
	)
	return m, c
}

func TestBuild_ScenarioAuditOrder(t *testing.T) {
	m, c := newMachine(t)
	require.NoError(t, m.ClockIn())
	id, err := m.AddTask("A", "1")
	require.NoError(t, err)
	require.NoError(t, m.StartTask(id))
	c.Advance(60 * time.Second)
	require.NoError(t, m.StopTask())
	require.NoError(t, m.ToggleMeeting())
	c.Advance(30 * time.Second)
	require.NoError(t, m.ToggleMeeting())
	require.NoError(t, m.ClockOut())

	r := Build(m.State(), c.Now().Add(time.Hour))

	require.Len(t, r.Audit, 4)
	assert.Equal(t, CategoryClockIn, r.Audit[0].Category)
	assert.Equal(t, CategoryTask, r.Audit[1].Category)
	assert.Equal(t, "A / Phase 1", r.Audit[1].Label)
	assert.Equal(t, "00:01:00", r.Audit[1].Duration)
	assert.Equal(t, CategoryMeeting, r.Audit[2].Category)
	assert.Equal(t, int64(30), r.Audit[2].DurationSeconds)
	assert.Equal(t, CategoryClockOut, r.Audit[3].Category)
	assert.Equal(t, "09:01:30", r.Audit[3].Start)

	require.Len(t, r.Attendance, 1)
	assert.Equal(t, AttendanceRow{
		Date: "2026-03-02", ClockIn: "09:00:00", ClockOut: "09:01:30",
		Task: "00:01", Meeting: "00:00", Rest: "00:00", Other: "00:00",
	}, r.Attendance[0])

	require.Len(t, r.Tasks, 1)
	assert.Equal(t, StatusInProgress, r.Tasks[0].Status)
	assert.Equal(t, "--", r.Tasks[0].CompletedAt)
	assert.Equal(t, "00:01", r.Tasks[0].Spent)
}

func TestBuild_LiveEntriesUseReportTime(t *testing.T) {
	m, c := newMachine(t)
	require.NoError(t, m.ClockIn())
	id, _ := m.AddTask("A", "1")
	require.NoError(t, m.StartTask(id))
	c.Advance(10 * time.Minute)
	s := m.State()

	early := Build(s, c.Now())
	late := Build(s, c.Now().Add(50*time.Minute))

	assert.Equal(t, "00:10", early.Tasks[0].Spent)
	assert.Equal(t, "01:00", late.Tasks[0].Spent)

	row := late.Audit[1]
	assert.Equal(t, StatusInProgress, row.End)
	assert.Equal(t, int64(3600), row.DurationSeconds)
	assert.Empty(t, late.Attendance)
	for _, r := range late.Audit {
		assert.NotEqual(t, CategoryClockOut, r.Category)
	}
}

func TestBuild_OrphanOpenEntryShowsPlaceholder(t *testing.T) {
	s := worktime.New("alice")
	s.RestHistory = []worktime.HistoryEntry{{StartInstant: 1000, StartDisplay: "00:00:01"}}

	r := Build(s, time.UnixMilli(500000))

	require.Len(t, r.Audit, 1)
	assert.Equal(t, "--", r.Audit[0].Duration)
	assert.Equal(t, "--", r.Audit[0].End)
	assert.Zero(t, r.Audit[0].DurationSeconds)
}

func TestBuild_AuditSortedAcrossCategories(t *testing.T) {
	m, c := newMachine(t)
	require.NoError(t, m.ClockIn())
	a, _ := m.AddTask("A", "1")
	b, _ := m.AddTask("B", "1")

	steps := []func() error{
		func() error { return m.StartTask(b) },
		m.ToggleRest,
		func() error { return m.StartTask(a) },
		m.ToggleMeeting,
		func() error { return m.StartTask(b) },
		m.ToggleRest,
	}
	for _, step := range steps {
		c.Advance(7 * time.Minute)
		require.NoError(t, step())
	}

	r := Build(m.State(), c.Now())
	require.Len(t, r.Audit, 7)
	for i := 1; i < len(r.Audit); i++ {
		assert.LessOrEqual(t, r.Audit[i-1].StartInstant, r.Audit[i].StartInstant)
	}
	var cats []Category
	for _, row := range r.Audit {
		cats = append(cats, row.Category)
	}
	assert.Equal(t, []Category{
		CategoryClockIn, CategoryTask, CategoryRest, CategoryTask, CategoryMeeting, CategoryTask, CategoryRest,
	}, cats)
	assert.Equal(t, StatusInProgress, r.Audit[6].End)
}

func TestBuild_SnapshotRoundTripIsIdempotent(t *testing.T) {
	m, c := newMachine(t)
	require.NoError(t, m.ClockIn())
	id, _ := m.AddTask("A", "2")
	require.NoError(t, m.StartTask(id))
	c.Advance(25 * time.Minute)
	require.NoError(t, m.SetResearchNote(id, "spike"))
	require.NoError(t, m.AddSolutionPhase(id))
	c.Advance(5 * time.Minute)
	require.NoError(t, m.ToggleMeeting())
	c.Advance(3 * time.Minute)

	before := m.State()
	raw, err := worktime.Encode(before)
	require.NoError(t, err)
	stored, err := worktime.Canonicalize(raw, "alice")
	require.NoError(t, err)
	after := worktime.Decode(stored, "alice")

	now := c.Now().Add(90 * time.Second)
	assert.Equal(t, Build(before, now), Build(after, now))
	assert.Equal(t, Status(before, now), Status(after, now))
}

func TestBuild_CompletedTaskRow(t *testing.T) {
	m, c := newMachine(t)
	require.NoError(t, m.ClockIn())
	id, _ := m.AddTask("A", "1")
	require.NoError(t, m.StartTask(id))
	c.Advance(30 * time.Minute)
	require.NoError(t, m.SetDeliverableNote(id, "merged"))
	require.NoError(t, m.SetResearchNote(id, "done"))
	require.NoError(t, m.CompleteTask(id))

	r := Build(m.State(), c.Now())
	assert.Equal(t, TaskRow{
		Name:        "A",
		Status:      StatusCompleted,
		CreatedAt:   "2026-03-02 09:00",
		Estimate:    "1",
		CompletedAt: "2026-03-02 09:30",
		Spent:       "00:30",
		Deviation:   "early by 00:30",
		Deliverable: "merged",
	}, r.Tasks[0])
}

func TestStatus_LiveCounters(t *testing.T) {
	m, c := newMachine(t)
	assert.Equal(t, ModeClockedOut, Status(m.State(), c.Now()).Mode)

	require.NoError(t, m.ClockIn())
	assert.Equal(t, ModeIdle, Status(m.State(), c.Now()).Mode)

	id, _ := m.AddTask("A", "1")
	require.NoError(t, m.StartTask(id))
	c.Advance(2 * time.Minute)
	st := Status(m.State(), c.Now())
	assert.Equal(t, ModeWorking, st.Mode)
	assert.Equal(t, "A", st.ActiveTask)
	assert.Equal(t, int64(120), st.TaskSeconds)
	assert.Equal(t, int64(120), st.WorkSeconds)

	require.NoError(t, m.ToggleMeeting())
	c.Advance(time.Minute)
	st = Status(m.State(), c.Now())
	assert.Equal(t, ModeMeeting, st.Mode)
	assert.Equal(t, int64(60), st.MeetingSeconds)
	assert.Equal(t, int64(120), st.WorkSeconds)
	assert.Equal(t, int64(180), st.ClockedSeconds)

	require.NoError(t, m.ToggleRest())
	c.Advance(30 * time.Second)
	st = Status(m.State(), c.Now())
	assert.Equal(t, ModeResting, st.Mode)
	assert.Equal(t, int64(30), st.RestSeconds)
	assert.Equal(t, int64(60), st.MeetingSeconds)
}

func TestWriteCSV(t *testing.T) {
	m, c := newMachine(t)
	require.NoError(t, m.ClockIn())
	id, _ := m.AddTask("Fix, the bug", "1")
	require.NoError(t, m.StartTask(id))
	c.Advance(time.Minute)
	require.NoError(t, m.ClockOut())

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, Build(m.State(), c.Now())))

	out := buf.String()
	assert.Contains(t, out, "Task summary\n")
	assert.Contains(t, out, "\"Fix, the bug\",in progress")
	assert.Contains(t, out, "Attendance\n")
	assert.Contains(t, out, "Audit log\n")
	assert.Equal(t, 2, strings.Count(out, "\n\n"))
}

func TestStatus_TaskWithoutPhases(t *testing.T) {
	now := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	s := worktime.New("alice")
	s.IsClockedIn = true
	s.ClockInInstant = now.Add(-time.Hour).UnixMilli()
	s.ActiveTaskID = "bare"
	s.Tasks = []worktime.Task{{ID: "bare", Name: "bare", SpentSeconds: 60}}

	st := Status(s, now)
	assert.Equal(t, ModeWorking, st.Mode)
	assert.Equal(t, "bare", st.ActiveTask)
	assert.Empty(t, st.ActivePhase)
	assert.Equal(t, int64(60), st.TaskSeconds)
}
