package worktime

import (
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time { return c.t }

func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestMachine(t *testing.T) (*Machine, *fakeClock) {
	t.Helper()
	clock := &fakeClock{t: time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)}
	seq := 0
	m := NewMachine(New("alice"),
		WithClock(clock.Now),
		WithIDGenerator(func() string {
			seq++
			return fmt.Sprintf("task-%02d", seq)
		}),
	)
	return m, clock
}

func encoded(t *testing.T, s *WorkState) string {
	t.Helper()
	b, err := Encode(s)
	require.NoError(t, err)
	return string(b)
}

func TestMachine_ClockInTwiceIsInvalidTransition(t *testing.T) {
	m, _ := newTestMachine(t)

	require.NoError(t, m.ClockIn())
	err := m.ClockIn()

	assert.True(t, IsInvalidTransition(err))
	assert.False(t, IsValidation(err))
}

func TestMachine_ClockOutWhenClockedOutFails(t *testing.T) {
	m, _ := newTestMachine(t)

	err := m.ClockOut()
	assert.True(t, IsInvalidTransition(err))

	require.NoError(t, m.ClockIn())
	require.NoError(t, m.ClockOut())
	assert.True(t, IsInvalidTransition(m.ClockOut()))
	assert.Len(t, m.State().Attendance, 1)
}

func TestMachine_ScenarioTaskThenMeeting(t *testing.T) {
	m, clock := newTestMachine(t)

	require.NoError(t, m.ClockIn())
	id, err := m.AddTask("A", "1")
	require.NoError(t, err)
	require.NoError(t, m.StartTask(id))
	clock.Advance(60 * time.Second)
	require.NoError(t, m.StopTask())
	require.NoError(t, m.ToggleMeeting())
	clock.Advance(30 * time.Second)
	require.NoError(t, m.ToggleMeeting())
	require.NoError(t, m.ClockOut())

	s := m.State()
	assert.Equal(t, int64(60), s.Tasks[0].SpentSeconds)
	assert.Equal(t, int64(30), s.MeetingAccumSeconds)
	require.Len(t, s.Attendance, 1)

	rec := s.Attendance[0]
	assert.Equal(t, int64(90), rec.TotalClockedSeconds)
	assert.Equal(t, int64(60), rec.TaskTotalSeconds)
	assert.Equal(t, int64(30), rec.MeetingSeconds)
	assert.Equal(t, int64(0), rec.OtherSeconds)
	assert.Equal(t, "2026-03-02", rec.Date)
	assert.Equal(t, "09:00:00", rec.ClockIn)
	assert.Equal(t, "09:01:30", rec.ClockOut)
	assert.Zero(t, s.OpenEntryCount())
}

func TestMachine_ClockOutClosesOpenTimerAndComputesOther(t *testing.T) {
	m, clock := newTestMachine(t)

	require.NoError(t, m.ClockIn())
	clock.Advance(10 * time.Minute)
	id, _ := m.AddTask("write report", "2")
	require.NoError(t, m.StartTask(id))
	clock.Advance(20 * time.Minute)
	require.NoError(t, m.ToggleRest())
	clock.Advance(5 * time.Minute)
	require.NoError(t, m.ClockOut())

	s := m.State()
	assert.False(t, s.IsClockedIn)
	assert.False(t, s.IsResting)
	assert.Empty(t, s.ActiveTaskID)
	assert.Zero(t, s.OpenEntryCount())

	rec := s.Attendance[0]
	assert.Equal(t, int64(35*60), rec.TotalClockedSeconds)
	assert.Equal(t, int64(20*60), rec.TaskTotalSeconds)
	assert.Equal(t, int64(5*60), rec.RestSeconds)
	assert.Equal(t, int64(10*60), rec.OtherSeconds)

	// accumulators survive clock-out and reset at the next clock-in
	assert.Equal(t, int64(5*60), s.RestAccumSeconds)
	require.NoError(t, m.ClockIn())
	s = m.State()
	assert.Zero(t, s.RestAccumSeconds)
	assert.Empty(t, s.RestHistory)
	assert.Zero(t, s.WorkAccumSeconds)
}

func TestMachine_StartTaskRequiresClockIn(t *testing.T) {
	m, _ := newTestMachine(t)
	id, err := m.AddTask("A", "1")
	require.NoError(t, err)

	assert.True(t, IsInvalidTransition(m.StartTask(id)))
	assert.True(t, IsInvalidTransition(m.StopTask()))
}

func TestMachine_StartTaskSwitchesFromAnotherTask(t *testing.T) {
	m, clock := newTestMachine(t)
	require.NoError(t, m.ClockIn())
	a, _ := m.AddTask("A", "1")
	b, _ := m.AddTask("B", "1")

	require.NoError(t, m.StartTask(a))
	clock.Advance(45 * time.Second)
	require.NoError(t, m.StartTask(b))

	s := m.State()
	assert.Equal(t, b, s.ActiveTaskID)
	ta := s.Tasks[s.FindTask(a)]
	tb := s.Tasks[s.FindTask(b)]
	assert.Equal(t, int64(45), ta.SpentSeconds)
	require.Len(t, ta.Solutions[0].History, 1)
	assert.False(t, ta.Solutions[0].History[0].Open())
	require.Len(t, tb.Solutions[0].History, 1)
	assert.True(t, tb.Solutions[0].History[0].Open())
	assert.Equal(t, 1, s.OpenEntryCount())

	assert.True(t, IsInvalidTransition(m.StartTask(b)))
}

func TestMachine_MeetingPreemptsTaskAndRest(t *testing.T) {
	m, clock := newTestMachine(t)
	require.NoError(t, m.ClockIn())
	id, _ := m.AddTask("A", "1")

	require.NoError(t, m.StartTask(id))
	clock.Advance(time.Minute)
	require.NoError(t, m.ToggleMeeting())

	s := m.State()
	assert.Empty(t, s.ActiveTaskID)
	assert.True(t, s.IsMeeting)
	assert.Equal(t, int64(60), s.Tasks[0].SpentSeconds)
	assert.Len(t, s.MeetingHistory, 1)
	assert.Equal(t, 1, s.OpenEntryCount())

	clock.Advance(2 * time.Minute)
	require.NoError(t, m.ToggleRest())

	s = m.State()
	assert.False(t, s.IsMeeting)
	assert.True(t, s.IsResting)
	assert.Equal(t, int64(120), s.MeetingAccumSeconds)
	assert.Equal(t, 1, s.OpenEntryCount())

	clock.Advance(time.Minute)
	require.NoError(t, m.StartTask(id))
	s = m.State()
	assert.False(t, s.IsResting)
	assert.Equal(t, int64(60), s.RestAccumSeconds)
	assert.Equal(t, 1, s.OpenEntryCount())
}

func TestMachine_AddTaskValidation(t *testing.T) {
	m, _ := newTestMachine(t)
	before := encoded(t, m.State())

	for _, tc := range []struct{ name, estimate string }{
		{"", "1"},
		{"   ", "1"},
		{"A", ""},
		{"A", "abc"},
		{"A", "0"},
		{"A", "-2"},
		{"A", "NaN"},
	} {
		_, err := m.AddTask(tc.name, tc.estimate)
		assert.True(t, IsValidation(err), "name=%q estimate=%q", tc.name, tc.estimate)
	}
	assert.Equal(t, before, encoded(t, m.State()))
}

func TestMachine_AddTaskInsertsAtFront(t *testing.T) {
	m, _ := newTestMachine(t)
	a, _ := m.AddTask("A", "1.5")
	b, _ := m.AddTask("B", "2")

	s := m.State()
	require.Len(t, s.Tasks, 2)
	assert.Equal(t, b, s.Tasks[0].ID)
	assert.Equal(t, a, s.Tasks[1].ID)
	assert.Equal(t, Hours(1.5), s.Tasks[1].EstimateHours)
	require.Len(t, s.Tasks[0].Solutions, 1)
	assert.Equal(t, "Phase 1", s.Tasks[0].Solutions[0].Label)
	assert.Empty(t, s.Tasks[0].Solutions[0].ResearchNote)
}

func TestMachine_CompleteTaskValidationLeavesStateUnchanged(t *testing.T) {
	m, clock := newTestMachine(t)
	require.NoError(t, m.ClockIn())
	id, _ := m.AddTask("A", "1")
	require.NoError(t, m.StartTask(id))
	clock.Advance(time.Minute)

	before := encoded(t, m.State())
	err := m.CompleteTask(id)
	require.Error(t, err)
	assert.True(t, IsValidation(err))
	assert.Equal(t, before, encoded(t, m.State()))

	require.NoError(t, m.SetDeliverableNote(id, "report.pdf"))
	before = encoded(t, m.State())
	err = m.CompleteTask(id)
	assert.True(t, IsValidation(err))
	assert.Contains(t, err.Error(), "research note")
	assert.Equal(t, before, encoded(t, m.State()))
}

func TestMachine_CompleteAndReopenReorderTasks(t *testing.T) {
	m, clock := newTestMachine(t)
	require.NoError(t, m.ClockIn())
	a, _ := m.AddTask("A", "1")
	b, _ := m.AddTask("B", "1")
	c, _ := m.AddTask("C", "1")
	// order: C, B, A

	require.NoError(t, m.StartTask(b))
	clock.Advance(90 * time.Minute)
	require.NoError(t, m.SetDeliverableNote(b, "done"))
	require.NoError(t, m.SetResearchNote(b, "looked into it"))
	require.NoError(t, m.CompleteTask(b))

	s := m.State()
	assert.Equal(t, []string{c, a, b}, taskIDs(s))
	done := s.Tasks[2]
	assert.True(t, done.Completed)
	assert.Equal(t, "2026-03-02 10:30", done.CompletedAt)
	assert.Equal(t, "delayed by 00:30", done.Deviation)
	assert.Empty(t, s.ActiveTaskID)
	assert.Zero(t, s.OpenEntryCount())

	assert.True(t, IsValidation(m.StartTask(b)))
	assert.True(t, IsInvalidTransition(m.CompleteTask(b)))
	assert.True(t, IsInvalidTransition(m.ReopenTask(a)))

	require.NoError(t, m.ReopenTask(b))
	s = m.State()
	assert.Equal(t, []string{b, c, a}, taskIDs(s))
	assert.False(t, s.Tasks[0].Completed)
	assert.Empty(t, s.Tasks[0].CompletedAt)
	assert.Empty(t, s.Tasks[0].Deviation)
}

func TestMachine_AddSolutionPhaseRequiresResearchNote(t *testing.T) {
	m, _ := newTestMachine(t)
	id, _ := m.AddTask("A", "1")

	err := m.AddSolutionPhase(id)
	assert.True(t, IsValidation(err))
	assert.Len(t, m.State().Tasks[0].Solutions, 1)
}

func TestMachine_AddSolutionPhaseRestartsRunningTimer(t *testing.T) {
	m, clock := newTestMachine(t)
	require.NoError(t, m.ClockIn())
	id, _ := m.AddTask("A", "1")
	require.NoError(t, m.StartTask(id))
	clock.Advance(2 * time.Minute)
	require.NoError(t, m.SetResearchNote(id, "first approach failed"))
	require.NoError(t, m.AddSolutionPhase(id))
	clock.Advance(3 * time.Minute)
	require.NoError(t, m.StopTask())

	task := m.State().Tasks[0]
	require.Len(t, task.Solutions, 2)
	assert.Equal(t, "Phase 2", task.Solutions[1].Label)
	assert.Equal(t, int64(120), task.Solutions[0].AccumSeconds)
	assert.Equal(t, int64(180), task.Solutions[1].AccumSeconds)
	assert.Equal(t, int64(300), task.SpentSeconds)
	require.Len(t, task.Solutions[1].History, 1)
	assert.Equal(t, int64(180), *task.Solutions[1].History[0].DurationSeconds)
}

func TestMachine_DeleteTask(t *testing.T) {
	m, _ := newTestMachine(t)
	require.NoError(t, m.ClockIn())
	id, _ := m.AddTask("A", "1")
	require.NoError(t, m.StartTask(id))

	assert.True(t, IsInvalidTransition(m.DeleteTask(id)))
	require.NoError(t, m.StopTask())
	require.NoError(t, m.DeleteTask(id))
	assert.Empty(t, m.State().Tasks)
	assert.True(t, IsValidation(m.DeleteTask(id)))
}

func TestMachine_ObserverSeesOnlyCommittedStates(t *testing.T) {
	var seen []*WorkState
	clock := &fakeClock{t: time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)}
	m := NewMachine(New("alice"), WithClock(clock.Now), WithObserver(func(s *WorkState) {
		seen = append(seen, s)
	}))

	require.NoError(t, m.ClockIn())
	require.Error(t, m.ClockIn())
	require.Error(t, m.StopTask())
	require.NoError(t, m.ToggleRest())

	require.Len(t, seen, 2)
	assert.True(t, seen[0].IsClockedIn)
	assert.False(t, seen[0].IsResting)
	assert.True(t, seen[1].IsResting)

	// observers get copies
	seen[1].Tasks = append(seen[1].Tasks, Task{ID: "x"})
	assert.Empty(t, m.State().Tasks)
}

func TestMachine_RandomWalkKeepsInvariants(t *testing.T) {
	m, clock := newTestMachine(t)
	rng := rand.New(rand.NewSource(7))
	var ids []string
	for i := 0; i < 4; i++ {
		id, err := m.AddTask(fmt.Sprintf("T%d", i), "1")
		require.NoError(t, err)
		ids = append(ids, id)
	}

	for step := 0; step < 500; step++ {
		clock.Advance(time.Duration(rng.Intn(120)) * time.Second)
		id := ids[rng.Intn(len(ids))]
		switch rng.Intn(10) {
		case 0:
			_ = m.ClockIn()
		case 1:
			_ = m.ClockOut()
		case 2, 3:
			_ = m.StartTask(id)
		case 4:
			_ = m.StopTask()
		case 5:
			_ = m.ToggleMeeting()
		case 6:
			_ = m.ToggleRest()
		case 7:
			_ = m.SetResearchNote(id, "note")
			_ = m.AddSolutionPhase(id)
		case 8:
			_ = m.SetDeliverableNote(id, "out")
			_ = m.SetResearchNote(id, "note")
			_ = m.CompleteTask(id)
		case 9:
			_ = m.ReopenTask(id)
		}

		s := m.State()
		if s.IsClockedIn {
			active := 0
			if s.ActiveTaskID != "" {
				active++
			}
			if s.IsMeeting {
				active++
			}
			if s.IsResting {
				active++
			}
			require.LessOrEqual(t, active, 1, "step %d", step)
			require.LessOrEqual(t, s.OpenEntryCount(), 1, "step %d", step)
			require.Equal(t, active, s.OpenEntryCount(), "step %d", step)
		} else {
			require.Zero(t, s.OpenEntryCount(), "step %d", step)
			require.Empty(t, s.ActiveTaskID)
			require.False(t, s.IsMeeting)
			require.False(t, s.IsResting)
		}
		for _, task := range s.Tasks {
			var closed int64
			for _, sol := range task.Solutions {
				for _, e := range sol.History {
					if !e.Open() {
						closed += *e.DurationSeconds
					}
				}
			}
			require.Equal(t, closed, task.SpentSeconds, "step %d task %s", step, task.Name)
		}
	}
}

func taskIDs(s *WorkState) []string {
	out := make([]string, len(s.Tasks))
	for i, t := range s.Tasks {
		out[i] = t.ID
	}
	return out
}

func TestNewMachine_NormalizesHandBuiltState(t *testing.T) {
	raw := &WorkState{
		UserName:    "alice",
		IsClockedIn: true,
		Tasks:       []Task{{ID: "bare", Name: "bare", EstimateHours: 1}},
	}
	clock := &fakeClock{t: time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)}
	m := NewMachine(raw, WithClock(clock.Now))

	require.NoError(t, m.StartTask("bare"))
	require.NoError(t, m.SetResearchNote("bare", "notes"))
	require.NoError(t, m.AddSolutionPhase("bare"))
	require.NoError(t, m.SetResearchNote("bare", "more notes"))
	require.NoError(t, m.SetDeliverableNote("bare", "done"))
	require.NoError(t, m.CompleteTask("bare"))

	s := m.State()
	require.Len(t, s.Tasks[0].Solutions, 2)
	assert.Equal(t, "Phase 2", s.Tasks[0].Solutions[1].Label)
	assert.Nil(t, raw.Tasks[0].Solutions, "caller's state is not modified")
}
