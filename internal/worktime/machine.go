package worktime

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Option func(*Machine)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(m *Machine) { m.now = now }
}

// WithObserver registers a callback that receives a copy of the state after
// every successful mutation.
func WithObserver(fn func(*WorkState)) Option {
	return func(m *Machine) { m.observer = fn }
}

func WithIDGenerator(fn func() string) Option {
	return func(m *Machine) { m.newID = fn }
}

// Machine owns one WorkState and is the only way to mutate it. Every
// operation runs against a copy and is committed only if it succeeds, so a
// rejected operation leaves the state untouched.
//
// Machine is not safe for concurrent use; callers drive it from a single
// goroutine.
type Machine struct {
	state    *WorkState
	now      func() time.Time
	newID    func() string
	observer func(*WorkState)
}

// NewMachine takes a copy of state and brings it to the same normalized shape
// a decoded snapshot has.
func NewMachine(state *WorkState, opts ...Option) *Machine {
	if state == nil {
		state = New("")
	}
	state = state.Clone()
	normalize(state, state.UserName)
	m := &Machine{
		state: state,
		now:   time.Now,
		newID: newTaskID,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// newTaskID returns a UUIDv7, which sorts in creation order.
func newTaskID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// State returns a copy of the current state.
func (m *Machine) State() *WorkState {
	return m.state.Clone()
}

func (m *Machine) apply(fn func(s *WorkState, now time.Time) error) error {
	next := m.state.Clone()
	if err := fn(next, m.now()); err != nil {
		return err
	}
	m.state = next
	if m.observer != nil {
		m.observer(next.Clone())
	}
	return nil
}

func (m *Machine) ClockIn() error {
	return m.apply(func(s *WorkState, now time.Time) error {
		if s.IsClockedIn {
			return transitionf("clock in", "already clocked in since %s", s.ClockInTime)
		}
		s.IsClockedIn = true
		s.ClockInTime = now.Format(TimeLayout)
		s.ClockInInstant = now.UnixMilli()
		s.MeetingAccumSeconds = 0
		s.RestAccumSeconds = 0
		s.WorkAccumSeconds = 0
		s.LastWorkInstant = 0
		s.MeetingHistory = []HistoryEntry{}
		s.RestHistory = []HistoryEntry{}
		return nil
	})
}

func (m *Machine) ClockOut() error {
	return m.apply(func(s *WorkState, now time.Time) error {
		if !s.IsClockedIn {
			return transitionf("clock out", "not clocked in")
		}
		preempt(s, now)

		total := Elapsed(s.ClockInInstant, now)
		other := total - s.WorkAccumSeconds - s.MeetingAccumSeconds - s.RestAccumSeconds
		if other < 0 {
			other = 0
		}
		s.Attendance = append(s.Attendance, AttendanceRecord{
			Date:                time.UnixMilli(s.ClockInInstant).In(now.Location()).Format(DateLayout),
			ClockIn:             s.ClockInTime,
			ClockOut:            now.Format(TimeLayout),
			ClockInInstant:      s.ClockInInstant,
			ClockOutInstant:     now.UnixMilli(),
			TaskTotalSeconds:    s.WorkAccumSeconds,
			MeetingSeconds:      s.MeetingAccumSeconds,
			RestSeconds:         s.RestAccumSeconds,
			TotalClockedSeconds: total,
			OtherSeconds:        other,
		})
		s.ActiveTaskID = ""
		s.IsClockedIn = false
		return nil
	})
}

func (m *Machine) StartTask(taskID string) error {
	return m.apply(func(s *WorkState, now time.Time) error {
		if !s.IsClockedIn {
			return transitionf("start task", "not clocked in")
		}
		i := s.FindTask(taskID)
		if i < 0 {
			return invalidf("start task", "task not found")
		}
		if s.Tasks[i].Completed {
			return invalidf("start task", "task %q is completed", s.Tasks[i].Name)
		}
		if s.ActiveTaskID == taskID {
			return transitionf("start task", "task %q is already running", s.Tasks[i].Name)
		}
		preempt(s, now)
		openTask(s, i, now)
		return nil
	})
}

func (m *Machine) StopTask() error {
	return m.apply(func(s *WorkState, now time.Time) error {
		if s.ActiveTask() == nil {
			return transitionf("stop task", "no task is running")
		}
		stopActive(s, now)
		return nil
	})
}

// ToggleMeeting ends an open meeting, or opens one after preempting any
// running task or rest.
func (m *Machine) ToggleMeeting() error {
	return m.apply(func(s *WorkState, now time.Time) error {
		if !s.IsClockedIn {
			return transitionf("toggle meeting", "not clocked in")
		}
		if s.IsMeeting {
			endMeeting(s, now)
			return nil
		}
		preempt(s, now)
		s.MeetingHistory = push(s.MeetingHistory, now)
		s.IsMeeting = true
		return nil
	})
}

func (m *Machine) ToggleRest() error {
	return m.apply(func(s *WorkState, now time.Time) error {
		if !s.IsClockedIn {
			return transitionf("toggle rest", "not clocked in")
		}
		if s.IsResting {
			endRest(s, now)
			return nil
		}
		preempt(s, now)
		s.RestHistory = push(s.RestHistory, now)
		s.IsResting = true
		return nil
	})
}

// AddTask inserts a new task at the front of the list and returns its id.
func (m *Machine) AddTask(name, estimate string) (string, error) {
	var id string
	err := m.apply(func(s *WorkState, now time.Time) error {
		name = strings.TrimSpace(name)
		if name == "" {
			return invalidf("add task", "task name is required")
		}
		hours, err := strconv.ParseFloat(strings.TrimSpace(estimate), 64)
		if err != nil || math.IsNaN(hours) || math.IsInf(hours, 0) || hours <= 0 {
			return invalidf("add task", "estimate %q must be a positive number of hours", estimate)
		}
		id = m.newID()
		task := Task{
			ID:            id,
			Name:          name,
			EstimateHours: Hours(hours),
			CreatedAt:     now.Format(DateTimeLayout),
			Solutions:     []Solution{{Label: phaseLabel(1), History: []HistoryEntry{}}},
		}
		s.Tasks = append([]Task{task}, s.Tasks...)
		return nil
	})
	if err != nil {
		return "", err
	}
	return id, nil
}

// AddSolutionPhase opens a new phase on a task. A running task keeps running:
// its entry on the old phase is closed and a fresh one opens on the new phase.
func (m *Machine) AddSolutionPhase(taskID string) error {
	return m.apply(func(s *WorkState, now time.Time) error {
		i := s.FindTask(taskID)
		if i < 0 {
			return invalidf("add phase", "task not found")
		}
		t := &s.Tasks[i]
		if t.Completed {
			return invalidf("add phase", "task %q is completed", t.Name)
		}
		if strings.TrimSpace(t.CurrentSolution().ResearchNote) == "" {
			return invalidf("add phase", "research note of %s is required before opening a new phase", t.CurrentSolution().Label)
		}
		running := s.ActiveTaskID == taskID
		if running {
			stopActive(s, now)
		}
		t.Solutions = append(t.Solutions, Solution{
			Label:   phaseLabel(len(t.Solutions) + 1),
			History: []HistoryEntry{},
		})
		if running {
			openTask(s, i, now)
		}
		return nil
	})
}

// CompleteTask closes a task and sinks it to the end of the list.
func (m *Machine) CompleteTask(taskID string) error {
	return m.apply(func(s *WorkState, now time.Time) error {
		i := s.FindTask(taskID)
		if i < 0 {
			return invalidf("complete task", "task not found")
		}
		t := &s.Tasks[i]
		if t.Completed {
			return transitionf("complete task", "task %q is already completed", t.Name)
		}
		if strings.TrimSpace(t.DeliverableNote) == "" {
			return invalidf("complete task", "deliverable note is required")
		}
		if strings.TrimSpace(t.CurrentSolution().ResearchNote) == "" {
			return invalidf("complete task", "research note of %s is required", t.CurrentSolution().Label)
		}
		if s.ActiveTaskID == taskID {
			stopActive(s, now)
		}
		t.Completed = true
		t.CompletedAt = now.Format(DateTimeLayout)
		t.CompletedInstant = now.UnixMilli()
		t.Deviation = DeviationLabel(t.EstimateHours, t.SpentSeconds)

		done := *t
		s.Tasks = append(s.Tasks[:i], s.Tasks[i+1:]...)
		s.Tasks = append(s.Tasks, done)
		return nil
	})
}

// ReopenTask clears completion and lifts the task to the front of the list.
func (m *Machine) ReopenTask(taskID string) error {
	return m.apply(func(s *WorkState, now time.Time) error {
		i := s.FindTask(taskID)
		if i < 0 {
			return invalidf("reopen task", "task not found")
		}
		t := s.Tasks[i]
		if !t.Completed {
			return transitionf("reopen task", "task %q is not completed", t.Name)
		}
		t.Completed = false
		t.CompletedAt = ""
		t.CompletedInstant = 0
		t.Deviation = ""

		s.Tasks = append(s.Tasks[:i], s.Tasks[i+1:]...)
		s.Tasks = append([]Task{t}, s.Tasks...)
		return nil
	})
}

func (m *Machine) DeleteTask(taskID string) error {
	return m.apply(func(s *WorkState, now time.Time) error {
		i := s.FindTask(taskID)
		if i < 0 {
			return invalidf("delete task", "task not found")
		}
		if s.ActiveTaskID == taskID {
			return transitionf("delete task", "task %q is running", s.Tasks[i].Name)
		}
		s.Tasks = append(s.Tasks[:i], s.Tasks[i+1:]...)
		return nil
	})
}

// SetResearchNote edits the note of the task's current phase.
func (m *Machine) SetResearchNote(taskID, note string) error {
	return m.editTask("set research note", taskID, func(t *Task) {
		t.CurrentSolution().ResearchNote = note
	})
}

func (m *Machine) SetDeliverableNote(taskID, note string) error {
	return m.editTask("set deliverable", taskID, func(t *Task) {
		t.DeliverableNote = note
	})
}

func (m *Machine) SetRemark(taskID, note string) error {
	return m.editTask("set remark", taskID, func(t *Task) {
		t.Remark = note
	})
}

func (m *Machine) SetUserName(name string) error {
	return m.apply(func(s *WorkState, now time.Time) error {
		name = strings.TrimSpace(name)
		if name == "" {
			return invalidf("set user name", "user name is required")
		}
		s.UserName = name
		return nil
	})
}

func (m *Machine) editTask(op, taskID string, edit func(t *Task)) error {
	return m.apply(func(s *WorkState, now time.Time) error {
		i := s.FindTask(taskID)
		if i < 0 {
			return invalidf(op, "task not found")
		}
		edit(&s.Tasks[i])
		return nil
	})
}

// preempt is the mutual exclusion rule: before any activity opens, the
// running task stops and an open meeting or rest ends.
func preempt(s *WorkState, now time.Time) {
	stopActive(s, now)
	endMeeting(s, now)
	endRest(s, now)
}

func openTask(s *WorkState, i int, now time.Time) {
	sol := s.Tasks[i].CurrentSolution()
	sol.History = push(sol.History, now)
	s.ActiveTaskID = s.Tasks[i].ID
	s.LastWorkInstant = now.UnixMilli()
}

// stopActive closes the running task's open entry and accumulates it into
// the task, its phase and the session total.
func stopActive(s *WorkState, now time.Time) {
	t := s.ActiveTask()
	if t != nil {
		for j := len(t.Solutions) - 1; j >= 0; j-- {
			if d, ok := closeOpen(t.Solutions[j].History, now); ok {
				t.SpentSeconds += d
				t.Solutions[j].AccumSeconds += d
				s.WorkAccumSeconds += d
				break
			}
		}
	}
	s.ActiveTaskID = ""
	s.LastWorkInstant = 0
}

func endMeeting(s *WorkState, now time.Time) {
	if d, ok := closeOpen(s.MeetingHistory, now); ok {
		s.MeetingAccumSeconds += d
	}
	s.IsMeeting = false
}

func endRest(s *WorkState, now time.Time) {
	if d, ok := closeOpen(s.RestHistory, now); ok {
		s.RestAccumSeconds += d
	}
	s.IsResting = false
}
