package reports

import (
	"time"

	"work-tracker.com/work-tracker/internal/worktime"
)

const (
	ModeClockedOut = "clocked out"
	ModeIdle       = "idle"
	ModeWorking    = "working"
	ModeMeeting    = "meeting"
	ModeResting    = "resting"
)

// LiveStatus is what the live view shows at one instant.
type LiveStatus struct {
	UserName       string `json:"userName"`
	ClockedIn      bool   `json:"clockedIn"`
	Mode           string `json:"mode"`
	ClockInTime    string `json:"clockInTime,omitempty"`
	ActiveTaskID   string `json:"activeTaskId,omitempty"`
	ActiveTask     string `json:"activeTask,omitempty"`
	ActivePhase    string `json:"activePhase,omitempty"`
	TaskSeconds    int64  `json:"taskSeconds"`
	WorkSeconds    int64  `json:"workSeconds"`
	MeetingSeconds int64  `json:"meetingSeconds"`
	RestSeconds    int64  `json:"restSeconds"`
	ClockedSeconds int64  `json:"clockedSeconds"`
}

// Status derives every counter from recorded start instants and now.
func Status(s *worktime.WorkState, now time.Time) LiveStatus {
	st := LiveStatus{
		UserName:       s.UserName,
		ClockedIn:      s.IsClockedIn,
		Mode:           ModeClockedOut,
		MeetingSeconds: s.MeetingAccumSeconds,
		RestSeconds:    s.RestAccumSeconds,
	}
	if !s.IsClockedIn {
		return st
	}

	st.Mode = ModeIdle
	st.ClockInTime = s.ClockInTime
	st.ClockedSeconds = worktime.Elapsed(s.ClockInInstant, now)
	st.WorkSeconds = s.WorkAccumSeconds

	if t := s.ActiveTask(); t != nil {
		st.Mode = ModeWorking
		st.ActiveTaskID = t.ID
		st.ActiveTask = t.Name
		if sol := t.CurrentSolution(); sol != nil {
			st.ActivePhase = sol.Label
		}
		st.TaskSeconds = TaskSpent(s, t, now)
		st.WorkSeconds += st.TaskSeconds - t.SpentSeconds
	}
	if s.IsMeeting {
		st.Mode = ModeMeeting
		if e := worktime.OpenEntry(s.MeetingHistory); e != nil {
			st.MeetingSeconds += worktime.Elapsed(e.StartInstant, now)
		}
	}
	if s.IsResting {
		st.Mode = ModeResting
		if e := worktime.OpenEntry(s.RestHistory); e != nil {
			st.RestSeconds += worktime.Elapsed(e.StartInstant, now)
		}
	}
	return st
}
