package reports

import (
	"sort"
	"time"

	"work-tracker.com/work-tracker/internal/worktime"
)

const (
	StatusCompleted  = "completed"
	StatusInProgress = "in progress"

	placeholder = "--"
)

type Category string

const (
	CategoryClockIn  Category = "clock-in"
	CategoryTask     Category = "task"
	CategoryMeeting  Category = "meeting"
	CategoryRest     Category = "rest"
	CategoryClockOut Category = "clock-out"
)

type TaskRow struct {
	Name        string `json:"name"`
	Status      string `json:"status"`
	CreatedAt   string `json:"createdAt"`
	Estimate    string `json:"estimate"`
	CompletedAt string `json:"completedAt"`
	Spent       string `json:"spent"`
	Deviation   string `json:"deviation"`
	Deliverable string `json:"deliverable"`
}

type AttendanceRow struct {
	Date     string `json:"date"`
	ClockIn  string `json:"clockIn"`
	ClockOut string `json:"clockOut"`
	Task     string `json:"task"`
	Meeting  string `json:"meeting"`
	Rest     string `json:"rest"`
	Other    string `json:"other"`
}

type AuditRow struct {
	StartInstant    int64    `json:"startMs"`
	Category        Category `json:"category"`
	Label           string   `json:"label"`
	Start           string   `json:"start"`
	End             string   `json:"end"`
	DurationSeconds int64    `json:"durationSeconds"`
	Duration        string   `json:"duration"`
}

type Report struct {
	Tasks      []TaskRow       `json:"tasks"`
	Attendance []AttendanceRow `json:"attendance"`
	Audit      []AuditRow      `json:"audit"`
}

// Build projects a snapshot into the three report tables. Open entries are
// measured against now, so the same snapshot read later reports more time.
func Build(s *worktime.WorkState, now time.Time) Report {
	return Report{
		Tasks:      taskSummary(s, now),
		Attendance: attendanceSummary(s),
		Audit:      auditLog(s, now),
	}
}

// TaskSpent is the task's accumulated time plus the live span if it runs.
func TaskSpent(s *worktime.WorkState, t *worktime.Task, now time.Time) int64 {
	spent := t.SpentSeconds
	if s.IsClockedIn && s.ActiveTaskID == t.ID {
		for j := len(t.Solutions) - 1; j >= 0; j-- {
			if e := worktime.OpenEntry(t.Solutions[j].History); e != nil {
				spent += worktime.Elapsed(e.StartInstant, now)
				break
			}
		}
	}
	return spent
}

func taskSummary(s *worktime.WorkState, now time.Time) []TaskRow {
	rows := make([]TaskRow, 0, len(s.Tasks))
	for i := range s.Tasks {
		t := &s.Tasks[i]
		row := TaskRow{
			Name:        t.Name,
			Status:      StatusInProgress,
			CreatedAt:   t.CreatedAt,
			Estimate:    worktime.FormatHours(t.EstimateHours),
			CompletedAt: placeholder,
			Spent:       worktime.FormatHHMM(TaskSpent(s, t, now)),
			Deviation:   placeholder,
			Deliverable: t.DeliverableNote,
		}
		if t.Completed {
			row.Status = StatusCompleted
			row.CompletedAt = t.CompletedAt
			if t.Deviation != "" {
				row.Deviation = t.Deviation
			}
		}
		rows = append(rows, row)
	}
	return rows
}

func attendanceSummary(s *worktime.WorkState) []AttendanceRow {
	rows := make([]AttendanceRow, 0, len(s.Attendance))
	for _, a := range s.Attendance {
		other := a.TotalClockedSeconds - a.TaskTotalSeconds - a.MeetingSeconds - a.RestSeconds
		if other < 0 {
			other = 0
		}
		rows = append(rows, AttendanceRow{
			Date:     a.Date,
			ClockIn:  a.ClockIn,
			ClockOut: a.ClockOut,
			Task:     worktime.FormatHHMM(a.TaskTotalSeconds),
			Meeting:  worktime.FormatHHMM(a.MeetingSeconds),
			Rest:     worktime.FormatHHMM(a.RestSeconds),
			Other:    worktime.FormatHHMM(other),
		})
	}
	return rows
}

func auditLog(s *worktime.WorkState, now time.Time) []AuditRow {
	var rows []AuditRow

	if s.ClockInInstant != 0 {
		rows = append(rows, marker(CategoryClockIn, "clock in", s.ClockInInstant, s.ClockInTime))
	}

	for i := range s.Tasks {
		t := &s.Tasks[i]
		active := s.IsClockedIn && s.ActiveTaskID == t.ID
		for j := range t.Solutions {
			sol := &t.Solutions[j]
			live := worktime.OpenEntry(sol.History)
			if !active {
				live = nil
			}
			rows = appendEntries(rows, CategoryTask, t.Name+" / "+sol.Label, sol.History, live, now)
		}
	}

	var meetingLive, restLive *worktime.HistoryEntry
	if s.IsClockedIn && s.IsMeeting {
		meetingLive = worktime.OpenEntry(s.MeetingHistory)
	}
	if s.IsClockedIn && s.IsResting {
		restLive = worktime.OpenEntry(s.RestHistory)
	}
	rows = appendEntries(rows, CategoryMeeting, "meeting", s.MeetingHistory, meetingLive, now)
	rows = appendEntries(rows, CategoryRest, "rest", s.RestHistory, restLive, now)

	if !s.IsClockedIn && len(s.Attendance) > 0 {
		last := s.Attendance[len(s.Attendance)-1]
		rows = append(rows, marker(CategoryClockOut, "clock out", last.ClockOutInstant, last.ClockOut))
	}

	sort.SliceStable(rows, func(a, b int) bool {
		return rows[a].StartInstant < rows[b].StartInstant
	})
	if rows == nil {
		rows = []AuditRow{}
	}
	return rows
}

func marker(cat Category, label string, instant int64, display string) AuditRow {
	return AuditRow{
		StartInstant: instant,
		Category:     cat,
		Label:        label,
		Start:        display,
		End:          placeholder,
		Duration:     placeholder,
	}
}

// appendEntries emits one row per entry. live points at the entry that is
// currently running, if any; other open entries are orphans and show no
// duration.
func appendEntries(rows []AuditRow, cat Category, label string, log []worktime.HistoryEntry, live *worktime.HistoryEntry, now time.Time) []AuditRow {
	for i := range log {
		e := &log[i]
		row := AuditRow{
			StartInstant: e.StartInstant,
			Category:     cat,
			Label:        label,
			Start:        e.StartDisplay,
			End:          e.EndDisplay,
		}
		switch {
		case e.DurationSeconds != nil:
			row.DurationSeconds = *e.DurationSeconds
			row.Duration = worktime.FormatHHMMSS(*e.DurationSeconds)
		case e == live:
			row.DurationSeconds = worktime.Elapsed(e.StartInstant, now)
			row.Duration = worktime.FormatHHMMSS(row.DurationSeconds)
			row.End = StatusInProgress
		default:
			row.Duration = placeholder
			row.End = placeholder
		}
		if row.End == "" {
			row.End = placeholder
		}
		rows = append(rows, row)
	}
	return rows
}
