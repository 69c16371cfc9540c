package worktime

// WorkState is the per-user snapshot: activity flags, tasks and histories.
type WorkState struct {
	SchemaVersion       int                `json:"schemaVersion"`
	UserName            string             `json:"userName"`
	IsClockedIn         bool               `json:"isClockedIn"`
	ActiveTaskID        string             `json:"activeTaskId,omitempty"`
	IsMeeting           bool               `json:"isMeeting"`
	IsResting           bool               `json:"isResting"`
	ClockInTime         string             `json:"clockInTime,omitempty"`
	ClockInInstant      int64              `json:"clockInFullMs,omitempty"`
	MeetingAccumSeconds int64              `json:"meetingSeconds"`
	RestAccumSeconds    int64              `json:"restSeconds"`
	WorkAccumSeconds    int64              `json:"workSeconds"`
	LastWorkInstant     int64              `json:"lastWorkMs,omitempty"`
	Tasks               []Task             `json:"tasks"`
	Attendance          []AttendanceRecord `json:"attendance"`
	MeetingHistory      []HistoryEntry     `json:"meetingHistory"`
	RestHistory         []HistoryEntry     `json:"restHistory"`
}

type Task struct {
	ID               string     `json:"id"`
	Name             string     `json:"name"`
	EstimateHours    Hours      `json:"estimate"`
	CreatedAt        string     `json:"createdAt"`
	CompletedAt      string     `json:"completedAt,omitempty"`
	CompletedInstant int64      `json:"completedMs,omitempty"`
	Completed        bool       `json:"completed"`
	SpentSeconds     int64      `json:"spent"`
	Deviation        string     `json:"deviation,omitempty"`
	Solutions        []Solution `json:"solutions"`
	DeliverableNote  string     `json:"deliverable"`
	Remark           string     `json:"remark"`
}

// Solution is one phase of a task.
type Solution struct {
	Label        string         `json:"label"`
	AccumSeconds int64          `json:"accum"`
	History      []HistoryEntry `json:"history"`
	ResearchNote string         `json:"research"`
}

// HistoryEntry is open while DurationSeconds is nil.
type HistoryEntry struct {
	StartInstant    int64  `json:"startMs"`
	StartDisplay    string `json:"start"`
	EndDisplay      string `json:"end,omitempty"`
	DurationSeconds *int64 `json:"duration"`
}

func (e HistoryEntry) Open() bool {
	return e.DurationSeconds == nil
}

type AttendanceRecord struct {
	Date                string `json:"date"`
	ClockIn             string `json:"clockIn"`
	ClockOut            string `json:"clockOut"`
	ClockInInstant      int64  `json:"clockInMs"`
	ClockOutInstant     int64  `json:"clockOutMs"`
	TaskTotalSeconds    int64  `json:"taskTotal"`
	MeetingSeconds      int64  `json:"meetingTotal"`
	RestSeconds         int64  `json:"restTotal"`
	TotalClockedSeconds int64  `json:"totalClocked"`
	OtherSeconds        int64  `json:"other"`
}

// New returns the default state for a user who has never synced.
func New(userName string) *WorkState {
	return &WorkState{
		SchemaVersion:  SchemaVersion,
		UserName:       userName,
		Tasks:          []Task{},
		Attendance:     []AttendanceRecord{},
		MeetingHistory: []HistoryEntry{},
		RestHistory:    []HistoryEntry{},
	}
}

// FindTask returns the index of the task with id, or -1.
func (s *WorkState) FindTask(id string) int {
	for i := range s.Tasks {
		if s.Tasks[i].ID == id {
			return i
		}
	}
	return -1
}

// ActiveTask returns the running task, or nil.
func (s *WorkState) ActiveTask() *Task {
	if s.ActiveTaskID == "" {
		return nil
	}
	if i := s.FindTask(s.ActiveTaskID); i >= 0 {
		return &s.Tasks[i]
	}
	return nil
}

// CurrentSolution returns the last phase of the task. Every task carries at
// least one phase once normalized.
func (t *Task) CurrentSolution() *Solution {
	if len(t.Solutions) == 0 {
		return nil
	}
	return &t.Solutions[len(t.Solutions)-1]
}

// HasOpenActivity reports whether a task, meeting or rest timer is running.
func (s *WorkState) HasOpenActivity() bool {
	return s.IsClockedIn && (s.ActiveTaskID != "" || s.IsMeeting || s.IsResting)
}

// OpenEntryCount counts open history entries across every category.
func (s *WorkState) OpenEntryCount() int {
	n := countOpen(s.MeetingHistory) + countOpen(s.RestHistory)
	for _, t := range s.Tasks {
		for _, sol := range t.Solutions {
			n += countOpen(sol.History)
		}
	}
	return n
}

func countOpen(entries []HistoryEntry) int {
	n := 0
	for _, e := range entries {
		if e.Open() {
			n++
		}
	}
	return n
}

// Clone returns a deep copy.
func (s *WorkState) Clone() *WorkState {
	c := *s
	c.Tasks = make([]Task, len(s.Tasks))
	for i, t := range s.Tasks {
		c.Tasks[i] = t.clone()
	}
	c.Attendance = append([]AttendanceRecord{}, s.Attendance...)
	c.MeetingHistory = cloneHistory(s.MeetingHistory)
	c.RestHistory = cloneHistory(s.RestHistory)
	return &c
}

func (t Task) clone() Task {
	sols := make([]Solution, len(t.Solutions))
	for i, sol := range t.Solutions {
		sol.History = cloneHistory(sol.History)
		sols[i] = sol
	}
	t.Solutions = sols
	return t
}

func cloneHistory(entries []HistoryEntry) []HistoryEntry {
	out := make([]HistoryEntry, len(entries))
	for i, e := range entries {
		if e.DurationSeconds != nil {
			d := *e.DurationSeconds
			e.DurationSeconds = &d
		}
		out[i] = e
	}
	return out
}
