package worktime

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// SchemaVersion is the snapshot layout written by this package. Snapshots
// without a version predate it and are migrated on load.
const SchemaVersion = 1

type migration func(s *WorkState)

// migrations[v] upgrades a snapshot from version v to v+1.
var migrations = []migration{
	migrateLegacy,
}

// Hours accepts both JSON numbers and numeric strings; older snapshots stored
// the raw text of the estimate input.
type Hours float64

func (h *Hours) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*h = 0
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(s)
		if s == "" {
			*h = 0
			return nil
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("invalid estimate %q", s)
		}
		*h = Hours(v)
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*h = Hours(v)
	return nil
}

// Decode parses a stored snapshot. Corrupt input yields a fresh default state
// for userName instead of an error.
func Decode(data []byte, userName string) *WorkState {
	s, err := decode(data, userName)
	if err != nil {
		return New(userName)
	}
	return s
}

// Canonicalize decodes a client-supplied snapshot, migrates it forward and
// re-encodes it in the current layout.
func Canonicalize(data []byte, userName string) ([]byte, error) {
	s, err := decode(data, userName)
	if err != nil {
		return nil, err
	}
	return Encode(s)
}

func Encode(s *WorkState) ([]byte, error) {
	return json.Marshal(s)
}

func decode(data []byte, userName string) (*WorkState, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("empty snapshot")
	}
	var s WorkState
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	if s.SchemaVersion > SchemaVersion {
		return nil, fmt.Errorf("snapshot schema %d is newer than %d", s.SchemaVersion, SchemaVersion)
	}
	if s.SchemaVersion < 0 {
		return nil, fmt.Errorf("snapshot schema %d is invalid", s.SchemaVersion)
	}
	for v := s.SchemaVersion; v < SchemaVersion; v++ {
		migrations[v](&s)
	}
	s.SchemaVersion = SchemaVersion
	normalize(&s, userName)
	return &s, nil
}

// migrateLegacy fills the fields that unversioned snapshots may lack.
func migrateLegacy(s *WorkState) {
	for i := range s.Tasks {
		t := &s.Tasks[i]
		if len(t.Solutions) == 0 {
			t.Solutions = []Solution{{Label: phaseLabel(1), AccumSeconds: t.SpentSeconds}}
		}
	}
}

// normalize enforces the structural invariants every loaded snapshot must
// satisfy regardless of version.
func normalize(s *WorkState, userName string) {
	if s.UserName == "" {
		s.UserName = userName
	}
	if s.Tasks == nil {
		s.Tasks = []Task{}
	}
	if s.Attendance == nil {
		s.Attendance = []AttendanceRecord{}
	}
	if s.MeetingHistory == nil {
		s.MeetingHistory = []HistoryEntry{}
	}
	if s.RestHistory == nil {
		s.RestHistory = []HistoryEntry{}
	}
	for i := range s.Tasks {
		t := &s.Tasks[i]
		if len(t.Solutions) == 0 {
			t.Solutions = []Solution{{Label: phaseLabel(1)}}
		}
		for j := range t.Solutions {
			if t.Solutions[j].Label == "" {
				t.Solutions[j].Label = phaseLabel(j + 1)
			}
			if t.Solutions[j].History == nil {
				t.Solutions[j].History = []HistoryEntry{}
			}
		}
	}
	if s.ActiveTaskID != "" && s.FindTask(s.ActiveTaskID) < 0 {
		s.ActiveTaskID = ""
		s.LastWorkInstant = 0
	}
	if !s.IsClockedIn {
		s.ActiveTaskID = ""
		s.IsMeeting = false
		s.IsResting = false
		s.LastWorkInstant = 0
	}
}
