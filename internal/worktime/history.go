package worktime

import "time"

// OpenEntry returns the last entry of the log lacking a close, or nil.
func OpenEntry(log []HistoryEntry) *HistoryEntry {
	for i := len(log) - 1; i >= 0; i-- {
		if log[i].Open() {
			return &log[i]
		}
	}
	return nil
}

// push appends a new open entry starting at now.
func push(log []HistoryEntry, now time.Time) []HistoryEntry {
	return append(log, HistoryEntry{
		StartInstant: now.UnixMilli(),
		StartDisplay: now.Format(TimeLayout),
	})
}

// closeOpen closes the open entry and returns its duration. Closed entries
// are never touched.
func closeOpen(log []HistoryEntry, now time.Time) (int64, bool) {
	e := OpenEntry(log)
	if e == nil {
		return 0, false
	}
	d := Elapsed(e.StartInstant, now)
	e.EndDisplay = now.Format(TimeLayout)
	e.DurationSeconds = &d
	return d, true
}
