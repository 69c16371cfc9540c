package reports

import (
	"encoding/csv"
	"io"
)

// WriteCSV writes the three tables one after another, each preceded by a
// title row and a header row and separated by a blank line.
func WriteCSV(w io.Writer, r Report) error {
	cw := csv.NewWriter(w)

	records := [][]string{
		{"Task summary"},
		{"Task", "Status", "Created", "Estimate (h)", "Completed", "Spent", "Deviation", "Deliverable"},
	}
	for _, t := range r.Tasks {
		records = append(records, []string{t.Name, t.Status, t.CreatedAt, t.Estimate, t.CompletedAt, t.Spent, t.Deviation, t.Deliverable})
	}

	records = append(records, nil,
		[]string{"Attendance"},
		[]string{"Date", "Clock in", "Clock out", "Task", "Meeting", "Rest", "Other"},
	)
	for _, a := range r.Attendance {
		records = append(records, []string{a.Date, a.ClockIn, a.ClockOut, a.Task, a.Meeting, a.Rest, a.Other})
	}

	records = append(records, nil,
		[]string{"Audit log"},
		[]string{"Category", "Activity", "Start", "End", "Duration"},
	)
	for _, e := range r.Audit {
		records = append(records, []string{string(e.Category), e.Label, e.Start, e.End, e.Duration})
	}

	for _, rec := range records {
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
