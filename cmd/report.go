package cmd

import (
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"work-tracker.com/work-tracker/internal/reports"
)

var reportCSV bool

var (
	reportTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("#FAFAFA")).
				Background(lipgloss.Color("#7D56F4")).
				Padding(0, 1)

	reportHeaderStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	reportCellStyle   = lipgloss.NewStyle().Padding(0, 1)
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Print the task summary, attendance and audit log",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(cmd.Context())
		if err != nil {
			return err
		}
		defer s.close(cmd.Context())

		r := reports.Build(s.machine.State(), time.Now())
		if reportCSV {
			return reports.WriteCSV(cmd.OutOrStdout(), r)
		}

		taskRows := make([][]string, 0, len(r.Tasks))
		for _, t := range r.Tasks {
			taskRows = append(taskRows, []string{t.Name, t.Status, t.CreatedAt, t.Estimate, t.CompletedAt, t.Spent, t.Deviation, t.Deliverable})
		}
		attendanceRows := make([][]string, 0, len(r.Attendance))
		for _, a := range r.Attendance {
			attendanceRows = append(attendanceRows, []string{a.Date, a.ClockIn, a.ClockOut, a.Task, a.Meeting, a.Rest, a.Other})
		}
		auditRows := make([][]string, 0, len(r.Audit))
		for _, a := range r.Audit {
			auditRows = append(auditRows, []string{string(a.Category), a.Label, a.Start, a.End, a.Duration})
		}

		cmd.Println(lipgloss.JoinVertical(lipgloss.Left,
			reportTitleStyle.Render("Task summary"),
			renderTable([]string{"Task", "Status", "Created", "Estimate (h)", "Completed", "Spent", "Deviation", "Deliverable"}, taskRows),
			reportTitleStyle.Render("Attendance"),
			renderTable([]string{"Date", "Clock in", "Clock out", "Task", "Meeting", "Rest", "Other"}, attendanceRows),
			reportTitleStyle.Render("Audit log"),
			renderTable([]string{"Category", "Label", "Start", "End", "Duration"}, auditRows),
		))
		return nil
	},
}

func renderTable(headers []string, rows [][]string) string {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("#874BFD"))).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return reportHeaderStyle
			}
			return reportCellStyle
		}).
		Headers(headers...).
		Rows(rows...).
		Render()
}

func init() {
	reportCmd.Flags().BoolVar(&reportCSV, "csv", false, "write the report as CSV")
	rootCmd.AddCommand(reportCmd)
}
