package dashboard

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"work-tracker.com/work-tracker/internal/reports"
	"work-tracker.com/work-tracker/internal/worktime"
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(lipgloss.Color("#4A90E2")).
			Padding(0, 1).
			MarginBottom(1)

	workingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#04B575")).
			Bold(true)

	idleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B")).
			Bold(true)

	pauseStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F7DC6F")).
			Bold(true)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#874BFD")).
			Padding(1, 2).
			MarginBottom(1)

	footerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#626262"))
)

type tickMsg time.Time

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Model is the live view. Every key maps to one machine operation; the
// counters are recomputed from start instants on each one-second tick.
type Model struct {
	machine *worktime.Machine
	now     time.Time
	width   int
	message string
}

func New(machine *worktime.Machine, now time.Time) Model {
	return Model{machine: machine, now: now}
}

func (m Model) Init() tea.Cmd {
	return tickCmd()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		key := msg.String()
		switch key {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		case "i":
			m.run(m.machine.ClockIn)
		case "o":
			m.run(m.machine.ClockOut)
		case "m":
			m.run(m.machine.ToggleMeeting)
		case "r":
			m.run(m.machine.ToggleRest)
		case "s":
			m.run(m.machine.StopTask)
		default:
			if n, err := strconv.Atoi(key); err == nil {
				m.startNth(n)
			}
		}
	case tea.WindowSizeMsg:
		m.width = msg.Width
	case tickMsg:
		m.now = time.Time(msg)
		return m, tickCmd()
	}
	return m, nil
}

func (m *Model) run(op func() error) {
	if err := op(); err != nil {
		m.message = err.Error()
		return
	}
	m.message = ""
}

func (m *Model) startNth(n int) {
	open := openTasks(m.machine.State())
	if n < 1 || n > len(open) {
		return
	}
	id := open[n-1].ID
	m.run(func() error { return m.machine.StartTask(id) })
}

func openTasks(s *worktime.WorkState) []worktime.Task {
	var open []worktime.Task
	for _, t := range s.Tasks {
		if !t.Completed {
			open = append(open, t)
		}
	}
	return open
}

func (m Model) View() string {
	state := m.machine.State()
	status := reports.Status(state, m.now)

	var b strings.Builder

	header := fmt.Sprintf("Work tracker - %s - %s", status.UserName, m.now.Format(worktime.DateTimeLayout))
	b.WriteString(headerStyle.Render(header))
	b.WriteString("\n")

	statusBox := fmt.Sprintf(
		"STATUS  %s\n\n"+
			"Clocked in:  %s\n"+
			"Clocked:     %s\n"+
			"Work:        %s\n"+
			"Meeting:     %s\n"+
			"Rest:        %s",
		modeStyle(status.Mode).Render(status.Mode),
		orDash(status.ClockInTime),
		worktime.FormatHHMMSS(status.ClockedSeconds),
		worktime.FormatHHMMSS(status.WorkSeconds),
		worktime.FormatHHMMSS(status.MeetingSeconds),
		worktime.FormatHHMMSS(status.RestSeconds),
	)
	if status.ActiveTask != "" {
		statusBox += fmt.Sprintf("\n\nTask: %s / %s  %s",
			status.ActiveTask, status.ActivePhase, workingStyle.Render(worktime.FormatHHMMSS(status.TaskSeconds)))
	}
	b.WriteString(boxStyle.Render(statusBox))
	b.WriteString("\n")

	var tasks strings.Builder
	tasks.WriteString("TASKS\n")
	open := openTasks(state)
	if len(open) == 0 {
		tasks.WriteString("\n(none)")
	}
	for i, t := range open {
		marker := " "
		if t.ID == state.ActiveTaskID {
			marker = workingStyle.Render("●")
		}
		spent := reports.TaskSpent(state, &t, m.now)
		fmt.Fprintf(&tasks, "\n%s %d. %s  %s / %sh", marker, i+1, t.Name,
			worktime.FormatHHMM(spent), worktime.FormatHours(t.EstimateHours))
	}
	b.WriteString(boxStyle.Render(tasks.String()))
	b.WriteString("\n")

	if m.message != "" {
		b.WriteString(idleStyle.Render(m.message))
		b.WriteString("\n")
	}
	b.WriteString(footerStyle.Render("i clock in • o clock out • 1-9 start task • s stop • m meeting • r rest • q quit"))

	return b.String()
}

func modeStyle(mode string) lipgloss.Style {
	switch mode {
	case reports.ModeWorking:
		return workingStyle
	case reports.ModeMeeting, reports.ModeResting:
		return pauseStyle
	default:
		return idleStyle
	}
}

func orDash(s string) string {
	if s == "" {
		return "--"
	}
	return s
}
