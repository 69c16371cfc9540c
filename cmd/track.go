package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"work-tracker.com/work-tracker/internal/reports"
	"work-tracker.com/work-tracker/internal/worktime"
)

// mutation runs op against the fetched state, then prints the new status.
func mutation(use, short string, args cobra.PositionalArgs, op func(cmd *cobra.Command, m *worktime.Machine, args []string) error) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  args,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd.Context())
			if err != nil {
				return err
			}
			defer s.close(cmd.Context())

			if err := op(cmd, s.machine, args); err != nil {
				return err
			}
			printStatus(cmd, s.machine.State())
			return nil
		},
	}
}

// taskMutation resolves the first argument to a task id before running op.
func taskMutation(use, short string, nargs int, op func(m *worktime.Machine, id string, rest []string) error) *cobra.Command {
	return mutation(use, short, cobra.ExactArgs(nargs), func(_ *cobra.Command, m *worktime.Machine, args []string) error {
		id, err := resolveTask(m.State(), args[0])
		if err != nil {
			return err
		}
		return op(m, id, args[1:])
	})
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the current activity and counters",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(cmd.Context())
		if err != nil {
			return err
		}
		defer s.close(cmd.Context())

		state := s.machine.State()
		printStatus(cmd, state)
		for _, t := range state.Tasks {
			mark := " "
			switch {
			case t.ID == state.ActiveTaskID:
				mark = "*"
			case t.Completed:
				mark = "x"
			}
			phase := ""
			if sol := t.CurrentSolution(); sol != nil {
				phase = sol.Label
			}
			cmd.Printf("%s %s  %-24s %s / %sh  %s\n", mark, shortID(t.ID), t.Name,
				worktime.FormatHHMM(reports.TaskSpent(state, &t, time.Now())),
				worktime.FormatHours(t.EstimateHours), phase)
		}
		return nil
	},
}

func printStatus(cmd *cobra.Command, state *worktime.WorkState) {
	st := reports.Status(state, time.Now())
	if !st.ClockedIn {
		cmd.Printf("%s: %s\n", st.UserName, st.Mode)
		return
	}
	line := fmt.Sprintf("%s: %s since %s (clocked %s, work %s, meeting %s, rest %s)",
		st.UserName, st.Mode, st.ClockInTime,
		worktime.FormatHHMMSS(st.ClockedSeconds),
		worktime.FormatHHMMSS(st.WorkSeconds),
		worktime.FormatHHMMSS(st.MeetingSeconds),
		worktime.FormatHHMMSS(st.RestSeconds))
	if st.ActiveTask != "" {
		line += fmt.Sprintf("\n  on %s / %s for %s", st.ActiveTask, st.ActivePhase, worktime.FormatHHMMSS(st.TaskSeconds))
	}
	cmd.Println(line)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[len(id)-8:]
	}
	return id
}

func init() {
	rootCmd.AddCommand(
		statusCmd,
		mutation("clock-in", "Start the work day", cobra.NoArgs, func(_ *cobra.Command, m *worktime.Machine, _ []string) error {
			return m.ClockIn()
		}),
		mutation("clock-out", "End the work day and record attendance", cobra.NoArgs, func(_ *cobra.Command, m *worktime.Machine, _ []string) error {
			return m.ClockOut()
		}),
		mutation("stop", "Stop the running task", cobra.NoArgs, func(_ *cobra.Command, m *worktime.Machine, _ []string) error {
			return m.StopTask()
		}),
		mutation("meeting", "Start or end a meeting", cobra.NoArgs, func(_ *cobra.Command, m *worktime.Machine, _ []string) error {
			return m.ToggleMeeting()
		}),
		mutation("rest", "Start or end a rest", cobra.NoArgs, func(_ *cobra.Command, m *worktime.Machine, _ []string) error {
			return m.ToggleRest()
		}),
		mutation("rename NAME", "Change the display name", cobra.ExactArgs(1), func(_ *cobra.Command, m *worktime.Machine, args []string) error {
			return m.SetUserName(args[0])
		}),
		mutation("add NAME HOURS", "Add a task with an estimate in hours", cobra.ExactArgs(2), func(cmd *cobra.Command, m *worktime.Machine, args []string) error {
			id, err := m.AddTask(args[0], args[1])
			if err != nil {
				return err
			}
			cmd.Printf("added %s (%s)\n", args[0], shortID(id))
			return nil
		}),
		taskMutation("start TASK", "Start timing a task", 1, func(m *worktime.Machine, id string, _ []string) error {
			return m.StartTask(id)
		}),
		taskMutation("phase TASK", "Begin a new solution phase", 1, func(m *worktime.Machine, id string, _ []string) error {
			return m.AddSolutionPhase(id)
		}),
		taskMutation("complete TASK", "Mark a task completed", 1, func(m *worktime.Machine, id string, _ []string) error {
			return m.CompleteTask(id)
		}),
		taskMutation("reopen TASK", "Reopen a completed task", 1, func(m *worktime.Machine, id string, _ []string) error {
			return m.ReopenTask(id)
		}),
		taskMutation("delete TASK", "Delete a task", 1, func(m *worktime.Machine, id string, _ []string) error {
			return m.DeleteTask(id)
		}),
		taskMutation("note TASK TEXT", "Set the research note of the current phase", 2, func(m *worktime.Machine, id string, rest []string) error {
			return m.SetResearchNote(id, strings.TrimSpace(rest[0]))
		}),
		taskMutation("deliverable TASK TEXT", "Set the deliverable note", 2, func(m *worktime.Machine, id string, rest []string) error {
			return m.SetDeliverableNote(id, rest[0])
		}),
		taskMutation("remark TASK TEXT", "Set the remark", 2, func(m *worktime.Machine, id string, rest []string) error {
			return m.SetRemark(id, rest[0])
		}),
	)
}
