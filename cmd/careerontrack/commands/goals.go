package commands

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/benvon/careerontrack/internal/apperr"
	"github.com/benvon/careerontrack/internal/goals"
	"github.com/benvon/careerontrack/internal/models"
	"github.com/spf13/cobra"
)

func newGoalsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "goals",
		Aliases: []string{"goal"},
		Short:   "Manage your career goals",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := a.setup(cmd.Context()); err != nil {
				return err
			}
			_, err := a.requireSession()
			return err
		},
	}
	cmd.AddCommand(newGoalsListCmd(a))
	cmd.AddCommand(newGoalsShowCmd(a))
	cmd.AddCommand(newGoalsCreateCmd(a))
	cmd.AddCommand(newGoalsUpdateCmd(a))
	cmd.AddCommand(newGoalsStatusCmd(a))
	cmd.AddCommand(newGoalsProgressCmd(a))
	cmd.AddCommand(newGoalsDeleteCmd(a))
	cmd.AddCommand(newGoalsStatsCmd(a))
	return cmd
}

func parseGoalID(arg string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimPrefix(arg, "#"), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperr.NewValidationError("id", fmt.Sprintf("invalid goal id %q", arg))
	}
	return id, nil
}

func newGoalsListCmd(a *app) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List goals, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.goals.Load(cmd.Context()); err != nil {
				return err
			}
			vs := a.goals.State()
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), models.GoalsResponse{Goals: vs.Items})
			}
			if vs.Phase == goals.PhaseEmpty {
				fmt.Fprintln(cmd.OutOrStdout(), "No goals yet. Create one with 'careerontrack goals create --title ...'.")
				return nil
			}
			return printGoalTable(cmd.OutOrStdout(), vs.Items)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON")
	return cmd
}

func newGoalsShowCmd(a *app) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "show ID",
		Short: "Show one goal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseGoalID(args[0])
			if err != nil {
				return err
			}
			g, err := a.goals.Get(cmd.Context(), id)
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), g)
			}
			printGoal(cmd.OutOrStdout(), g)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON")
	return cmd
}

func newGoalsCreateCmd(a *app) *cobra.Command {
	var title, description string
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a goal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := a.goals.Create(cmd.Context(), title, description)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created goal #%d: %s\n", g.ID, g.Title)
			return nil
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "Goal title")
	cmd.Flags().StringVar(&description, "description", "", "Optional description")
	return cmd
}

func newGoalsUpdateCmd(a *app) *cobra.Command {
	var (
		title, description, status string
		progress                   int
	)
	cmd := &cobra.Command{
		Use:   "update ID",
		Short: "Change a goal's title, description, status or progress",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseGoalID(args[0])
			if err != nil {
				return err
			}
			var patch models.GoalPatch
			flags := cmd.Flags()
			if flags.Changed("title") {
				patch.Title = &title
			}
			if flags.Changed("description") {
				patch.Description = &description
			}
			if flags.Changed("status") {
				s := models.GoalStatus(status)
				patch.Status = &s
			}
			if flags.Changed("progress") {
				patch.Progress = &progress
			}
			g, err := a.goals.Update(cmd.Context(), id, patch)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated goal #%d.\n", g.ID)
			printGoal(cmd.OutOrStdout(), g)
			return nil
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "New title")
	cmd.Flags().StringVar(&description, "description", "", "New description")
	cmd.Flags().StringVar(&status, "status", "", "not_started, in_progress or completed (not with --progress)")
	cmd.Flags().IntVar(&progress, "progress", 0, "Progress percentage (0-100); sets the status to match")
	cmd.MarkFlagsMutuallyExclusive("status", "progress")
	return cmd
}

func newGoalsStatusCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:       "status ID STATUS",
		Short:     "Set a goal's status",
		Args:      cobra.ExactArgs(2),
		ValidArgs: []string{string(models.GoalStatusNotStarted), string(models.GoalStatusInProgress), string(models.GoalStatusCompleted)},
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseGoalID(args[0])
			if err != nil {
				return err
			}
			g, err := a.goals.UpdateStatus(cmd.Context(), id, models.GoalStatus(args[1]))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Goal #%d is now %s (%d%%).\n", g.ID, g.Status.Label(), g.Progress)
			return nil
		},
	}
}

func newGoalsProgressCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "progress ID PERCENT",
		Short: "Set a goal's progress percentage",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseGoalID(args[0])
			if err != nil {
				return err
			}
			pct, err := strconv.Atoi(strings.TrimSuffix(args[1], "%"))
			if err != nil {
				return apperr.NewValidationError("progress", fmt.Sprintf("invalid progress %q", args[1]))
			}
			g, err := a.goals.UpdateProgress(cmd.Context(), id, pct)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Goal #%d is now %s (%d%%).\n", g.ID, g.Status.Label(), g.Progress)
			return nil
		},
	}
}

func newGoalsDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a goal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseGoalID(args[0])
			if err != nil {
				return err
			}
			if err := a.goals.Remove(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted goal #%d.\n", id)
			return nil
		},
	}
}

func newGoalsStatsCmd(a *app) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show progress across all goals",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.goals.Load(cmd.Context()); err != nil {
				return err
			}
			vs := a.goals.State()
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), vs.Stats)
			}
			return printStats(cmd.OutOrStdout(), vs)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON")
	return cmd
}
