package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/benvon/careerontrack/internal/goals"
	"github.com/benvon/careerontrack/internal/models"
)

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printGoalTable(w io.Writer, items []models.Goal) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tSTATUS\tPROGRESS\tCREATED")
	for _, g := range items {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d%%\t%s\n",
			g.ID, g.Title, g.DisplayStatus().Label(), g.Progress, g.CreatedAt.Local().Format(time.DateOnly))
	}
	return tw.Flush()
}

func printGoal(w io.Writer, g *models.Goal) {
	fmt.Fprintf(w, "#%d %s\n", g.ID, g.Title)
	fmt.Fprintf(w, "  Status:   %s\n", g.Status.Label())
	fmt.Fprintf(w, "  Progress: %d%%\n", g.Progress)
	if g.Description != nil && *g.Description != "" {
		fmt.Fprintf(w, "  Details:  %s\n", *g.Description)
	}
	fmt.Fprintf(w, "  Updated:  %s\n", g.UpdatedAt.Local().Format(time.DateTime))
}

func printStats(w io.Writer, vs goals.ViewState) error {
	s := vs.Stats
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "Total goals\t%d\n", s.Total)
	fmt.Fprintf(tw, "Completed\t%d\n", s.Completed)
	fmt.Fprintf(tw, "In progress\t%d\n", s.InProgress)
	fmt.Fprintf(tw, "Not started\t%d\n", s.NotStarted)
	fmt.Fprintf(tw, "Average progress\t%d%%\n", s.AverageProgress)
	fmt.Fprintf(tw, "Completion rate\t%d%%\n", s.CompletionRate)
	if err := tw.Flush(); err != nil {
		return err
	}
	if len(vs.Recent) == 0 {
		return nil
	}
	fmt.Fprintln(w, "\nRecently updated:")
	for _, g := range vs.Recent {
		fmt.Fprintf(w, "  #%d %s (%d%%)\n", g.ID, g.Title, g.Progress)
	}
	return nil
}
