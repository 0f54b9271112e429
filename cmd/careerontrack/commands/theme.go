package commands

import (
	"fmt"
	"strings"

	"github.com/benvon/careerontrack/internal/session"
	"github.com/spf13/cobra"
)

func newThemeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "theme",
		Short: "Show or change the appearance preference",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "get",
		Short: "Show the saved theme",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), a.session.ThemeMode())
			return nil
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:       "set MODE",
		Short:     "Save the theme (light, dark or system)",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{string(session.ThemeLight), string(session.ThemeDark), string(session.ThemeSystem)},
		RunE: func(cmd *cobra.Command, args []string) error {
			mode := session.ThemeMode(strings.ToLower(strings.TrimSpace(args[0])))
			if err := a.session.SetThemeMode(cmd.Context(), mode); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Theme set to %s.\n", mode)
			return nil
		},
	})
	return cmd
}
