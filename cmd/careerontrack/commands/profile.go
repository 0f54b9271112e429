package commands

import (
	"fmt"
	"io"
	"time"

	"github.com/benvon/careerontrack/internal/models"
	"github.com/spf13/cobra"
)

func newProfileCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "View or edit your profile",
	}
	cmd.AddCommand(newProfileShowCmd(a))
	cmd.AddCommand(newProfileUpdateCmd(a))
	return cmd
}

func newProfileShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Fetch and show your profile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := a.requireSession(); err != nil {
				return err
			}
			user, err := a.session.RefreshProfile(cmd.Context())
			if err != nil {
				return err
			}
			printProfile(cmd.OutOrStdout(), user)
			return nil
		},
	}
}

func newProfileUpdateCmd(a *app) *cobra.Command {
	var name, email string
	cmd := &cobra.Command{
		Use:   "update",
		Short: "Change your name or email",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := a.requireSession(); err != nil {
				return err
			}
			fields := map[string]any{}
			if cmd.Flags().Changed("name") {
				fields["name"] = name
			}
			if cmd.Flags().Changed("email") {
				fields["email"] = email
			}
			user, err := a.session.SaveProfile(cmd.Context(), fields)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Profile updated.")
			printProfile(cmd.OutOrStdout(), user)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "New display name")
	cmd.Flags().StringVar(&email, "email", "", "New email")
	return cmd
}

func printProfile(w io.Writer, u *models.User) {
	fmt.Fprintf(w, "ID:      %d\n", u.ID)
	fmt.Fprintf(w, "Name:    %s\n", u.Name)
	fmt.Fprintf(w, "Email:   %s\n", u.Email)
	if u.CreatedAt != nil {
		fmt.Fprintf(w, "Joined:  %s\n", u.CreatedAt.Local().Format(time.DateOnly))
	}
}
