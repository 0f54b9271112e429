package commands

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/benvon/careerontrack/internal/models"
	"github.com/spf13/cobra"
)

type credentialFlags struct {
	email    string
	password string
}

func (f *credentialFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.email, "email", "", "Account email")
	cmd.Flags().StringVar(&f.password, "password", "", "Account password (read from stdin when omitted)")
}

// resolvePassword returns the --password flag or the first line of stdin
func (a *app) resolvePassword(cmd *cobra.Command, flagValue string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	fmt.Fprint(cmd.ErrOrStderr(), "Password: ")
	scanner := bufio.NewScanner(cmd.InOrStdin())
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		return "", errors.New("password is required")
	}
	fmt.Fprintln(cmd.ErrOrStderr())
	return strings.TrimRight(scanner.Text(), "\r"), nil
}

func newRegisterCmd(a *app) *cobra.Command {
	var creds credentialFlags
	var name string
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and sign in",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			password, err := a.resolvePassword(cmd, creds.password)
			if err != nil {
				return err
			}
			user, err := a.session.Register(cmd.Context(), creds.email, password, name)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Welcome, %s! Your account %s is ready.\n", user.Name, user.Email)
			return nil
		},
	}
	creds.register(cmd)
	cmd.Flags().StringVar(&name, "name", "", "Display name")
	return cmd
}

func newLoginCmd(a *app) *cobra.Command {
	var creds credentialFlags
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in with email and password",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			password, err := a.resolvePassword(cmd, creds.password)
			if err != nil {
				return err
			}
			user, err := a.session.Login(cmd.Context(), creds.email, password)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s.\n", displayName(user))
			return nil
		},
	}
	creds.register(cmd)
	return cmd
}

func newLogoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and forget the saved session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a.restored = false
			if err := a.session.Logout(cmd.Context()); err != nil {
				return fmt.Errorf("signed out, but the saved session could not be removed: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out.")
			return nil
		},
	}
}

func newWhoamiCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s := a.session.Snapshot()
			if !s.Authenticated() {
				fmt.Fprintln(cmd.OutOrStdout(), "Not logged in.")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s.\n", displayName(s.User))
			return nil
		},
	}
}

func displayName(u *models.User) string {
	if u.Name == "" {
		return u.Email
	}
	return fmt.Sprintf("%s <%s>", u.Name, u.Email)
}
