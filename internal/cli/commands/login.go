package commands

import (
	"context"
	"fmt"
	"os"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/manageday-dev/manageday/internal/authz"
)

// NewLoginCmd creates the login command
func NewLoginCmd() *cobra.Command {
	var email, password string
	var remember bool
	var serverAlias string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Authenticate with the ManageDay API",
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := newDeps(serverAlias)
			if err != nil {
				return err
			}
			return runLogin(d, email, password, remember)
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Email address (or set MANAGEDAY_EMAIL)")
	cmd.Flags().StringVar(&password, "password", "", "Password (or set MANAGEDAY_PASSWORD, will prompt if not provided)")
	cmd.Flags().BoolVar(&remember, "remember", false, "Keep the session across reboots (stores the token in the OS keychain)")
	cmd.Flags().StringVar(&serverAlias, "server", "", "Server alias (uses selected server if not specified)")

	return cmd
}

func runLogin(d *deps, email, password string, remember bool) error {
	// Check for environment variables (useful for CI/CD)
	if email == "" {
		email = os.Getenv("MANAGEDAY_EMAIL")
	}
	if password == "" {
		password = os.Getenv("MANAGEDAY_PASSWORD")
	}

	if email == "" {
		return fmt.Errorf("email is required (use --email flag or MANAGEDAY_EMAIL env var)")
	}

	// Prompt for password if not provided via flag or env var
	if password == "" {
		// Check if stdin is a terminal (not piped)
		if term.IsTerminal(int(syscall.Stdin)) {
			fmt.Fprint(d.out, "Password: ")
			bytePassword, err := term.ReadPassword(int(syscall.Stdin))
			if err != nil {
				return fmt.Errorf("failed to read password: %w", err)
			}
			password = string(bytePassword)
			fmt.Fprintln(d.out) // New line after password input
		} else {
			return fmt.Errorf("password is required in non-interactive mode (use --password flag or MANAGEDAY_PASSWORD env var)")
		}
	}

	fmt.Fprintf(d.out, "Logging in to %s (%s)...\n", d.server.Alias, d.server.URL)

	result, err := d.client.Login(context.Background(), email, password, remember)
	if err != nil {
		return fmt.Errorf("login failed: %w", err)
	}

	// Publish the new session to this process's state
	d.sess.SetAuthenticated(true)
	d.sess.SetIdentity(result.Identity)
	if result.Degraded {
		d.sess.SetRole(authz.RoleEmployee)
	}

	fmt.Fprintln(d.out, "✓ Login successful!")
	if result.Identity != nil {
		fmt.Fprintf(d.out, "  User: %s (%s)\n", result.Identity.Name, result.Identity.Email)
	}
	fmt.Fprintf(d.out, "  Role: %s\n", result.Role)
	if result.Degraded {
		fmt.Fprintln(d.out, "  Note: profile could not be fetched; it will be reloaded on the next request")
	}

	return nil
}
