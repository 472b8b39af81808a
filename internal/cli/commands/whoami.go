package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

// NewWhoamiCmd creates the whoami command
func NewWhoamiCmd() *cobra.Command {
	var refresh bool

	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show the authenticated user and role",
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := newDeps("")
			if err != nil {
				return err
			}
			return runWhoami(d, refresh)
		},
	}

	cmd.Flags().BoolVar(&refresh, "refresh", false, "Refetch the profile from the API instead of using the cached copy")

	return cmd
}

func runWhoami(d *deps, refresh bool) error {
	if !d.sess.Authenticated() {
		fmt.Fprintln(d.out, "Not authenticated. Run 'manageday login' first.")
		return nil
	}

	identity := d.sess.Identity()
	if refresh || identity == nil {
		fetched, err := d.client.CurrentUser(context.Background())
		if err != nil {
			return err
		}
		d.sess.SetIdentity(fetched)
		identity = fetched
	}

	fmt.Fprintf(d.out, "Email: %s\n", identity.Email)
	if identity.Name != "" {
		fmt.Fprintf(d.out, "Name:  %s\n", identity.Name)
	}
	fmt.Fprintf(d.out, "Role:  %s\n", d.sess.Role())
	return nil
}
