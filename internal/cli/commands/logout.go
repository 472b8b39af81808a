package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewLogoutCmd creates the logout command
func NewLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Clear the stored session",
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := newDeps("")
			if err != nil {
				return err
			}
			return runLogout(d)
		},
	}
}

func runLogout(d *deps) error {
	d.sess.Logout()
	fmt.Fprintln(d.out, "✓ Logged out.")
	return nil
}
