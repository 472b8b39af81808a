package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/manageday-dev/manageday/internal/api"
)

// NewProfileCmd creates the profile command group
func NewProfileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Show or update your profile",
	}

	cmd.AddCommand(newProfileShowCmd())
	cmd.AddCommand(newProfileUpdateCmd())

	return cmd
}

func newProfileShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show your profile",
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := newDeps("")
			if err != nil {
				return err
			}
			return runProfileShow(d)
		},
	}
}

func runProfileShow(d *deps) error {
	identity, err := d.client.CurrentUser(context.Background())
	if err != nil {
		return err
	}
	d.sess.SetIdentity(identity)

	fmt.Fprintf(d.out, "Email: %s\n", identity.Email)
	if identity.Name != "" {
		fmt.Fprintf(d.out, "Name:  %s\n", identity.Name)
	}
	if identity.Phone != "" {
		fmt.Fprintf(d.out, "Phone: %s\n", identity.Phone)
	}
	fmt.Fprintf(d.out, "Role:  %s\n", d.sess.Role())
	return nil
}

func newProfileUpdateCmd() *cobra.Command {
	var name, phone string

	cmd := &cobra.Command{
		Use:   "update",
		Short: "Update your profile",
		RunE: func(cmd *cobra.Command, args []string) error {
			if name == "" && phone == "" {
				return fmt.Errorf("nothing to update (use --name or --phone)")
			}
			d, err := newDeps("")
			if err != nil {
				return err
			}
			return runProfileUpdate(d, api.ProfileUpdate{Name: name, Phone: phone})
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Full name")
	cmd.Flags().StringVar(&phone, "phone", "", "Phone number")

	return cmd
}

func runProfileUpdate(d *deps, update api.ProfileUpdate) error {
	identity, err := d.client.UpdateProfile(context.Background(), update)
	if err != nil {
		return err
	}
	d.sess.SetIdentity(identity)

	fmt.Fprintln(d.out, "✓ Profile updated.")
	return nil
}
