package commands

import (
	"context"
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/manageday-dev/manageday/internal/api"
)

// NewUsersCmd creates the users command group (admin only)
func NewUsersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Manage user accounts (admin only)",
	}

	cmd.AddCommand(newUsersListCmd())
	cmd.AddCommand(newUsersGetCmd())
	cmd.AddCommand(newUsersRegisterCmd())
	cmd.AddCommand(newUsersUpdateCmd())
	cmd.AddCommand(newUsersDeleteCmd())

	return cmd
}

func newUsersListCmd() *cobra.Command {
	var skip, limit int

	cmd := &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List user accounts",
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := newDeps("")
			if err != nil {
				return err
			}
			return runUsersList(d, skip, limit)
		},
	}

	cmd.Flags().IntVar(&skip, "skip", 0, "Number of records to skip")
	cmd.Flags().IntVar(&limit, "limit", 100, "Maximum number of records to return")

	return cmd
}

func runUsersList(d *deps, skip, limit int) error {
	if err := requireAdmin(d); err != nil {
		return err
	}

	users, err := d.client.Users(context.Background(), skip, limit)
	if err != nil {
		return err
	}

	if len(users) == 0 {
		fmt.Fprintln(d.out, "No users found.")
		return nil
	}

	w := tabwriter.NewWriter(d.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tEMAIL\tNAME\tROLE\tACTIVE")
	for _, user := range users {
		role := "employee"
		if user.IsSuperuser {
			role = "admin"
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%t\n", user.ID, user.Email, user.Name, role, user.IsActive)
	}
	return w.Flush()
}

func newUsersRegisterCmd() *cobra.Command {
	var email, password, name, phone string
	var superuser bool

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Register a new user account",
		RunE: func(cmd *cobra.Command, args []string) error {
			if email == "" || password == "" {
				return fmt.Errorf("email and password are required")
			}
			d, err := newDeps("")
			if err != nil {
				return err
			}
			return runUsersRegister(d, api.RegisterUser{
				Email:       email,
				Password:    password,
				Name:        name,
				Phone:       phone,
				IsSuperuser: superuser,
			})
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Email address")
	cmd.Flags().StringVar(&password, "password", "", "Password")
	cmd.Flags().StringVar(&name, "name", "", "Full name")
	cmd.Flags().StringVar(&phone, "phone", "", "Phone number")
	cmd.Flags().BoolVar(&superuser, "admin", false, "Grant the admin role")

	return cmd
}

func runUsersRegister(d *deps, user api.RegisterUser) error {
	if err := requireAdmin(d); err != nil {
		return err
	}

	created, err := d.client.Register(context.Background(), user)
	if err != nil {
		return err
	}
	fmt.Fprintf(d.out, "✓ Registered %s (id %d)\n", created.Email, created.ID)
	return nil
}

func newUsersGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show a user account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid user id: %s", args[0])
			}
			d, err := newDeps("")
			if err != nil {
				return err
			}
			return runUsersGet(d, id)
		},
	}
}

func runUsersGet(d *deps, id int64) error {
	if err := requireAdmin(d); err != nil {
		return err
	}

	user, err := d.client.User(context.Background(), id)
	if err != nil {
		return err
	}

	role := "employee"
	if user.IsSuperuser {
		role = "admin"
	}
	fmt.Fprintf(d.out, "ID:     %d\n", user.ID)
	fmt.Fprintf(d.out, "Email:  %s\n", user.Email)
	if user.Name != "" {
		fmt.Fprintf(d.out, "Name:   %s\n", user.Name)
	}
	if user.Phone != "" {
		fmt.Fprintf(d.out, "Phone:  %s\n", user.Phone)
	}
	fmt.Fprintf(d.out, "Role:   %s\n", role)
	fmt.Fprintf(d.out, "Active: %t\n", user.IsActive)
	return nil
}

func newUsersUpdateCmd() *cobra.Command {
	var name, phone string
	var active, superuser bool

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update a user account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid user id: %s", args[0])
			}

			// Only send the fields that were actually requested
			update := map[string]any{}
			flags := cmd.Flags()
			if flags.Changed("name") {
				update["full_name"] = name
			}
			if flags.Changed("phone") {
				update["phone"] = phone
			}
			if flags.Changed("active") {
				update["is_active"] = active
			}
			if flags.Changed("admin") {
				update["is_superuser"] = superuser
			}
			if len(update) == 0 {
				return fmt.Errorf("nothing to update (use --name, --phone, --active or --admin)")
			}

			d, err := newDeps("")
			if err != nil {
				return err
			}
			return runUsersUpdate(d, id, update)
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Full name")
	cmd.Flags().StringVar(&phone, "phone", "", "Phone number")
	cmd.Flags().BoolVar(&active, "active", true, "Account active state")
	cmd.Flags().BoolVar(&superuser, "admin", false, "Grant or revoke the admin role")

	return cmd
}

func runUsersUpdate(d *deps, id int64, update map[string]any) error {
	if err := requireAdmin(d); err != nil {
		return err
	}

	user, err := d.client.UpdateUser(context.Background(), id, update)
	if err != nil {
		return err
	}
	fmt.Fprintf(d.out, "✓ Updated user %d (%s)\n", user.ID, user.Email)
	return nil
}

func newUsersDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"delete"},
		Short:   "Delete a user account",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid user id: %s", args[0])
			}
			d, err := newDeps("")
			if err != nil {
				return err
			}
			return runUsersDelete(d, id)
		},
	}
}

func runUsersDelete(d *deps, id int64) error {
	if err := requireAdmin(d); err != nil {
		return err
	}

	if err := d.client.DeleteUser(context.Background(), id); err != nil {
		return err
	}
	fmt.Fprintf(d.out, "✓ Deleted user %d\n", id)
	return nil
}
