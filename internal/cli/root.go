package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/manageday-dev/manageday/internal/cli/commands"
	"github.com/manageday-dev/manageday/internal/config"
	"github.com/manageday-dev/manageday/internal/logger"
)

var version = "dev" // Will be set during build

var rootCmd = &cobra.Command{
	Use:   "manageday",
	Short: "ManageDay - Manage products, orders, and users from the terminal",
	Long: `ManageDay CLI - The command-line client for the ManageDay API.

Authenticate once with 'manageday login'; the session is stored in the OS
keychain (with --remember) or in a per-login-session file, and attached to
every request automatically.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		cfg, err := config.Load()
		if err != nil {
			logger.Init("warn", "console")
			return
		}
		logger.Init(cfg.Logging.Level, cfg.Logging.Format)
	},
}

func init() {
	// Add version command
	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("manageday version %s\n", version)
		},
	})

	// Add all subcommands
	rootCmd.AddCommand(commands.NewInitCmd())
	rootCmd.AddCommand(commands.NewLoginCmd())
	rootCmd.AddCommand(commands.NewLogoutCmd())
	rootCmd.AddCommand(commands.NewWhoamiCmd())
	rootCmd.AddCommand(commands.NewProductsCmd())
	rootCmd.AddCommand(commands.NewOrdersCmd())
	rootCmd.AddCommand(commands.NewUsersCmd())
	rootCmd.AddCommand(commands.NewProfileCmd())
	rootCmd.AddCommand(commands.NewNotifyCmd())
	rootCmd.AddCommand(commands.NewHealthCmd())
	rootCmd.AddCommand(commands.NewSelectServerCmd())
}

// Execute runs the root command
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}
