package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/manageday-dev/manageday/internal/cli/config"
	"github.com/manageday-dev/manageday/internal/cli/serverselect"
	"github.com/manageday-dev/manageday/internal/cli/userconfig"
)

// NewSelectServerCmd creates the select-server command
func NewSelectServerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "select-server [url-or-alias]",
		Short: "Select the API environment to use for commands",
		Long: `Select the API environment to use for commands.

If no param is provided, an interactive prompt will be shown.

Examples:
  $ manageday select-server                              # Interactive selection
  $ manageday select-server https://api.example.com/api/v1
  $ manageday select-server production                   # Select by alias`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var urlOrAlias string
			if len(args) > 0 {
				urlOrAlias = args[0]
			}
			return runSelectServer(urlOrAlias)
		},
	}

	return cmd
}

func runSelectServer(urlOrAlias string) error {
	// Load project config
	cfg, err := config.LoadFromCurrentDir()
	if err != nil {
		return fmt.Errorf("failed to load config: %w\nRun 'manageday init' to create a configuration file", err)
	}

	var server *config.Server

	if urlOrAlias != "" {
		// User provided a URL or alias, find it
		server, err = serverselect.GetServerByURLOrAlias(cfg, urlOrAlias)
		if err != nil {
			return err
		}
	} else {
		// Show interactive selection
		server, err = serverselect.PromptServerSelection(cfg)
		if err != nil {
			return err
		}
	}

	// Save the selected server
	if err := userconfig.SetSelectedServer(server.URL); err != nil {
		return fmt.Errorf("failed to save selected server: %w", err)
	}

	fmt.Printf("Selected server: %s (%s)\n", server.Alias, server.URL)
	return nil
}
