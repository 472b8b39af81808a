package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/manageday-dev/manageday/internal/cli/config"
)

// NewInitCmd creates the init command
func NewInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init <api-url>",
		Short: "Create a manageday.json pointing at an API environment",
		Args:  cobra.ExactArgs(1),
		RunE:  runInit,
	}
}

func runInit(cmd *cobra.Command, args []string) error {
	apiURL := args[0]

	currentDir, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get current directory: %w", err)
	}

	configPath := filepath.Join(currentDir, config.ConfigFileName)

	var cfg *config.Config
	isNewConfig := false

	// Check if config already exists
	if _, err := os.Stat(configPath); err == nil {
		// Load existing config
		cfg, err = config.Load(configPath)
		if err != nil {
			return fmt.Errorf("failed to load existing config: %w", err)
		}
		fmt.Println("Found existing manageday.json")
	} else {
		// Create new config
		cfg = &config.Config{
			Servers: []config.Server{},
		}
		isNewConfig = true
	}

	// Check if server already exists
	serverExists := false
	for _, server := range cfg.Servers {
		if server.URL == apiURL {
			serverExists = true
			break
		}
	}

	if serverExists {
		fmt.Printf("Server with URL %s already exists in manageday.json\n", apiURL)
		return nil
	}

	// Add new server
	alias := "production"
	if len(cfg.Servers) > 0 {
		alias = fmt.Sprintf("server-%d", len(cfg.Servers)+1)
	}

	cfg.Servers = append(cfg.Servers, config.Server{
		URL:   apiURL,
		Alias: alias,
	})

	if err := cfg.Validate(); err != nil {
		return err
	}

	// Save to file
	if err := config.Save(configPath, cfg); err != nil {
		return err
	}

	if isNewConfig {
		fmt.Printf("✓ Created ./manageday.json with server %s (%s)\n", apiURL, alias)
	} else {
		fmt.Printf("✓ Added server %s (%s) to ./manageday.json\n", apiURL, alias)
	}

	fmt.Println("\nNext steps:")
	fmt.Println("  Run 'manageday login' to authenticate")

	return nil
}
