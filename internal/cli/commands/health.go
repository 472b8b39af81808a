package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

// NewHealthCmd creates the health command
func NewHealthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check API health and latency",
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := newDeps("")
			if err != nil {
				return err
			}
			return runHealth(d)
		},
	}
}

func runHealth(d *deps) error {
	status, err := d.client.Health(context.Background())
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}

	fmt.Fprintf(d.out, "Status:        %s\n", status.Status)
	fmt.Fprintf(d.out, "Version:       %s\n", status.Version)
	fmt.Fprintf(d.out, "Response time: %dms\n", status.ResponseTimeMS)
	return nil
}
