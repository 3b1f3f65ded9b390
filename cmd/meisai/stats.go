package main

import (
	"fmt"

	"github.com/harunari/meisai/internal/cli"
	"github.com/spf13/cobra"
)

func statsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show aggregated statistics over the analysis history",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			storage, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = storage.Close() }()

			stats, err := storage.GetUsageStats(ctx)
			if err != nil {
				return fmt.Errorf("failed to compute stats: %w", err)
			}

			fmt.Print(cli.RenderUsageStats(stats))
			return nil
		},
	}
}
