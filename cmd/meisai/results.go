package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/harunari/meisai/internal/cli"
	"github.com/harunari/meisai/internal/common"
	"github.com/harunari/meisai/internal/model"
	"github.com/harunari/meisai/internal/service"
	"github.com/spf13/cobra"
)

func resultsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "results",
		Short: "Browse the stored analysis history",
	}

	cmd.AddCommand(resultsListCmd())
	cmd.AddCommand(resultsShowCmd())
	cmd.AddCommand(resultsDeleteCmd())

	return cmd
}

func resultsListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored analyses, newest first",
		RunE:  runResultsList,
	}

	cmd.Flags().String("carrier", "", "only show analyses for this carrier")
	cmd.Flags().Bool("reliable", false, "only show reliable analyses")
	cmd.Flags().Int("limit", 20, "maximum number of analyses to show")
	cmd.Flags().Int("offset", 0, "number of analyses to skip")
	cmd.Flags().String("since", "", "only show analyses after this date (YYYY-MM-DD)")

	return cmd
}

func runResultsList(cmd *cobra.Command, _ []string) error {
	carrierFlag, _ := cmd.Flags().GetString("carrier")
	onlyReliable, _ := cmd.Flags().GetBool("reliable")
	limit, _ := cmd.Flags().GetInt("limit")
	offset, _ := cmd.Flags().GetInt("offset")
	sinceFlag, _ := cmd.Flags().GetString("since")

	filter := service.AnalysisFilter{
		OnlyReliable: onlyReliable,
		Limit:        limit,
		Offset:       offset,
	}

	if carrierFlag != "" {
		carrier := model.Carrier(carrierFlag)
		if !carrier.Valid() {
			return fmt.Errorf("%w: %q", common.ErrUnknownCarrier, carrierFlag)
		}
		filter.Carrier = carrier
	}

	if sinceFlag != "" {
		since, err := time.Parse("2006-01-02", sinceFlag)
		if err != nil {
			return fmt.Errorf("invalid --since date %q (expected YYYY-MM-DD)", sinceFlag)
		}
		filter.Since = &since
	}

	ctx := cmd.Context()
	storage, err := initStorage(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = storage.Close() }()

	results, err := storage.ListAnalyses(ctx, filter)
	if err != nil {
		return fmt.Errorf("failed to list analyses: %w", err)
	}

	fmt.Print(cli.RenderResultList(results))
	return nil
}

func resultsShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show one stored analysis in full",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			asJSON, _ := cmd.Flags().GetBool("json")

			ctx := cmd.Context()
			storage, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = storage.Close() }()

			result, err := storage.GetAnalysis(ctx, args[0])
			if err != nil {
				return err
			}

			if asJSON {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(result)
			}

			fmt.Println(cli.RenderResult(result))
			return nil
		},
	}

	cmd.Flags().Bool("json", false, "emit the stored result as JSON")

	return cmd
}

func resultsDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete one stored analysis",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			storage, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = storage.Close() }()

			if err := storage.DeleteAnalysis(ctx, args[0]); err != nil {
				return err
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("deleted analysis %s", args[0])))
			return nil
		},
	}
}
