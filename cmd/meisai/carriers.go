package main

import (
	"fmt"

	"github.com/harunari/meisai/internal/analyzer"
	"github.com/harunari/meisai/internal/cli"
	"github.com/harunari/meisai/internal/common"
	"github.com/harunari/meisai/internal/model"
	"github.com/spf13/cobra"
)

func carriersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "carriers",
		Short: "Inspect the known carriers and their label dictionaries",
	}

	cmd.AddCommand(carriersListCmd())
	cmd.AddCommand(carriersShowCmd())

	return cmd
}

func carriersListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the carriers with a dedicated dictionary",
		RunE: func(_ *cobra.Command, _ []string) error {
			dicts := analyzer.DefaultDictionaries()
			fmt.Println(cli.FormatTitle("対応キャリア"))
			for _, carrier := range dicts.Carriers() {
				dict := dicts.ForCarrier(carrier)
				fmt.Printf("  %-10s %d keywords\n", carrier, len(dict.Entries))
			}
			return nil
		},
	}
}

func carriersShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <carrier>",
		Short: "Show the label dictionary of one carrier",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			carrier := model.Carrier(args[0])
			if !carrier.Valid() {
				return fmt.Errorf("%w: %q", common.ErrUnknownCarrier, args[0])
			}

			dict := analyzer.DefaultDictionaries().ForCarrier(carrier)
			fmt.Println(cli.FormatTitle(fmt.Sprintf("%s の辞書", dict.Carrier)))
			for _, entry := range dict.Entries {
				fmt.Printf("  %-30s %s\n", entry.Keyword, entry.Category)
			}
			return nil
		},
	}
}
