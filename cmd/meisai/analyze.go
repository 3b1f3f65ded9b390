package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/harunari/meisai/internal/analyzer"
	"github.com/harunari/meisai/internal/cli"
	"github.com/harunari/meisai/internal/common"
	"github.com/harunari/meisai/internal/model"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

func analyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze [file...]",
		Short: "Analyze invoice OCR text and report the monthly line cost",
		Long: `Analyze OCR text extracted from a mobile carrier invoice.

Reads the text from the given files, or from stdin when no file is
passed, and reports the verified monthly line cost together with the
classified bill lines and a reliability verdict.`,
		RunE: runAnalyze,
	}

	cmd.Flags().String("carrier", "", "carrier hint, skips detection (softbank, au, docomo, generic)")
	cmd.Flags().Bool("json", false, "emit the full analysis result as JSON")
	cmd.Flags().Bool("store", false, "save the result to the analysis history")

	return cmd
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	carrierFlag, _ := cmd.Flags().GetString("carrier")
	asJSON, _ := cmd.Flags().GetBool("json")
	store, _ := cmd.Flags().GetBool("store")

	hint := model.Carrier(carrierFlag)
	if carrierFlag != "" && !hint.Valid() {
		return fmt.Errorf("%w: %q (expected softbank, au, docomo or generic)", common.ErrUnknownCarrier, carrierFlag)
	}

	texts, err := readInputs(args)
	if err != nil {
		return err
	}

	a := analyzer.New()
	results := make([]model.AnalysisResult, 0, len(texts))

	var bar *progressbar.ProgressBar
	if len(texts) > 1 && !asJSON {
		bar = progressbar.NewOptions(len(texts),
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionShowCount(),
			progressbar.OptionSetWidth(40),
			progressbar.OptionSetDescription("Analyzing invoices..."),
		)
	}

	for _, text := range texts {
		results = append(results, a.Analyze(text, hint))
		if bar != nil {
			_ = bar.Add(1)
		}
	}
	if bar != nil {
		fmt.Fprintln(os.Stderr)
	}

	if store {
		if err := storeResults(cmd.Context(), results); err != nil {
			return err
		}
	}

	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		for i := range results {
			if err := enc.Encode(&results[i]); err != nil {
				return fmt.Errorf("failed to encode result: %w", err)
			}
		}
		return nil
	}

	for i := range results {
		fmt.Println(cli.RenderResult(&results[i]))
	}

	return nil
}

// readInputs returns the OCR text of each named file, or the text read from
// stdin when no file is given.
func readInputs(paths []string) ([]string, error) {
	if len(paths) == 0 {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, fmt.Errorf("failed to read stdin: %w", err)
		}
		if strings.TrimSpace(string(data)) == "" {
			return nil, common.NewUserError("入力テキストが空です", common.ErrEmptyInput)
		}
		return []string{string(data)}, nil
	}

	texts := make([]string, 0, len(paths))
	for _, path := range paths {
		data, err := os.ReadFile(path) // #nosec G304 -- user-supplied input file
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
		texts = append(texts, string(data))
	}
	return texts, nil
}

func storeResults(ctx context.Context, results []model.AnalysisResult) error {
	storage, err := initStorage(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = storage.Close() }()

	for i := range results {
		if err := storage.SaveAnalysis(ctx, &results[i]); err != nil {
			common.LogError(err, "failed to save analysis", common.Fields{"id": results[i].ID})
			return fmt.Errorf("failed to save analysis %s: %w", results[i].ID, err)
		}
		common.LogInfo("saved analysis", common.Fields{"id": results[i].ID, "carrier": results[i].Carrier})
	}
	return nil
}
