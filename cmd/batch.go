package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/mtnprints/topoblocks/internal/blocks"
)

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Render designs for every subject folder under a data directory",
	Long: `Processes a directory with one subfolder per mountain, each holding a
contour shapefile (a filename containing "contour" is preferred) and an
optional border shapefile (filename containing "border"). Every color scheme
is rendered for every subject. Failures are isolated per subject.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		dataDir, _ := cmd.Flags().GetString("batch")
		outDir, _ := cmd.Flags().GetString("batch-output")
		noText, _ := cmd.Flags().GetBool("no-text")
		summaryPath, _ := cmd.Flags().GetString("summary")
		concurrency, _ := cmd.Flags().GetInt("concurrency")
		if concurrency == 0 {
			concurrency = cfg.Batch.Concurrency
		}

		opts := designOptions(cfg.Design, !noText)

		fmt.Printf("Batch processing mountains from: %s\n", dataDir)
		results, err := blocks.BatchProcessMountains(ctx, dataDir, outDir, cfg.Batch.NameSuffix, opts, concurrency)
		if errors.Is(err, context.Canceled) {
			fmt.Println("interrupted, stopping batch")
			return nil
		}
		if err != nil {
			return eris.Wrap(err, "batch")
		}

		printBatchSummary(results)

		if summaryPath != "" {
			if err := writeSummary(summaryPath, results); err != nil {
				return eris.Wrap(err, "batch: write summary")
			}
			fmt.Printf("Summary written to: %s\n", summaryPath)
		}
		return nil
	},
}

func init() {
	batchCmd.Flags().String("batch", "", "root directory of per-subject folders")
	batchCmd.Flags().String("batch-output", "", "base directory for outputs")
	batchCmd.Flags().Bool("no-text", false, "don't display subject name text")
	batchCmd.Flags().String("summary", "", "optional YAML summary output path")
	batchCmd.Flags().Int("concurrency", 0, "subject worker count (default from config)")
	_ = batchCmd.MarkFlagRequired("batch")
	_ = batchCmd.MarkFlagRequired("batch-output")
	rootCmd.AddCommand(batchCmd)
}

// printBatchSummary reports per-subject design counts in sorted order.
func printBatchSummary(results map[string][]string) {
	total := 0
	for _, files := range results {
		total += len(files)
	}

	fmt.Println("\nBatch processing complete")
	fmt.Printf("  Mountains processed: %d\n", len(results))
	fmt.Printf("  Total designs created: %d\n", total)

	names := make([]string, 0, len(results))
	for name := range results {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if files := results[name]; len(files) > 0 {
			fmt.Printf("  - %s: %d designs\n", name, len(files))
		} else {
			fmt.Printf("  - %s: failed\n", name)
		}
	}
}

// writeSummary writes the per-subject result map as YAML.
func writeSummary(path string, results map[string][]string) error {
	data, err := yaml.Marshal(results)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
