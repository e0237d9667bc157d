package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/mtnprints/topoblocks/internal/blocks"
)

var designCmd = &cobra.Command{
	Use:   "design",
	Short: "Render block designs for a single subject",
	Long: `Loads one contour shapefile (plus an optional border shapefile that
defines the working extent) and renders one design per color scheme into the
output directory.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		contours, _ := cmd.Flags().GetString("contours")
		border, _ := cmd.Flags().GetString("border")
		name, _ := cmd.Flags().GetString("name")
		output, _ := cmd.Flags().GetString("output")
		noText, _ := cmd.Flags().GetBool("no-text")

		fmt.Printf("Processing %s...\n", name)

		d, err := blocks.NewDesigner(contours, border)
		if err != nil {
			return eris.Wrap(err, "design")
		}

		opts := designOptions(cfg.Design, !noText)
		created, err := d.BatchCreateDesigns(ctx, name, output, nil, cfg.Batch.NameSuffix, opts)
		if errors.Is(err, context.Canceled) {
			fmt.Println("interrupted, stopping")
			return nil
		}
		if err != nil {
			return eris.Wrap(err, "design")
		}

		fmt.Println("\nProcessing complete")
		fmt.Printf("  Designs created: %d\n", len(created))
		for _, path := range created {
			fmt.Printf("  - %s\n", path)
		}
		return nil
	},
}

func init() {
	designCmd.Flags().String("contours", "", "path to contour shapefile")
	designCmd.Flags().String("border", "", "path to border shapefile (optional)")
	designCmd.Flags().String("name", "", "subject name for display")
	designCmd.Flags().String("output", "", "output directory")
	designCmd.Flags().Bool("no-text", false, "don't display subject name text")
	_ = designCmd.MarkFlagRequired("contours")
	_ = designCmd.MarkFlagRequired("name")
	_ = designCmd.MarkFlagRequired("output")
	rootCmd.AddCommand(designCmd)
}
