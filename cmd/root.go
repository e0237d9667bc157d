package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mtnprints/topoblocks/internal/blocks"
	"github.com/mtnprints/topoblocks/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "topoblocks",
	Short: "Topographic block-art generator",
	Long:  "Cuts buffered elevation contours out of three colored bands and renders the result as print-ready PNG designs, one per color scheme.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

// designOptions maps the configured defaults onto design options.
func designOptions(c config.DesignConfig, showText bool) blocks.Options {
	return blocks.Options{
		GapPercent: c.GapPercent,
		DPI:        c.DPI,
		FigWidth:   c.FigWidth,
		FigHeight:  c.FigHeight,
		LineWidth:  c.LineWidth,
		Background: c.Background,
		TextSize:   c.TextSize,
		Adaptive:   c.Adaptive,
		ShowText:   showText,
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
