package cli

import (
	"sort"
	"strings"

	"github.com/spf13/cobra"
)

// addCorrelationCommands adds the correlation analysis command.
func addCorrelationCommands(rootCmd *cobra.Command, app *App) {
	rootCmd.AddCommand(newCorrelationCmd(app))
}

func newCorrelationCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "correlation <symbol>",
		Short: "Analyze price/volume and indicator correlations",
		Example: `  insight correlation RELIANCE
  insight correlation INFY --days 250 --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			symbol := strings.ToUpper(args[0])

			bars, err := loadHistory(cmd, app, symbol)
			if err != nil {
				output.Error("Failed to load price history: %v", err)
				return err
			}

			volume, err := app.Correl.AnalyzeVolume(bars)
			if err != nil {
				output.Error("Volume analysis failed: %v", err)
				return err
			}

			technical, err := app.Correl.TechnicalCorrelations(bars)
			if err != nil {
				output.Error("Indicator correlation failed: %v", err)
				return err
			}

			if output.IsJSON() {
				return output.JSON(map[string]interface{}{
					"symbol":    symbol,
					"volume":    volume,
					"technical": technical,
				})
			}

			output.Bold("%s correlation analysis", symbol)
			output.Printf("  Price/volume corr:    %.3f\n", volume.PriceVolumeCorrelation)
			output.Printf("  Avg change (hi vol):  %+.3f%%\n", volume.AvgChangeHighVolume*100)
			output.Printf("  Avg change (lo vol):  %+.3f%%\n", volume.AvgChangeLowVolume*100)
			if volume.VolumeConfirmsTrend {
				output.Bullish("  Volume confirms the prevailing trend")
			} else {
				output.Printf("  Volume does not confirm the trend\n")
			}

			if len(technical) > 0 {
				pairs := make([]string, 0, len(technical))
				for pair := range technical {
					pairs = append(pairs, pair)
				}
				sort.Strings(pairs)
				output.Println("  Indicator correlations:")
				for _, pair := range pairs {
					output.Printf("    %-26s %+.3f\n", pair, technical[pair])
				}
			}
			return nil
		},
	}
}
