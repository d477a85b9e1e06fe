package cli

import (
	"math"
	"runtime"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"nse-insight/internal/analysis/indicators"
	"nse-insight/internal/logging"
)

// addIndicatorCommands adds the raw indicator inspection command.
func addIndicatorCommands(rootCmd *cobra.Command, app *App) {
	rootCmd.AddCommand(newIndicatorsCmd(app))
}

func newIndicatorsCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "indicators <symbol>",
		Short: "Compute all technical indicators for a symbol",
		Example: `  insight indicators RELIANCE
  insight indicators INFY --days 200 --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			symbol := strings.ToUpper(args[0])

			bars, err := loadHistory(cmd, app, symbol)
			if err != nil {
				output.Error("Failed to load price history: %v", err)
				return err
			}

			engine := indicators.DefaultEngine(app.Config.Indicators, runtime.NumCPU())
			single, multi, err := engine.CalculateAll(cmd.Context(), bars)
			if err != nil {
				output.Error("Indicator calculation failed: %v", err)
				return err
			}
			logger := logging.FromContext(cmd.Context())
			logger.Debug().
				Str("symbol", symbol).
				Int("bars", len(bars)).
				Int("single", len(single)).
				Int("multi", len(multi)).
				Msg("Indicators calculated")

			latest := make(map[string]float64, len(single))
			for name, series := range single {
				if v, ok := lastDefined(series); ok {
					latest[name] = v
				}
			}
			for name, groups := range multi {
				for sub, series := range groups {
					if v, ok := lastDefined(series); ok {
						latest[name+"."+sub] = v
					}
				}
			}

			if output.IsJSON() {
				return output.JSON(map[string]interface{}{
					"symbol":     symbol,
					"bars":       len(bars),
					"indicators": latest,
				})
			}

			names := make([]string, 0, len(latest))
			for name := range latest {
				names = append(names, name)
			}
			sort.Strings(names)

			output.Bold("%s indicators (%d bars)", symbol, len(bars))
			for _, name := range names {
				output.Printf("  %-28s %14.4f\n", name, latest[name])
			}
			return nil
		},
	}
}

// lastDefined returns the most recent non-NaN value of a series.
func lastDefined(series []float64) (float64, bool) {
	for i := len(series) - 1; i >= 0; i-- {
		if !math.IsNaN(series[i]) {
			return series[i], true
		}
	}
	return 0, false
}
