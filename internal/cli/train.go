package cli

import (
	"strings"

	"github.com/spf13/cobra"
)

// addTreeCommands adds the direction classifier commands.
func addTreeCommands(rootCmd *cobra.Command, app *App) {
	rootCmd.AddCommand(newTrainCmd(app))
	rootCmd.AddCommand(newPredictCmd(app))
	rootCmd.AddCommand(newImportanceCmd(app))
}

func newTrainCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "train <symbol>",
		Short: "Train the direction classifier for a symbol",
		Long: `Train a random forest that predicts whether the next close will be
higher or lower than the current close, from technical indicator features.

Training is skipped when a model already exists; pass --force to retrain.`,
		Example: `  insight train RELIANCE
  insight train INFY --force
  insight train TCS --data-dir ./data`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			symbol := strings.ToUpper(args[0])
			force, _ := cmd.Flags().GetBool("force")

			bars, err := loadHistory(cmd, app, symbol)
			if err != nil {
				output.Error("Failed to load price history: %v", err)
				return err
			}

			output.Info("Training direction model for %s on %d bars...", symbol, len(bars))
			result, err := app.Tree.Train(cmd.Context(), symbol, bars, force)
			if err != nil {
				output.Error("Training failed: %v", err)
				return err
			}

			if output.IsJSON() {
				return output.JSON(result)
			}

			if result.Skipped {
				output.Warning("Model already exists (trained %s). Use --force to retrain.",
					result.TrainedAt.Format("02-Jan-2006 15:04"))
				return nil
			}

			output.Success("Model trained for %s", symbol)
			output.Printf("  Accuracy:   %.2f%%\n", result.Accuracy*100)
			output.Printf("  Precision:  %.2f%%\n", result.Precision*100)
			output.Printf("  Recall:     %.2f%%\n", result.Recall*100)
			output.Printf("  F1 score:   %.2f%%\n", result.F1Score*100)
			output.Printf("  Samples:    %d train / %d test\n", result.TrainingSamples, result.TestSamples)
			output.Printf("  Features:   %d\n", result.FeatureCount)
			return nil
		},
	}
	cmd.Flags().Bool("force", false, "retrain even if a model exists")
	return cmd
}

func newPredictCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "predict <symbol>",
		Short: "Predict next-day direction for a symbol",
		Example: `  insight predict RELIANCE
  insight predict INFY --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			symbol := strings.ToUpper(args[0])

			bars, err := loadHistory(cmd, app, symbol)
			if err != nil {
				output.Error("Failed to load price history: %v", err)
				return err
			}

			pred, err := app.Tree.Predict(cmd.Context(), symbol, bars)
			if err != nil {
				output.Error("Prediction failed: %v", err)
				return err
			}

			if output.IsJSON() {
				return output.JSON(pred)
			}

			output.Bold("%s direction prediction", symbol)
			if pred.Direction == "UP" {
				output.Bullish("  Direction:  UP (%.1f%% confidence)", pred.Confidence*100)
			} else {
				output.Bearish("  Direction:  DOWN (%.1f%% confidence)", pred.Confidence*100)
			}
			output.Printf("  P(up):      %.3f\n", pred.ProbabilityUp)
			output.Printf("  P(down):    %.3f\n", pred.ProbabilityDown)
			output.Printf("  As of:      %s\n", pred.BasedOnDate.Format("02-Jan-2006"))
			if len(pred.TopFeatures) > 0 {
				output.Println("  Top features:")
				for _, f := range pred.TopFeatures {
					output.Printf("    %-18s %.4f\n", f.Feature, f.Value)
				}
			}
			return nil
		},
	}
}

func newImportanceCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "importance <symbol>",
		Short:   "Show feature importances for a trained model",
		Example: `  insight importance RELIANCE`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			symbol := strings.ToUpper(args[0])

			ranked, err := app.Tree.FeatureImportance(cmd.Context(), symbol)
			if err != nil {
				output.Error("Failed to load model: %v", err)
				return err
			}

			if output.IsJSON() {
				return output.JSON(ranked)
			}

			output.Bold("%s feature importances", symbol)
			for _, f := range ranked {
				output.Printf("  %-20s %.4f\n", f.Feature, f.Value)
			}
			return nil
		},
	}
}
