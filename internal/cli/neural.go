package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"nse-insight/internal/models"
)

// addNeuralCommands adds the neural classifier commands.
func addNeuralCommands(rootCmd *cobra.Command, app *App) {
	rootCmd.AddCommand(newTrainNeuralCmd(app))
	rootCmd.AddCommand(newPredictNeuralCmd(app))
}

func newTrainNeuralCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "train-neural <symbol>",
		Short: "Train the neural pattern classifier for a symbol",
		Long: `Train a feed-forward network that classifies the next-day move into
strong down, neutral, or strong up. Features are standardized and reduced
with PCA before training.

News sentiment scalars can be attached with repeated --sentiment flags;
they become part of the model's feature set.`,
		Example: `  insight train-neural RELIANCE
  insight train-neural INFY --force
  insight train-neural TCS --sentiment sentiment_score=0.4 --sentiment sentiment_confidence=0.8`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			symbol := strings.ToUpper(args[0])
			force, _ := cmd.Flags().GetBool("force")
			pairs, _ := cmd.Flags().GetStringArray("sentiment")

			sentiment, err := parseSentiment(pairs)
			if err != nil {
				output.Error("%v", err)
				return err
			}

			bars, err := loadHistory(cmd, app, symbol)
			if err != nil {
				output.Error("Failed to load price history: %v", err)
				return err
			}

			output.Info("Training neural model for %s on %d bars...", symbol, len(bars))
			result, err := app.Neural.Train(cmd.Context(), symbol, bars, sentiment, force)
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

			output.Success("Neural model trained for %s", symbol)
			output.Printf("  Accuracy:           %.2f%%\n", result.Accuracy*100)
			output.Printf("  Samples:            %d train / %d test\n", result.TrainingSamples, result.TestSamples)
			output.Printf("  Features:           %d\n", result.FeatureCount)
			output.Printf("  PCA components:     %d (%.1f%% variance)\n", result.PCAComponents, result.ExplainedVariance*100)
			output.Printf("  Sentiment used:     %v\n", result.SentimentUsed)
			return nil
		},
	}
	cmd.Flags().Bool("force", false, "retrain even if a model exists")
	cmd.Flags().StringArray("sentiment", nil, "sentiment feature as key=value (repeatable)")
	return cmd
}

func newPredictNeuralCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "predict-neural <symbol>",
		Short: "Classify the next-day move with the neural model",
		Example: `  insight predict-neural RELIANCE
  insight predict-neural INFY --sentiment sentiment_score=0.4 --sentiment sentiment_confidence=0.8`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			symbol := strings.ToUpper(args[0])
			pairs, _ := cmd.Flags().GetStringArray("sentiment")

			sentiment, err := parseSentiment(pairs)
			if err != nil {
				output.Error("%v", err)
				return err
			}

			bars, err := loadHistory(cmd, app, symbol)
			if err != nil {
				output.Error("Failed to load price history: %v", err)
				return err
			}

			pred, err := app.Neural.Predict(cmd.Context(), symbol, bars, sentiment)
			if err != nil {
				output.Error("Prediction failed: %v", err)
				return err
			}

			if output.IsJSON() {
				return output.JSON(pred)
			}

			output.Bold("%s neural prediction", symbol)
			switch pred.Class {
			case models.ClassStrongUp:
				output.Bullish("  Class:       STRONG UP (%.1f%% confidence)", pred.Confidence*100)
			case models.ClassStrongDown:
				output.Bearish("  Class:       STRONG DOWN (%.1f%% confidence)", pred.Confidence*100)
			default:
				output.Printf("  Class:       NEUTRAL (%.1f%% confidence)\n", pred.Confidence*100)
			}
			output.Printf("  P(down):     %.3f\n", pred.Probabilities[models.ClassStrongDown])
			output.Printf("  P(neutral):  %.3f\n", pred.Probabilities[models.ClassNeutral])
			output.Printf("  P(up):       %.3f\n", pred.Probabilities[models.ClassStrongUp])
			output.Printf("  Sentiment:   %v\n", pred.SentimentUsed)
			return nil
		},
	}
	cmd.Flags().StringArray("sentiment", nil, "sentiment feature as key=value (repeatable)")
	return cmd
}
