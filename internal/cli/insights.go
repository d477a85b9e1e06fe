package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"nse-insight/internal/analysis"
)

// addInsightCommands adds pattern and combined-insight commands.
func addInsightCommands(rootCmd *cobra.Command, app *App) {
	rootCmd.AddCommand(newPatternsCmd(app))
	rootCmd.AddCommand(newInsightsCmd(app))
}

func newPatternsCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "patterns <symbol>",
		Short: "Detect chart patterns and support/resistance levels",
		Example: `  insight patterns RELIANCE
  insight patterns INFY --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			symbol := strings.ToUpper(args[0])

			bars, err := loadHistory(cmd, app, symbol)
			if err != nil {
				output.Error("Failed to load price history: %v", err)
				return err
			}

			report, err := app.Recognizer.Analyze(symbol, bars)
			if err != nil {
				output.Error("Pattern analysis failed: %v", err)
				return err
			}

			if output.IsJSON() {
				return output.JSON(report)
			}

			output.Bold("%s pattern analysis", symbol)
			switch report.Sentiment {
			case analysis.PatternBullish:
				output.Bullish("  Sentiment:  BULLISH (%.0f%% of recent signals)", report.Confidence*100)
			case analysis.PatternBearish:
				output.Bearish("  Sentiment:  BEARISH (%.0f%% of recent signals)", report.Confidence*100)
			default:
				output.Printf("  Sentiment:  NEUTRAL\n")
			}
			output.Printf("  Patterns:   %d total, %d recent\n", len(report.Patterns), len(report.Recent))

			if len(report.Recent) > 0 {
				output.Println("  Recent patterns:")
				limit := len(report.Recent)
				if limit > 5 {
					limit = 5
				}
				for _, p := range report.Recent[len(report.Recent)-limit:] {
					output.Printf("    %-24s %-8s bars %d-%d (%.0f%%)\n",
						p.Name, p.Direction, p.StartIndex, p.EndIndex, p.Confidence*100)
				}
			}

			if len(report.Levels) > 0 {
				output.Println("  Levels:")
				for _, l := range report.Levels {
					output.Printf("    %-10s %10.2f (%d touches)\n", l.Type, l.Price, l.TouchCount)
				}
			}
			return nil
		},
	}
}

func newInsightsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "insights <symbol>",
		Short: "Combined neural, pattern, and volume insights",
		Long: `Run every analysis stage and combine the results into a trading
recommendation. Works without a trained neural model, falling back to a
pattern-only HOLD recommendation.`,
		Example: `  insight insights RELIANCE
  insight insights INFY --sentiment sentiment_score=0.5 --sentiment sentiment_confidence=0.8 --sentiment news_recommendation_score=0.6`,
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

			insights, err := app.Insights.Comprehensive(cmd.Context(), symbol, bars, sentiment)
			if err != nil {
				output.Error("Analysis failed: %v", err)
				return err
			}

			if output.IsJSON() {
				return output.JSON(insights)
			}

			output.Bold("%s comprehensive insights", symbol)

			rec := insights.Recommendation
			switch rec.Action {
			case "STRONG_BUY", "BUY":
				output.Bullish("  Recommendation: %s (%.1f%% confidence)", rec.Action, rec.Confidence*100)
			case "STRONG_SELL", "SELL":
				output.Bearish("  Recommendation: %s (%.1f%% confidence)", rec.Action, rec.Confidence*100)
			default:
				output.Printf("  Recommendation: %s (%.1f%% confidence)\n", rec.Action, rec.Confidence*100)
			}
			output.Printf("  Reason:         %s\n", rec.Reason)

			if insights.Neural != nil {
				output.Printf("  Neural class:   %s (%.1f%%)\n", insights.Neural.Class, insights.Neural.Confidence*100)
			} else {
				output.Warning("  Neural class:   unavailable (no trained model)")
			}
			output.Printf("  Pattern view:   %s (%.0f%%)\n", insights.Patterns.Sentiment, insights.Patterns.Confidence*100)
			output.Printf("  Volume corr:    %.3f (confirms trend: %v)\n",
				insights.Volume.PriceVolumeCorrelation, insights.Volume.VolumeConfirmsTrend)
			output.Printf("  Divergences:    %d\n", insights.Divergences)
			output.Printf("  Signal strength: %.2f\n", insights.CorrelationStrength)

			if insights.SentimentImpact != nil {
				output.Printf("  News sentiment: score=%.2f volume=%.0f recommendation=%.2f\n",
					insights.SentimentImpact.SentimentScore,
					insights.SentimentImpact.NewsVolume,
					insights.SentimentImpact.RecommendationScore)
			}
			return nil
		},
	}
	cmd.Flags().StringArray("sentiment", nil, "sentiment feature as key=value (repeatable)")
	return cmd
}
