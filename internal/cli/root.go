// Package cli provides the command-line interface for the analysis application.
package cli

import (
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"nse-insight/internal/analysis/correlation"
	"nse-insight/internal/analysis/patterns"
	"nse-insight/internal/analysis/scoring"
	"nse-insight/internal/artifact"
	"nse-insight/internal/config"
	apperrors "nse-insight/internal/errors"
	"nse-insight/internal/logging"
	"nse-insight/internal/marketdata"
	"nse-insight/internal/models"
	"nse-insight/internal/predictor"
)

// Version information
const (
	Version = "0.1.0"
)

// App holds the application dependencies.
type App struct {
	Config     *config.Config
	Logger     zerolog.Logger
	Store      artifact.Store
	Data       marketdata.Provider
	Tree       *predictor.TreePredictor
	Neural     *predictor.NeuralPredictor
	Recognizer *patterns.Recognizer
	Correl     *correlation.Analyzer
	Insights   *scoring.InsightEngine
}

// NewApp wires the application dependencies from configuration.
func NewApp(cfg *config.Config, logger zerolog.Logger) (*App, error) {
	store, err := artifact.NewSQLiteStore(cfg.Storage.DatabasePath)
	if err != nil {
		return nil, err
	}

	app := &App{
		Config: cfg,
		Logger: logger,
		Store:  store,
		Data:   marketdata.NewSynthetic(cfg.ML.Seed),
	}
	app.Tree = predictor.NewTreePredictor(cfg, store, logger)
	app.Neural = predictor.NewNeuralPredictor(cfg, store, logger)
	app.Recognizer = patterns.NewRecognizer(cfg.Patterns, cfg.Indicators)
	app.Correl = correlation.NewAnalyzer(cfg.Indicators)
	app.Insights = scoring.NewInsightEngine(app.Neural, app.Recognizer, app.Correl, logger)
	return app, nil
}

// Close releases application resources.
func (a *App) Close() error {
	if a.Store != nil {
		return a.Store.Close()
	}
	return nil
}

// NewRootCmd creates the root command for the CLI.
func NewRootCmd(app *App) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "insight",
		Short: "NSE Insight - ML-driven stock analysis CLI",
		Long: `NSE Insight analyzes Indian stock market data with machine learning.

It trains per-symbol models (a random forest direction classifier and a
three-class neural pattern classifier), detects chart patterns, analyzes volume
correlation, and combines everything into trading recommendations.

Use 'insight help <command>' for more information about a command.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			debug, _ := cmd.Flags().GetBool("debug")
			if debug {
				logging.SetDebugLevel()
				app.Logger = app.Logger.Level(zerolog.DebugLevel)
			}
			if dir, _ := cmd.Flags().GetString("data-dir"); dir != "" {
				app.Data = marketdata.NewCSVProvider(dir)
			}
			cmd.SetContext(logging.WithLogger(cmd.Context(), app.Logger))
			return nil
		},
	}

	// Global flags
	rootCmd.PersistentFlags().String("config", "", "config directory (default: ~/.config/nse-insight)")
	rootCmd.PersistentFlags().Bool("json", false, "output in JSON format")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")
	rootCmd.PersistentFlags().String("data-dir", "", "directory of per-symbol CSV price files (default: synthetic data)")
	rootCmd.PersistentFlags().Int("days", 400, "days of price history to analyze")

	addTreeCommands(rootCmd, app)
	addNeuralCommands(rootCmd, app)
	addInsightCommands(rootCmd, app)
	addIndicatorCommands(rootCmd, app)
	addCorrelationCommands(rootCmd, app)
	addModelCommands(rootCmd, app)

	return rootCmd
}

// loadHistory fetches price history honoring the --days flag.
func loadHistory(cmd *cobra.Command, app *App, symbol string) ([]models.PriceBar, error) {
	days, _ := cmd.Flags().GetInt("days")
	return app.Data.History(cmd.Context(), strings.ToUpper(symbol), days)
}

// parseSentiment converts repeated key=value flags into sentiment features.
func parseSentiment(pairs []string) (models.SentimentFeatures, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	features := make(models.SentimentFeatures, len(pairs))
	for _, pair := range pairs {
		parts := strings.SplitN(pair, "=", 2)
		if len(parts) != 2 || parts[0] == "" {
			return nil, apperrors.NewValidationError("sentiment", pair, "expected key=value")
		}
		value, err := strconv.ParseFloat(parts[1], 64)
		if err != nil {
			return nil, apperrors.NewValidationError("sentiment", pair, "value must be numeric")
		}
		features[parts[0]] = value
	}
	return features, nil
}
