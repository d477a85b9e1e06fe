// Package config provides configuration management for the analysis application.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	ML         MLConfig         `mapstructure:"ml"`
	Neural     NeuralConfig     `mapstructure:"neural"`
	Indicators IndicatorConfig  `mapstructure:"indicators"`
	Patterns   PatternConfig    `mapstructure:"patterns"`
	Storage    StorageConfig    `mapstructure:"storage"`
	UI         UIConfig         `mapstructure:"ui"`
}

// MLConfig holds Random Forest training configuration.
type MLConfig struct {
	Trees          int     `mapstructure:"trees"`
	MaxDepth       int     `mapstructure:"max_depth"`
	MinSamplesLeaf int     `mapstructure:"min_samples_leaf"`
	MinSplit       int     `mapstructure:"min_split"`
	TestSize       float64 `mapstructure:"test_size"`
	Seed           int64   `mapstructure:"seed"`
	MinSamples     int     `mapstructure:"min_samples"`
}

// NeuralConfig holds neural network training configuration.
type NeuralConfig struct {
	HiddenLayers    []int   `mapstructure:"hidden_layers"`
	LearningRate    float64 `mapstructure:"learning_rate"`
	MaxEpochs       int     `mapstructure:"max_epochs"`
	BatchSize       int     `mapstructure:"batch_size"`
	Patience        int     `mapstructure:"patience"`
	ValidationSplit float64 `mapstructure:"validation_split"`
	PCAComponents   int     `mapstructure:"pca_components"`
	ClassThreshold  float64 `mapstructure:"class_threshold"`
}

// IndicatorConfig holds technical indicator periods.
type IndicatorConfig struct {
	SMAPeriods  []int   `mapstructure:"sma_periods"`
	EMAPeriods  []int   `mapstructure:"ema_periods"`
	RSIPeriod   int     `mapstructure:"rsi_period"`
	MACDFast    int     `mapstructure:"macd_fast"`
	MACDSlow    int     `mapstructure:"macd_slow"`
	MACDSignal  int     `mapstructure:"macd_signal"`
	BBPeriod    int     `mapstructure:"bb_period"`
	BBStdDev    float64 `mapstructure:"bb_std_dev"`
	StochPeriod int     `mapstructure:"stoch_period"`
	ATRPeriod   int     `mapstructure:"atr_period"`
}

// PatternConfig holds chart pattern detection configuration.
type PatternConfig struct {
	RecentBars     int `mapstructure:"recent_bars"`
	ExtremaWindow  int `mapstructure:"extrema_window"`
	TriangleWindow int `mapstructure:"triangle_window"`
	MaxLevels      int `mapstructure:"max_levels"`
}

// StorageConfig holds model artifact storage configuration.
type StorageConfig struct {
	DatabasePath string `mapstructure:"database_path"`
}

// UIConfig holds UI-related configuration.
type UIConfig struct {
	ColorEnabled bool   `mapstructure:"color_enabled"`
	DateFormat   string `mapstructure:"date_format"`
	JSONOutput   bool   `mapstructure:"json_output"`
}

// DefaultConfigDir returns the default configuration directory.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".config/nse-insight"
	}
	return filepath.Join(home, ".config", "nse-insight")
}

// Default returns the configuration with all defaults applied.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

func applyDefaults(cfg *Config) {
	cfg.ML = MLConfig{
		Trees:          100,
		MaxDepth:       10,
		MinSamplesLeaf: 2,
		MinSplit:       5,
		TestSize:       0.2,
		Seed:           42,
		MinSamples:     100,
	}
	cfg.Neural = NeuralConfig{
		HiddenLayers:    []int{100, 50, 25},
		LearningRate:    0.001,
		MaxEpochs:       500,
		BatchSize:       32,
		Patience:        10,
		ValidationSplit: 0.2,
		PCAComponents:   15,
		ClassThreshold:  0.02,
	}
	cfg.Indicators = IndicatorConfig{
		SMAPeriods:  []int{5, 10, 20, 50},
		EMAPeriods:  []int{12, 26},
		RSIPeriod:   14,
		MACDFast:    12,
		MACDSlow:    26,
		MACDSignal:  9,
		BBPeriod:    20,
		BBStdDev:    2.0,
		StochPeriod: 14,
		ATRPeriod:   14,
	}
	cfg.Patterns = PatternConfig{
		RecentBars:     30,
		ExtremaWindow:  20,
		TriangleWindow: 30,
		MaxLevels:      5,
	}
	cfg.Storage = StorageConfig{
		DatabasePath: filepath.Join(DefaultConfigDir(), "models.db"),
	}
	cfg.UI = UIConfig{
		ColorEnabled: true,
		DateFormat:   "02-Jan-2006",
		JSONOutput:   false,
	}
}

// Load loads configuration from the specified directory.
// If configDir is empty, uses the default config directory.
func Load(configDir string) (*Config, error) {
	if configDir == "" {
		configDir = DefaultConfigDir()
	}

	cfg := Default()

	if err := loadConfigFile(configDir, "config", cfg); err != nil {
		return nil, fmt.Errorf("loading config.toml: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

func loadConfigFile(configDir, name string, target *Config) error {
	v := viper.New()
	v.SetConfigName(name)
	v.SetConfigType("toml")
	v.AddConfigPath(configDir)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// Config file not found, create template and keep defaults
			return createTemplateConfig(configDir, name)
		}
		return err
	}

	return v.Unmarshal(target)
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("INSIGHT_DB_PATH"); v != "" {
		cfg.Storage.DatabasePath = v
	}
	if v := os.Getenv("INSIGHT_SEED"); v != "" {
		if seed, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.ML.Seed = seed
		}
	}
	if v := os.Getenv("INSIGHT_TREES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.ML.Trees = n
		}
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.ML.Trees <= 0 {
		return fmt.Errorf("ml.trees must be positive")
	}
	if c.ML.MaxDepth <= 0 {
		return fmt.Errorf("ml.max_depth must be positive")
	}
	if c.ML.TestSize <= 0 || c.ML.TestSize >= 1 {
		return fmt.Errorf("ml.test_size must be between 0 and 1")
	}
	if c.ML.MinSamples <= 0 {
		return fmt.Errorf("ml.min_samples must be positive")
	}
	if len(c.Neural.HiddenLayers) == 0 {
		return fmt.Errorf("neural.hidden_layers must not be empty")
	}
	for _, h := range c.Neural.HiddenLayers {
		if h <= 0 {
			return fmt.Errorf("neural.hidden_layers entries must be positive")
		}
	}
	if c.Neural.LearningRate <= 0 {
		return fmt.Errorf("neural.learning_rate must be positive")
	}
	if c.Neural.ValidationSplit <= 0 || c.Neural.ValidationSplit >= 1 {
		return fmt.Errorf("neural.validation_split must be between 0 and 1")
	}
	if c.Neural.PCAComponents <= 0 {
		return fmt.Errorf("neural.pca_components must be positive")
	}
	if c.Neural.ClassThreshold <= 0 {
		return fmt.Errorf("neural.class_threshold must be positive")
	}
	for _, p := range append(append([]int{}, c.Indicators.SMAPeriods...), c.Indicators.EMAPeriods...) {
		if p <= 0 {
			return fmt.Errorf("indicator periods must be positive")
		}
	}
	if c.Indicators.RSIPeriod <= 0 || c.Indicators.BBPeriod <= 0 || c.Indicators.StochPeriod <= 0 {
		return fmt.Errorf("indicator periods must be positive")
	}
	if c.Indicators.MACDFast >= c.Indicators.MACDSlow {
		return fmt.Errorf("macd_fast must be less than macd_slow")
	}
	if c.Patterns.RecentBars <= 0 || c.Patterns.ExtremaWindow <= 0 {
		return fmt.Errorf("pattern windows must be positive")
	}
	return nil
}
