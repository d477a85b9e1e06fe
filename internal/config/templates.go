package config

import (
	"fmt"
	"os"
	"path/filepath"
)

const configTemplate = `# NSE Insight Configuration

[ml]
# Number of trees in the random forest
trees = 100
# Maximum tree depth
max_depth = 10
# Minimum samples required to split a node
min_split = 5
# Minimum samples required at a leaf
min_samples_leaf = 2
# Fraction of samples held out for testing
test_size = 0.2
# Random seed for reproducible training
seed = 42
# Minimum clean samples required to train
min_samples = 100

[neural]
# Hidden layer sizes
hidden_layers = [100, 50, 25]
# Adam learning rate
learning_rate = 0.001
# Maximum training epochs
max_epochs = 500
# Mini-batch size
batch_size = 32
# Early stopping patience in epochs
patience = 10
# Fraction of training data held out for validation
validation_split = 0.2
# Maximum PCA components retained
pca_components = 15
# Return threshold separating neutral from strong moves
class_threshold = 0.02

[indicators]
sma_periods = [5, 10, 20, 50]
ema_periods = [12, 26]
rsi_period = 14
macd_fast = 12
macd_slow = 26
macd_signal = 9
bb_period = 20
bb_std_dev = 2.0
stoch_period = 14
atr_period = 14

[patterns]
# Bars considered "recent" for sentiment
recent_bars = 30
# Window for support/resistance extrema
extrema_window = 20
# Window for triangle detection
triangle_window = 30
# Maximum support/resistance levels reported
max_levels = 5

[storage]
# SQLite database for trained model artifacts
database_path = ""

[ui]
# Enable colored output
color_enabled = true
# Date format
date_format = "02-Jan-2006"
# Emit JSON instead of tables
json_output = false
`

func createTemplateConfig(configDir, name string) error {
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	path := filepath.Join(configDir, name+".toml")
	if _, err := os.Stat(path); err == nil {
		return nil
	}
	if err := os.WriteFile(path, []byte(configTemplate), 0644); err != nil {
		return fmt.Errorf("writing config template: %w", err)
	}

	return nil
}
