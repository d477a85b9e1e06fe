// Package analysis provides technical analysis functionality including indicators,
// chart pattern detection, correlation analysis, and insight scoring.
package analysis

import (
	"nse-insight/internal/models"
)

// PatternDetector defines the interface for chart pattern detection.
type PatternDetector interface {
	Name() string
	Detect(bars []models.PriceBar) ([]Pattern, error)
}

// Pattern represents a detected chart pattern.
type Pattern struct {
	Name       string           `json:"name"`
	Type       PatternType      `json:"type"`
	Direction  PatternDirection `json:"direction"`
	StartIndex int              `json:"start_index"`
	EndIndex   int              `json:"end_index"`
	Confidence float64          `json:"confidence"`
}

// PatternType identifies the kind of chart pattern.
type PatternType string

const (
	PatternHeadAndShoulders PatternType = "head_and_shoulders"
	PatternDoubleTop        PatternType = "double_top"
	PatternDoubleBottom     PatternType = "double_bottom"
	PatternAscTriangle      PatternType = "ascending_triangle"
	PatternDescTriangle     PatternType = "descending_triangle"
	PatternSymTriangle      PatternType = "symmetrical_triangle"
	PatternBullDivergence   PatternType = "bullish_divergence"
	PatternBearDivergence   PatternType = "bearish_divergence"
)

// PatternDirection represents the expected direction of a pattern.
type PatternDirection string

const (
	PatternBullish PatternDirection = "bullish"
	PatternBearish PatternDirection = "bearish"
	PatternNeutral PatternDirection = "neutral"
)

// Level represents a support or resistance level.
type Level struct {
	Price      float64   `json:"price"`
	Type       LevelType `json:"type"`
	TouchCount int       `json:"touch_count"`
}

// LevelType represents the type of price level.
type LevelType string

const (
	LevelSupport    LevelType = "support"
	LevelResistance LevelType = "resistance"
)

// PatternReport is the full output of pattern recognition for a symbol.
type PatternReport struct {
	Symbol     string           `json:"symbol"`
	Patterns   []Pattern        `json:"patterns"`
	Recent     []Pattern        `json:"recent"`
	Levels     []Level          `json:"levels"`
	Sentiment  PatternDirection `json:"sentiment"`
	Confidence float64          `json:"confidence"`
}
