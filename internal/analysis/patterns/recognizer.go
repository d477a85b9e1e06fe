package patterns

import (
	"nse-insight/internal/analysis"
	"nse-insight/internal/config"
	"nse-insight/internal/models"
)

// Recognizer runs all pattern detectors and summarizes their signals.
type Recognizer struct {
	detectors  []analysis.PatternDetector
	levels     *LevelDetector
	recentBars int
}

// NewRecognizer creates a Recognizer from pattern and indicator config.
func NewRecognizer(pcfg config.PatternConfig, icfg config.IndicatorConfig) *Recognizer {
	return &Recognizer{
		detectors: []analysis.PatternDetector{
			NewHeadShouldersDetector(pcfg.ExtremaWindow),
			NewDoubleDetector(15),
			NewTriangleDetector(pcfg.TriangleWindow),
			NewDivergenceDetector(icfg.RSIPeriod),
		},
		levels:     NewLevelDetector(pcfg.ExtremaWindow, pcfg.MaxLevels),
		recentBars: pcfg.RecentBars,
	}
}

// Analyze detects all patterns and levels for a symbol and derives the
// overall sentiment from patterns ending within the recent window.
// Ties, including zero recent signals, resolve to neutral.
func (r *Recognizer) Analyze(symbol string, bars []models.PriceBar) (*analysis.PatternReport, error) {
	report := &analysis.PatternReport{Symbol: symbol}

	for _, d := range r.detectors {
		found, err := d.Detect(bars)
		if err != nil {
			return nil, err
		}
		report.Patterns = append(report.Patterns, found...)
	}

	levels, err := r.levels.Detect(bars)
	if err != nil {
		return nil, err
	}
	report.Levels = levels

	cutoff := len(bars) - r.recentBars
	var bullish, bearish int
	for _, p := range report.Patterns {
		if p.EndIndex < cutoff {
			continue
		}
		report.Recent = append(report.Recent, p)
		switch p.Direction {
		case analysis.PatternBullish:
			bullish++
		case analysis.PatternBearish:
			bearish++
		}
	}

	switch {
	case bullish > bearish:
		report.Sentiment = analysis.PatternBullish
		report.Confidence = float64(bullish) / float64(bullish+bearish)
	case bearish > bullish:
		report.Sentiment = analysis.PatternBearish
		report.Confidence = float64(bearish) / float64(bullish+bearish)
	default:
		report.Sentiment = analysis.PatternNeutral
		report.Confidence = 0.5
	}

	return report, nil
}
