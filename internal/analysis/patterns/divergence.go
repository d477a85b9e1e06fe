package patterns

import (
	"math"

	"nse-insight/internal/analysis"
	"nse-insight/internal/analysis/indicators"
	"nse-insight/internal/models"
)

// DivergenceDetector finds divergences between price and RSI over the
// most recent bars.
type DivergenceDetector struct {
	rsiPeriod int
	lookback  int
}

// NewDivergenceDetector creates a detector using the given RSI period.
func NewDivergenceDetector(rsiPeriod int) *DivergenceDetector {
	if rsiPeriod <= 0 {
		rsiPeriod = 14
	}
	return &DivergenceDetector{rsiPeriod: rsiPeriod, lookback: 20}
}

func (d *DivergenceDetector) Name() string {
	return "RSIDivergence"
}

func (d *DivergenceDetector) Detect(bars []models.PriceBar) ([]analysis.Pattern, error) {
	if len(bars) < d.rsiPeriod+d.lookback {
		return nil, nil
	}

	rsi, err := indicators.NewRSI(d.rsiPeriod).Calculate(bars)
	if err != nil {
		return nil, nil
	}

	n := len(bars)
	recentClose := make([]float64, 0, d.lookback)
	recentRSI := make([]float64, 0, d.lookback)
	for i := n - d.lookback; i < n; i++ {
		if math.IsNaN(rsi[i]) {
			return nil, nil
		}
		recentClose = append(recentClose, bars[i].Close)
		recentRSI = append(recentRSI, rsi[i])
	}

	priceTrend := slopeOf(recentClose)
	rsiTrend := slopeOf(recentRSI)

	var patterns []analysis.Pattern
	// Price falling while RSI rises hints at a reversal up
	if priceTrend < 0 && rsiTrend > 0 {
		patterns = append(patterns, analysis.Pattern{
			Name:       "Bullish RSI Divergence",
			Type:       analysis.PatternBullDivergence,
			Direction:  analysis.PatternBullish,
			StartIndex: n - d.lookback,
			EndIndex:   n - 1,
			Confidence: 0.7,
		})
	}
	// Price rising while RSI falls hints at a reversal down
	if priceTrend > 0 && rsiTrend < 0 {
		patterns = append(patterns, analysis.Pattern{
			Name:       "Bearish RSI Divergence",
			Type:       analysis.PatternBearDivergence,
			Direction:  analysis.PatternBearish,
			StartIndex: n - d.lookback,
			EndIndex:   n - 1,
			Confidence: 0.7,
		})
	}
	return patterns, nil
}
