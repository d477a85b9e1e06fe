// Package correlation analyzes relationships between price, volume, and
// technical indicators.
package correlation

import (
	"fmt"
	"math"
	"sort"

	"nse-insight/internal/analysis/indicators"
	"nse-insight/internal/config"
	apperrors "nse-insight/internal/errors"
	"nse-insight/internal/models"
)

// VolumeAnalysis summarizes how volume relates to price movement.
type VolumeAnalysis struct {
	PriceVolumeCorrelation float64 `json:"price_volume_correlation"`
	AvgChangeHighVolume    float64 `json:"avg_change_high_volume"`
	AvgChangeLowVolume     float64 `json:"avg_change_low_volume"`
	VolumeConfirmsTrend    bool    `json:"volume_confirms_trend"`
}

// Analyzer computes correlation statistics for a symbol's history.
type Analyzer struct {
	icfg config.IndicatorConfig
}

// NewAnalyzer creates an Analyzer with the given indicator configuration.
func NewAnalyzer(icfg config.IndicatorConfig) *Analyzer {
	return &Analyzer{icfg: icfg}
}

// AnalyzeVolume computes the daily price/volume change correlation and the
// average price change on high-volume (top quartile) and low-volume
// (bottom quartile) days. Volume confirms the trend when the absolute
// correlation exceeds 0.3.
func (a *Analyzer) AnalyzeVolume(bars []models.PriceBar) (*VolumeAnalysis, error) {
	if len(bars) < 3 {
		return nil, apperrors.NewDataError("prices", "",
			"need at least three bars for volume analysis", apperrors.ErrInsufficientData)
	}

	n := len(bars)
	priceChange := make([]float64, 0, n-1)
	volumeChange := make([]float64, 0, n-1)
	volumes := make([]float64, 0, n-1)
	for i := 1; i < n; i++ {
		pc := ratio(bars[i].Close-bars[i-1].Close, bars[i-1].Close)
		vc := ratio(float64(bars[i].Volume-bars[i-1].Volume), float64(bars[i-1].Volume))
		priceChange = append(priceChange, pc)
		volumeChange = append(volumeChange, vc)
		volumes = append(volumes, float64(bars[i].Volume))
	}

	corr := pearson(priceChange, volumeChange)

	highCut := quantile(volumes, 0.75)
	lowCut := quantile(volumes, 0.25)

	var highSum, lowSum float64
	var highN, lowN int
	for i, v := range volumes {
		if v > highCut {
			highSum += priceChange[i]
			highN++
		}
		if v < lowCut {
			lowSum += priceChange[i]
			lowN++
		}
	}

	analysis := &VolumeAnalysis{
		PriceVolumeCorrelation: corr,
		VolumeConfirmsTrend:    math.Abs(corr) > 0.3,
	}
	if highN > 0 {
		analysis.AvgChangeHighVolume = highSum / float64(highN)
	}
	if lowN > 0 {
		analysis.AvgChangeLowVolume = lowSum / float64(lowN)
	}
	return analysis, nil
}

// TechnicalCorrelations computes pairwise correlations between the core
// technical indicators, keyed "A_vs_B". Rows where either series is NaN
// are excluded pair by pair.
func (a *Analyzer) TechnicalCorrelations(bars []models.PriceBar) (map[string]float64, error) {
	series := make(map[string][]float64)
	var names []string

	if rsi, err := indicators.NewRSI(a.icfg.RSIPeriod).Calculate(bars); err == nil {
		series["RSI"] = rsi
		names = append(names, "RSI")
	}
	if macd, err := indicators.NewMACD(a.icfg.MACDFast, a.icfg.MACDSlow, a.icfg.MACDSignal).Calculate(bars); err == nil {
		series["MACD"] = macd["macd"]
		names = append(names, "MACD")
	}
	if stoch, err := indicators.NewStochastic(a.icfg.StochPeriod, 3).Calculate(bars); err == nil {
		series["Stochastic"] = stoch["percent_k"]
		names = append(names, "Stochastic")
	}
	if vol, err := indicators.NewHistoricalVolatility(20).Calculate(bars); err == nil {
		series["Volatility"] = vol
		names = append(names, "Volatility")
	}
	if vr, err := indicators.NewVolumeRatio(20).Calculate(bars); err == nil {
		series["Volume_Ratio"] = vr
		names = append(names, "Volume_Ratio")
	}

	if len(names) < 2 {
		return map[string]float64{}, nil
	}

	out := make(map[string]float64)
	for i, a1 := range names {
		for _, a2 := range names[i+1:] {
			x, y := pairwiseComplete(series[a1], series[a2])
			out[fmt.Sprintf("%s_vs_%s", a1, a2)] = pearson(x, y)
		}
	}
	return out, nil
}

// pearson computes the Pearson correlation coefficient, 0 when undefined.
func pearson(x, y []float64) float64 {
	if len(x) != len(y) || len(x) < 2 {
		return 0
	}
	n := float64(len(x))
	var sumX, sumY float64
	for i := range x {
		sumX += x[i]
		sumY += y[i]
	}
	meanX, meanY := sumX/n, sumY/n

	var cov, varX, varY float64
	for i := range x {
		dx := x[i] - meanX
		dy := y[i] - meanY
		cov += dx * dy
		varX += dx * dx
		varY += dy * dy
	}
	if varX == 0 || varY == 0 {
		return 0
	}
	return cov / math.Sqrt(varX*varY)
}

// quantile returns the q-th quantile of values using linear interpolation.
func quantile(values []float64, q float64) float64 {
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	if len(sorted) == 1 {
		return sorted[0]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// pairwiseComplete drops index positions where either series is NaN.
func pairwiseComplete(x, y []float64) ([]float64, []float64) {
	var outX, outY []float64
	for i := range x {
		if math.IsNaN(x[i]) || math.IsNaN(y[i]) {
			continue
		}
		outX = append(outX, x[i])
		outY = append(outY, y[i])
	}
	return outX, outY
}

func ratio(a, b float64) float64 {
	if b == 0 {
		return 0
	}
	return a / b
}
