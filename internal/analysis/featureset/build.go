package featureset

import (
	"fmt"
	"math"

	"nse-insight/internal/analysis/indicators"
	"nse-insight/internal/config"
	apperrors "nse-insight/internal/errors"
	"nse-insight/internal/models"
)

// Builder assembles feature frames using configured indicator periods.
type Builder struct {
	cfg config.IndicatorConfig
}

// NewBuilder creates a Builder with the given indicator configuration.
func NewBuilder(cfg config.IndicatorConfig) *Builder {
	return &Builder{cfg: cfg}
}

// BuildTree builds the feature frame for the direction classifier.
// The target is 1 when the next close is higher than the current close,
// 0 otherwise, and -1 on the final row where no next close exists.
func (b *Builder) BuildTree(symbol string, bars []models.PriceBar) (*Frame, error) {
	n := len(bars)
	if n < 2 {
		return nil, apperrors.NewDataError("prices", symbol,
			"need at least two bars", apperrors.ErrInsufficientData)
	}

	series, columns, err := b.treeSeries(bars)
	if err != nil {
		return nil, apperrors.NewDataError("features", symbol, "computing indicators", err)
	}

	frame := assemble(symbol, bars, columns, series)
	closes := make([]float64, n)
	for i, bar := range bars {
		closes[i] = bar.Close
	}
	frame.Target = make([]int, n)
	for i := 0; i < n-1; i++ {
		if closes[i+1] > closes[i] {
			frame.Target[i] = 1
		}
	}
	frame.Target[n-1] = -1
	return frame, nil
}

// BuildNeural builds the feature frame for the neural classifier. The target
// bins the next-day return at the threshold: 0 for a drop beyond it, 2 for a
// rise beyond it, 1 otherwise. Sentiment features become constant columns.
func (b *Builder) BuildNeural(symbol string, bars []models.PriceBar, sentiment models.SentimentFeatures, threshold float64) (*Frame, error) {
	n := len(bars)
	if n < 2 {
		return nil, apperrors.NewDataError("prices", symbol,
			"need at least two bars", apperrors.ErrInsufficientData)
	}

	series, columns, err := b.neuralSeries(bars)
	if err != nil {
		return nil, apperrors.NewDataError("features", symbol, "computing features", err)
	}

	// Sentiment features ride along as constant columns, sorted for a
	// stable column order.
	for _, key := range sentiment.Keys() {
		col := "sentiment_" + key
		constant := make([]float64, n)
		for i := range constant {
			constant[i] = sentiment[key]
		}
		series[col] = constant
		columns = append(columns, col)
	}

	frame := assemble(symbol, bars, columns, series)
	frame.Target = make([]int, n)
	for i := 0; i < n-1; i++ {
		ret := safeRatio(bars[i+1].Close-bars[i].Close, bars[i].Close)
		switch {
		case ret <= -threshold:
			frame.Target[i] = 0
		case ret > threshold:
			frame.Target[i] = 2
		default:
			frame.Target[i] = 1
		}
	}
	frame.Target[n-1] = -1
	return frame, nil
}

func (b *Builder) treeSeries(bars []models.PriceBar) (map[string][]float64, []string, error) {
	n := len(bars)
	series := make(map[string][]float64)
	var columns []string

	add := func(name string, values []float64) {
		series[name] = values
		columns = append(columns, name)
	}

	for _, p := range b.cfg.SMAPeriods {
		values, err := indicators.NewSMA(p).Calculate(bars)
		if err != nil {
			return nil, nil, err
		}
		add(fmt.Sprintf("SMA_%d", p), values)
	}
	for _, p := range b.cfg.EMAPeriods {
		values, err := indicators.NewEMA(p).Calculate(bars)
		if err != nil {
			return nil, nil, err
		}
		add(fmt.Sprintf("EMA_%d", p), values)
	}

	rsi, err := indicators.NewRSI(b.cfg.RSIPeriod).Calculate(bars)
	if err != nil {
		return nil, nil, err
	}
	add("RSI", rsi)

	macd, err := indicators.NewMACD(b.cfg.MACDFast, b.cfg.MACDSlow, b.cfg.MACDSignal).Calculate(bars)
	if err != nil {
		return nil, nil, err
	}
	add("MACD", macd["macd"])
	add("MACD_Signal", macd["signal"])
	add("MACD_Hist", macd["histogram"])

	bb, err := indicators.NewBollingerBands(b.cfg.BBPeriod, b.cfg.BBStdDev).Calculate(bars)
	if err != nil {
		return nil, nil, err
	}
	add("BB_Upper", bb["upper"])
	add("BB_Middle", bb["middle"])
	add("BB_Lower", bb["lower"])
	add("BB_Width", bb["width"])
	add("BB_Position", bb["position"])

	volSMA, err := indicators.NewVolumeSMA(20).Calculate(bars)
	if err != nil {
		return nil, nil, err
	}
	add("Volume_SMA_20", volSMA)

	volRatio, err := indicators.NewVolumeRatio(20).Calculate(bars)
	if err != nil {
		return nil, nil, err
	}
	add("Volume_Ratio", volRatio)

	obv, err := indicators.NewOBV().Calculate(bars)
	if err != nil {
		return nil, nil, err
	}
	add("OBV", obv)

	roc, err := indicators.NewROC(10).Calculate(bars)
	if err != nil {
		return nil, nil, err
	}
	// Reported as a percentage
	scaled := make([]float64, n)
	for i, v := range roc {
		scaled[i] = v * 100
	}
	add("ROC", scaled)

	stoch, err := indicators.NewStochastic(b.cfg.StochPeriod, 3).Calculate(bars)
	if err != nil {
		return nil, nil, err
	}
	add("Stochastic", stoch["percent_k"])

	vol, err := indicators.NewHistoricalVolatility(20).Calculate(bars)
	if err != nil {
		return nil, nil, err
	}
	add("Volatility", vol)

	atr, err := indicators.NewATR(b.cfg.ATRPeriod).Calculate(bars)
	if err != nil {
		return nil, nil, err
	}
	add("ATR", atr)

	closes := make([]float64, n)
	for i, bar := range bars {
		closes[i] = bar.Close
	}
	add("Price_Change", pctChange(closes, 1))
	add("Price_Change_5d", pctChange(closes, 5))
	add("Price_Change_10d", pctChange(closes, 10))

	return series, columns, nil
}

func (b *Builder) neuralSeries(bars []models.PriceBar) (map[string][]float64, []string, error) {
	n := len(bars)
	series := make(map[string][]float64)
	var columns []string

	add := func(name string, values []float64) {
		series[name] = values
		columns = append(columns, name)
	}

	closes := make([]float64, n)
	highs := make([]float64, n)
	lows := make([]float64, n)
	vols := make([]float64, n)
	for i, bar := range bars {
		closes[i] = bar.Close
		highs[i] = bar.High
		lows[i] = bar.Low
		vols[i] = float64(bar.Volume)
	}

	for _, p := range []int{3, 5, 10, 20} {
		add(fmt.Sprintf("momentum_%d", p), pctChange(closes, p))
	}

	dailyReturns := pctChange(closes, 1)
	for _, p := range []int{5, 10, 20} {
		add(fmt.Sprintf("volatility_%d", p), rollingStd(dailyReturns, p))
	}

	volMA := rollingMean(vols, 20)
	ratio := make([]float64, n)
	for i := range ratio {
		if math.IsNaN(volMA[i]) {
			ratio[i] = math.NaN()
		} else {
			ratio[i] = safeRatio(vols[i], volMA[i])
		}
	}
	add("volume_ma_ratio", ratio)
	add("volume_trend", pctChange(vols, 5))

	for _, p := range []int{20, 50} {
		rollMax := rollingMax(highs, p)
		rollMin := rollingMin(lows, p)
		position := make([]float64, n)
		for i := range position {
			if math.IsNaN(rollMax[i]) || math.IsNaN(rollMin[i]) {
				position[i] = math.NaN()
			} else if rollMax[i] == rollMin[i] {
				position[i] = 0.5
			} else {
				position[i] = (closes[i] - rollMin[i]) / (rollMax[i] - rollMin[i])
			}
		}
		add(fmt.Sprintf("price_position_%d", p), position)
	}

	mom20 := pctChange(closes, 20)
	strength := make([]float64, n)
	for i, v := range mom20 {
		if math.IsNaN(v) {
			strength[i] = math.NaN()
		} else {
			strength[i] = math.Abs(v)
		}
	}
	add("trend_strength", strength)

	// Technical subset shared with the direction classifier
	rsi, err := indicators.NewRSI(b.cfg.RSIPeriod).Calculate(bars)
	if err != nil {
		return nil, nil, err
	}
	add("RSI", rsi)

	macd, err := indicators.NewMACD(b.cfg.MACDFast, b.cfg.MACDSlow, b.cfg.MACDSignal).Calculate(bars)
	if err != nil {
		return nil, nil, err
	}
	add("MACD", macd["macd"])
	add("MACD_Signal", macd["signal"])
	add("MACD_Hist", macd["histogram"])

	stoch, err := indicators.NewStochastic(b.cfg.StochPeriod, 3).Calculate(bars)
	if err != nil {
		return nil, nil, err
	}
	add("Stochastic", stoch["percent_k"])

	bb, err := indicators.NewBollingerBands(b.cfg.BBPeriod, b.cfg.BBStdDev).Calculate(bars)
	if err != nil {
		return nil, nil, err
	}
	add("BB_Width", bb["width"])
	add("BB_Position", bb["position"])

	return series, columns, nil
}

func assemble(symbol string, bars []models.PriceBar, columns []string, series map[string][]float64) *Frame {
	n := len(bars)
	frame := &Frame{
		Symbol:  symbol,
		Columns: columns,
	}
	frame.Rows = make([][]float64, n)
	for i := 0; i < n; i++ {
		row := make([]float64, len(columns))
		for j, col := range columns {
			row[j] = series[col][i]
		}
		frame.Rows[i] = row
	}
	for _, bar := range bars {
		frame.Dates = append(frame.Dates, bar.Date)
	}
	return frame
}

// pctChange returns the fractional change over period, NaN where undefined.
func pctChange(values []float64, period int) []float64 {
	out := make([]float64, len(values))
	for i := range out {
		if i < period || values[i-period] == 0 {
			out[i] = math.NaN()
		} else {
			out[i] = (values[i] - values[i-period]) / values[i-period]
		}
	}
	return out
}

// rollingMean returns the rolling mean over window, NaN during warm-up.
func rollingMean(values []float64, window int) []float64 {
	out := make([]float64, len(values))
	for i := range out {
		if i < window-1 {
			out[i] = math.NaN()
			continue
		}
		var s float64
		for _, v := range values[i-window+1 : i+1] {
			s += v
		}
		out[i] = s / float64(window)
	}
	return out
}

// rollingStd returns the rolling population standard deviation over window.
// Input NaNs propagate into the warm-up region.
func rollingStd(values []float64, window int) []float64 {
	out := make([]float64, len(values))
	for i := range out {
		if i < window-1 {
			out[i] = math.NaN()
			continue
		}
		w := values[i-window+1 : i+1]
		if windowHasNaN(w) {
			out[i] = math.NaN()
			continue
		}
		var s float64
		for _, v := range w {
			s += v
		}
		m := s / float64(window)
		var variance float64
		for _, v := range w {
			d := v - m
			variance += d * d
		}
		out[i] = math.Sqrt(variance / float64(window))
	}
	return out
}

func rollingMax(values []float64, window int) []float64 {
	out := make([]float64, len(values))
	for i := range out {
		if i < window-1 {
			out[i] = math.NaN()
			continue
		}
		m := values[i-window+1]
		for _, v := range values[i-window+2 : i+1] {
			if v > m {
				m = v
			}
		}
		out[i] = m
	}
	return out
}

func rollingMin(values []float64, window int) []float64 {
	out := make([]float64, len(values))
	for i := range out {
		if i < window-1 {
			out[i] = math.NaN()
			continue
		}
		m := values[i-window+1]
		for _, v := range values[i-window+2 : i+1] {
			if v < m {
				m = v
			}
		}
		out[i] = m
	}
	return out
}

func windowHasNaN(values []float64) bool {
	for _, v := range values {
		if math.IsNaN(v) {
			return true
		}
	}
	return false
}

func safeRatio(a, b float64) float64 {
	if b == 0 {
		return 0
	}
	return a / b
}
