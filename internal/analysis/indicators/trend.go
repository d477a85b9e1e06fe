package indicators

import (
	"fmt"
	"math"

	apperrors "nse-insight/internal/errors"
	"nse-insight/internal/models"
)

// SMA calculates Simple Moving Average.
type SMA struct {
	period int
}

// NewSMA creates a new SMA indicator.
func NewSMA(period int) *SMA {
	return &SMA{period: period}
}

func (s *SMA) Name() string {
	return fmt.Sprintf("SMA_%d", s.period)
}

func (s *SMA) Period() int {
	return s.period
}

func (s *SMA) Calculate(bars []models.PriceBar) ([]float64, error) {
	if s.period <= 0 {
		return nil, apperrors.ErrInvalidPeriod
	}
	if len(bars) < s.period {
		return nil, apperrors.ErrInsufficientData
	}

	result := nanSlice(len(bars))
	closes := closePrices(bars)

	for i := s.period - 1; i < len(bars); i++ {
		result[i] = mean(closes[i-s.period+1 : i+1])
	}

	return result, nil
}

// EMA calculates Exponential Moving Average.
type EMA struct {
	period int
}

// NewEMA creates a new EMA indicator.
func NewEMA(period int) *EMA {
	return &EMA{period: period}
}

func (e *EMA) Name() string {
	return fmt.Sprintf("EMA_%d", e.period)
}

func (e *EMA) Period() int {
	return e.period
}

func (e *EMA) Calculate(bars []models.PriceBar) ([]float64, error) {
	if e.period <= 0 {
		return nil, apperrors.ErrInvalidPeriod
	}
	if len(bars) < e.period {
		return nil, apperrors.ErrInsufficientData
	}

	closes := closePrices(bars)
	return CalculateEMA(closes, e.period), nil
}

// CalculateEMA calculates EMA on raw values (helper for other indicators).
// Positions before the first full window are NaN.
func CalculateEMA(values []float64, period int) []float64 {
	if len(values) < period || period <= 0 {
		return nil
	}

	result := nanSlice(len(values))
	multiplier := 2.0 / float64(period+1)

	// First EMA is SMA
	result[period-1] = mean(values[:period])

	for i := period; i < len(values); i++ {
		result[i] = (values[i]-result[i-1])*multiplier + result[i-1]
	}

	return result
}

// MACD calculates Moving Average Convergence Divergence.
type MACD struct {
	fastPeriod   int
	slowPeriod   int
	signalPeriod int
}

// NewMACD creates a new MACD indicator.
func NewMACD(fast, slow, signal int) *MACD {
	return &MACD{
		fastPeriod:   fast,
		slowPeriod:   slow,
		signalPeriod: signal,
	}
}

func (m *MACD) Name() string {
	return fmt.Sprintf("MACD_%d_%d_%d", m.fastPeriod, m.slowPeriod, m.signalPeriod)
}

func (m *MACD) Period() int {
	return m.slowPeriod + m.signalPeriod - 1
}

func (m *MACD) Calculate(bars []models.PriceBar) (map[string][]float64, error) {
	if m.fastPeriod <= 0 || m.slowPeriod <= 0 || m.signalPeriod <= 0 {
		return nil, apperrors.ErrInvalidPeriod
	}
	if m.fastPeriod >= m.slowPeriod {
		return nil, apperrors.ErrInvalidPeriod
	}
	if len(bars) < m.Period() {
		return nil, apperrors.ErrInsufficientData
	}

	n := len(bars)
	closes := closePrices(bars)
	fastEMA := CalculateEMA(closes, m.fastPeriod)
	slowEMA := CalculateEMA(closes, m.slowPeriod)

	// MACD Line = Fast EMA - Slow EMA
	macdLine := nanSlice(n)
	for i := m.slowPeriod - 1; i < n; i++ {
		macdLine[i] = fastEMA[i] - slowEMA[i]
	}

	// Signal Line = EMA of MACD Line
	signalLine := nanSlice(n)
	startIdx := m.slowPeriod - 1
	signalEMA := CalculateEMA(macdLine[startIdx:], m.signalPeriod)
	for i, v := range signalEMA {
		if !math.IsNaN(v) {
			signalLine[startIdx+i] = v
		}
	}

	// Histogram = MACD Line - Signal Line
	histogram := nanSlice(n)
	for i := m.Period() - 1; i < n; i++ {
		histogram[i] = macdLine[i] - signalLine[i]
	}

	return map[string][]float64{
		"macd":      macdLine,
		"signal":    signalLine,
		"histogram": histogram,
	}, nil
}

// ROC calculates Rate of Change as a fractional return over the period.
type ROC struct {
	period int
}

// NewROC creates a new ROC indicator.
func NewROC(period int) *ROC {
	return &ROC{period: period}
}

func (r *ROC) Name() string {
	return fmt.Sprintf("ROC_%d", r.period)
}

func (r *ROC) Period() int {
	return r.period
}

func (r *ROC) Calculate(bars []models.PriceBar) ([]float64, error) {
	if r.period <= 0 {
		return nil, apperrors.ErrInvalidPeriod
	}
	if len(bars) < r.period+1 {
		return nil, apperrors.ErrInsufficientData
	}

	result := nanSlice(len(bars))
	closes := closePrices(bars)

	for i := r.period; i < len(bars); i++ {
		result[i] = safeDiv(closes[i]-closes[i-r.period], closes[i-r.period], 0)
	}

	return result, nil
}
