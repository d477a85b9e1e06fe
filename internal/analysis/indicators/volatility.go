package indicators

import (
	"fmt"
	"math"

	apperrors "nse-insight/internal/errors"
	"nse-insight/internal/models"
)

// ATR calculates the Average True Range.
type ATR struct {
	period int
}

// NewATR creates a new ATR indicator.
func NewATR(period int) *ATR {
	return &ATR{period: period}
}

func (a *ATR) Name() string {
	return fmt.Sprintf("ATR_%d", a.period)
}

func (a *ATR) Period() int {
	return a.period
}

func (a *ATR) Calculate(bars []models.PriceBar) ([]float64, error) {
	if a.period <= 0 {
		return nil, apperrors.ErrInvalidPeriod
	}
	if len(bars) < a.period+1 {
		return nil, apperrors.ErrInsufficientData
	}

	n := len(bars)
	result := nanSlice(n)
	tr := make([]float64, n)

	// First TR is just high - low
	tr[0] = bars[0].High - bars[0].Low

	for i := 1; i < n; i++ {
		tr[i] = trueRange(bars[i], bars[i-1])
	}

	// First ATR is SMA of TR, then Wilder smoothing
	result[a.period-1] = mean(tr[:a.period])
	for i := a.period; i < n; i++ {
		result[i] = (result[i-1]*float64(a.period-1) + tr[i]) / float64(a.period)
	}

	return result, nil
}

// BollingerBands calculates Bollinger Bands with band width and price position.
type BollingerBands struct {
	period    int
	stdDevMul float64
}

// NewBollingerBands creates a new Bollinger Bands indicator.
func NewBollingerBands(period int, stdDevMul float64) *BollingerBands {
	return &BollingerBands{
		period:    period,
		stdDevMul: stdDevMul,
	}
}

func (b *BollingerBands) Name() string {
	return fmt.Sprintf("BollingerBands_%d_%.1f", b.period, b.stdDevMul)
}

func (b *BollingerBands) Period() int {
	return b.period
}

func (b *BollingerBands) Calculate(bars []models.PriceBar) (map[string][]float64, error) {
	if b.period <= 0 || b.stdDevMul <= 0 {
		return nil, apperrors.ErrInvalidPeriod
	}
	if len(bars) < b.period {
		return nil, apperrors.ErrInsufficientData
	}

	n := len(bars)
	closes := closePrices(bars)

	middle := nanSlice(n)
	upper := nanSlice(n)
	lower := nanSlice(n)
	width := nanSlice(n)
	position := nanSlice(n)

	for i := b.period - 1; i < n; i++ {
		window := closes[i-b.period+1 : i+1]
		m := mean(window)
		sd := stdDev(window)

		middle[i] = m
		upper[i] = m + b.stdDevMul*sd
		lower[i] = m - b.stdDevMul*sd
		width[i] = safeDiv(upper[i]-lower[i], m, 0)
		position[i] = safeDiv(closes[i]-lower[i], upper[i]-lower[i], 0)
	}

	return map[string][]float64{
		"upper":    upper,
		"middle":   middle,
		"lower":    lower,
		"width":    width,
		"position": position,
	}, nil
}

// HistoricalVolatility calculates annualized rolling volatility of daily returns.
type HistoricalVolatility struct {
	period int
}

// NewHistoricalVolatility creates a new historical volatility indicator.
func NewHistoricalVolatility(period int) *HistoricalVolatility {
	return &HistoricalVolatility{period: period}
}

func (h *HistoricalVolatility) Name() string {
	return fmt.Sprintf("Volatility_%d", h.period)
}

func (h *HistoricalVolatility) Period() int {
	return h.period + 1
}

func (h *HistoricalVolatility) Calculate(bars []models.PriceBar) ([]float64, error) {
	if h.period <= 1 {
		return nil, apperrors.ErrInvalidPeriod
	}
	if len(bars) < h.period+1 {
		return nil, apperrors.ErrInsufficientData
	}

	n := len(bars)
	closes := closePrices(bars)

	returns := nanSlice(n)
	for i := 1; i < n; i++ {
		returns[i] = safeDiv(closes[i]-closes[i-1], closes[i-1], 0)
	}

	result := nanSlice(n)
	for i := h.period; i < n; i++ {
		result[i] = stdDev(returns[i-h.period+1:i+1]) * math.Sqrt(252)
	}

	return result, nil
}
