package indicators

import (
	"fmt"

	apperrors "nse-insight/internal/errors"
	"nse-insight/internal/models"
)

// RSI calculates the Relative Strength Index.
type RSI struct {
	period int
}

// NewRSI creates a new RSI indicator.
func NewRSI(period int) *RSI {
	return &RSI{period: period}
}

func (r *RSI) Name() string {
	return fmt.Sprintf("RSI_%d", r.period)
}

func (r *RSI) Period() int {
	return r.period
}

func (r *RSI) Calculate(bars []models.PriceBar) ([]float64, error) {
	if r.period <= 0 {
		return nil, apperrors.ErrInvalidPeriod
	}
	if len(bars) < r.period+1 {
		return nil, apperrors.ErrInsufficientData
	}

	n := len(bars)
	result := nanSlice(n)
	closes := closePrices(bars)

	gains := make([]float64, n)
	losses := make([]float64, n)

	for i := 1; i < n; i++ {
		change := closes[i] - closes[i-1]
		if change > 0 {
			gains[i] = change
		} else {
			losses[i] = -change
		}
	}

	// First average using SMA
	avgGain := mean(gains[1 : r.period+1])
	avgLoss := mean(losses[1 : r.period+1])

	// Zero average loss means the series only gained over the window
	if avgLoss == 0 {
		result[r.period] = 100
	} else {
		rs := avgGain / avgLoss
		result[r.period] = 100 - (100 / (1 + rs))
	}

	// Subsequent values using Wilder smoothing
	for i := r.period + 1; i < n; i++ {
		avgGain = (avgGain*float64(r.period-1) + gains[i]) / float64(r.period)
		avgLoss = (avgLoss*float64(r.period-1) + losses[i]) / float64(r.period)

		if avgLoss == 0 {
			result[i] = 100
		} else {
			rs := avgGain / avgLoss
			result[i] = 100 - (100 / (1 + rs))
		}
	}

	return result, nil
}

// Stochastic calculates the Stochastic Oscillator (%K and %D).
type Stochastic struct {
	kPeriod int
	dPeriod int
}

// NewStochastic creates a new Stochastic indicator.
func NewStochastic(kPeriod, dPeriod int) *Stochastic {
	return &Stochastic{
		kPeriod: kPeriod,
		dPeriod: dPeriod,
	}
}

func (s *Stochastic) Name() string {
	return fmt.Sprintf("Stochastic_%d_%d", s.kPeriod, s.dPeriod)
}

func (s *Stochastic) Period() int {
	return s.kPeriod + s.dPeriod - 1
}

func (s *Stochastic) Calculate(bars []models.PriceBar) (map[string][]float64, error) {
	if s.kPeriod <= 0 || s.dPeriod <= 0 {
		return nil, apperrors.ErrInvalidPeriod
	}
	if len(bars) < s.Period() {
		return nil, apperrors.ErrInsufficientData
	}

	n := len(bars)
	highs := highPrices(bars)
	lows := lowPrices(bars)
	closes := closePrices(bars)

	percentK := nanSlice(n)
	percentD := nanSlice(n)

	for i := s.kPeriod - 1; i < n; i++ {
		highestHigh := highest(highs[i-s.kPeriod+1 : i+1])
		lowestLow := lowest(lows[i-s.kPeriod+1 : i+1])

		// Flat window means the close sits mid-range
		if highestHigh == lowestLow {
			percentK[i] = 50
		} else {
			percentK[i] = 100 * (closes[i] - lowestLow) / (highestHigh - lowestLow)
		}
	}

	// %D is the SMA of %K
	for i := s.kPeriod + s.dPeriod - 2; i < n; i++ {
		percentD[i] = mean(percentK[i-s.dPeriod+1 : i+1])
	}

	return map[string][]float64{
		"percent_k": percentK,
		"percent_d": percentD,
	}, nil
}
