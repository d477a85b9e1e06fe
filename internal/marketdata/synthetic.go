// Package marketdata supplies price history for analysis.
package marketdata

import (
	"context"
	"hash/fnv"
	"math"
	"math/rand"
	"time"

	apperrors "nse-insight/internal/errors"
	"nse-insight/internal/models"
)

// Provider supplies daily price history for a symbol.
type Provider interface {
	History(ctx context.Context, symbol string, days int) ([]models.PriceBar, error)
}

// Synthetic generates reproducible price history from a seeded random
// walk. The same symbol always yields the same series, which keeps
// offline runs and tests deterministic.
type Synthetic struct {
	seed int64
}

// NewSynthetic creates a Synthetic provider. The seed perturbs every
// symbol's series, so distinct seeds give distinct but still
// reproducible histories.
func NewSynthetic(seed int64) *Synthetic {
	return &Synthetic{seed: seed}
}

// History generates the requested number of daily bars ending today,
// skipping weekends. Dates ascend strictly with no duplicates.
func (s *Synthetic) History(ctx context.Context, symbol string, days int) ([]models.PriceBar, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if symbol == "" {
		return nil, apperrors.NewValidationError("symbol", symbol, "must not be empty")
	}
	if days <= 0 {
		return nil, apperrors.NewValidationError("days", days, "must be positive")
	}

	h := fnv.New64a()
	h.Write([]byte(symbol))
	rng := rand.New(rand.NewSource(int64(h.Sum64()) ^ s.seed))

	// Base price and drift vary per symbol
	price := 200 + rng.Float64()*1800
	drift := (rng.Float64() - 0.45) * 0.001
	volatility := 0.01 + rng.Float64()*0.02
	baseVolume := 100000 + rng.Intn(900000)

	date := previousWeekday(time.Now().Truncate(24 * time.Hour))
	dates := make([]time.Time, days)
	for i := days - 1; i >= 0; i-- {
		dates[i] = date
		date = previousWeekday(date.AddDate(0, 0, -1))
	}

	bars := make([]models.PriceBar, days)
	for i := 0; i < days; i++ {
		ret := drift + rng.NormFloat64()*volatility
		open := price
		close := price * math.Exp(ret)

		high := math.Max(open, close) * (1 + rng.Float64()*volatility)
		low := math.Min(open, close) * (1 - rng.Float64()*volatility)

		// Volume swells on larger moves
		volume := float64(baseVolume) * (1 + math.Abs(ret)*20) * (0.5 + rng.Float64())

		bars[i] = models.PriceBar{
			Date:   dates[i],
			Open:   open,
			High:   high,
			Low:    low,
			Close:  close,
			Volume: int64(volume),
		}
		price = close
	}
	return bars, nil
}

func previousWeekday(t time.Time) time.Time {
	for t.Weekday() == time.Saturday || t.Weekday() == time.Sunday {
		t = t.AddDate(0, 0, -1)
	}
	return t
}
