package indicators

import (
	"math"

	"nse-insight/internal/models"
)

// nanSlice returns a slice of the given length filled with NaN.
// Warm-up positions stay NaN so downstream row filtering can drop them.
func nanSlice(n int) []float64 {
	s := make([]float64, n)
	for i := range s {
		s[i] = math.NaN()
	}
	return s
}

// abs returns the absolute value of a float64.
func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}

// sum calculates the sum of a slice of float64.
func sum(values []float64) float64 {
	var total float64
	for _, v := range values {
		total += v
	}
	return total
}

// mean calculates the arithmetic mean of a slice of float64.
func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return sum(values) / float64(len(values))
}

// stdDev calculates the population standard deviation of a slice of float64.
func stdDev(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	m := mean(values)
	var variance float64
	for _, v := range values {
		diff := v - m
		variance += diff * diff
	}
	variance /= float64(len(values))
	return math.Sqrt(variance)
}

// highest returns the maximum value in a slice.
func highest(values []float64) float64 {
	h := values[0]
	for _, v := range values[1:] {
		if v > h {
			h = v
		}
	}
	return h
}

// lowest returns the minimum value in a slice.
func lowest(values []float64) float64 {
	l := values[0]
	for _, v := range values[1:] {
		if v < l {
			l = v
		}
	}
	return l
}

// safeDiv divides a by b, returning fallback when b is zero.
func safeDiv(a, b, fallback float64) float64 {
	if b == 0 {
		return fallback
	}
	return a / b
}

// linearSlope fits a least-squares line to values and returns its slope.
func linearSlope(values []float64) float64 {
	n := len(values)
	if n < 2 {
		return 0
	}
	var sumX, sumY, sumXY, sumXX float64
	for i, v := range values {
		x := float64(i)
		sumX += x
		sumY += v
		sumXY += x * v
		sumXX += x * x
	}
	fn := float64(n)
	denom := fn*sumXX - sumX*sumX
	if denom == 0 {
		return 0
	}
	return (fn*sumXY - sumX*sumY) / denom
}

// trueRange calculates the true range for a bar.
func trueRange(current, previous models.PriceBar) float64 {
	highLow := current.High - current.Low
	highClose := abs(current.High - previous.Close)
	lowClose := abs(current.Low - previous.Close)
	return math.Max(highLow, math.Max(highClose, lowClose))
}

// closePrices extracts close prices from bars.
func closePrices(bars []models.PriceBar) []float64 {
	prices := make([]float64, len(bars))
	for i, b := range bars {
		prices[i] = b.Close
	}
	return prices
}

// highPrices extracts high prices from bars.
func highPrices(bars []models.PriceBar) []float64 {
	prices := make([]float64, len(bars))
	for i, b := range bars {
		prices[i] = b.High
	}
	return prices
}

// lowPrices extracts low prices from bars.
func lowPrices(bars []models.PriceBar) []float64 {
	prices := make([]float64, len(bars))
	for i, b := range bars {
		prices[i] = b.Low
	}
	return prices
}

// volumeSeries extracts volumes from bars as float64.
func volumeSeries(bars []models.PriceBar) []float64 {
	vols := make([]float64, len(bars))
	for i, b := range bars {
		vols[i] = float64(b.Volume)
	}
	return vols
}
