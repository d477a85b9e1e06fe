// Package patterns provides chart pattern detection over price history.
package patterns

import (
	"math"

	"nse-insight/internal/analysis"
	"nse-insight/internal/models"
)

// HeadShouldersDetector detects head and shoulders formations using a
// sliding window split into shoulder-head-shoulder thirds.
type HeadShouldersDetector struct {
	window int
}

// NewHeadShouldersDetector creates a detector with the given window.
func NewHeadShouldersDetector(window int) *HeadShouldersDetector {
	if window <= 0 {
		window = 20
	}
	return &HeadShouldersDetector{window: window}
}

func (d *HeadShouldersDetector) Name() string {
	return "HeadShoulders"
}

func (d *HeadShouldersDetector) Detect(bars []models.PriceBar) ([]analysis.Pattern, error) {
	closes := closesOf(bars)
	w := d.window
	if len(closes) < 2*w+1 {
		return nil, nil
	}

	var patterns []analysis.Pattern
	for i := w; i < len(closes)-w; i++ {
		leftShoulder := maxOf(closes[i-w : i-w/2])
		head := maxOf(closes[i-w/2 : i+w/2])
		rightShoulder := maxOf(closes[i+w/2 : i+w])

		// Head at least 2% above both shoulders, shoulders within 5%
		if head > leftShoulder*1.02 &&
			head > rightShoulder*1.02 &&
			math.Abs(leftShoulder-rightShoulder)/leftShoulder < 0.05 {
			patterns = append(patterns, analysis.Pattern{
				Name:       "Head and Shoulders",
				Type:       analysis.PatternHeadAndShoulders,
				Direction:  analysis.PatternBearish,
				StartIndex: i - w,
				EndIndex:   i,
				Confidence: 0.8,
			})
		}
	}
	return patterns, nil
}

// DoubleDetector detects double top and double bottom formations.
type DoubleDetector struct {
	window int
}

// NewDoubleDetector creates a detector with the given half-window.
func NewDoubleDetector(window int) *DoubleDetector {
	if window <= 0 {
		window = 15
	}
	return &DoubleDetector{window: window}
}

func (d *DoubleDetector) Name() string {
	return "DoubleTopBottom"
}

func (d *DoubleDetector) Detect(bars []models.PriceBar) ([]analysis.Pattern, error) {
	closes := closesOf(bars)
	w := d.window
	if len(closes) < 2*w+1 {
		return nil, nil
	}

	var patterns []analysis.Pattern
	for i := w; i < len(closes)-w; i++ {
		segment := closes[i-w : i+w]

		peaks := localMaxima(segment)
		if len(peaks) >= 2 {
			p1 := segment[peaks[len(peaks)-2]]
			p2 := segment[peaks[len(peaks)-1]]
			if math.Abs(p1-p2)/p1 < 0.03 {
				patterns = append(patterns, analysis.Pattern{
					Name:       "Double Top",
					Type:       analysis.PatternDoubleTop,
					Direction:  analysis.PatternBearish,
					StartIndex: i - w,
					EndIndex:   i,
					Confidence: 0.75,
				})
			}
		}

		troughs := localMinima(segment)
		if len(troughs) >= 2 {
			t1 := segment[troughs[len(troughs)-2]]
			t2 := segment[troughs[len(troughs)-1]]
			if math.Abs(t1-t2)/t1 < 0.03 {
				patterns = append(patterns, analysis.Pattern{
					Name:       "Double Bottom",
					Type:       analysis.PatternDoubleBottom,
					Direction:  analysis.PatternBullish,
					StartIndex: i - w,
					EndIndex:   i,
					Confidence: 0.75,
				})
			}
		}
	}
	return patterns, nil
}

// TriangleDetector detects consolidation triangles from the slopes of
// rolling high and low envelopes.
type TriangleDetector struct {
	window   int
	envelope int
}

// NewTriangleDetector creates a detector with the given window.
func NewTriangleDetector(window int) *TriangleDetector {
	if window <= 0 {
		window = 30
	}
	return &TriangleDetector{window: window, envelope: 5}
}

func (d *TriangleDetector) Name() string {
	return "Triangles"
}

func (d *TriangleDetector) Detect(bars []models.PriceBar) ([]analysis.Pattern, error) {
	closes := closesOf(bars)
	w := d.window
	if len(closes) < w {
		return nil, nil
	}

	var patterns []analysis.Pattern
	for i := w; i <= len(closes); i++ {
		segment := closes[i-w : i]

		highs := rollingEnvelope(segment, d.envelope, true)
		lows := rollingEnvelope(segment, d.envelope, false)
		if highs == nil || lows == nil {
			continue
		}

		highSlope := slopeOf(highs)
		lowSlope := slopeOf(lows)

		endIndex := i - 1
		switch {
		// Ascending triangle: flat top, rising bottom
		case math.Abs(highSlope) < 0.01 && lowSlope > 0.02:
			patterns = append(patterns, analysis.Pattern{
				Name:       "Ascending Triangle",
				Type:       analysis.PatternAscTriangle,
				Direction:  analysis.PatternBullish,
				StartIndex: i - w,
				EndIndex:   endIndex,
				Confidence: 0.7,
			})
		// Descending triangle: falling top, flat bottom
		case highSlope < -0.02 && math.Abs(lowSlope) < 0.01:
			patterns = append(patterns, analysis.Pattern{
				Name:       "Descending Triangle",
				Type:       analysis.PatternDescTriangle,
				Direction:  analysis.PatternBearish,
				StartIndex: i - w,
				EndIndex:   endIndex,
				Confidence: 0.7,
			})
		// Symmetrical triangle: converging lines
		case highSlope < -0.01 && lowSlope > 0.01:
			patterns = append(patterns, analysis.Pattern{
				Name:       "Symmetrical Triangle",
				Type:       analysis.PatternSymTriangle,
				Direction:  analysis.PatternNeutral,
				StartIndex: i - w,
				EndIndex:   endIndex,
				Confidence: 0.65,
			})
		}
	}
	return patterns, nil
}

func closesOf(bars []models.PriceBar) []float64 {
	closes := make([]float64, len(bars))
	for i, b := range bars {
		closes[i] = b.Close
	}
	return closes
}

func maxOf(values []float64) float64 {
	m := values[0]
	for _, v := range values[1:] {
		if v > m {
			m = v
		}
	}
	return m
}

// localMaxima returns interior indices that are strict peaks.
func localMaxima(values []float64) []int {
	var idx []int
	for i := 1; i < len(values)-1; i++ {
		if values[i] > values[i-1] && values[i] > values[i+1] {
			idx = append(idx, i)
		}
	}
	return idx
}

// localMinima returns interior indices that are strict troughs.
func localMinima(values []float64) []int {
	var idx []int
	for i := 1; i < len(values)-1; i++ {
		if values[i] < values[i-1] && values[i] < values[i+1] {
			idx = append(idx, i)
		}
	}
	return idx
}

// rollingEnvelope returns the rolling max (or min) of values over window.
// Returns nil when the warm-up region would leave undefined entries.
func rollingEnvelope(values []float64, window int, useMax bool) []float64 {
	if len(values) < window {
		return nil
	}
	out := make([]float64, 0, len(values)-window+1)
	for i := window - 1; i < len(values); i++ {
		w := values[i-window+1 : i+1]
		m := w[0]
		for _, v := range w[1:] {
			if useMax && v > m || !useMax && v < m {
				m = v
			}
		}
		out = append(out, m)
	}
	return out
}

// slopeOf fits a least-squares line and returns its slope.
func slopeOf(values []float64) float64 {
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
