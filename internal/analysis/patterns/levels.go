package patterns

import (
	"math"
	"sort"

	"nse-insight/internal/analysis"
	"nse-insight/internal/models"
)

// LevelDetector finds support and resistance levels from windowed extrema.
type LevelDetector struct {
	window    int
	maxLevels int
}

// NewLevelDetector creates a detector with the given window and level cap.
func NewLevelDetector(window, maxLevels int) *LevelDetector {
	if window <= 0 {
		window = 20
	}
	if maxLevels <= 0 {
		maxLevels = 5
	}
	return &LevelDetector{window: window, maxLevels: maxLevels}
}

func (d *LevelDetector) Name() string {
	return "SupportResistance"
}

// Detect returns up to maxLevels resistance levels (highest first) and up
// to maxLevels support levels (lowest first). Levels within a paisa of
// each other are deduplicated, counting touches.
func (d *LevelDetector) Detect(bars []models.PriceBar) ([]analysis.Level, error) {
	closes := closesOf(bars)
	w := d.window
	if len(closes) < 2*w+1 {
		return nil, nil
	}

	resistanceTouches := make(map[float64]int)
	supportTouches := make(map[float64]int)

	for i := w; i < len(closes)-w; i++ {
		window := closes[i-w : i+w]
		if closes[i] == maxOf(window) {
			resistanceTouches[roundPrice(closes[i])]++
		}
		if closes[i] == minOf(window) {
			supportTouches[roundPrice(closes[i])]++
		}
	}

	var levels []analysis.Level

	resistance := sortedKeys(resistanceTouches)
	sort.Sort(sort.Reverse(sort.Float64Slice(resistance)))
	for i, price := range resistance {
		if i >= d.maxLevels {
			break
		}
		levels = append(levels, analysis.Level{
			Price:      price,
			Type:       analysis.LevelResistance,
			TouchCount: resistanceTouches[price],
		})
	}

	support := sortedKeys(supportTouches)
	sort.Float64s(support)
	for i, price := range support {
		if i >= d.maxLevels {
			break
		}
		levels = append(levels, analysis.Level{
			Price:      price,
			Type:       analysis.LevelSupport,
			TouchCount: supportTouches[price],
		})
	}

	return levels, nil
}

func minOf(values []float64) float64 {
	m := values[0]
	for _, v := range values[1:] {
		if v < m {
			m = v
		}
	}
	return m
}

func roundPrice(p float64) float64 {
	return math.Round(p*100) / 100
}

func sortedKeys(m map[float64]int) []float64 {
	keys := make([]float64, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	return keys
}
