package featureset

import (
	"math"
	"math/rand"
	"testing"
	"time"

	"nse-insight/internal/config"
	apperrors "nse-insight/internal/errors"
	"nse-insight/internal/models"
)

func makeBars(n int, seed int64) []models.PriceBar {
	rng := rand.New(rand.NewSource(seed))
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	bars := make([]models.PriceBar, n)
	price := 500.0
	for i := range bars {
		ret := 0.01*math.Sin(float64(i)/7) + rng.NormFloat64()*0.012
		price *= 1 + ret
		high := price * (1 + rng.Float64()*0.01)
		low := price * (1 - rng.Float64()*0.01)
		bars[i] = models.PriceBar{
			Date:   base.AddDate(0, 0, i),
			Open:   (high + low) / 2,
			High:   high,
			Low:    low,
			Close:  price,
			Volume: 100000 + rng.Int63n(500000),
		}
	}
	return bars
}

func TestBuildTreeColumnOrder(t *testing.T) {
	builder := NewBuilder(config.Default().Indicators)
	frame, err := builder.BuildTree("SBIN", makeBars(250, 1))
	if err != nil {
		t.Fatalf("BuildTree failed: %v", err)
	}

	want := []string{
		"SMA_5", "SMA_10", "SMA_20", "SMA_50",
		"EMA_12", "EMA_26",
		"RSI",
		"MACD", "MACD_Signal", "MACD_Hist",
		"BB_Upper", "BB_Middle", "BB_Lower", "BB_Width", "BB_Position",
		"Volume_SMA_20", "Volume_Ratio", "OBV", "ROC",
		"Stochastic", "Volatility", "ATR",
		"Price_Change", "Price_Change_5d", "Price_Change_10d",
	}
	if len(frame.Columns) != len(want) {
		t.Fatalf("got %d columns, want %d: %v", len(frame.Columns), len(want), frame.Columns)
	}
	for i, name := range want {
		if frame.Columns[i] != name {
			t.Errorf("column %d = %q, want %q", i, frame.Columns[i], name)
		}
	}
}

func TestBuildTreeCleanRowCount(t *testing.T) {
	n := 250
	builder := NewBuilder(config.Default().Indicators)
	frame, err := builder.BuildTree("SBIN", makeBars(n, 2))
	if err != nil {
		t.Fatalf("BuildTree failed: %v", err)
	}
	if frame.NumRows() != n {
		t.Fatalf("raw frame has %d rows, want %d", frame.NumRows(), n)
	}

	clean, err := frame.Clean(100)
	if err != nil {
		t.Fatalf("Clean failed: %v", err)
	}

	// SMA_50 is the longest warm-up (first 49 rows NaN) and the final row
	// has no next-day target.
	if got, want := clean.NumRows(), n-50; got != want {
		t.Errorf("clean frame has %d rows, want %d", got, want)
	}
	for i, row := range clean.Rows {
		for j, v := range row {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				t.Fatalf("clean row %d column %s is not finite: %f", i, clean.Columns[j], v)
			}
		}
		if clean.Target[i] != 0 && clean.Target[i] != 1 {
			t.Fatalf("clean row %d target = %d, want 0 or 1", i, clean.Target[i])
		}
	}
}

func TestCleanInsufficientData(t *testing.T) {
	builder := NewBuilder(config.Default().Indicators)
	frame, err := builder.BuildTree("SBIN", makeBars(120, 3))
	if err != nil {
		t.Fatalf("BuildTree failed: %v", err)
	}

	_, err = frame.Clean(100)
	if !apperrors.Is(err, apperrors.ErrInsufficientData) {
		t.Errorf("Clean with 120 bars and min 100: got %v, want ErrInsufficientData", err)
	}
}

func TestBuildNeuralSentimentColumns(t *testing.T) {
	builder := NewBuilder(config.Default().Indicators)
	sentiment := models.SentimentFeatures{
		"recommendation_score": 0.4,
		"confidence":           0.8,
		"article_count":        12,
	}
	bars := makeBars(200, 4)
	frame, err := builder.BuildNeural("TCS", bars, sentiment, 0.02)
	if err != nil {
		t.Fatalf("BuildNeural failed: %v", err)
	}

	// Sentiment columns are appended in sorted key order.
	tail := frame.Columns[len(frame.Columns)-3:]
	want := []string{"sentiment_article_count", "sentiment_confidence", "sentiment_recommendation_score"}
	for i, name := range want {
		if tail[i] != name {
			t.Errorf("sentiment column %d = %q, want %q", i, tail[i], name)
		}
	}

	// Each sentiment column is constant down the frame.
	idx := frame.ColumnIndex("sentiment_confidence")
	for i, row := range frame.Rows {
		if row[idx] != 0.8 {
			t.Fatalf("row %d sentiment_confidence = %f, want 0.8", i, row[idx])
		}
	}
}

func TestBuildNeuralTargetClasses(t *testing.T) {
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	closes := make([]float64, 60)
	for i := range closes {
		closes[i] = 101
	}
	closes[0], closes[1], closes[2], closes[3] = 100, 97, 97.5, 101
	bars := make([]models.PriceBar, len(closes))
	for i, c := range closes {
		bars[i] = models.PriceBar{
			Date: base.AddDate(0, 0, i), Open: c, High: c + 1, Low: c - 1, Close: c, Volume: 1000,
		}
	}

	builder := NewBuilder(config.Default().Indicators)
	frame, err := builder.BuildNeural("TCS", bars, nil, 0.02)
	if err != nil {
		t.Fatalf("BuildNeural failed: %v", err)
	}

	// 100 -> 97 is -3% (class 0), 97 -> 97.5 is +0.5% (class 1),
	// 97.5 -> 101 is +3.6% (class 2), flat thereafter (class 1),
	// and the final row has no next close.
	want := []int{0, 1, 2, 1, 1}
	for i, w := range want {
		if frame.Target[i] != w {
			t.Errorf("target[%d] = %d, want %d", i, frame.Target[i], w)
		}
	}
	if last := frame.Target[len(frame.Target)-1]; last != -1 {
		t.Errorf("final target = %d, want -1", last)
	}
}

func TestBuildNeuralTargetThresholdBoundary(t *testing.T) {
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	closes := make([]float64, 60)
	for i := range closes {
		closes[i] = 102
	}
	closes[0], closes[1], closes[2], closes[3] = 100, 98, 100, 102
	bars := make([]models.PriceBar, len(closes))
	for i, c := range closes {
		bars[i] = models.PriceBar{
			Date: base.AddDate(0, 0, i), Open: c, High: c + 1, Low: c - 1, Close: c, Volume: 1000,
		}
	}

	builder := NewBuilder(config.Default().Indicators)
	frame, err := builder.BuildNeural("TCS", bars, nil, 0.02)
	if err != nil {
		t.Fatalf("BuildNeural failed: %v", err)
	}

	// The down bin is closed at the threshold and the up bin is open:
	// 100 -> 98 is exactly -2% (class 0), 98 -> 100 is +2.04% (class 2),
	// 100 -> 102 is exactly +2% (class 1), flat thereafter (class 1).
	want := []int{0, 2, 1, 1}
	for i, w := range want {
		if frame.Target[i] != w {
			t.Errorf("target[%d] = %d, want %d", i, frame.Target[i], w)
		}
	}
}

func TestSelectReordersAndRejectsMissing(t *testing.T) {
	frame := &Frame{
		Symbol:  "INFY",
		Columns: []string{"a", "b", "c"},
		Rows:    [][]float64{{1, 2, 3}, {4, 5, 6}},
		Target:  []int{1, 0},
	}

	out, err := frame.Select([]string{"c", "a"})
	if err != nil {
		t.Fatalf("Select failed: %v", err)
	}
	if out.Rows[0][0] != 3 || out.Rows[0][1] != 1 {
		t.Errorf("Select did not reorder: got %v", out.Rows[0])
	}

	_, err = frame.Select([]string{"a", "missing"})
	if !apperrors.Is(err, apperrors.ErrFeatureMismatch) {
		t.Errorf("Select with missing column: got %v, want ErrFeatureMismatch", err)
	}
}

func TestLatestComplete(t *testing.T) {
	frame := &Frame{
		Symbol:  "INFY",
		Columns: []string{"a", "b"},
		Rows: [][]float64{
			{1, 2},
			{3, 4},
			{5, math.NaN()},
		},
		Target: []int{1, 0, -1},
	}

	row, err := frame.LatestComplete()
	if err != nil {
		t.Fatalf("LatestComplete failed: %v", err)
	}
	if row[0] != 3 || row[1] != 4 {
		t.Errorf("LatestComplete = %v, want [3 4]", row)
	}

	empty := &Frame{Symbol: "INFY", Columns: []string{"a"}, Rows: [][]float64{{math.NaN()}}, Target: []int{-1}}
	if _, err := empty.LatestComplete(); !apperrors.Is(err, apperrors.ErrInsufficientData) {
		t.Errorf("LatestComplete with no complete row: got %v, want ErrInsufficientData", err)
	}
}
