package marketdata

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	apperrors "nse-insight/internal/errors"
)

func TestSyntheticDeterministic(t *testing.T) {
	p := NewSynthetic(42)
	ctx := context.Background()

	first, err := p.History(ctx, "SBIN", 100)
	if err != nil {
		t.Fatalf("History failed: %v", err)
	}
	second, err := p.History(ctx, "SBIN", 100)
	if err != nil {
		t.Fatalf("History failed: %v", err)
	}

	if len(first) != 100 || len(second) != 100 {
		t.Fatalf("got %d and %d bars, want 100", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("bar %d differs between runs: %+v vs %+v", i, first[i], second[i])
		}
	}
}

func TestSyntheticSymbolsDiffer(t *testing.T) {
	p := NewSynthetic(42)
	ctx := context.Background()

	sbin, err := p.History(ctx, "SBIN", 50)
	if err != nil {
		t.Fatalf("History failed: %v", err)
	}
	tcs, err := p.History(ctx, "TCS", 50)
	if err != nil {
		t.Fatalf("History failed: %v", err)
	}

	same := true
	for i := range sbin {
		if sbin[i].Close != tcs[i].Close {
			same = false
			break
		}
	}
	if same {
		t.Error("distinct symbols should not share a price series")
	}
}

func TestSyntheticBarsAreValid(t *testing.T) {
	p := NewSynthetic(1)
	bars, err := p.History(context.Background(), "INFY", 200)
	if err != nil {
		t.Fatalf("History failed: %v", err)
	}

	for i, b := range bars {
		if b.Date.Weekday() == time.Saturday || b.Date.Weekday() == time.Sunday {
			t.Fatalf("bar %d falls on a weekend: %s", i, b.Date)
		}
		if i > 0 && !b.Date.After(bars[i-1].Date) {
			t.Fatalf("dates must strictly ascend at %d", i)
		}
		if b.High < b.Open || b.High < b.Close || b.Low > b.Open || b.Low > b.Close {
			t.Fatalf("bar %d violates OHLC bounds: %+v", i, b)
		}
		if b.Low <= 0 || b.Volume <= 0 {
			t.Fatalf("bar %d has non-positive price or volume: %+v", i, b)
		}
	}
}

func TestSyntheticValidation(t *testing.T) {
	p := NewSynthetic(1)
	ctx := context.Background()

	if _, err := p.History(ctx, "", 10); err == nil {
		t.Error("empty symbol must be rejected")
	}
	if _, err := p.History(ctx, "SBIN", 0); err == nil {
		t.Error("zero days must be rejected")
	}
}

func writeCSV(t *testing.T, dir, symbol, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, symbol+".csv"), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestCSVProviderReadsBars(t *testing.T) {
	dir := t.TempDir()
	writeCSV(t, dir, "SBIN", `date,open,high,low,close,volume
2026-01-05,810.0,820.5,805.0,818.2,1200000
2026-01-06,818.2,825.0,812.0,815.5,900000
2026-01-07,815.5,830.0,814.0,828.0,1500000
`)

	p := NewCSVProvider(dir)
	bars, err := p.History(context.Background(), "SBIN", 0)
	if err != nil {
		t.Fatalf("History failed: %v", err)
	}
	if len(bars) != 3 {
		t.Fatalf("got %d bars, want 3", len(bars))
	}
	if bars[0].Open != 810.0 || bars[2].Close != 828.0 || bars[1].Volume != 900000 {
		t.Errorf("bars parsed incorrectly: %+v", bars)
	}
	if !bars[0].Date.Equal(time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("date parsed incorrectly: %s", bars[0].Date)
	}
}

func TestCSVProviderTail(t *testing.T) {
	dir := t.TempDir()
	writeCSV(t, dir, "SBIN", `date,open,high,low,close,volume
2026-01-05,810,820,805,818,1200000
2026-01-06,818,825,812,815,900000
2026-01-07,815,830,814,828,1500000
`)

	p := NewCSVProvider(dir)
	bars, err := p.History(context.Background(), "SBIN", 2)
	if err != nil {
		t.Fatalf("History failed: %v", err)
	}
	if len(bars) != 2 {
		t.Fatalf("got %d bars, want 2", len(bars))
	}
	if bars[0].Close != 815 {
		t.Errorf("tail should start at the second row, got close %f", bars[0].Close)
	}
}

func TestCSVProviderMissingSymbol(t *testing.T) {
	p := NewCSVProvider(t.TempDir())
	_, err := p.History(context.Background(), "NOSUCH", 10)
	if !apperrors.Is(err, apperrors.ErrSymbolNotFound) {
		t.Errorf("got %v, want ErrSymbolNotFound", err)
	}
}

func TestCSVProviderRejectsUnsortedDates(t *testing.T) {
	dir := t.TempDir()
	writeCSV(t, dir, "SBIN", `date,open,high,low,close,volume
2026-01-07,815,830,814,828,1500000
2026-01-06,818,825,812,815,900000
`)

	p := NewCSVProvider(dir)
	if _, err := p.History(context.Background(), "SBIN", 0); err == nil {
		t.Error("descending dates must be rejected")
	}
}

func TestCSVProviderRejectsBadNumbers(t *testing.T) {
	dir := t.TempDir()
	writeCSV(t, dir, "SBIN", `date,open,high,low,close,volume
2026-01-05,810,820,805,not-a-number,1200000
`)

	p := NewCSVProvider(dir)
	if _, err := p.History(context.Background(), "SBIN", 0); err == nil {
		t.Error("non-numeric fields must be rejected")
	}
}

func TestCSVProviderEmptyFile(t *testing.T) {
	dir := t.TempDir()
	writeCSV(t, dir, "SBIN", "date,open,high,low,close,volume\n")

	p := NewCSVProvider(dir)
	_, err := p.History(context.Background(), "SBIN", 0)
	if !apperrors.Is(err, apperrors.ErrInsufficientData) {
		t.Errorf("got %v, want ErrInsufficientData", err)
	}
}
