// Package featureset builds model-ready feature matrices from price history.
package featureset

import (
	"math"
	"time"

	apperrors "nse-insight/internal/errors"
)

// Frame is a feature matrix aligned to a symbol's price history.
// Rows are row-major; Target holds the label for each row, -1 when undefined.
type Frame struct {
	Symbol  string
	Columns []string
	Rows    [][]float64
	Target  []int
	Dates   []time.Time
}

// NumRows returns the number of rows in the frame.
func (f *Frame) NumRows() int {
	return len(f.Rows)
}

// ColumnIndex returns the index of a column, or -1 if absent.
func (f *Frame) ColumnIndex(name string) int {
	for i, c := range f.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// Clean returns a frame containing only rows with no NaN features and a
// defined target. Returns ErrInsufficientData when fewer than minSamples
// rows survive.
func (f *Frame) Clean(minSamples int) (*Frame, error) {
	out := &Frame{
		Symbol:  f.Symbol,
		Columns: f.Columns,
	}
	for i, row := range f.Rows {
		if f.Target[i] < 0 || rowHasNaN(row) {
			continue
		}
		out.Rows = append(out.Rows, row)
		out.Target = append(out.Target, f.Target[i])
		if len(f.Dates) > i {
			out.Dates = append(out.Dates, f.Dates[i])
		}
	}
	if len(out.Rows) < minSamples {
		return nil, apperrors.NewDataError("features", f.Symbol,
			"not enough clean samples", apperrors.ErrInsufficientData)
	}
	return out, nil
}

// Select returns a frame with columns reordered to match the requested names.
// Returns ErrFeatureMismatch when a requested column is absent.
func (f *Frame) Select(columns []string) (*Frame, error) {
	idx := make([]int, len(columns))
	for i, name := range columns {
		j := f.ColumnIndex(name)
		if j < 0 {
			return nil, apperrors.Wrapf(apperrors.ErrFeatureMismatch, "column %q not present", name)
		}
		idx[i] = j
	}

	out := &Frame{
		Symbol:  f.Symbol,
		Columns: append([]string(nil), columns...),
		Target:  f.Target,
		Dates:   f.Dates,
	}
	out.Rows = make([][]float64, len(f.Rows))
	for r, row := range f.Rows {
		selected := make([]float64, len(idx))
		for i, j := range idx {
			selected[i] = row[j]
		}
		out.Rows[r] = selected
	}
	return out, nil
}

// LatestComplete returns the most recent row with no NaN feature values,
// regardless of whether its target is defined. Used at prediction time.
func (f *Frame) LatestComplete() ([]float64, error) {
	for i := len(f.Rows) - 1; i >= 0; i-- {
		if !rowHasNaN(f.Rows[i]) {
			return f.Rows[i], nil
		}
	}
	return nil, apperrors.NewDataError("features", f.Symbol,
		"no complete feature row", apperrors.ErrInsufficientData)
}

func rowHasNaN(row []float64) bool {
	for _, v := range row {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return true
		}
	}
	return false
}
