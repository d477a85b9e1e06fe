package ml

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
	apperrors "nse-insight/internal/errors"
)

func TestFitPCARecoversDominantDirection(t *testing.T) {
	// Points on the line y = 2x: all variance lies along (1, 2).
	x := make([][]float64, 20)
	for i := range x {
		v := float64(i)
		x[i] = []float64{v, 2 * v}
	}

	p, err := FitPCA(x, 2)
	require.NoError(t, err)
	require.Len(t, p.Components, 2)

	require.InDelta(t, 1.0, p.ExplainedVariance[0], 1e-9,
		"rank-one data puts all variance in the first component")
	require.InDelta(t, 0.0, p.ExplainedVariance[1], 1e-9)

	// First component aligns with (1, 2)/sqrt(5), up to sign.
	norm := math.Sqrt(5)
	dot := p.Components[0][0]*(1/norm) + p.Components[0][1]*(2/norm)
	require.InDelta(t, 1.0, math.Abs(dot), 1e-6)
}

func TestPCATransformReducesDimensions(t *testing.T) {
	rng := rand.New(rand.NewSource(9))
	x := make([][]float64, 50)
	for i := range x {
		x[i] = []float64{rng.NormFloat64(), rng.NormFloat64(), rng.NormFloat64(), rng.NormFloat64()}
	}

	p, err := FitPCA(x, 2)
	require.NoError(t, err)

	projected, err := p.Transform(x)
	require.NoError(t, err)
	require.Len(t, projected, 50)
	require.Len(t, projected[0], 2)

	total := p.TotalExplainedVariance()
	require.Greater(t, total, 0.0)
	require.LessOrEqual(t, total, 1.0+1e-9)
}

func TestFitPCACapsComponents(t *testing.T) {
	x := [][]float64{{1, 2}, {3, 4}, {5, 7}}
	p, err := FitPCA(x, 15)
	require.NoError(t, err)
	require.Len(t, p.Components, 2, "component count is capped at the feature count")
}

func TestPCARowMismatch(t *testing.T) {
	x := [][]float64{{1, 2}, {3, 4}, {5, 7}}
	p, err := FitPCA(x, 2)
	require.NoError(t, err)

	_, err = p.TransformRow([]float64{1, 2, 3})
	require.ErrorIs(t, err, apperrors.ErrFeatureMismatch)
}

func TestFitPCAInsufficientData(t *testing.T) {
	_, err := FitPCA([][]float64{{1, 2}}, 2)
	require.ErrorIs(t, err, apperrors.ErrInsufficientData)
}
