package ml

import (
	"math"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/require"
	apperrors "nse-insight/internal/errors"
)

func TestProperty_ScalerCentersAndScales(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	parameters.Rng.Seed(time.Now().UnixNano())

	properties := gopter.NewProperties(parameters)

	properties.Property("transformed columns have zero mean and unit variance", prop.ForAll(
		func(values []float64) bool {
			if len(values) < 3 {
				return true
			}
			x := make([][]float64, len(values))
			for i, v := range values {
				x[i] = []float64{v}
			}

			s, err := FitScaler(x)
			if err != nil {
				return false
			}
			scaled, err := s.Transform(x)
			if err != nil {
				return false
			}

			var mean float64
			for _, row := range scaled {
				mean += row[0]
			}
			mean /= float64(len(scaled))
			if math.Abs(mean) > 1e-6 {
				return false
			}

			// A constant column scales to all zeros; otherwise variance is 1
			var variance float64
			for _, row := range scaled {
				variance += row[0] * row[0]
			}
			variance /= float64(len(scaled))
			return math.Abs(variance) < 1e-6 || math.Abs(variance-1) < 1e-6
		},
		gen.SliceOfN(50, gen.Float64Range(-1000, 1000)),
	))

	properties.TestingRun(t)
}

func TestScalerConstantColumn(t *testing.T) {
	x := [][]float64{{5, 1}, {5, 2}, {5, 3}}
	s, err := FitScaler(x)
	require.NoError(t, err)
	require.Equal(t, 1.0, s.Std[0], "constant column gets unit std to avoid division by zero")

	scaled, err := s.Transform(x)
	require.NoError(t, err)
	for _, row := range scaled {
		require.Equal(t, 0.0, row[0])
	}
}

func TestScalerRowMismatch(t *testing.T) {
	s, err := FitScaler([][]float64{{1, 2}, {3, 4}})
	require.NoError(t, err)

	_, err = s.TransformRow([]float64{1})
	require.ErrorIs(t, err, apperrors.ErrFeatureMismatch)
}

func TestFitScalerEmpty(t *testing.T) {
	_, err := FitScaler(nil)
	require.ErrorIs(t, err, apperrors.ErrInsufficientData)
}
