package ml

import (
	"math"
	"sort"

	apperrors "nse-insight/internal/errors"
)

// PCA projects samples onto the leading principal components of the
// training covariance matrix.
type PCA struct {
	Components        [][]float64 `json:"components"` // one row per component
	Mean              []float64   `json:"mean"`
	ExplainedVariance []float64   `json:"explained_variance"` // ratio per component
}

// FitPCA computes up to numComponents principal components. The number of
// retained components is capped at the feature count.
func FitPCA(x [][]float64, numComponents int) (*PCA, error) {
	if len(x) < 2 {
		return nil, apperrors.Wrap(apperrors.ErrInsufficientData, "pca fit")
	}
	cols := len(x[0])
	if numComponents > cols {
		numComponents = cols
	}
	if numComponents <= 0 {
		return nil, apperrors.New("pca requires at least one component")
	}

	mean := make([]float64, cols)
	for _, row := range x {
		for j, v := range row {
			mean[j] += v
		}
	}
	for j := range mean {
		mean[j] /= float64(len(x))
	}

	// Covariance matrix
	cov := make([][]float64, cols)
	for i := range cov {
		cov[i] = make([]float64, cols)
	}
	for _, row := range x {
		for i := 0; i < cols; i++ {
			di := row[i] - mean[i]
			for j := i; j < cols; j++ {
				cov[i][j] += di * (row[j] - mean[j])
			}
		}
	}
	denom := float64(len(x) - 1)
	for i := 0; i < cols; i++ {
		for j := i; j < cols; j++ {
			cov[i][j] /= denom
			cov[j][i] = cov[i][j]
		}
	}

	eigenvalues, eigenvectors := jacobiEigen(cov)

	// Sort by eigenvalue, descending
	order := make([]int, cols)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return eigenvalues[order[a]] > eigenvalues[order[b]]
	})

	var totalVar float64
	for _, ev := range eigenvalues {
		if ev > 0 {
			totalVar += ev
		}
	}

	p := &PCA{Mean: mean}
	for k := 0; k < numComponents; k++ {
		idx := order[k]
		component := make([]float64, cols)
		for i := 0; i < cols; i++ {
			component[i] = eigenvectors[i][idx]
		}
		p.Components = append(p.Components, component)
		ratio := 0.0
		if totalVar > 0 && eigenvalues[idx] > 0 {
			ratio = eigenvalues[idx] / totalVar
		}
		p.ExplainedVariance = append(p.ExplainedVariance, ratio)
	}
	return p, nil
}

// Transform projects samples onto the fitted components.
func (p *PCA) Transform(x [][]float64) ([][]float64, error) {
	out := make([][]float64, len(x))
	for i, row := range x {
		projected, err := p.TransformRow(row)
		if err != nil {
			return nil, err
		}
		out[i] = projected
	}
	return out, nil
}

// TransformRow projects a single sample onto the fitted components.
func (p *PCA) TransformRow(row []float64) ([]float64, error) {
	if len(row) != len(p.Mean) {
		return nil, apperrors.Wrapf(apperrors.ErrFeatureMismatch,
			"pca expects %d features, got %d", len(p.Mean), len(row))
	}
	out := make([]float64, len(p.Components))
	for k, component := range p.Components {
		var dot float64
		for j, v := range row {
			dot += (v - p.Mean[j]) * component[j]
		}
		out[k] = dot
	}
	return out, nil
}

// TotalExplainedVariance returns the sum of the retained variance ratios.
func (p *PCA) TotalExplainedVariance() float64 {
	var total float64
	for _, v := range p.ExplainedVariance {
		total += v
	}
	return total
}

// jacobiEigen computes the eigendecomposition of a symmetric matrix using
// cyclic Jacobi rotations. Returns eigenvalues and a matrix whose columns
// are the corresponding eigenvectors.
func jacobiEigen(a [][]float64) ([]float64, [][]float64) {
	n := len(a)

	// Work on a copy
	m := make([][]float64, n)
	for i := range m {
		m[i] = append([]float64(nil), a[i]...)
	}

	vectors := make([][]float64, n)
	for i := range vectors {
		vectors[i] = make([]float64, n)
		vectors[i][i] = 1
	}

	const maxSweeps = 100
	const tolerance = 1e-12

	for sweep := 0; sweep < maxSweeps; sweep++ {
		var offDiag float64
		for i := 0; i < n; i++ {
			for j := i + 1; j < n; j++ {
				offDiag += m[i][j] * m[i][j]
			}
		}
		if offDiag < tolerance {
			break
		}

		for p := 0; p < n-1; p++ {
			for q := p + 1; q < n; q++ {
				if math.Abs(m[p][q]) < tolerance {
					continue
				}

				theta := (m[q][q] - m[p][p]) / (2 * m[p][q])
				t := math.Copysign(1, theta) / (math.Abs(theta) + math.Sqrt(theta*theta+1))
				c := 1 / math.Sqrt(t*t+1)
				s := t * c

				for i := 0; i < n; i++ {
					mip, miq := m[i][p], m[i][q]
					m[i][p] = c*mip - s*miq
					m[i][q] = s*mip + c*miq
				}
				for i := 0; i < n; i++ {
					mpi, mqi := m[p][i], m[q][i]
					m[p][i] = c*mpi - s*mqi
					m[q][i] = s*mpi + c*mqi
				}
				for i := 0; i < n; i++ {
					vip, viq := vectors[i][p], vectors[i][q]
					vectors[i][p] = c*vip - s*viq
					vectors[i][q] = s*vip + c*viq
				}
			}
		}
	}

	eigenvalues := make([]float64, n)
	for i := 0; i < n; i++ {
		eigenvalues[i] = m[i][i]
	}
	return eigenvalues, vectors
}
