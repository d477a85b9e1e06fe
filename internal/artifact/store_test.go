package artifact

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	apperrors "nse-insight/internal/errors"
	"nse-insight/internal/ml"
	"nse-insight/internal/models"
)

func sampleTreeBundle(trainedAt time.Time) *TreeBundle {
	return &TreeBundle{
		Forest: &ml.RandomForest{
			Config:      ml.ForestConfig{Trees: 1, MaxDepth: 2, Seed: 1},
			Roots:       []*ml.TreeNode{{Probs: []float64{0.4, 0.6}}},
			NumClasses:  2,
			NumFeatures: 3,
			Importance:  []float64{0.5, 0.3, 0.2},
		},
		FeatureColumns: []string{"RSI", "MACD", "ATR"},
		Accuracy:       0.61,
		Precision:      0.6,
		Recall:         0.58,
		F1Score:        0.59,
		TrainedAt:      trainedAt,
	}
}

func sampleNeuralBundle(trainedAt time.Time) *NeuralBundle {
	return &NeuralBundle{
		Net: &ml.MLP{
			Config:  ml.MLPConfig{HiddenLayers: []int{4}, LearningRate: 0.01, MaxEpochs: 1, Seed: 1},
			Sizes:   []int{2, 4, 3},
			Weights: [][][]float64{{{0.1, 0.2}, {0.3, 0.4}, {0.5, 0.6}, {0.7, 0.8}}, {{1, 2, 3, 4}, {5, 6, 7, 8}, {9, 10, 11, 12}}},
			Biases:  [][]float64{{0, 0, 0, 0}, {0, 0, 0}},
		},
		Scaler:         &ml.StandardScaler{Mean: []float64{1, 2}, Std: []float64{0.5, 1.5}},
		PCA:            &ml.PCA{Components: [][]float64{{1, 0}, {0, 1}}, Mean: []float64{0, 0}, ExplainedVariance: []float64{0.7, 0.3}},
		FeatureColumns: []string{"momentum_3", "RSI"},
		Accuracy:       0.55,
		SentimentUsed:  true,
		TrainedAt:      trainedAt,
	}
}

// stores returns each Store implementation under a fresh backing.
func stores(t *testing.T) map[string]Store {
	t.Helper()
	sqlite, err := NewSQLiteStore(filepath.Join(t.TempDir(), "models.db"))
	require.NoError(t, err)
	t.Cleanup(func() { sqlite.Close() })

	return map[string]Store{
		"memory": NewMemoryStore(),
		"sqlite": sqlite,
	}
}

func TestStoreTreeRoundTrip(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			trainedAt := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
			bundle := sampleTreeBundle(trainedAt)

			require.NoError(t, store.SaveTree(ctx, "SBIN", bundle))

			got, err := store.GetTree(ctx, "SBIN")
			require.NoError(t, err)
			require.Equal(t, bundle.FeatureColumns, got.FeatureColumns)
			require.Equal(t, bundle.Accuracy, got.Accuracy)
			require.Equal(t, bundle.Forest.NumFeatures, got.Forest.NumFeatures)
			require.Equal(t, bundle.Forest.Roots[0].Probs, got.Forest.Roots[0].Probs)
		})
	}
}

func TestStoreNeuralRoundTrip(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			bundle := sampleNeuralBundle(time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC))

			require.NoError(t, store.SaveNeural(ctx, "TCS", bundle))

			got, err := store.GetNeural(ctx, "TCS")
			require.NoError(t, err)
			require.Equal(t, bundle.Net.Sizes, got.Net.Sizes)
			require.Equal(t, bundle.Scaler.Mean, got.Scaler.Mean)
			require.Equal(t, bundle.PCA.ExplainedVariance, got.PCA.ExplainedVariance)
			require.True(t, got.SentimentUsed)
		})
	}
}

func TestStoreOverwriteReplaces(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			first := sampleTreeBundle(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
			second := sampleTreeBundle(time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC))
			second.Accuracy = 0.9

			require.NoError(t, store.SaveTree(ctx, "SBIN", first))
			require.NoError(t, store.SaveTree(ctx, "SBIN", second))

			got, err := store.GetTree(ctx, "SBIN")
			require.NoError(t, err)
			require.Equal(t, 0.9, got.Accuracy)

			infos, err := store.List(ctx)
			require.NoError(t, err)
			require.Len(t, infos, 1, "overwrite must not create a second row")
		})
	}
}

func TestStoreMissingArtifact(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			_, err := store.GetTree(ctx, "NOSUCH")
			require.ErrorIs(t, err, apperrors.ErrModelNotFound)

			_, err = store.GetNeural(ctx, "NOSUCH")
			require.ErrorIs(t, err, apperrors.ErrModelNotFound)

			exists, err := store.Exists(ctx, "NOSUCH", models.ModelKindTree)
			require.NoError(t, err)
			require.False(t, exists)
		})
	}
}

func TestStoreListNewestFirst(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			older := sampleTreeBundle(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
			newer := sampleNeuralBundle(time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC))

			require.NoError(t, store.SaveTree(ctx, "SBIN", older))
			require.NoError(t, store.SaveNeural(ctx, "TCS", newer))

			infos, err := store.List(ctx)
			require.NoError(t, err)
			require.Len(t, infos, 2)
			require.Equal(t, "TCS", infos[0].Symbol)
			require.Equal(t, models.ModelKindNeural, infos[0].Kind)
			require.Equal(t, "SBIN", infos[1].Symbol)
		})
	}
}

func TestStoreDelete(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, store.SaveTree(ctx, "SBIN", sampleTreeBundle(time.Now().UTC())))

			require.NoError(t, store.Delete(ctx, "SBIN", models.ModelKindTree))

			exists, err := store.Exists(ctx, "SBIN", models.ModelKindTree)
			require.NoError(t, err)
			require.False(t, exists)

			// Deleting again is not an error
			require.NoError(t, store.Delete(ctx, "SBIN", models.ModelKindTree))
		})
	}
}

func TestExistsDistinguishesKinds(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, store.SaveTree(ctx, "SBIN", sampleTreeBundle(time.Now().UTC())))

			treeExists, err := store.Exists(ctx, "SBIN", models.ModelKindTree)
			require.NoError(t, err)
			require.True(t, treeExists)

			neuralExists, err := store.Exists(ctx, "SBIN", models.ModelKindNeural)
			require.NoError(t, err)
			require.False(t, neuralExists)
		})
	}
}
