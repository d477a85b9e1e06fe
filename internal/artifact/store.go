// Package artifact provides persistence for trained model bundles.
package artifact

import (
	"context"
	"time"

	"nse-insight/internal/ml"
	"nse-insight/internal/models"
)

// TreeBundle packages everything needed to reuse a trained direction
// classifier: the forest, its pinned feature columns, and metadata.
type TreeBundle struct {
	Forest         *ml.RandomForest `json:"forest"`
	FeatureColumns []string         `json:"feature_columns"`
	Accuracy       float64          `json:"accuracy"`
	Precision      float64          `json:"precision"`
	Recall         float64          `json:"recall"`
	F1Score        float64          `json:"f1_score"`
	TrainedAt      time.Time        `json:"trained_at"`
}

// NeuralBundle packages a trained neural classifier with its scaler and
// PCA projection. Features must pass through scaler then PCA before the
// network sees them.
type NeuralBundle struct {
	Net            *ml.MLP            `json:"net"`
	Scaler         *ml.StandardScaler `json:"scaler"`
	PCA            *ml.PCA            `json:"pca"`
	FeatureColumns []string           `json:"feature_columns"`
	Accuracy       float64            `json:"accuracy"`
	SentimentUsed  bool               `json:"sentiment_used"`
	TrainedAt      time.Time          `json:"trained_at"`
}

// Store defines the interface for model artifact persistence.
type Store interface {
	SaveTree(ctx context.Context, symbol string, bundle *TreeBundle) error
	GetTree(ctx context.Context, symbol string) (*TreeBundle, error)
	SaveNeural(ctx context.Context, symbol string, bundle *NeuralBundle) error
	GetNeural(ctx context.Context, symbol string) (*NeuralBundle, error)
	Exists(ctx context.Context, symbol string, kind models.ModelKind) (bool, error)
	List(ctx context.Context) ([]models.ArtifactInfo, error)
	Delete(ctx context.Context, symbol string, kind models.ModelKind) error
	Close() error
}
