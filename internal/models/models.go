// Package models provides domain models for the stock analysis application.
package models

import (
	"time"
)

// ModelKind identifies a trained model family.
type ModelKind string

const (
	ModelKindTree   ModelKind = "tree"
	ModelKindNeural ModelKind = "neural"
)

// PriceBar represents one trading day of OHLCV data for a symbol.
// Sequences of bars are ordered strictly ascending by date with no
// duplicate dates.
type PriceBar struct {
	Date   time.Time `json:"date"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume int64     `json:"volume"`
}

// Direction is a predicted price direction label.
type Direction string

const (
	DirectionUp   Direction = "UP"
	DirectionDown Direction = "DOWN"
)

// NeuralClass labels the three neural target classes.
type NeuralClass string

const (
	ClassStrongDown NeuralClass = "strong_down"
	ClassNeutral    NeuralClass = "neutral"
	ClassStrongUp   NeuralClass = "strong_up"
)

// Action is a trading recommendation action.
type Action string

const (
	ActionStrongBuy  Action = "STRONG_BUY"
	ActionBuy        Action = "BUY"
	ActionHold       Action = "HOLD"
	ActionSell       Action = "SELL"
	ActionStrongSell Action = "STRONG_SELL"
)

// TrainResult reports the outcome of a tree model training run.
type TrainResult struct {
	Symbol          string    `json:"symbol"`
	Skipped         bool      `json:"skipped"`
	Accuracy        float64   `json:"accuracy"`
	Precision       float64   `json:"precision"`
	Recall          float64   `json:"recall"`
	F1Score         float64   `json:"f1_score"`
	TrainingSamples int       `json:"training_samples"`
	TestSamples     int       `json:"test_samples"`
	FeatureCount    int       `json:"feature_count"`
	TrainedAt       time.Time `json:"trained_at"`
}

// NeuralTrainResult reports the outcome of a neural model training run.
type NeuralTrainResult struct {
	Symbol            string    `json:"symbol"`
	Skipped           bool      `json:"skipped"`
	Accuracy          float64   `json:"accuracy"`
	TrainingSamples   int       `json:"training_samples"`
	TestSamples       int       `json:"test_samples"`
	FeatureCount      int       `json:"feature_count"`
	PCAComponents     int       `json:"pca_components"`
	ExplainedVariance float64   `json:"explained_variance"`
	SentimentUsed     bool      `json:"sentiment_used"`
	TrainedAt         time.Time `json:"trained_at"`
}

// FeatureValue pairs a feature name with a value. Used for importance
// rankings and current-feature snapshots, preserving order.
type FeatureValue struct {
	Feature string  `json:"feature"`
	Value   float64 `json:"value"`
}

// Prediction is the result of a tree model inference.
type Prediction struct {
	Symbol          string         `json:"symbol"`
	Direction       Direction      `json:"direction"`
	Confidence      float64        `json:"confidence"`
	ProbabilityUp   float64        `json:"probability_up"`
	ProbabilityDown float64        `json:"probability_down"`
	BasedOnDate     time.Time      `json:"based_on_date"`
	PredictedAt     time.Time      `json:"predicted_at"`
	TopFeatures     []FeatureValue `json:"top_features"`
	CurrentFeatures []FeatureValue `json:"current_features"`
}

// NeuralPrediction is the result of a neural model inference.
type NeuralPrediction struct {
	Symbol        string                  `json:"symbol"`
	Class         NeuralClass             `json:"class"`
	Confidence    float64                 `json:"confidence"`
	Probabilities map[NeuralClass]float64 `json:"probabilities"`
	SentimentUsed bool                    `json:"sentiment_used"`
	PredictedAt   time.Time               `json:"predicted_at"`
}

// SentimentFeatures carries optional news-sentiment scalars produced by an
// external collaborator. Each value is appended to the neural feature set
// as a constant column. A nil map means sentiment analysis was skipped.
type SentimentFeatures map[string]float64

// Keys returns the sentiment feature keys in sorted order so derived
// column ordering is deterministic.
func (s SentimentFeatures) Keys() []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	for i := 1; i < len(keys); i++ {
		for j := i; j > 0 && keys[j] < keys[j-1]; j-- {
			keys[j], keys[j-1] = keys[j-1], keys[j]
		}
	}
	return keys
}

// Recommendation is the combined trading recommendation.
type Recommendation struct {
	Action     Action  `json:"action"`
	Confidence float64 `json:"confidence"`
	Reason     string  `json:"reason"`
}

// ArtifactInfo describes a stored model artifact.
type ArtifactInfo struct {
	Symbol    string    `json:"symbol"`
	Kind      ModelKind `json:"kind"`
	TrainedAt time.Time `json:"trained_at"`
}
