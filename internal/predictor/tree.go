// Package predictor implements the model training and inference pipelines.
package predictor

import (
	"context"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"nse-insight/internal/analysis/featureset"
	"nse-insight/internal/artifact"
	"nse-insight/internal/config"
	apperrors "nse-insight/internal/errors"
	"nse-insight/internal/logging"
	"nse-insight/internal/ml"
	"nse-insight/internal/models"
)

// TreePredictor trains and serves the random forest direction classifier.
type TreePredictor struct {
	cfg     *config.Config
	store   artifact.Store
	builder *featureset.Builder
	logger  zerolog.Logger
}

// NewTreePredictor creates a TreePredictor.
func NewTreePredictor(cfg *config.Config, store artifact.Store, logger zerolog.Logger) *TreePredictor {
	return &TreePredictor{
		cfg:     cfg,
		store:   store,
		builder: featureset.NewBuilder(cfg.Indicators),
		logger:  logging.WithModel(logger, string(models.ModelKindTree)),
	}
}

// Train trains a direction classifier for the symbol. When a model already
// exists and force is false, training is skipped and the stored metrics are
// returned.
func (p *TreePredictor) Train(ctx context.Context, symbol string, bars []models.PriceBar, force bool) (*models.TrainResult, error) {
	logger := logging.WithOperation(logging.WithSymbol(p.logger, symbol), "train")

	if !force {
		exists, err := p.store.Exists(ctx, symbol, models.ModelKindTree)
		if err != nil {
			return nil, err
		}
		if exists {
			bundle, err := p.store.GetTree(ctx, symbol)
			if err != nil {
				return nil, err
			}
			logger.Info().Msg("Model already trained, skipping")
			return &models.TrainResult{
				Symbol:       symbol,
				Skipped:      true,
				Accuracy:     bundle.Accuracy,
				Precision:    bundle.Precision,
				Recall:       bundle.Recall,
				F1Score:      bundle.F1Score,
				FeatureCount: len(bundle.FeatureColumns),
				TrainedAt:    bundle.TrainedAt,
			}, nil
		}
	}

	frame, err := p.builder.BuildTree(symbol, bars)
	if err != nil {
		return nil, err
	}
	clean, err := frame.Clean(p.cfg.ML.MinSamples)
	if err != nil {
		return nil, err
	}

	trainX, trainY, testX, testY := ml.TrainTestSplit(clean.Rows, clean.Target, p.cfg.ML.TestSize)

	forest, err := ml.TrainForest(ml.ForestConfig{
		Trees:    p.cfg.ML.Trees,
		MaxDepth: p.cfg.ML.MaxDepth,
		MinSplit: p.cfg.ML.MinSplit,
		MinLeaf:  p.cfg.ML.MinSamplesLeaf,
		Seed:     p.cfg.ML.Seed,
	}, trainX, trainY, 2)
	if err != nil {
		return nil, apperrors.NewModelError(string(models.ModelKindTree), symbol, "train", err)
	}

	predicted := make([]int, len(testX))
	for i, row := range testX {
		predicted[i], _ = forest.Predict(row)
	}
	accuracy := ml.Accuracy(predicted, testY)
	precision, recall, f1 := ml.PrecisionRecallF1(predicted, testY, 1)

	bundle := &artifact.TreeBundle{
		Forest:         forest,
		FeatureColumns: clean.Columns,
		Accuracy:       accuracy,
		Precision:      precision,
		Recall:         recall,
		F1Score:        f1,
		TrainedAt:      time.Now(),
	}
	if err := p.store.SaveTree(ctx, symbol, bundle); err != nil {
		return nil, err
	}

	logging.LogTraining(logger, symbol, string(models.ModelKindTree), len(trainX), accuracy)

	return &models.TrainResult{
		Symbol:          symbol,
		Accuracy:        accuracy,
		Precision:       precision,
		Recall:          recall,
		F1Score:         f1,
		TrainingSamples: len(trainX),
		TestSamples:     len(testX),
		FeatureCount:    len(clean.Columns),
		TrainedAt:       bundle.TrainedAt,
	}, nil
}

// Predict runs inference with the stored model on the latest complete
// feature row. Features are pinned to the columns the model trained on.
func (p *TreePredictor) Predict(ctx context.Context, symbol string, bars []models.PriceBar) (*models.Prediction, error) {
	logger := logging.WithOperation(logging.WithSymbol(p.logger, symbol), "predict")

	bundle, err := p.store.GetTree(ctx, symbol)
	if err != nil {
		return nil, err
	}

	frame, err := p.builder.BuildTree(symbol, bars)
	if err != nil {
		return nil, err
	}
	selected, err := frame.Select(bundle.FeatureColumns)
	if err != nil {
		return nil, err
	}
	row, err := selected.LatestComplete()
	if err != nil {
		return nil, err
	}

	probs, err := bundle.Forest.PredictProba(row)
	if err != nil {
		return nil, err
	}

	direction := models.DirectionDown
	confidence := probs[0]
	if probs[1] > probs[0] {
		direction = models.DirectionUp
		confidence = probs[1]
	}

	pred := &models.Prediction{
		Symbol:          symbol,
		Direction:       direction,
		Confidence:      confidence,
		ProbabilityUp:   probs[1],
		ProbabilityDown: probs[0],
		PredictedAt:     time.Now(),
		TopFeatures:     topImportances(bundle, 10),
		CurrentFeatures: currentFeatures(bundle.FeatureColumns, row),
	}
	if len(bars) > 0 {
		pred.BasedOnDate = bars[len(bars)-1].Date
	}

	logging.LogPrediction(logger, symbol, string(models.ModelKindTree), string(direction), confidence)
	return pred, nil
}

// FeatureImportance returns all model features ranked by importance.
func (p *TreePredictor) FeatureImportance(ctx context.Context, symbol string) ([]models.FeatureValue, error) {
	bundle, err := p.store.GetTree(ctx, symbol)
	if err != nil {
		return nil, err
	}
	return topImportances(bundle, len(bundle.FeatureColumns)), nil
}

func topImportances(bundle *artifact.TreeBundle, limit int) []models.FeatureValue {
	importance := bundle.Forest.FeatureImportance()
	ranked := make([]models.FeatureValue, 0, len(bundle.FeatureColumns))
	for i, col := range bundle.FeatureColumns {
		if i < len(importance) {
			ranked = append(ranked, models.FeatureValue{Feature: col, Value: importance[i]})
		}
	}
	sort.SliceStable(ranked, func(a, b int) bool {
		return ranked[a].Value > ranked[b].Value
	})
	if limit < len(ranked) {
		ranked = ranked[:limit]
	}
	return ranked
}

func currentFeatures(columns []string, row []float64) []models.FeatureValue {
	values := make([]models.FeatureValue, len(columns))
	for i, col := range columns {
		values[i] = models.FeatureValue{Feature: col, Value: row[i]}
	}
	return values
}
