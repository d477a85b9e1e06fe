package predictor

import (
	"context"
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

// NeuralPredictor trains and serves the three-class neural classifier.
type NeuralPredictor struct {
	cfg     *config.Config
	store   artifact.Store
	builder *featureset.Builder
	logger  zerolog.Logger
}

// NewNeuralPredictor creates a NeuralPredictor.
func NewNeuralPredictor(cfg *config.Config, store artifact.Store, logger zerolog.Logger) *NeuralPredictor {
	return &NeuralPredictor{
		cfg:     cfg,
		store:   store,
		builder: featureset.NewBuilder(cfg.Indicators),
		logger:  logging.WithModel(logger, string(models.ModelKindNeural)),
	}
}

// classLabels maps target indices to their class labels.
var classLabels = [...]models.NeuralClass{
	models.ClassStrongDown,
	models.ClassNeutral,
	models.ClassStrongUp,
}

// Train trains a neural classifier for the symbol. Sentiment features, when
// provided, are appended as constant columns and pinned into the model's
// feature set. When a model already exists and force is false, training is
// skipped.
func (p *NeuralPredictor) Train(ctx context.Context, symbol string, bars []models.PriceBar, sentiment models.SentimentFeatures, force bool) (*models.NeuralTrainResult, error) {
	logger := logging.WithOperation(logging.WithSymbol(p.logger, symbol), "train")

	if !force {
		exists, err := p.store.Exists(ctx, symbol, models.ModelKindNeural)
		if err != nil {
			return nil, err
		}
		if exists {
			bundle, err := p.store.GetNeural(ctx, symbol)
			if err != nil {
				return nil, err
			}
			logger.Info().Msg("Model already trained, skipping")
			return &models.NeuralTrainResult{
				Symbol:        symbol,
				Skipped:       true,
				Accuracy:      bundle.Accuracy,
				FeatureCount:  len(bundle.FeatureColumns),
				PCAComponents: len(bundle.PCA.Components),
				SentimentUsed: bundle.SentimentUsed,
				TrainedAt:     bundle.TrainedAt,
			}, nil
		}
	}

	frame, err := p.builder.BuildNeural(symbol, bars, sentiment, p.cfg.Neural.ClassThreshold)
	if err != nil {
		return nil, err
	}
	clean, err := frame.Clean(p.cfg.ML.MinSamples)
	if err != nil {
		return nil, err
	}

	trainX, trainY, testX, testY := ml.TrainTestSplit(clean.Rows, clean.Target, p.cfg.ML.TestSize)

	// Scaler and PCA are fitted on the training partition only so test
	// metrics stay honest.
	scaler, err := ml.FitScaler(trainX)
	if err != nil {
		return nil, apperrors.NewModelError(string(models.ModelKindNeural), symbol, "scale", err)
	}
	scaledTrain, err := scaler.Transform(trainX)
	if err != nil {
		return nil, err
	}

	pca, err := ml.FitPCA(scaledTrain, p.cfg.Neural.PCAComponents)
	if err != nil {
		return nil, apperrors.NewModelError(string(models.ModelKindNeural), symbol, "pca", err)
	}
	reducedTrain, err := pca.Transform(scaledTrain)
	if err != nil {
		return nil, err
	}

	// Chronological validation split from the tail of the training data
	valSize := int(float64(len(reducedTrain)) * p.cfg.Neural.ValidationSplit)
	if valSize < 1 {
		valSize = 1
	}
	fitX := reducedTrain[:len(reducedTrain)-valSize]
	fitY := trainY[:len(trainY)-valSize]
	valX := reducedTrain[len(reducedTrain)-valSize:]
	valY := trainY[len(trainY)-valSize:]

	net, err := ml.TrainMLP(ml.MLPConfig{
		HiddenLayers: p.cfg.Neural.HiddenLayers,
		LearningRate: p.cfg.Neural.LearningRate,
		MaxEpochs:    p.cfg.Neural.MaxEpochs,
		BatchSize:    p.cfg.Neural.BatchSize,
		Patience:     p.cfg.Neural.Patience,
		Seed:         p.cfg.ML.Seed,
	}, fitX, fitY, valX, valY, len(classLabels))
	if err != nil {
		return nil, apperrors.NewModelError(string(models.ModelKindNeural), symbol, "train", err)
	}

	predicted := make([]int, len(testX))
	for i, row := range testX {
		scaled, err := scaler.TransformRow(row)
		if err != nil {
			return nil, err
		}
		reduced, err := pca.TransformRow(scaled)
		if err != nil {
			return nil, err
		}
		predicted[i] = net.Predict(reduced)
	}
	accuracy := ml.Accuracy(predicted, testY)

	bundle := &artifact.NeuralBundle{
		Net:            net,
		Scaler:         scaler,
		PCA:            pca,
		FeatureColumns: clean.Columns,
		Accuracy:       accuracy,
		SentimentUsed:  len(sentiment) > 0,
		TrainedAt:      time.Now(),
	}
	if err := p.store.SaveNeural(ctx, symbol, bundle); err != nil {
		return nil, err
	}

	logging.LogTraining(logger, symbol, string(models.ModelKindNeural), len(fitX), accuracy)

	return &models.NeuralTrainResult{
		Symbol:            symbol,
		Accuracy:          accuracy,
		TrainingSamples:   len(fitX),
		TestSamples:       len(testX),
		FeatureCount:      len(clean.Columns),
		PCAComponents:     len(pca.Components),
		ExplainedVariance: pca.TotalExplainedVariance(),
		SentimentUsed:     bundle.SentimentUsed,
		TrainedAt:         bundle.TrainedAt,
	}, nil
}

// Predict runs inference with the stored neural model. The sentiment
// features must produce the same columns the model was trained with,
// otherwise the prediction fails with a feature mismatch.
func (p *NeuralPredictor) Predict(ctx context.Context, symbol string, bars []models.PriceBar, sentiment models.SentimentFeatures) (*models.NeuralPrediction, error) {
	logger := logging.WithOperation(logging.WithSymbol(p.logger, symbol), "predict")

	bundle, err := p.store.GetNeural(ctx, symbol)
	if err != nil {
		return nil, err
	}

	frame, err := p.builder.BuildNeural(symbol, bars, sentiment, p.cfg.Neural.ClassThreshold)
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

	scaled, err := bundle.Scaler.TransformRow(row)
	if err != nil {
		return nil, err
	}
	reduced, err := bundle.PCA.TransformRow(scaled)
	if err != nil {
		return nil, err
	}

	probs := bundle.Net.PredictProba(reduced)
	best := 0
	for i, p := range probs {
		if p > probs[best] {
			best = i
		}
	}

	pred := &models.NeuralPrediction{
		Symbol:     symbol,
		Class:      classLabels[best],
		Confidence: probs[best],
		Probabilities: map[models.NeuralClass]float64{
			models.ClassStrongDown: probs[0],
			models.ClassNeutral:    probs[1],
			models.ClassStrongUp:   probs[2],
		},
		SentimentUsed: bundle.SentimentUsed,
		PredictedAt:   time.Now(),
	}

	logging.LogPrediction(logger, symbol, string(models.ModelKindNeural), string(pred.Class), pred.Confidence)
	return pred, nil
}
