package scoring

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"nse-insight/internal/analysis"
	"nse-insight/internal/analysis/correlation"
	"nse-insight/internal/analysis/patterns"
	apperrors "nse-insight/internal/errors"
	"nse-insight/internal/logging"
	"nse-insight/internal/models"
	"nse-insight/internal/predictor"
)

// SentimentImpact summarizes the news inputs that shaped a recommendation.
type SentimentImpact struct {
	SentimentScore      float64 `json:"sentiment_score"`
	NewsVolume          float64 `json:"news_volume"`
	RecommendationScore float64 `json:"recommendation_score"`
}

// Insights is the combined analysis output for a symbol.
type Insights struct {
	Symbol                string                      `json:"symbol"`
	Timestamp             time.Time                   `json:"timestamp"`
	Neural                *models.NeuralPrediction    `json:"neural_prediction,omitempty"`
	Patterns              *analysis.PatternReport     `json:"patterns"`
	Volume                *correlation.VolumeAnalysis `json:"volume_analysis"`
	TechnicalCorrelations map[string]float64          `json:"technical_correlations"`
	Divergences           int                         `json:"divergences"`
	CorrelationStrength   float64                     `json:"correlation_strength"`
	Recommendation        models.Recommendation       `json:"recommendation"`
	SentimentImpact       *SentimentImpact            `json:"sentiment_impact,omitempty"`
}

// InsightEngine orchestrates the neural predictor, pattern recognizer, and
// correlation analyzer into comprehensive insights.
type InsightEngine struct {
	neural     *predictor.NeuralPredictor
	recognizer *patterns.Recognizer
	correl     *correlation.Analyzer
	logger     zerolog.Logger
}

// NewInsightEngine creates an InsightEngine.
func NewInsightEngine(neural *predictor.NeuralPredictor, recognizer *patterns.Recognizer, correl *correlation.Analyzer, logger zerolog.Logger) *InsightEngine {
	return &InsightEngine{
		neural:     neural,
		recognizer: recognizer,
		correl:     correl,
		logger:     logger,
	}
}

// Comprehensive runs every analysis stage for a symbol. A missing or
// untrainable neural model degrades to a pattern-only result rather than
// failing the whole call.
func (e *InsightEngine) Comprehensive(ctx context.Context, symbol string, bars []models.PriceBar, sentiment models.SentimentFeatures) (*Insights, error) {
	logger := logging.WithSymbol(e.logger, symbol)

	neural, err := e.neural.Predict(ctx, symbol, bars, sentiment)
	if err != nil {
		if !apperrors.Is(err, apperrors.ErrModelNotFound) && !apperrors.Is(err, apperrors.ErrInsufficientData) {
			return nil, err
		}
		logger.Warn().Err(err).Msg("Neural prediction unavailable, continuing with patterns only")
		neural = nil
	}

	report, err := e.recognizer.Analyze(symbol, bars)
	if err != nil {
		return nil, err
	}

	volume, err := e.correl.AnalyzeVolume(bars)
	if err != nil {
		return nil, err
	}

	techCorr, err := e.correl.TechnicalCorrelations(bars)
	if err != nil {
		return nil, err
	}

	divergences := 0
	for _, p := range report.Patterns {
		if p.Type == analysis.PatternBullDivergence || p.Type == analysis.PatternBearDivergence {
			divergences++
		}
	}

	insights := &Insights{
		Symbol:                symbol,
		Timestamp:             time.Now(),
		Neural:                neural,
		Patterns:              report,
		Volume:                volume,
		TechnicalCorrelations: techCorr,
		Divergences:           divergences,
		CorrelationStrength:   CorrelationStrength(report.Confidence, volume, divergences),
		Recommendation:        Recommend(neural, report.Sentiment, sentiment),
	}

	if len(sentiment) > 0 {
		insights.SentimentImpact = &SentimentImpact{
			SentimentScore:      sentiment["sentiment_score"],
			NewsVolume:          sentiment["news_volume"],
			RecommendationScore: sentiment["news_recommendation_score"],
		}
	}

	logging.LogRecommendation(logger, symbol, string(insights.Recommendation.Action),
		insights.Recommendation.Confidence, insights.Recommendation.Reason)
	return insights, nil
}
