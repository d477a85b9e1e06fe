// Package scoring combines neural predictions, chart patterns, and volume
// correlation into a single trading recommendation.
package scoring

import (
	"math"

	"nse-insight/internal/analysis"
	"nse-insight/internal/analysis/correlation"
	"nse-insight/internal/models"
)

// sentimentBoost derives the news adjustment applied to recommendation
// confidence. Positive news pushes toward buys, negative toward sells.
func sentimentBoost(sentiment models.SentimentFeatures) float64 {
	if len(sentiment) == 0 {
		return 0
	}
	score := sentiment["news_recommendation_score"]
	confidence, ok := sentiment["sentiment_confidence"]
	if !ok {
		confidence = 0.5
	}
	return score * confidence * 0.15
}

// CorrelationStrength scores how strongly the technical evidence agrees,
// in [0, 1]. Pattern confidence carries 60% weight; volume correlation
// carries 30% when it confirms the trend, 10% otherwise; each divergence
// subtracts 0.1 up to a cap of 0.3.
func CorrelationStrength(patternConfidence float64, volume *correlation.VolumeAnalysis, divergences int) float64 {
	base := patternConfidence * 0.6

	var volumeStrength float64
	if volume != nil {
		corr := math.Abs(volume.PriceVolumeCorrelation)
		if volume.VolumeConfirmsTrend {
			volumeStrength = corr * 0.3
		} else {
			volumeStrength = corr * 0.1
		}
	}

	penalty := math.Min(0.3, float64(divergences)*0.1)

	strength := base + volumeStrength - penalty
	return math.Max(0, math.Min(1, strength))
}

// Recommend combines the neural prediction with the pattern sentiment and
// optional news sentiment. A missing neural prediction yields HOLD at low
// confidence.
func Recommend(neural *models.NeuralPrediction, patternSentiment analysis.PatternDirection, sentiment models.SentimentFeatures) models.Recommendation {
	if neural == nil {
		return models.Recommendation{
			Action:     models.ActionHold,
			Confidence: 0.3,
			Reason:     "Insufficient neural model data",
		}
	}

	boost := sentimentBoost(sentiment)
	base := neural.Confidence

	up := neural.Class == models.ClassStrongUp
	down := neural.Class == models.ClassStrongDown
	neutral := !up && !down
	bullish := patternSentiment == analysis.PatternBullish
	bearish := patternSentiment == analysis.PatternBearish

	switch {
	case up && bullish:
		rec := models.Recommendation{
			Action:     models.ActionStrongBuy,
			Confidence: math.Min(0.95, base+boost),
			Reason:     "Neural network and technical patterns both indicate bullish trend",
		}
		if boost > 0.1 {
			rec.Reason = "Neural network, technical patterns, and positive news sentiment all indicate strong bullish trend"
		}
		return rec

	case down && bearish:
		rec := models.Recommendation{
			Action:     models.ActionStrongSell,
			Confidence: math.Min(0.95, base-boost),
			Reason:     "Neural network and technical patterns both indicate bearish trend",
		}
		if boost < -0.1 {
			rec.Reason = "Neural network, technical patterns, and negative news sentiment all indicate strong bearish trend"
		}
		return rec

	case up && !bearish:
		rec := models.Recommendation{
			Action:     models.ActionBuy,
			Confidence: math.Min(0.85, 0.65+boost),
			Reason:     "Neural network indicates upward movement",
		}
		if boost > 0.05 {
			rec.Reason += " with positive news support"
		}
		return rec

	case down && !bullish:
		rec := models.Recommendation{
			Action:     models.ActionSell,
			Confidence: math.Min(0.85, 0.65-boost),
			Reason:     "Neural network indicates downward movement",
		}
		if boost < -0.05 {
			rec.Reason += " with negative news pressure"
		}
		return rec

	case neutral && bullish:
		// Neutral neural reading but bullish patterns
		return models.Recommendation{
			Action:     models.ActionBuy,
			Confidence: math.Min(0.85, 0.65+boost),
			Reason:     "Technical patterns indicate bullish trend",
		}

	case neutral && bearish:
		return models.Recommendation{
			Action:     models.ActionSell,
			Confidence: math.Min(0.85, 0.65-boost),
			Reason:     "Technical patterns indicate bearish trend",
		}
	}

	// Conflicting or fully neutral signals: news sentiment decides
	confidence := 0.5 + math.Abs(boost)
	switch {
	case boost > 0.1:
		return models.Recommendation{
			Action:     models.ActionBuy,
			Confidence: confidence,
			Reason:     "Strong positive news sentiment despite mixed technical signals",
		}
	case boost < -0.1:
		return models.Recommendation{
			Action:     models.ActionSell,
			Confidence: confidence,
			Reason:     "Strong negative news sentiment despite mixed technical signals",
		}
	}
	return models.Recommendation{
		Action:     models.ActionHold,
		Confidence: confidence,
		Reason:     "Mixed signals from neural network, technical analysis, and news sentiment",
	}
}
