package assessment

import (
	"math"
	"sort"

	"github.com/gq18262121731-source/Health-Management-System-sub001/pkg/common/models"
)

// DetectTrends classifies each metric's deviation from the user's own
// rolling baseline. Metrics without a usable baseline are omitted entirely
// rather than scored as stable.
func DetectTrends(features map[string]*models.FeatureVector, thresholds ThresholdsConfig) []models.TrendResult {
	metrics := make([]string, 0, len(features))
	for metric := range features {
		metrics = append(metrics, metric)
	}
	sort.Strings(metrics)

	var trends []models.TrendResult
	for _, metric := range metrics {
		fv := features[metric]
		if fv.DeviationFromBaseline == nil {
			continue
		}
		deviation := *fv.DeviationFromBaseline
		trends = append(trends, models.TrendResult{
			Metric:    metric,
			Deviation: deviation,
			State:     trendState(deviation, thresholds.Metrics[metric].HigherIsWorse),
		})
	}
	return trends
}

func trendState(deviation float64, higherIsWorse bool) string {
	abs := math.Abs(deviation)
	switch {
	case abs < 1:
		return models.TrendStable
	case abs >= 2:
		return models.TrendSignificant
	}

	adverse := deviation > 0
	if !higherIsWorse {
		adverse = deviation < 0
	}
	if adverse {
		return models.TrendWorsening
	}
	return models.TrendImproving
}

// trendRiskScore converts a deviation magnitude to a 0-100 risk score used
// for the trend dimension in fusion. Stable metrics contribute nothing.
func trendRiskScore(t models.TrendResult) float64 {
	switch t.State {
	case models.TrendSignificant:
		return clamp01(math.Abs(t.Deviation)/3) * 100
	case models.TrendWorsening:
		return clamp01(math.Abs(t.Deviation)/2) * 70
	default:
		return 0
	}
}
