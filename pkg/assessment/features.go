package assessment

import (
	"math"

	"github.com/gq18262121731-source/Health-Management-System-sub001/pkg/common/models"
	"gonum.org/v1/gonum/stat"
)

// minSamplesForSpread is the sample count below which only the mean is
// derived; variability and trend need at least three points to mean anything.
const minSamplesForSpread = 3

// BuildFeatures derives one feature vector per metric series. Every value in
// the output is finite; anything that cannot be derived is left nil rather
// than reported as zero.
func BuildFeatures(window models.AssessmentWindow, series map[string]*models.MetricSeries, baselines map[string]*models.Baseline, thresholds ThresholdsConfig) map[string]*models.FeatureVector {
	features := make(map[string]*models.FeatureVector, len(series))
	for metric, s := range series {
		fv := buildFeatureVector(window, s, baselines[metric], thresholds.Metrics[metric])
		if fv != nil {
			features[metric] = fv
		}
	}
	return features
}

func buildFeatureVector(window models.AssessmentWindow, s *models.MetricSeries, baseline *models.Baseline, mt MetricThreshold) *models.FeatureVector {
	values, elapsed := samplesInWindow(window, s)
	if len(values) == 0 {
		return nil
	}

	fv := &models.FeatureVector{
		Metric:      s.MetricName,
		SampleCount: len(values),
		Mean:        stat.Mean(values, nil),
	}

	if baseline != nil && baseline.Std > 0 {
		deviation := (fv.Mean - baseline.Mean) / baseline.Std
		if isFinite(deviation) {
			fv.DeviationFromBaseline = &deviation
		}
	}

	if len(values) < minSamplesForSpread {
		return fv
	}

	std := stat.StdDev(values, nil)
	if isFinite(std) {
		fv.Std = &std
	}

	if fv.Mean != 0 && fv.Std != nil {
		cv := *fv.Std / fv.Mean
		if isFinite(cv) {
			fv.CoefficientOfVariation = &cv
		}
	}

	// OLS slope of value against elapsed days, normalized by the metric's
	// clinical unit scale so slopes are comparable across metrics.
	_, slope := stat.LinearRegression(elapsed, values, nil, false)
	if isFinite(slope) && mt.UnitScale > 0 {
		normalized := slope / mt.UnitScale
		fv.TrendSlope = &normalized
	}

	if mt.Target.High > mt.Target.Low {
		inBand := 0
		for _, v := range values {
			if v >= mt.Target.Low && v <= mt.Target.High {
				inBand++
			}
		}
		compliance := float64(inBand) / float64(len(values))
		fv.ComplianceRate = &compliance
	}

	return fv
}

// samplesInWindow filters a series down to the assessment window, returning
// values alongside elapsed days since window start for trend regression.
func samplesInWindow(window models.AssessmentWindow, s *models.MetricSeries) ([]float64, []float64) {
	values := make([]float64, 0, s.Len())
	elapsed := make([]float64, 0, s.Len())
	for i, ts := range s.Timestamps {
		if ts.Before(window.Start) || ts.After(window.End) {
			continue
		}
		values = append(values, s.Values[i])
		elapsed = append(elapsed, ts.Sub(window.Start).Hours()/24)
	}
	return values, elapsed
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
