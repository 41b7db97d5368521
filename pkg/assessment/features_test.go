package assessment

import (
	"math"
	"testing"

	"github.com/gq18262121731-source/Health-Management-System-sub001/pkg/common/models"
)

func TestBuildFeaturesBasic(t *testing.T) {
	window := testWindow(7, models.MetricSystolicBP)
	series := map[string]*models.MetricSeries{
		models.MetricSystolicBP: dailySeries(models.MetricSystolicBP, window, 118, 120, 122, 124, 126, 128, 130),
	}

	features := BuildFeatures(window, series, nil, DefaultThresholds())
	fv, ok := features[models.MetricSystolicBP]
	if !ok {
		t.Fatal("expected systolic feature vector")
	}

	if fv.SampleCount != 7 {
		t.Fatalf("sample count = %d, want 7", fv.SampleCount)
	}
	if math.Abs(fv.Mean-124) > 1e-9 {
		t.Fatalf("mean = %v, want 124", fv.Mean)
	}
	if fv.Std == nil || *fv.Std <= 0 {
		t.Fatalf("std = %v, want positive", fv.Std)
	}
	if fv.CoefficientOfVariation == nil {
		t.Fatal("expected coefficient of variation")
	}
	if fv.TrendSlope == nil || *fv.TrendSlope <= 0 {
		t.Fatalf("trend slope = %v, want positive for rising values", fv.TrendSlope)
	}
	if fv.ComplianceRate == nil || *fv.ComplianceRate != 1 {
		t.Fatalf("compliance = %v, want 1.0 (all within 90-140)", fv.ComplianceRate)
	}
	if fv.DeviationFromBaseline != nil {
		t.Fatal("expected nil baseline deviation without a baseline")
	}
}

func TestBuildFeaturesFewSamplesOnlyMean(t *testing.T) {
	window := testWindow(7, models.MetricSystolicBP)
	series := map[string]*models.MetricSeries{
		models.MetricSystolicBP: dailySeries(models.MetricSystolicBP, window, 130, 134),
	}

	features := BuildFeatures(window, series, nil, DefaultThresholds())
	fv := features[models.MetricSystolicBP]
	if fv == nil {
		t.Fatal("expected feature vector for two samples")
	}
	if fv.Mean != 132 {
		t.Fatalf("mean = %v, want 132", fv.Mean)
	}
	if fv.Std != nil || fv.CoefficientOfVariation != nil || fv.TrendSlope != nil || fv.ComplianceRate != nil {
		t.Fatalf("expected only mean populated below 3 samples, got %+v", fv)
	}
}

func TestBuildFeaturesEmptySeriesOmitted(t *testing.T) {
	window := testWindow(7, models.MetricSystolicBP)
	series := map[string]*models.MetricSeries{
		models.MetricSystolicBP: {MetricName: models.MetricSystolicBP},
	}

	features := BuildFeatures(window, series, nil, DefaultThresholds())
	if _, ok := features[models.MetricSystolicBP]; ok {
		t.Fatal("expected no feature vector for an empty series")
	}
}

func TestBuildFeaturesBaselineDeviation(t *testing.T) {
	window := testWindow(7, models.MetricSystolicBP)
	series := map[string]*models.MetricSeries{
		models.MetricSystolicBP: dailySeries(models.MetricSystolicBP, window, 130, 130, 130, 130, 130, 130, 130),
	}
	baselines := map[string]*models.Baseline{
		models.MetricSystolicBP: {Metric: models.MetricSystolicBP, Mean: 120, Std: 5},
	}

	features := BuildFeatures(window, series, baselines, DefaultThresholds())
	fv := features[models.MetricSystolicBP]
	if fv.DeviationFromBaseline == nil {
		t.Fatal("expected baseline deviation")
	}
	if math.Abs(*fv.DeviationFromBaseline-2) > 1e-9 {
		t.Fatalf("deviation = %v, want 2.0", *fv.DeviationFromBaseline)
	}
}

func TestBuildFeaturesZeroStdBaselineIgnored(t *testing.T) {
	window := testWindow(7, models.MetricSystolicBP)
	series := map[string]*models.MetricSeries{
		models.MetricSystolicBP: dailySeries(models.MetricSystolicBP, window, 130, 131, 132),
	}
	baselines := map[string]*models.Baseline{
		models.MetricSystolicBP: {Metric: models.MetricSystolicBP, Mean: 120, Std: 0},
	}

	features := BuildFeatures(window, series, baselines, DefaultThresholds())
	if features[models.MetricSystolicBP].DeviationFromBaseline != nil {
		t.Fatal("expected nil deviation for zero-std baseline")
	}
}

func TestBuildFeaturesFlatSeriesSlopeZero(t *testing.T) {
	window := testWindow(7, models.MetricFastingGlucose)
	series := map[string]*models.MetricSeries{
		models.MetricFastingGlucose: dailySeries(models.MetricFastingGlucose, window, 5.5, 5.5, 5.5, 5.5, 5.5),
	}

	features := BuildFeatures(window, series, nil, DefaultThresholds())
	fv := features[models.MetricFastingGlucose]
	if fv.TrendSlope == nil {
		t.Fatal("expected slope for 5 samples")
	}
	if math.Abs(*fv.TrendSlope) > 1e-9 {
		t.Fatalf("slope = %v, want 0 for flat series", *fv.TrendSlope)
	}
}
