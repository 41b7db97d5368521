package assessment

import (
	"testing"

	"github.com/gq18262121731-source/Health-Management-System-sub001/pkg/common/models"
)

func TestTrendStateClassification(t *testing.T) {
	cases := []struct {
		name          string
		deviation     float64
		higherIsWorse bool
		want          string
	}{
		{"small deviation", 0.5, true, models.TrendStable},
		{"small negative", -0.9, true, models.TrendStable},
		{"rising adverse", 1.5, true, models.TrendWorsening},
		{"falling favourable", -1.5, true, models.TrendImproving},
		{"falling adverse for steps", -1.5, false, models.TrendWorsening},
		{"rising favourable for steps", 1.5, false, models.TrendImproving},
		{"large either way", 2.5, true, models.TrendSignificant},
		{"large negative", -2.0, true, models.TrendSignificant},
	}
	for _, tc := range cases {
		if got := trendState(tc.deviation, tc.higherIsWorse); got != tc.want {
			t.Errorf("%s: trendState(%v, %v) = %s, want %s",
				tc.name, tc.deviation, tc.higherIsWorse, got, tc.want)
		}
	}
}

func TestDetectTrendsOmitsMissingBaselines(t *testing.T) {
	deviation := 1.5
	features := map[string]*models.FeatureVector{
		models.MetricSystolicBP: {Metric: models.MetricSystolicBP, Mean: 135, DeviationFromBaseline: &deviation},
		models.MetricSleepHours: {Metric: models.MetricSleepHours, Mean: 7},
	}

	trends := DetectTrends(features, DefaultThresholds())
	if len(trends) != 1 {
		t.Fatalf("trends = %d, want 1 (sleep has no baseline)", len(trends))
	}
	if trends[0].Metric != models.MetricSystolicBP || trends[0].State != models.TrendWorsening {
		t.Fatalf("unexpected trend: %+v", trends[0])
	}
}

func TestDetectTrendsDeterministicOrder(t *testing.T) {
	d1, d2, d3 := 0.2, 0.3, 0.4
	features := map[string]*models.FeatureVector{
		models.MetricWeight:     {Metric: models.MetricWeight, DeviationFromBaseline: &d1},
		models.MetricSystolicBP: {Metric: models.MetricSystolicBP, DeviationFromBaseline: &d2},
		models.MetricHeartRate:  {Metric: models.MetricHeartRate, DeviationFromBaseline: &d3},
	}

	for trial := 0; trial < 5; trial++ {
		trends := DetectTrends(features, DefaultThresholds())
		want := []string{models.MetricHeartRate, models.MetricSystolicBP, models.MetricWeight}
		for i, metric := range want {
			if trends[i].Metric != metric {
				t.Fatalf("trial %d position %d = %s, want %s", trial, i, trends[i].Metric, metric)
			}
		}
	}
}

func TestTrendRiskScore(t *testing.T) {
	if got := trendRiskScore(models.TrendResult{State: models.TrendStable, Deviation: 0.5}); got != 0 {
		t.Fatalf("stable score = %v, want 0", got)
	}
	if got := trendRiskScore(models.TrendResult{State: models.TrendImproving, Deviation: -1.5}); got != 0 {
		t.Fatalf("improving score = %v, want 0", got)
	}
	if got := trendRiskScore(models.TrendResult{State: models.TrendWorsening, Deviation: 1.0}); got != 35 {
		t.Fatalf("worsening score at 1 sigma = %v, want 35", got)
	}
	if got := trendRiskScore(models.TrendResult{State: models.TrendSignificant, Deviation: 3.0}); got != 100 {
		t.Fatalf("significant score at 3 sigma = %v, want 100", got)
	}
	if got := trendRiskScore(models.TrendResult{State: models.TrendSignificant, Deviation: -6.0}); got != 100 {
		t.Fatalf("significant score clamps at %v, want 100", got)
	}
}
