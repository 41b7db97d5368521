package assessment

import (
	"math"
	"testing"

	"github.com/gq18262121731-source/Health-Management-System-sub001/pkg/common/models"
)

func TestEffectiveWeightsSumToOne(t *testing.T) {
	engine, err := NewFusionEngine(DefaultFusionWeights(), 5)
	if err != nil {
		t.Fatal(err)
	}

	cases := []map[string]bool{
		{models.CategoryDisease: true, models.CategoryLifestyle: true, models.CategoryTrend: true},
		{models.CategoryDisease: true, models.CategoryLifestyle: true},
		{models.CategoryDisease: true},
		{models.CategoryLifestyle: true, models.CategoryTrend: true},
	}
	for _, present := range cases {
		weights := engine.effectiveWeights(present)
		var sum float64
		for _, w := range weights {
			sum += w
		}
		if math.Abs(sum-1) > 1e-9 {
			t.Errorf("weights for %v sum to %v, want 1.0", present, sum)
		}
		for dim := range weights {
			if !present[dim] {
				t.Errorf("absent dimension %s received weight %v", dim, weights[dim])
			}
		}
	}

	if weights := engine.effectiveWeights(map[string]bool{}); len(weights) != 0 {
		t.Fatalf("expected no weights with nothing present, got %v", weights)
	}
}

func TestEffectiveWeightsRedistribution(t *testing.T) {
	engine, err := NewFusionEngine(FusionWeights{Disease: 0.4, Lifestyle: 0.3, Trend: 0.3}, 5)
	if err != nil {
		t.Fatal(err)
	}

	// Trend absent: 0.4/0.7 and 0.3/0.7.
	weights := engine.effectiveWeights(map[string]bool{
		models.CategoryDisease:   true,
		models.CategoryLifestyle: true,
	})
	if math.Abs(weights[models.CategoryDisease]-4.0/7.0) > 1e-9 {
		t.Fatalf("disease weight = %v, want 4/7", weights[models.CategoryDisease])
	}
	if math.Abs(weights[models.CategoryLifestyle]-3.0/7.0) > 1e-9 {
		t.Fatalf("lifestyle weight = %v, want 3/7", weights[models.CategoryLifestyle])
	}
}

func TestFuseOverallScore(t *testing.T) {
	engine, err := NewFusionEngine(DefaultFusionWeights(), 5)
	if err != nil {
		t.Fatal(err)
	}

	out := engine.Fuse(fusionInput{
		diseases: []models.DiseaseRiskResult{
			{Disease: DiseaseHypertension, RiskScore: 50, RiskLevel: models.RiskLevelGrade1},
		},
		lifestyle: &models.LifestyleRiskResult{
			OverallScore:    20,
			DimensionScores: map[string]float64{DimensionSleep: 20},
		},
		trends: []models.TrendResult{
			{Metric: models.MetricSystolicBP, State: models.TrendStable},
		},
		discount: 1,
	})

	// 100 - (0.4*50 + 0.3*20 + 0.3*0) = 74
	if out.overallScore != 74 {
		t.Fatalf("overall = %v, want 74", out.overallScore)
	}
	if out.healthLevel != models.HealthSuboptimal {
		t.Fatalf("health level = %s, want suboptimal", out.healthLevel)
	}
}

func TestFuseDiscountScalesDimensions(t *testing.T) {
	engine, err := NewFusionEngine(DefaultFusionWeights(), 5)
	if err != nil {
		t.Fatal(err)
	}

	in := fusionInput{
		diseases: []models.DiseaseRiskResult{
			{Disease: DiseaseHypertension, RiskScore: 80, RiskLevel: models.RiskLevelGrade2},
		},
		discount: 0.5,
	}
	out := engine.Fuse(in)
	if out.dimensionScores[models.CategoryDisease] != 40 {
		t.Fatalf("discounted disease score = %v, want 40", out.dimensionScores[models.CategoryDisease])
	}
}

func TestHealthLevelBands(t *testing.T) {
	cases := []struct {
		score float64
		want  string
	}{
		{95, models.HealthExcellent},
		{90, models.HealthExcellent},
		{85, models.HealthGood},
		{80, models.HealthGood},
		{75, models.HealthSuboptimal},
		{70, models.HealthSuboptimal},
		{60, models.HealthAttention},
		{55, models.HealthAttention},
		{54.9, models.HealthRisk},
		{0, models.HealthRisk},
	}
	for _, tc := range cases {
		if got := healthLevelForScore(tc.score); got != tc.want {
			t.Errorf("healthLevelForScore(%v) = %s, want %s", tc.score, got, tc.want)
		}
	}
}

func TestTOPSISRanksBySeverityAndUrgency(t *testing.T) {
	factors := []models.RiskFactor{
		{Name: "mild", Category: models.CategoryLifestyle, RiskScore: 25, Urgency: 0.3},
		{Name: "severe", Category: models.CategoryDisease, RiskScore: 90, Urgency: 1.0},
		{Name: "middling", Category: models.CategoryTrend, RiskScore: 55, Urgency: 0.7},
	}

	ranked := rankByTOPSIS(factors)
	if ranked[0].factor.Name != "severe" || ranked[2].factor.Name != "mild" {
		t.Fatalf("unexpected order: %s, %s, %s",
			ranked[0].factor.Name, ranked[1].factor.Name, ranked[2].factor.Name)
	}
	for i := 1; i < len(ranked); i++ {
		if ranked[i].closeness > ranked[i-1].closeness {
			t.Fatalf("closeness not descending at %d", i)
		}
	}
}

func TestTOPSISScaleInvariantOrdering(t *testing.T) {
	base := []models.RiskFactor{
		{Name: "a", Category: models.CategoryDisease, RiskScore: 80, Urgency: 0.5},
		{Name: "b", Category: models.CategoryDisease, RiskScore: 60, Urgency: 0.5},
		{Name: "c", Category: models.CategoryDisease, RiskScore: 30, Urgency: 0.5},
	}
	scaled := make([]models.RiskFactor, len(base))
	copy(scaled, base)
	for i := range scaled {
		scaled[i].RiskScore *= 0.5
	}

	before := rankByTOPSIS(base)
	after := rankByTOPSIS(scaled)
	for i := range before {
		if before[i].factor.Name != after[i].factor.Name {
			t.Fatalf("order changed under scaling at position %d: %s vs %s",
				i, before[i].factor.Name, after[i].factor.Name)
		}
	}
}

func TestTOPSISTieBreakDeterministic(t *testing.T) {
	// Identical criteria: disease outranks lifestyle outranks trend, then
	// alphabetical.
	factors := []models.RiskFactor{
		{Name: "zz_trend", Category: models.CategoryTrend, RiskScore: 50, Urgency: 0.5},
		{Name: "sleep", Category: models.CategoryLifestyle, RiskScore: 50, Urgency: 0.5},
		{Name: "hypertension", Category: models.CategoryDisease, RiskScore: 50, Urgency: 0.5},
		{Name: "diabetes", Category: models.CategoryDisease, RiskScore: 50, Urgency: 0.5},
	}

	want := []string{"diabetes", "hypertension", "sleep", "zz_trend"}
	for trial := 0; trial < 5; trial++ {
		ranked := rankByTOPSIS(factors)
		for i, name := range want {
			if ranked[i].factor.Name != name {
				t.Fatalf("trial %d position %d = %s, want %s", trial, i, ranked[i].factor.Name, name)
			}
		}
	}
}

func TestFuseTopNLimit(t *testing.T) {
	engine, err := NewFusionEngine(DefaultFusionWeights(), 2)
	if err != nil {
		t.Fatal(err)
	}

	out := engine.Fuse(fusionInput{
		diseases: []models.DiseaseRiskResult{
			{Disease: DiseaseHypertension, RiskScore: 90, RiskLevel: models.RiskLevelGrade3},
			{Disease: DiseaseDiabetes, RiskScore: 70, RiskLevel: models.RiskLevelGrade2},
			{Disease: DiseaseDyslipidemia, RiskScore: 50, RiskLevel: models.RiskLevelGrade1},
		},
		discount: 1,
	})

	if len(out.topRiskFactors) != 2 {
		t.Fatalf("top factors = %d, want 2", len(out.topRiskFactors))
	}
	if out.topRiskFactors[0].Name != DiseaseHypertension {
		t.Fatalf("top factor = %s, want hypertension", out.topRiskFactors[0].Name)
	}
	// Importance still covers all ranked factors, not just the cutoff.
	if len(out.featureImportance) != 3 {
		t.Fatalf("feature importance entries = %d, want 3", len(out.featureImportance))
	}
	var sum float64
	for _, v := range out.featureImportance {
		sum += v
	}
	if math.Abs(sum-1) > 1e-9 {
		t.Fatalf("importance sums to %v, want 1.0", sum)
	}
}

func TestFuseStableTrendsExcludedFromFactors(t *testing.T) {
	engine, err := NewFusionEngine(DefaultFusionWeights(), 5)
	if err != nil {
		t.Fatal(err)
	}

	out := engine.Fuse(fusionInput{
		trends: []models.TrendResult{
			{Metric: models.MetricSystolicBP, State: models.TrendStable},
			{Metric: models.MetricWeight, State: models.TrendImproving, Deviation: -1.5},
		},
		discount: 1,
	})

	if len(out.topRiskFactors) != 0 {
		t.Fatalf("stable/improving trends must not surface as risk factors, got %v", out.topRiskFactors)
	}
}

func TestFusionWeightsValidate(t *testing.T) {
	if err := (FusionWeights{Disease: -0.1, Lifestyle: 0.5, Trend: 0.6}).Validate(); err == nil {
		t.Fatal("expected error for negative weight")
	}
	if err := (FusionWeights{}).Validate(); err == nil {
		t.Fatal("expected error for all-zero weights")
	}
	if err := DefaultFusionWeights().Validate(); err != nil {
		t.Fatalf("default weights must validate: %v", err)
	}
}
