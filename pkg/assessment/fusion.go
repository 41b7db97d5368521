package assessment

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/gq18262121731-source/Health-Management-System-sub001/pkg/common/models"
)

// FusionWeights is the AHP-derived weight vector over the three risk
// dimensions. The defaults are domain policy, not learned values, and stay
// configurable for that reason.
type FusionWeights struct {
	Disease   float64 `yaml:"disease" json:"disease"`
	Lifestyle float64 `yaml:"lifestyle" json:"lifestyle"`
	Trend     float64 `yaml:"trend" json:"trend"`
}

func DefaultFusionWeights() FusionWeights {
	return FusionWeights{Disease: 0.4, Lifestyle: 0.3, Trend: 0.3}
}

func (w FusionWeights) Validate() error {
	if w.Disease < 0 || w.Lifestyle < 0 || w.Trend < 0 {
		return errors.New("fusion weights must be non-negative")
	}
	if w.Disease+w.Lifestyle+w.Trend <= 0 {
		return errors.New("fusion weights must sum to a positive value")
	}
	return nil
}

// FusionEngine combines dimension scores into the overall verdict and ranks
// individual risk factors by TOPSIS closeness.
type FusionEngine struct {
	weights FusionWeights
	topN    int
}

func NewFusionEngine(weights FusionWeights, topN int) (*FusionEngine, error) {
	if err := weights.Validate(); err != nil {
		return nil, err
	}
	if topN <= 0 {
		topN = 5
	}
	return &FusionEngine{weights: weights, topN: topN}, nil
}

type fusionInput struct {
	diseases  []models.DiseaseRiskResult
	lifestyle *models.LifestyleRiskResult
	trends    []models.TrendResult
	discount  float64 // confidence multiplier in (0,1], from completeness
}

type fusionOutput struct {
	overallScore      float64
	healthLevel       string
	dimensionScores   map[string]float64
	topRiskFactors    []models.RiskFactor
	featureImportance map[string]float64
	recommendations   []string
}

func (e *FusionEngine) Fuse(in fusionInput) fusionOutput {
	if in.discount <= 0 || in.discount > 1 {
		in.discount = 1
	}

	dimScores, present := e.dimensionScores(in)
	weights := e.effectiveWeights(present)

	var riskSum float64
	for dim, score := range dimScores {
		riskSum += weights[dim] * score
	}
	overall := 100 - riskSum
	if overall < 0 {
		overall = 0
	}

	factors := collectRiskFactors(in)
	ranked := rankByTOPSIS(factors)

	importance := make(map[string]float64, len(ranked))
	var closenessSum float64
	for _, rf := range ranked {
		closenessSum += rf.closeness
	}
	for _, rf := range ranked {
		if closenessSum > 0 {
			importance[rf.factor.Name] = rf.closeness / closenessSum
		}
	}

	top := make([]models.RiskFactor, 0, e.topN)
	for i, rf := range ranked {
		if i >= e.topN {
			break
		}
		top = append(top, rf.factor)
	}

	level := healthLevelForScore(overall)

	return fusionOutput{
		overallScore:      round1(overall),
		healthLevel:       level,
		dimensionScores:   dimScores,
		topRiskFactors:    top,
		featureImportance: importance,
		recommendations:   buildRecommendations(level, top),
	}
}

// dimensionScores reduces each dimension to a single 0-100 risk score with
// the completeness discount applied. The bool map records which dimensions
// actually contributed data.
func (e *FusionEngine) dimensionScores(in fusionInput) (map[string]float64, map[string]bool) {
	scores := make(map[string]float64)
	present := make(map[string]bool)

	if len(in.diseases) > 0 {
		var worst float64
		for _, d := range in.diseases {
			if d.RiskScore > worst {
				worst = d.RiskScore
			}
		}
		scores[models.CategoryDisease] = round1(worst * in.discount)
		present[models.CategoryDisease] = true
	}

	if in.lifestyle != nil {
		scores[models.CategoryLifestyle] = round1(in.lifestyle.OverallScore * in.discount)
		present[models.CategoryLifestyle] = true
	}

	if len(in.trends) > 0 {
		var worst float64
		for _, t := range in.trends {
			if s := trendRiskScore(t); s > worst {
				worst = s
			}
		}
		scores[models.CategoryTrend] = round1(worst * in.discount)
		present[models.CategoryTrend] = true
	}

	return scores, present
}

// effectiveWeights redistributes the weight of absent dimensions
// proportionally across the present ones, so the weights in use always sum
// to 1 and an empty dimension never silently counts as perfect or terrible.
func (e *FusionEngine) effectiveWeights(present map[string]bool) map[string]float64 {
	base := map[string]float64{
		models.CategoryDisease:   e.weights.Disease,
		models.CategoryLifestyle: e.weights.Lifestyle,
		models.CategoryTrend:     e.weights.Trend,
	}

	var total float64
	for dim, w := range base {
		if present[dim] {
			total += w
		}
	}
	if total == 0 {
		return map[string]float64{}
	}

	effective := make(map[string]float64, len(base))
	for dim, w := range base {
		if present[dim] {
			effective[dim] = w / total
		}
	}
	return effective
}

func healthLevelForScore(score float64) string {
	switch {
	case score >= 90:
		return models.HealthExcellent
	case score >= 80:
		return models.HealthGood
	case score >= 70:
		return models.HealthSuboptimal
	case score >= 55:
		return models.HealthAttention
	default:
		return models.HealthRisk
	}
}

// collectRiskFactors gathers the atomic factors TOPSIS ranks: every assessed
// disease, every lifestyle dimension with meaningful risk, and every
// non-stable trend.
func collectRiskFactors(in fusionInput) []models.RiskFactor {
	var factors []models.RiskFactor

	for _, d := range in.diseases {
		factors = append(factors, models.RiskFactor{
			Name:      d.Disease,
			Category:  models.CategoryDisease,
			Priority:  priorityForRiskLevel(d.RiskLevel),
			RiskScore: d.RiskScore,
			Urgency:   diseaseUrgency(d.RiskLevel),
			Evidence:  d.Evidence,
		})
	}

	if in.lifestyle != nil {
		for dim, score := range in.lifestyle.DimensionScores {
			if score < 20 {
				continue
			}
			factors = append(factors, models.RiskFactor{
				Name:      dim,
				Category:  models.CategoryLifestyle,
				Priority:  priorityForRiskLevel(riskLevelForScore(score)),
				RiskScore: score,
				Urgency:   0.3 + 0.3*score/100,
				Evidence:  []string{fmt.Sprintf("%s dimension scored %.0f", dim, score)},
			})
		}
	}

	for _, t := range in.trends {
		if t.State != models.TrendWorsening && t.State != models.TrendSignificant {
			continue
		}
		urgency := 0.7
		priority := models.PriorityMedium
		if t.State == models.TrendSignificant {
			urgency = 0.9
			priority = models.PriorityHigh
		}
		factors = append(factors, models.RiskFactor{
			Name:      t.Metric + "_trend",
			Category:  models.CategoryTrend,
			Priority:  priority,
			RiskScore: trendRiskScore(t),
			Urgency:   urgency,
			Evidence:  []string{fmt.Sprintf("%s deviates %.1f standard deviations from personal baseline", t.Metric, t.Deviation)},
		})
	}

	return factors
}

func priorityForRiskLevel(level string) string {
	switch level {
	case models.RiskLevelNormal:
		return models.PriorityLow
	case models.RiskLevelElevated:
		return models.PriorityMedium
	case models.RiskLevelGrade1:
		return models.PriorityHigh
	default:
		return models.PriorityCritical
	}
}

// diseaseUrgency encodes that a condition past grade2 demands action sooner
// than a static elevated reading of the same severity trendline.
func diseaseUrgency(level string) float64 {
	switch level {
	case models.RiskLevelNormal:
		return 0.2
	case models.RiskLevelElevated:
		return 0.4
	case models.RiskLevelGrade1:
		return 0.6
	case models.RiskLevelGrade2:
		return 0.8
	default:
		return 1.0
	}
}

type rankedFactor struct {
	factor    models.RiskFactor
	closeness float64
}

var categoryOrder = map[string]int{
	models.CategoryDisease:   0,
	models.CategoryLifestyle: 1,
	models.CategoryTrend:     2,
}

// rankByTOPSIS scores each factor's 2D criteria vector (severity, urgency)
// by relative closeness to the ideal-best (1,1) against ideal-worst (0,0)
// and sorts descending. Ties break by category then name, for determinism.
func rankByTOPSIS(factors []models.RiskFactor) []rankedFactor {
	ranked := make([]rankedFactor, 0, len(factors))
	for _, f := range factors {
		severity := clamp01(f.RiskScore / 100)
		urgency := clamp01(f.Urgency)

		dBest := math.Hypot(1-severity, 1-urgency)
		dWorst := math.Hypot(severity, urgency)

		closeness := 0.0
		if dBest+dWorst > 0 {
			closeness = dWorst / (dBest + dWorst)
		}
		ranked = append(ranked, rankedFactor{factor: f, closeness: closeness})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].closeness != ranked[j].closeness {
			return ranked[i].closeness > ranked[j].closeness
		}
		ci, cj := categoryOrder[ranked[i].factor.Category], categoryOrder[ranked[j].factor.Category]
		if ci != cj {
			return ci < cj
		}
		return ranked[i].factor.Name < ranked[j].factor.Name
	})

	return ranked
}

func buildRecommendations(level string, top []models.RiskFactor) []string {
	var recs []string

	switch level {
	case models.HealthExcellent:
		recs = append(recs, "Indicators look excellent; keep up the current routine and measurement cadence.")
	case models.HealthGood:
		recs = append(recs, "Overall condition is good; maintain current habits and continue regular measurements.")
	case models.HealthSuboptimal:
		recs = append(recs, "Some indicators are drifting; review the flagged factors and re-measure within a week.")
	case models.HealthAttention:
		recs = append(recs, "Several indicators need attention; consider discussing the flagged factors with a physician.")
	default:
		recs = append(recs, "Multiple indicators are at risk levels; a medical consultation is recommended soon.")
	}

	for _, f := range top {
		switch f.Category {
		case models.CategoryDisease:
			recs = append(recs, fmt.Sprintf("Monitor %s closely and keep related measurements frequent.", f.Name))
		case models.CategoryLifestyle:
			recs = append(recs, fmt.Sprintf("Improve the %s routine; small consistent changes move this score quickly.", f.Name))
		case models.CategoryTrend:
			recs = append(recs, fmt.Sprintf("Recent change detected (%s); verify with additional measurements over the next days.", f.Name))
		}
	}

	return recs
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
