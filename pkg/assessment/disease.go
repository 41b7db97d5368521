package assessment

import (
	"fmt"
	"math"

	"github.com/gq18262121731-source/Health-Management-System-sub001/pkg/common/models"
)

const (
	DiseaseHypertension = "hypertension"
	DiseaseDiabetes     = "diabetes"
	DiseaseDyslipidemia = "dyslipidemia"
)

// RiskAssessor scores one condition from the window's feature vectors.
// Assess returns nil when no sub-metric produced usable evidence; a missing
// result means "insufficient evidence", never "zero risk".
type RiskAssessor interface {
	Disease() string
	Assess(features map[string]*models.FeatureVector) *models.DiseaseRiskResult
}

// fuzzyDiseaseAssessor is the single implementation behind all conditions,
// parameterized by the disease name and its metric list. The registry of
// assessors is fixed at engine construction.
type fuzzyDiseaseAssessor struct {
	name       string
	metrics    []string
	thresholds ThresholdsConfig
}

func newDiseaseAssessors(thresholds ThresholdsConfig) []RiskAssessor {
	assessors := make([]RiskAssessor, 0, len(thresholds.Diseases))
	for _, spec := range thresholds.Diseases {
		assessors = append(assessors, &fuzzyDiseaseAssessor{
			name:       spec.Name,
			metrics:    spec.Metrics,
			thresholds: thresholds,
		})
	}
	return assessors
}

func (a *fuzzyDiseaseAssessor) Disease() string {
	return a.name
}

func (a *fuzzyDiseaseAssessor) Assess(features map[string]*models.FeatureVector) *models.DiseaseRiskResult {
	var (
		worst          = -1.0
		evidence       []string
		complianceSum  float64
		complianceSeen int
	)

	for _, metric := range a.metrics {
		fv, ok := features[metric]
		if !ok {
			continue
		}
		mt, ok := a.thresholds.Metrics[metric]
		if !ok {
			continue
		}

		score := abnormalMembership(fv.Mean, mt.Fuzzy.Low, mt.Fuzzy.High) * 100
		if score > worst {
			worst = score
		}
		evidence = append(evidence, fmt.Sprintf(
			"%s: mean %.1f over %d samples scores %.0f against transition band %.1f-%.1f",
			metric, fv.Mean, fv.SampleCount, score, mt.Fuzzy.Low, mt.Fuzzy.High))

		if fv.ComplianceRate != nil {
			complianceSum += *fv.ComplianceRate
			complianceSeen++
		}
		if fv.TrendSlope != nil && math.Abs(*fv.TrendSlope) >= 0.1 {
			direction := "rising"
			if *fv.TrendSlope < 0 {
				direction = "falling"
			}
			evidence = append(evidence, fmt.Sprintf("%s: %s at %.2f units/day", metric, direction, *fv.TrendSlope))
		}
	}

	// No sub-metric had data in the window; the condition is unassessable.
	if worst < 0 {
		return nil
	}

	return &models.DiseaseRiskResult{
		Disease:       a.name,
		RiskLevel:     riskLevelForScore(worst),
		RiskScore:     worst,
		ControlStatus: controlStatus(complianceSum, complianceSeen),
		Evidence:      evidence,
	}
}

// controlStatus reflects historical compliance rather than the instantaneous
// fuzzy score, so one bad reading does not override a well-managed history.
func controlStatus(sum float64, seen int) string {
	if seen == 0 {
		return models.ControlStatusUnknown
	}
	avg := sum / float64(seen)
	switch {
	case avg >= 0.8:
		return models.ControlStatusWell
	case avg >= 0.5:
		return models.ControlStatusModerate
	default:
		return models.ControlStatusPoor
	}
}
