package report

import (
	"fmt"
	"time"

	"github.com/gq18262121731-source/Health-Management-System-sub001/pkg/common/models"
)

// Report audiences. The assembler itself is audience-agnostic; renderers
// decide what to show whom.
const (
	AudienceElderly   = "elderly"
	AudienceFamily    = "family"
	AudienceCommunity = "community"
)

// TemplateData flattens an assessment result into the variable map report
// templates consume. Pure mapping, no scoring: every field any of the three
// audience renderings needs must be preserved here.
func TemplateData(result *models.ComprehensiveAssessmentResult) map[string]interface{} {
	factors := make([]map[string]interface{}, 0, len(result.TopRiskFactors))
	for i, f := range result.TopRiskFactors {
		factors = append(factors, map[string]interface{}{
			"rank":       i + 1,
			"name":       f.Name,
			"category":   f.Category,
			"priority":   f.Priority,
			"risk_score": f.RiskScore,
			"evidence":   f.Evidence,
		})
	}

	diseases := make([]map[string]interface{}, 0, len(result.DiseaseRisks))
	for _, d := range result.DiseaseRisks {
		diseases = append(diseases, map[string]interface{}{
			"disease":        d.Disease,
			"risk_level":     d.RiskLevel,
			"risk_score":     d.RiskScore,
			"control_status": d.ControlStatus,
			"evidence":       d.Evidence,
		})
	}

	trends := make([]map[string]interface{}, 0, len(result.Trends))
	for _, t := range result.Trends {
		trends = append(trends, map[string]interface{}{
			"metric":    t.Metric,
			"state":     t.State,
			"deviation": t.Deviation,
		})
	}

	data := map[string]interface{}{
		"assessment_id":      result.AssessmentID,
		"user_id":            result.UserID,
		"generated_at":       result.GeneratedAt.Format(time.RFC3339),
		"window_start":       result.Window.Start.Format("2006-01-02"),
		"window_end":         result.Window.End.Format("2006-01-02"),
		"overall_score":      result.OverallScore,
		"health_level":       result.HealthLevel,
		"dimension_scores":   result.DimensionScores,
		"top_risk_factors":   factors,
		"recommendations":    result.Recommendations,
		"feature_importance": result.FeatureImportance,
		"disease_risks":      diseases,
		"trends":             trends,
		"completeness_level": result.Completeness.Level,
		"completeness_rate":  result.Completeness.OverallRate,
		"warnings":           result.Completeness.Warnings,
		"low_confidence":     result.LowConfidence,
	}

	if result.Lifestyle != nil {
		data["lifestyle_scores"] = result.Lifestyle.DimensionScores
		data["lifestyle_level"] = result.Lifestyle.OverallRiskLevel
	}

	return data
}

// Renderer turns assembled template data into a final document. HTML/PDF
// renderers live outside this module; the plain-text renderer below is the
// built-in fallback.
type Renderer interface {
	Render(audience string, data map[string]interface{}) (string, error)
}

type TextRenderer struct{}

func (TextRenderer) Render(audience string, data map[string]interface{}) (string, error) {
	switch audience {
	case AudienceElderly, AudienceFamily, AudienceCommunity:
	default:
		return "", fmt.Errorf("unknown audience %q", audience)
	}

	out := fmt.Sprintf("Health Assessment %v (%v to %v)\n", data["assessment_id"], data["window_start"], data["window_end"])
	out += fmt.Sprintf("Overall: %.1f (%v)\n", data["overall_score"], data["health_level"])

	if lc, ok := data["low_confidence"].(bool); ok && lc {
		out += "Note: limited data in this period, results are low-confidence.\n"
	}

	if recs, ok := data["recommendations"].([]string); ok {
		out += "Recommendations:\n"
		for _, r := range recs {
			out += "  - " + r + "\n"
		}
	}

	// The elderly rendering stops at the verdict and advice; detail goes to
	// family and community staff.
	if audience == AudienceElderly {
		return out, nil
	}

	if factors, ok := data["top_risk_factors"].([]map[string]interface{}); ok && len(factors) > 0 {
		out += "Top risk factors:\n"
		for _, f := range factors {
			out += fmt.Sprintf("  %v. %v (%v, priority %v, score %.0f)\n",
				f["rank"], f["name"], f["category"], f["priority"], f["risk_score"])
		}
	}

	if warnings, ok := data["warnings"].([]string); ok && audience == AudienceCommunity {
		for _, w := range warnings {
			out += "Warning: " + w + "\n"
		}
	}

	return out, nil
}
