package report

import (
	"github.com/gq18262121731-source/Health-Management-System-sub001/pkg/common/models"
)

// VisualizationData is the chart-ready projection of an assessment result
// consumed by the dashboard frontends.
type VisualizationData struct {
	Overview        map[string]interface{}   `json:"overview"`
	DimensionScores map[string]float64       `json:"dimension_scores"`
	RiskFactors     []map[string]interface{} `json:"risk_factors"`
	TrendIndicators []map[string]interface{} `json:"trend_indicators"`
}

func BuildVisualizationData(result *models.ComprehensiveAssessmentResult) VisualizationData {
	factors := make([]map[string]interface{}, 0, len(result.TopRiskFactors))
	for _, f := range result.TopRiskFactors {
		factors = append(factors, map[string]interface{}{
			"name":       f.Name,
			"category":   f.Category,
			"priority":   f.Priority,
			"risk_score": f.RiskScore,
			"importance": result.FeatureImportance[f.Name],
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

	return VisualizationData{
		Overview: map[string]interface{}{
			"assessment_id":  result.AssessmentID,
			"user_id":        result.UserID,
			"generated_at":   result.GeneratedAt,
			"overall_score":  result.OverallScore,
			"health_level":   result.HealthLevel,
			"low_confidence": result.LowConfidence,
		},
		DimensionScores: result.DimensionScores,
		RiskFactors:     factors,
		TrendIndicators: trends,
	}
}
