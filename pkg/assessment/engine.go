package assessment

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/gq18262121731-source/Health-Management-System-sub001/pkg/common/logger"
	"github.com/gq18262121731-source/Health-Management-System-sub001/pkg/common/models"
)

// Options configures the engine. Bad configuration is the one class of hard
// failure in the system, rejected here and never per-request.
type Options struct {
	Thresholds       ThresholdsConfig
	FusionWeights    FusionWeights
	LifestyleWeights map[string]float64
	TopRiskFactors   int
}

// Engine runs the full assessment pipeline: completeness gate, feature
// engineering, the assessor fan-out and fusion. Assess is a pure function of
// its input; engines are safe for concurrent use across users.
type Engine struct {
	thresholds ThresholdsConfig
	assessors  []RiskAssessor
	lifestyle  *LifestyleAssessor
	fusion     *FusionEngine
}

func NewEngine(opts Options) (*Engine, error) {
	if len(opts.Thresholds.Metrics) == 0 {
		opts.Thresholds = DefaultThresholds()
	}
	if err := opts.Thresholds.Validate(); err != nil {
		return nil, fmt.Errorf("invalid threshold configuration: %w", err)
	}

	if opts.FusionWeights == (FusionWeights{}) {
		opts.FusionWeights = DefaultFusionWeights()
	}
	fusion, err := NewFusionEngine(opts.FusionWeights, opts.TopRiskFactors)
	if err != nil {
		return nil, fmt.Errorf("invalid fusion configuration: %w", err)
	}

	return &Engine{
		thresholds: opts.Thresholds,
		assessors:  newDiseaseAssessors(opts.Thresholds),
		lifestyle:  NewLifestyleAssessor(opts.LifestyleWeights),
		fusion:     fusion,
	}, nil
}

// Thresholds exposes the engine's clinical tables; series construction
// applies the same plausibility bounds the scorers assume.
func (e *Engine) Thresholds() ThresholdsConfig {
	return e.thresholds
}

// Input is everything one assessment run consumes. AssessmentID and
// GeneratedAt may be left zero; they are filled in, and are the only
// non-deterministic parts of the result.
type Input struct {
	AssessmentID string
	UserID       string
	Window       models.AssessmentWindow
	Series       map[string]*models.MetricSeries
	Baselines    map[string]*models.Baseline
	Profile      *models.UserProfile
	GeneratedAt  time.Time
}

func (e *Engine) Assess(ctx context.Context, in Input) (*models.ComprehensiveAssessmentResult, error) {
	if in.UserID == "" {
		return nil, fmt.Errorf("user_id required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if in.AssessmentID == "" {
		in.AssessmentID = uuid.New().String()
	}
	if in.GeneratedAt.IsZero() {
		in.GeneratedAt = time.Now().UTC()
	}

	completeness := CheckCompleteness(in.Window, in.Series, e.thresholds)

	features := BuildFeatures(in.Window, in.Series, in.Baselines, e.thresholds)

	var diseases []models.DiseaseRiskResult
	var diseaseEvidence []string
	for _, assessor := range e.assessors {
		if result := assessor.Assess(features); result != nil {
			diseases = append(diseases, *result)
		} else {
			diseaseEvidence = append(diseaseEvidence,
				fmt.Sprintf("condition %s not assessed: no usable data in window", assessor.Disease()))
		}
	}

	lifestyle := e.lifestyle.Assess(features, in.Profile)
	trends := DetectTrends(features, e.thresholds)

	// An insufficient window discounts every downstream score uniformly
	// instead of aborting; a degraded verdict still beats none.
	discount := 1.0
	lowConfidence := false
	if completeness.Level == models.CompletenessInsufficient {
		discount = completeness.OverallRate
		lowConfidence = true
	}

	fused := e.fusion.Fuse(fusionInput{
		diseases:  diseases,
		lifestyle: lifestyle,
		trends:    trends,
		discount:  discount,
	})

	warnings := append([]string(nil), completeness.Warnings...)
	warnings = append(warnings, diseaseEvidence...)
	completeness.Warnings = warnings

	result := &models.ComprehensiveAssessmentResult{
		AssessmentID:      in.AssessmentID,
		UserID:            in.UserID,
		GeneratedAt:       in.GeneratedAt,
		Window:            in.Window,
		OverallScore:      fused.overallScore,
		HealthLevel:       fused.healthLevel,
		DimensionScores:   fused.dimensionScores,
		TopRiskFactors:    fused.topRiskFactors,
		Recommendations:   fused.recommendations,
		FeatureImportance: fused.featureImportance,
		DiseaseRisks:      diseases,
		Lifestyle:         lifestyle,
		Trends:            trends,
		Completeness:      completeness,
		LowConfidence:     lowConfidence,
	}

	logger.Log.WithFields(map[string]interface{}{
		"assessment_id": result.AssessmentID,
		"user_id":       result.UserID,
		"health_level":  result.HealthLevel,
		"overall_score": result.OverallScore,
		"completeness":  completeness.Level,
	}).Info("Assessment completed")

	return result, nil
}

// DefaultWindow builds a trailing assessment window of the given length with
// the standard required metric set.
func DefaultWindow(end time.Time, days int) models.AssessmentWindow {
	if days <= 0 {
		days = 7
	}
	return models.AssessmentWindow{
		Start: end.AddDate(0, 0, -days),
		End:   end,
		RequiredMetrics: []string{
			models.MetricSystolicBP,
			models.MetricDiastolicBP,
			models.MetricFastingGlucose,
			models.MetricSleepHours,
			models.MetricSteps,
		},
		OptionalMetrics: []string{
			models.MetricPostprandialGlucose,
			models.MetricTotalCholesterol,
			models.MetricLDLCholesterol,
			models.MetricHeartRate,
			models.MetricWeight,
		},
	}
}
