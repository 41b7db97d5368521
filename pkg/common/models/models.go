package models

import (
	"time"
)

// Metric names recognised by the assessment engine.
const (
	MetricSystolicBP          = "systolic_bp"
	MetricDiastolicBP         = "diastolic_bp"
	MetricFastingGlucose      = "fasting_glucose"
	MetricPostprandialGlucose = "postprandial_glucose"
	MetricTotalCholesterol    = "total_cholesterol"
	MetricLDLCholesterol      = "ldl_cholesterol"
	MetricHeartRate           = "heart_rate"
	MetricSleepHours          = "sleep_hours"
	MetricSteps               = "steps"
	MetricWeight              = "weight"
)

// MetricSeries is an ordered time series of measurements for a single metric.
// Timestamps and Values always have equal length and timestamps are strictly
// increasing; construction enforces both.
type MetricSeries struct {
	MetricName string      `json:"metric_name"`
	Unit       string      `json:"unit"`
	Timestamps []time.Time `json:"timestamps"`
	Values     []float64   `json:"values"`
}

func (s *MetricSeries) Len() int {
	return len(s.Values)
}

// AssessmentWindow describes the period under assessment and which metrics
// must be present for the assessment to be considered complete.
type AssessmentWindow struct {
	Start           time.Time `json:"start"`
	End             time.Time `json:"end"`
	RequiredMetrics []string  `json:"required_metrics"`
	OptionalMetrics []string  `json:"optional_metrics,omitempty"`
}

func (w AssessmentWindow) Days() float64 {
	return w.End.Sub(w.Start).Hours() / 24
}

// Completeness levels.
const (
	CompletenessComplete     = "complete"
	CompletenessPartial      = "partial"
	CompletenessInsufficient = "insufficient"
)

type CompletenessReport struct {
	Level         string             `json:"level"`
	OverallRate   float64            `json:"overall_rate"`
	PerMetricRate map[string]float64 `json:"per_metric_rate"`
	Warnings      []string           `json:"warnings,omitempty"`
}

// FeatureVector holds the derived numbers for one metric over one window.
// Optional features are pointers: nil means the feature could not be derived
// and downstream scorers must treat it as missing evidence, not as zero.
type FeatureVector struct {
	Metric                 string   `json:"metric"`
	SampleCount            int      `json:"sample_count"`
	Mean                   float64  `json:"mean"`
	Std                    *float64 `json:"std,omitempty"`
	CoefficientOfVariation *float64 `json:"coefficient_of_variation,omitempty"`
	TrendSlope             *float64 `json:"trend_slope,omitempty"`
	ComplianceRate         *float64 `json:"compliance_rate,omitempty"`
	DeviationFromBaseline  *float64 `json:"deviation_from_baseline,omitempty"`
}

// Risk levels, ordered from best to worst.
const (
	RiskLevelNormal   = "normal"
	RiskLevelElevated = "elevated"
	RiskLevelGrade1   = "grade1"
	RiskLevelGrade2   = "grade2"
	RiskLevelGrade3   = "grade3"
)

// Control statuses derived from historical compliance.
const (
	ControlStatusWell     = "well-controlled"
	ControlStatusModerate = "moderately-controlled"
	ControlStatusPoor     = "poorly-controlled"
	ControlStatusUnknown  = "unknown"
)

type DiseaseRiskResult struct {
	Disease       string   `json:"disease"`
	RiskLevel     string   `json:"risk_level"`
	RiskScore     float64  `json:"risk_score"`
	ControlStatus string   `json:"control_status"`
	Evidence      []string `json:"evidence,omitempty"`
}

type LifestyleRiskResult struct {
	DimensionScores  map[string]float64 `json:"dimension_scores"`
	OverallScore     float64            `json:"overall_score"`
	OverallRiskLevel string             `json:"overall_risk_level"`
	Evidence         []string           `json:"evidence,omitempty"`
}

// Trend states.
const (
	TrendStable      = "stable"
	TrendImproving   = "improving"
	TrendWorsening   = "worsening"
	TrendSignificant = "significant_change"
)

type TrendResult struct {
	Metric    string  `json:"metric"`
	Deviation float64 `json:"deviation"`
	State     string  `json:"state"`
}

// Risk factor categories and priorities.
const (
	CategoryDisease   = "disease"
	CategoryLifestyle = "lifestyle"
	CategoryTrend     = "trend"
)

const (
	PriorityLow      = "low"
	PriorityMedium   = "medium"
	PriorityHigh     = "high"
	PriorityCritical = "critical"
)

// RiskFactor is the atomic unit ranked by the fusion engine.
type RiskFactor struct {
	Name      string   `json:"name"`
	Category  string   `json:"category"`
	Priority  string   `json:"priority"`
	RiskScore float64  `json:"risk_score"`
	Urgency   float64  `json:"urgency"`
	Evidence  []string `json:"evidence,omitempty"`
}

// Health levels, the five-tier banding of the overall score.
const (
	HealthExcellent  = "excellent"
	HealthGood       = "good"
	HealthSuboptimal = "suboptimal"
	HealthAttention  = "attention"
	HealthRisk       = "risk"
)

// ComprehensiveAssessmentResult is the final verdict for one assessment run.
// Created once, never mutated.
type ComprehensiveAssessmentResult struct {
	AssessmentID      string                `json:"assessment_id"`
	UserID            string                `json:"user_id"`
	GeneratedAt       time.Time             `json:"generated_at"`
	Window            AssessmentWindow      `json:"window"`
	OverallScore      float64               `json:"overall_score"`
	HealthLevel       string                `json:"health_level"`
	DimensionScores   map[string]float64    `json:"dimension_scores"`
	TopRiskFactors    []RiskFactor          `json:"top_risk_factors"`
	Recommendations   []string              `json:"recommendations"`
	FeatureImportance map[string]float64    `json:"feature_importance"`
	DiseaseRisks      []DiseaseRiskResult   `json:"disease_risks,omitempty"`
	Lifestyle         *LifestyleRiskResult  `json:"lifestyle,omitempty"`
	Trends            []TrendResult         `json:"trends,omitempty"`
	Completeness      CompletenessReport    `json:"completeness"`
	LowConfidence     bool                  `json:"low_confidence"`
}

// Baseline is a user's historical profile for one metric, computed over a
// prior window (typically 90 days). Absent for new users.
type Baseline struct {
	Metric     string  `json:"metric"`
	Mean       float64 `json:"mean"`
	Std        float64 `json:"std"`
	P25        float64 `json:"p25"`
	P75        float64 `json:"p75"`
	WindowDays int     `json:"window_days"`
}

// UserProfile carries the non-measurement context an assessment uses:
// age for activity targets and qualitative diet intake levels.
type UserProfile struct {
	Age  int               `json:"age,omitempty"`
	Diet map[string]string `json:"diet,omitempty"` // salt/oil/sugar/vegetable -> low|moderate|high
}

// API request/response models.

type ReadingInput struct {
	Metric     string    `json:"metric"`
	Value      float64   `json:"value"`
	Unit       string    `json:"unit,omitempty"`
	MeasuredAt time.Time `json:"measured_at"`
}

type IngestReadingsRequest struct {
	UserID   string         `json:"user_id"`
	Readings []ReadingInput `json:"readings"`
}

type IngestReadingsResponse struct {
	Accepted int       `json:"accepted"`
	Rejected int       `json:"rejected"`
	Warnings []string  `json:"warnings,omitempty"`
	Received time.Time `json:"received"`
}

type OnDemandAssessmentRequest struct {
	UserID      string     `json:"user_id"`
	TriggeredBy string     `json:"triggered_by"`
	Start       *time.Time `json:"start,omitempty"`
	End         *time.Time `json:"end,omitempty"`
	CustomDays  *int       `json:"custom_days,omitempty"`
}

type ScheduledAssessmentRequest struct {
	UserID string `json:"user_id"`
	Period string `json:"period"` // daily, weekly, monthly
}

// Event bus model for assessment lifecycle events.
type Event struct {
	ID        string                 `json:"id"`
	Type      string                 `json:"type"` // assessment.completed, assessment.failed
	Source    string                 `json:"source"`
	Data      map[string]interface{} `json:"data"`
	Timestamp time.Time              `json:"timestamp"`
	Metadata  map[string]string      `json:"metadata,omitempty"`
}
