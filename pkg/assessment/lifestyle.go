package assessment

import (
	"fmt"

	"github.com/gq18262121731-source/Health-Management-System-sub001/pkg/common/models"
)

// Lifestyle dimensions.
const (
	DimensionSleep    = "sleep"
	DimensionActivity = "activity"
	DimensionDiet     = "diet"
)

// Diet items and intake levels accepted from the user profile.
const (
	DietSalt      = "salt"
	DietOil       = "oil"
	DietSugar     = "sugar"
	DietVegetable = "vegetable"

	IntakeLow      = "low"
	IntakeModerate = "moderate"
	IntakeHigh     = "high"
)

// Fixed ordinal-to-score table. Salt, oil and sugar are penalised for high
// intake; vegetables for low intake.
var dietScores = map[string]map[string]float64{
	DietSalt:      {IntakeLow: 0, IntakeModerate: 40, IntakeHigh: 80},
	DietOil:       {IntakeLow: 0, IntakeModerate: 40, IntakeHigh: 80},
	DietSugar:     {IntakeLow: 0, IntakeModerate: 40, IntakeHigh: 80},
	DietVegetable: {IntakeHigh: 0, IntakeModerate: 40, IntakeLow: 80},
}

const sleepBandWidth = 3 // hours outside 7-8h for full risk

// LifestyleAssessor scores sleep, activity and diet against age-appropriate
// targets. Dimension weights are configurable; missing dimensions are omitted
// and the remaining weights renormalised.
type LifestyleAssessor struct {
	weights map[string]float64
}

func NewLifestyleAssessor(weights map[string]float64) *LifestyleAssessor {
	if len(weights) == 0 {
		weights = map[string]float64{
			DimensionSleep:    1,
			DimensionActivity: 1,
			DimensionDiet:     1,
		}
	}
	return &LifestyleAssessor{weights: weights}
}

func (a *LifestyleAssessor) Assess(features map[string]*models.FeatureVector, profile *models.UserProfile) *models.LifestyleRiskResult {
	scores := make(map[string]float64)
	var evidence []string

	if fv, ok := features[models.MetricSleepHours]; ok {
		score := bandMembership(fv.Mean, 7, 8, sleepBandWidth) * 100
		scores[DimensionSleep] = score
		evidence = append(evidence, fmt.Sprintf("sleep: averaging %.1fh against 7-8h target", fv.Mean))
	}

	if fv, ok := features[models.MetricSteps]; ok {
		target := stepTarget(profile)
		score := deficitMembership(fv.Mean, target/2, target) * 100
		scores[DimensionActivity] = score
		evidence = append(evidence, fmt.Sprintf("activity: averaging %.0f steps against target %.0f", fv.Mean, target))
	}

	if profile != nil && len(profile.Diet) > 0 {
		var sum float64
		var counted int
		for item, level := range profile.Diet {
			table, ok := dietScores[item]
			if !ok {
				continue
			}
			score, ok := table[level]
			if !ok {
				continue
			}
			sum += score
			counted++
		}
		if counted > 0 {
			scores[DimensionDiet] = sum / float64(counted)
			evidence = append(evidence, fmt.Sprintf("diet: %d intake levels reported", counted))
		}
	}

	if len(scores) == 0 {
		return nil
	}

	var weighted, totalWeight float64
	for dim, score := range scores {
		w := a.weights[dim]
		if w <= 0 {
			w = 1
		}
		weighted += w * score
		totalWeight += w
	}
	overall := weighted / totalWeight

	return &models.LifestyleRiskResult{
		DimensionScores:  scores,
		OverallScore:     overall,
		OverallRiskLevel: riskLevelForScore(overall),
		Evidence:         evidence,
	}
}

// stepTarget returns the daily step target adjusted for age. Without a
// profile the middle-age target applies.
func stepTarget(profile *models.UserProfile) float64 {
	if profile == nil || profile.Age <= 0 {
		return 6000
	}
	switch {
	case profile.Age < 60:
		return 8000
	case profile.Age <= 75:
		return 6000
	default:
		return 4500
	}
}
