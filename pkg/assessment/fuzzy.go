package assessment

import "github.com/gq18262121731-source/Health-Management-System-sub001/pkg/common/models"

// abnormalMembership maps a value to a degree of abnormality in [0,1] over
// the transition band (low, high). Values at or below low are fully normal,
// values at or above high fully abnormal, and the membership rises linearly
// in between. This replaces the legacy hard cutoff: a reading just under the
// diagnostic threshold already carries most of the risk instead of none.
func abnormalMembership(x, low, high float64) float64 {
	if x <= low {
		return 0
	}
	if x >= high {
		return 1
	}
	return (x - low) / (high - low)
}

// deficitMembership is the mirror image for lower-is-worse metrics: values
// at or above high are fully adequate, values at or below low fully deficient.
func deficitMembership(x, low, high float64) float64 {
	if x >= high {
		return 0
	}
	if x <= low {
		return 1
	}
	return (high - x) / (high - low)
}

// bandMembership grades distance from a target band [low, high], reaching
// full membership once the value is more than width away on either side.
// Used for metrics where both too little and too much are bad, like sleep.
func bandMembership(x, low, high, width float64) float64 {
	switch {
	case x >= low && x <= high:
		return 0
	case x < low:
		return clamp01((low - x) / width)
	default:
		return clamp01((x - high) / width)
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// riskLevelForScore maps a 0-100 risk score onto the five discrete levels.
func riskLevelForScore(score float64) string {
	switch {
	case score < 20:
		return models.RiskLevelNormal
	case score < 40:
		return models.RiskLevelElevated
	case score < 65:
		return models.RiskLevelGrade1
	case score < 85:
		return models.RiskLevelGrade2
	default:
		return models.RiskLevelGrade3
	}
}
