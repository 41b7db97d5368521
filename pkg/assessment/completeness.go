package assessment

import (
	"fmt"
	"math"
	"sort"

	"github.com/gq18262121731-source/Health-Management-System-sub001/pkg/common/models"
)

// CheckCompleteness gates the pipeline on data coverage. It is a pure
// function: an insufficient window does not abort anything, it only lowers
// confidence downstream.
func CheckCompleteness(window models.AssessmentWindow, series map[string]*models.MetricSeries, thresholds ThresholdsConfig) models.CompletenessReport {
	report := models.CompletenessReport{
		PerMetricRate: make(map[string]float64),
	}

	days := window.Days()
	if days <= 0 {
		report.Level = models.CompletenessInsufficient
		report.Warnings = append(report.Warnings, "assessment window is empty")
		return report
	}

	required := append([]string(nil), window.RequiredMetrics...)
	sort.Strings(required)

	var sum float64
	for _, metric := range required {
		rate := coverageRate(metric, window, series, thresholds)
		report.PerMetricRate[metric] = rate
		sum += rate
		if rate == 0 {
			report.Warnings = append(report.Warnings, fmt.Sprintf("required metric %s has no data in window", metric))
		}
	}
	for _, metric := range window.OptionalMetrics {
		report.PerMetricRate[metric] = coverageRate(metric, window, series, thresholds)
	}

	if len(required) > 0 {
		report.OverallRate = sum / float64(len(required))
	}

	switch {
	case report.OverallRate >= completeThreshold:
		report.Level = models.CompletenessComplete
	case report.OverallRate >= partialThreshold:
		report.Level = models.CompletenessPartial
	default:
		report.Level = models.CompletenessInsufficient
		report.Warnings = append(report.Warnings,
			fmt.Sprintf("data coverage %.0f%% below %.0f%%, assessment confidence reduced", report.OverallRate*100, partialThreshold*100))
	}

	return report
}

const (
	completeThreshold = 0.8
	partialThreshold  = 0.5
)

func coverageRate(metric string, window models.AssessmentWindow, series map[string]*models.MetricSeries, thresholds ThresholdsConfig) float64 {
	s, ok := series[metric]
	if !ok || s.Len() == 0 {
		return 0
	}

	cadence := 1.0
	if mt, ok := thresholds.Metrics[metric]; ok {
		cadence = mt.SamplesPerDay
	}
	expected := window.Days() * cadence
	if expected < 1 {
		expected = 1
	}

	observed := 0
	for _, ts := range s.Timestamps {
		if !ts.Before(window.Start) && !ts.After(window.End) {
			observed++
		}
	}

	return math.Min(1, float64(observed)/expected)
}
