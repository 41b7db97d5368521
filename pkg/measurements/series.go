package measurements

import (
	"github.com/gq18262121731-source/Health-Management-System-sub001/pkg/assessment"
	"github.com/gq18262121731-source/Health-Management-System-sub001/pkg/common/logger"
	"github.com/gq18262121731-source/Health-Management-System-sub001/pkg/common/models"
)

// BuildSeries groups ordered readings into one MetricSeries per metric,
// enforcing the series invariants at construction: strictly increasing
// timestamps and physiologically plausible values. Offending samples are
// dropped with a log line, never clamped into range and never a crash.
func BuildSeries(readings []Reading, thresholds assessment.ThresholdsConfig) map[string]*models.MetricSeries {
	series := make(map[string]*models.MetricSeries)
	dropped := 0

	for _, reading := range readings {
		mt, known := thresholds.Metrics[reading.Metric]
		if known && (reading.Value < mt.Plausible.Low || reading.Value > mt.Plausible.High) {
			dropped++
			logger.Log.WithFields(map[string]interface{}{
				"metric": reading.Metric,
				"value":  reading.Value,
			}).Debug("Dropping implausible reading")
			continue
		}

		s, ok := series[reading.Metric]
		if !ok {
			s = &models.MetricSeries{MetricName: reading.Metric, Unit: reading.Unit}
			series[reading.Metric] = s
		}

		// Readings arrive ordered by time; anything not strictly after the
		// previous sample is a duplicate or a clock regression.
		if n := len(s.Timestamps); n > 0 && !reading.MeasuredAt.After(s.Timestamps[n-1]) {
			dropped++
			logger.Log.WithFields(map[string]interface{}{
				"metric":      reading.Metric,
				"measured_at": reading.MeasuredAt,
			}).Debug("Dropping non-monotonic reading")
			continue
		}

		s.Timestamps = append(s.Timestamps, reading.MeasuredAt)
		s.Values = append(s.Values, reading.Value)
	}

	if dropped > 0 {
		logger.Log.WithField("dropped", dropped).Warn("Readings excluded during series construction")
	}

	return series
}
