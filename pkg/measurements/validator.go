package measurements

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/gq18262121731-source/Health-Management-System-sub001/pkg/common/models"
)

var (
	errUnknownMetric = errors.New("unknown metric")
	errBadValue      = errors.New("invalid value")
	errBadTimestamp  = errors.New("invalid timestamp")
	errEmptyBatch    = errors.New("empty reading batch")
)

type ValidationError struct {
	reason error
}

func (e ValidationError) Error() string {
	return e.reason.Error()
}

func (e ValidationError) Unwrap() error {
	return e.reason
}

func IsValidationError(err error) bool {
	var ve ValidationError
	return errors.As(err, &ve)
}

type Validator struct {
	allowedMetrics map[string]struct{}
}

func NewValidator(metrics []string) *Validator {
	allowed := make(map[string]struct{})
	for _, m := range metrics {
		if trimmed := strings.TrimSpace(strings.ToLower(m)); trimmed != "" {
			allowed[trimmed] = struct{}{}
		}
	}
	return &Validator{allowedMetrics: allowed}
}

// Validate checks an ingest batch before persistence. Plausibility bounds
// are deliberately not applied here; they belong to series construction so
// stored raw data stays auditable.
func (v *Validator) Validate(req models.IngestReadingsRequest) error {
	if v == nil {
		return ValidationError{reason: errors.New("validator not initialised")}
	}
	if strings.TrimSpace(req.UserID) == "" {
		return ValidationError{reason: errors.New("user_id required")}
	}
	if len(req.Readings) == 0 {
		return ValidationError{reason: errEmptyBatch}
	}

	for i, reading := range req.Readings {
		metric := strings.TrimSpace(strings.ToLower(reading.Metric))
		if metric == "" {
			return ValidationError{reason: fmt.Errorf("reading %d: metric required: %w", i, errUnknownMetric)}
		}
		if len(v.allowedMetrics) > 0 {
			if _, ok := v.allowedMetrics[metric]; !ok {
				return ValidationError{reason: fmt.Errorf("reading %d: metric '%s' not supported: %w", i, metric, errUnknownMetric)}
			}
		}
		if math.IsNaN(reading.Value) || math.IsInf(reading.Value, 0) {
			return ValidationError{reason: fmt.Errorf("reading %d: %w", i, errBadValue)}
		}
		if reading.MeasuredAt.IsZero() {
			return ValidationError{reason: fmt.Errorf("reading %d: measured_at required: %w", i, errBadTimestamp)}
		}
	}

	return nil
}
