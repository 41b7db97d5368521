package measurements

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/gq18262121731-source/Health-Management-System-sub001/pkg/common/logger"
	"github.com/gq18262121731-source/Health-Management-System-sub001/pkg/common/models"
	"github.com/gq18262121731-source/Health-Management-System-sub001/pkg/observability/metrics"
)

// Ingestor persists reading batches arriving over the event bus. Devices and
// gateways publish batches instead of calling the HTTP API; validation is the
// same on both paths.
type Ingestor struct {
	repo      *Repository
	validator *Validator
}

func NewIngestor(repo *Repository, validator *Validator) *Ingestor {
	return &Ingestor{repo: repo, validator: validator}
}

// HandleEvent decodes one reading-batch event and stores it. Validation
// failures are logged and dropped rather than retried; a malformed batch will
// not become well-formed on redelivery.
func (i *Ingestor) HandleEvent(ctx context.Context, event models.Event) error {
	payload, err := json.Marshal(event.Data)
	if err != nil {
		return fmt.Errorf("re-encoding event data: %w", err)
	}

	var req models.IngestReadingsRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		logger.Log.WithError(err).WithField("event_id", event.ID).Warn("Malformed readings event dropped")
		return nil
	}

	if err := i.validator.Validate(req); err != nil {
		metrics.ReadingsRejected(len(req.Readings))
		logger.Log.WithError(err).WithFields(map[string]interface{}{
			"event_id": event.ID,
			"user_id":  req.UserID,
		}).Warn("Invalid readings event dropped")
		return nil
	}

	batch := make([]Reading, 0, len(req.Readings))
	for _, input := range req.Readings {
		batch = append(batch, Reading{
			UserID:     req.UserID,
			Metric:     input.Metric,
			Value:      input.Value,
			Unit:       input.Unit,
			MeasuredAt: input.MeasuredAt,
		})
	}

	if err := i.repo.CreateBatch(ctx, batch); err != nil {
		return fmt.Errorf("persisting readings from event %s: %w", event.ID, err)
	}

	metrics.ReadingsIngested(len(batch))
	return nil
}
