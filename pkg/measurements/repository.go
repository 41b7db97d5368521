package measurements

import (
	"context"
	"time"

	"gorm.io/gorm"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) AutoMigrate() error {
	return r.db.AutoMigrate(&Reading{})
}

func (r *Repository) CreateBatch(ctx context.Context, readings []Reading) error {
	if len(readings) == 0 {
		return nil
	}
	now := time.Now().UTC()
	for i := range readings {
		readings[i].CreatedAt = now
	}
	return r.db.WithContext(ctx).Create(&readings).Error
}

// FetchRange returns a user's readings in [start, end], ordered by metric
// then measurement time, ready for series construction.
func (r *Repository) FetchRange(ctx context.Context, userID string, start, end time.Time) ([]Reading, error) {
	var readings []Reading
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND measured_at >= ? AND measured_at <= ?", userID, start, end).
		Order("metric ASC, measured_at ASC").
		Find(&readings).Error
	if err != nil {
		return nil, err
	}
	return readings, nil
}
