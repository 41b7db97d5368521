package baseline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/gq18262121731-source/Health-Management-System-sub001/pkg/common/logger"
	"github.com/gq18262121731-source/Health-Management-System-sub001/pkg/common/models"
	"github.com/gq18262121731-source/Health-Management-System-sub001/pkg/measurements"
	"github.com/redis/go-redis/v9"
	"gonum.org/v1/gonum/stat"
	"gorm.io/gorm"
)

var ErrNotFound = errors.New("baseline not found")

// minBaselineSamples is the smallest history that yields a usable baseline;
// below this a z-score against it would be noise.
const minBaselineSamples = 5

type record struct {
	ID         uint      `gorm:"primaryKey;autoIncrement;column:id"`
	UserID     string    `gorm:"column:user_id;uniqueIndex:idx_baseline_user_metric"`
	Metric     string    `gorm:"column:metric;uniqueIndex:idx_baseline_user_metric"`
	Mean       float64   `gorm:"column:mean"`
	Std        float64   `gorm:"column:std"`
	P25        float64   `gorm:"column:p25"`
	P75        float64   `gorm:"column:p75"`
	WindowDays int       `gorm:"column:window_days"`
	UpdatedAt  time.Time `gorm:"column:updated_at"`
}

func (record) TableName() string {
	return "metric_baselines"
}

// Store persists per-user per-metric baselines in postgres with a redis
// read-through cache in front; assessments read baselines on every run.
type Store struct {
	db       *gorm.DB
	cache    *redis.Client
	cacheTTL time.Duration
}

func NewStore(db *gorm.DB, cache *redis.Client, cacheTTL time.Duration) *Store {
	return &Store{db: db, cache: cache, cacheTTL: cacheTTL}
}

func (s *Store) AutoMigrate() error {
	return s.db.AutoMigrate(&record{})
}

func cacheKey(userID, metric string) string {
	return fmt.Sprintf("baseline:%s:%s", userID, metric)
}

// GetAll returns every baseline a user has. Absent baselines are normal for
// new users and are not an error.
func (s *Store) GetAll(ctx context.Context, userID string) (map[string]*models.Baseline, error) {
	var recs []record
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).Find(&recs).Error; err != nil {
		return nil, err
	}

	baselines := make(map[string]*models.Baseline, len(recs))
	for _, rec := range recs {
		baselines[rec.Metric] = toDomain(rec)
	}
	return baselines, nil
}

func (s *Store) Get(ctx context.Context, userID, metric string) (*models.Baseline, error) {
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, cacheKey(userID, metric)).Bytes(); err == nil {
			var b models.Baseline
			if err := json.Unmarshal(data, &b); err == nil {
				return &b, nil
			}
		}
	}

	var rec record
	result := s.db.WithContext(ctx).First(&rec, "user_id = ? AND metric = ?", userID, metric)
	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if result.Error != nil {
		return nil, result.Error
	}

	b := toDomain(rec)
	s.cacheSet(ctx, userID, metric, b)
	return b, nil
}

func (s *Store) cacheSet(ctx context.Context, userID, metric string, b *models.Baseline) {
	if s.cache == nil {
		return
	}
	data, err := json.Marshal(b)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, cacheKey(userID, metric), data, s.cacheTTL).Err(); err != nil {
		logger.Log.WithError(err).Debug("Failed to cache baseline")
	}
}

// Recompute rebuilds a user's baselines from prior readings and overwrites
// the stored set, invalidating cache entries as it goes.
func (s *Store) Recompute(ctx context.Context, userID string, readings []measurements.Reading, windowDays int) error {
	byMetric := make(map[string][]float64)
	for _, r := range readings {
		byMetric[r.Metric] = append(byMetric[r.Metric], r.Value)
	}

	for metric, values := range byMetric {
		if len(values) < minBaselineSamples {
			continue
		}

		sorted := append([]float64(nil), values...)
		sort.Float64s(sorted)

		rec := record{
			UserID:     userID,
			Metric:     metric,
			Mean:       stat.Mean(values, nil),
			Std:        stat.StdDev(values, nil),
			P25:        stat.Quantile(0.25, stat.Empirical, sorted, nil),
			P75:        stat.Quantile(0.75, stat.Empirical, sorted, nil),
			WindowDays: windowDays,
			UpdatedAt:  time.Now().UTC(),
		}

		err := s.db.WithContext(ctx).
			Where("user_id = ? AND metric = ?", userID, metric).
			Assign(map[string]interface{}{
				"mean":        rec.Mean,
				"std":         rec.Std,
				"p25":         rec.P25,
				"p75":         rec.P75,
				"window_days": rec.WindowDays,
				"updated_at":  rec.UpdatedAt,
			}).
			FirstOrCreate(&record{UserID: userID, Metric: metric}).Error
		if err != nil {
			return fmt.Errorf("storing baseline for %s: %w", metric, err)
		}

		if s.cache != nil {
			s.cache.Del(ctx, cacheKey(userID, metric))
		}
	}

	return nil
}

func toDomain(rec record) *models.Baseline {
	return &models.Baseline{
		Metric:     rec.Metric,
		Mean:       rec.Mean,
		Std:        rec.Std,
		P25:        rec.P25,
		P75:        rec.P75,
		WindowDays: rec.WindowDays,
	}
}
