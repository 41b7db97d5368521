package baseline

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gq18262121731-source/Health-Management-System-sub001/pkg/common/logger"
	"github.com/gq18262121731-source/Health-Management-System-sub001/pkg/common/models"
	"github.com/gq18262121731-source/Health-Management-System-sub001/pkg/measurements"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func TestMain(m *testing.M) {
	logger.Init()
	os.Exit(m.Run())
}

func testStore(t *testing.T) *Store {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "baselines.db")), &gorm.Config{})
	if err != nil {
		t.Fatal(err)
	}
	store := NewStore(db, nil, 0)
	if err := store.AutoMigrate(); err != nil {
		t.Fatal(err)
	}
	return store
}

func readingsFor(metric string, values ...float64) []measurements.Reading {
	base := time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)
	readings := make([]measurements.Reading, 0, len(values))
	for i, v := range values {
		readings = append(readings, measurements.Reading{
			UserID:     "user-1",
			Metric:     metric,
			Value:      v,
			MeasuredAt: base.Add(time.Duration(i) * 24 * time.Hour),
		})
	}
	return readings
}

func TestRecomputeRoundTrip(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	readings := append(
		readingsFor(models.MetricSystolicBP, 118, 122, 120, 124, 126, 121),
		readingsFor(models.MetricSleepHours, 6.5, 7.0, 7.5, 6.8, 7.2, 6.9)...,
	)
	if err := store.Recompute(ctx, "user-1", readings, 90); err != nil {
		t.Fatal(err)
	}

	baselines, err := store.GetAll(ctx, "user-1")
	if err != nil {
		t.Fatal(err)
	}
	if len(baselines) != 2 {
		t.Fatalf("baselines = %d, want 2", len(baselines))
	}

	bp := baselines[models.MetricSystolicBP]
	if bp == nil {
		t.Fatal("systolic baseline missing after recompute")
	}
	if math.Abs(bp.Mean-121.833333) > 1e-3 {
		t.Fatalf("mean = %v, want ~121.83", bp.Mean)
	}
	if bp.Std <= 0 {
		t.Fatalf("std = %v, want positive", bp.Std)
	}
	if bp.P25 > bp.P75 {
		t.Fatalf("p25 %v above p75 %v", bp.P25, bp.P75)
	}
	if bp.WindowDays != 90 {
		t.Fatalf("window days = %d, want 90", bp.WindowDays)
	}

	single, err := store.Get(ctx, "user-1", models.MetricSleepHours)
	if err != nil {
		t.Fatal(err)
	}
	if single.Metric != models.MetricSleepHours {
		t.Fatalf("metric = %s, want sleep_hours", single.Metric)
	}
}

func TestRecomputeUpsertsInPlace(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	if err := store.Recompute(ctx, "user-1", readingsFor(models.MetricSystolicBP, 120, 120, 120, 120, 120), 90); err != nil {
		t.Fatal(err)
	}
	// Same user and metric again with shifted values: one row, updated stats,
	// no unique-index collision.
	if err := store.Recompute(ctx, "user-1", readingsFor(models.MetricSystolicBP, 130, 130, 130, 130, 130), 60); err != nil {
		t.Fatal(err)
	}

	baselines, err := store.GetAll(ctx, "user-1")
	if err != nil {
		t.Fatal(err)
	}
	if len(baselines) != 1 {
		t.Fatalf("baselines = %d, want 1 after recomputing the same metric", len(baselines))
	}
	bp := baselines[models.MetricSystolicBP]
	if bp.Mean != 130 {
		t.Fatalf("mean = %v, want updated 130", bp.Mean)
	}
	if bp.WindowDays != 60 {
		t.Fatalf("window days = %d, want updated 60", bp.WindowDays)
	}
}

func TestRecomputeScopedToUser(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	if err := store.Recompute(ctx, "user-1", readingsFor(models.MetricSystolicBP, 118, 122, 120, 124, 126), 90); err != nil {
		t.Fatal(err)
	}

	other, err := store.GetAll(ctx, "user-2")
	if err != nil {
		t.Fatal(err)
	}
	if len(other) != 0 {
		t.Fatalf("user-2 sees %d baselines, want 0", len(other))
	}
}

func TestRecomputeSkipsSparseMetrics(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	if err := store.Recompute(ctx, "user-1", readingsFor(models.MetricHeartRate, 70, 72, 74), 90); err != nil {
		t.Fatal(err)
	}

	if _, err := store.Get(ctx, "user-1", models.MetricHeartRate); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for a metric below the sample floor, got %v", err)
	}
}

func TestGetMissingBaseline(t *testing.T) {
	store := testStore(t)
	if _, err := store.Get(context.Background(), "user-1", models.MetricWeight); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
