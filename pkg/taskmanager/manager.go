package taskmanager

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gq18262121731-source/Health-Management-System-sub001/pkg/assessment"
	"github.com/gq18262121731-source/Health-Management-System-sub001/pkg/baseline"
	"github.com/gq18262121731-source/Health-Management-System-sub001/pkg/common/config"
	"github.com/gq18262121731-source/Health-Management-System-sub001/pkg/common/kafka"
	"github.com/gq18262121731-source/Health-Management-System-sub001/pkg/common/logger"
	"github.com/gq18262121731-source/Health-Management-System-sub001/pkg/common/models"
	"github.com/gq18262121731-source/Health-Management-System-sub001/pkg/measurements"
	"github.com/gq18262121731-source/Health-Management-System-sub001/pkg/observability/metrics"
	"github.com/gq18262121731-source/Health-Management-System-sub001/pkg/records"
	"github.com/robfig/cron/v3"
)

// Task statuses.
const (
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

const (
	TriggerScheduler = "scheduler"
	EventCompleted   = "assessment.completed"
	EventFailed      = "assessment.failed"
)

// Task is one scheduled or on-demand assessment run tracked by the manager.
type Task struct {
	AssessmentID string     `json:"assessment_id"`
	UserID       string     `json:"user_id"`
	TriggeredBy  string     `json:"triggered_by"`
	Priority     int        `json:"priority"`
	Status       string     `json:"status"`
	Error        string     `json:"error,omitempty"`
	StartedAt    time.Time  `json:"started_at"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
}

// Manager owns the only mutable shared state in the system: the registry of
// in-flight and recently finished tasks, keyed by assessment ID with a
// single writer per key. The assessment pipeline itself stays pure; the
// manager supplies its inputs and persists its output.
type Manager struct {
	mu    sync.Mutex
	tasks map[string]*Task

	engine    *assessment.Engine
	readings  *measurements.Repository
	baselines *baseline.Store
	records   *records.Repository
	profiles  ProfileSource
	producer  *kafka.Producer
	dlq       *kafka.Producer
	cfg       *config.Config
	cron      *cron.Cron
}

// ProfileSource supplies the non-measurement user context. May be nil when
// no profile data is available.
type ProfileSource interface {
	Profile(ctx context.Context, userID string) (*models.UserProfile, error)
}

func NewManager(engine *assessment.Engine, readings *measurements.Repository, baselines *baseline.Store, recs *records.Repository, profiles ProfileSource, producer, dlq *kafka.Producer, cfg *config.Config) *Manager {
	return &Manager{
		tasks:     make(map[string]*Task),
		engine:    engine,
		readings:  readings,
		baselines: baselines,
		records:   recs,
		profiles:  profiles,
		producer:  producer,
		dlq:       dlq,
		cfg:       cfg,
	}
}

// StartScheduler begins periodic assessments for the configured users plus
// task registry cleanup. On-demand runs keep working without it.
func (m *Manager) StartScheduler() error {
	if m.cron != nil {
		return errors.New("scheduler already started")
	}
	m.cron = cron.New()

	if _, err := m.cron.AddFunc(m.cfg.ScheduledCronSpec, m.runScheduledBatch); err != nil {
		return fmt.Errorf("invalid cron spec %q: %w", m.cfg.ScheduledCronSpec, err)
	}
	if _, err := m.cron.AddFunc("@hourly", m.cleanupFinished); err != nil {
		return err
	}

	m.cron.Start()
	logger.Log.WithField("cron", m.cfg.ScheduledCronSpec).Info("Assessment scheduler started")
	return nil
}

func (m *Manager) Stop() {
	if m.cron != nil {
		<-m.cron.Stop().Done()
	}
}

func (m *Manager) runScheduledBatch() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	for _, userID := range m.cfg.ScheduledUsers {
		window := assessment.DefaultWindow(time.Now().UTC(), m.cfg.AssessmentDays)
		if _, err := m.RunScheduled(ctx, userID, window); err != nil {
			logger.Log.WithError(err).WithField("user_id", userID).Error("Scheduled assessment failed")
		}
	}
}

// WindowFor maps an assessment period to its trailing window. Daily runs
// still look back a week so single missed measurements do not starve the
// completeness gate.
func WindowFor(period string) models.AssessmentWindow {
	days := 7
	switch period {
	case "monthly":
		days = 30
	case "weekly", "daily", "":
	default:
	}
	return assessment.DefaultWindow(time.Now().UTC(), days)
}

// RunScheduled executes a periodic assessment for one user over the given
// window; callers map their period to a window with WindowFor.
func (m *Manager) RunScheduled(ctx context.Context, userID string, window models.AssessmentWindow) (*models.ComprehensiveAssessmentResult, error) {
	return m.run(ctx, userID, window, TriggerScheduler, m.cfg.ScheduledPriority)
}

// RunOnDemand executes a user- or family-triggered assessment. It carries a
// higher priority than scheduled runs but never cancels one already in
// flight for the same user.
func (m *Manager) RunOnDemand(ctx context.Context, req models.OnDemandAssessmentRequest) (*models.ComprehensiveAssessmentResult, error) {
	end := time.Now().UTC()
	days := m.cfg.AssessmentDays
	if req.CustomDays != nil && *req.CustomDays > 0 {
		days = *req.CustomDays
	}
	window := assessment.DefaultWindow(end, days)
	if req.Start != nil && req.End != nil && req.End.After(*req.Start) {
		window.Start = *req.Start
		window.End = *req.End
	}

	triggeredBy := req.TriggeredBy
	if triggeredBy == "" {
		triggeredBy = req.UserID
	}

	return m.run(ctx, req.UserID, window, triggeredBy, m.cfg.OnDemandPriority)
}

func (m *Manager) run(ctx context.Context, userID string, window models.AssessmentWindow, triggeredBy string, priority int) (*models.ComprehensiveAssessmentResult, error) {
	assessmentID := uuid.New().String()

	task := &Task{
		AssessmentID: assessmentID,
		UserID:       userID,
		TriggeredBy:  triggeredBy,
		Priority:     priority,
		Status:       StatusRunning,
		StartedAt:    time.Now().UTC(),
	}
	m.mu.Lock()
	m.tasks[assessmentID] = task
	m.mu.Unlock()

	metrics.AssessmentStarted()

	result, err := m.execute(ctx, assessmentID, userID, window)

	now := time.Now().UTC()
	m.mu.Lock()
	task.CompletedAt = &now
	if err != nil {
		task.Status = StatusFailed
		task.Error = err.Error()
	} else {
		task.Status = StatusCompleted
	}
	m.mu.Unlock()

	if err != nil {
		metrics.AssessmentFailed()
		m.publish(EventFailed, userID, map[string]interface{}{
			"assessment_id": assessmentID,
			"user_id":       userID,
			"error":         err.Error(),
		})
		return nil, err
	}

	metrics.AssessmentCompleted()
	if result.LowConfidence {
		metrics.AssessmentLowConfidence()
	}
	m.publish(EventCompleted, userID, map[string]interface{}{
		"assessment_id": result.AssessmentID,
		"user_id":       result.UserID,
		"health_level":  result.HealthLevel,
		"overall_score": result.OverallScore,
	})

	return result, nil
}

// execute assembles the engine's inputs, runs the pure pipeline and
// persists the verdict.
func (m *Manager) execute(ctx context.Context, assessmentID, userID string, window models.AssessmentWindow) (*models.ComprehensiveAssessmentResult, error) {
	readings, err := m.readings.FetchRange(ctx, userID, window.Start, window.End)
	if err != nil {
		return nil, fmt.Errorf("fetching readings: %w", err)
	}
	series := measurements.BuildSeries(readings, m.engine.Thresholds())

	// Refresh baselines from the period preceding the window so the trend
	// detector compares against history, not against the window itself.
	baselineStart := window.Start.AddDate(0, 0, -m.cfg.BaselineWindowDays)
	prior, err := m.readings.FetchRange(ctx, userID, baselineStart, window.Start.Add(-time.Second))
	if err == nil && len(prior) > 0 {
		if err := m.baselines.Recompute(ctx, userID, prior, m.cfg.BaselineWindowDays); err != nil {
			logger.Log.WithError(err).WithField("user_id", userID).Warn("Baseline recompute failed, using stored baselines")
		}
	}

	baselines, err := m.baselines.GetAll(ctx, userID)
	if err != nil {
		logger.Log.WithError(err).WithField("user_id", userID).Warn("Baseline fetch failed, assessing without baselines")
		baselines = nil
	}

	var profile *models.UserProfile
	if m.profiles != nil {
		if p, err := m.profiles.Profile(ctx, userID); err == nil {
			profile = p
		}
	}

	result, err := m.engine.Assess(ctx, assessment.Input{
		AssessmentID: assessmentID,
		UserID:       userID,
		Window:       window,
		Series:       series,
		Baselines:    baselines,
		Profile:      profile,
	})
	if err != nil {
		return nil, err
	}

	if err := m.records.Create(ctx, result); err != nil {
		return nil, fmt.Errorf("persisting assessment: %w", err)
	}

	return result, nil
}

func (m *Manager) publish(eventType, userID string, data map[string]interface{}) {
	if m.producer == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := m.producer.PublishEvent(ctx, eventType, userID, data); err != nil {
		logger.Log.WithError(err).Error("Failed to publish assessment event")
		if m.dlq != nil {
			if dlqErr := m.dlq.PublishEvent(ctx, eventType, userID, data); dlqErr != nil {
				logger.Log.WithError(dlqErr).Error("Failed to push assessment event to DLQ")
			}
		}
	}
}

// Tasks returns a snapshot of the registry, running tasks first, then by
// recency.
func (m *Manager) Tasks() []Task {
	m.mu.Lock()
	defer m.mu.Unlock()

	snapshot := make([]Task, 0, len(m.tasks))
	for _, task := range m.tasks {
		snapshot = append(snapshot, *task)
	}
	sort.Slice(snapshot, func(i, j int) bool {
		if (snapshot[i].Status == StatusRunning) != (snapshot[j].Status == StatusRunning) {
			return snapshot[i].Status == StatusRunning
		}
		return snapshot[i].StartedAt.After(snapshot[j].StartedAt)
	})
	return snapshot
}

func (m *Manager) Task(assessmentID string) (Task, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	task, ok := m.tasks[assessmentID]
	if !ok {
		return Task{}, false
	}
	return *task, true
}

// cleanupFinished archives finished tasks past the retention period.
func (m *Manager) cleanupFinished() {
	cutoff := time.Now().UTC().Add(-m.cfg.TaskRetention)

	m.mu.Lock()
	defer m.mu.Unlock()
	for id, task := range m.tasks {
		if task.Status != StatusRunning && task.CompletedAt != nil && task.CompletedAt.Before(cutoff) {
			delete(m.tasks, id)
		}
	}
}
