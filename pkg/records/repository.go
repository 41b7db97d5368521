package records

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/gq18262121731-source/Health-Management-System-sub001/pkg/common/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var ErrNotFound = errors.New("assessment record not found")

// Record is the persisted form of one assessment result, keyed by
// (user_id, assessment_id). The full result travels as a JSON payload; the
// indexed columns exist for listing and dashboards.
type Record struct {
	AssessmentID string         `json:"assessment_id" gorm:"primaryKey;column:assessment_id"`
	UserID       string         `json:"user_id" gorm:"column:user_id;index"`
	HealthLevel  string         `json:"health_level" gorm:"column:health_level"`
	OverallScore float64        `json:"overall_score" gorm:"column:overall_score"`
	Payload      datatypes.JSON `json:"payload" gorm:"column:payload"`
	CreatedAt    time.Time      `json:"created_at" gorm:"column:created_at"`
}

func (Record) TableName() string {
	return "assessment_records"
}

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) AutoMigrate() error {
	return r.db.AutoMigrate(&Record{})
}

func (r *Repository) Create(ctx context.Context, result *models.ComprehensiveAssessmentResult) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("marshalling assessment result: %w", err)
	}

	rec := Record{
		AssessmentID: result.AssessmentID,
		UserID:       result.UserID,
		HealthLevel:  result.HealthLevel,
		OverallScore: result.OverallScore,
		Payload:      payload,
		CreatedAt:    time.Now().UTC(),
	}
	return r.db.WithContext(ctx).Create(&rec).Error
}

func (r *Repository) Get(ctx context.Context, userID, assessmentID string) (*models.ComprehensiveAssessmentResult, error) {
	var rec Record
	result := r.db.WithContext(ctx).First(&rec, "user_id = ? AND assessment_id = ?", userID, assessmentID)
	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if result.Error != nil {
		return nil, result.Error
	}
	return unmarshalResult(rec)
}

// List returns a user's most recent assessments, newest first.
func (r *Repository) List(ctx context.Context, userID string, limit int) ([]*models.ComprehensiveAssessmentResult, error) {
	if limit <= 0 {
		limit = 20
	}
	var recs []Record
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&recs).Error
	if err != nil {
		return nil, err
	}

	results := make([]*models.ComprehensiveAssessmentResult, 0, len(recs))
	for _, rec := range recs {
		result, err := unmarshalResult(rec)
		if err != nil {
			return nil, err
		}
		results = append(results, result)
	}
	return results, nil
}

func unmarshalResult(rec Record) (*models.ComprehensiveAssessmentResult, error) {
	var result models.ComprehensiveAssessmentResult
	if err := json.Unmarshal(rec.Payload, &result); err != nil {
		return nil, fmt.Errorf("unmarshalling assessment %s: %w", rec.AssessmentID, err)
	}
	return &result, nil
}
