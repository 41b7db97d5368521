package profiles

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/gq18262121731-source/Health-Management-System-sub001/pkg/common/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var ErrNotFound = errors.New("user profile not found")

type profileModel struct {
	UserID    string         `gorm:"primaryKey;column:user_id"`
	Age       int            `gorm:"column:age"`
	Diet      datatypes.JSON `gorm:"column:diet"`
	UpdatedAt time.Time      `gorm:"column:updated_at"`
}

func (profileModel) TableName() string {
	return "user_profiles"
}

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) AutoMigrate() error {
	return r.db.AutoMigrate(&profileModel{})
}

func (r *Repository) Profile(ctx context.Context, userID string) (*models.UserProfile, error) {
	var rec profileModel
	result := r.db.WithContext(ctx).First(&rec, "user_id = ?", userID)
	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if result.Error != nil {
		return nil, result.Error
	}

	profile := &models.UserProfile{Age: rec.Age}
	if len(rec.Diet) > 0 {
		diet := make(map[string]string)
		if err := json.Unmarshal(rec.Diet, &diet); err == nil {
			profile.Diet = diet
		}
	}
	return profile, nil
}

func (r *Repository) Upsert(ctx context.Context, userID string, profile models.UserProfile) error {
	diet, err := json.Marshal(profile.Diet)
	if err != nil {
		return err
	}

	return r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Assign(map[string]interface{}{
			"age":        profile.Age,
			"diet":       datatypes.JSON(diet),
			"updated_at": time.Now().UTC(),
		}).
		FirstOrCreate(&profileModel{UserID: userID}).Error
}
