package measurements

import (
	"time"
)

// Reading is one stored measurement sample.
type Reading struct {
	ID         uint      `json:"id" gorm:"primaryKey;autoIncrement;column:id"`
	UserID     string    `json:"user_id" gorm:"column:user_id;index:idx_readings_user_metric_time"`
	Metric     string    `json:"metric" gorm:"column:metric;index:idx_readings_user_metric_time"`
	Value      float64   `json:"value" gorm:"column:value"`
	Unit       string    `json:"unit" gorm:"column:unit"`
	MeasuredAt time.Time `json:"measured_at" gorm:"column:measured_at;index:idx_readings_user_metric_time"`
	CreatedAt  time.Time `json:"created_at" gorm:"column:created_at"`
}

func (Reading) TableName() string {
	return "measurement_readings"
}
