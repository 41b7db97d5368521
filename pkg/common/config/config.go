package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// Server
	ServerPort     string
	ServerHost     string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	MaxRequestBody int64

	// Database
	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string

	// Redis
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int

	// Kafka
	KafkaBrokers         []string
	KafkaGroupID         string
	AssessmentEventTopic string
	AssessmentDLQTopic   string
	ReadingsEventTopic   string

	// Assessment engine
	ThresholdsPath     string
	DiseaseWeight      float64
	LifestyleWeight    float64
	TrendWeight        float64
	TopRiskFactors     int
	BaselineWindowDays int
	BaselineCacheTTL   time.Duration

	// Task manager
	ScheduledCronSpec string
	ScheduledUsers    []string
	AssessmentDays    int
	OnDemandPriority  int
	ScheduledPriority int
	TaskRetention     time.Duration
}

func Load() *Config {
	return &Config{
		ServerPort:     getEnv("SERVER_PORT", "8080"),
		ServerHost:     getEnv("SERVER_HOST", "0.0.0.0"),
		ReadTimeout:    getDuration("READ_TIMEOUT", 30*time.Second),
		WriteTimeout:   getDuration("WRITE_TIMEOUT", 30*time.Second),
		MaxRequestBody: int64(getIntEnv("MAX_REQUEST_BODY_BYTES", 4*1024*1024)),

		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresUser:     getEnv("POSTGRES_USER", "healthmgmt"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", "healthmgmt123"),
		PostgresDB:       getEnv("POSTGRES_DB", "healthmgmt"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),

		RedisHost:     getEnv("REDIS_HOST", "localhost"),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getIntEnv("REDIS_DB", 0),

		KafkaBrokers:         getStringSliceEnv("KAFKA_BROKERS", []string{"localhost:9092"}),
		KafkaGroupID:         getEnv("KAFKA_GROUP_ID", "health-assessment"),
		AssessmentEventTopic: getEnv("ASSESSMENT_EVENT_TOPIC", "assessment-completed"),
		AssessmentDLQTopic:   getEnv("ASSESSMENT_DLQ_TOPIC", ""),
		ReadingsEventTopic:   getEnv("READINGS_EVENT_TOPIC", "device-readings"),

		ThresholdsPath:     getEnv("CLINICAL_THRESHOLDS_PATH", ""),
		DiseaseWeight:      getFloatEnv("FUSION_DISEASE_WEIGHT", 0.4),
		LifestyleWeight:    getFloatEnv("FUSION_LIFESTYLE_WEIGHT", 0.3),
		TrendWeight:        getFloatEnv("FUSION_TREND_WEIGHT", 0.3),
		TopRiskFactors:     getIntEnv("TOP_RISK_FACTORS", 5),
		BaselineWindowDays: getIntEnv("BASELINE_WINDOW_DAYS", 90),
		BaselineCacheTTL:   getDuration("BASELINE_CACHE_TTL", 10*time.Minute),

		ScheduledCronSpec: getEnv("SCHEDULED_ASSESSMENT_CRON", "0 6 * * *"),
		ScheduledUsers:    getStringSliceEnv("SCHEDULED_ASSESSMENT_USERS", nil),
		AssessmentDays:    getIntEnv("ASSESSMENT_WINDOW_DAYS", 7),
		OnDemandPriority:  getIntEnv("ON_DEMAND_PRIORITY", 10),
		ScheduledPriority: getIntEnv("SCHEDULED_PRIORITY", 5),
		TaskRetention:     getDuration("TASK_RETENTION", 24*time.Hour),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getStringSliceEnv(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		out := make([]string, 0, len(parts))
		for _, part := range parts {
			if trimmed := strings.TrimSpace(part); trimmed != "" {
				out = append(out, trimmed)
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
