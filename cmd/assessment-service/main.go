package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/gq18262121731-source/Health-Management-System-sub001/pkg/api"
	"github.com/gq18262121731-source/Health-Management-System-sub001/pkg/assessment"
	"github.com/gq18262121731-source/Health-Management-System-sub001/pkg/baseline"
	"github.com/gq18262121731-source/Health-Management-System-sub001/pkg/common/config"
	"github.com/gq18262121731-source/Health-Management-System-sub001/pkg/common/database"
	"github.com/gq18262121731-source/Health-Management-System-sub001/pkg/common/kafka"
	"github.com/gq18262121731-source/Health-Management-System-sub001/pkg/common/logger"
	"github.com/gq18262121731-source/Health-Management-System-sub001/pkg/common/models"
	"github.com/gq18262121731-source/Health-Management-System-sub001/pkg/measurements"
	"github.com/gq18262121731-source/Health-Management-System-sub001/pkg/observability/metrics"
	"github.com/gq18262121731-source/Health-Management-System-sub001/pkg/profiles"
	"github.com/gq18262121731-source/Health-Management-System-sub001/pkg/records"
	"github.com/gq18262121731-source/Health-Management-System-sub001/pkg/report"
	"github.com/gq18262121731-source/Health-Management-System-sub001/pkg/taskmanager"
)

func main() {
	logger.Init()
	cfg := config.Load()

	db, err := database.GetPostgres()
	if err != nil {
		logger.Log.WithError(err).Fatal("failed to connect to postgres")
	}

	readingsRepo := measurements.NewRepository(db)
	if err := readingsRepo.AutoMigrate(); err != nil {
		logger.Log.WithError(err).Fatal("failed to migrate measurement tables")
	}

	baselineStore := baseline.NewStore(db, database.GetRedis(), cfg.BaselineCacheTTL)
	if err := baselineStore.AutoMigrate(); err != nil {
		logger.Log.WithError(err).Fatal("failed to migrate baseline tables")
	}

	recordsRepo := records.NewRepository(db)
	if err := recordsRepo.AutoMigrate(); err != nil {
		logger.Log.WithError(err).Fatal("failed to migrate assessment tables")
	}

	profileRepo := profiles.NewRepository(db)
	if err := profileRepo.AutoMigrate(); err != nil {
		logger.Log.WithError(err).Fatal("failed to migrate profile tables")
	}

	thresholds, err := assessment.LoadThresholds(cfg.ThresholdsPath)
	if err != nil {
		// A thresholds file that parses or validates badly is a configuration
		// error and fatal; only an unreadable file falls back to defaults.
		if len(thresholds.Metrics) == 0 {
			logger.Log.WithError(err).Fatal("invalid clinical thresholds configuration")
		}
		logger.Log.WithError(err).Warn("thresholds file unreadable, falling back to default clinical thresholds")
	}

	engine, err := assessment.NewEngine(assessment.Options{
		Thresholds: thresholds,
		FusionWeights: assessment.FusionWeights{
			Disease:   cfg.DiseaseWeight,
			Lifestyle: cfg.LifestyleWeight,
			Trend:     cfg.TrendWeight,
		},
		TopRiskFactors: cfg.TopRiskFactors,
	})
	if err != nil {
		logger.Log.WithError(err).Fatal("invalid assessment engine configuration")
	}

	producer := kafka.NewProducer(cfg.AssessmentEventTopic)
	defer producer.Close()

	var dlqProducer *kafka.Producer
	if cfg.AssessmentDLQTopic != "" {
		dlqProducer = kafka.NewProducer(cfg.AssessmentDLQTopic)
		defer dlqProducer.Close()
	}

	manager := taskmanager.NewManager(engine, readingsRepo, baselineStore, recordsRepo, profileRepo, producer, dlqProducer, cfg)
	if err := manager.StartScheduler(); err != nil {
		logger.Log.WithError(err).Fatal("failed to start assessment scheduler")
	}
	defer manager.Stop()

	validator := measurements.NewValidator([]string{
		models.MetricSystolicBP,
		models.MetricDiastolicBP,
		models.MetricFastingGlucose,
		models.MetricPostprandialGlucose,
		models.MetricTotalCholesterol,
		models.MetricLDLCholesterol,
		models.MetricHeartRate,
		models.MetricSleepHours,
		models.MetricSteps,
		models.MetricWeight,
	})

	handler := api.NewHandler(manager, recordsRepo, readingsRepo, validator, report.TextRenderer{}, profileRepo, cfg.MaxRequestBody)

	consumerCtx, consumerCancel := context.WithCancel(context.Background())
	defer consumerCancel()
	if cfg.ReadingsEventTopic != "" {
		consumer := kafka.NewConsumer(cfg.ReadingsEventTopic, cfg.KafkaGroupID)
		defer consumer.Close()

		ingestor := measurements.NewIngestor(readingsRepo, validator)
		go func() {
			if err := consumer.Consume(consumerCtx, ingestor.HandleEvent); err != nil && err != context.Canceled {
				logger.Log.WithError(err).Error("Readings consumer stopped")
			}
		}()
	}

	router := mux.NewRouter()
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy"}`))
	}).Methods(http.MethodGet)

	router.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ready"}`))
	}).Methods(http.MethodGet)

	router.HandleFunc("/metrics", func(w http.ResponseWriter, r *http.Request) {
		metrics.WritePrometheus(w)
	}).Methods(http.MethodGet)

	apiRouter := router.PathPrefix("/api/v1").Subrouter()
	handler.Register(apiRouter)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.ServerHost, cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Log.WithFields(map[string]interface{}{
			"host": cfg.ServerHost,
			"port": cfg.ServerPort,
		}).Info("Assessment Service started")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.WithError(err).Fatal("failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Log.Info("Shutting down Assessment Service...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Log.WithError(err).Error("server forced to shutdown")
	}

	if err := database.ClosePostgres(); err != nil {
		logger.Log.WithError(err).Error("failed to close postgres")
	}
	if err := database.CloseRedis(); err != nil {
		logger.Log.WithError(err).Error("failed to close redis")
	}

	logger.Log.Info("Assessment Service stopped")
}
