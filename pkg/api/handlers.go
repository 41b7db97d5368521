package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/gq18262121731-source/Health-Management-System-sub001/pkg/common/logger"
	"github.com/gq18262121731-source/Health-Management-System-sub001/pkg/common/models"
	"github.com/gq18262121731-source/Health-Management-System-sub001/pkg/measurements"
	"github.com/gq18262121731-source/Health-Management-System-sub001/pkg/observability/metrics"
	"github.com/gq18262121731-source/Health-Management-System-sub001/pkg/profiles"
	"github.com/gq18262121731-source/Health-Management-System-sub001/pkg/records"
	"github.com/gq18262121731-source/Health-Management-System-sub001/pkg/report"
	"github.com/gq18262121731-source/Health-Management-System-sub001/pkg/taskmanager"
)

// ProfileStore reads and writes the non-measurement user context (age, diet
// intake levels) the lifestyle assessor consumes.
type ProfileStore interface {
	Profile(ctx context.Context, userID string) (*models.UserProfile, error)
	Upsert(ctx context.Context, userID string, profile models.UserProfile) error
}

// Handler wires the HTTP surface to the task manager, stores and report
// assembler. JSON-over-HTTP is a mapping layer only; none of the assessment
// contract lives here.
type Handler struct {
	manager   *taskmanager.Manager
	records   *records.Repository
	readings  *measurements.Repository
	validator *measurements.Validator
	renderer  report.Renderer
	profiles  ProfileStore
	maxBody   int64
}

func NewHandler(manager *taskmanager.Manager, recs *records.Repository, readings *measurements.Repository, validator *measurements.Validator, renderer report.Renderer, profileStore ProfileStore, maxBody int64) *Handler {
	if renderer == nil {
		renderer = report.TextRenderer{}
	}
	return &Handler{
		manager:   manager,
		records:   recs,
		readings:  readings,
		validator: validator,
		renderer:  renderer,
		profiles:  profileStore,
		maxBody:   maxBody,
	}
}

func (h *Handler) Register(router *mux.Router) {
	router.HandleFunc("/readings", h.handleIngestReadings).Methods(http.MethodPost)
	router.HandleFunc("/assessments/on-demand", h.handleOnDemand).Methods(http.MethodPost)
	router.HandleFunc("/assessments/scheduled", h.handleScheduled).Methods(http.MethodPost)
	router.HandleFunc("/assessments/{userID}", h.handleHistory).Methods(http.MethodGet)
	router.HandleFunc("/assessments/{userID}/{assessmentID}", h.handleGet).Methods(http.MethodGet)
	router.HandleFunc("/assessments/{userID}/{assessmentID}/report", h.handleReport).Methods(http.MethodGet)
	router.HandleFunc("/assessments/{userID}/{assessmentID}/visualization", h.handleVisualization).Methods(http.MethodGet)
	router.HandleFunc("/tasks", h.handleTasks).Methods(http.MethodGet)
	router.HandleFunc("/profiles/{userID}", h.handleGetProfile).Methods(http.MethodGet)
	router.HandleFunc("/profiles/{userID}", h.handleUpsertProfile).Methods(http.MethodPut)
}

func (h *Handler) handleIngestReadings(w http.ResponseWriter, r *http.Request) {
	if h.maxBody > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxBody)
	}

	var req models.IngestReadingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.validator.Validate(req); err != nil {
		metrics.ReadingsRejected(len(req.Readings))
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	batch := make([]measurements.Reading, 0, len(req.Readings))
	for _, input := range req.Readings {
		batch = append(batch, measurements.Reading{
			UserID:     req.UserID,
			Metric:     input.Metric,
			Value:      input.Value,
			Unit:       input.Unit,
			MeasuredAt: input.MeasuredAt,
		})
	}

	if err := h.readings.CreateBatch(r.Context(), batch); err != nil {
		logger.Log.WithError(err).Error("Failed to persist readings")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	metrics.ReadingsIngested(len(batch))
	writeJSON(w, http.StatusAccepted, models.IngestReadingsResponse{Accepted: len(batch)})
}

func (h *Handler) handleOnDemand(w http.ResponseWriter, r *http.Request) {
	var req models.OnDemandAssessmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.UserID == "" {
		http.Error(w, "user_id required", http.StatusBadRequest)
		return
	}

	result, err := h.manager.RunOnDemand(r.Context(), req)
	if err != nil {
		logger.Log.WithError(err).WithField("user_id", req.UserID).Error("On-demand assessment failed")
		http.Error(w, "assessment failed", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) handleScheduled(w http.ResponseWriter, r *http.Request) {
	var req models.ScheduledAssessmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.UserID == "" {
		http.Error(w, "user_id required", http.StatusBadRequest)
		return
	}

	result, err := h.manager.RunScheduled(r.Context(), req.UserID, taskmanager.WindowFor(req.Period))
	if err != nil {
		logger.Log.WithError(err).WithField("user_id", req.UserID).Error("Scheduled assessment failed")
		http.Error(w, "assessment failed", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	result, err := h.records.Get(r.Context(), vars["userID"], vars["assessmentID"])
	if err != nil {
		if errors.Is(err, records.ErrNotFound) {
			http.Error(w, "assessment not found", http.StatusNotFound)
			return
		}
		logger.Log.WithError(err).Error("Failed to fetch assessment")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) handleHistory(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			limit = parsed
		}
	}

	results, err := h.records.List(r.Context(), vars["userID"], limit)
	if err != nil {
		logger.Log.WithError(err).Error("Failed to list assessments")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, results)
}

func (h *Handler) handleReport(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	audience := r.URL.Query().Get("audience")
	if audience == "" {
		audience = report.AudienceFamily
	}
	format := r.URL.Query().Get("format")

	result, err := h.records.Get(r.Context(), vars["userID"], vars["assessmentID"])
	if err != nil {
		if errors.Is(err, records.ErrNotFound) {
			http.Error(w, "assessment not found", http.StatusNotFound)
			return
		}
		logger.Log.WithError(err).Error("Failed to fetch assessment for report")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	data := report.TemplateData(result)

	if format == "json" {
		metrics.ReportGenerated()
		writeJSON(w, http.StatusOK, data)
		return
	}

	rendered, err := h.renderer.Render(audience, data)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	metrics.ReportGenerated()
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(rendered))
}

func (h *Handler) handleVisualization(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	result, err := h.records.Get(r.Context(), vars["userID"], vars["assessmentID"])
	if err != nil {
		if errors.Is(err, records.ErrNotFound) {
			http.Error(w, "assessment not found", http.StatusNotFound)
			return
		}
		logger.Log.WithError(err).Error("Failed to fetch assessment for visualization")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, report.BuildVisualizationData(result))
}

func (h *Handler) handleTasks(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.manager.Tasks())
}

func (h *Handler) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	profile, err := h.profiles.Profile(r.Context(), vars["userID"])
	if err != nil {
		if errors.Is(err, profiles.ErrNotFound) {
			http.Error(w, "profile not found", http.StatusNotFound)
			return
		}
		logger.Log.WithError(err).Error("Failed to fetch profile")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

func (h *Handler) handleUpsertProfile(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	var profile models.UserProfile
	if err := json.NewDecoder(r.Body).Decode(&profile); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if profile.Age < 0 {
		http.Error(w, "age must be non-negative", http.StatusBadRequest)
		return
	}

	if err := h.profiles.Upsert(r.Context(), vars["userID"], profile); err != nil {
		logger.Log.WithError(err).WithField("user_id", vars["userID"]).Error("Failed to store profile")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}
