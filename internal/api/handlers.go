package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/triagestack/triage-engine/internal/dispatch"
	"github.com/triagestack/triage-engine/internal/models"
	"github.com/triagestack/triage-engine/internal/services"
	"github.com/triagestack/triage-engine/internal/store"
	"github.com/triagestack/triage-engine/internal/triage"
)

// TriageRequest is the JSON body of POST /api/v1/triage.
type TriageRequest struct {
	Age              int     `json:"age"`
	HeartRate        int     `json:"heart_rate"`
	SystolicBP       int     `json:"systolic_bp"`
	SpO2             float64 `json:"spo2"`
	Temperature      float64 `json:"temperature"`
	Consciousness    string  `json:"consciousness"`
	DoctorAssessment string  `json:"doctor_assessment"`
}

// Snapshot validates the enum fields and converts the request into the
// engine's input type.
func (r TriageRequest) Snapshot() (models.PatientSnapshot, error) {
	consciousness, err := models.ParseConsciousness(r.Consciousness)
	if err != nil {
		return models.PatientSnapshot{}, err
	}
	assessment, err := models.ParseAssessment(r.DoctorAssessment)
	if err != nil {
		return models.PatientSnapshot{}, err
	}
	return models.PatientSnapshot{
		Age:           r.Age,
		HeartRate:     r.HeartRate,
		SystolicBP:    r.SystolicBP,
		SpO2:          r.SpO2,
		Temperature:   r.Temperature,
		Consciousness: consciousness,
		Assessment:    assessment,
	}, nil
}

// AlertStatusReporter exposes the alerting configuration summary.
type AlertStatusReporter interface {
	Status() dispatch.Status
}

// Handler holds the HTTP route implementations.
type Handler struct {
	logger     *slog.Logger
	service    *services.TriageService
	dispatcher AlertStatusReporter
	startedAt  time.Time
}

// NewHandler wires the route handlers. Dispatcher may be nil when
// alerting is not configured.
func NewHandler(logger *slog.Logger, service *services.TriageService, dispatcher AlertStatusReporter) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		logger:     logger,
		service:    service,
		dispatcher: dispatcher,
		startedAt:  time.Now(),
	}
}

// Triage handles POST /api/v1/triage.
func (h *Handler) Triage(c *gin.Context) {
	var req TriageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}

	snapshot, err := req.Snapshot()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	record, err := h.service.Triage(c.Request.Context(), snapshot)
	if err != nil {
		var violation *triage.SafetyViolationError
		if errors.As(err, &violation) {
			h.logger.Error("triage aborted by safety gate", slog.Any("error", err))
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "decision output failed safety validation",
			})
			return
		}
		h.logger.Error("triage request failed", slog.Any("error", err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "triage evaluation failed"})
		return
	}

	c.JSON(http.StatusOK, record)
}

// ListDecisions handles GET /api/v1/decisions.
func (h *Handler) ListDecisions(c *gin.Context) {
	req := models.ListDecisionsRequest{}

	if raw := strings.TrimSpace(c.Query("priority")); raw != "" {
		priority, err := models.ParsePriority(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		req.Priority = priority
	}
	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a non-negative integer"})
			return
		}
		req.Limit = limit
	}
	if raw := c.Query("offset"); raw != "" {
		offset, err := strconv.Atoi(raw)
		if err != nil || offset < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "offset must be a non-negative integer"})
			return
		}
		req.Offset = offset
	}

	resp, err := h.service.ListDecisions(c.Request.Context(), req)
	if err != nil {
		h.logger.Error("list decisions failed", slog.Any("error", err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list decisions"})
		return
	}
	c.JSON(http.StatusOK, resp)
}

// GetDecision handles GET /api/v1/decisions/:id.
func (h *Handler) GetDecision(c *gin.Context) {
	id := c.Param("id")
	record, err := h.service.GetDecision(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "decision not found"})
			return
		}
		h.logger.Error("get decision failed", slog.String("id", id), slog.Any("error", err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load decision"})
		return
	}
	c.JSON(http.StatusOK, record)
}

// AlertStatus handles GET /api/v1/alerts/status.
func (h *Handler) AlertStatus(c *gin.Context) {
	if h.dispatcher == nil {
		c.JSON(http.StatusOK, gin.H{"enabled": false})
		return
	}
	status := h.dispatcher.Status()
	c.JSON(http.StatusOK, gin.H{
		"enabled":           true,
		"twilio_configured": status.TwilioConfigured,
		"emergency_contact": status.EmergencyContact,
		"contact_name":      status.ContactName,
		"voice_fallback":    status.VoiceFallback,
		"kafka_enabled":     status.KafkaEnabled,
	})
}

// Health handles GET /healthz.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"uptime":  time.Since(h.startedAt).Round(time.Second).String(),
		"p95":     h.service.LatencyP95().String(),
		"version": "1.0.0",
	})
}
