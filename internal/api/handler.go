package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/medwatch/go-vitals-alerts/internal/models"
	"github.com/medwatch/go-vitals-alerts/internal/pipeline"
	"github.com/medwatch/go-vitals-alerts/internal/repository"
)

// Store is the persistence surface the handlers read and administer.
// Alert creation and reading ingestion go through the pipeline instead,
// so persist-then-broadcast ordering holds for every entry point.
type Store interface {
	ListReadings(ctx context.Context, opts repository.ReadingFilter) ([]models.Reading, error)
	ListAlerts(ctx context.Context, opts repository.AlertFilter) ([]models.Alert, error)
	AddUser(ctx context.Context, u *models.User) error
	GetUser(ctx context.Context, id string) (*models.User, error)
	AssignDoctor(ctx context.Context, patientID, doctorID string) error
	UnassignDoctor(ctx context.Context, patientID, doctorID string) error
}

type Handler struct {
	store Store
	pipe  *pipeline.Pipeline
}

func NewHandler(store Store, pipe *pipeline.Pipeline) *Handler {
	return &Handler{store: store, pipe: pipe}
}

func (h *Handler) RegisterRoutes(r *gin.Engine, middleware ...gin.HandlerFunc) {
	r.GET("/health", h.health)

	api := r.Group("/api")
	api.Use(middleware...)
	api.POST("/health-data", h.submitReading)
	api.GET("/health-data", h.listReadings)
	api.POST("/alerts", h.createAlert)
	api.GET("/alerts", h.listAlerts)
	api.PATCH("/alerts/:id/read", h.markAlertRead)
	api.POST("/users", h.createUser)
	api.POST("/patients/:id/doctors/:doctorID", h.assignDoctor)
	api.DELETE("/patients/:id/doctors/:doctorID", h.unassignDoctor)
}

func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type submitReadingRequest struct {
	UserID   string `json:"user_id" binding:"required"`
	DataType string `json:"data_type" binding:"required"`
	Value    string `json:"value" binding:"required"`
	Unit     string `json:"unit"`
	Notes    string `json:"notes"`
}

func (h *Handler) submitReading(c *gin.Context) {
	var req submitReadingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	reading, severity, err := h.pipe.IngestReading(c.Request.Context(),
		req.UserID, models.VitalKind(req.DataType), req.Value, req.Unit, req.Notes)
	if errors.Is(err, repository.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown user"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to record reading"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"reading": reading,
		"status":  severity.String(),
	})
}

func (h *Handler) listReadings(c *gin.Context) {
	filter := repository.ReadingFilter{
		UserID: c.Query("user_id"),
		Limit:  limitParam(c, 50),
	}

	readings, err := h.store.ListReadings(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch readings"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"readings": readings})
}

type createAlertRequest struct {
	UserID   string `json:"user_id" binding:"required"`
	Type     string `json:"type" binding:"required"`
	Message  string `json:"message" binding:"required"`
	Severity string `json:"severity"`
}

func (h *Handler) createAlert(c *gin.Context) {
	var req createAlertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	severity := models.AlertSeverity(req.Severity)
	if severity != models.AlertSeverityCritical {
		severity = models.AlertSeverityMedium
	}

	// Actor identity is established by the auth layer in front of this API.
	actor := c.GetHeader("X-Actor-ID")

	alert, err := h.pipe.CreateManualAlert(c.Request.Context(), req.UserID, req.Type, req.Message, severity, actor)
	if errors.Is(err, repository.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown user"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create alert"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"alert": alert})
}

func (h *Handler) listAlerts(c *gin.Context) {
	filter := repository.AlertFilter{
		UserID:     c.Query("user_id"),
		UnreadOnly: c.Query("unread_only") == "true",
		Limit:      limitParam(c, 50),
	}

	alerts, err := h.store.ListAlerts(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch alerts"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"alerts": alerts})
}

func (h *Handler) markAlertRead(c *gin.Context) {
	err := h.pipe.MarkRead(c.Request.Context(), c.Param("id"))
	if errors.Is(err, repository.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "alert not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to mark alert read"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"read": true})
}

type createUserRequest struct {
	Name string `json:"name" binding:"required"`
	Role string `json:"role" binding:"required,oneof=patient doctor"`
}

func (h *Handler) createUser(c *gin.Context) {
	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user := &models.User{
		ID:        uuid.NewString(),
		Name:      req.Name,
		Role:      models.Role(req.Role),
		CreatedAt: time.Now(),
	}
	if err := h.store.AddUser(c.Request.Context(), user); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create user"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"user": user})
}

func (h *Handler) assignDoctor(c *gin.Context) {
	patientID, doctorID := c.Param("id"), c.Param("doctorID")

	if err := h.validateCarePair(c, patientID, doctorID); err != nil {
		return
	}
	if err := h.store.AssignDoctor(c.Request.Context(), patientID, doctorID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to assign doctor"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"assigned": true})
}

func (h *Handler) unassignDoctor(c *gin.Context) {
	patientID, doctorID := c.Param("id"), c.Param("doctorID")

	if err := h.store.UnassignDoctor(c.Request.Context(), patientID, doctorID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to unassign doctor"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"assigned": false})
}

func (h *Handler) validateCarePair(c *gin.Context, patientID, doctorID string) error {
	for _, id := range []string{patientID, doctorID} {
		if _, err := h.store.GetUser(c.Request.Context(), id); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "unknown user: " + id})
			} else {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to resolve user"})
			}
			return err
		}
	}
	return nil
}

func limitParam(c *gin.Context, fallback int) int {
	if l := c.Query("limit"); l != "" {
		if lim, err := strconv.Atoi(l); err == nil && lim > 0 && lim <= 500 {
			return lim
		}
	}
	return fallback
}
