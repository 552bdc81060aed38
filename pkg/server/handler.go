package server

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/helmcode/soilguard/pkg/soilhealth"
	"github.com/helmcode/soilguard/pkg/store"
)

// SoilService is the part of *soilhealth.Service the handlers call.
type SoilService interface {
	CreateLandArea(ctx context.Context, userID string, req *soilhealth.CreateLandAreaRequest) (*store.LandArea, error)
	GetLandArea(ctx context.Context, userID string, id uuid.UUID) (*store.LandArea, error)
	ListLandAreas(ctx context.Context, userID string) ([]store.LandArea, error)
	AnalyzeLandArea(ctx context.Context, userID string, req *soilhealth.AnalyzeRequest) (*soilhealth.AnalyzeResponse, error)
	History(ctx context.Context, userID string, landAreaID uuid.UUID, limit int) ([]store.SoilHealthRecord, error)
	Alerts(ctx context.Context, userID string, unreadOnly bool) ([]store.AlertRecord, error)
	MarkAlertRead(ctx context.Context, userID string, alertID uuid.UUID) error
	DeleteAlert(ctx context.Context, userID string, alertID uuid.UUID) error
}

// Handler handles HTTP requests for land areas, analyses and alerts
type Handler struct {
	service SoilService
	logger  *zap.Logger
}

func NewHandler(service SoilService, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// RegisterRoutes registers the API routes on router. Every route requires a user.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	api := router.Group("", requireUser())
	{
		api.POST("/land-areas", h.createLandArea)
		api.GET("/land-areas", h.listLandAreas)
		api.GET("/land-areas/:id", h.getLandArea)
		api.GET("/land-areas/:id/soil-health", h.soilHealthHistory)

		api.POST("/analyze-soil", h.analyzeSoil)

		api.GET("/alerts", h.listAlerts)
		api.POST("/alerts/:id/read", h.markAlertRead)
		api.DELETE("/alerts/:id", h.deleteAlert)
	}
}

// createLandArea handles POST /api/v1/land-areas
func (h *Handler) createLandArea(c *gin.Context) {
	var req soilhealth.CreateLandAreaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	area, err := h.service.CreateLandArea(c.Request.Context(), userID(c), &req)
	if errors.Is(err, soilhealth.ErrInvalidLandArea) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		h.logger.Error("Failed to create land area", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusCreated, area)
}

// listLandAreas handles GET /api/v1/land-areas
func (h *Handler) listLandAreas(c *gin.Context) {
	areas, err := h.service.ListLandAreas(c.Request.Context(), userID(c))
	if err != nil {
		h.logger.Error("Failed to list land areas", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"land_areas": areas})
}

// getLandArea handles GET /api/v1/land-areas/:id
func (h *Handler) getLandArea(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid land area ID"})
		return
	}

	area, err := h.service.GetLandArea(c.Request.Context(), userID(c), id)
	if errors.Is(err, soilhealth.ErrLandAreaNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Land area not found"})
		return
	}
	if err != nil {
		h.logger.Error("Failed to get land area", zap.Error(err), zap.String("land_area_id", id.String()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, area)
}

// analyzeSoil handles POST /api/v1/analyze-soil
func (h *Handler) analyzeSoil(c *gin.Context) {
	var req soilhealth.AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resp, err := h.service.AnalyzeLandArea(c.Request.Context(), userID(c), &req)
	if errors.Is(err, soilhealth.ErrLandAreaNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Land area not found"})
		return
	}
	if err != nil {
		h.logger.Error("Failed to store analysis", zap.Error(err), zap.String("land_area_id", req.LandAreaID.String()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store analysis"})
		return
	}

	c.JSON(http.StatusOK, resp)
}

// soilHealthHistory handles GET /api/v1/land-areas/:id/soil-health
func (h *Handler) soilHealthHistory(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid land area ID"})
		return
	}

	limit := 20
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = n
	}

	records, err := h.service.History(c.Request.Context(), userID(c), id, limit)
	if errors.Is(err, soilhealth.ErrLandAreaNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Land area not found"})
		return
	}
	if err != nil {
		h.logger.Error("Failed to list soil health", zap.Error(err), zap.String("land_area_id", id.String()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"soil_health": records})
}

// listAlerts handles GET /api/v1/alerts
func (h *Handler) listAlerts(c *gin.Context) {
	unread := c.Query("unread") == "true"

	alerts, err := h.service.Alerts(c.Request.Context(), userID(c), unread)
	if err != nil {
		h.logger.Error("Failed to list alerts", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"alerts": alerts})
}

// markAlertRead handles POST /api/v1/alerts/:id/read
func (h *Handler) markAlertRead(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid alert ID"})
		return
	}

	err = h.service.MarkAlertRead(c.Request.Context(), userID(c), id)
	if errors.Is(err, soilhealth.ErrAlertNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Alert not found"})
		return
	}
	if err != nil {
		h.logger.Error("Failed to mark alert read", zap.Error(err), zap.String("alert_id", id.String()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.Status(http.StatusNoContent)
}

// deleteAlert handles DELETE /api/v1/alerts/:id
func (h *Handler) deleteAlert(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid alert ID"})
		return
	}

	err = h.service.DeleteAlert(c.Request.Context(), userID(c), id)
	if errors.Is(err, soilhealth.ErrAlertNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Alert not found"})
		return
	}
	if err != nil {
		h.logger.Error("Failed to delete alert", zap.Error(err), zap.String("alert_id", id.String()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.Status(http.StatusNoContent)
}
