// Package soilhealth runs an analysis for a stored land area and persists the
// result together with any alert and recommendations it produces.
package soilhealth

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/helmcode/soilguard/pkg/alerts"
	"github.com/helmcode/soilguard/pkg/analyzer"
	"github.com/helmcode/soilguard/pkg/model"
	"github.com/helmcode/soilguard/pkg/store"
)

var (
	ErrLandAreaNotFound = errors.New("land area not found")
	ErrAlertNotFound    = errors.New("alert not found")
	ErrInvalidLandArea  = errors.New("invalid land area")
)

// Analyzer is the subset of *analyzer.Analyzer the service needs.
type Analyzer interface {
	AnalyzeWithPath(ctx context.Context, input model.AnalysisInput) (*model.AnalysisResult, analyzer.Path)
}

type AnalyzeRequest struct {
	LandAreaID  uuid.UUID `json:"land_area_id" binding:"required"`
	ImageBase64 string    `json:"image_base64"`
}

type AnalyzeResponse struct {
	Success      bool                  `json:"success"`
	Analysis     *model.AnalysisResult `json:"analysis"`
	SoilHealthID uuid.UUID             `json:"soil_health_id"`
	AlertID      *uuid.UUID            `json:"alert_id,omitempty"`
	AnalysisPath analyzer.Path         `json:"analysis_source"`
}

type CreateLandAreaRequest struct {
	Name        string   `json:"name" binding:"required"`
	Description *string  `json:"description"`
	LocationLat *float64 `json:"location_lat" binding:"required"`
	LocationLng *float64 `json:"location_lng" binding:"required"`
	AreaSize    *float64 `json:"area_size"`
	LandType    string   `json:"land_type"`
}

// Validate checks the request against coordinate bounds and the land type set.
func (r *CreateLandAreaRequest) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidLandArea)
	}
	if r.LocationLat == nil || !inRange(*r.LocationLat, -90, 90) {
		return fmt.Errorf("%w: location_lat is required and must be between -90 and 90", ErrInvalidLandArea)
	}
	if r.LocationLng == nil || !inRange(*r.LocationLng, -180, 180) {
		return fmt.Errorf("%w: location_lng is required and must be between -180 and 180", ErrInvalidLandArea)
	}
	if r.LandType != "" && !model.LandType(r.LandType).Valid() {
		return fmt.Errorf("%w: unknown land_type %q", ErrInvalidLandArea, r.LandType)
	}
	if r.AreaSize != nil && !inRange(*r.AreaSize, 0, math.MaxFloat64) {
		return fmt.Errorf("%w: area_size must be a non-negative number", ErrInvalidLandArea)
	}
	return nil
}

// inRange is false for NaN and infinities.
func inRange(v, lo, hi float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v >= lo && v <= hi
}

type Service struct {
	repo     store.Repository
	analyzer Analyzer
	logger   *zap.Logger
	now      func() time.Time
}

func NewService(repo store.Repository, a Analyzer, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		repo:     repo,
		analyzer: a,
		logger:   logger,
		now:      time.Now,
	}
}

func (s *Service) CreateLandArea(ctx context.Context, userID string, req *CreateLandAreaRequest) (*store.LandArea, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	area := &store.LandArea{
		ID:          uuid.New(),
		UserID:      userID,
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		LocationLat: *req.LocationLat,
		LocationLng: *req.LocationLng,
		AreaSize:    req.AreaSize,
	}
	if req.LandType != "" {
		lt := req.LandType
		area.LandType = &lt
	}

	if err := s.repo.CreateLandArea(ctx, area); err != nil {
		return nil, err
	}
	return area, nil
}

// GetLandArea returns one of the user's land areas.
func (s *Service) GetLandArea(ctx context.Context, userID string, id uuid.UUID) (*store.LandArea, error) {
	area, err := s.repo.GetLandArea(ctx, id, userID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrLandAreaNotFound
	}
	if err != nil {
		return nil, err
	}
	return area, nil
}

func (s *Service) ListLandAreas(ctx context.Context, userID string) ([]store.LandArea, error) {
	return s.repo.ListLandAreas(ctx, userID)
}

// AnalyzeLandArea analyzes one of the user's land areas, using its latest
// stored analysis as history, and stores the outcome.
func (s *Service) AnalyzeLandArea(ctx context.Context, userID string, req *AnalyzeRequest) (*AnalyzeResponse, error) {
	area, err := s.repo.GetLandArea(ctx, req.LandAreaID, userID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrLandAreaNotFound
	}
	if err != nil {
		return nil, err
	}

	previous, err := s.repo.LatestSoilHealth(ctx, area.ID)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			s.logger.Warn("Failed to load previous analysis", zap.Error(err), zap.String("land_area_id", area.ID.String()))
		}
		previous = nil
	}

	result, path := s.analyzer.AnalyzeWithPath(ctx, area.AnalysisInput(req.ImageBase64, previous))

	record := store.NewSoilHealthRecord(area.ID, result, req.ImageBase64, string(path), s.now())

	var alertRecord *store.AlertRecord
	if draft := alerts.Evaluate(area.Name, result); draft != nil {
		alertRecord = store.NewAlertRecord(area.ID, userID, draft)
	}

	recs := store.NewRecommendationRecords(record, result.Recommendations)

	if err := s.repo.SaveAnalysis(ctx, record, alertRecord, recs); err != nil {
		return nil, fmt.Errorf("store analysis: %w", err)
	}

	s.logger.Info("Soil analysis stored",
		zap.String("land_area_id", area.ID.String()),
		zap.String("soil_health_id", record.ID.String()),
		zap.String("analysis_source", string(path)),
		zap.Bool("alert", alertRecord != nil),
		zap.Int("recommendations", len(recs)),
	)

	resp := &AnalyzeResponse{
		Success:      true,
		Analysis:     result,
		SoilHealthID: record.ID,
		AnalysisPath: path,
	}
	if alertRecord != nil {
		resp.AlertID = &alertRecord.ID
	}
	return resp, nil
}

// History returns up to limit stored analyses for a land area, newest first.
func (s *Service) History(ctx context.Context, userID string, landAreaID uuid.UUID, limit int) ([]store.SoilHealthRecord, error) {
	if _, err := s.repo.GetLandArea(ctx, landAreaID, userID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrLandAreaNotFound
		}
		return nil, err
	}
	return s.repo.ListSoilHealth(ctx, landAreaID, limit)
}

func (s *Service) Alerts(ctx context.Context, userID string, unreadOnly bool) ([]store.AlertRecord, error) {
	return s.repo.ListAlerts(ctx, userID, unreadOnly)
}

func (s *Service) MarkAlertRead(ctx context.Context, userID string, alertID uuid.UUID) error {
	err := s.repo.MarkAlertRead(ctx, alertID, userID)
	if errors.Is(err, store.ErrNotFound) {
		return ErrAlertNotFound
	}
	return err
}

func (s *Service) DeleteAlert(ctx context.Context, userID string, alertID uuid.UUID) error {
	err := s.repo.DeleteAlert(ctx, alertID, userID)
	if errors.Is(err, store.ErrNotFound) {
		return ErrAlertNotFound
	}
	return err
}
