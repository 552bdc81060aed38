package store

import (
	"time"

	"github.com/google/uuid"

	"github.com/helmcode/soilguard/pkg/model"
)

// LandArea is a user-registered zone being monitored.
type LandArea struct {
	ID          uuid.UUID `json:"id" gorm:"primaryKey;type:uuid"`
	UserID      string    `json:"user_id" gorm:"not null;index"`
	Name        string    `json:"name" gorm:"not null"`
	Description *string   `json:"description"`
	LocationLat float64   `json:"location_lat" gorm:"not null"`
	LocationLng float64   `json:"location_lng" gorm:"not null"`
	AreaSize    *float64  `json:"area_size"`
	LandType    *string   `json:"land_type"`
	CreatedAt   time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt   time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

func (LandArea) TableName() string { return "land_areas" }

// AnalysisInput describes the land area to the analyzer.
func (l *LandArea) AnalysisInput(imageBase64 string, previous *SoilHealthRecord) model.AnalysisInput {
	input := model.AnalysisInput{
		ImageBase64: imageBase64,
		Location:    model.Location{Lat: l.LocationLat, Lng: l.LocationLng},
	}
	if l.LandType != nil {
		input.LandType = model.LandType(*l.LandType)
	}
	if previous != nil {
		input.PreviousData = previous.PreviousData()
	}
	return input
}

// SoilHealthRecord is one stored analysis of a land area.
type SoilHealthRecord struct {
	ID                uuid.UUID `json:"id" gorm:"primaryKey;type:uuid"`
	LandAreaID        uuid.UUID `json:"land_area_id" gorm:"type:uuid;not null;index"`
	AnalysisDate      time.Time `json:"analysis_date" gorm:"not null;index"`
	SoilMoisture      *float64  `json:"soil_moisture"`
	VegetationIndex   *float64  `json:"vegetation_index"`
	ErosionRisk       *string   `json:"erosion_risk"`
	DegradationLevel  *float64  `json:"degradation_level"`
	SoilPH            *float64  `json:"soil_ph"`
	OrganicMatter     *float64  `json:"organic_matter"`
	Temperature       *float64  `json:"temperature"`
	AIAnalysisSummary *string   `json:"ai_analysis_summary"`
	SatelliteImageURL *string   `json:"satellite_image_url"`
	AnalysisSource    string    `json:"analysis_source"`
	CreatedAt         time.Time `json:"created_at" gorm:"autoCreateTime"`
}

func (SoilHealthRecord) TableName() string { return "soil_health_data" }

// NewSoilHealthRecord copies r into a record for landAreaID. An empty image is
// stored as NULL.
func NewSoilHealthRecord(landAreaID uuid.UUID, r *model.AnalysisResult, imageBase64, source string, at time.Time) *SoilHealthRecord {
	risk := string(r.ErosionRisk)
	summary := r.AIAnalysisSummary
	rec := &SoilHealthRecord{
		ID:                uuid.New(),
		LandAreaID:        landAreaID,
		AnalysisDate:      at,
		SoilMoisture:      float(r.SoilMoisture),
		VegetationIndex:   float(r.VegetationIndex),
		ErosionRisk:       &risk,
		DegradationLevel:  float(r.DegradationLevel),
		SoilPH:            float(r.SoilPH),
		OrganicMatter:     float(r.OrganicMatter),
		Temperature:       float(r.Temperature),
		AIAnalysisSummary: &summary,
		AnalysisSource:    source,
	}
	if imageBase64 != "" {
		rec.SatelliteImageURL = &imageBase64
	}
	return rec
}

// PreviousData extracts the fields the prompt uses as history. It returns nil
// when neither is stored.
func (s *SoilHealthRecord) PreviousData() *model.PreviousData {
	if s.DegradationLevel == nil && s.ErosionRisk == nil {
		return nil
	}
	prev := &model.PreviousData{}
	if s.DegradationLevel != nil {
		d := *s.DegradationLevel
		prev.DegradationLevel = &d
	}
	if s.ErosionRisk != nil {
		prev.ErosionRisk = model.ErosionRisk(*s.ErosionRisk)
	}
	return prev
}

func float(v float64) *float64 { return &v }

type AlertRecord struct {
	ID         uuid.UUID `json:"id" gorm:"primaryKey;type:uuid"`
	LandAreaID uuid.UUID `json:"land_area_id" gorm:"type:uuid;not null;index"`
	UserID     string    `json:"user_id" gorm:"not null;index"`
	AlertType  string    `json:"alert_type" gorm:"not null"`
	Severity   string    `json:"severity" gorm:"not null"`
	Title      string    `json:"title" gorm:"not null"`
	Message    string    `json:"message" gorm:"not null"`
	IsRead     bool      `json:"is_read" gorm:"default:false"`
	CreatedAt  time.Time `json:"created_at" gorm:"autoCreateTime"`
}

func (AlertRecord) TableName() string { return "alerts" }

func NewAlertRecord(landAreaID uuid.UUID, userID string, d *model.AlertDraft) *AlertRecord {
	return &AlertRecord{
		ID:         uuid.New(),
		LandAreaID: landAreaID,
		UserID:     userID,
		AlertType:  string(d.Type),
		Severity:   string(d.Severity),
		Title:      d.Title,
		Message:    d.Message,
	}
}

type RecommendationRecord struct {
	ID                 uuid.UUID `json:"id" gorm:"primaryKey;type:uuid"`
	LandAreaID         uuid.UUID `json:"land_area_id" gorm:"type:uuid;not null;index"`
	SoilHealthDataID   uuid.UUID `json:"soil_health_data_id" gorm:"type:uuid;not null;index"`
	RecommendationType string    `json:"recommendation_type" gorm:"not null"`
	Title              string    `json:"title" gorm:"not null"`
	Description        string    `json:"description"`
	Priority           string    `json:"priority" gorm:"not null"`
	EstimatedImpact    *string   `json:"estimated_impact"`
	CreatedAt          time.Time `json:"created_at" gorm:"autoCreateTime"`
}

func (RecommendationRecord) TableName() string { return "recommendations" }

// NewRecommendationRecords maps recs in order onto rows tied to record.
func NewRecommendationRecords(record *SoilHealthRecord, recs []model.Recommendation) []RecommendationRecord {
	out := make([]RecommendationRecord, 0, len(recs))
	for _, rec := range recs {
		out = append(out, RecommendationRecord{
			ID:                 uuid.New(),
			LandAreaID:         record.LandAreaID,
			SoilHealthDataID:   record.ID,
			RecommendationType: string(rec.Type),
			Title:              rec.Title,
			Description:        rec.Description,
			Priority:           string(rec.Priority),
		})
	}
	return out
}
