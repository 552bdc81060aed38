package model

// LandType is the closed set of land classifications a land area can carry.
type LandType string

const (
	LandAgricultural LandType = "agricultural"
	LandForest       LandType = "forest"
	LandGrassland    LandType = "grassland"
	LandUrban        LandType = "urban"
	LandMixed        LandType = "mixed"
)

// Valid reports whether t is one of the known land types.
func (t LandType) Valid() bool {
	switch t {
	case LandAgricultural, LandForest, LandGrassland, LandUrban, LandMixed:
		return true
	}
	return false
}

type ErosionRisk string

const (
	ErosionLow      ErosionRisk = "low"
	ErosionModerate ErosionRisk = "moderate"
	ErosionHigh     ErosionRisk = "high"
	ErosionCritical ErosionRisk = "critical"
)

func (r ErosionRisk) Valid() bool {
	switch r {
	case ErosionLow, ErosionModerate, ErosionHigh, ErosionCritical:
		return true
	}
	return false
}

type RecommendationType string

const (
	RecReforestation    RecommendationType = "reforestation"
	RecSoilConservation RecommendationType = "soil_conservation"
	RecIrrigation       RecommendationType = "irrigation"
	RecCropRotation     RecommendationType = "crop_rotation"
	RecFertilization    RecommendationType = "fertilization"
	RecGeneral          RecommendationType = "general"
)

func (t RecommendationType) Valid() bool {
	switch t {
	case RecReforestation, RecSoilConservation, RecIrrigation, RecCropRotation, RecFertilization, RecGeneral:
		return true
	}
	return false
}

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

type Location struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// PreviousData summarises the most recent stored analysis of a land area.
// Either field may be absent.
type PreviousData struct {
	DegradationLevel *float64    `json:"degradation_level,omitempty"`
	ErosionRisk      ErosionRisk `json:"erosion_risk,omitempty"`
}

// AnalysisInput is everything the analyzer knows about a land area for one run.
// ImageBase64 is carried through untouched.
type AnalysisInput struct {
	ImageBase64  string        `json:"imageBase64,omitempty"`
	Location     Location      `json:"location"`
	LandType     LandType      `json:"landType,omitempty"`
	PreviousData *PreviousData `json:"previousData,omitempty"`
}

// AnalysisResult is the normalized output of a soil-health analysis. Every
// field is populated and within range once it leaves the analyzer.
type AnalysisResult struct {
	SoilMoisture      float64          `json:"soil_moisture" yaml:"soil_moisture"`
	VegetationIndex   float64          `json:"vegetation_index" yaml:"vegetation_index"`
	ErosionRisk       ErosionRisk      `json:"erosion_risk" yaml:"erosion_risk"`
	DegradationLevel  float64          `json:"degradation_level" yaml:"degradation_level"`
	SoilPH            float64          `json:"soil_ph" yaml:"soil_ph"`
	OrganicMatter     float64          `json:"organic_matter" yaml:"organic_matter"`
	Temperature       float64          `json:"temperature" yaml:"temperature"`
	AIAnalysisSummary string           `json:"ai_analysis_summary" yaml:"ai_analysis_summary"`
	Recommendations   []Recommendation `json:"recommendations" yaml:"recommendations"`
}

type Recommendation struct {
	Type        RecommendationType `json:"type" yaml:"type"`
	Title       string             `json:"title" yaml:"title"`
	Description string             `json:"description" yaml:"description"`
	Priority    Priority           `json:"priority" yaml:"priority"`
}

// Field bounds for AnalysisResult values. Temperature is unbounded.
const (
	MinSoilMoisture     = 0.0
	MaxSoilMoisture     = 100.0
	MinVegetationIndex  = -1.0
	MaxVegetationIndex  = 1.0
	MinDegradationLevel = 0.0
	MaxDegradationLevel = 100.0
	MinSoilPH           = 0.0
	MaxSoilPH           = 14.0
	MinOrganicMatter    = 0.0
	MaxOrganicMatter    = 10.0
)
