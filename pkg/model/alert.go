package model

type AlertType string

const (
	AlertErosion         AlertType = "erosion"
	AlertVegetationLoss  AlertType = "vegetation_loss"
	AlertMoistureDeficit AlertType = "moisture_deficit"
	AlertDegradation     AlertType = "degradation"
	AlertGeneral         AlertType = "general"
)

type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// AlertDraft is an alert derived from an analysis result, before it is stored.
type AlertDraft struct {
	Type     AlertType `json:"alert_type"`
	Severity Severity  `json:"severity"`
	Title    string    `json:"title"`
	Message  string    `json:"message"`
}
