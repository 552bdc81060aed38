// Package alerts decides whether an analysis result warrants notifying the
// owner of a land area.
package alerts

import (
	"fmt"

	"github.com/helmcode/soilguard/pkg/model"
)

const (
	degradationAlertThreshold    = 60.0
	degradationCriticalThreshold = 80.0
)

// Evaluate returns the alert for r, or nil when r is below every threshold.
func Evaluate(landName string, r *model.AnalysisResult) *model.AlertDraft {
	if r == nil {
		return nil
	}

	erosive := r.ErosionRisk == model.ErosionHigh || r.ErosionRisk == model.ErosionCritical
	if r.DegradationLevel <= degradationAlertThreshold && !erosive {
		return nil
	}

	draft := &model.AlertDraft{
		Type:     model.AlertDegradation,
		Severity: model.SeverityHigh,
		Title:    "Significant Degradation Detected",
		Message: fmt.Sprintf("%s shows %.1f%% degradation with %s erosion risk. %s",
			landName, r.DegradationLevel, r.ErosionRisk, r.AIAnalysisSummary),
	}
	if erosive {
		draft.Type = model.AlertErosion
		draft.Title = "High Erosion Risk Detected"
	}
	if r.DegradationLevel > degradationCriticalThreshold || r.ErosionRisk == model.ErosionCritical {
		draft.Severity = model.SeverityCritical
	}
	return draft
}
