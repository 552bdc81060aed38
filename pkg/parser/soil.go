package parser

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/helmcode/soilguard/pkg/fallback"
	"github.com/helmcode/soilguard/pkg/model"
)

const defaultSummary = "Analysis complete. The area shows typical characteristics for the region with moderate vegetation cover."

// ParseError means the model answered but no usable JSON object could be
// recovered from the text.
type ParseError struct {
	Reason string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("parse soil response: %s: %v", e.Reason, e.Err)
	}
	return "parse soil response: " + e.Reason
}

func (e *ParseError) Unwrap() error { return e.Err }

// ExtractJSON returns the span from the first '{' to the last '}' in raw.
// Braces in surrounding prose will widen the span and usually make it fail
// to decode; callers treat that the same as no span at all.
func ExtractJSON(raw string) (string, error) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end < start {
		return "", &ParseError{Reason: "no JSON object in response"}
	}
	return raw[start : end+1], nil
}

// ParseSoilResponse decodes a model answer into a complete AnalysisResult.
// Fields that are missing, null, mistyped or out of range are filled from gen
// one by one; only an undecodable answer is an error.
func ParseSoilResponse(raw string, gen *fallback.Generator) (*model.AnalysisResult, error) {
	span, err := ExtractJSON(raw)
	if err != nil {
		return nil, err
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(span), &fields); err != nil {
		return nil, &ParseError{Reason: "invalid JSON object", Err: err}
	}

	if gen == nil {
		gen = fallback.New(nil)
	}

	result := &model.AnalysisResult{}

	result.SoilMoisture = numberOr(fields, "soil_moisture", model.MinSoilMoisture, model.MaxSoilMoisture, gen.SoilMoisture)
	result.VegetationIndex = numberOr(fields, "vegetation_index", model.MinVegetationIndex, model.MaxVegetationIndex, gen.VegetationIndex)
	result.DegradationLevel = numberOr(fields, "degradation_level", model.MinDegradationLevel, model.MaxDegradationLevel, gen.DegradationLevel)
	result.SoilPH = numberOr(fields, "soil_ph", model.MinSoilPH, model.MaxSoilPH, gen.SoilPH)
	result.OrganicMatter = numberOr(fields, "organic_matter", model.MinOrganicMatter, model.MaxOrganicMatter, gen.OrganicMatter)
	result.Temperature = numberOr(fields, "temperature", -100, 100, gen.Temperature)

	result.ErosionRisk = model.ErosionRisk(strings.ToLower(stringField(fields, "erosion_risk")))
	if !result.ErosionRisk.Valid() {
		result.ErosionRisk = fallback.ErosionRiskFor(result.DegradationLevel)
	}

	result.AIAnalysisSummary = stringField(fields, "ai_analysis_summary")
	if result.AIAnalysisSummary == "" {
		result.AIAnalysisSummary = defaultSummary
	}

	result.Recommendations = recommendations(fields["recommendations"])

	return result, nil
}

// numberOr returns fields[key] when it holds a number (or a numeric string)
// inside [lo, hi], otherwise def(). NaN and infinities are never accepted.
func numberOr(fields map[string]json.RawMessage, key string, lo, hi float64, def func() float64) float64 {
	raw, ok := fields[key]
	if !ok {
		return def()
	}

	var v float64
	if err := json.Unmarshal(raw, &v); err != nil {
		var s string
		if json.Unmarshal(raw, &s) != nil {
			return def()
		}
		parsed, err := strconv.ParseFloat(strings.TrimSuffix(strings.TrimSpace(s), "%"), 64)
		if err != nil {
			return def()
		}
		v = parsed
	}
	// json.Unmarshal leaves v untouched for a null value.
	if string(raw) == "null" || math.IsNaN(v) || math.IsInf(v, 0) || v < lo || v > hi {
		return def()
	}
	return v
}

func stringField(fields map[string]json.RawMessage, key string) string {
	raw, ok := fields[key]
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return strings.TrimSpace(s)
}

type rawRecommendation struct {
	Type        string `json:"type"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Priority    string `json:"priority"`
}

func recommendations(raw json.RawMessage) []model.Recommendation {
	out := []model.Recommendation{}
	if len(raw) == 0 {
		return out
	}

	var items []rawRecommendation
	if err := json.Unmarshal(raw, &items); err != nil {
		return out
	}

	for _, item := range items {
		title := strings.TrimSpace(item.Title)
		if title == "" {
			continue
		}

		recType := model.RecommendationType(strings.ToLower(strings.TrimSpace(item.Type)))
		if !recType.Valid() {
			recType = model.RecGeneral
		}
		priority := model.Priority(strings.ToLower(strings.TrimSpace(item.Priority)))
		if !priority.Valid() {
			priority = model.PriorityMedium
		}

		out = append(out, model.Recommendation{
			Type:        recType,
			Title:       title,
			Description: strings.TrimSpace(item.Description),
			Priority:    priority,
		})
	}
	return out
}
