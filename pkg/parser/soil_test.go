package parser

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helmcode/soilguard/pkg/fallback"
	"github.com/helmcode/soilguard/pkg/model"
)

type fixedSource float64

func (f fixedSource) Float64() float64 { return float64(f) }

func assertInDomain(t *testing.T, r *model.AnalysisResult) {
	t.Helper()
	assert.GreaterOrEqual(t, r.SoilMoisture, model.MinSoilMoisture)
	assert.LessOrEqual(t, r.SoilMoisture, model.MaxSoilMoisture)
	assert.GreaterOrEqual(t, r.VegetationIndex, model.MinVegetationIndex)
	assert.LessOrEqual(t, r.VegetationIndex, model.MaxVegetationIndex)
	assert.GreaterOrEqual(t, r.DegradationLevel, model.MinDegradationLevel)
	assert.LessOrEqual(t, r.DegradationLevel, model.MaxDegradationLevel)
	assert.GreaterOrEqual(t, r.SoilPH, model.MinSoilPH)
	assert.LessOrEqual(t, r.SoilPH, model.MaxSoilPH)
	assert.GreaterOrEqual(t, r.OrganicMatter, model.MinOrganicMatter)
	assert.LessOrEqual(t, r.OrganicMatter, model.MaxOrganicMatter)
	assert.True(t, r.ErosionRisk.Valid())
	assert.NotEmpty(t, r.AIAnalysisSummary)
	assert.NotNil(t, r.Recommendations)
}

func TestParsePartialObject(t *testing.T) {
	raw := `noise {"soil_moisture": 55, "erosion_risk": "high"} trailing`

	r, err := ParseSoilResponse(raw, fallback.New(nil))
	require.NoError(t, err)

	assert.Equal(t, 55.0, r.SoilMoisture)
	assert.Equal(t, model.ErosionHigh, r.ErosionRisk)
	assertInDomain(t, r)

	assert.NotZero(t, r.VegetationIndex)
	assert.NotZero(t, r.DegradationLevel)
	assert.NotZero(t, r.SoilPH)
	assert.NotZero(t, r.OrganicMatter)
	assert.NotZero(t, r.Temperature)
	assert.Equal(t, defaultSummary, r.AIAnalysisSummary)
	assert.Empty(t, r.Recommendations)
}

func TestParseDefaultsUseGeneratorRanges(t *testing.T) {
	r, err := ParseSoilResponse(`{}`, fallback.New(fixedSource(0)))
	require.NoError(t, err)

	assert.Equal(t, 40.0, r.SoilMoisture)
	assert.Equal(t, 0.3, r.VegetationIndex)
	assert.Equal(t, 30.0, r.DegradationLevel)
	assert.Equal(t, 6.0, r.SoilPH)
	assert.Equal(t, 2.0, r.OrganicMatter)
	assert.Equal(t, 18.0, r.Temperature)
	assert.Equal(t, model.ErosionLow, r.ErosionRisk)
}

func TestParseNoBraces(t *testing.T) {
	_, err := ParseSoilResponse("I cannot analyse this location.", nil)

	var perr *ParseError
	require.True(t, errors.As(err, &perr))
	assert.Contains(t, perr.Error(), "no JSON object")
}

func TestParseReversedBraces(t *testing.T) {
	_, err := ParseSoilResponse("} nothing here {", nil)

	var perr *ParseError
	assert.True(t, errors.As(err, &perr))
}

func TestParseInvalidJSON(t *testing.T) {
	_, err := ParseSoilResponse(`{"soil_moisture": 55,,}`, nil)

	var perr *ParseError
	require.True(t, errors.As(err, &perr))
	assert.NotNil(t, perr.Unwrap())
}

func TestParseBracesInProse(t *testing.T) {
	// Known limitation: stray braces widen the span past the payload.
	_, err := ParseSoilResponse(`Use {curly} notes. {"soil_moisture": 55} done`, nil)

	var perr *ParseError
	assert.True(t, errors.As(err, &perr))
}

func TestParseFullySpecified(t *testing.T) {
	raw := "```json\n" + `{
  "soil_moisture": 33.5,
  "vegetation_index": -0.2,
  "erosion_risk": "critical",
  "degradation_level": 72,
  "soil_ph": 5.4,
  "organic_matter": 1.2,
  "temperature": 27,
  "ai_analysis_summary": "Severe sheet erosion on exposed slopes.",
  "recommendations": [
    {"type": "reforestation", "title": "Replant slopes", "description": "Use native species.", "priority": "high"},
    {"type": "crop_rotation", "title": "Rotate legumes", "description": "Fix nitrogen.", "priority": "low"}
  ]
}` + "\n```"

	r, err := ParseSoilResponse(raw, fallback.New(fixedSource(0.5)))
	require.NoError(t, err)

	assert.Equal(t, &model.AnalysisResult{
		SoilMoisture:      33.5,
		VegetationIndex:   -0.2,
		ErosionRisk:       model.ErosionCritical,
		DegradationLevel:  72,
		SoilPH:            5.4,
		OrganicMatter:     1.2,
		Temperature:       27,
		AIAnalysisSummary: "Severe sheet erosion on exposed slopes.",
		Recommendations: []model.Recommendation{
			{Type: model.RecReforestation, Title: "Replant slopes", Description: "Use native species.", Priority: model.PriorityHigh},
			{Type: model.RecCropRotation, Title: "Rotate legumes", Description: "Fix nitrogen.", Priority: model.PriorityLow},
		},
	}, r)
}

func TestParseZeroIsPresent(t *testing.T) {
	r, err := ParseSoilResponse(`{"vegetation_index": 0, "degradation_level": 0, "temperature": 0}`, fallback.New(fixedSource(0.5)))
	require.NoError(t, err)

	assert.Equal(t, 0.0, r.VegetationIndex)
	assert.Equal(t, 0.0, r.DegradationLevel)
	assert.Equal(t, 0.0, r.Temperature)
	assert.Equal(t, model.ErosionLow, r.ErosionRisk)
}

func TestParseRepairsMalformedFields(t *testing.T) {
	raw := `{
  "soil_moisture": "61%",
  "vegetation_index": 4,
  "erosion_risk": "extreme",
  "degradation_level": null,
  "soil_ph": "acidic",
  "organic_matter": -3,
  "temperature": true,
  "ai_analysis_summary": 12,
  "recommendations": "plant trees"
}`
	r, err := ParseSoilResponse(raw, fallback.New(fixedSource(1)))
	require.NoError(t, err)

	assert.Equal(t, 61.0, r.SoilMoisture)
	assert.InDelta(t, 0.7, r.VegetationIndex, 1e-9)
	assert.Equal(t, 70.0, r.DegradationLevel)
	assert.Equal(t, model.ErosionHigh, r.ErosionRisk)
	assert.Equal(t, 8.0, r.SoilPH)
	assert.Equal(t, 5.0, r.OrganicMatter)
	assert.Equal(t, 30.0, r.Temperature)
	assert.Equal(t, defaultSummary, r.AIAnalysisSummary)
	assert.Empty(t, r.Recommendations)
}

func TestParseRejectsNonFiniteNumbers(t *testing.T) {
	raw := `{
  "soil_moisture": "NaN",
  "degradation_level": "nan",
  "soil_ph": "Infinity",
  "organic_matter": "-Inf",
  "temperature": "+Inf"
}`
	r, err := ParseSoilResponse(raw, fallback.New(fixedSource(0.5)))
	require.NoError(t, err)

	assert.Equal(t, 55.0, r.SoilMoisture)
	assert.Equal(t, 50.0, r.DegradationLevel)
	assert.Equal(t, model.ErosionModerate, r.ErosionRisk)
	assert.Equal(t, 7.0, r.SoilPH)
	assert.Equal(t, 3.5, r.OrganicMatter)
	assert.Equal(t, 24.0, r.Temperature)
	assertInDomain(t, r)

	_, err = json.Marshal(r)
	assert.NoError(t, err)
}

func TestParseNormalizesRecommendations(t *testing.T) {
	raw := `{"recommendations": [
  {"type": "Mulching", "title": " Add mulch ", "description": "Cover bare soil.", "priority": "urgent"},
  {"type": "irrigation", "title": "", "description": "untitled", "priority": "low"},
  {"type": "IRRIGATION", "title": "Drip lines", "description": "", "priority": "HIGH"}
]}`
	r, err := ParseSoilResponse(raw, nil)
	require.NoError(t, err)

	require.Len(t, r.Recommendations, 2)
	assert.Equal(t, model.Recommendation{Type: model.RecGeneral, Title: "Add mulch", Description: "Cover bare soil.", Priority: model.PriorityMedium}, r.Recommendations[0])
	assert.Equal(t, model.Recommendation{Type: model.RecIrrigation, Title: "Drip lines", Priority: model.PriorityHigh}, r.Recommendations[1])
}

func TestExtractJSON(t *testing.T) {
	span, err := ExtractJSON("prefix {\"a\": {\"b\": 1}} suffix")
	require.NoError(t, err)
	assert.Equal(t, `{"a": {"b": 1}}`, span)
}
