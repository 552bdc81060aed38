// Package fallback synthesizes soil-health results without a model. The same
// per-field generators back the parser when a model answer omits a value.
package fallback

import (
	"fmt"
	"math/rand"

	"github.com/helmcode/soilguard/pkg/model"
)

// Source yields floats in [0, 1). *rand.Rand from math/rand and math/rand/v2
// both satisfy it.
type Source interface {
	Float64() float64
}

type globalSource struct{}

func (globalSource) Float64() float64 { return rand.Float64() }

// Generator draws plausible values for each AnalysisResult field.
type Generator struct {
	src Source
}

// New returns a Generator backed by src, or by the process-wide random source
// when src is nil. The default is safe for concurrent use.
func New(src Source) *Generator {
	if src == nil {
		src = globalSource{}
	}
	return &Generator{src: src}
}

func (g *Generator) uniform(lo, hi float64) float64 {
	return lo + g.src.Float64()*(hi-lo)
}

func (g *Generator) DegradationLevel() float64 { return g.uniform(30, 70) }
func (g *Generator) SoilMoisture() float64     { return g.uniform(40, 70) }
func (g *Generator) VegetationIndex() float64  { return g.uniform(0.3, 0.7) }
func (g *Generator) SoilPH() float64           { return g.uniform(6.0, 8.0) }
func (g *Generator) OrganicMatter() float64    { return g.uniform(2, 5) }
func (g *Generator) Temperature() float64      { return g.uniform(18, 30) }

// ErosionRiskFor maps a degradation level onto an erosion category. It never
// yields critical.
func ErosionRiskFor(degradation float64) model.ErosionRisk {
	switch {
	case degradation > 60:
		return model.ErosionHigh
	case degradation > 40:
		return model.ErosionModerate
	default:
		return model.ErosionLow
	}
}

// DefaultRecommendations returns a fresh copy of the fixed fallback advice.
func DefaultRecommendations() []model.Recommendation {
	return []model.Recommendation{
		{
			Type:        model.RecSoilConservation,
			Title:       "Implement Contour Farming",
			Description: "Reduce soil erosion by planting across slopes following the natural contours of the land. This helps slow water runoff and prevents soil loss.",
			Priority:    model.PriorityHigh,
		},
		{
			Type:        model.RecReforestation,
			Title:       "Plant Native Trees",
			Description: "Establish tree cover in degraded areas to improve soil structure, increase organic matter, and prevent erosion.",
			Priority:    model.PriorityMedium,
		},
		{
			Type:        model.RecIrrigation,
			Title:       "Optimize Water Management",
			Description: "Implement efficient irrigation systems to maintain optimal soil moisture levels and support vegetation growth.",
			Priority:    model.PriorityMedium,
		},
	}
}

// Synthesize builds a complete result for input without calling a model.
func (g *Generator) Synthesize(input model.AnalysisInput) *model.AnalysisResult {
	degradation := g.DegradationLevel()
	risk := ErosionRiskFor(degradation)

	return &model.AnalysisResult{
		DegradationLevel: degradation,
		ErosionRisk:      risk,
		SoilMoisture:     g.SoilMoisture(),
		VegetationIndex:  g.VegetationIndex(),
		SoilPH:           g.SoilPH(),
		OrganicMatter:    g.OrganicMatter(),
		Temperature:      g.Temperature(),
		AIAnalysisSummary: fmt.Sprintf(
			"Analysis of land area at %.4f, %.4f shows %s erosion risk with %.1f%% degradation. Vegetation cover is moderate with room for improvement through targeted interventions.",
			input.Location.Lat, input.Location.Lng, risk, degradation,
		),
		Recommendations: DefaultRecommendations(),
	}
}
