package analyzer

import (
	"context"
	"errors"
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/helmcode/soilguard/pkg/fallback"
	"github.com/helmcode/soilguard/pkg/llm"
	"github.com/helmcode/soilguard/pkg/model"
)

// MockLLM is a mock implementation of the llm.LLM interface
type MockLLM struct {
	mock.Mock
}

func (m *MockLLM) Chat(ctx context.Context, prompt string, opts llm.Options) (string, error) {
	args := m.Called(ctx, prompt, opts)
	return args.String(0), args.Error(1)
}

func (m *MockLLM) Model() string {
	return "mock"
}

type panicLLM struct{}

func (panicLLM) Chat(context.Context, string, llm.Options) (string, error) { panic("boom") }
func (panicLLM) Model() string                                             { return "panic" }

var wantOptions = llm.Options{Temperature: 0.7, MaxTokens: 1500}

func assertComplete(t *testing.T, r *model.AnalysisResult) {
	t.Helper()
	require.NotNil(t, r)
	assert.True(t, r.SoilMoisture >= 0 && r.SoilMoisture <= 100, "soil_moisture %v", r.SoilMoisture)
	assert.True(t, r.VegetationIndex >= -1 && r.VegetationIndex <= 1, "vegetation_index %v", r.VegetationIndex)
	assert.True(t, r.DegradationLevel >= 0 && r.DegradationLevel <= 100, "degradation_level %v", r.DegradationLevel)
	assert.True(t, r.SoilPH >= 0 && r.SoilPH <= 14, "soil_ph %v", r.SoilPH)
	assert.True(t, r.OrganicMatter >= 0 && r.OrganicMatter <= 10, "organic_matter %v", r.OrganicMatter)
	assert.True(t, r.ErosionRisk.Valid())
	assert.NotEmpty(t, r.AIAnalysisSummary)
	assert.NotNil(t, r.Recommendations)
}

func TestAnalyzeEndToEnd(t *testing.T) {
	response := `Here is the assessment:
{"soil_moisture": 22, "vegetation_index": 0.15, "erosion_risk": "critical", "degradation_level": 72,
 "soil_ph": 6.1, "organic_matter": 1.4, "temperature": 24.5,
 "ai_analysis_summary": "Heavy degradation near Nairobi farmland.",
 "recommendations": [{"type": "soil_conservation", "title": "Terrace slopes", "description": "Build terraces.", "priority": "high"}]}`

	m := new(MockLLM)
	m.On("Chat", mock.Anything, mock.MatchedBy(func(p string) bool {
		return strings.Contains(p, "Latitude -1.29, Longitude 36.82") && strings.Contains(p, "Land Type: agricultural")
	}), wantOptions).Return(response, nil)

	a := NewWithLLM(m)
	r, path := a.AnalyzeWithPath(context.Background(), model.AnalysisInput{
		Location: model.Location{Lat: -1.29, Lng: 36.82},
		LandType: model.LandAgricultural,
	})

	assert.Equal(t, PathAI, path)
	assert.Equal(t, &model.AnalysisResult{
		SoilMoisture:      22,
		VegetationIndex:   0.15,
		ErosionRisk:       model.ErosionCritical,
		DegradationLevel:  72,
		SoilPH:            6.1,
		OrganicMatter:     1.4,
		Temperature:       24.5,
		AIAnalysisSummary: "Heavy degradation near Nairobi farmland.",
		Recommendations: []model.Recommendation{
			{Type: model.RecSoilConservation, Title: "Terrace slopes", Description: "Build terraces.", Priority: model.PriorityHigh},
		},
	}, r)
	m.AssertExpectations(t)
}

func TestAnalyzeGenerationFailure(t *testing.T) {
	m := new(MockLLM)
	m.On("Chat", mock.Anything, mock.Anything, wantOptions).
		Return("", &llm.GenerationError{Provider: llm.ProviderClaude, StatusCode: 529, Err: errors.New("overloaded")})

	core, logs := observer.New(zap.InfoLevel)
	a := NewWithLLM(m, WithLogger(zap.New(core)), WithGenerator(fallback.New(fixedSource(0))))

	r, path := a.AnalyzeWithPath(context.Background(), model.AnalysisInput{Location: model.Location{Lat: 1, Lng: 2}})

	assert.Equal(t, PathFallback, path)
	assertComplete(t, r)
	assert.Equal(t, 30.0, r.DegradationLevel)
	assert.Equal(t, fallback.DefaultRecommendations(), r.Recommendations)

	entries := logs.FilterField(zap.String("path", "fallback")).All()
	require.Len(t, entries, 1)
	assert.Equal(t, "generation", entries[0].ContextMap()["reason"])
	assert.Equal(t, "claude", entries[0].ContextMap()["provider"])
}

func TestAnalyzeParseFailure(t *testing.T) {
	m := new(MockLLM)
	m.On("Chat", mock.Anything, mock.Anything, wantOptions).Return("Sorry, I cannot help with that.", nil)

	core, logs := observer.New(zap.InfoLevel)
	a := NewWithLLM(m, WithLogger(zap.New(core)))

	r, path := a.AnalyzeWithPath(context.Background(), model.AnalysisInput{})

	assert.Equal(t, PathFallback, path)
	assertComplete(t, r)
	assert.Len(t, r.Recommendations, 3)

	entries := logs.FilterField(zap.String("reason", "parse")).All()
	assert.Len(t, entries, 1)
}

func TestAnalyzeWithoutLLM(t *testing.T) {
	r := NewWithLLM(nil).Analyze(context.Background(), model.AnalysisInput{})
	assertComplete(t, r)
	assert.Len(t, r.Recommendations, 3)
}

func TestAnalyzeRecoversPanickingClient(t *testing.T) {
	r, path := NewWithLLM(panicLLM{}).AnalyzeWithPath(context.Background(), model.AnalysisInput{})
	assert.Equal(t, PathFallback, path)
	assertComplete(t, r)
}

func TestAnalyzeAlwaysInDomain(t *testing.T) {
	responses := []string{
		`{"soil_moisture": 55, "erosion_risk": "high"}`,
		`{"soil_moisture": 400, "vegetation_index": -3, "soil_ph": 19}`,
		`{}`,
		`not json at all`,
		`{"broken": `,
		`{"degradation_level": 0, "vegetation_index": 0}`,
	}
	landTypes := []model.LandType{"", model.LandAgricultural, model.LandForest, model.LandGrassland, model.LandUrban, model.LandMixed}
	rng := rand.New(rand.NewSource(7))

	for i := 0; i < 300; i++ {
		m := new(MockLLM)
		if i%7 == 0 {
			m.On("Chat", mock.Anything, mock.Anything, wantOptions).Return("", errors.New("timeout"))
		} else {
			m.On("Chat", mock.Anything, mock.Anything, wantOptions).Return(responses[i%len(responses)], nil)
		}

		input := model.AnalysisInput{
			Location: model.Location{Lat: rng.Float64()*180 - 90, Lng: rng.Float64()*360 - 180},
			LandType: landTypes[i%len(landTypes)],
		}
		if i%2 == 0 {
			d := rng.Float64() * 100
			input.PreviousData = &model.PreviousData{DegradationLevel: &d}
			if i%4 == 0 {
				input.PreviousData.ErosionRisk = model.ErosionModerate
			}
		}

		assertComplete(t, NewWithLLM(m).Analyze(context.Background(), input))
	}
}

type fixedSource float64

func (f fixedSource) Float64() float64 { return float64(f) }
