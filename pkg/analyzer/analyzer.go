package analyzer

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/helmcode/soilguard/pkg/fallback"
	"github.com/helmcode/soilguard/pkg/llm"
	"github.com/helmcode/soilguard/pkg/model"
	"github.com/helmcode/soilguard/pkg/parser"
	"github.com/helmcode/soilguard/pkg/prompts"
)

// Sampling settings for every soil-health generation call.
const (
	Temperature = 0.7
	MaxTokens   = 1500
)

// Path names which branch produced a result.
type Path string

const (
	PathAI       Path = "ai"
	PathFallback Path = "fallback"
)

type Analyzer struct {
	llm    llm.LLM
	gen    *fallback.Generator
	logger *zap.Logger
}

type Option func(*Analyzer)

// WithGenerator sets the random generator used for defaults and fallback.
func WithGenerator(g *fallback.Generator) Option {
	return func(a *Analyzer) { a.gen = g }
}

func WithLogger(l *zap.Logger) Option {
	return func(a *Analyzer) { a.logger = l }
}

// NewWithLLM builds an Analyzer around l. A nil l makes every analysis use the
// synthesized fallback.
func NewWithLLM(l llm.LLM, opts ...Option) *Analyzer {
	a := &Analyzer{llm: l}
	for _, opt := range opts {
		opt(a)
	}
	if a.gen == nil {
		a.gen = fallback.New(nil)
	}
	if a.logger == nil {
		a.logger = zap.NewNop()
	}
	return a
}

func NewFromEnv(opts ...Option) (*Analyzer, error) {
	l, err := llm.CreateFromEnv("", "")
	if err != nil {
		return nil, err
	}
	return NewWithLLM(l, opts...), nil
}

// Analyze always returns a complete result. Generation and parse failures are
// logged and answered with a synthesized result.
func (a *Analyzer) Analyze(ctx context.Context, input model.AnalysisInput) *model.AnalysisResult {
	result, _ := a.AnalyzeWithPath(ctx, input)
	return result
}

// AnalyzeWithPath is Analyze plus the branch that produced the result.
func (a *Analyzer) AnalyzeWithPath(ctx context.Context, input model.AnalysisInput) (*model.AnalysisResult, Path) {
	result, err := a.analyzeAI(ctx, input)
	if err == nil {
		a.logger.Info("soil analysis completed",
			zap.String("path", string(PathAI)),
			zap.Float64("lat", input.Location.Lat),
			zap.Float64("lng", input.Location.Lng),
		)
		return result, PathAI
	}

	fields := []zap.Field{
		zap.String("path", string(PathFallback)),
		zap.Float64("lat", input.Location.Lat),
		zap.Float64("lng", input.Location.Lng),
		zap.Error(err),
	}
	var perr *parser.ParseError
	var gerr *llm.GenerationError
	switch {
	case errors.As(err, &perr):
		fields = append(fields, zap.String("reason", "parse"))
	case errors.As(err, &gerr):
		fields = append(fields, zap.String("reason", "generation"), zap.String("provider", string(gerr.Provider)))
	default:
		fields = append(fields, zap.String("reason", "generation"))
	}
	a.logger.Warn("soil analysis fell back to synthesized data", fields...)

	return a.gen.Synthesize(input), PathFallback
}

func (a *Analyzer) analyzeAI(ctx context.Context, input model.AnalysisInput) (result *model.AnalysisResult, err error) {
	if a.llm == nil {
		return nil, errors.New("no LLM configured")
	}

	// A panicking client is treated like any other failed call.
	defer func() {
		if r := recover(); r != nil {
			result, err = nil, fmt.Errorf("LLM chat panicked: %v", r)
		}
	}()

	prompt := prompts.BuildSoilPrompt(input)

	rawResp, err := a.llm.Chat(ctx, prompt, llm.Options{Temperature: Temperature, MaxTokens: MaxTokens})
	if err != nil {
		return nil, fmt.Errorf("LLM chat: %w", err)
	}

	return parser.ParseSoilResponse(rawResp, a.gen)
}
