package cmd

import (
	"context"
	"encoding/base64"
	"fmt"
	"math"
	"os"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/helmcode/soilguard/pkg/analyzer"
	"github.com/helmcode/soilguard/pkg/formatter"
	"github.com/helmcode/soilguard/pkg/llm"
	"github.com/helmcode/soilguard/pkg/logger"
	"github.com/helmcode/soilguard/pkg/model"
)

type analyzeOptions struct {
	lat                 float64
	lng                 float64
	landType            string
	previousDegradation float64
	previousErosion     string
	imagePath           string
	llmProvider         string
	llmModel            string
	timeout             time.Duration
	outputFormat        string
	verbose             bool
}

func NewAnalyzeCmd() *cobra.Command {
	opts := &analyzeOptions{}

	cmd := &cobra.Command{
		Use:   "analyze --lat LAT --lng LNG [flags]",
		Short: "Analyze soil health for a location with AI assistance",
		Long: `Estimate soil-health indicators for a land area and get remediation advice.

When no LLM provider is configured, or the provider fails, a synthesized
estimate is shown instead.

Examples:
  # Analyze an agricultural plot
  soilguard analyze --lat -1.2921 --lng 36.8219 --land-type agricultural

  # Include the previous reading and an aerial image
  soilguard analyze --lat 12.5 --lng -3.1 --previous-degradation 55 --previous-erosion moderate --image plot.jpg

  # Use OpenAI and print JSON
  soilguard analyze --lat 40.4 --lng -3.7 --provider openai -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd, opts)
		},
	}

	cmd.Flags().Float64Var(&opts.lat, "lat", 0, "Latitude of the land area")
	cmd.Flags().Float64Var(&opts.lng, "lng", 0, "Longitude of the land area")
	cmd.Flags().StringVar(&opts.landType, "land-type", "", "Land type (agricultural, forest, grassland, urban, mixed)")
	cmd.Flags().Float64Var(&opts.previousDegradation, "previous-degradation", 0, "Degradation level from the previous analysis (0-100)")
	cmd.Flags().StringVar(&opts.previousErosion, "previous-erosion", "", "Erosion risk from the previous analysis (low, moderate, high, critical)")
	cmd.Flags().StringVar(&opts.imagePath, "image", "", "Path to an image of the area")
	cmd.Flags().StringVar(&opts.llmProvider, "provider", "", "LLM provider (claude, openai). Defaults to $LLM_PROVIDER or claude")
	cmd.Flags().StringVar(&opts.llmModel, "model", "", "Model name for the selected provider")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", 60*time.Second, "Maximum time to wait for the LLM")
	cmd.Flags().StringVarP(&opts.outputFormat, "output", "o", "human", "Output format (human, json, yaml)")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "Verbose output")

	_ = cmd.MarkFlagRequired("lat")
	_ = cmd.MarkFlagRequired("lng")

	return cmd
}

func runAnalyze(cmd *cobra.Command, opts *analyzeOptions) error {
	input, err := opts.input(cmd)
	if err != nil {
		return err
	}

	human := opts.outputFormat == "human" || opts.outputFormat == ""

	level := "error"
	if opts.verbose {
		level = "debug"
	}
	// stdout carries the result document.
	log, err := logger.New(level, true, "stderr")
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	if human {
		printHeader(input)
	}

	client, err := llm.CreateFromEnv(opts.llmProvider, opts.llmModel)
	if err != nil {
		if human {
			printWarning(fmt.Sprintf("LLM unavailable (%v), using estimated values", err))
		}
		log.Debug("llm client not created", zap.Error(err))
	} else if human {
		printSuccess(fmt.Sprintf("Using model %s", client.Model()))
	}

	a := analyzer.NewWithLLM(client, analyzer.WithLogger(log))

	s := spinner.New(spinner.CharSets[11], 100*time.Millisecond)
	s.Suffix = " Analyzing soil health..."
	if human {
		s.Start()
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), opts.timeout)
	defer cancel()
	result, path := a.AnalyzeWithPath(ctx, input)

	s.Stop()
	if human {
		if path == analyzer.PathAI {
			printSuccess("Analysis complete")
		} else {
			printWarning("Model analysis unavailable, showing estimated values")
		}
	}

	return formatter.DisplayResults(cmd.OutOrStdout(), result, string(path), opts.outputFormat)
}

func (o *analyzeOptions) input(cmd *cobra.Command) (model.AnalysisInput, error) {
	if !inRange(o.lat, -90, 90) {
		return model.AnalysisInput{}, fmt.Errorf("--lat must be between -90 and 90")
	}
	if !inRange(o.lng, -180, 180) {
		return model.AnalysisInput{}, fmt.Errorf("--lng must be between -180 and 180")
	}

	input := model.AnalysisInput{
		Location: model.Location{Lat: o.lat, Lng: o.lng},
		LandType: model.LandType(o.landType),
	}
	if o.landType != "" && !input.LandType.Valid() {
		return model.AnalysisInput{}, fmt.Errorf("unknown --land-type %q", o.landType)
	}

	if cmd.Flags().Changed("previous-degradation") || o.previousErosion != "" {
		prev := &model.PreviousData{ErosionRisk: model.ErosionRisk(o.previousErosion)}
		if o.previousErosion != "" && !prev.ErosionRisk.Valid() {
			return model.AnalysisInput{}, fmt.Errorf("unknown --previous-erosion %q", o.previousErosion)
		}
		if cmd.Flags().Changed("previous-degradation") {
			if !inRange(o.previousDegradation, 0, 100) {
				return model.AnalysisInput{}, fmt.Errorf("--previous-degradation must be between 0 and 100")
			}
			d := o.previousDegradation
			prev.DegradationLevel = &d
		}
		input.PreviousData = prev
	}

	if o.imagePath != "" {
		data, err := os.ReadFile(o.imagePath)
		if err != nil {
			return model.AnalysisInput{}, fmt.Errorf("failed to read image: %w", err)
		}
		input.ImageBase64 = base64.StdEncoding.EncodeToString(data)
	}

	return input, nil
}

func inRange(v, lo, hi float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v >= lo && v <= hi
}

func printHeader(input model.AnalysisInput) {
	cyan := color.New(color.FgCyan, color.Bold)
	fmt.Println()
	cyan.Println("🌍 Soil Health Analyzer")
	fmt.Printf("📍 Location: %.4f, %.4f\n", input.Location.Lat, input.Location.Lng)
	if input.LandType != "" {
		fmt.Printf("🌾 Land type: %s\n", input.LandType)
	}
	if input.PreviousData != nil && input.PreviousData.DegradationLevel != nil {
		fmt.Printf("📊 Previous degradation: %.1f%%\n", *input.PreviousData.DegradationLevel)
	}
	fmt.Println()
}

func printSuccess(msg string) {
	green := color.New(color.FgGreen)
	green.Printf("✓ %s\n", msg)
}

func printWarning(msg string) {
	yellow := color.New(color.FgYellow)
	yellow.Printf("! %s\n", msg)
}
