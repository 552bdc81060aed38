package formatter

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"gopkg.in/yaml.v3"

	"github.com/helmcode/soilguard/pkg/model"
)

// DisplayResults writes the analysis to w in the given format.
// source names the path that produced it and is shown in human output only.
func DisplayResults(w io.Writer, result *model.AnalysisResult, source, format string) error {
	switch format {
	case "json":
		return displayJSON(w, result)
	case "yaml":
		return displayYAML(w, result)
	case "human", "":
		displayHuman(w, result, source)
		return nil
	default:
		return fmt.Errorf("unknown output format %q (use human, json or yaml)", format)
	}
}

func displayJSON(w io.Writer, result *model.AnalysisResult) error {
	output, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(output))
	return err
}

func displayYAML(w io.Writer, result *model.AnalysisResult) error {
	output, err := yaml.Marshal(result)
	if err != nil {
		return err
	}
	_, err = fmt.Fprint(w, string(output))
	return err
}

func displayHuman(w io.Writer, r *model.AnalysisResult, source string) {
	cyan := color.New(color.FgCyan, color.Bold)
	white := color.New(color.FgWhite, color.Bold)

	fmt.Fprintln(w)

	riskColor := getErosionColor(r.ErosionRisk)
	riskColor.Fprintf(w, "%s EROSION RISK: %s\n", getErosionIcon(r.ErosionRisk), strings.ToUpper(string(r.ErosionRisk)))
	fmt.Fprintf(w, "   Degradation level: %s\n\n", degradationString(r.DegradationLevel))

	white.Fprintln(w, "🌱 SOIL METRICS:")
	fmt.Fprintf(w, "   Soil moisture:     %.1f%%\n", r.SoilMoisture)
	fmt.Fprintf(w, "   Vegetation index:  %.2f\n", r.VegetationIndex)
	fmt.Fprintf(w, "   Soil pH:           %.1f\n", r.SoilPH)
	fmt.Fprintf(w, "   Organic matter:    %.1f%%\n", r.OrganicMatter)
	fmt.Fprintf(w, "   Temperature:       %.1f°C\n\n", r.Temperature)

	white.Fprintln(w, "📄 SUMMARY:")
	fmt.Fprintln(w, wrapText(r.AIAnalysisSummary, 80, "   "))
	fmt.Fprintln(w)

	if len(r.Recommendations) > 0 {
		cyan.Fprintln(w, "💡 RECOMMENDATIONS:")
		for i, rec := range r.Recommendations {
			fmt.Fprintf(w, "   %d. %s %s (%s)\n", i+1, getPriorityIcon(rec.Priority), rec.Title, rec.Type)
			if rec.Description != "" {
				fmt.Fprintln(w, wrapText(rec.Description, 80, "      "))
			}
			fmt.Fprintln(w)
		}
	}

	fmt.Fprintln(w, strings.Repeat("─", 80))
	if source != "" {
		fmt.Fprintf(w, "Source: %s\n", source)
	}
	fmt.Fprintf(w, "💡 %s\n", color.HiBlackString("Run with -o json or -o yaml for machine-readable output"))
}

func degradationString(level float64) string {
	s := fmt.Sprintf("%.1f%%", level)
	switch {
	case level > 80:
		return color.RedString(s)
	case level > 60:
		return color.YellowString(s)
	default:
		return color.GreenString(s)
	}
}

func getErosionColor(risk model.ErosionRisk) *color.Color {
	switch risk {
	case model.ErosionCritical:
		return color.New(color.FgRed, color.Bold)
	case model.ErosionHigh:
		return color.New(color.FgRed)
	case model.ErosionModerate:
		return color.New(color.FgYellow)
	case model.ErosionLow:
		return color.New(color.FgGreen)
	default:
		return color.New(color.FgWhite)
	}
}

func getErosionIcon(risk model.ErosionRisk) string {
	switch risk {
	case model.ErosionCritical:
		return "🔴"
	case model.ErosionHigh:
		return "🟠"
	case model.ErosionModerate:
		return "🟡"
	case model.ErosionLow:
		return "🟢"
	default:
		return "⚪"
	}
}

func getPriorityIcon(priority model.Priority) string {
	switch priority {
	case model.PriorityHigh:
		return "⚡"
	case model.PriorityMedium:
		return "🔹"
	case model.PriorityLow:
		return "▫️"
	default:
		return "•"
	}
}

func wrapText(text string, width int, indent string) string {
	var result strings.Builder
	lines := strings.Split(text, "\n")

	for _, line := range lines {
		words := strings.Fields(line)
		if len(words) == 0 {
			result.WriteString("\n")
			continue
		}

		currentLine := indent
		for _, word := range words {
			if len(currentLine)+len(word)+1 > width {
				result.WriteString(currentLine + "\n")
				currentLine = indent + word
			} else if currentLine == indent {
				currentLine += word
			} else {
				currentLine += " " + word
			}
		}

		if currentLine != indent {
			result.WriteString(currentLine + "\n")
		}
	}

	return strings.TrimSuffix(result.String(), "\n")
}
