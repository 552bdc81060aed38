package prompts

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/helmcode/soilguard/pkg/model"
)

// BuildSoilPrompt renders the soil-health assessment prompt for input.
func BuildSoilPrompt(input model.AnalysisInput) string {
	landType := string(input.LandType)
	if landType == "" {
		landType = "Unknown"
	}

	// Previous-analysis lines are added independently of each other
	var history []string
	if prev := input.PreviousData; prev != nil {
		if prev.DegradationLevel != nil {
			history = append(history, fmt.Sprintf("Previous Degradation Level: %s%%", formatNumber(*prev.DegradationLevel)))
		}
		if prev.ErosionRisk != "" {
			history = append(history, fmt.Sprintf("Previous Erosion Risk: %s", prev.ErosionRisk))
		}
	}

	historyText := ""
	if len(history) > 0 {
		historyText = "\n" + strings.Join(history, "\n")
	}

	return fmt.Sprintf(`You are an expert in soil science, agriculture, and land degradation analysis. Analyze the following land area data and provide a comprehensive soil health assessment.

Location: Latitude %s, Longitude %s
Land Type: %s%s

Based on satellite imagery analysis and environmental data, provide:

1. Soil Moisture Estimate (0-100%%)
2. Vegetation Index/NDVI (-1 to 1, where higher is better)
3. Erosion Risk Level (low/moderate/high/critical)
4. Overall Degradation Level (0-100%%)
5. Estimated Soil pH (4.0-9.0)
6. Organic Matter Content (0-10%%)
7. Estimated Temperature (°C)
8. A detailed analysis summary (2-3 sentences)
9. Top 3 actionable recommendations with priority levels

Respond in JSON format with these exact keys:
{
  "soil_moisture": number,
  "vegetation_index": number,
  "erosion_risk": "low" | "moderate" | "high" | "critical",
  "degradation_level": number,
  "soil_ph": number,
  "organic_matter": number,
  "temperature": number,
  "ai_analysis_summary": "string",
  "recommendations": [
    {
      "type": "reforestation" | "soil_conservation" | "irrigation" | "crop_rotation" | "fertilization",
      "title": "string",
      "description": "string",
      "priority": "low" | "medium" | "high"
    }
  ]
}`, formatNumber(input.Location.Lat), formatNumber(input.Location.Lng), landType, historyText)
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
