package analyzer

import (
	"encoding/json"
	"fmt"
)

const systemPrompt = `You are a personal wellness analyst. You analyze daily tracking data and provide actionable insights.

Always respond with valid JSON in this exact format:
{
    "summary": "2-3 sentence overview of the period",
    "trends": [
        {"metric": "Sleep", "direction": "up", "change": "+12%", "note": "Improving steadily"}
    ],
    "correlations": [
        {"pair": "Sleep → Mood", "strength": "strong", "description": "Better sleep correlates with higher mood"}
    ],
    "advice": [
        "Specific actionable recommendation based on the data"
    ]
}

Rules:
- "direction" must be "up", "down", or "stable"
- "strength" must be "strong", "moderate", or "weak"
- Provide 2-4 trends, 1-3 correlations, and 2-4 advice items
- Be specific and reference actual numbers from the data`

func buildPrompt(req Request) (string, error) {
	data, err := json.MarshalIndent(req.Data, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode tracking data: %w", err)
	}
	return fmt.Sprintf("Analyze this %s tracking data from %s to %s:\n\n%s\n\nProvide insights in the required JSON format.",
		req.ReportType, req.PeriodStart, req.PeriodEnd, data), nil
}
