package analyzer

import "google.golang.org/genai"

var (
	trendDirections      = []string{"up", "down", "stable"}
	correlationStrengths = []string{"strong", "moderate", "weak"}
)

func stringSchema(enum ...string) *genai.Schema {
	return &genai.Schema{Type: genai.TypeString, Enum: enum}
}

func objectSchema(props map[string]*genai.Schema, order ...string) *genai.Schema {
	return &genai.Schema{
		Type:             genai.TypeObject,
		Properties:       props,
		Required:         order,
		PropertyOrdering: order,
	}
}

// insightSchema describes the reply shape ParseContent expects.
func insightSchema() *genai.Schema {
	trend := objectSchema(map[string]*genai.Schema{
		"metric":    stringSchema(),
		"direction": stringSchema(trendDirections...),
		"change":    stringSchema(),
		"note":      stringSchema(),
	}, "metric", "direction", "change", "note")

	correlation := objectSchema(map[string]*genai.Schema{
		"pair":        stringSchema(),
		"strength":    stringSchema(correlationStrengths...),
		"description": stringSchema(),
	}, "pair", "strength", "description")

	return objectSchema(map[string]*genai.Schema{
		"summary":      stringSchema(),
		"trends":       {Type: genai.TypeArray, Items: trend},
		"correlations": {Type: genai.TypeArray, Items: correlation},
		"advice":       {Type: genai.TypeArray, Items: stringSchema()},
	}, "summary", "trends", "correlations", "advice")
}
