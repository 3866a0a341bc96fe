package analyzer

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"
	"google.golang.org/genai"

	"github.com/julianstephens/tracked/internal/logger"
	"github.com/julianstephens/tracked/internal/models"
)

// GenAI analyzes data with a Gemini model.
type GenAI struct {
	client  *genai.Client
	model   string
	limiter *rate.Limiter
}

// NewGenAI creates a Gemini-backed analyzer. Outbound calls are limited to
// rps requests per second with the given burst.
func NewGenAI(ctx context.Context, apiKey, model string, rps float64, burst int) (*GenAI, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is required")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}
	return &GenAI{
		client:  client,
		model:   model,
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
	}, nil
}

func (g *GenAI) Name() string { return "genai:" + g.model }

func (g *GenAI) Analyze(ctx context.Context, req Request) (models.InsightContent, error) {
	if len(req.Data) == 0 {
		return models.InsightContent{}, ErrNoData
	}
	prompt, err := buildPrompt(req)
	if err != nil {
		return models.InsightContent{}, err
	}

	if err := g.limiter.Wait(ctx); err != nil {
		return models.InsightContent{}, fmt.Errorf("rate limiter: %w", err)
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(systemPrompt, genai.RoleUser),
		ResponseMIMEType:  "application/json",
		ResponseSchema:    insightSchema(),
	})
	if err != nil {
		return models.InsightContent{}, fmt.Errorf("gemini request failed: %w", err)
	}

	content, ok := ParseContent(resp.Text())
	if !ok {
		logger.Warn("Model reply was not usable, returning fallback content", "model", g.model, "report_type", req.ReportType)
	}
	return content, nil
}
