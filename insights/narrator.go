// Package insights turns a computed forecast into a short written analysis
// using the Gemini API. The numbers always come from the forecast engine;
// the model only comments on them.
package insights

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"retailforecast/models"
)

// ForecastContext is everything the narrator is told about one forecast.
type ForecastContext struct {
	ItemID   string
	ShopID   string
	Now      time.Time
	Forecast models.ForecastResult
	Monthly  []models.PeriodBucket
}

// Narrator writes a qualitative analysis of a forecast.
type Narrator interface {
	Narrate(ctx context.Context, fc ForecastContext) (*models.AiAnalysis, error)
}

// GeminiNarrator is a Narrator backed by a Gemini generative model.
type GeminiNarrator struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

// NewGeminiNarrator connects to Gemini with an API key.
func NewGeminiNarrator(ctx context.Context, apiKey, modelName string) (*GeminiNarrator, error) {
	if apiKey == "" {
		return nil, errors.New("gemini api key is empty")
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	model := client.GenerativeModel(modelName)
	model.SetTemperature(0.2)
	model.ResponseMIMEType = "application/json"

	return &GeminiNarrator{client: client, model: model}, nil
}

// Close releases the underlying client.
func (n *GeminiNarrator) Close() error {
	return n.client.Close()
}

func (n *GeminiNarrator) Narrate(ctx context.Context, fc ForecastContext) (*models.AiAnalysis, error) {
	resp, err := n.model.GenerateContent(ctx, genai.Text(BuildPrompt(fc)))
	if err != nil {
		return nil, fmt.Errorf("gemini generate: %w", err)
	}
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, errors.New("no content received from AI")
	}

	var text strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			text.WriteString(string(txt))
		}
	}
	return ParseAnalysis(text.String())
}

const analysisFormat = `{"summary":"string","positive_factors":["string",...],"negative_factors":["string",...]}`

// BuildPrompt renders the forecast and its monthly history as a prompt.
func BuildPrompt(fc ForecastContext) string {
	var history strings.Builder
	for _, b := range fc.Monthly {
		fmt.Fprintf(&history, "- %s: %s\n", b.Period, b.TotalSales.StringFixed(2))
	}
	if history.Len() == 0 {
		history.WriteString("No monthly sales available.\n")
	}

	shop := fc.ShopID
	if shop == "" {
		shop = "all shops"
	}
	f := fc.Forecast

	return fmt.Sprintf(`You are an expert retail data analyst. A statistical model has already produced the forecast below. Do not change any number; explain what drives it.

Item: %s
Shop: %s
Today's Date: %s

Forecast:
- Sales in history: %d (%d in the current calendar month)
- Average revenue per sale: %s
- Seasonal factor for this month: %s
- Predicted revenue per sale: %s
- Confidence: %.1f / 100

Monthly revenue history:
%s
Reply with a single minified JSON object with exactly this structure and nothing else:
%s
`,
		fc.ItemID, shop, fc.Now.Format("2006-01-02"),
		f.SampleSize, f.SameMonthSamples,
		f.AverageRevenue.StringFixed(2),
		f.SeasonalFactor.StringFixed(4),
		f.PredictedRevenue.StringFixed(2),
		f.Confidence,
		history.String(), analysisFormat)
}

// ParseAnalysis extracts the JSON object from a model reply.
func ParseAnalysis(raw string) (*models.AiAnalysis, error) {
	jsonStr := extractJSON(raw)
	if jsonStr == "" {
		log.Printf("⚠️  [INSIGHTS] Could not extract JSON from Gemini response: %s", raw)
		return nil, errors.New("failed to parse AI response format")
	}

	var analysis models.AiAnalysis
	if err := json.Unmarshal([]byte(jsonStr), &analysis); err != nil {
		return nil, fmt.Errorf("decode AI analysis: %w", err)
	}
	if analysis.PositiveFactors == nil {
		analysis.PositiveFactors = []string{}
	}
	if analysis.NegativeFactors == nil {
		analysis.NegativeFactors = []string{}
	}
	return &analysis, nil
}

func extractJSON(rawString string) string {
	start := strings.Index(rawString, "{")
	end := strings.LastIndex(rawString, "}")
	if start == -1 || end == -1 || end < start {
		return ""
	}
	return rawString[start : end+1]
}
