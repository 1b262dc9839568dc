package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/sirupsen/logrus"

	"github.com/flexfinder/backend/internal/domain"
)

// systemPrompt pins the model to the strict-JSON recommendation schema the
// pipeline parses. Changing the schema here requires a matching change in
// domain.Recommendation.
const systemPrompt = `
You are a helpful assistant trained on Crestron Flex product offerings.

Given room type, platform, and user needs, respond ONLY with strict JSON in this schema:
{
  "rationale": "overview + per-product details",
  "products": [
    {
      "name": "Product name",
      "summary": "1-2 sentence summary",
      "product_url": "https://www.crestron.com/....",
      "image_url": "https://... (direct image URL if available; otherwise empty)",
      "price": "string like '$2,499' or 'Request quote' if pricing isn't public",
      "why_fit": ["bullet 1", "bullet 2", "bullet 3"]
    }
  ]
}

Write the rationale as follows:
- Start with ONE concise sentence that connects the room type, platform, and the user’s needs to the overall solution approach.
- Then include an ITEMIZED LIST, one line per product, written to coach a beginner. For each line use this pattern:
  "<Product Name>: what it is (in plain English), where it goes in the room, what it plugs into/controls, and why it’s needed for this setup."
  Use simple, non-jargon language. If you use an acronym, write it once as Full Term (ACRONYM). Keep each line ~20–30 words.

Formatting rules:
- Put the overview sentence first, then each product line on its own line within the same rationale string (use line breaks).
- Do NOT use markdown formatting inside the JSON values.
- Keep the rationale under ~120 words total.

Guidelines:
- Favor products that match the platform (Teams / Zoom / Audio / Other).
- Reflect any constraints in the user needs (e.g., dual displays, ceiling mics, BYOD).
- Prefer image URLs hosted on crestron.com if possible; if unknown, leave image_url empty.
- For pricing, use a brief string (e.g., '$1,999', 'Starting at $X', or 'Request quote').
- Keep product list to 2–4 items max.
- Do NOT include any extra keys, comments, markdown, or text outside the JSON.
`

// ClientConfig holds configuration for the recommendation model client
type ClientConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float64
	MaxTokens   int64
}

// Client asks an OpenAI chat model for Flex product recommendations and
// parses the strict-JSON replies.
type Client struct {
	api         openai.Client
	apiKey      string
	model       string
	temperature float64
	maxTokens   int64
}

// NewClient creates a new recommendation model client
func NewClient(cfg ClientConfig) *Client {
	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini"
	}
	if cfg.Temperature == 0 {
		cfg.Temperature = 0.4
	}
	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = 900
	}

	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	return &Client{
		api:         openai.NewClient(opts...),
		apiKey:      cfg.APIKey,
		model:       cfg.Model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
	}
}

// Recommend asks the model for 2-4 products matching the room profile.
func (c *Client) Recommend(ctx context.Context, roomType, platform, needs string) (*domain.Recommendation, error) {
	if c.apiKey == "" {
		return nil, domain.ErrAPIKeyMissing
	}

	userPrompt := fmt.Sprintf("Room Type: %s\nPlatform: %s\nUser Needs: %s", roomType, platform, needs)

	req := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(userPrompt),
		},
		Temperature:         openai.Float(c.temperature),
		MaxCompletionTokens: openai.Int(c.maxTokens),
	}

	resp, err := c.api.Chat.Completions.New(ctx, req)
	if err != nil {
		logrus.Errorf("[LLM] chat completion failed: %v", err)
		return nil, fmt.Errorf("%w: %v", domain.ErrRecommendationFailure, err)
	}
	if len(resp.Choices) == 0 {
		return nil, domain.ErrEmptyCompletion
	}

	payload := stripCodeFences(resp.Choices[0].Message.Content)
	if strings.TrimSpace(payload) == "" {
		return nil, domain.ErrEmptyCompletion
	}

	var reco domain.Recommendation
	if err := json.Unmarshal([]byte(payload), &reco); err != nil {
		logrus.Errorf("[LLM] completion is not valid recommendation JSON: %v", err)
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedRecommendation, err)
	}

	normalize(&reco)
	logrus.Debugf("[LLM] parsed %d products from completion", len(reco.Products))
	return &reco, nil
}

// normalize fills the defaults the schema lets the model omit.
func normalize(reco *domain.Recommendation) {
	for i := range reco.Products {
		p := &reco.Products[i]
		if p.Price == "" {
			p.Price = "Request quote"
		}
		if p.WhyFit == nil {
			p.WhyFit = []string{}
		}
	}
}

// stripCodeFences unwraps a reply the model wrapped in a markdown code fence,
// tolerating an optional json language tag on the opening line.
func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}

	parts := strings.Split(s, "```")
	if len(parts) < 3 {
		return s
	}

	body := parts[1]
	if strings.HasPrefix(strings.TrimSpace(body), "json") {
		if idx := strings.Index(body, "\n"); idx >= 0 {
			body = body[idx+1:]
		} else {
			body = ""
		}
	}
	return body
}
