// Package openai talks to the OpenAI chat completions API over raw net/http.
// It serves as the text-generation collaborator for nutrition estimates and
// the vision collaborator that lists the foods in a photo.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"lg/plate-nutrition-api/nutrition"
)

// Defaults for Config fields left empty.
const (
	DefaultBaseURL     = "https://api.openai.com"
	DefaultModel       = "gpt-4o-mini"
	DefaultVisionModel = "gpt-4o"
	DefaultTimeout     = 30 * time.Second
	visionMaxTokens    = 1000
)

// An estimate reply is one small JSON object.
const (
	estimateTemperature = 0.3
	estimateMaxTokens   = 200
)

// ErrNoAPIKey is returned by every call when the client has no API key.
var ErrNoAPIKey = errors.New("OPENAI_API_KEY not set")

// Config holds client settings.
type Config struct {
	APIKey      string
	BaseURL     string
	Model       string
	VisionModel string
	Timeout     time.Duration
}

// Client is a chat completions client.
type Client struct {
	httpClient  *http.Client
	baseURL     string
	apiKey      string
	model       string
	visionModel string
}

var _ nutrition.TextGenerator = (*Client)(nil)

// NewClient builds a Client from cfg, filling in defaults.
func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.VisionModel == "" {
		cfg.VisionModel = DefaultVisionModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &Client{
		httpClient:  &http.Client{Timeout: cfg.Timeout},
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:      cfg.APIKey,
		model:       cfg.Model,
		visionModel: cfg.VisionModel,
	}
}

/* ─── Prompt constants ───────────────────────────────────────────────── */

const visionPrompt = `Analyze this food image and identify all food items visible. For each item, provide:
1. Food name (be specific, e.g., "Grilled Salmon" not just "Salmon")
2. Estimated quantity/portion size (e.g., "200g", "1 cup", "2 pieces")
3. Visual description to help with nutrition lookup

IMPORTANT - Use depth perception and visual cues for accurate size estimation:
- Compare food items to common reference objects if visible (plates, utensils, hands, coins)
- Consider perspective and camera angle
- Estimate volume/weight based on visual appearance and depth cues
- Be conservative with estimates - it's better to underestimate than overestimate
- If you can see reference objects, use them for scale estimation

Return the response as a JSON array of objects with this structure:
[
  {
    "name": "Food item name",
    "quantity": "Estimated quantity with unit (e.g., '200g', '1.5 cups', '3 pieces')",
    "description": "Visual description including any depth cues or reference objects"
  }
]

Be as accurate as possible with portion sizes. If you can see multiple items, list them all.`

/* ─── Wire types ─────────────────────────────────────────────────────── */

// message is a single chat message. Content is a string for text turns and
// a []contentPart for vision turns.
type message struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

type contentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *imageURL `json:"image_url,omitempty"`
}

type imageURL struct {
	URL string `json:"url"`
}

// chatRequest is the request body for /v1/chat/completions.
type chatRequest struct {
	Model          string         `json:"model"`
	Messages       []message      `json:"messages"`
	Temperature    float64        `json:"temperature"`
	MaxTokens      int            `json:"max_tokens,omitempty"`
	ResponseFormat map[string]any `json:"response_format,omitempty"`
}

/* ─── Calls ──────────────────────────────────────────────────────────── */

// Generate sends a system and user prompt and returns the first choice's
// content. The reply is constrained to a JSON object.
func (c *Client) Generate(ctx context.Context, system, prompt string) (string, error) {
	return c.complete(ctx, chatRequest{
		Model: c.model,
		Messages: []message{
			{Role: "system", Content: system},
			{Role: "user", Content: prompt},
		},
		Temperature:    estimateTemperature,
		MaxTokens:      estimateMaxTokens,
		ResponseFormat: map[string]any{"type": "json_object"},
	})
}

// IdentifyFoods asks the vision model to list the foods in the image at
// imageURL. Transport failures wrap nutrition.ErrUpstreamUnavailable and a
// reply that is not a valid mention list wraps nutrition.ErrMalformedMentions;
// neither is masked.
func (c *Client) IdentifyFoods(ctx context.Context, imageRef string) ([]nutrition.FoodMention, error) {
	content, err := c.complete(ctx, chatRequest{
		Model: c.visionModel,
		Messages: []message{{
			Role: "user",
			Content: []contentPart{
				{Type: "text", Text: visionPrompt},
				{Type: "image_url", ImageURL: &imageURL{URL: imageRef}},
			},
		}},
		MaxTokens: visionMaxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("identify foods: %w", err)
	}
	mentions, err := nutrition.ParseFoodMentions(content)
	if err != nil {
		return nil, fmt.Errorf("identify foods: %w", err)
	}
	if len(mentions) == 0 {
		log.Printf("[IdentifyFoods] no food items identified in %s", imageRef)
	}
	return mentions, nil
}

// complete posts body and returns choices[0].message.content. Every failure
// wraps nutrition.ErrUpstreamUnavailable.
func (c *Client) complete(ctx context.Context, body chatRequest) (string, error) {
	if c.apiKey == "" {
		return "", fmt.Errorf("%w: %w", ErrNoAPIKey, nutrition.ErrUpstreamUnavailable)
	}

	bodyBytes, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/chat/completions", bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("http request: %v: %w", err, nutrition.ErrUpstreamUnavailable)
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %v: %w", err, nutrition.ErrUpstreamUnavailable)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("openai returned status %d: %s: %w", resp.StatusCode, string(respBytes), nutrition.ErrUpstreamUnavailable)
	}

	var result struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
			FinishReason string `json:"finish_reason"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(respBytes, &result); err != nil {
		return "", fmt.Errorf("unmarshal response: %v: %w", err, nutrition.ErrUpstreamUnavailable)
	}
	if len(result.Choices) == 0 {
		return "", fmt.Errorf("no choices in response: %w", nutrition.ErrUpstreamUnavailable)
	}
	if result.Choices[0].Message.Content == "" {
		return "", fmt.Errorf("empty content (finish reason %q): %w", result.Choices[0].FinishReason, nutrition.ErrUpstreamUnavailable)
	}

	return result.Choices[0].Message.Content, nil
}
