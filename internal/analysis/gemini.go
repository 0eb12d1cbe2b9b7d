package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sipwatch/sipwatch-bot/internal/outcome"
	"github.com/sirupsen/logrus"
)

// Advisory replaces the report when no model key is configured
const Advisory = "Gemini API Key missing. Cannot analyze."

// Analyzer turns the raw digest into a free-text report
type Analyzer interface {
	Analyze(ctx context.Context, newsText, socialText string) (string, error)
}

// GeminiClient calls the generateContent endpoint of the Gemini API
type GeminiClient struct {
	client  *resty.Client
	apiKey  string
	model   string
	baseURL string
}

var _ Analyzer = (*GeminiClient)(nil)

type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiResponse struct {
	Candidates []struct {
		Content      geminiContent `json:"content"`
		FinishReason string        `json:"finishReason"`
	} `json:"candidates"`
	PromptFeedback *struct {
		BlockReason string `json:"blockReason"`
	} `json:"promptFeedback"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

func NewGeminiClient(apiKey, model, baseURL string, timeout time.Duration) *GeminiClient {
	return &GeminiClient{
		client:  resty.New().SetTimeout(timeout),
		apiKey:  apiKey,
		model:   model,
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

func (g *GeminiClient) IsEnabled() bool {
	return g.apiKey != ""
}

// Analyze sends one prompt built from both digests and returns the model text
// exactly as generated.
func (g *GeminiClient) Analyze(ctx context.Context, newsText, socialText string) (string, error) {
	if !g.IsEnabled() {
		logrus.Debug("Gemini analysis disabled - missing API key")
		return "", outcome.Missing(Advisory)
	}

	return g.generateContent(ctx, BuildPrompt(newsText, socialText))
}

func (g *GeminiClient) generateContent(ctx context.Context, prompt string) (string, error) {
	url := fmt.Sprintf("%s/models/%s:generateContent", g.baseURL, g.model)

	req := geminiRequest{
		Contents: []geminiContent{{
			Role:  "user",
			Parts: []geminiPart{{Text: prompt}},
		}},
	}

	resp, err := g.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetHeader("x-goog-api-key", g.apiKey).
		SetBody(req).
		Post(url)

	if err != nil {
		return "", outcome.Network(fmt.Errorf("API request failed: %w", err))
	}

	var result geminiResponse
	decodeErr := json.Unmarshal(resp.Body(), &result)

	if result.Error != nil {
		return "", outcome.Network(fmt.Errorf("API error %d (%s): %s", result.Error.Code, result.Error.Status, result.Error.Message))
	}
	if resp.IsError() {
		return "", outcome.Network(fmt.Errorf("API returned status %d", resp.StatusCode()))
	}
	if decodeErr != nil {
		return "", outcome.Parse(fmt.Errorf("failed to decode response: %w", decodeErr))
	}

	if result.PromptFeedback != nil && result.PromptFeedback.BlockReason != "" {
		return "", outcome.Parse(fmt.Errorf("prompt blocked: %s", result.PromptFeedback.BlockReason))
	}

	if len(result.Candidates) == 0 || len(result.Candidates[0].Content.Parts) == 0 {
		return "", outcome.Parse(errors.New("no content in response"))
	}

	var text strings.Builder
	for _, part := range result.Candidates[0].Content.Parts {
		text.WriteString(part.Text)
	}

	return text.String(), nil
}
