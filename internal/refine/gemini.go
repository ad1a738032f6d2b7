package refine

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// GeminiClient calls Google's Gemini models through the generative-ai SDK.
type GeminiClient struct {
	client    *genai.Client
	modelName string
}

func NewGeminiClient(ctx context.Context, apiKey, modelName string, opts ...option.ClientOption) (*GeminiClient, error) {
	opts = append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)
	cl, err := genai.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("gemini client: %w", err)
	}
	if modelName == "" {
		modelName = "gemini-1.5-flash"
	}
	return &GeminiClient{client: cl, modelName: modelName}, nil
}

func (g *GeminiClient) Close() error {
	if g.client != nil {
		return g.client.Close()
	}
	return nil
}

// Generate runs prompt against the configured model. Résumé text routinely
// trips the default safety filters, so they are disabled.
func (g *GeminiClient) Generate(ctx context.Context, prompt string) (string, error) {
	m := g.client.GenerativeModel(g.modelName)
	m.SetTemperature(0.7)
	m.SetMaxOutputTokens(4000)
	m.SafetySettings = []*genai.SafetySetting{
		{Category: genai.HarmCategoryHarassment, Threshold: genai.HarmBlockNone},
		{Category: genai.HarmCategoryHateSpeech, Threshold: genai.HarmBlockNone},
		{Category: genai.HarmCategorySexuallyExplicit, Threshold: genai.HarmBlockNone},
		{Category: genai.HarmCategoryDangerousContent, Threshold: genai.HarmBlockNone},
	}

	resp, err := m.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", classifyGeminiError(err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("empty response from gemini")
	}

	var b strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		if t, ok := p.(genai.Text); ok {
			b.WriteString(string(t))
		}
	}
	if b.Len() == 0 {
		return "", fmt.Errorf("empty response from gemini")
	}
	return b.String(), nil
}

// classifyGeminiError maps quota and availability failures to
// RetryableError.
func classifyGeminiError(err error) error {
	switch status.Code(err) {
	case codes.ResourceExhausted:
		return &RetryableError{StatusCode: 429, Message: err.Error()}
	case codes.Unavailable, codes.Internal, codes.DeadlineExceeded:
		return &RetryableError{StatusCode: 503, Message: err.Error()}
	}
	return fmt.Errorf("gemini generate: %w", err)
}
