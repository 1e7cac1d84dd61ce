package tasks

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"google.golang.org/genai"
)

// Gemini calls the Gemini API to generate tasks.
type Gemini struct {
	client *genai.Client
	model  string
}

func NewGemini(ctx context.Context, apiKey, model string) (*Gemini, error) {
	if apiKey == "" {
		return nil, ErrNotConfigured
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("genai client: %w", err)
	}
	return &Gemini{client: client, model: model}, nil
}

func (g *Gemini) GenerateTask(ctx context.Context, topic, difficulty string) (string, error) {
	prompt := BuildPrompt(topic, difficulty)

	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), &genai.GenerateContentConfig{
		Temperature: genai.Ptr[float32](0.9),
	})
	if err != nil {
		return "", classifyAPIError(err)
	}

	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
		log.Warn().Str("module", "tasks").Str("reason", string(resp.PromptFeedback.BlockReason)).Msg("prompt blocked")
		return "", fmt.Errorf("%w: %s", ErrBlocked, resp.PromptFeedback.BlockReason)
	}

	raw := resp.Text()
	log.Debug().Str("module", "tasks").Str("model", g.model).Int("len", len(raw)).Msg("model response received")
	return ExtractTask(raw)
}

// classifyAPIError maps transport/API failures onto the package sentinels
// the handler translates to HTTP statuses.
func classifyAPIError(err error) error {
	msg := err.Error()
	switch {
	case strings.Contains(msg, "RESOURCE_EXHAUSTED"), strings.Contains(msg, "quota"):
		return fmt.Errorf("%w: %v", ErrQuota, err)
	case strings.Contains(msg, "SAFETY"), strings.Contains(msg, "blocked"):
		return fmt.Errorf("%w: %v", ErrBlocked, err)
	default:
		return fmt.Errorf("generate content: %w", err)
	}
}
