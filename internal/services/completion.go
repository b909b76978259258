package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2/log"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"google.golang.org/genai"

	"github.com/Changaizkhan/autopair-final/internal/config"
)

const (
	completionTemperature = 0.7
	completionMaxTokens   = 150
)

// NewCompleter returns the completion provider selected by AI_PROVIDER.
func NewCompleter(ctx context.Context, cfg config.AIConfig, policy RetryPolicy) (Completer, error) {
	switch cfg.Provider {
	case "gemini":
		return NewGeminiCompleter(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, policy)
	case "openai", "":
		return NewOpenAICompleter(cfg.OpenAIAPIKey, cfg.OpenAIModel, policy), nil
	default:
		return nil, fmt.Errorf("unknown AI provider %q", cfg.Provider)
	}
}

// OpenAICompleter answers through the OpenAI chat completions API.
type OpenAICompleter struct {
	client openai.Client
	model  string
	retry  RetryPolicy
}

func NewOpenAICompleter(apiKey, model string, policy RetryPolicy) *OpenAICompleter {
	// RetryPolicy owns retries.
	client := openai.NewClient(option.WithAPIKey(apiKey), option.WithMaxRetries(0))
	return &OpenAICompleter{client: client, model: model, retry: policy}
}

func (c *OpenAICompleter) Complete(ctx context.Context, question, systemPrompt string) (string, error) {
	var answer string
	err := c.retry.Do(ctx, "openai completion", func(ctx context.Context) error {
		resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
			Model: openai.ChatModel(c.model),
			Messages: []openai.ChatCompletionMessageParamUnion{
				openai.SystemMessage(systemPrompt),
				openai.UserMessage(question),
			},
			Temperature: openai.Float(completionTemperature),
			MaxTokens:   openai.Int(completionMaxTokens),
		})
		if err != nil {
			return classifyOpenAIError(err)
		}
		if len(resp.Choices) == 0 {
			return errors.New("openai returned no choices")
		}
		answer = strings.TrimSpace(resp.Choices[0].Message.Content)
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("openai completion: %w", err)
	}
	log.Debugf("✅ OpenAI answered with %d characters", len(answer))
	return answer, nil
}

func classifyOpenAIError(err error) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		if isTransientStatus(apiErr.StatusCode) {
			return transient(err)
		}
		return err
	}
	if isConnectionError(err) {
		return transient(err)
	}
	return err
}

// GeminiCompleter answers through the Gemini API.
type GeminiCompleter struct {
	client *genai.Client
	model  string
	retry  RetryPolicy
}

func NewGeminiCompleter(ctx context.Context, apiKey, model string, policy RetryPolicy) (*GeminiCompleter, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &GeminiCompleter{client: client, model: model, retry: policy}, nil
}

func (c *GeminiCompleter) Complete(ctx context.Context, question, systemPrompt string) (string, error) {
	cfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(systemPrompt, genai.RoleUser),
		Temperature:       genai.Ptr[float32](completionTemperature),
		MaxOutputTokens:   completionMaxTokens,
	}

	var answer string
	err := c.retry.Do(ctx, "gemini completion", func(ctx context.Context) error {
		resp, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(question), cfg)
		if err != nil {
			return classifyGeminiError(err)
		}
		answer = strings.TrimSpace(resp.Text())
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("gemini completion: %w", err)
	}
	log.Debugf("✅ Gemini answered with %d characters", len(answer))
	return answer, nil
}

func classifyGeminiError(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		if isTransientStatus(apiErr.Code) {
			return transient(err)
		}
		return err
	}
	if isConnectionError(err) {
		return transient(err)
	}
	return err
}
