package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

var (
	// ErrGenerationFailed wraps every failure of the model call. Callers show
	// it to the user and stay usable; nothing is retried.
	ErrGenerationFailed = errors.New("generation failed")
	// ErrAIUnavailable is returned when no API key is configured.
	ErrAIUnavailable = errors.New("model api key is not configured")
)

// Generator produces a completion for a single free-text instruction.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
	Model() string
}

// AIService talks to any OpenAI-compatible chat completion endpoint.
type AIService struct {
	client  *openai.Client
	model   string
	timeout time.Duration
}

func NewAIService(apiKey, model, apiEndpoint string, timeout time.Duration) *AIService {
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	if apiKey == "" {
		return &AIService{model: model, timeout: timeout}
	}

	cfg := openai.DefaultConfig(apiKey)
	if apiEndpoint != "" {
		cfg.BaseURL = strings.TrimSuffix(apiEndpoint, "/")
	}
	return &AIService{
		client:  openai.NewClientWithConfig(cfg),
		model:   model,
		timeout: timeout,
	}
}

func (s *AIService) disabled() bool {
	return s.client == nil || s.model == ""
}

func (s *AIService) Model() string {
	return s.model
}

// Generate sends prompt as a single user message and returns the text of
// the first choice.
func (s *AIService) Generate(ctx context.Context, prompt string) (string, error) {
	if s.disabled() {
		return "", fmt.Errorf("%w: %w", ErrGenerationFailed, ErrAIUnavailable)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: s.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("%w: request completion: %w", ErrGenerationFailed, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: model returned no choices", ErrGenerationFailed)
	}

	content := resp.Choices[0].Message.Content
	if strings.TrimSpace(content) == "" {
		return "", fmt.Errorf("%w: model returned empty content (finish reason %q)", ErrGenerationFailed, resp.Choices[0].FinishReason)
	}
	return content, nil
}
