package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"studyaid/internal/models"
)

// CompletionProvider is the text-completion capability the pipelines depend
// on; tests substitute a deterministic stub.
type CompletionProvider interface {
	Complete(ctx context.Context, req models.CompletionRequest) (string, error)
}

// CompletionService sends chat completions to an OpenAI-compatible endpoint
// (Groq in production). One attempt per call, no retry.
type CompletionService struct {
	client       *openai.Client
	defaultModel string
}

func NewCompletionService(apiKey, model, endpoint string) *CompletionService {
	if apiKey == "" {
		return &CompletionService{defaultModel: model}
	}

	cfg := openai.DefaultConfig(apiKey)
	if endpoint != "" {
		cfg.BaseURL = endpoint
	}
	return &CompletionService{
		client:       openai.NewClientWithConfig(cfg),
		defaultModel: model,
	}
}

func (s *CompletionService) disabled() bool {
	return s == nil || s.client == nil
}

// Complete implements CompletionProvider.
func (s *CompletionService) Complete(ctx context.Context, req models.CompletionRequest) (string, error) {
	if s.disabled() {
		return "", models.ErrNotConfigured
	}

	model := req.Model
	if model == "" {
		model = s.defaultModel
	}

	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: req.SystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: req.UserPrompt},
		},
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	})
	if err != nil {
		return "", wrapProviderError("groq", err)
	}

	if len(resp.Choices) == 0 {
		return "", models.ErrNoContent
	}
	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return "", models.ErrNoContent
	}
	return content, nil
}

func wrapProviderError(provider string, err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("request %s completion: %w", provider, &models.ProviderError{
			Provider: provider,
			Status:   apiErr.HTTPStatusCode,
			Body:     apiErr.Message,
		})
	}
	return fmt.Errorf("request %s completion: %w", provider, err)
}
