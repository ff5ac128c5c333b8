package services_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"studyaid/internal/models"
	"studyaid/internal/services"
)

func completionServer(t *testing.T, content string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"id":      "chatcmpl-test",
			"object":  "chat.completion",
			"created": 1,
			"model":   "test-model",
			"choices": []map[string]any{
				{
					"index":         0,
					"message":       map[string]any{"role": "assistant", "content": content},
					"finish_reason": "stop",
				},
			},
		})
	}))
}

func TestCompletionService(t *testing.T) {
	req := models.CompletionRequest{
		SystemPrompt: "system",
		UserPrompt:   "user",
		Temperature:  0.2,
		MaxTokens:    100,
	}

	t.Run("NotConfigured", func(t *testing.T) {
		svc := services.NewCompletionService("", "test-model", "")

		_, err := svc.Complete(context.Background(), req)
		if !errors.Is(err, models.ErrNotConfigured) {
			t.Errorf("expected ErrNotConfigured, got %v", err)
		}
	})

	t.Run("Success", func(t *testing.T) {
		ts := completionServer(t, "  generated text \n")
		defer ts.Close()

		svc := services.NewCompletionService("test-key", "test-model", ts.URL)

		text, err := svc.Complete(context.Background(), req)
		if err != nil {
			t.Fatalf("Complete returned error: %v", err)
		}
		if text != "generated text" {
			t.Errorf("unexpected text: %q", text)
		}
	})

	t.Run("EmptyContentIsNoContent", func(t *testing.T) {
		ts := completionServer(t, "   ")
		defer ts.Close()

		svc := services.NewCompletionService("test-key", "test-model", ts.URL)

		_, err := svc.Complete(context.Background(), req)
		if !errors.Is(err, models.ErrNoContent) {
			t.Errorf("expected ErrNoContent, got %v", err)
		}
	})

	t.Run("ProviderError", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			w.Write([]byte(`{"error":{"message":"rate limit reached","type":"tokens"}}`))
		}))
		defer ts.Close()

		svc := services.NewCompletionService("test-key", "test-model", ts.URL)

		_, err := svc.Complete(context.Background(), req)
		var provErr *models.ProviderError
		if !errors.As(err, &provErr) {
			t.Fatalf("expected ProviderError, got %v", err)
		}
		if provErr.Status != http.StatusTooManyRequests {
			t.Errorf("expected status 429, got %d", provErr.Status)
		}
	})

	t.Run("CanceledContext", func(t *testing.T) {
		ts := completionServer(t, "irrelevant")
		defer ts.Close()

		svc := services.NewCompletionService("test-key", "test-model", ts.URL)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		if _, err := svc.Complete(ctx, req); err == nil {
			t.Error("expected error for canceled context")
		}
	})
}
