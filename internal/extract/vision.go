package extract

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"studyaid/internal/models"
)

const (
	ocrPrompt = "Extract all text from this image exactly as written. " +
		"Preserve line breaks and reading order. Respond with the text only, no commentary."

	pdfTranscribePrompt = "Transcribe all text in this PDF document exactly as written, " +
		"page by page in reading order. Respond with the text only, no commentary."
)

// visionClient sends multimodal completion requests to an OpenAI-compatible
// vision model. Each client owns its HTTP transport so it can be torn down
// deterministically.
type visionClient struct {
	client     *openai.Client
	httpClient *http.Client
	model      string
}

func newVisionClient(apiKey, endpoint, model string) *visionClient {
	httpClient := &http.Client{Timeout: 2 * time.Minute}
	cfg := openai.DefaultConfig(apiKey)
	if endpoint != "" {
		cfg.BaseURL = endpoint
	}
	cfg.HTTPClient = httpClient
	return &visionClient{
		client:     openai.NewClientWithConfig(cfg),
		httpClient: httpClient,
		model:      model,
	}
}

func (c *visionClient) transcribe(ctx context.Context, uri, prompt string) (string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{Type: openai.ChatMessagePartTypeText, Text: prompt},
					{
						Type:     openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{URL: uri},
					},
				},
			},
		},
		Temperature: 0.1,
		MaxTokens:   8192,
	})
	if err != nil {
		return "", visionProviderError(err)
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

func (c *visionClient) release() {
	c.httpClient.CloseIdleConnections()
}

// transcribePDF is the alternate PDF provider mode: the whole document goes
// to the vision model as a data URI.
func (e *Extractor) transcribePDF(ctx context.Context, data []byte) (string, error) {
	uri := "data:application/pdf;base64," + base64.StdEncoding.EncodeToString(data)
	text, err := e.vision.transcribe(ctx, uri, pdfTranscribePrompt)
	if err != nil {
		return "", fmt.Errorf("transcribe pdf: %w", err)
	}
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("pdf: %w", models.ErrNoText)
	}
	return text, nil
}

// OCRWorker is a single-use OCR engine instance. Callers must Close it on
// every exit path; a worker is never shared across requests.
type OCRWorker interface {
	Recognize(ctx context.Context, imageDataURI string) (string, error)
	Close() error
}

// WorkerFactory creates a fresh worker for one extraction call.
type WorkerFactory func() (OCRWorker, error)

type ocrWorker struct {
	vision *visionClient
	closed bool
}

func newOCRWorker(apiKey, endpoint, model string) *ocrWorker {
	return &ocrWorker{vision: newVisionClient(apiKey, endpoint, model)}
}

func (w *ocrWorker) Recognize(ctx context.Context, imageDataURI string) (string, error) {
	if w.closed {
		return "", errors.New("ocr worker already closed")
	}
	return w.vision.transcribe(ctx, imageDataURI, ocrPrompt)
}

func (w *ocrWorker) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	w.vision.release()
	return nil
}

func visionProviderError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return &models.ProviderError{
			Provider: "vision",
			Status:   apiErr.HTTPStatusCode,
			Body:     apiErr.Message,
		}
	}
	return err
}

func dataURI(mime string, data []byte) string {
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data)
}
