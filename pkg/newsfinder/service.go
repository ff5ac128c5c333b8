package newsfinder

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// service implements the Finder interface against a Perplexity-compatible
// search-augmented completion API.
type service struct {
	config *Config
	client *http.Client
}

// NewFinder creates a grounded article finder with the given configuration.
func NewFinder(config Config) Finder {
	if config.BaseURL == "" {
		config.BaseURL = "https://api.perplexity.ai"
	}
	if config.Model == "" {
		config.Model = "sonar"
	}
	if config.Timeout == 0 {
		config.Timeout = 60
	}
	if config.MaxExcerptLen == 0 {
		config.MaxExcerptLen = 3000
	}
	if len(config.Sources) == 0 {
		config.Sources = []SourceRule{{Domain: "sciencedaily.com", PathPrefix: "/releases/"}}
	}

	return &service{
		config: &config,
		client: &http.Client{
			Timeout: time.Duration(config.Timeout) * time.Second,
		},
	}
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// FindArticle implements Finder.
func (s *service) FindArticle(ctx context.Context, excerpt string) (*Article, error) {
	if s.config.APIKey == "" {
		return nil, &SearchError{
			Code:    "missing_api_key",
			Message: "search API key is required",
		}
	}

	excerpt = truncate(strings.TrimSpace(excerpt), s.config.MaxExcerptLen)
	if excerpt == "" {
		return nil, ErrNoArticle
	}

	req := chatRequest{
		Model: s.config.Model,
		Messages: []chatMessage{
			{Role: "system", Content: s.systemPrompt()},
			{Role: "user", Content: s.userPrompt(excerpt)},
		},
		Temperature: 0.1,
		MaxTokens:   2500,
	}

	reqBody, err := json.Marshal(req)
	if err != nil {
		return nil, &SearchError{
			Code:    "marshal_error",
			Message: "failed to marshal search request",
			Details: err.Error(),
		}
	}

	url := strings.TrimRight(s.config.BaseURL, "/") + "/chat/completions"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(reqBody))
	if err != nil {
		return nil, &SearchError{
			Code:    "request_creation_failed",
			Message: "failed to create HTTP request",
			Details: err.Error(),
		}
	}
	httpReq.Header.Set("Authorization", "Bearer "+s.config.APIKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(httpReq)
	if err != nil {
		return nil, &SearchError{
			Code:    "network_error",
			Message: "search request failed",
			Details: err.Error(),
		}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &SearchError{
			Code:    "response_read_failed",
			Message: "failed to read response body",
			Details: err.Error(),
		}
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &SearchError{
			Code:    fmt.Sprintf("http_%d", resp.StatusCode),
			Message: "search API returned non-success status",
			Details: string(body),
		}
	}

	var chatResp chatResponse
	if err := json.Unmarshal(body, &chatResp); err != nil {
		return nil, &SearchError{
			Code:    "response_parse_failed",
			Message: "failed to parse search response",
			Details: fmt.Sprintf("parse error: %s, body: %s", err.Error(), string(body)),
		}
	}
	if len(chatResp.Choices) == 0 || strings.TrimSpace(chatResp.Choices[0].Message.Content) == "" {
		return nil, ErrNoArticle
	}

	return Resolve(chatResp.Choices[0].Message.Content, s.config.Sources)
}

func (s *service) systemPrompt() string {
	domains := make([]string, 0, len(s.config.Sources))
	for _, rule := range s.config.Sources {
		domains = append(domains, rule.Domain)
	}
	return fmt.Sprintf(
		"You are a research assistant that searches %s for specific science news articles. "+
			"You MUST provide a complete, specific article URL, never a homepage.",
		strings.Join(domains, ", "),
	)
}

func (s *service) userPrompt(excerpt string) string {
	primary := s.config.Sources[0]
	return fmt.Sprintf(`Search %[1]s and find ONE specific, recent article that relates to the biological concepts in this research paper.

RESEARCH PAPER EXCERPT:
%[2]s

CRITICAL REQUIREMENTS:
1. You MUST search %[1]s
2. You MUST provide a COMPLETE article URL, not a homepage
3. The article MUST be real - verify it exists by actually visiting the URL
4. Find an article with related biological concepts (metabolism, nutrition, genetics, proteins, cellular processes, etc.)
5. Read the full article and extract the key findings

YOUR RESPONSE FORMAT (strict adherence required):
URL: https://www.%[1]s%[3]s[complete path]
SUMMARY: [Comprehensive summary covering: 1) Main biological finding/discovery, 2) Research methods/approach, 3) Key biological mechanisms or concepts discussed, 4) Significance of findings]

EXAMPLE of correct format:
URL: https://www.sciencedaily.com/releases/2024/01/240115153045.htm
SUMMARY: Researchers discovered that...`, primary.Domain, excerpt, primary.PathPrefix)
}

func truncate(s string, limit int) string {
	if limit <= 0 || len(s) <= limit {
		return s
	}
	return s[:limit]
}
