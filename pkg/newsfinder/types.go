package newsfinder

import (
	"context"
	"errors"
)

// Finder defines the interface for grounded news-article lookup.
type Finder interface {
	// FindArticle locates one allow-listed news article related to the given
	// research-paper excerpt. Returns ErrNoArticle when nothing valid is found.
	FindArticle(ctx context.Context, excerpt string) (*Article, error)
}

// Article is a validated (url, summary) pair returned by the finder.
type Article struct {
	URL     string `json:"url"`
	Summary string `json:"summary"`
}

// SourceRule is one allow-listed news domain. A candidate URL is accepted
// only if its host matches Domain and its path extends past PathPrefix;
// a bare domain or homepage is rejected.
type SourceRule struct {
	Domain     string
	PathPrefix string
}

// Config holds configuration for the finder.
type Config struct {
	// Perplexity-compatible chat-completions API
	APIKey  string
	BaseURL string
	Model   string

	// Allow-listed article sources. At least one rule is required.
	Sources []SourceRule

	// HTTP client timeout in seconds (default: 60)
	Timeout int

	// Maximum excerpt length sent to the search prompt (default: 3000)
	MaxExcerptLen int
}

// ErrNoArticle reports that search completed but produced no valid article.
var ErrNoArticle = errors.New("no valid article found")

// SearchError represents an error that occurred during grounded search.
type SearchError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

func (e *SearchError) Error() string {
	if e.Details != "" {
		return e.Message + ": " + e.Details
	}
	return e.Message
}
