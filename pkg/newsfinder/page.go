package newsfinder

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

const (
	previewMaxBody  = 1 << 20 // 1 MB
	previewMaxParas = 5
	previewTimeout  = 30 * time.Second
)

// Previewer fetches a short textual preview of an article page.
type Previewer interface {
	FetchPreview(ctx context.Context, articleURL string) (string, error)
}

// PagePreviewer retrieves an article page and extracts its headline and
// leading paragraphs, so a caller-supplied URL can still ground a prompt.
type PagePreviewer struct {
	client *http.Client
}

func NewPagePreviewer() *PagePreviewer {
	return &PagePreviewer{
		client: &http.Client{Timeout: previewTimeout},
	}
}

// FetchPreview implements Previewer.
func (p *PagePreviewer) FetchPreview(ctx context.Context, articleURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, articleURL, nil)
	if err != nil {
		return "", fmt.Errorf("create preview request: %w", err)
	}
	req.Header.Set("User-Agent", "studyaid/1.0")

	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch article page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch article page: status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(io.LimitReader(resp.Body, previewMaxBody))
	if err != nil {
		return "", fmt.Errorf("parse article page: %w", err)
	}

	title := strings.TrimSpace(doc.Find("h1").First().Text())
	if title == "" {
		title = strings.TrimSpace(doc.Find("title").First().Text())
	}

	var paras []string
	doc.Find("p").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		text := strings.Join(strings.Fields(sel.Text()), " ")
		if text != "" {
			paras = append(paras, text)
		}
		return len(paras) < previewMaxParas
	})

	preview := strings.TrimSpace(title + "\n\n" + strings.Join(paras, "\n"))
	if preview == "" {
		return "", fmt.Errorf("article page had no readable text")
	}
	return preview, nil
}
