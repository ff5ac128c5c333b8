package services

import (
	"context"
	"fmt"
	"log"
	"strings"

	"studyaid/internal/models"
	"studyaid/pkg/newsfinder"
)

// NoArticlePlaceholder fills the news-connection field when no article could
// be resolved; the request still succeeds with the first two parts.
const NoArticlePlaceholder = "Please provide a news article URL to generate this response."

const studentSystemPrompt = `You are a college student in BIO 101 writing reading quiz responses. Write naturally like a student would - clear and accurate, but conversational and genuine. Avoid overly formal or flowery language. Sound like you actually read and understood the paper, not like you're trying to impress anyone.`

// quizStage enumerates the sequential pipeline steps. Stages only ever move
// forward; any required-stage failure aborts the whole pipeline.
type quizStage int

const (
	stageValidate quizStage = iota
	stageEssential
	stageLogic
	stageNews
	stageDone
)

// stageArticle is the article material feeding the news-connection stage.
type stageArticle struct {
	url      string
	summary  string
	resolved bool // found by the grounded search, not supplied by the caller
}

// QuizService orchestrates the three-stage quiz response pipeline.
type QuizService struct {
	completions CompletionProvider
	finder      newsfinder.Finder
	previews    newsfinder.Previewer
}

// NewQuizService wires the pipeline. finder and previews may be nil; their
// absence only degrades the optional news-connection stage.
func NewQuizService(completions CompletionProvider, finder newsfinder.Finder, previews newsfinder.Previewer) *QuizService {
	return &QuizService{
		completions: completions,
		finder:      finder,
		previews:    previews,
	}
}

// BuildResponse runs the pipeline over the paper text. The essential-result
// and logic stages must both succeed or the whole call fails; partial
// responses are never returned.
func (s *QuizService) BuildResponse(ctx context.Context, paperContent, newsArticleURL string) (*models.QuizResponse, error) {
	resp := &models.QuizResponse{}

	for stage := stageValidate; stage != stageDone; stage++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		switch stage {
		case stageValidate:
			paperContent = strings.TrimSpace(paperContent)
			if paperContent == "" {
				return nil, models.ErrEmptyInput
			}

		case stageEssential:
			out, err := s.completions.Complete(ctx, essentialResultRequest(paperContent))
			if err != nil {
				return nil, fmt.Errorf("essential result stage: %w", err)
			}
			resp.EssentialResult = out

		case stageLogic:
			out, err := s.completions.Complete(ctx, experimentalLogicRequest(paperContent, resp.EssentialResult))
			if err != nil {
				return nil, fmt.Errorf("experimental logic stage: %w", err)
			}
			resp.Logic = out

		case stageNews:
			article := s.resolveArticle(ctx, paperContent, newsArticleURL)
			if article == nil {
				resp.NewsConnection = NoArticlePlaceholder
				continue
			}
			out, err := s.completions.Complete(ctx, newsConnectionRequest(paperContent, article))
			if err != nil {
				return nil, fmt.Errorf("news connection stage: %w", err)
			}
			resp.NewsConnection = out
			if article.resolved {
				resp.SuggestedArticleURL = article.url
			}
		}
	}

	return resp, nil
}

// resolveArticle picks the news article for the final stage. A caller-supplied
// URL always wins; otherwise the grounded finder is consulted. Failures here
// are soft: the stage is skipped, never the request.
func (s *QuizService) resolveArticle(ctx context.Context, paperContent, newsArticleURL string) *stageArticle {
	if url := strings.TrimSpace(newsArticleURL); url != "" {
		article := &stageArticle{url: url}
		if s.previews != nil {
			preview, err := s.previews.FetchPreview(ctx, url)
			if err != nil {
				log.Printf("quiz: article preview unavailable for %s: %v", url, err)
			} else {
				article.summary = preview
			}
		}
		return article
	}

	if s.finder == nil {
		return nil
	}
	found, err := s.finder.FindArticle(ctx, paperContent)
	if err != nil {
		log.Printf("quiz: article search found nothing usable: %v", err)
		return nil
	}
	return &stageArticle{url: found.URL, summary: found.Summary, resolved: true}
}

func essentialResultRequest(paperContent string) models.CompletionRequest {
	return models.CompletionRequest{
		SystemPrompt: studentSystemPrompt,
		UserPrompt: fmt.Sprintf(`Based on this research paper, write ONE sentence describing in your own words the most essential result. Don't explain why it's important, just state what the result is.

PAPER CONTENT:
%s

Write like a college student - straightforward and clear. Use simple, direct language. Provide ONLY one sentence.`, paperContent),
		Temperature: 0.8,
		MaxTokens:   150,
	}
}

func experimentalLogicRequest(paperContent, essentialResult string) models.CompletionRequest {
	return models.CompletionRequest{
		SystemPrompt: studentSystemPrompt,
		UserPrompt: fmt.Sprintf(`Based on this research paper, summarize in 2-3 sentences the experimental logic that led to the essential result. Focus on the big picture:
- What comparison did they make?
- What did they measure (response variable)?
- What was their overall approach?

PAPER CONTENT:
%s

ESSENTIAL RESULT:
%s

Write like a college student explaining the experiment to a classmate. Be clear and straightforward - focus on WHAT they did, not fancy descriptions. Use 2-3 sentences, no more.`, paperContent, essentialResult),
		Temperature: 0.8,
		MaxTokens:   300,
	}
}

func newsConnectionRequest(paperContent string, article *stageArticle) models.CompletionRequest {
	articleBlock := "NEWS ARTICLE:\n" + article.summary
	if article.summary == "" {
		articleBlock = "NEWS ARTICLE URL:\n" + article.url +
			"\n(The article content could not be fetched. Reason plausibly about its likely topic from the URL alone.)"
	}

	return models.CompletionRequest{
		SystemPrompt: studentSystemPrompt,
		UserPrompt: fmt.Sprintf(`You're a BIO 101 student writing a reading quiz response. Based on the research paper and news article, write exactly 3-5 sentences (no fewer, no more) that:

1. First, describe the key result/finding from the news article in your own words
2. Then, explain the biological connection you see between the news article and the research paper

RESEARCH PAPER COVERED IN CLASS:
%s

%s

IMPORTANT WRITING STYLE:
- Sound like a college student, not a textbook or AI
- Use specific biological terms and concepts (genes, proteins, pathways, mechanisms, etc.)
- Be thoughtful but natural - like you're explaining to a friend who also took the class
- Don't be overly formal or use phrases like "fascinating" or "remarkable"
- Make genuine, specific connections using proper biological language
- Keep it to 3-5 sentences exactly`, paperContent, articleBlock),
		Temperature: 0.85,
		MaxTokens:   500,
	}
}
