package services

import (
	"context"
	"fmt"
	"strings"

	"studyaid/internal/models"
)

const summarySystemPrompt = `You are a helpful assistant that creates biology lecture summaries for BIO 101 students. The summary should be written in the style that can be completed in under 5 minutes and follow this specific format:

REQUIRED FORMAT:
1. First sentence: State the major takeaway using at least one element of biology language
2. Second sentence: Give some detail or twist that caught attention
3. Third sentence: Mention a connection to the textbook or additional resources not presented in class (can reference real scientific sources)
4. Additional sentences (if student inputs are provided): Incorporate other students' contributions using phrases like "[Student] mentioned [concept] which reminded me of..." or "In contrast to what [Student] said..." or "[Student] incorporated [concept] but I didn't make that connection. Instead, I thought..."

STYLE GUIDELINES:
- Write in first person ("I learned", "I was surprised", "I found")
- Use casual academic tone
- Keep the summary concise but substantive (3-4 sentences minimum)
- Include specific scientific terms and concepts
- Make connections between concepts
- Show curiosity and engagement with the material`

// SummaryService generates formatted lecture summaries.
type SummaryService struct {
	completions CompletionProvider
}

func NewSummaryService(completions CompletionProvider) *SummaryService {
	return &SummaryService{completions: completions}
}

// Generate produces a lecture summary from the lecture text and optional
// contributions from other students.
func (s *SummaryService) Generate(ctx context.Context, lectureContent, studentInputs string) (string, error) {
	lectureContent = strings.TrimSpace(lectureContent)
	if lectureContent == "" {
		return "", models.ErrEmptyInput
	}

	var inputsBlock string
	if strings.TrimSpace(studentInputs) != "" {
		inputsBlock = "OTHER STUDENTS' INPUTS:\n" + studentInputs + "\n\n"
	}

	summary, err := s.completions.Complete(ctx, models.CompletionRequest{
		SystemPrompt: summarySystemPrompt,
		UserPrompt: fmt.Sprintf(`Create a lecture summary based on this lecture content:

LECTURE CONTENT:
%s

%sWrite a complete lecture summary following the BIO 101 format. Make it personal and engaging while maintaining academic rigor.`, lectureContent, inputsBlock),
		Temperature: 0.7,
		MaxTokens:   1000,
	})
	if err != nil {
		return "", fmt.Errorf("generate summary: %w", err)
	}
	return summary, nil
}
