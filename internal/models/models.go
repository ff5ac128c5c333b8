package models

// CompletionRequest describes a single chat-completion call. Immutable once built.
type CompletionRequest struct {
	SystemPrompt string
	UserPrompt   string
	Model        string
	Temperature  float32
	MaxTokens    int
}

// QuizResponse is the assembled three-part reading quiz answer.
// EssentialResult and Logic are always populated on success; NewsConnection
// holds either the generated connection or an explanatory placeholder, and
// SuggestedArticleURL is present only when a real article was resolved.
type QuizResponse struct {
	EssentialResult     string `json:"essentialResult"`
	Logic               string `json:"logic"`
	NewsConnection      string `json:"newsConnection"`
	SuggestedArticleURL string `json:"suggestedArticleUrl,omitempty"`
}

// SummaryRequest carries the lecture-summary endpoint payload.
type SummaryRequest struct {
	LectureContent string `json:"lectureContent"`
	StudentInputs  string `json:"studentInputs,omitempty"`
}

// QuizRequest carries the quiz-response endpoint payload.
type QuizRequest struct {
	PaperContent   string `json:"paperContent"`
	NewsArticleURL string `json:"newsArticleUrl,omitempty"`
}
