package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strings"

	"studyaid/internal/extract"
	"studyaid/internal/models"
)

const maxMultipartMemory = 8 << 20 // 8 MB

// Extractor turns uploaded bytes into plain text.
type Extractor interface {
	Extract(ctx context.Context, data []byte, filename string) (string, error)
}

// Summarizer generates lecture summaries.
type Summarizer interface {
	Generate(ctx context.Context, lectureContent, studentInputs string) (string, error)
}

// QuizBuilder runs the quiz response pipeline.
type QuizBuilder interface {
	BuildResponse(ctx context.Context, paperContent, newsArticleURL string) (*models.QuizResponse, error)
}

type Server struct {
	mux       *http.ServeMux
	extractor Extractor
	summaries Summarizer
	quizzes   QuizBuilder
}

func NewServer(extractor Extractor, summaries Summarizer, quizzes QuizBuilder) *Server {
	s := &Server{
		mux:       http.NewServeMux(),
		extractor: extractor,
		summaries: summaries,
		quizzes:   quizzes,
	}
	s.routes()
	return s
}

func (s *Server) Handler() http.Handler {
	return withRequestLog(s.mux)
}

func (s *Server) routes() {
	s.mux.HandleFunc("/api/health", s.handleHealth)
	s.mux.HandleFunc("/api/extract-image", s.handleExtractImage)
	s.mux.HandleFunc("/api/extract-pdf", s.handleExtractPDF)
	s.mux.HandleFunc("/api/generate-summary", s.handleGenerateSummary)
	s.mux.HandleFunc("/api/generate-quiz-response", s.handleGenerateQuizResponse)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleExtractImage(w http.ResponseWriter, r *http.Request) {
	s.handleExtract(w, r, extract.KindImage,
		"File must be an image (PNG, JPG, JPEG, GIF, BMP, or WebP)",
		"No text found in image. Please make sure the image contains readable text.",
		"Failed to extract text from image.")
}

func (s *Server) handleExtractPDF(w http.ResponseWriter, r *http.Request) {
	s.handleExtract(w, r, extract.KindPDF,
		"File must be a PDF",
		"No text found in PDF. The file might be empty or contain only images.",
		"Failed to parse PDF. Please make sure it contains readable text.")
}

func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request, want extract.Kind, badTypeMsg, noTextMsg, failMsg string) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}

	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		writeError(w, http.StatusBadRequest, "No file provided")
		return
	}
	if form := r.MultipartForm; form != nil {
		defer form.RemoveAll()
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "No file provided")
		return
	}
	defer file.Close()

	// Validate the declared kind before reading or extracting anything.
	kind, err := extract.DetectKind(header.Filename)
	if err != nil || kind != want {
		writeError(w, http.StatusBadRequest, badTypeMsg)
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "No file provided")
		return
	}

	text, err := s.extractor.Extract(r.Context(), data, header.Filename)
	if err != nil {
		log.Printf("extract %s %s: %v", want, header.Filename, err)
		switch {
		case errors.Is(err, models.ErrNoText):
			writeError(w, http.StatusBadRequest, noTextMsg)
		case isUnsupported(err):
			writeError(w, http.StatusBadRequest, badTypeMsg)
		case errors.Is(err, models.ErrNotConfigured):
			writeError(w, http.StatusInternalServerError, "API key not configured. Please contact the administrator.")
		default:
			writeError(w, http.StatusInternalServerError, failMsg)
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"text": text})
}

func (s *Server) handleGenerateSummary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}

	var payload models.SummaryRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}

	summary, err := s.summaries.Generate(r.Context(), payload.LectureContent, payload.StudentInputs)
	if err != nil {
		log.Printf("generate summary: %v", err)
		switch {
		case errors.Is(err, models.ErrEmptyInput):
			writeError(w, http.StatusBadRequest, "Please add some lecture content first")
		case errors.Is(err, models.ErrNotConfigured):
			writeError(w, http.StatusInternalServerError, "API key not configured. Please contact the administrator.")
		case errors.Is(err, models.ErrNoContent):
			writeError(w, http.StatusInternalServerError, "No summary was generated. Please try again.")
		default:
			writeError(w, http.StatusInternalServerError, "AI service is temporarily unavailable. Please try again.")
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"summary": summary})
}

func (s *Server) handleGenerateQuizResponse(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}

	var payload models.QuizRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}

	resp, err := s.quizzes.BuildResponse(r.Context(), payload.PaperContent, payload.NewsArticleURL)
	if err != nil {
		log.Printf("generate quiz response: %v", err)
		switch {
		case errors.Is(err, models.ErrEmptyInput):
			writeError(w, http.StatusBadRequest, "Please add the paper content first")
		case errors.Is(err, models.ErrNotConfigured):
			writeError(w, http.StatusInternalServerError, "API key not configured. Please contact the administrator.")
		default:
			writeError(w, http.StatusInternalServerError, "Something went wrong. Please try again.")
		}
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func isUnsupported(err error) bool {
	var typeErr *models.UnsupportedTypeError
	return errors.As(err, &typeErr)
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func methodNotAllowed(w http.ResponseWriter, allowed ...string) {
	if len(allowed) > 0 {
		w.Header().Set("Allow", strings.Join(allowed, ", "))
	}
	writeError(w, http.StatusMethodNotAllowed, "method not allowed")
}
