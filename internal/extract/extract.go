package extract

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"

	"studyaid/internal/models"
)

// Kind is the declared file kind of an upload.
type Kind string

const (
	KindText  Kind = "text"
	KindPDF   Kind = "pdf"
	KindImage Kind = "image"
)

// PDF extraction provider modes.
const (
	PDFModeNative = "native"
	PDFModeVision = "vision"
)

var imageMIMEs = map[string]string{
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".gif":  "image/gif",
	".bmp":  "image/bmp",
	".webp": "image/webp",
}

const imageExtsList = ".png .jpg .jpeg .gif .bmp .webp"

// DetectKind maps a filename to its file kind by case-insensitive suffix.
// Anything outside the allow-lists is rejected here, before any extraction
// work begins.
func DetectKind(filename string) (Kind, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch {
	case ext == ".txt":
		return KindText, nil
	case ext == ".pdf":
		return KindPDF, nil
	default:
		if _, ok := imageMIMEs[ext]; ok {
			return KindImage, nil
		}
	}
	return "", &models.UnsupportedTypeError{
		Filename: filename,
		Allowed:  ".txt .pdf " + imageExtsList,
	}
}

// Config wires the extraction providers.
type Config struct {
	// Vision provider (OpenAI-compatible); used for image OCR and, when
	// PDFMode is "vision", for PDF transcription.
	APIKey      string
	Endpoint    string
	VisionModel string

	PDFMode string
}

// Extractor turns uploaded bytes into plain text per declared kind.
type Extractor struct {
	pdfMode   string
	vision    *visionClient
	newWorker WorkerFactory
}

func NewExtractor(cfg Config) *Extractor {
	e := &Extractor{pdfMode: cfg.PDFMode}
	if e.pdfMode == "" {
		e.pdfMode = PDFModeNative
	}
	if cfg.APIKey != "" {
		e.vision = newVisionClient(cfg.APIKey, cfg.Endpoint, cfg.VisionModel)
		e.newWorker = func() (OCRWorker, error) {
			return newOCRWorker(cfg.APIKey, cfg.Endpoint, cfg.VisionModel), nil
		}
	} else {
		e.newWorker = func() (OCRWorker, error) {
			return nil, models.ErrNotConfigured
		}
	}
	return e
}

// SetWorkerFactory overrides how OCR workers are created. Tests use this to
// observe acquire/release behavior.
func (e *Extractor) SetWorkerFactory(factory WorkerFactory) {
	e.newWorker = factory
}

// Extract produces plain text from the upload or fails. The returned text is
// never empty: whitespace-only output is reported as models.ErrNoText.
func (e *Extractor) Extract(ctx context.Context, data []byte, filename string) (string, error) {
	kind, err := DetectKind(filename)
	if err != nil {
		return "", err
	}

	switch kind {
	case KindText:
		return e.extractPlainText(data)
	case KindPDF:
		return e.extractPDF(ctx, data)
	case KindImage:
		return e.extractImage(ctx, data, filename)
	}
	return "", fmt.Errorf("unhandled kind %s", kind)
}

func (e *Extractor) extractPlainText(data []byte) (string, error) {
	if !utf8.Valid(data) {
		return "", fmt.Errorf("decode text file: not valid UTF-8")
	}
	text := strings.TrimSpace(string(data))
	if text == "" {
		return "", fmt.Errorf("text file: %w", models.ErrNoText)
	}
	return text, nil
}

func (e *Extractor) extractPDF(ctx context.Context, data []byte) (string, error) {
	if e.pdfMode == PDFModeVision && e.vision != nil {
		return e.transcribePDF(ctx, data)
	}

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}

	content, err := reader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("extract pdf text: %w", err)
	}
	raw, err := io.ReadAll(content)
	if err != nil {
		return "", fmt.Errorf("read pdf text: %w", err)
	}

	text := strings.TrimSpace(string(raw))
	if text == "" {
		return "", fmt.Errorf("pdf: %w", models.ErrNoText)
	}
	return text, nil
}

// extractImage runs OCR with a worker scoped to this single call. The worker
// is released on every exit path, including provider errors.
func (e *Extractor) extractImage(ctx context.Context, data []byte, filename string) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	mime, ok := imageMIMEs[ext]
	if !ok {
		return "", &models.UnsupportedTypeError{Filename: filename, Allowed: imageExtsList}
	}

	worker, err := e.newWorker()
	if err != nil {
		return "", fmt.Errorf("create ocr worker: %w", err)
	}
	defer worker.Close()

	text, err := worker.Recognize(ctx, dataURI(mime, data))
	if err != nil {
		return "", fmt.Errorf("recognize image: %w", err)
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return "", fmt.Errorf("image: %w", models.ErrNoText)
	}
	return text, nil
}
