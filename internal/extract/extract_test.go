package extract_test

import (
	"context"
	"errors"
	"testing"

	"studyaid/internal/extract"
	"studyaid/internal/models"
)

// countingWorker records recognize/close calls so tests can assert the
// scoped-resource contract.
type countingWorker struct {
	text     string
	err      error
	released int
}

func (w *countingWorker) Recognize(ctx context.Context, imageDataURI string) (string, error) {
	return w.text, w.err
}

func (w *countingWorker) Close() error {
	w.released++
	return nil
}

func newTestExtractor(worker *countingWorker) (*extract.Extractor, *int) {
	e := extract.NewExtractor(extract.Config{})
	created := 0
	e.SetWorkerFactory(func() (extract.OCRWorker, error) {
		created++
		return worker, nil
	})
	return e, &created
}

func TestDetectKind(t *testing.T) {
	tests := []struct {
		filename string
		want     extract.Kind
		wantErr  bool
	}{
		{"notes.txt", extract.KindText, false},
		{"NOTES.TXT", extract.KindText, false},
		{"paper.pdf", extract.KindPDF, false},
		{"Paper.PDF", extract.KindPDF, false},
		{"scan.png", extract.KindImage, false},
		{"scan.jpg", extract.KindImage, false},
		{"scan.jpeg", extract.KindImage, false},
		{"scan.gif", extract.KindImage, false},
		{"scan.bmp", extract.KindImage, false},
		{"scan.webp", extract.KindImage, false},
		{"archive.zip", "", true},
		{"notes.docx", "", true},
		{"noextension", "", true},
		{"paper.pdf.exe", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			kind, err := extract.DetectKind(tt.filename)
			if tt.wantErr {
				var typeErr *models.UnsupportedTypeError
				if !errors.As(err, &typeErr) {
					t.Fatalf("expected UnsupportedTypeError, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("DetectKind(%q) returned error: %v", tt.filename, err)
			}
			if kind != tt.want {
				t.Errorf("DetectKind(%q) = %s, want %s", tt.filename, kind, tt.want)
			}
		})
	}
}

func TestExtractPlainText(t *testing.T) {
	e, _ := newTestExtractor(&countingWorker{})

	t.Run("ValidText", func(t *testing.T) {
		text, err := e.Extract(context.Background(), []byte("  lecture notes on osmosis  \n"), "notes.txt")
		if err != nil {
			t.Fatalf("Extract returned error: %v", err)
		}
		if text != "lecture notes on osmosis" {
			t.Errorf("unexpected text: %q", text)
		}
	})

	t.Run("WhitespaceOnly", func(t *testing.T) {
		_, err := e.Extract(context.Background(), []byte("   \n\t  "), "notes.txt")
		if !errors.Is(err, models.ErrNoText) {
			t.Errorf("expected ErrNoText, got %v", err)
		}
	})

	t.Run("InvalidUTF8", func(t *testing.T) {
		if _, err := e.Extract(context.Background(), []byte{0xff, 0xfe, 0xfd}, "notes.txt"); err == nil {
			t.Error("expected error for invalid UTF-8")
		}
	})
}

func TestExtractRejectsBeforeAnyWork(t *testing.T) {
	worker := &countingWorker{text: "should never run"}
	e, created := newTestExtractor(worker)

	_, err := e.Extract(context.Background(), []byte("binary"), "malware.exe")

	var typeErr *models.UnsupportedTypeError
	if !errors.As(err, &typeErr) {
		t.Fatalf("expected UnsupportedTypeError, got %v", err)
	}
	if *created != 0 {
		t.Errorf("worker factory invoked %d times for rejected file, want 0", *created)
	}
}

func TestExtractImage(t *testing.T) {
	t.Run("SuccessReleasesWorkerOnce", func(t *testing.T) {
		worker := &countingWorker{text: "recognized text"}
		e, created := newTestExtractor(worker)

		text, err := e.Extract(context.Background(), []byte("png-bytes"), "scan.png")
		if err != nil {
			t.Fatalf("Extract returned error: %v", err)
		}
		if text != "recognized text" {
			t.Errorf("unexpected text: %q", text)
		}
		if *created != 1 {
			t.Errorf("worker created %d times, want 1", *created)
		}
		if worker.released != 1 {
			t.Errorf("worker released %d times, want 1", worker.released)
		}
	})

	t.Run("EmptyResultReleasesWorkerOnce", func(t *testing.T) {
		worker := &countingWorker{text: "   \n"}
		e, _ := newTestExtractor(worker)

		_, err := e.Extract(context.Background(), []byte("png-bytes"), "scan.png")
		if !errors.Is(err, models.ErrNoText) {
			t.Errorf("expected ErrNoText, got %v", err)
		}
		if worker.released != 1 {
			t.Errorf("worker released %d times, want 1", worker.released)
		}
	})

	t.Run("ProviderErrorReleasesWorkerOnce", func(t *testing.T) {
		worker := &countingWorker{err: &models.ProviderError{Provider: "vision", Status: 503}}
		e, _ := newTestExtractor(worker)

		_, err := e.Extract(context.Background(), []byte("png-bytes"), "scan.png")
		var provErr *models.ProviderError
		if !errors.As(err, &provErr) {
			t.Fatalf("expected ProviderError, got %v", err)
		}
		if worker.released != 1 {
			t.Errorf("worker released %d times, want 1", worker.released)
		}
	})

	t.Run("NotConfigured", func(t *testing.T) {
		e := extract.NewExtractor(extract.Config{})

		_, err := e.Extract(context.Background(), []byte("png-bytes"), "scan.png")
		if !errors.Is(err, models.ErrNotConfigured) {
			t.Errorf("expected ErrNotConfigured, got %v", err)
		}
	})
}

func TestExtractPDFInvalid(t *testing.T) {
	e, _ := newTestExtractor(&countingWorker{})

	if _, err := e.Extract(context.Background(), []byte("not a pdf at all"), "paper.pdf"); err == nil {
		t.Error("expected error for malformed PDF bytes")
	}
}
