package main

import (
	"log"
	"net/http"
	"os"
	"time"

	"studyaid/internal/api"
	"studyaid/internal/config"
	"studyaid/internal/extract"
	"studyaid/internal/services"
	"studyaid/pkg/newsfinder"
)

func main() {
	cfg := config.Load()

	if cfg.GroqKey == "" {
		log.Printf("warning: GROQ_API_KEY is not set; generation endpoints will fail")
	}
	if cfg.PerplexityKey == "" {
		log.Printf("warning: PERPLEXITY_API_KEY is not set; article search is disabled")
	}

	completions := services.NewCompletionService(cfg.GroqKey, cfg.GroqModel, cfg.GroqEndpoint)
	extractor := extract.NewExtractor(extract.Config{
		APIKey:      cfg.GroqKey,
		Endpoint:    cfg.GroqEndpoint,
		VisionModel: cfg.VisionModel,
		PDFMode:     cfg.PDFMode,
	})

	var finder newsfinder.Finder
	if cfg.PerplexityKey != "" {
		finder = newsfinder.NewFinder(newsfinder.Config{
			APIKey:  cfg.PerplexityKey,
			BaseURL: cfg.PerplexityBaseURL,
			Model:   cfg.PerplexityModel,
			Sources: sourceRules(cfg.Sources),
		})
	}

	summaryService := services.NewSummaryService(completions)
	quizService := services.NewQuizService(completions, finder, newsfinder.NewPagePreviewer())

	server := api.NewServer(extractor, summaryService, quizService)
	mux := http.NewServeMux()

	staticFS := http.FileServer(http.Dir(cfg.StaticDir))
	mux.Handle("/static/", http.StripPrefix("/static/", staticFS))

	mux.HandleFunc("/", serveFile(cfg.StaticDir+"/index.html"))
	mux.HandleFunc("/quiz", serveFile(cfg.StaticDir+"/quiz.html"))

	mux.Handle("/api", server.Handler())
	mux.Handle("/api/", server.Handler())

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	log.Printf("listening on :%s", port)

	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      mux,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
	}

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server failed: %v", err)
	}
}

func sourceRules(rules []config.SourceRule) []newsfinder.SourceRule {
	out := make([]newsfinder.SourceRule, len(rules))
	for i, rule := range rules {
		out[i] = newsfinder.SourceRule{Domain: rule.Domain, PathPrefix: rule.PathPrefix}
	}
	return out
}

func serveFile(path string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			w.Header().Set("Allow", "GET, HEAD")
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		http.ServeFile(w, r, path)
	}
}
