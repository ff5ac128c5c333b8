package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const configPathEnv = "STUDYAID_CONFIG"

// Config stores runtime configuration loaded from environment variables and
// an optional YAML file.
type Config struct {
	GroqKey      string `yaml:"-"`
	GroqEndpoint string `yaml:"groqEndpoint"`
	GroqModel    string `yaml:"groqModel"`
	VisionModel  string `yaml:"visionModel"`

	PerplexityKey     string `yaml:"-"`
	PerplexityBaseURL string `yaml:"perplexityBaseUrl"`
	PerplexityModel   string `yaml:"perplexityModel"`

	// PDFMode selects the PDF extraction provider: "native" uses the PDF
	// library, "vision" sends the document to the vision model as a data URI.
	PDFMode string `yaml:"pdfMode"`

	// Sources is the allow-list of news domains the article resolver accepts.
	Sources []SourceRule `yaml:"sources"`

	StaticDir string `yaml:"staticDir"`
}

// SourceRule describes one allow-listed news domain. A URL is accepted only
// when its host matches Domain and its path starts with PathPrefix and goes
// beyond it (a bare homepage is never an article).
type SourceRule struct {
	Domain     string `yaml:"domain"`
	PathPrefix string `yaml:"pathPrefix"`
}

// Load reads configuration from the environment, applying an optional YAML
// file first and sensible defaults last.
func Load() Config {
	// Load .env file if it exists (useful for development)
	_ = godotenv.Load()

	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else if err := yaml.Unmarshal(raw, &cfg); err != nil {
			log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
		}
	}

	cfg.GroqKey = os.Getenv("GROQ_API_KEY")
	cfg.PerplexityKey = os.Getenv("PERPLEXITY_API_KEY")
	cfg.GroqEndpoint = getEnv("GROQ_API_ENDPOINT", cfg.GroqEndpoint)
	cfg.GroqModel = getEnv("GROQ_MODEL", cfg.GroqModel)
	cfg.VisionModel = getEnv("GROQ_VISION_MODEL", cfg.VisionModel)
	cfg.PerplexityBaseURL = getEnv("PERPLEXITY_BASE_URL", cfg.PerplexityBaseURL)
	cfg.PerplexityModel = getEnv("PERPLEXITY_MODEL", cfg.PerplexityModel)
	cfg.PDFMode = getEnv("PDF_MODE", cfg.PDFMode)

	if len(cfg.Sources) == 0 {
		cfg.Sources = defaultConfig().Sources
	}

	return cfg
}

func defaultConfig() Config {
	return Config{
		GroqEndpoint:      "https://api.groq.com/openai/v1",
		GroqModel:         "llama-3.3-70b-versatile",
		VisionModel:       "meta-llama/llama-4-scout-17b-16e-instruct",
		PerplexityBaseURL: "https://api.perplexity.ai",
		PerplexityModel:   "sonar",
		PDFMode:           "native",
		StaticDir:         "./static",
		Sources: []SourceRule{
			{Domain: "sciencedaily.com", PathPrefix: "/releases/"},
		},
	}
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok && val != "" {
		return val
	}
	return fallback
}
