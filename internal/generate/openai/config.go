package openai

import (
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/joseph-ayodele/reportai/internal/generate"
)

// Config for the OpenAI client.
type Config struct {
	APIKey      string        // if empty, falls back to env OPENAI_API_KEY
	BaseURL     string        // default https://api.openai.com/v1
	Model       string        // e.g., "gpt-4o-mini"
	Temperature float32       // 0..2
	Timeout     time.Duration // http client timeout
}

type Client struct {
	cfg        Config
	templates  generate.Templates
	httpClient *http.Client
	log        *slog.Logger
}

var _ generate.Generator = (*Client)(nil)

func NewClient(cfg Config, templates generate.Templates, logger *slog.Logger) *Client {
	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 90 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	if templates == nil {
		templates = generate.DefaultTemplates()
	}
	return &Client{
		cfg:        cfg,
		templates:  templates,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		log:        logger,
	}
}
