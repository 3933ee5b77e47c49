package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Store backends.
const (
	StoreSQLite   = "sqlite"
	StorePostgres = "postgres"
	StoreFile     = "file"
	StoreS3       = "s3"
)

// Config holds all application configuration
type Config struct {
	Store   StoreConfig   `yaml:"store"`
	S3      S3Config      `yaml:"s3"`
	Extract ExtractConfig `yaml:"extract"`
	LLM     LLMConfig     `yaml:"llm"`
	Queue   QueueConfig   `yaml:"queue"`
	Log     LogConfig     `yaml:"log"`
}

// StoreConfig selects and configures the persistence medium
type StoreConfig struct {
	Backend    string `yaml:"backend"`
	SQLitePath string `yaml:"sqlite_path"`
	FilePath   string `yaml:"file_path"`

	DSN              string        `yaml:"dsn"`
	MaxConns         int32         `yaml:"max_conns"`
	MinConns         int32         `yaml:"min_conns"`
	MaxConnLifetime  time.Duration `yaml:"max_conn_lifetime"`
	MaxConnIdleTime  time.Duration `yaml:"max_conn_idle_time"`
	DialTimeout      time.Duration `yaml:"dial_timeout"`
	StatementTimeout time.Duration `yaml:"statement_timeout"`
}

// S3Config holds object storage settings for the s3 backend
type S3Config struct {
	Bucket    string `yaml:"bucket"`
	Key       string `yaml:"key"`
	Region    string `yaml:"region"`
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
}

// ExtractConfig holds text extraction tooling
type ExtractConfig struct {
	Pdftotext string        `yaml:"pdftotext"`
	Antiword  string        `yaml:"antiword"`
	Xls2csv   string        `yaml:"xls2csv"`
	TempDir   string        `yaml:"temp_dir"`
	Timeout   time.Duration `yaml:"timeout"`
}

// LLMConfig holds generation backend settings
type LLMConfig struct {
	TemplatesFile string        `yaml:"templates_file"`
	Temperature   float32       `yaml:"temperature"`
	Timeout       time.Duration `yaml:"timeout"`

	OpenAI    OpenAIConfig    `yaml:"openai"`
	Anthropic AnthropicConfig `yaml:"anthropic"`
	Ollama    OllamaConfig    `yaml:"ollama"`
	Vertex    VertexConfig    `yaml:"vertex"`
}

type OpenAIConfig struct {
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url"`
	Model   string `yaml:"model"`
}

type AnthropicConfig struct {
	APIKey string `yaml:"api_key"`
	Model  string `yaml:"model"`
}

type OllamaConfig struct {
	ServerURL string `yaml:"server_url"`
	Model     string `yaml:"model"`
}

type VertexConfig struct {
	ProjectID string `yaml:"project_id"`
	Location  string `yaml:"location"`
	Model     string `yaml:"model"`
}

// QueueConfig sizes the background report worker pool
type QueueConfig struct {
	Workers int           `yaml:"workers"`
	Size    int           `yaml:"size"`
	Timeout time.Duration `yaml:"timeout"`
}

type LogConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		Store: StoreConfig{
			Backend:         StoreSQLite,
			SQLitePath:      "reportai.db",
			FilePath:        "reportai-state.json",
			MaxConns:        10,
			MinConns:        1,
			MaxConnLifetime: 30 * time.Minute,
			MaxConnIdleTime: 5 * time.Minute,
			DialTimeout:     3 * time.Second,
		},
		S3: S3Config{
			Key:    "reportai-state.json",
			Region: "us-east-1",
		},
		Extract: ExtractConfig{
			Pdftotext: "pdftotext",
			Antiword:  "antiword",
			Xls2csv:   "xls2csv",
			Timeout:   2 * time.Minute,
		},
		LLM: LLMConfig{
			Timeout: 90 * time.Second,
			OpenAI: OpenAIConfig{
				BaseURL: "https://api.openai.com/v1",
				Model:   "gpt-4o-mini",
			},
			Anthropic: AnthropicConfig{Model: "claude-3-5-sonnet-latest"},
			Ollama:    OllamaConfig{ServerURL: "http://localhost:11434", Model: "llama3.1"},
			Vertex:    VertexConfig{Location: "us-central1", Model: "gemini-1.5-pro"},
		},
		Queue: QueueConfig{
			Workers: 2,
			Size:    64,
			Timeout: 5 * time.Minute,
		},
		Log: LogConfig{Level: "info"},
	}
}

// LoadConfig layers defaults, the optional YAML file named by REPORTAI_CONFIG,
// and environment variables (highest precedence).
func LoadConfig() (*Config, error) {
	cfg := DefaultConfig()
	if path := os.Getenv("REPORTAI_CONFIG"); path != "" {
		if err := cfg.overlayFile(path); err != nil {
			return nil, err
		}
	}
	cfg.overlayEnv()
	return cfg, nil
}

func (c *Config) overlayFile(path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(b, c); err != nil {
		return NewAppError("CONFIG_ERROR", "parse "+path, err)
	}
	return nil
}

func (c *Config) overlayEnv() {
	c.Store.Backend = strings.ToLower(getEnv("STORE_BACKEND", c.Store.Backend))
	c.Store.SQLitePath = getEnv("SQLITE_PATH", c.Store.SQLitePath)
	c.Store.FilePath = getEnv("STATE_FILE", c.Store.FilePath)
	c.Store.DSN = getEnv("DB_URL", c.Store.DSN)
	c.Store.MaxConns = getEnvAsInt32("DB_MAX_CONNS", c.Store.MaxConns)
	c.Store.MinConns = getEnvAsInt32("DB_MIN_CONNS", c.Store.MinConns)
	c.Store.MaxConnLifetime = getEnvAsDuration("DB_MAX_CONN_LIFETIME", c.Store.MaxConnLifetime)
	c.Store.MaxConnIdleTime = getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", c.Store.MaxConnIdleTime)
	c.Store.DialTimeout = getEnvAsDuration("DB_DIAL_TIMEOUT", c.Store.DialTimeout)
	c.Store.StatementTimeout = getEnvAsDuration("DB_STATEMENT_TIMEOUT", c.Store.StatementTimeout)

	c.S3.Bucket = getEnv("S3_BUCKET", c.S3.Bucket)
	c.S3.Key = getEnv("S3_KEY", c.S3.Key)
	c.S3.Region = getEnv("S3_REGION", c.S3.Region)
	c.S3.Endpoint = getEnv("S3_ENDPOINT", c.S3.Endpoint)
	c.S3.AccessKey = getEnv("S3_ACCESS_KEY", c.S3.AccessKey)
	c.S3.SecretKey = getEnv("S3_SECRET_KEY", c.S3.SecretKey)

	c.Extract.Pdftotext = getEnv("PDFTOTEXT", c.Extract.Pdftotext)
	c.Extract.Antiword = getEnv("ANTIWORD", c.Extract.Antiword)
	c.Extract.Xls2csv = getEnv("XLS2CSV", c.Extract.Xls2csv)
	c.Extract.TempDir = getEnv("EXTRACT_TEMP_DIR", c.Extract.TempDir)
	c.Extract.Timeout = getEnvAsDuration("EXTRACT_TIMEOUT", c.Extract.Timeout)

	c.LLM.TemplatesFile = getEnv("REPORT_TEMPLATES_FILE", c.LLM.TemplatesFile)
	c.LLM.Temperature = getEnvAsFloat32("LLM_TEMPERATURE", c.LLM.Temperature)
	c.LLM.Timeout = getEnvAsDuration("LLM_TIMEOUT", c.LLM.Timeout)
	c.LLM.OpenAI.APIKey = getEnv("OPENAI_API_KEY", c.LLM.OpenAI.APIKey)
	c.LLM.OpenAI.BaseURL = getEnv("OPENAI_BASE_URL", c.LLM.OpenAI.BaseURL)
	c.LLM.OpenAI.Model = getEnv("OPENAI_MODEL", c.LLM.OpenAI.Model)
	c.LLM.Anthropic.APIKey = getEnv("ANTHROPIC_API_KEY", c.LLM.Anthropic.APIKey)
	c.LLM.Anthropic.Model = getEnv("ANTHROPIC_MODEL", c.LLM.Anthropic.Model)
	c.LLM.Ollama.ServerURL = getEnv("OLLAMA_HOST", c.LLM.Ollama.ServerURL)
	c.LLM.Ollama.Model = getEnv("OLLAMA_MODEL", c.LLM.Ollama.Model)
	c.LLM.Vertex.ProjectID = getEnv("GOOGLE_CLOUD_PROJECT", c.LLM.Vertex.ProjectID)
	c.LLM.Vertex.Location = getEnv("VERTEX_LOCATION", c.LLM.Vertex.Location)
	c.LLM.Vertex.Model = getEnv("VERTEX_MODEL", c.LLM.Vertex.Model)

	c.Queue.Workers = getEnvAsInt("QUEUE_WORKERS", c.Queue.Workers)
	c.Queue.Size = getEnvAsInt("QUEUE_SIZE", c.Queue.Size)
	c.Queue.Timeout = getEnvAsDuration("QUEUE_TIMEOUT", c.Queue.Timeout)

	c.Log.Level = getEnv("LOG_LEVEL", c.Log.Level)
	c.Log.File = getEnv("LOG_FILE", c.Log.File)
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsInt32(key string, defaultValue int32) int32 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 32); err == nil {
			return int32(intVal)
		}
	}
	return defaultValue
}

func getEnvAsFloat32(key string, defaultValue float32) float32 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 32); err == nil {
			return float32(floatVal)
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// Validate checks the settings the selected store backend depends on.
func (c *Config) Validate() error {
	switch c.Store.Backend {
	case StoreSQLite:
		if c.Store.SQLitePath == "" {
			return NewAppError("CONFIG_ERROR", "SQLITE_PATH is required", ErrInvalidInput)
		}
	case StorePostgres:
		if c.Store.DSN == "" {
			return NewAppError("CONFIG_ERROR", "DB_URL is required", ErrInvalidInput)
		}
	case StoreFile:
		if c.Store.FilePath == "" {
			return NewAppError("CONFIG_ERROR", "STATE_FILE is required", ErrInvalidInput)
		}
	case StoreS3:
		if c.S3.Bucket == "" || c.S3.Key == "" {
			return NewAppError("CONFIG_ERROR", "S3_BUCKET and S3_KEY are required", ErrInvalidInput)
		}
	default:
		return NewAppError("CONFIG_ERROR", fmt.Sprintf("unknown STORE_BACKEND %q", c.Store.Backend), ErrInvalidInput)
	}
	if c.Queue.Workers <= 0 {
		return NewAppError("CONFIG_ERROR", "QUEUE_WORKERS must be positive", ErrInvalidInput)
	}
	return nil
}
