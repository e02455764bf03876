package common

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration
type Config struct {
	OCR      OCRConfig
	Analysis AnalysisConfig
	Store    StoreConfig
	Ingest   IngestConfig
}

// OCRConfig holds text extraction configuration
type OCRConfig struct {
	Pdftotext     string
	Pdftoppm      string
	Tesseract     string
	TesseractLang string
	DPI           int
	MaxPages      int
	TessdataDir   string
}

// AnalysisConfig holds remote analysis configuration
type AnalysisConfig struct {
	BaseURL         string
	APIKey          string
	AssistantID     string
	Organization    string
	Timeout         time.Duration
	MaxRetries      int
	BaseDelay       time.Duration
	PollInterval    time.Duration
	MaxPollAttempts int
}

// StoreConfig holds persistence configuration
type StoreConfig struct {
	Path string
}

// IngestConfig holds document intake configuration
type IngestConfig struct {
	WatchRoots []string
	Debounce   time.Duration
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		OCR: OCRConfig{
			Pdftotext:     getEnv("PDFTOTEXT_BIN", "pdftotext"),
			Pdftoppm:      getEnv("PDFTOPPM_BIN", "pdftoppm"),
			Tesseract:     getEnv("TESSERACT_BIN", "tesseract"),
			TesseractLang: getEnv("TESSERACT_LANG", "pol"),
			DPI:           getEnvAsInt("OCR_DPI", 300),
			MaxPages:      getEnvAsInt("OCR_MAX_PAGES", 0),
			TessdataDir:   getEnv("TESSDATA_PREFIX", ""),
		},
		Analysis: AnalysisConfig{
			BaseURL:         getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
			APIKey:          getEnv("OPENAI_API_KEY", ""),
			AssistantID:     getEnv("OPENAI_ASSISTANT_ID", ""),
			Organization:    getEnv("OPENAI_ORG_ID", ""),
			Timeout:         getEnvAsDuration("OPENAI_TIMEOUT", 45*time.Second),
			MaxRetries:      getEnvAsInt("ANALYSIS_MAX_RETRIES", 3),
			BaseDelay:       getEnvAsDuration("ANALYSIS_BASE_DELAY", time.Second),
			PollInterval:    getEnvAsDuration("ANALYSIS_POLL_INTERVAL", time.Second),
			MaxPollAttempts: getEnvAsInt("ANALYSIS_MAX_POLL_ATTEMPTS", 30),
		},
		Store: StoreConfig{
			Path: getEnv("STORE_PATH", "orderscan.db"),
		},
		Ingest: IngestConfig{
			WatchRoots: getEnvAsList("WATCH_ROOTS"),
			Debounce:   getEnvAsDuration("WATCH_DEBOUNCE", 500*time.Millisecond),
		},
	}
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

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvAsList(key string) []string {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Validate checks the remote analysis credentials.
func (c *AnalysisConfig) Validate() error {
	if c.APIKey == "" {
		return NewAppError("CONFIG_ERROR", "OPENAI_API_KEY is required", ErrInvalidInput)
	}
	if !strings.HasPrefix(c.APIKey, "sk-") {
		return NewAppError("CONFIG_ERROR", "OPENAI_API_KEY must start with sk-", ErrInvalidInput)
	}
	if c.AssistantID == "" {
		return NewAppError("CONFIG_ERROR", "OPENAI_ASSISTANT_ID is required", ErrInvalidInput)
	}
	if !strings.HasPrefix(c.AssistantID, "asst_") {
		return NewAppError("CONFIG_ERROR", "OPENAI_ASSISTANT_ID must start with asst_", ErrInvalidInput)
	}
	return nil
}

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	if err := c.Analysis.Validate(); err != nil {
		return err
	}
	if c.Store.Path == "" {
		return NewAppError("CONFIG_ERROR", "STORE_PATH is required", ErrInvalidInput)
	}
	return nil
}
