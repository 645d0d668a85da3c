package common

import (
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server ServerConfig
	AI     AIConfig
	OCR    OCRConfig
}

// ServerConfig holds HTTP-related configuration.
type ServerConfig struct {
	HTTPAddr       string
	MaxUploadBytes int64
}

// AIConfig holds generative-AI collaborator configuration.
type AIConfig struct {
	APIKey         string
	AnalysisModel  string
	SynthesisModel string
	Pacing         time.Duration
}

// OCRConfig holds scanned-PDF recognition configuration.
type OCRConfig struct {
	Pdftoppm  string
	Tesseract string
	Lang      string
	DPI       int
	MaxPages  int
}

// LoadConfig loads configuration from environment variables.
func LoadConfig() *Config {
	return &Config{
		Server: ServerConfig{
			HTTPAddr:       getEnv("HTTP_ADDR", ":8080"),
			MaxUploadBytes: getEnvAsInt64("MAX_UPLOAD_BYTES", 64<<20),
		},
		AI: AIConfig{
			APIKey:         getEnv("GEMINI_API_KEY", ""),
			AnalysisModel:  getEnv("GEMINI_ANALYSIS_MODEL", "gemini-2.5-flash"),
			SynthesisModel: getEnv("GEMINI_SYNTHESIS_MODEL", "gemini-2.5-pro"),
			Pacing:         getEnvAsDuration("ANALYSIS_PACING", 4*time.Second),
		},
		OCR: OCRConfig{
			Pdftoppm:  getEnv("PDFTOPPM", "pdftoppm"),
			Tesseract: getEnv("TESSERACT", "tesseract"),
			Lang:      getEnv("OCR_LANG", "eng"),
			DPI:       getEnvAsInt("OCR_DPI", 300),
			MaxPages:  getEnvAsInt("OCR_MAX_PAGES", 0),
		},
	}
}

// Validate validates the loaded configuration.
func (c *Config) Validate() error {
	if c.AI.APIKey == "" {
		return NewAppError("CONFIG_ERROR", "GEMINI_API_KEY is required", ErrDependencyUnavailable, nil)
	}
	if c.Server.HTTPAddr == "" {
		return NewAppError("CONFIG_ERROR", "HTTP_ADDR is required", ErrDependencyUnavailable, nil)
	}
	return nil
}

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

func getEnvAsInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 64); err == nil {
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
