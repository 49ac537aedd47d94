// ABOUTME: Centralized configuration for the recall memory engine
// ABOUTME: Loads from environment variables with validation and defaults
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/adrg/xdg"
)

// Config holds all configuration for the memory engine
type Config struct {
	// Storage settings
	DBPath string

	// OpenAI settings
	OpenAIKey      string
	SummaryModel   string
	EmbeddingModel string
	Timeout        time.Duration
	MaxRetries     int
	RetryDelay     time.Duration

	// Memory settings
	VectorDimension  int
	MaxContextTokens int

	// Pipeline settings
	PipelineWorkers int
	QueueDepth      int
}

// DefaultDBPath returns the XDG-compliant database location
func DefaultDBPath() string {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		dataHome = xdg.DataHome
	}
	return filepath.Join(dataHome, "recall", "recall.db")
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		DBPath:           getEnv("RECALL_DB_PATH", DefaultDBPath()),
		OpenAIKey:        os.Getenv("OPENAI_API_KEY"),
		SummaryModel:     getEnv("RECALL_SUMMARY_MODEL", "gpt-4o-mini"),
		EmbeddingModel:   getEnv("RECALL_EMBEDDING_MODEL", "text-embedding-3-small"),
		Timeout:          getEnvDuration("OPENAI_TIMEOUT", 30*time.Second),
		MaxRetries:       getEnvInt("OPENAI_MAX_RETRIES", 3),
		RetryDelay:       getEnvDuration("OPENAI_RETRY_DELAY", 2*time.Second),
		VectorDimension:  getEnvInt("RECALL_VECTOR_DIMENSION", 1536),
		MaxContextTokens: getEnvInt("RECALL_MAX_CONTEXT_TOKENS", 128000),
		PipelineWorkers:  getEnvInt("RECALL_PIPELINE_WORKERS", 2),
		QueueDepth:       getEnvInt("RECALL_QUEUE_DEPTH", 256),
	}

	return cfg, cfg.Validate()
}

func (c *Config) Validate() error {
	if c.VectorDimension <= 0 {
		return fmt.Errorf("RECALL_VECTOR_DIMENSION must be positive, got %d", c.VectorDimension)
	}
	if c.MaxContextTokens <= 0 {
		return fmt.Errorf("RECALL_MAX_CONTEXT_TOKENS must be positive, got %d", c.MaxContextTokens)
	}
	if c.MaxRetries < 0 || c.MaxRetries > 10 {
		return fmt.Errorf("OPENAI_MAX_RETRIES must be 0-10, got %d", c.MaxRetries)
	}
	if c.PipelineWorkers < 1 {
		return fmt.Errorf("RECALL_PIPELINE_WORKERS must be at least 1, got %d", c.PipelineWorkers)
	}
	if c.QueueDepth < 1 {
		return fmt.Errorf("RECALL_QUEUE_DEPTH must be at least 1, got %d", c.QueueDepth)
	}
	return nil
}

// Helper functions
func getEnv(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultVal
}
