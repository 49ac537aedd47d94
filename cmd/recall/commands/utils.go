// ABOUTME: Shared utility functions for CLI commands
// ABOUTME: Engine setup, display formatting, and argument validation helpers
package commands

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/harper/recall/internal/config"
	"github.com/harper/recall/internal/core"
	"github.com/harper/recall/internal/llm"
	"github.com/harper/recall/internal/storage/sqlite"
)

// openStore loads configuration and opens the database. Used by
// commands that never talk to the OpenAI API.
func openStore() (*sqlite.Store, *config.Config, error) {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("loading config: %w", err)
	}
	store, err := sqlite.Open(cfg.DBPath, cfg.VectorDimension)
	if err != nil {
		return nil, nil, fmt.Errorf("opening database: %w", err)
	}
	return store, cfg, nil
}

// openEngine builds the full engine: store, OpenAI client, pipeline,
// retriever, and token tracker. The caller owns shutdown via
// engine.Stop and store.Close.
func openEngine() (*core.Engine, *sqlite.Store, error) {
	store, cfg, err := openStore()
	if err != nil {
		return nil, nil, err
	}

	client, err := llm.NewClient(llm.ConfigFromApp(cfg))
	if err != nil {
		store.Close()
		return nil, nil, fmt.Errorf("initializing OpenAI client: %w", err)
	}

	pipeline := core.NewPipeline(store, client, client, core.PipelineConfig{
		Workers:     cfg.PipelineWorkers,
		QueueDepth:  cfg.QueueDepth,
		MaxAttempts: cfg.MaxRetries,
		RetryDelay:  cfg.RetryDelay,
	})
	retriever := core.NewHybridRetriever(store, client)
	tracker := core.NewTokenThresholdTracker(cfg.MaxContextTokens)

	return core.NewEngine(store, pipeline, retriever, tracker), store, nil
}

// truncate shortens a string to maxLen, adding "..." if truncated
func truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return string(runes[:maxLen-3]) + "..."
}

// formatTime formats a time for display
func formatTime(t time.Time) string {
	now := time.Now()
	diff := now.Sub(t)

	if diff < time.Minute {
		return "just now"
	} else if diff < time.Hour {
		mins := int(diff.Minutes())
		return fmt.Sprintf("%dm ago", mins)
	} else if diff < 24*time.Hour {
		hours := int(diff.Hours())
		return fmt.Sprintf("%dh ago", hours)
	} else if diff < 7*24*time.Hour {
		days := int(diff.Hours() / 24)
		return fmt.Sprintf("%dd ago", days)
	}
	return t.Format("2006-01-02")
}

// validatePositiveInt returns error if n is not positive
func validatePositiveInt(n int, name string) error {
	if n <= 0 {
		return fmt.Errorf("%s must be positive, got %d", name, n)
	}
	return nil
}

// warnVerbose prints a warning to stderr when --verbose is set
func warnVerbose(format string, args ...interface{}) {
	if verbose {
		fmt.Fprintf(os.Stderr, "Warning: "+format+"\n", args...)
	}
}
