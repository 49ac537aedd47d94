// ABOUTME: OpenAI client providing the summarizer and embedder services
// ABOUTME: Uses gpt-4o-mini for summaries, text-embedding-3-small for vectors
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/harper/recall/internal/config"
	"github.com/harper/recall/internal/util"
)

// ErrExternalService marks failures talking to OpenAI. Callers recover
// from these (the condensation pipeline retries later); they are never
// fatal to the process.
var ErrExternalService = errors.New("external service error")

const summarySystemPrompt = `You are a conversation memory assistant. Summarize the given AI response into one or two dense sentences that capture its key facts, decisions, and topics. Write in the third person, no preamble, no markdown.`

// ClientConfig holds configuration for the OpenAI client
type ClientConfig struct {
	APIKey         string
	SummaryModel   string
	EmbeddingModel openai.EmbeddingModel
	Timeout        time.Duration
	MaxRetries     int
	RetryDelay     time.Duration
}

// ConfigFromApp derives a client configuration from the app config
func ConfigFromApp(cfg *config.Config) *ClientConfig {
	return &ClientConfig{
		APIKey:         cfg.OpenAIKey,
		SummaryModel:   cfg.SummaryModel,
		EmbeddingModel: openai.EmbeddingModel(cfg.EmbeddingModel),
		Timeout:        cfg.Timeout,
		MaxRetries:     cfg.MaxRetries,
		RetryDelay:     cfg.RetryDelay,
	}
}

// Client wraps the OpenAI API with retry logic. It implements the
// Summarizer and Embedder interfaces consumed by the core packages.
type Client struct {
	api            *openai.Client
	summaryModel   string
	embeddingModel openai.EmbeddingModel
	timeout        time.Duration
	maxRetries     int
	retryDelay     time.Duration
}

// NewClient creates a new OpenAI client
func NewClient(cfg *ClientConfig) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("OpenAI API key is required")
	}

	return &Client{
		api:            openai.NewClient(cfg.APIKey),
		summaryModel:   cfg.SummaryModel,
		embeddingModel: cfg.EmbeddingModel,
		timeout:        cfg.Timeout,
		maxRetries:     cfg.MaxRetries,
		retryDelay:     cfg.RetryDelay,
	}, nil
}

// Summarize condenses a model turn into a short summary
func (c *Client) Summarize(ctx context.Context, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("%w: cannot summarize empty text", ErrExternalService)
	}

	var summary string
	err := util.Do(ctx, c.maxRetries+1, c.retryDelay, func(ctx context.Context) error {
		callCtx, cancel := context.WithTimeout(ctx, c.timeout)
		defer cancel()

		resp, err := c.api.CreateChatCompletion(callCtx, openai.ChatCompletionRequest{
			Model: c.summaryModel,
			Messages: []openai.ChatCompletionMessage{
				{Role: openai.ChatMessageRoleSystem, Content: summarySystemPrompt},
				{Role: openai.ChatMessageRoleUser, Content: text},
			},
			Temperature: 0.2,
		})
		if err != nil {
			return err
		}
		if len(resp.Choices) == 0 {
			return errors.New("no completion choices returned")
		}

		summary = strings.TrimSpace(resp.Choices[0].Message.Content)
		if summary == "" {
			return errors.New("empty summary returned")
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("%w: summarize: %v", ErrExternalService, err)
	}

	return summary, nil
}

// Embed generates an embedding vector for the given text
func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	var vector []float32
	err := util.Do(ctx, c.maxRetries+1, c.retryDelay, func(ctx context.Context) error {
		callCtx, cancel := context.WithTimeout(ctx, c.timeout)
		defer cancel()

		resp, err := c.api.CreateEmbeddings(callCtx, openai.EmbeddingRequestStrings{
			Input: []string{text},
			Model: c.embeddingModel,
		})
		if err != nil {
			return err
		}
		if len(resp.Data) == 0 {
			return errors.New("no embeddings returned")
		}

		vector = resp.Data[0].Embedding
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: embed: %v", ErrExternalService, err)
	}

	return vector, nil
}
