// Package ai implements the content generation gateway: an OpenAI-compatible
// chat provider that turns a word lookup plus a personalization context into
// one canonical WordContent result.
package ai

import (
	"context"
	"log/slog"
	"math"
	"time"

	"github.com/pkg/errors"
	"github.com/sashabaranov/go-openai"
	"golang.org/x/time/rate"

	"github.com/wordfolio/wordfolio/internal/profile"
)

// PersonalizationContext carries the resolved user attributes used to build
// a generation request. It is resolved once by the caller; the gateway never
// reaches back into profiles or stores.
type PersonalizationContext struct {
	AgeGroup       string
	Level          string // CEFR level
	TargetLanguage string // ISO code, e.g. "fr"
	NativeLanguage string // ISO code, e.g. "en"
	Interests      []string
	Tone           string
}

// WordContent is the canonical, already-normalized generation result.
// Legacy provider field names never leave this package.
type WordContent struct {
	InputWord        string
	TargetLanguage   string
	NativeLanguage   string
	SelectedInterest string
	PartOfSpeech     string
	BaseForm         string
	Gender           string // "m", "f", or ""
	Level            string // CEFR level
	Definition       string // explanation in the native language
	Conversation     string
	Usages           []string // exactly 3 entries
}

// Generator is the content generation gateway contract.
type Generator interface {
	Generate(ctx context.Context, word string, pctx PersonalizationContext) (*WordContent, error)
}

// Config holds the generation provider configuration.
type Config struct {
	BaseURL    string
	APIKey     string
	Model      string
	MaxRetries int
	Timeout    time.Duration
	// RequestsPerSecond bounds outbound calls; burst is twice the rate.
	RequestsPerSecond float64
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		BaseURL:           "https://api.openai.com/v1",
		Model:             "gpt-4o-mini",
		MaxRetries:        3,
		Timeout:           30 * time.Second,
		RequestsPerSecond: 5,
	}
}

// ConfigFromProfile builds a gateway config from the runtime profile.
func ConfigFromProfile(p *profile.Profile) *Config {
	cfg := DefaultConfig()
	if p.AIBaseURL != "" {
		cfg.BaseURL = p.AIBaseURL
	}
	cfg.APIKey = p.AIAPIKey
	if p.AIModel != "" {
		cfg.Model = p.AIModel
	}
	if p.AITimeout > 0 {
		cfg.Timeout = p.AITimeout
	}
	return cfg
}

// Provider generates word content via an OpenAI-compatible chat endpoint.
type Provider struct {
	client  *openai.Client
	config  *Config
	limiter *rate.Limiter
}

// NewProvider creates a new generation provider.
func NewProvider(cfg *Config) (*Provider, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini"
	}
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = 5
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}

	return &Provider{
		client:  openai.NewClientWithConfig(clientConfig),
		config:  cfg,
		limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), int(cfg.RequestsPerSecond*2)),
	}, nil
}

// Generate performs one personalized word lookup. The returned content is
// normalized to the canonical shape; any provider, transport, or parsing
// failure surfaces as an error for the caller's fallback path.
func (p *Provider) Generate(ctx context.Context, word string, pctx PersonalizationContext) (*WordContent, error) {
	if word == "" {
		return nil, errors.New("word is required")
	}

	ctx, cancel := context.WithTimeout(ctx, p.config.Timeout)
	defer cancel()

	if err := p.limiter.Wait(ctx); err != nil {
		return nil, errors.Wrap(err, "rate limit wait")
	}

	prompt := buildPrompt(word, pctx)

	var raw string
	err := p.doWithRetry(ctx, func() error {
		req := openai.ChatCompletionRequest{
			Model: p.config.Model,
			Messages: []openai.ChatCompletionMessage{
				{Role: openai.ChatMessageRoleUser, Content: prompt},
			},
			Temperature: 0.3,
			ResponseFormat: &openai.ChatCompletionResponseFormat{
				Type: openai.ChatCompletionResponseFormatTypeJSONObject,
			},
		}

		resp, err := p.client.CreateChatCompletion(ctx, req)
		if err != nil {
			return err
		}
		if len(resp.Choices) == 0 {
			return errors.New("empty chat response")
		}
		raw = resp.Choices[0].Message.Content
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to generate content for %q", word)
	}

	content, err := normalizeResponse(raw, pctx)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to normalize response for %q", word)
	}
	return content, nil
}

// doWithRetry executes a function with exponential backoff retry.
func (p *Provider) doWithRetry(ctx context.Context, fn func() error) error {
	var lastErr error
	for attempt := 0; attempt < p.config.MaxRetries; attempt++ {
		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
			if attempt < p.config.MaxRetries-1 {
				waitTime := time.Duration(math.Pow(2, float64(attempt))) * time.Second
				slog.Debug("generation request failed, retrying",
					"attempt", attempt+1,
					"wait_time", waitTime,
					"error", err)
				select {
				case <-time.After(waitTime):
				case <-ctx.Done():
					return ctx.Err()
				}
			}
		}
	}
	return lastErr
}
