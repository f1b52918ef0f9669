// Package classifier maps review adjectives to one of a fixed set of emotions
// using a language model.
package classifier

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/intelligrit/emotion-atlas/internal/retry"
)

// Provider completes a single prompt.
type Provider interface {
	Complete(ctx context.Context, prompt string) (string, error)
	Model() string
}

// Cache stores classifications by normalized adjective.
type Cache interface {
	ReadClassification(adjective string) (string, bool, error)
	WriteClassification(adjective, emotion, model string) error
}

// NewProvider builds the provider named by provider ("anthropic" or "openai").
func NewProvider(provider, apiKey, model, baseURL string, maxTokens int) (Provider, error) {
	switch provider {
	case "anthropic":
		return NewAnthropicClient(apiKey, model, baseURL, maxTokens), nil
	case "openai":
		return NewOpenAIClient(apiKey, model, baseURL, maxTokens), nil
	}
	return nil, fmt.Errorf("unknown classifier provider %q", provider)
}

// Cached classifies adjectives through a provider, remembering results in
// memory and in an optional persistent cache. Provider calls go through the
// retry executor; a reply that names no known emotion is not retried.
type Cached struct {
	provider Provider
	cache    Cache
	retry    *retry.Executor
	log      *zap.Logger

	mu     sync.Mutex
	memory map[string]string
}

// NewCached wraps provider. cache may be nil.
func NewCached(provider Provider, cache Cache, exec *retry.Executor, log *zap.Logger) *Cached {
	if log == nil {
		log = zap.NewNop()
	}
	if exec == nil {
		exec = retry.New(retry.DefaultPolicy(), log)
	}
	return &Cached{
		provider: provider,
		cache:    cache,
		retry:    exec,
		log:      log,
		memory:   make(map[string]string),
	}
}

func normalize(adjective string) string {
	return strings.ToLower(strings.TrimSpace(adjective))
}

// Classify returns the emotion label for adjective.
func (c *Cached) Classify(ctx context.Context, adjective string) (string, error) {
	key := normalize(adjective)
	if key == "" {
		return "", fmt.Errorf("empty adjective")
	}

	c.mu.Lock()
	label, ok := c.memory[key]
	c.mu.Unlock()
	if ok {
		return label, nil
	}

	if c.cache != nil {
		label, ok, err := c.cache.ReadClassification(key)
		if err != nil {
			c.log.Warn("reading classification cache", zap.String("adjective", key), zap.Error(err))
		} else if ok {
			c.remember(key, label)
			return label, nil
		}
	}

	prompt := buildPrompt(key)
	label, err := retry.Execute(ctx, c.retry, func(ctx context.Context) (string, error) {
		reply, err := c.provider.Complete(ctx, prompt)
		if err != nil {
			return "", err
		}
		return ParseEmotion(reply)
	})
	if err != nil {
		return "", fmt.Errorf("classifying %q: %w", key, err)
	}

	c.log.Debug("classified adjective", zap.String("adjective", key), zap.String("emotion", label))
	c.remember(key, label)
	if c.cache != nil {
		if err := c.cache.WriteClassification(key, label, c.provider.Model()); err != nil {
			c.log.Warn("writing classification cache", zap.String("adjective", key), zap.Error(err))
		}
	}
	return label, nil
}

func (c *Cached) remember(key, label string) {
	c.mu.Lock()
	c.memory[key] = label
	c.mu.Unlock()
}
