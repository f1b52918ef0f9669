package classifier

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/intelligrit/emotion-atlas/internal/retry"
)

func TestParseEmotion(t *testing.T) {
	tests := []struct {
		reply string
		want  string
	}{
		{"Joy", "Joy"},
		{"  wonder\n", "Wonder"},
		{"Peace.", "Peace"},
		{"5. Peace (calm, tranquility)", "Peace"},
		{"**Nostalgia**", "Nostalgia"},
		{"The adjective suggests Disappointment.", "Disappointment"},
		{"Stress\nBecause crowds are stressful.", "Stress"},
	}
	for _, tt := range tests {
		got, err := ParseEmotion(tt.reply)
		if err != nil {
			t.Errorf("ParseEmotion(%q) error: %v", tt.reply, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseEmotion(%q) = %q, want %q", tt.reply, got, tt.want)
		}
	}
}

func TestParseEmotionRejects(t *testing.T) {
	for _, reply := range []string{"", "Delight", "Either Joy or Sadness"} {
		_, err := ParseEmotion(reply)
		assert.ErrorIs(t, err, ErrUnknownEmotion, "reply %q", reply)
	}
}

func TestPromptListsEveryEmotion(t *testing.T) {
	names := Emotions()
	require.Len(t, names, 30)
	p := buildPrompt("breathtaking")
	assert.Contains(t, p, `"breathtaking"`)
	for _, n := range names {
		assert.Contains(t, p, n)
	}
}

func TestNewProvider(t *testing.T) {
	p, err := NewProvider("anthropic", "k", "claude", "", 16)
	require.NoError(t, err)
	assert.IsType(t, &AnthropicClient{}, p)
	assert.Equal(t, "claude", p.Model())

	p, err = NewProvider("openai", "k", "gpt", "", 16)
	require.NoError(t, err)
	assert.IsType(t, &OpenAIClient{}, p)

	_, err = NewProvider("mystery", "k", "m", "", 16)
	assert.Error(t, err)
}

func TestAnthropicClientComplete(t *testing.T) {
	var got apiRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/messages", r.URL.Path)
		assert.Equal(t, "secret", r.Header.Get("x-api-key"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte(`{"content":[{"type":"text","text":"Wonder"}]}`))
	}))
	defer srv.Close()

	c := NewAnthropicClient("secret", "claude-test", srv.URL, 16)
	reply, err := c.Complete(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, "Wonder", reply)
	assert.Equal(t, "claude-test", got.Model)
	assert.Equal(t, 16, got.MaxTokens)
	require.Len(t, got.Messages, 1)
	assert.Equal(t, "hello", got.Messages[0].Content)
}

func TestAnthropicClientOverloadedIsRetryable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(529)
		w.Write([]byte(`{"type":"error","error":{"type":"overloaded_error"}}`))
	}))
	defer srv.Close()

	_, err := NewAnthropicClient("k", "m", srv.URL, 16).Complete(context.Background(), "x")
	var se *retry.StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, 529, se.StatusCode)
	assert.True(t, retry.Retryable(err))
}

func TestOpenAIClientComplete(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "/chat/completions"))
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"c1","object":"chat.completion","model":"gpt-test",
			"choices":[{"index":0,"message":{"role":"assistant","content":"Curiosity"},"finish_reason":"stop"}]}`))
	}))
	defer srv.Close()

	c := NewOpenAIClient("secret", "gpt-test", srv.URL+"/v1", 16)
	reply, err := c.Complete(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, "Curiosity", reply)
}

func TestOpenAIClientThrottledIsRetryable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":{"message":"slow down","type":"rate_limit"}}`))
	}))
	defer srv.Close()

	_, err := NewOpenAIClient("k", "m", srv.URL+"/v1", 16).Complete(context.Background(), "x")
	require.Error(t, err)
	assert.True(t, retry.Retryable(err))
}

type scriptedProvider struct {
	replies []string
	errs    []error
	calls   int
}

func (p *scriptedProvider) Model() string { return "scripted" }

func (p *scriptedProvider) Complete(context.Context, string) (string, error) {
	i := p.calls
	p.calls++
	if i < len(p.errs) && p.errs[i] != nil {
		return "", p.errs[i]
	}
	if i < len(p.replies) {
		return p.replies[i], nil
	}
	return "", errors.New("no scripted reply")
}

type memCache struct {
	labels map[string]string
	models map[string]string
}

func newMemCache() *memCache {
	return &memCache{labels: map[string]string{}, models: map[string]string{}}
}

func (m *memCache) ReadClassification(adj string) (string, bool, error) {
	l, ok := m.labels[adj]
	return l, ok, nil
}

func (m *memCache) WriteClassification(adj, emotion, model string) error {
	m.labels[adj] = emotion
	m.models[adj] = model
	return nil
}

func instantRetry(max int) *retry.Executor {
	return retry.New(retry.Policy{MaxRetries: max, BaseDelay: time.Millisecond}, nil,
		retry.WithSleep(func(context.Context, time.Duration) error { return nil }),
		retry.WithJitter(func(time.Duration) time.Duration { return 0 }))
}

func TestCachedClassifyRemembers(t *testing.T) {
	p := &scriptedProvider{replies: []string{"Joy"}}
	cache := newMemCache()
	c := NewCached(p, cache, instantRetry(3), nil)

	label, err := c.Classify(context.Background(), " Cheerful ")
	require.NoError(t, err)
	assert.Equal(t, "Joy", label)

	label, err = c.Classify(context.Background(), "cheerful")
	require.NoError(t, err)
	assert.Equal(t, "Joy", label)
	assert.Equal(t, 1, p.calls)
	assert.Equal(t, "Joy", cache.labels["cheerful"])
	assert.Equal(t, "scripted", cache.models["cheerful"])
}

func TestCachedClassifyReadsPersistentCache(t *testing.T) {
	p := &scriptedProvider{}
	cache := newMemCache()
	cache.labels["gloomy"] = "Sadness"

	label, err := NewCached(p, cache, instantRetry(3), nil).Classify(context.Background(), "gloomy")
	require.NoError(t, err)
	assert.Equal(t, "Sadness", label)
	assert.Zero(t, p.calls)
}

func TestCachedClassifyRetriesThrottling(t *testing.T) {
	p := &scriptedProvider{
		errs:    []error{&retry.StatusError{StatusCode: 429}, &retry.StatusError{StatusCode: 503}},
		replies: []string{"", "", "Peace"},
	}
	label, err := NewCached(p, nil, instantRetry(5), nil).Classify(context.Background(), "serene")
	require.NoError(t, err)
	assert.Equal(t, "Peace", label)
	assert.Equal(t, 3, p.calls)
}

func TestCachedClassifyUnparseableReplyIsNotRetried(t *testing.T) {
	p := &scriptedProvider{replies: []string{"Delight", "Joy"}}
	cache := newMemCache()
	_, err := NewCached(p, cache, instantRetry(5), nil).Classify(context.Background(), "nice")
	assert.ErrorIs(t, err, ErrUnknownEmotion)
	assert.Equal(t, 1, p.calls)
	assert.Empty(t, cache.labels)
}

func TestCachedClassifyEmpty(t *testing.T) {
	_, err := NewCached(&scriptedProvider{}, nil, nil, nil).Classify(context.Background(), "  ")
	assert.Error(t, err)
}
