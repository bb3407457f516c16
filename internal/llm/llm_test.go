package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type chatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature *float64  `json:"temperature"`
	MaxTokens   int       `json:"max_tokens"`
}

func writeCompletion(w http.ResponseWriter, content string) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"id":     "chatcmpl-1",
		"object": "chat.completion",
		"model":  "test",
		"choices": []map[string]any{{
			"index":         0,
			"message":       map[string]string{"role": "assistant", "content": content},
			"finish_reason": "stop",
		}},
	})
}

func writeError(w http.ResponseWriter, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]any{"message": "boom", "type": "server_error"},
	})
}

func newTestClient(t *testing.T, provider, url string) *OpenAI {
	t.Helper()
	c, err := New(Config{
		Provider:  provider,
		BaseURL:   url + "/v1",
		APIKey:    "test-key",
		RetryWait: time.Millisecond,
	})
	require.NoError(t, err)
	return c
}

func TestNew_InvalidProvider(t *testing.T) {
	_, err := New(Config{Provider: "nope"})
	require.ErrorIs(t, err, ErrInvalidProvider)
	assert.Contains(t, err.Error(), "invalid model provider")
}

func TestNew_RequiresAPIKey(t *testing.T) {
	for _, p := range []string{"grok", "hf", "openai"} {
		_, err := New(Config{Provider: p})
		assert.Error(t, err, p)
		assert.True(t, RequiresAPIKey(p))
	}

	c, err := New(Config{Provider: "ollama"})
	require.NoError(t, err)
	assert.Equal(t, "llama3.1", c.Model())
	assert.False(t, RequiresAPIKey("ollama"))
}

func TestNew_Presets(t *testing.T) {
	c, err := New(Config{Provider: "grok", APIKey: "k"})
	require.NoError(t, err)
	assert.Equal(t, "grok-4-1-fast-non-reasoning", c.Model())
	assert.Equal(t, "https://api.x.ai/v1", c.config.BaseURL)
	assert.Equal(t, 0, c.config.MaxTokens)

	c, err = New(Config{Provider: "hf", APIKey: "k"})
	require.NoError(t, err)
	assert.Equal(t, 700, c.config.MaxTokens)

	c, err = New(Config{Provider: "openai", APIKey: "k", Model: "custom"})
	require.NoError(t, err)
	assert.Equal(t, "custom", c.Model())
}

func TestChat(t *testing.T) {
	var got chatRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		writeCompletion(w, "  {\"SSW\": {}}\n")
	}))
	defer server.Close()

	c := newTestClient(t, "grok", server.URL)
	reply, err := c.Chat(context.Background(), []Message{
		{Role: RoleSystem, Content: "sys"},
		{Role: RoleUser, Content: "user"},
	})
	require.NoError(t, err)

	assert.Equal(t, `{"SSW": {}}`, reply)
	assert.Equal(t, "grok-4-1-fast-non-reasoning", got.Model)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, "system", got.Messages[0].Role)
	assert.Equal(t, "user", got.Messages[1].Content)
	require.NotNil(t, got.Temperature, "temperature must be sent")
	assert.Less(t, *got.Temperature, 1e-6)
	assert.Equal(t, 0, got.MaxTokens)
}

func TestChat_MaxTokens(t *testing.T) {
	var got chatRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		writeCompletion(w, "{}")
	}))
	defer server.Close()

	c := newTestClient(t, "hf", server.URL)
	_, err := c.Chat(context.Background(), []Message{{Role: RoleUser, Content: "x"}})
	require.NoError(t, err)
	assert.Equal(t, 700, got.MaxTokens)
}

func TestChat_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			writeError(w, http.StatusInternalServerError)
			return
		}
		writeCompletion(w, "ok")
	}))
	defer server.Close()

	c := newTestClient(t, "openai", server.URL)
	reply, err := c.Chat(context.Background(), []Message{{Role: RoleUser, Content: "x"}})
	require.NoError(t, err)
	assert.Equal(t, "ok", reply)
	assert.Equal(t, int32(2), calls.Load())
}

func TestChat_DoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		writeError(w, http.StatusUnauthorized)
	}))
	defer server.Close()

	c := newTestClient(t, "openai", server.URL)
	_, err := c.Chat(context.Background(), []Message{{Role: RoleUser, Content: "x"}})
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestChat_EmptyChoices(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"x","object":"chat.completion","choices":[]}`))
	}))
	defer server.Close()

	c := newTestClient(t, "openai", server.URL)
	_, err := c.Chat(context.Background(), []Message{{Role: RoleUser, Content: "x"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty chat response")
	assert.Equal(t, int32(3), calls.Load())
}

func TestChat_ContextCanceled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusServiceUnavailable)
	}))
	defer server.Close()

	c, err := New(Config{Provider: "openai", BaseURL: server.URL + "/v1", APIKey: "k", RetryWait: time.Hour})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err = c.Chat(ctx, []Message{{Role: RoleUser, Content: "x"}})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
