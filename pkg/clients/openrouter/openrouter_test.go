package openrouter

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComplete_OpenRouter(t *testing.T) {
	var got chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		assert.Equal(t, appTitle, r.Header.Get("X-Title"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"{\"text\":\"ok\"}"}}]}`))
	}))
	defer srv.Close()

	c := NewClient(" sk-test ", "", WithURL(srv.URL))
	reply, err := c.Complete(context.Background(), []Message{{Role: "user", Content: "oi"}})
	require.NoError(t, err)

	assert.Equal(t, `{"text":"ok"}`, reply)
	assert.Equal(t, DefaultModel, got.Model)
	assert.Equal(t, 0.3, got.Temperature)
	assert.Equal(t, 1000, got.MaxTokens)
	require.Len(t, got.Messages, 1)
	assert.Equal(t, "oi", got.Messages[0].Content)
}

func TestComplete_Local(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"model":"x","message":{"role":"assistant","content":"olá"},"done":true}`))
	}))
	defer srv.Close()

	c := NewClient("LOCAL", "", WithURL(srv.URL))
	reply, err := c.Complete(context.Background(), []Message{{Role: "user", Content: "oi"}})
	require.NoError(t, err)
	assert.Equal(t, "olá", reply)
	assert.Equal(t, DefaultLocalModel, c.(*chatClient).model)
}

func TestComplete_Errors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Path == "/empty" {
			_, _ = w.Write([]byte(`{"choices":[]}`))
			return
		}
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"invalid key","code":401}}`))
	}))
	defer srv.Close()

	_, err := NewClient("bad", "m", WithURL(srv.URL)).Complete(context.Background(), nil)
	assert.ErrorContains(t, err, "invalid key")

	_, err = NewClient("key", "m", WithURL(srv.URL+"/empty")).Complete(context.Background(), nil)
	assert.ErrorIs(t, err, ErrEmptyReply)
}

func TestComplete_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewClient("key", "m", WithURL("http://127.0.0.1:0"), WithRateLimit(1)).Complete(ctx, nil)
	assert.Error(t, err)
}
