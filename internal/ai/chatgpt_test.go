package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChatGPT_Complete(t *testing.T) {
	var got ChatRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[{"message":{"content":"  Hello there  "}}]}`))
	}))
	defer server.Close()

	c, err := NewChatGPT("secret", WithChatGPTURL(server.URL), WithChatGPTModel("test-model"))
	require.NoError(t, err)

	answer, err := c.Complete(context.Background(), Completion{System: "sys", Prompt: "hi", Temperature: 0.3})
	require.NoError(t, err)
	assert.Equal(t, "Hello there", answer)

	assert.Equal(t, "test-model", got.Model)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, "system", got.Messages[0].Role)
	assert.Equal(t, "hi", got.Messages[1].Content)
	assert.Nil(t, got.ResponseFormat)
}

func TestChatGPT_JSONModeUnwrapsItems(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req ChatRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		if assert.NotNil(t, req.ResponseFormat) {
			assert.Equal(t, "json_object", req.ResponseFormat.Type)
		}
		w.Write([]byte(`{"choices":[{"message":{"content":"{\"items\":[{\"text\":\"q\"}]}"}}]}`))
	}))
	defer server.Close()

	c, err := NewChatGPT("k", WithChatGPTURL(server.URL))
	require.NoError(t, err)

	answer, err := c.Complete(context.Background(), Completion{Prompt: "p", JSON: true})
	require.NoError(t, err)
	assert.JSONEq(t, `[{"text":"q"}]`, answer)
}

func TestChatGPT_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":{"message":"bad key"}}`))
	}))
	defer server.Close()

	c, err := NewChatGPT("k", WithChatGPTURL(server.URL))
	require.NoError(t, err)

	_, err = c.Complete(context.Background(), Completion{Prompt: "p"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad key")
}

func TestNewChatGPT_RequiresKey(t *testing.T) {
	_, err := NewChatGPT("")
	assert.Error(t, err)
}
