package service_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"storyteller-server/internal/config"
	"storyteller-server/internal/service"
)

func newOllamaTestClient(t *testing.T, baseURL string) service.AIClient {
	t.Helper()
	client, err := service.NewAIClient(&config.Config{
		AIClientType: "ollama",
		AIBaseURL:    baseURL,
		AIModel:      "test-model",
		AITimeout:    5 * time.Second,
	}, zap.NewNop())
	require.NoError(t, err)
	return client
}

func TestOllamaGenerate_Success(t *testing.T) {
	var gotModel, gotPrompt string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/generate", r.URL.Path)

		var req struct {
			Model  string `json:"model"`
			Prompt string `json:"prompt"`
			Stream *bool  `json:"stream"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		gotModel = req.Model
		gotPrompt = req.Prompt
		require.NotNil(t, req.Stream)
		require.False(t, *req.Stream)

		json.NewEncoder(w).Encode(map[string]any{
			"model":    req.Model,
			"response": "Once upon a time.",
			"done":     true,
		})
	}))
	defer srv.Close()

	client := newOllamaTestClient(t, srv.URL)
	text, err := client.Generate(context.Background(), "tell me a story")
	require.NoError(t, err)
	assert.Equal(t, "Once upon a time.", text)
	assert.Equal(t, "test-model", gotModel)
	assert.Equal(t, "tell me a story", gotPrompt)
}

func TestOllamaGenerate_TrimsV1Suffix(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Базовый URL с /v1 должен быть приведён к нативному пути Ollama
		require.Equal(t, "/api/generate", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]any{"response": "ok", "done": true})
	}))
	defer srv.Close()

	client := newOllamaTestClient(t, srv.URL+"/v1")
	text, err := client.Generate(context.Background(), "hi")
	require.NoError(t, err)
	assert.Equal(t, "ok", text)
}

func TestOllamaGenerate_EmptyResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"response": "   ", "done": true})
	}))
	defer srv.Close()

	client := newOllamaTestClient(t, srv.URL)
	_, err := client.Generate(context.Background(), "hi")
	assert.ErrorIs(t, err, service.ErrAIEmptyResponse)
}

func TestOllamaGenerate_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("{}\n"))
	}))
	defer srv.Close()

	client := newOllamaTestClient(t, srv.URL)
	_, err := client.Generate(context.Background(), "hi")
	assert.ErrorIs(t, err, service.ErrAIGenerationFailed)
}

func TestOllamaGenerate_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // порт закрыт, соединение обрывается на транспорте

	client := newOllamaTestClient(t, srv.URL)
	_, err := client.Generate(context.Background(), "hi")
	assert.ErrorIs(t, err, service.ErrAIUnavailable)
}

func TestNewAIClient_UnknownType(t *testing.T) {
	_, err := service.NewAIClient(&config.Config{AIClientType: "bard"}, zap.NewNop())
	assert.Error(t, err)
}

func TestOpenAIGenerate_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/chat/completions", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]any{
			"id":     "chatcmpl-1",
			"object": "chat.completion",
			"model":  "test-model",
			"choices": []map[string]any{
				{
					"index":         0,
					"message":       map[string]any{"role": "assistant", "content": "A gentle tale."},
					"finish_reason": "stop",
				},
			},
		})
	}))
	defer srv.Close()

	client, err := service.NewAIClient(&config.Config{
		AIClientType: "openai",
		AIBaseURL:    srv.URL,
		AIModel:      "test-model",
		AIAPIKey:     "test-key",
		AITimeout:    5 * time.Second,
	}, zap.NewNop())
	require.NoError(t, err)

	text, err := client.Generate(context.Background(), "hi")
	require.NoError(t, err)
	assert.Equal(t, "A gentle tale.", text)
}
