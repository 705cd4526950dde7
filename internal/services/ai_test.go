package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type chatRequest struct {
	Model    string `json:"model"`
	Messages []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
}

func completionServer(t *testing.T, status int, body string, seen *chatRequest) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		if seen != nil {
			assert.NoError(t, json.NewDecoder(r.Body).Decode(seen))
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func completionBody(content string) string {
	raw, _ := json.Marshal(map[string]any{
		"id":      "chatcmpl-1",
		"object":  "chat.completion",
		"created": 1,
		"model":   "test-model",
		"choices": []map[string]any{{
			"index":         0,
			"message":       map[string]string{"role": "assistant", "content": content},
			"finish_reason": "stop",
		}},
	})
	return string(raw)
}

func TestAIServiceGenerate(t *testing.T) {
	var seen chatRequest
	srv := completionServer(t, http.StatusOK, completionBody("# Lesson\nPlants make sugar."), &seen)

	ai := NewAIService("test-key", "test-model", srv.URL+"/v1/", time.Second)
	got, err := ai.Generate(context.Background(), "explain photosynthesis")
	require.NoError(t, err)

	assert.Equal(t, "# Lesson\nPlants make sugar.", got)
	assert.Equal(t, "test-model", seen.Model)
	require.Len(t, seen.Messages, 1)
	assert.Equal(t, "user", seen.Messages[0].Role)
	assert.Equal(t, "explain photosynthesis", seen.Messages[0].Content)
}

func TestAIServiceFailures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"server error", http.StatusInternalServerError, `{"error":{"message":"boom","type":"server_error"}}`},
		{"unauthorized", http.StatusUnauthorized, `{"error":{"message":"bad key","type":"invalid_request_error"}}`},
		{"no choices", http.StatusOK, `{"id":"x","object":"chat.completion","choices":[]}`},
		{"empty content", http.StatusOK, completionBody("  ")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := completionServer(t, tt.status, tt.body, nil)
			ai := NewAIService("test-key", "test-model", srv.URL+"/v1", time.Second)

			_, err := ai.Generate(context.Background(), "prompt")
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrGenerationFailed)
		})
	}
}

func TestAIServiceWithoutKey(t *testing.T) {
	ai := NewAIService("", "test-model", "", 0)

	_, err := ai.Generate(context.Background(), "prompt")
	assert.ErrorIs(t, err, ErrGenerationFailed)
	assert.ErrorIs(t, err, ErrAIUnavailable)
	assert.Equal(t, "test-model", ai.Model())
}

func TestAIServiceTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(srv.Close)
	t.Cleanup(func() { close(release) })

	ai := NewAIService("test-key", "test-model", srv.URL+"/v1", 50*time.Millisecond)
	_, err := ai.Generate(context.Background(), "prompt")
	assert.ErrorIs(t, err, ErrGenerationFailed)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
