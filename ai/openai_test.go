package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/spf13/viper"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *OpenAIClient {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	viper.Set("openai.base_url", srv.URL)
	viper.Set("openai.api_key", "test-key")
	viper.Set("openai.chat_model", "test-chat")
	viper.Set("openai.image_model", "test-image")

	return NewOpenAI()
}

func TestChat(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("unexpected auth header %q", got)
		}

		var req chatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("bad request body: %v", err)
		}
		if req.Model != "test-chat" || len(req.Messages) != 1 || req.Messages[0].Role != "user" {
			t.Errorf("unexpected request: %+v", req)
		}

		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"role": "assistant", "content": "  hello  "}},
			},
		})
	})

	got, err := c.Chat(context.Background(), "hi")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "hello" {
		t.Errorf("Chat = %q, want %q", got, "hello")
	}
}

func TestChatUpstreamError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]string{"message": "rate limited"},
		})
	})

	_, err := c.Chat(context.Background(), "hi")
	if !IsUpstream(err) {
		t.Fatalf("expected an upstream error, got %v", err)
	}
}

func TestChatEmptyCompletion(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"choices": []any{}})
	})

	_, err := c.Chat(context.Background(), "hi")
	if !IsUpstream(err) {
		t.Fatalf("empty completion should be an upstream error, got %v", err)
	}
}

func TestGenerateImageURL(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/images/generations" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}

		json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]string{{"url": "https://img.example/x.png"}},
		})
	})

	got, err := c.GenerateImage(context.Background(), "a cat")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "https://img.example/x.png" {
		t.Errorf("GenerateImage = %q", got)
	}
}

func TestGenerateImageB64(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]string{{"b64_json": "aGk="}},
		})
	})

	got, err := c.GenerateImage(context.Background(), "a cat")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "data:image/png;base64,aGk=" {
		t.Errorf("GenerateImage = %q", got)
	}
}
