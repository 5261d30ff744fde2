package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestComplete(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("Authorization = %q", got)
		}

		var body struct {
			Model       string    `json:"model"`
			Messages    []Message `json:"messages"`
			Temperature float64   `json:"temperature"`
			Stream      bool      `json:"stream"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if body.Model != "gpt-4.1-mini" {
			t.Errorf("model = %q", body.Model)
		}
		if body.Temperature != 0.35 {
			t.Errorf("temperature = %v", body.Temperature)
		}
		if body.Stream {
			t.Error("stream should be false")
		}
		if len(body.Messages) != 2 || body.Messages[0].Role != "system" {
			t.Errorf("messages = %+v", body.Messages)
		}

		w.Write([]byte(`{
			"choices":[{"message":{"content":"Fit score: 72/100"}}],
			"usage":{"prompt_tokens":100,"completion_tokens":20,"total_tokens":120}
		}`))
	}))
	defer srv.Close()

	c := NewClient("test-key", 5*time.Second)
	c.BaseURL = srv.URL

	text, usage, err := c.Complete(context.Background(), "gpt-4.1-mini", []Message{
		{Role: "system", Content: "You are a sharp, realistic sales strategist."},
		{Role: "user", Content: "Analyze this Instagram lead"},
	}, 0.35)
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}

	if text != "Fit score: 72/100" {
		t.Errorf("text = %q", text)
	}
	if usage.TotalTokens != 120 || usage.PromptTokens != 100 || usage.CompletionTokens != 20 {
		t.Errorf("usage = %+v", usage)
	}
}

func TestComplete_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":{"message":"rate limited"}}`))
	}))
	defer srv.Close()

	c := NewClient("test-key", 5*time.Second)
	c.BaseURL = srv.URL

	_, _, err := c.Complete(context.Background(), "gpt-4.1-mini", nil, 0.35)
	if err == nil {
		t.Fatal("Complete should fail on a non-200 status")
	}
}

func TestComplete_NoChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	c := NewClient("test-key", 5*time.Second)
	c.BaseURL = srv.URL

	_, _, err := c.Complete(context.Background(), "gpt-4.1-mini", nil, 0.35)
	if err == nil {
		t.Fatal("Complete should fail with no choices")
	}
}
