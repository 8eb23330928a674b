// ABOUTME: Tests for the summarizer against a fake chat completions server.
// ABOUTME: Verifies prompt, model, auth header and error handling.
package summarize

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

type chatRequest struct {
	Model    string `json:"model"`
	Messages []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
}

func fakeServer(t *testing.T, status int, reply string, seen *chatRequest, auth *string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
			http.NotFound(w, r)
			return
		}
		if auth != nil {
			*auth = r.Header.Get("Authorization")
		}
		if seen != nil {
			_ = json.NewDecoder(r.Body).Decode(seen)
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if status != http.StatusOK {
			_, _ = w.Write([]byte(`{"error":{"message":"upstream unavailable","type":"server_error"}}`))
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":      "chatcmpl-1",
			"object":  "chat.completion",
			"created": 1700000000,
			"model":   "llama-3.3-70b-versatile",
			"choices": []map[string]any{{
				"index":         0,
				"finish_reason": "stop",
				"message":       map[string]any{"role": "assistant", "content": reply},
			}},
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestSummarize(t *testing.T) {
	var req chatRequest
	var auth string
	srv := fakeServer(t, http.StatusOK, "  Your blood sugar is normal.  ", &req, &auth)

	c, err := New(Config{APIKey: "test-key", BaseURL: srv.URL + "/v1"})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	got, err := c.Summarize(context.Background(), "Glucose 90 mg/dL")
	if err != nil {
		t.Fatalf("Summarize failed: %v", err)
	}
	if got != "Your blood sugar is normal." {
		t.Errorf("summary = %q", got)
	}

	if req.Model != DefaultModel {
		t.Errorf("model = %q, want %q", req.Model, DefaultModel)
	}
	if len(req.Messages) != 1 || req.Messages[0].Role != "user" {
		t.Fatalf("messages = %+v", req.Messages)
	}
	want := "Summarize the following medical report in plain language for a patient:\n\nGlucose 90 mg/dL"
	if req.Messages[0].Content != want {
		t.Errorf("prompt = %q, want %q", req.Messages[0].Content, want)
	}
	if auth != "Bearer test-key" {
		t.Errorf("Authorization = %q", auth)
	}
}

func TestSummarizeServerError(t *testing.T) {
	srv := fakeServer(t, http.StatusInternalServerError, "", nil, nil)

	c, err := New(Config{APIKey: "k", BaseURL: srv.URL + "/v1"})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if _, err := c.Summarize(context.Background(), "CRP 4 mg/L"); err == nil {
		t.Error("expected error from 500 response")
	}
}

func TestSummarizeEmptyText(t *testing.T) {
	c, err := New(Config{APIKey: "k", BaseURL: "http://127.0.0.1:0/v1"})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if _, err := c.Summarize(context.Background(), " \n "); !errors.Is(err, ErrEmptyText) {
		t.Errorf("error = %v, want ErrEmptyText", err)
	}
}

func TestNewRequiresAPIKey(t *testing.T) {
	if _, err := New(Config{}); !errors.Is(err, ErrNoAPIKey) {
		t.Errorf("error = %v, want ErrNoAPIKey", err)
	}
}

func TestPromptTruncates(t *testing.T) {
	p := Prompt("  abcdef  ", 3)
	if !strings.HasSuffix(p, "\n\nabc") {
		t.Errorf("Prompt = %q", p)
	}
	if !strings.HasPrefix(p, "Summarize the following medical report") {
		t.Errorf("Prompt = %q", p)
	}
}
