package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(
		Config{BaseURL: server.URL, Model: "llama3.2"},
		WithSleeper(func(time.Duration) {}),
	)
}

func TestGenerateReturnsResponse(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		var req generateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.Stream {
			t.Error("expected stream=false")
		}
		json.NewEncoder(w).Encode(generateResponse{Response: "hello", Done: true})
	})

	got, err := client.Generate(context.Background(), "", "say hello", false)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if got != "hello" {
		t.Fatalf("response = %q", got)
	}
}

func TestGenerateRetriesServerErrors(t *testing.T) {
	var calls int
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls < 3 {
			http.Error(w, "overloaded", http.StatusInternalServerError)
			return
		}
		json.NewEncoder(w).Encode(generateResponse{Response: "ok", Done: true})
	})

	got, err := client.Generate(context.Background(), "", "prompt", false)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if got != "ok" || calls != 3 {
		t.Fatalf("response = %q after %d calls", got, calls)
	}
}

func TestGenerateDoesNotRetryClientErrors(t *testing.T) {
	var calls int
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		http.Error(w, "bad model", http.StatusBadRequest)
	})

	if _, err := client.Generate(context.Background(), "", "prompt", false); err == nil {
		t.Fatal("expected error")
	}
	if calls != 1 {
		t.Fatalf("made %d calls, want 1", calls)
	}
}

func TestHealthCheck(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/tags" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Write([]byte(`{"models":[{"name":"llama3.2:latest"}]}`))
	})
	if err := client.HealthCheck(context.Background()); err != nil {
		t.Fatalf("HealthCheck failed: %v", err)
	}
}

func TestHealthCheckMissingModel(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"models":[{"name":"qwen2:latest"}]}`))
	})
	if err := client.HealthCheck(context.Background()); err == nil {
		t.Fatal("expected error for missing model")
	}
}

func TestRewriteNarration(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(generateResponse{
			Response: "```json\n{\"text\":\"short and punchy\"}\n```",
			Done:     true,
		})
	})
	got, err := client.RewriteNarration(context.Background(), "long rambling narration")
	if err != nil {
		t.Fatalf("RewriteNarration failed: %v", err)
	}
	if got != "short and punchy" {
		t.Fatalf("rewritten = %q", got)
	}
}

func TestGenerateDiagramsClampsWindows(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		payload := `{"diagrams":[
			{"mermaid":"graph TD; A-->B","start":-0.5,"end":0.4},
			{"mermaid":"graph TD; C-->D","start":0.9,"end":0.2},
			{"mermaid":"","start":0.1,"end":0.3}
		]}`
		json.NewEncoder(w).Encode(generateResponse{Response: payload, Done: true})
	})
	diagrams, err := client.GenerateDiagrams(context.Background(), "how tcp works")
	if err != nil {
		t.Fatalf("GenerateDiagrams failed: %v", err)
	}
	if len(diagrams) != 1 {
		t.Fatalf("kept %d diagrams, want 1", len(diagrams))
	}
	if diagrams[0].Start != 0 || diagrams[0].End != 0.4 {
		t.Fatalf("unexpected window: %#v", diagrams[0])
	}
}

func TestDecodeModelJSONQuirks(t *testing.T) {
	var target struct {
		OK bool `json:"ok"`
	}
	cases := []string{
		`{"ok":true}`,
		"```json\n{\"ok\":true}\n```",
		"Sure, here you go: {\"ok\":true}",
	}
	for _, content := range cases {
		target.OK = false
		if err := DecodeModelJSON(content, &target); err != nil {
			t.Fatalf("DecodeModelJSON(%q) failed: %v", content, err)
		}
		if !target.OK {
			t.Fatalf("DecodeModelJSON(%q) lost payload", content)
		}
	}
	if err := DecodeModelJSON("no json here", &target); err == nil {
		t.Fatal("expected error for non-JSON payload")
	}
}
