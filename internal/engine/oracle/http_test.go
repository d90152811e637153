package oracle

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"blueprints/internal/core/errors"
)

func TestExtractCode(t *testing.T) {
	fenced := "Here you go:\n```python\nx = 1\n```\nDone."
	if got := ExtractCode(fenced); got != "x = 1\n" {
		t.Errorf("fenced extraction = %q", got)
	}

	plain := "x = 1"
	if got := ExtractCode(plain); got != "x = 1\n" {
		t.Errorf("plain extraction = %q", got)
	}
}

func TestHTTPClient_Generate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req generateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("bad request body: %v", err)
		}
		if req.Model != "test-model" {
			t.Errorf("model = %q", req.Model)
		}
		if !strings.Contains(req.Prompt, "make it so") {
			t.Errorf("prompt = %q", req.Prompt)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(generateResponse{Text: "```\nresult = 42\n```"})
	}))
	defer srv.Close()

	client := NewHTTPClient(Options{
		Endpoint: srv.URL,
		Model:    "test-model",
		Timeout:  5 * time.Second,
	})

	source, err := client.Generate(context.Background(), "make it so")
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	if source != "result = 42\n" {
		t.Errorf("source = %q", source)
	}
}

func TestHTTPClient_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "overloaded", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	client := NewHTTPClient(Options{Endpoint: srv.URL, Timeout: 5 * time.Second})
	_, err := client.Generate(context.Background(), "prompt")
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.IsCode(err, errors.CodeOracleError) {
		t.Errorf("expected ORACLE_ERROR, got %v", err)
	}
}

func TestHTTPClient_ErrorBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(generateResponse{Error: "quota exhausted"})
	}))
	defer srv.Close()

	client := NewHTTPClient(Options{Endpoint: srv.URL, Timeout: 5 * time.Second})
	_, err := client.Generate(context.Background(), "prompt")
	if err == nil || !strings.Contains(err.Error(), "quota exhausted") {
		t.Errorf("expected quota error, got %v", err)
	}
}

func TestHTTPClient_Cancellation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Drain the body so the server notices the client going away.
		io.Copy(io.Discard, r.Body)
		<-r.Context().Done()
	}))
	defer srv.Close()

	client := NewHTTPClient(Options{Endpoint: srv.URL, Timeout: 30 * time.Second})
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := client.Generate(ctx, "prompt")
	if err == nil {
		t.Fatal("expected cancellation error")
	}
}

func TestStubClient_NamesModule(t *testing.T) {
	stub := NewStubClient()
	out, err := stub.Generate(context.Background(),
		"## Dependency specification: models.base\n\n# models.base\n...\n\n# api.tasks\nTask endpoints.")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "api.tasks") {
		t.Errorf("stub output = %q", out)
	}
}
