package openai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"krishisahay/internal/provider"
)

func TestGenerateNotConfigured(t *testing.T) {
	b := New(Config{})
	if b.Available() {
		t.Fatal("backend without API key reports available")
	}
	_, err := b.Generate(context.Background(), &provider.GenerateRequest{Prompt: "hi"})
	if !errors.Is(err, provider.ErrUnavailable) {
		t.Fatalf("err = %v, want ErrUnavailable", err)
	}
}

func TestGenerateModelRetry(t *testing.T) {
	var requestedModels []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req apiRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		requestedModels = append(requestedModels, req.Model)

		// 首选模型失败，候选模型成功
		if req.Model == "custom-model" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		json.NewEncoder(w).Encode(apiResponse{
			Choices: []apiChoice{{Message: apiMessage{Role: "assistant", Content: "  answer text  "}}},
		})
	}))
	defer srv.Close()

	b := New(Config{APIKey: "k", BaseURL: srv.URL, Model: "custom-model"})

	text, err := b.Generate(context.Background(), &provider.GenerateRequest{
		Prompt:            "question",
		SystemInstruction: "persona",
		Temperature:       0.3,
		MaxOutputTokens:   512,
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if text != "answer text" {
		t.Fatalf("text = %q", text)
	}
	if len(requestedModels) != 2 || requestedModels[0] != "custom-model" || requestedModels[1] != "gpt-4o-mini" {
		t.Fatalf("models tried = %v", requestedModels)
	}
}

func TestGenerateAllModelsFail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	b := New(Config{APIKey: "k", BaseURL: srv.URL})
	_, err := b.Generate(context.Background(), &provider.GenerateRequest{Prompt: "q"})
	if !errors.Is(err, provider.ErrUnavailable) {
		t.Fatalf("err = %v, want ErrUnavailable", err)
	}
}

func TestGenerateSendsSystemMessage(t *testing.T) {
	var got apiRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&got)
		json.NewEncoder(w).Encode(apiResponse{
			Choices: []apiChoice{{Message: apiMessage{Content: "ok"}}},
		})
	}))
	defer srv.Close()

	b := New(Config{APIKey: "k", BaseURL: srv.URL})
	if _, err := b.Generate(context.Background(), &provider.GenerateRequest{
		Prompt:            "user question",
		SystemInstruction: "you are helpful",
	}); err != nil {
		t.Fatalf("Generate: %v", err)
	}

	if len(got.Messages) != 2 {
		t.Fatalf("messages = %v", got.Messages)
	}
	if got.Messages[0].Role != "system" || got.Messages[0].Content != "you are helpful" {
		t.Fatalf("system message = %v", got.Messages[0])
	}
	if got.Messages[1].Role != "user" || got.Messages[1].Content != "user question" {
		t.Fatalf("user message = %v", got.Messages[1])
	}
}
