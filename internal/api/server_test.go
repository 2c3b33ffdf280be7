package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"krishisahay/internal/domain/assistant"
	"krishisahay/internal/domain/language"
)

type stubStore struct {
	feedbackCalls    int
	appFeedbackCalls int
	appFb            []assistant.AppFeedbackRecord
}

func (s *stubStore) GetCachedResponse(context.Context, string, string) (*assistant.CacheEntry, error) {
	return nil, nil
}

func (s *stubStore) CacheResponse(context.Context, *assistant.CacheEntry) error { return nil }

func (s *stubStore) SaveFeedback(_ context.Context, _ *assistant.FeedbackRecord) error {
	s.feedbackCalls++
	return nil
}

func (s *stubStore) SaveAppFeedback(_ context.Context, rec *assistant.AppFeedbackRecord) error {
	s.appFeedbackCalls++
	s.appFb = append(s.appFb, *rec)
	return nil
}

func (s *stubStore) RecentAppFeedback(_ context.Context, limit int) ([]assistant.AppFeedbackRecord, error) {
	if limit > len(s.appFb) {
		limit = len(s.appFb)
	}
	return s.appFb[:limit], nil
}

func (s *stubStore) Connected(context.Context) bool { return true }
func (s *stubStore) Name() string                   { return "stub" }
func (s *stubStore) Close() error                   { return nil }

func newTestServer(store assistant.Store) *Server {
	orch := assistant.NewOrchestrator(language.NewRouter(), nil, nil, nil, assistant.OrchestratorConfig{})
	return NewServer(DefaultServerConfig(), orch, store)
}

func TestAskRejectsEmptyQuery(t *testing.T) {
	handler := newTestServer(&stubStore{}).Handler()

	tests := []struct {
		name string
		body string
	}{
		{name: "empty query", body: `{"query": ""}`},
		{name: "whitespace query", body: `{"query": "   "}`},
		{name: "invalid json", body: `{"query": `},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/ask", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			rr := httptest.NewRecorder()

			handler.ServeHTTP(rr, req)

			if rr.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", rr.Code)
			}
		})
	}
}

func TestAskFullDegradationStillSucceeds(t *testing.T) {
	// 无后端、无检索、无存储：仍须 200 + mock 回答
	handler := newTestServer(&stubStore{}).Handler()

	req := httptest.NewRequest(http.MethodPost, "/ask",
		strings.NewReader(`{"query": "how to grow rice", "language": "auto"}`))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	var resp AskResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if resp.Source != "mock" {
		t.Fatalf("source = %q, want mock", resp.Source)
	}
	if resp.Answer == "" {
		t.Fatal("answer is empty")
	}
	if resp.Category != "Crops & Cultivation" {
		t.Fatalf("category = %q", resp.Category)
	}
}

func TestFeedbackValidation(t *testing.T) {
	store := &stubStore{}
	handler := newTestServer(store).Handler()

	tests := []struct {
		name     string
		body     string
		wantCode int
	}{
		{name: "valid positive", body: `{"query":"q","answer":"a","feedback":"positive"}`, wantCode: 200},
		{name: "valid negative", body: `{"query":"q","answer":"a","feedback":"negative"}`, wantCode: 200},
		{name: "unknown verdict", body: `{"query":"q","answer":"a","feedback":"meh"}`, wantCode: 400},
		{name: "missing query", body: `{"answer":"a","feedback":"positive"}`, wantCode: 400},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/feedback", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			rr := httptest.NewRecorder()

			handler.ServeHTTP(rr, req)

			if rr.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d", rr.Code, tt.wantCode)
			}
		})
	}
	if store.feedbackCalls != 2 {
		t.Fatalf("Store.SaveFeedback called %d times, want 2", store.feedbackCalls)
	}
}

func TestAppFeedbackValidationBeforePersistence(t *testing.T) {
	store := &stubStore{}
	handler := newTestServer(store).Handler()

	tests := []struct {
		name string
		body string
	}{
		{name: "empty message", body: `{"message": "  "}`},
		{name: "rating too high", body: `{"message": "great app", "rating": 6}`},
		{name: "rating too low", body: `{"message": "great app", "rating": 0}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/app-feedback", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			rr := httptest.NewRecorder()

			handler.ServeHTTP(rr, req)

			if rr.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", rr.Code)
			}
		})
	}
	if store.appFeedbackCalls != 0 {
		t.Fatalf("Store.SaveAppFeedback called %d times before validation, want 0", store.appFeedbackCalls)
	}

	req := httptest.NewRequest(http.MethodPost, "/app-feedback",
		strings.NewReader(`{"message": "very helpful", "rating": 5, "page": "/ask"}`))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	if store.appFeedbackCalls != 1 {
		t.Fatalf("Store.SaveAppFeedback called %d times, want 1", store.appFeedbackCalls)
	}
}

func TestAppFeedbackListAuthOptional(t *testing.T) {
	store := &stubStore{appFb: []assistant.AppFeedbackRecord{{Message: "hi"}}}

	// 未配置密钥时端点公开
	open := newTestServer(store).Handler()
	req := httptest.NewRequest(http.MethodGet, "/app-feedback", nil)
	rr := httptest.NewRecorder()
	open.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("open status = %d, want 200", rr.Code)
	}

	// 配置密钥后要求 Bearer token
	cfg := DefaultServerConfig()
	cfg.JWTSecret = "test-secret"
	orch := assistant.NewOrchestrator(language.NewRouter(), nil, nil, nil, assistant.OrchestratorConfig{})
	guarded := NewServer(cfg, orch, store).Handler()

	req = httptest.NewRequest(http.MethodGet, "/app-feedback", nil)
	rr = httptest.NewRecorder()
	guarded.ServeHTTP(rr, req)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("no-token status = %d, want 401", rr.Code)
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "admin",
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}

	req = httptest.NewRequest(http.MethodGet, "/app-feedback", nil)
	req.Header.Set("Authorization", "Bearer "+signed)
	rr = httptest.NewRecorder()
	guarded.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("with-token status = %d, want 200", rr.Code)
	}

	// POST 不受守卫影响
	req = httptest.NewRequest(http.MethodPost, "/app-feedback",
		strings.NewReader(`{"message": "anonymous feedback"}`))
	req.Header.Set("Content-Type", "application/json")
	rr = httptest.NewRecorder()
	guarded.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("post status = %d, want 200", rr.Code)
	}
}

func TestHealthReportsStatus(t *testing.T) {
	handler := newTestServer(&stubStore{}).Handler()

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	var body map[string]interface{}
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal health: %v", err)
	}
	if body["status"] != "healthy" {
		t.Fatalf("status field = %v", body["status"])
	}
	if body["rag_index_loaded"] != false {
		t.Fatalf("rag_index_loaded = %v, want false", body["rag_index_loaded"])
	}
	if body["store"] != "stub" {
		t.Fatalf("store = %v", body["store"])
	}
}

func TestRootServiceInfo(t *testing.T) {
	handler := newTestServer(&stubStore{}).Handler()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if body["service"] != "KrishiSahay API" {
		t.Fatalf("service = %q", body["service"])
	}
}
