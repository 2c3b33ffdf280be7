package assistant

import (
	"context"
	"strings"
	"testing"
	"time"

	"krishisahay/internal/domain/knowledge"
	"krishisahay/internal/domain/language"
	"krishisahay/internal/provider"
)

type fakeBackend struct {
	name      string
	available bool
	answer    string
	err       error
	calls     int
	lastReq   *provider.GenerateRequest
}

func (b *fakeBackend) Name() string    { return b.name }
func (b *fakeBackend) Available() bool { return b.available }

func (b *fakeBackend) Generate(_ context.Context, req *provider.GenerateRequest) (string, error) {
	b.calls++
	b.lastReq = req
	if b.err != nil {
		return "", b.err
	}
	return b.answer, nil
}

type fakeKnowledge struct {
	loaded bool
	answer *knowledge.Answer
	calls  int
}

func (k *fakeKnowledge) IndexLoaded() bool { return k.loaded }

func (k *fakeKnowledge) Query(_ context.Context, _ string, _ int) *knowledge.Answer {
	k.calls++
	return k.answer
}

type memStore struct {
	entries  map[string]*CacheEntry
	feedback []FeedbackRecord
	appFb    []AppFeedbackRecord
	getErr   error
	putErr   error
}

func newMemStore() *memStore {
	return &memStore{entries: map[string]*CacheEntry{}}
}

func (s *memStore) GetCachedResponse(_ context.Context, queryLower, lang string) (*CacheEntry, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	entry, ok := s.entries[queryLower+"|"+lang]
	if !ok {
		return nil, nil
	}
	return entry, nil
}

func (s *memStore) CacheResponse(_ context.Context, entry *CacheEntry) error {
	if s.putErr != nil {
		return s.putErr
	}
	key := entry.QueryLower + "|" + entry.Language
	stored := *entry
	stored.HitCount = 1
	if old, ok := s.entries[key]; ok {
		stored.HitCount = old.HitCount + 1
	}
	s.entries[key] = &stored
	return nil
}

func (s *memStore) SaveFeedback(_ context.Context, rec *FeedbackRecord) error {
	s.feedback = append(s.feedback, *rec)
	return nil
}

func (s *memStore) SaveAppFeedback(_ context.Context, rec *AppFeedbackRecord) error {
	s.appFb = append(s.appFb, *rec)
	return nil
}

func (s *memStore) RecentAppFeedback(_ context.Context, limit int) ([]AppFeedbackRecord, error) {
	if limit > len(s.appFb) {
		limit = len(s.appFb)
	}
	out := make([]AppFeedbackRecord, 0, limit)
	for i := len(s.appFb) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, s.appFb[i])
	}
	return out, nil
}

func (s *memStore) Connected(context.Context) bool { return true }
func (s *memStore) Name() string                   { return "memory" }
func (s *memStore) Close() error                   { return nil }

func newTestOrchestrator(store Store, ks KnowledgeSource, backends ...provider.Backend) *Orchestrator {
	var cache *ResponseCache
	if store != nil {
		cache = NewResponseCache(store)
	}
	return NewOrchestrator(language.NewRouter(), cache, backends, ks, OrchestratorConfig{
		AskTimeout: 5 * time.Second,
		TopK:       3,
	})
}

func TestAskBackendPriority(t *testing.T) {
	first := &fakeBackend{name: "gemini", available: true, answer: "gemini says"}
	second := &fakeBackend{name: "openai", available: true, answer: "openai says"}

	o := newTestOrchestrator(newMemStore(), nil, first, second)
	res := o.Ask(context.Background(), &Query{Text: "how to grow rice", Language: language.Auto})

	if res.Source != "gemini" {
		t.Fatalf("source = %q, want gemini", res.Source)
	}
	if res.Answer != "gemini says" {
		t.Fatalf("answer = %q", res.Answer)
	}
	if res.Category != "AI Assistant" {
		t.Fatalf("category = %q", res.Category)
	}
	if second.calls != 0 {
		t.Fatalf("secondary backend called %d times, want 0", second.calls)
	}
}

func TestAskFallbackChain(t *testing.T) {
	tests := []struct {
		name       string
		first      *fakeBackend
		second     *fakeBackend
		wantSource string
	}{
		{
			name:       "first unavailable",
			first:      &fakeBackend{name: "gemini", available: false},
			second:     &fakeBackend{name: "openai", available: true, answer: "from openai"},
			wantSource: "openai",
		},
		{
			name:       "first errors",
			first:      &fakeBackend{name: "gemini", available: true, err: provider.ErrUnavailable},
			second:     &fakeBackend{name: "openai", available: true, answer: "from openai"},
			wantSource: "openai",
		},
		{
			name:       "first returns empty",
			first:      &fakeBackend{name: "gemini", available: true, answer: "   "},
			second:     &fakeBackend{name: "openai", available: true, answer: "from openai"},
			wantSource: "openai",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			o := newTestOrchestrator(newMemStore(), nil, tc.first, tc.second)
			res := o.Ask(context.Background(), &Query{Text: "wheat sowing time", Language: language.Auto})
			if res.Source != tc.wantSource {
				t.Fatalf("source = %q, want %q", res.Source, tc.wantSource)
			}
		})
	}
}

func TestAskRetrievalFallback(t *testing.T) {
	backend := &fakeBackend{name: "gemini", available: false}
	ks := &fakeKnowledge{
		loaded: true,
		answer: &knowledge.Answer{Answer: "retrieved advice", Category: "Crops & Cultivation"},
	}

	o := newTestOrchestrator(newMemStore(), ks, backend)
	res := o.Ask(context.Background(), &Query{Text: "paddy irrigation", Language: language.Auto})

	if res.Source != SourceRetrieval {
		t.Fatalf("source = %q, want %q", res.Source, SourceRetrieval)
	}
	if res.Answer != "retrieved advice" {
		t.Fatalf("answer = %q", res.Answer)
	}
	if ks.calls != 1 {
		t.Fatalf("knowledge queried %d times, want 1", ks.calls)
	}
}

func TestAskFullDegradation(t *testing.T) {
	backend := &fakeBackend{name: "gemini", available: true, err: provider.ErrUnavailable}
	ks := &fakeKnowledge{loaded: false}

	o := newTestOrchestrator(newMemStore(), ks, backend)
	res := o.Ask(context.Background(), &Query{Text: "anything at all", Language: language.Auto})

	if res.Source != SourceMock {
		t.Fatalf("source = %q, want %q", res.Source, SourceMock)
	}
	if res.Answer == "" {
		t.Fatal("answer is empty")
	}
	if ks.calls != 0 {
		t.Fatalf("unloaded index queried %d times, want 0", ks.calls)
	}
}

func TestAskCacheHitSkipsBackends(t *testing.T) {
	store := newMemStore()
	backend := &fakeBackend{name: "gemini", available: true, answer: "fresh answer"}
	o := newTestOrchestrator(store, nil, backend)

	first := o.Ask(context.Background(), &Query{Text: "Rice Water Depth", Language: language.Auto})
	if first.Source != "gemini" {
		t.Fatalf("first source = %q, want gemini", first.Source)
	}

	// 大小写与空白只影响键规范化，不影响命中
	second := o.Ask(context.Background(), &Query{Text: "  rice water depth  ", Language: language.Auto})
	if second.Source != SourceCache {
		t.Fatalf("second source = %q, want %q", second.Source, SourceCache)
	}
	if second.Answer != first.Answer {
		t.Fatalf("cached answer = %q, want %q", second.Answer, first.Answer)
	}
	if backend.calls != 1 {
		t.Fatalf("backend called %d times, want 1", backend.calls)
	}
}

func TestAskStoreFailureDegradesToMiss(t *testing.T) {
	store := newMemStore()
	store.getErr = context.DeadlineExceeded
	store.putErr = context.DeadlineExceeded
	backend := &fakeBackend{name: "gemini", available: true, answer: "fresh answer"}

	o := newTestOrchestrator(store, nil, backend)
	res := o.Ask(context.Background(), &Query{Text: "rice", Language: language.Auto})

	if res.Source != "gemini" {
		t.Fatalf("source = %q, want gemini", res.Source)
	}
}

func TestAskMixedLanguageInstruction(t *testing.T) {
	backend := &fakeBackend{name: "gemini", available: true, answer: "mixed reply"}
	o := newTestOrchestrator(newMemStore(), nil, backend)

	res := o.Ask(context.Background(), &Query{Text: "ela cheyali please", Language: language.Auto})

	if res.Language != language.Mixed {
		t.Fatalf("language = %q, want mixed", res.Language)
	}
	if backend.lastReq == nil {
		t.Fatal("backend never called")
	}
	if !strings.Contains(backend.lastReq.SystemInstruction, "MIXED LANGUAGE") {
		t.Fatalf("system instruction missing mixed clause: %q", backend.lastReq.SystemInstruction)
	}
	// mixed 查询必须原样传给模型
	if backend.lastReq.Prompt != "ela cheyali please" {
		t.Fatalf("prompt = %q", backend.lastReq.Prompt)
	}
}

func TestAskRegionSeasonInContext(t *testing.T) {
	backend := &fakeBackend{name: "gemini", available: true, answer: "ok"}
	o := newTestOrchestrator(newMemStore(), nil, backend)

	lat, lon := 17.38501, 78.48667
	o.Ask(context.Background(), &Query{
		Text:     "cotton pest control",
		Language: language.Auto,
		Region:   "Telangana",
		Season:   "Kharif (monsoon)",
		Lat:      &lat,
		Lon:      &lon,
	})

	instr := backend.lastReq.SystemInstruction
	for _, want := range []string{
		"Region: Telangana",
		"Current season in India: Kharif (monsoon)",
		"Approximate location: 17.39, 78.49",
		"Primary local language: te",
	} {
		if !strings.Contains(instr, want) {
			t.Fatalf("system instruction missing %q: %q", want, instr)
		}
	}
}

func TestResponseCachePutTwice(t *testing.T) {
	store := newMemStore()
	cache := NewResponseCache(store)
	ctx := context.Background()

	cache.Put(ctx, "How to grow rice", language.English, "first answer", "Crops & Cultivation")
	cache.Put(ctx, "how to grow rice  ", language.English, "second answer", "Crops & Cultivation")

	entry := store.entries["how to grow rice|en"]
	if entry == nil {
		t.Fatal("entry not stored")
	}
	if entry.HitCount != 2 {
		t.Fatalf("hit_count after two puts = %d, want 2", entry.HitCount)
	}
	if entry.Answer != "second answer" {
		t.Fatalf("answer = %q, want last write", entry.Answer)
	}

	res, ok := cache.Get(ctx, "HOW TO GROW RICE", language.English)
	if !ok || res.Answer != "second answer" {
		t.Fatalf("get = (%v, %v), want second answer hit", res, ok)
	}
	if store.entries["how to grow rice|en"].HitCount != 2 {
		t.Fatal("get mutated hit_count")
	}
}

func TestAskNoDependenciesStillAnswers(t *testing.T) {
	o := newTestOrchestrator(nil, nil)
	res := o.Ask(context.Background(), &Query{Text: "fertilizer dose for maize", Language: language.Auto})

	if res.Source != SourceMock {
		t.Fatalf("source = %q, want %q", res.Source, SourceMock)
	}
	if res.Category != "Fertilizers" {
		t.Fatalf("category = %q, want Fertilizers", res.Category)
	}
}

func TestMockAnswerTable(t *testing.T) {
	tests := []struct {
		query        string
		wantCategory string
	}{
		{"how to grow rice", "Crops & Cultivation"},
		{"Wheat sowing", "Crops & Cultivation"},
		{"pest attack on cotton", "Pest Management"},
		{"which fertilizer", "Fertilizers"},
		{"completely unrelated", "General Agriculture"},
	}
	for _, tc := range tests {
		answer, category := MockAnswer(tc.query)
		if category != tc.wantCategory {
			t.Errorf("MockAnswer(%q) category = %q, want %q", tc.query, category, tc.wantCategory)
		}
		if answer == "" {
			t.Errorf("MockAnswer(%q) returned empty answer", tc.query)
		}
	}
	answer, _ := MockAnswer("unknown topic")
	if !strings.Contains(answer, "Krishi Vigyan Kendra") {
		t.Errorf("default answer missing KVK pointer: %q", answer)
	}
}
