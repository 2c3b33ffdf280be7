package assistant

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"krishisahay/internal/domain/knowledge"
	"krishisahay/internal/domain/language"
	applog "krishisahay/internal/platform/log"
	"krishisahay/internal/provider"
)

const persona = "You are KrishiSahay, an agricultural assistant for Indian farmers. "

// KnowledgeSource 检索兜底的能力视图，*knowledge.Retriever 满足之。
type KnowledgeSource interface {
	IndexLoaded() bool
	Query(ctx context.Context, text string, topK int) *knowledge.Answer
}

// OrchestratorConfig 编排器参数。
type OrchestratorConfig struct {
	// AskTimeout 单次提问的整体期限，覆盖整条 fallback 链。
	AskTimeout time.Duration
	// TopK 检索兜底的近邻数量。
	TopK int
}

// Orchestrator 回答解析流水线：语言解析 -> 缓存 -> 生成式后端链 ->
// 知识检索 -> 静态兜底。任何阶段失败都降级到下一阶段，Ask 永不失败。
type Orchestrator struct {
	router    *language.Router
	cache     *ResponseCache
	backends  []provider.Backend
	knowledge KnowledgeSource
	cfg       OrchestratorConfig
	now       func() time.Time
}

// NewOrchestrator 组装编排器。backends 按调用优先级排列；
// cache 与 knowledge 可为 nil（对应阶段直接跳过）。
func NewOrchestrator(router *language.Router, cache *ResponseCache, backends []provider.Backend, ks KnowledgeSource, cfg OrchestratorConfig) *Orchestrator {
	if cfg.TopK <= 0 {
		cfg.TopK = 3
	}
	return &Orchestrator{
		router:    router,
		cache:     cache,
		backends:  backends,
		knowledge: ks,
		cfg:       cfg,
		now:       time.Now,
	}
}

// Ask 解析一次提问并返回带 provenance 的回答。
func (o *Orchestrator) Ask(ctx context.Context, q *Query) *AnswerResult {
	lang := o.router.Resolve(q.Language, q.Text)

	if o.cache != nil {
		if res, ok := o.cache.Get(ctx, q.Text, lang); ok {
			res.Language = lang
			return res
		}
	}

	actx := ctx
	if o.cfg.AskTimeout > 0 {
		var cancel context.CancelFunc
		actx, cancel = context.WithTimeout(ctx, o.cfg.AskTimeout)
		defer cancel()
	}

	// mixed 原样传给模型，具体语言先转英文（当前为直通占位）
	queryForModel := q.Text
	if lang != language.Mixed && lang != language.English {
		queryForModel = Translate(q.Text, lang, language.English)
	}

	promptCtx := BuildContextPrompt(q.Region, q.Season, q.Lat, q.Lon, o.now())
	// 英文提问但给出了地区时，把当地主要语言写进上下文（不影响语言解析结果）
	if lang == language.English && q.Region != "" {
		if rl := RegionLanguage(q.Region); rl != language.English {
			promptCtx += ". Primary local language: " + string(rl)
		}
	}

	res := o.generate(actx, queryForModel, promptCtx, lang)
	if res == nil {
		res = o.retrieve(actx, queryForModel, promptCtx, lang)
	}
	if res == nil {
		answer, category := MockAnswer(queryForModel)
		res = &AnswerResult{Answer: answer, Category: category, Source: SourceMock}
	}
	res.Language = lang

	// 生成式后端已按语言要求作答，其余来源需回翻
	if lang != language.English && lang != language.Mixed && !isBackendSource(res.Source) {
		res.Answer = Translate(res.Answer, language.English, lang)
	}

	if o.cache != nil {
		o.cache.Put(ctx, q.Text, lang, res.Answer, res.Category)
	}
	return res
}

// generate 依次尝试生成式后端，返回首个非空回答。
func (o *Orchestrator) generate(ctx context.Context, query, promptCtx string, lang language.Code) *AnswerResult {
	if len(o.backends) == 0 {
		return nil
	}
	req := &provider.GenerateRequest{
		Prompt:            query,
		SystemInstruction: systemInstruction(lang, promptCtx),
		Temperature:       0.3,
		MaxOutputTokens:   512,
	}
	for _, b := range o.backends {
		if !b.Available() {
			continue
		}
		text, err := b.Generate(ctx, req)
		if err != nil {
			if !errors.Is(err, provider.ErrUnavailable) {
				applog.Warn("generative backend failed", "backend", b.Name(), "error", err)
			}
			if ctx.Err() != nil {
				return nil
			}
			continue
		}
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		applog.Debug("answer generated", "backend", b.Name(), "language", string(lang))
		return &AnswerResult{Answer: text, Category: "AI Assistant", Source: b.Name()}
	}
	return nil
}

// retrieve 知识检索兜底。索引未加载时直接放行到静态兜底。
func (o *Orchestrator) retrieve(ctx context.Context, query, promptCtx string, lang language.Code) *AnswerResult {
	if o.knowledge == nil || !o.knowledge.IndexLoaded() {
		return nil
	}
	var ragQuery string
	switch {
	case lang == language.Mixed:
		ragQuery = fmt.Sprintf("User question (mixed language): %s. Context: %s. Provide answer in the same language mix.", query, promptCtx)
	case promptCtx != "":
		ragQuery = fmt.Sprintf("%s. Context: %s", query, promptCtx)
	default:
		ragQuery = query
	}
	ans := o.knowledge.Query(ctx, ragQuery, o.cfg.TopK)
	if ans == nil || strings.TrimSpace(ans.Answer) == "" {
		return nil
	}
	return &AnswerResult{Answer: ans.Answer, Category: ans.Category, Source: SourceRetrieval}
}

func systemInstruction(lang language.Code, promptCtx string) string {
	var b strings.Builder
	b.WriteString(persona)
	b.WriteString(language.InstructionClause(lang))
	b.WriteString(" Context: ")
	b.WriteString(promptCtx)
	b.WriteString(" Give concise, practical agricultural advice.")
	return b.String()
}

func isBackendSource(source string) bool {
	switch source {
	case SourceCache, SourceRetrieval, SourceMock:
		return false
	}
	return true
}
