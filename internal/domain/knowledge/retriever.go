package knowledge

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	applog "krishisahay/internal/platform/log"
)

// Retriever 知识检索引擎：embedding + 最近邻搜索 + 回答合成。
// Query 在此边界内吞掉一切内部错误，永远返回一个可用的 Answer。
type Retriever struct {
	config   *Config
	embedder Embedder // 可选
	index    *Index   // nil = 未加载
}

// NewRetriever 创建检索引擎。
func NewRetriever(config *Config) *Retriever {
	if config == nil {
		config = DefaultConfig()
	}
	return &Retriever{config: config}
}

// SetEmbedder 设置查询 Embedder。
func (r *Retriever) SetEmbedder(e Embedder) {
	r.embedder = e
}

// SetIndex 注入已加载的索引。
func (r *Retriever) SetIndex(idx *Index) {
	r.index = idx
}

// LoadIndex 从磁盘加载索引。失败不致命，检索退化为 mock 路径。
func (r *Retriever) LoadIndex(path string) error {
	idx, err := LoadIndex(path)
	if err != nil {
		return err
	}
	r.index = idx
	return nil
}

// IndexLoaded 索引是否已就绪。
func (r *Retriever) IndexLoaded() bool {
	return r.index != nil
}

// IndexSize 已加载索引的文档数，未加载时为 0。
func (r *Retriever) IndexSize() int {
	if r.index == nil {
		return 0
	}
	return r.index.Size()
}

// Query 检索并合成回答。topK <= 0 时使用配置默认值。
func (r *Retriever) Query(ctx context.Context, text string, topK int) *Answer {
	if topK <= 0 {
		topK = r.config.DefaultTopK
	}

	if r.index == nil || r.embedder == nil {
		return r.fallbackAnswer(text)
	}

	matches, err := r.Search(ctx, text, topK)
	if err != nil || len(matches) == 0 {
		applog.Warn("[Knowledge] Search failed, using fallback answer", "error", err)
		return r.fallbackAnswer(text)
	}

	sources := make([]string, 0, len(matches))
	for _, m := range matches {
		if m.Document.Title != "" {
			sources = append(sources, m.Document.Title)
		}
	}

	return &Answer{
		Answer:   formatAnswer(text, matches[0].Document.Content),
		Category: detectCategory(text),
		Sources:  sources,
	}
}

// Search 将查询文本 embed 后对全部语料计算平方欧氏距离，返回
// 距离升序的前 topK 条。距离相同时保持语料原始顺序（稳定排序）。
func (r *Retriever) Search(ctx context.Context, text string, topK int) ([]Match, error) {
	if r.index == nil {
		return nil, fmt.Errorf("index not loaded")
	}
	if r.embedder == nil {
		return nil, fmt.Errorf("no embedder configured")
	}

	start := time.Now()

	vectors, err := r.embedder.Embed(ctx, []string{text})
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	query := vectors[0]

	matches := make([]Match, len(r.index.Documents))
	for i, doc := range r.index.Documents {
		matches[i] = Match{
			Document: doc,
			Distance: squaredEuclidean(query, r.index.Vectors[i]),
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Distance < matches[j].Distance
	})

	if topK > len(matches) {
		topK = len(matches)
	}
	matches = matches[:topK]

	applog.Debug("[Knowledge] Search",
		"query", text,
		"top_k", topK,
		"corpus", r.index.Size(),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return matches, nil
}

// squaredEuclidean 平方欧氏距离。维度不一致时多出的分量按 0 处理。
func squaredEuclidean(a, b []float32) float64 {
	n := len(a)
	if len(b) > n {
		n = len(b)
	}
	var sum float64
	for i := 0; i < n; i++ {
		var x, y float64
		if i < len(a) {
			x = float64(a[i])
		}
		if i < len(b) {
			y = float64(b[i])
		}
		d := x - y
		sum += d * d
	}
	return sum
}

// formatAnswer 把最相关文档的内容整理为简短的逐行建议。
// 取前 10 个非空行，若内容没有以模板引导词开头则补上。
func formatAnswer(query, content string) string {
	lines := strings.Split(content, "\n")
	formatted := make([]string, 0, 10)
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		formatted = append(formatted, line)
		if len(formatted) == 10 {
			break
		}
	}

	answer := strings.Join(formatted, "\n")
	if !strings.HasPrefix(answer, "To") {
		answer = fmt.Sprintf("To address your question about '%s':\n\n%s", query, answer)
	}
	return answer
}

// ── 分类与 mock 路径 ──────────────────────────────────────────

const categoryGeneral = "General Agriculture"

// categoryRule 有序分类规则：首个命中的分类生效。
type categoryRule struct {
	Name     string
	Keywords []string
}

var categoryRules = []categoryRule{
	{"Crops & Cultivation", []string{"plant", "crop", "cultivate", "sow", "harvest", "rice", "wheat", "cotton"}},
	{"Pest Management", []string{"pest", "insect", "disease", "control", "aphid", "borer"}},
	{"Fertilizers", []string{"fertilizer", "npk", "urea", "nutrient", "manure"}},
	{"Government Schemes", []string{"scheme", "pm-kisan", "insurance", "credit", "subsidy"}},
}

// detectCategory 按关键词表给查询分类。
func detectCategory(query string) string {
	lower := strings.ToLower(query)
	for _, rule := range categoryRules {
		for _, kw := range rule.Keywords {
			if strings.Contains(lower, kw) {
				return rule.Name
			}
		}
	}
	return categoryGeneral
}

// fallbackResponses 索引不可用时的关键词应答表。
var fallbackResponses = []struct {
	Keyword string
	Answer  string
}{
	{"rice", "Rice cultivation requires well-drained soil with pH 5-6.5. Plant during monsoon season (June-July). Use 20-25 kg seeds per hectare. Apply NPK fertilizer (100:50:50 kg/ha) in split doses. Maintain 5-7 cm water depth during growth."},
	{"pest", "For pest control, use integrated pest management (IPM). Identify pests early. Use neem-based organic pesticides as first line of defense. Rotate crops to break pest cycles. Maintain field hygiene."},
	{"fertilizer", "Apply fertilizers based on soil test results. For most crops, NPK ratio of 4:2:1 works well. Apply nitrogen in split doses - 50% at sowing, 25% at tillering, 25% at flowering. Use organic compost to improve soil health."},
	{"wheat", "Wheat grows best in loamy soil with pH 6-7.5. Sow in November-December. Use 100-125 kg seeds per hectare. Apply 120 kg N, 60 kg P2O5, 40 kg K2O per hectare. Harvest when grains are hard and moisture is 20-25%."},
}

// fallbackAnswer 索引未加载或检索失败时的退化回答。
func (r *Retriever) fallbackAnswer(query string) *Answer {
	lower := strings.ToLower(query)
	for _, fb := range fallbackResponses {
		if strings.Contains(lower, fb.Keyword) {
			return &Answer{
				Answer:   fb.Answer,
				Category: detectCategory(query),
			}
		}
	}
	return &Answer{
		Answer:   fmt.Sprintf("Thank you for your question about '%s'. For detailed agricultural advice, please consult your local agricultural extension officer or visit the nearest Krishi Vigyan Kendra (KVK). They can provide region-specific guidance based on your soil type and climate conditions.", query),
		Category: categoryGeneral,
	}
}
