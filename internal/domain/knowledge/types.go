package knowledge

// Document 知识库文档。索引构建后不可变，请求期只读。
type Document struct {
	ID       string   `json:"id"`
	Title    string   `json:"title"`
	Content  string   `json:"content"`
	Category string   `json:"category,omitempty"`
	Crop     string   `json:"crop,omitempty"`
	Tags     []string `json:"tags,omitempty"`
}

// Match 单条检索结果：文档与查询向量的平方欧氏距离。
type Match struct {
	Document Document `json:"document"`
	Distance float64  `json:"distance"`
}

// Answer 检索合成的回答。Query 永远能得到一个 Answer，
// 索引未加载时退化为关键词 mock 路径。
type Answer struct {
	Answer   string   `json:"answer"`
	Category string   `json:"category"`
	Sources  []string `json:"sources,omitempty"`
}
