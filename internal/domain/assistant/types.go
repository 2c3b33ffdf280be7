package assistant

import (
	"krishisahay/internal/domain/language"
)

// 回答来源（provenance）标签。生成式后端以自身 Name() 作为标签。
const (
	SourceCache     = "cache"
	SourceRetrieval = "retrieval"
	SourceMock      = "mock"
)

// Query 一次提问。接收后不可变。
type Query struct {
	Text     string
	Language language.Code // 声明的语言提示：具体语言码 | mixed | auto
	Region   string
	Season   string
	Lat      *float64
	Lon      *float64
}

// AnswerResult 最终回答：文本、可选分类、来源标签与解析后的语言。
// 写回缓存时只持久化 answer/category，provenance 不入库。
type AnswerResult struct {
	Answer   string        `json:"answer"`
	Category string        `json:"category,omitempty"`
	Source   string        `json:"source"`
	Language language.Code `json:"language"`
}
