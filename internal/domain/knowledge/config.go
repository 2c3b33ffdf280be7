package knowledge

// Config 知识库模块配置。
type Config struct {
	// 索引文件（由 cmd/indexer 离线生成，进程启动时只读加载）
	IndexPath string `json:"index_path"`

	// 检索配置
	DefaultTopK int `json:"default_top_k"`

	// Embedding
	EmbeddingProvider       string `json:"embedding_provider"` // openai | ollama
	EmbeddingBaseURL        string `json:"embedding_base_url,omitempty"`
	EmbeddingAPIKey         string `json:"embedding_api_key,omitempty"`
	EmbeddingModel          string `json:"embedding_model,omitempty"`
	EmbeddingDims           int    `json:"embedding_dims,omitempty"`
	EmbeddingTimeoutSeconds int    `json:"embedding_timeout_seconds,omitempty"`
}

// DefaultConfig 默认配置。
func DefaultConfig() *Config {
	return &Config{
		IndexPath:               "data/knowledge_index.json",
		DefaultTopK:             3,
		EmbeddingProvider:       "ollama",
		EmbeddingModel:          "nomic-embed-text",
		EmbeddingDims:           768,
		EmbeddingTimeoutSeconds: 60,
	}
}

// HasEmbedding 是否配置了 Embedding 能力。
func (c *Config) HasEmbedding() bool {
	return c.EmbeddingProvider != "" && c.EmbeddingModel != ""
}
