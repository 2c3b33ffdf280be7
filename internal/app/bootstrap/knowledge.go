package bootstrap

import (
	"krishisahay/internal/domain/knowledge"
	applog "krishisahay/internal/platform/log"
)

// BuildRetriever 组装知识检索器并加载离线索引。索引缺失不致命，
// 检索器以未加载状态运行，编排器会跳过检索阶段。
func BuildRetriever(cfg *knowledge.Config) *knowledge.Retriever {
	retriever := knowledge.NewRetriever(cfg)

	if cfg.HasEmbedding() {
		retriever.SetEmbedder(BuildEmbedder(cfg))
		applog.Infof("✅ Knowledge embedder initialized (provider: %s, model: %s)",
			cfg.EmbeddingProvider, cfg.EmbeddingModel)
	}

	if err := retriever.LoadIndex(cfg.IndexPath); err != nil {
		applog.Warnf("⚠️  Knowledge index not loaded (retrieval disabled): %v", err)
	} else {
		applog.Infof("✅ Knowledge index loaded (path: %s, documents: %d)",
			cfg.IndexPath, retriever.IndexSize())
	}
	return retriever
}

// BuildEmbedder 按配置选择 Embedding 实现。
func BuildEmbedder(cfg *knowledge.Config) knowledge.Embedder {
	if cfg.EmbeddingProvider == "openai" {
		return knowledge.NewOpenAIEmbedder(knowledge.OpenAIEmbedderConfig{
			BaseURL:        cfg.EmbeddingBaseURL,
			APIKey:         cfg.EmbeddingAPIKey,
			Model:          cfg.EmbeddingModel,
			Dims:           cfg.EmbeddingDims,
			TimeoutSeconds: cfg.EmbeddingTimeoutSeconds,
		})
	}
	return knowledge.NewOllamaEmbedder(knowledge.OllamaEmbedderConfig{
		BaseURL:        cfg.EmbeddingBaseURL,
		Model:          cfg.EmbeddingModel,
		Dims:           cfg.EmbeddingDims,
		TimeoutSeconds: cfg.EmbeddingTimeoutSeconds,
	})
}
