package bootstrap

import (
	"krishisahay/internal/adapter/backend/gemini"
	"krishisahay/internal/adapter/backend/ollama"
	"krishisahay/internal/adapter/backend/openai"
	"krishisahay/internal/platform/config"
	applog "krishisahay/internal/platform/log"
	"krishisahay/internal/provider"
)

// BuildBackends 按固定优先级组装生成式后端：Gemini -> OpenAI -> Ollama。
// 未配置的后端仍会进入链条（自报不可用），编排器统一处理。
func BuildBackends(cfg *config.AppConfig) []provider.Backend {
	geminiBackend := gemini.New(gemini.Config{
		APIKey: cfg.Gemini.APIKey,
		Model:  cfg.Gemini.Model,
	})
	openaiBackend := openai.New(openai.Config{
		APIKey:  cfg.OpenAI.APIKey,
		BaseURL: cfg.OpenAI.BaseURL,
		Model:   cfg.OpenAI.Model,
	})
	ollamaBackend := ollama.New(ollama.Config{
		BaseURL:        cfg.Ollama.URL,
		Model:          cfg.Ollama.Model,
		TimeoutSeconds: cfg.Ollama.TimeoutSeconds,
	})

	backends := []provider.Backend{geminiBackend, openaiBackend, ollamaBackend}
	for _, b := range backends {
		if b.Available() {
			applog.Infof("✅ Generative backend configured: %s", b.Name())
		} else {
			applog.Infof("ℹ️  Generative backend not configured: %s", b.Name())
		}
	}
	return backends
}
