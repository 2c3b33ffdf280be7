package gemini

import (
	"context"
	"strings"

	"google.golang.org/genai"

	applog "krishisahay/internal/platform/log"
	"krishisahay/internal/provider"
)

// Config Gemini 后端配置。
type Config struct {
	APIKey string
	Model  string // 首选模型，为空用 gemini-flash-latest
}

// fallbackModels 首选模型失败后的候选序列。
var fallbackModels = []string{"gemini-2.0-flash", "gemini-1.5-flash", "gemini-flash-latest"}

// Backend Google Gemini 生成式后端（云端 A，优先级最高）。
type Backend struct {
	client *genai.Client
	models []string
}

// New 创建 Gemini 后端。未配置 API key 时返回不可用实例，
// 调用方无需区分。
func New(cfg Config) *Backend {
	b := &Backend{models: candidateModels(cfg.Model)}
	if strings.TrimSpace(cfg.APIKey) == "" {
		return b
	}

	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		applog.Warn("[Backend/Gemini] Client init failed", "error", err)
		return b
	}
	b.client = client
	return b
}

func (b *Backend) Name() string {
	return "gemini"
}

// Available 是否已配置。
func (b *Backend) Available() bool {
	return b.client != nil
}

// Generate 依次尝试候选模型，首个非空响应即返回。
// 全部失败时返回 ErrUnavailable，从不向上抛出网络错误。
func (b *Backend) Generate(ctx context.Context, req *provider.GenerateRequest) (string, error) {
	if b.client == nil {
		return "", provider.ErrUnavailable
	}

	genCfg := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(float32(req.Temperature)),
		MaxOutputTokens: int32(req.MaxOutputTokens),
	}
	if req.SystemInstruction != "" {
		genCfg.SystemInstruction = genai.NewContentFromText(req.SystemInstruction, genai.RoleUser)
	}

	var lastErr error
	for _, model := range b.models {
		if ctx.Err() != nil {
			break
		}

		resp, err := b.client.Models.GenerateContent(ctx, model, genai.Text(req.Prompt), genCfg)
		if err != nil {
			lastErr = err
			continue
		}
		if text := strings.TrimSpace(resp.Text()); text != "" {
			return text, nil
		}
	}

	if lastErr != nil {
		applog.Warn("[Backend/Gemini] All candidate models failed", "error", lastErr)
	}
	return "", provider.ErrUnavailable
}

// candidateModels 把首选模型与默认候选合并去重。
func candidateModels(primary string) []string {
	models := make([]string, 0, 1+len(fallbackModels))
	seen := make(map[string]bool)
	if primary = strings.TrimSpace(primary); primary != "" {
		models = append(models, primary)
		seen[primary] = true
	}
	for _, m := range fallbackModels {
		if !seen[m] {
			models = append(models, m)
			seen[m] = true
		}
	}
	return models
}
