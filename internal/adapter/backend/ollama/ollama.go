package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	applog "krishisahay/internal/platform/log"
	"krishisahay/internal/provider"
)

// Config 本地 Ollama 后端配置。
type Config struct {
	BaseURL        string // 默认 http://localhost:11434
	Model          string // 默认 llama3.2
	TimeoutSeconds int
}

// Backend 本地 Ollama 生成式后端（离线兜底，优先级最低）。
type Backend struct {
	baseURL string
	model   string
	client  *http.Client
	probe   *http.Client
}

// New 创建 Ollama 后端。
func New(cfg Config) *Backend {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "http://localhost:11434"
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.Model == "" {
		cfg.Model = "llama3.2"
	}
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	return &Backend{
		baseURL: cfg.BaseURL,
		model:   cfg.Model,
		client:  &http.Client{Timeout: timeout},
		// 可用性探测用短超时，避免本地服务未启动时拖慢链路
		probe: &http.Client{Timeout: 3 * time.Second},
	}
}

func (b *Backend) Name() string {
	return "ollama"
}

// Available 探测本地 Ollama 是否在运行（GET /api/tags）。
func (b *Backend) Available() bool {
	resp, err := b.probe.Get(b.baseURL + "/api/tags")
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

type generateRequest struct {
	Model   string          `json:"model"`
	Prompt  string          `json:"prompt"`
	Stream  bool            `json:"stream"`
	Options generateOptions `json:"options"`
}

type generateOptions struct {
	Temperature float64 `json:"temperature"`
	NumPredict  int     `json:"num_predict"`
}

type generateResponse struct {
	Response string `json:"response"`
}

// Generate 调用 /api/generate（非流式）。system instruction 与
// prompt 拼接为单段文本，与 Ollama 的 generate 接口语义一致。
func (b *Backend) Generate(ctx context.Context, req *provider.GenerateRequest) (string, error) {
	if !b.Available() {
		return "", provider.ErrUnavailable
	}

	prompt := req.Prompt
	if req.SystemInstruction != "" {
		prompt = req.SystemInstruction + "\n\n" + req.Prompt
	}

	body, err := json.Marshal(generateRequest{
		Model:  b.model,
		Prompt: prompt,
		Stream: false,
		Options: generateOptions{
			Temperature: req.Temperature,
			NumPredict:  req.MaxOutputTokens,
		},
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", b.baseURL+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := b.client.Do(httpReq)
	if err != nil {
		applog.Warn("[Backend/Ollama] Generate failed", "error", err)
		return "", provider.ErrUnavailable
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		applog.Warn("[Backend/Ollama] Unexpected status", "status", resp.StatusCode)
		return "", provider.ErrUnavailable
	}

	var genResp generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&genResp); err != nil {
		return "", provider.ErrUnavailable
	}

	text := strings.TrimSpace(genResp.Response)
	if text == "" {
		return "", provider.ErrUnavailable
	}
	return text, nil
}
