package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	applog "krishisahay/internal/platform/log"
	"krishisahay/internal/provider"
)

// Config OpenAI 兼容 API 配置。
type Config struct {
	APIKey                string
	BaseURL               string // 默认 https://api.openai.com/v1
	Model                 string // 默认 gpt-4o-mini
	ConnectTimeoutSeconds int
}

// Backend OpenAI 兼容生成式后端（云端 B）。
// 支持所有 OpenAI API 兼容服务（OpenAI, Azure, DeepSeek 等）。
type Backend struct {
	config Config
	models []string
	client *http.Client
}

// New 创建 OpenAI 后端。
func New(config Config) *Backend {
	if config.BaseURL == "" {
		config.BaseURL = "https://api.openai.com/v1"
	}
	config.BaseURL = strings.TrimRight(config.BaseURL, "/")

	connectTimeout := time.Duration(config.ConnectTimeoutSeconds) * time.Second
	if connectTimeout <= 0 {
		connectTimeout = 30 * time.Second
	}

	// Go 默认 Transport 的 TLS 握手超时为 10s，弱网下容易触发
	// handshake timeout。请求生命周期仍由 ctx 控制。
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.DialContext = (&net.Dialer{
		Timeout:   connectTimeout,
		KeepAlive: 30 * time.Second,
	}).DialContext
	transport.TLSHandshakeTimeout = connectTimeout

	models := []string{"gpt-4o-mini"}
	if m := strings.TrimSpace(config.Model); m != "" && m != "gpt-4o-mini" {
		models = []string{m, "gpt-4o-mini"}
	}

	return &Backend{
		config: config,
		models: models,
		client: &http.Client{Transport: transport},
	}
}

func (b *Backend) Name() string {
	return "openai"
}

// Available 是否已配置。
func (b *Backend) Available() bool {
	return b.config.APIKey != ""
}

// ── 内部 API 请求/响应结构 ──

type apiRequest struct {
	Model       string       `json:"model"`
	Messages    []apiMessage `json:"messages"`
	Temperature *float64     `json:"temperature,omitempty"`
	MaxTokens   *int         `json:"max_tokens,omitempty"`
}

type apiMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type apiResponse struct {
	Choices []apiChoice `json:"choices"`
}

type apiChoice struct {
	Message      apiMessage `json:"message"`
	FinishReason string     `json:"finish_reason"`
}

// Generate 调用 /chat/completions，依次尝试候选模型。
func (b *Backend) Generate(ctx context.Context, req *provider.GenerateRequest) (string, error) {
	if b.config.APIKey == "" {
		return "", provider.ErrUnavailable
	}

	var lastErr error
	for _, model := range b.models {
		if ctx.Err() != nil {
			break
		}

		text, err := b.complete(ctx, model, req)
		if err != nil {
			lastErr = err
			continue
		}
		if text != "" {
			return text, nil
		}
	}

	if lastErr != nil {
		applog.Warn("[Backend/OpenAI] All candidate models failed", "error", lastErr)
	}
	return "", provider.ErrUnavailable
}

func (b *Backend) complete(ctx context.Context, model string, req *provider.GenerateRequest) (string, error) {
	messages := make([]apiMessage, 0, 2)
	if req.SystemInstruction != "" {
		messages = append(messages, apiMessage{Role: "system", Content: req.SystemInstruction})
	}
	messages = append(messages, apiMessage{Role: "user", Content: req.Prompt})

	apiReq := apiRequest{
		Model:    model,
		Messages: messages,
	}
	if req.Temperature > 0 {
		t := req.Temperature
		apiReq.Temperature = &t
	}
	if req.MaxOutputTokens > 0 {
		m := req.MaxOutputTokens
		apiReq.MaxTokens = &m
	}

	body, err := json.Marshal(apiReq)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", b.config.BaseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+b.config.APIKey)

	resp, err := b.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(respBody))
	}

	var apiResp apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if len(apiResp.Choices) == 0 {
		return "", fmt.Errorf("no choices in response")
	}

	return strings.TrimSpace(apiResp.Choices[0].Message.Content), nil
}
