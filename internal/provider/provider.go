package provider

import (
	"context"
	"errors"
)

// ErrUnavailable 表示后端当前无法给出回答：未配置、所有候选模型
// 均调用失败、或返回了空响应。编排器据此继续 fallback 链。
var ErrUnavailable = errors.New("generative backend unavailable")

// GenerateRequest 生成请求。
type GenerateRequest struct {
	Prompt            string  `json:"prompt"`
	SystemInstruction string  `json:"system_instruction,omitempty"`
	Temperature       float64 `json:"temperature,omitempty"`
	MaxOutputTokens   int     `json:"max_output_tokens,omitempty"`
}

// Backend 生成式后端的统一能力：给定 prompt + system instruction，
// 返回文本或 ErrUnavailable。模型名级别的重试是后端内部行为。
type Backend interface {
	// Name 返回后端名称（同时用作回答的 provenance 标签）
	Name() string

	// Available 后端是否已配置（不保证网络可达）
	Available() bool

	// Generate 生成回答文本。不可用时返回 ErrUnavailable，
	// 其它错误同样视为本后端无回答。
	Generate(ctx context.Context, req *GenerateRequest) (string, error)
}
