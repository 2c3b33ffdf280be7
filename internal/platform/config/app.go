package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"krishisahay/internal/domain/knowledge"
)

// AppConfig 全局配置。启动时统一加载，再按模块提取使用。
type AppConfig struct {
	LogLevel  string           `json:"log_level"`
	LogFormat string           `json:"log_format"`
	Server    ServerConfig     `json:"server"`
	Database  DatabaseConfig   `json:"database"`
	Redis     RedisConfig      `json:"redis"`
	Auth      AuthConfig       `json:"auth"`
	Gemini    GeminiConfig     `json:"gemini"`
	OpenAI    OpenAIConfig     `json:"openai"`
	Ollama    OllamaConfig     `json:"ollama"`
	Knowledge knowledge.Config `json:"knowledge"`
}

type ServerConfig struct {
	Host                string `json:"host"`
	Port                int    `json:"port"`
	ReadTimeoutSeconds  int    `json:"read_timeout_seconds"`
	WriteTimeoutSeconds int    `json:"write_timeout_seconds"`
	AskTimeoutSeconds   int    `json:"ask_timeout_seconds"` // 单请求 fallback 链总超时
}

type DatabaseConfig struct {
	URL                    string `json:"url"`
	MaxOpenConns           int    `json:"max_open_conns"`
	MaxIdleConns           int    `json:"max_idle_conns"`
	ConnMaxLifetimeSeconds int    `json:"conn_max_lifetime_seconds"`
}

type RedisConfig struct {
	URL string `json:"url"`
}

// AuthConfig 管理端鉴权。为空时反馈查询接口保持开放。
type AuthConfig struct {
	AdminJWTSecret string `json:"admin_jwt_secret"`
	JWTIssuer      string `json:"jwt_issuer"`
}

type GeminiConfig struct {
	APIKey string `json:"api_key"`
	Model  string `json:"model"`
}

type OpenAIConfig struct {
	APIKey  string `json:"api_key"`
	BaseURL string `json:"base_url"`
	Model   string `json:"model"`
}

type OllamaConfig struct {
	URL            string `json:"url"`
	Model          string `json:"model"`
	TimeoutSeconds int    `json:"timeout_seconds"`
}

// Default 返回默认配置。
func Default() *AppConfig {
	knowledgeCfg := knowledge.DefaultConfig()
	return &AppConfig{
		LogLevel:  "info",
		LogFormat: "text",
		Server: ServerConfig{
			Host:                "0.0.0.0",
			Port:                8001,
			ReadTimeoutSeconds:  30,
			WriteTimeoutSeconds: 120,
			AskTimeoutSeconds:   90,
		},
		Database: DatabaseConfig{
			MaxOpenConns:           25,
			MaxIdleConns:           5,
			ConnMaxLifetimeSeconds: 300,
		},
		Gemini: GeminiConfig{
			Model: "gemini-flash-latest",
		},
		OpenAI: OpenAIConfig{
			BaseURL: "https://api.openai.com/v1",
			Model:   "gpt-4o-mini",
		},
		Ollama: OllamaConfig{
			URL:            "http://localhost:11434",
			Model:          "llama3.2",
			TimeoutSeconds: 60,
		},
		Knowledge: *knowledgeCfg,
	}
}

// Load 加载全局配置：默认值 -> 配置文件 -> 环境变量。
// 配置文件路径通过 APP_CONFIG_FILE 指定（JSON）。
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		// .env 非必需，忽略错误
	}

	cfg := Default()

	if path := strings.TrimSpace(os.Getenv("APP_CONFIG_FILE")); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	cfg.applyEnv()
	cfg.normalize()

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *AppConfig) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read APP_CONFIG_FILE %q failed: %w", path, err)
	}
	if err := json.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse APP_CONFIG_FILE %q failed: %w", path, err)
	}
	return nil
}

func (c *AppConfig) applyEnv() {
	applyString("LOG_LEVEL", &c.LogLevel)
	applyString("LOG_FORMAT", &c.LogFormat)

	applyString("HOST", &c.Server.Host)
	applyInt("PORT", &c.Server.Port)
	applyInt("SERVER_READ_TIMEOUT", &c.Server.ReadTimeoutSeconds)
	applyInt("SERVER_WRITE_TIMEOUT", &c.Server.WriteTimeoutSeconds)
	applyInt("ASK_TIMEOUT", &c.Server.AskTimeoutSeconds)

	applyString("DATABASE_URL", &c.Database.URL)
	applyInt("DATABASE_MAX_OPEN_CONNS", &c.Database.MaxOpenConns)
	applyInt("DATABASE_MAX_IDLE_CONNS", &c.Database.MaxIdleConns)
	applyInt("DATABASE_CONN_MAX_LIFETIME", &c.Database.ConnMaxLifetimeSeconds)

	applyString("REDIS_URL", &c.Redis.URL)

	applyString("ADMIN_JWT_SECRET", &c.Auth.AdminJWTSecret)
	applyString("JWT_ISSUER", &c.Auth.JWTIssuer)

	applyString("GEMINI_API_KEY", &c.Gemini.APIKey)
	applyString("GEMINI_MODEL", &c.Gemini.Model)

	applyString("OPENAI_API_KEY", &c.OpenAI.APIKey)
	applyString("OPENAI_BASE_URL", &c.OpenAI.BaseURL)
	applyString("OPENAI_MODEL", &c.OpenAI.Model)

	applyString("OLLAMA_URL", &c.Ollama.URL)
	applyString("OLLAMA_MODEL", &c.Ollama.Model)
	applyInt("OLLAMA_TIMEOUT", &c.Ollama.TimeoutSeconds)

	// 知识库环境变量
	applyString("KNOWLEDGE_INDEX_PATH", &c.Knowledge.IndexPath)
	applyInt("KNOWLEDGE_TOP_K", &c.Knowledge.DefaultTopK)
	applyString("KNOWLEDGE_EMBEDDING_PROVIDER", &c.Knowledge.EmbeddingProvider)
	applyString("KNOWLEDGE_EMBEDDING_BASE_URL", &c.Knowledge.EmbeddingBaseURL)
	applyString("KNOWLEDGE_EMBEDDING_API_KEY", &c.Knowledge.EmbeddingAPIKey)
	applyString("KNOWLEDGE_EMBEDDING_MODEL", &c.Knowledge.EmbeddingModel)
	applyInt("KNOWLEDGE_EMBEDDING_DIMS", &c.Knowledge.EmbeddingDims)
	applyInt("KNOWLEDGE_EMBEDDING_TIMEOUT", &c.Knowledge.EmbeddingTimeoutSeconds)
}

func (c *AppConfig) normalize() {
	if c.OpenAI.BaseURL == "" {
		c.OpenAI.BaseURL = "https://api.openai.com/v1"
	}
	if c.Knowledge.EmbeddingBaseURL == "" && c.Knowledge.EmbeddingProvider == "ollama" {
		c.Knowledge.EmbeddingBaseURL = c.Ollama.URL
	}
}

// validate 校验硬性约束。存储与后端均为可选：没有任何一项配置时
// 服务仍须能以 mock 回答启动。
func (c *AppConfig) validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Server.AskTimeoutSeconds <= 0 {
		return fmt.Errorf("ASK_TIMEOUT must be positive")
	}
	return nil
}

func applyString(key string, target *string) {
	if v := os.Getenv(key); v != "" {
		*target = v
	}
}

func applyInt(key string, target *int) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*target = n
		}
	}
}
