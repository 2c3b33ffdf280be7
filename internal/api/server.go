package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"krishisahay/internal/domain/assistant"
	"krishisahay/internal/domain/knowledge"
	applog "krishisahay/internal/platform/log"
	"krishisahay/internal/provider"
)

const serviceVersion = "1.0.0"

// ServerConfig 服务配置
type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	JWTSecret    string // 可选：设置后管理端点要求 Bearer token
	JWTIssuer    string
}

// DefaultServerConfig 默认配置
func DefaultServerConfig() *ServerConfig {
	return &ServerConfig{
		Host:         "0.0.0.0",
		Port:         8001,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 2 * time.Minute,
	}
}

// Server HTTP 服务器
type Server struct {
	config       *ServerConfig
	orchestrator *assistant.Orchestrator
	store        assistant.Store
	backends     []provider.Backend
	retriever    *knowledge.Retriever
	httpSrv      *http.Server
}

// NewServer 创建服务器。backends/retriever 仅供健康检查汇报状态，
// 回答路径全部经 orchestrator。
func NewServer(config *ServerConfig, orch *assistant.Orchestrator, store assistant.Store) *Server {
	if config == nil {
		config = DefaultServerConfig()
	}
	return &Server{
		config:       config,
		orchestrator: orch,
		store:        store,
	}
}

// SetHealthProbes 注入健康检查所需的组件视图
func (s *Server) SetHealthProbes(backends []provider.Backend, retriever *knowledge.Retriever) {
	s.backends = backends
	s.retriever = retriever
}

// Start 启动服务器
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	s.httpSrv = &http.Server{
		Addr:         addr,
		Handler:      s.buildRouter(),
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}

	applog.Infof("🌾 KrishiSahay API server starting on %s", addr)
	return s.httpSrv.ListenAndServe()
}

// Stop 优雅停机
func (s *Server) Stop(ctx context.Context) error {
	if s.httpSrv != nil {
		return s.httpSrv.Shutdown(ctx)
	}
	return nil
}

// Handler 返回 HTTP Handler（用于测试）
func (s *Server) Handler() http.Handler {
	return s.buildRouter()
}

func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(corsMiddleware)

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{
			"status":  "ok",
			"service": "KrishiSahay API",
			"version": serviceVersion,
		})
	})

	askHandler := NewAskHandler(s.orchestrator)
	feedbackHandler := NewFeedbackHandler(s.store)
	healthHandler := NewHealthHandler(s.store, s.backends, s.retriever)

	r.Post("/ask", askHandler.Ask)
	r.Post("/feedback", feedbackHandler.SubmitFeedback)
	r.Post("/app-feedback", feedbackHandler.SubmitAppFeedback)
	r.Get("/health", healthHandler.Health)

	// 管理端只读接口：配置了密钥则要求 Bearer token
	r.Group(func(r chi.Router) {
		if s.config.JWTSecret != "" {
			r.Use(authMiddleware(&JWTConfig{Secret: s.config.JWTSecret, Issuer: s.config.JWTIssuer}))
		}
		r.Get("/app-feedback", feedbackHandler.RecentAppFeedback)
	})

	return r
}

// corsMiddleware CORS 中间件
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
