package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	"krishisahay/internal/api"
	"krishisahay/internal/app/bootstrap"
	"krishisahay/internal/domain/assistant"
	"krishisahay/internal/domain/language"
	"krishisahay/internal/platform/config"
	applog "krishisahay/internal/platform/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ Config load failed: %v\n", err)
		os.Exit(1)
	}

	applog.Init(applog.Config{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
	})

	ctx := context.Background()

	store := bootstrap.SelectStore(ctx, cfg)
	defer store.Close()

	backends := bootstrap.BuildBackends(cfg)
	retriever := bootstrap.BuildRetriever(&cfg.Knowledge)

	orchestrator := assistant.NewOrchestrator(
		language.NewRouter(),
		assistant.NewResponseCache(store),
		backends,
		retriever,
		assistant.OrchestratorConfig{
			AskTimeout: time.Duration(cfg.Server.AskTimeoutSeconds) * time.Second,
			TopK:       cfg.Knowledge.DefaultTopK,
		},
	)

	serverConfig := api.DefaultServerConfig()
	serverConfig.Host = cfg.Server.Host
	serverConfig.Port = cfg.Server.Port
	serverConfig.ReadTimeout = time.Duration(cfg.Server.ReadTimeoutSeconds) * time.Second
	serverConfig.WriteTimeout = time.Duration(cfg.Server.WriteTimeoutSeconds) * time.Second
	serverConfig.JWTSecret = cfg.Auth.AdminJWTSecret
	serverConfig.JWTIssuer = cfg.Auth.JWTIssuer

	server := api.NewServer(serverConfig, orchestrator, store)
	server.SetHealthProbes(backends, retriever)

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		applog.Info("🔄 Shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		if err := server.Stop(shutdownCtx); err != nil {
			applog.Errorf("❌ Server shutdown error: %v", err)
		}
	}()

	if err := server.Start(); err != nil && err.Error() != "http: Server closed" {
		applog.Fatalf("❌ Server error: %v", err)
	}

	applog.Info("👋 Server stopped")
}
