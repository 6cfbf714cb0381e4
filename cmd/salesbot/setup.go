package main

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"github.com/solarsmart/salesbot/internal/config"
	"github.com/solarsmart/salesbot/internal/providers/llm"
	"github.com/solarsmart/salesbot/internal/providers/rag"
	"github.com/solarsmart/salesbot/internal/service/agent"
	"github.com/solarsmart/salesbot/internal/service/session"
	"github.com/solarsmart/salesbot/internal/storage/sqlite"
	"github.com/solarsmart/salesbot/internal/transport/httpapi"
	"github.com/solarsmart/salesbot/internal/transport/telegram"
	"github.com/solarsmart/salesbot/pkg/log"
	"github.com/solarsmart/salesbot/pkg/srv"
)

func NewServices(ctx context.Context) []srv.Service {
	logger := log.FromCtx(ctx)
	services := make([]srv.Service, 0)

	// 1. Configuration
	appCfg := config.NewAppConfig(ctx)

	if err := initEnv(ctx, appCfg.GetRuntimePath()); err != nil {
		logger.Fatal().Err(err).Msg("failed to init env")
	}

	llmCfg := config.NewLLMConfig(ctx)
	ragCfg := config.NewRetrieverConfig(ctx)
	approvalCfg := config.NewApprovalConfig(ctx)
	serverCfg := config.NewServerConfig(ctx)

	if err := os.MkdirAll(appCfg.GetRuntimePath(), 0o755); err != nil {
		logger.Fatal().Err(err).Msg("failed to create runtime directory")
	}

	// 2. Storage
	db, err := initStorage(ctx, appCfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize storage")
	}
	services = append(services, srv.NewCleanup(db.Close))
	memoryRepo := sqlite.NewMemoryRepo(db)

	// 3. Completion Provider
	provider, err := llm.NewProvider(ctx, appCfg, llmCfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize LLM provider")
	}

	// 4. Knowledge base
	embedder := rag.NewHTTPEmbedder(ragCfg)
	store, err := rag.NewStore(appCfg.GetVectorStorePath(), ragCfg, embedder)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize vector store")
	}

	// 5. Agent Service
	ag := agent.NewAgent(appCfg, provider, store, memoryRepo, agent.NewGate(approvalCfg))
	ag.SetTimeouts(llmCfg.Timeout, ragCfg.Timeout)

	sessions := session.NewStore()

	// 6. Transports
	handler := httpapi.NewHandler(ag, sessions, db)
	services = append(services, httpapi.NewServer(serverCfg, handler))

	tgCfg := config.NewTelegramConfig(ctx)
	if tgCfg.Enabled() {
		reviewer, err := telegram.NewReviewer(ctx, tgCfg, ag, sessions)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to initialize telegram reviewer")
		}
		ag.SetNotifier(reviewer)
		services = append(services, reviewer)
	}

	return services
}

func initStorage(ctx context.Context, cfg *config.AppConfig) (*sql.DB, error) {
	db, err := sqlite.NewDB(ctx, cfg.GetDatabasePath())
	if err != nil {
		return nil, err
	}
	return db, nil
}

func initEnv(ctx context.Context, runtimePath string) error {
	logger := log.FromCtx(ctx)
	envFile := filepath.Join(runtimePath, ".env")

	if _, err := os.Stat(envFile); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	if err := godotenv.Load(envFile); err != nil {
		logger.Warn().Err(err).Str("path", envFile).Msg("failed to load .env file")
		return err
	}

	logger.Debug().Str("path", envFile).Msg("loaded .env file")
	return nil
}
