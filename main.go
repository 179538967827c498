package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/mvigneshwaran/health-assistant/internal/config"
	"github.com/mvigneshwaran/health-assistant/internal/domain"
	"github.com/mvigneshwaran/health-assistant/internal/flow"
	"github.com/mvigneshwaran/health-assistant/internal/logger"
	"github.com/mvigneshwaran/health-assistant/internal/media"
	"github.com/mvigneshwaran/health-assistant/internal/server"
	"github.com/mvigneshwaran/health-assistant/internal/services"
	"github.com/mvigneshwaran/health-assistant/internal/storage"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := logger.InitWithConfig(logger.Config{
		Level:      cfg.Logger.Level,
		OutputPath: cfg.Logger.OutputPath,
		Format:     cfg.Logger.Format,
	}); err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	logger.Info("Starting AI Health Assistant")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := newHistoryStore(cfg)
	if err != nil {
		logger.Fatalf("Failed to open history store: %v", err)
	}
	historySvc := services.NewHistoryService(ctx, store)

	modelClient, err := newModelClient(ctx, cfg)
	if err != nil {
		logger.Fatalf("Failed to create model client: %v", err)
	}
	analysisSvc := services.NewAnalysisService(modelClient)

	var notifier domain.AlertNotifier
	if cfg.Alert.TelegramToken != "" && cfg.Alert.DoctorChatID != 0 {
		reportSvc, err := services.NewReportService(cfg.Alert.TelegramToken, cfg.Alert.DoctorChatID)
		if err != nil {
			logger.Fatalf("Failed to create report service: %v", err)
		}
		notifier = reportSvc
		logger.Info("Critical alerts enabled", "chat_id", cfg.Alert.DoctorChatID)
	} else {
		logger.Warn("Critical alerts disabled: ALERT_TELEGRAM_TOKEN or DOCTOR_CHAT_ID not set")
	}

	extractor := media.NewFFmpegExtractor(
		cfg.Extractor.FFmpegPath,
		cfg.Extractor.FFprobePath,
		cfg.Extractor.Timeout,
	)

	sessions := flow.NewManager(flow.Deps{
		Analyzer:  analysisSvc,
		History:   historySvc,
		Extractor: extractor,
		Notifier:  notifier,
	})

	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: server.New(sessions, historySvc, domain.ParseLanguage(cfg.DefaultLanguage)).Router(),
	}

	go func() {
		logger.Infof("Listening on :%s", cfg.ServerPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("Server stopped with error: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("Graceful shutdown failed: %v", err)
	}
}

func newHistoryStore(cfg *config.Config) (storage.BlobStore, error) {
	switch cfg.History.Backend {
	case config.BackendMemory:
		return storage.NewMemoryStore(), nil
	case config.BackendRedis:
		return storage.NewRedisStore(cfg.History.Redis.Host, cfg.History.Redis.Port)
	case config.BackendPostgres:
		return storage.NewPostgresStore(storage.DSNConfig{
			Host:     cfg.History.DB.Host,
			Port:     cfg.History.DB.Port,
			User:     cfg.History.DB.User,
			Password: cfg.History.DB.Password,
			DBName:   cfg.History.DB.DBName,
		})
	default:
		return storage.NewFileStore(cfg.History.FilePath)
	}
}

func newModelClient(ctx context.Context, cfg *config.Config) (domain.ModelClient, error) {
	if cfg.AIProvider == "openai" {
		return services.NewOpenAIClient(cfg.OpenAIAPIKey), nil
	}
	return services.NewGeminiClient(ctx, cfg.GeminiAPIKey)
}
