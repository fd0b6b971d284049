package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"ieum/internal/auth"
	"ieum/internal/config"
	"ieum/internal/handlers"
	"ieum/internal/middleware"
	"ieum/internal/realtime"
	"ieum/internal/repo"
	"ieum/internal/service"
	"ieum/internal/storage"

	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg := config.NewConfig()

	newLogger := zap.NewProduction
	if cfg.Debug {
		newLogger = zap.NewDevelopment
	}
	logger, err := newLogger()
	if err != nil {
		panic(err)
	}

	sugar := logger.Sugar()
	middleware.SetLogger(sugar)
	defer func() {
		_ = logger.Sync()
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	gormDB, err := repo.InitDB(cfg.DatabaseDSN)
	if err != nil {
		sugar.Fatalw("failed to initialize database", "error", err)
	}

	broadcaster := realtime.NewBroadcaster(sugar, 0)
	defer func() {
		if err := broadcaster.Close(); err != nil {
			sugar.Warnw("broadcaster close", "error", err)
		}
	}()

	deps := service.Deps{
		Tx:          repo.NewTransactor(gormDB),
		Users:       repo.NewUserRepository(gormDB),
		Couples:     repo.NewCoupleRepository(gormDB),
		Broadcaster: broadcaster,
		Logger:      sugar,
	}

	var presigner service.Presigner = storage.Placeholder{BaseURL: cfg.FileBaseURL}
	if cfg.S3Enabled() {
		s3p, err := storage.NewS3Presigner(ctx, storage.S3Config{
			Bucket:    cfg.S3Bucket,
			Region:    cfg.S3Region,
			Endpoint:  cfg.S3Endpoint,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
		})
		if err != nil {
			sugar.Fatalw("failed to configure object storage", "error", err)
		}
		presigner = s3p
	}

	tokens := auth.NewTokenManager(cfg.AuthSecret, cfg.TokenTTL)
	events := repo.NewEventRepository(gormDB)
	recs := repo.NewRecommendationRepository(gormDB)
	processor := service.NewRecommendationProcessor(deps, recs, service.TemplatePlanner{}, 0)

	couples := service.NewCoupleService(deps)
	chat := service.NewChatService(deps, repo.NewChatRepository(gormDB))

	svcs := handlers.Services{
		Auth:            service.NewAuthService(deps, auth.NewGoogleVerifier(cfg.GoogleClientID, nil), tokens),
		Users:           service.NewUserService(deps),
		Couples:         couples,
		Chat:            chat,
		Events:          service.NewEventService(deps, events),
		Buckets:         service.NewBucketService(deps, repo.NewBucketRepository(gormDB)),
		Finance:         service.NewFinanceService(deps, repo.NewExpenseRepository(gormDB), repo.NewBudgetRepository(gormDB)),
		Memories:        service.NewMemoryService(deps, repo.NewMemoryRepository(gormDB)),
		Recommendations: service.NewRecommendationService(deps, recs, events, processor),
		Mbti:            service.NewMbtiService(deps),
		Ddays:           service.NewDdayService(deps, events),
		Files:           service.NewFileService(deps, repo.NewFileRepository(gormDB), presigner, cfg.FileBaseURL),
	}

	hub := realtime.NewHub(sugar)
	go hub.Run(ctx)

	go func() {
		if err := processor.Run(ctx); err != nil {
			sugar.Errorw("recommendation processor stopped", "error", err)
		}
	}()

	stream := realtime.NewServer(ctx, realtime.ServerConfig{
		Hub:            hub,
		Broadcaster:    broadcaster,
		Chat:           chat,
		Members:        couples,
		Tokens:         tokens,
		AllowedOrigins: cfg.AllowedOrigins,
		Logger:         sugar,
	})

	h := handlers.NewHandler(svcs, stream, tokens, sugar, cfg)

	srv := &http.Server{
		Addr:              cfg.BaseURL,
		Handler:           h.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	sugar.Infow("Starting server",
		"addr", cfg.BaseURL,
		"url", cfg.ServerURL,
		"https", cfg.EnableHTTPS,
		"s3", cfg.S3Enabled(),
		"metrics", cfg.MetricsEnabled,
	)

	errc := make(chan error, 1)
	go func() {
		if cfg.EnableHTTPS {
			errc <- srv.ListenAndServeTLS(cfg.TLSCertFile, cfg.TLSKeyFile)
			return
		}
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			sugar.Fatalw("Server failed", "error", err)
		}
	case <-ctx.Done():
		sugar.Infow("Shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		sugar.Errorw("graceful shutdown failed", "error", err)
	}
}
