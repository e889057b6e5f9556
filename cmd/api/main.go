package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/warit/linedrive/internal/config"
	"github.com/warit/linedrive/internal/drive"
	"github.com/warit/linedrive/internal/files"
	"github.com/warit/linedrive/internal/line"
	"github.com/warit/linedrive/internal/logger"
	"github.com/warit/linedrive/internal/metrics"
	"github.com/warit/linedrive/internal/record"
	"github.com/warit/linedrive/internal/server"
	"github.com/warit/linedrive/internal/storage"
	"github.com/warit/linedrive/internal/webhook"
)

func main() {
	_ = godotenv.Load()

	logg, err := logger.Init()
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer logg.Sync()

	cfg, err := config.Load()
	if err != nil {
		logg.Fatal("load config", zap.Error(err))
	}

	metrics.InitMetrics()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dbPool, err := storage.NewPostgresPool(ctx, cfg.Postgres)
	if err != nil {
		logg.Fatal("connect postgres", zap.Error(err))
	}
	defer dbPool.Close()

	minioClient, err := storage.NewMinIOClient(cfg.MinIO)
	if err != nil {
		logg.Fatal("connect minio", zap.Error(err))
	}

	if err := storage.EnsureBucket(ctx, minioClient, cfg.MinIO.Bucket, cfg.MinIO.Region); err != nil {
		logg.Fatal("ensure bucket", zap.Error(err))
	}
	if err := storage.EnsurePublicRead(ctx, minioClient, cfg.MinIO.Bucket); err != nil {
		logg.Fatal("ensure public read policy", zap.Error(err))
	}

	publicBaseURL := cfg.Drive.PublicBaseURL
	if publicBaseURL == "" {
		scheme := "http"
		if cfg.MinIO.UseSSL {
			scheme = "https"
		}
		publicBaseURL = fmt.Sprintf("%s://%s", scheme, cfg.MinIO.Endpoint)
	}

	lineClient := line.NewClient(cfg.Line)
	recordRepo := record.NewRepository(dbPool)
	uploader := drive.NewUploader(drive.NewMinIOStore(minioClient), cfg.MinIO.Bucket, publicBaseURL, cfg.Drive)

	pipeline := webhook.NewPipeline(lineClient, recordRepo, uploader, logg)
	webhookHandler := webhook.NewHandler(pipeline, cfg.Line.ChannelSecret, logg)
	filesHandler := files.NewHandler(recordRepo, logg)

	router := server.NewRouter(server.Dependencies{
		Config:         cfg,
		DB:             dbPool,
		ObjectStore:    minioClient,
		WebhookHandler: webhookHandler,
		FilesHandler:   filesHandler,
	})

	httpServer := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logg.Info("LineDrive API listening", zap.String("address", cfg.Server.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	<-ctx.Done()
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	logg.Info("shutting down gracefully")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logg.Error("shutdown error", zap.Error(err))
	}

	if err := g.Wait(); err != nil {
		logg.Error("server stopped with error", zap.Error(err))
	}
}
