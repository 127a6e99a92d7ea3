package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/abduss/docshelf/internal/config"
	"github.com/abduss/docshelf/internal/file"
	"github.com/abduss/docshelf/internal/folder"
	"github.com/abduss/docshelf/internal/logger"
	"github.com/abduss/docshelf/internal/metrics"
	"github.com/abduss/docshelf/internal/server"
	"github.com/abduss/docshelf/internal/storage"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	// .env is optional; real environment variables win.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	zlog, err := logger.Init(cfg.Log.Level)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer zlog.Sync() //nolint:errcheck

	if err := run(cfg, zlog); err != nil {
		zlog.Fatal("docshelf stopped", zap.Error(err))
	}
}

func run(cfg config.Config, zlog *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dbPool, err := storage.NewPostgresPool(ctx, cfg.Postgres, zlog)
	if err != nil {
		return err
	}
	defer dbPool.Close()

	if err := storage.Migrate(cfg.Postgres.MigrateURL(), zlog); err != nil {
		return err
	}

	blobs, blobProbe, err := storage.NewBlobStore(ctx, cfg, zlog)
	if err != nil {
		return err
	}

	metrics.InitMetrics()

	fileRepo := file.NewRepository(dbPool)
	folderRepo := folder.NewRepository(dbPool)

	folderService := folder.NewService(folderRepo, fileRepo, blobs, zlog.Named("folder"))
	fileService := file.NewService(fileRepo, blobs, zlog.Named("file"), file.Options{
		MaxFileSize:      cfg.Storage.MaxUploadBytes,
		StrictFolderRefs: cfg.Storage.StrictFolderRefs,
		Folders:          folderService,
		Recorder:         metrics.NewRecorder(),
	})

	gin.SetMode(gin.ReleaseMode)
	router := server.NewRouter(server.Dependencies{
		Config:        cfg,
		DB:            dbPool,
		BlobProbe:     blobProbe,
		FileService:   fileService,
		FolderService: folderService,
		Logger:        zlog.Named("http"),
	})

	httpServer := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		zlog.Info("docshelf API listening",
			zap.String("addr", cfg.Server.Address()),
			zap.String("blob_backend", cfg.Storage.Backend),
		)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return err
		}
	case <-ctx.Done():
	}
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	zlog.Info("shutting down gracefully")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}
