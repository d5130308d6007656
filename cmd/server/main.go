package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/vidshelf/media-catalog-go/internal/config"
	"github.com/vidshelf/media-catalog-go/internal/db"
	"github.com/vidshelf/media-catalog-go/internal/handler"
	"github.com/vidshelf/media-catalog-go/internal/repository"
	"github.com/vidshelf/media-catalog-go/internal/service"
	"github.com/vidshelf/media-catalog-go/internal/service/youtube"
	"github.com/vidshelf/media-catalog-go/internal/validation"
	"github.com/vidshelf/media-catalog-go/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.File); err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	ctx := context.Background()
	pool, err := db.NewPool(ctx, &cfg.Database)
	if err != nil {
		logger.Log.Fatal("failed to initialize database", zap.Error(err))
	}
	defer pool.Close()

	logger.Log.Info("database connection established",
		zap.String("host", cfg.Database.Host),
		zap.String("database", cfg.Database.Name),
	)

	for _, dir := range []string{cfg.Storage.UploadDir, cfg.Storage.ThumbnailDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			logger.Log.Fatal("failed to create storage directory",
				zap.String("dir", dir),
				zap.Error(err),
			)
		}
	}

	repo := repository.New(pool)

	youtubeClient := youtube.NewClient(cfg.Ingest.FetchTimeout, cfg.Ingest.MinThumbnailBytes)
	frameExtractor := service.NewFrameExtractor(cfg.Ingest.FFmpegPath, cfg.Ingest.FFprobePath)
	thumbnailStore := service.NewThumbnailStore(cfg.Storage.ThumbnailDir, cfg.Ingest.JPEGQuality)
	pipeline := service.NewThumbnailPipeline(youtubeClient, frameExtractor, thumbnailStore)

	var publisher service.EventPublisher
	var broker handler.Broker
	if cfg.RabbitMQ.Enabled {
		messagePublisher, err := service.NewMessagePublisher(&cfg.RabbitMQ)
		if err != nil {
			logger.Log.Warn("event publisher unavailable, catalog events will not be published",
				zap.Error(err),
			)
		} else {
			defer messagePublisher.Close()
			publisher = messagePublisher
			broker = messagePublisher
			logger.Log.Info("event publisher initialized",
				zap.String("exchange", cfg.RabbitMQ.Exchange),
			)
		}
	}

	catalog := service.NewCatalogService(
		repo,
		repo,
		pipeline,
		publisher,
		cfg.Storage.UploadDir,
		cfg.Storage.ThumbnailDir,
	)

	validator := validation.New(cfg.Ingest.AllowedExtensions)

	pageHandler := handler.NewPageHandler(catalog)
	categoryHandler := handler.NewCategoryHandler(catalog)
	videoHandler := handler.NewVideoHandler(catalog, validator, cfg.Storage.UploadDir, cfg.Ingest.MaxUploadSize)
	healthHandler := handler.NewHealthHandler(repo, broker)

	router := setupRouter(cfg, pageHandler, categoryHandler, videoHandler, healthHandler)

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Log.Info("server starting", zap.Int("port", cfg.Server.Port))
		serverErrors <- server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		logger.Log.Fatal("server error", zap.Error(err))
	case sig := <-shutdown:
		logger.Log.Info("shutdown signal received", zap.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			logger.Log.Error("graceful shutdown failed", zap.Error(err))
			if err := server.Close(); err != nil {
				logger.Log.Error("failed to close server", zap.Error(err))
			}
			os.Exit(1)
		}

		logger.Log.Info("server stopped gracefully")
	}
}

func setupRouter(
	cfg *config.Config,
	pages *handler.PageHandler,
	categories *handler.CategoryHandler,
	videos *handler.VideoHandler,
	health *handler.HealthHandler,
) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(requestLogger(), gin.Recovery())
	router.SetHTMLTemplate(handler.Templates())
	router.MaxMultipartMemory = cfg.Ingest.MaxUploadSize

	router.GET("/", pages.Gallery)
	router.GET("/calendar", pages.Calendar)

	router.POST("/add_category", categories.AddCategory)
	router.GET("/get_categories", categories.GetCategories)

	router.POST("/add_youtube", videos.AddYouTube)
	router.POST("/upload_video", videos.UploadVideo)
	router.POST("/delete_video/:id", videos.DeleteVideo)

	router.Static("/uploads", cfg.Storage.UploadDir)
	router.Static("/thumbnails", cfg.Storage.ThumbnailDir)

	router.GET("/health", health.Health)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return router
}

// requestLogger logs each completed request with its status and latency.
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Log.Info("request completed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Int64("durationMs", time.Since(start).Milliseconds()),
			zap.String("clientIp", c.ClientIP()),
		)
	}
}
