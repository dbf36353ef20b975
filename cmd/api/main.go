package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/gin-gonic/gin"

	"schooldirectory/internal/config"
	"schooldirectory/internal/database"
	"schooldirectory/internal/domain/school"
	"schooldirectory/internal/logger"
	"schooldirectory/internal/middleware"
	"schooldirectory/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger.Init(cfg.LogLevel, cfg.LogFormat)
	log := logger.Get()

	db, err := database.Connect(cfg.DatabaseURL, database.PoolConfig{
		MaxOpenConns:    cfg.DB.MaxOpenConns,
		MaxIdleConns:    cfg.DB.MaxIdleConns,
		ConnMaxLifetime: cfg.DB.ConnMaxLifetime,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer func() {
		if err := database.Close(db); err != nil {
			log.Error().Err(err).Msg("Failed to close database")
		}
	}()

	if err := school.AutoMigrate(db); err != nil {
		log.Fatal().Err(err).Msg("AutoMigrate failed")
	}

	var images storage.ImageStore
	if cfg.UsesS3() {
		images, err = storage.NewS3Store(cfg.Storage.S3)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to init S3 storage")
		}
	} else {
		images = storage.NewLocalStore(cfg.ContentDir())
	}

	schoolService := school.NewService(school.NewRepository(db), images, cfg.MaxUploadBytes)
	schoolHandler := school.NewHandler(schoolService)

	if cfg.IsProd() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.MaxMultipartMemory = cfg.MaxUploadBytes
	r.Use(middleware.RequestLogger(log))
	r.Use(middleware.ErrorLogger(log))
	r.Use(middleware.CORS(cfg.CORSAllowedOrigins))

	r.GET("/health", schoolHandler.Health)

	// /api is what the web form calls; /api/v1 is the versioned alias.
	school.RegisterRoutes(r.Group("/api"), schoolHandler)
	school.RegisterRoutes(r.Group("/api/v1"), schoolHandler)

	if !cfg.UsesS3() && strings.HasPrefix(cfg.ImageRoute, "/") {
		r.Static(cfg.ImageRoute, cfg.ContentDir())
	}

	server := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	go func() {
		log.Info().Int("port", cfg.Port).Msg("Starting HTTP server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}
