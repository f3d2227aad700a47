package main

import (
	"log"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/sjdodge123/Raid-Ledger-sub004/internal/config"
	"github.com/sjdodge123/Raid-Ledger-sub004/internal/metrics"
	"github.com/sjdodge123/Raid-Ledger-sub004/pkg/auth"
	"github.com/sjdodge123/Raid-Ledger-sub004/pkg/database"
	"github.com/sjdodge123/Raid-Ledger-sub004/pkg/handlers"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("could not load config: %v", err)
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		log.Fatalf("could not build logger: %v", err)
	}
	defer logger.Sync()

	if cfg.GinMode == "" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(cfg.GinMode)
	}

	db, err := database.InitDB(&cfg, logger)
	if err != nil {
		logger.Fatal("database init failed", zap.Error(err))
	}
	if err := database.EnsureDefaultGames(db); err != nil {
		logger.Fatal("seeding games failed", zap.Error(err))
	}
	if err := auth.EnsureAdminExists(db, logger); err != nil {
		logger.Fatal("admin bootstrap failed", zap.Error(err))
	}

	h := &handlers.Handler{DB: db, Log: logger, Metrics: metrics.New(nil)}

	r := gin.New()
	r.Use(gin.Recovery())
	handlers.RegisterRoutes(r, h)

	logger.Info("server starting", zap.String("port", cfg.Port))
	if err := r.Run(":" + cfg.Port); err != nil {
		logger.Fatal("could not run server", zap.Error(err))
	}
}

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	zcfg := zap.NewProductionConfig()
	zcfg.Level = zap.NewAtomicLevelAt(lvl)
	return zcfg.Build()
}
