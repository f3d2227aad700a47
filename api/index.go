package handler

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/sjdodge123/Raid-Ledger-sub004/internal/config"
	"github.com/sjdodge123/Raid-Ledger-sub004/internal/metrics"
	"github.com/sjdodge123/Raid-Ledger-sub004/pkg/auth"
	"github.com/sjdodge123/Raid-Ledger-sub004/pkg/database"
	"github.com/sjdodge123/Raid-Ledger-sub004/pkg/handlers"
)

var r *gin.Engine

func init() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("could not load config: %v", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("could not build logger: %v", err)
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

	gin.SetMode(gin.ReleaseMode)
	r = gin.New()
	r.Use(gin.Recovery())
	handlers.RegisterRoutes(r, h)
}

// Handler is the entry point for Vercel Go Runtime
func Handler(w http.ResponseWriter, req *http.Request) {
	r.ServeHTTP(w, req)
}
