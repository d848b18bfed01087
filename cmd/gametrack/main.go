package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/edukita/gametrack/internal/api/admin"
	"github.com/edukita/gametrack/internal/api/user"
	"github.com/edukita/gametrack/internal/audit"
	"github.com/edukita/gametrack/internal/config"
	"github.com/edukita/gametrack/internal/database"
	"github.com/edukita/gametrack/internal/pubsub"
	"github.com/edukita/gametrack/internal/scoring"

	"go.uber.org/zap"
)

var Version = "dev-build"

func main() {

	fmt.Fprintf(os.Stderr, "Gametrack %s - Game Progress Tracking Backend\n\n", Version)

	// config
	var configPath string
	flag.StringVar(&configPath, "c", "configs/config.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// logger
	var logger *zap.Logger
	if cfg.Logger.Level == "debug" {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		log.Fatalf("can't initialize zap logger: %v", err)
	}
	defer logger.Sync()
	zap.ReplaceGlobals(logger)

	// database
	db, err := database.Init(cfg.Storage.Database)
	if err != nil {
		zap.S().Fatalf("failed to initialize database: %v", err)
	}
	zap.S().Info("database initialized successfully")

	// bootstrap super admin account
	if err := database.SeedSuperAdmin(db, cfg.Auth.Bootstrap.Name, cfg.Auth.Bootstrap.Password); err != nil {
		zap.S().Fatalf("failed to seed super admin: %v", err)
	}

	// shared collaborators
	broker := pubsub.New()
	trail := audit.New(db)
	ledger := scoring.NewLedger(db, trail, broker, cfg.Scoring.MaxRetries)

	// API routers
	userEngine := user.NewUserRouter(cfg, db, ledger, broker, trail)
	adminEngine := admin.NewAdminRouter(cfg, db, trail)

	// start servers
	go func() {
		zap.S().Infof("starting user server at %s", cfg.Listen)
		if err := userEngine.Run(cfg.Listen); err != nil {
			zap.S().Fatalf("failed to start user server: %v", err)
		}
	}()

	if cfg.Admin.Enabled {
		go func() {
			zap.S().Infof("starting admin server at %s", cfg.Admin.Listen)
			if err := adminEngine.Run(cfg.Admin.Listen); err != nil {
				zap.S().Fatalf("failed to start admin server: %v", err)
			}
		}()
	}

	// graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zap.S().Info("shutting down server...")
}
