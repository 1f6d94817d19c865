package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	dbfs "github.com/garnizeh/frota/db"
	"github.com/garnizeh/frota/api"
	"github.com/garnizeh/frota/internal/auth"
	"github.com/garnizeh/frota/internal/config"
	"github.com/garnizeh/frota/internal/db"
	"github.com/garnizeh/frota/internal/fleet"
	"github.com/garnizeh/frota/internal/imagestore"
	"github.com/garnizeh/frota/internal/logger"
	"github.com/garnizeh/frota/internal/provision"
	"github.com/garnizeh/frota/internal/repository/sqlstore"
	"github.com/garnizeh/frota/internal/tokenstore"
	"github.com/garnizeh/frota/internal/validate"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

func main() {
	var configPath = flag.String("config", "", "Path to config YAML file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}

	lg, err := logger.New("frota", cfg.Log.Level, cfg.IsDevelopment())
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer lg.Sync()
	api.SetLogger(lg)

	lg.Info("starting frota server", zap.String("version", version), zap.String("build_time", buildTime))

	ctx := context.Background()

	// Open database connection
	conn, err := db.New(ctx, cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		lg.Fatal("failed to open DB", zap.Error(err))
	}
	if cfg.Database.AutoMigrate {
		if err := db.Migrate(ctx, conn, dbfs.Migrations); err != nil {
			lg.Fatal("failed to migrate DB", zap.Error(err))
		}
	}

	var revoker tokenstore.Revoker = tokenstore.NewMemory()
	var shared *tokenstore.Redis
	if cfg.Redis.Addr != "" {
		shared, err = tokenstore.DialRedis(ctx, tokenstore.RedisOptions{
			Addr:        cfg.Redis.Addr,
			Password:    cfg.Redis.Password,
			DB:          cfg.Redis.DB,
			DialTimeout: cfg.Redis.DialTimeout,
			Prefix:      cfg.Redis.Prefix,
		})
		if err != nil {
			lg.Fatal("failed to connect to redis", zap.Error(err))
		}
		revoker = shared
	}

	schemas, err := validate.New()
	if err != nil {
		lg.Fatal("failed to load request schemas", zap.Error(err))
	}

	store := sqlstore.New(conn, lg.Named("store"))
	tokens := auth.NewTokenManager(cfg.JWT.Secret, cfg.JWT.TokenDuration)
	images := imagestore.NewDisk(cfg.Media.Dir, cfg.Media.BaseURL)

	handler := api.SetupRoutes(cfg, version, buildTime, api.Deps{
		Provision: provision.New(store, tokens, images, revoker, lg.Named("provision")),
		Fleet:     fleet.New(store, lg.Named("fleet")),
		Tokens:    tokens,
		Revoker:   revoker,
		Schemas:   schemas,
		DB:        conn.GetConn(),
	})

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Addr,
		Handler:      handler,
		ReadTimeout:  cfg.APITimeout,
		WriteTimeout: cfg.APITimeout,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		lg.Info("server listening", zap.String("addr", cfg.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			lg.Fatal("server failed to start", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	lg.Info("shutting down server")

	// Give outstanding requests 30 seconds to complete
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		lg.Error("server forced to shutdown", zap.Error(err))
	}

	if shared != nil {
		if err := shared.Close(); err != nil {
			lg.Warn("error closing redis", zap.Error(err))
		}
	}

	// Close database connection
	if err := conn.Close(); err != nil {
		lg.Error("error closing DB", zap.Error(err))
	}

	lg.Info("server exited")
}
