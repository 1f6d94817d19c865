package main

import (
	"context"
	"flag"
	"log"

	"go.uber.org/zap"

	dbfs "github.com/garnizeh/frota/db"
	"github.com/garnizeh/frota/internal/auth"
	"github.com/garnizeh/frota/internal/config"
	"github.com/garnizeh/frota/internal/db"
	"github.com/garnizeh/frota/internal/logger"
	"github.com/garnizeh/frota/internal/provision"
	"github.com/garnizeh/frota/internal/repository/sqlstore"
)

func main() {
	var configPath = flag.String("config", "", "Path to config YAML file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	lg := logger.Must("frota-seed", cfg.Log.Level, cfg.IsDevelopment())
	defer lg.Sync()

	ctx := context.Background()
	conn, err := db.New(ctx, cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		lg.Fatal("failed to open DB", zap.Error(err))
	}
	defer conn.Close()

	if err := db.Migrate(ctx, conn, dbfs.Migrations); err != nil {
		lg.Fatal("failed to migrate DB", zap.Error(err))
	}

	store := sqlstore.New(conn, lg)
	svc := provision.New(store, auth.NewTokenManager(cfg.JWT.Secret, cfg.JWT.TokenDuration), nil, nil, lg)

	created, err := svc.EnsureAdmin(ctx, provision.CreateAdminInput{
		NewAccount: provision.NewAccount{
			Name:     cfg.Seed.AdminName,
			Email:    cfg.Seed.AdminEmail,
			Password: cfg.Seed.AdminPassword,
		},
	})
	if err != nil {
		lg.Fatal("failed to seed admin", zap.Error(err))
	}
	if created {
		lg.Info("admin account created", zap.String("email", cfg.Seed.AdminEmail))
		return
	}
	lg.Info("admin account already present", zap.String("email", cfg.Seed.AdminEmail))
}
