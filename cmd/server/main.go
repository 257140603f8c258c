package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/ufoundit-dev/ufoundit/internal/api"
	"github.com/ufoundit-dev/ufoundit/internal/app"
	"github.com/ufoundit-dev/ufoundit/internal/app/maintenance"
	"github.com/ufoundit-dev/ufoundit/internal/auth"
	"github.com/ufoundit-dev/ufoundit/internal/database"
	"github.com/ufoundit-dev/ufoundit/internal/presence"
	"github.com/ufoundit-dev/ufoundit/internal/realtime"
	"github.com/ufoundit-dev/ufoundit/internal/services"
	"github.com/ufoundit-dev/ufoundit/pkg/logger"
)

func main() {
	if err := run(); err != nil {
		logger.Error("server exited", zap.Error(err))
		_ = logger.Sync()
		os.Exit(1)
	}
	_ = logger.Sync()
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		return err
	}
	if err := app.ConfigureLogging(cfg.Server.LogLevel); err != nil {
		return err
	}
	log := logger.WithModule("server")

	if cfg.Auth.JWT.Secret == "" {
		return errors.New("auth.jwt.secret must be configured")
	}

	db, err := database.Open(databaseConfig(cfg))
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}

	jwtService, err := auth.NewJWTService(auth.JWTConfig{
		Secret:         cfg.Auth.JWT.Secret,
		Issuer:         cfg.Auth.JWT.Issuer,
		AccessTokenTTL: cfg.Auth.JWT.TTL,
	})
	if err != nil {
		return err
	}

	hub := realtime.NewHub(presence.NewDirectory())

	notifications, err := services.NewNotificationService(db, hub)
	if err != nil {
		return err
	}
	users, err := services.NewUserService(db, jwtService)
	if err != nil {
		return err
	}
	items, err := services.NewItemService(db, notifications)
	if err != nil {
		return err
	}
	messages, err := services.NewMessageService(db, notifications)
	if err != nil {
		return err
	}
	custodians, err := services.NewCustodianService(db)
	if err != nil {
		return err
	}
	requests, err := services.NewRequestService(db, notifications)
	if err != nil {
		return err
	}

	cleaner, err := maintenance.NewCleaner(db, cfg.Maintenance)
	if err != nil {
		return err
	}
	if err := cleaner.Start(); err != nil {
		return err
	}
	defer cleaner.Stop()

	router := api.NewRouter(api.Dependencies{
		Config:        cfg,
		DB:            db,
		JWT:           jwtService,
		Hub:           hub,
		Users:         users,
		Items:         items,
		Messages:      messages,
		Notifications: notifications,
		Custodians:    custodians,
		Requests:      requests,
	})

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", zap.Int("port", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func databaseConfig(cfg *app.Config) database.Config {
	dbCfg := database.Config{
		Driver: cfg.Database.Driver,
		Path:   cfg.Database.Path,
		DSN:    cfg.Database.DSN,
	}

	switch cfg.Database.Driver {
	case "postgres", "postgresql":
		dbCfg.Host = cfg.Database.Postgres.Host
		dbCfg.Port = cfg.Database.Postgres.Port
		dbCfg.Name = cfg.Database.Postgres.Database
		dbCfg.User = cfg.Database.Postgres.Username
		dbCfg.Password = cfg.Database.Postgres.Password
	case "mysql":
		dbCfg.Host = cfg.Database.MySQL.Host
		dbCfg.Port = cfg.Database.MySQL.Port
		dbCfg.Name = cfg.Database.MySQL.Database
		dbCfg.User = cfg.Database.MySQL.Username
		dbCfg.Password = cfg.Database.MySQL.Password
	}
	return dbCfg
}
