package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver
	"github.com/redis/go-redis/v9"

	"github.com/ignite/campaigner/internal/api"
	"github.com/ignite/campaigner/internal/config"
	"github.com/ignite/campaigner/internal/dispatch"
	"github.com/ignite/campaigner/internal/pkg/distlock"
	"github.com/ignite/campaigner/internal/pkg/logger"
	"github.com/ignite/campaigner/internal/repository/postgres"
	"github.com/ignite/campaigner/internal/service/campaign"
	"github.com/ignite/campaigner/internal/service/contact"
	"github.com/ignite/campaigner/internal/service/template"
	"github.com/ignite/campaigner/internal/transport"
)

func main() {
	if err := run(); err != nil {
		logger.Error("server exited", "error", err.Error())
		os.Exit(1)
	}
}

func run() error {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config/config.yaml"
	}

	cfg, err := config.LoadFromEnv(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if level := os.Getenv("LOG_LEVEL"); level != "" {
		logger.SetLevel(logger.ParseLevel(level))
	}

	if cfg.Database.URL == "" {
		return fmt.Errorf("database url not configured")
	}
	db, err := sql.Open("postgres", cfg.Database.URL)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()
	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)

	pingCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		return fmt.Errorf("ping database: %w", err)
	}
	logger.Info("database connected")

	var redisClient *redis.Client
	if cfg.Redis.Enabled() {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := redisClient.Ping(pingCtx).Err(); err != nil {
			logger.Warn("redis unreachable, falling back to advisory locks", "error", err.Error())
			redisClient = nil
		} else {
			logger.Info("redis connected", "addr", cfg.Redis.Addr)
			defer redisClient.Close()
		}
	}

	mailer, err := transport.NewMailer(context.Background(), cfg)
	if err != nil {
		return fmt.Errorf("init mailer: %w", err)
	}
	logger.Info("mailer ready", "provider", cfg.Email.Provider)

	lockFactory := func(key string) distlock.DistLock {
		return distlock.NewLock(redisClient, db, key, cfg.Dispatch.LockTTL())
	}

	engine := dispatch.NewEngine(postgres.NewDispatchRepo(db), mailer, cfg, lockFactory)

	handlers := api.NewHandlers(
		contact.NewService(postgres.NewContactRepo(db)),
		template.NewService(postgres.NewTemplateRepo(db)),
		campaign.NewService(postgres.NewCampaignRepo(db)),
		engine,
		postgres.NewEventRepo(db),
		postgres.NewStatsRepo(db),
	)

	server := api.NewServer(cfg.Server, handlers)

	addr := fmt.Sprintf("%s:%d", cfg.Server.GetHost(), cfg.Server.Port)
	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", addr)
		errCh <- server.ListenAndServe(addr)
	}()

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-done:
		logger.Info("shutting down", "signal", sig.String())
	}

	// A dispatch mid-flight keeps the connection open; give it time to
	// finish before forcing the listener closed.
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelShutdown()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	logger.Info("server stopped")
	return nil
}
