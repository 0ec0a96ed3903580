package main

import (
	"context"
	"errors"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"financas/internal/amqp"
	"financas/internal/cache"
	"financas/internal/chat"
	"financas/internal/cli"
	"financas/internal/config"
	apphttp "financas/internal/http"
	applog "financas/internal/log"
	"financas/internal/report"
	"financas/internal/services"
	"financas/internal/session"
	"financas/internal/telegram"
)

const (
	balanceCacheSize = 512
	balanceCacheTTL  = 2 * time.Minute
	sessionCacheSize = 1024
	cacheSweepEvery  = 5 * time.Minute
)

func main() {
	cli.LoadEnvFile()
	cfg := cli.LoadAndValidateConfig((*config.Config).ValidateBot)
	logger := cli.SetupLogger(cfg, applog.ComponentApp)
	logger.Info("Starting financas bot", "backend", cfg.DataBackend, "timezone", cfg.Timezone)

	ctx, stop := cli.SignalContext()
	defer stop()

	res := cli.InitBackend(ctx, logger.Logger, cfg)
	defer func() {
		if err := res.Cleanup(); err != nil {
			logger.Error("Failed to close storage backend", "error", err)
		}
	}()

	loc := cfg.Location()
	opts := []services.Option{
		services.WithLocation(loc),
		services.WithBalanceCache(balanceCacheSize, balanceCacheTTL),
	}

	// Events are optional: the bot keeps recording when the broker is down.
	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("Failed to initialize AMQP client, continuing without ledger events", "error", err)
		} else {
			defer client.Close()
			opts = append(opts, services.WithPublisher(client))
			logger.Info("Publishing ledger events", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
		}
	}

	ledger := services.NewLedgerService(res.Repository, opts...)
	sessions := session.NewStore(sessionCacheSize, cfg.SessionTTL)
	handler := chat.NewHandler(ledger, sessions, report.New(loc), cfg.AdminUserID)

	bot, err := telegram.New(cfg.BotToken, handler, cfg.ChatWorkers)
	if err != nil {
		logger.Error("Failed to start Telegram bot", "error", err)
		os.Exit(1)
	}

	caches := cache.NewManager(logger.WithComponent(applog.ComponentCache).Logger)
	caches.Register("sessions", sessions.Cache())
	caches.Register("balances", ledger.BalanceCache())

	ready := func(ctx context.Context) error {
		_, err := res.Repository.ListUsers(ctx)
		return err
	}
	srv := apphttp.NewServer(":"+cfg.Port, cfg.DataBackend, ready, logger)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return bot.Run(gctx) })
	g.Go(func() error { return srv.Run(gctx) })
	g.Go(func() error { return caches.Run(gctx, cacheSweepEvery) })

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Bot stopped with error", "error", err)
		os.Exit(1)
	}
	logger.Info("Bot stopped gracefully")
}
