package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/satwatch/lnbits-tracker/internal/config"
	"github.com/satwatch/lnbits-tracker/internal/dashboard"
	"github.com/satwatch/lnbits-tracker/internal/lnbits"
	"github.com/satwatch/lnbits-tracker/internal/monitor"
	"github.com/satwatch/lnbits-tracker/internal/notifier"
	"github.com/satwatch/lnbits-tracker/internal/snapshot"
	"github.com/satwatch/lnbits-tracker/internal/storage"
	"github.com/satwatch/lnbits-tracker/internal/telegram"
)

func main() {
	// Setup logger
	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(log)

	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Debug("no .env file found")
	}

	// Load config
	cfg := config.Load()

	if cfg.BotToken == "" {
		log.Error("TELEGRAM_BOT_TOKEN is required")
		os.Exit(1)
	}
	if cfg.ChatID == 0 {
		log.Error("CHAT_ID is required")
		os.Exit(1)
	}
	if cfg.LNbitsURL == "" || cfg.LNbitsAPIKey == "" {
		log.Error("LNBITS_URL and LNBITS_READONLY_API_KEY are required")
		os.Exit(1)
	}

	// Initialize storage
	store, err := storage.New(cfg.DBPath)
	if err != nil {
		log.Error("init storage", "error", err)
		os.Exit(1)
	}
	defer store.Close()
	log.Info("storage initialized", "path", cfg.DBPath)

	// Initialize LNbits client
	wallet := lnbits.NewClient(cfg.LNbitsURL, cfg.LNbitsAPIKey)
	log.Info("lnbits client initialized", "base_url", cfg.LNbitsURL)

	// Initialize telegram bot
	disp := telegram.NewDispatcher(cfg, wallet, store, log)
	bot, err := telegram.New(cfg, disp, log)
	if err != nil {
		log.Error("init telegram bot", "error", err)
		os.Exit(1)
	}
	log.Info("telegram bot initialized")

	// Initialize notifier and monitor
	notify := notifier.New(cfg, store, bot, log)

	snap := snapshot.New(cfg.BalanceFile, cfg.ProcessedPaymentsFile)
	mon, err := monitor.New(cfg, wallet, snap, store, notify, log)
	if err != nil {
		log.Error("init monitor", "error", err)
		os.Exit(1)
	}

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Start monitor loops
	go mon.Run(ctx)

	// Start dashboard server, with the telegram webhook mounted when
	// webhook mode is configured
	var webhookHandler http.Handler
	if cfg.TelegramWebhookURL != "" {
		webhookHandler = bot.WebhookHandler()
	}

	dash := dashboard.NewServer(cfg, store, wallet, mon, webhookHandler, log)
	go func() {
		if err := dash.Start(ctx); err != nil && err != http.ErrServerClosed {
			log.Error("dashboard server", "error", err)
		}
	}()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigCh
		log.Info("shutting down...")
		cancel()
	}()

	// Start receiving updates
	if cfg.TelegramWebhookURL != "" {
		log.Info("starting bot in webhook mode", "url", cfg.TelegramWebhookURL)
		bot.StartWebhook(ctx)
	} else {
		log.Info("starting bot polling...")
		bot.Start(ctx)
	}
}
