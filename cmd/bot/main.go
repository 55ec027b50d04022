package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	// Embedded zone database for hosts without /usr/share/zoneinfo.
	_ "time/tzdata"

	"etkinlik-bot/internal/app"
	"etkinlik-bot/internal/config"
	"etkinlik-bot/internal/httpapi"
	"etkinlik-bot/internal/scheduler"
	"etkinlik-bot/internal/telegram"
)

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Warning: .env file not found: %v", err)
	}

	cfg := config.New()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg)
	if err != nil {
		log.Fatalf("failed to init app: %v", err)
	}

	api := httpapi.New(a.Engine, a.Store, a.Recorder, httpapi.Options{
		Addr:         cfg.APIAddr(),
		TopK:         cfg.TopK,
		StoreTimeout: cfg.StoreTimeout,
		RatePerSec:   cfg.ChatRatePerSec,
		RateBurst:    cfg.ChatRateBurst,
		TrustProxy:   cfg.TrustProxy,
		Metrics:      a.Metrics,
	})
	go func() {
		if err := api.Start(); err != nil {
			log.Printf("❌ HTTP API stopped: %v", err)
			stop()
		}
	}()

	var bot *telegram.Bot
	if cfg.TelegramBotToken == "" {
		log.Println("⚠️ TELEGRAM_BOT_TOKEN is empty, Telegram bot disabled")
	} else {
		bot, err = telegram.New(cfg.TelegramBotToken, a.Engine, a.Recorder, telegram.Options{
			AdminUserID: cfg.AdminUserID,
			ParseMode:   cfg.MessageParseMode,
			TopK:        cfg.TopK,
			CityName:    cfg.CityDisplayName,
			Location:    cfg.Location(),
			Metrics:     a.Metrics,
		})
		if err != nil {
			log.Fatalf("failed to create bot: %v", err)
		}
		go bot.Start(ctx)
	}

	sched := scheduler.New(cfg.Location())
	sched.SetRefreshFunction(a.Orchestrator.Refresh)
	if bot != nil && cfg.AdminUserID != 0 {
		sched.SetReportFunction(bot.SendDailyReport)
	}
	sched.AddTask("limiter-sweep", cfg.LimiterSweepSpec, func(context.Context) error {
		if n := api.SweepLimiters(cfg.ChatRateIdle); n > 0 {
			log.Printf("🧹 Forgot %d idle chat clients", n)
		}
		return nil
	})
	if err := sched.Start(cfg.ReportSpec, cfg.IndexRefreshSpec); err != nil {
		log.Fatalf("failed to start scheduler: %v", err)
	}

	// Warm the semantic index so the first question does not pay for it.
	go func() {
		if err := a.Orchestrator.Refresh(ctx); err != nil {
			log.Printf("⚠️ Initial index build failed: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("🛑 Shutting down")

	sched.Stop()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := api.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP API shutdown: %v", err)
	}
	if err := a.Close(shutdownCtx); err != nil {
		log.Printf("event store close: %v", err)
	}
}
