package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"

	"PatternSentinel/internal/barcache"
	"PatternSentinel/internal/collector"
	"PatternSentinel/internal/config"
	"PatternSentinel/internal/notifier"
	"PatternSentinel/internal/scanner"
	"PatternSentinel/internal/scheduler"
)

func main() {
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			log.Warnf("load .env: %v", err)
		}
	}
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	log.Info("PatternSentinel starting...")

	dryRun := os.Getenv("DRY_RUN") == "1"

	// Load config
	cfgPath := "config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		if !dryRun {
			log.Fatalf("config validation: %v", err)
		}
		log.Warnf("config validation (ignored in dry run): %v", err)
	}
	if level, err := log.ParseLevel(cfg.Log.Level); err == nil {
		log.SetLevel(level)
	}

	// Init bar cache
	var cache barcache.Cache
	if cfg.Cache.Path != "" {
		sc, err := barcache.NewSQLiteCache(cfg.Cache.Path)
		if err != nil {
			log.Warnf("init sqlite cache failed, using noop: %v", err)
			cache = barcache.NewNoopCache()
		} else {
			cache = sc
			defer sc.Close()
		}
	} else {
		cache = barcache.NewNoopCache()
	}

	// Init fetcher
	var fetcher collector.Fetcher
	switch {
	case dryRun:
		fetcher = &collector.MockFetcher{}
	case cfg.DataSource.BaseURL != "":
		fetcher = collector.NewRESTFetcher(cfg.DataSource.BaseURL, cfg.DataSource.APIKey, cfg.DataSource.ProxyURL)
	default:
		fetcher = collector.NewYahooFetcher(cfg.DataSource.ProxyURL)
	}
	log.Infof("data source: %s", fetcher.Name())

	col := collector.NewCollector(fetcher, cache, cfg.WatchPeriod(), cfg.WatchInterval(), cfg.CacheTTL())
	scan := scanner.New(col, cfg.Detectors.Enabled)
	log.Infof("watching %d symbols with %d detectors", len(cfg.Watch.Symbols), len(scan.Detectors()))

	// Init notifier
	var ntf notifier.Notifier
	var tg *notifier.TelegramNotifier
	if dryRun || cfg.Telegram.BotToken == "" {
		ntf = notifier.NewNoopNotifier()
	} else {
		tg = notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.DataSource.ProxyURL)
		ntf = tg
	}

	// Context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Init scheduler
	sched := scheduler.NewScheduler(ctx, scan, ntf, cfg.Watch.Symbols)
	if err := sched.Register(cfg.Schedule.ScanCron); err != nil {
		log.Fatalf("register cron tasks: %v", err)
	}
	sched.Start()
	defer sched.Stop()

	// Start Telegram polling
	if tg != nil {
		go tg.StartPolling(ctx, sched.HandleCommand)
		log.Info("telegram polling started")
	}

	// Optional: run immediately on start
	if v := os.Getenv("RUN_ON_START"); v == "1" || v == "true" {
		log.Info("RUN_ON_START enabled, scanning now")
		go sched.RunScanNow(ctx)
	}

	log.Info("PatternSentinel is running. Press Ctrl+C to stop.")

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Info("shutdown signal received, stopping...")
	cancel()
	log.Info("PatternSentinel stopped")
}
