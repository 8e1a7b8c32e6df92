package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/spf13/pflag"

	"pnr-tracker/internal/config"
	"pnr-tracker/internal/domain/ports/repository"
	tele "pnr-tracker/internal/infra/adapters/telegram"
	pg "pnr-tracker/internal/infra/db/postgres"
	httpapi "pnr-tracker/internal/infra/http"
	"pnr-tracker/internal/infra/i18n"
	"pnr-tracker/internal/infra/logging"
	"pnr-tracker/internal/infra/memory"
	"pnr-tracker/internal/infra/metrics"
	red "pnr-tracker/internal/infra/redis"
	"pnr-tracker/internal/infra/sched"
	"pnr-tracker/internal/infra/scraper"
	"pnr-tracker/internal/infra/worker"
	"pnr-tracker/internal/usecase"
)

// set via -ldflags at build time
var (
	version = "dev"
	commit  = "none"
)

func main() {
	// ---- CLI flags ----
	var (
		cfgPath string
		devMode bool
	)
	pflag.StringVarP(&cfgPath, "config", "c", "config.yaml", "path to YAML config file")
	pflag.BoolVar(&devMode, "dev", false, "enable developer mode (console logs, verbose tracing)")
	pflag.Parse()

	cfg, err := config.LoadConfig(cfgPath, devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	metrics.MustRegister()
	metrics.SetBuildInfo(version, commit)
	logger.Info().Str("version", version).Str("mode", cfg.Bot.Mode).Str("policy", cfg.Tracker.Policy).Msg("starting pnr tracker")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	checks := map[string]httpapi.HealthCheck{}

	// ---- Redis (optional) ----
	var (
		redisClient red.RedisClient
		limiter     tele.RateLimiter
		locker      red.Locker
	)
	if cfg.Redis.URL != "" {
		rc, err := red.NewClient(ctx, &cfg.Redis)
		if err != nil {
			logger.Fatal().Err(err).Msg("redis")
		}
		defer rc.Close()
		redisClient = rc
		limiter = red.NewRateLimiter(rc)
		locker = red.NewLocker(rc)
		checks["redis"] = rc.Ping
		logger.Info().Msg("redis enabled: rate limiting, session cache and poll locks")
	}

	// ---- Storage ----
	var (
		sessionRepo repository.SessionRepository
		notifRepo   repository.NotificationLogRepository
		txManager   repository.TransactionManager
	)
	if cfg.Database.URL != "" {
		pool, err := pg.NewPgxPool(ctx, cfg.Database)
		if err != nil {
			logger.Fatal().Err(err).Msg("postgres")
		}
		defer pool.Close()
		sessionRepo = pg.NewSessionRepo(pool)
		if redisClient != nil {
			sessionRepo = pg.NewSessionRepoCacheDecorator(sessionRepo, redisClient, cfg.Redis.TTL, logger)
		}
		notifRepo = pg.NewNotificationLogRepo(pool)
		txManager = pg.NewTxManager(pool)
		checks["postgres"] = pool.Ping
	} else {
		logger.Warn().Msg("database.url not set; sessions are kept in memory and lost on restart")
		sessionRepo = memory.NewSessionRepo()
		notifRepo = memory.NewNotificationLogRepo(50)
		txManager = memory.TxManager{}
	}

	// ---- Collaborators ----
	tr, err := i18n.NewTranslator(i18n.LocalesFS, cfg.Tracker.Lang)
	if err != nil {
		logger.Fatal().Err(err).Msg("i18n")
	}
	detector, err := usecase.NewChangeDetector(cfg.Tracker.Policy)
	if err != nil {
		logger.Fatal().Err(err).Msg("change policy")
	}
	fetcher := scraper.NewRailYatriScraper(cfg.Scraper, logger)

	api, err := tgbotapi.NewBotAPI(cfg.Bot.Token)
	if err != nil {
		logger.Fatal().Err(err).Msg("telegram")
	}
	api.Debug = cfg.Runtime.Dev
	logger.Info().Str("bot", api.Self.UserName).Msg("authorized on telegram")
	sender := tele.NewSender(api, logger)

	// ---- Use cases ----
	sessionUC := usecase.NewSessionUseCase(sessionRepo, txManager, logger)
	trackerUC := usecase.NewTrackerUseCase(
		sessionUC,
		fetcher,
		sender,
		detector,
		notifRepo,
		tr,
		usecase.TrackerOptions{FetchTimeout: cfg.Tracker.FetchTimeout, Dev: cfg.Runtime.Dev},
		logger,
	)

	// ---- Telegram ----
	bot, err := tele.NewRealTelegramBotAdapter(api, cfg.Bot, cfg.RateLimit, trackerUC, limiter, tr, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("telegram adapter")
	}

	// ---- HTTP server ----
	opts := httpapi.Options{
		Port:     cfg.HTTP.Port,
		RootText: tr.T("bot_running"),
		Checks:   checks,
	}
	if cfg.Bot.Mode == config.ModeWebhook {
		opts.WebhookPath = cfg.WebhookPath()
		opts.Webhook = bot.WebhookHandler()
	}
	server := httpapi.NewServer(opts, logger)
	go func() {
		if err := server.Start(); err != nil {
			logger.Error().Err(err).Msg("http server stopped")
			stop()
		}
	}()

	go func() {
		var err error
		if cfg.Bot.Mode == config.ModeWebhook {
			err = bot.StartWebhook(ctx, cfg.Bot.BaseURL+cfg.WebhookPath())
		} else {
			err = bot.StartPolling(ctx)
		}
		if err != nil {
			logger.Error().Err(err).Msg("telegram receiver stopped")
			stop()
		}
	}()

	// ---- Auto-check scheduler ----
	var checkPool *worker.Pool
	if cfg.Tracker.PollInterval > 0 {
		checkPool = worker.NewPool(cfg.Bot.Workers, logger)
		checkPool.Start(ctx)
		poller := sched.NewPollWorker(cfg.Tracker.PollInterval, sessionUC, trackerUC, checkPool, locker, logger)
		go func() { _ = poller.Run(ctx) }()
	} else {
		logger.Info().Msg("tracker.poll_interval not set; status is checked on manual refresh only")
	}

	// ---- Graceful shutdown ----
	<-ctx.Done()
	logger.Info().Msg("shutdown requested")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http shutdown")
	}
	bot.StopPolling()
	if checkPool != nil {
		checkPool.Stop()
	}
	logger.Info().Msg("bye")
}
