package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"want-salon-backend/config"
	"want-salon-backend/repository"
	"want-salon-backend/routes"
	"want-salon-backend/services"
	"want-salon-backend/utils"
)

func main() {
	if err := godotenv.Load(); err != nil {
		_, _ = os.Stderr.WriteString("No .env file found\n")
	}

	cfg, err := config.Load()
	if err != nil {
		_, _ = os.Stderr.WriteString("config error: " + err.Error() + "\n")
		os.Exit(2)
	}

	log, err := config.NewLogger(cfg.LogLevel)
	if err != nil {
		_, _ = os.Stderr.WriteString("logger init error: " + err.Error() + "\n")
		os.Exit(2)
	}
	defer func() { _ = log.Sync() }()

	if err := run(cfg, log); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}

func openStore(cfg *config.Config, log *zap.Logger) (repository.Store, error) {
	if cfg.DatabaseURL == config.MemoryDatabase {
		log.Warn("using in-memory store, data is lost on restart")
		return repository.NewMemoryStore(), nil
	}
	db, err := config.ConnectDB(cfg)
	if err != nil {
		return nil, err
	}
	return repository.NewGormStore(db), nil
}

// notificationChannels builds a channel for every configured transport.
// A transport that fails to start is logged and skipped.
func notificationChannels(cfg *config.Config, log *zap.Logger) []services.Channel {
	var channels []services.Channel
	if cfg.TelegramEnabled() {
		tg, err := services.NewTelegramSender(cfg.BotToken, cfg.NotifyTimeout)
		if err != nil {
			log.Error("telegram notifications disabled", zap.Error(err))
		} else {
			channels = append(channels, services.Channel{Sender: tg, Recipients: cfg.AdminChatIDs})
		}
	}
	if cfg.TwilioEnabled() {
		sms := services.NewSMSSender(cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.TwilioFromNumber, cfg.NotifyTimeout, log)
		channels = append(channels, services.Channel{Sender: sms, Recipients: cfg.SMSRecipients})
	}
	return channels
}

// seedMasters creates SEED_MASTERS ("Name" or "Name:role") on an empty store.
func seedMasters(ctx context.Context, registry *services.MasterRegistry, entries []string, log *zap.Logger) error {
	if len(entries) == 0 {
		return nil
	}
	existing, err := registry.List(ctx)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}
	for _, entry := range entries {
		name, role, _ := strings.Cut(entry, ":")
		m, err := registry.Seed(ctx, name, strings.TrimSpace(role))
		if err != nil {
			return err
		}
		log.Info("master seeded", zap.Int64("id", m.ID), zap.String("name", m.Name), zap.String("color", m.Color))
	}
	return nil
}

func run(cfg *config.Config, log *zap.Logger) error {
	store, err := openStore(cfg, log)
	if err != nil {
		return err
	}

	dispatcher := services.NewDispatcher(log, cfg.NotifyTimeout, notificationChannels(cfg, log)...)
	publishers := services.NewFanOut(log, dispatcher)
	if cfg.KafkaEnabled() {
		kafkaPub := services.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic, cfg.NotifyTimeout, log)
		defer func() { _ = kafkaPub.Close() }()
		publishers.Add(kafkaPub)
	}

	registry := services.NewMasterRegistry(store, log)
	ledger := services.NewAppointmentLedger(store, publishers, log)
	stats := services.NewStatsAggregator(store)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := seedMasters(ctx, registry, cfg.SeedMasters, log); err != nil {
		return err
	}

	if cfg.CashReportSpec != "" {
		reporter := services.NewCashReporter(stats, dispatcher, cfg.Location(), log)
		if err := reporter.Start(cfg.CashReportSpec); err != nil {
			return err
		}
		defer reporter.Stop()
	}

	gin.SetMode(gin.ReleaseMode)
	utils.RegisterValidators()
	r := routes.SetupRouter(routes.Deps{
		Config:   cfg,
		Log:      log,
		Registry: registry,
		Ledger:   ledger,
		Stats:    stats,
		Tokens:   utils.NewTokenIssuer(cfg.JWTSecret, cfg.JWTExpiry()),
		Limiter:  utils.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst),
	})
	printRoutes(r, log)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("http server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func printRoutes(r *gin.Engine, log *zap.Logger) {
	for _, route := range r.Routes() {
		log.Debug("route", zap.String("method", route.Method), zap.String("path", route.Path))
	}
}
