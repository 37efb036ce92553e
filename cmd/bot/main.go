package main

import (
	"context"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"slotbot/internal/bot"
	"slotbot/internal/config"
	"slotbot/internal/events"
	"slotbot/internal/export"
	"slotbot/internal/history"
	"slotbot/internal/logging"
	"slotbot/internal/metrics"
	"slotbot/internal/models"
	"slotbot/internal/repository"
	"slotbot/internal/service"
	"slotbot/internal/storage"
	"slotbot/internal/worker"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	cfg, logger, closer, err := loadConfigAndLogger()
	if err != nil {
		return err
	}
	if closer != nil {
		defer (func(c io.Closer) { _ = c.Close() })(closer)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := storage.NewCalendarStore(cfg.Storage.Path, logger)
	if err != nil {
		logger.Error().Err(err).Msg("Ошибка инициализации хранилища расписания")
		return err
	}

	pending := initPendingRegistry(ctx, cfg, logger)
	eventBus := events.NewBus()

	bookingService := service.NewBookingService(store, pending, eventBus, logger)
	adminService := service.NewAdminService(store, cfg.Booking.AdminID, logger)

	journal, err := initHistory(cfg, eventBus, logger)
	if err != nil {
		return err
	}
	if journal != nil {
		defer journal.Close()
	}

	var m *metrics.Metrics
	if cfg.Monitoring.PrometheusEnabled {
		m = metrics.New()
		go metrics.Serve(cfg.Monitoring.PrometheusPort, logger)
	}

	botAPI, err := tgbotapi.NewBotAPI(cfg.Telegram.BotToken)
	if err != nil {
		logger.Error().Err(err).Msg("Ошибка создания BotAPI")
		return err
	}
	botAPI.Debug = cfg.Telegram.Debug
	sender := bot.NewWrapper(botAPI)

	notifier := worker.NewNotifier(sender, cfg.Booking.AdminID, worker.DefaultRetryPolicy(), m, logger)
	notifier.Subscribe(eventBus)
	go notifier.Start(ctx)

	initSheetsMirror(ctx, cfg, eventBus, adminService, logger)

	telegramBot := bot.NewBot(sender, cfg, bookingService, adminService, pending, journal, m, logger)

	logger.Info().Msg("Бот запущен...")
	telegramBot.Start(ctx)

	logger.Info().Msg("Shutdown complete.")
	return nil
}

func loadConfigAndLogger() (*config.Config, *zerolog.Logger, io.Closer, error) {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, nil, err
	}

	baseLogger, closer, err := logging.New(cfg.Logging, cfg.App)
	if err != nil {
		return nil, nil, nil, err
	}
	logger := baseLogger.With().Str("component", "bot-main").Logger()

	return cfg, &logger, closer, nil
}

func initPendingRegistry(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) *repository.FailoverPendingRegistry {
	ttl := time.Duration(cfg.Booking.PendingTTLSeconds) * time.Second

	var primary *repository.RedisPendingRegistry
	if cfg.Redis.Address != "" {
		redisClient := repository.NewRedisClient(cfg.Redis)
		if errPing := repository.Ping(ctx, redisClient); errPing != nil {
			logger.Warn().Err(errPing).Msg("Redis unavailable")
		}
		primary = repository.NewRedisPendingRegistry(redisClient, ttl)
	} else {
		primary = repository.NewRedisPendingRegistry(nil, ttl)
	}

	fallback := repository.NewMemoryPendingRegistry(ttl)
	return repository.NewFailoverPendingRegistry(primary, fallback, logger)
}

func initHistory(cfg *config.Config, bus *events.Bus, logger *zerolog.Logger) (*history.Journal, error) {
	if !cfg.History.Enabled {
		return nil, nil
	}

	journal, err := history.NewJournal(cfg.History.Path, logger)
	if err != nil {
		logger.Error().Err(err).Msg("Ошибка инициализации журнала истории")
		return nil, err
	}
	journal.Subscribe(bus)
	return journal, nil
}

func initSheetsMirror(ctx context.Context, cfg *config.Config, bus *events.Bus, admin *service.AdminService, logger *zerolog.Logger) {
	if cfg.Google.CredentialsFile == "" || cfg.Google.BookingsSpreadsheetID == "" {
		return
	}

	mirror, err := export.NewSheetsMirror(ctx, cfg.Google.CredentialsFile, cfg.Google.BookingsSpreadsheetID, logger)
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to initialize Google Sheets mirror")
		return
	}
	if err := mirror.TestConnection(ctx); err != nil {
		logger.Warn().Err(err).Msg("Google Sheets connection test failed")
		return
	}

	mirror.Subscribe(bus, func(ctx context.Context) ([]models.Appointment, error) {
		return admin.ListAllBookings(ctx, cfg.Booking.AdminID)
	})
	logger.Info().Msg("Google Sheets mirror initialized")
}
