package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"

	"github.com/guttosm/tradeflow/config"
	"github.com/guttosm/tradeflow/internal/api"
	"github.com/guttosm/tradeflow/internal/domain/models"
	"github.com/guttosm/tradeflow/internal/lifecycle"
	"github.com/guttosm/tradeflow/internal/logger"
	"github.com/guttosm/tradeflow/internal/notify"
	"github.com/guttosm/tradeflow/internal/storage"
)

// Components are the wired pieces shared by the API and import modes.
type Components struct {
	Service *lifecycle.Service
	Hub     *notify.Hub // nil when websockets are disabled
	Checks  map[string]api.Pinger

	closers []func() error
}

// Close releases every resource in reverse construction order.
func (c *Components) Close() error {
	var errs []error
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	c.closers = nil
	return errors.Join(errs...)
}

func (c *Components) onClose(fn func() error) {
	c.closers = append(c.closers, fn)
}

// Build wires stores, notifiers and the lifecycle service from cfg.
//
// Responsibilities:
//   - Opens the trade and settings stores selected by STORE_DRIVER
//     (postgres also applies the embedded migrations).
//   - Seeds platform settings from config.
//   - Fans lifecycle events out to the log, the websocket hub and the
//     optional Kafka and Telegram sinks.
//
// On error every resource opened so far is released.
func Build(cfg config.Config) (*Components, error) {
	c := &Components{Checks: map[string]api.Pinger{}}

	defaults := models.PlatformSettings{
		FeePercent:              cfg.Platform.FeePercent,
		InsuranceEnabled:        cfg.Platform.InsuranceEnabled,
		InsurancePremiumPercent: cfg.Platform.InsurancePremiumPercent,
		EscrowWallet:            cfg.Platform.EscrowWallet,
		PlatformWallet:          cfg.Platform.PlatformWallet,
	}

	trades, settings, err := c.openStores(cfg, defaults)
	if err != nil {
		_ = c.Close()
		return nil, err
	}

	notifier, err := c.buildNotifier(cfg)
	if err != nil {
		_ = c.Close()
		return nil, err
	}

	c.Service = lifecycle.NewService(trades, settings, notifier, lifecycle.Options{
		DocumentProviders: cfg.Lifecycle.DocumentProviders,
		KeyCodeLength:     cfg.Lifecycle.KeyCodeLength,
	})
	return c, nil
}

func (c *Components) openStores(cfg config.Config, defaults models.PlatformSettings) (storage.TradeStore, storage.SettingsStore, error) {
	log := logger.For("app")

	switch cfg.Store.Driver {
	case config.DriverPostgres:
		conn, err := postgresOpener(cfg)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize postgres: %w", err)
		}
		c.onClose(conn.Close)
		if err := migrator(conn); err != nil {
			return nil, nil, fmt.Errorf("failed to migrate postgres: %w", err)
		}
		c.Checks["postgres"] = conn.PingContext
		dbx := sqlx.NewDb(conn, "postgres")
		log.Info().Str("driver", cfg.Store.Driver).Str("host", cfg.Postgres.Host).Msg("trade store ready")
		return storage.NewPostgresTradeStore(dbx), storage.NewPostgresSettingsStore(dbx, defaults), nil

	case config.DriverFile:
		fs, err := storage.OpenFileTradeStore(cfg.Store.FilePath)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open trade file: %w", err)
		}
		log.Info().Str("driver", cfg.Store.Driver).Str("path", fs.Path()).Msg("trade store ready")
		return fs, fs.SettingsStore(defaults), nil

	case config.DriverMemory, "":
		log.Info().Str("driver", config.DriverMemory).Msg("trade store ready")
		return storage.NewMemoryTradeStore(), storage.NewMemorySettingsStore(defaults), nil
	}
	return nil, nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
}

func (c *Components) buildNotifier(cfg config.Config) (notify.Notifier, error) {
	log := logger.For("app")
	sinks := notify.Multi{notify.LogNotifier{}}

	if cfg.Notify.WebsocketEnabled {
		c.Hub = notify.NewHub()
		hub := c.Hub
		c.onClose(func() error { hub.Close(); return nil })
		sinks = append(sinks, hub)
	}

	if len(cfg.Notify.KafkaBrokers) > 0 {
		k := kafkaCtor(cfg.Notify.KafkaBrokers, cfg.Notify.KafkaTopic)
		c.onClose(k.Close)
		sinks = append(sinks, k)
		log.Info().Strs("brokers", cfg.Notify.KafkaBrokers).Str("topic", cfg.Notify.KafkaTopic).Msg("kafka notifier enabled")
	}

	if cfg.Notify.TelegramToken != "" {
		tg, err := telegramCtor(cfg.Notify.TelegramToken, cfg.Notify.TelegramChatID,
			notify.EventDepositMade, notify.EventDocumentsUploaded, notify.EventTradeClaimed, notify.EventTradeCancelled)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize telegram: %w", err)
		}
		sinks = append(sinks, tg)
		log.Info().Int64("chat_id", cfg.Notify.TelegramChatID).Msg("telegram notifier enabled")
	}

	return sinks, nil
}

// Constructor indirections; tests swap them to avoid network access.
var (
	kafkaCtor = func(brokers []string, topic string) closingNotifier {
		return notify.NewKafkaNotifier(brokers, topic)
	}
	telegramCtor = func(token string, chatID int64, types ...notify.EventType) (notify.Notifier, error) {
		return notify.NewTelegramNotifier(token, chatID, types...)
	}
)

type closingNotifier interface {
	notify.Notifier
	Close() error
}

// InitializeApp sets up all application dependencies and returns
// a fully configured Gin router, a cleanup function for graceful shutdown,
// and any error encountered during initialization.
//
// Responsibilities:
//   - Wires stores, notifiers and the lifecycle service via Build().
//   - Creates the HTTP handlers and the Gin router with all API routes.
//   - Registers health and readiness probes.
//   - Provides a cleanup function to close resources (DB, hub, Kafka writer).
func InitializeApp() (*gin.Engine, func(), error) {
	cfg := config.AppConfig

	comps, err := Build(cfg)
	if err != nil {
		return nil, nil, err
	}

	var stream *api.StreamHandler
	if comps.Hub != nil {
		stream = api.NewStreamHandler(comps.Hub)
	}

	router := api.NewRouter(api.NewHandler(comps.Service), stream, api.RouterConfig{
		AdminUserIDs:   cfg.Server.AdminUserIDs,
		RateLimitRPS:   cfg.Server.RateLimitRPS,
		RateLimitBurst: cfg.Server.RateLimitBurst,
	})

	checks := comps.Checks
	checks["settings"] = func(ctx context.Context) error {
		_, err := comps.Service.Settings(ctx)
		return err
	}
	api.NewHealthHandler(checks).Register(router)

	cleanup := func() {
		if err := comps.Close(); err != nil {
			l := logger.For("app")
			l.Warn().Err(err).Msg("cleanup finished with errors")
		}
	}

	return router, cleanup, nil
}
