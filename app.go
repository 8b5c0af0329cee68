package main

import (
	"context"
	"fmt"
	"time"

	"bookly/config"
	"bookly/cron"
	"bookly/database"
	bookingRepo "bookly/database/repository/booking"
	countersRepo "bookly/database/repository/counters"
	"bookly/services/availability"
	"bookly/services/calendar"
	"bookly/services/chat"
	"bookly/services/conversation"
	"bookly/services/extraction"
	"bookly/services/guard"
	"bookly/services/notification"
	"bookly/services/tasks"
	"bookly/utils"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// Storage backends accepted by STORE_BACKEND.
const (
	backendMongo = "mongo"
	backendSQL   = "sql"
)

// app holds the wired services shared by the serve, worker and chat commands.
type app struct {
	cfg      config.Config
	logger   *zap.Logger
	bookings bookingRepo.BookingRepository
	counters countersRepo.CounterStore
	pruner   countersRepo.Pruner
	resolver *availability.Resolver
	auth     *calendar.Authorizer
	hooks    []notification.Hook
	turns    *chat.Service
	health   map[string]utils.Pinger
	closers  []func() error
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.logger.Warn("Shutdown step failed", zap.Error(err))
		}
	}
}

// buildApp connects the configured stores and wires the conversation.
func buildApp(ctx context.Context, cfg config.Config, logger *zap.Logger) (*app, error) {
	a := &app{cfg: cfg, logger: logger, health: map[string]utils.Pinger{}}
	if err := a.openStores(ctx); err != nil {
		a.Close()
		return nil, err
	}

	loc, err := time.LoadLocation(cfg.BookingTimezone)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("booking timezone: %w", err)
	}
	a.resolver, err = availability.NewResolver(a.bookings, cfg.Slots(), loc, nil)
	if err != nil {
		a.Close()
		return nil, err
	}

	extractor, err := a.newExtractor(ctx)
	if err != nil {
		a.Close()
		return nil, err
	}

	if err := a.buildHooks(); err != nil {
		a.Close()
		return nil, err
	}

	machine := conversation.NewMachine(conversation.Deps{
		Extractor: extractor,
		Resolver:  a.resolver,
		Bookings:  a.bookings,
		Counters:  a.counters,
		Hooks:     a.newDispatcher(),
		Logger:    logger.Named("conversation"),
	}, conversation.Options{
		MaxBookingsPerDay: cfg.BookingMaxPerDay,
		CollectDetails:    cfg.BookingCollectDetails,
		DefaultTitle:      cfg.BookingTitle,
	})
	g := guard.NewGuard(a.counters, cfg.ChatMaxRequestsPerMin, nil, logger.Named("guard"))
	a.turns = chat.NewService(g, machine, logger.Named("chat"))
	return a, nil
}

func (a *app) openStores(ctx context.Context) error {
	switch a.cfg.StoreBackend {
	case backendMongo, "":
		client, err := database.ConnectMongo(ctx, a.cfg.DatabaseURL)
		if err != nil {
			return err
		}
		a.closers = append(a.closers, func() error {
			return client.Disconnect(context.Background())
		})
		db := client.Database(a.cfg.DatabaseName)
		if err := bookingRepo.EnsureIndexes(ctx, db); err != nil {
			return fmt.Errorf("ensure booking indexes: %w", err)
		}
		a.bookings = bookingRepo.NewMongoBookingRepo(db)
		a.counters = countersRepo.NewRedisCounterStore(utils.GetCacheClient())
		a.health["mongo"] = utils.PingFunc(func(ctx context.Context) error {
			return client.Ping(ctx, nil)
		})
		a.health["redis"] = utils.PingFunc(func(ctx context.Context) error {
			return utils.GetCacheClient().Ping(ctx).Err()
		})
	case backendSQL:
		db, err := database.OpenSQL(a.cfg.SQLDriver, a.cfg.SQLDSN)
		if err != nil {
			return err
		}
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		if a.cfg.SQLDriver == "sqlite" || a.cfg.SQLDriver == "" {
			// one writer keeps in-memory databases shared and avoids SQLITE_BUSY
			sqlDB.SetMaxOpenConns(1)
		}
		a.closers = append(a.closers, sqlDB.Close)
		if err := database.AutoMigrate(db); err != nil {
			return err
		}
		store := countersRepo.NewGormCounterStore(db)
		a.bookings = bookingRepo.NewGormBookingRepo(db)
		a.counters = store
		a.pruner = store
		a.health["sql"] = utils.PingFunc(sqlDB.PingContext)
	default:
		return fmt.Errorf("unknown STORE_BACKEND %q", a.cfg.StoreBackend)
	}
	return nil
}

func (a *app) newExtractor(ctx context.Context) (extraction.Extractor, error) {
	if a.cfg.Extractor != extraction.KindGemini {
		return extraction.New(a.cfg.Extractor, nil)
	}
	client, err := extraction.NewGeminiClient(ctx, a.cfg.GeminiAPIKey, a.cfg.GeminiModel)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, client.Close)
	return extraction.New(extraction.KindGemini, client)
}

// buildHooks enables every post-commit hook whose credentials are configured.
func (a *app) buildHooks() error {
	if a.cfg.GoogleClientID != "" {
		store := calendar.NewRedisTokenStore(utils.GetCacheClient())
		a.auth = calendar.NewAuthorizer(a.cfg.GoogleClientID, a.cfg.GoogleClientSecret, a.cfg.GoogleRedirectURL, store)
		a.hooks = append(a.hooks, calendar.NewSyncHook(a.auth, a.logger.Named("calendar")))
	}
	if a.cfg.SlackWebhookURL != "" {
		a.hooks = append(a.hooks, notification.NewSlackHook(a.cfg.SlackWebhookURL))
	}
	if a.cfg.DiscordWebhookID != "" {
		h, err := notification.NewDiscordHook(a.cfg.DiscordWebhookID, a.cfg.DiscordWebhookToken)
		if err != nil {
			return err
		}
		a.hooks = append(a.hooks, h)
	}
	return nil
}

func (a *app) newDispatcher() notification.Dispatcher {
	if len(a.hooks) == 0 {
		return notification.NopDispatcher{}
	}
	switch a.cfg.HooksMode {
	case "queue":
		client := asynq.NewClient(cron.QueueRedisOpt())
		a.closers = append(a.closers, client.Close)
		names := make([]string, 0, len(a.hooks))
		for _, h := range a.hooks {
			names = append(names, h.Name())
		}
		return tasks.NewQueueDispatcher(client, a.logger.Named("hooks"), names...)
	case "off":
		return notification.NopDispatcher{}
	}
	d := notification.NewInlineDispatcher(a.logger.Named("hooks"), 15*time.Second, a.hooks...)
	a.closers = append(a.closers, func() error { d.Wait(); return nil })
	return d
}
