package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"bookly/bot"
	"bookly/config"
	"bookly/cron"
	"bookly/handlers"
	"bookly/middleware"
	"bookly/routes"
	"bookly/services/sessions"
	"bookly/utils"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const telegramSessionTTL = 24 * time.Hour

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and, when configured, the Telegram bot",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(config.AppConfig, utils.GetLogger())
		},
	}
}

func newRouter(a *app) *gin.Engine {
	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(a.logger))
	router.Use(utils.ErrorHandler())
	router.Use(middleware.RateLimitMiddleware(a.cfg.MaxRequestsPerMin))

	var calHandler *handlers.CalendarHandler
	if a.auth.Configured() {
		calHandler = handlers.NewCalendarHandler(a.auth)
	}
	hb := handlers.NewHandlerBundle(
		handlers.NewChatHandler(a.turns),
		handlers.NewAdminHandler(a.bookings, a.resolver),
		calHandler,
	)
	routes.RegisterRoutes(router, hb, a.cfg.Origins())
	return router
}

func runServe(cfg config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := buildApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	utils.StartHealthMonitor(ctx, a.health)

	if a.pruner != nil {
		c, err := cron.StartPruner(a.pruner, cfg.PruneSchedule, a.resolver.Now, logger.Named("pruner"))
		if err != nil {
			return err
		}
		defer c.Stop()
	}

	if cfg.TelegramToken != "" {
		store := sessions.NewRedisStore(utils.GetSessionClient(), telegramSessionTTL)
		b, err := bot.New(cfg.TelegramToken, a.turns, store, logger.Named("telegram"))
		if err != nil {
			return err
		}
		go func() {
			if err := b.Start(ctx); err != nil {
				logger.Error("Telegram bot stopped", zap.Error(err))
			}
		}()
	}

	port := cfg.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: newRouter(a),
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	logger.Sugar().Info("serve: server is shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	logger.Sugar().Info("serve: server stopped gracefully")
	return nil
}
