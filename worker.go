package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	"bookly/config"
	"bookly/cron"
	"bookly/services/notification"
	"bookly/utils"

	"github.com/spf13/cobra"
)

func newWorkerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "worker",
		Short: "Run queued post-commit hooks (HOOKS_MODE=queue)",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			cfg := config.AppConfig
			logger := utils.GetLogger()
			a := &app{cfg: cfg, logger: logger}
			if err := a.buildHooks(); err != nil {
				return err
			}
			if len(a.hooks) == 0 {
				return errors.New("no post-commit hooks are configured")
			}
			return cron.StartHookWorker(ctx, notification.NewRegistry(a.hooks...), logger.Named("worker"))
		},
	}
}
