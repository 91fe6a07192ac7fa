package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the REST API",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		application, cfg, logger, err := newApplication(ctx)
		if err != nil {
			return err
		}
		defer func() {
			if err := application.Close(); err != nil {
				logger.Warn("shutdown cleanup failed", "err", err)
			}
		}()

		if err := application.EnableReports(ctx); err != nil {
			return err
		}

		if viper.GetBool("watch") {
			watcher := application.Watcher()
			if err := watcher.Start(ctx); err != nil {
				return err
			}
			defer func() {
				stopCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
				defer cancel()
				_ = watcher.Stop(stopCtx)
			}()
		}

		logger.Info("citypulse api starting", "addr", cfg.Server.Addr, "city", cfg.City.Name)
		return application.Server().Run(ctx)
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (default :8080 or $PORT)")
	serveCmd.Flags().Bool("watch", false, "also run the periodic conditions watcher")
	_ = viper.BindPFlags(serveCmd.Flags())
}
