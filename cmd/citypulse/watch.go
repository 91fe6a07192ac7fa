package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Periodically aggregate conditions and publish them to Telegram and Kafka",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		application, cfg, logger, err := newApplication(ctx)
		if err != nil {
			return err
		}
		defer application.Close()

		if once, _ := cmd.Flags().GetBool("once"); once {
			application.Watcher().RunOnce(ctx, time.Now())
			return nil
		}

		watcher := application.Watcher()
		if err := watcher.Start(ctx); err != nil {
			return err
		}
		logger.Info("conditions watcher started", "interval", cfg.Watcher.Interval.String())

		<-ctx.Done()

		stopCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return watcher.Stop(stopCtx)
	},
}

func init() {
	watchCmd.Flags().Bool("once", false, "aggregate and publish a single snapshot, then exit")
}
