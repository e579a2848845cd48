package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"showcase_ingest/internal/logger"
	"showcase_ingest/internal/server"
)

func newServeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the last run's diagnostics and the thumbnail tree",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			srv := server.NewServer(cfg)

			errCh := make(chan error, 1)
			go func() {
				logger.WithField("addr", cfg.ServerAddr).Info("report server listening")
				errCh <- srv.Start()
			}()

			sig := make(chan os.Signal, 1)
			signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
			defer signal.Stop(sig)

			select {
			case err := <-errCh:
				return err
			case <-sig:
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return srv.Stop(shutdownCtx)
		},
	}
}
