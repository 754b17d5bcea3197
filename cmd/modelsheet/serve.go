package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/goliatone/go-modelsheet/internal/server"
	"github.com/goliatone/go-modelsheet/internal/watch"
)

func (a *app) serveCmd() *cobra.Command {
	var (
		addr      string
		watchMode bool
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the property sheet editor over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Flags().Changed("addr") {
				a.cfg.Server.Addr = addr
			}
			if cmd.Flags().Changed("watch") {
				a.cfg.Watch = watchMode
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return a.serve(ctx)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :8080)")
	cmd.Flags().BoolVar(&watchMode, "watch", false, "reload model files when they change")
	return cmd
}

func (a *app) serve(ctx context.Context) error {
	st, err := a.openStore()
	if err != nil {
		return err
	}
	gen, err := a.orchestrator(st)
	if err != nil {
		return err
	}
	srv, err := server.New(st, server.WithLogger(a.logger), server.WithOrchestrator(gen))
	if err != nil {
		return err
	}

	if a.cfg.Watch {
		paths, _ := a.modelPaths()
		watcher, err := watch.New(paths, st, watch.WithLogger(a.logger))
		if err != nil {
			return err
		}
		go func() {
			if err := watcher.Run(ctx); err != nil {
				a.logger.Error("model watcher stopped", zap.Error(err))
			}
		}()
	}

	return srv.Run(ctx, server.RunConfig{
		Addr:            a.cfg.Server.Addr,
		ReadTimeout:     a.cfg.Server.ReadTimeout,
		WriteTimeout:    a.cfg.Server.WriteTimeout,
		ShutdownTimeout: a.cfg.Server.ShutdownTimeout,
	})
}
