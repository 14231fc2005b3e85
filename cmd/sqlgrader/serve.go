package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/joacominatel/sqlgrader/internal/api"
	"github.com/joacominatel/sqlgrader/internal/app"
)

const shutdownTimeout = 15 * time.Second

type serveOptions struct {
	addr string
}

func newServeCmd(rootFlags *rootFlags) *cobra.Command {
	opts := &serveOptions{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the grading HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, rootFlags, opts)
		},
	}

	cmd.Flags().StringVar(&opts.addr, "addr", "", "Listen address (overrides server.addr)")

	return cmd
}

func runServe(cmd *cobra.Command, rootFlags *rootFlags, opts *serveOptions) error {
	env, err := rootFlags.load(cmd)
	if err != nil {
		return err
	}
	if opts.addr != "" {
		env.cfg.Server.Addr = opts.addr
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	svc, err := app.Open(ctx, env.cfg, env.log)
	if err != nil {
		return err
	}
	defer svc.Close()

	srv := api.NewServer(svc, env.cfg.Server, env.log)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		env.log.With("addr", srv.Addr).Info("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		env.log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
