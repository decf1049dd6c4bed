package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mygenetics/reportnav/internal/cli"
	httpAdapter "github.com/mygenetics/reportnav/pkg/adapters/http"
	"github.com/mygenetics/reportnav/pkg/observability"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 5 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long:  `Starts the navigator in server mode, exposing a JSON API and Prometheus metrics over HTTP.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := setup(cmd, "")
		if err != nil {
			return err
		}
		if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
			cfg.HTTPAddr = addr
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		metrics := observability.NewMetrics()
		bot, res, err := cli.BuildBot(ctx, cfg, logger, metrics)
		if err != nil {
			return err
		}
		defer func() {
			if err := res.Close(); err != nil {
				logger.Error().Err(err).Msg("failed to release resources")
			}
		}()

		srv := &http.Server{
			Addr: cfg.HTTPAddr,
			Handler: httpAdapter.NewHandler(bot,
				httpAdapter.WithLogger(logger),
				httpAdapter.WithMetrics(metrics),
			),
			ReadHeaderTimeout: 10 * time.Second,
		}

		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			logger.Info().
				Str("addr", srv.Addr).
				Str("graph", cfg.GraphFile).
				Str("session_backend", cfg.SessionBackend).
				Str("content_backend", cfg.ContentBackend).
				Msg("starting reportnav server")
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			logger.Info().Msg("shutting down")

			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Warn().Err(err).Dur("timeout", shutdownTimeout).Msg("graceful shutdown did not complete")
				return srv.Close()
			}
			return nil
		})

		if err := g.Wait(); err != nil {
			return err
		}
		logger.Info().Msg("server stopped gracefully")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("addr", "", "Address to listen on (default from REPORTNAV_HTTP_ADDR)")
}
