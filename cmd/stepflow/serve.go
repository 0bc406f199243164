package main

import (
	"context"
	"errors"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/aretw0/stepflow"
	"github.com/aretw0/stepflow/internal/cli"
	httpadapter "github.com/aretw0/stepflow/pkg/adapters/http"
	"github.com/aretw0/stepflow/pkg/observability"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Starts the validation API. Flows saved through the API are kept in the
configured store (memory, file or redis). Request bodies are checked
against the embedded OpenAPI document.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		metrics := observability.NewMetrics(reg)

		cfg, logger, eng, err := setup(stepflow.WithHooks(metrics.Hooks()))
		if err != nil {
			return err
		}
		if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
			cfg.Server.Addr = addr
		}

		backend, err := cli.OpenBackend(cfg.Store)
		if err != nil {
			return err
		}
		defer backend.Close()

		handlerOpts := []httpadapter.Option{
			httpadapter.WithStore(backend.Store),
			httpadapter.WithLogger(logger),
		}
		if backend.Locker != nil {
			handlerOpts = append(handlerOpts, httpadapter.WithLocker(backend.Locker, httpadapter.DefaultLockTTL))
		}
		if cfg.Server.Metrics {
			handlerOpts = append(handlerOpts, httpadapter.WithMetrics(reg))
		}
		handler, err := httpadapter.NewHandler(eng, handlerOpts...)
		if err != nil {
			return err
		}

		srv := &http.Server{
			Addr:    cfg.Server.Addr,
			Handler: handler,
		}

		// Channel to listen for errors coming from the listener.
		serverErrors := make(chan error, 1)
		go func() {
			logger.Info("starting stepflow server", "addr", srv.Addr, "store", cfg.Store.Backend)
			serverErrors <- srv.ListenAndServe()
		}()

		ctx := cli.NewSignalContext(context.Background())
		defer ctx.Cancel()

		select {
		case err := <-serverErrors:
			if !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		case <-ctx.Done():
			logger.Info("start shutdown", "signal", ctx.Signal())
		}

		// Give outstanding requests a deadline for completion.
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("graceful shutdown did not complete", "timeout", cfg.Server.ShutdownTimeout, "err", err)
			if err := srv.Close(); err != nil {
				return err
			}
		}
		logger.Info("stepflow server stopped gracefully")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("addr", "", "Address to listen on (overrides server.addr)")
}
