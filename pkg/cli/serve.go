// SPDX-FileCopyrightText: 2026 Deutsche Telekom AG
//
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/telekom/form-relay/pkg/api"
	"github.com/telekom/form-relay/pkg/config"
	"github.com/telekom/form-relay/pkg/mail"
	"github.com/telekom/form-relay/pkg/metrics"
	"github.com/telekom/form-relay/pkg/system"
	"github.com/telekom/form-relay/pkg/version"
)

const metricsReadHeaderTimeout = 10 * time.Second

type serveOptions struct {
	envFile            string
	debug              bool
	listenAddress      string
	metricsBindAddress string
}

func NewServeCommand() *cobra.Command {
	opts := &serveOptions{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the form relay HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.load(cmd)
			if err != nil {
				return err
			}
			log, err := system.NewLogger(cfg.Debug)
			if err != nil {
				return fmt.Errorf("creating logger: %w", err)
			}
			defer func() { _ = log.Sync() }()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return Run(ctx, cfg, log)
		},
	}

	// Flags fall back to the environment so the binary works unchanged in a container.
	flags := cmd.Flags()
	flags.StringVar(&opts.envFile, "env-file", getEnvString("ENV_FILE", config.DefaultEnvFile), "Optional dotenv file read before the environment")
	flags.BoolVar(&opts.debug, "debug", false, "Enable debug level logging (overrides DEBUG)")
	flags.StringVar(&opts.listenAddress, "listen-address", "", "HTTP listen address (overrides LISTEN_ADDRESS)")
	flags.StringVar(&opts.metricsBindAddress, "metrics-bind-address", "", "Metrics listen address, \"0\" disables (overrides METRICS_BIND_ADDRESS)")

	return cmd
}

// load builds and validates the configuration. Explicitly set flags win over
// the environment.
func (o *serveOptions) load(cmd *cobra.Command) (config.Config, error) {
	cfg, err := config.Load(o.envFile)
	if err != nil {
		return config.Config{}, err
	}
	flags := cmd.Flags()
	if flags.Changed("debug") {
		cfg.Debug = o.debug
	}
	if flags.Changed("listen-address") {
		cfg.Server.ListenAddress = o.listenAddress
	}
	if flags.Changed("metrics-bind-address") {
		cfg.Metrics.BindAddress = o.metricsBindAddress
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// Run binds the HTTP and metrics listeners and serves until ctx is cancelled.
func Run(ctx context.Context, cfg config.Config, log *zap.SugaredLogger) error {
	ln, err := net.Listen("tcp", cfg.Server.ListenAddress)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", cfg.Server.ListenAddress, err)
	}
	var metricsLn net.Listener
	if cfg.MetricsEnabled() {
		if metricsLn, err = net.Listen("tcp", cfg.Metrics.BindAddress); err != nil {
			_ = ln.Close()
			return fmt.Errorf("listening on %s for metrics: %w", cfg.Metrics.BindAddress, err)
		}
	}
	return run(ctx, cfg, log, ln, metricsLn)
}

// run serves on the given listeners. A nil metricsLn disables the metrics
// endpoint. When either server fails the other one is shut down as well.
func run(ctx context.Context, cfg config.Config, log *zap.SugaredLogger, ln, metricsLn net.Listener) error {
	log.Infow("Starting formrelay", "version", version.Version, "commit", version.GitCommit)
	cfg.Print(log)

	sender := mail.NewSender(cfg, log)
	server := api.NewServer(log.Desugar(), cfg)
	if err := server.RegisterAll([]api.APIController{
		api.NewSubmissionController(log, cfg, sender),
		api.NewHealthController(),
	}); err != nil {
		return fmt.Errorf("registering controllers: %w", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	metricsDone := make(chan error, 1)
	if metricsLn != nil {
		go func() {
			err := serveMetrics(ctx, metricsLn, cfg.Server.ShutdownTimeout, log)
			if err != nil {
				log.Errorw("Metrics server failed", "error", err)
				cancel()
			}
			metricsDone <- err
		}()
	} else {
		log.Info("Metrics endpoint disabled")
		metricsDone <- nil
	}

	err := server.Serve(ctx, ln)
	if err != nil {
		log.Errorw("HTTP server failed", "error", err)
	}
	cancel()
	if merr := <-metricsDone; err == nil {
		err = merr
	}
	if err == nil {
		log.Info("Shutdown complete")
	}
	return err
}

func serveMetrics(ctx context.Context, ln net.Listener, shutdownTimeout time.Duration, log *zap.SugaredLogger) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	srv := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: metricsReadHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		err := srv.Serve(ln)
		if errors.Is(err, http.ErrServerClosed) {
			err = nil
		}
		errCh <- err
	}()
	log.Infow("Metrics server listening", "address", ln.Addr().String())

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}

func getEnvString(key, defaultVal string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return defaultVal
}
