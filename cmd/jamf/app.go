package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"mercator-hq/jamf/pkg/api"
	"mercator-hq/jamf/pkg/audit"
	auditstorage "mercator-hq/jamf/pkg/audit/storage"
	"mercator-hq/jamf/pkg/config"
	"mercator-hq/jamf/pkg/security/secrets"
	"mercator-hq/jamf/pkg/telemetry/logging"
	"mercator-hq/jamf/pkg/telemetry/metrics"
	"mercator-hq/jamf/pkg/telemetry/tracing"
)

const shutdownTimeout = 5 * time.Second

// app holds the collaborators shared by commands that talk to the server.
type app struct {
	cfg     *config.Config
	logger  *slog.Logger
	metrics *metrics.Collector
	tracer  *tracing.Tracer
	client  *api.Client

	// store and recorder are nil when audit.path is unset.
	store    audit.Storage
	recorder *audit.Recorder
}

// newApp loads the configuration and wires logging, metrics, tracing, the
// audit history and the API client. Callers must Close the app.
func newApp(cmd *cobra.Command) (*app, error) {
	cfg, err := config.LoadConfigWithEnvOverrides(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := resolveSecrets(cmd.Context(), &cfg.Server); err != nil {
		return nil, err
	}
	if verbose {
		cfg.Telemetry.Logging.Level = "debug"
	}
	if metricsFile != "" {
		cfg.Telemetry.Metrics.Enabled = true
		cfg.Telemetry.Metrics.TextfilePath = metricsFile
	}

	logger, err := logging.New(logging.FromConfig(cfg.Telemetry.Logging, cmd.ErrOrStderr()))
	if err != nil {
		return nil, err
	}
	slog.SetDefault(logger)

	a := &app{cfg: cfg, logger: logger}
	if cfg.Telemetry.Metrics.Enabled {
		a.metrics = metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
	}

	a.tracer, err = tracing.New(cmd.Context(), &cfg.Telemetry.Tracing, Version)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize tracing: %w", err)
	}

	a.client, err = api.NewClient(cfg.Server, api.ClientOptions{
		Logger:  logger,
		Metrics: a.metrics.Requests(),
		Tracer:  a.tracer,
	})
	if err != nil {
		a.tracer.Shutdown(context.Background())
		return nil, err
	}

	if cfg.Audit.Path != "" {
		store, err := auditstorage.NewSQLite(auditstorage.SQLiteConfig{
			Path:    cfg.Audit.Path,
			Driver:  cfg.Audit.Driver,
			WALMode: true,
		})
		if err != nil {
			a.tracer.Shutdown(context.Background())
			return nil, fmt.Errorf("failed to open audit history: %w", err)
		}
		a.store = store
		a.recorder = audit.NewRecorder(store, audit.SourceCLI, logger)
	}

	logger.Debug("client ready", "url", cfg.Server.URL, "metrics", cfg.Telemetry.Metrics.Enabled, "tracing", a.tracer.Enabled())
	return a, nil
}

// resolveSecrets expands env: and file: references in the credentials and
// headers of cfg.
func resolveSecrets(ctx context.Context, cfg *config.ServerConfig) error {
	r := secrets.Default()

	var err error
	if cfg.Password, err = r.Resolve(ctx, cfg.Password); err != nil {
		return fmt.Errorf("failed to resolve server.password: %w", err)
	}
	for name, value := range cfg.Headers {
		resolved, err := r.Resolve(ctx, value)
		if err != nil {
			return fmt.Errorf("failed to resolve header %s: %w", name, err)
		}
		cfg.Headers[name] = resolved
	}
	return nil
}

// Close flushes metrics to the textfile, if configured, shuts tracing down
// and closes the audit history.
func (a *app) Close() error {
	var errs []error
	if path := a.cfg.Telemetry.Metrics.TextfilePath; path != "" {
		errs = append(errs, a.metrics.WriteTextfile(path))
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := a.tracer.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("failed to shut down tracing: %w", err))
	}
	if a.store != nil {
		errs = append(errs, a.store.Close())
	}
	return errors.Join(errs...)
}

// withApp runs fn with a ready app and closes it afterwards.
func withApp(cmd *cobra.Command, fn func(ctx context.Context, a *app) error) (err error) {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := a.Close(); cerr != nil {
			a.logger.Error("shutdown failed", "error", cerr)
			if err == nil {
				err = cerr
			}
		}
	}()
	return fn(cmd.Context(), a)
}
