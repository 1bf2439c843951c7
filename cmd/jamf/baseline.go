package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"mercator-hq/jamf/pkg/baseline"
	"mercator-hq/jamf/pkg/cli"
	"mercator-hq/jamf/pkg/server"
	"mercator-hq/jamf/pkg/telemetry/health"
	"mercator-hq/jamf/pkg/telemetry/metrics"
)

// exitPolicyFailures is the exit code of a baseline run with failed policies.
const exitPolicyFailures = 2

var baselineFlags struct {
	manifest    string
	dryRun      bool
	schedule    string
	watch       bool
	metricsAddr string
}

var baselineCmd = &cobra.Command{
	Use:   "baseline",
	Short: "Enforce policy package baselines",
	Long: `Enforce a package baseline manifest: every listed package is added to its
policy when missing. Packages already present are left alone and nothing is
ever removed.

Manifest format:
  policies:
    - name: Install Tools
      packages:
        - name: tools-1.2.pkg
        - name: cleanup.pkg
          action: Uninstall

Examples:
  jamf baseline apply --manifest baseline.yaml --dry-run
  jamf baseline run --schedule "@every 15m" --watch --metrics-addr :9102`,
}

var baselineApplyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Enforce the manifest once",
	Long: `Enforce the manifest once and print a report. The command exits with
status 2 when any policy could not be enforced.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app) error {
			path := manifestPath(a)
			if path == "" {
				return errors.New("no manifest: set --manifest or baseline.manifest")
			}
			m, err := baseline.LoadManifest(path)
			if err != nil {
				return cli.NewCommandError("baseline apply", err)
			}

			enforcer := baseline.NewEnforcer(a.client, baseline.EnforcerOptions{
				Logger:   a.logger,
				Metrics:  a.metrics.Baseline(),
				Recorder: a.recorder,
				DryRun:   baselineFlags.dryRun,
			})
			report, err := enforcer.Apply(ctx, m)
			if err != nil {
				return cli.NewCommandError("baseline apply", err)
			}
			if err := render(cmd, reportView(report)); err != nil {
				return err
			}
			if n := report.Failed(); n > 0 {
				return &cli.ExitError{Code: exitPolicyFailures, Message: fmt.Sprintf("%d of %d policies failed", n, len(report.Policies))}
			}
			return nil
		})
	},
}

var baselineRunCmd = &cobra.Command{
	Use:   "run",
	Short: "Enforce the manifest on a schedule",
	Long: `Enforce the manifest immediately and then on a cron schedule until
interrupted. Runs never overlap. With --watch the manifest is reloaded when
the file changes; a manifest that fails to load is ignored and the previous
one stays in effect.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, runBaseline)
	},
}

func init() {
	rootCmd.AddCommand(baselineCmd)
	baselineCmd.AddCommand(baselineApplyCmd, baselineRunCmd)

	baselineCmd.PersistentFlags().StringVarP(&baselineFlags.manifest, "manifest", "m", "", "manifest file (default: baseline.manifest)")
	baselineCmd.PersistentFlags().BoolVar(&baselineFlags.dryRun, "dry-run", false, "report missing packages without writing")
	baselineRunCmd.Flags().StringVar(&baselineFlags.schedule, "schedule", "", "cron schedule (default: baseline.schedule)")
	baselineRunCmd.Flags().BoolVar(&baselineFlags.watch, "watch", false, "reload the manifest when it changes")
	baselineRunCmd.Flags().StringVar(&baselineFlags.metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address")
}

func manifestPath(a *app) string {
	if baselineFlags.manifest != "" {
		return baselineFlags.manifest
	}
	return a.cfg.Baseline.Manifest
}

func runBaseline(ctx context.Context, a *app) error {
	path := manifestPath(a)
	if path == "" {
		return errors.New("no manifest: set --manifest or baseline.manifest")
	}
	schedule := baselineFlags.schedule
	if schedule == "" {
		schedule = a.cfg.Baseline.Schedule
	}

	if baselineFlags.metricsAddr != "" && a.metrics == nil {
		a.metrics = metrics.NewCollector(&a.cfg.Telemetry.Metrics, nil)
	}

	var source baseline.ManifestSource
	if baselineFlags.watch || a.cfg.Baseline.Watch {
		w, err := baseline.NewWatcher(path, a.cfg.Baseline.DebounceInterval, a.logger)
		if err != nil {
			return cli.NewCommandError("baseline run", err)
		}
		defer w.Stop()
		go func() {
			if err := w.Watch(ctx); err != nil {
				a.logger.Error("manifest watcher stopped", "error", err)
			}
		}()
		source = w
	} else {
		m, err := baseline.LoadManifest(path)
		if err != nil {
			return cli.NewCommandError("baseline run", err)
		}
		source = baseline.Static(m)
	}

	enforcer := baseline.NewEnforcer(a.client, baseline.EnforcerOptions{
		Logger:   a.logger,
		Metrics:  a.metrics.Baseline(),
		Recorder: a.recorder,
		DryRun:   baselineFlags.dryRun,
	})
	var last lastRun
	scheduler, err := baseline.NewScheduler(enforcer, source, schedule, func(r baseline.Report, err error) {
		last.record(r, err)
		if _, perr := a.recorder.Prune(ctx, a.cfg.Audit.Retention); perr != nil {
			a.logger.Error("failed to prune audit history", "error", perr)
		}
		if path := a.cfg.Telemetry.Metrics.TextfilePath; path != "" {
			if werr := a.metrics.WriteTextfile(path); werr != nil {
				a.logger.Error("failed to write metrics", "error", werr)
			}
		}
	})
	if err != nil {
		return cli.NewCommandError("baseline run", err)
	}

	if baselineFlags.metricsAddr != "" {
		checker := health.New(2 * time.Second)
		checker.Register("manifest", func(context.Context) error {
			if source.Current() == nil {
				return errors.New("no manifest loaded")
			}
			return nil
		})
		checker.Register("last_run", last.check)

		srv := server.New(server.Config{
			Addr:            baselineFlags.metricsAddr,
			ShutdownTimeout: shutdownTimeout,
			Logger:          a.logger,
		}, metricsMux(a.metrics, checker))
		if _, err := srv.Listen(); err != nil {
			return cli.NewCommandError("baseline run", err)
		}
		served := make(chan struct{})
		go func() {
			defer close(served)
			if err := srv.Start(ctx); err != nil {
				a.logger.Error("metrics server failed", "error", err)
			}
		}()
		defer func() { <-served }()
	}

	scheduler.RunNow(ctx)
	if err := scheduler.Start(ctx); err != nil {
		return cli.NewCommandError("baseline run", err)
	}
	a.logger.Info("baseline enforcement scheduled", "schedule", schedule, "next", scheduler.NextRun())

	<-ctx.Done()
	scheduler.Stop()
	return nil
}

func metricsMux(c *metrics.Collector, checker *health.Checker) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", c.Handler())
	checker.Mount(mux)
	return mux
}

// lastRun remembers the outcome of the most recent enforcement run for the
// readiness probe.
type lastRun struct {
	mu  sync.Mutex
	err error
	ran bool
}

func (l *lastRun) record(r baseline.Report, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.ran = true
	switch {
	case err != nil:
		l.err = err
	case r.Result() == baseline.ResultError:
		l.err = fmt.Errorf("all %d policies failed", len(r.Policies))
	default:
		l.err = nil
	}
}

func (l *lastRun) check(context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.ran {
		return errors.New("no run completed yet")
	}
	return l.err
}

// reportView renders a baseline report for humans.
type reportView baseline.Report

func (r reportView) RenderText(w io.Writer) error {
	report := baseline.Report(r)

	var sb strings.Builder
	if report.DryRun {
		sb.WriteString("dry run: nothing was written\n")
	}
	for _, p := range report.Policies {
		if p.Error != "" {
			fmt.Fprintf(&sb, "%s: error: %s\n", p.Policy, p.Error)
			continue
		}
		fmt.Fprintf(&sb, "%s: added %d, present %d\n", p.Policy, len(p.Added), len(p.Present))
		for _, pkg := range p.Added {
			fmt.Fprintf(&sb, "  + %s (%s)\n", pkg.Name, pkg.Action)
		}
	}
	fmt.Fprintf(&sb, "result: %s (%d added, %d failed)\n", report.Result(), report.Added(), report.Failed())

	_, err := io.WriteString(w, sb.String())
	return err
}
