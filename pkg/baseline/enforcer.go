package baseline

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"mercator-hq/jamf/pkg/api"
	"mercator-hq/jamf/pkg/audit"
	"mercator-hq/jamf/pkg/jamf"
	"mercator-hq/jamf/pkg/telemetry/metrics"
	"mercator-hq/jamf/pkg/tree"
)

// Run results recorded in metrics and reports.
const (
	ResultOK      = "ok"
	ResultPartial = "partial"
	ResultError   = "error"
)

// PolicyResult is the outcome of enforcing one policy.
type PolicyResult struct {
	Policy  string        `json:"policy" yaml:"policy"`
	ID      string        `json:"id,omitempty" yaml:"id,omitempty"`
	Added   []PackageSpec `json:"added,omitempty" yaml:"added,omitempty"`
	Present []PackageSpec `json:"present,omitempty" yaml:"present,omitempty"`
	Error   string        `json:"error,omitempty" yaml:"error,omitempty"`

	err error
}

// Err returns the failure of the policy, or nil.
func (r PolicyResult) Err() error { return r.err }

// Report summarizes an enforcement run.
type Report struct {
	Started  time.Time      `json:"started" yaml:"started"`
	Finished time.Time      `json:"finished" yaml:"finished"`
	DryRun   bool           `json:"dry_run" yaml:"dry_run"`
	Policies []PolicyResult `json:"policies" yaml:"policies"`
}

// Added returns the number of packages added across all policies.
func (r Report) Added() int {
	n := 0
	for _, p := range r.Policies {
		n += len(p.Added)
	}
	return n
}

// Failed returns the number of policies that could not be enforced.
func (r Report) Failed() int {
	n := 0
	for _, p := range r.Policies {
		if p.err != nil || p.Error != "" {
			n++
		}
	}
	return n
}

// Result classifies the run as ResultOK, ResultPartial or ResultError.
func (r Report) Result() string {
	failed := r.Failed()
	switch {
	case failed == 0:
		return ResultOK
	case failed < len(r.Policies):
		return ResultPartial
	default:
		return ResultError
	}
}

// EnforcerOptions carries the optional collaborators of an Enforcer.
type EnforcerOptions struct {
	// Logger defaults to slog.Default().
	Logger *slog.Logger

	// Metrics records runs. May be nil.
	Metrics *metrics.BaselineMetrics

	// Recorder receives every package the enforcer adds. May be nil.
	Recorder *audit.Recorder

	// DryRun reports missing packages without writing policies.
	DryRun bool
}

// Enforcer adds missing manifest packages to policies.
type Enforcer struct {
	api      api.API
	logger   *slog.Logger
	metrics  *metrics.BaselineMetrics
	recorder *audit.Recorder
	dryRun   bool
}

// NewEnforcer creates an Enforcer writing through a.
func NewEnforcer(a api.API, opts EnforcerOptions) *Enforcer {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Enforcer{
		api:      a,
		logger:   logger.With("component", "baseline"),
		metrics:  opts.Metrics,
		recorder: opts.Recorder.WithSource(audit.SourceBaseline),
		dryRun:   opts.DryRun,
	}
}

// Apply enforces every policy of m in order. A package already present with
// the same action is left alone. Failures are recorded per policy and do not
// stop the run; only context cancellation does, in which case the partial
// report is returned together with the context error.
func (e *Enforcer) Apply(ctx context.Context, m *Manifest) (Report, error) {
	report := Report{Started: time.Now(), DryRun: e.dryRun}

	for _, pb := range m.Policies {
		if err := ctx.Err(); err != nil {
			report.Finished = time.Now()
			return report, err
		}
		report.Policies = append(report.Policies, e.applyPolicy(ctx, pb))
	}

	report.Finished = time.Now()
	e.metrics.RecordRun(report.Result(), report.Added(), report.Failed(), report.Finished)
	e.logger.InfoContext(ctx, "baseline run completed",
		"result", report.Result(),
		"policies", len(report.Policies),
		"added", report.Added(),
		"failed", report.Failed(),
		"dry_run", e.dryRun,
		"duration", report.Finished.Sub(report.Started),
	)
	return report, nil
}

func (e *Enforcer) applyPolicy(ctx context.Context, pb PolicyBaseline) PolicyResult {
	res := PolicyResult{Policy: pb.Label()}
	fail := func(err error) PolicyResult {
		res.err = err
		res.Error = err.Error()
		e.logger.WarnContext(ctx, "baseline policy failed", "policy", res.Policy, "error", err)
		return res
	}

	p, err := jamf.GetPolicy(ctx, e.api, pb.Selector())
	if err != nil {
		return fail(err)
	}
	res.ID = p.ID()

	pkgs, err := p.Packages()
	if err != nil {
		return fail(err)
	}
	present := make(map[PackageSpec]bool, pkgs.Len())
	for _, v := range pkgs.Items() {
		if n, ok := v.(*tree.Node); ok {
			name, _ := n.Text("name")
			action, _ := n.Text("action")
			present[PackageSpec{Name: name, Action: action}] = true
		}
	}

	for _, spec := range pb.Packages {
		if present[spec] {
			res.Present = append(res.Present, spec)
			continue
		}
		if e.dryRun {
			res.Added = append(res.Added, spec)
			continue
		}
		if _, err := p.AddPackage(ctx, spec.Name, spec.Action); err != nil {
			if errors.Is(err, jamf.ErrDuplicatePackage) {
				res.Present = append(res.Present, spec)
				continue
			}
			return fail(err)
		}
		res.Added = append(res.Added, spec)
		if err := e.recorder.Record(ctx, &audit.Record{
			PolicyID:   p.ID(),
			PolicyName: p.Name(),
			Operation:  audit.OpAdd,
			Package:    spec.Name,
			Action:     spec.Action,
		}); err != nil {
			e.logger.WarnContext(ctx, "failed to record change", "policy", res.Policy, "error", err)
		}
	}
	return res
}
