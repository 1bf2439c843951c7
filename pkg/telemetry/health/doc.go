// Package health provides liveness and readiness probes for long-running
// commands.
//
// The baseline daemon registers checks for its manifest and its last
// enforcement run and mounts the probes next to /metrics:
//
//	checker := health.New(2 * time.Second)
//	checker.Register("manifest", func(ctx context.Context) error {
//	    if source.Current() == nil {
//	        return errors.New("no manifest loaded")
//	    }
//	    return nil
//	})
//	checker.Mount(mux) // /healthz, /readyz
package health
