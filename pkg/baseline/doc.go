// Package baseline keeps policies in line with a package manifest.
//
// A manifest names policies and the packages each must contain. The
// Enforcer adds whatever is missing and reports per-policy outcomes. The
// Scheduler repeats enforcement on a cron schedule and the Watcher reloads
// the manifest when its file changes:
//
//	w, err := baseline.NewWatcher("baseline.yaml", 250*time.Millisecond, logger)
//	if err != nil {
//	    return err
//	}
//	go w.Watch(ctx)
//
//	s, err := baseline.NewScheduler(enforcer, w, "0 * * * *", nil)
//	if err != nil {
//	    return err
//	}
//	return s.Start(ctx)
package baseline
