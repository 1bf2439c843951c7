package main

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"mercator-hq/jamf/internal/jsstest"
)

// execute runs the root command with args and returns its standard output.
// Flag variables are reset first so earlier runs do not leak into later ones.
func execute(t *testing.T, ctx context.Context, stdin io.Reader, args ...string) (string, error) {
	t.Helper()

	cfgFile, verbose, outputFormat, metricsFile = "", false, "", ""
	categoriesFlags.name, categoriesFlags.exclude = "", nil
	policiesFlags.categories = nil
	policyFlags.id, policyFlags.name, policyFlags.action = "", "", ""
	baselineFlags.manifest, baselineFlags.dryRun = "", false
	baselineFlags.schedule, baselineFlags.watch, baselineFlags.metricsAddr = "", false, ""
	historyFlags.policy, historyFlags.pkg, historyFlags.source = "", "", ""
	historyFlags.since, historyFlags.limit, historyFlags.olderThan = 0, 0, 0
	historyFlags.format, historyFlags.out = "json", ""

	if stdin == nil {
		stdin = strings.NewReader("")
	}
	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetIn(stdin)
	rootCmd.SetArgs(args)
	setContext(rootCmd, ctx)

	err := rootCmd.ExecuteContext(ctx)
	return out.String(), err
}

func setContext(cmd *cobra.Command, ctx context.Context) {
	cmd.SetContext(ctx)
	for _, sub := range cmd.Commands() {
		setContext(sub, ctx)
	}
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	return execute(t, context.Background(), nil, args...)
}

// newServer starts a fake server and points the environment at it.
func newServer(t *testing.T) *jsstest.Server {
	t.Helper()
	srv := jsstest.NewServer()
	t.Cleanup(srv.Close)

	t.Setenv("JAMF_URL", srv.URL())
	t.Setenv("JAMF_MAX_RETRIES", "0")
	t.Setenv("JAMF_LOG_LEVEL", "error")
	return srv
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}
