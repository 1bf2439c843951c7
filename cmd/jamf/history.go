package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"mercator-hq/jamf/pkg/audit"
	"mercator-hq/jamf/pkg/audit/export"
	"mercator-hq/jamf/pkg/cli"
)

var historyFlags struct {
	policy    string
	pkg       string
	source    string
	since     time.Duration
	limit     int
	format    string
	out       string
	olderThan time.Duration
}

var errHistoryDisabled = errors.New("change history is disabled: set audit.path or JAMF_AUDIT_PATH")

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show the history of package changes",
	Long: `Show package changes written by this tool, newest first. Changes are
recorded when audit.path is configured.

Examples:
  jamf history --policy 12 --since 168h
  jamf history export --format csv --out changes.csv
  jamf history prune --older-than 2160h`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withHistory(cmd, "history", func(ctx context.Context, a *app) error {
			records, err := a.store.Query(ctx, historyQuery())
			if err != nil {
				return err
			}
			return render(cmd, historyList(records))
		})
	},
}

var historyExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the change history as JSON or CSV",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		exporter, err := export.New(historyFlags.format)
		if err != nil {
			return err
		}
		return withHistory(cmd, "history export", func(ctx context.Context, a *app) error {
			q := historyQuery()
			q.Ascending = true
			records, err := a.store.Query(ctx, q)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if historyFlags.out != "" && historyFlags.out != "-" {
				f, err := os.Create(historyFlags.out)
				if err != nil {
					return err
				}
				defer f.Close()
				w = f
			}
			return exporter.Export(ctx, records, w)
		})
	},
}

var historyPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete changes older than a given age",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withHistory(cmd, "history prune", func(ctx context.Context, a *app) error {
			age := historyFlags.olderThan
			if age == 0 {
				age = a.cfg.Audit.Retention
			}
			if age <= 0 {
				return errors.New("--older-than or audit.retention must be set")
			}
			n, err := a.recorder.Prune(ctx, age)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "deleted %d records\n", n)
			return err
		})
	},
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.AddCommand(historyExportCmd, historyPruneCmd)

	historyCmd.PersistentFlags().StringVar(&historyFlags.policy, "policy", "", "only changes to this policy ID")
	historyCmd.PersistentFlags().StringVar(&historyFlags.pkg, "package", "", "only changes of this package")
	historyCmd.PersistentFlags().StringVar(&historyFlags.source, "source", "", "only changes from this source (cli, baseline)")
	historyCmd.PersistentFlags().DurationVar(&historyFlags.since, "since", 0, "only changes newer than this age")
	historyCmd.PersistentFlags().IntVar(&historyFlags.limit, "limit", audit.DefaultLimit, "maximum number of changes")
	historyExportCmd.Flags().StringVar(&historyFlags.format, "format", "json", "export format (json, jsonl, csv)")
	historyExportCmd.Flags().StringVar(&historyFlags.out, "out", "", "output file (default: stdout)")
	historyPruneCmd.Flags().DurationVar(&historyFlags.olderThan, "older-than", 0, "age of the oldest change kept (default: audit.retention)")
}

func withHistory(cmd *cobra.Command, name string, fn func(ctx context.Context, a *app) error) error {
	return withApp(cmd, func(ctx context.Context, a *app) error {
		if a.store == nil {
			return cli.NewCommandError(name, errHistoryDisabled)
		}
		if err := fn(ctx, a); err != nil {
			return cli.NewCommandError(name, err)
		}
		return nil
	})
}

func historyQuery() *audit.Query {
	q := &audit.Query{
		PolicyID: historyFlags.policy,
		Package:  historyFlags.pkg,
		Source:   historyFlags.source,
		Limit:    historyFlags.limit,
	}
	if historyFlags.since > 0 {
		q.Since = time.Now().Add(-historyFlags.since)
	}
	return q
}

type historyList []*audit.Record

func (l historyList) RenderText(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TIME\tSOURCE\tPOLICY\tOPERATION\tPACKAGE\tACTION")
	for _, r := range l {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			r.Timestamp.Local().Format(time.DateTime), r.Source, r.PolicyID, r.Operation, r.Package, r.Action)
	}
	return tw.Flush()
}
