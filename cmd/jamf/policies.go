package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"mercator-hq/jamf/pkg/cli"
	"mercator-hq/jamf/pkg/jamf"
)

var policiesFlags struct {
	categories []string
}

var policiesCmd = &cobra.Command{
	Use:   "policies",
	Short: "List the policies of categories",
	Long: `List the policies filed under one or more categories, in the order the
categories are given.

Examples:
  jamf policies --category Apps --category Utilities -o json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(policiesFlags.categories) == 0 {
			return errors.New("at least one --category must be specified")
		}
		return withApp(cmd, func(ctx context.Context, a *app) error {
			policies, err := jamf.PoliciesInCategories(ctx, a.client, policiesFlags.categories...)
			if err != nil {
				return cli.NewCommandError("policies", err)
			}
			return render(cmd, policyList(policies))
		})
	},
}

func init() {
	rootCmd.AddCommand(policiesCmd)

	policiesCmd.Flags().StringArrayVar(&policiesFlags.categories, "category", nil, "category name (repeatable)")
}

type policyList []jamf.PolicySummary

func (l policyList) RenderText(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME")
	for _, p := range l {
		fmt.Fprintf(tw, "%s\t%s\n", p.ID, p.Name)
	}
	return tw.Flush()
}
