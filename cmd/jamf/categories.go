package main

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"mercator-hq/jamf/pkg/cli"
	"mercator-hq/jamf/pkg/jamf"
)

var categoriesFlags struct {
	name    string
	exclude []string
}

var categoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "List categories",
	Long: `List categories in server order.

Examples:
  # All categories
  jamf categories

  # Categories whose name contains "Apps", except "Retired Apps"
  jamf categories --name Apps --exclude "Retired Apps"`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app) error {
			cats, err := jamf.Categories(ctx, a.client, categoriesFlags.name, categoriesFlags.exclude...)
			if err != nil {
				return cli.NewCommandError("categories", err)
			}
			return render(cmd, categoryList(cats))
		})
	},
}

func init() {
	rootCmd.AddCommand(categoriesCmd)

	categoriesCmd.Flags().StringVar(&categoriesFlags.name, "name", "", "only categories whose name contains this text")
	categoriesCmd.Flags().StringArrayVar(&categoriesFlags.exclude, "exclude", nil, "category name to skip (repeatable)")
}

type categoryList []jamf.Category

func (l categoryList) RenderText(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME")
	for _, c := range l {
		fmt.Fprintf(tw, "%s\t%s\n", c.ID, c.Name)
	}
	return tw.Flush()
}
