package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"mercator-hq/jamf/pkg/audit"
	"mercator-hq/jamf/pkg/cli"
	"mercator-hq/jamf/pkg/jamf"
	"mercator-hq/jamf/pkg/tree"
)

var policyFlags struct {
	id     string
	name   string
	action string
}

var policyCmd = &cobra.Command{
	Use:   "policy",
	Short: "Show and edit a policy",
	Long: `Show a policy and edit its package list.

The policy is selected with --id or --name. Package edits are written back
immediately; a failed write leaves the policy unchanged.

Examples:
  jamf policy show --name "Install Tools" -o xml
  jamf policy packages --id 12
  jamf policy add-package --id 12 tools-1.2.pkg --action Cache
  jamf policy remove-package --id 12 tools-1.1.pkg
  jamf policy clear-packages --id 12`,
}

var policyShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the policy document",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withPolicy(cmd, "policy show", func(ctx context.Context, _ *app, p *jamf.Policy) error {
			return render(cmd, p.Document())
		})
	},
}

var policyPackagesCmd = &cobra.Command{
	Use:   "packages",
	Short: "List the packages of the policy",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withPolicy(cmd, "policy packages", func(ctx context.Context, _ *app, p *jamf.Policy) error {
			pkgs, err := p.Packages()
			if err != nil {
				return err
			}
			rows := make(packageList, 0, pkgs.Len())
			for _, v := range pkgs.Items() {
				rows = append(rows, packageRowOf(v))
			}
			return render(cmd, rows)
		})
	},
}

var policyAddPackageCmd = &cobra.Command{
	Use:   "add-package <name>",
	Short: "Add a package to the policy",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withPolicy(cmd, "policy add-package", func(ctx context.Context, a *app, p *jamf.Policy) error {
			action := policyFlags.action
			if action == "" {
				action = jamf.DefaultAction
			}
			if _, err := p.AddPackage(ctx, args[0], action); err != nil {
				return err
			}
			a.record(ctx, p, audit.OpAdd, args[0], action)
			return render(cmd, packageChange{Policy: p.ID(), Package: args[0], Action: action, Change: "added"})
		})
	},
}

var policyRemovePackageCmd = &cobra.Command{
	Use:   "remove-package <name>",
	Short: "Remove every entry of a package from the policy",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withPolicy(cmd, "policy remove-package", func(ctx context.Context, a *app, p *jamf.Policy) error {
			if err := p.RemovePackage(ctx, args[0]); err != nil {
				return err
			}
			a.record(ctx, p, audit.OpRemove, args[0], "")
			return render(cmd, packageChange{Policy: p.ID(), Package: args[0], Change: "removed"})
		})
	},
}

var policyClearPackagesCmd = &cobra.Command{
	Use:   "clear-packages",
	Short: "Remove every package from the policy",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withPolicy(cmd, "policy clear-packages", func(ctx context.Context, a *app, p *jamf.Policy) error {
			if _, err := p.RemoveAllPackages(ctx); err != nil {
				return err
			}
			a.record(ctx, p, audit.OpClear, "", "")
			return render(cmd, packageChange{Policy: p.ID(), Change: "cleared"})
		})
	},
}

func init() {
	rootCmd.AddCommand(policyCmd)
	policyCmd.AddCommand(policyShowCmd, policyPackagesCmd, policyAddPackageCmd, policyRemovePackageCmd, policyClearPackagesCmd)

	policyCmd.PersistentFlags().StringVar(&policyFlags.id, "id", "", "policy ID")
	policyCmd.PersistentFlags().StringVar(&policyFlags.name, "name", "", "policy name")
	policyAddPackageCmd.Flags().StringVar(&policyFlags.action, "action", jamf.DefaultAction, "package action")
}

// withPolicy fetches the selected policy and runs fn with it.
func withPolicy(cmd *cobra.Command, name string, fn func(ctx context.Context, a *app, p *jamf.Policy) error) error {
	var sel jamf.Selector
	switch {
	case policyFlags.id != "" && policyFlags.name != "":
		return errors.New("--id and --name are mutually exclusive")
	case policyFlags.id != "":
		sel = jamf.ByID(policyFlags.id)
	case policyFlags.name != "":
		sel = jamf.ByName(policyFlags.name)
	default:
		return errors.New("either --id or --name must be specified")
	}

	return withApp(cmd, func(ctx context.Context, a *app) error {
		p, err := jamf.GetPolicy(ctx, a.client, sel)
		if err != nil {
			return cli.NewCommandError(name, err)
		}
		if err := fn(ctx, a, p); err != nil {
			return cli.NewCommandError(name, err)
		}
		return nil
	})
}

// record adds a change to the audit history. The policy is already written,
// so failures are logged rather than returned.
func (a *app) record(ctx context.Context, p *jamf.Policy, op audit.Operation, pkg, action string) {
	err := a.recorder.Record(ctx, &audit.Record{
		PolicyID:   p.ID(),
		PolicyName: p.Name(),
		Operation:  op,
		Package:    pkg,
		Action:     action,
	})
	if err != nil {
		a.logger.WarnContext(ctx, "failed to record change", "policy", p.ID(), "error", err)
	}
}

type packageRow struct {
	Name   string `json:"name" yaml:"name"`
	Action string `json:"action,omitempty" yaml:"action,omitempty"`
}

func packageRowOf(v tree.Value) packageRow {
	n, _ := v.(*tree.Node)
	name, _ := n.Text("name")
	action, _ := n.Text("action")
	return packageRow{Name: name, Action: action}
}

type packageList []packageRow

func (l packageList) RenderText(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tACTION")
	for _, r := range l {
		fmt.Fprintf(tw, "%s\t%s\n", r.Name, r.Action)
	}
	return tw.Flush()
}

type packageChange struct {
	Policy  string `json:"policy" yaml:"policy"`
	Package string `json:"package,omitempty" yaml:"package,omitempty"`
	Action  string `json:"action,omitempty" yaml:"action,omitempty"`
	Change  string `json:"change" yaml:"change"`
}

func (c packageChange) RenderText(w io.Writer) error {
	var err error
	switch {
	case c.Package == "":
		_, err = fmt.Fprintf(w, "policy %s: packages %s\n", c.Policy, c.Change)
	case c.Action != "":
		_, err = fmt.Fprintf(w, "policy %s: %s %s (%s)\n", c.Policy, c.Change, c.Package, c.Action)
	default:
		_, err = fmt.Fprintf(w, "policy %s: %s %s\n", c.Policy, c.Change, c.Package)
	}
	return err
}
