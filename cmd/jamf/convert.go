package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"mercator-hq/jamf/pkg/cli"
	"mercator-hq/jamf/pkg/convert"
	"mercator-hq/jamf/pkg/tree"
)

var convertCmd = &cobra.Command{
	Use:   "convert",
	Short: "Convert and query documents offline",
	Long: `Convert documents between XML and YAML and run XPath queries.

Input is read from the file argument, or from stdin when it is omitted or "-".
No server configuration is needed.

Examples:
  jamf convert xml2yaml policy.xml
  curl -s ... | jamf convert xml2yaml
  jamf convert yaml2xml policy.yaml > policy.xml
  jamf convert select "//package/name/text()" policy.xml`,
}

var xml2yamlCmd = &cobra.Command{
	Use:   "xml2yaml [file]",
	Short: "Convert an XML document to YAML",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := readInput(cmd, args, 0)
		if err != nil {
			return err
		}
		doc, err := convert.XMLToTree(data)
		if err != nil {
			return cli.NewCommandError("convert xml2yaml", err)
		}
		out, err := convert.TreeToYAML(doc)
		if err != nil {
			return cli.NewCommandError("convert xml2yaml", err)
		}
		_, err = cmd.OutOrStdout().Write(out)
		return err
	},
}

var yaml2xmlCmd = &cobra.Command{
	Use:   "yaml2xml [file]",
	Short: "Convert a YAML document to XML",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := readInput(cmd, args, 0)
		if err != nil {
			return err
		}
		doc, err := convert.YAMLToTree(data)
		if err != nil {
			return cli.NewCommandError("convert yaml2xml", err)
		}
		out, err := convert.TreeToXML(doc)
		if err != nil {
			return cli.NewCommandError("convert yaml2xml", err)
		}
		_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s\n", out)
		return err
	},
}

var selectCmd = &cobra.Command{
	Use:   "select <xpath> [file]",
	Short: "Print the values matching an XPath expression",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := readInput(cmd, args, 1)
		if err != nil {
			return err
		}
		values, err := convert.Select(data, args[0])
		if err != nil {
			return cli.NewCommandError("convert select", err)
		}

		format, err := cli.ParseOutputFormat(outputFormat)
		if err != nil {
			return err
		}
		if format == cli.FormatText {
			return selection(values).RenderText(cmd.OutOrStdout())
		}
		return render(cmd, tree.New(tree.F("matches", tree.List(values))))
	},
}

func init() {
	rootCmd.AddCommand(convertCmd)
	convertCmd.AddCommand(xml2yamlCmd, yaml2xmlCmd, selectCmd)
}

// readInput reads the file named by args[i], or stdin when it is absent or "-".
func readInput(cmd *cobra.Command, args []string, i int) ([]byte, error) {
	if len(args) <= i || args[i] == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	data, err := os.ReadFile(args[i])
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", args[i], err)
	}
	return data, nil
}

// selection prints one match per line; element matches print as YAML.
type selection []tree.Value

func (s selection) RenderText(w io.Writer) error {
	for _, v := range s {
		switch tv := v.(type) {
		case nil:
			if _, err := fmt.Fprintln(w, "null"); err != nil {
				return err
			}
		case string:
			if _, err := fmt.Fprintln(w, tv); err != nil {
				return err
			}
		case *tree.Node:
			out, err := convert.TreeToYAML(tv)
			if err != nil {
				return err
			}
			if _, err := fmt.Fprintf(w, "---\n%s", out); err != nil {
				return err
			}
		default:
			if _, err := fmt.Fprintf(w, "%v\n", tv); err != nil {
				return err
			}
		}
	}
	return nil
}
