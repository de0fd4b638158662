package cli

import (
	"strconv"

	"github.com/spf13/cobra"

	graphio "github.com/matzehuels/callscope/pkg/io"
)

// viewCommand creates the view command that prints the visible graph as JSON.
func (c *CLI) viewCommand() *cobra.Command {
	var flags viewFlags

	cmd := &cobra.Command{
		Use:   "view [graph.json|graph.yaml]",
		Short: "Apply operations and write the visible graph as JSON",
		Long: `Apply operations and write the visible graph as JSON.

Operations run in the order given:

  collapse:<id>[:outgoing|incoming|both]
  expand:<id>[:outgoing|incoming|both]
  toggle:<id>
  isolate:<id>
  collapse-all
  expand-all
  show-isolated:on|off

The output lists the visible nodes with their package, layout position and
collapse style, the visible edges and the package clusters in layout order.`,
		Example: `  callscope view graph.json --op collapse-all --op expand:main.main:outgoing
  callscope view graph.yaml --op isolate:utils.ReadFile -o view.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			x, err := c.prepare(cmd, args[0], &flags)
			if err != nil {
				return err
			}
			v := x.View()

			if flags.output == "" {
				return graphio.WriteJSON(v, cmd.OutOrStdout())
			}
			if err := graphio.ExportJSON(v, flags.output); err != nil {
				return err
			}
			printSuccess("Wrote view with %s visible nodes", StyleNumber.Render(strconv.Itoa(len(v.Nodes))))
			printFile(flags.output)
			return nil
		},
	}

	flags.register(cmd)

	return cmd
}
