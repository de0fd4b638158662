package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/callscope/pkg/render/nodelink"
)

// renderCommand creates the render command for node-link diagrams of the
// visible graph.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		flags    viewFlags
		detailed bool
	)

	cmd := &cobra.Command{
		Use:   "render [graph.json|graph.yaml]",
		Short: "Apply operations and render the visible graph as DOT or SVG",
		Long: `Apply operations and render the visible graph as DOT or SVG.

Takes the same --op operations as 'view'. The output format follows the
extension of --output (.dot, .gv or .svg). Without --output the DOT source is
written to stdout. Each package becomes a Graphviz cluster; collapsed nodes
get a thick border (outgoing) or a grey fill (incoming).`,
		Example: `  callscope render graph.json --op collapse-all -o overview.svg
  callscope render graph.json --op isolate:main.run | dot -Tpng > run.png`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format := nodelink.FormatDOT
			if flags.output != "" {
				f, err := nodelink.FormatOf(flags.output)
				if err != nil {
					return err
				}
				format = f
			}

			x, err := c.prepare(cmd, args[0], &flags)
			if err != nil {
				return err
			}

			prog := newProgress(c.Logger)
			data, err := nodelink.Render(cmd.Context(), x.View(), format, nodelink.Options{Detailed: detailed})
			if err != nil {
				return fmt.Errorf("render %s: %w", format, err)
			}
			prog.done(fmt.Sprintf("Rendered %s", format))

			if flags.output == "" {
				_, err := cmd.OutOrStdout().Write(data)
				return err
			}
			if err := os.WriteFile(flags.output, data, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", flags.output, err)
			}
			printSuccess("Rendered %s", StyleHighlight.Render(string(format)))
			printFile(flags.output)
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().BoolVar(&detailed, "detailed", false, "show source location and chain lengths in node labels")

	return cmd
}
