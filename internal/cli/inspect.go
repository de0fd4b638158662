package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/callscope/pkg/cluster"
	"github.com/matzehuels/callscope/pkg/graph"
	"github.com/matzehuels/callscope/pkg/metrics"
)

// inspectCommand creates the inspect command that summarizes a call graph.
func (c *CLI) inspectCommand() *cobra.Command {
	var top int

	cmd := &cobra.Command{
		Use:   "inspect [graph.json|graph.yaml]",
		Short: "Summarize a call graph",
		Long: `Summarize a call graph.

Prints node, edge and package counts, the entry points (functions nobody
calls), the packages in layout order and the functions with the longest
outgoing and incoming call chains.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runInspect(args[0], top)
		},
	}

	cmd.Flags().IntVar(&top, "top", defaultTop, "number of longest chains to list")

	return cmd
}

func (c *CLI) runInspect(path string, top int) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	x, err := c.openExplorer(path, cfg)
	if err != nil {
		return err
	}
	g := x.Graph()

	printSuccess("Loaded %s", StyleHighlight.Render(path))
	printStats(g.NodeCount(), g.EdgeCount(), len(g.Packages()))
	printNewline()

	entries := g.EntryNodes()
	if len(entries) == 0 {
		printWarning("no entry points: every function has a caller")
	} else {
		printKeyValue("Entry points", joinIDs(entries))
	}

	plan := cluster.Build(g, allIDs(g), g.Edges(), cfg.ClusterOptions())
	names := make([]string, len(plan.Clusters))
	for i, cl := range plan.Clusters {
		names[i] = cl.Name
	}
	printKeyValue("Packages", strings.Join(names, " "+iconArrow+" "))
	for _, cl := range plan.Clusters {
		if len(cl.DependsOn) > 0 {
			printDetail("%s calls into %s", cl.Name, strings.Join(cl.DependsOn, ", "))
		}
	}

	for _, dir := range []metrics.Direction{metrics.Outgoing, metrics.Incoming} {
		nodes := metrics.Longest(g, dir, top)
		if len(nodes) == 0 {
			continue
		}
		printNewline()
		fmt.Println(StyleTitle.Render(fmt.Sprintf("Longest %s chains", dir)))
		fmt.Println(chainTable(nodes, dir))
	}

	printNewline()
	printNextStep("Explore it", fmt.Sprintf("%s explore %s", appName, path))
	return nil
}

// chainTable renders ranked nodes with their chain length in dir.
func chainTable(nodes []*graph.Node, dir metrics.Direction) string {
	rows := make([][]string, len(nodes))
	for i, n := range nodes {
		length := n.LongestOutgoingChain
		if dir == metrics.Incoming {
			length = n.LongestIncomingChain
		}
		rows[i] = []string{strconv.Itoa(i + 1), n.DisplayLabel(), n.Package, strconv.Itoa(length)}
	}

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("#", "Function", "Package", "Length").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == -1:
				return styleHeader
			case col == 3:
				return StyleNumber
			case col == 0 || col == 2:
				return StyleDim
			default:
				return StyleValue
			}
		}).
		Render()
}

func allIDs(g *graph.Graph) []string {
	nodes := g.Nodes()
	ids := make([]string, len(nodes))
	for i, n := range nodes {
		ids[i] = n.ID
	}
	return ids
}

func joinIDs(nodes []*graph.Node) string {
	ids := make([]string, len(nodes))
	for i, n := range nodes {
		ids[i] = n.ID
	}
	return strings.Join(ids, ", ")
}
