package cli

import (
	"errors"
	"io"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	apperrors "github.com/matzehuels/callscope/pkg/errors"
	graphio "github.com/matzehuels/callscope/pkg/io"
)

// exploreCommand creates the interactive explore command.
func (c *CLI) exploreCommand() *cobra.Command {
	var (
		watch        bool
		showIsolated bool
		depth        int
	)

	cmd := &cobra.Command{
		Use:   "explore [graph.json|graph.yaml]",
		Short: "Explore a call graph interactively",
		Long: `Explore a call graph interactively.

Keys:
  up/down, k/j   move the cursor
  enter          toggle the selected function
  o / i          collapse callees / callers
  O / I          expand callees / callers
  f              isolate the selected function
  c / e          collapse / expand everything
  z              show or hide functions without calls
  q              quit

With --watch the graph file is re-read whenever it changes. A file that fails
to load leaves the current graph on screen.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("show-isolated") {
				cfg.View.ShowIsolated = showIsolated
			}
			if cmd.Flags().Changed("depth") {
				if depth < 0 {
					return apperrors.New(apperrors.ErrCodeInvalidInput, "--depth must not be negative, got %d", depth)
				}
				cfg.View.MaxDepth = depth
			}
			x, err := c.openExplorer(path, cfg)
			if err != nil {
				return err
			}
			// The alternate screen owns the terminal from here on.
			x.Logger = log.New(io.Discard)

			p := tea.NewProgram(NewExploreModel(x, path), tea.WithAltScreen(), tea.WithContext(cmd.Context()))

			if watch {
				stop, err := graphio.Watch(path, func(doc *graphio.Document, err error) {
					p.Send(reloadMsg{doc: doc, err: err})
				})
				if err != nil {
					return err
				}
				defer stop()
				printInfo("Watching %s for changes", StyleHighlight.Render(path))
			}

			if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
				return err
			}
			return cmd.Context().Err()
		},
	}

	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "reload the graph file when it changes")
	cmd.Flags().BoolVar(&showIsolated, "show-isolated", false, "show nodes without any calls")
	cmd.Flags().IntVar(&depth, "depth", 0, "maximum call depth below entry points (0 for unlimited)")

	return cmd
}
