package cli

import (
	"cmp"
	"fmt"
	"slices"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/callscope/pkg/explorer"
	graphio "github.com/matzehuels/callscope/pkg/io"
	"github.com/matzehuels/callscope/pkg/visibility"
)

// List styles
var (
	listDimStyle  = lipgloss.NewStyle().Foreground(colorDim)
	listHelpStyle = lipgloss.NewStyle().Foreground(colorGray)
)

// styleMarkers are the state column glyphs per collapse style.
var styleMarkers = map[visibility.StyleTag]string{
	visibility.StyleExpanded:          "·",
	visibility.StyleCollapsedOutgoing: "▶",
	visibility.StyleCollapsedIncoming: "◀",
	visibility.StyleCollapsedBoth:     "◆",
}

// =============================================================================
// ExploreModel - Interactive call graph exploration
// =============================================================================

// reloadMsg carries a re-imported graph file from the watcher.
type reloadMsg struct {
	doc *graphio.Document
	err error
}

// ExploreModel is the bubbletea model of the explore command. It lists the
// visible functions in layout order and maps keys to explorer operations.
type ExploreModel struct {
	Explorer *explorer.Explorer
	Path     string
	Cursor   int
	Offset   int
	Height   int

	rows      []explorer.ViewNode
	status    string
	statusErr bool
}

// NewExploreModel creates an explore model over a loaded explorer.
func NewExploreModel(x *explorer.Explorer, path string) ExploreModel {
	m := ExploreModel{Explorer: x, Path: path, Height: 15}
	m.refresh("")
	return m
}

func (m ExploreModel) Init() tea.Cmd {
	return nil
}

func (m ExploreModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case reloadMsg:
		m.reload(msg)
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-8, 5)
		m.scroll()
	}
	return m, nil
}

func (m ExploreModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	x := m.Explorer
	selected, ok := m.selected()

	switch msg.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit
	case "up", "k":
		if m.Cursor > 0 {
			m.Cursor--
			m.scroll()
		}
		return m, nil
	case "down", "j":
		if m.Cursor < len(m.rows)-1 {
			m.Cursor++
			m.scroll()
		}
		return m, nil
	case "c":
		x.CollapseAll()
	case "e":
		x.ExpandAll()
	case "z":
		x.SetShowIsolated(!x.ShowIsolated())
	case "enter", " ":
		if ok {
			x.Toggle(selected)
		}
	case "o":
		if ok {
			x.Collapse(selected, visibility.Outgoing)
		}
	case "i":
		if ok {
			x.Collapse(selected, visibility.Incoming)
		}
	case "O":
		if ok {
			x.Expand(selected, visibility.Outgoing)
		}
	case "I":
		if ok {
			x.Expand(selected, visibility.Incoming)
		}
	case "f":
		if ok {
			x.HideOthers(selected)
		}
	default:
		return m, nil
	}

	m.refresh(selected)
	return m, nil
}

// reload installs a re-imported graph. Invalid files keep the current graph.
func (m *ExploreModel) reload(msg reloadMsg) {
	selected, _ := m.selected()
	err := msg.err
	if err == nil {
		nodes, edges := msg.doc.Graph()
		err = m.Explorer.Load(nodes, edges)
	}
	if err != nil {
		m.status, m.statusErr = "reload failed, keeping previous graph: "+err.Error(), true
		return
	}
	m.refresh(selected)
	m.status, m.statusErr = fmt.Sprintf("reloaded %s (%d nodes)", m.Path, m.Explorer.Graph().NodeCount()), false
}

// refresh rebuilds the rows from the current view and keeps the cursor on
// keep when it is still visible.
func (m *ExploreModel) refresh(keep string) {
	v := m.Explorer.View()
	m.rows = slices.Clone(v.Nodes)
	slices.SortStableFunc(m.rows, func(a, b explorer.ViewNode) int {
		return cmp.Or(
			cmp.Compare(a.PackageIndex, b.PackageIndex),
			cmp.Compare(a.Depth, b.Depth),
			cmp.Compare(a.Y, b.Y),
		)
	})

	if i := slices.IndexFunc(m.rows, func(n explorer.ViewNode) bool { return n.ID == keep }); i >= 0 {
		m.Cursor = i
	}
	m.Cursor = max(min(m.Cursor, len(m.rows)-1), 0)
	m.status, m.statusErr = "", false
	m.scroll()
}

func (m *ExploreModel) scroll() {
	if m.Cursor < m.Offset {
		m.Offset = m.Cursor
	}
	if m.Cursor >= m.Offset+m.Height {
		m.Offset = m.Cursor - m.Height + 1
	}
	m.Offset = max(min(m.Offset, len(m.rows)-m.Height), 0)
}

func (m ExploreModel) selected() (string, bool) {
	if m.Cursor < 0 || m.Cursor >= len(m.rows) {
		return "", false
	}
	return m.rows[m.Cursor].ID, true
}

func (m ExploreModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Explore " + m.Path))
	b.WriteString("\n")
	b.WriteString(listHelpStyle.Render("↑/↓ move  ⏎ toggle  o/i collapse out/in  O/I expand out/in  f isolate  c collapse all  e expand all  z isolated  q quit"))
	b.WriteString("\n\n")

	if len(m.rows) == 0 {
		b.WriteString(listDimStyle.Render("  nothing visible"))
		b.WriteString("\n")
	} else {
		b.WriteString(m.table())
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d visible of %d]", min(m.Cursor+1, len(m.rows)), len(m.rows), m.Explorer.Graph().NodeCount())))
	if m.Explorer.ShowIsolated() {
		b.WriteString(listDimStyle.Render("  isolated shown"))
	}
	if m.status != "" {
		b.WriteString("\n")
		if m.statusErr {
			b.WriteString(StyleError.Render(m.status))
		} else {
			b.WriteString(StyleSuccess.Render(m.status))
		}
	}
	return b.String()
}

func (m ExploreModel) table() string {
	end := min(m.Offset+m.Height, len(m.rows))

	rows := [][]string{}
	for i := m.Offset; i < end; i++ {
		n := m.rows[i]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		label := strings.Repeat("  ", n.Depth) + n.Label
		rows = append(rows, []string{
			cursor,
			styleMarkers[n.Style],
			label,
			n.Package,
			strconv.Itoa(n.LongestIncomingChain),
			strconv.Itoa(n.LongestOutgoingChain),
		})
	}

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "", "Function", "Package", "In", "Out").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return styleHeader
			}
			idx := m.Offset + row
			if idx >= len(m.rows) {
				return lipgloss.NewStyle()
			}
			base := lipgloss.NewStyle()
			if col >= 3 {
				base = base.Foreground(colorDim)
			}
			if idx == m.Cursor {
				return base.Foreground(colorCyan).Bold(true)
			}
			if m.rows[idx].Style != visibility.StyleExpanded && col == 1 {
				return base.Foreground(colorYellow)
			}
			return base
		}).
		Render()
}
