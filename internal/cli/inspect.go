package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/shelfworks/shelfstack/pkg/planogram"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// inspectCommand opens an interactive shelf browser for a session file.
func (c *CLI) inspectCommand() *cobra.Command {
	var plain bool

	cmd := &cobra.Command{
		Use:   "inspect <session-file>",
		Short: "Browse a planogram session shelf by shelf",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rec, err := readSession(args[0])
			if err != nil {
				return err
			}

			if plain {
				printContainer(rec.Container)
				return nil
			}

			model := newShelfBrowserModel(rec.Container)
			_, err = tea.NewProgram(model, tea.WithContext(cmd.Context())).Run()
			return err
		},
	}

	cmd.Flags().BoolVar(&plain, "plain", false, "print without the interactive browser")
	return cmd
}

// printContainer writes a static shelf listing, for scripts and dumb
// terminals.
func printContainer(c planogram.Container) {
	for _, doorID := range c.DoorOrder {
		door := c.Doors[doorID]
		fmt.Println(StyleTitle.Render(fmt.Sprintf("Door %s", doorID)) +
			StyleDim.Render(fmt.Sprintf("  %dx%dpx", door.WidthPX, door.HeightPX)))
		for _, rowID := range door.RowOrder {
			row := door.Rows[rowID]
			printDetail("%s: %d stacks, %d/%dpx used", rowID, len(row.Stacks), row.UsedWidth(), row.CapacityPX)
			for i, stack := range row.Stacks {
				for j, item := range stack.Items {
					marker := "  "
					if j > 0 {
						marker = "+ " // stacked on the one below
					}
					printDetail("  [%d] %s%s %dx%dpx", i, marker, item.SKU, item.WidthPX, item.HeightPX)
				}
			}
		}
		printNewline()
	}
}

// =============================================================================
// ShelfBrowserModel - Interactive shelf navigation
// =============================================================================

// shelfEntry is one selectable shelf in the browser list.
type shelfEntry struct {
	DoorID string
	RowID  string
	Row    planogram.Row
}

// shelfBrowserModel is the bubbletea model for shelf-by-shelf inspection.
type shelfBrowserModel struct {
	Container planogram.Container
	Shelves   []shelfEntry
	Conflicts planogram.Conflicts
	Cursor    int
	Height    int
	Offset    int
}

func newShelfBrowserModel(c planogram.Container) shelfBrowserModel {
	var shelves []shelfEntry
	for _, doorID := range c.DoorOrder {
		door := c.Doors[doorID]
		for _, rowID := range door.RowOrder {
			shelves = append(shelves, shelfEntry{DoorID: doorID, RowID: rowID, Row: door.Rows[rowID]})
		}
	}
	return shelfBrowserModel{
		Container: c,
		Shelves:   shelves,
		Conflicts: planogram.Engine{Rules: true}.FindConflicts(c),
		Cursor:    0,
		Height:    12,
		Offset:    0,
	}
}

func (m shelfBrowserModel) Init() tea.Cmd {
	return nil
}

func (m shelfBrowserModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.Shelves)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		}
	}
	return m, nil
}

func (m shelfBrowserModel) View() string {
	if len(m.Shelves) == 0 {
		return listDimStyle.Render("No shelves in this layout") + "\n"
	}

	var b strings.Builder
	b.WriteString(StyleTitle.Render("Shelves") + "\n\n")

	end := m.Offset + m.Height
	if end > len(m.Shelves) {
		end = len(m.Shelves)
	}
	for i := m.Offset; i < end; i++ {
		entry := m.Shelves[i]
		line := fmt.Sprintf("%s:%s  %d stacks, %d/%dpx",
			entry.DoorID, entry.RowID, len(entry.Row.Stacks), entry.Row.UsedWidth(), entry.Row.CapacityPX)
		if i == m.Cursor {
			b.WriteString(listSelectedStyle.Render("> "+line) + "\n")
		} else {
			b.WriteString(listNormalStyle.Render("  "+line) + "\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(m.shelfDetail(m.Shelves[m.Cursor]))
	b.WriteString("\n" + listDimStyle.Render("up/down navigate · q quit") + "\n")
	return b.String()
}

// shelfDetail renders the selected shelf's stacks as a table.
func (m shelfBrowserModel) shelfDetail(entry shelfEntry) string {
	if len(entry.Row.Stacks) == 0 {
		return listDimStyle.Render("empty shelf")
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(listDimStyle).
		Headers("STACK", "SKU", "SIZE", "TYPE", "")
	for i, stack := range entry.Row.Stacks {
		for j, item := range stack.Items {
			pos := fmt.Sprintf("%d", i)
			if j > 0 {
				pos = fmt.Sprintf("%d+%d", i, j)
			}
			flag := ""
			if m.Conflicts.Has(item.ID) {
				flag = StyleWarning.Render("!")
			}
			t.Row(
				pos,
				item.SKU,
				fmt.Sprintf("%dx%dmm", item.WidthMM, item.HeightMM),
				string(item.Type),
				flag,
			)
		}
	}
	if n := len(m.Conflicts.All()); n > 0 {
		return t.String() + "\n" + StyleWarning.Render(fmt.Sprintf("%d conflicting items across the layout", n))
	}
	return t.String()
}
