package cli

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/shelfworks/shelfstack/pkg/units"
)

// layoutsCommand lists the available cooler models and shows their shelf
// geometry.
func (c *CLI) layoutsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "layouts [id]",
		Short: "List cooler layouts or show one model's shelf geometry",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			lib, err := c.library()
			if err != nil {
				return err
			}

			if len(args) == 0 {
				fmt.Println(StyleTitle.Render("Available layouts"))
				for _, id := range lib.IDs() {
					tpl, _ := lib.Get(id)
					printDetail("%s  %s (%d doors)", StyleHighlight.Render(id), tpl.Name, len(tpl.Doors))
				}
				printNewline()
				printNextStep("Inspect a model", "shelfstack layouts <id>")
				return nil
			}

			tpl, err := lib.Get(args[0])
			if err != nil {
				return err
			}

			fmt.Println(StyleTitle.Render(tpl.Name))
			printKeyValue("id", tpl.ID)
			printKeyValue("doors", fmt.Sprintf("%d", len(tpl.Doors)))
			printNewline()

			t := table.New().
				Border(lipgloss.NormalBorder()).
				BorderStyle(StyleDim).
				Headers("DOOR", "ROW", "CAPACITY", "CLEARANCE", "TYPES")
			for _, door := range tpl.Doors {
				for _, row := range door.Rows {
					types := "any"
					if len(row.AllowedTypes) > 0 {
						types = ""
						for i, at := range row.AllowedTypes {
							if i > 0 {
								types += ", "
							}
							types += string(at)
						}
					}
					t.Row(
						door.ID,
						row.ID,
						fmt.Sprintf("%dpx / %dmm", row.CapacityPX, units.ToMM(row.CapacityPX)),
						fmt.Sprintf("%dpx / %dmm", row.MaxHeightPX, units.ToMM(row.MaxHeightPX)),
						types,
					)
				}
			}
			fmt.Println(t)
			return nil
		},
	}
	return cmd
}
