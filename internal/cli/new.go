package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/shelfworks/shelfstack/pkg/planogram"
	"github.com/shelfworks/shelfstack/pkg/snapshot"
)

// newCommand creates an empty session file for a layout model.
func (c *CLI) newCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "new <layout-id>",
		Short: "Create an empty planogram session file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			lib, err := c.library()
			if err != nil {
				return err
			}
			tpl, err := lib.Get(args[0])
			if err != nil {
				return err
			}

			container := tpl.Container()
			rec := snapshot.Record{
				Container:    container,
				History:      []planogram.Container{container.Clone()},
				HistoryIndex: 0,
				LayoutID:     tpl.ID,
				Timestamp:    time.Now().UTC(),
			}
			if err := writeSession(output, rec); err != nil {
				return err
			}
			printSuccess("Created %s session", tpl.ID)
			printFile(output)
			printNextStep("Inspect it", "shelfstack inspect "+output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "planogram.json", "session file to write")
	return cmd
}
