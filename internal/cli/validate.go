package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shelfworks/shelfstack/pkg/errors"
	"github.com/shelfworks/shelfstack/pkg/planogram"
)

// validateCommand sweeps a session file for placement conflicts. It exits
// non-zero when any conflict is found, for use in scripted pipelines.
func (c *CLI) validateCommand() *cobra.Command {
	var noRules bool

	cmd := &cobra.Command{
		Use:   "validate <session-file>",
		Short: "Check a planogram session for placement conflicts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := loggerFromContext(cmd.Context())
			rec, err := readSession(args[0])
			if err != nil {
				return err
			}

			prog := newProgress(logger)
			engine := planogram.Engine{Rules: !noRules}
			conflicts := engine.FindConflicts(rec.Container)
			prog.done(fmt.Sprintf("Validated %d doors, %d items",
				len(rec.Container.DoorOrder), rec.Container.ItemCount()))

			if conflicts.Empty() {
				printSuccess("No conflicts")
				return nil
			}

			if len(conflicts.HeightOverflow) > 0 {
				printWarning("%d items overflow their shelf clearance", len(conflicts.HeightOverflow))
				for _, id := range conflicts.HeightOverflow {
					printDetail("height: %s", describeItem(rec.Container, id))
				}
			}
			if len(conflicts.TypeMismatch) > 0 {
				printWarning("%d items sit on shelves that disallow their type", len(conflicts.TypeMismatch))
				for _, id := range conflicts.TypeMismatch {
					printDetail("type: %s", describeItem(rec.Container, id))
				}
			}
			if len(conflicts.UnstableStack) > 0 {
				printWarning("%d items are wider than the stack below them", len(conflicts.UnstableStack))
				for _, id := range conflicts.UnstableStack {
					printDetail("stack: %s", describeItem(rec.Container, id))
				}
			}

			return errors.New(errors.ErrCodeInvalidInput, "%d conflicting items", len(conflicts.All()))
		},
	}

	cmd.Flags().BoolVar(&noRules, "no-rules", false, "skip business rules, keep physical checks")
	return cmd
}

// describeItem renders "sku @ door:row" for a conflict listing. Items that
// vanished between sweep and lookup fall back to the raw identifier.
func describeItem(c planogram.Container, itemID string) string {
	loc, ok := planogram.Locate(c, itemID)
	if !ok {
		return itemID
	}
	item := c.Doors[loc.DoorID].Rows[loc.RowID].Stacks[loc.StackIndex].Items[loc.ItemIndex]
	return fmt.Sprintf("%s @ %s:%s", item.SKU, loc.DoorID, loc.RowID)
}
