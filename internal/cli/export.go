package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/shelfworks/shelfstack/pkg/errors"
	"github.com/shelfworks/shelfstack/pkg/export"
)

// exportCommand builds the absolute-pixel export document from a session
// file.
func (c *CLI) exportCommand() *cobra.Command {
	var (
		output string
		scale  float64
	)

	cmd := &cobra.Command{
		Use:   "export <session-file>",
		Short: "Build the absolute-pixel export document for a session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := loggerFromContext(cmd.Context())
			rec, err := readSession(args[0])
			if err != nil {
				return err
			}

			prog := newProgress(logger)
			doc := export.Build(rec.Container, export.DefaultGeometry)
			if scale != 1 {
				if scale <= 0 {
					return errors.New(errors.ErrCodeInvalidInput, "scale must be positive, got %v", scale)
				}
				doc = export.ScaleDocument(doc, scale)
			}
			prog.done(fmt.Sprintf("Exported %d items", rec.Container.ItemCount()))

			data, err := json.MarshalIndent(doc, "", "  ")
			if err != nil {
				return errors.Wrap(errors.ErrCodeInternal, err, "encode export document")
			}

			if output == "-" {
				fmt.Println(string(data))
				return nil
			}
			if err := os.WriteFile(output, data, 0o644); err != nil {
				return errors.Wrap(errors.ErrCodeInternal, err, "write %s", output)
			}
			printSuccess("Export document written")
			printFile(output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "export.json", "output file, - for stdout")
	cmd.Flags().Float64Var(&scale, "scale", 1, "raster scaling factor applied to all coordinates")
	return cmd
}
