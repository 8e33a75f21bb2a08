package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/shelfworks/shelfstack/pkg/errors"
	"github.com/shelfworks/shelfstack/pkg/export"
	"github.com/shelfworks/shelfstack/pkg/preview"
)

// renderCommand renders a session file as a preview image. The format is
// taken from the output extension: .svg or .png.
func (c *CLI) renderCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "render <session-file>",
		Short: "Render a planogram preview image (SVG or PNG)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rec, err := readSession(args[0])
			if err != nil {
				return err
			}
			doc := export.Build(rec.Container, export.DefaultGeometry)

			f, err := os.Create(output)
			if err != nil {
				return errors.Wrap(errors.ErrCodeInternal, err, "create %s", output)
			}
			defer f.Close()

			spinner := newSpinnerWithContext(cmd.Context(), "Rendering "+output)
			spinner.Start()

			renderer := preview.NewRenderer()
			switch strings.ToLower(filepath.Ext(output)) {
			case ".svg":
				err = renderer.RenderToSVG(f, doc)
			case ".png":
				err = renderer.RenderToPNG(f, doc)
			default:
				spinner.Stop()
				return errors.New(errors.ErrCodeInvalidInput, "unsupported output extension %q, use .svg or .png", filepath.Ext(output))
			}

			if err != nil {
				spinner.StopWithError("Render failed")
				return err
			}
			spinner.StopWithSuccess(fmt.Sprintf("Rendered %d items", rec.Container.ItemCount()))
			printFile(output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "planogram.svg", "output image (.svg or .png)")
	return cmd
}
