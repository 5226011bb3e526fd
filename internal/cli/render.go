package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/schemadraw/schemadraw/pkg/render"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output         string // output file path (derived from input if empty)
	format         string // output format: "svg", "png", "dot"
	detailed       bool   // include attribute and method rows in node labels
	includePreview bool   // render preview content
	from           string // source dialect for text input
}

// validFormats is the set of supported output formats.
var validFormats = map[string]bool{"svg": true, "png": true, "dot": true}

// renderCommand creates the render command for generating images.
func (c *CLI) renderCommand() *cobra.Command {
	opts := renderOpts{format: "svg"}

	cmd := &cobra.Command{
		Use:   "render <file>",
		Short: "Render a diagram to SVG, PNG, or DOT",
		Long: `Render a diagram file (dialect text or diagram JSON) to an image.

Layout is computed with Graphviz; editor canvas positions are ignored.

Examples:
  schemadraw render schema.er                  # schema.svg
  schemadraw render schema.json -f png         # schema.png
  schemadraw render flow.txt -f dot -o out.dot # DOT source`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !validFormats[opts.format] {
				return fmt.Errorf("invalid format: %s (must be 'svg', 'png', or 'dot')", opts.format)
			}
			return c.runRender(cmd, args[0], &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (derived from input if empty)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", opts.format, "output format: svg (default), png, dot")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "include attribute and method rows in node labels")
	cmd.Flags().BoolVar(&opts.includePreview, "include-preview", false, "render preview content (dashed)")
	cmd.Flags().StringVar(&opts.from, "from", "", "source dialect for text input (auto-detect if empty)")

	return cmd
}

func (c *CLI) runRender(cmd *cobra.Command, input string, opts *renderOpts) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)
	logger.Infof("Rendering %s", input)

	d, inconsistencies, err := loadDiagram(input, opts.from)
	if err != nil {
		return err
	}
	for _, msg := range inconsistencies {
		logger.Warnf("Inconsistency: %s", msg)
	}

	dot := render.ToDOT(d, render.Options{
		Detailed:       opts.detailed,
		IncludePreview: opts.includePreview,
	})

	var data []byte
	switch opts.format {
	case "dot":
		data = []byte(dot)
	case "svg":
		logger.Debug("Rendering SVG")
		data, err = render.SVG(ctx, dot)
	case "png":
		logger.Debug("Rendering PNG")
		data, err = render.PNG(ctx, dot)
	}
	if err != nil {
		return err
	}
	logger.Debugf("Generated %s: %d bytes", opts.format, len(data))

	outputPath := opts.output
	if outputPath == "" {
		outputPath = strings.TrimSuffix(input, filepath.Ext(input)) + "." + opts.format
	}

	out, err := openOutput(outputPath)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := out.Write(data); err != nil {
		return err
	}

	logger.Infof("Generated %s", outputPath)
	return nil
}
