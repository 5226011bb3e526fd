package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/schemadraw/schemadraw/pkg/diagram"
	"github.com/schemadraw/schemadraw/pkg/dialect"
	"github.com/schemadraw/schemadraw/pkg/dialect/dialects"
	pkgio "github.com/schemadraw/schemadraw/pkg/io"
)

// convertOpts holds the command-line flags for the convert command.
type convertOpts struct {
	from   string // source dialect (auto-detected if empty)
	to     string // output form: "json" or "text"
	output string // output file path (stdout if empty)
}

// convertCommand creates the convert command for translating between
// dialect text and diagram JSON.
func (c *CLI) convertCommand() *cobra.Command {
	var opts convertOpts

	cmd := &cobra.Command{
		Use:   "convert <file>",
		Short: "Convert dialect text or diagram JSON between formats",
		Long: `Convert between diagram text dialects and the JSON diagram format.

The input format is detected from the file: .json files are read as diagram
JSON, everything else is parsed as dialect text (the dialect is sniffed from
the syntax unless --from is given).

Examples:
  schemadraw convert schema.er                      # text -> diagram JSON on stdout
  schemadraw convert schema.er -o schema.json       # text -> diagram JSON file
  schemadraw convert schema.json --to text          # diagram JSON -> dialect text
  schemadraw convert flow.txt --from flow --to text # reparse and normalize`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runConvert(cmd, args[0], &opts)
		},
	}

	cmd.Flags().StringVar(&opts.from, "from", "", "source dialect: er, class, sequence, flow, architecture (auto-detect if empty)")
	cmd.Flags().StringVar(&opts.to, "to", "json", "output form: json or text")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (stdout if empty)")

	return cmd
}

func (c *CLI) runConvert(cmd *cobra.Command, input string, opts *convertOpts) error {
	logger := loggerFromContext(cmd.Context())

	if opts.to != "json" && opts.to != "text" {
		return fmt.Errorf("invalid --to: %s (must be 'json' or 'text')", opts.to)
	}

	prog := newProgress(logger)
	d, inconsistencies, err := loadDiagram(input, opts.from)
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Loaded %d shapes and %d connectors", len(d.Shapes), len(d.Connectors)))

	for _, msg := range inconsistencies {
		logger.Warnf("Inconsistency: %s", msg)
	}

	out, err := openOutput(opts.output)
	if err != nil {
		return err
	}
	defer out.Close()

	switch opts.to {
	case "json":
		if err := pkgio.WriteJSON(d, out); err != nil {
			return err
		}
	case "text":
		text, err := dialects.Export(d)
		if err != nil {
			return err
		}
		if _, err := io.WriteString(out, text); err != nil {
			return err
		}
	}

	if opts.output != "" {
		logger.Infof("Wrote %s", opts.output)
	}
	return nil
}

// loadDiagram reads a diagram from a .json file or parses dialect text.
// For text input it returns any recoverable inconsistencies the importer
// recorded.
func loadDiagram(path, from string) (*diagram.Diagram, []string, error) {
	if strings.HasSuffix(strings.ToLower(path), ".json") {
		d, err := pkgio.ImportJSON(path)
		return d, nil, err
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("read %s: %w", path, err)
	}
	text := string(raw)

	var codec dialect.Codec
	if from != "" {
		codec, err = dialects.ForType(diagram.Type(from))
	} else {
		codec, err = dialects.Detect(text)
	}
	if err != nil {
		return nil, nil, err
	}

	result, err := codec.Import(text, dialect.ImportOptions{})
	if err != nil {
		return nil, nil, err
	}
	shapes, conns, err := result.Materialize()
	if err != nil {
		return nil, nil, err
	}

	d := &diagram.Diagram{
		ID:         diagram.NewID(),
		Type:       result.Type,
		Shapes:     shapes,
		Connectors: conns,
	}
	return d, result.Inconsistencies, nil
}

// nopCloser wraps an io.Writer with a no-op Close method.
type nopCloser struct{ io.Writer }

// Close implements io.Closer with a no-op.
func (nopCloser) Close() error { return nil }

// openOutput returns a WriteCloser for the given path.
// If path is empty, it returns os.Stdout wrapped in nopCloser.
func openOutput(path string) (io.WriteCloser, error) {
	if path == "" {
		return nopCloser{os.Stdout}, nil
	}
	return os.Create(path)
}
