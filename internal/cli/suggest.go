package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/schemadraw/schemadraw/pkg/cache"
	"github.com/schemadraw/schemadraw/pkg/command"
	"github.com/schemadraw/schemadraw/pkg/diagram"
	pkgio "github.com/schemadraw/schemadraw/pkg/io"
	"github.com/schemadraw/schemadraw/pkg/suggest"
)

// suggestOpts holds the command-line flags for the suggest command.
type suggestOpts struct {
	shape   string // target shape id
	prompt  string // suggestion text
	output  string // output file path (input overwritten if empty)
	yes     bool   // skip the confirmation prompt
	noCache bool   // bypass the generation cache
	baseURL string // generation service base URL (overrides config)
	token   string // bearer token (overrides config)
}

// suggestCommand creates the suggest command for expanding an AI
// suggestion into generated content.
func (c *CLI) suggestCommand() *cobra.Command {
	var opts suggestOpts

	cmd := &cobra.Command{
		Use:   "suggest <diagram.json>",
		Short: "Expand a suggestion into generated preview content",
		Long: `Send a shape and a suggestion to the generation service and replace the
shape with the generated content.

The generated content is shown for review before it is kept; rejecting it
restores the diagram exactly. Use --yes to keep it without asking.

Example:
  schemadraw suggest flow.json --shape 7f3a... --prompt "split into review and deploy"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.shape == "" || opts.prompt == "" {
				return fmt.Errorf("--shape and --prompt are required")
			}
			return c.runSuggest(cmd, args[0], &opts)
		},
	}

	cmd.Flags().StringVar(&opts.shape, "shape", "", "id of the shape the suggestion targets")
	cmd.Flags().StringVar(&opts.prompt, "prompt", "", "suggestion text sent to the generation service")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (input overwritten if empty)")
	cmd.Flags().BoolVarP(&opts.yes, "yes", "y", false, "keep the generated content without asking")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "always call the generation service, even for repeated requests")
	cmd.Flags().StringVar(&opts.baseURL, "base-url", "", "generation service base URL (overrides config)")
	cmd.Flags().StringVar(&opts.token, "token", "", "bearer token for the generation service (overrides config)")

	return cmd
}

func (c *CLI) runSuggest(cmd *cobra.Command, input string, opts *suggestOpts) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)

	baseURL := opts.baseURL
	if baseURL == "" {
		baseURL = c.Config.Generator.BaseURL
	}
	if baseURL == "" {
		return fmt.Errorf("no generation service configured (set generator.base_url or --base-url)")
	}
	token := opts.token
	if token == "" {
		token = c.Config.Generator.AuthToken
	}

	d, err := pkgio.ImportJSON(input)
	if err != nil {
		return err
	}
	target := d.ShapeByID(opts.shape)
	if target == nil {
		return fmt.Errorf("shape %q not found in %s", opts.shape, input)
	}

	st, err := c.newStore(ctx)
	if err != nil {
		return err
	}
	if err := st.PutDiagram(ctx, d); err != nil {
		return err
	}
	defer st.Close()

	engine, err := command.NewEngine(ctx, st, d.ID, logger)
	if err != nil {
		return err
	}

	// Attach the suggestion to the target as an editing step of its own,
	// then expand it.
	sug := &diagram.Shape{
		Type:   diagram.ShapeSuggestion,
		X:      target.X + target.Width + 40,
		Y:      target.Y,
		Width:  200,
		Height: 80,
		Suggestion: &diagram.SuggestionPayload{
			TargetShapeID: target.ID,
			Text:          opts.prompt,
		},
	}
	createSug := &command.CreateShape{Shape: sug}
	if err := engine.Execute(ctx, createSug); err != nil {
		return err
	}

	gen, err := c.newGenerator(baseURL, token, opts.noCache)
	if err != nil {
		return err
	}
	apply := &suggest.ApplySuggestion{
		SuggestionID: createSug.Shape.ID,
		Generator:    gen,
	}

	spinner := newSpinnerWithContext(ctx, "Generating...")
	spinner.Start()
	if err := engine.Execute(ctx, apply); err != nil {
		spinner.StopWithError("Generation failed")
		return err
	}
	spinner.Stop()

	result := engine.Snapshot()
	container, members := previewContent(result)
	if container == nil {
		return fmt.Errorf("no preview content after apply")
	}
	printSuccess("Generated %d shapes", len(members))

	accepted := opts.yes
	if !accepted {
		accepted, err = confirmPreview("Generated content", members)
		if err != nil {
			return err
		}
	}

	if accepted {
		if err := engine.Execute(ctx, &suggest.CommitPreview{PreviewID: container.ID}); err != nil {
			return err
		}
		printSuccess("Suggestion applied")
	} else {
		// Reverse the apply and the suggestion shape creation.
		if err := engine.Undo(ctx); err != nil {
			return err
		}
		if err := engine.Undo(ctx); err != nil {
			return err
		}
		printInfo("Discarded, diagram unchanged")
	}

	outputPath := opts.output
	if outputPath == "" {
		outputPath = input
	}
	if err := pkgio.ExportJSON(engine.Snapshot(), outputPath); err != nil {
		return err
	}
	printFile(outputPath)
	return nil
}

// newGenerator builds the generation client, caching responses on disk
// unless caching is disabled.
func (c *CLI) newGenerator(baseURL, token string, noCache bool) (suggest.Generator, error) {
	inner := suggest.NewHTTPGenerator(baseURL, token)
	if noCache {
		return suggest.NewCachedGenerator(inner, cache.NewNullCache(), 0), nil
	}
	dir, err := cacheDir()
	if err != nil {
		return nil, err
	}
	fc, err := cache.NewFileCache(dir)
	if err != nil {
		return nil, err
	}
	return suggest.NewCachedGenerator(inner, fc, suggest.DefaultCacheTTL), nil
}

// cacheDir returns the cache directory using XDG standard (~/.cache/schemadraw/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// previewContent finds the preview container and its member shapes.
func previewContent(d *diagram.Diagram) (*diagram.Shape, []*diagram.Shape) {
	for _, s := range d.Shapes {
		if s.Type != diagram.ShapePreview {
			continue
		}
		var members []*diagram.Shape
		for _, id := range s.PreviewData().MemberShapeIDs {
			if m := d.ShapeByID(id); m != nil {
				members = append(members, m)
			}
		}
		return s, members
	}
	return nil, nil
}
