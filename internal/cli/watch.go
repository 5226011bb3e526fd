package cli

import (
	"context"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/schemadraw/schemadraw/pkg/command"
	pkgio "github.com/schemadraw/schemadraw/pkg/io"
	"github.com/schemadraw/schemadraw/pkg/sync"
)

// watchOpts holds the command-line flags for the watch command.
type watchOpts struct {
	from     string        // dialect of the watched file
	output   string        // diagram JSON written on exit
	interval time.Duration // poll interval
	debounce time.Duration // export debounce delay
}

// watchCommand creates the watch command for live text/diagram sync.
func (c *CLI) watchCommand() *cobra.Command {
	var opts watchOpts

	cmd := &cobra.Command{
		Use:   "watch <file>",
		Short: "Keep a dialect text file and its diagram in sync",
		Long: `Watch a dialect text file and keep the diagram representation in step.

Edits to the file are imported as single undo steps; after each import the
normalized text is written back (debounced), and that write-back is
recognized as our own and not imported again.

Example:
  schemadraw watch orders.er --output orders.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runWatch(cmd, args[0], &opts)
		},
	}

	cmd.Flags().StringVar(&opts.from, "from", "", "dialect of the file (er|class|sequence|flow|architecture, detected if empty)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "diagram JSON written when the watch stops")
	cmd.Flags().DurationVar(&opts.interval, "interval", 500*time.Millisecond, "file poll interval")
	cmd.Flags().DurationVar(&opts.debounce, "debounce", sync.DefaultDebounce, "delay before regenerated text is written back")

	return cmd
}

func (c *CLI) runWatch(cmd *cobra.Command, path string, opts *watchOpts) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)

	d, inconsistencies, err := loadDiagram(path, opts.from)
	if err != nil {
		return err
	}
	for _, inc := range inconsistencies {
		printWarning("%s", inc)
	}

	st, err := c.newStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()
	if err := st.PutDiagram(ctx, d); err != nil {
		return err
	}

	engine, err := command.NewEngine(ctx, st, d.ID, logger)
	if err != nil {
		return err
	}

	ctrl, err := sync.NewController(engine, sync.ControllerOptions{
		Debounce: opts.debounce,
		OnText: func(ctx context.Context, text string) {
			if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
				logger.Error("write back failed", "path", path, "error", err)
			}
		},
	})
	if err != nil {
		return err
	}
	defer ctrl.Close()

	// Seed with the file's current content so the first poll only
	// reacts to a real edit.
	lastSeen, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	printInfo("Watching %s (ctrl-c to stop)", path)
	ticker := time.NewTicker(opts.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			ctrl.Flush(context.Background())
			if opts.output != "" {
				if err := pkgio.ExportJSON(engine.Snapshot(), opts.output); err != nil {
					return err
				}
				printFile(opts.output)
			}
			return nil
		case <-ticker.C:
			current, err := os.ReadFile(path)
			if err != nil {
				logger.Error("read failed", "path", path, "error", err)
				continue
			}
			if string(current) == string(lastSeen) {
				continue
			}
			lastSeen = current
			if err := ctrl.SetText(ctx, string(current)); err != nil {
				printWarning("not imported: %v", err)
				continue
			}
			snap := engine.Snapshot()
			printInfo("Imported %d shapes, %d connectors", len(snap.Shapes), len(snap.Connectors))
		}
	}
}
