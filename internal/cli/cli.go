// Package cli implements the schemadraw command-line interface.
//
// This package provides commands for converting diagram text between the
// supported dialects, rendering diagrams as SVG or PNG, inspecting diagram
// files, and applying AI suggestions to a diagram. The CLI is built using
// cobra and supports verbose logging via the charmbracelet/log library.
//
// # Commands
//
// The main commands are:
//   - convert: Translate dialect text or diagram JSON between formats
//   - render: Generate SVG, PNG, or DOT output from a diagram
//   - inspect: Show the structure of a diagram or dialect file
//   - suggest: Expand a suggestion into preview content via the generation service
//   - watch: Keep a dialect text file and its diagram representation in sync
//   - serve: Run the HTTP conversion and rendering facade
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. Loggers are
// passed through context.Context to allow structured progress tracking.
package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/schemadraw/schemadraw/pkg/buildinfo"
	"github.com/schemadraw/schemadraw/pkg/store"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "schemadraw"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
	Config Config
}

// New creates a new CLI instance with a default logger and the config
// loaded from the default path (missing config files are fine).
func New(w io.Writer, level log.Level) *CLI {
	c := &CLI{
		Logger: log.NewWithOptions(w, log.Options{
			ReportTimestamp: true,
			TimeFormat:      "15:04:05.00",
			Level:           level,
		}),
	}
	cfg, err := LoadConfig("")
	if err != nil {
		c.Logger.Warnf("Config ignored: %v", err)
		cfg = DefaultConfig()
	}
	c.Config = cfg
	return c
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          "schemadraw",
		Short:        "Schemadraw edits and converts diagrams from text",
		Long:         `Schemadraw is a CLI tool for working with diagrams as text: convert between ER, class, sequence, flowchart, and architecture dialects, render diagrams to SVG or PNG, and expand AI suggestions into preview content.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())

	// Register all subcommands
	root.AddCommand(c.convertCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.inspectCommand())
	root.AddCommand(c.suggestCommand())
	root.AddCommand(c.watchCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Store Factory
// =============================================================================

// newStore opens the store backend named in the config.
func (c *CLI) newStore(ctx context.Context) (store.Store, error) {
	switch c.Config.Store.Backend {
	case "", backendMemory:
		return store.NewMemoryStore(), nil
	case backendRedis:
		return store.NewRedisStore(ctx, store.RedisOptions{
			Addr:     c.Config.Store.Redis.Addr,
			Password: c.Config.Store.Redis.Password,
			DB:       c.Config.Store.Redis.DB,
			Prefix:   c.Config.Store.Redis.Prefix,
		})
	case backendMongo:
		return store.NewMongoStore(ctx, store.MongoOptions{
			URI:        c.Config.Store.Mongo.URI,
			Database:   c.Config.Store.Mongo.Database,
			Collection: c.Config.Store.Mongo.Collection,
		})
	}
	return nil, configErrorf("unknown store backend %q", c.Config.Store.Backend)
}

// =============================================================================
// Paths
// =============================================================================

// configDir returns the config directory using XDG standard (~/.config/schemadraw/).
func configDir() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName), nil
}
