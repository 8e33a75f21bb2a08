// Package cli implements the shelfstack command-line interface.
package cli

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/shelfworks/shelfstack/pkg/buildinfo"
	"github.com/shelfworks/shelfstack/pkg/catalog"
	"github.com/shelfworks/shelfstack/pkg/errors"
	"github.com/shelfworks/shelfstack/pkg/layouts"
	"github.com/shelfworks/shelfstack/pkg/snapshot"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "shelfstack"

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

	layoutsPath string
	catalogPath string
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: log.NewWithOptions(w, log.Options{
			ReportTimestamp: true,
			TimeFormat:      "15:04:05.00",
			Level:           level,
		}),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          "shelfstack",
		Short:        "Shelfstack edits and validates refrigerator planograms",
		Long:         `Shelfstack is a CLI tool for building refrigerator planogram layouts: placing products on shelves, validating placement rules, and exporting absolute-pixel documents for downstream vision tooling.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
		},
	}

	root.SetVersionTemplate(buildinfo.Template())

	root.PersistentFlags().StringVar(&c.layoutsPath, "layouts", "", "path to a layout library TOML (default: built-in models)")
	root.PersistentFlags().StringVar(&c.catalogPath, "catalog", "", "path to a product catalog TOML")

	// Register all subcommands
	root.AddCommand(c.layoutsCommand())
	root.AddCommand(c.newCommand())
	root.AddCommand(c.validateCommand())
	root.AddCommand(c.exportCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.inspectCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Shared Loaders
// =============================================================================

// library returns the layout library: the --layouts file when given, the
// built-in models otherwise.
func (c *CLI) library() (*layouts.Library, error) {
	if c.layoutsPath == "" {
		return layouts.DefaultLibrary(), nil
	}
	return layouts.LoadLibrary(c.layoutsPath)
}

// productCatalog loads the --catalog file. Commands that place or replace
// products need one; the rest work without.
func (c *CLI) productCatalog() (catalog.Source, error) {
	if c.catalogPath == "" {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "no catalog configured, pass --catalog")
	}
	return catalog.NewFileSource(c.catalogPath)
}

// =============================================================================
// Session Files
// =============================================================================

// readSession loads a session record from a JSON file written by writeSession
// or by the serve file store.
func readSession(path string) (snapshot.Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return snapshot.Record{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "read session file %s", path)
	}
	var rec snapshot.Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return snapshot.Record{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse session file %s", path)
	}
	return rec, nil
}

// writeSession stores a session record as indented JSON.
func writeSession(path string, rec snapshot.Record) error {
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "encode session")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "write session file %s", path)
	}
	return nil
}

// =============================================================================
// Paths
// =============================================================================

// snapshotDir returns the session directory using XDG standard
// (~/.local/state/shelfstack/sessions/).
func snapshotDir() (string, error) {
	if stateHome := os.Getenv("XDG_STATE_HOME"); stateHome != "" {
		return filepath.Join(stateHome, appName, "sessions"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".local", "state", appName, "sessions"), nil
}
