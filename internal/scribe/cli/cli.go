// Package cli holds the startup and shutdown steps shared by the gitscribe
// binaries.
package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/RobinCoderZhao/gitscribe/internal/scribe/config"
	"github.com/RobinCoderZhao/gitscribe/internal/scribe/tui"
	"github.com/RobinCoderZhao/gitscribe/pkg/scribeerr"
	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
)

// Version is set at build time with -ldflags "-X ...cli.Version=v1.2.3".
var Version = "dev"

// LogLevel resolves the slog level from the configured name. verbose forces
// debug.
func LogLevel(name string, verbose bool) slog.Level {
	if verbose {
		return slog.LevelDebug
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(name))); err != nil {
		return slog.LevelWarn
	}
	return level
}

// SetupLogging installs the default logger, writing text records to w.
func SetupLogging(w io.Writer, level slog.Level) {
	slog.SetDefault(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})))
}

// LoadConfig loads the configuration and sets up logging from it.
func LoadConfig(path string, verbose bool) (config.Config, error) {
	// Logging is needed while loading; the configured level applies after.
	SetupLogging(os.Stderr, LogLevel("", verbose))
	cfg, err := config.Load(config.Options{Path: path, EnvFiles: config.DefaultEnvFiles()})
	if err != nil {
		return cfg, err
	}
	SetupLogging(os.Stderr, LogLevel(cfg.LogLevel, verbose))
	slog.Debug("config loaded", "provider", cfg.LLM.Provider, "model", cfg.LLM.Model,
		"timeout", cfg.Timeout, "max_lines", cfg.Diff.MaxLines)
	return cfg, nil
}

// ReadmePath anchors a relative README path at the repository root.
func ReadmePath(repoDir, readme string) string {
	if readme == "" || filepath.IsAbs(readme) {
		return readme
	}
	return filepath.Join(repoDir, readme)
}

// VersionCmd prints the binary name and version.
func VersionCmd(name string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", name, Version)
		},
	}
}

// Report writes err and its hints to w and returns the process exit code.
func Report(w io.Writer, err error) int {
	if err == nil {
		return 0
	}
	fmt.Fprintln(w, tui.Warn.Render("error: "+err.Error()))
	if hint := errors.FlattenHints(err); hint != "" {
		fmt.Fprintln(w, tui.Muted.Render("hint: "+hint))
	}
	slog.Debug("run failed", "kind", scribeerr.Kind(err), "error", fmt.Sprintf("%+v", err))
	return 1
}
