// Package cmd implements the boxbreath command line.
package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"boxbreath/internal/core/breathing"
	"boxbreath/internal/core/model"
	"boxbreath/internal/logging"
	"boxbreath/internal/route"
	"boxbreath/internal/storage"

	"github.com/spf13/cobra"
)

const (
	appName = "BoxBreathing"
	appID   = "com.boxbreath.app"
)

// options holds the flags shared by every command.
type options struct {
	configPath string
	phase      int
	limit      time.Duration
	unbounded  bool
	logLevel   string
	logFormat  string
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	return newRootCmd().ExecuteContext(ctx)
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	rootCmd := &cobra.Command{
		Use:   "boxbreath [link]",
		Short: "Box breathing exercise timer",
		Long: `boxbreath paces the four phases of box breathing: inhale, hold,
exhale and wait, each lasting the same 3 to 6 seconds.

Without a subcommand the desktop app opens. A link such as
"/?view=exercise&phase=5&limit=180" opens the exercise view directly; when
the app is already running the link is handed to it.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGUI(cmd, opts, args)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "settings file (default is the user config dir)")
	flags.IntVar(&opts.phase, "phase", model.DefaultPhaseSeconds, "phase length in seconds (3-6)")
	flags.DurationVar(&opts.limit, "limit", 0, "session length, e.g. 5m")
	flags.BoolVar(&opts.unbounded, "unbounded", false, "run without a session length")
	flags.StringVar(&opts.logLevel, "log-level", "", "log level (DEBUG, INFO, WARN, ERROR)")
	flags.StringVar(&opts.logFormat, "log-format", string(logging.FormatText), "log format (text, json)")

	rootCmd.AddCommand(
		newGUICmd(opts),
		newTUICmd(opts),
		newServeCmd(opts),
		newLinkCmd(opts),
	)
	return rootCmd
}

// loadSettings reads persisted settings and applies the flags given on
// the command line for this run only.
func (opts *options) loadSettings(cmd *cobra.Command) (model.Settings, error) {
	var (
		settings model.Settings
		err      error
	)
	if opts.configPath != "" {
		settings, err = storage.LoadSettingsFile(opts.configPath)
	} else {
		settings, err = storage.LoadSettings(appName)
	}
	if err != nil {
		return settings, fmt.Errorf("load settings: %w", err)
	}

	flags := cmd.Flags()
	if flags.Changed("phase") {
		settings.PhaseSeconds = model.ClampPhaseSeconds(opts.phase)
	}
	if flags.Changed("limit") {
		settings.LastLimit = model.LimitConfig{Duration: opts.limit, Enabled: true}
	}
	if opts.unbounded {
		settings.LastLimit = model.LimitConfig{}
	}
	if opts.logLevel != "" {
		settings.LogLevel = opts.logLevel
	}
	return settings, nil
}

// saveSettings persists settings to the file loadSettings read.
func (opts *options) saveSettings(settings model.Settings) error {
	if opts.configPath != "" {
		return storage.SaveSettingsFile(opts.configPath, settings)
	}
	return storage.SaveSettings(appName, settings)
}

func (opts *options) logger(w io.Writer, settings model.Settings) *slog.Logger {
	return logging.New(w, settings.LogLevel, logging.Format(opts.logFormat))
}

// sessionRequested reports whether flags ask for a session rather than home.
func sessionRequested(cmd *cobra.Command) bool {
	flags := cmd.Flags()
	return flags.Changed("phase") || flags.Changed("limit") || flags.Changed("unbounded")
}

// resolveLink picks the link to open: an explicit argument wins, then the
// session flags, then the home view.
func resolveLink(cmd *cobra.Command, args []string, settings model.Settings) string {
	if len(args) > 0 && args[0] != "" {
		return args[0]
	}
	if sessionRequested(cmd) {
		config := settings.SessionConfig()
		return route.ExerciseLink(config.Limit.Pointer(), config.PhaseSeconds)
	}
	return route.HomeLink()
}

func runnerConfig(settings model.Settings) breathing.RunnerConfig {
	return breathing.RunnerConfig{
		TickInterval:  settings.TickInterval,
		GetReadyDelay: settings.GetReadyDelay,
	}
}
