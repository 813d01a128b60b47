package cmd

import (
	"fmt"

	"boxbreath/internal/logging"
	"boxbreath/internal/route"
	"boxbreath/internal/session"
	"boxbreath/internal/ui/terminal"

	"github.com/spf13/cobra"
)

func newTUICmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "tui [link]",
		Short: "Run a session in the terminal",
		Long: `Run one breathing session in the terminal. The session uses the
link argument if given, otherwise --phase and --limit, otherwise the last
used settings. Press q, esc or ctrl+c to stop.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := opts.loadSettings(cmd)
			if err != nil {
				return err
			}
			logger := opts.logger(cmd.ErrOrStderr(), settings)

			config := settings.SessionConfig()
			if len(args) > 0 {
				resolved, err := route.ParseLink(args[0])
				if err != nil {
					return err
				}
				if resolved.View == route.ViewExercise {
					config = resolved.Session
				}
			}

			settings.PhaseSeconds = config.PhaseSeconds
			settings.LastLimit = config.Limit
			if err := opts.saveSettings(settings); err != nil {
				logger.Warn("save settings", "error", err)
			}

			controller := session.NewController(runnerConfig(settings), logging.Component(logger, "session"))
			reason, err := terminal.New(controller, config, logger).Run(cmd.Context())
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "session %s\n", reason)
			return err
		},
	}
}
