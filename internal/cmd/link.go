package cmd

import (
	"fmt"

	"boxbreath/internal/route"

	"github.com/spf13/cobra"
)

func newLinkCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "link",
		Short: "Print the link that opens a session",
		Long: `Print the exercise link for the given --phase and --limit. Without
--limit or --unbounded the last used session length is kept.

Examples:
  boxbreath link --phase 5 --limit 3m
  boxbreath link --unbounded`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := opts.loadSettings(cmd)
			if err != nil {
				return err
			}
			config := settings.SessionConfig()
			_, err = fmt.Fprintln(cmd.OutOrStdout(), route.ExerciseLink(config.Limit.Pointer(), config.PhaseSeconds))
			return err
		},
	}
}
