package cmd

import (
	"boxbreath/internal/logging"
	"boxbreath/internal/offline"

	"github.com/spf13/cobra"
)

type serveFlags struct {
	addr      string
	origin    string
	cacheDB   string
	cacheName string
}

func newServeCmd(opts *options) *cobra.Command {
	flags := &serveFlags{}
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the web app shell with an offline cache",
		Long: `Cache the web app shell of --origin in a local database and serve it,
falling back to the cached entry page when the origin is unreachable.

Settings come from BOXBREATH_ADDR, BOXBREATH_ORIGIN, BOXBREATH_CACHE_DB,
BOXBREATH_CACHE_NAME and BOXBREATH_FETCH_TIMEOUT; flags override them.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := opts.loadSettings(cmd)
			if err != nil {
				return err
			}
			logger := logging.Component(opts.logger(cmd.ErrOrStderr(), settings), "offline")

			config, err := offline.LoadServerConfig()
			if err != nil {
				return err
			}
			config = flags.apply(cmd, config)
			if config.CacheDB == "" {
				if config.CacheDB, err = offline.DefaultCacheDB(appName); err != nil {
					return err
				}
			}
			return offline.Serve(cmd.Context(), config, logger)
		},
	}

	serveCmd.Flags().StringVar(&flags.addr, "addr", "", "listen address")
	serveCmd.Flags().StringVar(&flags.origin, "origin", "", "upstream origin of the web app")
	serveCmd.Flags().StringVar(&flags.cacheDB, "cache-db", "", "cache database path")
	serveCmd.Flags().StringVar(&flags.cacheName, "cache-name", "", "cache version name")
	return serveCmd
}

func (flags *serveFlags) apply(cmd *cobra.Command, config offline.ServerConfig) offline.ServerConfig {
	set := cmd.Flags()
	if set.Changed("addr") {
		config.Addr = flags.addr
	}
	if set.Changed("origin") {
		config.Origin = flags.origin
	}
	if set.Changed("cache-db") {
		config.CacheDB = flags.cacheDB
	}
	if set.Changed("cache-name") {
		config.CacheName = flags.cacheName
	}
	return config
}
