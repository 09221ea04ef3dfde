package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/kle/internal/server"
)

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr     string
		noCache  bool
		cacheTTL time.Duration
		maxBody  int64
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the layout codec over HTTP",
		Long: `Serve starts an HTTP API for deserializing, serializing and normalizing
layouts:

  GET  /healthz
  POST /v1/deserialize   rows → normalized model
  POST /v1/serialize     normalized model → rows
  POST /v1/normalize     rows → canonical rows

Results are cached in Redis when cache.redis_url (or KLE_REDIS_URL) is set,
otherwise in the local cache directory.`,
		Example: `  kle serve --addr :8080
  KLE_REDIS_URL=redis://localhost:6379/0 kle serve`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if addr == "" {
				addr = c.config.Server.Addr
			}
			if !cmd.Flags().Changed("cache-ttl") {
				cacheTTL = c.config.Cache.TTL
			}

			cc, err := c.newCache(ctx, noCache)
			if err != nil {
				return err
			}
			defer cc.Close()

			srv := server.New(server.Config{
				Addr:         addr,
				Cache:        cc,
				CacheTTL:     cacheTTL,
				KeyPrefix:    c.config.Server.CachePrefix,
				Logger:       loggerFromContext(ctx),
				MaxBodyBytes: maxBody,
			})
			printInfo("Serving on http://%s", srv.Addr())
			return srv.ListenAndServe(ctx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, "+server.DefaultAddr+")")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable result caching")
	cmd.Flags().DurationVar(&cacheTTL, "cache-ttl", defaultCacheTTL, "result cache TTL")
	cmd.Flags().Int64Var(&maxBody, "max-body", server.DefaultMaxBodyBytes, "maximum request body size in bytes")
	return cmd
}
