// Command paged-proxy walks paged upstream JSON endpoints and re-serves them
// as a single streamed envelope, optionally caching upstream pages in Redis.
//
//	paged-proxy --upstream https://api.example.com --listen :8080
//	curl 'localhost:8080/pages/v1/orders?skip=10&take=25'
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Sternrassler/pagedseq/pkg/client"
	"github.com/Sternrassler/pagedseq/pkg/logging"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"
)

var (
	// Build information. Populated at build-time via -ldflags flag.
	version = "dev"
	commit  = "HEAD"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	if err := newCommand().Run(context.Background(), os.Args); err != nil {
		log.Fatal().Err(err).Msg("Proxy failed")
	}
}

func newCommand() *cli.Command {
	return &cli.Command{
		Name:    "paged-proxy",
		Usage:   "Re-serve paged upstream JSON endpoints as one streamed envelope",
		Version: fmt.Sprintf("%s (%s)", version, commit),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "upstream",
				Usage:    "base URL of the upstream API",
				Sources:  cli.EnvVars("PAGED_PROXY_UPSTREAM"),
				Required: true,
			},
			&cli.StringFlag{
				Name:    "listen",
				Usage:   "listen address",
				Sources: cli.EnvVars("PAGED_PROXY_LISTEN"),
				Value:   ":8080",
			},
			&cli.StringFlag{
				Name:    "redis",
				Usage:   "Redis address for the response cache (empty disables caching)",
				Sources: cli.EnvVars("PAGED_PROXY_REDIS", "REDIS_URL"),
			},
			&cli.StringFlag{
				Name:    "user-agent",
				Usage:   "User-Agent sent upstream",
				Sources: cli.EnvVars("PAGED_PROXY_USER_AGENT"),
				Value:   "paged-proxy/" + version,
			},
			&cli.IntFlag{
				Name:    "page-size",
				Usage:   "page size requested upstream (0 leaves it to the upstream)",
				Sources: cli.EnvVars("PAGED_PROXY_PAGE_SIZE"),
			},
			&cli.IntFlag{
				Name:    "prefetch",
				Usage:   "upstream pages fetched ahead of the consumer (0 disables)",
				Sources: cli.EnvVars("PAGED_PROXY_PREFETCH"),
				Value:   4,
			},
			&cli.DurationFlag{
				Name:    "timeout",
				Usage:   "timeout for a single upstream attempt",
				Sources: cli.EnvVars("PAGED_PROXY_TIMEOUT"),
				Value:   30 * time.Second,
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "log level (debug, info, warn, error)",
				Sources: cli.EnvVars("PAGED_PROXY_LOG_LEVEL"),
				Value:   "info",
			},
			&cli.BoolFlag{
				Name:    "pretty",
				Usage:   "human-readable console logs instead of JSON",
				Sources: cli.EnvVars("PAGED_PROXY_PRETTY"),
			},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			level, err := logging.ParseLevel(cmd.String("log-level"))
			if err != nil {
				return ctx, fmt.Errorf("failed to parse log level: %w", err)
			}
			logging.Setup(logging.Config{Level: level, Pretty: cmd.Bool("pretty"), Output: os.Stderr})
			return ctx, nil
		},
		Action: run,
	}
}

func run(ctx context.Context, cmd *cli.Command) error {
	logger := logging.NewLogger("paged-proxy")

	cfg := client.DefaultConfig(cmd.String("upstream"), cmd.String("user-agent"))
	cfg.PageSize = int(cmd.Int("page-size"))
	cfg.Timeout = cmd.Duration("timeout")

	if addr := cmd.String("redis"); addr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: addr})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("connect to redis at %s: %w", addr, err)
		}
		cfg.Redis = rdb
		logger.Info().Str("redis", addr).Msg("Response cache enabled")
	}

	upstream, err := client.New(cfg)
	if err != nil {
		return fmt.Errorf("create upstream client: %w", err)
	}
	defer upstream.Close()

	srv := &http.Server{
		Addr:              cmd.String("listen"),
		Handler:           newMux(upstream, int(cmd.Int("prefetch"))),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info().
			Str("listen", srv.Addr).
			Str("upstream", cfg.BaseURL).
			Msg("Starting paged proxy")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	logger.Info().Msg("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
