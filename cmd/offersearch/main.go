// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/poiesic/offersearch/config"
	"github.com/poiesic/offersearch/ingestion"
	"github.com/urfave/cli/v2"
)

const envPrefix = "OFFERSEARCH_"

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "offersearch",
		Usage: "Rank retail offers against free-text queries",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to a YAML config file",
				EnvVars: []string{envPrefix + "CONFIG"},
			},
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				EnvVars: []string{envPrefix + "LOG_LEVEL"},
			},
			&cli.StringFlag{
				Name:    "db",
				Aliases: []string{"d"},
				Usage:   "Path to BadgerDB database directory (empty keeps data in memory)",
				EnvVars: []string{envPrefix + "DB"},
			},
			&cli.IntFlag{
				Name:    "pool-size",
				Usage:   "Worker pool size for catalog builds and imports (0 picks from CPU count)",
				EnvVars: []string{envPrefix + "POOL_SIZE"},
			},
		},
		Before: setup,
		Commands: []*cli.Command{
			{
				Name:      "import",
				Usage:     "Replace the stored catalog with a CSV or bzip2 CSV snapshot",
				ArgsUsage: "<snapshot.csv[.bz2]>",
				Action:    importCommand,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Number of rows written per transaction",
						Value: ingestion.DefaultBatchSize,
					},
					&cli.BoolFlag{
						Name:  "progress",
						Usage: "Report import progress on stderr",
						Value: true,
					},
				},
			},
			{
				Name:   "serve",
				Usage:  "Serve search requests over HTTP",
				Action: serveCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "listen",
						Usage:   "HTTP listen address",
						EnvVars: []string{envPrefix + "LISTEN"},
					},
					&cli.StringFlag{
						Name:    "snapshot",
						Usage:   "CSV snapshot imported at startup and on SIGHUP",
						EnvVars: []string{envPrefix + "SNAPSHOT"},
					},
					&cli.IntFlag{
						Name:    "cache-size",
						Usage:   "Result cache capacity (0 disables caching)",
						EnvVars: []string{envPrefix + "CACHE_SIZE"},
					},
					&cli.IntFlag{
						Name:    "default-limit",
						Usage:   "Results returned when a request sets no limit",
						EnvVars: []string{envPrefix + "DEFAULT_LIMIT"},
					},
					&cli.StringSliceFlag{
						Name:    "allowed-origin",
						Usage:   "CORS allowed origin (repeatable)",
						EnvVars: []string{envPrefix + "ALLOWED_ORIGINS"},
					},
					&cli.DurationFlag{
						Name:  "read-timeout",
						Usage: "HTTP read timeout",
					},
					&cli.DurationFlag{
						Name:  "write-timeout",
						Usage: "HTTP write timeout",
					},
				},
			},
			{
				Name:      "search",
				Usage:     "Rank the stored catalog against a query",
				ArgsUsage: "<query...>",
				Action:    searchCommand,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:    "limit",
						Aliases: []string{"n"},
						Usage:   "Number of results (0 uses the configured default)",
					},
					&cli.BoolFlag{
						Name:  "explain",
						Usage: "Print each ranking stage",
					},
				},
			},
			{
				Name:   "info",
				Usage:  "Show the stored snapshot",
				Action: infoCommand,
			},
		},
	}
}

// setup loads .env, resolves the configuration and configures logging.
func setup(c *cli.Context) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("loading .env: %w", err)
	}

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	level, err := cfg.SlogLevel()
	if err != nil {
		return err
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}

// loadConfig layers flags over the config file over the defaults.
// Only flags the user actually set override earlier layers.
func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if path := c.String("config"); path != "" {
		var err error
		if cfg, err = config.Load(path); err != nil {
			return nil, err
		}
	}

	var opts []config.Option
	if c.IsSet("log-level") {
		opts = append(opts, config.WithLogLevel(c.String("log-level")))
	}
	if c.IsSet("db") {
		opts = append(opts, config.WithDBPath(c.String("db")))
	}
	if c.IsSet("pool-size") {
		opts = append(opts, config.WithPoolSize(c.Int("pool-size")))
	}
	if c.IsSet("listen") {
		opts = append(opts, config.WithListenAddr(c.String("listen")))
	}
	if c.IsSet("snapshot") {
		opts = append(opts, config.WithSnapshotPath(c.String("snapshot")))
	}
	if c.IsSet("cache-size") {
		opts = append(opts, config.WithCacheSize(c.Int("cache-size")))
	}
	if c.IsSet("default-limit") {
		opts = append(opts, config.WithDefaultLimit(c.Int("default-limit")))
	}
	if c.IsSet("allowed-origin") {
		opts = append(opts, config.WithAllowedOrigins(c.StringSlice("allowed-origin")...))
	}
	if c.IsSet("read-timeout") || c.IsSet("write-timeout") {
		read, write := cfg.ReadTimeout, cfg.WriteTimeout
		if c.IsSet("read-timeout") {
			read = c.Duration("read-timeout")
		}
		if c.IsSet("write-timeout") {
			write = c.Duration("write-timeout")
		}
		opts = append(opts, config.WithTimeouts(read, write))
	}
	for _, opt := range opts {
		opt(cfg)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// elapsed formats a duration for command output.
func elapsed(d time.Duration) string {
	return d.Round(time.Millisecond).String()
}
