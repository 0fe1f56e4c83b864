package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/sessgate/internal/infra/buildinfo"
	"github.com/yndnr/sessgate/internal/server/config"
	"github.com/yndnr/sessgate/internal/server/protocol"
	"github.com/yndnr/sessgate/internal/telemetry/logger"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:    "sessgate-server",
		Usage:   "session-gated reverse proxy",
		Version: buildinfo.String(),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				EnvVars: []string{"SESSGATE_CONFIG"},
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "Override log level: debug, info, warn, error",
			},
		},
		Commands: []*cli.Command{
			checkConfigCommand(),
		},
		Action: func(c *cli.Context) error {
			cfg, _, err := loadConfig(c)
			if err != nil {
				return err
			}
			return serve(c.Context, cfg, c.String("config"), overrides(c))
		},
	}
}

func checkConfigCommand() *cli.Command {
	return &cli.Command{
		Name:  "check-config",
		Usage: "Validate configuration and print the resolved endpoints",
		Action: func(c *cli.Context) error {
			_, res, err := loadConfig(c)
			if err != nil {
				return err
			}

			w := c.App.Writer
			fmt.Fprintln(w, "configuration OK")
			fmt.Fprintf(w, "listen:    %s\n", res.Listen)
			fmt.Fprintf(w, "backend:   %s\n", res.Backend)
			fmt.Fprintf(w, "websocket: %s\n", res.BackendWebSocket)
			return nil
		},
	}
}

// overrides maps command-line flags onto config keys.
func overrides(c *cli.Context) map[string]any {
	m := map[string]any{}
	if v := c.String("log-level"); v != "" {
		m["log.level"] = v
	}
	return m
}

// loadConfig loads, verifies and resolves the configuration. It runs
// before any listener is bound, so a bad key/cert pairing aborts startup.
func loadConfig(c *cli.Context) (*config.ServerConfig, *protocol.Resolution, error) {
	cfg, err := config.Load(c.String("config"), overrides(c))
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}

	if err := config.Verify(cfg); err != nil {
		return nil, nil, fmt.Errorf("invalid configuration: %w", err)
	}

	res, err := protocol.Resolve(cfg)
	if err != nil {
		return nil, nil, err
	}

	return cfg, res, nil
}

// reloadLogLevel re-reads the configuration and applies its log level.
// An unreadable or invalid file leaves the level unchanged.
func reloadLogLevel(ctx context.Context, path string, flags map[string]any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	cfg, err := config.Load(path, flags)
	if err != nil {
		return err
	}
	if err := config.Verify(cfg); err != nil {
		return err
	}
	logger.SetLevel(cfg.Log.Level)
	return nil
}
