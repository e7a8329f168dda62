package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	"hearingbot/internal/app"
	"hearingbot/internal/config"
	"hearingbot/internal/history"
	"hearingbot/internal/transport/telegram"
	"hearingbot/pkg/logx"
)

func main() {
	cliApp := &cli.App{
		Name:           "hearingbot",
		Usage:          "WhatsApp hearing reminder automation",
		DefaultCommand: "run",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Value:   "app_config.yaml",
				Usage:   "path to the configuration document",
			},
		},
		Commands: []*cli.Command{
			{
				Name:      "run",
				Usage:     "execute a single send pass",
				ArgsUsage: "[profile]",
				Action:    runOnce,
			},
			{
				Name:      "daemon",
				Usage:     "run scheduled passes until terminated",
				ArgsUsage: "[profile]",
				Action:    runDaemon,
			},
			{
				Name:  "history",
				Usage: "show recent runs",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "n", Value: 10, Usage: "number of runs to show"},
				},
				Action: showHistory,
			},
		},
	}
	if err := cliApp.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "fatal:", err)
		os.Exit(1)
	}
}

// setup loads config with a bootstrap console logger, then builds the real
// logging service with the optional telegram alert sink attached.
func setup(c *cli.Context) (*config.Config, logx.Logger, func(), error) {
	boot := logx.NewConsole("info")
	cfg := config.Load(c.String("config"), boot)

	alerter, err := telegram.New(cfg.Notifications.Telegram)
	if err != nil {
		boot.Warn("telegram alerter unavailable", logx.Err(err))
	}
	var sender logx.Sender
	if alerter != nil {
		sender = alerter
	}

	svc, log, err := logx.New(logx.Config{
		Level:   cfg.Logging.Level,
		Console: cfg.Logging.Console,
		Dir:     cfg.Paths.LogDir,
		Alert: logx.AlertConfig{
			Enabled:    cfg.Notifications.Telegram.Enabled,
			MinLevel:   cfg.Notifications.Telegram.MinLevel,
			RatePerSec: cfg.Notifications.Telegram.RatePerSec,
		},
	}, sender)
	if err != nil {
		return nil, logx.Logger{}, nil, err
	}
	return cfg, log, func() { _ = svc.Close() }, nil
}

func runOnce(c *cli.Context) error {
	cfg, log, closeLogs, err := setup(c)
	if err != nil {
		return err
	}
	defer closeLogs()

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	profile := app.ResolveProfile(c.Args().First(), log)
	return app.New(log).Run(ctx, cfg, profile)
}

func runDaemon(c *cli.Context) error {
	cfg, log, closeLogs, err := setup(c)
	if err != nil {
		return err
	}
	defer closeLogs()

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	profile := app.ResolveProfile(c.Args().First(), log)
	d := app.NewDaemon(app.New(log), cfg, profile)
	return d.Run(ctx, c.String("config"))
}

func showHistory(c *cli.Context) error {
	cfg := config.Load(c.String("config"), logx.NewConsole("warn"))
	if cfg.History.Path == "" {
		return fmt.Errorf("run history is disabled: history.path is not configured")
	}
	store, err := history.Open(cfg.History.Path)
	if err != nil {
		return err
	}
	defer store.Close()

	runs, err := store.LastRuns(c.Context, c.Int("n"))
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no recorded runs")
		return nil
	}
	for _, r := range runs {
		fmt.Printf("%s  %-4s  started %s  target %s  sent %d/%d\n",
			r.ID, r.Profile,
			r.StartedAt.Local().Format("2006-01-02 15:04"),
			r.TargetNear.Format("2006-01-02"),
			r.Sent, r.Total)
	}
	return nil
}
