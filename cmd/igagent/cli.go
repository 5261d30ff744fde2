package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"github.com/beitans8/telegram-ig-agent/internal/bot"
	"github.com/beitans8/telegram-ig-agent/internal/config"
	"github.com/beitans8/telegram-ig-agent/internal/jobs"
	"github.com/beitans8/telegram-ig-agent/internal/lead"
	"github.com/beitans8/telegram-ig-agent/internal/llm"
	"github.com/beitans8/telegram-ig-agent/internal/report"
	"github.com/beitans8/telegram-ig-agent/internal/search"
	"github.com/beitans8/telegram-ig-agent/internal/telegram"
	"github.com/beitans8/telegram-ig-agent/internal/usage"
)

// newCLIApp creates the CLI application with all commands.
func newCLIApp(cfg *config.Config, log *logrus.Logger) *cli.App {
	return &cli.App{
		Name:    "igagent",
		Usage:   "Instagram lead qualification bot",
		Version: Version,
		Commands: []*cli.Command{
			botCmd(cfg, log),
			usageReportCmd(cfg, log),
			usageCmd(cfg),
		},
	}
}

// botCmd runs the long-polling conversational bot.
func botCmd(cfg *config.Config, log *logrus.Logger) *cli.Command {
	return &cli.Command{
		Name:  "bot",
		Usage: "Run the Telegram bot (long polling)",
		Action: func(c *cli.Context) error {
			if err := cfg.ValidateBot(); err != nil {
				return err
			}

			tg := telegram.NewClient(cfg.BotToken)
			ledger := usage.NewLedger(cfg.DataDir)

			b := &bot.Bot{
				Sender: tg,
				Poller: tg,
				Leads:  lead.NewStore(),
				Synth: &report.Synthesizer{
					Search:      search.NewClient(cfg.BraveKey),
					LLM:         llm.NewClient(cfg.OpenAIKey, cfg.CompletionTimeout),
					CatalogPath: cfg.CatalogPath,
					Model:       cfg.Model,
				},
				Ledger: ledger,
				Log:    log,
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			// The in-process daily report runs only when an admin chat is
			// configured; the usage-report command covers external schedulers.
			if cfg.AdminChatID != 0 {
				scheduler, err := jobs.Schedule(&jobs.UsageReport{
					Ledger:      ledger,
					Sender:      tg,
					AdminChatID: cfg.AdminChatID,
					Log:         log,
				})
				if err != nil {
					return err
				}
				defer func() { _ = scheduler.Shutdown() }()
			}

			if err := b.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		},
	}
}

// usageReportCmd sends the 24-hour usage summary to the admin chat once.
func usageReportCmd(cfg *config.Config, log *logrus.Logger) *cli.Command {
	return &cli.Command{
		Name:  "usage-report",
		Usage: "Send the 24h usage summary to the admin chat",
		Action: func(c *cli.Context) error {
			if err := cfg.ValidateAdminReport(); err != nil {
				return err
			}

			job := &jobs.UsageReport{
				Ledger:      usage.NewLedger(cfg.DataDir),
				Sender:      telegram.NewClient(cfg.BotToken),
				AdminChatID: cfg.AdminChatID,
				Log:         log,
			}

			ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
			defer cancel()
			return job.Run(ctx)
		},
	}
}

// usageCmd prints the usage summary for a window to stdout.
func usageCmd(cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "usage",
		Usage: "Print the usage summary for a time window",
		Flags: []cli.Flag{
			&cli.DurationFlag{Name: "since", Aliases: []string{"s"}, Value: 24 * time.Hour, Usage: "Window to aggregate over"},
		},
		Action: func(c *cli.Context) error {
			ledger := usage.NewLedger(cfg.DataDir)

			rows, err := ledger.Aggregate(time.Now().UTC().Add(-c.Duration("since")))
			if err != nil {
				return err
			}

			fmt.Println(usage.FormatReport(rows))
			return nil
		},
	}
}
