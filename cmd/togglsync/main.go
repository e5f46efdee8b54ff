package main

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/tildaslashalef/togglsync/internal/app"
	"github.com/tildaslashalef/togglsync/internal/commands"
)

// Version information - populated at build time
var (
	Version   = "dev"
	BuildTime = "unknown"
)

// globalFlags mirror the sync command flags so the default action works
// without naming the subcommand.
var globalFlags = []cli.Flag{
	&cli.StringFlag{
		Name:    "from",
		Aliases: []string{"f"},
		Usage:   "Start date (YYYY-MM-DD)",
	},
	&cli.StringFlag{
		Name:    "to",
		Aliases: []string{"t"},
		Usage:   "End date (YYYY-MM-DD)",
	},
	&cli.BoolFlag{
		Name:    "dry-run",
		Aliases: []string{"d"},
		Usage:   "Show what would be synced without creating work logs",
	},
	&cli.BoolFlag{
		Name:    "yes",
		Aliases: []string{"y"},
		Usage:   "Skip the confirmation prompt before submitting",
	},
	&cli.BoolFlag{
		Name:  "no-interactive",
		Usage: "Skip the interactive assignment of entries without issue keys",
	},
}

func main() {
	cliApp := &cli.App{
		Name:  "togglsync",
		Usage: "Sync Toggl Track time entries to Jira work logs",
		Description: "Togglsync fetches Toggl Track time entries for a date range, extracts\n" +
			"Jira issue keys from their descriptions, and creates the matching work\n" +
			"logs in Jira. Entries already submitted are remembered in a local ledger\n" +
			"and never submitted twice.\n\n" +
			"When run without subcommands, togglsync performs a sync (default action).",
		Version: Version,
		Compiled: func() time.Time {
			t, err := time.Parse(time.RFC3339, BuildTime)
			if err != nil {
				return time.Now()
			}
			return t
		}(),
		Flags: globalFlags,
		Before: func(c *cli.Context) error {
			application, err := app.New()
			if err != nil {
				return fmt.Errorf("failed to initialize application: %w", err)
			}

			c.App.Metadata = map[string]interface{}{
				"app": application,
			}

			return nil
		},
		After: func(c *cli.Context) error {
			if app, ok := c.App.Metadata["app"].(*app.App); ok {
				return app.Shutdown()
			}
			return nil
		},
		Commands: []*cli.Command{
			commands.SyncCommand(),
			commands.HistoryCommand(),
			commands.ConfigCommand(),
		},
		Action: func(c *cli.Context) error {
			// Default action is to run the sync command
			return commands.SyncCommand().Action(c)
		},
	}

	if err := cliApp.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
