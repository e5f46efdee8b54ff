package commands

import (
	"fmt"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/tildaslashalef/togglsync/internal/app"
	"github.com/tildaslashalef/togglsync/internal/prompt"
	"github.com/tildaslashalef/togglsync/internal/utils"
)

// HistoryCommand returns the CLI command for inspecting the sync ledger
func HistoryCommand() *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "Inspect the ledger of previously synced entries",
		Subcommands: []*cli.Command{
			{
				Name:  "show",
				Usage: "List synced entries",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of records to show (0 for all)",
						Value: 50,
					},
				},
				Action: historyShowAction,
			},
			{
				Name:   "stats",
				Usage:  "Show ledger totals",
				Action: historyStatsAction,
			},
			{
				Name:   "clear",
				Usage:  "Delete all sync history (entries become eligible for re-submission)",
				Action: historyClearAction,
			},
		},
	}
}

func historyShowAction(c *cli.Context) error {
	application, err := app.FromContext(c)
	if err != nil {
		return err
	}

	records := application.Ledger.Records()
	if len(records) == 0 {
		utils.PrintInfo("Sync history is empty.")
		return nil
	}

	limit := c.Int("limit")
	if limit > 0 && len(records) > limit {
		records = records[len(records)-limit:]
	}

	rows := make([][]string, 0, len(records))
	for _, rec := range records {
		rows = append(rows, []string{
			rec.EntryID,
			rec.IssueKey,
			rec.StartedAt.UTC().Format("2006-01-02 15:04"),
			utils.FormatDuration(rec.DurationSeconds),
			utils.Truncate(rec.Description, 40),
			rec.SyncedAt.UTC().Format("2006-01-02 15:04"),
		})
	}

	utils.PrintTable("Sync history",
		[]string{"Entry", "Issue", "Started", "Duration", "Description", "Synced At"}, rows)

	return nil
}

func historyStatsAction(c *cli.Context) error {
	application, err := app.FromContext(c)
	if err != nil {
		return err
	}

	stats := application.Ledger.Stats()

	utils.PrintHeading("Sync ledger stats")
	utils.PrintKeyValue("Ledger file", application.Ledger.Path())
	utils.PrintKeyValue("Synced entries", fmt.Sprintf("%d", stats.TotalEntries))
	utils.PrintKeyValue("Total time", utils.FormatDuration(stats.TotalSeconds))
	utils.PrintKeyValue("Unique issues", fmt.Sprintf("%d", stats.UniqueIssues))
	if len(stats.Issues) > 0 {
		utils.PrintKeyValue("Issues", strings.Join(stats.Issues, ", "))
	}

	return nil
}

func historyClearAction(c *cli.Context) error {
	application, err := app.FromContext(c)
	if err != nil {
		return err
	}

	count := application.Ledger.Len()
	if count == 0 {
		utils.PrintInfo("Sync history is already empty.")
		return nil
	}

	confirmed, err := prompt.NewTerminal().ConfirmClearHistory(count)
	if err != nil {
		return err
	}
	if !confirmed {
		utils.PrintWarning("Clear cancelled.")
		return nil
	}

	if err := application.Ledger.Clear(); err != nil {
		return fmt.Errorf("clearing sync ledger: %w", err)
	}

	utils.PrintSuccess(fmt.Sprintf("Removed %d record(s) from the sync ledger.", count))
	return nil
}
