// Package commands contains the CLI command definitions. Commands are thin:
// they parse flags, call the reconciliation engine, and render the returned
// structures.
package commands

import (
	"fmt"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/tildaslashalef/togglsync/internal/app"
	"github.com/tildaslashalef/togglsync/internal/prompt"
	"github.com/tildaslashalef/togglsync/internal/reconcile"
	"github.com/tildaslashalef/togglsync/internal/utils"
)

const dateLayout = "2006-01-02"

// SyncCommand returns the CLI command that runs a reconciliation pass
func SyncCommand() *cli.Command {
	return &cli.Command{
		Name:  "sync",
		Usage: "Reconcile Toggl time entries into Jira work logs",
		Flags: []cli.Flag{
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
		},
		Action: syncAction,
	}
}

func syncAction(c *cli.Context) error {
	application, err := app.FromContext(c)
	if err != nil {
		return err
	}

	if err := application.Config.ValidateCredentials(); err != nil {
		utils.PrintError(err.Error())
		return err
	}

	start, end, err := parseDateRange(c.String("from"), c.String("to"))
	if err != nil {
		return err
	}

	dryRun := c.Bool("dry-run")

	utils.PrintInfo(fmt.Sprintf("Fetching time entries from %s to %s...",
		start.Format(dateLayout), end.Format(dateLayout)))

	opts := reconcile.PlanOptions{Start: start, End: end}
	terminal := prompt.NewTerminal()
	if !dryRun && !c.Bool("no-interactive") {
		opts.Prompter = terminal
	}

	plan, err := application.Reconciler.Plan(c.Context, opts)
	if err != nil {
		return err
	}

	if len(plan.Entries) == 0 {
		utils.PrintWarning("No time entries found for the specified period.")
		return nil
	}

	renderSummary(plan.Summary)

	if len(plan.Drafts) == 0 {
		utils.PrintWarning("No Jira work logs to create.")
		return nil
	}

	if dryRun {
		utils.PrintWarning("Dry run mode - no work logs will be created.")
		return nil
	}

	if !c.Bool("yes") {
		confirmed, err := terminal.ConfirmSubmission(len(plan.Drafts))
		if err != nil {
			return err
		}
		if !confirmed {
			utils.PrintWarning("Sync cancelled.")
			return nil
		}
	}

	utils.PrintInfo("Creating work logs in Jira...")
	result := application.Reconciler.Submit(c.Context, plan.Drafts)
	renderSubmitResult(result)

	if len(result.Successful) == 0 && len(result.Failed) > 0 {
		return fmt.Errorf("all %d work log submissions failed", len(result.Failed))
	}

	return nil
}

// parseDateRange turns the from/to flags into an inclusive UTC range;
// both default to today. The end bound is pushed to the end of its day.
func parseDateRange(from, to string) (time.Time, time.Time, error) {
	today := time.Now().UTC().Format(dateLayout)
	if from == "" {
		from = today
	}
	if to == "" {
		to = today
	}

	start, err := time.Parse(dateLayout, from)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid --from date %q, expected YYYY-MM-DD", from)
	}

	end, err := time.Parse(dateLayout, to)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid --to date %q, expected YYYY-MM-DD", to)
	}

	end = end.Add(24*time.Hour - time.Second)

	if end.Before(start) {
		return time.Time{}, time.Time{}, fmt.Errorf("--to date is before --from date")
	}

	return start, end, nil
}

func renderSummary(s reconcile.Summary) {
	fmt.Println()
	utils.PrintHeading("=== SUMMARY ===")

	if len(s.AlreadySynced) > 0 {
		fmt.Println()
		rows := make([][]string, 0, len(s.AlreadySynced))
		for _, g := range s.AlreadySynced {
			rows = append(rows, []string{
				g.IssueKey,
				utils.FormatDuration(g.TotalSeconds),
				utils.Truncate(g.Description, 50),
				fmt.Sprintf("%d", g.EntryCount),
			})
		}
		utils.PrintTable("Already synced", []string{"Issue", "Time", "Description", "Entries"}, rows)
	}

	if len(s.Drafts) > 0 {
		fmt.Println()
		rows := make([][]string, 0, len(s.Drafts))
		for _, d := range s.Drafts {
			rows = append(rows, []string{
				d.IssueKey,
				d.Date,
				utils.FormatDuration(d.TotalSeconds),
				utils.Truncate(d.Comment, 50),
				fmt.Sprintf("%d", d.EntryCount),
			})
		}
		utils.PrintTable("Work logs to be created", []string{"Issue", "Date", "Time", "Comment", "Entries"}, rows)
	}

	if len(s.NonIssue) > 0 {
		fmt.Println()
		rows := make([][]string, 0, len(s.NonIssue))
		for _, g := range s.NonIssue {
			rows = append(rows, []string{
				utils.Truncate(g.Description, 57),
				utils.FormatDuration(g.TotalSeconds),
				fmt.Sprintf("%d", g.EntryCount),
			})
		}
		utils.PrintTable("Entries without issue keys", []string{"Description", "Total Time", "Entries"}, rows)
	}

	fmt.Println()
	utils.PrintKeyValue("Jira time", utils.FormatDuration(s.Totals.DraftSeconds))
	utils.PrintKeyValue("Non-Jira time", utils.FormatDuration(s.Totals.NonIssueSeconds))
	utils.PrintKeyValue("Already synced", utils.FormatDuration(s.Totals.SyncedSeconds))
	utils.PrintKeyValue("Total time", utils.FormatDuration(s.Totals.TotalSeconds))
}

func renderSubmitResult(result *reconcile.SubmitResult) {
	if len(result.Successful) > 0 {
		utils.PrintSuccess(fmt.Sprintf("Created %d work log(s).", len(result.Successful)))
	}

	if len(result.Failed) > 0 {
		utils.PrintError(fmt.Sprintf("Failed to create %d work log(s):", len(result.Failed)))
		for _, f := range result.Failed {
			utils.PrintError(fmt.Sprintf("  %s (%d entries): %s", f.Draft.IssueKey, f.Draft.EntryCount, f.Err))
		}
	}
}
