package commands

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/tildaslashalef/togglsync/internal/app"
	"github.com/tildaslashalef/togglsync/internal/utils"
)

// ConfigCommand returns the CLI command that prints the active
// configuration with credentials redacted
func ConfigCommand() *cli.Command {
	return &cli.Command{
		Name:   "config",
		Usage:  "Show the current configuration",
		Action: configAction,
	}
}

func configAction(c *cli.Context) error {
	application, err := app.FromContext(c)
	if err != nil {
		return err
	}
	cfg := application.Config

	utils.PrintHeading("Toggl")
	utils.PrintKeyValue("  API token", redactToken(cfg.Toggl.APIToken))
	utils.PrintKeyValue("  Workspace ID", formatID(cfg.Toggl.WorkspaceID))
	utils.PrintKeyValue("  Project ID", formatID(cfg.Toggl.ProjectID))

	fmt.Println()
	utils.PrintHeading("Jira")
	utils.PrintKeyValue("  API token", redactToken(cfg.Jira.APIToken))
	utils.PrintKeyValue("  Email", orNotSet(cfg.Jira.Email))
	utils.PrintKeyValue("  Domain", orNotSet(cfg.Jira.Domain))

	fmt.Println()
	utils.PrintHeading("Ledger")
	utils.PrintKeyValue("  Path", cfg.Ledger.Path)

	fmt.Println()
	utils.PrintInfo(fmt.Sprintf("To update the configuration, edit %s/.env or set TOGGLSYNC_* environment variables.", cfg.ConfigDir()))

	return nil
}

func redactToken(token string) string {
	if token == "" {
		return "Not set"
	}
	if len(token) <= 4 {
		return "***"
	}
	return "***" + token[len(token)-4:]
}

func formatID(id int64) string {
	if id == 0 {
		return "Not set"
	}
	return fmt.Sprintf("%d", id)
}

func orNotSet(s string) string {
	if s == "" {
		return "Not set"
	}
	return s
}
