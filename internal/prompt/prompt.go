// Package prompt provides the terminal implementation of the engine's
// interactive capabilities, built on charmbracelet/huh forms. The engine
// only ever sees the reconcile.Prompter interface, so tests replace this
// package with scripted decisions.
package prompt

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/huh"
	"github.com/fatih/color"

	"github.com/tildaslashalef/togglsync/internal/entry"
	"github.com/tildaslashalef/togglsync/internal/reconcile"
	"github.com/tildaslashalef/togglsync/internal/utils"
)

// Terminal prompts the user on the controlling terminal.
type Terminal struct{}

// NewTerminal creates a terminal prompter
func NewTerminal() *Terminal {
	return &Terminal{}
}

var _ reconcile.Prompter = (*Terminal)(nil)

// ConfirmReassignment asks whether to assign unmatched groups at all.
func (t *Terminal) ConfirmReassignment(groupCount int) (bool, error) {
	proceed := true
	err := runForm(huh.NewConfirm().
		Title(fmt.Sprintf("%d group(s) of entries have no Jira issue key. Assign them to issues?", groupCount)).
		Value(&proceed))
	if err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return false, nil
		}
		return false, err
	}
	return proceed, nil
}

// ChooseGroupAction shows one unmatched group and asks what to do with it.
func (t *Terminal) ChooseGroupAction(g entry.Group) (reconcile.GroupAction, error) {
	fmt.Println()
	color.Cyan("Group: %s", g.Description)
	color.HiBlack("  Total time: %s", utils.FormatDuration(g.TotalSeconds))
	color.HiBlack("  Entries: %d", len(g.Entries))

	action := reconcile.ActionAssign
	err := runForm(huh.NewSelect[reconcile.GroupAction]().
		Title("What would you like to do with this group?").
		Options(
			huh.NewOption("Assign to Jira issue", reconcile.ActionAssign),
			huh.NewOption("Skip this group", reconcile.ActionSkip),
		).
		Value(&action))
	if err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return reconcile.ActionSkip, nil
		}
		return reconcile.ActionSkip, err
	}
	return action, nil
}

// RequestIssueKey asks for an issue key. A blank answer or an abort cancels
// the group.
func (t *Terminal) RequestIssueKey(g entry.Group) (string, bool, error) {
	var key string
	err := runForm(huh.NewInput().
		Title("Jira issue key (e.g. PROJ-123, blank to cancel)").
		Value(&key))
	if err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return "", false, nil
		}
		return "", false, err
	}
	if key == "" {
		return "", false, nil
	}
	return key, true, nil
}

// NotifyInvalidKey reports a rejected key before the engine re-prompts.
func (t *Terminal) NotifyInvalidKey(key string, notFound bool) {
	if notFound {
		color.Red("Issue %s not found in Jira.", key)
		return
	}
	color.Red("Invalid issue key format (expected something like PROJ-123).")
}

// RetryAfterError asks whether to retry after a failed validation call.
func (t *Terminal) RetryAfterError(key string, cause error) (bool, error) {
	color.Red("Error validating %s: %s", key, cause)

	retry := true
	err := runForm(huh.NewConfirm().
		Title("Try another issue key?").
		Value(&retry))
	if err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return false, nil
		}
		return false, err
	}
	return retry, nil
}

// ConfirmSubmission asks for the final go-ahead before live submission.
func (t *Terminal) ConfirmSubmission(draftCount int) (bool, error) {
	proceed := false
	err := runForm(huh.NewConfirm().
		Title(fmt.Sprintf("Create %d work log(s) in Jira?", draftCount)).
		Value(&proceed))
	if err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return false, nil
		}
		return false, err
	}
	return proceed, nil
}

// ConfirmClearHistory asks before wiping the sync ledger.
func (t *Terminal) ConfirmClearHistory(recordCount int) (bool, error) {
	proceed := false
	err := runForm(huh.NewConfirm().
		Title(fmt.Sprintf("Delete %d sync record(s)? Cleared entries become eligible for re-submission.", recordCount)).
		Value(&proceed))
	if err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return false, nil
		}
		return false, err
	}
	return proceed, nil
}

func runForm(field huh.Field) error {
	return huh.NewForm(huh.NewGroup(field)).WithShowHelp(false).Run()
}
