package reconcile

import (
	"context"

	"github.com/tildaslashalef/togglsync/internal/entry"
)

// AssignmentState is the per-group state of the interactive reassignment
// machine: Prompting -> Validating -> {Valid, Invalid, Error}. Invalid and
// (on user request) Error return to Prompting; Valid and Abandoned are
// terminal.
type AssignmentState uint8

const (
	StatePrompting AssignmentState = iota
	StateValidating
	StateValid
	StateInvalid
	StateError
	StateAbandoned
)

// GroupAction is the user's choice for one unmatched group.
type GroupAction uint8

const (
	// ActionAssign asks for an issue key for the group
	ActionAssign GroupAction = iota

	// ActionSkip leaves the group in the non-issue bucket
	ActionSkip
)

// Prompter is the interactive capability the engine needs during
// reassignment. The terminal implementation lives in internal/prompt;
// tests substitute a scripted sequence of decisions.
type Prompter interface {
	// ConfirmReassignment asks whether to start assigning the unmatched
	// groups at all.
	ConfirmReassignment(groupCount int) (bool, error)

	// ChooseGroupAction asks what to do with one unmatched group.
	ChooseGroupAction(group entry.Group) (GroupAction, error)

	// RequestIssueKey asks for an issue key for the group. ok is false
	// when the user cancels the group.
	RequestIssueKey(group entry.Group) (key string, ok bool, err error)

	// NotifyInvalidKey reports a malformed or unknown issue key before
	// re-prompting. notFound distinguishes "well-formed but missing
	// remotely" from a format failure.
	NotifyInvalidKey(key string, notFound bool)

	// RetryAfterError asks whether to retry after a validation call
	// failed. Answering false abandons the group.
	RetryAfterError(key string, err error) (bool, error)
}

// IssueValidator checks an issue key against the remote tracker. "Not
// found" is the false boolean outcome; errors are transport/auth failures.
type IssueValidator interface {
	ValidateIssueKey(ctx context.Context, key string) (bool, error)
}

// Assignment is one successful reassignment: the validated issue key and
// the entries of the group it applies to.
type Assignment struct {
	IssueKey string
	Entries  []entry.TimeEntry
}

// reassign drives the interactive reassignment over every non-issue group.
// It returns the collected assignments and the groups the user left
// unassigned. Abandoning one group never aborts the pass.
func (s *Service) reassign(ctx context.Context, groups []entry.Group, prompter Prompter, validator IssueValidator) ([]Assignment, []entry.Group, error) {
	if len(groups) == 0 {
		return nil, nil, nil
	}

	proceed, err := prompter.ConfirmReassignment(len(groups))
	if err != nil {
		return nil, groups, err
	}
	if !proceed {
		return nil, groups, nil
	}

	var assignments []Assignment
	var remaining []entry.Group

	for _, g := range groups {
		action, err := prompter.ChooseGroupAction(g)
		if err != nil {
			return assignments, append(remaining, g), err
		}
		if action == ActionSkip {
			remaining = append(remaining, g)
			continue
		}

		assignment, state := s.assignGroup(ctx, g, prompter, validator)
		if state == StateValid {
			assignments = append(assignments, assignment)
			s.logger.Info("assigned group to issue",
				"description", g.Description,
				"issue_key", assignment.IssueKey,
				"entries", len(assignment.Entries),
			)
		} else {
			remaining = append(remaining, g)
		}
	}

	return assignments, remaining, nil
}

// assignGroup runs the per-group state machine until a terminal state.
// There is no retry cap: only explicit user cancellation ends the loop
// without a valid key.
func (s *Service) assignGroup(ctx context.Context, g entry.Group, prompter Prompter, validator IssueValidator) (Assignment, AssignmentState) {
	state := StatePrompting
	var key string

	for {
		switch state {
		case StatePrompting:
			input, ok, err := prompter.RequestIssueKey(g)
			if err != nil || !ok {
				return Assignment{}, StateAbandoned
			}

			key = entry.NormalizeIssueKey(input)
			if !entry.IsValidIssueKey(key) {
				prompter.NotifyInvalidKey(key, false)
				continue
			}
			state = StateValidating

		case StateValidating:
			valid, err := validator.ValidateIssueKey(ctx, key)
			if err != nil {
				retry, perr := prompter.RetryAfterError(key, err)
				if perr != nil || !retry {
					return Assignment{}, StateAbandoned
				}
				state = StatePrompting
				continue
			}
			if !valid {
				prompter.NotifyInvalidKey(key, true)
				state = StatePrompting
				continue
			}

			return Assignment{IssueKey: key, Entries: g.Entries}, StateValid
		}
	}
}

// mergeAssignments re-points every assigned entry at its issue key and
// regroups the union of existing issue groups and assignments by
// (issue, date). One assigned group may fan out into several date-scoped
// sub-groups when its entries span multiple UTC dates.
func mergeAssignments(issueGroups []entry.Group, assignments []Assignment) []entry.Group {
	if len(assignments) == 0 {
		return issueGroups
	}

	var all []entry.TimeEntry
	for _, g := range issueGroups {
		all = append(all, g.Entries...)
	}
	for _, a := range assignments {
		for _, e := range a.Entries {
			all = append(all, e.WithIssueKey(a.IssueKey))
		}
	}

	return entry.GroupByIssueAndDate(all)
}
