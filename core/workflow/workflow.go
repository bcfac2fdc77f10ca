// Package workflow gates record actions on their current status.
//
// There is no transition table: a Gates value only lists which statuses allow an action,
// and the owning package sets the next status itself.
package workflow

import (
	"sort"

	"github.com/pkg/errors"
)

var ErrActionNotAllowed = errors.New("action not allowed in the current status")

// Gates maps an action to the statuses it is allowed from.
type Gates map[string][]string

// Allowed reports whether action may be performed on a record in status.
func (g Gates) Allowed(action, status string) bool {
	for _, s := range g[action] {
		if s == status {
			return true
		}
	}
	return false
}

// Actions returns the sorted actions allowed for status.
func (g Gates) Actions(status string) []string {
	actions := make([]string, 0, len(g))
	for action := range g {
		if g.Allowed(action, status) {
			actions = append(actions, action)
		}
	}
	sort.Strings(actions)
	return actions
}

// Check returns ErrActionNotAllowed when action is not allowed from status.
func (g Gates) Check(action, status string) error {
	if !g.Allowed(action, status) {
		return errors.Wrapf(ErrActionNotAllowed, "%s from %q", action, status)
	}
	return nil
}
