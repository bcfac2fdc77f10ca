package workflow

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestGates(t *testing.T) {
	gates := Gates{
		"approve": {"pending"},
		"reject":  {"pending"},
		"cancel":  {"pending", "approved"},
		"delete":  {"rejected", "cancelled"},
	}

	tests := []struct {
		status      string
		wantActions []string
	}{
		{status: "pending", wantActions: []string{"approve", "cancel", "reject"}},
		{status: "approved", wantActions: []string{"cancel"}},
		{status: "rejected", wantActions: []string{"delete"}},
		{status: "unknown", wantActions: []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.status, func(t *testing.T) {
			assert.Equal(t, tt.wantActions, gates.Actions(tt.status))
			for _, action := range []string{"approve", "reject", "cancel", "delete"} {
				allowed := gates.Allowed(action, tt.status)
				assert.Equal(t, contains(tt.wantActions, action), allowed, action)

				err := gates.Check(action, tt.status)
				if allowed {
					assert.NoError(t, err)
				} else {
					assert.Equal(t, ErrActionNotAllowed, errors.Cause(err))
				}
			}
		})
	}
}

func contains(ss []string, s string) bool {
	for _, x := range ss {
		if x == s {
			return true
		}
	}
	return false
}
