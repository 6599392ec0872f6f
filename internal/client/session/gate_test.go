package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGate(t *testing.T) {
	tests := []struct {
		name   string
		status Status
		req    Requirement
		want   Decision
	}{
		{"initializing/auth", Initializing, RequireAuthenticated, Wait},
		{"initializing/anon", Initializing, RequireAnonymous, Wait},
		{"initializing/none", Initializing, RequireNone, Allow},
		{"authenticated/auth", Authenticated, RequireAuthenticated, Allow},
		{"authenticated/anon", Authenticated, RequireAnonymous, RedirectToHome},
		{"authenticated/none", Authenticated, RequireNone, Allow},
		{"anonymous/auth", Anonymous, RequireAuthenticated, RedirectToAuth},
		{"anonymous/anon", Anonymous, RequireAnonymous, Allow},
		{"anonymous/none", Anonymous, RequireNone, Allow},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Gate(Snapshot{Status: tc.status}, tc.req)
			assert.Equal(t, tc.want, got, got.String())
		})
	}
}

func TestDecision_String(t *testing.T) {
	assert.Equal(t, "wait", Wait.String())
	assert.Equal(t, "redirect-to-auth", RedirectToAuth.String())
	assert.Equal(t, "unknown", Decision(42).String())
}
