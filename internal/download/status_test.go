package download

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransitionTo_ValidTransitions(t *testing.T) {
	tests := []struct {
		from Status
		to   Status
	}{
		{StatusPending, StatusResolved},
		{StatusPending, StatusFailed},
		{StatusPending, StatusCanceled},
		{StatusResolved, StatusFetching},
		{StatusResolved, StatusFailed},
		{StatusFetching, StatusFetched},
		{StatusFetching, StatusCanceled},
		{StatusFetched, StatusConverting},
		{StatusFetched, StatusFailed},
		{StatusConverting, StatusDone},
		{StatusConverting, StatusFailed},
		{StatusConverting, StatusCanceled},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.True(t, tt.from.CanTransitionTo(tt.to),
				"%s should be able to transition to %s", tt.from, tt.to)
		})
	}
}

func TestCanTransitionTo_InvalidTransitions(t *testing.T) {
	tests := []struct {
		from Status
		to   Status
	}{
		{StatusPending, StatusFetching},   // skip resolution
		{StatusPending, StatusDone},       // skip everything
		{StatusResolved, StatusFetched},   // skip fetching
		{StatusResolved, StatusDone},      // skip multiple
		{StatusFetching, StatusResolved},  // backwards
		{StatusFetched, StatusDone},       // skip conversion
		{StatusDone, StatusPending},       // terminal
		{StatusDone, StatusFailed},        // terminal
		{StatusFailed, StatusPending},     // terminal, no retry state
		{StatusCanceled, StatusPending},   // terminal
		{StatusCanceled, StatusFailed},    // terminal
		{Status("bogus"), StatusResolved}, // unknown status
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.False(t, tt.from.CanTransitionTo(tt.to),
				"%s should NOT be able to transition to %s", tt.from, tt.to)
		})
	}
}

func TestIsTerminal(t *testing.T) {
	terminal := []Status{StatusDone, StatusFailed, StatusCanceled}
	nonTerminal := []Status{StatusPending, StatusResolved, StatusFetching, StatusFetched, StatusConverting}

	for _, s := range terminal {
		assert.True(t, s.IsTerminal(), "%s should be terminal", s)
		assert.Empty(t, validTransitions[s], "%s is terminal but has outgoing transitions", s)
	}

	for _, s := range nonTerminal {
		assert.False(t, s.IsTerminal(), "%s should NOT be terminal", s)
		assert.NotEmpty(t, validTransitions[s], "%s is active but has no outgoing transitions", s)
	}
}
