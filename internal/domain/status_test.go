// internal/domain/status_test.go
package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGigStatusTransitions(t *testing.T) {
	tests := []struct {
		name    string
		from    GigStatus
		to      GigStatus
		allowed bool
	}{
		{"active to accepted", GigStatusActive, GigStatusAccepted, true},
		{"active to closed", GigStatusActive, GigStatusClosed, true},
		{"active to completed skips acceptance", GigStatusActive, GigStatusCompleted, false},
		{"accepted to completed", GigStatusAccepted, GigStatusCompleted, true},
		{"accepted to closed", GigStatusAccepted, GigStatusClosed, false},
		{"accepted back to active", GigStatusAccepted, GigStatusActive, false},
		{"completed is terminal", GigStatusCompleted, GigStatusClosed, false},
		{"closed is terminal", GigStatusClosed, GigStatusActive, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.allowed, tt.from.CanTransition(tt.to))
		})
	}
}

func TestGigStatusTerminal(t *testing.T) {
	assert.False(t, GigStatusActive.Terminal())
	assert.False(t, GigStatusAccepted.Terminal())
	assert.True(t, GigStatusCompleted.Terminal())
	assert.True(t, GigStatusClosed.Terminal())
}

func TestApplicationStatusTransitions(t *testing.T) {
	tests := []struct {
		name    string
		from    ApplicationStatus
		to      ApplicationStatus
		allowed bool
	}{
		{"pending to accepted", ApplicationStatusPending, ApplicationStatusAccepted, true},
		{"pending to rejected", ApplicationStatusPending, ApplicationStatusRejected, true},
		{"accepted is terminal", ApplicationStatusAccepted, ApplicationStatusRejected, false},
		{"rejected is terminal", ApplicationStatusRejected, ApplicationStatusAccepted, false},
		{"pending to pending", ApplicationStatusPending, ApplicationStatusPending, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.allowed, tt.from.CanTransition(tt.to))
		})
	}
}

func TestStatusValidity(t *testing.T) {
	assert.True(t, GigStatusActive.Valid())
	assert.False(t, GigStatus("archived").Valid())
	assert.True(t, ApplicationStatusPending.Valid())
	assert.False(t, ApplicationStatus("withdrawn").Valid())
}
