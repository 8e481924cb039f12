// internal/domain/gig.go
package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

// GigStatus is the lifecycle state of a gig.
type GigStatus string

const (
	GigStatusActive    GigStatus = "active"    // Open for applications
	GigStatusAccepted  GigStatus = "accepted"  // A winning application was chosen
	GigStatusCompleted GigStatus = "completed" // Work delivered, settlement allowed
	GigStatusClosed    GigStatus = "closed"    // Cancelled before acceptance, escrow released
)

// gigTransitions enumerates the legal gig state machine:
// active -> accepted -> completed, with active -> closed as the terminal
// cancellation path. Everything else is rejected.
var gigTransitions = map[GigStatus][]GigStatus{
	GigStatusActive:   {GigStatusAccepted, GigStatusClosed},
	GigStatusAccepted: {GigStatusCompleted},
}

// CanTransition reports whether moving from s to next is a legal transition.
func (s GigStatus) CanTransition(next GigStatus) bool {
	for _, allowed := range gigTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Terminal reports whether no further transitions are possible.
func (s GigStatus) Terminal() bool {
	return len(gigTransitions[s]) == 0
}

// Valid reports whether s is a known gig status.
func (s GigStatus) Valid() bool {
	switch s {
	case GigStatusActive, GigStatusAccepted, GigStatusCompleted, GigStatusClosed:
		return true
	}
	return false
}

// Gig is a unit of sponsored work. Budget is fixed at creation and escrowed
// in the sponsor's wallet until the gig is settled or closed.
type Gig struct {
	ID          uuid.UUID       `db:"id" json:"id"`
	CreatorID   uuid.UUID       `db:"creator_id" json:"creator_id"` // Sponsoring org, owner
	Title       string          `db:"title" json:"title"`
	Description string          `db:"description" json:"description"`
	Game        string          `db:"game" json:"game"`
	Location    string          `db:"location" json:"location"`
	Tags        pq.StringArray  `db:"tags" json:"tags"`
	Budget      decimal.Decimal `db:"budget" json:"budget"` // Amount to escrow, >= 0
	Method      string          `db:"method" json:"method"` // Payout method, e.g. "upi", "card", "bank_transfer"
	Status      GigStatus       `db:"status" json:"status"`
	CreatedAt   time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time       `db:"updated_at" json:"updated_at"`
}

// NewGig creates an active gig owned by creatorID.
func NewGig(creatorID uuid.UUID, title, description, game, location string, tags []string, budget decimal.Decimal, method string) *Gig {
	now := time.Now().UTC()
	return &Gig{
		ID:          uuid.New(),
		CreatorID:   creatorID,
		Title:       title,
		Description: description,
		Game:        game,
		Location:    location,
		Tags:        tags,
		Budget:      budget,
		Method:      method,
		Status:      GigStatusActive,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}
