// internal/domain/principal.go
package domain

import "github.com/google/uuid"

// Role distinguishes the two kinds of authenticated callers.
type Role string

const (
	RolePlayer Role = "player" // Worker: applies to gigs, cashes out
	RoleOrg    Role = "org"    // Sponsor: posts gigs, escrows budgets
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RolePlayer || r == RoleOrg
}

// Principal is the authenticated caller as resolved by the auth collaborator.
// User records themselves live outside this service; only the identity and
// role cross the boundary.
type Principal struct {
	UserID uuid.UUID
	Role   Role
}
