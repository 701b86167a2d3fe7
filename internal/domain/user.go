package domain

import (
	"time"

	"github.com/google/uuid"
)

// User is an account that can own trips and collaborate on others.
// APIToken is the bearer credential presented on every request.
type User struct {
	ID          int64     `json:"id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"display_name"`
	APIToken    uuid.UUID `json:"-"`
	CreatedAt   time.Time `json:"created_at"`
}

// Role is a collaborator's permission level on a trip.
// The trip owner is implicitly RoleOwner without a collaborator row.
type Role string

const (
	RoleOwner       Role = "owner"
	RoleContributor Role = "contributor"
	RoleViewer      Role = "viewer"
)

// Valid reports whether r is an assignable collaborator role.
// RoleOwner is implicit and never stored, so it is not assignable.
func (r Role) Valid() bool {
	return r == RoleContributor || r == RoleViewer
}

// CanEdit reports whether the role permits mutating trip content.
func (r Role) CanEdit() bool {
	return r == RoleOwner || r == RoleContributor
}

// Collaborator links a user to a trip with a role.
type Collaborator struct {
	TripID      int64     `json:"trip_id"`
	UserID      int64     `json:"user_id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"display_name"`
	Role        Role      `json:"role"`
	CreatedAt   time.Time `json:"created_at"`
}
