package teams

import (
	"time"

	"github.com/aliuyar1234/finhub/internal/permissions"
	"github.com/google/uuid"
)

// Actor is the verified caller of a use case.
type Actor struct {
	UserID uuid.UUID
	Email  string
}

// Team is a shared financial workspace.
type Team struct {
	ID          uuid.UUID  `json:"id"`
	Name        string     `json:"name"`
	CreatedBy   uuid.UUID  `json:"created_by"`
	TrialEndsAt *time.Time `json:"trial_ends_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`

	// FreeTier is true while the team occupies its owner's free slot.
	FreeTier bool `json:"-"`
}

// TeamSummary is a team as seen by one of its members.
type TeamSummary struct {
	Team
	RoleName string `json:"role_name,omitempty"`
	Plan     string `json:"plan"`
}

// Role is a named permission bundle scoped to one team.
type Role struct {
	ID          uuid.UUID       `json:"id"`
	TeamID      uuid.UUID       `json:"team_id"`
	Name        string          `json:"name"`
	Color       string          `json:"color,omitempty"`
	Permissions permissions.Set `json:"permissions"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// IsProtected reports whether r is the team's owner role.
func (r *Role) IsProtected() bool {
	return r != nil && permissions.IsProtectedRoleName(r.Name)
}

// RoleInput carries user-supplied role fields before validation.
type RoleInput struct {
	Name        string   `json:"name"`
	Color       string   `json:"color"`
	Permissions []string `json:"permissions"`
}

// Member links a profile to a team. A nil RoleID means no role.
type Member struct {
	ProfileID uuid.UUID  `json:"profile_id"`
	TeamID    uuid.UUID  `json:"team_id"`
	RoleID    *uuid.UUID `json:"role_id"`
	CreatedAt time.Time  `json:"created_at"`
}

// MemberInfo is a member with its role resolved.
type MemberInfo struct {
	Member
	RoleName string `json:"role_name,omitempty"`
	IsOwner  bool   `json:"is_owner"`
}

type InviteStatus string

const (
	InviteStatusPending   InviteStatus = "pending"
	InviteStatusConsumed  InviteStatus = "consumed"
	InviteStatusDeclined  InviteStatus = "declined"
	InviteStatusCancelled InviteStatus = "cancelled"
)

// Invite is a pending offer of membership addressed to an email.
// Rows leave the store once they reach a terminal status.
type Invite struct {
	ID        uuid.UUID    `json:"id"`
	TeamID    uuid.UUID    `json:"team_id"`
	Email     string       `json:"email"`
	RoleID    *uuid.UUID   `json:"role_id"`
	InvitedBy uuid.UUID    `json:"invited_by"`
	Status    InviteStatus `json:"status"`
	CreatedAt time.Time    `json:"created_at"`
	ExpiresAt time.Time    `json:"expires_at"`
}

// InboxInvite is a pending invite shown to its recipient.
type InboxInvite struct {
	Invite
	TeamName string `json:"team_name"`
	RoleName string `json:"role_name,omitempty"`
}

// Access describes what the caller may do in a team.
type Access struct {
	TeamID      uuid.UUID         `json:"team_id"`
	ProfileID   uuid.UUID         `json:"profile_id"`
	Role        *Role             `json:"role"`
	IsOwner     bool              `json:"is_owner"`
	Permissions []permissions.Key `json:"permissions"`
}
