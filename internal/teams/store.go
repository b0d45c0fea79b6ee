package teams

import (
	"context"
	"time"

	"github.com/aliuyar1234/finhub/internal/billing"
	"github.com/aliuyar1234/finhub/internal/notify"
	"github.com/google/uuid"
)

// TxManager runs fn in a transaction carried by ctx. Store calls made with
// that ctx join the transaction; nested calls reuse it.
type TxManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type TeamStore interface {
	Create(ctx context.Context, team *Team) error
	GetByID(ctx context.Context, teamID uuid.UUID) (*Team, error)
	// ListOwnedBy locks the returned rows when called inside a transaction.
	ListOwnedBy(ctx context.Context, ownerID uuid.UUID) ([]Team, error)
	ListForProfile(ctx context.Context, profileID uuid.UUID) ([]TeamSummary, error)
	SetFreeTier(ctx context.Context, teamID uuid.UUID, free bool) error
}

type RoleStore interface {
	Create(ctx context.Context, role *Role) error
	// GetByID only finds roles of teamID.
	GetByID(ctx context.Context, teamID, roleID uuid.UUID) (*Role, error)
	ListByTeam(ctx context.Context, teamID uuid.UUID) ([]Role, error)
	Update(ctx context.Context, role *Role) error
	Delete(ctx context.Context, teamID, roleID uuid.UUID) error
}

type MemberStore interface {
	// Create inserts the membership unless one exists and reports whether a
	// row was written.
	Create(ctx context.Context, member *Member) (bool, error)
	Get(ctx context.Context, teamID, profileID uuid.UUID) (*Member, error)
	GetForUpdate(ctx context.Context, teamID, profileID uuid.UUID) (*Member, error)
	ListByTeam(ctx context.Context, teamID uuid.UUID) ([]Member, error)
	UpdateRole(ctx context.Context, teamID, profileID uuid.UUID, roleID *uuid.UUID) error
	Delete(ctx context.Context, teamID, profileID uuid.UUID) error
	ClearRole(ctx context.Context, teamID, roleID uuid.UUID) (int64, error)
}

type InviteStore interface {
	// Create replaces an expired pending invite for the same team and email;
	// an unexpired one fails with ErrDuplicateInvite.
	Create(ctx context.Context, invite *Invite) error
	// GetPending locks the invite row.
	GetPending(ctx context.Context, inviteID uuid.UUID) (*Invite, error)
	ListPendingByTeam(ctx context.Context, teamID uuid.UUID, now time.Time) ([]Invite, error)
	ListPendingByEmail(ctx context.Context, email string, now time.Time) ([]InboxInvite, error)
	Delete(ctx context.Context, inviteID uuid.UUID) error
	ClearRole(ctx context.Context, teamID, roleID uuid.UUID) (int64, error)
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}

// SubscriptionGateway returns nil, nil for teams without a subscription.
type SubscriptionGateway interface {
	FindByTeamID(ctx context.Context, teamID uuid.UUID) (*billing.Subscription, error)
}

// Bootstrapper seeds the default data of a new team.
type Bootstrapper interface {
	SeedDefaults(ctx context.Context, teamID uuid.UUID) error
}

type InviteMailer interface {
	SendInvite(ctx context.Context, msg notify.InviteEmail) error
}

// TaskRunner runs best-effort work after the request's transaction commits.
type TaskRunner interface {
	Go(name string, fn func(ctx context.Context) error)
}

// MetricsRecorder is satisfied by *metrics.Metrics.
type MetricsRecorder interface {
	RBACDecision(permission string, allowed bool)
	TeamLimitRejected()
}
