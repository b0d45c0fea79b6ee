package teams

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aliuyar1234/finhub/internal/billing"
	"github.com/aliuyar1234/finhub/internal/permissions"
	"github.com/aliuyar1234/finhub/internal/validation"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const (
	trialDays        = 14
	defaultInviteTTL = 7 * 24 * time.Hour
)

// Deps are the collaborators of a Service. Subscriptions must read the
// authoritative subscription state on the transaction carried by ctx, since
// CreateTeam calls it inside RunInTx. PlanLookup may be cached, runs outside
// transactions and is only used for display. Metrics may be nil.
type Deps struct {
	Tx      TxManager
	Teams   TeamStore
	Roles   RoleStore
	Members MemberStore
	Invites InviteStore

	Subscriptions SubscriptionGateway
	PlanLookup    SubscriptionGateway

	Bootstrapper Bootstrapper
	Mailer       InviteMailer
	Tasks        TaskRunner
	Metrics      MetricsRecorder

	// BaseURL prefixes links sent in invite emails.
	BaseURL   string
	InviteTTL time.Duration
	Now       func() time.Time
}

// Service implements the team membership and RBAC use cases.
type Service struct {
	tx      TxManager
	teams   TeamStore
	roles   RoleStore
	members MemberStore
	invites InviteStore

	subscriptions SubscriptionGateway
	planLookup    SubscriptionGateway

	bootstrapper Bootstrapper
	mailer       InviteMailer
	tasks        TaskRunner
	metrics      MetricsRecorder

	baseURL   string
	inviteTTL time.Duration
	now       func() time.Time
}

// NewService creates a new team service
func NewService(deps Deps) *Service {
	s := &Service{
		tx:            deps.Tx,
		teams:         deps.Teams,
		roles:         deps.Roles,
		members:       deps.Members,
		invites:       deps.Invites,
		subscriptions: deps.Subscriptions,
		planLookup:    deps.PlanLookup,
		bootstrapper:  deps.Bootstrapper,
		mailer:        deps.Mailer,
		tasks:         deps.Tasks,
		metrics:       deps.Metrics,
		baseURL:       deps.BaseURL,
		inviteTTL:     deps.InviteTTL,
		now:           deps.Now,
	}
	if s.planLookup == nil {
		s.planLookup = s.subscriptions
	}
	if s.inviteTTL <= 0 {
		s.inviteTTL = defaultInviteTTL
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// CreateTeam creates a team owned by actor, together with its Owner role and
// the actor's membership. Every team the actor already owns must be on an
// active subscription.
func (s *Service) CreateTeam(ctx context.Context, actor Actor, name string) (*Team, error) {
	name, err := validation.NormalizeTeamName(name)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	trialEndsAt := now.AddDate(0, 0, trialDays)

	team := &Team{
		ID:          uuid.New(),
		Name:        name,
		CreatedBy:   actor.UserID,
		TrialEndsAt: &trialEndsAt,
		CreatedAt:   now,
		FreeTier:    true,
	}
	ownerRole := &Role{
		ID:          uuid.New(),
		TeamID:      team.ID,
		Name:        permissions.OwnerRoleName,
		Permissions: permissions.All(),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	member := &Member{
		ProfileID: actor.UserID,
		TeamID:    team.ID,
		RoleID:    &ownerRole.ID,
		CreatedAt: now,
	}

	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		owned, err := s.teams.ListOwnedBy(ctx, actor.UserID)
		if err != nil {
			return fmt.Errorf("failed to list owned teams: %w", err)
		}

		for _, t := range owned {
			sub, err := s.subscriptions.FindByTeamID(ctx, t.ID)
			if err != nil {
				return fmt.Errorf("failed to load subscription: %w", err)
			}
			if !sub.IsActiveAt(now) {
				return ErrFreeTeamLimit
			}
			if t.FreeTier {
				if err := s.teams.SetFreeTier(ctx, t.ID, false); err != nil {
					return fmt.Errorf("failed to release free slot: %w", err)
				}
			}
		}

		if err := s.teams.Create(ctx, team); err != nil {
			return err
		}
		if err := s.roles.Create(ctx, ownerRole); err != nil {
			return fmt.Errorf("failed to create owner role: %w", err)
		}
		if _, err := s.members.Create(ctx, member); err != nil {
			return fmt.Errorf("failed to create owner membership: %w", err)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrFreeTeamLimit) {
			if s.metrics != nil {
				s.metrics.TeamLimitRejected()
			}
			log.Info().
				Str("user_id", actor.UserID.String()).
				Msg("Team creation rejected: free team limit")
		}
		return nil, err
	}

	if s.tasks != nil && s.bootstrapper != nil {
		teamID := team.ID
		s.tasks.Go("seed-default-categories", func(ctx context.Context) error {
			return s.bootstrapper.SeedDefaults(ctx, teamID)
		})
	}

	return team, nil
}

// ListTeams lists the teams actor belongs to, newest first, with the plan
// each one is on.
func (s *Service) ListTeams(ctx context.Context, actor Actor) ([]TeamSummary, error) {
	summaries, err := s.teams.ListForProfile(ctx, actor.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to list teams: %w", err)
	}

	now := s.now()
	for i := range summaries {
		sub, err := s.planLookup.FindByTeamID(ctx, summaries[i].ID)
		if err != nil {
			return nil, fmt.Errorf("failed to load subscription: %w", err)
		}
		summaries[i].Plan = billing.PlanAt(sub, now)
	}

	return summaries, nil
}

// Access reports the caller's role in a team and the permissions it grants.
func (s *Service) Access(ctx context.Context, actor Actor, teamID uuid.UUID) (*Access, error) {
	member, roles, err := s.membership(ctx, actor, teamID)
	if err != nil {
		return nil, err
	}

	role := roleOf(*member, roles)
	return &Access{
		TeamID:      teamID,
		ProfileID:   actor.UserID,
		Role:        role,
		IsOwner:     role.IsProtected(),
		Permissions: EffectivePermissions(*member, roles),
	}, nil
}

// RequirePermission fails unless actor is a member of the team holding key.
func (s *Service) RequirePermission(ctx context.Context, actor Actor, teamID uuid.UUID, key permissions.Key) error {
	_, _, err := s.authorize(ctx, actor, teamID, key)
	return err
}

// membership loads the actor's membership and the team's roles. Non-members
// get ErrTeamNotFound.
func (s *Service) membership(ctx context.Context, actor Actor, teamID uuid.UUID) (*Member, []Role, error) {
	member, err := s.members.Get(ctx, teamID, actor.UserID)
	if err != nil {
		if errors.Is(err, ErrMemberNotFound) {
			log.Debug().
				Str("user_id", actor.UserID.String()).
				Str("team_id", teamID.String()).
				Msg("User is not a member of team")
			return nil, nil, ErrTeamNotFound
		}
		return nil, nil, fmt.Errorf("failed to load membership: %w", err)
	}

	roles, err := s.roles.ListByTeam(ctx, teamID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list roles: %w", err)
	}

	return member, roles, nil
}

// authorize is membership plus a permission check.
func (s *Service) authorize(ctx context.Context, actor Actor, teamID uuid.UUID, key permissions.Key) (*Member, []Role, error) {
	member, roles, err := s.membership(ctx, actor, teamID)
	if err != nil {
		return nil, nil, err
	}

	allowed := HasPermission(*member, roles, key)
	if s.metrics != nil {
		s.metrics.RBACDecision(string(key), allowed)
	}
	if !allowed {
		log.Warn().
			Str("user_id", actor.UserID.String()).
			Str("team_id", teamID.String()).
			Str("permission", string(key)).
			Msg("RBAC: Insufficient permissions")
		return nil, nil, ErrInsufficientPermissions
	}

	return member, roles, nil
}
