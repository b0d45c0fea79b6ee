package teams

import (
	"context"
	"fmt"
	"strings"

	"github.com/aliuyar1234/finhub/internal/notify"
	"github.com/aliuyar1234/finhub/internal/permissions"
	"github.com/aliuyar1234/finhub/internal/validation"
	"github.com/google/uuid"
)

// InviteMember invites email to join the team, optionally with a role. It
// does not check whether the address already has an account or membership.
func (s *Service) InviteMember(ctx context.Context, actor Actor, teamID uuid.UUID, email string, roleID *uuid.UUID) (*Invite, error) {
	now := s.now().UTC()
	invite := &Invite{
		ID:        uuid.New(),
		TeamID:    teamID,
		RoleID:    roleID,
		InvitedBy: actor.UserID,
		Status:    InviteStatusPending,
		CreatedAt: now,
		ExpiresAt: now.Add(s.inviteTTL),
	}

	var team *Team
	var roleName string
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		_, roles, err := s.authorize(ctx, actor, teamID, permissions.ManageTeam)
		if err != nil {
			return err
		}

		invite.Email, err = validation.NormalizeEmail(email)
		if err != nil {
			return err
		}

		if roleID != nil {
			role := findRole(roles, *roleID)
			if role == nil || role.IsProtected() {
				return ErrInvalidRole
			}
			roleName = role.Name
		}

		team, err = s.teams.GetByID(ctx, teamID)
		if err != nil {
			return err
		}

		return s.invites.Create(ctx, invite)
	})
	if err != nil {
		return nil, err
	}

	if s.tasks != nil && s.mailer != nil {
		msg := notify.InviteEmail{
			To:        invite.Email,
			TeamName:  team.Name,
			InvitedBy: actor.Email,
			RoleName:  roleName,
			AcceptURL: s.acceptURL(invite.ID),
			ExpiresAt: invite.ExpiresAt,
		}
		s.tasks.Go("send-invite-email", func(ctx context.Context) error {
			return s.mailer.SendInvite(ctx, msg)
		})
	}

	return invite, nil
}

func (s *Service) acceptURL(inviteID uuid.UUID) string {
	return strings.TrimRight(s.baseURL, "/") + "/invites/" + inviteID.String()
}

// AcceptInvite turns a pending invite addressed to the actor into a
// membership. If the actor is already a member, the existing membership is
// kept as it is. The invite is consumed either way.
func (s *Service) AcceptInvite(ctx context.Context, actor Actor, inviteID uuid.UUID) (*Member, error) {
	var member *Member
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		invite, err := s.pendingInviteFor(ctx, actor, inviteID)
		if err != nil {
			return err
		}

		candidate := &Member{
			ProfileID: actor.UserID,
			TeamID:    invite.TeamID,
			RoleID:    invite.RoleID,
			CreatedAt: s.now().UTC(),
		}
		inserted, err := s.members.Create(ctx, candidate)
		if err != nil {
			return fmt.Errorf("failed to create membership: %w", err)
		}

		member = candidate
		if !inserted {
			member, err = s.members.Get(ctx, invite.TeamID, actor.UserID)
			if err != nil {
				return fmt.Errorf("failed to load membership: %w", err)
			}
		}

		return s.invites.Delete(ctx, invite.ID)
	})
	if err != nil {
		return nil, err
	}

	return member, nil
}

// DeclineInvite discards a pending invite addressed to the actor. Expired
// invites are refused the same way AcceptInvite refuses them and are left for
// the purge job.
func (s *Service) DeclineInvite(ctx context.Context, actor Actor, inviteID uuid.UUID) (*Invite, error) {
	var declined *Invite
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		invite, err := s.pendingInviteFor(ctx, actor, inviteID)
		if err != nil {
			return err
		}
		if err := s.invites.Delete(ctx, invite.ID); err != nil {
			return err
		}
		invite.Status = InviteStatusDeclined
		declined = invite
		return nil
	})
	if err != nil {
		return nil, err
	}

	return declined, nil
}

// pendingInviteFor loads an unexpired invite addressed to the actor.
func (s *Service) pendingInviteFor(ctx context.Context, actor Actor, inviteID uuid.UUID) (*Invite, error) {
	invite, err := s.invites.GetPending(ctx, inviteID)
	if err != nil {
		return nil, err
	}
	if !strings.EqualFold(strings.TrimSpace(actor.Email), invite.Email) {
		return nil, ErrInviteEmailMismatch
	}
	if !invite.ExpiresAt.After(s.now()) {
		return nil, ErrInviteExpired
	}
	return invite, nil
}

// CancelInvite withdraws a pending invite of the team.
func (s *Service) CancelInvite(ctx context.Context, actor Actor, teamID, inviteID uuid.UUID) error {
	return s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if _, _, err := s.authorize(ctx, actor, teamID, permissions.ManageTeam); err != nil {
			return err
		}

		invite, err := s.invites.GetPending(ctx, inviteID)
		if err != nil {
			return err
		}
		if invite.TeamID != teamID {
			return ErrInviteNotFound
		}
		return s.invites.Delete(ctx, invite.ID)
	})
}

// ListTeamInvites lists the team's unexpired pending invites.
func (s *Service) ListTeamInvites(ctx context.Context, actor Actor, teamID uuid.UUID) ([]Invite, error) {
	if _, _, err := s.authorize(ctx, actor, teamID, permissions.ManageTeam); err != nil {
		return nil, err
	}

	invites, err := s.invites.ListPendingByTeam(ctx, teamID, s.now())
	if err != nil {
		return nil, fmt.Errorf("failed to list invites: %w", err)
	}
	return invites, nil
}

// ListMyInvites lists unexpired pending invites addressed to the actor.
func (s *Service) ListMyInvites(ctx context.Context, actor Actor) ([]InboxInvite, error) {
	email, err := validation.NormalizeEmail(actor.Email)
	if err != nil {
		return []InboxInvite{}, nil
	}

	invites, err := s.invites.ListPendingByEmail(ctx, email, s.now())
	if err != nil {
		return nil, fmt.Errorf("failed to list invites: %w", err)
	}
	return invites, nil
}
