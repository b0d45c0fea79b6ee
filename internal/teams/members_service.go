package teams

import (
	"context"
	"fmt"

	"github.com/aliuyar1234/finhub/internal/permissions"
	"github.com/google/uuid"
)

// ListMembers lists the members of a team with their roles resolved. Any
// member may call it.
func (s *Service) ListMembers(ctx context.Context, actor Actor, teamID uuid.UUID) ([]MemberInfo, error) {
	_, roles, err := s.membership(ctx, actor, teamID)
	if err != nil {
		return nil, err
	}

	members, err := s.members.ListByTeam(ctx, teamID)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}

	out := make([]MemberInfo, 0, len(members))
	for _, m := range members {
		info := MemberInfo{Member: m}
		if role := roleOf(m, roles); role != nil {
			info.RoleName = role.Name
			info.IsOwner = role.IsProtected()
		}
		out = append(out, info)
	}
	return out, nil
}

// UpdateMemberRole assigns roleID to a member, or clears its role when roleID
// is nil. The owner's role cannot be changed and the owner role cannot be
// handed out.
func (s *Service) UpdateMemberRole(ctx context.Context, actor Actor, teamID, profileID uuid.UUID, roleID *uuid.UUID) (*Member, error) {
	var updated *Member
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		_, roles, err := s.authorize(ctx, actor, teamID, permissions.ManageTeam)
		if err != nil {
			return err
		}

		target, err := s.members.GetForUpdate(ctx, teamID, profileID)
		if err != nil {
			return err
		}
		if roleOf(*target, roles).IsProtected() {
			return ErrProtectedMember
		}

		if roleID != nil {
			role := findRole(roles, *roleID)
			if role == nil || role.IsProtected() {
				return ErrInvalidRole
			}
		}

		if err := s.members.UpdateRole(ctx, teamID, profileID, roleID); err != nil {
			return err
		}
		target.RoleID = roleID
		updated = target
		return nil
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}

// RemoveMember removes another member from the team. Data the member
// authored stays with the team.
func (s *Service) RemoveMember(ctx context.Context, actor Actor, teamID, profileID uuid.UUID) (*Member, error) {
	var removed *Member
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		_, roles, err := s.authorize(ctx, actor, teamID, permissions.ManageTeam)
		if err != nil {
			return err
		}
		if profileID == actor.UserID {
			return ErrSelfRemoval
		}

		target, err := s.members.GetForUpdate(ctx, teamID, profileID)
		if err != nil {
			return err
		}
		if roleOf(*target, roles).IsProtected() {
			return ErrProtectedMember
		}

		if err := s.members.Delete(ctx, teamID, profileID); err != nil {
			return err
		}
		removed = target
		return nil
	})
	if err != nil {
		return nil, err
	}

	return removed, nil
}

// LeaveTeam removes the actor's own membership. The owner cannot leave.
func (s *Service) LeaveTeam(ctx context.Context, actor Actor, teamID uuid.UUID) error {
	return s.tx.RunInTx(ctx, func(ctx context.Context) error {
		member, roles, err := s.membership(ctx, actor, teamID)
		if err != nil {
			return err
		}
		if roleOf(*member, roles).IsProtected() {
			return ErrOwnerCannotLeave
		}
		return s.members.Delete(ctx, teamID, actor.UserID)
	})
}
