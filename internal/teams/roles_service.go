package teams

import (
	"context"
	"fmt"

	"github.com/aliuyar1234/finhub/internal/permissions"
	"github.com/aliuyar1234/finhub/internal/validation"
	"github.com/google/uuid"
)

type roleFields struct {
	name  string
	color string
	perms permissions.Set
}

func parseRoleInput(in RoleInput) (roleFields, error) {
	name, err := validation.NormalizeRoleName(in.Name)
	if err != nil {
		return roleFields{}, err
	}
	color, err := validation.NormalizeColor(in.Color)
	if err != nil {
		return roleFields{}, err
	}
	perms, err := permissions.ParseSet(in.Permissions)
	if err != nil {
		return roleFields{}, err
	}
	return roleFields{name: name, color: color, perms: perms}, nil
}

// ListRoles lists the roles of a team. Any member may call it.
func (s *Service) ListRoles(ctx context.Context, actor Actor, teamID uuid.UUID) ([]Role, error) {
	_, roles, err := s.membership(ctx, actor, teamID)
	if err != nil {
		return nil, err
	}
	return roles, nil
}

func (s *Service) CreateRole(ctx context.Context, actor Actor, teamID uuid.UUID, in RoleInput) (*Role, error) {
	var role *Role
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if _, _, err := s.authorize(ctx, actor, teamID, permissions.ManageTeam); err != nil {
			return err
		}

		fields, err := parseRoleInput(in)
		if err != nil {
			return err
		}

		now := s.now().UTC()
		role = &Role{
			ID:          uuid.New(),
			TeamID:      teamID,
			Name:        fields.name,
			Color:       fields.color,
			Permissions: fields.perms,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		return s.roles.Create(ctx, role)
	})
	if err != nil {
		return nil, err
	}

	return role, nil
}

// UpdateRole overwrites name, color and permissions of a custom role.
func (s *Service) UpdateRole(ctx context.Context, actor Actor, teamID, roleID uuid.UUID, in RoleInput) (*Role, error) {
	var updated *Role
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if _, _, err := s.authorize(ctx, actor, teamID, permissions.ManageTeam); err != nil {
			return err
		}

		fields, err := parseRoleInput(in)
		if err != nil {
			return err
		}

		role, err := s.roles.GetByID(ctx, teamID, roleID)
		if err != nil {
			return err
		}
		if role.IsProtected() {
			return ErrProtectedRole
		}

		role.Name = fields.name
		role.Color = fields.color
		role.Permissions = fields.perms
		role.UpdatedAt = s.now().UTC()

		if err := s.roles.Update(ctx, role); err != nil {
			return err
		}
		updated = role
		return nil
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}

// DeleteRole deletes a custom role. Members and pending invites holding it
// are left without a role.
func (s *Service) DeleteRole(ctx context.Context, actor Actor, teamID, roleID uuid.UUID) (*Role, error) {
	var deleted *Role
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if _, _, err := s.authorize(ctx, actor, teamID, permissions.ManageTeam); err != nil {
			return err
		}

		role, err := s.roles.GetByID(ctx, teamID, roleID)
		if err != nil {
			return err
		}
		if role.IsProtected() {
			return ErrProtectedRole
		}

		if _, err := s.members.ClearRole(ctx, teamID, roleID); err != nil {
			return fmt.Errorf("failed to clear role from members: %w", err)
		}
		if _, err := s.invites.ClearRole(ctx, teamID, roleID); err != nil {
			return fmt.Errorf("failed to clear role from invites: %w", err)
		}
		if err := s.roles.Delete(ctx, teamID, roleID); err != nil {
			return err
		}
		deleted = role
		return nil
	})
	if err != nil {
		return nil, err
	}

	return deleted, nil
}
