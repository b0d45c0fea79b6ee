package teams

import (
	"github.com/aliuyar1234/finhub/internal/permissions"
	"github.com/google/uuid"
)

// HasPermission decides whether member may exercise key, given the roles of
// the member's team. The owner role implies every permission; a member with
// no role, or whose role is not one of its team's roles, has none.
func HasPermission(member Member, teamRoles []Role, key permissions.Key) bool {
	role := roleOf(member, teamRoles)
	if role == nil {
		return false
	}
	if role.IsProtected() {
		return true
	}
	return role.Permissions.Has(key)
}

// EffectivePermissions lists every catalog key HasPermission grants member.
func EffectivePermissions(member Member, teamRoles []Role) []permissions.Key {
	out := []permissions.Key{}
	for _, key := range permissions.Catalog() {
		if HasPermission(member, teamRoles, key) {
			out = append(out, key)
		}
	}
	return out
}

func roleOf(member Member, teamRoles []Role) *Role {
	if member.RoleID == nil {
		return nil
	}
	role := findRole(teamRoles, *member.RoleID)
	if role == nil || role.TeamID != member.TeamID {
		return nil
	}
	return role
}

func findRole(roles []Role, roleID uuid.UUID) *Role {
	for i := range roles {
		if roles[i].ID == roleID {
			return &roles[i]
		}
	}
	return nil
}
