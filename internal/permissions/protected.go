package permissions

import "strings"

// OwnerRoleName is the name given to the protected role when a team is created.
const OwnerRoleName = "Owner"

// protectedRoleNames are compared case-insensitively. Localized variants
// exist because teams created from older clients carry translated names.
var protectedRoleNames = []string{OwnerRoleName, "Proprietário", "Administrador"}

// IsProtectedRoleName reports whether name identifies the protected owner role.
func IsProtectedRoleName(name string) bool {
	name = strings.TrimSpace(name)
	for _, p := range protectedRoleNames {
		if strings.EqualFold(name, p) {
			return true
		}
	}
	return false
}
