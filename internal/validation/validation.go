package validation

import (
	"net/mail"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/aliuyar1234/finhub/internal/apperrors"
	"github.com/aliuyar1234/finhub/internal/permissions"
)

const (
	MaxTeamNameLength = 80
	MaxRoleNameLength = 64
	MaxEmailLength    = 320
)

var (
	// ErrTeamNameRequired is returned when a team name is blank
	ErrTeamNameRequired = apperrors.Classify(apperrors.ErrValidation, "team name is required")

	// ErrTeamNameTooLong is returned when a team name exceeds MaxTeamNameLength
	ErrTeamNameTooLong = apperrors.Classify(apperrors.ErrValidation, "team name must be at most 80 characters")

	// ErrRoleNameRequired is returned when a role name is blank
	ErrRoleNameRequired = apperrors.Classify(apperrors.ErrValidation, "role name is required")

	// ErrRoleNameTooLong is returned when a role name exceeds MaxRoleNameLength
	ErrRoleNameTooLong = apperrors.Classify(apperrors.ErrValidation, "role name must be at most 64 characters")

	// ErrReservedRoleName is returned when a custom role tries to use a protected name
	ErrReservedRoleName = apperrors.Classify(apperrors.ErrValidation, "role name is reserved")

	// ErrInvalidColor is returned when a color is not in #RRGGBB form
	ErrInvalidColor = apperrors.Classify(apperrors.ErrValidation, "color must be in #RRGGBB format")

	ErrEmailRequired = apperrors.Classify(apperrors.ErrValidation, "email is required")
	ErrEmailTooLong  = apperrors.Classify(apperrors.ErrValidation, "email is too long")
	ErrInvalidEmail  = apperrors.Classify(apperrors.ErrValidation, "invalid email address")

	colorRegex = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)
)

// NormalizeTeamName trims the name and checks its length in characters.
func NormalizeTeamName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ErrTeamNameRequired
	}
	if utf8.RuneCountInString(name) > MaxTeamNameLength {
		return "", ErrTeamNameTooLong
	}
	return name, nil
}

// NormalizeRoleName trims the name, checks its length and rejects the names
// reserved for the protected role.
func NormalizeRoleName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ErrRoleNameRequired
	}
	if utf8.RuneCountInString(name) > MaxRoleNameLength {
		return "", ErrRoleNameTooLong
	}
	if permissions.IsProtectedRoleName(name) {
		return "", ErrReservedRoleName
	}
	return name, nil
}

// NormalizeColor accepts an empty color or #RRGGBB, returned upper-cased.
func NormalizeColor(color string) (string, error) {
	color = strings.TrimSpace(color)
	if color == "" {
		return "", nil
	}
	if !colorRegex.MatchString(color) {
		return "", ErrInvalidColor
	}
	return strings.ToUpper(color), nil
}

// NormalizeEmail validates an RFC 5322 address and returns the bare address
// in lower case, which is how emails are compared everywhere.
func NormalizeEmail(email string) (string, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return "", ErrEmailRequired
	}
	if len(email) > MaxEmailLength {
		return "", ErrEmailTooLong
	}
	addr, err := mail.ParseAddress(email)
	if err != nil {
		return "", ErrInvalidEmail
	}
	return strings.ToLower(addr.Address), nil
}
