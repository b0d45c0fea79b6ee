package teams

import (
	"github.com/aliuyar1234/finhub/internal/apperrors"
	"github.com/aliuyar1234/finhub/internal/permissions"
	"github.com/aliuyar1234/finhub/internal/validation"
)

var (
	// ErrTeamNotFound is also returned to non-members so a team's existence
	// is not disclosed.
	ErrTeamNotFound   = apperrors.Classify(apperrors.ErrNotFound, "team not found")
	ErrRoleNotFound   = apperrors.Classify(apperrors.ErrNotFound, "role not found")
	ErrMemberNotFound = apperrors.Classify(apperrors.ErrNotFound, "member not found")
	ErrInviteNotFound = apperrors.Classify(apperrors.ErrNotFound, "invite not found")
	ErrInviteExpired  = apperrors.Classify(apperrors.ErrNotFound, "invite has expired")

	ErrInsufficientPermissions = apperrors.Classify(apperrors.ErrForbidden, "insufficient permissions")
	ErrProtectedRole           = apperrors.Classify(apperrors.ErrForbidden, "the owner role cannot be changed or deleted")
	ErrProtectedMember         = apperrors.Classify(apperrors.ErrForbidden, "the team owner cannot be changed or removed")
	ErrSelfRemoval             = apperrors.Classify(apperrors.ErrForbidden, "you cannot remove yourself; leave the team instead")
	ErrOwnerCannotLeave        = apperrors.Classify(apperrors.ErrForbidden, "the team owner cannot leave the team")
	ErrInviteEmailMismatch     = apperrors.Classify(apperrors.ErrForbidden, "invite was sent to a different email")

	ErrInvalidRole = apperrors.Classify(apperrors.ErrValidation, "role does not exist in this team or cannot be assigned")

	ErrFreeTeamLimit = apperrors.Classify(apperrors.ErrLimitExceeded, "you already own a team on the free plan; upgrade it to create another")

	ErrDuplicateInvite  = apperrors.Classify(apperrors.ErrConflict, "a pending invite already exists for this email")
	ErrRoleNameConflict = apperrors.Classify(apperrors.ErrConflict, "a role with this name already exists")

	ErrReservedRoleName  = validation.ErrReservedRoleName
	ErrUnknownPermission = permissions.ErrUnknownPermission
)
