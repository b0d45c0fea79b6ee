package teams

import (
	"encoding/json"
	"net/http"

	"github.com/aliuyar1234/finhub/internal/apperrors"
	"github.com/aliuyar1234/finhub/internal/audit"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// MemberRoleUpdateRequest sets a member's role. A null role_id clears it.
type MemberRoleUpdateRequest struct {
	RoleID *uuid.UUID `json:"role_id"`
}

// HandleListMembers handles GET /api/v1/teams/{team_id}/members
func HandleListMembers(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		teamID, ok := urlUUID(w, r, "team_id", "team")
		if !ok {
			return
		}

		members, err := svc.ListMembers(ctx, actorFrom(ctx), teamID)
		if err != nil {
			writeServiceError(w, r, err, "Failed to list members")
			return
		}

		apperrors.WriteSuccess(w, r, http.StatusOK, map[string]any{
			"members": members,
		})
	}
}

// HandleUpdateMemberRole handles PUT /api/v1/teams/{team_id}/members/{profile_id}
func HandleUpdateMemberRole(svc *Service, auditor *audit.Writer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		actor := actorFrom(ctx)

		teamID, ok := urlUUID(w, r, "team_id", "team")
		if !ok {
			return
		}
		profileID, ok := urlUUID(w, r, "profile_id", "profile")
		if !ok {
			return
		}

		var req MemberRoleUpdateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			apperrors.WriteBadRequest(w, r, "Invalid request body")
			return
		}

		member, err := svc.UpdateMemberRole(ctx, actor, teamID, profileID, req.RoleID)
		if err != nil {
			writeServiceError(w, r, err, "Failed to update member role")
			return
		}

		if err := auditor.LogMemberRoleUpdated(ctx, teamID, actor.UserID, profileID, member.RoleID); err != nil {
			log.Error().Err(err).Msg("Failed to log audit event")
		}

		apperrors.WriteSuccess(w, r, http.StatusOK, map[string]any{
			"member": member,
		})
	}
}

// HandleRemoveMember handles DELETE /api/v1/teams/{team_id}/members/{profile_id}
func HandleRemoveMember(svc *Service, auditor *audit.Writer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		actor := actorFrom(ctx)

		teamID, ok := urlUUID(w, r, "team_id", "team")
		if !ok {
			return
		}
		profileID, ok := urlUUID(w, r, "profile_id", "profile")
		if !ok {
			return
		}

		if _, err := svc.RemoveMember(ctx, actor, teamID, profileID); err != nil {
			writeServiceError(w, r, err, "Failed to remove member")
			return
		}

		if err := auditor.LogMemberRemoved(ctx, teamID, actor.UserID, profileID); err != nil {
			log.Error().Err(err).Msg("Failed to log audit event")
		}

		apperrors.WriteSuccess(w, r, http.StatusOK, map[string]any{
			"removed": true,
		})
	}
}

// HandleLeave handles POST /api/v1/teams/{team_id}/leave
func HandleLeave(svc *Service, auditor *audit.Writer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		actor := actorFrom(ctx)

		teamID, ok := urlUUID(w, r, "team_id", "team")
		if !ok {
			return
		}

		if err := svc.LeaveTeam(ctx, actor, teamID); err != nil {
			writeServiceError(w, r, err, "Failed to leave team")
			return
		}

		if err := auditor.LogMemberLeft(ctx, teamID, actor.UserID); err != nil {
			log.Error().Err(err).Msg("Failed to log audit event")
		}

		apperrors.WriteSuccess(w, r, http.StatusOK, map[string]any{
			"left": true,
		})
	}
}
