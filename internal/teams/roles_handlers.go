package teams

import (
	"encoding/json"
	"net/http"

	"github.com/aliuyar1234/finhub/internal/apperrors"
	"github.com/aliuyar1234/finhub/internal/audit"
	"github.com/rs/zerolog/log"
)

// HandleListRoles handles GET /api/v1/teams/{team_id}/roles
func HandleListRoles(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		teamID, ok := urlUUID(w, r, "team_id", "team")
		if !ok {
			return
		}

		roles, err := svc.ListRoles(ctx, actorFrom(ctx), teamID)
		if err != nil {
			writeServiceError(w, r, err, "Failed to list roles")
			return
		}
		if roles == nil {
			roles = []Role{}
		}

		apperrors.WriteSuccess(w, r, http.StatusOK, map[string]any{
			"roles": roles,
		})
	}
}

// HandleCreateRole handles POST /api/v1/teams/{team_id}/roles
func HandleCreateRole(svc *Service, auditor *audit.Writer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		actor := actorFrom(ctx)

		teamID, ok := urlUUID(w, r, "team_id", "team")
		if !ok {
			return
		}

		var req RoleInput
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			apperrors.WriteBadRequest(w, r, "Invalid request body")
			return
		}

		role, err := svc.CreateRole(ctx, actor, teamID, req)
		if err != nil {
			writeServiceError(w, r, err, "Failed to create role")
			return
		}

		if err := auditor.LogRoleCreated(ctx, teamID, actor.UserID, role.ID, role.Name, role.Permissions.Strings()); err != nil {
			log.Error().Err(err).Msg("Failed to log audit event")
		}

		apperrors.WriteSuccess(w, r, http.StatusCreated, map[string]any{
			"role": role,
		})
	}
}

// HandleUpdateRole handles PUT /api/v1/teams/{team_id}/roles/{role_id}
func HandleUpdateRole(svc *Service, auditor *audit.Writer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		actor := actorFrom(ctx)

		teamID, ok := urlUUID(w, r, "team_id", "team")
		if !ok {
			return
		}
		roleID, ok := urlUUID(w, r, "role_id", "role")
		if !ok {
			return
		}

		var req RoleInput
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			apperrors.WriteBadRequest(w, r, "Invalid request body")
			return
		}

		role, err := svc.UpdateRole(ctx, actor, teamID, roleID, req)
		if err != nil {
			writeServiceError(w, r, err, "Failed to update role")
			return
		}

		if err := auditor.LogRoleUpdated(ctx, teamID, actor.UserID, role.ID, role.Name, role.Permissions.Strings()); err != nil {
			log.Error().Err(err).Msg("Failed to log audit event")
		}

		apperrors.WriteSuccess(w, r, http.StatusOK, map[string]any{
			"role": role,
		})
	}
}

// HandleDeleteRole handles DELETE /api/v1/teams/{team_id}/roles/{role_id}
func HandleDeleteRole(svc *Service, auditor *audit.Writer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		actor := actorFrom(ctx)

		teamID, ok := urlUUID(w, r, "team_id", "team")
		if !ok {
			return
		}
		roleID, ok := urlUUID(w, r, "role_id", "role")
		if !ok {
			return
		}

		role, err := svc.DeleteRole(ctx, actor, teamID, roleID)
		if err != nil {
			writeServiceError(w, r, err, "Failed to delete role")
			return
		}

		if err := auditor.LogRoleDeleted(ctx, teamID, actor.UserID, role.ID, role.Name); err != nil {
			log.Error().Err(err).Msg("Failed to log audit event")
		}

		apperrors.WriteSuccess(w, r, http.StatusOK, map[string]any{
			"deleted": true,
		})
	}
}
