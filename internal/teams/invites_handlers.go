package teams

import (
	"encoding/json"
	"net/http"

	"github.com/aliuyar1234/finhub/internal/apperrors"
	"github.com/aliuyar1234/finhub/internal/audit"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

type InviteCreateRequest struct {
	Email  string     `json:"email"`
	RoleID *uuid.UUID `json:"role_id"`
}

// HandleCreateInvite handles POST /api/v1/teams/{team_id}/invites
func HandleCreateInvite(svc *Service, auditor *audit.Writer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		actor := actorFrom(ctx)

		teamID, ok := urlUUID(w, r, "team_id", "team")
		if !ok {
			return
		}

		var req InviteCreateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			apperrors.WriteBadRequest(w, r, "Invalid request body")
			return
		}

		invite, err := svc.InviteMember(ctx, actor, teamID, req.Email, req.RoleID)
		if err != nil {
			writeServiceError(w, r, err, "Failed to create invite")
			return
		}

		if err := auditor.LogInviteCreated(ctx, teamID, actor.UserID, invite.ID, invite.Email, invite.RoleID); err != nil {
			log.Error().Err(err).Msg("Failed to log audit event")
		}

		apperrors.WriteSuccess(w, r, http.StatusCreated, map[string]any{
			"invite": invite,
		})
	}
}

// HandleListInvites handles GET /api/v1/teams/{team_id}/invites
func HandleListInvites(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		teamID, ok := urlUUID(w, r, "team_id", "team")
		if !ok {
			return
		}

		invites, err := svc.ListTeamInvites(ctx, actorFrom(ctx), teamID)
		if err != nil {
			writeServiceError(w, r, err, "Failed to list invites")
			return
		}
		if invites == nil {
			invites = []Invite{}
		}

		apperrors.WriteSuccess(w, r, http.StatusOK, map[string]any{
			"invites": invites,
		})
	}
}

// HandleCancelInvite handles DELETE /api/v1/teams/{team_id}/invites/{invite_id}
func HandleCancelInvite(svc *Service, auditor *audit.Writer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		actor := actorFrom(ctx)

		teamID, ok := urlUUID(w, r, "team_id", "team")
		if !ok {
			return
		}
		inviteID, ok := urlUUID(w, r, "invite_id", "invite")
		if !ok {
			return
		}

		if err := svc.CancelInvite(ctx, actor, teamID, inviteID); err != nil {
			writeServiceError(w, r, err, "Failed to cancel invite")
			return
		}

		if err := auditor.LogInviteCancelled(ctx, teamID, actor.UserID, inviteID); err != nil {
			log.Error().Err(err).Msg("Failed to log audit event")
		}

		apperrors.WriteSuccess(w, r, http.StatusOK, map[string]any{
			"cancelled": true,
		})
	}
}

// HandleListMyInvites handles GET /api/v1/invites
func HandleListMyInvites(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		invites, err := svc.ListMyInvites(ctx, actorFrom(ctx))
		if err != nil {
			writeServiceError(w, r, err, "Failed to list invites")
			return
		}
		if invites == nil {
			invites = []InboxInvite{}
		}

		apperrors.WriteSuccess(w, r, http.StatusOK, map[string]any{
			"invites": invites,
		})
	}
}

// HandleAcceptInvite handles POST /api/v1/invites/{invite_id}/accept
func HandleAcceptInvite(svc *Service, auditor *audit.Writer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		actor := actorFrom(ctx)

		inviteID, ok := urlUUID(w, r, "invite_id", "invite")
		if !ok {
			return
		}

		member, err := svc.AcceptInvite(ctx, actor, inviteID)
		if err != nil {
			writeServiceError(w, r, err, "Failed to accept invite")
			return
		}

		if err := auditor.LogInviteAccepted(ctx, member.TeamID, actor.UserID, inviteID); err != nil {
			log.Error().Err(err).Msg("Failed to log audit event")
		}

		apperrors.WriteSuccess(w, r, http.StatusOK, map[string]any{
			"accepted": true,
			"member":   member,
		})
	}
}

// HandleDeclineInvite handles POST /api/v1/invites/{invite_id}/decline
func HandleDeclineInvite(svc *Service, auditor *audit.Writer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		actor := actorFrom(ctx)

		inviteID, ok := urlUUID(w, r, "invite_id", "invite")
		if !ok {
			return
		}

		invite, err := svc.DeclineInvite(ctx, actor, inviteID)
		if err != nil {
			writeServiceError(w, r, err, "Failed to decline invite")
			return
		}

		if err := auditor.LogInviteDeclined(ctx, invite.TeamID, actor.UserID, inviteID); err != nil {
			log.Error().Err(err).Msg("Failed to log audit event")
		}

		apperrors.WriteSuccess(w, r, http.StatusOK, map[string]any{
			"declined": true,
		})
	}
}
