package teams

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/aliuyar1234/finhub/internal/apperrors"
	"github.com/aliuyar1234/finhub/internal/audit"
	"github.com/aliuyar1234/finhub/internal/auth"
	"github.com/aliuyar1234/finhub/internal/permissions"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

type CreateTeamRequest struct {
	Name string `json:"name"`
}

// AuditLister reads a team's audit trail.
type AuditLister interface {
	ListByTeam(ctx context.Context, teamID uuid.UUID, limit int) ([]audit.ListItem, error)
}

func actorFrom(ctx context.Context) Actor {
	return Actor{
		UserID: auth.GetUserID(ctx),
		Email:  auth.GetEmail(ctx),
	}
}

func urlUUID(w http.ResponseWriter, r *http.Request, param, label string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, param))
	if err != nil {
		apperrors.WriteBadRequest(w, r, "Invalid "+label+" ID")
		return uuid.Nil, false
	}
	return id, true
}

// writeServiceError answers with the error's class. Unclassified errors are
// logged and reported as internal errors carrying fallback.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	if apperrors.ClassOf(err) == nil {
		log.Error().
			Err(err).
			Str("request_id", apperrors.GetRequestID(r.Context())).
			Msg(fallback)
	}
	apperrors.WriteClassified(w, r, err, fallback)
}

// HandleCreate handles POST /api/v1/teams
func HandleCreate(svc *Service, auditor *audit.Writer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		actor := actorFrom(ctx)

		var req CreateTeamRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			apperrors.WriteBadRequest(w, r, "Invalid request body")
			return
		}

		team, err := svc.CreateTeam(ctx, actor, req.Name)
		if err != nil {
			writeServiceError(w, r, err, "Failed to create team")
			return
		}

		if err := auditor.LogTeamCreated(ctx, team.ID, actor.UserID, team.Name); err != nil {
			log.Error().Err(err).Msg("Failed to log audit event")
		}

		apperrors.WriteSuccess(w, r, http.StatusCreated, map[string]any{
			"team": team,
		})
	}
}

// HandleList handles GET /api/v1/teams
func HandleList(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		teams, err := svc.ListTeams(ctx, actorFrom(ctx))
		if err != nil {
			writeServiceError(w, r, err, "Failed to list teams")
			return
		}
		if teams == nil {
			teams = []TeamSummary{}
		}

		apperrors.WriteSuccess(w, r, http.StatusOK, map[string]any{
			"teams": teams,
		})
	}
}

// HandleAccess handles GET /api/v1/teams/{team_id}/access
func HandleAccess(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		teamID, ok := urlUUID(w, r, "team_id", "team")
		if !ok {
			return
		}

		access, err := svc.Access(ctx, actorFrom(ctx), teamID)
		if err != nil {
			writeServiceError(w, r, err, "Failed to load access")
			return
		}

		apperrors.WriteSuccess(w, r, http.StatusOK, map[string]any{
			"access": access,
		})
	}
}

// HandleListAudit handles GET /api/v1/teams/{team_id}/audit
func HandleListAudit(svc *Service, reader AuditLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		teamID, ok := urlUUID(w, r, "team_id", "team")
		if !ok {
			return
		}

		if err := svc.RequirePermission(ctx, actorFrom(ctx), teamID, permissions.ManageTeam); err != nil {
			writeServiceError(w, r, err, "Failed to check permissions")
			return
		}

		limit := 50
		if raw := r.URL.Query().Get("limit"); raw != "" {
			if v, err := strconv.Atoi(raw); err == nil {
				limit = v
			}
		}

		events, err := reader.ListByTeam(ctx, teamID, limit)
		if err != nil {
			log.Error().Err(err).Msg("Failed to list audit log")
			apperrors.WriteInternalError(w, r, "Failed to list audit log")
			return
		}

		apperrors.WriteSuccess(w, r, http.StatusOK, map[string]any{
			"events": events,
		})
	}
}
