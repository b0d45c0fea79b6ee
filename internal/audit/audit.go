package audit

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog/log"
)

const (
	EventTeamCreated           = "team.created"
	EventTeamRoleCreated       = "team.role_created"
	EventTeamRoleUpdated       = "team.role_updated"
	EventTeamRoleDeleted       = "team.role_deleted"
	EventTeamInviteCreated     = "team.invite_created"
	EventTeamInviteCancelled   = "team.invite_cancelled"
	EventTeamInviteAccepted    = "team.invite_accepted"
	EventTeamInviteDeclined    = "team.invite_declined"
	EventTeamMemberRoleUpdated = "team.member_role_updated"
	EventTeamMemberRemoved     = "team.member_removed"
	EventTeamMemberLeft        = "team.member_left"
	EventTeamInvitesPurged     = "team.invites_purged"
)

// Execer is the subset of *pgxpool.Pool the writer needs.
type Execer interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

// Writer provides methods to write audit log entries.
type Writer struct {
	db Execer
}

func NewWriter(db Execer) *Writer {
	return &Writer{db: db}
}

// LogParams contains parameters for logging an audit event.
type LogParams struct {
	TeamID      *uuid.UUID
	ActorUserID *uuid.UUID
	Action      string
	Meta        map[string]any
}

func (w *Writer) Log(ctx context.Context, params LogParams) error {
	metaJSON := []byte("{}")
	if params.Meta != nil {
		b, err := json.Marshal(params.Meta)
		if err != nil {
			log.Error().Err(err).Msg("Failed to marshal audit meta")
			return err
		}
		metaJSON = b
	}

	query := `
		INSERT INTO audit_log (team_id, actor_user_id, action, meta)
		VALUES ($1, $2, $3, $4)
	`

	_, err := w.db.Exec(ctx, query, toNullUUID(params.TeamID), toNullUUID(params.ActorUserID), params.Action, metaJSON)
	if err != nil {
		log.Error().Err(err).Str("action", params.Action).Msg("Failed to write audit log")
		return err
	}

	log.Info().
		Str("action", params.Action).
		Interface("team_id", params.TeamID).
		Interface("actor_user_id", params.ActorUserID).
		Msg("Audit event logged")

	return nil
}

func toNullUUID(id *uuid.UUID) uuid.NullUUID {
	if id == nil {
		return uuid.NullUUID{}
	}
	return uuid.NullUUID{UUID: *id, Valid: true}
}

func optionalID(id *uuid.UUID) any {
	if id == nil {
		return nil
	}
	return id.String()
}

func (w *Writer) LogTeamCreated(ctx context.Context, teamID, userID uuid.UUID, name string) error {
	return w.Log(ctx, LogParams{
		TeamID:      &teamID,
		ActorUserID: &userID,
		Action:      EventTeamCreated,
		Meta: map[string]any{
			"name": name,
		},
	})
}

func (w *Writer) LogRoleCreated(ctx context.Context, teamID, actorUserID, roleID uuid.UUID, name string, perms []string) error {
	return w.Log(ctx, LogParams{
		TeamID:      &teamID,
		ActorUserID: &actorUserID,
		Action:      EventTeamRoleCreated,
		Meta: map[string]any{
			"role_id":     roleID.String(),
			"name":        name,
			"permissions": perms,
		},
	})
}

func (w *Writer) LogRoleUpdated(ctx context.Context, teamID, actorUserID, roleID uuid.UUID, name string, perms []string) error {
	return w.Log(ctx, LogParams{
		TeamID:      &teamID,
		ActorUserID: &actorUserID,
		Action:      EventTeamRoleUpdated,
		Meta: map[string]any{
			"role_id":     roleID.String(),
			"name":        name,
			"permissions": perms,
		},
	})
}

func (w *Writer) LogRoleDeleted(ctx context.Context, teamID, actorUserID, roleID uuid.UUID, name string) error {
	return w.Log(ctx, LogParams{
		TeamID:      &teamID,
		ActorUserID: &actorUserID,
		Action:      EventTeamRoleDeleted,
		Meta: map[string]any{
			"role_id": roleID.String(),
			"name":    name,
		},
	})
}

func (w *Writer) LogInviteCreated(ctx context.Context, teamID, actorUserID, inviteID uuid.UUID, email string, roleID *uuid.UUID) error {
	return w.Log(ctx, LogParams{
		TeamID:      &teamID,
		ActorUserID: &actorUserID,
		Action:      EventTeamInviteCreated,
		Meta: map[string]any{
			"invite_id": inviteID.String(),
			"email":     email,
			"role_id":   optionalID(roleID),
		},
	})
}

func (w *Writer) LogInviteCancelled(ctx context.Context, teamID, actorUserID, inviteID uuid.UUID) error {
	return w.Log(ctx, LogParams{
		TeamID:      &teamID,
		ActorUserID: &actorUserID,
		Action:      EventTeamInviteCancelled,
		Meta: map[string]any{
			"invite_id": inviteID.String(),
		},
	})
}

func (w *Writer) LogInviteAccepted(ctx context.Context, teamID, actorUserID, inviteID uuid.UUID) error {
	return w.Log(ctx, LogParams{
		TeamID:      &teamID,
		ActorUserID: &actorUserID,
		Action:      EventTeamInviteAccepted,
		Meta: map[string]any{
			"invite_id": inviteID.String(),
		},
	})
}

func (w *Writer) LogInviteDeclined(ctx context.Context, teamID, actorUserID, inviteID uuid.UUID) error {
	return w.Log(ctx, LogParams{
		TeamID:      &teamID,
		ActorUserID: &actorUserID,
		Action:      EventTeamInviteDeclined,
		Meta: map[string]any{
			"invite_id": inviteID.String(),
		},
	})
}

func (w *Writer) LogMemberRoleUpdated(ctx context.Context, teamID, actorUserID, targetUserID uuid.UUID, roleID *uuid.UUID) error {
	return w.Log(ctx, LogParams{
		TeamID:      &teamID,
		ActorUserID: &actorUserID,
		Action:      EventTeamMemberRoleUpdated,
		Meta: map[string]any{
			"target_user_id": targetUserID.String(),
			"role_id":        optionalID(roleID),
		},
	})
}

func (w *Writer) LogMemberRemoved(ctx context.Context, teamID, actorUserID, targetUserID uuid.UUID) error {
	return w.Log(ctx, LogParams{
		TeamID:      &teamID,
		ActorUserID: &actorUserID,
		Action:      EventTeamMemberRemoved,
		Meta: map[string]any{
			"target_user_id": targetUserID.String(),
		},
	})
}

func (w *Writer) LogMemberLeft(ctx context.Context, teamID, userID uuid.UUID) error {
	return w.Log(ctx, LogParams{
		TeamID:      &teamID,
		ActorUserID: &userID,
		Action:      EventTeamMemberLeft,
	})
}

// LogInvitesPurged records a retention run. It has no team or actor.
func (w *Writer) LogInvitesPurged(ctx context.Context, count int64) error {
	return w.Log(ctx, LogParams{
		Action: EventTeamInvitesPurged,
		Meta: map[string]any{
			"count": count,
		},
	})
}
