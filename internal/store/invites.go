package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aliuyar1234/finhub/internal/teams"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const inviteColumns = `i.id, i.team_id, i.email, i.role_id, i.invited_by, i.status, i.created_at, i.expires_at`

type InviteStore struct {
	pool *pgxpool.Pool
}

func NewInviteStore(pool *pgxpool.Pool) *InviteStore {
	return &InviteStore{pool: pool}
}

// Create stores a pending invite. An expired pending invite for the same team
// and email is removed first so it does not block the new one.
func (s *InviteStore) Create(ctx context.Context, invite *teams.Invite) error {
	conn := getConn(ctx, s.pool)

	_, err := conn.Exec(ctx, `
		DELETE FROM team_invites
		WHERE team_id = $1 AND lower(email) = lower($2)
		  AND status = 'pending' AND expires_at <= $3
	`, invite.TeamID, invite.Email, invite.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to remove expired invite: %w", err)
	}

	_, err = conn.Exec(ctx, `
		INSERT INTO team_invites (id, team_id, email, role_id, invited_by, status, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, invite.ID, invite.TeamID, invite.Email, invite.RoleID, invite.InvitedBy,
		string(invite.Status), invite.CreatedAt, invite.ExpiresAt)
	if err != nil {
		if constraint, ok := uniqueViolation(err); ok && constraint == "team_invites_one_pending" {
			return teams.ErrDuplicateInvite
		}
		return fmt.Errorf("failed to create invite: %w", err)
	}
	return nil
}

// GetPending locks and returns a pending invite.
func (s *InviteStore) GetPending(ctx context.Context, inviteID uuid.UUID) (*teams.Invite, error) {
	row := getConn(ctx, s.pool).QueryRow(ctx, `
		SELECT `+inviteColumns+`
		FROM team_invites i
		WHERE i.id = $1 AND i.status = 'pending'
		FOR UPDATE
	`, inviteID)

	invite, err := scanInvite(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, teams.ErrInviteNotFound
		}
		return nil, fmt.Errorf("failed to get invite: %w", err)
	}
	return invite, nil
}

func (s *InviteStore) ListPendingByTeam(ctx context.Context, teamID uuid.UUID, now time.Time) ([]teams.Invite, error) {
	rows, err := getConn(ctx, s.pool).Query(ctx, `
		SELECT `+inviteColumns+`
		FROM team_invites i
		WHERE i.team_id = $1 AND i.status = 'pending' AND i.expires_at > $2
		ORDER BY i.created_at
	`, teamID, now)
	if err != nil {
		return nil, fmt.Errorf("failed to list invites: %w", err)
	}
	defer rows.Close()

	out := []teams.Invite{}
	for rows.Next() {
		invite, err := scanInvite(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan invite: %w", err)
		}
		out = append(out, *invite)
	}
	return out, rows.Err()
}

func (s *InviteStore) ListPendingByEmail(ctx context.Context, email string, now time.Time) ([]teams.InboxInvite, error) {
	rows, err := getConn(ctx, s.pool).Query(ctx, `
		SELECT `+inviteColumns+`, t.name, COALESCE(r.name, '')
		FROM team_invites i
		JOIN teams t ON t.id = i.team_id
		LEFT JOIN team_roles r ON r.id = i.role_id
		WHERE lower(i.email) = lower($1) AND i.status = 'pending' AND i.expires_at > $2
		ORDER BY i.created_at
	`, email, now)
	if err != nil {
		return nil, fmt.Errorf("failed to list invites: %w", err)
	}
	defer rows.Close()

	out := []teams.InboxInvite{}
	for rows.Next() {
		var item teams.InboxInvite
		var status string
		if err := rows.Scan(
			&item.ID, &item.TeamID, &item.Email, &item.RoleID, &item.InvitedBy, &status,
			&item.CreatedAt, &item.ExpiresAt, &item.TeamName, &item.RoleName,
		); err != nil {
			return nil, fmt.Errorf("failed to scan invite: %w", err)
		}
		item.Status = teams.InviteStatus(status)
		out = append(out, item)
	}
	return out, rows.Err()
}

func (s *InviteStore) Delete(ctx context.Context, inviteID uuid.UUID) error {
	tag, err := getConn(ctx, s.pool).Exec(ctx, `DELETE FROM team_invites WHERE id = $1`, inviteID)
	if err != nil {
		return fmt.Errorf("failed to delete invite: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return teams.ErrInviteNotFound
	}
	return nil
}

func (s *InviteStore) ClearRole(ctx context.Context, teamID, roleID uuid.UUID) (int64, error) {
	tag, err := getConn(ctx, s.pool).Exec(ctx, `
		UPDATE team_invites SET role_id = NULL
		WHERE team_id = $1 AND role_id = $2 AND status = 'pending'
	`, teamID, roleID)
	if err != nil {
		return 0, fmt.Errorf("failed to clear invite roles: %w", err)
	}
	return tag.RowsAffected(), nil
}

// DeleteExpired removes pending invites that expired at or before before.
func (s *InviteStore) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	tag, err := getConn(ctx, s.pool).Exec(ctx, `
		DELETE FROM team_invites
		WHERE status = 'pending' AND expires_at <= $1
	`, before)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired invites: %w", err)
	}
	return tag.RowsAffected(), nil
}

func scanInvite(row pgx.Row) (*teams.Invite, error) {
	var inv teams.Invite
	var status string
	if err := row.Scan(
		&inv.ID, &inv.TeamID, &inv.Email, &inv.RoleID, &inv.InvitedBy, &status,
		&inv.CreatedAt, &inv.ExpiresAt,
	); err != nil {
		return nil, err
	}
	inv.Status = teams.InviteStatus(status)
	return &inv, nil
}
