package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/aliuyar1234/finhub/internal/teams"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const teamColumns = `t.id, t.name, t.created_by, t.trial_ends_at, t.free_owner IS NOT NULL, t.created_at`

type TeamStore struct {
	pool *pgxpool.Pool
}

func NewTeamStore(pool *pgxpool.Pool) *TeamStore {
	return &TeamStore{pool: pool}
}

func (s *TeamStore) Create(ctx context.Context, team *teams.Team) error {
	var freeOwner *uuid.UUID
	if team.FreeTier {
		freeOwner = &team.CreatedBy
	}

	_, err := getConn(ctx, s.pool).Exec(ctx, `
		INSERT INTO teams (id, name, created_by, trial_ends_at, free_owner, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, team.ID, team.Name, team.CreatedBy, team.TrialEndsAt, freeOwner, team.CreatedAt)
	if err != nil {
		if constraint, ok := uniqueViolation(err); ok && constraint == "teams_one_free_per_owner" {
			return teams.ErrFreeTeamLimit
		}
		return fmt.Errorf("failed to create team: %w", err)
	}
	return nil
}

func (s *TeamStore) GetByID(ctx context.Context, teamID uuid.UUID) (*teams.Team, error) {
	row := getConn(ctx, s.pool).QueryRow(ctx, `
		SELECT `+teamColumns+`
		FROM teams t
		WHERE t.id = $1
	`, teamID)

	team, err := scanTeam(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, teams.ErrTeamNotFound
		}
		return nil, fmt.Errorf("failed to get team: %w", err)
	}
	return team, nil
}

// ListOwnedBy locks the owner's teams so concurrent CreateTeam calls for the
// same owner serialize.
func (s *TeamStore) ListOwnedBy(ctx context.Context, ownerID uuid.UUID) ([]teams.Team, error) {
	rows, err := getConn(ctx, s.pool).Query(ctx, `
		SELECT `+teamColumns+`
		FROM teams t
		WHERE t.created_by = $1
		ORDER BY t.created_at
		FOR UPDATE
	`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list owned teams: %w", err)
	}
	defer rows.Close()

	out := []teams.Team{}
	for rows.Next() {
		team, err := scanTeam(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan team: %w", err)
		}
		out = append(out, *team)
	}
	return out, rows.Err()
}

func (s *TeamStore) ListForProfile(ctx context.Context, profileID uuid.UUID) ([]teams.TeamSummary, error) {
	rows, err := getConn(ctx, s.pool).Query(ctx, `
		SELECT `+teamColumns+`, COALESCE(r.name, '')
		FROM team_members m
		JOIN teams t ON t.id = m.team_id
		LEFT JOIN team_roles r ON r.id = m.role_id
		WHERE m.profile_id = $1
		ORDER BY t.created_at DESC
	`, profileID)
	if err != nil {
		return nil, fmt.Errorf("failed to list teams: %w", err)
	}
	defer rows.Close()

	out := []teams.TeamSummary{}
	for rows.Next() {
		var ts teams.TeamSummary
		if err := rows.Scan(
			&ts.ID, &ts.Name, &ts.CreatedBy, &ts.TrialEndsAt, &ts.FreeTier, &ts.CreatedAt,
			&ts.RoleName,
		); err != nil {
			return nil, fmt.Errorf("failed to scan team: %w", err)
		}
		out = append(out, ts)
	}
	return out, rows.Err()
}

func (s *TeamStore) SetFreeTier(ctx context.Context, teamID uuid.UUID, free bool) error {
	tag, err := getConn(ctx, s.pool).Exec(ctx, `
		UPDATE teams
		SET free_owner = CASE WHEN $2 THEN created_by END
		WHERE id = $1
	`, teamID, free)
	if err != nil {
		if constraint, ok := uniqueViolation(err); ok && constraint == "teams_one_free_per_owner" {
			return teams.ErrFreeTeamLimit
		}
		return fmt.Errorf("failed to update team: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return teams.ErrTeamNotFound
	}
	return nil
}

func scanTeam(row pgx.Row) (*teams.Team, error) {
	var t teams.Team
	if err := row.Scan(&t.ID, &t.Name, &t.CreatedBy, &t.TrialEndsAt, &t.FreeTier, &t.CreatedAt); err != nil {
		return nil, err
	}
	return &t, nil
}
