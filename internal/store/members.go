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

const memberColumns = `profile_id, team_id, role_id, created_at`

type MemberStore struct {
	pool *pgxpool.Pool
}

func NewMemberStore(pool *pgxpool.Pool) *MemberStore {
	return &MemberStore{pool: pool}
}

// Create inserts the membership unless the profile already belongs to the
// team, and reports whether a row was written.
func (s *MemberStore) Create(ctx context.Context, member *teams.Member) (bool, error) {
	tag, err := getConn(ctx, s.pool).Exec(ctx, `
		INSERT INTO team_members (profile_id, team_id, role_id, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (profile_id, team_id) DO NOTHING
	`, member.ProfileID, member.TeamID, member.RoleID, member.CreatedAt)
	if err != nil {
		return false, fmt.Errorf("failed to create member: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (s *MemberStore) Get(ctx context.Context, teamID, profileID uuid.UUID) (*teams.Member, error) {
	return s.get(ctx, teamID, profileID, "")
}

func (s *MemberStore) GetForUpdate(ctx context.Context, teamID, profileID uuid.UUID) (*teams.Member, error) {
	return s.get(ctx, teamID, profileID, "FOR UPDATE")
}

func (s *MemberStore) get(ctx context.Context, teamID, profileID uuid.UUID, lock string) (*teams.Member, error) {
	row := getConn(ctx, s.pool).QueryRow(ctx, `
		SELECT `+memberColumns+`
		FROM team_members
		WHERE team_id = $1 AND profile_id = $2
		`+lock, teamID, profileID)

	member, err := scanMember(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, teams.ErrMemberNotFound
		}
		return nil, fmt.Errorf("failed to get member: %w", err)
	}
	return member, nil
}

func (s *MemberStore) ListByTeam(ctx context.Context, teamID uuid.UUID) ([]teams.Member, error) {
	rows, err := getConn(ctx, s.pool).Query(ctx, `
		SELECT `+memberColumns+`
		FROM team_members
		WHERE team_id = $1
		ORDER BY created_at
	`, teamID)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	defer rows.Close()

	out := []teams.Member{}
	for rows.Next() {
		member, err := scanMember(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan member: %w", err)
		}
		out = append(out, *member)
	}
	return out, rows.Err()
}

func (s *MemberStore) UpdateRole(ctx context.Context, teamID, profileID uuid.UUID, roleID *uuid.UUID) error {
	tag, err := getConn(ctx, s.pool).Exec(ctx, `
		UPDATE team_members SET role_id = $3
		WHERE team_id = $1 AND profile_id = $2
	`, teamID, profileID, roleID)
	if err != nil {
		return fmt.Errorf("failed to update member role: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return teams.ErrMemberNotFound
	}
	return nil
}

func (s *MemberStore) Delete(ctx context.Context, teamID, profileID uuid.UUID) error {
	tag, err := getConn(ctx, s.pool).Exec(ctx, `
		DELETE FROM team_members WHERE team_id = $1 AND profile_id = $2
	`, teamID, profileID)
	if err != nil {
		return fmt.Errorf("failed to delete member: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return teams.ErrMemberNotFound
	}
	return nil
}

func (s *MemberStore) ClearRole(ctx context.Context, teamID, roleID uuid.UUID) (int64, error) {
	tag, err := getConn(ctx, s.pool).Exec(ctx, `
		UPDATE team_members SET role_id = NULL
		WHERE team_id = $1 AND role_id = $2
	`, teamID, roleID)
	if err != nil {
		return 0, fmt.Errorf("failed to clear member roles: %w", err)
	}
	return tag.RowsAffected(), nil
}

func scanMember(row pgx.Row) (*teams.Member, error) {
	var m teams.Member
	if err := row.Scan(&m.ProfileID, &m.TeamID, &m.RoleID, &m.CreatedAt); err != nil {
		return nil, err
	}
	return &m, nil
}
