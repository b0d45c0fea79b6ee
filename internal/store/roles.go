package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/aliuyar1234/finhub/internal/permissions"
	"github.com/aliuyar1234/finhub/internal/teams"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

const roleColumns = `id, team_id, name, COALESCE(color, ''), permissions, created_at, updated_at`

type RoleStore struct {
	pool *pgxpool.Pool
}

func NewRoleStore(pool *pgxpool.Pool) *RoleStore {
	return &RoleStore{pool: pool}
}

func (s *RoleStore) Create(ctx context.Context, role *teams.Role) error {
	_, err := getConn(ctx, s.pool).Exec(ctx, `
		INSERT INTO team_roles (id, team_id, name, color, permissions, created_at, updated_at)
		VALUES ($1, $2, $3, NULLIF($4, ''), $5, $6, $7)
	`, role.ID, role.TeamID, role.Name, role.Color, role.Permissions.Strings(), role.CreatedAt, role.UpdatedAt)
	if err != nil {
		return translateRoleError(err, "failed to create role")
	}
	return nil
}

func (s *RoleStore) GetByID(ctx context.Context, teamID, roleID uuid.UUID) (*teams.Role, error) {
	row := getConn(ctx, s.pool).QueryRow(ctx, `
		SELECT `+roleColumns+`
		FROM team_roles
		WHERE id = $1 AND team_id = $2
	`, roleID, teamID)

	role, err := scanRole(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, teams.ErrRoleNotFound
		}
		return nil, fmt.Errorf("failed to get role: %w", err)
	}
	return role, nil
}

func (s *RoleStore) ListByTeam(ctx context.Context, teamID uuid.UUID) ([]teams.Role, error) {
	rows, err := getConn(ctx, s.pool).Query(ctx, `
		SELECT `+roleColumns+`
		FROM team_roles
		WHERE team_id = $1
		ORDER BY created_at, name
	`, teamID)
	if err != nil {
		return nil, fmt.Errorf("failed to list roles: %w", err)
	}
	defer rows.Close()

	out := []teams.Role{}
	for rows.Next() {
		role, err := scanRole(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan role: %w", err)
		}
		out = append(out, *role)
	}
	return out, rows.Err()
}

func (s *RoleStore) Update(ctx context.Context, role *teams.Role) error {
	tag, err := getConn(ctx, s.pool).Exec(ctx, `
		UPDATE team_roles
		SET name = $3, color = NULLIF($4, ''), permissions = $5, updated_at = $6
		WHERE id = $1 AND team_id = $2
	`, role.ID, role.TeamID, role.Name, role.Color, role.Permissions.Strings(), role.UpdatedAt)
	if err != nil {
		return translateRoleError(err, "failed to update role")
	}
	if tag.RowsAffected() == 0 {
		return teams.ErrRoleNotFound
	}
	return nil
}

func (s *RoleStore) Delete(ctx context.Context, teamID, roleID uuid.UUID) error {
	tag, err := getConn(ctx, s.pool).Exec(ctx, `
		DELETE FROM team_roles WHERE id = $1 AND team_id = $2
	`, roleID, teamID)
	if err != nil {
		return fmt.Errorf("failed to delete role: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return teams.ErrRoleNotFound
	}
	return nil
}

func translateRoleError(err error, msg string) error {
	if constraint, ok := uniqueViolation(err); ok && constraint == "team_roles_team_name_uniq" {
		return teams.ErrRoleNameConflict
	}
	return fmt.Errorf("%s: %w", msg, err)
}

func scanRole(row pgx.Row) (*teams.Role, error) {
	var r teams.Role
	var stored []string
	if err := row.Scan(&r.ID, &r.TeamID, &r.Name, &r.Color, &stored, &r.CreatedAt, &r.UpdatedAt); err != nil {
		return nil, err
	}
	r.Permissions = storedPermissions(r.ID, stored)
	return &r, nil
}

// storedPermissions drops keys that have left the catalog.
func storedPermissions(roleID uuid.UUID, stored []string) permissions.Set {
	set := permissions.NewSet()
	for _, raw := range stored {
		key := permissions.Key(raw)
		if !permissions.Valid(key) {
			log.Warn().
				Str("role_id", roleID.String()).
				Str("permission", raw).
				Msg("Ignoring unknown stored permission")
			continue
		}
		set[key] = struct{}{}
	}
	return set
}
