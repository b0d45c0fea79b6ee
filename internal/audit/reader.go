package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Reader struct {
	pool *pgxpool.Pool
}

func NewReader(pool *pgxpool.Pool) *Reader {
	return &Reader{pool: pool}
}

type ListItem struct {
	ID          uuid.UUID      `json:"id"`
	Action      string         `json:"action"`
	TeamID      uuid.UUID      `json:"team_id"`
	ActorUserID *uuid.UUID     `json:"actor_user_id,omitempty"`
	Meta        map[string]any `json:"meta"`
	CreatedAt   time.Time      `json:"created_at"`
}

// ClampLimit keeps page sizes within 1..200, defaulting to 50.
func ClampLimit(limit int) int {
	if limit <= 0 || limit > 200 {
		return 50
	}
	return limit
}

func (r *Reader) ListByTeam(ctx context.Context, teamID uuid.UUID, limit int) ([]ListItem, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, team_id, actor_user_id, action, meta, created_at
		FROM audit_log
		WHERE team_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, teamID, ClampLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("failed to query audit log: %w", err)
	}
	defer rows.Close()

	out := []ListItem{}
	for rows.Next() {
		var item ListItem
		var actorUserID uuid.NullUUID
		var metaRaw []byte

		if err := rows.Scan(&item.ID, &item.TeamID, &actorUserID, &item.Action, &metaRaw, &item.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan audit row: %w", err)
		}

		if actorUserID.Valid {
			item.ActorUserID = &actorUserID.UUID
		}

		item.Meta = map[string]any{}
		if len(metaRaw) > 0 {
			_ = json.Unmarshal(metaRaw, &item.Meta)
		}

		out = append(out, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating audit rows: %w", err)
	}

	return out, nil
}
