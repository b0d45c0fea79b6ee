package billing

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// SQLGateway reads subscriptions through database/sql. In production the
// *sql.DB wraps the shared pgx pool via stdlib.OpenDBFromPool, so every call
// takes its own pooled connection. Do not call it inside a transaction.
type SQLGateway struct {
	db *sql.DB
}

func NewSQLGateway(db *sql.DB) *SQLGateway {
	return &SQLGateway{db: db}
}

// FindByTeamID returns the team's subscription, or nil when it never had one.
func (g *SQLGateway) FindByTeamID(ctx context.Context, teamID uuid.UUID) (*Subscription, error) {
	query := `
		SELECT team_id, status, plan, current_period_end, updated_at
		FROM subscriptions
		WHERE team_id = $1
	`

	var sub Subscription
	var status string
	var periodEnd sql.NullTime

	err := g.db.QueryRowContext(ctx, query, teamID.String()).Scan(
		&sub.TeamID,
		&status,
		&sub.Plan,
		&periodEnd,
		&sub.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get subscription: %w", err)
	}

	sub.Status = SubscriptionStatus(status)
	if periodEnd.Valid {
		t := periodEnd.Time
		sub.CurrentPeriodEnd = &t
	}

	return &sub, nil
}
