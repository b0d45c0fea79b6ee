package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/aliuyar1234/finhub/internal/billing"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// SubscriptionStore reads subscriptions on the connection carried by ctx, so
// a lookup made inside RunInTx uses the transaction's connection and snapshot.
type SubscriptionStore struct {
	pool *pgxpool.Pool
}

func NewSubscriptionStore(pool *pgxpool.Pool) *SubscriptionStore {
	return &SubscriptionStore{pool: pool}
}

// FindByTeamID returns the team's subscription, or nil when it never had one.
func (s *SubscriptionStore) FindByTeamID(ctx context.Context, teamID uuid.UUID) (*billing.Subscription, error) {
	var sub billing.Subscription
	var status string

	err := getConn(ctx, s.pool).QueryRow(ctx, `
		SELECT team_id, status, plan, current_period_end, updated_at
		FROM subscriptions
		WHERE team_id = $1
	`, teamID).Scan(&sub.TeamID, &status, &sub.Plan, &sub.CurrentPeriodEnd, &sub.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get subscription: %w", err)
	}

	sub.Status = billing.SubscriptionStatus(status)
	return &sub, nil
}
