package billing

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestSubscription_IsActiveAt(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	future := now.Add(24 * time.Hour)
	past := now.Add(-time.Second)

	tests := []struct {
		name string
		sub  *Subscription
		want bool
	}{
		{"nil", nil, false},
		{"active open-ended", &Subscription{Status: SubscriptionStatusActive}, true},
		{"trialing in period", &Subscription{Status: SubscriptionStatusTrialing, CurrentPeriodEnd: &future}, true},
		{"active but period over", &Subscription{Status: SubscriptionStatusActive, CurrentPeriodEnd: &past}, false},
		{"period ends exactly now", &Subscription{Status: SubscriptionStatusActive, CurrentPeriodEnd: &now}, false},
		{"past due", &Subscription{Status: SubscriptionStatusPastDue, CurrentPeriodEnd: &future}, false},
		{"canceled", &Subscription{Status: SubscriptionStatusCanceled}, false},
		{"incomplete", &Subscription{Status: SubscriptionStatusIncomplete}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, tt.sub.IsActiveAt(now))
			if tt.want {
				require.Equal(t, PlanPro, PlanAt(tt.sub, now))
			} else {
				require.Equal(t, PlanFree, PlanAt(tt.sub, now))
			}
		})
	}
}

func TestSQLGateway_FindByTeamID(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	teamID := uuid.New()
	periodEnd := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	updatedAt := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	rows := sqlmock.NewRows([]string{"team_id", "status", "plan", "current_period_end", "updated_at"}).
		AddRow(teamID.String(), "active", "pro", periodEnd, updatedAt)
	mock.ExpectQuery("FROM subscriptions").
		WithArgs(teamID.String()).
		WillReturnRows(rows)

	sub, err := NewSQLGateway(db).FindByTeamID(context.Background(), teamID)
	require.NoError(t, err)
	require.NotNil(t, sub)
	require.Equal(t, teamID, sub.TeamID)
	require.Equal(t, SubscriptionStatusActive, sub.Status)
	require.Equal(t, "pro", sub.Plan)
	require.NotNil(t, sub.CurrentPeriodEnd)
	require.True(t, periodEnd.Equal(*sub.CurrentPeriodEnd))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLGateway_FindByTeamID_Absent(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	teamID := uuid.New()
	mock.ExpectQuery("FROM subscriptions").
		WithArgs(teamID.String()).
		WillReturnRows(sqlmock.NewRows([]string{"team_id", "status", "plan", "current_period_end", "updated_at"}))

	sub, err := NewSQLGateway(db).FindByTeamID(context.Background(), teamID)
	require.NoError(t, err)
	require.Nil(t, sub)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLGateway_FindByTeamID_QueryError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("FROM subscriptions").WillReturnError(errors.New("connection reset"))

	_, err = NewSQLGateway(db).FindByTeamID(context.Background(), uuid.New())
	require.Error(t, err)
	require.Contains(t, err.Error(), "failed to get subscription")
}

type countingFinder struct {
	calls int
	sub   *Subscription
	err   error
}

func (f *countingFinder) FindByTeamID(ctx context.Context, teamID uuid.UUID) (*Subscription, error) {
	f.calls++
	return f.sub, f.err
}

func TestCachedGateway(t *testing.T) {
	ctx := context.Background()
	teamID := uuid.New()

	t.Run("caches hits and absences", func(t *testing.T) {
		inner := &countingFinder{}
		g := NewCachedGateway(inner, 32, time.Minute)

		for i := 0; i < 3; i++ {
			sub, err := g.FindByTeamID(ctx, teamID)
			require.NoError(t, err)
			require.Nil(t, sub)
		}
		require.Equal(t, 1, inner.calls)

		g.Invalidate(teamID)
		_, err := g.FindByTeamID(ctx, teamID)
		require.NoError(t, err)
		require.Equal(t, 2, inner.calls)
	})

	t.Run("does not cache errors", func(t *testing.T) {
		inner := &countingFinder{err: errors.New("db down")}
		g := NewCachedGateway(inner, 32, time.Minute)

		_, err := g.FindByTeamID(ctx, teamID)
		require.Error(t, err)
		_, err = g.FindByTeamID(ctx, teamID)
		require.Error(t, err)
		require.Equal(t, 2, inner.calls)
	})
}
