// Package categories seeds the default expense and budget categories of a
// new team.
package categories

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

type ExpenseCategory struct {
	Name string
	Icon string
}

// DefaultExpenseCategories are created for every new team.
var DefaultExpenseCategories = []ExpenseCategory{
	{Name: "Alimentação", Icon: "utensils"},
	{Name: "Moradia", Icon: "home"},
	{Name: "Transporte", Icon: "car"},
	{Name: "Saúde", Icon: "heart-pulse"},
	{Name: "Educação", Icon: "graduation-cap"},
	{Name: "Lazer", Icon: "party-popper"},
	{Name: "Vestuário", Icon: "shirt"},
	{Name: "Contas e serviços", Icon: "receipt"},
	{Name: "Outros", Icon: "ellipsis"},
}

// DefaultBudgetCategories are created for every new team.
var DefaultBudgetCategories = []string{
	"Essenciais",
	"Estilo de vida",
	"Investimentos",
	"Reserva de emergência",
}

// Seeder writes the defaults. Seeding is idempotent.
type Seeder struct {
	pool *pgxpool.Pool
}

func NewSeeder(pool *pgxpool.Pool) *Seeder {
	return &Seeder{pool: pool}
}

// SeedDefaults inserts the default categories of teamID in one transaction.
// Categories that already exist are left alone.
func (s *Seeder) SeedDefaults(ctx context.Context, teamID uuid.UUID) error {
	batch := &pgx.Batch{}
	for _, c := range DefaultExpenseCategories {
		batch.Queue(`
			INSERT INTO expense_categories (team_id, name, icon)
			VALUES ($1, $2, $3)
			ON CONFLICT (team_id, name) DO NOTHING
		`, teamID, c.Name, c.Icon)
	}
	for _, name := range DefaultBudgetCategories {
		batch.Queue(`
			INSERT INTO budget_categories (team_id, name)
			VALUES ($1, $2)
			ON CONFLICT (team_id, name) DO NOTHING
		`, teamID, name)
	}

	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		results := tx.SendBatch(ctx, batch)
		for i := 0; i < batch.Len(); i++ {
			if _, err := results.Exec(); err != nil {
				_ = results.Close()
				return err
			}
		}
		return results.Close()
	})
	if err != nil {
		return fmt.Errorf("failed to seed default categories: %w", err)
	}

	log.Info().
		Str("team_id", teamID.String()).
		Int("expense_categories", len(DefaultExpenseCategories)).
		Int("budget_categories", len(DefaultBudgetCategories)).
		Msg("Default categories seeded")
	return nil
}
