package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/segyhp/loan-engine/internal/domain"
)

type ledgerRepository struct {
	db sqlx.ExtContext
}

func NewLedgerRepository(db sqlx.ExtContext) LedgerRepository {
	return &ledgerRepository{db: db}
}

func (r *ledgerRepository) CreateIncome(ctx context.Context, entry *domain.IncomeEntry) error {
	query := `
		INSERT INTO incomes (id, user_id, source, amount, category, date, notes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.db.ExecContext(ctx, query,
		entry.ID,
		entry.UserID,
		entry.Source,
		entry.Amount,
		entry.Category,
		entry.Date,
		entry.Notes,
		entry.CreatedAt,
	)

	return err
}

func (r *ledgerRepository) CreateExpense(ctx context.Context, entry *domain.ExpenseEntry) error {
	query := `
		INSERT INTO expenses (id, user_id, name, amount, category, date, description, notes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.db.ExecContext(ctx, query,
		entry.ID,
		entry.UserID,
		entry.Name,
		entry.Amount,
		entry.Category,
		entry.Date,
		entry.Description,
		entry.Notes,
		entry.CreatedAt,
	)

	return err
}
