package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/segyhp/loan-engine/internal/domain"
)

const loanColumns = `id, user_id, type, amount, interest_rate, start_date, due_date, total_interest, total_payable,
		status, paid_date, borrower_name, borrower_address, borrower_phone, lender_name, category, notes, created_at, updated_at`

type loanRepository struct {
	db sqlx.ExtContext
}

func NewLoanRepository(db sqlx.ExtContext) LoanRepository {
	return &loanRepository{db: db}
}

func (r *loanRepository) Create(ctx context.Context, loan *domain.Loan) error {
	query := `
		INSERT INTO loans (` + loanColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
	`

	_, err := r.db.ExecContext(ctx, query,
		loan.ID,
		loan.UserID,
		loan.Type,
		loan.Amount,
		loan.InterestRate,
		loan.StartDate,
		loan.DueDate,
		loan.TotalInterest,
		loan.TotalPayable,
		loan.Status,
		loan.PaidDate,
		loan.BorrowerName,
		loan.BorrowerAddress,
		loan.BorrowerPhone,
		loan.LenderName,
		loan.Category,
		loan.Notes,
		loan.CreatedAt,
		loan.UpdatedAt,
	)

	return err
}

func (r *loanRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Loan, error) {
	query := `SELECT ` + loanColumns + ` FROM loans WHERE id = $1`

	var loan domain.Loan
	if err := sqlx.GetContext(ctx, r.db, &loan, query, id); err != nil {
		return nil, err
	}

	return &loan, nil
}

func loanWhere(filter domain.LoanFilter) (string, []interface{}) {
	conditions := []string{"user_id = $1"}
	args := []interface{}{filter.UserID}

	if filter.Type != "" {
		args = append(args, filter.Type)
		conditions = append(conditions, fmt.Sprintf("type = $%d", len(args)))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)))
	}

	return " WHERE " + strings.Join(conditions, " AND "), args
}

func (r *loanRepository) List(ctx context.Context, filter domain.LoanFilter) ([]*domain.Loan, error) {
	where, args := loanWhere(filter)
	query := `SELECT ` + loanColumns + ` FROM loans` + where + ` ORDER BY due_date ASC, created_at ASC`

	if filter.Limit > 0 {
		args = append(args, filter.Limit, filter.Offset())
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)-1, len(args))
	}

	loans := []*domain.Loan{}
	if err := sqlx.SelectContext(ctx, r.db, &loans, query, args...); err != nil {
		return nil, err
	}

	return loans, nil
}

type loanSummary struct {
	Count int `db:"count"`
	domain.LoanTotals
}

func (r *loanRepository) Summarize(ctx context.Context, filter domain.LoanFilter) (int, *domain.LoanTotals, error) {
	where, args := loanWhere(filter)
	query := `
		SELECT COUNT(*) AS count,
			COALESCE(SUM(amount), 0) AS principal,
			COALESCE(SUM(total_interest), 0) AS interest,
			COALESCE(SUM(total_payable), 0) AS total_payable
		FROM loans` + where

	var summary loanSummary
	if err := sqlx.GetContext(ctx, r.db, &summary, query, args...); err != nil {
		return 0, nil, err
	}

	return summary.Count, &summary.LoanTotals, nil
}

func (r *loanRepository) ListOpen(ctx context.Context) ([]*domain.Loan, error) {
	query := `SELECT ` + loanColumns + ` FROM loans WHERE status <> $1 ORDER BY due_date ASC`

	var loans []*domain.Loan
	if err := sqlx.SelectContext(ctx, r.db, &loans, query, domain.LoanStatusPaid); err != nil {
		return nil, err
	}

	return loans, nil
}

func (r *loanRepository) MarkPaid(ctx context.Context, id, userID uuid.UUID, paidAt time.Time) (bool, error) {
	query := `
		UPDATE loans
		SET status = $3, paid_date = $4, updated_at = $4
		WHERE id = $1 AND user_id = $2 AND status <> $3
	`

	result, err := r.db.ExecContext(ctx, query, id, userID, domain.LoanStatusPaid, paidAt)
	if err != nil {
		return false, err
	}

	return affected(result.RowsAffected())
}

func (r *loanRepository) MarkOverdue(ctx context.Context, id uuid.UUID, at time.Time) (bool, error) {
	query := `
		UPDATE loans
		SET status = $2, updated_at = $4
		WHERE id = $1 AND status = $3
	`

	result, err := r.db.ExecContext(ctx, query, id, domain.LoanStatusOverdue, domain.LoanStatusPending, at)
	if err != nil {
		return false, err
	}

	return affected(result.RowsAffected())
}

func (r *loanRepository) Delete(ctx context.Context, id, userID uuid.UUID) (bool, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM loans WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return false, err
	}

	return affected(result.RowsAffected())
}

func (r *loanRepository) Stats(ctx context.Context, userID uuid.UUID) ([]*domain.LoanStatRow, error) {
	query := `
		SELECT status, type, COUNT(*) AS count,
			COALESCE(SUM(amount), 0) AS principal,
			COALESCE(SUM(total_payable), 0) AS total_payable
		FROM loans
		WHERE user_id = $1
		GROUP BY status, type
		ORDER BY status, type
	`

	var rows []*domain.LoanStatRow
	if err := sqlx.SelectContext(ctx, r.db, &rows, query, userID); err != nil {
		return nil, err
	}

	return rows, nil
}

func affected(n int64, err error) (bool, error) {
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
