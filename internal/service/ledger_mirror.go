package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/segyhp/loan-engine/internal/domain"
	"github.com/segyhp/loan-engine/internal/repository"
	customError "github.com/segyhp/loan-engine/pkg/errors"
	"github.com/segyhp/loan-engine/pkg/utils"
)

// MirrorForward records the cash movement of a newly created loan.
// Lending money out is an expense; borrowing money in is an income.
func MirrorForward(ctx context.Context, ledger repository.LedgerRepository, loan *domain.Loan, now time.Time) error {
	var err error

	switch loan.Type {
	case domain.LoanTypeLending:
		err = ledger.CreateExpense(ctx, &domain.ExpenseEntry{
			ID:        uuid.New(),
			UserID:    loan.UserID,
			Name:      fmt.Sprintf("Lent to %s", loan.Counterparty()),
			Amount:    loan.Amount,
			Category:  domain.ExpenseCategoryLending,
			Date:      loan.StartDate,
			Notes:     loan.Notes,
			CreatedAt: now,
		})
	case domain.LoanTypeBorrowing:
		err = ledger.CreateIncome(ctx, &domain.IncomeEntry{
			ID:        uuid.New(),
			UserID:    loan.UserID,
			Source:    fmt.Sprintf("Borrowed from %s", loan.Counterparty()),
			Amount:    loan.Amount,
			Category:  domain.IncomeCategoryOther,
			Date:      loan.StartDate,
			Notes:     loan.Notes,
			CreatedAt: now,
		})
	default:
		return customError.WrapValidation("Type must be 'lending' or 'borrowing'")
	}

	if err != nil {
		return customError.WrapLedgerWriteFailed(err)
	}
	return nil
}

// MirrorReverse records the settlement of a loan for principal plus interest
func MirrorReverse(ctx context.Context, ledger repository.LedgerRepository, loan *domain.Loan, now time.Time) error {
	var err error
	amount := loan.RepaymentAmount()

	switch loan.Type {
	case domain.LoanTypeLending:
		err = ledger.CreateIncome(ctx, &domain.IncomeEntry{
			ID:        uuid.New(),
			UserID:    loan.UserID,
			Source:    fmt.Sprintf("Repaid by %s", loan.Counterparty()),
			Amount:    amount,
			Category:  domain.IncomeCategoryOther,
			Date:      utils.CivilDate(now),
			CreatedAt: now,
		})
	case domain.LoanTypeBorrowing:
		err = ledger.CreateExpense(ctx, &domain.ExpenseEntry{
			ID:        uuid.New(),
			UserID:    loan.UserID,
			Name:      fmt.Sprintf("Paid to %s", loan.Counterparty()),
			Amount:    amount,
			Category:  domain.ExpenseCategoryRepayment,
			Date:      utils.CivilDate(now),
			CreatedAt: now,
		})
	default:
		return customError.WrapValidation("Type must be 'lending' or 'borrowing'")
	}

	if err != nil {
		return customError.WrapLedgerWriteFailed(err)
	}
	return nil
}
