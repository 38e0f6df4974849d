package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Ledger categories used by loan mirror entries
const (
	IncomeCategoryOther = "Other"

	ExpenseCategoryLending   = "Lending"
	ExpenseCategoryRepayment = "Repayment"
)

// IncomeEntry is a row of the general income ledger. It carries no reference to a loan.
type IncomeEntry struct {
	ID        uuid.UUID       `json:"id" db:"id"`
	UserID    uuid.UUID       `json:"user_id" db:"user_id"`
	Source    string          `json:"source" db:"source"`
	Amount    decimal.Decimal `json:"amount" db:"amount"`
	Category  string          `json:"category" db:"category"`
	Date      time.Time       `json:"date" db:"date"`
	Notes     string          `json:"notes,omitempty" db:"notes"`
	CreatedAt time.Time       `json:"created_at" db:"created_at"`
}

// ExpenseEntry is a row of the general expense ledger
type ExpenseEntry struct {
	ID          uuid.UUID       `json:"id" db:"id"`
	UserID      uuid.UUID       `json:"user_id" db:"user_id"`
	Name        string          `json:"name" db:"name"`
	Amount      decimal.Decimal `json:"amount" db:"amount"`
	Category    string          `json:"category" db:"category"`
	Date        time.Time       `json:"date" db:"date"`
	Description string          `json:"description,omitempty" db:"description"`
	Notes       string          `json:"notes,omitempty" db:"notes"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
}
