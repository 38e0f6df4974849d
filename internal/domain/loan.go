package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	customError "github.com/segyhp/loan-engine/pkg/errors"
	"github.com/segyhp/loan-engine/pkg/utils"
)

type LoanType string

const (
	LoanTypeLending   LoanType = "lending"
	LoanTypeBorrowing LoanType = "borrowing"
)

type LoanStatus string

const (
	LoanStatusPending LoanStatus = "pending"
	LoanStatusPaid    LoanStatus = "paid"
	LoanStatusOverdue LoanStatus = "overdue"
)

type LenderCategory string

const (
	LenderCategoryBank       LenderCategory = "Bank"
	LenderCategoryFriends    LenderCategory = "Friends"
	LenderCategoryThirdParty LenderCategory = "Third Party"
)

// ParseLoanType rejects anything other than lending or borrowing
func ParseLoanType(s string) (LoanType, error) {
	switch t := LoanType(strings.TrimSpace(s)); t {
	case LoanTypeLending, LoanTypeBorrowing:
		return t, nil
	}
	return "", customError.WrapValidation("Type must be 'lending' or 'borrowing'")
}

func ParseLoanStatus(s string) (LoanStatus, error) {
	switch st := LoanStatus(strings.TrimSpace(s)); st {
	case LoanStatusPending, LoanStatusPaid, LoanStatusOverdue:
		return st, nil
	}
	return "", customError.WrapValidation("Status must be 'pending', 'paid' or 'overdue'")
}

// ParseLenderCategory maps an omitted category to Friends and rejects unknown values
func ParseLenderCategory(s string) (LenderCategory, error) {
	switch c := LenderCategory(strings.TrimSpace(s)); c {
	case "":
		return LenderCategoryFriends, nil
	case LenderCategoryBank, LenderCategoryFriends, LenderCategoryThirdParty:
		return c, nil
	}
	return "", customError.WrapValidation("Category must be 'Bank', 'Friends' or 'Third Party'")
}

// Loan represents a lending or borrowing agreement
type Loan struct {
	ID              uuid.UUID       `json:"id" db:"id"`
	UserID          uuid.UUID       `json:"user_id" db:"user_id"`
	Type            LoanType        `json:"type" db:"type"`
	Amount          decimal.Decimal `json:"amount" db:"amount"`
	InterestRate    decimal.Decimal `json:"interest_rate" db:"interest_rate"`
	StartDate       time.Time       `json:"start_date" db:"start_date"`
	DueDate         time.Time       `json:"due_date" db:"due_date"`
	TotalInterest   decimal.Decimal `json:"total_interest" db:"total_interest"`
	TotalPayable    decimal.Decimal `json:"total_payable" db:"total_payable"`
	Status          LoanStatus      `json:"status" db:"status"`
	PaidDate        *time.Time      `json:"paid_date,omitempty" db:"paid_date"`
	BorrowerName    string          `json:"borrower_name,omitempty" db:"borrower_name"`
	BorrowerAddress string          `json:"borrower_address,omitempty" db:"borrower_address"`
	BorrowerPhone   string          `json:"borrower_phone,omitempty" db:"borrower_phone"`
	LenderName      string          `json:"lender_name,omitempty" db:"lender_name"`
	Category        LenderCategory  `json:"category,omitempty" db:"category"`
	Notes           string          `json:"notes,omitempty" db:"notes"`
	CreatedAt       time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at" db:"updated_at"`
}

// Counterparty returns the name of the other side of the agreement
func (l *Loan) Counterparty() string {
	name := l.LenderName
	if l.Type == LoanTypeLending {
		name = l.BorrowerName
	}
	if strings.TrimSpace(name) == "" {
		return "Someone"
	}
	return name
}

// RepaymentAmount is what changes hands when the loan is settled
func (l *Loan) RepaymentAmount() decimal.Decimal {
	return l.Amount.Add(l.TotalInterest)
}

// NewLoan validates a creation request and returns a pending loan with interest computed.
// Nothing is persisted here.
func NewLoan(userID uuid.UUID, req *CreateLoanRequest, now time.Time) (*Loan, error) {
	loanType, err := ParseLoanType(req.Type)
	if err != nil {
		return nil, err
	}

	if !req.Amount.IsPositive() {
		return nil, customError.WrapValidation("Amount must be a positive number")
	}
	if req.InterestRate.IsNegative() {
		return nil, customError.WrapValidation("Interest rate must be >= 0")
	}

	start, err := utils.ParseDate(req.StartDate)
	if err != nil {
		return nil, customError.WrapValidation("Invalid start date")
	}
	due, err := utils.ParseDate(req.DueDate)
	if err != nil {
		return nil, customError.WrapValidation("Invalid due date")
	}

	interest, err := utils.CalculateInterest(req.Amount, req.InterestRate, start, due)
	switch {
	case errors.Is(err, utils.ErrInvalidRange):
		return nil, customError.WrapValidation("Due date must be after start date")
	case err != nil:
		return nil, customError.WrapValidation(err.Error())
	}

	loan := &Loan{
		ID:            uuid.New(),
		UserID:        userID,
		Type:          loanType,
		Amount:        req.Amount,
		InterestRate:  req.InterestRate,
		StartDate:     start,
		DueDate:       due,
		TotalInterest: interest.Interest,
		TotalPayable:  interest.TotalPayable,
		Status:        LoanStatusPending,
		Notes:         strings.TrimSpace(req.Notes),
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	switch loanType {
	case LoanTypeLending:
		loan.BorrowerName = strings.TrimSpace(req.BorrowerName)
		loan.BorrowerAddress = strings.TrimSpace(req.BorrowerAddress)
		loan.BorrowerPhone = strings.TrimSpace(req.BorrowerPhone)
	case LoanTypeBorrowing:
		category, err := ParseLenderCategory(req.Category)
		if err != nil {
			return nil, err
		}
		loan.LenderName = strings.TrimSpace(req.LenderName)
		loan.Category = category
	}

	return loan, nil
}

// DTOs for requests and responses

type CreateLoanRequest struct {
	Type            string          `json:"type" validate:"required,oneof=lending borrowing"`
	Amount          decimal.Decimal `json:"amount" validate:"decimal_gt=0"`
	InterestRate    decimal.Decimal `json:"interest_rate" validate:"decimal_gte=0"`
	StartDate       string          `json:"start_date" validate:"required"`
	DueDate         string          `json:"due_date" validate:"required"`
	BorrowerName    string          `json:"borrower_name" validate:"max=120"`
	BorrowerAddress string          `json:"borrower_address" validate:"max=255"`
	BorrowerPhone   string          `json:"borrower_phone" validate:"max=32"`
	LenderName      string          `json:"lender_name" validate:"max=120"`
	Category        string          `json:"category"`
	Notes           string          `json:"notes" validate:"max=1000"`
}

type UpdateLoanStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending paid"`
}

// LoanFilter narrows a loan listing. Zero values mean "any".
type LoanFilter struct {
	UserID uuid.UUID
	Type   LoanType
	Status LoanStatus
	Page   int
	Limit  int
}

func (f LoanFilter) Offset() int {
	if f.Page < 1 {
		return 0
	}
	return (f.Page - 1) * f.Limit
}

type LoanTotals struct {
	Principal    decimal.Decimal `json:"principal" db:"principal"`
	Interest     decimal.Decimal `json:"interest" db:"interest"`
	TotalPayable decimal.Decimal `json:"total_payable" db:"total_payable"`
}

type LoanListResponse struct {
	Loans  []*Loan    `json:"loans"`
	Total  int        `json:"total"`
	Page   int        `json:"page"`
	Pages  int        `json:"pages"`
	Totals LoanTotals `json:"totals"`
}

// LoanStatRow is one (status, type) aggregate as returned by storage
type LoanStatRow struct {
	Status       LoanStatus      `db:"status"`
	Type         LoanType        `db:"type"`
	Count        int             `db:"count"`
	Principal    decimal.Decimal `db:"principal"`
	TotalPayable decimal.Decimal `db:"total_payable"`
}

type LoanStatBucket struct {
	Count        int             `json:"count"`
	Principal    decimal.Decimal `json:"principal"`
	TotalPayable decimal.Decimal `json:"total_payable"`
}

func (b LoanStatBucket) add(row *LoanStatRow) LoanStatBucket {
	return LoanStatBucket{
		Count:        b.Count + row.Count,
		Principal:    b.Principal.Add(row.Principal),
		TotalPayable: b.TotalPayable.Add(row.TotalPayable),
	}
}

type LoanStatsResponse struct {
	ByStatus    map[LoanStatus]LoanStatBucket `json:"by_status"`
	ByDirection map[LoanType]LoanStatBucket   `json:"by_direction"`
}

// NewLoanStats folds storage aggregates into per-status and per-direction buckets.
// Every known status and direction is present even with no loans.
func NewLoanStats(rows []*LoanStatRow) *LoanStatsResponse {
	stats := &LoanStatsResponse{
		ByStatus: map[LoanStatus]LoanStatBucket{
			LoanStatusPending: {},
			LoanStatusPaid:    {},
			LoanStatusOverdue: {},
		},
		ByDirection: map[LoanType]LoanStatBucket{
			LoanTypeLending:   {},
			LoanTypeBorrowing: {},
		},
	}

	for _, row := range rows {
		stats.ByStatus[row.Status] = stats.ByStatus[row.Status].add(row)
		stats.ByDirection[row.Type] = stats.ByDirection[row.Type].add(row)
	}

	return stats
}
