package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/segyhp/loan-engine/internal/domain"
)

// LoanRepository defines the interface for loan data operations.
// Lookups of a missing row return sql.ErrNoRows.
type LoanRepository interface {
	// Create creates a new loan
	Create(ctx context.Context, loan *domain.Loan) error

	// GetByID retrieves a loan by its ID
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Loan, error)

	// List retrieves a page of a user's loans ordered by due date
	List(ctx context.Context, filter domain.LoanFilter) ([]*domain.Loan, error)

	// Summarize counts and sums every loan matching the filter, ignoring paging
	Summarize(ctx context.Context, filter domain.LoanFilter) (int, *domain.LoanTotals, error)

	// ListOpen retrieves every loan that is not paid, across all users
	ListOpen(ctx context.Context) ([]*domain.Loan, error)

	// MarkPaid moves an owned, unpaid loan to paid. Reports whether a row changed.
	MarkPaid(ctx context.Context, id, userID uuid.UUID, paidAt time.Time) (bool, error)

	// MarkOverdue moves a pending loan to overdue. Reports whether a row changed.
	MarkOverdue(ctx context.Context, id uuid.UUID, at time.Time) (bool, error)

	// Delete removes an owned loan. Reports whether a row was removed.
	Delete(ctx context.Context, id, userID uuid.UUID) (bool, error)

	// Stats aggregates a user's loans by status and type
	Stats(ctx context.Context, userID uuid.UUID) ([]*domain.LoanStatRow, error)
}

// LedgerRepository writes general ledger rows
type LedgerRepository interface {
	CreateIncome(ctx context.Context, entry *domain.IncomeEntry) error
	CreateExpense(ctx context.Context, entry *domain.ExpenseEntry) error
}

// NotificationRepository defines the interface for notification data operations
type NotificationRepository interface {
	// Exists checks for a notification of the same loan, type and reminder date
	Exists(ctx context.Context, loanID uuid.UUID, notificationType domain.NotificationType, reminderDate *time.Time) (bool, error)

	// Create inserts the notification unless its milestone already exists.
	// Reports whether a row was written.
	Create(ctx context.Context, notification *domain.Notification) (bool, error)

	// DeleteByLoan removes every notification referencing the loan
	DeleteByLoan(ctx context.Context, loanID uuid.UUID) (int64, error)

	ListByUser(ctx context.Context, filter domain.NotificationFilter) ([]*domain.Notification, error)
	CountUnread(ctx context.Context, userID uuid.UUID) (int, error)
	MarkRead(ctx context.Context, id, userID uuid.UUID) (bool, error)
	MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error)
}

// Store groups the repositories that must be able to share one transaction
type Store interface {
	Loans() LoanRepository
	Ledger() LedgerRepository
	Notifications() NotificationRepository

	// WithinTx runs fn against a Store bound to a single transaction.
	// The transaction commits when fn returns nil and rolls back otherwise.
	WithinTx(ctx context.Context, fn func(tx Store) error) error
}

// ReminderCache is the fast path in front of the notification uniqueness check
// and the place the last reminder run is kept for inspection.
type ReminderCache interface {
	Seen(ctx context.Context, key string) (bool, error)
	Remember(ctx context.Context, key string) error
	SaveReport(ctx context.Context, report *domain.RunReport) error
	LastReport(ctx context.Context) (*domain.RunReport, error)
}
