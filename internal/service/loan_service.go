package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/segyhp/loan-engine/internal/config"
	"github.com/segyhp/loan-engine/internal/domain"
	"github.com/segyhp/loan-engine/internal/repository"
	customError "github.com/segyhp/loan-engine/pkg/errors"
	"github.com/segyhp/loan-engine/pkg/utils"
)

type LoanService struct {
	store  repository.Store
	config *config.Config
	logger *zap.Logger
	now    func() time.Time
}

func NewLoanService(store repository.Store, cfg *config.Config, logger *zap.Logger) *LoanService {
	return &LoanService{
		store:  store,
		config: cfg,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// CreateLoan validates the request, stores a pending loan together with its
// forward ledger entry, then adds the due-date notification.
func (s *LoanService) CreateLoan(ctx context.Context, userID uuid.UUID, req *domain.CreateLoanRequest) (*domain.Loan, error) {
	now := s.now()

	loan, err := domain.NewLoan(userID, req, now)
	if err != nil {
		return nil, err
	}

	err = s.store.WithinTx(ctx, func(tx repository.Store) error {
		if err := tx.Loans().Create(ctx, loan); err != nil {
			return customError.WrapDatabaseError(err)
		}
		return MirrorForward(ctx, tx.Ledger(), loan, now)
	})
	if err != nil {
		return nil, err
	}

	// The loan is committed at this point; the notification is best effort
	if err := s.createDueNotification(ctx, loan, now); err != nil {
		s.logger.Warn("failed to create due date notification",
			zap.String("loan_id", loan.ID.String()),
			zap.Error(err),
		)
	}

	return loan, nil
}

func (s *LoanService) createDueNotification(ctx context.Context, loan *domain.Loan, now time.Time) error {
	dueDate := utils.CivilDate(loan.DueDate)

	_, err := s.store.Notifications().Create(ctx, &domain.Notification{
		ID:           uuid.New(),
		UserID:       loan.UserID,
		LoanID:       loan.ID,
		Type:         domain.NotificationLoanReminder,
		Title:        fmt.Sprintf("Loan Due: %s", loan.Amount.StringFixed(2)),
		Message:      fmt.Sprintf("Due on %s", utils.FormatDate(dueDate)),
		DueDate:      dueDate,
		ReminderDate: &dueDate,
		CreatedAt:    now,
	})

	return err
}

// GetLoan returns the loan only when it belongs to userID
func (s *LoanService) GetLoan(ctx context.Context, id, userID uuid.UUID) (*domain.Loan, error) {
	return s.ownedLoan(ctx, s.store, id, userID)
}

func (s *LoanService) ownedLoan(ctx context.Context, store repository.Store, id, userID uuid.UUID) (*domain.Loan, error) {
	loan, err := store.Loans().GetByID(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, customError.WrapLoanNotFound(id.String())
	}
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	// Someone else's loan is reported exactly like a missing one
	if loan.UserID != userID {
		return nil, customError.WrapLoanNotFound(id.String())
	}

	return loan, nil
}

// ListLoans returns one page of the user's loans plus totals over every matching loan
func (s *LoanService) ListLoans(ctx context.Context, filter domain.LoanFilter) (*domain.LoanListResponse, error) {
	filter.Limit = s.config.PageSize(filter.Limit)
	if filter.Page < 1 {
		filter.Page = 1
	}

	loans, err := s.store.Loans().List(ctx, filter)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	total, totals, err := s.store.Loans().Summarize(ctx, filter)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	pages := (total + filter.Limit - 1) / filter.Limit

	return &domain.LoanListResponse{
		Loans:  loans,
		Total:  total,
		Page:   filter.Page,
		Pages:  pages,
		Totals: *totals,
	}, nil
}

func (s *LoanService) LoanStats(ctx context.Context, userID uuid.UUID) (*domain.LoanStatsResponse, error) {
	rows, err := s.store.Loans().Stats(ctx, userID)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	return domain.NewLoanStats(rows), nil
}

// UpdateStatus applies a user requested status change.
// Only pending -> paid is a real transition; overdue is owned by the reminder run.
func (s *LoanService) UpdateStatus(ctx context.Context, id, userID uuid.UUID, status string) (*domain.Loan, error) {
	target, err := domain.ParseLoanStatus(status)
	if err != nil {
		return nil, customError.WrapValidation("Status must be 'pending' or 'paid'")
	}

	switch target {
	case domain.LoanStatusPaid:
		return s.MarkPaid(ctx, id, userID)
	case domain.LoanStatusPending:
		loan, err := s.GetLoan(ctx, id, userID)
		if err != nil {
			return nil, err
		}
		if loan.Status != domain.LoanStatusPending {
			return nil, customError.WrapValidation(fmt.Sprintf("Loan cannot move from %s back to pending", loan.Status))
		}
		return loan, nil
	default:
		return nil, customError.WrapValidation("Status must be 'pending' or 'paid'")
	}
}

// MarkPaid settles a loan and writes the reversing ledger entry in the same transaction.
// A second call finds the loan already paid and writes nothing.
func (s *LoanService) MarkPaid(ctx context.Context, id, userID uuid.UUID) (*domain.Loan, error) {
	now := s.now()

	var loan *domain.Loan
	err := s.store.WithinTx(ctx, func(tx repository.Store) error {
		var err error
		loan, err = s.ownedLoan(ctx, tx, id, userID)
		if err != nil {
			return err
		}

		if loan.Status == domain.LoanStatusPaid {
			return customError.WrapLoanAlreadyPaid(id.String())
		}

		updated, err := tx.Loans().MarkPaid(ctx, id, userID, now)
		if err != nil {
			return customError.WrapDatabaseError(err)
		}
		if !updated {
			return customError.WrapLoanAlreadyPaid(id.String())
		}

		loan.Status = domain.LoanStatusPaid
		loan.PaidDate = &now
		loan.UpdatedAt = now

		return MirrorReverse(ctx, tx.Ledger(), loan, now)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("loan paid",
		zap.String("loan_id", loan.ID.String()),
		zap.String("type", string(loan.Type)),
		zap.String("amount", loan.RepaymentAmount().StringFixed(2)),
	)

	return loan, nil
}

// MarkOverdue moves a pending loan to overdue and reports whether it did
func (s *LoanService) MarkOverdue(ctx context.Context, id uuid.UUID) (bool, error) {
	moved, err := s.store.Loans().MarkOverdue(ctx, id, s.now())
	if err != nil {
		return false, customError.WrapDatabaseError(err)
	}
	return moved, nil
}

// DeleteLoan removes an owned loan and its notifications. Ledger entries are kept.
func (s *LoanService) DeleteLoan(ctx context.Context, id, userID uuid.UUID) error {
	return s.store.WithinTx(ctx, func(tx repository.Store) error {
		if _, err := s.ownedLoan(ctx, tx, id, userID); err != nil {
			return err
		}

		if _, err := tx.Notifications().DeleteByLoan(ctx, id); err != nil {
			return customError.WrapDatabaseError(err)
		}

		deleted, err := tx.Loans().Delete(ctx, id, userID)
		if err != nil {
			return customError.WrapDatabaseError(err)
		}
		if !deleted {
			return customError.WrapLoanNotFound(id.String())
		}

		return nil
	})
}
