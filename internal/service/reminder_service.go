package service

import (
	"context"
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

// Days before the due date at which a loan_reminder fires
var reminderOffsets = map[int]bool{15: true, 2: true}

// errLoanMoved means the loan left pending while the overdue transition was being written
var errLoanMoved = errors.New("loan is no longer pending")

type ReminderService struct {
	store  repository.Store
	cache  repository.ReminderCache
	loc    *time.Location
	logger *zap.Logger
	clock  func() time.Time
}

// NewReminderService builds the reminder generator. cache may be nil, in which case
// every milestone is checked against the database only.
func NewReminderService(store repository.Store, cache repository.ReminderCache, cfg *config.Config, logger *zap.Logger) *ReminderService {
	return &ReminderService{
		store:  store,
		cache:  cache,
		loc:    cfg.GetSchedulerLocation(),
		logger: logger,
		clock:  time.Now,
	}
}

// Run scans every unpaid loan and emits the milestone notification due at now.
// Running it again on the same day emits nothing new. A failure on one loan is
// recorded in the report and the scan moves on.
func (s *ReminderService) Run(ctx context.Context, now time.Time) (*domain.RunReport, error) {
	report := &domain.RunReport{
		StartedAt: s.clock(),
		Failures:  []domain.LoanFailure{},
	}

	loans, err := s.store.Loans().ListOpen(ctx)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	for _, loan := range loans {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		report.Scanned++
		if err := s.processLoan(ctx, loan, now, report); err != nil {
			report.Failures = append(report.Failures, domain.LoanFailure{LoanID: loan.ID, Error: err.Error()})
			s.logger.Error("reminder processing failed",
				zap.String("loan_id", loan.ID.String()),
				zap.Error(err),
			)
		}
	}

	report.FinishedAt = s.clock()

	if s.cache != nil {
		if err := s.cache.SaveReport(ctx, report); err != nil {
			s.logger.Warn("failed to save reminder run report", zap.Error(err))
		}
	}

	s.logger.Info("reminder run finished",
		zap.Int("scanned", report.Scanned),
		zap.Int("emitted", report.Emitted),
		zap.Int("duplicates", report.Duplicates),
		zap.Int("marked_overdue", report.MarkedOverdue),
		zap.Int("failures", len(report.Failures)),
	)

	return report, nil
}

// LastRun returns the report of the most recent run, or nil when none was recorded
func (s *ReminderService) LastRun(ctx context.Context) (*domain.RunReport, error) {
	if s.cache == nil {
		return nil, nil
	}

	report, err := s.cache.LastReport(ctx)
	if err != nil {
		return nil, customError.WrapCacheError(err)
	}
	return report, nil
}

func (s *ReminderService) processLoan(ctx context.Context, loan *domain.Loan, now time.Time, report *domain.RunReport) error {
	diff := utils.DiffDays(loan.DueDate, now, s.loc)

	n := PlanMilestone(loan, diff, now)
	if n == nil {
		return nil
	}

	if n.Type != domain.NotificationLoanOverdue {
		inserted, err := s.emit(ctx, s.store.Notifications(), n, true)
		if err != nil {
			return err
		}
		s.count(ctx, report, n, inserted)
		return nil
	}

	// The overdue notice and the status change land together or not at all
	var inserted bool
	err := s.store.WithinTx(ctx, func(tx repository.Store) error {
		var err error
		inserted, err = s.emit(ctx, tx.Notifications(), n, false)
		if err != nil {
			return err
		}

		moved, err := tx.Loans().MarkOverdue(ctx, loan.ID, now)
		if err != nil {
			return fmt.Errorf("mark overdue: %w", err)
		}
		if !moved {
			return errLoanMoved
		}
		return nil
	})
	if errors.Is(err, errLoanMoved) {
		s.logger.Debug("loan left pending during overdue transition", zap.String("loan_id", loan.ID.String()))
		return nil
	}
	if err != nil {
		return err
	}

	report.MarkedOverdue++
	s.count(ctx, report, n, inserted)
	return nil
}

// PlanMilestone returns the notification a loan is owed diff days before its due
// date, or nil when no milestone falls on that day.
func PlanMilestone(loan *domain.Loan, diff int, now time.Time) *domain.Notification {
	dueDate := utils.CivilDate(loan.DueDate)
	amount := loan.Amount.StringFixed(2)

	n := &domain.Notification{
		ID:        uuid.New(),
		UserID:    loan.UserID,
		LoanID:    loan.ID,
		DueDate:   dueDate,
		CreatedAt: now,
	}

	switch {
	case reminderOffsets[diff]:
		reminderDate := dueDate.AddDate(0, 0, -diff)
		n.Type = domain.NotificationLoanReminder
		n.Title = "Loan Due Soon"
		n.Message = fmt.Sprintf("Your loan of %s is due in %d days.", amount, diff)
		n.ReminderDate = &reminderDate
	case diff == 0:
		n.Type = domain.NotificationLoanDue
		n.Title = "Loan Due Today"
		n.Message = fmt.Sprintf("Your loan of %s is due today.", amount)
	case diff < 0 && loan.Status != domain.LoanStatusOverdue:
		n.Type = domain.NotificationLoanOverdue
		n.Title = "Loan Overdue"
		n.Message = fmt.Sprintf("Your loan of %s was due on %s. Please repay soon.", amount, utils.FormatDate(dueDate))
	default:
		return nil
	}

	return n
}

// emit stores n unless its milestone already exists. The unique index on
// notifications decides; the cache and Exists only save a write.
func (s *ReminderService) emit(ctx context.Context, repo repository.NotificationRepository, n *domain.Notification, fastPath bool) (bool, error) {
	key := n.DedupKey()

	if fastPath && s.cache != nil {
		seen, err := s.cache.Seen(ctx, key)
		if err != nil {
			s.logger.Warn("reminder cache lookup failed", zap.String("key", key), zap.Error(err))
		} else if seen {
			return false, nil
		}
	}

	exists, err := repo.Exists(ctx, n.LoanID, n.Type, n.ReminderDate)
	if err != nil {
		return false, fmt.Errorf("check notification: %w", err)
	}
	if exists {
		return false, nil
	}

	inserted, err := repo.Create(ctx, n)
	if err != nil {
		return false, fmt.Errorf("create notification: %w", err)
	}

	return inserted, nil
}

// count tallies the outcome and primes the cache once the row is durable
func (s *ReminderService) count(ctx context.Context, report *domain.RunReport, n *domain.Notification, inserted bool) {
	if inserted {
		report.Emitted++
	} else {
		report.Duplicates++
	}

	if s.cache == nil {
		return
	}
	if err := s.cache.Remember(ctx, n.DedupKey()); err != nil {
		s.logger.Warn("failed to remember milestone", zap.String("key", n.DedupKey()), zap.Error(err))
	}
}
