package service

import (
	"context"
	"database/sql"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/segyhp/loan-engine/internal/domain"
	"github.com/segyhp/loan-engine/internal/repository"
)

// memDB is an in-memory stand-in for Postgres. Transactions are emulated by
// snapshotting state and restoring it when the callback fails; txMu runs them
// one at a time and orders notification inserts made outside a transaction
// against them.
type memDB struct {
	mu            sync.Mutex
	txMu          sync.Mutex
	loans         map[uuid.UUID]domain.Loan
	incomes       []domain.IncomeEntry
	expenses      []domain.ExpenseEntry
	notifications []domain.Notification

	failLoanCreate   error
	failIncome       error
	failExpense      error
	failNotification error
	failListOpen     error
	failExistsFor    map[uuid.UUID]error

	// staleExists makes Exists miss every stored row, leaving the insert to catch duplicates
	staleExists bool

	// openOverride replaces the ListOpen result, simulating a stale read
	openOverride []*domain.Loan
}

func newMemDB() *memDB {
	return &memDB{
		loans:         map[uuid.UUID]domain.Loan{},
		failExistsFor: map[uuid.UUID]error{},
	}
}

type memSnapshot struct {
	loans         map[uuid.UUID]domain.Loan
	incomes       []domain.IncomeEntry
	expenses      []domain.ExpenseEntry
	notifications []domain.Notification
}

func (db *memDB) snapshot() memSnapshot {
	db.mu.Lock()
	defer db.mu.Unlock()

	loans := make(map[uuid.UUID]domain.Loan, len(db.loans))
	for id, l := range db.loans {
		loans[id] = l
	}
	return memSnapshot{
		loans:         loans,
		incomes:       append([]domain.IncomeEntry(nil), db.incomes...),
		expenses:      append([]domain.ExpenseEntry(nil), db.expenses...),
		notifications: append([]domain.Notification(nil), db.notifications...),
	}
}

func (db *memDB) restore(s memSnapshot) {
	db.mu.Lock()
	defer db.mu.Unlock()

	db.loans = s.loans
	db.incomes = s.incomes
	db.expenses = s.expenses
	db.notifications = s.notifications
}

func (db *memDB) loan(id uuid.UUID) domain.Loan {
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.loans[id]
}

func (db *memDB) notificationsFor(loanID uuid.UUID) []domain.Notification {
	db.mu.Lock()
	defer db.mu.Unlock()

	var out []domain.Notification
	for _, n := range db.notifications {
		if n.LoanID == loanID {
			out = append(out, n)
		}
	}
	return out
}

func (db *memDB) ledgerCount() (int, int) {
	db.mu.Lock()
	defer db.mu.Unlock()
	return len(db.incomes), len(db.expenses)
}

type memStore struct {
	db   *memDB
	inTx bool
}

func newMemStore(db *memDB) repository.Store {
	return &memStore{db: db}
}

func (s *memStore) Loans() repository.LoanRepository                 { return &memLoans{db: s.db} }
func (s *memStore) Ledger() repository.LedgerRepository               { return &memLedger{db: s.db} }
func (s *memStore) Notifications() repository.NotificationRepository {
	return &memNotifications{db: s.db, inTx: s.inTx}
}

func (s *memStore) WithinTx(ctx context.Context, fn func(tx repository.Store) error) error {
	if s.inTx {
		return fn(s)
	}

	s.db.txMu.Lock()
	defer s.db.txMu.Unlock()

	snap := s.db.snapshot()
	if err := fn(&memStore{db: s.db, inTx: true}); err != nil {
		s.db.restore(snap)
		return err
	}
	return nil
}

type memLoans struct{ db *memDB }

func (r *memLoans) Create(ctx context.Context, loan *domain.Loan) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if r.db.failLoanCreate != nil {
		return r.db.failLoanCreate
	}
	r.db.loans[loan.ID] = *loan
	return nil
}

func (r *memLoans) GetByID(ctx context.Context, id uuid.UUID) (*domain.Loan, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	l, ok := r.db.loans[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &l, nil
}

func (r *memLoans) matching(filter domain.LoanFilter) []*domain.Loan {
	var out []*domain.Loan
	for _, l := range r.db.loans {
		if l.UserID != filter.UserID {
			continue
		}
		if filter.Type != "" && l.Type != filter.Type {
			continue
		}
		if filter.Status != "" && l.Status != filter.Status {
			continue
		}
		l := l
		out = append(out, &l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DueDate.Before(out[j].DueDate) })
	return out
}

func (r *memLoans) List(ctx context.Context, filter domain.LoanFilter) ([]*domain.Loan, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	all := r.matching(filter)
	start := filter.Offset()
	if start > len(all) {
		return []*domain.Loan{}, nil
	}
	end := len(all)
	if filter.Limit > 0 && start+filter.Limit < end {
		end = start + filter.Limit
	}
	return all[start:end], nil
}

func (r *memLoans) Summarize(ctx context.Context, filter domain.LoanFilter) (int, *domain.LoanTotals, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	totals := &domain.LoanTotals{}
	all := r.matching(filter)
	for _, l := range all {
		totals.Principal = totals.Principal.Add(l.Amount)
		totals.Interest = totals.Interest.Add(l.TotalInterest)
		totals.TotalPayable = totals.TotalPayable.Add(l.TotalPayable)
	}
	return len(all), totals, nil
}

func (r *memLoans) ListOpen(ctx context.Context) ([]*domain.Loan, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if r.db.failListOpen != nil {
		return nil, r.db.failListOpen
	}
	if r.db.openOverride != nil {
		return r.db.openOverride, nil
	}

	var out []*domain.Loan
	for _, l := range r.db.loans {
		if l.Status == domain.LoanStatusPaid {
			continue
		}
		l := l
		out = append(out, &l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DueDate.Before(out[j].DueDate) })
	return out, nil
}

func (r *memLoans) MarkPaid(ctx context.Context, id, userID uuid.UUID, paidAt time.Time) (bool, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	l, ok := r.db.loans[id]
	if !ok || l.UserID != userID || l.Status == domain.LoanStatusPaid {
		return false, nil
	}
	l.Status = domain.LoanStatusPaid
	l.PaidDate = &paidAt
	l.UpdatedAt = paidAt
	r.db.loans[id] = l
	return true, nil
}

func (r *memLoans) MarkOverdue(ctx context.Context, id uuid.UUID, at time.Time) (bool, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	l, ok := r.db.loans[id]
	if !ok || l.Status != domain.LoanStatusPending {
		return false, nil
	}
	l.Status = domain.LoanStatusOverdue
	l.UpdatedAt = at
	r.db.loans[id] = l
	return true, nil
}

func (r *memLoans) Delete(ctx context.Context, id, userID uuid.UUID) (bool, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	l, ok := r.db.loans[id]
	if !ok || l.UserID != userID {
		return false, nil
	}
	delete(r.db.loans, id)
	return true, nil
}

func (r *memLoans) Stats(ctx context.Context, userID uuid.UUID) ([]*domain.LoanStatRow, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	rows := map[string]*domain.LoanStatRow{}
	for _, l := range r.db.loans {
		if l.UserID != userID {
			continue
		}
		key := string(l.Status) + "/" + string(l.Type)
		row, ok := rows[key]
		if !ok {
			row = &domain.LoanStatRow{Status: l.Status, Type: l.Type, Principal: decimal.Zero, TotalPayable: decimal.Zero}
			rows[key] = row
		}
		row.Count++
		row.Principal = row.Principal.Add(l.Amount)
		row.TotalPayable = row.TotalPayable.Add(l.TotalPayable)
	}

	out := make([]*domain.LoanStatRow, 0, len(rows))
	for _, row := range rows {
		out = append(out, row)
	}
	return out, nil
}

type memLedger struct{ db *memDB }

func (r *memLedger) CreateIncome(ctx context.Context, entry *domain.IncomeEntry) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if r.db.failIncome != nil {
		return r.db.failIncome
	}
	r.db.incomes = append(r.db.incomes, *entry)
	return nil
}

func (r *memLedger) CreateExpense(ctx context.Context, entry *domain.ExpenseEntry) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if r.db.failExpense != nil {
		return r.db.failExpense
	}
	r.db.expenses = append(r.db.expenses, *entry)
	return nil
}

type memNotifications struct {
	db   *memDB
	inTx bool
}

func (r *memNotifications) Exists(ctx context.Context, loanID uuid.UUID, notificationType domain.NotificationType, reminderDate *time.Time) (bool, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if err := r.db.failExistsFor[loanID]; err != nil {
		return false, err
	}
	if r.db.staleExists {
		return false, nil
	}

	key := domain.MilestoneKey(loanID, notificationType, reminderDate)
	for _, n := range r.db.notifications {
		if n.DedupKey() == key {
			return true, nil
		}
	}
	return false, nil
}

// Create mirrors the unique milestone index: a second row for the same key is dropped
func (r *memNotifications) Create(ctx context.Context, notification *domain.Notification) (bool, error) {
	if !r.inTx {
		r.db.txMu.Lock()
		defer r.db.txMu.Unlock()
	}

	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if r.db.failNotification != nil {
		return false, r.db.failNotification
	}

	key := notification.DedupKey()
	for _, n := range r.db.notifications {
		if n.DedupKey() == key {
			return false, nil
		}
	}
	r.db.notifications = append(r.db.notifications, *notification)
	return true, nil
}

func (r *memNotifications) DeleteByLoan(ctx context.Context, loanID uuid.UUID) (int64, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	kept := r.db.notifications[:0:0]
	var removed int64
	for _, n := range r.db.notifications {
		if n.LoanID == loanID {
			removed++
			continue
		}
		kept = append(kept, n)
	}
	r.db.notifications = kept
	return removed, nil
}

func (r *memNotifications) ListByUser(ctx context.Context, filter domain.NotificationFilter) ([]*domain.Notification, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	out := []*domain.Notification{}
	for _, n := range r.db.notifications {
		if n.UserID != filter.UserID || (filter.UnreadOnly && n.IsRead) {
			continue
		}
		n := n
		out = append(out, &n)
	}
	return out, nil
}

func (r *memNotifications) CountUnread(ctx context.Context, userID uuid.UUID) (int, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	count := 0
	for _, n := range r.db.notifications {
		if n.UserID == userID && !n.IsRead {
			count++
		}
	}
	return count, nil
}

func (r *memNotifications) MarkRead(ctx context.Context, id, userID uuid.UUID) (bool, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	for i, n := range r.db.notifications {
		if n.ID == id && n.UserID == userID {
			r.db.notifications[i].IsRead = true
			return true, nil
		}
	}
	return false, nil
}

func (r *memNotifications) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	var n int64
	for i := range r.db.notifications {
		if r.db.notifications[i].UserID == userID && !r.db.notifications[i].IsRead {
			r.db.notifications[i].IsRead = true
			n++
		}
	}
	return n, nil
}
