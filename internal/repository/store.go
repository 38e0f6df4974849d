package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

type sqlStore struct {
	db *sqlx.DB
	q  sqlx.ExtContext
}

// NewStore returns a Store backed by db. Repositories obtained from it run
// outside a transaction unless reached through WithinTx.
func NewStore(db *sqlx.DB) Store {
	return &sqlStore{db: db, q: db}
}

func (s *sqlStore) Loans() LoanRepository {
	return NewLoanRepository(s.q)
}

func (s *sqlStore) Ledger() LedgerRepository {
	return NewLedgerRepository(s.q)
}

func (s *sqlStore) Notifications() NotificationRepository {
	return NewNotificationRepository(s.q)
}

func (s *sqlStore) WithinTx(ctx context.Context, fn func(tx Store) error) error {
	// Already inside a transaction: join it
	if _, ok := s.q.(*sqlx.Tx); ok {
		return fn(s)
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(&sqlStore{db: s.db, q: tx}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}
