package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/segyhp/loan-engine/internal/domain"
)

const notificationColumns = `id, user_id, loan_id, type, title, message, due_date, reminder_date, is_read, created_at`

type notificationRepository struct {
	db sqlx.ExtContext
}

func NewNotificationRepository(db sqlx.ExtContext) NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) Exists(ctx context.Context, loanID uuid.UUID, notificationType domain.NotificationType, reminderDate *time.Time) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM notifications
			WHERE loan_id = $1 AND type = $2 AND reminder_date IS NOT DISTINCT FROM $3::date
		)
	`

	var exists bool
	if err := sqlx.GetContext(ctx, r.db, &exists, query, loanID, notificationType, reminderDate); err != nil {
		return false, err
	}

	return exists, nil
}

// Create relies on the unique milestone index; a conflicting insert is a no-op.
func (r *notificationRepository) Create(ctx context.Context, n *domain.Notification) (bool, error) {
	query := `
		INSERT INTO notifications (` + notificationColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT DO NOTHING
	`

	result, err := r.db.ExecContext(ctx, query,
		n.ID,
		n.UserID,
		n.LoanID,
		n.Type,
		n.Title,
		n.Message,
		n.DueDate,
		n.ReminderDate,
		n.IsRead,
		n.CreatedAt,
	)
	if err != nil {
		return false, err
	}

	return affected(result.RowsAffected())
}

func (r *notificationRepository) DeleteByLoan(ctx context.Context, loanID uuid.UUID) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM notifications WHERE loan_id = $1`, loanID)
	if err != nil {
		return 0, err
	}

	return result.RowsAffected()
}

func (r *notificationRepository) ListByUser(ctx context.Context, filter domain.NotificationFilter) ([]*domain.Notification, error) {
	query := `SELECT ` + notificationColumns + ` FROM notifications WHERE user_id = $1`
	args := []interface{}{filter.UserID}

	if filter.UnreadOnly {
		query += ` AND is_read = FALSE`
	}
	query += ` ORDER BY created_at DESC`

	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	notifications := []*domain.Notification{}
	if err := sqlx.SelectContext(ctx, r.db, &notifications, query, args...); err != nil {
		return nil, err
	}

	return notifications, nil
}

func (r *notificationRepository) CountUnread(ctx context.Context, userID uuid.UUID) (int, error) {
	var count int
	err := sqlx.GetContext(ctx, r.db, &count,
		`SELECT COUNT(*) FROM notifications WHERE user_id = $1 AND is_read = FALSE`, userID)
	return count, err
}

func (r *notificationRepository) MarkRead(ctx context.Context, id, userID uuid.UUID) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		`UPDATE notifications SET is_read = TRUE WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return false, err
	}

	return affected(result.RowsAffected())
}

func (r *notificationRepository) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		`UPDATE notifications SET is_read = TRUE WHERE user_id = $1 AND is_read = FALSE`, userID)
	if err != nil {
		return 0, err
	}

	return result.RowsAffected()
}
