package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

type NotificationType string

const (
	NotificationLoanReminder NotificationType = "loan_reminder"
	NotificationLoanDue      NotificationType = "loan_due"
	NotificationLoanOverdue  NotificationType = "loan_overdue"
)

// Notification is one emitted loan reminder.
// At most one exists per (LoanID, Type, ReminderDate).
type Notification struct {
	ID           uuid.UUID        `json:"id" db:"id"`
	UserID       uuid.UUID        `json:"user_id" db:"user_id"`
	LoanID       uuid.UUID        `json:"loan_id" db:"loan_id"`
	Type         NotificationType `json:"type" db:"type"`
	Title        string           `json:"title" db:"title"`
	Message      string           `json:"message" db:"message"`
	DueDate      time.Time        `json:"due_date" db:"due_date"`
	ReminderDate *time.Time       `json:"reminder_date" db:"reminder_date"`
	IsRead       bool             `json:"is_read" db:"is_read"`
	CreatedAt    time.Time        `json:"created_at" db:"created_at"`
}

// DedupKey identifies the milestone this notification stands for
func (n *Notification) DedupKey() string {
	return MilestoneKey(n.LoanID, n.Type, n.ReminderDate)
}

func MilestoneKey(loanID uuid.UUID, notificationType NotificationType, reminderDate *time.Time) string {
	date := "none"
	if reminderDate != nil {
		date = reminderDate.Format(time.DateOnly)
	}
	return fmt.Sprintf("%s:%s:%s", loanID, notificationType, date)
}

type NotificationFilter struct {
	UserID     uuid.UUID
	UnreadOnly bool
	Limit      int
}

type NotificationListResponse struct {
	Notifications []*Notification `json:"notifications"`
	Unread        int             `json:"unread"`
}
