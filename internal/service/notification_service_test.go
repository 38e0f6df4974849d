package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/segyhp/loan-engine/internal/domain"
	customError "github.com/segyhp/loan-engine/pkg/errors"
)

func TestNotificationService(t *testing.T) {
	db := newMemDB()
	ctx := context.Background()
	userID := uuid.New()

	loans := newTestLoanService(db)
	_, err := loans.CreateLoan(ctx, userID, lendingRequest())
	require.NoError(t, err)
	_, err = loans.CreateLoan(ctx, userID, borrowingRequest())
	require.NoError(t, err)
	_, err = loans.CreateLoan(ctx, uuid.New(), lendingRequest())
	require.NoError(t, err)

	svc := NewNotificationService(newMemStore(db).Notifications())

	list, err := svc.ListNotifications(ctx, domain.NotificationFilter{UserID: userID})
	require.NoError(t, err)
	require.Len(t, list.Notifications, 2)
	assert.Equal(t, 2, list.Unread)

	first := list.Notifications[0]
	require.NoError(t, svc.MarkRead(ctx, first.ID, userID))

	list, err = svc.ListNotifications(ctx, domain.NotificationFilter{UserID: userID, UnreadOnly: true})
	require.NoError(t, err)
	assert.Len(t, list.Notifications, 1)
	assert.Equal(t, 1, list.Unread)

	err = svc.MarkRead(ctx, first.ID, uuid.New())
	assert.ErrorIs(t, err, customError.ErrNotificationNotFound)

	n, err := svc.MarkAllRead(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	list, err = svc.ListNotifications(ctx, domain.NotificationFilter{UserID: userID})
	require.NoError(t, err)
	assert.Zero(t, list.Unread)
}
