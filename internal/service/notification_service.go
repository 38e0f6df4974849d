package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/segyhp/loan-engine/internal/domain"
	"github.com/segyhp/loan-engine/internal/repository"
	customError "github.com/segyhp/loan-engine/pkg/errors"
)

type NotificationService struct {
	repo repository.NotificationRepository
}

func NewNotificationService(repo repository.NotificationRepository) *NotificationService {
	return &NotificationService{repo: repo}
}

// ListNotifications returns the user's newest notifications and the unread count
func (s *NotificationService) ListNotifications(ctx context.Context, filter domain.NotificationFilter) (*domain.NotificationListResponse, error) {
	notifications, err := s.repo.ListByUser(ctx, filter)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	unread, err := s.repo.CountUnread(ctx, filter.UserID)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	return &domain.NotificationListResponse{
		Notifications: notifications,
		Unread:        unread,
	}, nil
}

func (s *NotificationService) MarkRead(ctx context.Context, id, userID uuid.UUID) error {
	updated, err := s.repo.MarkRead(ctx, id, userID)
	if err != nil {
		return customError.WrapDatabaseError(err)
	}
	if !updated {
		return customError.WrapNotificationNotFound(id.String())
	}
	return nil
}

func (s *NotificationService) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	n, err := s.repo.MarkAllRead(ctx, userID)
	if err != nil {
		return 0, customError.WrapDatabaseError(err)
	}
	return n, nil
}
