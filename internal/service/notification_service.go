package service

import (
	"errors"

	"github.com/notbx57/peternakantelur/internal/apperror"
	"github.com/notbx57/peternakantelur/internal/model"
	"github.com/notbx57/peternakantelur/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// NotificationService reads and marks one-way messages. Marking a
// notification read has no effect on any investor request: workflow state
// lives on InvestorRequest, not here.
type NotificationService interface {
	ListForUser(userID uuid.UUID) ([]model.Notification, error)
	CountUnread(userID uuid.UUID) (int64, error)
	MarkAsRead(notificationID, userID uuid.UUID) error
	MarkAllAsRead(userID uuid.UUID) (int64, error)
}

type notificationService struct {
	notificationRepo repository.NotificationRepository
}

func NewNotificationService(notificationRepo repository.NotificationRepository) NotificationService {
	return &notificationService{notificationRepo: notificationRepo}
}

func (s *notificationService) ListForUser(userID uuid.UUID) ([]model.Notification, error) {
	return s.notificationRepo.FindByUser(userID)
}

func (s *notificationService) CountUnread(userID uuid.UUID) (int64, error) {
	return s.notificationRepo.CountUnread(userID)
}

func (s *notificationService) MarkAsRead(notificationID, userID uuid.UUID) error {
	notification, err := s.notificationRepo.FindByID(notificationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.NotFound("notification not found")
		}
		return err
	}
	if notification.ToUserID != userID {
		return apperror.Unauthorized("this notification is not addressed to you")
	}
	return s.notificationRepo.MarkAsRead(notificationID)
}

func (s *notificationService) MarkAllAsRead(userID uuid.UUID) (int64, error) {
	return s.notificationRepo.MarkAllAsRead(userID)
}
