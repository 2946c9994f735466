package repository

import (
	"github.com/notbx57/peternakantelur/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type NotificationRepository interface {
	FindByID(id uuid.UUID) (*model.Notification, error)
	FindByUser(userID uuid.UUID) ([]model.Notification, error)
	CountUnread(userID uuid.UUID) (int64, error)
	Create(notification *model.Notification) error
	MarkAsRead(id uuid.UUID) error
	MarkAllAsRead(userID uuid.UUID) (int64, error)
}

type notificationRepo struct {
	db *gorm.DB
}

func NewNotificationRepo(db *gorm.DB) NotificationRepository {
	return &notificationRepo{db}
}

func (r *notificationRepo) FindByID(id uuid.UUID) (*model.Notification, error) {
	var notification model.Notification
	if err := r.db.First(&notification, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &notification, nil
}

func (r *notificationRepo) FindByUser(userID uuid.UUID) ([]model.Notification, error) {
	var notifications []model.Notification
	err := r.db.Preload("FromUser").Preload("Kandang").
		Where("to_user_id = ?", userID).
		Order("created_at DESC").
		Find(&notifications).Error
	return notifications, err
}

func (r *notificationRepo) CountUnread(userID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.Model(&model.Notification{}).
		Where("to_user_id = ? AND is_read = ?", userID, false).
		Count(&count).Error
	return count, err
}

func (r *notificationRepo) Create(notification *model.Notification) error {
	return r.db.Create(notification).Error
}

func (r *notificationRepo) MarkAsRead(id uuid.UUID) error {
	return r.db.Model(&model.Notification{}).Where("id = ?", id).Update("is_read", true).Error
}

func (r *notificationRepo) MarkAllAsRead(userID uuid.UUID) (int64, error) {
	result := r.db.Model(&model.Notification{}).
		Where("to_user_id = ? AND is_read = ?", userID, false).
		Update("is_read", true)
	return result.RowsAffected, result.Error
}
