package repository

import (
	"github.com/rknair/cloudpuff-backend/internal/app/model"
	"github.com/rknair/cloudpuff-backend/pkg/logger"
	"gorm.io/gorm"
)

type NotificationRepository interface {
	Create(notification *model.Notification) error
	CreateTx(tx *gorm.DB, notification *model.Notification) error
	HasUnreadForProduct(tx *gorm.DB, userID, productID uint) (bool, error)
	FindByUser(userID uint) ([]model.Notification, error)
	CountUnread(userID uint) (int64, error)
	MarkRead(userID, notificationID uint) error
	MarkAllRead(userID uint) error
	Delete(userID, notificationID uint) error
}

type notificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) Create(notification *model.Notification) error {
	return r.CreateTx(r.db, notification)
}

func (r *notificationRepository) CreateTx(tx *gorm.DB, notification *model.Notification) error {
	if err := tx.Create(notification).Error; err != nil {
		logger.Error("Failed to create notification in database", err, map[string]interface{}{
			"user_id":    notification.UserID,
			"product_id": notification.ProductID,
		})
		return err
	}
	return nil
}

// HasUnreadForProduct reports whether the user already holds an unread
// notification for this product. Restock fan-out uses it to avoid
// stacking duplicates.
func (r *notificationRepository) HasUnreadForProduct(tx *gorm.DB, userID, productID uint) (bool, error) {
	var count int64
	err := tx.Model(&model.Notification{}).
		Where("user_id = ? AND product_id = ? AND read = ?", userID, productID, false).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *notificationRepository) FindByUser(userID uint) ([]model.Notification, error) {
	var notifications []model.Notification
	if err := r.db.
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&notifications).Error; err != nil {
		logger.Error("Failed to find notifications in database", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}
	return notifications, nil
}

func (r *notificationRepository) CountUnread(userID uint) (int64, error) {
	var count int64
	err := r.db.Model(&model.Notification{}).
		Where("user_id = ? AND read = ?", userID, false).
		Count(&count).Error
	return count, err
}

func (r *notificationRepository) MarkRead(userID, notificationID uint) error {
	result := r.db.Model(&model.Notification{}).
		Where("id = ? AND user_id = ?", notificationID, userID).
		Update("read", true)
	if result.Error != nil {
		logger.Error("Failed to mark notification read", result.Error, map[string]interface{}{
			"user_id":         userID,
			"notification_id": notificationID,
		})
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *notificationRepository) MarkAllRead(userID uint) error {
	if err := r.db.Model(&model.Notification{}).
		Where("user_id = ? AND read = ?", userID, false).
		Update("read", true).Error; err != nil {
		logger.Error("Failed to mark all notifications read", err, map[string]interface{}{
			"user_id": userID,
		})
		return err
	}
	return nil
}

func (r *notificationRepository) Delete(userID, notificationID uint) error {
	result := r.db.Where("user_id = ?", userID).
		Delete(&model.Notification{}, notificationID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
