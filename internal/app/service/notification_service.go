package service

import (
	"errors"

	"github.com/rknair/cloudpuff-backend/internal/app/model"
	"github.com/rknair/cloudpuff-backend/internal/app/repository"
	"github.com/rknair/cloudpuff-backend/pkg/logger"
	"gorm.io/gorm"
)

var ErrNotificationNotFound = errors.New("notification not found")

type NotificationService interface {
	GetNotifications(userID uint) ([]model.Notification, error)
	GetUnreadCount(userID uint) (int64, error)
	MarkRead(userID, notificationID uint) error
	MarkAllRead(userID uint) error
	DeleteNotification(userID, notificationID uint) error
	JoinWaitlist(userID, productID uint) error
	LeaveWaitlist(userID, productID uint) error
	GetWaitlist(userID uint) ([]model.WaitlistEntry, error)
}

type notificationService struct {
	notificationRepo repository.NotificationRepository
	waitlistRepo     repository.WaitlistRepository
	productRepo      repository.ProductRepository
}

func NewNotificationService(
	notificationRepo repository.NotificationRepository,
	waitlistRepo repository.WaitlistRepository,
	productRepo repository.ProductRepository,
) NotificationService {
	return &notificationService{
		notificationRepo: notificationRepo,
		waitlistRepo:     waitlistRepo,
		productRepo:      productRepo,
	}
}

func (s *notificationService) GetNotifications(userID uint) ([]model.Notification, error) {
	return s.notificationRepo.FindByUser(userID)
}

func (s *notificationService) GetUnreadCount(userID uint) (int64, error) {
	return s.notificationRepo.CountUnread(userID)
}

func (s *notificationService) MarkRead(userID, notificationID uint) error {
	if err := s.notificationRepo.MarkRead(userID, notificationID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotificationNotFound
		}
		return err
	}
	return nil
}

func (s *notificationService) MarkAllRead(userID uint) error {
	return s.notificationRepo.MarkAllRead(userID)
}

func (s *notificationService) DeleteNotification(userID, notificationID uint) error {
	if err := s.notificationRepo.Delete(userID, notificationID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotificationNotFound
		}
		return err
	}
	return nil
}

// JoinWaitlist subscribes a user to restock alerts for an out-of-stock
// product. Joining for a product already in stock is allowed; the entry
// simply waits for the next zero-to-positive transition.
func (s *notificationService) JoinWaitlist(userID, productID uint) error {
	if _, err := s.productRepo.FindByID(productID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProductNotFound
		}
		return err
	}

	logger.Debug("User joined waitlist", map[string]interface{}{
		"user_id":    userID,
		"product_id": productID,
	})
	return s.waitlistRepo.Add(userID, productID)
}

func (s *notificationService) LeaveWaitlist(userID, productID uint) error {
	return s.waitlistRepo.Remove(userID, productID)
}

func (s *notificationService) GetWaitlist(userID uint) ([]model.WaitlistEntry, error) {
	return s.waitlistRepo.FindByUser(userID)
}
