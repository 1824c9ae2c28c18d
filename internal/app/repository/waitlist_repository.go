package repository

import (
	"github.com/rknair/cloudpuff-backend/internal/app/model"
	"github.com/rknair/cloudpuff-backend/pkg/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type WaitlistRepository interface {
	Add(userID, productID uint) error
	Remove(userID, productID uint) error
	FindByProduct(productID uint) ([]model.WaitlistEntry, error)
	FindByUser(userID uint) ([]model.WaitlistEntry, error)
	ClearProduct(tx *gorm.DB, productID uint) error
	DB() *gorm.DB
}

type waitlistRepository struct {
	db *gorm.DB
}

func NewWaitlistRepository(db *gorm.DB) WaitlistRepository {
	return &waitlistRepository{db: db}
}

// Add subscribes a user to restock alerts for a product. Duplicate
// subscriptions are absorbed by the unique pair index.
func (r *waitlistRepository) Add(userID, productID uint) error {
	entry := model.WaitlistEntry{UserID: userID, ProductID: productID}
	if err := r.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&entry).Error; err != nil {
		logger.Error("Failed to add waitlist entry", err, map[string]interface{}{
			"user_id":    userID,
			"product_id": productID,
		})
		return err
	}
	return nil
}

func (r *waitlistRepository) Remove(userID, productID uint) error {
	if err := r.db.Where("user_id = ? AND product_id = ?", userID, productID).
		Delete(&model.WaitlistEntry{}).Error; err != nil {
		logger.Error("Failed to remove waitlist entry", err, map[string]interface{}{
			"user_id":    userID,
			"product_id": productID,
		})
		return err
	}
	return nil
}

func (r *waitlistRepository) FindByProduct(productID uint) ([]model.WaitlistEntry, error) {
	var entries []model.WaitlistEntry
	if err := r.db.Where("product_id = ?", productID).Find(&entries).Error; err != nil {
		logger.Error("Failed to find waitlist entries by product", err, map[string]interface{}{
			"product_id": productID,
		})
		return nil, err
	}
	return entries, nil
}

func (r *waitlistRepository) FindByUser(userID uint) ([]model.WaitlistEntry, error) {
	var entries []model.WaitlistEntry
	if err := r.db.Where("user_id = ?", userID).Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// ClearProduct removes every waitlist entry for a product inside the
// caller's transaction, so fan-out and cleanup commit together.
func (r *waitlistRepository) ClearProduct(tx *gorm.DB, productID uint) error {
	return tx.Where("product_id = ?", productID).Delete(&model.WaitlistEntry{}).Error
}

// DB exposes the handle for services that run fan-out transactions
func (r *waitlistRepository) DB() *gorm.DB {
	return r.db
}
