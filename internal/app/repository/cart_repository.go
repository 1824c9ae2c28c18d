package repository

import (
	"errors"

	"github.com/rknair/cloudpuff-backend/internal/app/model"
	"github.com/rknair/cloudpuff-backend/pkg/logger"
	"gorm.io/gorm"
)

type CartRepository interface {
	FindByUser(userID uint) ([]model.CartItem, error)
	FindItem(userID, productID uint, variantSize string) (*model.CartItem, error)
	Upsert(item *model.CartItem) error
	UpdateQuantity(itemID uint, quantity int) error
	Remove(userID, itemID uint) error
	Clear(userID uint) error
	PruneProduct(productID uint) error
}

type cartRepository struct {
	db *gorm.DB
}

func NewCartRepository(db *gorm.DB) CartRepository {
	return &cartRepository{db: db}
}

func (r *cartRepository) FindByUser(userID uint) ([]model.CartItem, error) {
	var items []model.CartItem
	if err := r.db.
		Preload("Product").
		Preload("Product.Images", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Preload("Product.Variants", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&items).Error; err != nil {
		logger.Error("Failed to find cart items in database", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}
	return items, nil
}

func (r *cartRepository) FindItem(userID, productID uint, variantSize string) (*model.CartItem, error) {
	var item model.CartItem
	err := r.db.Where("user_id = ? AND product_id = ? AND variant_size = ?",
		userID, productID, variantSize).First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// Upsert adds a product to the cart, merging quantities when the same
// product/size line already exists.
func (r *cartRepository) Upsert(item *model.CartItem) error {
	existing, err := r.FindItem(item.UserID, item.ProductID, item.VariantSize)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		return r.db.Create(item).Error
	}

	existing.Quantity += item.Quantity
	if err := r.db.Save(existing).Error; err != nil {
		logger.Error("Failed to merge cart item quantity", err, map[string]interface{}{
			"user_id":    item.UserID,
			"product_id": item.ProductID,
		})
		return err
	}
	*item = *existing
	return nil
}

func (r *cartRepository) UpdateQuantity(itemID uint, quantity int) error {
	result := r.db.Model(&model.CartItem{}).Where("id = ?", itemID).
		Update("quantity", quantity)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *cartRepository) Remove(userID, itemID uint) error {
	result := r.db.Where("user_id = ?", userID).Delete(&model.CartItem{}, itemID)
	if result.Error != nil {
		logger.Error("Failed to remove cart item from database", result.Error, map[string]interface{}{
			"user_id": userID,
			"item_id": itemID,
		})
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *cartRepository) Clear(userID uint) error {
	if err := r.db.Where("user_id = ?", userID).Delete(&model.CartItem{}).Error; err != nil {
		logger.Error("Failed to clear cart in database", err, map[string]interface{}{
			"user_id": userID,
		})
		return err
	}
	return nil
}

// PruneProduct removes a deleted product from every cart
func (r *cartRepository) PruneProduct(productID uint) error {
	if err := r.db.Where("product_id = ?", productID).Delete(&model.CartItem{}).Error; err != nil {
		logger.Error("Failed to prune product from carts", err, map[string]interface{}{
			"product_id": productID,
		})
		return err
	}
	return nil
}
