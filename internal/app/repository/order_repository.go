package repository

import (
	"github.com/rknair/cloudpuff-backend/internal/app/model"
	"github.com/rknair/cloudpuff-backend/pkg/logger"
	"gorm.io/gorm"
)

type OrderRepository interface {
	Create(order *model.Order) error
	FindAll() ([]model.Order, error)
	FindByID(id uint) (*model.Order, error)
	FindByUser(userID uint) ([]model.Order, error)
	FindByCheckoutSession(sessionID string) (*model.Order, error)
	Update(order *model.Order) error
	UpdateStatus(orderID uint, status model.OrderStatus) error
	UpdateItemStatus(orderID, itemID uint, status model.OrderStatus) error
	MarkPaid(orderID uint) error
	Delete(id uint) error
}

type orderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepository{db: db}
}

func (r *orderRepository) baseQuery() *gorm.DB {
	return r.db.Model(&model.Order{}).
		Preload("Items").
		Preload("User")
}

func (r *orderRepository) Create(order *model.Order) error {
	logger.Debug("Creating order in database", map[string]interface{}{
		"user_id":        order.UserID,
		"amount":         order.Amount,
		"payment_method": order.PaymentMethod,
		"item_count":     len(order.Items),
	})

	if err := r.db.Create(order).Error; err != nil {
		logger.Error("Failed to create order in database", err, map[string]interface{}{
			"user_id": order.UserID,
		})
		return err
	}

	logger.Debug("Order created in database", map[string]interface{}{
		"order_id": order.ID,
		"user_id":  order.UserID,
	})
	return nil
}

func (r *orderRepository) FindAll() ([]model.Order, error) {
	var orders []model.Order
	if err := r.baseQuery().Order("orders.created_at DESC").Find(&orders).Error; err != nil {
		logger.Error("Failed to find orders in database", err, nil)
		return nil, err
	}
	return orders, nil
}

func (r *orderRepository) FindByID(id uint) (*model.Order, error) {
	var order model.Order
	if err := r.baseQuery().First(&order, id).Error; err != nil {
		logger.Error("Failed to find order by ID in database", err, map[string]interface{}{
			"order_id": id,
		})
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) FindByUser(userID uint) ([]model.Order, error) {
	var orders []model.Order
	if err := r.baseQuery().
		Where("orders.user_id = ?", userID).
		Order("orders.created_at DESC").
		Find(&orders).Error; err != nil {
		logger.Error("Failed to find orders by user in database", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}
	return orders, nil
}

func (r *orderRepository) FindByCheckoutSession(sessionID string) (*model.Order, error) {
	var order model.Order
	if err := r.baseQuery().
		Where("orders.checkout_session_id = ?", sessionID).
		First(&order).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) Update(order *model.Order) error {
	logger.Debug("Updating order in database", map[string]interface{}{
		"order_id": order.ID,
		"status":   order.Status,
	})

	if err := r.db.Omit("Items", "User").Save(order).Error; err != nil {
		logger.Error("Failed to update order in database", err, map[string]interface{}{
			"order_id": order.ID,
		})
		return err
	}
	return nil
}

func (r *orderRepository) UpdateStatus(orderID uint, status model.OrderStatus) error {
	logger.Debug("Updating order status in database", map[string]interface{}{
		"order_id": orderID,
		"status":   status,
	})

	result := r.db.Model(&model.Order{}).Where("id = ?", orderID).
		Update("status", status)
	if result.Error != nil {
		logger.Error("Failed to update order status in database", result.Error, map[string]interface{}{
			"order_id": orderID,
		})
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *orderRepository) UpdateItemStatus(orderID, itemID uint, status model.OrderStatus) error {
	logger.Debug("Updating order item status in database", map[string]interface{}{
		"order_id": orderID,
		"item_id":  itemID,
		"status":   status,
	})

	result := r.db.Model(&model.OrderItem{}).
		Where("id = ? AND order_id = ?", itemID, orderID).
		Update("status", status)
	if result.Error != nil {
		logger.Error("Failed to update order item status in database", result.Error, map[string]interface{}{
			"order_id": orderID,
			"item_id":  itemID,
		})
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *orderRepository) MarkPaid(orderID uint) error {
	result := r.db.Model(&model.Order{}).Where("id = ?", orderID).
		Update("payment", true)
	if result.Error != nil {
		logger.Error("Failed to mark order paid in database", result.Error, map[string]interface{}{
			"order_id": orderID,
		})
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *orderRepository) Delete(id uint) error {
	if err := r.db.Delete(&model.Order{}, id).Error; err != nil {
		logger.Error("Failed to delete order from database", err, map[string]interface{}{
			"order_id": id,
		})
		return err
	}
	return nil
}
