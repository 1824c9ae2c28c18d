package service

import (
	"errors"

	"github.com/rknair/cloudpuff-backend/internal/app/model"
	"github.com/rknair/cloudpuff-backend/internal/app/repository"
	"github.com/rknair/cloudpuff-backend/pkg/logger"
	"gorm.io/gorm"
)

var (
	ErrCartItemNotFound = errors.New("cart item not found")
	ErrInvalidQuantity  = errors.New("quantity must be greater than zero")
)

type CartService interface {
	GetCart(userID uint) ([]model.CartItem, error)
	AddToCart(userID, productID uint, quantity int, variantSize string) (*model.CartItem, error)
	UpdateQuantity(userID, itemID uint, quantity int) error
	RemoveFromCart(userID, itemID uint) error
	ClearCart(userID uint) error
}

type cartService struct {
	cartRepo    repository.CartRepository
	productRepo repository.ProductRepository
}

func NewCartService(cartRepo repository.CartRepository, productRepo repository.ProductRepository) CartService {
	return &cartService{
		cartRepo:    cartRepo,
		productRepo: productRepo,
	}
}

func (s *cartService) GetCart(userID uint) ([]model.CartItem, error) {
	return s.cartRepo.FindByUser(userID)
}

func (s *cartService) AddToCart(userID, productID uint, quantity int, variantSize string) (*model.CartItem, error) {
	if quantity <= 0 {
		quantity = 1
	}

	product, err := s.productRepo.FindByID(productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}

	if sizes := product.VariantSizes(); len(sizes) > 0 && variantSize != "" {
		found := false
		for _, size := range sizes {
			if size == variantSize {
				found = true
				break
			}
		}
		if !found {
			return nil, ErrSizeNotAvailable
		}
	}

	item := &model.CartItem{
		UserID:      userID,
		ProductID:   productID,
		Quantity:    quantity,
		VariantSize: variantSize,
	}
	if err := s.cartRepo.Upsert(item); err != nil {
		return nil, err
	}

	logger.Debug("Cart item added", map[string]interface{}{
		"user_id":    userID,
		"product_id": productID,
		"quantity":   item.Quantity,
	})
	return item, nil
}

func (s *cartService) UpdateQuantity(userID, itemID uint, quantity int) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}

	items, err := s.cartRepo.FindByUser(userID)
	if err != nil {
		return err
	}
	owned := false
	for _, item := range items {
		if item.ID == itemID {
			owned = true
			break
		}
	}
	if !owned {
		return ErrCartItemNotFound
	}

	if err := s.cartRepo.UpdateQuantity(itemID, quantity); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCartItemNotFound
		}
		return err
	}
	return nil
}

func (s *cartService) RemoveFromCart(userID, itemID uint) error {
	if err := s.cartRepo.Remove(userID, itemID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCartItemNotFound
		}
		return err
	}
	return nil
}

func (s *cartService) ClearCart(userID uint) error {
	return s.cartRepo.Clear(userID)
}
