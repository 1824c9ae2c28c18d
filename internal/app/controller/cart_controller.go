package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rknair/cloudpuff-backend/internal/app/service"
	apperrors "github.com/rknair/cloudpuff-backend/internal/errors"
	"github.com/rknair/cloudpuff-backend/internal/middleware"
)

type CartController struct {
	cartService service.CartService
}

func NewCartController(cartService service.CartService) *CartController {
	return &CartController{
		cartService: cartService,
	}
}

type AddToCartRequest struct {
	ProductID   uint   `json:"product_id" binding:"required"`
	Quantity    int    `json:"quantity"`
	VariantSize string `json:"variantSize"`
}

type UpdateCartItemRequest struct {
	Quantity int `json:"quantity" binding:"required"`
}

// GetCart returns the user's cart
// GET /api/cart
func (ctrl *CartController) GetCart(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}

	items, err := ctrl.cartService.GetCart(userID)
	if err != nil {
		apperrors.InternalError(c, "Failed to fetch cart")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"items":   items,
		"count":   len(items),
	})
}

// AddToCart adds a product line, merging duplicates
// POST /api/cart
func (ctrl *CartController) AddToCart(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}

	var req AddToCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid request data")
		return
	}

	item, err := ctrl.cartService.AddToCart(userID, req.ProductID, req.Quantity, req.VariantSize)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrProductNotFound):
			apperrors.NotFound(c, apperrors.ProductNotFound, "Product not found")
		case errors.Is(err, service.ErrSizeNotAvailable):
			apperrors.BadRequest(c, apperrors.OrderSizeMismatch, "Requested size is not available for this product")
		default:
			log.Error("Failed to add to cart", err, map[string]interface{}{
				"user_id": userID,
			})
			apperrors.InternalError(c, "")
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"item":    item,
	})
}

// UpdateCartItem changes a line's quantity
// PUT /api/cart/:id
func (ctrl *CartController) UpdateCartItem(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req UpdateCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "A quantity is required")
		return
	}

	if err := ctrl.cartService.UpdateQuantity(userID, id, req.Quantity); err != nil {
		switch {
		case errors.Is(err, service.ErrCartItemNotFound):
			apperrors.NotFound(c, apperrors.ResourceNotFound, "Cart item not found")
		case errors.Is(err, service.ErrInvalidQuantity):
			apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Quantity must be greater than zero")
		default:
			apperrors.InternalError(c, "")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Cart updated",
	})
}

// RemoveFromCart deletes one line
// DELETE /api/cart/:id
func (ctrl *CartController) RemoveFromCart(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := ctrl.cartService.RemoveFromCart(userID, id); err != nil {
		if errors.Is(err, service.ErrCartItemNotFound) {
			apperrors.NotFound(c, apperrors.ResourceNotFound, "Cart item not found")
			return
		}
		apperrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Item removed",
	})
}

// ClearCart empties the cart
// DELETE /api/cart
func (ctrl *CartController) ClearCart(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}

	if err := ctrl.cartService.ClearCart(userID); err != nil {
		apperrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Cart cleared",
	})
}
