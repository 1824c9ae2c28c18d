package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rknair/cloudpuff-backend/internal/app/model"
	"github.com/rknair/cloudpuff-backend/internal/app/service"
	apperrors "github.com/rknair/cloudpuff-backend/internal/errors"
	"github.com/rknair/cloudpuff-backend/internal/middleware"
)

type OrderController struct {
	orderService service.OrderService
}

func NewOrderController(orderService service.OrderService) *OrderController {
	return &OrderController{
		orderService: orderService,
	}
}

type placeOrderBody struct {
	Phone   string                     `json:"phone"`
	Address service.OrderAddress       `json:"address"`
	Items   []service.OrderItemRequest `json:"items"`
	Token   string                     `json:"token"`
}

func (b *placeOrderBody) toRequest() service.PlaceOrderRequest {
	return service.PlaceOrderRequest{
		Phone:   b.Phone,
		Address: b.Address,
		Items:   b.Items,
	}
}

func respondOrderError(c *gin.Context, err error) {
	var vErr *service.ValidationError
	switch {
	case errors.As(err, &vErr):
		apperrors.RespondWithValidationError(c, vErr.Fields)
	case errors.Is(err, service.ErrEmptyOrder):
		apperrors.BadRequest(c, apperrors.OrderEmpty, "Order must contain at least one item")
	case errors.Is(err, service.ErrProductNotFound):
		apperrors.NotFound(c, apperrors.ProductNotFound, "One of the ordered products does not exist")
	case errors.Is(err, service.ErrSizeNotAvailable):
		apperrors.BadRequest(c, apperrors.OrderSizeMismatch, "Requested size is not available for this product")
	case errors.Is(err, service.ErrPaymentNotConfigured):
		apperrors.RespondWithError(c, http.StatusServiceUnavailable, apperrors.PaymentNotConfigured, "Card payments are not available right now")
	case errors.Is(err, service.ErrPaymentFailed):
		apperrors.RespondWithError(c, http.StatusPaymentRequired, apperrors.PaymentFailed, "Payment failed")
	default:
		info := apperrors.ParseError(err, "create order")
		apperrors.RespondWithError(c, http.StatusInternalServerError, info.Code, info.Message)
	}
}

// PlaceOrderCOD places a cash-on-delivery order
// POST /api/orders/place-cod
func (ctrl *OrderController) PlaceOrderCOD(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}

	var body placeOrderBody
	if err := c.ShouldBindJSON(&body); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid request data")
		return
	}

	order, err := ctrl.orderService.PlaceOrderCOD(c.Request.Context(), userID, body.toRequest())
	if err != nil {
		log.Warn("COD order placement failed", map[string]interface{}{
			"user_id": userID,
			"error":   err.Error(),
		})
		respondOrderError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"order":   order,
	})
}

// PlaceOrderClover charges a card token and places the order
// POST /api/orders/place-clover
func (ctrl *OrderController) PlaceOrderClover(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}

	var body placeOrderBody
	if err := c.ShouldBindJSON(&body); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid request data")
		return
	}
	if body.Token == "" {
		apperrors.BadRequest(c, apperrors.ValidationRequired, "A payment token is required")
		return
	}

	order, err := ctrl.orderService.PlaceOrderWithToken(c.Request.Context(), userID, body.toRequest(), body.Token)
	if err != nil {
		log.Warn("Card order placement failed", map[string]interface{}{
			"user_id": userID,
			"error":   err.Error(),
		})
		respondOrderError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"order":   order,
	})
}

// CreateCheckout opens a hosted checkout session for the order
// POST /api/orders/checkout
func (ctrl *OrderController) CreateCheckout(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}

	var body placeOrderBody
	if err := c.ShouldBindJSON(&body); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid request data")
		return
	}

	result, err := ctrl.orderService.PlaceOrderHostedCheckout(c.Request.Context(), userID, body.toRequest())
	if err != nil {
		log.Warn("Hosted checkout creation failed", map[string]interface{}{
			"user_id": userID,
			"error":   err.Error(),
		})
		respondOrderError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success":     true,
		"order":       result.Order,
		"checkoutUrl": result.CheckoutURL,
		"sessionId":   result.SessionID,
	})
}

// VerifyCheckout confirms a hosted checkout payment
// POST /api/orders/verify-clover
func (ctrl *OrderController) VerifyCheckout(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var body struct {
		SessionID string `json:"sessionId"`
	}
	if err := c.ShouldBindJSON(&body); err != nil || body.SessionID == "" {
		apperrors.BadRequest(c, apperrors.ValidationRequired, "A sessionId is required")
		return
	}

	order, err := ctrl.orderService.VerifyHostedCheckout(c.Request.Context(), body.SessionID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrOrderNotFound):
			apperrors.NotFound(c, apperrors.OrderNotFound, "No order matches this checkout session")
		case errors.Is(err, service.ErrPaymentUnverified):
			apperrors.RespondWithError(c, http.StatusPaymentRequired, apperrors.PaymentUnverified, "Payment has not been confirmed")
		default:
			log.Error("Checkout verification failed", err, nil)
			apperrors.InternalError(c, "")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"order":   order,
	})
}

// GetMyOrders lists the authenticated user's orders, newest first
// GET /api/orders
func (ctrl *OrderController) GetMyOrders(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}

	orders, err := ctrl.orderService.GetUserOrders(userID)
	if err != nil {
		apperrors.InternalError(c, "Failed to fetch orders")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"orders":  orders,
		"count":   len(orders),
	})
}

// GetAllOrders lists every order (admin)
// GET /api/orders/all
func (ctrl *OrderController) GetAllOrders(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	orders, err := ctrl.orderService.GetAllOrders()
	if err != nil {
		log.Error("Failed to fetch orders", err, nil)
		apperrors.InternalError(c, "Failed to fetch orders")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"orders":  orders,
		"count":   len(orders),
	})
}

// GetOrderByID returns one order; customers may only read their own
// GET /api/orders/:id
func (ctrl *OrderController) GetOrderByID(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	order, err := ctrl.orderService.GetOrderByID(id)
	if err != nil {
		if errors.Is(err, service.ErrOrderNotFound) {
			apperrors.NotFound(c, apperrors.OrderNotFound, "Order not found")
			return
		}
		apperrors.InternalError(c, "Failed to fetch order")
		return
	}

	role, _ := middleware.GetUserRole(c)
	if order.UserID != userID && role != model.RoleAdmin {
		apperrors.NotFound(c, apperrors.OrderNotFound, "Order not found")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"order":   order,
	})
}

type updateStatusRequest struct {
	Status model.OrderStatus `json:"status" binding:"required"`
}

// UpdateOrderStatus sets an order's status (admin)
// PUT /api/orders/:id/status
func (ctrl *OrderController) UpdateOrderStatus(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "A status is required")
		return
	}

	if err := ctrl.orderService.UpdateOrderStatus(id, req.Status); err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidStatus):
			apperrors.BadRequest(c, apperrors.OrderInvalidStatus, "Unknown order status")
		case errors.Is(err, service.ErrOrderNotFound):
			apperrors.NotFound(c, apperrors.OrderNotFound, "Order not found")
		default:
			log.Error("Failed to update order status", err, map[string]interface{}{
				"order_id": id,
			})
			apperrors.InternalError(c, "")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Order status updated",
	})
}

// UpdateOrderItemStatus sets one line's status (admin)
// PUT /api/orders/:id/items/:itemId/status
func (ctrl *OrderController) UpdateOrderItemStatus(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	orderID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	itemID, ok := parseIDParam(c, "itemId")
	if !ok {
		return
	}

	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "A status is required")
		return
	}

	if err := ctrl.orderService.UpdateOrderItemStatus(orderID, itemID, req.Status); err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidStatus):
			apperrors.BadRequest(c, apperrors.OrderInvalidStatus, "Unknown order status")
		case errors.Is(err, service.ErrOrderItemNotFound):
			apperrors.NotFound(c, apperrors.OrderItemNotFound, "Order item not found")
		default:
			log.Error("Failed to update order item status", err, map[string]interface{}{
				"order_id": orderID,
				"item_id":  itemID,
			})
			apperrors.InternalError(c, "")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Order item status updated",
	})
}

// CancelOrder lets a customer cancel their own non-terminal order
// POST /api/orders/:id/cancel
func (ctrl *OrderController) CancelOrder(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := ctrl.orderService.CancelOrderByUser(userID, id); err != nil {
		switch {
		case errors.Is(err, service.ErrOrderNotFound), errors.Is(err, service.ErrNotOrderOwner):
			apperrors.NotFound(c, apperrors.OrderNotFound, "Order not found")
		case errors.Is(err, service.ErrOrderNotCancellable):
			apperrors.Conflict(c, apperrors.OrderInvalidStatus, "Order can no longer be cancelled")
		default:
			apperrors.InternalError(c, "")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Order cancelled",
	})
}
