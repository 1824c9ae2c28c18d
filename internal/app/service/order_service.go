package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rknair/cloudpuff-backend/internal/app/model"
	"github.com/rknair/cloudpuff-backend/internal/app/repository"
	"github.com/rknair/cloudpuff-backend/pkg/logger"
	"github.com/rknair/cloudpuff-backend/pkg/pos/clover"
	"gorm.io/gorm"
)

var (
	ErrOrderNotFound        = errors.New("order not found")
	ErrOrderItemNotFound    = errors.New("order item not found")
	ErrEmptyOrder           = errors.New("order has no items")
	ErrInvalidStatus        = errors.New("invalid order status")
	ErrSizeNotAvailable     = errors.New("requested size is not available for this product")
	ErrOrderNotCancellable  = errors.New("order can no longer be cancelled")
	ErrNotOrderOwner        = errors.New("order belongs to another user")
	ErrPaymentNotConfigured = errors.New("payment provider is not configured")
	ErrPaymentFailed        = errors.New("payment failed")
	ErrPaymentUnverified    = errors.New("payment could not be verified")
)

// OrderAddress is the delivery address captured at placement
type OrderAddress struct {
	Street  string `json:"street"`
	City    string `json:"city"`
	State   string `json:"state"`
	Zip     string `json:"zip"`
	Country string `json:"country"`
}

// OrderItemRequest is one requested line: a product, a quantity and an
// optional variant size
type OrderItemRequest struct {
	ProductID   uint   `json:"product_id"`
	Quantity    int    `json:"quantity"`
	VariantSize string `json:"variantSize"`
}

// PlaceOrderRequest is the common payload for every payment path
type PlaceOrderRequest struct {
	Phone   string             `json:"phone"`
	Address OrderAddress       `json:"address"`
	Items   []OrderItemRequest `json:"items"`
}

// CheckoutResult returns the hosted checkout redirect next to the
// pending order
type CheckoutResult struct {
	Order       *model.Order `json:"order"`
	CheckoutURL string       `json:"checkoutUrl"`
	SessionID   string       `json:"sessionId"`
}

type OrderService interface {
	PlaceOrderCOD(ctx context.Context, userID uint, req PlaceOrderRequest) (*model.Order, error)
	PlaceOrderWithToken(ctx context.Context, userID uint, req PlaceOrderRequest, token string) (*model.Order, error)
	PlaceOrderHostedCheckout(ctx context.Context, userID uint, req PlaceOrderRequest) (*CheckoutResult, error)
	VerifyHostedCheckout(ctx context.Context, sessionID string) (*model.Order, error)
	GetAllOrders() ([]model.Order, error)
	GetUserOrders(userID uint) ([]model.Order, error)
	GetOrderByID(id uint) (*model.Order, error)
	UpdateOrderStatus(orderID uint, status model.OrderStatus) error
	UpdateOrderItemStatus(orderID, itemID uint, status model.OrderStatus) error
	CancelOrderByUser(userID, orderID uint) error
}

type orderService struct {
	orderRepo   repository.OrderRepository
	productRepo repository.ProductRepository
	cartRepo    repository.CartRepository
	userRepo    repository.UserRepository
	pos         *clover.Client
}

func NewOrderService(
	orderRepo repository.OrderRepository,
	productRepo repository.ProductRepository,
	cartRepo repository.CartRepository,
	userRepo repository.UserRepository,
	pos *clover.Client,
) OrderService {
	return &orderService{
		orderRepo:   orderRepo,
		productRepo: productRepo,
		cartRepo:    cartRepo,
		userRepo:    userRepo,
		pos:         pos,
	}
}

// buildOrder resolves the requested lines against the live catalog:
// product must exist, and when the product declares variant sizes the
// requested size must be one of them; a missing size is treated as
// "default" and rejected unless a variant by that name exists. Products
// without variants accept any size string. Name, unit price and lead
// image are snapshotted.
func (s *orderService) buildOrder(userID uint, req PlaceOrderRequest, method model.PaymentMethod) (*model.Order, error) {
	if len(req.Items) == 0 {
		return nil, ErrEmptyOrder
	}

	fields := make(map[string]string)
	if req.Phone == "" {
		fields["phone"] = "phone is required"
	}
	if req.Address.Street == "" {
		fields["address.street"] = "street is required"
	}
	if req.Address.City == "" {
		fields["address.city"] = "city is required"
	}
	if req.Address.State == "" {
		fields["address.state"] = "state is required"
	}
	if req.Address.Zip == "" {
		fields["address.zip"] = "zip is required"
	}
	if req.Address.Country == "" {
		fields["address.country"] = "country is required"
	}
	if len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}

	order := &model.Order{
		UserID:        userID,
		Phone:         req.Phone,
		Street:        req.Address.Street,
		City:          req.Address.City,
		State:         req.Address.State,
		Zip:           req.Address.Zip,
		Country:       req.Address.Country,
		PaymentMethod: method,
		Status:        model.OrderStatusPending,
	}

	for _, line := range req.Items {
		if line.Quantity <= 0 {
			line.Quantity = 1
		}

		product, err := s.productRepo.FindByID(line.ProductID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("%w: product %d", ErrProductNotFound, line.ProductID)
			}
			return nil, err
		}

		price := product.Price
		if len(product.Variants) > 0 {
			requested := line.VariantSize
			if requested == "" {
				requested = "default"
			}
			found := false
			for _, v := range product.Variants {
				if v.Size == requested {
					price = v.Price
					found = true
					break
				}
			}
			if !found {
				return nil, fmt.Errorf("%w: %s", ErrSizeNotAvailable, requested)
			}
		}

		order.Items = append(order.Items, model.OrderItem{
			ProductID:   product.ID,
			Name:        product.Name,
			Quantity:    line.Quantity,
			Price:       price,
			VariantSize: line.VariantSize,
			Status:      model.OrderStatusPending,
			Image:       product.FirstImageURL(),
		})
		order.Amount += price * float64(line.Quantity)
	}

	return order, nil
}

func (s *orderService) PlaceOrderCOD(ctx context.Context, userID uint, req PlaceOrderRequest) (*model.Order, error) {
	logger.Info("Placing cash-on-delivery order", map[string]interface{}{
		"user_id":    userID,
		"item_count": len(req.Items),
	})

	order, err := s.buildOrder(userID, req, model.PaymentCashOnDelivery)
	if err != nil {
		return nil, err
	}

	if err := s.orderRepo.Create(order); err != nil {
		return nil, err
	}

	s.mirrorToPOS(ctx, order)
	s.clearCart(userID)
	return s.orderRepo.FindByID(order.ID)
}

// PlaceOrderWithToken charges a tokenized card before the order is
// persisted. A declined charge leaves no order behind.
func (s *orderService) PlaceOrderWithToken(ctx context.Context, userID uint, req PlaceOrderRequest, token string) (*model.Order, error) {
	if !s.pos.IsConfigured() {
		return nil, ErrPaymentNotConfigured
	}
	if token == "" {
		return nil, ErrPaymentFailed
	}

	order, err := s.buildOrder(userID, req, model.PaymentClover)
	if err != nil {
		return nil, err
	}

	logger.Info("Charging card token for order", map[string]interface{}{
		"user_id": userID,
		"amount":  order.Amount,
	})

	charge, err := s.pos.ChargeToken(ctx, clover.ChargeRequest{
		Source: token,
		Amount: clover.ToMinorUnits(order.Amount),
	})
	if err != nil {
		logger.Warn("Card charge failed", map[string]interface{}{
			"user_id": userID,
			"error":   err.Error(),
		})
		return nil, ErrPaymentFailed
	}
	if !charge.Succeeded() {
		logger.Warn("Card charge not captured", map[string]interface{}{
			"user_id": userID,
			"status":  charge.Status,
		})
		return nil, ErrPaymentFailed
	}

	order.Payment = true
	if err := s.orderRepo.Create(order); err != nil {
		return nil, err
	}

	s.mirrorToPOS(ctx, order)
	s.clearCart(userID)
	return s.orderRepo.FindByID(order.ID)
}

// PlaceOrderHostedCheckout persists a pending unpaid order and opens a
// hosted checkout session the storefront redirects to. Payment is
// confirmed later through VerifyHostedCheckout; the cart stays intact
// until then, so an abandoned checkout loses nothing.
func (s *orderService) PlaceOrderHostedCheckout(ctx context.Context, userID uint, req PlaceOrderRequest) (*CheckoutResult, error) {
	if !s.pos.IsConfigured() {
		return nil, ErrPaymentNotConfigured
	}

	order, err := s.buildOrder(userID, req, model.PaymentClover)
	if err != nil {
		return nil, err
	}

	checkoutReq := clover.CheckoutRequest{}
	if user, err := s.userRepo.FindByID(userID); err == nil {
		checkoutReq.Customer = clover.CheckoutCustomer{
			Email:       user.Email,
			FirstName:   user.Name,
			PhoneNumber: req.Phone,
		}
	}
	for _, item := range order.Items {
		checkoutReq.ShoppingCart.LineItems = append(checkoutReq.ShoppingCart.LineItems, clover.CheckoutLineItem{
			Name:    item.Name,
			Price:   clover.ToMinorUnits(item.Price),
			UnitQty: item.Quantity,
			Note:    item.VariantSize,
		})
	}

	session, err := s.pos.CreateCheckoutSession(ctx, checkoutReq)
	if err != nil {
		logger.Error("Failed to create hosted checkout session", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, ErrPaymentFailed
	}

	order.CheckoutSessionID = session.CheckoutSessionID
	if err := s.orderRepo.Create(order); err != nil {
		return nil, err
	}

	created, err := s.orderRepo.FindByID(order.ID)
	if err != nil {
		return nil, err
	}
	return &CheckoutResult{
		Order:       created,
		CheckoutURL: session.Href,
		SessionID:   session.CheckoutSessionID,
	}, nil
}

// VerifyHostedCheckout marks an order paid only on a positive PAID
// answer from the checkout service. Ambiguous or failed lookups leave
// the order unpaid.
func (s *orderService) VerifyHostedCheckout(ctx context.Context, sessionID string) (*model.Order, error) {
	if sessionID == "" {
		return nil, ErrPaymentUnverified
	}

	order, err := s.orderRepo.FindByCheckoutSession(sessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}

	if order.Payment {
		return order, nil
	}

	session, err := s.pos.GetCheckoutSession(ctx, sessionID)
	if err != nil {
		logger.Warn("Checkout session lookup failed", map[string]interface{}{
			"session_id": sessionID,
			"error":      err.Error(),
		})
		return nil, ErrPaymentUnverified
	}
	if !session.Paid() {
		logger.Info("Checkout session not paid", map[string]interface{}{
			"session_id":     sessionID,
			"status":         session.Status,
			"payment_status": session.PaymentStatus,
		})
		return nil, ErrPaymentUnverified
	}

	if err := s.orderRepo.MarkPaid(order.ID); err != nil {
		return nil, err
	}

	paid, err := s.orderRepo.FindByID(order.ID)
	if err != nil {
		return nil, err
	}

	s.mirrorToPOS(ctx, paid)
	s.clearCart(order.UserID)
	return paid, nil
}

func (s *orderService) GetAllOrders() ([]model.Order, error) {
	return s.orderRepo.FindAll()
}

func (s *orderService) GetUserOrders(userID uint) ([]model.Order, error) {
	return s.orderRepo.FindByUser(userID)
}

func (s *orderService) GetOrderByID(id uint) (*model.Order, error) {
	order, err := s.orderRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return order, nil
}

func (s *orderService) UpdateOrderStatus(orderID uint, status model.OrderStatus) error {
	if !model.ValidOrderStatus(status) {
		return ErrInvalidStatus
	}

	logger.Info("Updating order status", map[string]interface{}{
		"order_id": orderID,
		"status":   status,
	})

	if err := s.orderRepo.UpdateStatus(orderID, status); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrOrderNotFound
		}
		return err
	}
	return nil
}

func (s *orderService) UpdateOrderItemStatus(orderID, itemID uint, status model.OrderStatus) error {
	if !model.ValidOrderStatus(status) {
		return ErrInvalidStatus
	}

	if err := s.orderRepo.UpdateItemStatus(orderID, itemID, status); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrOrderItemNotFound
		}
		return err
	}
	return nil
}

// CancelOrderByUser lets a customer cancel their own order while it is
// still in a non-terminal state.
func (s *orderService) CancelOrderByUser(userID, orderID uint) error {
	order, err := s.orderRepo.FindByID(orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrOrderNotFound
		}
		return err
	}

	if order.UserID != userID {
		return ErrNotOrderOwner
	}
	if order.Status.Terminal() {
		return ErrOrderNotCancellable
	}

	logger.Info("Cancelling order on user request", map[string]interface{}{
		"order_id": orderID,
		"user_id":  userID,
	})
	return s.orderRepo.UpdateStatus(orderID, model.OrderStatusCancelled)
}

// mirrorToPOS records the order on the merchant so in-store staff see
// web orders on the register: locked when already paid, open otherwise.
// Best-effort, the local order is the source of truth.
func (s *orderService) mirrorToPOS(ctx context.Context, order *model.Order) {
	if !s.pos.IsConfigured() {
		return
	}

	state := clover.OrderStateOpen
	if order.Payment {
		state = clover.OrderStateLocked
	}

	remote, err := s.pos.CreateOrder(ctx, clover.OrderRequest{
		State: state,
		Total: clover.ToMinorUnits(order.Amount),
		Note:  fmt.Sprintf("Storefront order #%d", order.ID),
	})
	if err != nil {
		logger.Warn("Failed to mirror order to POS", map[string]interface{}{
			"order_id": order.ID,
			"error":    err.Error(),
		})
		return
	}

	for _, item := range order.Items {
		if _, err := s.pos.AddLineItem(ctx, remote.ID, clover.LineItemRequest{
			Name:    item.Name,
			Price:   clover.ToMinorUnits(item.Price),
			UnitQty: item.Quantity,
			Note:    item.VariantSize,
		}); err != nil {
			logger.Warn("Failed to mirror order line to POS", map[string]interface{}{
				"order_id":        order.ID,
				"clover_order_id": remote.ID,
				"error":           err.Error(),
			})
		}
	}
}

// clearCart empties the cart after a successful placement. The order
// already exists, so a failure here is only logged.
func (s *orderService) clearCart(userID uint) {
	if err := s.cartRepo.Clear(userID); err != nil {
		logger.Warn("Failed to clear cart after order placement", map[string]interface{}{
			"user_id": userID,
			"error":   err.Error(),
		})
	}
}
