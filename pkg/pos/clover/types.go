package clover

import "github.com/shopspring/decimal"

// Item is an inventory item as the merchant API returns it. Price is in
// minor units (cents). Hidden items do not show on the register.
type Item struct {
	ID         string        `json:"id,omitempty"`
	Name       string        `json:"name"`
	Price      int64         `json:"price"`
	SKU        string        `json:"sku,omitempty"`
	Code       string        `json:"code,omitempty"`
	Hidden     bool          `json:"hidden"`
	Available  bool          `json:"available"`
	Categories *CategoryList `json:"categories,omitempty"`
}

// ItemList is the elements envelope wrapping collection responses
type ItemList struct {
	Elements []Item `json:"elements"`
}

// Category is an inventory category
type Category struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name"`
}

// CategoryList is the elements envelope for categories
type CategoryList struct {
	Elements []Category `json:"elements"`
}

// categoryItemLink associates an item with a category
type categoryItemLink struct {
	Category Category `json:"category"`
	Item     Item     `json:"item"`
}

type categoryItemLinkList struct {
	Elements []categoryItemLink `json:"elements"`
}

// OrderState values accepted by the orders endpoint
const (
	OrderStateOpen   = "open"
	OrderStateLocked = "locked"
)

// OrderRequest creates an order on the merchant
type OrderRequest struct {
	State string `json:"state"`
	Total int64  `json:"total,omitempty"`
	Note  string `json:"note,omitempty"`
}

// Order is the merchant API order record
type Order struct {
	ID    string `json:"id"`
	State string `json:"state"`
	Total int64  `json:"total"`
}

// LineItemRequest adds a line to an existing order. Price is per unit
// in minor units.
type LineItemRequest struct {
	Name    string `json:"name"`
	Price   int64  `json:"price"`
	UnitQty int    `json:"unitQty,omitempty"`
	Note    string `json:"note,omitempty"`
}

// LineItem is a created order line
type LineItem struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Price int64  `json:"price"`
}

// CheckoutCustomer identifies the buyer on a hosted checkout session
type CheckoutCustomer struct {
	Email       string `json:"email,omitempty"`
	FirstName   string `json:"firstName,omitempty"`
	LastName    string `json:"lastName,omitempty"`
	PhoneNumber string `json:"phoneNumber,omitempty"`
}

// CheckoutLineItem is one purchasable line on a hosted checkout session
type CheckoutLineItem struct {
	Name      string `json:"name"`
	Price     int64  `json:"price"`
	UnitQty   int    `json:"unitQty"`
	Note      string `json:"note,omitempty"`
}

// CheckoutRequest creates a hosted checkout session
type CheckoutRequest struct {
	Customer     CheckoutCustomer `json:"customer"`
	ShoppingCart struct {
		LineItems []CheckoutLineItem `json:"lineItems"`
	} `json:"shoppingCart"`
}

// CheckoutResponse is returned when a hosted checkout session is created
type CheckoutResponse struct {
	Href              string `json:"href"`
	CheckoutSessionID string `json:"checkoutSessionId"`
}

// CheckoutSession is the state of a hosted checkout session. Payment is
// confirmed only when PaymentStatus reports PAID.
type CheckoutSession struct {
	ID            string `json:"id"`
	Status        string `json:"status"`
	PaymentStatus string `json:"paymentStatus"`
}

// Paid reports whether the session completed with a captured payment
func (s *CheckoutSession) Paid() bool {
	return s.PaymentStatus == "PAID" || s.Status == "PAID"
}

// ChargeRequest charges a tokenized card through the ecommerce API.
// Amount is in minor units.
type ChargeRequest struct {
	Source   string `json:"source"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Capture  bool   `json:"capture"`
}

// ChargeResponse is the ecommerce charge result
type ChargeResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Paid   bool   `json:"paid"`
	Amount int64  `json:"amount"`
}

// Succeeded reports whether the charge was captured
func (r *ChargeResponse) Succeeded() bool {
	return r.Paid || r.Status == "succeeded"
}

// ErrorResponse is the merchant API error body
type ErrorResponse struct {
	Message string `json:"message"`
	Error   struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// ToMinorUnits converts a decimal currency amount to integer cents,
// rounding half away from zero so 19.995 becomes 2000 rather than 1999.
func ToMinorUnits(amount float64) int64 {
	return decimal.NewFromFloat(amount).Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}

// FromMinorUnits converts integer cents back to a currency amount
func FromMinorUnits(cents int64) float64 {
	f, _ := decimal.NewFromInt(cents).Div(decimal.NewFromInt(100)).Float64()
	return f
}
