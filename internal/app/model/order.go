package model

import (
	"time"

	"gorm.io/gorm"
)

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "Pending"
	OrderStatusProcessing OrderStatus = "Processing"
	OrderStatusShipped    OrderStatus = "Shipped"
	OrderStatusDelivered  OrderStatus = "Delivered"
	OrderStatusCancelled  OrderStatus = "Cancelled"
)

// ValidOrderStatus reports whether s is inside the fixed status domain.
// Anything else must be rejected before persistence.
func ValidOrderStatus(s OrderStatus) bool {
	switch s {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusShipped,
		OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

// Terminal reports whether no further transitions are allowed from s.
func (s OrderStatus) Terminal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCancelled
}

type PaymentMethod string

const (
	PaymentCashOnDelivery PaymentMethod = "CashOnDelivery"
	PaymentClover         PaymentMethod = "Clover"
)

type Order struct {
	ID     uint `gorm:"primarykey" json:"id"`
	UserID uint `gorm:"not null;index" json:"user_id"`
	Phone  string `gorm:"not null" json:"phone"`

	// Postal address, all fields required at placement time
	Street  string `gorm:"not null" json:"street"`
	City    string `gorm:"not null" json:"city"`
	State   string `gorm:"not null" json:"state"`
	Zip     string `gorm:"not null" json:"zip"`
	Country string `gorm:"not null" json:"country"`

	Amount            float64       `gorm:"not null" json:"amount"`
	PaymentMethod     PaymentMethod `gorm:"type:varchar(30)" json:"paymentMethod"`
	Payment           bool          `gorm:"default:false" json:"payment"`
	Status            OrderStatus   `gorm:"type:varchar(20);default:'Pending'" json:"status"`
	CheckoutSessionID string        `gorm:"index" json:"-"` // hosted-checkout session, when used
	CreatedAt         time.Time     `json:"created_at"`
	UpdatedAt         time.Time     `json:"updated_at"`
	DeletedAt         gorm.DeletedAt `gorm:"index" json:"-"`

	User  User        `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Items []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`
}

func (Order) TableName() string {
	return "orders"
}

// OrderItem snapshots name, unit price and image at placement time so
// historic orders render correctly after the product changes or disappears.
type OrderItem struct {
	ID          uint        `gorm:"primarykey" json:"id"`
	OrderID     uint        `gorm:"not null;index" json:"order_id"`
	ProductID   uint        `gorm:"not null;index" json:"product_id"`
	Name        string      `gorm:"not null" json:"name"`
	Quantity    int         `gorm:"not null" json:"quantity"`
	Price       float64     `gorm:"not null" json:"price"`
	VariantSize string      `json:"variantSize"`
	Status      OrderStatus `gorm:"type:varchar(20);default:'Pending'" json:"status"`
	Image       string      `json:"image"`
	CreatedAt   time.Time   `json:"created_at"`

	Order   Order   `gorm:"foreignKey:OrderID" json:"-"`
	Product Product `gorm:"foreignKey:ProductID" json:"product,omitempty"`
}

func (OrderItem) TableName() string {
	return "order_items"
}
