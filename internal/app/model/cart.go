package model

import (
	"time"

	"gorm.io/gorm"
)

type CartItem struct {
	ID          uint   `gorm:"primarykey" json:"id"`
	UserID      uint   `gorm:"not null;index" json:"user_id"`
	ProductID   uint   `gorm:"not null;index" json:"product_id"`
	Quantity    int    `gorm:"not null;default:1" json:"quantity"`
	VariantSize string `json:"variantSize"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	User    User    `gorm:"foreignKey:UserID" json:"-"`
	Product Product `gorm:"foreignKey:ProductID" json:"product,omitempty"`
}

func (CartItem) TableName() string {
	return "cart_items"
}
