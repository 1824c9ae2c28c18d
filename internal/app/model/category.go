package model

import (
	"time"

	"gorm.io/gorm"
)

// Category is a display grouping. Products reference it by Name, so the item
// count is computed at read time instead of being stored.
type Category struct {
	ID         uint   `gorm:"primarykey" json:"id"`
	Name       string `gorm:"uniqueIndex;not null" json:"name"`
	CategoryID string `gorm:"uniqueIndex;not null" json:"categoryId"` // opaque, generated
	CloverID   string `gorm:"index" json:"cloverId,omitempty"`        // set when synced from the POS
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Category) TableName() string {
	return "categories"
}

// CategoryWithCount is the read-time projection used by listings.
type CategoryWithCount struct {
	Category
	Items int64 `json:"items"`
}
