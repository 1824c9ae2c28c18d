package model

import "time"

// WaitlistEntry records that a user asked to be told when a product comes
// back in stock. Entries are removed during restock fan-out whether or not a
// new notification was appended, so the waitlist never accumulates.
type WaitlistEntry struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_waitlist_user_product" json:"user_id"`
	ProductID uint      `gorm:"not null;uniqueIndex:idx_waitlist_user_product;index" json:"product_id"`
	CreatedAt time.Time `json:"created_at"`
}

func (WaitlistEntry) TableName() string {
	return "waitlist_entries"
}
