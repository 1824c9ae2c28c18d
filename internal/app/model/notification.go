package model

import "time"

// Notification is the durable record behind the realtime push. The websocket
// delivery is best-effort; this row is what the client sees on next poll.
type Notification struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	ProductID uint      `gorm:"not null;index" json:"productId"`
	Message   string    `gorm:"type:text;not null" json:"message"`
	Read      bool      `gorm:"default:false;index" json:"read"`
	CreatedAt time.Time `json:"createdAt"`

	Product Product `gorm:"foreignKey:ProductID" json:"-"`
}

func (Notification) TableName() string {
	return "notifications"
}
