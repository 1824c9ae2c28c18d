package realtime

import (
	"time"

	"github.com/rknair/cloudpuff-backend/internal/app/model"
)

// Event types pushed to connected storefront clients
const (
	EventProductCreated = "productCreated"
	EventProductUpdated = "productUpdated"
	EventProductRemoved = "productRemoved"
	EventNotification   = "notification"
)

// Event is the envelope every websocket frame carries
type Event struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// ProductPayload is the product projection sent with catalog events.
// It carries what a storefront needs to update a product card without
// refetching.
type ProductPayload struct {
	ID         uint     `json:"id"`
	ProductID  string   `json:"productId"`
	Name       string   `json:"name"`
	Price      float64  `json:"price"`
	InStock    bool     `json:"inStock"`
	StockCount int      `json:"stockCount"`
	Image      string   `json:"image,omitempty"`
	Categories []string `json:"categories,omitempty"`
}

// RemovedPayload identifies a product that no longer exists
type RemovedPayload struct {
	ID        uint   `json:"id"`
	ProductID string `json:"productId"`
}

// NotificationProduct is the product summary embedded in a notification
// event so the client can render the card without a catalog fetch
type NotificationProduct struct {
	Name      string `json:"name"`
	Thumbnail string `json:"thumbnail,omitempty"`
}

// NotificationPayload is sent to a single user when a waitlisted
// product comes back in stock
type NotificationPayload struct {
	ID        uint                `json:"id"`
	ProductID uint                `json:"product_id"`
	Message   string              `json:"message"`
	Read      bool                `json:"read"`
	CreatedAt time.Time           `json:"createdAt"`
	Product   NotificationProduct `json:"product"`
}

// NewProductPayload projects a product into its event shape
func NewProductPayload(p *model.Product) ProductPayload {
	return ProductPayload{
		ID:         p.ID,
		ProductID:  p.ProductID,
		Name:       p.Name,
		Price:      p.Price,
		InStock:    p.InStock,
		StockCount: p.StockCount,
		Image:      p.FirstImageURL(),
		Categories: p.CategoryNames(),
	}
}
