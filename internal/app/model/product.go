package model

import (
	"time"

	"gorm.io/gorm"
)

// Product is the local system of record for a catalog item. The POS mirror
// (ExternalCloverID) may lag or be absent entirely.
type Product struct {
	ID               uint           `gorm:"primarykey" json:"id"`
	ProductID        string         `gorm:"uniqueIndex;not null" json:"productId"` // human-assigned SKU-like id
	ExternalCloverID string         `gorm:"index" json:"externalCloverId,omitempty"`
	Name             string         `gorm:"not null" json:"name"`
	Description      string         `gorm:"type:text" json:"description"`
	Price            float64        `gorm:"not null" json:"price"`
	Flavour          string         `json:"flavour"`
	StockCount       int            `json:"stockCount"`
	InStock          bool           `json:"inStock"`
	ShowOnPOS        bool           `json:"showOnPOS"`
	Bestseller       bool           `json:"bestseller"`
	SweetnessLevel   int            `json:"sweetnessLevel"` // 0-10
	MintLevel        int            `json:"mintLevel"`      // 0-10
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
	DeletedAt        gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Variants      []ProductVariant     `gorm:"foreignKey:ProductRef;constraint:OnDelete:CASCADE" json:"variants"`
	Images        []ProductImage       `gorm:"foreignKey:ProductRef;constraint:OnDelete:CASCADE" json:"images"`
	Categories    []ProductCategoryRef `gorm:"foreignKey:ProductRef;constraint:OnDelete:CASCADE" json:"categories"`
	OtherFlavours []*Product           `gorm:"many2many:product_flavour_links" json:"otherFlavours,omitempty"`
}

func (Product) TableName() string {
	return "products"
}

// CategoryNames flattens the category refs to plain names.
func (p *Product) CategoryNames() []string {
	names := make([]string, 0, len(p.Categories))
	for _, c := range p.Categories {
		names = append(names, c.Name)
	}
	return names
}

// VariantSizes returns the declared sizes in display order. An empty result
// means the product is unconstrained and any requested size is accepted.
func (p *Product) VariantSizes() []string {
	sizes := make([]string, 0, len(p.Variants))
	for _, v := range p.Variants {
		sizes = append(sizes, v.Size)
	}
	return sizes
}

// FirstImageURL returns the lead image, or "" when none is stored.
func (p *Product) FirstImageURL() string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0].URL
}

// ProductVariant is one purchasable size/price/quantity combination.
// Size is assumed unique within a product.
type ProductVariant struct {
	ID         uint    `gorm:"primarykey" json:"id"`
	ProductRef uint    `gorm:"not null;index" json:"-"`
	Size       string  `gorm:"not null" json:"size"` // e.g. "10ml", "20ml"
	Price      float64 `gorm:"not null" json:"price"`
	Quantity   int     `gorm:"not null;default:0" json:"quantity"`
	Position   int     `gorm:"default:0" json:"-"`
}

func (ProductVariant) TableName() string {
	return "product_variants"
}

// ProductImage is a stored image slot. Key is the storage identifier used
// for deletion on the image host. At most four slots per product.
type ProductImage struct {
	ID         uint   `gorm:"primarykey" json:"id"`
	ProductRef uint   `gorm:"not null;index" json:"-"`
	URL        string `gorm:"not null" json:"url"`
	Key        string `json:"key"`
	Position   int    `gorm:"default:0" json:"-"`
}

func (ProductImage) TableName() string {
	return "product_images"
}

// ProductCategoryRef links a product to a category by display name, not by
// foreign key. Deleting a category leaves these refs dangling on purpose.
type ProductCategoryRef struct {
	ID         uint   `gorm:"primarykey" json:"-"`
	ProductRef uint   `gorm:"not null;index" json:"-"`
	Name       string `gorm:"not null;index" json:"name"`
}

func (ProductCategoryRef) TableName() string {
	return "product_category_refs"
}
