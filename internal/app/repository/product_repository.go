package repository

import (
	"fmt"
	"strings"

	"github.com/rknair/cloudpuff-backend/internal/app/model"
	"github.com/rknair/cloudpuff-backend/pkg/logger"
	"gorm.io/gorm"
)

// ProductFilter narrows catalog listings. Search matches name,
// description, product id and category name with a single term.
type ProductFilter struct {
	Search     string
	Category   string
	InStock    *bool
	Bestseller *bool
	Limit      int
	Offset     int
}

// ProductPage is one keyset page of the storefront feed
type ProductPage struct {
	Products   []model.Product
	NextCursor uint
	HasMore    bool
}

type ProductRepository interface {
	Create(product *model.Product) error
	FindAll() ([]model.Product, error)
	FindWithFilter(filter ProductFilter) ([]model.Product, int64, error)
	FindPage(lastID uint, limit int) (*ProductPage, error)
	FindByID(id uint) (*model.Product, error)
	FindByProductID(productID string) (*model.Product, error)
	FindByCloverID(cloverID string) (*model.Product, error)
	FindByIDs(ids []uint) ([]model.Product, error)
	Update(product *model.Product) error
	ReplaceVariants(productID uint, variants []model.ProductVariant) error
	ReplaceImages(productID uint, images []model.ProductImage) error
	ReplaceCategories(productID uint, names []string) error
	UpdateStock(id uint, stockCount int, inStock bool) error
	Delete(id uint) error
	DeleteMany(ids []uint) error
}

type productRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepository{db: db}
}

func (r *productRepository) baseQuery() *gorm.DB {
	return r.db.Model(&model.Product{}).
		Preload("Variants", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Preload("Images", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Preload("Categories").
		Preload("OtherFlavours")
}

func (r *productRepository) Create(product *model.Product) error {
	logger.Debug("Creating product in database", map[string]interface{}{
		"product_id": product.ProductID,
		"name":       product.Name,
	})

	if err := r.db.Create(product).Error; err != nil {
		logger.Error("Failed to create product in database", err, map[string]interface{}{
			"product_id": product.ProductID,
			"name":       product.Name,
		})
		return err
	}

	logger.Debug("Product created in database", map[string]interface{}{
		"id":         product.ID,
		"product_id": product.ProductID,
	})
	return nil
}

func (r *productRepository) FindAll() ([]model.Product, error) {
	products, _, err := r.FindWithFilter(ProductFilter{})
	return products, err
}

func (r *productRepository) FindWithFilter(filter ProductFilter) ([]model.Product, int64, error) {
	logger.Debug("Finding products with filter", map[string]interface{}{
		"search":   filter.Search,
		"category": filter.Category,
		"limit":    filter.Limit,
		"offset":   filter.Offset,
	})

	query := r.baseQuery()

	if filter.Search != "" {
		// LIKE is case-sensitive on Postgres, so match lowered text on
		// both sides
		like := fmt.Sprintf("%%%s%%", strings.ToLower(filter.Search))
		matched := r.db.Model(&model.ProductCategoryRef{}).
			Select("product_ref").
			Where("LOWER(name) LIKE ?", like)
		query = query.Where(
			"LOWER(products.name) LIKE ? OR LOWER(products.description) LIKE ? OR LOWER(products.product_id) LIKE ? OR products.id IN (?)",
			like, like, like, matched,
		)
	}

	if filter.Category != "" {
		member := r.db.Model(&model.ProductCategoryRef{}).
			Select("product_ref").
			Where("name = ?", filter.Category)
		query = query.Where("products.id IN (?)", member)
	}

	if filter.InStock != nil {
		query = query.Where("products.in_stock = ?", *filter.InStock)
	}

	if filter.Bestseller != nil {
		query = query.Where("products.bestseller = ?", *filter.Bestseller)
	}

	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		logger.Error("Failed to count products with filter", err, map[string]interface{}{
			"search": filter.Search,
		})
		return nil, 0, err
	}

	query = query.Order("products.created_at DESC")
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}

	var products []model.Product
	if err := query.Find(&products).Error; err != nil {
		logger.Error("Failed to find products with filter", err, map[string]interface{}{
			"search":   filter.Search,
			"category": filter.Category,
		})
		return nil, 0, err
	}

	logger.Debug("Products found with filter", map[string]interface{}{
		"count": len(products),
		"total": total,
	})
	return products, total, nil
}

// FindPage returns one keyset page of the feed, newest id first. A zero
// lastID starts from the top. HasMore stays true until a page comes
// back empty, so a full final page still reports another page.
func (r *productRepository) FindPage(lastID uint, limit int) (*ProductPage, error) {
	logger.Debug("Finding product feed page", map[string]interface{}{
		"last_id": lastID,
		"limit":   limit,
	})

	query := r.baseQuery().Order("products.id DESC").Limit(limit)
	if lastID > 0 {
		query = query.Where("products.id < ?", lastID)
	}

	var products []model.Product
	if err := query.Find(&products).Error; err != nil {
		logger.Error("Failed to find product feed page", err, map[string]interface{}{
			"last_id": lastID,
		})
		return nil, err
	}

	page := &ProductPage{Products: products, HasMore: len(products) > 0}
	if len(products) > 0 {
		page.NextCursor = products[len(products)-1].ID
	}
	return page, nil
}

func (r *productRepository) FindByID(id uint) (*model.Product, error) {
	var product model.Product
	if err := r.baseQuery().First(&product, id).Error; err != nil {
		logger.Error("Failed to find product by ID in database", err, map[string]interface{}{
			"id": id,
		})
		return nil, err
	}
	return &product, nil
}

func (r *productRepository) FindByProductID(productID string) (*model.Product, error) {
	var product model.Product
	if err := r.baseQuery().Where("products.product_id = ?", productID).First(&product).Error; err != nil {
		logger.Error("Failed to find product by product id in database", err, map[string]interface{}{
			"product_id": productID,
		})
		return nil, err
	}
	return &product, nil
}

func (r *productRepository) FindByCloverID(cloverID string) (*model.Product, error) {
	var product model.Product
	if err := r.baseQuery().Where("products.external_clover_id = ?", cloverID).First(&product).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *productRepository) FindByIDs(ids []uint) ([]model.Product, error) {
	if len(ids) == 0 {
		return []model.Product{}, nil
	}

	var products []model.Product
	if err := r.baseQuery().Where("products.id IN ?", ids).Find(&products).Error; err != nil {
		logger.Error("Failed to find products by ids in database", err, map[string]interface{}{
			"count": len(ids),
		})
		return nil, err
	}
	return products, nil
}

func (r *productRepository) Update(product *model.Product) error {
	logger.Debug("Updating product in database", map[string]interface{}{
		"id":         product.ID,
		"product_id": product.ProductID,
	})

	if err := r.db.Omit("Variants", "Images", "Categories", "OtherFlavours").
		Save(product).Error; err != nil {
		logger.Error("Failed to update product in database", err, map[string]interface{}{
			"id":         product.ID,
			"product_id": product.ProductID,
		})
		return err
	}
	return nil
}

func (r *productRepository) ReplaceVariants(productID uint, variants []model.ProductVariant) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("product_ref = ?", productID).
			Delete(&model.ProductVariant{}).Error; err != nil {
			return err
		}
		for i := range variants {
			variants[i].ID = 0
			variants[i].ProductRef = productID
			variants[i].Position = i
		}
		if len(variants) == 0 {
			return nil
		}
		return tx.Create(&variants).Error
	})
}

func (r *productRepository) ReplaceImages(productID uint, images []model.ProductImage) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("product_ref = ?", productID).
			Delete(&model.ProductImage{}).Error; err != nil {
			return err
		}
		for i := range images {
			images[i].ID = 0
			images[i].ProductRef = productID
			images[i].Position = i
		}
		if len(images) == 0 {
			return nil
		}
		return tx.Create(&images).Error
	})
}

func (r *productRepository) ReplaceCategories(productID uint, names []string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("product_ref = ?", productID).
			Delete(&model.ProductCategoryRef{}).Error; err != nil {
			return err
		}
		refs := make([]model.ProductCategoryRef, 0, len(names))
		seen := make(map[string]bool, len(names))
		for _, name := range names {
			if name == "" || seen[name] {
				continue
			}
			seen[name] = true
			refs = append(refs, model.ProductCategoryRef{ProductRef: productID, Name: name})
		}
		if len(refs) == 0 {
			return nil
		}
		return tx.Create(&refs).Error
	})
}

func (r *productRepository) UpdateStock(id uint, stockCount int, inStock bool) error {
	logger.Debug("Updating product stock in database", map[string]interface{}{
		"id":          id,
		"stock_count": stockCount,
		"in_stock":    inStock,
	})

	if err := r.db.Model(&model.Product{}).Where("id = ?", id).
		Updates(map[string]interface{}{
			"stock_count": stockCount,
			"in_stock":    inStock,
		}).Error; err != nil {
		logger.Error("Failed to update product stock in database", err, map[string]interface{}{
			"id": id,
		})
		return err
	}
	return nil
}

func (r *productRepository) Delete(id uint) error {
	logger.Debug("Deleting product from database", map[string]interface{}{
		"id": id,
	})

	if err := r.db.Delete(&model.Product{}, id).Error; err != nil {
		logger.Error("Failed to delete product from database", err, map[string]interface{}{
			"id": id,
		})
		return err
	}
	return nil
}

func (r *productRepository) DeleteMany(ids []uint) error {
	if len(ids) == 0 {
		return nil
	}

	logger.Debug("Deleting products from database", map[string]interface{}{
		"count": len(ids),
	})

	if err := r.db.Delete(&model.Product{}, ids).Error; err != nil {
		logger.Error("Failed to delete products from database", err, map[string]interface{}{
			"count": len(ids),
		})
		return err
	}
	return nil
}
