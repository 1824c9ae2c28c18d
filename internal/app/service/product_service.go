package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rknair/cloudpuff-backend/internal/app/model"
	"github.com/rknair/cloudpuff-backend/internal/app/repository"
	"github.com/rknair/cloudpuff-backend/internal/realtime"
	"github.com/rknair/cloudpuff-backend/internal/storage"
	"github.com/rknair/cloudpuff-backend/pkg/logger"
	"github.com/rknair/cloudpuff-backend/pkg/pos/clover"
	"gorm.io/gorm"
)

var (
	ErrProductNotFound = errors.New("product not found")
	ErrProductIDExists = errors.New("product id already exists")
)

// AgeDisclaimer is appended to every generated product description.
const AgeDisclaimer = "WARNING: This product contains nicotine. Nicotine is an addictive chemical. For use by adults 21+ only."

// ValidationError carries per-field messages so the API can return all
// problems in one response instead of the first one found.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for field, msg := range e.Fields {
		parts = append(parts, field+": "+msg)
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

// ProductInput is the normalized write payload for create and update.
// Nil slices mean "leave unchanged" on update; empty slices replace
// with nothing.
type ProductInput struct {
	ProductID      string
	Name           string
	Description    string
	Price          float64
	Flavour        string
	StockCount     *int
	InStock        *bool
	ShowOnPOS      *bool
	Bestseller     *bool
	SweetnessLevel *int
	MintLevel      *int
	Variants       []model.ProductVariant
	Images         []model.ProductImage
	Categories     []string
	OtherFlavours  []uint
}

type ProductService interface {
	AddProduct(ctx context.Context, input ProductInput) (*model.Product, error)
	UpdateProduct(ctx context.Context, id uint, input ProductInput) (*model.Product, error)
	RemoveProduct(ctx context.Context, id uint) error
	RemoveProducts(ctx context.Context, ids []uint) (int, error)
	GetProducts(filter repository.ProductFilter) ([]model.Product, int64, error)
	GetProductFeed(lastID uint, limit int) (*repository.ProductPage, error)
	GetProductByID(id uint) (*model.Product, error)
	GetProductByProductID(productID string) (*model.Product, error)
}

type productService struct {
	productRepo      repository.ProductRepository
	cartRepo         repository.CartRepository
	waitlistRepo     repository.WaitlistRepository
	notificationRepo repository.NotificationRepository
	hub              *realtime.Hub
	pos              *clover.Client
	images           storage.ImageStorage
	pushEnabled      bool
}

func NewProductService(
	productRepo repository.ProductRepository,
	cartRepo repository.CartRepository,
	waitlistRepo repository.WaitlistRepository,
	notificationRepo repository.NotificationRepository,
	hub *realtime.Hub,
	pos *clover.Client,
	images storage.ImageStorage,
	pushEnabled bool,
) ProductService {
	return &productService{
		productRepo:      productRepo,
		cartRepo:         cartRepo,
		waitlistRepo:     waitlistRepo,
		notificationRepo: notificationRepo,
		hub:              hub,
		pos:              pos,
		images:           images,
		pushEnabled:      pushEnabled,
	}
}

func (s *productService) AddProduct(ctx context.Context, input ProductInput) (*model.Product, error) {
	logger.Info("Adding product", map[string]interface{}{
		"product_id": input.ProductID,
		"name":       input.Name,
	})

	if err := validateProductInput(input, true); err != nil {
		logger.Warn("Product validation failed", map[string]interface{}{
			"product_id": input.ProductID,
			"error":      err.Error(),
		})
		return nil, err
	}

	if existing, err := s.productRepo.FindByProductID(input.ProductID); err == nil && existing != nil {
		return nil, ErrProductIDExists
	}

	product := &model.Product{
		ProductID:      input.ProductID,
		Name:           input.Name,
		Description:    input.Description,
		Price:          input.Price,
		Flavour:        input.Flavour,
		InStock:        true,
		ShowOnPOS:      true,
		SweetnessLevel: 5,
		Variants:       input.Variants,
		Images:         input.Images,
	}
	applyOptionalFields(product, input)

	for _, name := range input.Categories {
		if name == "" {
			continue
		}
		product.Categories = append(product.Categories, model.ProductCategoryRef{Name: name})
	}

	if product.Description == "" {
		product.Description = GenerateDescription(product)
	}

	if err := s.productRepo.Create(product); err != nil {
		return nil, err
	}

	if len(input.OtherFlavours) > 0 {
		if err := s.linkOtherFlavours(product, input.OtherFlavours); err != nil {
			logger.Warn("Failed to link flavour alternatives", map[string]interface{}{
				"product_id": product.ID,
				"error":      err.Error(),
			})
		}
	}

	created, err := s.productRepo.FindByID(product.ID)
	if err != nil {
		return nil, err
	}

	s.hub.BroadcastProductEvent(realtime.EventProductCreated, created)
	s.pushToPOS(created, false)

	logger.Info("Product added", map[string]interface{}{
		"id":         created.ID,
		"product_id": created.ProductID,
	})
	return created, nil
}

func (s *productService) UpdateProduct(ctx context.Context, id uint, input ProductInput) (*model.Product, error) {
	logger.Info("Updating product", map[string]interface{}{
		"id": id,
	})

	product, err := s.productRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}

	if err := validateProductInput(input, false); err != nil {
		return nil, err
	}

	previousStock := product.StockCount

	if input.ProductID != "" && input.ProductID != product.ProductID {
		if existing, err := s.productRepo.FindByProductID(input.ProductID); err == nil && existing != nil && existing.ID != id {
			return nil, ErrProductIDExists
		}
		product.ProductID = input.ProductID
	}
	if input.Name != "" {
		product.Name = input.Name
	}
	if input.Description != "" {
		product.Description = input.Description
	}
	if input.Price > 0 {
		product.Price = input.Price
	}
	if input.Flavour != "" {
		product.Flavour = input.Flavour
	}
	applyOptionalFields(product, input)

	if err := s.productRepo.Update(product); err != nil {
		return nil, err
	}

	if input.Variants != nil {
		if err := s.productRepo.ReplaceVariants(id, input.Variants); err != nil {
			return nil, err
		}
	}
	if input.Images != nil {
		previous := product.Images
		if err := s.productRepo.ReplaceImages(id, input.Images); err != nil {
			return nil, err
		}
		s.deleteReplacedImages(ctx, id, previous, input.Images)
	}
	if input.Categories != nil {
		if err := s.productRepo.ReplaceCategories(id, input.Categories); err != nil {
			return nil, err
		}
	}

	updated, err := s.productRepo.FindByID(id)
	if err != nil {
		return nil, err
	}

	// Restock detection: only the zero -> positive transition notifies
	// waitlisted users. Topping up existing stock stays silent.
	if previousStock == 0 && updated.StockCount > 0 {
		s.notifyWaitlist(updated)
	}

	s.hub.BroadcastProductEvent(realtime.EventProductUpdated, updated)
	s.pushToPOS(updated, true)

	return updated, nil
}

func (s *productService) RemoveProduct(ctx context.Context, id uint) error {
	logger.Info("Removing product", map[string]interface{}{
		"id": id,
	})

	product, err := s.productRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProductNotFound
		}
		return err
	}

	// Stored images go first; a failed host delete is logged and skipped
	// so a flaky image host cannot block catalog cleanup.
	for _, img := range product.Images {
		if img.Key == "" {
			continue
		}
		if err := s.images.Delete(ctx, img.Key); err != nil {
			logger.Warn("Failed to delete product image from storage", map[string]interface{}{
				"id":    id,
				"key":   img.Key,
				"error": err.Error(),
			})
		}
	}

	if err := s.cartRepo.PruneProduct(id); err != nil {
		logger.Warn("Failed to prune product from carts", map[string]interface{}{
			"id":    id,
			"error": err.Error(),
		})
	}

	if err := s.waitlistRepo.ClearProduct(s.waitlistRepo.DB(), id); err != nil {
		logger.Warn("Failed to clear waitlist for removed product", map[string]interface{}{
			"id":    id,
			"error": err.Error(),
		})
	}

	if product.ExternalCloverID != "" && s.pushEnabled && s.pos.IsConfigured() {
		if err := s.pos.DeleteItem(ctx, product.ExternalCloverID); err != nil {
			logger.Warn("Failed to delete item on POS", map[string]interface{}{
				"id":        id,
				"clover_id": product.ExternalCloverID,
				"error":     err.Error(),
			})
		}
	}

	if err := s.productRepo.Delete(id); err != nil {
		return err
	}

	s.hub.BroadcastProductEvent(realtime.EventProductRemoved, product)

	logger.Info("Product removed", map[string]interface{}{
		"id":         id,
		"product_id": product.ProductID,
	})
	return nil
}

// RemoveProducts deletes a batch, skipping ids that fail so one bad row
// cannot abort the rest. Returns how many were actually removed.
func (s *productService) RemoveProducts(ctx context.Context, ids []uint) (int, error) {
	removed := 0
	for _, id := range ids {
		if err := s.RemoveProduct(ctx, id); err != nil {
			if !errors.Is(err, ErrProductNotFound) {
				logger.Warn("Failed to remove product in batch", map[string]interface{}{
					"id":    id,
					"error": err.Error(),
				})
			}
			continue
		}
		removed++
	}
	return removed, nil
}

func (s *productService) GetProducts(filter repository.ProductFilter) ([]model.Product, int64, error) {
	return s.productRepo.FindWithFilter(filter)
}

func (s *productService) GetProductFeed(lastID uint, limit int) (*repository.ProductPage, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.productRepo.FindPage(lastID, limit)
}

func (s *productService) GetProductByID(id uint) (*model.Product, error) {
	product, err := s.productRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return product, nil
}

func (s *productService) GetProductByProductID(productID string) (*model.Product, error) {
	product, err := s.productRepo.FindByProductID(productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return product, nil
}

// notifyWaitlist fans a restock out to every waitlisted user. Each user
// is handled in its own transaction: create the notification unless an
// unread one for this product already exists, then drop the waitlist
// entry either way. A failure for one user does not stop the rest.
func (s *productService) notifyWaitlist(product *model.Product) {
	entries, err := s.waitlistRepo.FindByProduct(product.ID)
	if err != nil {
		logger.Error("Failed to load waitlist for restock", err, map[string]interface{}{
			"id": product.ID,
		})
		return
	}
	if len(entries) == 0 {
		return
	}

	logger.Info("Product restocked, notifying waitlist", map[string]interface{}{
		"id":          product.ID,
		"product_id":  product.ProductID,
		"subscribers": len(entries),
	})

	message := fmt.Sprintf("%s is back in stock!", product.Name)

	for _, entry := range entries {
		var created *model.Notification

		err := s.waitlistRepo.DB().Transaction(func(tx *gorm.DB) error {
			hasUnread, err := s.notificationRepo.HasUnreadForProduct(tx, entry.UserID, product.ID)
			if err != nil {
				return err
			}
			if !hasUnread {
				n := &model.Notification{
					UserID:    entry.UserID,
					ProductID: product.ID,
					Message:   message,
				}
				if err := s.notificationRepo.CreateTx(tx, n); err != nil {
					return err
				}
				created = n
			}
			return tx.Where("user_id = ? AND product_id = ?", entry.UserID, product.ID).
				Delete(&model.WaitlistEntry{}).Error
		})
		if err != nil {
			logger.Error("Failed to notify waitlisted user", err, map[string]interface{}{
				"user_id": entry.UserID,
				"id":      product.ID,
			})
			continue
		}

		if created != nil {
			s.hub.SendToUser(entry.UserID, created, product)
		}
	}
}

// deleteReplacedImages removes host objects whose slots were swapped
// out by an update. The rows are already replaced, so a failed host
// delete is only logged.
func (s *productService) deleteReplacedImages(ctx context.Context, id uint, previous, next []model.ProductImage) {
	kept := make(map[string]bool, len(next))
	for _, img := range next {
		if img.Key != "" {
			kept[img.Key] = true
		}
	}
	for _, img := range previous {
		if img.Key == "" || kept[img.Key] {
			continue
		}
		if err := s.images.Delete(ctx, img.Key); err != nil {
			logger.Warn("Failed to delete replaced product image from storage", map[string]interface{}{
				"id":    id,
				"key":   img.Key,
				"error": err.Error(),
			})
		}
	}
}

// pushToPOS mirrors the product onto the POS in the background.
// Failures are logged and never surface to the caller; the local
// catalog stays the source of truth.
func (s *productService) pushToPOS(product *model.Product, update bool) {
	if !s.pushEnabled || !s.pos.IsConfigured() {
		return
	}

	snapshot := *product
	go func() {
		ctx := context.Background()
		item := clover.Item{
			Name:   snapshot.Name,
			Price:  clover.ToMinorUnits(snapshot.Price),
			SKU:    snapshot.ProductID,
			Hidden: !snapshot.ShowOnPOS,
		}

		if update && snapshot.ExternalCloverID != "" {
			if _, err := s.pos.UpdateItem(ctx, snapshot.ExternalCloverID, item); err != nil {
				logger.Warn("Failed to push product update to POS", map[string]interface{}{
					"id":        snapshot.ID,
					"clover_id": snapshot.ExternalCloverID,
					"error":     err.Error(),
				})
				return
			}
			s.syncPOSCategories(ctx, snapshot.ExternalCloverID, snapshot.CategoryNames())
			return
		}

		// A matching SKU may already exist on the merchant; adopt it
		// instead of creating a duplicate.
		itemID := ""
		if existing, err := s.pos.GetItemBySKU(ctx, snapshot.ProductID); err == nil && existing != nil {
			if _, err := s.pos.UpdateItem(ctx, existing.ID, item); err == nil {
				itemID = existing.ID
			}
		}

		if itemID == "" {
			created, err := s.pos.CreateItem(ctx, item)
			if err != nil {
				logger.Warn("Failed to push product to POS", map[string]interface{}{
					"id":    snapshot.ID,
					"error": err.Error(),
				})
				return
			}
			itemID = created.ID
		}

		snapshot.ExternalCloverID = itemID
		if err := s.productRepo.Update(&snapshot); err != nil {
			logger.Warn("Failed to store POS item id", map[string]interface{}{
				"id":        snapshot.ID,
				"clover_id": itemID,
				"error":     err.Error(),
			})
		}

		s.syncPOSCategories(ctx, itemID, snapshot.CategoryNames())
	}()
}

// syncPOSCategories reconciles the merchant's category links for one
// item against the local category names, creating remote categories on
// demand and dropping links the product no longer carries.
func (s *productService) syncPOSCategories(ctx context.Context, itemID string, names []string) {
	remote, err := s.pos.ListCategories(ctx)
	if err != nil {
		logger.Warn("Failed to list POS categories", map[string]interface{}{
			"clover_id": itemID,
			"error":     err.Error(),
		})
		return
	}
	byName := make(map[string]string, len(remote))
	for _, rc := range remote {
		byName[rc.Name] = rc.ID
	}

	desired := make(map[string]bool, len(names))
	for _, name := range names {
		id, ok := byName[name]
		if !ok {
			created, err := s.pos.CreateCategory(ctx, name)
			if err != nil {
				logger.Warn("Failed to create POS category", map[string]interface{}{
					"name":  name,
					"error": err.Error(),
				})
				continue
			}
			id = created.ID
		}
		desired[id] = true
	}

	current := make(map[string]bool)
	if item, err := s.pos.GetItem(ctx, itemID); err == nil && item != nil && item.Categories != nil {
		for _, c := range item.Categories.Elements {
			current[c.ID] = true
		}
	}

	for id := range desired {
		if current[id] {
			continue
		}
		if err := s.pos.AddItemToCategory(ctx, itemID, id); err != nil {
			logger.Warn("Failed to link POS item to category", map[string]interface{}{
				"clover_id":   itemID,
				"category_id": id,
				"error":       err.Error(),
			})
		}
	}
	for id := range current {
		if desired[id] {
			continue
		}
		if err := s.pos.RemoveItemFromCategory(ctx, itemID, id); err != nil {
			logger.Warn("Failed to unlink POS item from category", map[string]interface{}{
				"clover_id":   itemID,
				"category_id": id,
				"error":       err.Error(),
			})
		}
	}
}

func (s *productService) linkOtherFlavours(product *model.Product, ids []uint) error {
	alternatives, err := s.productRepo.FindByIDs(ids)
	if err != nil {
		return err
	}
	links := make([]*model.Product, 0, len(alternatives))
	for i := range alternatives {
		if alternatives[i].ID == product.ID {
			continue
		}
		links = append(links, &alternatives[i])
	}
	product.OtherFlavours = links
	return s.waitlistRepo.DB().Model(product).Association("OtherFlavours").Replace(links)
}

func validateProductInput(input ProductInput, isCreate bool) error {
	fields := make(map[string]string)

	if isCreate {
		if strings.TrimSpace(input.ProductID) == "" {
			fields["productId"] = "product id is required"
		}
		if strings.TrimSpace(input.Name) == "" {
			fields["name"] = "name is required"
		}
		if input.Price <= 0 {
			fields["price"] = "price must be greater than zero"
		}
		if len(input.Images) == 0 {
			fields["images"] = "at least one image is required"
		}
	} else {
		if input.Price < 0 {
			fields["price"] = "price must not be negative"
		}
	}

	if input.StockCount != nil && *input.StockCount < 0 {
		fields["stockCount"] = "stock count must not be negative"
	}
	if input.SweetnessLevel != nil && (*input.SweetnessLevel < 0 || *input.SweetnessLevel > 10) {
		fields["sweetnessLevel"] = "sweetness level must be between 0 and 10"
	}
	if input.MintLevel != nil && (*input.MintLevel < 0 || *input.MintLevel > 10) {
		fields["mintLevel"] = "mint level must be between 0 and 10"
	}
	if len(input.Images) > 4 {
		fields["images"] = "at most four images are allowed"
	}
	for i, v := range input.Variants {
		if strings.TrimSpace(v.Size) == "" {
			fields[fmt.Sprintf("variants[%d].size", i)] = "size is required"
		}
		if v.Price < 0 {
			fields[fmt.Sprintf("variants[%d].price", i)] = "price must not be negative"
		}
	}

	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

func applyOptionalFields(product *model.Product, input ProductInput) {
	if input.StockCount != nil {
		product.StockCount = *input.StockCount
		if input.InStock == nil {
			product.InStock = *input.StockCount > 0
		}
	}
	if input.InStock != nil {
		product.InStock = *input.InStock
	}
	if input.ShowOnPOS != nil {
		product.ShowOnPOS = *input.ShowOnPOS
	}
	if input.Bestseller != nil {
		product.Bestseller = *input.Bestseller
	}
	if input.SweetnessLevel != nil {
		product.SweetnessLevel = *input.SweetnessLevel
	}
	if input.MintLevel != nil {
		product.MintLevel = *input.MintLevel
	}
}

// GenerateDescription builds a storefront description for products
// created without one, folding in whatever the product declares:
// flavour, categories, sizes and taste levels. The age disclaimer is
// always appended.
func GenerateDescription(p *model.Product) string {
	var b strings.Builder
	if p.Flavour != "" {
		fmt.Fprintf(&b, "%s delivers a smooth %s flavour with a satisfying draw from the first puff to the last.", p.Name, strings.ToLower(p.Flavour))
	} else {
		fmt.Fprintf(&b, "%s delivers a smooth, satisfying draw from the first puff to the last.", p.Name)
	}
	if names := p.CategoryNames(); len(names) > 0 {
		fmt.Fprintf(&b, " Part of our %s range.", strings.Join(names, ", "))
	}
	if sizes := p.VariantSizes(); len(sizes) > 0 {
		fmt.Fprintf(&b, " Available in %s.", strings.Join(sizes, ", "))
	}
	if p.SweetnessLevel > 0 {
		fmt.Fprintf(&b, " Sweetness %d/10.", p.SweetnessLevel)
	}
	if p.MintLevel > 0 {
		fmt.Fprintf(&b, " Mint %d/10.", p.MintLevel)
	}
	b.WriteString(" ")
	b.WriteString(AgeDisclaimer)
	return b.String()
}
