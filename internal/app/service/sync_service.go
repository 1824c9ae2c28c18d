package service

import (
	"context"
	"errors"

	"github.com/rknair/cloudpuff-backend/internal/app/model"
	"github.com/rknair/cloudpuff-backend/internal/app/repository"
	"github.com/rknair/cloudpuff-backend/pkg/logger"
	"github.com/rknair/cloudpuff-backend/pkg/pos/clover"
	"github.com/rknair/cloudpuff-backend/pkg/util"
	"gorm.io/gorm"
)

// SyncResult summarizes one reconciliation pass
type SyncResult struct {
	Created int `json:"created"`
	Updated int `json:"updated"`
	Failed  int `json:"failed"`
	Total   int `json:"total"`
}

type SyncService interface {
	SyncProducts(ctx context.Context) (*SyncResult, error)
	SyncCategories(ctx context.Context) (*SyncResult, error)
	SyncAll(ctx context.Context) (*SyncResult, error)
}

type syncService struct {
	productRepo  repository.ProductRepository
	categoryRepo repository.CategoryRepository
	pos          *clover.Client
}

func NewSyncService(
	productRepo repository.ProductRepository,
	categoryRepo repository.CategoryRepository,
	pos *clover.Client,
) SyncService {
	return &syncService{
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
		pos:          pos,
	}
}

// SyncProducts pulls the merchant inventory and upserts it locally,
// keyed by the POS item id. Items that fail are logged and skipped so
// one bad record cannot abort the pass. Running twice with an unchanged
// remote catalog is a no-op apart from timestamps.
func (s *syncService) SyncProducts(ctx context.Context) (*SyncResult, error) {
	logger.Info("Starting product sync from POS", nil)

	items, err := s.pos.ListItems(ctx)
	if err != nil {
		logger.Error("Failed to list POS items", err, nil)
		return nil, err
	}

	result := &SyncResult{Total: len(items)}

	for _, item := range items {
		if item.ID == "" {
			result.Failed++
			continue
		}

		created, err := s.upsertProduct(&item)
		if err != nil {
			result.Failed++
			logger.Warn("Failed to sync POS item", map[string]interface{}{
				"clover_id": item.ID,
				"name":      item.Name,
				"error":     err.Error(),
			})
			continue
		}

		if created {
			result.Created++
		} else {
			result.Updated++
		}
	}

	logger.Info("Product sync finished", map[string]interface{}{
		"total":   result.Total,
		"created": result.Created,
		"updated": result.Updated,
		"failed":  result.Failed,
	})
	return result, nil
}

func (s *syncService) upsertProduct(item *clover.Item) (bool, error) {
	existing, err := s.productRepo.FindByCloverID(item.ID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, err
	}

	if existing != nil {
		existing.Name = item.Name
		existing.Price = clover.FromMinorUnits(item.Price)
		existing.ShowOnPOS = !item.Hidden
		if err := s.productRepo.Update(existing); err != nil {
			return false, err
		}
		return false, s.applyItemCategories(existing, item)
	}

	productID := item.SKU
	if productID == "" {
		productID = "CLV-" + item.ID
	}

	// A locally created product may already carry this SKU; adopt it
	// instead of creating a duplicate.
	if local, err := s.productRepo.FindByProductID(productID); err == nil && local != nil {
		local.ExternalCloverID = item.ID
		local.Name = item.Name
		local.Price = clover.FromMinorUnits(item.Price)
		local.ShowOnPOS = !item.Hidden
		if err := s.productRepo.Update(local); err != nil {
			return false, err
		}
		return false, s.applyItemCategories(local, item)
	}

	product := &model.Product{
		ProductID:        productID,
		ExternalCloverID: item.ID,
		Name:             item.Name,
		Price:            clover.FromMinorUnits(item.Price),
		ShowOnPOS:        !item.Hidden,
		InStock:          true,
		SweetnessLevel:   5,
	}
	product.Description = GenerateDescription(product)
	if err := s.productRepo.Create(product); err != nil {
		return false, err
	}
	return true, s.applyItemCategories(product, item)
}

func (s *syncService) applyItemCategories(product *model.Product, item *clover.Item) error {
	if item.Categories == nil || len(item.Categories.Elements) == 0 {
		return nil
	}
	names := make([]string, 0, len(item.Categories.Elements))
	for _, c := range item.Categories.Elements {
		if c.Name != "" {
			names = append(names, c.Name)
		}
	}
	return s.productRepo.ReplaceCategories(product.ID, names)
}

// SyncCategories pulls the merchant category list and upserts it
// locally, keyed by the POS category id with a name-based fallback for
// categories created locally first.
func (s *syncService) SyncCategories(ctx context.Context) (*SyncResult, error) {
	logger.Info("Starting category sync from POS", nil)

	remote, err := s.pos.ListCategories(ctx)
	if err != nil {
		logger.Error("Failed to list POS categories", err, nil)
		return nil, err
	}

	result := &SyncResult{Total: len(remote)}

	for _, rc := range remote {
		if rc.ID == "" || rc.Name == "" {
			result.Failed++
			continue
		}

		if existing, err := s.categoryRepo.FindByCloverID(rc.ID); err == nil && existing != nil {
			if existing.Name != rc.Name {
				existing.Name = rc.Name
				if err := s.categoryRepo.Update(existing); err != nil {
					result.Failed++
					continue
				}
			}
			result.Updated++
			continue
		}

		if byName, err := s.categoryRepo.FindByName(rc.Name); err == nil && byName != nil {
			byName.CloverID = rc.ID
			if err := s.categoryRepo.Update(byName); err != nil {
				result.Failed++
				continue
			}
			result.Updated++
			continue
		}

		category := &model.Category{
			Name:       rc.Name,
			CategoryID: util.GenerateOpaqueID(),
			CloverID:   rc.ID,
		}
		if err := s.categoryRepo.Create(category); err != nil {
			result.Failed++
			logger.Warn("Failed to sync POS category", map[string]interface{}{
				"clover_id": rc.ID,
				"name":      rc.Name,
				"error":     err.Error(),
			})
			continue
		}
		result.Created++
	}

	logger.Info("Category sync finished", map[string]interface{}{
		"total":   result.Total,
		"created": result.Created,
		"updated": result.Updated,
		"failed":  result.Failed,
	})
	return result, nil
}

// SyncAll runs categories first so product category refs resolve to
// rows that exist, then products.
func (s *syncService) SyncAll(ctx context.Context) (*SyncResult, error) {
	catResult, err := s.SyncCategories(ctx)
	if err != nil {
		return nil, err
	}

	prodResult, err := s.SyncProducts(ctx)
	if err != nil {
		return nil, err
	}

	return &SyncResult{
		Created: catResult.Created + prodResult.Created,
		Updated: catResult.Updated + prodResult.Updated,
		Failed:  catResult.Failed + prodResult.Failed,
		Total:   catResult.Total + prodResult.Total,
	}, nil
}
