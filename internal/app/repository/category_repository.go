package repository

import (
	"github.com/rknair/cloudpuff-backend/internal/app/model"
	"github.com/rknair/cloudpuff-backend/pkg/logger"
	"gorm.io/gorm"
)

type CategoryRepository interface {
	Create(category *model.Category) error
	FindAll() ([]model.Category, error)
	FindAllWithCounts() ([]model.CategoryWithCount, error)
	FindByID(id uint) (*model.Category, error)
	FindByName(name string) (*model.Category, error)
	FindByCloverID(cloverID string) (*model.Category, error)
	Update(category *model.Category) error
	Delete(id uint) error
	DeleteMany(ids []uint) (int64, error)
}

type categoryRepository struct {
	db *gorm.DB
}

func NewCategoryRepository(db *gorm.DB) CategoryRepository {
	return &categoryRepository{db: db}
}

func (r *categoryRepository) Create(category *model.Category) error {
	logger.Debug("Creating category in database", map[string]interface{}{
		"name":        category.Name,
		"category_id": category.CategoryID,
	})

	if err := r.db.Create(category).Error; err != nil {
		logger.Error("Failed to create category in database", err, map[string]interface{}{
			"name": category.Name,
		})
		return err
	}
	return nil
}

func (r *categoryRepository) FindAll() ([]model.Category, error) {
	var categories []model.Category
	if err := r.db.Order("name ASC").Find(&categories).Error; err != nil {
		logger.Error("Failed to find categories in database", err, nil)
		return nil, err
	}
	return categories, nil
}

// FindAllWithCounts lists categories with the number of live products
// referencing each by name. Products keep their references when a
// category row is deleted, so counts are computed against the refs
// table rather than a foreign key.
func (r *categoryRepository) FindAllWithCounts() ([]model.CategoryWithCount, error) {
	var results []model.CategoryWithCount

	err := r.db.Model(&model.Category{}).
		Select("categories.*, COUNT(DISTINCT products.id) AS items").
		Joins("LEFT JOIN product_category_refs ON product_category_refs.name = categories.name").
		Joins("LEFT JOIN products ON products.id = product_category_refs.product_ref AND products.deleted_at IS NULL").
		Group("categories.id").
		Order("categories.name ASC").
		Find(&results).Error
	if err != nil {
		logger.Error("Failed to find categories with counts", err, nil)
		return nil, err
	}

	logger.Debug("Categories found with counts", map[string]interface{}{
		"count": len(results),
	})
	return results, nil
}

func (r *categoryRepository) FindByID(id uint) (*model.Category, error) {
	var category model.Category
	if err := r.db.First(&category, id).Error; err != nil {
		logger.Error("Failed to find category by ID in database", err, map[string]interface{}{
			"id": id,
		})
		return nil, err
	}
	return &category, nil
}

func (r *categoryRepository) FindByName(name string) (*model.Category, error) {
	var category model.Category
	if err := r.db.Where("name = ?", name).First(&category).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *categoryRepository) FindByCloverID(cloverID string) (*model.Category, error) {
	var category model.Category
	if err := r.db.Where("clover_id = ?", cloverID).First(&category).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *categoryRepository) Update(category *model.Category) error {
	logger.Debug("Updating category in database", map[string]interface{}{
		"id":   category.ID,
		"name": category.Name,
	})

	if err := r.db.Save(category).Error; err != nil {
		logger.Error("Failed to update category in database", err, map[string]interface{}{
			"id": category.ID,
		})
		return err
	}
	return nil
}

func (r *categoryRepository) Delete(id uint) error {
	logger.Debug("Deleting category from database", map[string]interface{}{
		"id": id,
	})

	if err := r.db.Delete(&model.Category{}, id).Error; err != nil {
		logger.Error("Failed to delete category from database", err, map[string]interface{}{
			"id": id,
		})
		return err
	}
	return nil
}

// DeleteMany removes the given category rows and reports how many
// existed. Missing ids are not an error.
func (r *categoryRepository) DeleteMany(ids []uint) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	result := r.db.Delete(&model.Category{}, ids)
	if result.Error != nil {
		logger.Error("Failed to delete categories from database", result.Error, map[string]interface{}{
			"ids": ids,
		})
		return 0, result.Error
	}
	return result.RowsAffected, nil
}
