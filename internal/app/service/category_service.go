package service

import (
	"errors"
	"strings"

	"github.com/rknair/cloudpuff-backend/internal/app/model"
	"github.com/rknair/cloudpuff-backend/internal/app/repository"
	"github.com/rknair/cloudpuff-backend/pkg/logger"
	"github.com/rknair/cloudpuff-backend/pkg/util"
	"gorm.io/gorm"
)

var (
	ErrCategoryNotFound = errors.New("category not found")
	ErrCategoryExists   = errors.New("category already exists")
	ErrCategoryName     = errors.New("category name is required")
)

type CategoryService interface {
	CreateCategory(name string) (*model.Category, error)
	CreateCategories(names []string) ([]model.Category, error)
	GetCategories() ([]model.CategoryWithCount, error)
	DeleteCategory(id uint) error
	DeleteCategories(ids []uint) (int, error)
}

type categoryService struct {
	categoryRepo repository.CategoryRepository
}

func NewCategoryService(categoryRepo repository.CategoryRepository) CategoryService {
	return &categoryService{categoryRepo: categoryRepo}
}

func (s *categoryService) CreateCategory(name string) (*model.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrCategoryName
	}

	logger.Info("Creating category", map[string]interface{}{
		"name": name,
	})

	if existing, err := s.categoryRepo.FindByName(name); err == nil && existing != nil {
		return nil, ErrCategoryExists
	}

	category := &model.Category{
		Name:       name,
		CategoryID: util.GenerateOpaqueID(),
	}
	if err := s.categoryRepo.Create(category); err != nil {
		return nil, err
	}
	return category, nil
}

// CreateCategories creates the given names in one call, skipping names
// that already exist instead of failing the batch.
func (s *categoryService) CreateCategories(names []string) ([]model.Category, error) {
	created := make([]model.Category, 0, len(names))
	for _, name := range names {
		category, err := s.CreateCategory(name)
		if err != nil {
			if errors.Is(err, ErrCategoryExists) || errors.Is(err, ErrCategoryName) {
				continue
			}
			return created, err
		}
		created = append(created, *category)
	}
	return created, nil
}

func (s *categoryService) GetCategories() ([]model.CategoryWithCount, error) {
	return s.categoryRepo.FindAllWithCounts()
}

// DeleteCategory removes the category row only. Products referencing
// the name keep their refs, so recreating the category restores the
// grouping.
func (s *categoryService) DeleteCategory(id uint) error {
	if _, err := s.categoryRepo.FindByID(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCategoryNotFound
		}
		return err
	}
	return s.categoryRepo.Delete(id)
}

// DeleteCategories removes the given rows and returns how many were
// deleted. Unknown ids are skipped, not failed.
func (s *categoryService) DeleteCategories(ids []uint) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	logger.Info("Deleting categories", map[string]interface{}{
		"count": len(ids),
	})

	deleted, err := s.categoryRepo.DeleteMany(ids)
	if err != nil {
		return 0, err
	}
	return int(deleted), nil
}
