package service

import (
	"testing"

	"github.com/rknair/cloudpuff-backend/internal/app/repository"
	"github.com/rknair/cloudpuff-backend/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupCategoryServiceTest(t *testing.T) CategoryService {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)

	return NewCategoryService(repository.NewCategoryRepository(testDB))
}

func TestCategoryService_CreateCategory(t *testing.T) {
	categoryService := setupCategoryServiceTest(t)

	category, err := categoryService.CreateCategory("  Disposables  ")
	require.NoError(t, err)
	assert.Equal(t, "Disposables", category.Name)
	assert.NotEmpty(t, category.CategoryID)

	_, err = categoryService.CreateCategory("Disposables")
	assert.ErrorIs(t, err, ErrCategoryExists)

	_, err = categoryService.CreateCategory("   ")
	assert.ErrorIs(t, err, ErrCategoryName)
}

func TestCategoryService_CreateCategories_SkipsExisting(t *testing.T) {
	categoryService := setupCategoryServiceTest(t)

	_, err := categoryService.CreateCategory("Pods")
	require.NoError(t, err)

	created, err := categoryService.CreateCategories([]string{"Pods", "Disposables", "", "Coils"})
	require.NoError(t, err)
	assert.Len(t, created, 2)

	all, err := categoryService.GetCategories()
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestCategoryService_DeleteCategory(t *testing.T) {
	categoryService := setupCategoryServiceTest(t)

	category, err := categoryService.CreateCategory("Short Lived")
	require.NoError(t, err)

	require.NoError(t, categoryService.DeleteCategory(category.ID))

	err = categoryService.DeleteCategory(9999)
	assert.ErrorIs(t, err, ErrCategoryNotFound)
}

func TestCategoryService_DeleteCategories(t *testing.T) {
	categoryService := setupCategoryServiceTest(t)

	first, err := categoryService.CreateCategory("Disposables")
	require.NoError(t, err)
	second, err := categoryService.CreateCategory("Pods")
	require.NoError(t, err)

	// Unknown ids are skipped, not failed
	deleted, err := categoryService.DeleteCategories([]uint{first.ID, second.ID, 9999})
	require.NoError(t, err)
	assert.Equal(t, 2, deleted)

	all, err := categoryService.GetCategories()
	require.NoError(t, err)
	assert.Empty(t, all)

	deleted, err = categoryService.DeleteCategories(nil)
	require.NoError(t, err)
	assert.Zero(t, deleted)
}
