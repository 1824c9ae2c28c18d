package repository

import (
	"testing"

	"github.com/rknair/cloudpuff-backend/internal/app/model"
	"github.com/rknair/cloudpuff-backend/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupCartTest(t *testing.T) (*gorm.DB, CartRepository) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)

	repo := NewCartRepository(testDB)
	return testDB, repo
}

func TestCartRepository_UpsertMergesSameLine(t *testing.T) {
	testDB, repo := setupCartTest(t)
	defer db.CleanupTestDB(testDB)

	first := &model.CartItem{UserID: 1, ProductID: 10, Quantity: 2, VariantSize: "10ml"}
	require.NoError(t, repo.Upsert(first))

	second := &model.CartItem{UserID: 1, ProductID: 10, Quantity: 3, VariantSize: "10ml"}
	require.NoError(t, repo.Upsert(second))

	items, err := repo.FindByUser(1)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 5, items[0].Quantity)
}

func TestCartRepository_UpsertKeepsDistinctSizes(t *testing.T) {
	testDB, repo := setupCartTest(t)
	defer db.CleanupTestDB(testDB)

	require.NoError(t, repo.Upsert(&model.CartItem{UserID: 1, ProductID: 10, Quantity: 1, VariantSize: "10ml"}))
	require.NoError(t, repo.Upsert(&model.CartItem{UserID: 1, ProductID: 10, Quantity: 1, VariantSize: "20ml"}))

	items, err := repo.FindByUser(1)
	require.NoError(t, err)
	assert.Len(t, items, 2)
}

func TestCartRepository_UpdateQuantity(t *testing.T) {
	testDB, repo := setupCartTest(t)
	defer db.CleanupTestDB(testDB)

	item := &model.CartItem{UserID: 1, ProductID: 10, Quantity: 1}
	require.NoError(t, repo.Upsert(item))

	require.NoError(t, repo.UpdateQuantity(item.ID, 4))

	items, err := repo.FindByUser(1)
	require.NoError(t, err)
	assert.Equal(t, 4, items[0].Quantity)

	err = repo.UpdateQuantity(9999, 4)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestCartRepository_RemoveIsOwnerScoped(t *testing.T) {
	testDB, repo := setupCartTest(t)
	defer db.CleanupTestDB(testDB)

	item := &model.CartItem{UserID: 1, ProductID: 10, Quantity: 1}
	require.NoError(t, repo.Upsert(item))

	// Another user's id does not reach this row
	err := repo.Remove(2, item.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	require.NoError(t, repo.Remove(1, item.ID))

	items, err := repo.FindByUser(1)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestCartRepository_Clear(t *testing.T) {
	testDB, repo := setupCartTest(t)
	defer db.CleanupTestDB(testDB)

	require.NoError(t, repo.Upsert(&model.CartItem{UserID: 1, ProductID: 10, Quantity: 1}))
	require.NoError(t, repo.Upsert(&model.CartItem{UserID: 1, ProductID: 11, Quantity: 1}))
	require.NoError(t, repo.Upsert(&model.CartItem{UserID: 2, ProductID: 10, Quantity: 1}))

	require.NoError(t, repo.Clear(1))

	items, err := repo.FindByUser(1)
	require.NoError(t, err)
	assert.Empty(t, items)

	items, err = repo.FindByUser(2)
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestCartRepository_PruneProduct(t *testing.T) {
	testDB, repo := setupCartTest(t)
	defer db.CleanupTestDB(testDB)

	require.NoError(t, repo.Upsert(&model.CartItem{UserID: 1, ProductID: 10, Quantity: 1}))
	require.NoError(t, repo.Upsert(&model.CartItem{UserID: 2, ProductID: 10, Quantity: 2}))
	require.NoError(t, repo.Upsert(&model.CartItem{UserID: 2, ProductID: 11, Quantity: 1}))

	require.NoError(t, repo.PruneProduct(10))

	items, err := repo.FindByUser(1)
	require.NoError(t, err)
	assert.Empty(t, items)

	items, err = repo.FindByUser(2)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, uint(11), items[0].ProductID)
}
