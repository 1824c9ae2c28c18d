package repository

import (
	"testing"

	"github.com/rknair/cloudpuff-backend/internal/app/model"
	"github.com/rknair/cloudpuff-backend/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupProductTest(t *testing.T) (*gorm.DB, ProductRepository) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)

	repo := NewProductRepository(testDB)
	return testDB, repo
}

func makeProduct(productID, name string, price float64) *model.Product {
	return &model.Product{
		ProductID: productID,
		Name:      name,
		Price:     price,
		InStock:   true,
		ShowOnPOS: true,
	}
}

func TestProductRepository_Create(t *testing.T) {
	testDB, repo := setupProductTest(t)
	defer db.CleanupTestDB(testDB)

	product := &model.Product{
		ProductID:   "VP-001",
		Name:        "Cloud Nine Mango",
		Description: "Mango flavoured disposable",
		Price:       24.99,
		Flavour:     "Mango",
		StockCount:  12,
		InStock:     true,
		Variants: []model.ProductVariant{
			{Size: "10ml", Price: 24.99},
			{Size: "20ml", Price: 39.99},
		},
		Images: []model.ProductImage{
			{URL: "https://cdn.example.com/mango.jpg", Key: "products/mango.jpg"},
		},
		Categories: []model.ProductCategoryRef{
			{Name: "Disposables"},
		},
	}

	err := repo.Create(product)
	assert.NoError(t, err)
	assert.NotZero(t, product.ID)

	found, err := repo.FindByID(product.ID)
	require.NoError(t, err)
	assert.Equal(t, "Cloud Nine Mango", found.Name)
	assert.Len(t, found.Variants, 2)
	assert.Len(t, found.Images, 1)
	assert.Equal(t, []string{"Disposables"}, found.CategoryNames())
}

func TestProductRepository_Create_KeepsExplicitZeroFlags(t *testing.T) {
	testDB, repo := setupProductTest(t)
	defer db.CleanupTestDB(testDB)

	product := makeProduct("VP-050", "Back Room Only", 18.50)
	product.InStock = false
	product.ShowOnPOS = false
	product.SweetnessLevel = 0
	require.NoError(t, repo.Create(product))

	found, err := repo.FindByID(product.ID)
	require.NoError(t, err)
	assert.False(t, found.InStock)
	assert.False(t, found.ShowOnPOS)
	assert.Zero(t, found.SweetnessLevel)
}

func TestProductRepository_FindByProductID(t *testing.T) {
	testDB, repo := setupProductTest(t)
	defer db.CleanupTestDB(testDB)

	product := makeProduct("VP-002", "Icy Mint", 19.99)
	require.NoError(t, repo.Create(product))

	found, err := repo.FindByProductID("VP-002")
	require.NoError(t, err)
	assert.Equal(t, product.ID, found.ID)

	_, err = repo.FindByProductID("VP-999")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestProductRepository_FindByCloverID(t *testing.T) {
	testDB, repo := setupProductTest(t)
	defer db.CleanupTestDB(testDB)

	product := makeProduct("VP-003", "Berry Blast", 22.50)
	product.ExternalCloverID = "CLV123"
	require.NoError(t, repo.Create(product))

	found, err := repo.FindByCloverID("CLV123")
	require.NoError(t, err)
	assert.Equal(t, "VP-003", found.ProductID)

	_, err = repo.FindByCloverID("NOPE")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestProductRepository_FindWithFilter(t *testing.T) {
	testDB, repo := setupProductTest(t)
	defer db.CleanupTestDB(testDB)

	mango := makeProduct("VP-010", "Mango Tango", 24.99)
	mango.Categories = []model.ProductCategoryRef{{Name: "Disposables"}}
	require.NoError(t, repo.Create(mango))

	mint := makeProduct("VP-011", "Arctic Mint", 19.99)
	mint.InStock = false
	mint.Categories = []model.ProductCategoryRef{{Name: "Pods"}}
	require.NoError(t, repo.Create(mint))

	best := makeProduct("VP-012", "House Blend", 29.99)
	best.Bestseller = true
	require.NoError(t, repo.Create(best))

	t.Run("Search by name", func(t *testing.T) {
		products, total, err := repo.FindWithFilter(ProductFilter{Search: "Mango"})
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		require.Len(t, products, 1)
		assert.Equal(t, "Mango Tango", products[0].Name)
	})

	t.Run("Search ignores case", func(t *testing.T) {
		products, total, err := repo.FindWithFilter(ProductFilter{Search: "MANGO"})
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		require.Len(t, products, 1)
		assert.Equal(t, "Mango Tango", products[0].Name)
	})

	t.Run("Search by category name", func(t *testing.T) {
		products, total, err := repo.FindWithFilter(ProductFilter{Search: "Pods"})
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		require.Len(t, products, 1)
		assert.Equal(t, "Arctic Mint", products[0].Name)
	})

	t.Run("Category filter", func(t *testing.T) {
		products, _, err := repo.FindWithFilter(ProductFilter{Category: "Disposables"})
		require.NoError(t, err)
		require.Len(t, products, 1)
		assert.Equal(t, "Mango Tango", products[0].Name)
	})

	t.Run("In stock filter", func(t *testing.T) {
		inStock := true
		products, total, err := repo.FindWithFilter(ProductFilter{InStock: &inStock})
		require.NoError(t, err)
		assert.Equal(t, int64(2), total)
		assert.Len(t, products, 2)
	})

	t.Run("Bestseller filter", func(t *testing.T) {
		bestseller := true
		products, _, err := repo.FindWithFilter(ProductFilter{Bestseller: &bestseller})
		require.NoError(t, err)
		require.Len(t, products, 1)
		assert.Equal(t, "House Blend", products[0].Name)
	})

	t.Run("Limit returns partial page with full total", func(t *testing.T) {
		products, total, err := repo.FindWithFilter(ProductFilter{Limit: 2})
		require.NoError(t, err)
		assert.Equal(t, int64(3), total)
		assert.Len(t, products, 2)
	})
}

func TestProductRepository_FindPage(t *testing.T) {
	testDB, repo := setupProductTest(t)
	defer db.CleanupTestDB(testDB)

	ids := make([]uint, 0, 5)
	for _, pid := range []string{"VP-020", "VP-021", "VP-022", "VP-023", "VP-024"} {
		p := makeProduct(pid, "Feed "+pid, 10)
		require.NoError(t, repo.Create(p))
		ids = append(ids, p.ID)
	}

	// First page starts from the top, newest id first
	page, err := repo.FindPage(0, 2)
	require.NoError(t, err)
	require.Len(t, page.Products, 2)
	assert.Equal(t, ids[4], page.Products[0].ID)
	assert.Equal(t, ids[3], page.Products[1].ID)
	assert.Equal(t, ids[3], page.NextCursor)
	assert.True(t, page.HasMore)

	// Keyset continues strictly below the cursor
	page, err = repo.FindPage(page.NextCursor, 2)
	require.NoError(t, err)
	require.Len(t, page.Products, 2)
	assert.Equal(t, ids[2], page.Products[0].ID)
	assert.Equal(t, ids[1], page.Products[1].ID)

	// Final short page still reports more; the empty page ends it
	page, err = repo.FindPage(page.NextCursor, 2)
	require.NoError(t, err)
	require.Len(t, page.Products, 1)
	assert.True(t, page.HasMore)

	page, err = repo.FindPage(page.NextCursor, 2)
	require.NoError(t, err)
	assert.Empty(t, page.Products)
	assert.False(t, page.HasMore)
	assert.Zero(t, page.NextCursor)
}

func TestProductRepository_ReplaceVariants(t *testing.T) {
	testDB, repo := setupProductTest(t)
	defer db.CleanupTestDB(testDB)

	product := makeProduct("VP-030", "Switchable", 15)
	product.Variants = []model.ProductVariant{{Size: "10ml", Price: 15}}
	require.NoError(t, repo.Create(product))

	err := repo.ReplaceVariants(product.ID, []model.ProductVariant{
		{Size: "20ml", Price: 25},
		{Size: "30ml", Price: 35},
	})
	require.NoError(t, err)

	found, err := repo.FindByID(product.ID)
	require.NoError(t, err)
	require.Len(t, found.Variants, 2)
	assert.Equal(t, "20ml", found.Variants[0].Size)
	assert.Equal(t, "30ml", found.Variants[1].Size)

	// Empty replacement clears everything
	require.NoError(t, repo.ReplaceVariants(product.ID, nil))
	found, err = repo.FindByID(product.ID)
	require.NoError(t, err)
	assert.Empty(t, found.Variants)
}

func TestProductRepository_ReplaceCategories(t *testing.T) {
	testDB, repo := setupProductTest(t)
	defer db.CleanupTestDB(testDB)

	product := makeProduct("VP-031", "Categorized", 15)
	require.NoError(t, repo.Create(product))

	err := repo.ReplaceCategories(product.ID, []string{"Pods", "Pods", "", "Disposables"})
	require.NoError(t, err)

	found, err := repo.FindByID(product.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"Pods", "Disposables"}, found.CategoryNames())
}

func TestProductRepository_UpdateStock(t *testing.T) {
	testDB, repo := setupProductTest(t)
	defer db.CleanupTestDB(testDB)

	product := makeProduct("VP-032", "Stocked", 15)
	product.StockCount = 0
	product.InStock = false
	require.NoError(t, repo.Create(product))

	require.NoError(t, repo.UpdateStock(product.ID, 7, true))

	found, err := repo.FindByID(product.ID)
	require.NoError(t, err)
	assert.Equal(t, 7, found.StockCount)
	assert.True(t, found.InStock)
}

func TestProductRepository_DeleteMany(t *testing.T) {
	testDB, repo := setupProductTest(t)
	defer db.CleanupTestDB(testDB)

	first := makeProduct("VP-040", "First", 10)
	second := makeProduct("VP-041", "Second", 10)
	third := makeProduct("VP-042", "Third", 10)
	for _, p := range []*model.Product{first, second, third} {
		require.NoError(t, repo.Create(p))
	}

	require.NoError(t, repo.DeleteMany([]uint{first.ID, third.ID}))

	remaining, err := repo.FindAll()
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, second.ID, remaining[0].ID)
}
