package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rknair/cloudpuff-backend/internal/app/model"
	"github.com/rknair/cloudpuff-backend/internal/app/repository"
	"github.com/rknair/cloudpuff-backend/internal/db"
	"github.com/rknair/cloudpuff-backend/pkg/pos/clover"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type syncServiceFixture struct {
	svc          SyncService
	productRepo  repository.ProductRepository
	categoryRepo repository.CategoryRepository
}

// newSyncFixture points the POS client at a stub merchant API serving
// the given inventory.
func newSyncFixture(t *testing.T, items []clover.Item, categories []clover.Category) *syncServiceFixture {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/MID123/items":
			json.NewEncoder(w).Encode(clover.ItemList{Elements: items})
		case "/MID123/categories":
			json.NewEncoder(w).Encode(clover.CategoryList{Elements: categories})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(server.Close)

	pos := clover.NewClient(clover.Config{
		MerchantID: "MID123",
		APIToken:   "tok_test",
		BaseURL:    server.URL,
	})

	productRepo := repository.NewProductRepository(testDB)
	categoryRepo := repository.NewCategoryRepository(testDB)
	return &syncServiceFixture{
		svc:          NewSyncService(productRepo, categoryRepo, pos),
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
	}
}

func TestSyncService_SyncProducts_CreatesFromRemote(t *testing.T) {
	f := newSyncFixture(t, []clover.Item{
		{ID: "A1", Name: "Mango Tango", Price: 2499, SKU: "VP-001"},
		{ID: "A2", Name: "Register Only", Price: 1500, Hidden: true},
	}, nil)

	result, err := f.svc.SyncProducts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, result.Total)
	assert.Equal(t, 2, result.Created)
	assert.Zero(t, result.Updated)
	assert.Zero(t, result.Failed)

	product, err := f.productRepo.FindByCloverID("A1")
	require.NoError(t, err)
	assert.Equal(t, "VP-001", product.ProductID)
	assert.InDelta(t, 24.99, product.Price, 0.001)
	assert.True(t, product.ShowOnPOS)
	assert.Contains(t, product.Description, AgeDisclaimer)

	// No SKU falls back to a POS-derived product id; hidden maps inverted
	hidden, err := f.productRepo.FindByCloverID("A2")
	require.NoError(t, err)
	assert.Equal(t, "CLV-A2", hidden.ProductID)
	assert.False(t, hidden.ShowOnPOS)
}

func TestSyncService_SyncProducts_SecondRunUpdates(t *testing.T) {
	f := newSyncFixture(t, []clover.Item{
		{ID: "A1", Name: "Mango Tango", Price: 2499, SKU: "VP-001"},
	}, nil)
	ctx := context.Background()

	result, err := f.svc.SyncProducts(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Created)

	result, err = f.svc.SyncProducts(ctx)
	require.NoError(t, err)
	assert.Zero(t, result.Created)
	assert.Equal(t, 1, result.Updated)

	products, err := f.productRepo.FindAll()
	require.NoError(t, err)
	assert.Len(t, products, 1)
}

func TestSyncService_SyncProducts_AdoptsLocalBySKU(t *testing.T) {
	f := newSyncFixture(t, []clover.Item{
		{ID: "A1", Name: "Mango Tango (POS)", Price: 2599, SKU: "VP-001"},
	}, nil)

	local := &model.Product{ProductID: "VP-001", Name: "Mango Tango", Price: 24.99, InStock: true}
	require.NoError(t, f.productRepo.Create(local))

	result, err := f.svc.SyncProducts(context.Background())
	require.NoError(t, err)
	assert.Zero(t, result.Created)
	assert.Equal(t, 1, result.Updated)

	adopted, err := f.productRepo.FindByID(local.ID)
	require.NoError(t, err)
	assert.Equal(t, "A1", adopted.ExternalCloverID)
	assert.Equal(t, "Mango Tango (POS)", adopted.Name)
	assert.InDelta(t, 25.99, adopted.Price, 0.001)
}

func TestSyncService_SyncProducts_AppliesCategories(t *testing.T) {
	f := newSyncFixture(t, []clover.Item{
		{
			ID: "A1", Name: "Mango Tango", Price: 2499, SKU: "VP-001",
			Categories: &clover.CategoryList{Elements: []clover.Category{
				{ID: "C1", Name: "Disposables"},
			}},
		},
	}, nil)

	_, err := f.svc.SyncProducts(context.Background())
	require.NoError(t, err)

	product, err := f.productRepo.FindByCloverID("A1")
	require.NoError(t, err)
	assert.Equal(t, []string{"Disposables"}, product.CategoryNames())
}

func TestSyncService_SyncCategories(t *testing.T) {
	f := newSyncFixture(t, nil, []clover.Category{
		{ID: "C1", Name: "Disposables"},
		{ID: "C2", Name: "Pods"},
	})
	ctx := context.Background()

	// A category created locally first gets adopted by name
	require.NoError(t, f.categoryRepo.Create(&model.Category{Name: "Pods", CategoryID: "LOCAL1"}))

	result, err := f.svc.SyncCategories(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Created)
	assert.Equal(t, 1, result.Updated)

	adopted, err := f.categoryRepo.FindByName("Pods")
	require.NoError(t, err)
	assert.Equal(t, "C2", adopted.CloverID)
	assert.Equal(t, "LOCAL1", adopted.CategoryID)

	// Second pass is pure updates
	result, err = f.svc.SyncCategories(ctx)
	require.NoError(t, err)
	assert.Zero(t, result.Created)
	assert.Equal(t, 2, result.Updated)
}

func TestSyncService_SyncAll_CombinesResults(t *testing.T) {
	f := newSyncFixture(t,
		[]clover.Item{{ID: "A1", Name: "Mango Tango", Price: 2499, SKU: "VP-001"}},
		[]clover.Category{{ID: "C1", Name: "Disposables"}},
	)

	result, err := f.svc.SyncAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, result.Total)
	assert.Equal(t, 2, result.Created)
	assert.Zero(t, result.Failed)
}

func TestSyncService_UnconfiguredIsNoop(t *testing.T) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)

	svc := NewSyncService(
		repository.NewProductRepository(testDB),
		repository.NewCategoryRepository(testDB),
		clover.NewClient(clover.Config{}),
	)

	result, err := svc.SyncAll(context.Background())
	require.NoError(t, err)
	assert.Zero(t, result.Total)
}
