package service

import (
	"testing"

	"github.com/rknair/cloudpuff-backend/internal/app/model"
	"github.com/rknair/cloudpuff-backend/internal/app/repository"
	"github.com/rknair/cloudpuff-backend/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupCartServiceTest(t *testing.T) (CartService, repository.ProductRepository) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)

	cartRepo := repository.NewCartRepository(testDB)
	productRepo := repository.NewProductRepository(testDB)
	return NewCartService(cartRepo, productRepo), productRepo
}

func cartTestProduct(t *testing.T, productRepo repository.ProductRepository, variants ...model.ProductVariant) *model.Product {
	product := &model.Product{
		ProductID: "VP-CART",
		Name:      "Cart Fodder",
		Price:     12.50,
		InStock:   true,
		Variants:  variants,
	}
	require.NoError(t, productRepo.Create(product))
	return product
}

func TestCartService_AddToCart(t *testing.T) {
	cartService, productRepo := setupCartServiceTest(t)
	product := cartTestProduct(t, productRepo)

	item, err := cartService.AddToCart(1, product.ID, 2, "")
	require.NoError(t, err)
	assert.Equal(t, 2, item.Quantity)

	// Same line merges instead of duplicating
	item, err = cartService.AddToCart(1, product.ID, 3, "")
	require.NoError(t, err)
	assert.Equal(t, 5, item.Quantity)

	items, err := cartService.GetCart(1)
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestCartService_AddToCart_UnknownProduct(t *testing.T) {
	cartService, _ := setupCartServiceTest(t)

	_, err := cartService.AddToCart(1, 9999, 1, "")
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestCartService_AddToCart_SizeValidation(t *testing.T) {
	cartService, productRepo := setupCartServiceTest(t)
	product := cartTestProduct(t, productRepo, model.ProductVariant{Size: "10ml", Price: 12.50})

	_, err := cartService.AddToCart(1, product.ID, 1, "99ml")
	assert.ErrorIs(t, err, ErrSizeNotAvailable)

	item, err := cartService.AddToCart(1, product.ID, 1, "10ml")
	require.NoError(t, err)
	assert.Equal(t, "10ml", item.VariantSize)
}

func TestCartService_AddToCart_DefaultsQuantity(t *testing.T) {
	cartService, productRepo := setupCartServiceTest(t)
	product := cartTestProduct(t, productRepo)

	item, err := cartService.AddToCart(1, product.ID, 0, "")
	require.NoError(t, err)
	assert.Equal(t, 1, item.Quantity)
}

func TestCartService_UpdateQuantity(t *testing.T) {
	cartService, productRepo := setupCartServiceTest(t)
	product := cartTestProduct(t, productRepo)

	item, err := cartService.AddToCart(1, product.ID, 1, "")
	require.NoError(t, err)

	require.NoError(t, cartService.UpdateQuantity(1, item.ID, 4))

	items, err := cartService.GetCart(1)
	require.NoError(t, err)
	assert.Equal(t, 4, items[0].Quantity)

	// Another user cannot touch the line
	err = cartService.UpdateQuantity(2, item.ID, 4)
	assert.ErrorIs(t, err, ErrCartItemNotFound)

	err = cartService.UpdateQuantity(1, item.ID, 0)
	assert.ErrorIs(t, err, ErrInvalidQuantity)
}

func TestCartService_RemoveFromCart(t *testing.T) {
	cartService, productRepo := setupCartServiceTest(t)
	product := cartTestProduct(t, productRepo)

	item, err := cartService.AddToCart(1, product.ID, 1, "")
	require.NoError(t, err)

	err = cartService.RemoveFromCart(2, item.ID)
	assert.ErrorIs(t, err, ErrCartItemNotFound)

	require.NoError(t, cartService.RemoveFromCart(1, item.ID))

	items, err := cartService.GetCart(1)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestCartService_ClearCart(t *testing.T) {
	cartService, productRepo := setupCartServiceTest(t)
	product := cartTestProduct(t, productRepo)

	_, err := cartService.AddToCart(1, product.ID, 1, "")
	require.NoError(t, err)

	require.NoError(t, cartService.ClearCart(1))

	items, err := cartService.GetCart(1)
	require.NoError(t, err)
	assert.Empty(t, items)
}
