package repository

import (
	"testing"

	"github.com/rknair/cloudpuff-backend/internal/app/model"
	"github.com/rknair/cloudpuff-backend/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupOrderTest(t *testing.T) (*gorm.DB, OrderRepository) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)

	repo := NewOrderRepository(testDB)
	return testDB, repo
}

func makeOrder(userID uint) *model.Order {
	return &model.Order{
		UserID:        userID,
		Phone:         "555-0100",
		Street:        "1 Main St",
		City:          "Springfield",
		State:         "IL",
		Zip:           "62701",
		Country:       "US",
		Amount:        44.98,
		PaymentMethod: model.PaymentCashOnDelivery,
		Status:        model.OrderStatusPending,
		Items: []model.OrderItem{
			{ProductID: 1, Name: "Mango Tango", Quantity: 2, Price: 22.49, Status: model.OrderStatusPending},
		},
	}
}

func TestOrderRepository_CreateAndFind(t *testing.T) {
	testDB, repo := setupOrderTest(t)
	defer db.CleanupTestDB(testDB)

	order := makeOrder(1)
	require.NoError(t, repo.Create(order))
	assert.NotZero(t, order.ID)

	found, err := repo.FindByID(order.ID)
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusPending, found.Status)
	require.Len(t, found.Items, 1)
	assert.Equal(t, "Mango Tango", found.Items[0].Name)
}

func TestOrderRepository_FindByUser(t *testing.T) {
	testDB, repo := setupOrderTest(t)
	defer db.CleanupTestDB(testDB)

	require.NoError(t, repo.Create(makeOrder(1)))
	require.NoError(t, repo.Create(makeOrder(1)))
	require.NoError(t, repo.Create(makeOrder(2)))

	orders, err := repo.FindByUser(1)
	require.NoError(t, err)
	assert.Len(t, orders, 2)

	orders, err = repo.FindByUser(99)
	require.NoError(t, err)
	assert.Empty(t, orders)
}

func TestOrderRepository_UpdateStatus(t *testing.T) {
	testDB, repo := setupOrderTest(t)
	defer db.CleanupTestDB(testDB)

	order := makeOrder(1)
	require.NoError(t, repo.Create(order))

	require.NoError(t, repo.UpdateStatus(order.ID, model.OrderStatusShipped))

	found, err := repo.FindByID(order.ID)
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusShipped, found.Status)

	err = repo.UpdateStatus(9999, model.OrderStatusShipped)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestOrderRepository_UpdateItemStatus(t *testing.T) {
	testDB, repo := setupOrderTest(t)
	defer db.CleanupTestDB(testDB)

	order := makeOrder(1)
	require.NoError(t, repo.Create(order))
	itemID := order.Items[0].ID

	require.NoError(t, repo.UpdateItemStatus(order.ID, itemID, model.OrderStatusDelivered))

	found, err := repo.FindByID(order.ID)
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusDelivered, found.Items[0].Status)

	// Item ids are scoped to their order
	err = repo.UpdateItemStatus(order.ID+1, itemID, model.OrderStatusDelivered)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestOrderRepository_FindByCheckoutSession(t *testing.T) {
	testDB, repo := setupOrderTest(t)
	defer db.CleanupTestDB(testDB)

	order := makeOrder(1)
	order.PaymentMethod = model.PaymentClover
	order.CheckoutSessionID = "cs_abc123"
	require.NoError(t, repo.Create(order))

	found, err := repo.FindByCheckoutSession("cs_abc123")
	require.NoError(t, err)
	assert.Equal(t, order.ID, found.ID)

	_, err = repo.FindByCheckoutSession("cs_missing")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestOrderRepository_MarkPaid(t *testing.T) {
	testDB, repo := setupOrderTest(t)
	defer db.CleanupTestDB(testDB)

	order := makeOrder(1)
	require.NoError(t, repo.Create(order))
	assert.False(t, order.Payment)

	require.NoError(t, repo.MarkPaid(order.ID))

	found, err := repo.FindByID(order.ID)
	require.NoError(t, err)
	assert.True(t, found.Payment)

	err = repo.MarkPaid(9999)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
