package clover

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(baseURL string) Config {
	return Config{
		MerchantID: "MID123",
		APIToken:   "tok_test",
		BaseURL:    baseURL,
	}
}

func TestToMinorUnits(t *testing.T) {
	tests := []struct {
		amount float64
		want   int64
	}{
		{amount: 24.99, want: 2499},
		{amount: 19.99, want: 1999},
		{amount: 10, want: 1000},
		{amount: 0, want: 0},
		{amount: 0.005, want: 1},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ToMinorUnits(tt.amount), "amount %v", tt.amount)
	}

	assert.InDelta(t, 24.99, FromMinorUnits(2499), 0.0001)
}

func TestClient_Unconfigured(t *testing.T) {
	client := NewClient(Config{})
	ctx := context.Background()

	assert.False(t, client.IsConfigured())

	// Reads degrade to empty results
	items, err := client.ListItems(ctx)
	require.NoError(t, err)
	assert.Empty(t, items)

	categories, err := client.ListCategories(ctx)
	require.NoError(t, err)
	assert.Empty(t, categories)

	item, err := client.GetItemBySKU(ctx, "VP-001")
	require.NoError(t, err)
	assert.Nil(t, item)

	// Writes refuse outright
	_, err = client.CreateItem(ctx, Item{Name: "X", Price: 100})
	assert.ErrorIs(t, err, ErrNotConfigured)

	err = client.DeleteItem(ctx, "ABC")
	assert.ErrorIs(t, err, ErrNotConfigured)

	_, err = client.ChargeToken(ctx, ChargeRequest{Source: "tok", Amount: 100})
	assert.ErrorIs(t, err, ErrNotConfigured)

	_, err = client.CreateCheckoutSession(ctx, CheckoutRequest{})
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestClient_ListItems(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/MID123/items", r.URL.Path)
		assert.Equal(t, "categories", r.URL.Query().Get("expand"))
		assert.Equal(t, "Bearer tok_test", r.Header.Get("Authorization"))

		json.NewEncoder(w).Encode(ItemList{Elements: []Item{
			{ID: "A1", Name: "Mango Tango", Price: 2499, SKU: "VP-001"},
			{ID: "A2", Name: "Hidden One", Price: 1999, Hidden: true},
		}})
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL))

	items, err := client.ListItems(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "Mango Tango", items[0].Name)
	assert.Equal(t, int64(2499), items[0].Price)
	assert.True(t, items[1].Hidden)
}

func TestClient_GetItemBySKU(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("filter") == "sku=VP-001" {
			json.NewEncoder(w).Encode(ItemList{Elements: []Item{{ID: "A1", SKU: "VP-001"}}})
			return
		}
		json.NewEncoder(w).Encode(ItemList{})
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL))
	ctx := context.Background()

	item, err := client.GetItemBySKU(ctx, "VP-001")
	require.NoError(t, err)
	require.NotNil(t, item)
	assert.Equal(t, "A1", item.ID)

	// No match is not an error
	item, err = client.GetItemBySKU(ctx, "VP-404")
	require.NoError(t, err)
	assert.Nil(t, item)
}

func TestClient_ErrorMapping(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		wantErr error
	}{
		{name: "Unauthorized", status: http.StatusUnauthorized, wantErr: ErrUnauthorized},
		{name: "Forbidden", status: http.StatusForbidden, wantErr: ErrUnauthorized},
		{name: "Not found", status: http.StatusNotFound, wantErr: ErrNotFound},
		{name: "Bad request", status: http.StatusBadRequest, wantErr: ErrInvalidRequest},
		{name: "Server error", status: http.StatusInternalServerError, wantErr: ErrRequestFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				json.NewEncoder(w).Encode(ErrorResponse{Message: "nope"})
			}))
			defer server.Close()

			client := NewClient(testConfig(server.URL))
			_, err := client.ListItems(context.Background())
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestClient_CreateCheckoutSession(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "MID123", r.Header.Get("X-Clover-Merchant-Id"))

		var req CheckoutRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Len(t, req.ShoppingCart.LineItems, 1)

		json.NewEncoder(w).Encode(CheckoutResponse{
			Href:              "https://checkout.test/session/cs_1",
			CheckoutSessionID: "cs_1",
		})
	}))
	defer server.Close()

	cfg := testConfig("unused")
	cfg.CheckoutBaseURL = server.URL
	client := NewClient(cfg)

	req := CheckoutRequest{}
	req.ShoppingCart.LineItems = []CheckoutLineItem{{Name: "Mango Tango", Price: 2499, UnitQty: 1}}

	resp, err := client.CreateCheckoutSession(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "cs_1", resp.CheckoutSessionID)
	assert.Equal(t, "https://checkout.test/session/cs_1", resp.Href)
}

func TestCheckoutSession_Paid(t *testing.T) {
	assert.True(t, (&CheckoutSession{PaymentStatus: "PAID"}).Paid())
	assert.True(t, (&CheckoutSession{Status: "PAID"}).Paid())
	assert.False(t, (&CheckoutSession{Status: "OPEN", PaymentStatus: "PENDING"}).Paid())
}

func TestClient_ChargeToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req ChargeRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "usd", req.Currency)
		assert.True(t, req.Capture)

		json.NewEncoder(w).Encode(ChargeResponse{ID: "ch_1", Status: "succeeded", Paid: true, Amount: req.Amount})
	}))
	defer server.Close()

	cfg := testConfig("unused")
	cfg.ChargeURL = server.URL
	client := NewClient(cfg)

	charge, err := client.ChargeToken(context.Background(), ChargeRequest{Source: "tok_1", Amount: 2499})
	require.NoError(t, err)
	assert.True(t, charge.Succeeded())
	assert.Equal(t, int64(2499), charge.Amount)
}

func TestClient_ChargeToken_FallbackEndpoint(t *testing.T) {
	primary := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer primary.Close()

	fallback := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(ChargeResponse{ID: "ch_2", Paid: true})
	}))
	defer fallback.Close()

	cfg := testConfig("unused")
	cfg.ChargeURL = primary.URL
	cfg.ChargeFallbackURL = fallback.URL
	client := NewClient(cfg)

	charge, err := client.ChargeToken(context.Background(), ChargeRequest{Source: "tok_1", Amount: 100})
	require.NoError(t, err)
	assert.Equal(t, "ch_2", charge.ID)
}

func TestClient_ChargeToken_Declined(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(ErrorResponse{Message: "card declined"})
	}))
	defer server.Close()

	cfg := testConfig("unused")
	cfg.ChargeURL = server.URL
	client := NewClient(cfg)

	_, err := client.ChargeToken(context.Background(), ChargeRequest{Source: "tok_1", Amount: 100})
	assert.ErrorIs(t, err, ErrChargeDeclined)

	// Malformed input never leaves the process
	_, err = client.ChargeToken(context.Background(), ChargeRequest{Source: "", Amount: 100})
	assert.ErrorIs(t, err, ErrInvalidRequest)

	_, err = client.ChargeToken(context.Background(), ChargeRequest{Source: "tok_1", Amount: 0})
	assert.ErrorIs(t, err, ErrInvalidRequest)
}
