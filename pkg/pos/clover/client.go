package clover

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// Client talks to the Clover merchant, hosted checkout and ecommerce
// APIs. A client built from an unconfigured Config still works: reads
// return empty results and writes return ErrNotConfigured.
type Client struct {
	config     Config
	httpClient *http.Client
}

// NewClient creates a new Clover client with the given configuration
func NewClient(config Config) *Client {
	httpClient := &http.Client{
		Timeout: 30 * time.Second,
	}

	return &Client{
		config:     config,
		httpClient: httpClient,
	}
}

// IsConfigured reports whether the client has merchant credentials
func (c *Client) IsConfigured() bool {
	return c.config.IsConfigured()
}

// GetConfig returns the client configuration
func (c *Client) GetConfig() Config {
	return c.config
}

// merchantURL builds an inventory/order endpoint scoped to the merchant
func (c *Client) merchantURL(path string) string {
	return fmt.Sprintf("%s/%s%s", c.config.BaseURL, c.config.MerchantID, path)
}

// ListItems fetches the merchant's full inventory with category
// expansion. Returns an empty slice when the integration is not
// configured.
func (c *Client) ListItems(ctx context.Context) ([]Item, error) {
	if !c.IsConfigured() {
		return []Item{}, nil
	}

	resp, err := c.doRequest(ctx, http.MethodGet, c.merchantURL("/items?expand=categories&limit=1000"), nil, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}

	var list ItemList
	if err := json.Unmarshal(resp, &list); err != nil {
		return nil, fmt.Errorf("failed to unmarshal items response: %w", err)
	}
	return list.Elements, nil
}

// GetItem fetches a single inventory item by its Clover id with its
// category links expanded
func (c *Client) GetItem(ctx context.Context, itemID string) (*Item, error) {
	if !c.IsConfigured() {
		return nil, nil
	}

	resp, err := c.doRequest(ctx, http.MethodGet, c.merchantURL("/items/"+url.PathEscape(itemID)+"?expand=categories"), nil, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get item: %w", err)
	}

	var item Item
	if err := json.Unmarshal(resp, &item); err != nil {
		return nil, fmt.Errorf("failed to unmarshal item response: %w", err)
	}
	return &item, nil
}

// GetItemBySKU looks up an inventory item by SKU. Returns nil without
// error when no item matches.
func (c *Client) GetItemBySKU(ctx context.Context, sku string) (*Item, error) {
	if !c.IsConfigured() {
		return nil, nil
	}

	endpoint := c.merchantURL("/items?filter=" + url.QueryEscape("sku="+sku))
	resp, err := c.doRequest(ctx, http.MethodGet, endpoint, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to look up item by sku: %w", err)
	}

	var list ItemList
	if err := json.Unmarshal(resp, &list); err != nil {
		return nil, fmt.Errorf("failed to unmarshal items response: %w", err)
	}
	if len(list.Elements) == 0 {
		return nil, nil
	}
	return &list.Elements[0], nil
}

// CreateItem creates an inventory item on the merchant
func (c *Client) CreateItem(ctx context.Context, item Item) (*Item, error) {
	if err := c.config.Validate(); err != nil {
		return nil, err
	}

	resp, err := c.doRequest(ctx, http.MethodPost, c.merchantURL("/items"), item, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create item: %w", err)
	}

	var created Item
	if err := json.Unmarshal(resp, &created); err != nil {
		return nil, fmt.Errorf("failed to unmarshal item response: %w", err)
	}
	return &created, nil
}

// UpdateItem updates an existing inventory item
func (c *Client) UpdateItem(ctx context.Context, itemID string, item Item) (*Item, error) {
	if err := c.config.Validate(); err != nil {
		return nil, err
	}

	resp, err := c.doRequest(ctx, http.MethodPost, c.merchantURL("/items/"+url.PathEscape(itemID)), item, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to update item: %w", err)
	}

	var updated Item
	if err := json.Unmarshal(resp, &updated); err != nil {
		return nil, fmt.Errorf("failed to unmarshal item response: %w", err)
	}
	return &updated, nil
}

// DeleteItem removes an inventory item from the merchant
func (c *Client) DeleteItem(ctx context.Context, itemID string) error {
	if err := c.config.Validate(); err != nil {
		return err
	}

	_, err := c.doRequest(ctx, http.MethodDelete, c.merchantURL("/items/"+url.PathEscape(itemID)), nil, nil)
	if err != nil {
		return fmt.Errorf("failed to delete item: %w", err)
	}
	return nil
}

// ListCategories fetches the merchant's categories. Returns an empty
// slice when the integration is not configured.
func (c *Client) ListCategories(ctx context.Context) ([]Category, error) {
	if !c.IsConfigured() {
		return []Category{}, nil
	}

	resp, err := c.doRequest(ctx, http.MethodGet, c.merchantURL("/categories?limit=1000"), nil, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}

	var list CategoryList
	if err := json.Unmarshal(resp, &list); err != nil {
		return nil, fmt.Errorf("failed to unmarshal categories response: %w", err)
	}
	return list.Elements, nil
}

// CreateCategory creates a category on the merchant
func (c *Client) CreateCategory(ctx context.Context, name string) (*Category, error) {
	if err := c.config.Validate(); err != nil {
		return nil, err
	}

	resp, err := c.doRequest(ctx, http.MethodPost, c.merchantURL("/categories"), Category{Name: name}, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create category: %w", err)
	}

	var created Category
	if err := json.Unmarshal(resp, &created); err != nil {
		return nil, fmt.Errorf("failed to unmarshal category response: %w", err)
	}
	return &created, nil
}

// DeleteCategory removes a category from the merchant
func (c *Client) DeleteCategory(ctx context.Context, categoryID string) error {
	if err := c.config.Validate(); err != nil {
		return err
	}

	_, err := c.doRequest(ctx, http.MethodDelete, c.merchantURL("/categories/"+url.PathEscape(categoryID)), nil, nil)
	if err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}
	return nil
}

// AddItemToCategory links an item to a category on the merchant
func (c *Client) AddItemToCategory(ctx context.Context, itemID, categoryID string) error {
	if err := c.config.Validate(); err != nil {
		return err
	}

	payload := categoryItemLinkList{
		Elements: []categoryItemLink{
			{Category: Category{ID: categoryID}, Item: Item{ID: itemID}},
		},
	}
	_, err := c.doRequest(ctx, http.MethodPost, c.merchantURL("/category_items"), payload, nil)
	if err != nil {
		return fmt.Errorf("failed to add item to category: %w", err)
	}
	return nil
}

// RemoveItemFromCategory unlinks an item from a category on the merchant
func (c *Client) RemoveItemFromCategory(ctx context.Context, itemID, categoryID string) error {
	if err := c.config.Validate(); err != nil {
		return err
	}

	payload := categoryItemLinkList{
		Elements: []categoryItemLink{
			{Category: Category{ID: categoryID}, Item: Item{ID: itemID}},
		},
	}
	_, err := c.doRequest(ctx, http.MethodPost, c.merchantURL("/category_items?delete=true"), payload, nil)
	if err != nil {
		return fmt.Errorf("failed to remove item from category: %w", err)
	}
	return nil
}

// CreateOrder creates an order on the merchant in the given state
func (c *Client) CreateOrder(ctx context.Context, req OrderRequest) (*Order, error) {
	if err := c.config.Validate(); err != nil {
		return nil, err
	}

	resp, err := c.doRequest(ctx, http.MethodPost, c.merchantURL("/orders"), req, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	var order Order
	if err := json.Unmarshal(resp, &order); err != nil {
		return nil, fmt.Errorf("failed to unmarshal order response: %w", err)
	}
	return &order, nil
}

// AddLineItem adds a line to an existing merchant order
func (c *Client) AddLineItem(ctx context.Context, orderID string, req LineItemRequest) (*LineItem, error) {
	if err := c.config.Validate(); err != nil {
		return nil, err
	}

	endpoint := c.merchantURL("/orders/" + url.PathEscape(orderID) + "/line_items")
	resp, err := c.doRequest(ctx, http.MethodPost, endpoint, req, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to add line item: %w", err)
	}

	var line LineItem
	if err := json.Unmarshal(resp, &line); err != nil {
		return nil, fmt.Errorf("failed to unmarshal line item response: %w", err)
	}
	return &line, nil
}

// CreateCheckoutSession opens a hosted checkout session for the buyer.
// The checkout service authenticates with the same bearer token but
// expects the merchant id as a header instead of a path segment.
func (c *Client) CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (*CheckoutResponse, error) {
	if err := c.config.Validate(); err != nil {
		return nil, err
	}
	if c.config.CheckoutBaseURL == "" {
		return nil, ErrInvalidRequest
	}

	headers := map[string]string{"X-Clover-Merchant-Id": c.config.MerchantID}
	resp, err := c.doRequest(ctx, http.MethodPost, c.config.CheckoutBaseURL, req, headers)
	if err != nil {
		return nil, fmt.Errorf("failed to create checkout session: %w", err)
	}

	var checkout CheckoutResponse
	if err := json.Unmarshal(resp, &checkout); err != nil {
		return nil, fmt.Errorf("failed to unmarshal checkout response: %w", err)
	}
	return &checkout, nil
}

// GetCheckoutSession fetches the state of a hosted checkout session
func (c *Client) GetCheckoutSession(ctx context.Context, sessionID string) (*CheckoutSession, error) {
	if err := c.config.Validate(); err != nil {
		return nil, err
	}

	headers := map[string]string{"X-Clover-Merchant-Id": c.config.MerchantID}
	endpoint := c.config.CheckoutBaseURL + "/" + url.PathEscape(sessionID)
	resp, err := c.doRequest(ctx, http.MethodGet, endpoint, nil, headers)
	if err != nil {
		return nil, fmt.Errorf("failed to get checkout session: %w", err)
	}

	var session CheckoutSession
	if err := json.Unmarshal(resp, &session); err != nil {
		return nil, fmt.Errorf("failed to unmarshal checkout session: %w", err)
	}
	return &session, nil
}

// ChargeToken charges a tokenized card through the ecommerce API. The
// primary endpoint is tried first; if it rejects the request the
// fallback endpoint is tried once, since tokens can be minted against
// either environment.
func (c *Client) ChargeToken(ctx context.Context, req ChargeRequest) (*ChargeResponse, error) {
	if err := c.config.Validate(); err != nil {
		return nil, err
	}
	if req.Source == "" || req.Amount <= 0 {
		return nil, ErrInvalidRequest
	}
	if req.Currency == "" {
		req.Currency = "usd"
	}
	req.Capture = true

	resp, err := c.doRequest(ctx, http.MethodPost, c.config.ChargeURL, req, nil)
	if err != nil && c.config.ChargeFallbackURL != "" {
		resp, err = c.doRequest(ctx, http.MethodPost, c.config.ChargeFallbackURL, req, nil)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrChargeDeclined, err)
	}

	var charge ChargeResponse
	if err := json.Unmarshal(resp, &charge); err != nil {
		return nil, fmt.Errorf("failed to unmarshal charge response: %w", err)
	}
	return &charge, nil
}

// doRequest performs an HTTP request against a Clover endpoint
func (c *Client) doRequest(ctx context.Context, method, endpoint string, payload interface{}, headers map[string]string) ([]byte, error) {
	var body io.Reader
	if payload != nil {
		reqBody, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		body = bytes.NewBuffer(reqBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.config.APIToken)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNetworkError, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errResp ErrorResponse
		msg := string(respBody)
		if jsonErr := json.Unmarshal(respBody, &errResp); jsonErr == nil {
			if errResp.Error.Message != "" {
				msg = errResp.Error.Message
			} else if errResp.Message != "" {
				msg = errResp.Message
			}
		}

		switch resp.StatusCode {
		case http.StatusUnauthorized, http.StatusForbidden:
			return nil, fmt.Errorf("%w: %s", ErrUnauthorized, msg)
		case http.StatusNotFound:
			return nil, fmt.Errorf("%w: %s", ErrNotFound, msg)
		case http.StatusBadRequest:
			return nil, fmt.Errorf("%w: %s", ErrInvalidRequest, msg)
		default:
			return nil, fmt.Errorf("%w: status %d: %s", ErrRequestFailed, resp.StatusCode, msg)
		}
	}

	return respBody, nil
}
