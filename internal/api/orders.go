package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/manageday-dev/manageday/internal/models"
)

// Orders lists orders with pagination.
func (c *Client) Orders(ctx context.Context, skip, limit int) ([]models.Order, error) {
	var orders []models.Order
	if err := c.do(ctx, http.MethodGet, "/orders", pageQuery(skip, limit), nil, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// Order fetches one order by ID.
func (c *Client) Order(ctx context.Context, id int64) (*models.Order, error) {
	var order models.Order
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/orders/%d", id), nil, nil, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// CreateOrder creates a new order.
func (c *Client) CreateOrder(ctx context.Context, order models.Order) (*models.Order, error) {
	var created models.Order
	if err := c.do(ctx, http.MethodPost, "/orders", nil, order, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// UpdateOrder updates an existing order.
func (c *Client) UpdateOrder(ctx context.Context, id int64, order models.Order) (*models.Order, error) {
	var updated models.Order
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/orders/%d", id), nil, order, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// DeleteOrder removes an order by ID.
func (c *Client) DeleteOrder(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/orders/%d", id), nil, nil, nil)
}

// NotificationTest is the payload for the order notification test endpoints.
type NotificationTest struct {
	Phone   string `json:"phone"`
	Message string `json:"message,omitempty"`
}

// TestWhatsApp sends a test WhatsApp notification.
func (c *Client) TestWhatsApp(ctx context.Context, test NotificationTest) error {
	return c.do(ctx, http.MethodPost, "/orders/test-whatsapp", nil, test, nil)
}

// TestSMS sends a test SMS notification.
func (c *Client) TestSMS(ctx context.Context, test NotificationTest) error {
	return c.do(ctx, http.MethodPost, "/orders/test-sms", nil, test, nil)
}
