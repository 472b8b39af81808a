package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/manageday-dev/manageday/internal/models"
)

// Products lists products, optionally filtered by name.
func (c *Client) Products(ctx context.Context, skip, limit int, name string) ([]models.Product, error) {
	query := pageQuery(skip, limit)
	if name != "" {
		query.Set("name", name)
	}

	var products []models.Product
	if err := c.do(ctx, http.MethodGet, "/products", query, nil, &products); err != nil {
		return nil, err
	}
	return products, nil
}

// Product fetches one product by ID.
func (c *Client) Product(ctx context.Context, id int64) (*models.Product, error) {
	var product models.Product
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/products/%d", id), nil, nil, &product); err != nil {
		return nil, err
	}
	return &product, nil
}

// CreateProduct creates a new product.
func (c *Client) CreateProduct(ctx context.Context, product models.Product) (*models.Product, error) {
	var created models.Product
	if err := c.do(ctx, http.MethodPost, "/products", nil, product, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// UpdateProduct updates an existing product.
func (c *Client) UpdateProduct(ctx context.Context, id int64, product models.Product) (*models.Product, error) {
	var updated models.Product
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/products/%d", id), nil, product, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// DeleteProduct removes a product by ID.
func (c *Client) DeleteProduct(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/products/%d", id), nil, nil, nil)
}
