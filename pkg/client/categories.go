package client

import (
	"context"
	"fmt"

	"github.com/naveenspark/moneta/pkg/domain"
)

// --- Types ---

// ListTypes returns the transaction types defined by the backend.
func (c *Client) ListTypes(ctx context.Context) ([]domain.Type, error) {
	var types []domain.Type
	if err := c.get(ctx, "/types", nil, &types); err != nil {
		return nil, fmt.Errorf("client.ListTypes: %w", err)
	}
	return types, nil
}

// GetType fetches a single type by ID.
func (c *Client) GetType(ctx context.Context, id int) (*domain.Type, error) {
	var t domain.Type
	if err := c.get(ctx, itemPath("types", id), nil, &t); err != nil {
		return nil, fmt.Errorf("client.GetType: %w", err)
	}
	return &t, nil
}

// --- Categories ---

// ListCategories returns the caller's categories.
func (c *Client) ListCategories(ctx context.Context) ([]domain.Category, error) {
	var categories []domain.Category
	if err := c.get(ctx, "/categories", nil, &categories); err != nil {
		return nil, fmt.Errorf("client.ListCategories: %w", err)
	}
	return categories, nil
}

// GetCategory fetches a single category by ID.
func (c *Client) GetCategory(ctx context.Context, id int) (*domain.Category, error) {
	var cat domain.Category
	if err := c.get(ctx, itemPath("categories", id), nil, &cat); err != nil {
		return nil, fmt.Errorf("client.GetCategory: %w", err)
	}
	return &cat, nil
}

// CreateCategory creates a new category.
func (c *Client) CreateCategory(ctx context.Context, in domain.CategoryInput) (*domain.Category, error) {
	if err := domain.Validate(in); err != nil {
		return nil, fmt.Errorf("client.CreateCategory: %w", err)
	}
	var cat domain.Category
	if err := c.post(ctx, "/categories", in, &cat); err != nil {
		return nil, fmt.Errorf("client.CreateCategory: %w", err)
	}
	return &cat, nil
}

// UpdateCategory replaces a category.
func (c *Client) UpdateCategory(ctx context.Context, id int, in domain.CategoryInput) (*domain.Category, error) {
	if err := domain.Validate(in); err != nil {
		return nil, fmt.Errorf("client.UpdateCategory: %w", err)
	}
	var cat domain.Category
	if err := c.put(ctx, itemPath("categories", id), in, &cat); err != nil {
		return nil, fmt.Errorf("client.UpdateCategory: %w", err)
	}
	return &cat, nil
}

// DeleteCategory deletes a category by ID.
func (c *Client) DeleteCategory(ctx context.Context, id int) error {
	if err := c.delete(ctx, itemPath("categories", id), nil); err != nil {
		return fmt.Errorf("client.DeleteCategory: %w", err)
	}
	return nil
}
