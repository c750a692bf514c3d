package client

import (
	"context"
	"fmt"

	"github.com/naveenspark/moneta/pkg/domain"
)

// ListTransactions fetches the caller's transactions matching filters.
func (c *Client) ListTransactions(ctx context.Context, filters domain.TransactionFilters) ([]domain.Transaction, error) {
	var txs []domain.Transaction
	if err := c.get(ctx, "/transactions", filters.Values(), &txs); err != nil {
		return nil, fmt.Errorf("client.ListTransactions: %w", err)
	}
	return txs, nil
}

// GetTransaction fetches a single transaction by ID.
func (c *Client) GetTransaction(ctx context.Context, id int) (*domain.Transaction, error) {
	var tx domain.Transaction
	if err := c.get(ctx, itemPath("transactions", id), nil, &tx); err != nil {
		return nil, fmt.Errorf("client.GetTransaction: %w", err)
	}
	return &tx, nil
}

// CreateTransaction records a new transaction.
func (c *Client) CreateTransaction(ctx context.Context, in domain.TransactionInput) (*domain.Transaction, error) {
	if err := domain.Validate(in); err != nil {
		return nil, fmt.Errorf("client.CreateTransaction: %w", err)
	}
	var tx domain.Transaction
	if err := c.post(ctx, "/transactions", in, &tx); err != nil {
		return nil, fmt.Errorf("client.CreateTransaction: %w", err)
	}
	return &tx, nil
}

// UpdateTransaction replaces a transaction.
func (c *Client) UpdateTransaction(ctx context.Context, id int, in domain.TransactionInput) (*domain.Transaction, error) {
	if err := domain.Validate(in); err != nil {
		return nil, fmt.Errorf("client.UpdateTransaction: %w", err)
	}
	var tx domain.Transaction
	if err := c.put(ctx, itemPath("transactions", id), in, &tx); err != nil {
		return nil, fmt.Errorf("client.UpdateTransaction: %w", err)
	}
	return &tx, nil
}

// DeleteTransaction deletes a transaction by ID.
func (c *Client) DeleteTransaction(ctx context.Context, id int) error {
	if err := c.delete(ctx, itemPath("transactions", id), nil); err != nil {
		return fmt.Errorf("client.DeleteTransaction: %w", err)
	}
	return nil
}

// Summary totals the transactions matching filters into income, expenses
// and balance.
func (c *Client) Summary(ctx context.Context, filters domain.TransactionFilters) (domain.Summary, error) {
	types, err := c.ListTypes(ctx)
	if err != nil {
		return domain.Summary{}, fmt.Errorf("client.Summary: %w", err)
	}
	txs, err := c.ListTransactions(ctx, filters)
	if err != nil {
		return domain.Summary{}, fmt.Errorf("client.Summary: %w", err)
	}
	return domain.Summarize(txs, types), nil
}
