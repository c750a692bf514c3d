package client

import (
	"context"
	"fmt"

	"github.com/naveenspark/moneta/pkg/domain"
)

// ListGoals fetches the caller's goals matching filters.
func (c *Client) ListGoals(ctx context.Context, filters domain.GoalFilters) ([]domain.Goal, error) {
	var goals []domain.Goal
	if err := c.get(ctx, "/goals", filters.Values(), &goals); err != nil {
		return nil, fmt.Errorf("client.ListGoals: %w", err)
	}
	return goals, nil
}

// GetGoal fetches a single goal by ID.
func (c *Client) GetGoal(ctx context.Context, id int) (*domain.Goal, error) {
	var g domain.Goal
	if err := c.get(ctx, itemPath("goals", id), nil, &g); err != nil {
		return nil, fmt.Errorf("client.GetGoal: %w", err)
	}
	return &g, nil
}

// CreateGoal creates a new goal.
func (c *Client) CreateGoal(ctx context.Context, in domain.GoalInput) (*domain.Goal, error) {
	if err := domain.Validate(in); err != nil {
		return nil, fmt.Errorf("client.CreateGoal: %w", err)
	}
	var g domain.Goal
	if err := c.post(ctx, "/goals", in, &g); err != nil {
		return nil, fmt.Errorf("client.CreateGoal: %w", err)
	}
	return &g, nil
}

// UpdateGoal replaces a goal.
func (c *Client) UpdateGoal(ctx context.Context, id int, in domain.GoalInput) (*domain.Goal, error) {
	if err := domain.Validate(in); err != nil {
		return nil, fmt.Errorf("client.UpdateGoal: %w", err)
	}
	var g domain.Goal
	if err := c.put(ctx, itemPath("goals", id), in, &g); err != nil {
		return nil, fmt.Errorf("client.UpdateGoal: %w", err)
	}
	return &g, nil
}

// DeleteGoal deletes a goal by ID.
func (c *Client) DeleteGoal(ctx context.Context, id int) error {
	if err := c.delete(ctx, itemPath("goals", id), nil); err != nil {
		return fmt.Errorf("client.DeleteGoal: %w", err)
	}
	return nil
}

// GoalProgress totals the transactions inside the goal's window.
func (c *Client) GoalProgress(ctx context.Context, g domain.Goal) (domain.GoalProgress, error) {
	txs, err := c.ListTransactions(ctx, g.Filters())
	if err != nil {
		return domain.GoalProgress{}, fmt.Errorf("client.GoalProgress: %w", err)
	}
	return domain.Progress(g, txs), nil
}
