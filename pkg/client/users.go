package client

import (
	"context"
	"fmt"

	"github.com/naveenspark/moneta/pkg/domain"
)

// GetMe returns the authenticated user.
func (c *Client) GetMe(ctx context.Context) (*domain.User, error) {
	var u domain.User
	if err := c.get(ctx, "/users/me", nil, &u); err != nil {
		return nil, fmt.Errorf("client.GetMe: %w", err)
	}
	return &u, nil
}

// GetUser fetches a single user by ID.
func (c *Client) GetUser(ctx context.Context, id int) (*domain.User, error) {
	var u domain.User
	if err := c.get(ctx, itemPath("users", id), nil, &u); err != nil {
		return nil, fmt.Errorf("client.GetUser: %w", err)
	}
	return &u, nil
}

// ListUsers lists users matching filters. Admin only on the backend.
func (c *Client) ListUsers(ctx context.Context, filters domain.UserFilters) ([]domain.User, error) {
	var users []domain.User
	if err := c.get(ctx, "/users", filters.Values(), &users); err != nil {
		return nil, fmt.Errorf("client.ListUsers: %w", err)
	}
	return users, nil
}

// UpdateUser replaces a user's email, role and password.
func (c *Client) UpdateUser(ctx context.Context, id int, in domain.UserUpdate) (*domain.User, error) {
	if err := domain.Validate(in); err != nil {
		return nil, fmt.Errorf("client.UpdateUser: %w", err)
	}
	var u domain.User
	if err := c.put(ctx, itemPath("users", id), in, &u); err != nil {
		return nil, fmt.Errorf("client.UpdateUser: %w", err)
	}
	return &u, nil
}

// ChangePassword sets a new password for me, keeping email and role.
func (c *Client) ChangePassword(ctx context.Context, me domain.User, newPassword string) error {
	if _, err := c.UpdateUser(ctx, me.ID, domain.UserUpdate{
		Email:    me.Email,
		RoleID:   me.RoleID,
		Password: newPassword,
	}); err != nil {
		return fmt.Errorf("client.ChangePassword: %w", err)
	}
	return nil
}

// DeleteUser deletes a user by ID.
func (c *Client) DeleteUser(ctx context.Context, id int) error {
	if err := c.delete(ctx, itemPath("users", id), nil); err != nil {
		return fmt.Errorf("client.DeleteUser: %w", err)
	}
	return nil
}

// DeleteAccount deletes the authenticated user and ends the local session.
func (c *Client) DeleteAccount(ctx context.Context, me domain.User) error {
	if err := c.DeleteUser(ctx, me.ID); err != nil {
		return fmt.Errorf("client.DeleteAccount: %w", err)
	}
	if c.guard != nil {
		if err := c.guard.End(); err != nil {
			return fmt.Errorf("client.DeleteAccount: %w", err)
		}
	}
	return nil
}
