package storeapi

import (
	"context"

	"github.com/nextcommerce/storedash/pkg/auth"
	"github.com/nextcommerce/storedash/pkg/quota"
)

// Account is the merchant's subscription standing
type Account struct {
	ID          string `json:"_id"`
	UserName    string `json:"userName,omitempty"`
	IsPaid      bool   `json:"isPaid"`
	OrdersCount int    `json:"ordersCount"`
	MaxOrders   int    `json:"maxOrders"`
}

// Account fetches the authenticated merchant's account
func (c *Client) Account(ctx context.Context) (Account, error) {
	var a Account
	if err := c.get(ctx, "account", "/user/me", &a); err != nil {
		return Account{}, err
	}
	return a, nil
}

// Usage implements quota.UsageSource
func (c *Client) Usage(ctx context.Context, _ *auth.Merchant) (quota.Usage, error) {
	a, err := c.Account(ctx)
	if err != nil {
		return quota.Usage{}, err
	}
	limit := a.MaxOrders
	if limit <= 0 {
		limit = c.freeOrderLimit
	}
	return quota.Usage{Used: a.OrdersCount, Limit: limit, IsPaid: a.IsPaid}, nil
}
