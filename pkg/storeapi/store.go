package storeapi

import (
	"context"
	"encoding/json"

	"golang.org/x/sync/errgroup"

	"github.com/nextcommerce/storedash/pkg/orders"
)

// Store is a merchant's shop profile
type Store struct {
	ID    string `json:"_id"`
	Name  string `json:"storeName"`
	Owner string `json:"owner,omitempty"`
}

// Store fetches the store profile
func (c *Client) Store(ctx context.Context, storeID string) (Store, error) {
	var s Store
	if err := c.get(ctx, "store", storePath("/store/", storeID), &s); err != nil {
		return Store{}, err
	}
	return s, nil
}

// Orders fetches every order of the store
func (c *Client) Orders(ctx context.Context, storeID string) ([]orders.Order, error) {
	var out []orders.Order
	if err := c.get(ctx, "orders", storePath("/orders/store/", storeID), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ProductCount returns how many products the store lists
func (c *Client) ProductCount(ctx context.Context, storeID string) (int, error) {
	var products []json.RawMessage
	if err := c.get(ctx, "products", storePath("/products/store/", storeID), &products); err != nil {
		return 0, err
	}
	return len(products), nil
}

// Dashboard is everything the store overview is computed from
type Dashboard struct {
	Store        Store
	Orders       []orders.Order
	ProductCount int
}

// Dashboard fetches the store profile, orders and product count concurrently.
// The first failure cancels the remaining calls.
func (c *Client) Dashboard(ctx context.Context, storeID string) (*Dashboard, error) {
	var d Dashboard
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s, err := c.Store(gctx, storeID)
		d.Store = s
		return err
	})
	g.Go(func() error {
		o, err := c.Orders(gctx, storeID)
		d.Orders = o
		return err
	})
	g.Go(func() error {
		n, err := c.ProductCount(gctx, storeID)
		d.ProductCount = n
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &d, nil
}
