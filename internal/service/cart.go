package service

import (
	"context"
	"encoding/json"
	"fmt"

	"storefront-client/internal/apiclient"
	"storefront-client/internal/models"
	"storefront-client/internal/state"
	"storefront-client/internal/util"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type CartAPI interface {
	FetchCart(ctx context.Context, userID string) ([]models.CartItem, error)
	AddCartItem(ctx context.Context, in apiclient.CartItemInput) (models.CartItem, error)
	UpdateCartItem(ctx context.Context, id string, quantity int) (models.CartItem, error)
	DeleteCartItem(ctx context.Context, id string) (models.CartItem, error)
	ResetCart(ctx context.Context, userID string) error
}

// Cart holds the signed-in user's cart. Adding and deleting rows is followed
// by a refetch of the whole cart.
type Cart struct {
	tracker *state.Tracker
	api     CartAPI
	users   UserSource
	logger  *zap.Logger

	items []models.CartItem
}

func NewCart(api CartAPI, users UserSource) *Cart {
	return &Cart{
		tracker: state.NewTracker("cart",
			OpFetchByUser, OpAdd, OpUpdateQuantity, OpDelete, OpResetForUser),
		api:    api,
		users:  users,
		logger: util.Named("cart"),
	}
}

func (c *Cart) Tracker() *state.Tracker { return c.tracker }

func (c *Cart) Fetch(ctx context.Context) ([]models.CartItem, error) {
	userID, err := currentUserID(c.users)
	if err != nil {
		return nil, err
	}

	return state.Run(ctx, c.tracker, OpFetchByUser, func(ctx context.Context) ([]models.CartItem, error) {
		return c.api.FetchCart(ctx, userID)
	}, func(items []models.CartItem) {
		c.items = items
	})
}

// Add puts quantity units of a product in the cart. A product that already
// has a row gets its quantity raised instead of a second row.
func (c *Cart) Add(ctx context.Context, productID string, quantity int) (models.CartItem, error) {
	if err := requireField("product", productID); err != nil {
		return models.CartItem{}, err
	}
	if quantity < 1 {
		quantity = 1
	}
	userID, err := currentUserID(c.users)
	if err != nil {
		return models.CartItem{}, err
	}

	if row, ok := c.rowFor(productID); ok {
		return c.UpdateQuantity(ctx, row.ID, row.Quantity+quantity)
	}

	item, err := state.Run(ctx, c.tracker, OpAdd, func(ctx context.Context) (models.CartItem, error) {
		return c.api.AddCartItem(ctx, apiclient.CartItemInput{User: userID, Product: productID, Quantity: quantity})
	}, func(item models.CartItem) {
		c.items = state.Upsert(c.items, item)
	})
	if err != nil {
		return item, err
	}

	c.refetch(ctx)
	return item, nil
}

func (c *Cart) UpdateQuantity(ctx context.Context, itemID string, quantity int) (models.CartItem, error) {
	if err := requireField("id", itemID); err != nil {
		return models.CartItem{}, err
	}
	if quantity < 1 {
		return models.CartItem{}, fmt.Errorf("%w: quantity must be at least 1", ErrValidation)
	}

	return state.Run(ctx, c.tracker, OpUpdateQuantity, func(ctx context.Context) (models.CartItem, error) {
		return c.api.UpdateCartItem(ctx, itemID, quantity)
	}, func(item models.CartItem) {
		c.items = state.Upsert(c.items, item)
	})
}

// Increase adds one unit to a row.
func (c *Cart) Increase(ctx context.Context, itemID string) (models.CartItem, error) {
	row, ok := c.row(itemID)
	if !ok {
		return models.CartItem{}, fmt.Errorf("%w: cart item %s not found", ErrValidation, itemID)
	}
	return c.UpdateQuantity(ctx, itemID, row.Quantity+1)
}

// Decrease removes one unit from a row; the last unit deletes the row.
func (c *Cart) Decrease(ctx context.Context, itemID string) (models.CartItem, error) {
	row, ok := c.row(itemID)
	if !ok {
		return models.CartItem{}, fmt.Errorf("%w: cart item %s not found", ErrValidation, itemID)
	}
	if row.Quantity <= 1 {
		return c.Delete(ctx, itemID)
	}
	return c.UpdateQuantity(ctx, itemID, row.Quantity-1)
}

func (c *Cart) Delete(ctx context.Context, itemID string) (models.CartItem, error) {
	if err := requireField("id", itemID); err != nil {
		return models.CartItem{}, err
	}

	item, err := state.Run(ctx, c.tracker, OpDelete, func(ctx context.Context) (models.CartItem, error) {
		return c.api.DeleteCartItem(ctx, itemID)
	}, func(models.CartItem) {
		c.items = state.Remove(c.items, itemID)
	})
	if err != nil {
		return item, err
	}

	c.refetch(ctx)
	return item, nil
}

// ResetForUser empties the signed-in user's cart on the server and locally.
func (c *Cart) ResetForUser(ctx context.Context) error {
	userID, err := currentUserID(c.users)
	if err != nil {
		return err
	}

	_, err = state.Run(ctx, c.tracker, OpResetForUser, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, c.api.ResetCart(ctx, userID)
	}, func(struct{}) {
		c.items = nil
	})
	return err
}

// Clear drops the local cart without a request, used when the user signs out.
// Calls still in flight are invalidated so a late response cannot bring the
// previous user's rows back.
func (c *Cart) Clear() {
	for _, op := range c.tracker.Operations() {
		c.tracker.Reset(op)
	}
	c.tracker.Mutate(func() { c.items = nil })
}

// refetch resynchronises the cart after a membership change. Its outcome is
// tracked by fetch-by-user and does not fail the mutation.
func (c *Cart) refetch(ctx context.Context) {
	if _, err := c.Fetch(ctx); err != nil {
		c.logger.Warn("Cart refetch failed", zap.Error(err))
	}
}

func (c *Cart) row(itemID string) (models.CartItem, bool) {
	var (
		row models.CartItem
		ok  bool
	)
	c.tracker.Read(func() { row, ok = state.Find(c.items, itemID) })
	return row, ok
}

func (c *Cart) rowFor(productID string) (models.CartItem, bool) {
	var (
		row models.CartItem
		ok  bool
	)
	c.tracker.Read(func() {
		for _, it := range c.items {
			if it.Product.ID == productID {
				row, ok = it, true
				return
			}
		}
	})
	return row, ok
}

func (c *Cart) Items() []models.CartItem {
	var out []models.CartItem
	c.tracker.Read(func() { out = cloneSlice(c.items) })
	return out
}

// Subtotal sums price times quantity over every row.
func (c *Cart) Subtotal() decimal.Decimal {
	total := decimal.Zero
	for _, it := range c.Items() {
		total = total.Add(it.LineTotal())
	}
	return total
}

type itemsSnapshot[T any] struct {
	Items []T `json:"items"`
}

func (c *Cart) Snapshot() any {
	return itemsSnapshot[models.CartItem]{Items: c.Items()}
}

func (c *Cart) Restore(raw json.RawMessage) error {
	var snap itemsSnapshot[models.CartItem]
	if err := json.Unmarshal(raw, &snap); err != nil {
		return fmt.Errorf("decode cart snapshot: %w", err)
	}
	c.tracker.Mutate(func() { c.items = snap.Items })
	return nil
}
