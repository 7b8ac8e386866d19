package service

import (
	"context"
	"net/http"
	"testing"

	"storefront-client/internal/models"
	"storefront-client/internal/state"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCartAddSameProductRaisesQuantity(t *testing.T) {
	env := newEnv(t)
	a, u := env.signedIn(t, models.User{})
	ctx := context.Background()
	p := env.api.SeedProduct(models.Product{Title: "mug", Price: decimal.NewFromInt(4)})

	_, err := a.Cart.Add(ctx, p.ID, 1)
	require.NoError(t, err)
	items := a.Cart.Items()
	require.Len(t, items, 1)
	assert.Equal(t, p.ID, items[0].Product.ID)
	assert.Equal(t, u.ID, items[0].User.ID)
	assert.Equal(t, 1, items[0].Quantity)

	_, err = a.Cart.Increase(ctx, items[0].ID)
	require.NoError(t, err)
	items = a.Cart.Items()
	require.Len(t, items, 1)
	assert.Equal(t, 2, items[0].Quantity)

	_, err = a.Cart.Add(ctx, p.ID, 1)
	require.NoError(t, err)
	items = a.Cart.Items()
	require.Len(t, items, 1)
	assert.Equal(t, 3, items[0].Quantity)
	assert.Equal(t, 1, env.api.Calls("POST /cart"))
}

func TestCartAddRefetches(t *testing.T) {
	env := newEnv(t)
	a, _ := env.signedIn(t, models.User{})
	p := env.api.SeedProduct(models.Product{Title: "mug"})

	_, err := a.Cart.Add(context.Background(), p.ID, 2)
	require.NoError(t, err)

	assert.Equal(t, 1, env.api.Calls("GET /cart/user/:id"))
	assert.Equal(t, state.StatusFulfilled, a.Cart.Tracker().Status(OpFetchByUser))
	assert.Equal(t, state.StatusFulfilled, a.Cart.Tracker().Status(OpAdd))
	items := a.Cart.Items()
	require.Len(t, items, 1)
	require.NotNil(t, items[0].Product.Obj)
	assert.Equal(t, "mug", items[0].Product.Obj.Title)
}

func TestCartDecreaseLastUnitDeletesRow(t *testing.T) {
	env := newEnv(t)
	a, _ := env.signedIn(t, models.User{})
	ctx := context.Background()
	p := env.api.SeedProduct(models.Product{Title: "mug"})

	item, err := a.Cart.Add(ctx, p.ID, 2)
	require.NoError(t, err)

	_, err = a.Cart.Decrease(ctx, item.ID)
	require.NoError(t, err)
	require.Len(t, a.Cart.Items(), 1)
	assert.Equal(t, 1, a.Cart.Items()[0].Quantity)

	_, err = a.Cart.Decrease(ctx, item.ID)
	require.NoError(t, err)
	assert.Empty(t, a.Cart.Items())
	assert.Equal(t, 1, env.api.Calls("DELETE /cart/:id"))
	assert.Equal(t, 1, env.api.Calls("PATCH /cart/:id"), "quantity is never patched to zero")
}

func TestCartRequiresUser(t *testing.T) {
	env := newEnv(t)
	a := env.app(t)

	_, err := a.Cart.Fetch(context.Background())
	assert.ErrorIs(t, err, ErrNotAuthenticated)
	assert.Equal(t, state.StatusIdle, a.Cart.Tracker().Status(OpFetchByUser))
}

func TestCartFailedAddKeepsItems(t *testing.T) {
	env := newEnv(t)
	a, _ := env.signedIn(t, models.User{})
	ctx := context.Background()
	mug := env.api.SeedProduct(models.Product{Title: "mug"})
	cup := env.api.SeedProduct(models.Product{Title: "cup"})

	_, err := a.Cart.Add(ctx, mug.ID, 1)
	require.NoError(t, err)

	env.api.FailNext("POST /cart", http.StatusInternalServerError)
	_, err = a.Cart.Add(ctx, cup.ID, 1)
	require.Error(t, err)

	assert.Equal(t, state.StatusRejected, a.Cart.Tracker().Status(OpAdd))
	assert.Len(t, a.Cart.Items(), 1)
}

func TestCartResetForUser(t *testing.T) {
	env := newEnv(t)
	a, _ := env.signedIn(t, models.User{})
	ctx := context.Background()
	for _, title := range []string{"mug", "cup"} {
		p := env.api.SeedProduct(models.Product{Title: title})
		_, err := a.Cart.Add(ctx, p.ID, 1)
		require.NoError(t, err)
	}
	require.Len(t, a.Cart.Items(), 2)

	require.NoError(t, a.Cart.ResetForUser(ctx))
	assert.Empty(t, a.Cart.Items())

	items, err := a.Cart.Fetch(ctx)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestCheckout(t *testing.T) {
	env := newEnv(t)
	a, u := env.signedIn(t, models.User{})
	ctx := context.Background()
	p := env.api.SeedProduct(models.Product{Title: "lamp", Price: decimal.NewFromInt(10)})
	_, err := a.Cart.Add(ctx, p.ID, 2)
	require.NoError(t, err)

	addr := models.Address{Street: "1 Main St", City: "Springfield", PhoneNumber: "555-0100"}

	_, err = a.Checkout(ctx, addr, "crypto")
	assert.ErrorIs(t, err, ErrValidation)

	order, err := a.Checkout(ctx, addr, models.PaymentModeCash)
	require.NoError(t, err)

	assert.Equal(t, u.ID, order.User.ID)
	assert.Equal(t, models.OrderStatusPending, order.Status)
	assert.True(t, order.Total.Equal(decimal.NewFromInt(30)), "got %s", order.Total)
	require.Len(t, order.Items, 1)
	assert.Empty(t, a.Cart.Items())

	current, ok := a.Orders.TakeCurrentOrder()
	require.True(t, ok)
	assert.Equal(t, order.ID, current.ID)
	_, ok = a.Orders.TakeCurrentOrder()
	assert.False(t, ok)

	_, err = a.Checkout(ctx, addr, models.PaymentModeCash)
	assert.ErrorIs(t, err, ErrValidation, "empty cart")
}

func TestLogoutDiscardsInFlightCartFetch(t *testing.T) {
	env := newEnv(t)
	a, _ := env.signedIn(t, models.User{})
	ctx := context.Background()
	p := env.api.SeedProduct(models.Product{Title: "mug"})
	_, err := a.Cart.Add(ctx, p.ID, 1)
	require.NoError(t, err)

	gate := env.api.Hold("GET /cart/user/:id")
	done := make(chan error, 1)
	go func() {
		_, err := a.Cart.Fetch(ctx)
		done <- err
	}()
	waitEntered(t, gate)

	env.api.FailNext("POST /auth/logout", http.StatusInternalServerError)
	assert.Error(t, a.Auth.Logout(ctx))
	assert.Empty(t, a.Cart.Items())

	gate.Release()
	assert.ErrorIs(t, <-done, state.ErrSuperseded)
	assert.Empty(t, a.Cart.Items())
	assert.Equal(t, state.StatusIdle, a.Cart.Tracker().Status(OpFetchByUser))
}

func TestLogoutDiscardsInFlightWishlistFetch(t *testing.T) {
	env := newEnv(t)
	a, _ := env.signedIn(t, models.User{})
	ctx := context.Background()
	p := env.api.SeedProduct(models.Product{Title: "lamp"})
	_, err := a.Wishlist.Create(ctx, p.ID, "")
	require.NoError(t, err)

	gate := env.api.Hold("GET /wishlist/user/:id")
	done := make(chan error, 1)
	go func() {
		_, err := a.Wishlist.Fetch(ctx)
		done <- err
	}()
	waitEntered(t, gate)

	require.NoError(t, a.Auth.Logout(ctx))

	gate.Release()
	assert.ErrorIs(t, <-done, state.ErrSuperseded)
	assert.Empty(t, a.Wishlist.Items())
}
