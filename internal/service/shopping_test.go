package service

import (
	"context"
	"testing"

	"storefront-client/internal/models"
	"storefront-client/internal/state"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWishlistLifecycle(t *testing.T) {
	env := newEnv(t)
	a, _ := env.signedIn(t, models.User{})
	ctx := context.Background()
	lamp := env.api.SeedProduct(models.Product{Title: "lamp"})
	desk := env.api.SeedProduct(models.Product{Title: "desk"})

	first, err := a.Wishlist.Create(ctx, lamp.ID, "")
	require.NoError(t, err)
	_, err = a.Wishlist.Create(ctx, desk.ID, "maybe")
	require.NoError(t, err)
	require.Len(t, a.Wishlist.Items(), 2)
	assert.Equal(t, 2, env.api.Calls("GET /wishlist/user/:id"))

	updated, err := a.Wishlist.Update(ctx, first.ID, "birthday")
	require.NoError(t, err)
	assert.Equal(t, "birthday", updated.Note)
	assert.Equal(t, 2, env.api.Calls("GET /wishlist/user/:id"), "note update does not refetch")

	_, err = a.Wishlist.Delete(ctx, first.ID)
	require.NoError(t, err)
	items := a.Wishlist.Items()
	require.Len(t, items, 1)
	assert.Equal(t, desk.ID, items[0].Product.ID)
	assert.Equal(t, 3, env.api.Calls("GET /wishlist/user/:id"))

	_, err = a.Wishlist.Update(ctx, "", "x")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestAddressesCRUD(t *testing.T) {
	env := newEnv(t)
	a, u := env.signedIn(t, models.User{})
	ctx := context.Background()

	_, err := a.Addresses.Create(ctx, models.Address{Street: "1 Main St"})
	assert.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, state.StatusIdle, a.Addresses.Tracker().Status(OpCreate))
	assert.Equal(t, 0, env.api.Calls("POST /addresses"))

	home, err := a.Addresses.Create(ctx, models.Address{Type: "Home", Street: "1 Main St", City: "Springfield", PhoneNumber: "555-0100"})
	require.NoError(t, err)
	assert.Equal(t, u.ID, home.User.ID)
	assert.NotEmpty(t, home.ID)

	home.City = "Shelbyville"
	_, err = a.Addresses.Update(ctx, home)
	require.NoError(t, err)
	items := a.Addresses.Items()
	require.Len(t, items, 1)
	assert.Equal(t, "Shelbyville", items[0].City)

	fresh := env.app(t)
	_, err = fresh.Addresses.Fetch(ctx)
	assert.ErrorIs(t, err, ErrNotAuthenticated)

	fetched, err := a.Addresses.Fetch(ctx)
	require.NoError(t, err)
	require.Len(t, fetched, 1)

	_, err = a.Addresses.Delete(ctx, home.ID)
	require.NoError(t, err)
	assert.Empty(t, a.Addresses.Items())
}

func TestReviewsCRUD(t *testing.T) {
	env := newEnv(t)
	a, u := env.signedIn(t, models.User{Name: "Ann"})
	ctx := context.Background()
	p := env.api.SeedProduct(models.Product{Title: "mug"})

	_, err := a.Reviews.Create(ctx, p.ID, 6, "too good")
	assert.ErrorIs(t, err, ErrValidation)

	rev, err := a.Reviews.Create(ctx, p.ID, 4, "nice")
	require.NoError(t, err)
	require.NotNil(t, rev.User.Obj)
	assert.Equal(t, u.ID, rev.User.ID)
	assert.Equal(t, "Ann", rev.User.Obj.Name)

	_, err = a.Reviews.Update(ctx, rev.ID, 5, "great")
	require.NoError(t, err)

	reader := env.app(t)
	list, err := reader.Reviews.FetchByProduct(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, 5, list[0].Rating)
	assert.Equal(t, "great", list[0].Comment)

	_, err = a.Reviews.Delete(ctx, rev.ID)
	require.NoError(t, err)
	assert.Empty(t, a.Reviews.Items())
}

func TestProfileUpdateRefreshesAuth(t *testing.T) {
	env := newEnv(t)
	a, u := env.signedIn(t, models.User{Name: "Ann"})
	ctx := context.Background()

	got, err := a.Profile.Fetch(ctx)
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	_, err = a.Profile.Update(ctx, "Ann Lee", "ann.lee@example.com")
	require.NoError(t, err)

	current, ok := a.Auth.CurrentUser()
	require.True(t, ok)
	assert.Equal(t, "Ann Lee", current.Name)
	assert.Equal(t, "ann.lee@example.com", current.Email)

	profile, ok := a.Profile.User()
	require.True(t, ok)
	assert.Equal(t, "Ann Lee", profile.Name)

	_, err = a.Profile.Update(ctx, "Ann", "")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestOrdersFetchByUser(t *testing.T) {
	env := newEnv(t)
	a, u := env.signedIn(t, models.User{})
	other := env.api.SeedUser(models.User{Email: "other@example.com", IsVerified: true}, "secret")
	env.api.SeedOrder(models.Order{User: models.RefTo[models.User](u.ID), PaymentMode: models.PaymentModeCard})
	env.api.SeedOrder(models.Order{User: models.RefTo[models.User](other.ID), PaymentMode: models.PaymentModeCash})

	orders, err := a.Orders.FetchByUser(context.Background())
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, u.ID, orders[0].User.ID)
	assert.Len(t, a.Orders.Items(), 1)
}
