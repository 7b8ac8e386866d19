package service

import (
	"context"
	"fmt"

	"storefront-client/internal/apiclient"
	"storefront-client/internal/models"
	"storefront-client/internal/persist"
	"storefront-client/internal/state"
	"storefront-client/internal/util"

	"github.com/shopspring/decimal"
)

// Flat checkout charges added on top of the cart subtotal.
var (
	Shipping = decimal.NewFromInt(5)
	Taxes    = decimal.NewFromInt(5)
)

// App is the whole client state: every container, wired to one API client.
type App struct {
	Auth       *Auth
	Products   *Products
	Brands     *Taxonomy[models.Brand]
	Categories *Taxonomy[models.Category]
	Cart       *Cart
	Wishlist   *Wishlist
	Addresses  *Addresses
	Reviews    *Reviews
	Orders     *Orders
	AdminUsers *AdminUsers
	Profile    *Profile
	Dashboard  *Dashboard

	containers []Container
}

func NewApp(client *apiclient.Client) *App {
	a := &App{}
	a.Auth = NewAuth(client)
	a.Products = NewProducts(client)
	a.Brands = NewTaxonomy[models.Brand]("brands", brandAPI{client})
	a.Categories = NewTaxonomy[models.Category]("categories", categoryAPI{client})
	a.Cart = NewCart(client, a.Auth)
	a.Wishlist = NewWishlist(client, a.Auth)
	a.Addresses = NewAddresses(client, a.Auth)
	a.Reviews = NewReviews(client, a.Auth)
	a.Orders = NewOrders(client)
	a.AdminUsers = NewAdminUsers(client)
	a.Profile = NewProfile(client, a.Auth)
	a.Dashboard = NewDashboard(client)

	a.containers = []Container{
		a.Auth, a.Products, a.Brands, a.Categories, a.Cart, a.Wishlist,
		a.Addresses, a.Reviews, a.Orders, a.AdminUsers, a.Profile, a.Dashboard,
	}

	a.Auth.OnLogout(a.Cart.Clear)
	a.Auth.OnLogout(a.Wishlist.Clear)
	a.Observe(func(tr state.Transition) {
		util.OperationTransitionsTotal.WithLabelValues(tr.Container, tr.Operation, string(tr.To)).Inc()
	})
	return a
}

// Containers lists every container in a fixed order.
func (a *App) Containers() []Container {
	return append([]Container(nil), a.containers...)
}

// Container finds a container by its tracker name.
func (a *App) Container(name string) (Container, bool) {
	for _, c := range a.containers {
		if c.Tracker().Container() == name {
			return c, true
		}
	}
	return nil, false
}

// Observe registers o on every container.
func (a *App) Observe(o state.Observer) {
	for _, c := range a.containers {
		c.Tracker().Observe(o)
	}
}

// Persisted returns the slices that survive a restart: auth, cart and
// wishlist.
func (a *App) Persisted() []persist.Slice {
	return []persist.Slice{a.Auth, a.Cart, a.Wishlist}
}

// AttachPersistor keeps p in sync with the persisted slices, including the
// local clears done on logout and profile updates of the signed-in user.
func (a *App) AttachPersistor(p *persist.Persistor) {
	p.Attach()
	a.Auth.OnLogout(p.FlushNow)
	a.Auth.OnChange(p.FlushNow)
}

// Checkout turns the cart into an order addressed to address, then empties
// the cart. The order total is the subtotal plus shipping and taxes.
func (a *App) Checkout(ctx context.Context, address models.Address, paymentMode string) (models.Order, error) {
	ctx, span := util.StartSpan(ctx, "app.checkout")
	defer span.End()

	user, ok := a.Auth.CurrentUser()
	if !ok {
		return models.Order{}, ErrNotAuthenticated
	}
	if err := validateAddress(address); err != nil {
		return models.Order{}, err
	}
	switch paymentMode {
	case models.PaymentModeCash, models.PaymentModeCard:
	default:
		return models.Order{}, fmt.Errorf("%w: unknown payment mode %q", ErrValidation, paymentMode)
	}

	items := a.Cart.Items()
	if len(items) == 0 {
		return models.Order{}, fmt.Errorf("%w: cart is empty", ErrValidation)
	}

	order, err := a.Orders.Create(ctx, models.Order{
		User:        models.RefTo[models.User](user.ID),
		Items:       items,
		Address:     address,
		PaymentMode: paymentMode,
		Total:       a.Cart.Subtotal().Add(Shipping).Add(Taxes),
	})
	if err != nil {
		return order, err
	}

	if err := a.Cart.ResetForUser(ctx); err != nil {
		return order, fmt.Errorf("order %s placed but cart reset failed: %w", order.ID, err)
	}
	return order, nil
}
