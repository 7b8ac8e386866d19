package service

import (
	"context"
	"fmt"

	"storefront-client/internal/models"
	"storefront-client/internal/state"
)

type OrderAPI interface {
	CreateOrder(ctx context.Context, in models.Order) (models.Order, error)
	FetchUserOrders(ctx context.Context) ([]models.Order, error)
	FetchAllOrders(ctx context.Context) ([]models.Order, error)
	UpdateOrderStatus(ctx context.Context, id string, status models.OrderStatus) (models.Order, error)
}

// Orders holds either the shopper's order history or, for admins, every
// order. A freshly created order is also kept as the current order until the
// confirmation view takes it.
type Orders struct {
	tracker *state.Tracker
	api     OrderAPI

	items   []models.Order
	current *models.Order
}

func NewOrders(api OrderAPI) *Orders {
	return &Orders{
		tracker: state.NewTracker("orders", OpCreate, OpFetchByUser, OpFetchAll, OpUpdateStatus),
		api:     api,
	}
}

func (o *Orders) Tracker() *state.Tracker { return o.tracker }

func (o *Orders) Create(ctx context.Context, in models.Order) (models.Order, error) {
	if len(in.Items) == 0 {
		return models.Order{}, fmt.Errorf("%w: order has no items", ErrValidation)
	}
	if err := requireField("paymentMode", in.PaymentMode); err != nil {
		return models.Order{}, err
	}

	return state.Run(ctx, o.tracker, OpCreate, func(ctx context.Context) (models.Order, error) {
		return o.api.CreateOrder(ctx, in)
	}, func(order models.Order) {
		o.items = state.Upsert(o.items, order)
		o.current = &order
	})
}

func (o *Orders) FetchByUser(ctx context.Context) ([]models.Order, error) {
	return state.Run(ctx, o.tracker, OpFetchByUser, func(ctx context.Context) ([]models.Order, error) {
		return o.api.FetchUserOrders(ctx)
	}, func(items []models.Order) {
		o.items = items
	})
}

// FetchAll loads every order; admin only on the server side.
func (o *Orders) FetchAll(ctx context.Context) ([]models.Order, error) {
	return state.Run(ctx, o.tracker, OpFetchAll, func(ctx context.Context) ([]models.Order, error) {
		return o.api.FetchAllOrders(ctx)
	}, func(items []models.Order) {
		o.items = items
	})
}

func (o *Orders) UpdateStatus(ctx context.Context, id string, status models.OrderStatus) (models.Order, error) {
	if err := requireField("id", id); err != nil {
		return models.Order{}, err
	}
	if !status.Valid() {
		return models.Order{}, fmt.Errorf("%w: unknown order status %q", ErrValidation, status)
	}

	return state.Run(ctx, o.tracker, OpUpdateStatus, func(ctx context.Context) (models.Order, error) {
		return o.api.UpdateOrderStatus(ctx, id, status)
	}, func(order models.Order) {
		o.items = state.Upsert(o.items, order)
	})
}

func (o *Orders) Items() []models.Order {
	var out []models.Order
	o.tracker.Read(func() { out = cloneSlice(o.items) })
	return out
}

func (o *Orders) CurrentOrder() (models.Order, bool) {
	var (
		out models.Order
		ok  bool
	)
	o.tracker.Read(func() {
		if o.current != nil {
			out, ok = *o.current, true
		}
	})
	return out, ok
}

// TakeCurrentOrder returns the current order and forgets it, so it is shown
// once.
func (o *Orders) TakeCurrentOrder() (models.Order, bool) {
	var (
		out models.Order
		ok  bool
	)
	o.tracker.Mutate(func() {
		if o.current != nil {
			out, ok = *o.current, true
			o.current = nil
		}
	})
	return out, ok
}
