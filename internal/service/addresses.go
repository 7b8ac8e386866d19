package service

import (
	"context"

	"storefront-client/internal/models"
	"storefront-client/internal/state"
)

type AddressAPI interface {
	FetchAddresses(ctx context.Context, userID string) ([]models.Address, error)
	CreateAddress(ctx context.Context, in models.Address) (models.Address, error)
	UpdateAddress(ctx context.Context, in models.Address) (models.Address, error)
	DeleteAddress(ctx context.Context, id string) (models.Address, error)
}

type Addresses struct {
	tracker *state.Tracker
	api     AddressAPI
	users   UserSource

	items []models.Address
}

func NewAddresses(api AddressAPI, users UserSource) *Addresses {
	return &Addresses{
		tracker: state.NewTracker("addresses", OpFetchByUser, OpCreate, OpUpdate, OpDelete),
		api:     api,
		users:   users,
	}
}

func (a *Addresses) Tracker() *state.Tracker { return a.tracker }

func (a *Addresses) Fetch(ctx context.Context) ([]models.Address, error) {
	userID, err := currentUserID(a.users)
	if err != nil {
		return nil, err
	}

	return state.Run(ctx, a.tracker, OpFetchByUser, func(ctx context.Context) ([]models.Address, error) {
		return a.api.FetchAddresses(ctx, userID)
	}, func(items []models.Address) {
		a.items = items
	})
}

func validateAddress(in models.Address) error {
	for _, f := range []struct{ name, value string }{
		{"street", in.Street},
		{"city", in.City},
		{"phoneNumber", in.PhoneNumber},
	} {
		if err := requireField(f.name, f.value); err != nil {
			return err
		}
	}
	return nil
}

// Create stores a new address for the signed-in user.
func (a *Addresses) Create(ctx context.Context, in models.Address) (models.Address, error) {
	if err := validateAddress(in); err != nil {
		return models.Address{}, err
	}
	userID, err := currentUserID(a.users)
	if err != nil {
		return models.Address{}, err
	}
	in.ID = ""
	in.User = models.RefTo[models.User](userID)

	return state.Run(ctx, a.tracker, OpCreate, func(ctx context.Context) (models.Address, error) {
		return a.api.CreateAddress(ctx, in)
	}, func(addr models.Address) {
		a.items = state.Upsert(a.items, addr)
	})
}

func (a *Addresses) Update(ctx context.Context, in models.Address) (models.Address, error) {
	if err := requireField("id", in.ID); err != nil {
		return models.Address{}, err
	}
	if err := validateAddress(in); err != nil {
		return models.Address{}, err
	}

	return state.Run(ctx, a.tracker, OpUpdate, func(ctx context.Context) (models.Address, error) {
		return a.api.UpdateAddress(ctx, in)
	}, func(addr models.Address) {
		a.items = state.Upsert(a.items, addr)
	})
}

func (a *Addresses) Delete(ctx context.Context, id string) (models.Address, error) {
	if err := requireField("id", id); err != nil {
		return models.Address{}, err
	}

	return state.Run(ctx, a.tracker, OpDelete, func(ctx context.Context) (models.Address, error) {
		return a.api.DeleteAddress(ctx, id)
	}, func(models.Address) {
		a.items = state.Remove(a.items, id)
	})
}

func (a *Addresses) Items() []models.Address {
	var out []models.Address
	a.tracker.Read(func() { out = cloneSlice(a.items) })
	return out
}
