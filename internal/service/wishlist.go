package service

import (
	"context"
	"encoding/json"
	"fmt"

	"storefront-client/internal/apiclient"
	"storefront-client/internal/models"
	"storefront-client/internal/state"
	"storefront-client/internal/util"

	"go.uber.org/zap"
)

type WishlistAPI interface {
	FetchWishlist(ctx context.Context, userID string) ([]models.WishlistItem, error)
	CreateWishlistItem(ctx context.Context, in apiclient.WishlistItemInput) (models.WishlistItem, error)
	UpdateWishlistItem(ctx context.Context, id, note string) (models.WishlistItem, error)
	DeleteWishlistItem(ctx context.Context, id string) (models.WishlistItem, error)
}

type Wishlist struct {
	tracker *state.Tracker
	api     WishlistAPI
	users   UserSource
	logger  *zap.Logger

	items []models.WishlistItem
}

func NewWishlist(api WishlistAPI, users UserSource) *Wishlist {
	return &Wishlist{
		tracker: state.NewTracker("wishlist", OpFetchByUser, OpCreate, OpUpdate, OpDelete),
		api:     api,
		users:   users,
		logger:  util.Named("wishlist"),
	}
}

func (w *Wishlist) Tracker() *state.Tracker { return w.tracker }

func (w *Wishlist) Fetch(ctx context.Context) ([]models.WishlistItem, error) {
	userID, err := currentUserID(w.users)
	if err != nil {
		return nil, err
	}

	return state.Run(ctx, w.tracker, OpFetchByUser, func(ctx context.Context) ([]models.WishlistItem, error) {
		return w.api.FetchWishlist(ctx, userID)
	}, func(items []models.WishlistItem) {
		w.items = items
	})
}

func (w *Wishlist) Create(ctx context.Context, productID, note string) (models.WishlistItem, error) {
	if err := requireField("product", productID); err != nil {
		return models.WishlistItem{}, err
	}
	userID, err := currentUserID(w.users)
	if err != nil {
		return models.WishlistItem{}, err
	}

	item, err := state.Run(ctx, w.tracker, OpCreate, func(ctx context.Context) (models.WishlistItem, error) {
		return w.api.CreateWishlistItem(ctx, apiclient.WishlistItemInput{User: userID, Product: productID, Note: note})
	}, func(item models.WishlistItem) {
		w.items = state.Upsert(w.items, item)
	})
	if err != nil {
		return item, err
	}

	w.refetch(ctx)
	return item, nil
}

// Update replaces the note of one item.
func (w *Wishlist) Update(ctx context.Context, itemID, note string) (models.WishlistItem, error) {
	if err := requireField("id", itemID); err != nil {
		return models.WishlistItem{}, err
	}

	return state.Run(ctx, w.tracker, OpUpdate, func(ctx context.Context) (models.WishlistItem, error) {
		return w.api.UpdateWishlistItem(ctx, itemID, note)
	}, func(item models.WishlistItem) {
		w.items = state.Upsert(w.items, item)
	})
}

func (w *Wishlist) Delete(ctx context.Context, itemID string) (models.WishlistItem, error) {
	if err := requireField("id", itemID); err != nil {
		return models.WishlistItem{}, err
	}

	item, err := state.Run(ctx, w.tracker, OpDelete, func(ctx context.Context) (models.WishlistItem, error) {
		return w.api.DeleteWishlistItem(ctx, itemID)
	}, func(models.WishlistItem) {
		w.items = state.Remove(w.items, itemID)
	})
	if err != nil {
		return item, err
	}

	w.refetch(ctx)
	return item, nil
}

// Clear drops the local wishlist and invalidates calls still in flight.
func (w *Wishlist) Clear() {
	for _, op := range w.tracker.Operations() {
		w.tracker.Reset(op)
	}
	w.tracker.Mutate(func() { w.items = nil })
}

func (w *Wishlist) refetch(ctx context.Context) {
	if _, err := w.Fetch(ctx); err != nil {
		w.logger.Warn("Wishlist refetch failed", zap.Error(err))
	}
}

func (w *Wishlist) Items() []models.WishlistItem {
	var out []models.WishlistItem
	w.tracker.Read(func() { out = cloneSlice(w.items) })
	return out
}

func (w *Wishlist) Snapshot() any {
	return itemsSnapshot[models.WishlistItem]{Items: w.Items()}
}

func (w *Wishlist) Restore(raw json.RawMessage) error {
	var snap itemsSnapshot[models.WishlistItem]
	if err := json.Unmarshal(raw, &snap); err != nil {
		return fmt.Errorf("decode wishlist snapshot: %w", err)
	}
	w.tracker.Mutate(func() { w.items = snap.Items })
	return nil
}
