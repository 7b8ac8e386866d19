package service

import (
	"context"
	"fmt"

	"storefront-client/internal/apiclient"
	"storefront-client/internal/models"
	"storefront-client/internal/state"
)

type ReviewAPI interface {
	FetchReviews(ctx context.Context, productID string) ([]models.Review, error)
	CreateReview(ctx context.Context, in apiclient.ReviewInput) (models.Review, error)
	UpdateReview(ctx context.Context, id string, in apiclient.ReviewInput) (models.Review, error)
	DeleteReview(ctx context.Context, id string) (models.Review, error)
}

// Reviews holds the reviews of the product being viewed.
type Reviews struct {
	tracker *state.Tracker
	api     ReviewAPI
	users   UserSource

	items []models.Review
}

func NewReviews(api ReviewAPI, users UserSource) *Reviews {
	return &Reviews{
		tracker: state.NewTracker("reviews", OpFetchByProduct, OpCreate, OpUpdate, OpDelete),
		api:     api,
		users:   users,
	}
}

func (r *Reviews) Tracker() *state.Tracker { return r.tracker }

func (r *Reviews) FetchByProduct(ctx context.Context, productID string) ([]models.Review, error) {
	if err := requireField("product", productID); err != nil {
		return nil, err
	}

	return state.Run(ctx, r.tracker, OpFetchByProduct, func(ctx context.Context) ([]models.Review, error) {
		return r.api.FetchReviews(ctx, productID)
	}, func(items []models.Review) {
		r.items = items
	})
}

func validateRating(rating int) error {
	if rating < 1 || rating > 5 {
		return fmt.Errorf("%w: rating must be between 1 and 5", ErrValidation)
	}
	return nil
}

func (r *Reviews) Create(ctx context.Context, productID string, rating int, comment string) (models.Review, error) {
	if err := requireField("product", productID); err != nil {
		return models.Review{}, err
	}
	if err := validateRating(rating); err != nil {
		return models.Review{}, err
	}
	userID, err := currentUserID(r.users)
	if err != nil {
		return models.Review{}, err
	}

	in := apiclient.ReviewInput{User: userID, Product: productID, Rating: rating, Comment: comment}
	return state.Run(ctx, r.tracker, OpCreate, func(ctx context.Context) (models.Review, error) {
		return r.api.CreateReview(ctx, in)
	}, func(rev models.Review) {
		r.items = state.Upsert(r.items, rev)
	})
}

func (r *Reviews) Update(ctx context.Context, id string, rating int, comment string) (models.Review, error) {
	if err := requireField("id", id); err != nil {
		return models.Review{}, err
	}
	if err := validateRating(rating); err != nil {
		return models.Review{}, err
	}

	in := apiclient.ReviewInput{Rating: rating, Comment: comment}
	return state.Run(ctx, r.tracker, OpUpdate, func(ctx context.Context) (models.Review, error) {
		return r.api.UpdateReview(ctx, id, in)
	}, func(rev models.Review) {
		r.items = state.Upsert(r.items, rev)
	})
}

func (r *Reviews) Delete(ctx context.Context, id string) (models.Review, error) {
	if err := requireField("id", id); err != nil {
		return models.Review{}, err
	}

	return state.Run(ctx, r.tracker, OpDelete, func(ctx context.Context) (models.Review, error) {
		return r.api.DeleteReview(ctx, id)
	}, func(models.Review) {
		r.items = state.Remove(r.items, id)
	})
}

func (r *Reviews) Items() []models.Review {
	var out []models.Review
	r.tracker.Read(func() { out = cloneSlice(r.items) })
	return out
}
