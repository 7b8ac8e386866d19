package service

import (
	"context"

	"storefront-client/internal/apiclient"
	"storefront-client/internal/models"
	"storefront-client/internal/state"
)

// TaxonomyAPI is the CRUD surface shared by brands and categories.
type TaxonomyAPI[T state.Keyed] interface {
	FetchAll(ctx context.Context) ([]T, error)
	Create(ctx context.Context, name string) (T, error)
	Update(ctx context.Context, id, name string) (T, error)
	Delete(ctx context.Context, id string) (T, error)
}

// Taxonomy is a named list of records such as brands or categories.
type Taxonomy[T state.Keyed] struct {
	tracker *state.Tracker
	api     TaxonomyAPI[T]

	items []T
}

func NewTaxonomy[T state.Keyed](name string, api TaxonomyAPI[T]) *Taxonomy[T] {
	return &Taxonomy[T]{
		tracker: state.NewTracker(name, OpFetchAll, OpCreate, OpUpdate, OpDelete),
		api:     api,
	}
}

func (t *Taxonomy[T]) Tracker() *state.Tracker { return t.tracker }

func (t *Taxonomy[T]) FetchAll(ctx context.Context) ([]T, error) {
	return state.Run(ctx, t.tracker, OpFetchAll, t.api.FetchAll, func(items []T) {
		t.items = items
	})
}

func (t *Taxonomy[T]) Create(ctx context.Context, name string) (T, error) {
	if err := requireField("name", name); err != nil {
		var zero T
		return zero, err
	}

	return state.Run(ctx, t.tracker, OpCreate, func(ctx context.Context) (T, error) {
		return t.api.Create(ctx, name)
	}, func(item T) {
		t.items = state.Upsert(t.items, item)
	})
}

func (t *Taxonomy[T]) Update(ctx context.Context, id, name string) (T, error) {
	for _, f := range [][2]string{{"id", id}, {"name", name}} {
		if err := requireField(f[0], f[1]); err != nil {
			var zero T
			return zero, err
		}
	}

	return state.Run(ctx, t.tracker, OpUpdate, func(ctx context.Context) (T, error) {
		return t.api.Update(ctx, id, name)
	}, func(item T) {
		t.items = state.Upsert(t.items, item)
	})
}

func (t *Taxonomy[T]) Delete(ctx context.Context, id string) (T, error) {
	if err := requireField("id", id); err != nil {
		var zero T
		return zero, err
	}

	return state.Run(ctx, t.tracker, OpDelete, func(ctx context.Context) (T, error) {
		return t.api.Delete(ctx, id)
	}, func(T) {
		t.items = state.Remove(t.items, id)
	})
}

func (t *Taxonomy[T]) Items() []T {
	var out []T
	t.tracker.Read(func() { out = cloneSlice(t.items) })
	return out
}

type brandAPI struct{ c *apiclient.Client }

func (b brandAPI) FetchAll(ctx context.Context) ([]models.Brand, error) { return b.c.FetchBrands(ctx) }
func (b brandAPI) Create(ctx context.Context, name string) (models.Brand, error) {
	return b.c.CreateBrand(ctx, name)
}
func (b brandAPI) Update(ctx context.Context, id, name string) (models.Brand, error) {
	return b.c.UpdateBrand(ctx, id, name)
}
func (b brandAPI) Delete(ctx context.Context, id string) (models.Brand, error) {
	return b.c.DeleteBrand(ctx, id)
}

type categoryAPI struct{ c *apiclient.Client }

func (a categoryAPI) FetchAll(ctx context.Context) ([]models.Category, error) {
	return a.c.FetchCategories(ctx)
}
func (a categoryAPI) Create(ctx context.Context, name string) (models.Category, error) {
	return a.c.CreateCategory(ctx, name)
}
func (a categoryAPI) Update(ctx context.Context, id, name string) (models.Category, error) {
	return a.c.UpdateCategory(ctx, id, name)
}
func (a categoryAPI) Delete(ctx context.Context, id string) (models.Category, error) {
	return a.c.DeleteCategory(ctx, id)
}
