package service

import (
	"context"

	"storefront-client/internal/apiclient"
	"storefront-client/internal/models"
	"storefront-client/internal/state"
)

type ProductsAPI interface {
	FetchProducts(ctx context.Context, q apiclient.ProductQuery) (models.ProductPage, error)
	FetchProduct(ctx context.Context, id string) (models.Product, error)
	CreateProduct(ctx context.Context, in apiclient.ProductInput) (models.Product, error)
	UpdateProduct(ctx context.Context, id string, in apiclient.ProductInput) (models.Product, error)
	DeleteProduct(ctx context.Context, id string) (models.Product, error)
}

// Products holds the current catalog page, the product on display and the
// search box results. Paging, sorting and filtering are done by the server.
type Products struct {
	tracker *state.Tracker
	api     ProductsAPI

	page     []models.Product
	total    int
	selected *models.Product
	results  []models.Product
}

func NewProducts(api ProductsAPI) *Products {
	return &Products{
		tracker: state.NewTracker("products",
			OpFetchList, OpFetchByID, OpSearch, OpCreate, OpUpdate, OpDelete),
		api: api,
	}
}

func (p *Products) Tracker() *state.Tracker { return p.tracker }

// FetchList replaces the current page with the server's answer for q.
func (p *Products) FetchList(ctx context.Context, q apiclient.ProductQuery) (models.ProductPage, error) {
	return state.Run(ctx, p.tracker, OpFetchList, func(ctx context.Context) (models.ProductPage, error) {
		return p.api.FetchProducts(ctx, q)
	}, func(page models.ProductPage) {
		p.page = page.Products
		p.total = page.TotalResults
	})
}

func (p *Products) FetchByID(ctx context.Context, id string) (models.Product, error) {
	if err := requireField("id", id); err != nil {
		return models.Product{}, err
	}

	return state.Run(ctx, p.tracker, OpFetchByID, func(ctx context.Context) (models.Product, error) {
		return p.api.FetchProduct(ctx, id)
	}, func(prod models.Product) {
		p.selected = &prod
	})
}

// Search runs a free-text query. Results are kept apart from the page so the
// listing underneath the search box is not replaced.
func (p *Products) Search(ctx context.Context, term string) ([]models.Product, error) {
	if err := requireField("search", term); err != nil {
		return nil, err
	}

	page, err := state.Run(ctx, p.tracker, OpSearch, func(ctx context.Context) (models.ProductPage, error) {
		return p.api.FetchProducts(ctx, apiclient.ProductQuery{Search: term, UserView: true})
	}, func(page models.ProductPage) {
		p.results = page.Products
	})
	return page.Products, err
}

func (p *Products) ClearSearch() {
	p.tracker.Mutate(func() { p.results = nil })
	p.tracker.Reset(OpSearch)
}

func (p *Products) ClearSelected() {
	p.tracker.Mutate(func() { p.selected = nil })
	p.tracker.Reset(OpFetchByID)
}

func (p *Products) Create(ctx context.Context, in apiclient.ProductInput) (models.Product, error) {
	if in.Title == nil || *in.Title == "" {
		return models.Product{}, requireField("title", "")
	}
	if in.Price == nil {
		return models.Product{}, requireField("price", "")
	}

	return state.Run(ctx, p.tracker, OpCreate, func(ctx context.Context) (models.Product, error) {
		return p.api.CreateProduct(ctx, in)
	}, func(prod models.Product) {
		p.page = state.Upsert(p.page, prod)
	})
}

func (p *Products) Update(ctx context.Context, id string, in apiclient.ProductInput) (models.Product, error) {
	if err := requireField("id", id); err != nil {
		return models.Product{}, err
	}

	return state.Run(ctx, p.tracker, OpUpdate, func(ctx context.Context) (models.Product, error) {
		return p.api.UpdateProduct(ctx, id, in)
	}, func(prod models.Product) {
		p.page = state.Upsert(p.page, prod)
		if p.selected != nil && p.selected.ID == prod.ID {
			p.selected = &prod
		}
	})
}

func (p *Products) Delete(ctx context.Context, id string) (models.Product, error) {
	if err := requireField("id", id); err != nil {
		return models.Product{}, err
	}

	return state.Run(ctx, p.tracker, OpDelete, func(ctx context.Context) (models.Product, error) {
		return p.api.DeleteProduct(ctx, id)
	}, func(models.Product) {
		p.page = state.Remove(p.page, id)
		if p.selected != nil && p.selected.ID == id {
			p.selected = nil
		}
	})
}

// Page returns the products of the last fetched page.
func (p *Products) Page() []models.Product {
	var out []models.Product
	p.tracker.Read(func() { out = cloneSlice(p.page) })
	return out
}

// TotalResults is the server's count across all pages.
func (p *Products) TotalResults() int {
	var n int
	p.tracker.Read(func() { n = p.total })
	return n
}

func (p *Products) Selected() (models.Product, bool) {
	var (
		out models.Product
		ok  bool
	)
	p.tracker.Read(func() {
		if p.selected != nil {
			out, ok = *p.selected, true
		}
	})
	return out, ok
}

func (p *Products) SearchResults() []models.Product {
	var out []models.Product
	p.tracker.Read(func() { out = cloneSlice(p.results) })
	return out
}
