package service

import (
	"context"
	"time"

	"storefront-client/internal/apiclient"
	"storefront-client/internal/models"
	"storefront-client/internal/state"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

type DashboardAPI interface {
	FetchUsers(ctx context.Context) (models.UserList, error)
	FetchProducts(ctx context.Context, q apiclient.ProductQuery) (models.ProductPage, error)
	FetchBrands(ctx context.Context) ([]models.Brand, error)
	FetchCategories(ctx context.Context) ([]models.Category, error)
	FetchAllOrders(ctx context.Context) ([]models.Order, error)
}

// MonthlyRevenue is the revenue of one calendar month, "2006-01".
type MonthlyRevenue struct {
	Month   string          `json:"month"`
	Revenue decimal.Decimal `json:"revenue"`
}

// Stats is the admin dashboard summary.
type Stats struct {
	Users      int              `json:"users"`
	Products   int              `json:"products"`
	Brands     int              `json:"brands"`
	Categories int              `json:"categories"`
	Orders     int              `json:"orders"`
	Revenue    decimal.Decimal  `json:"revenue"`
	Monthly    []MonthlyRevenue `json:"monthly"`
}

const revenueMonths = 6

// Dashboard loads the admin summary in one tracked operation; the five
// listings behind it are fetched concurrently.
type Dashboard struct {
	tracker *state.Tracker
	api     DashboardAPI
	now     func() time.Time

	stats *Stats
}

func NewDashboard(api DashboardAPI) *Dashboard {
	return &Dashboard{
		tracker: state.NewTracker("dashboard", OpLoad),
		api:     api,
		now:     time.Now,
	}
}

func (d *Dashboard) Tracker() *state.Tracker { return d.tracker }

func (d *Dashboard) Load(ctx context.Context) (Stats, error) {
	return state.Run(ctx, d.tracker, OpLoad, d.collect, func(s Stats) {
		d.stats = &s
	})
}

func (d *Dashboard) collect(ctx context.Context) (Stats, error) {
	var (
		users      models.UserList
		products   models.ProductPage
		brands     []models.Brand
		categories []models.Category
		orders     []models.Order
	)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		users, err = d.api.FetchUsers(ctx)
		return err
	})
	g.Go(func() (err error) {
		products, err = d.api.FetchProducts(ctx, apiclient.ProductQuery{Page: 1, Limit: 1})
		return err
	})
	g.Go(func() (err error) {
		brands, err = d.api.FetchBrands(ctx)
		return err
	})
	g.Go(func() (err error) {
		categories, err = d.api.FetchCategories(ctx)
		return err
	})
	g.Go(func() (err error) {
		orders, err = d.api.FetchAllOrders(ctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return Stats{}, err
	}

	userCount := users.Total
	if userCount == 0 {
		userCount = len(users.Users)
	}

	stats := Stats{
		Users:      userCount,
		Products:   products.TotalResults,
		Brands:     len(brands),
		Categories: len(categories),
		Orders:     len(orders),
		Revenue:    decimal.Zero,
		Monthly:    monthBuckets(d.now(), revenueMonths),
	}
	for _, o := range orders {
		if o.Status == models.OrderStatusCancelled {
			continue
		}
		stats.Revenue = stats.Revenue.Add(o.Total)
		month := o.CreatedAt.UTC().Format("2006-01")
		for i := range stats.Monthly {
			if stats.Monthly[i].Month == month {
				stats.Monthly[i].Revenue = stats.Monthly[i].Revenue.Add(o.Total)
			}
		}
	}
	return stats, nil
}

// monthBuckets returns n empty buckets ending with now's month, oldest first.
func monthBuckets(now time.Time, n int) []MonthlyRevenue {
	first := time.Date(now.UTC().Year(), now.UTC().Month(), 1, 0, 0, 0, 0, time.UTC)
	out := make([]MonthlyRevenue, n)
	for i := 0; i < n; i++ {
		out[i] = MonthlyRevenue{
			Month:   first.AddDate(0, i-(n-1), 0).Format("2006-01"),
			Revenue: decimal.Zero,
		}
	}
	return out
}

func (d *Dashboard) Stats() (Stats, bool) {
	var (
		out Stats
		ok  bool
	)
	d.tracker.Read(func() {
		if d.stats != nil {
			out, ok = *d.stats, true
		}
	})
	return out, ok
}
