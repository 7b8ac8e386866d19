package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// User mirrors the API's user document.
type User struct {
	ID         string `json:"_id"`
	Name       string `json:"name,omitempty"`
	Email      string `json:"email"`
	IsVerified bool   `json:"isVerified"`
	IsAdmin    bool   `json:"isAdmin"`
}

func (u User) Key() string { return u.ID }

type Brand struct {
	ID   string `json:"_id"`
	Name string `json:"name"`
}

func (b Brand) Key() string { return b.ID }

type Category struct {
	ID   string `json:"_id"`
	Name string `json:"name"`
}

func (c Category) Key() string { return c.ID }

// Product represents a catalog entry.
type Product struct {
	ID                 string          `json:"_id"`
	Title              string          `json:"title"`
	Description        string          `json:"description,omitempty"`
	Price              decimal.Decimal `json:"price"`
	DiscountPercentage decimal.Decimal `json:"discountPercentage"`
	Category           Ref[Category]   `json:"category"`
	Brand              Ref[Brand]      `json:"brand"`
	StockQuantity      int             `json:"stockQuantity"`
	Thumbnail          string          `json:"thumbnail,omitempty"`
	Images             []string        `json:"images,omitempty"`
	IsDeleted          bool            `json:"isDeleted,omitempty"`
}

func (p Product) Key() string { return p.ID }

// CartItem is one row of a user's cart.
type CartItem struct {
	ID       string       `json:"_id"`
	User     Ref[User]    `json:"user"`
	Product  Ref[Product] `json:"product"`
	Quantity int          `json:"quantity"`
}

func (c CartItem) Key() string { return c.ID }

// LineTotal is price times quantity, zero when the product is not populated.
func (c CartItem) LineTotal() decimal.Decimal {
	if c.Product.Obj == nil {
		return decimal.Zero
	}
	return c.Product.Obj.Price.Mul(decimal.NewFromInt(int64(c.Quantity)))
}

type WishlistItem struct {
	ID      string       `json:"_id"`
	User    Ref[User]    `json:"user"`
	Product Ref[Product] `json:"product"`
	Note    string       `json:"note,omitempty"`
}

func (w WishlistItem) Key() string { return w.ID }

type Address struct {
	ID          string    `json:"_id,omitempty"`
	User        Ref[User] `json:"user"`
	Type        string    `json:"type"`
	Street      string    `json:"street"`
	City        string    `json:"city"`
	State       string    `json:"state"`
	PostalCode  string    `json:"postalCode,omitempty"`
	Country     string    `json:"country,omitempty"`
	PhoneNumber string    `json:"phoneNumber"`
}

func (a Address) Key() string { return a.ID }

type Review struct {
	ID        string       `json:"_id"`
	User      Ref[User]    `json:"user"`
	Product   Ref[Product] `json:"product"`
	Rating    int          `json:"rating"`
	Comment   string       `json:"comment"`
	CreatedAt time.Time    `json:"createdAt,omitempty"`
}

func (r Review) Key() string { return r.ID }

// OrderStatus is the fulfilment state an admin moves an order through.
type OrderStatus string

const (
	OrderStatusPending               OrderStatus = "Pending"
	OrderStatusConfirmed             OrderStatus = "Confirmed"
	OrderStatusPreparing             OrderStatus = "Preparing"
	OrderStatusOutForDelivery        OrderStatus = "Out for delivery"
	OrderStatusDelivered             OrderStatus = "Delivered"
	OrderStatusCancelled             OrderStatus = "Cancelled"
	OrderStatusCancellationRequested OrderStatus = "Cancellation Requested"
)

// OrderStatuses lists every status in display order.
var OrderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusConfirmed,
	OrderStatusPreparing,
	OrderStatusOutForDelivery,
	OrderStatusDelivered,
	OrderStatusCancelled,
	OrderStatusCancellationRequested,
}

func (s OrderStatus) Valid() bool {
	for _, known := range OrderStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// Order is the checkout snapshot of a cart.
type Order struct {
	ID          string          `json:"_id"`
	User        Ref[User]       `json:"user"`
	Items       []CartItem      `json:"item"`
	Address     Address         `json:"address"`
	PaymentMode string          `json:"paymentMode"`
	Total       decimal.Decimal `json:"total"`
	Status      OrderStatus     `json:"status"`
	CreatedAt   time.Time       `json:"createdAt,omitempty"`
}

func (o Order) Key() string { return o.ID }

// Payment modes offered at checkout.
const (
	PaymentModeCash = "cash"
	PaymentModeCard = "card"
)

// Product list feature tags resolved by the server.
const (
	FeatureNewest          = "newest"
	FeatureBestSelling     = "best-selling"
	FeatureMostViewed      = "most-viewed"
	FeatureHighestDiscount = "highest-discount"
)

// ProductPage is one server-side page of the product list.
type ProductPage struct {
	Products     []Product `json:"data"`
	TotalResults int       `json:"totalResults"`
}

// AuthResponse is the common envelope of the /auth endpoints.
type AuthResponse struct {
	Message string `json:"message,omitempty"`
	Email   string `json:"email,omitempty"`
	User    *User  `json:"user,omitempty"`
}

// UserList is the admin listing envelope.
type UserList struct {
	Message string `json:"message,omitempty"`
	Users   []User `json:"users"`
	Total   int    `json:"total"`
}
