package apiclient

import (
	"net/url"
	"strconv"

	"github.com/shopspring/decimal"
)

type SignupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type VerifyOTPRequest struct {
	UserID string `json:"userId"`
	OTP    string `json:"otp"`
}

type ResendOTPRequest struct {
	UserID string `json:"user,omitempty"`
	Email  string `json:"email,omitempty"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

type ResetPasswordRequest struct {
	UserID   string `json:"userId"`
	Token    string `json:"token"`
	Password string `json:"password"`
}

// ProductInput is the body of product create and update calls. Update sends
// only the non-nil fields.
type ProductInput struct {
	Title              *string          `json:"title,omitempty"`
	Description        *string          `json:"description,omitempty"`
	Price              *decimal.Decimal `json:"price,omitempty"`
	DiscountPercentage *decimal.Decimal `json:"discountPercentage,omitempty"`
	Brand              *string          `json:"brand,omitempty"`
	Category           *string          `json:"category,omitempty"`
	StockQuantity      *int             `json:"stockQuantity,omitempty"`
	Thumbnail          *string          `json:"thumbnail,omitempty"`
	Images             []string         `json:"images,omitempty"`
}

type CartItemInput struct {
	User     string `json:"user"`
	Product  string `json:"product"`
	Quantity int    `json:"quantity"`
}

type WishlistItemInput struct {
	User    string `json:"user"`
	Product string `json:"product"`
	Note    string `json:"note,omitempty"`
}

type ReviewInput struct {
	User    string `json:"user,omitempty"`
	Product string `json:"product,omitempty"`
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

// UserUpdate carries the editable user fields. Admin block and unblock send
// only IsVerified.
type UserUpdate struct {
	Name       *string `json:"name,omitempty"`
	Email      *string `json:"email,omitempty"`
	IsVerified *bool   `json:"isVerified,omitempty"`
	IsAdmin    *bool   `json:"isAdmin,omitempty"`
}

// SortOrder is the sort direction of the product list.
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// ProductQuery carries the server-side listing controls. Zero values are
// left out of the query string.
type ProductQuery struct {
	Page       int
	Limit      int
	Sort       string
	Order      SortOrder
	Brands     []string
	Categories []string
	Feature    string
	Search     string
	// UserView hides soft-deleted products; set for every non-admin caller.
	UserView bool
}

// Values encodes the query the way the API expects it.
func (q ProductQuery) Values() url.Values {
	v := url.Values{}
	if q.Feature != "" {
		v.Set("feature", q.Feature)
	}
	for _, b := range q.Brands {
		v.Add("brand", b)
	}
	for _, c := range q.Categories {
		v.Add("category", c)
	}
	if q.Sort != "" {
		v.Set("sort", q.Sort)
		order := q.Order
		if order == "" {
			order = SortAsc
		}
		v.Set("order", string(order))
	}
	if q.Page > 0 {
		v.Set("page", strconv.Itoa(q.Page))
	}
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}
	if q.Search != "" {
		v.Set("search", q.Search)
	}
	if q.UserView {
		v.Set("user", "true")
	}
	return v
}
