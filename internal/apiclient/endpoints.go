package apiclient

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"storefront-client/internal/models"
)

// Auth

func (c *Client) Signup(ctx context.Context, req SignupRequest) (*models.AuthResponse, error) {
	var out models.AuthResponse
	_, err := c.do(ctx, http.MethodPost, "/auth/signup", nil, req, &out)
	return &out, err
}

func (c *Client) Login(ctx context.Context, req Credentials) (*models.AuthResponse, error) {
	var out models.AuthResponse
	_, err := c.do(ctx, http.MethodPost, "/auth/login", nil, req, &out)
	return &out, err
}

func (c *Client) VerifyOTP(ctx context.Context, req VerifyOTPRequest) (*models.AuthResponse, error) {
	var out models.AuthResponse
	_, err := c.do(ctx, http.MethodPost, "/auth/verify-otp", nil, req, &out)
	return &out, err
}

func (c *Client) ResendOTP(ctx context.Context, req ResendOTPRequest) (*models.AuthResponse, error) {
	var out models.AuthResponse
	_, err := c.do(ctx, http.MethodPost, "/auth/resend-otp", nil, req, &out)
	return &out, err
}

func (c *Client) ForgotPassword(ctx context.Context, req ForgotPasswordRequest) (*models.AuthResponse, error) {
	var out models.AuthResponse
	_, err := c.do(ctx, http.MethodPost, "/auth/forgot-password", nil, req, &out)
	return &out, err
}

func (c *Client) ResetPassword(ctx context.Context, req ResetPasswordRequest) (*models.AuthResponse, error) {
	var out models.AuthResponse
	_, err := c.do(ctx, http.MethodPost, "/auth/reset-password", nil, req, &out)
	return &out, err
}

func (c *Client) CheckAuth(ctx context.Context) (*models.AuthResponse, error) {
	var out models.AuthResponse
	_, err := c.do(ctx, http.MethodGet, "/auth/check", nil, nil, &out)
	return &out, err
}

func (c *Client) Logout(ctx context.Context) error {
	_, err := c.do(ctx, http.MethodPost, "/auth/logout", nil, nil, nil)
	return err
}

// Products

// FetchProducts returns one page; the total comes from X-Total-Count.
func (c *Client) FetchProducts(ctx context.Context, q ProductQuery) (models.ProductPage, error) {
	var products []models.Product
	header, err := c.do(ctx, http.MethodGet, "/products", q.Values(), nil, &products)
	if err != nil {
		return models.ProductPage{}, err
	}

	page := models.ProductPage{Products: products, TotalResults: len(products)}
	if total, convErr := strconv.Atoi(header.Get("X-Total-Count")); convErr == nil {
		page.TotalResults = total
	}
	return page, nil
}

func (c *Client) FetchProduct(ctx context.Context, id string) (models.Product, error) {
	var out models.Product
	_, err := c.do(ctx, http.MethodGet, "/products/"+url.PathEscape(id), nil, nil, &out)
	return out, err
}

func (c *Client) CreateProduct(ctx context.Context, in ProductInput) (models.Product, error) {
	var out models.Product
	_, err := c.do(ctx, http.MethodPost, "/products", nil, in, &out)
	return out, err
}

func (c *Client) UpdateProduct(ctx context.Context, id string, in ProductInput) (models.Product, error) {
	var out models.Product
	_, err := c.do(ctx, http.MethodPatch, "/products/"+url.PathEscape(id), nil, in, &out)
	return out, err
}

func (c *Client) DeleteProduct(ctx context.Context, id string) (models.Product, error) {
	var out models.Product
	_, err := c.do(ctx, http.MethodDelete, "/products/"+url.PathEscape(id), nil, nil, &out)
	return out, err
}

// Brands

func (c *Client) FetchBrands(ctx context.Context) ([]models.Brand, error) {
	var out []models.Brand
	_, err := c.do(ctx, http.MethodGet, "/brands", nil, nil, &out)
	return out, err
}

func (c *Client) CreateBrand(ctx context.Context, name string) (models.Brand, error) {
	var out models.Brand
	_, err := c.do(ctx, http.MethodPost, "/brands", nil, map[string]string{"name": name}, &out)
	return out, err
}

func (c *Client) UpdateBrand(ctx context.Context, id, name string) (models.Brand, error) {
	var out models.Brand
	_, err := c.do(ctx, http.MethodPatch, "/brands/"+url.PathEscape(id), nil, map[string]string{"name": name}, &out)
	return out, err
}

func (c *Client) DeleteBrand(ctx context.Context, id string) (models.Brand, error) {
	var out models.Brand
	_, err := c.do(ctx, http.MethodDelete, "/brands/"+url.PathEscape(id), nil, nil, &out)
	return out, err
}

// Categories

func (c *Client) FetchCategories(ctx context.Context) ([]models.Category, error) {
	var out []models.Category
	_, err := c.do(ctx, http.MethodGet, "/categories", nil, nil, &out)
	return out, err
}

func (c *Client) CreateCategory(ctx context.Context, name string) (models.Category, error) {
	var out models.Category
	_, err := c.do(ctx, http.MethodPost, "/categories", nil, map[string]string{"name": name}, &out)
	return out, err
}

func (c *Client) UpdateCategory(ctx context.Context, id, name string) (models.Category, error) {
	var out models.Category
	_, err := c.do(ctx, http.MethodPatch, "/categories/"+url.PathEscape(id), nil, map[string]string{"name": name}, &out)
	return out, err
}

func (c *Client) DeleteCategory(ctx context.Context, id string) (models.Category, error) {
	var out models.Category
	_, err := c.do(ctx, http.MethodDelete, "/categories/"+url.PathEscape(id), nil, nil, &out)
	return out, err
}

// Cart

func (c *Client) FetchCart(ctx context.Context, userID string) ([]models.CartItem, error) {
	var out []models.CartItem
	_, err := c.do(ctx, http.MethodGet, "/cart/user/"+url.PathEscape(userID), nil, nil, &out)
	return out, err
}

func (c *Client) AddCartItem(ctx context.Context, in CartItemInput) (models.CartItem, error) {
	var out models.CartItem
	_, err := c.do(ctx, http.MethodPost, "/cart", nil, in, &out)
	return out, err
}

func (c *Client) UpdateCartItem(ctx context.Context, id string, quantity int) (models.CartItem, error) {
	var out models.CartItem
	_, err := c.do(ctx, http.MethodPatch, "/cart/"+url.PathEscape(id), nil, map[string]int{"quantity": quantity}, &out)
	return out, err
}

func (c *Client) DeleteCartItem(ctx context.Context, id string) (models.CartItem, error) {
	var out models.CartItem
	_, err := c.do(ctx, http.MethodDelete, "/cart/"+url.PathEscape(id), nil, nil, &out)
	return out, err
}

func (c *Client) ResetCart(ctx context.Context, userID string) error {
	_, err := c.do(ctx, http.MethodPost, "/cart/reset", nil, map[string]string{"user": userID}, nil)
	return err
}

// Wishlist

func (c *Client) FetchWishlist(ctx context.Context, userID string) ([]models.WishlistItem, error) {
	var out []models.WishlistItem
	_, err := c.do(ctx, http.MethodGet, "/wishlist/user/"+url.PathEscape(userID), nil, nil, &out)
	return out, err
}

func (c *Client) CreateWishlistItem(ctx context.Context, in WishlistItemInput) (models.WishlistItem, error) {
	var out models.WishlistItem
	_, err := c.do(ctx, http.MethodPost, "/wishlist", nil, in, &out)
	return out, err
}

func (c *Client) UpdateWishlistItem(ctx context.Context, id, note string) (models.WishlistItem, error) {
	var out models.WishlistItem
	_, err := c.do(ctx, http.MethodPatch, "/wishlist/"+url.PathEscape(id), nil, map[string]string{"note": note}, &out)
	return out, err
}

func (c *Client) DeleteWishlistItem(ctx context.Context, id string) (models.WishlistItem, error) {
	var out models.WishlistItem
	_, err := c.do(ctx, http.MethodDelete, "/wishlist/"+url.PathEscape(id), nil, nil, &out)
	return out, err
}

// Addresses

func (c *Client) FetchAddresses(ctx context.Context, userID string) ([]models.Address, error) {
	var out []models.Address
	_, err := c.do(ctx, http.MethodGet, "/addresses/user/"+url.PathEscape(userID), nil, nil, &out)
	return out, err
}

func (c *Client) CreateAddress(ctx context.Context, in models.Address) (models.Address, error) {
	var out models.Address
	_, err := c.do(ctx, http.MethodPost, "/addresses", nil, in, &out)
	return out, err
}

func (c *Client) UpdateAddress(ctx context.Context, in models.Address) (models.Address, error) {
	var out models.Address
	_, err := c.do(ctx, http.MethodPatch, "/addresses/"+url.PathEscape(in.ID), nil, in, &out)
	return out, err
}

func (c *Client) DeleteAddress(ctx context.Context, id string) (models.Address, error) {
	var out models.Address
	_, err := c.do(ctx, http.MethodDelete, "/addresses/"+url.PathEscape(id), nil, nil, &out)
	return out, err
}

// Reviews

func (c *Client) FetchReviews(ctx context.Context, productID string) ([]models.Review, error) {
	var out []models.Review
	_, err := c.do(ctx, http.MethodGet, "/reviews/product/"+url.PathEscape(productID), nil, nil, &out)
	return out, err
}

func (c *Client) CreateReview(ctx context.Context, in ReviewInput) (models.Review, error) {
	var out models.Review
	_, err := c.do(ctx, http.MethodPost, "/reviews", nil, in, &out)
	return out, err
}

func (c *Client) UpdateReview(ctx context.Context, id string, in ReviewInput) (models.Review, error) {
	var out models.Review
	_, err := c.do(ctx, http.MethodPatch, "/reviews/"+url.PathEscape(id), nil, in, &out)
	return out, err
}

func (c *Client) DeleteReview(ctx context.Context, id string) (models.Review, error) {
	var out models.Review
	_, err := c.do(ctx, http.MethodDelete, "/reviews/"+url.PathEscape(id), nil, nil, &out)
	return out, err
}

// Orders

func (c *Client) CreateOrder(ctx context.Context, in models.Order) (models.Order, error) {
	var out models.Order
	_, err := c.do(ctx, http.MethodPost, "/orders/create", nil, in, &out)
	return out, err
}

func (c *Client) FetchUserOrders(ctx context.Context) ([]models.Order, error) {
	var out []models.Order
	_, err := c.do(ctx, http.MethodGet, "/orders/user", nil, nil, &out)
	return out, err
}

func (c *Client) FetchAllOrders(ctx context.Context) ([]models.Order, error) {
	var out []models.Order
	_, err := c.do(ctx, http.MethodGet, "/orders", nil, nil, &out)
	return out, err
}

func (c *Client) UpdateOrderStatus(ctx context.Context, id string, status models.OrderStatus) (models.Order, error) {
	var out models.Order
	body := map[string]string{"_id": id, "status": string(status)}
	_, err := c.do(ctx, http.MethodPatch, "/orders/"+url.PathEscape(id), nil, body, &out)
	return out, err
}

// Users

func (c *Client) FetchProfile(ctx context.Context) (models.User, error) {
	var out models.User
	_, err := c.do(ctx, http.MethodGet, "/users/profile", nil, nil, &out)
	return out, err
}

func (c *Client) UpdateProfile(ctx context.Context, in UserUpdate) (models.User, error) {
	var out models.User
	_, err := c.do(ctx, http.MethodPatch, "/users/update", nil, in, &out)
	return out, err
}

func (c *Client) FetchUsers(ctx context.Context) (models.UserList, error) {
	var out models.UserList
	_, err := c.do(ctx, http.MethodGet, "/users", nil, nil, &out)
	return out, err
}

func (c *Client) FetchUser(ctx context.Context, id string) (models.User, error) {
	var out models.User
	_, err := c.do(ctx, http.MethodGet, "/users/admin/"+url.PathEscape(id), nil, nil, &out)
	return out, err
}

func (c *Client) UpdateUser(ctx context.Context, id string, in UserUpdate) (models.User, error) {
	var out models.User
	_, err := c.do(ctx, http.MethodPatch, "/users/admin/"+url.PathEscape(id), nil, in, &out)
	return out, err
}

func (c *Client) DeleteUser(ctx context.Context, id string) (models.User, error) {
	var out models.User
	_, err := c.do(ctx, http.MethodDelete, "/users/admin/"+url.PathEscape(id), nil, nil, &out)
	return out, err
}
