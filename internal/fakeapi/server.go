// Package fakeapi is an in-memory implementation of the storefront REST API.
// It backs the client's tests and the daemon's -fake mode.
package fakeapi

import (
	"net/http"
	"sync"

	"storefront-client/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Fixed secrets handed out by the fake flows.
const (
	OTP        = "123456"
	ResetToken = "reset-token"

	sessionCookie = "token"
)

type account struct {
	user     models.User
	password string
}

// Gate holds one request on a route until Release is called.
type Gate struct {
	Entered chan struct{}
	release chan struct{}
	once    sync.Once
}

// Release lets the held request continue.
func (g *Gate) Release() {
	g.once.Do(func() { close(g.release) })
}

// Server keeps every collection in memory behind one mutex.
type Server struct {
	mu         sync.Mutex
	accounts   map[string]*account
	sessions   map[string]string
	products   []models.Product
	brands     []models.Brand
	categories []models.Category
	cart       []models.CartItem
	wishlist   []models.WishlistItem
	addresses  []models.Address
	reviews    []models.Review
	orders     []models.Order

	failures map[string]int
	gates    map[string]*Gate
	calls    map[string]int
}

func New() *Server {
	return &Server{
		accounts: make(map[string]*account),
		sessions: make(map[string]string),
		failures: make(map[string]int),
		gates:    make(map[string]*Gate),
		calls:    make(map[string]int),
	}
}

func newID() string {
	return uuid.New().String()
}

// FailNext makes the next request to route ("POST /auth/login") answer with
// status.
func (s *Server) FailNext(route string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[route] = status
}

// Hold parks the next request to route until the returned gate is released.
func (s *Server) Hold(route string) *Gate {
	s.mu.Lock()
	defer s.mu.Unlock()
	g := &Gate{Entered: make(chan struct{}), release: make(chan struct{})}
	s.gates[route] = g
	return g
}

// Calls returns how many requests reached route.
func (s *Server) Calls(route string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[route]
}

// SeedUser registers an account and returns the stored user.
func (s *Server) SeedUser(u models.User, password string) models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u.ID == "" {
		u.ID = newID()
	}
	s.accounts[u.ID] = &account{user: u, password: password}
	return u
}

// User returns the stored copy of a user.
func (s *Server) User(id string) (models.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	acc, ok := s.accounts[id]
	if !ok {
		return models.User{}, false
	}
	return acc.user, true
}

func (s *Server) SeedBrand(name string) models.Brand {
	s.mu.Lock()
	defer s.mu.Unlock()
	b := models.Brand{ID: newID(), Name: name}
	s.brands = append(s.brands, b)
	return b
}

func (s *Server) SeedCategory(name string) models.Category {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := models.Category{ID: newID(), Name: name}
	s.categories = append(s.categories, c)
	return c
}

func (s *Server) SeedProduct(p models.Product) models.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.ID == "" {
		p.ID = newID()
	}
	s.products = append(s.products, p)
	return s.populateProduct(p)
}

func (s *Server) SeedOrder(o models.Order) models.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	if o.ID == "" {
		o.ID = newID()
	}
	s.orders = append(s.orders, o)
	return o
}

// Router builds the gin engine serving the API.
func (s *Server) Router() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(s.intercept())

	auth := r.Group("/auth")
	{
		auth.POST("/signup", s.signup)
		auth.POST("/login", s.login)
		auth.POST("/verify-otp", s.verifyOTP)
		auth.POST("/resend-otp", s.resendOTP)
		auth.POST("/forgot-password", s.forgotPassword)
		auth.POST("/reset-password", s.resetPassword)
		auth.GET("/check", s.requireSession(), s.checkAuth)
		auth.POST("/logout", s.logout)
	}

	r.GET("/products", s.listProducts)
	r.GET("/products/:id", s.getProduct)
	r.POST("/products", s.requireAdmin(), s.createProduct)
	r.PATCH("/products/:id", s.requireAdmin(), s.updateProduct)
	r.DELETE("/products/:id", s.requireAdmin(), s.deleteProduct)

	registerTaxonomy(r, s, "/brands", &s.brands, func(id, name string) models.Brand {
		return models.Brand{ID: id, Name: name}
	})
	registerTaxonomy(r, s, "/categories", &s.categories, func(id, name string) models.Category {
		return models.Category{ID: id, Name: name}
	})

	session := r.Group("/", s.requireSession())
	{
		session.GET("/cart/user/:id", s.listCart)
		session.POST("/cart", s.addCart)
		session.PATCH("/cart/:id", s.updateCart)
		session.DELETE("/cart/:id", s.deleteCart)
		session.POST("/cart/reset", s.resetCart)

		session.GET("/wishlist/user/:id", s.listWishlist)
		session.POST("/wishlist", s.addWishlist)
		session.PATCH("/wishlist/:id", s.updateWishlist)
		session.DELETE("/wishlist/:id", s.deleteWishlist)

		session.GET("/addresses/user/:id", s.listAddresses)
		session.POST("/addresses", s.addAddress)
		session.PATCH("/addresses/:id", s.updateAddress)
		session.DELETE("/addresses/:id", s.deleteAddress)

		session.POST("/reviews", s.addReview)
		session.PATCH("/reviews/:id", s.updateReview)
		session.DELETE("/reviews/:id", s.deleteReview)

		session.POST("/orders/create", s.createOrder)
		session.GET("/orders/user", s.listUserOrders)

		session.GET("/users/profile", s.profile)
		session.PATCH("/users/update", s.updateProfile)
	}
	r.GET("/reviews/product/:id", s.listReviews)

	admin := r.Group("/", s.requireAdmin())
	{
		admin.GET("/orders", s.listOrders)
		admin.PATCH("/orders/:id", s.updateOrder)
		admin.GET("/users", s.listUsers)
		admin.GET("/users/admin/:id", s.getUser)
		admin.PATCH("/users/admin/:id", s.adminUpdateUser)
		admin.DELETE("/users/admin/:id", s.adminDeleteUser)
	}

	return r
}

// intercept counts calls and applies injected failures and gates.
func (s *Server) intercept() gin.HandlerFunc {
	return func(c *gin.Context) {
		route := c.Request.Method + " " + c.FullPath()

		s.mu.Lock()
		s.calls[route]++
		status, fail := s.failures[route]
		delete(s.failures, route)
		gate, held := s.gates[route]
		delete(s.gates, route)
		s.mu.Unlock()

		if held {
			close(gate.Entered)
			select {
			case <-gate.release:
			case <-c.Request.Context().Done():
				c.Abort()
				return
			}
		}

		if fail {
			c.AbortWithStatusJSON(status, gin.H{"message": "injected failure"})
			return
		}
		c.Next()
	}
}

func (s *Server) currentUser(c *gin.Context) (*account, bool) {
	token, err := c.Cookie(sessionCookie)
	if err != nil {
		return nil, false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.sessions[token]
	if !ok {
		return nil, false
	}
	acc, ok := s.accounts[id]
	return acc, ok
}

func (s *Server) requireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		acc, ok := s.currentUser(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Token missing, please login again"})
			return
		}
		c.Set("account", acc)
		c.Next()
	}
}

func (s *Server) requireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		acc, ok := s.currentUser(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Token missing, please login again"})
			return
		}
		if !acc.user.IsAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": "Admin access required"})
			return
		}
		c.Set("account", acc)
		c.Next()
	}
}

func sessionUserID(c *gin.Context) string {
	acc := c.MustGet("account").(*account)
	return acc.user.ID
}

func (s *Server) startSession(c *gin.Context, userID string) {
	token := newID()
	s.mu.Lock()
	s.sessions[token] = userID
	s.mu.Unlock()
	c.SetCookie(sessionCookie, token, 3600, "/", "", false, true)
}

func notFound(c *gin.Context, what string) {
	c.JSON(http.StatusNotFound, gin.H{"message": what + " not found"})
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
}
