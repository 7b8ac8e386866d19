package fakeapi

import (
	"net/http"
	"time"

	"storefront-client/internal/models"

	"github.com/gin-gonic/gin"
)

// Caller holds s.mu for every populate helper.
func (s *Server) productRef(id string) models.Ref[models.Product] {
	if i := s.productIndex(id); i >= 0 {
		return models.Populated(id, s.populateProduct(s.products[i]))
	}
	return models.RefTo[models.Product](id)
}

func (s *Server) listCart(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.CartItem{}
	for _, it := range s.cart {
		if it.User.ID == c.Param("id") {
			it.Product = s.productRef(it.Product.ID)
			out = append(out, it)
		}
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) addCart(c *gin.Context) {
	var body struct {
		User     string `json:"user"`
		Product  string `json:"product" binding:"required"`
		Quantity int    `json:"quantity"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, err)
		return
	}
	if body.User == "" {
		body.User = sessionUserID(c)
	}
	if body.Quantity < 1 {
		body.Quantity = 1
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.productIndex(body.Product) < 0 {
		notFound(c, "Product")
		return
	}
	it := models.CartItem{
		ID:       newID(),
		User:     models.RefTo[models.User](body.User),
		Product:  models.RefTo[models.Product](body.Product),
		Quantity: body.Quantity,
	}
	s.cart = append(s.cart, it)
	it.Product = s.productRef(body.Product)
	c.JSON(http.StatusCreated, it)
}

func (s *Server) updateCart(c *gin.Context) {
	var body struct {
		Quantity int `json:"quantity" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.cart {
		if s.cart[i].ID == c.Param("id") {
			s.cart[i].Quantity = body.Quantity
			it := s.cart[i]
			it.Product = s.productRef(it.Product.ID)
			c.JSON(http.StatusOK, it)
			return
		}
	}
	notFound(c, "Cart item")
}

func (s *Server) deleteCart(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, it := range s.cart {
		if it.ID == c.Param("id") {
			s.cart = append(s.cart[:i], s.cart[i+1:]...)
			c.JSON(http.StatusOK, it)
			return
		}
	}
	notFound(c, "Cart item")
}

func (s *Server) resetCart(c *gin.Context) {
	var body struct {
		User string `json:"user" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.cart[:0]
	for _, it := range s.cart {
		if it.User.ID != body.User {
			kept = append(kept, it)
		}
	}
	s.cart = kept
	c.Status(http.StatusNoContent)
}

func (s *Server) listWishlist(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.WishlistItem{}
	for _, it := range s.wishlist {
		if it.User.ID == c.Param("id") {
			it.Product = s.productRef(it.Product.ID)
			out = append(out, it)
		}
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) addWishlist(c *gin.Context) {
	var body struct {
		User    string `json:"user"`
		Product string `json:"product" binding:"required"`
		Note    string `json:"note"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, err)
		return
	}
	if body.User == "" {
		body.User = sessionUserID(c)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	it := models.WishlistItem{
		ID:      newID(),
		User:    models.RefTo[models.User](body.User),
		Product: models.RefTo[models.Product](body.Product),
		Note:    body.Note,
	}
	s.wishlist = append(s.wishlist, it)
	it.Product = s.productRef(body.Product)
	c.JSON(http.StatusCreated, it)
}

func (s *Server) updateWishlist(c *gin.Context) {
	var body struct {
		Note string `json:"note"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.wishlist {
		if s.wishlist[i].ID == c.Param("id") {
			s.wishlist[i].Note = body.Note
			it := s.wishlist[i]
			it.Product = s.productRef(it.Product.ID)
			c.JSON(http.StatusOK, it)
			return
		}
	}
	notFound(c, "Wishlist item")
}

func (s *Server) deleteWishlist(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, it := range s.wishlist {
		if it.ID == c.Param("id") {
			s.wishlist = append(s.wishlist[:i], s.wishlist[i+1:]...)
			c.JSON(http.StatusOK, it)
			return
		}
	}
	notFound(c, "Wishlist item")
}

func (s *Server) listAddresses(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.Address{}
	for _, a := range s.addresses {
		if a.User.ID == c.Param("id") {
			out = append(out, a)
		}
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) addAddress(c *gin.Context) {
	var a models.Address
	if err := c.ShouldBindJSON(&a); err != nil {
		badRequest(c, err)
		return
	}
	a.ID = newID()
	if a.User.ID == "" {
		a.User = models.RefTo[models.User](sessionUserID(c))
	}

	s.mu.Lock()
	s.addresses = append(s.addresses, a)
	s.mu.Unlock()
	c.JSON(http.StatusCreated, a)
}

func (s *Server) updateAddress(c *gin.Context) {
	var a models.Address
	if err := c.ShouldBindJSON(&a); err != nil {
		badRequest(c, err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.addresses {
		if s.addresses[i].ID == c.Param("id") {
			a.ID = s.addresses[i].ID
			a.User = s.addresses[i].User
			s.addresses[i] = a
			c.JSON(http.StatusOK, a)
			return
		}
	}
	notFound(c, "Address")
}

func (s *Server) deleteAddress(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, a := range s.addresses {
		if a.ID == c.Param("id") {
			s.addresses = append(s.addresses[:i], s.addresses[i+1:]...)
			c.JSON(http.StatusOK, a)
			return
		}
	}
	notFound(c, "Address")
}

func (s *Server) createOrder(c *gin.Context) {
	var o models.Order
	if err := c.ShouldBindJSON(&o); err != nil {
		badRequest(c, err)
		return
	}
	o.ID = newID()
	if o.User.ID == "" {
		o.User = models.RefTo[models.User](sessionUserID(c))
	}
	o.Status = models.OrderStatusPending
	o.CreatedAt = time.Now().UTC().Truncate(time.Second)

	s.mu.Lock()
	s.orders = append(s.orders, o)
	s.mu.Unlock()
	c.JSON(http.StatusCreated, o)
}

func (s *Server) listUserOrders(c *gin.Context) {
	uid := sessionUserID(c)
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.Order{}
	for _, o := range s.orders {
		if o.User.ID == uid {
			out = append(out, o)
		}
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) listOrders(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c.JSON(http.StatusOK, append([]models.Order{}, s.orders...))
}

func (s *Server) updateOrder(c *gin.Context) {
	var body struct {
		Status models.OrderStatus `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.orders {
		if s.orders[i].ID == c.Param("id") {
			s.orders[i].Status = body.Status
			c.JSON(http.StatusOK, s.orders[i])
			return
		}
	}
	notFound(c, "Order")
}

type userBody struct {
	Name       *string `json:"name"`
	Email      *string `json:"email"`
	IsVerified *bool   `json:"isVerified"`
	IsAdmin    *bool   `json:"isAdmin"`
}

func (b userBody) apply(u *models.User) {
	if b.Name != nil {
		u.Name = *b.Name
	}
	if b.Email != nil {
		u.Email = *b.Email
	}
	if b.IsVerified != nil {
		u.IsVerified = *b.IsVerified
	}
	if b.IsAdmin != nil {
		u.IsAdmin = *b.IsAdmin
	}
}

func (s *Server) profile(c *gin.Context) {
	acc := c.MustGet("account").(*account)
	s.mu.Lock()
	u := acc.user
	s.mu.Unlock()
	c.JSON(http.StatusOK, u)
}

func (s *Server) updateProfile(c *gin.Context) {
	var body userBody
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, err)
		return
	}
	// Shoppers cannot promote or unblock themselves.
	body.IsAdmin, body.IsVerified = nil, nil

	acc := c.MustGet("account").(*account)
	s.mu.Lock()
	body.apply(&acc.user)
	u := acc.user
	s.mu.Unlock()
	c.JSON(http.StatusOK, u)
}

func (s *Server) listUsers(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	users := make([]models.User, 0, len(s.accounts))
	for _, acc := range s.accounts {
		users = append(users, acc.user)
	}
	c.JSON(http.StatusOK, models.UserList{Message: "ok", Users: users, Total: len(users)})
}

func (s *Server) getUser(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	acc, ok := s.accounts[c.Param("id")]
	if !ok {
		notFound(c, "User")
		return
	}
	c.JSON(http.StatusOK, acc.user)
}

func (s *Server) adminUpdateUser(c *gin.Context) {
	var body userBody
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	acc, ok := s.accounts[c.Param("id")]
	if !ok {
		notFound(c, "User")
		return
	}
	body.apply(&acc.user)
	c.JSON(http.StatusOK, acc.user)
}

func (s *Server) adminDeleteUser(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	acc, ok := s.accounts[c.Param("id")]
	if !ok {
		notFound(c, "User")
		return
	}
	delete(s.accounts, acc.user.ID)
	for token, uid := range s.sessions {
		if uid == acc.user.ID {
			delete(s.sessions, token)
		}
	}
	c.JSON(http.StatusOK, acc.user)
}
