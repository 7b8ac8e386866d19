package fakeapi

import (
	"net/http"
	"sort"
	"strconv"
	"strings"

	"storefront-client/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// populateProduct swaps brand and category ids for the full records, the
// way the real API populates them. Caller holds s.mu.
func (s *Server) populateProduct(p models.Product) models.Product {
	for _, b := range s.brands {
		if b.ID == p.Brand.ID {
			p.Brand = models.Populated(b.ID, b)
		}
	}
	for _, cat := range s.categories {
		if cat.ID == p.Category.ID {
			p.Category = models.Populated(cat.ID, cat)
		}
	}
	return p
}

func contains(values []string, v string) bool {
	for _, x := range values {
		if x == v {
			return true
		}
	}
	return false
}

func (s *Server) listProducts(c *gin.Context) {
	brands := c.QueryArray("brand")
	categories := c.QueryArray("category")
	search := strings.ToLower(c.Query("search"))
	userView := c.Query("user") == "true"

	s.mu.Lock()
	matched := make([]models.Product, 0, len(s.products))
	for _, p := range s.products {
		if userView && p.IsDeleted {
			continue
		}
		if len(brands) > 0 && !contains(brands, p.Brand.ID) {
			continue
		}
		if len(categories) > 0 && !contains(categories, p.Category.ID) {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(p.Title), search) {
			continue
		}
		matched = append(matched, s.populateProduct(p))
	}
	s.mu.Unlock()

	switch c.Query("feature") {
	case models.FeatureHighestDiscount:
		sort.SliceStable(matched, func(i, j int) bool {
			return matched[i].DiscountPercentage.GreaterThan(matched[j].DiscountPercentage)
		})
	case models.FeatureNewest:
		for i, j := 0, len(matched)-1; i < j; i, j = i+1, j-1 {
			matched[i], matched[j] = matched[j], matched[i]
		}
	}

	if c.Query("sort") == "price" {
		desc := c.Query("order") == "desc"
		sort.SliceStable(matched, func(i, j int) bool {
			if desc {
				return matched[i].Price.GreaterThan(matched[j].Price)
			}
			return matched[i].Price.LessThan(matched[j].Price)
		})
	}

	total := len(matched)
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))
	if limit > 0 {
		if page < 1 {
			page = 1
		}
		start := (page - 1) * limit
		if start > total {
			start = total
		}
		end := start + limit
		if end > total {
			end = total
		}
		matched = matched[start:end]
	}

	c.Header("X-Total-Count", strconv.Itoa(total))
	c.JSON(http.StatusOK, matched)
}

func (s *Server) productIndex(id string) int {
	for i, p := range s.products {
		if p.ID == id {
			return i
		}
	}
	return -1
}

func (s *Server) getProduct(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.productIndex(c.Param("id"))
	if i < 0 {
		notFound(c, "Product")
		return
	}
	c.JSON(http.StatusOK, s.populateProduct(s.products[i]))
}

type productBody struct {
	Title              *string          `json:"title"`
	Description        *string          `json:"description"`
	Price              *decimal.Decimal `json:"price"`
	DiscountPercentage *decimal.Decimal `json:"discountPercentage"`
	Brand              *string          `json:"brand"`
	Category           *string          `json:"category"`
	StockQuantity      *int             `json:"stockQuantity"`
	Thumbnail          *string          `json:"thumbnail"`
	Images             []string         `json:"images"`
}

func (b productBody) apply(p *models.Product) {
	if b.Title != nil {
		p.Title = *b.Title
	}
	if b.Description != nil {
		p.Description = *b.Description
	}
	if b.Price != nil {
		p.Price = *b.Price
	}
	if b.DiscountPercentage != nil {
		p.DiscountPercentage = *b.DiscountPercentage
	}
	if b.Brand != nil {
		p.Brand = models.RefTo[models.Brand](*b.Brand)
	}
	if b.Category != nil {
		p.Category = models.RefTo[models.Category](*b.Category)
	}
	if b.StockQuantity != nil {
		p.StockQuantity = *b.StockQuantity
	}
	if b.Thumbnail != nil {
		p.Thumbnail = *b.Thumbnail
	}
	if b.Images != nil {
		p.Images = b.Images
	}
}

func (s *Server) createProduct(c *gin.Context) {
	var body productBody
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, err)
		return
	}
	p := models.Product{ID: newID()}
	body.apply(&p)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.products = append(s.products, p)
	c.JSON(http.StatusCreated, s.populateProduct(p))
}

func (s *Server) updateProduct(c *gin.Context) {
	var body productBody
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.productIndex(c.Param("id"))
	if i < 0 {
		notFound(c, "Product")
		return
	}
	body.apply(&s.products[i])
	c.JSON(http.StatusOK, s.populateProduct(s.products[i]))
}

// deleteProduct soft-deletes; shoppers stop seeing the product.
func (s *Server) deleteProduct(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.productIndex(c.Param("id"))
	if i < 0 {
		notFound(c, "Product")
		return
	}
	s.products[i].IsDeleted = true
	c.JSON(http.StatusOK, s.populateProduct(s.products[i]))
}

type keyed interface {
	Key() string
}

func registerTaxonomy[T keyed](r *gin.Engine, s *Server, path string, items *[]T, build func(id, name string) T) {
	type nameBody struct {
		Name string `json:"name" binding:"required"`
	}

	find := func(id string) int {
		for i, it := range *items {
			if it.Key() == id {
				return i
			}
		}
		return -1
	}

	r.GET(path, func(c *gin.Context) {
		s.mu.Lock()
		defer s.mu.Unlock()
		out := append([]T{}, (*items)...)
		c.JSON(http.StatusOK, out)
	})

	r.POST(path, s.requireAdmin(), func(c *gin.Context) {
		var body nameBody
		if err := c.ShouldBindJSON(&body); err != nil {
			badRequest(c, err)
			return
		}
		item := build(newID(), body.Name)
		s.mu.Lock()
		*items = append(*items, item)
		s.mu.Unlock()
		c.JSON(http.StatusCreated, item)
	})

	r.PATCH(path+"/:id", s.requireAdmin(), func(c *gin.Context) {
		var body nameBody
		if err := c.ShouldBindJSON(&body); err != nil {
			badRequest(c, err)
			return
		}
		s.mu.Lock()
		defer s.mu.Unlock()
		i := find(c.Param("id"))
		if i < 0 {
			notFound(c, strings.TrimPrefix(path, "/"))
			return
		}
		(*items)[i] = build(c.Param("id"), body.Name)
		c.JSON(http.StatusOK, (*items)[i])
	})

	r.DELETE(path+"/:id", s.requireAdmin(), func(c *gin.Context) {
		s.mu.Lock()
		defer s.mu.Unlock()
		i := find(c.Param("id"))
		if i < 0 {
			notFound(c, strings.TrimPrefix(path, "/"))
			return
		}
		deleted := (*items)[i]
		*items = append((*items)[:i], (*items)[i+1:]...)
		c.JSON(http.StatusOK, deleted)
	})
}

func (s *Server) listReviews(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.Review{}
	for _, r := range s.reviews {
		if r.Product.ID == c.Param("id") {
			out = append(out, s.populateReview(r))
		}
	}
	c.JSON(http.StatusOK, out)
}

// populateReview attaches the author. Caller holds s.mu.
func (s *Server) populateReview(r models.Review) models.Review {
	if acc, ok := s.accounts[r.User.ID]; ok {
		r.User = models.Populated(acc.user.ID, acc.user)
	}
	return r
}

type reviewBody struct {
	User    string `json:"user"`
	Product string `json:"product"`
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

func (s *Server) addReview(c *gin.Context) {
	var body reviewBody
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, err)
		return
	}
	if body.User == "" {
		body.User = sessionUserID(c)
	}
	r := models.Review{
		ID:      newID(),
		User:    models.RefTo[models.User](body.User),
		Product: models.RefTo[models.Product](body.Product),
		Rating:  body.Rating,
		Comment: body.Comment,
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.reviews = append(s.reviews, r)
	c.JSON(http.StatusCreated, s.populateReview(r))
}

func (s *Server) updateReview(c *gin.Context) {
	var body reviewBody
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.reviews {
		if s.reviews[i].ID == c.Param("id") {
			if body.Rating != 0 {
				s.reviews[i].Rating = body.Rating
			}
			if body.Comment != "" {
				s.reviews[i].Comment = body.Comment
			}
			c.JSON(http.StatusOK, s.populateReview(s.reviews[i]))
			return
		}
	}
	notFound(c, "Review")
}

func (s *Server) deleteReview(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, r := range s.reviews {
		if r.ID == c.Param("id") {
			s.reviews = append(s.reviews[:i], s.reviews[i+1:]...)
			c.JSON(http.StatusOK, r)
			return
		}
	}
	notFound(c, "Review")
}
