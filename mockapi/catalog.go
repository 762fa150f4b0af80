package mockapi

import (
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/plant-decor/KLTN-PlantDecor-Mobile/models"
	"github.com/shopspring/decimal"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

func pagination(c *gin.Context, defaultLimit int) (page, limit int) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}
	limit, err = strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultLimit)))
	if err != nil || limit < 1 {
		limit = defaultLimit
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	return page, limit
}

func paginate[T any](items []T, page, limit int) models.Page[T] {
	total := len(items)
	start := (page - 1) * limit
	if start > total {
		start = total
	}
	end := start + limit
	if end > total {
		end = total
	}
	return models.Page[T]{
		Items:      append([]T{}, items[start:end]...),
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: models.TotalPagesFor(total, limit),
	}
}

func parsePrice(c *gin.Context, key string) (*decimal.Decimal, bool) {
	raw := c.Query(key)
	if raw == "" {
		return nil, true
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		fail(c, http.StatusBadRequest, key+" must be a number")
		return nil, false
	}
	return &d, true
}

func (s *Server) ListProducts(c *gin.Context) {
	page, limit := pagination(c, defaultPageSize)
	minPrice, valid := parsePrice(c, "minPrice")
	if !valid {
		return
	}
	maxPrice, valid := parsePrice(c, "maxPrice")
	if !valid {
		return
	}
	category := c.Query("category")
	search := strings.ToLower(strings.TrimSpace(c.Query("search")))
	care := models.CareLevel(c.Query("careLevel"))
	size := models.PlantSize(c.Query("size"))

	s.mu.Lock()
	matched := make([]models.Product, 0, len(s.products))
	for _, p := range s.products {
		price := p.SaleablePrice()
		switch {
		case category != "" && p.Category.ID != category && p.Category.Slug != category:
		case search != "" && !strings.Contains(strings.ToLower(p.Name+" "+p.Description), search):
		case care != "" && p.CareLevel != care:
		case size != "" && p.Size != size:
		case minPrice != nil && price.LessThan(*minPrice):
		case maxPrice != nil && price.GreaterThan(*maxPrice):
		default:
			matched = append(matched, p)
		}
	}
	s.mu.Unlock()

	sortProducts(matched, c.Query("sortBy"))
	ok(c, http.StatusOK, paginate(matched, page, limit))
}

func sortProducts(products []models.Product, sortBy string) {
	var less func(a, b models.Product) bool
	switch sortBy {
	case "price_asc":
		less = func(a, b models.Product) bool { return a.SaleablePrice().LessThan(b.SaleablePrice()) }
	case "price_desc":
		less = func(a, b models.Product) bool { return a.SaleablePrice().GreaterThan(b.SaleablePrice()) }
	case "newest":
		less = func(a, b models.Product) bool { return a.CreatedAt.After(b.CreatedAt) }
	case "rating":
		less = func(a, b models.Product) bool { return a.Rating > b.Rating }
	case "name":
		less = func(a, b models.Product) bool { return a.Name < b.Name }
	default:
		return
	}
	sort.SliceStable(products, func(i, j int) bool { return less(products[i], products[j]) })
}

func (s *Server) findProductLocked(idOrSlug string) (models.Product, bool) {
	for _, p := range s.products {
		if p.ID == idOrSlug || p.Slug == idOrSlug {
			return p, true
		}
	}
	return models.Product{}, false
}

func (s *Server) GetProduct(c *gin.Context) {
	s.mu.Lock()
	p, found := s.findProductLocked(c.Param("id"))
	s.mu.Unlock()
	if !found {
		fail(c, http.StatusNotFound, "Product not found")
		return
	}
	ok(c, http.StatusOK, p)
}

func (s *Server) ListReviews(c *gin.Context) {
	page, limit := pagination(c, 10)

	s.mu.Lock()
	p, found := s.findProductLocked(c.Param("id"))
	reviews := s.reviews[p.ID]
	s.mu.Unlock()
	if !found {
		fail(c, http.StatusNotFound, "Product not found")
		return
	}
	ok(c, http.StatusOK, paginate(reviews, page, limit))
}

func (s *Server) ListCategories(c *gin.Context) {
	s.mu.Lock()
	categories := append([]models.Category(nil), s.categories...)
	s.mu.Unlock()
	ok(c, http.StatusOK, categories)
}
