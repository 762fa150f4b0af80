package stores

import (
	"context"
	"net/url"
	"strconv"
	"sync"

	"github.com/plant-decor/KLTN-PlantDecor-Mobile/clients"
	"github.com/plant-decor/KLTN-PlantDecor-Mobile/common/logger"
	"github.com/plant-decor/KLTN-PlantDecor-Mobile/models"
	"go.uber.org/zap"
)

const (
	msgProductsFailed = "Could not load products"
	msgDetailFailed   = "Could not load product details"
	msgSearchFailed   = "Search failed"
	msgReviewsFailed  = "Could not load reviews"
)

// CatalogState is the view of the catalog handed to the UI.
type CatalogState struct {
	Products         []models.Product     `json:"products"`
	Categories       []models.Category    `json:"categories"`
	Selected         *models.Product      `json:"selectedProduct,omitempty"`
	Reviews          []models.Review      `json:"reviews"`
	ReviewsPage      int                  `json:"reviewsPage"`
	ReviewsPages     int                  `json:"reviewsTotalPages"`
	IsLoading        bool                 `json:"isLoading"`
	IsLoadingMore    bool                 `json:"isLoadingMore"`
	Error            string               `json:"error,omitempty"`
	CurrentPage      int                  `json:"currentPage"`
	TotalPages       int                  `json:"totalPages"`
	SearchQuery      string               `json:"searchQuery"`
	SelectedCategory string               `json:"selectedCategory,omitempty"`
	ActiveFilter     models.ProductFilter `json:"activeFilter"`
}

// CatalogStore holds the product listing and its pagination cursor.
//
// Every listing reset bumps generation; a load-more continuation started
// under an older generation is dropped instead of being appended to a list it
// no longer belongs to.
type CatalogStore struct {
	mu           sync.Mutex
	state        CatalogState
	generation   uint64
	itemsPerPage int
	api          *clients.APIClient
	log          *zap.Logger
}

// NewCatalogStore creates a store that lists itemsPerPage products per page.
func NewCatalogStore(api *clients.APIClient, itemsPerPage int, log *zap.Logger) *CatalogStore {
	return &CatalogStore{
		state:        CatalogState{CurrentPage: 1, TotalPages: 1},
		itemsPerPage: itemsPerPage,
		api:          api,
		log:          log,
	}
}

// Snapshot returns a copy safe to hand to the UI.
func (c *CatalogStore) Snapshot() CatalogState {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := c.state
	out.Products = append([]models.Product(nil), c.state.Products...)
	out.Categories = append([]models.Category(nil), c.state.Categories...)
	out.Reviews = append([]models.Review(nil), c.state.Reviews...)
	if c.state.Selected != nil {
		p := *c.state.Selected
		out.Selected = &p
	}
	return out
}

func (c *CatalogStore) listProducts(ctx context.Context, filter models.ProductFilter, page int) (models.Page[models.Product], error) {
	if filter.Limit == 0 {
		filter.Limit = c.itemsPerPage
	}
	var res models.Page[models.Product]
	err := c.api.Get(ctx, "/products", filter.Query(page), &res)
	return res, err
}

// FetchProducts loads page 1 under filter and makes it the active filter.
func (c *CatalogStore) FetchProducts(ctx context.Context, filter models.ProductFilter) error {
	return c.reset(ctx, filter, msgProductsFailed)
}

// SearchProducts lists products matching query. The query becomes the active
// filter for FetchMoreProducts.
func (c *CatalogStore) SearchProducts(ctx context.Context, query string) error {
	c.mu.Lock()
	c.state.SearchQuery = query
	c.mu.Unlock()

	return c.reset(ctx, models.ProductFilter{Search: query}, msgSearchFailed)
}

func (c *CatalogStore) reset(ctx context.Context, filter models.ProductFilter, fallback string) error {
	c.mu.Lock()
	c.generation++
	gen := c.generation
	c.state.IsLoading = true
	c.state.Error = ""
	c.mu.Unlock()

	res, err := c.listProducts(ctx, filter, 1)

	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.generation {
		// a newer reset owns the listing now
		return err
	}
	c.state.IsLoading = false
	if err != nil {
		c.state.Error = clients.UserMessage(err, fallback)
		return err
	}
	c.state.Products = res.Items
	c.state.ActiveFilter = filter
	c.state.SearchQuery = filter.Search
	c.setPages(res.Page, res.TotalPages)
	return nil
}

// setPages keeps currentPage <= totalPages even when the server reports zero
// pages for an empty result.
func (c *CatalogStore) setPages(page, totalPages int) {
	if page < 1 {
		page = 1
	}
	if totalPages < page {
		totalPages = page
	}
	c.state.CurrentPage = page
	c.state.TotalPages = totalPages
}

// FetchMoreProducts appends the next page of the active filter. It does
// nothing while another load-more is running or on the last page.
func (c *CatalogStore) FetchMoreProducts(ctx context.Context) error {
	c.mu.Lock()
	if c.state.IsLoadingMore || c.state.CurrentPage >= c.state.TotalPages {
		c.mu.Unlock()
		return nil
	}
	c.state.IsLoadingMore = true
	gen := c.generation
	filter := c.state.ActiveFilter
	next := c.state.CurrentPage + 1
	c.mu.Unlock()

	res, err := c.listProducts(ctx, filter, next)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.IsLoadingMore = false
	if err != nil {
		logger.For(ctx, c.log).Warn("load more products failed", zap.Int("page", next), zap.Error(err))
		return err
	}
	if gen != c.generation {
		logger.For(ctx, c.log).Debug("dropping stale product page", zap.Int("page", next))
		return nil
	}
	c.state.Products = append(c.state.Products, res.Items...)
	c.setPages(res.Page, res.TotalPages)
	return nil
}

// FetchProductDetail sets the selected product; the last response wins.
func (c *CatalogStore) FetchProductDetail(ctx context.Context, id string) error {
	c.mu.Lock()
	c.state.IsLoading = true
	c.state.Error = ""
	c.mu.Unlock()

	var p models.Product
	err := c.api.Get(ctx, "/products/"+url.PathEscape(id), nil, &p)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.IsLoading = false
	if err != nil {
		c.state.Error = clients.UserMessage(err, msgDetailFailed)
		return err
	}
	c.state.Selected = &p
	return nil
}

// FetchCategories is best-effort: failures are logged and the previous
// categories are kept.
func (c *CatalogStore) FetchCategories(ctx context.Context) {
	var categories []models.Category
	if err := c.api.Get(ctx, "/categories", nil, &categories); err != nil {
		logger.For(ctx, c.log).Warn("failed to fetch categories", zap.Error(err))
		return
	}
	c.mu.Lock()
	c.state.Categories = categories
	c.mu.Unlock()
}

// FetchProductReviews loads one page of reviews for productID. page and
// limit default to 1 and 10.
func (c *CatalogStore) FetchProductReviews(ctx context.Context, productID string, page, limit int) error {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("limit", strconv.Itoa(limit))

	var res models.Page[models.Review]
	err := c.api.Get(ctx, "/products/"+url.PathEscape(productID)+"/reviews", q, &res)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.state.Error = clients.UserMessage(err, msgReviewsFailed)
		return err
	}
	c.state.Reviews = res.Items
	c.state.ReviewsPage = res.Page
	c.state.ReviewsPages = res.TotalPages
	return nil
}

// LookupProduct finds a product among the listing and the selected product.
func (c *CatalogStore) LookupProduct(id string) (models.Product, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state.Selected != nil && c.state.Selected.ID == id {
		return *c.state.Selected, true
	}
	for _, p := range c.state.Products {
		if p.ID == id {
			return p, true
		}
	}
	return models.Product{}, false
}

// SetSelectedCategory records the category the UI has highlighted. It does
// not reload the listing.
func (c *CatalogStore) SetSelectedCategory(categoryID string) {
	c.mu.Lock()
	c.state.SelectedCategory = categoryID
	c.mu.Unlock()
}

// ClearProducts empties the listing and forgets the filter. In-flight
// load-more pages are dropped.
func (c *CatalogStore) ClearProducts() {
	c.mu.Lock()
	c.generation++
	c.state.IsLoading = false
	c.state.Products = nil
	c.state.CurrentPage = 1
	c.state.TotalPages = 1
	c.state.SearchQuery = ""
	c.state.SelectedCategory = ""
	c.state.ActiveFilter = models.ProductFilter{}
	c.mu.Unlock()
}

// ClearError drops the last failure message.
func (c *CatalogStore) ClearError() {
	c.mu.Lock()
	c.state.Error = ""
	c.mu.Unlock()
}
