package stores

import (
	"context"
	"net/http"
	"sync"
	"testing"

	"github.com/plant-decor/KLTN-PlantDecor-Mobile/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestCatalogPagination(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, nil)
	catalog := NewCatalogStore(h.api, 20, zap.NewNop())

	require.NoError(t, catalog.FetchProducts(ctx, models.ProductFilter{}))
	st := catalog.Snapshot()
	assert.Len(t, st.Products, 20)
	assert.Equal(t, 1, st.CurrentPage)
	assert.Equal(t, 2, st.TotalPages)
	assert.False(t, st.IsLoading)

	require.NoError(t, catalog.FetchMoreProducts(ctx))
	st = catalog.Snapshot()
	assert.Len(t, st.Products, 25)
	assert.Equal(t, 2, st.CurrentPage)
	assert.Equal(t, "prod-021", st.Products[20].ID)

	calls := h.srv.Calls("GET /products")
	require.NoError(t, catalog.FetchMoreProducts(ctx))
	assert.Equal(t, calls, h.srv.Calls("GET /products"), "no request on the last page")
	assert.Len(t, catalog.Snapshot().Products, 25)
}

func TestCatalogFilterCarriesIntoLoadMore(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, nil)
	catalog := NewCatalogStore(h.api, 2, zap.NewNop())

	require.NoError(t, catalog.FetchProducts(ctx, models.ProductFilter{Category: "succulent", SortBy: "price_asc"}))
	require.NoError(t, catalog.FetchMoreProducts(ctx))

	st := catalog.Snapshot()
	require.Len(t, st.Products, 4)
	assert.Equal(t, 3, st.TotalPages)
	for _, p := range st.Products {
		assert.Equal(t, "succulent", p.Category.Slug)
	}
	assert.Equal(t, "Echeveria Mix", st.Products[0].Name)
	assert.Equal(t, "String of Pearls", st.Products[3].Name)
}

func TestCatalogSearch(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, nil)
	catalog := NewCatalogStore(h.api, 20, zap.NewNop())

	require.NoError(t, catalog.SearchProducts(ctx, "palm"))
	st := catalog.Snapshot()
	assert.Len(t, st.Products, 2)
	assert.Equal(t, "palm", st.SearchQuery)
	assert.Equal(t, "palm", st.ActiveFilter.Search)

	require.NoError(t, catalog.SearchProducts(ctx, "no such plant"))
	st = catalog.Snapshot()
	assert.Empty(t, st.Products)
	assert.Equal(t, 1, st.CurrentPage)
	assert.GreaterOrEqual(t, st.TotalPages, st.CurrentPage)
}

func TestCatalogFailures(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, nil)
	catalog := NewCatalogStore(h.api, 20, zap.NewNop())

	h.srv.FailNext("GET /products", http.StatusInternalServerError, "")
	require.Error(t, catalog.FetchProducts(ctx, models.ProductFilter{}))
	st := catalog.Snapshot()
	assert.Equal(t, msgProductsFailed, st.Error)
	assert.False(t, st.IsLoading)

	catalog.ClearError()
	require.NoError(t, catalog.FetchProducts(ctx, models.ProductFilter{}))

	h.srv.FailNext("GET /products", http.StatusBadGateway, "upstream down")
	require.Error(t, catalog.FetchMoreProducts(ctx))
	st = catalog.Snapshot()
	assert.Empty(t, st.Error, "load-more failures are not surfaced")
	assert.False(t, st.IsLoadingMore)
	assert.Len(t, st.Products, 20)
	assert.Equal(t, 1, st.CurrentPage)
}

func TestCatalogDropsStalePage(t *testing.T) {
	ctx := context.Background()
	entered := make(chan struct{})
	release := make(chan struct{})
	h := newHarness(t, func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/products" && r.URL.Query().Get("page") == "2" {
				close(entered)
				<-release
			}
			next.ServeHTTP(w, r)
		})
	})
	catalog := NewCatalogStore(h.api, 20, zap.NewNop())
	require.NoError(t, catalog.FetchProducts(ctx, models.ProductFilter{}))

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		assert.NoError(t, catalog.FetchMoreProducts(ctx))
	}()

	<-entered
	assert.True(t, catalog.Snapshot().IsLoadingMore)
	catalog.ClearProducts()
	close(release)
	wg.Wait()

	st := catalog.Snapshot()
	assert.Empty(t, st.Products)
	assert.Equal(t, 1, st.CurrentPage)
	assert.Equal(t, 1, st.TotalPages)
	assert.False(t, st.IsLoadingMore)
}

func TestCatalogDetailReviewsAndCategories(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, nil)
	catalog := NewCatalogStore(h.api, 20, zap.NewNop())

	h.srv.FailNext("GET /categories", http.StatusServiceUnavailable, "maintenance")
	catalog.FetchCategories(ctx)
	st := catalog.Snapshot()
	assert.Empty(t, st.Categories)
	assert.Empty(t, st.Error)

	catalog.FetchCategories(ctx)
	assert.Len(t, catalog.Snapshot().Categories, 4)

	require.NoError(t, catalog.FetchProductDetail(ctx, "prod-002"))
	p, found := catalog.LookupProduct("prod-002")
	require.True(t, found)
	assert.Equal(t, "Snake Plant", p.Name)

	require.Error(t, catalog.FetchProductDetail(ctx, "missing"))
	st = catalog.Snapshot()
	assert.Equal(t, "Product not found", st.Error)
	require.NotNil(t, st.Selected)
	assert.Equal(t, "prod-002", st.Selected.ID)

	require.NoError(t, catalog.FetchProductReviews(ctx, "prod-004", 0, 0))
	st = catalog.Snapshot()
	assert.Len(t, st.Reviews, 3)
	assert.Equal(t, 1, st.ReviewsPage)

	catalog.SetSelectedCategory("cat-indoor")
	assert.Equal(t, "cat-indoor", catalog.Snapshot().SelectedCategory)
	catalog.ClearProducts()
	assert.Empty(t, catalog.Snapshot().SelectedCategory)
}
