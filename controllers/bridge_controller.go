package controllers

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/plant-decor/KLTN-PlantDecor-Mobile/clients"
	apperrors "github.com/plant-decor/KLTN-PlantDecor-Mobile/common/errors"
	"github.com/plant-decor/KLTN-PlantDecor-Mobile/common/logger"
	"github.com/plant-decor/KLTN-PlantDecor-Mobile/models"
	"github.com/plant-decor/KLTN-PlantDecor-Mobile/stores"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const maxRoomImageBytes = 10 << 20

// BridgeController exposes the stores to a local UI over HTTP.
type BridgeController struct {
	session     *stores.SessionStore
	catalog     *stores.CatalogStore
	cart        *stores.CartStore
	designs     *stores.DesignStore
	maxQuantity int
	log         *zap.Logger
}

// NewBridgeController creates the HTTP face of the stores. maxQuantity caps
// a single cart line.
func NewBridgeController(
	session *stores.SessionStore,
	catalog *stores.CatalogStore,
	cart *stores.CartStore,
	designs *stores.DesignStore,
	maxQuantity int,
	log *zap.Logger,
) *BridgeController {
	return &BridgeController{
		session:     session,
		catalog:     catalog,
		cart:        cart,
		designs:     designs,
		maxQuantity: maxQuantity,
		log:         log,
	}
}

func respond(c *gin.Context, status int, data interface{}) {
	c.JSON(status, gin.H{"success": true, "data": data})
}

// storeError attaches err for ErrorMiddleware, translated to a bridge status.
func (b *BridgeController) storeError(c *gin.Context, err error, fallback string) {
	msg := clients.UserMessage(err, fallback)
	var appErr *apperrors.Error
	switch e := clients.Classify(err).(type) {
	case *clients.HTTPError:
		status := e.StatusCode
		if status < http.StatusBadRequest {
			status = http.StatusBadGateway
		}
		appErr = apperrors.New(status, msg, err)
	case *clients.ValidationError:
		appErr = apperrors.ErrValidation.Wrap(err).WithMessage(msg)
	case *clients.TimeoutError:
		appErr = apperrors.ErrGatewayTimeout.Wrap(err)
	case *clients.NetworkError:
		appErr = apperrors.ErrBadGateway.Wrap(err)
	default:
		appErr = apperrors.ErrInternalServer.Wrap(err)
	}
	if appErr.Code >= http.StatusInternalServerError {
		logger.For(c.Request.Context(), b.log).Error("bridge request failed",
			zap.String("path", c.FullPath()), zap.Error(err))
	}
	_ = c.Error(appErr)
}

func invalidInput(c *gin.Context, err error) {
	_ = c.Error(apperrors.ErrInvalidInput.Wrap(err))
}

// Health reports liveness together with the session status.
func (b *BridgeController) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":        "ok",
		"authenticated": b.session.Snapshot().IsAuthenticated,
	})
}

// --- session ---

func (b *BridgeController) Session(c *gin.Context) {
	respond(c, http.StatusOK, b.session.Snapshot())
}

func (b *BridgeController) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidInput(c, err)
		return
	}
	if err := b.session.Login(c.Request.Context(), req.Email, req.Password); err != nil {
		b.storeError(c, err, "Login failed")
		return
	}
	respond(c, http.StatusOK, b.session.Snapshot())
}

func (b *BridgeController) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidInput(c, err)
		return
	}
	if err := b.session.Register(c.Request.Context(), req); err != nil {
		b.storeError(c, err, "Registration failed")
		return
	}
	respond(c, http.StatusCreated, b.session.Snapshot())
}

func (b *BridgeController) Logout(c *gin.Context) {
	if err := b.session.Logout(c.Request.Context()); err != nil {
		b.storeError(c, err, "Logout failed")
		return
	}
	respond(c, http.StatusOK, b.session.Snapshot())
}

func (b *BridgeController) Profile(c *gin.Context) {
	if err := b.session.FetchProfile(c.Request.Context()); err != nil {
		b.storeError(c, err, "Could not load profile")
		return
	}
	respond(c, http.StatusOK, b.session.Snapshot().User)
}

func (b *BridgeController) UpdateProfile(c *gin.Context) {
	var patch models.ProfileUpdate
	if err := c.ShouldBindJSON(&patch); err != nil {
		invalidInput(c, err)
		return
	}
	if err := b.session.UpdateProfile(c.Request.Context(), patch); err != nil {
		b.storeError(c, err, "Profile update failed")
		return
	}
	respond(c, http.StatusOK, b.session.Snapshot().User)
}

// --- catalog ---

// Products resets the listing with the filter taken from the query string.
func (b *BridgeController) Products(c *gin.Context) {
	var filter models.ProductFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		invalidInput(c, err)
		return
	}
	for key, dst := range map[string]**decimal.Decimal{"minPrice": &filter.MinPrice, "maxPrice": &filter.MaxPrice} {
		raw := c.Query(key)
		if raw == "" {
			continue
		}
		d, err := decimal.NewFromString(raw)
		if err != nil {
			_ = c.Error(apperrors.ErrInvalidInput.Wrap(err).WithMessage(key + " must be a number"))
			return
		}
		*dst = &d
	}

	if err := b.catalog.FetchProducts(c.Request.Context(), filter); err != nil {
		b.storeError(c, err, "Could not load products")
		return
	}
	respond(c, http.StatusOK, b.catalog.Snapshot())
}

// MoreProducts appends the next page of the current listing.
func (b *BridgeController) MoreProducts(c *gin.Context) {
	if err := b.catalog.FetchMoreProducts(c.Request.Context()); err != nil {
		b.storeError(c, err, "Could not load more products")
		return
	}
	respond(c, http.StatusOK, b.catalog.Snapshot())
}

func (b *BridgeController) ProductByID(c *gin.Context) {
	if err := b.catalog.FetchProductDetail(c.Request.Context(), c.Param("id")); err != nil {
		b.storeError(c, err, "Could not load product details")
		return
	}
	p := b.catalog.Snapshot().Selected
	respond(c, http.StatusOK, gin.H{
		"product":         p,
		"discountPercent": p.DiscountPercent(),
	})
}

func (b *BridgeController) ProductReviews(c *gin.Context) {
	page, _ := strconv.Atoi(c.Query("page"))
	limit, _ := strconv.Atoi(c.Query("limit"))
	if err := b.catalog.FetchProductReviews(c.Request.Context(), c.Param("id"), page, limit); err != nil {
		b.storeError(c, err, "Could not load reviews")
		return
	}
	st := b.catalog.Snapshot()
	respond(c, http.StatusOK, gin.H{
		"items":      st.Reviews,
		"page":       st.ReviewsPage,
		"totalPages": st.ReviewsPages,
	})
}

func (b *BridgeController) Search(c *gin.Context) {
	q := c.Query("q")
	if q == "" {
		_ = c.Error(apperrors.ErrInvalidInput.WithMessage("q is required"))
		return
	}
	if err := b.catalog.SearchProducts(c.Request.Context(), q); err != nil {
		b.storeError(c, err, "Search failed")
		return
	}
	respond(c, http.StatusOK, b.catalog.Snapshot())
}

func (b *BridgeController) Categories(c *gin.Context) {
	b.catalog.FetchCategories(c.Request.Context())
	st := b.catalog.Snapshot()
	respond(c, http.StatusOK, gin.H{
		"categories":       st.Categories,
		"selectedCategory": st.SelectedCategory,
	})
}

type selectCategoryRequest struct {
	CategoryID string `json:"categoryId"`
}

func (b *BridgeController) SelectCategory(c *gin.Context) {
	var req selectCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidInput(c, err)
		return
	}
	b.catalog.SetSelectedCategory(req.CategoryID)
	respond(c, http.StatusOK, gin.H{"selectedCategory": req.CategoryID})
}

// --- cart ---

type addToCartRequest struct {
	ProductID string `json:"productId" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required,min=1"`
}

type setQuantityRequest struct {
	Quantity *int `json:"quantity" binding:"required"`
}

func (b *BridgeController) Cart(c *gin.Context) {
	respond(c, http.StatusOK, b.cart.View())
}

// AddToCart only accepts products the catalog has already loaded.
func (b *BridgeController) AddToCart(c *gin.Context) {
	var req addToCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidInput(c, err)
		return
	}
	product, found := b.catalog.LookupProduct(req.ProductID)
	if !found {
		_ = c.Error(apperrors.ErrNotFound.WithMessage("Product not found"))
		return
	}
	if err := b.cart.AddWithinLimit(product, req.Quantity, b.maxQuantity); err != nil {
		b.cartError(c, err)
		return
	}
	respond(c, http.StatusOK, b.cart.View())
}

func (b *BridgeController) SetQuantity(c *gin.Context) {
	var req setQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidInput(c, err)
		return
	}
	if *req.Quantity > b.maxQuantity {
		_ = c.Error(apperrors.ErrQuantityExceeded)
		return
	}
	b.cart.UpdateQuantity(c.Param("product_id"), *req.Quantity)
	respond(c, http.StatusOK, b.cart.View())
}

// IncrementItem refuses to push a line past the cart limit.
func (b *BridgeController) IncrementItem(c *gin.Context) {
	if err := b.cart.IncrementWithinLimit(c.Param("product_id"), b.maxQuantity); err != nil {
		b.cartError(c, err)
		return
	}
	respond(c, http.StatusOK, b.cart.View())
}

func (b *BridgeController) cartError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, stores.ErrQuantityLimit):
		_ = c.Error(apperrors.ErrQuantityExceeded)
	case errors.Is(err, stores.ErrNotInCart):
		_ = c.Error(apperrors.ErrNotFound.WithMessage("Item is not in the cart"))
	default:
		_ = c.Error(err)
	}
}

func (b *BridgeController) DecrementItem(c *gin.Context) {
	productID := c.Param("product_id")
	if b.cart.GetItemQuantity(productID) == 0 {
		_ = c.Error(apperrors.ErrNotFound.WithMessage("Item is not in the cart"))
		return
	}
	b.cart.DecrementQuantity(productID)
	respond(c, http.StatusOK, b.cart.View())
}

func (b *BridgeController) RemoveItem(c *gin.Context) {
	b.cart.RemoveFromCart(c.Param("product_id"))
	respond(c, http.StatusOK, b.cart.View())
}

func (b *BridgeController) ClearCart(c *gin.Context) {
	b.cart.ClearCart()
	respond(c, http.StatusOK, b.cart.View())
}

// --- design ---

// GenerateDesign takes the multipart form the storefront expects and relays
// it through the design store. A missing photo is reported by validation.
func (b *BridgeController) GenerateDesign(c *gin.Context) {
	req := models.DesignRequest{
		RoomType:    models.RoomType(c.PostForm("roomType")),
		Style:       models.DesignStyle(c.PostForm("style")),
		Budget:      models.Budget(c.PostForm("budget")),
		Preferences: c.PostForm("preferences"),
	}

	fh, err := c.FormFile("roomImage")
	switch {
	case errors.Is(err, http.ErrMissingFile):
	case err != nil:
		invalidInput(c, err)
		return
	case fh.Size > maxRoomImageBytes:
		_ = c.Error(apperrors.ErrInvalidInput.WithMessage("roomImage is too large"))
		return
	default:
		f, err := fh.Open()
		if err != nil {
			invalidInput(c, err)
			return
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			invalidInput(c, err)
			return
		}
		req.RoomImage = models.RoomImage{
			FileName:    fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Data:        data,
		}
	}

	result, err := b.designs.GenerateDesign(c.Request.Context(), req)
	if err != nil {
		b.storeError(c, err, "Could not generate the design")
		return
	}
	respond(c, http.StatusCreated, result)
}

func (b *BridgeController) Designs(c *gin.Context) {
	b.designs.FetchHistory(c.Request.Context())
	respond(c, http.StatusOK, b.designs.Snapshot())
}

func (b *BridgeController) DesignByID(c *gin.Context) {
	if err := b.designs.FetchDesignResult(c.Request.Context(), c.Param("id")); err != nil {
		b.storeError(c, err, "Could not load the design result")
		return
	}
	respond(c, http.StatusOK, b.designs.Snapshot().Current)
}
