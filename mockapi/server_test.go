package mockapi

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/plant-decor/KLTN-PlantDecor-Mobile/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type envelope[T any] struct {
	Success bool   `json:"success"`
	Data    T      `json:"data"`
	Message string `json:"message"`
}

func do[T any](t *testing.T, r http.Handler, method, path string, body interface{}, token string) (int, envelope[T]) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env envelope[T]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return w.Code, env
}

func newTestServer(t *testing.T) (*Server, *gin.Engine) {
	t.Helper()
	srv := New(Options{Secret: "test-secret"}, zap.NewNop())
	_, err := srv.CreateAccount("lan@plantdecor.vn", "secret123", "Lan Nguyen")
	require.NoError(t, err)
	return srv, srv.Router()
}

func login(t *testing.T, r http.Handler) models.TokenPair {
	t.Helper()
	code, env := do[models.AuthResult](t, r, http.MethodPost, "/auth/login",
		models.LoginRequest{Email: "lan@plantdecor.vn", Password: "secret123"}, "")
	require.Equal(t, http.StatusOK, code)
	return env.Data.Tokens
}

func TestAuthFlow(t *testing.T) {
	t.Run("wrong password", func(t *testing.T) {
		_, r := newTestServer(t)
		code, env := do[any](t, r, http.MethodPost, "/auth/login",
			models.LoginRequest{Email: "lan@plantdecor.vn", Password: "nope"}, "")
		assert.Equal(t, http.StatusUnauthorized, code)
		assert.False(t, env.Success)
		assert.Equal(t, "Invalid email or password", env.Message)
	})

	t.Run("duplicate registration", func(t *testing.T) {
		_, r := newTestServer(t)
		code, _ := do[any](t, r, http.MethodPost, "/auth/register",
			models.RegisterRequest{Email: "LAN@plantdecor.vn", Password: "secret123", FullName: "Lan"}, "")
		assert.Equal(t, http.StatusConflict, code)
	})

	t.Run("register then read profile", func(t *testing.T) {
		_, r := newTestServer(t)
		code, env := do[models.AuthResult](t, r, http.MethodPost, "/auth/register",
			models.RegisterRequest{Email: "minh@plantdecor.vn", Password: "secret123", FullName: "Minh"}, "")
		require.Equal(t, http.StatusCreated, code)

		code, profile := do[models.User](t, r, http.MethodGet, "/user/profile", nil, env.Data.Tokens.AccessToken)
		assert.Equal(t, http.StatusOK, code)
		assert.Equal(t, "minh@plantdecor.vn", profile.Data.Email)
	})

	t.Run("refresh rotates and spends the old token", func(t *testing.T) {
		_, r := newTestServer(t)
		pair := login(t, r)

		code, env := do[models.TokenPair](t, r, http.MethodPost, "/auth/refresh",
			models.RefreshRequest{RefreshToken: pair.RefreshToken}, "")
		require.Equal(t, http.StatusOK, code)
		assert.NotEqual(t, pair.RefreshToken, env.Data.RefreshToken)

		code, _ = do[any](t, r, http.MethodPost, "/auth/refresh",
			models.RefreshRequest{RefreshToken: pair.RefreshToken}, "")
		assert.Equal(t, http.StatusUnauthorized, code)
	})

	t.Run("revoked access tokens are rejected", func(t *testing.T) {
		srv, r := newTestServer(t)
		pair := login(t, r)
		srv.RevokeAccessTokens()

		code, env := do[any](t, r, http.MethodGet, "/user/profile", nil, pair.AccessToken)
		assert.Equal(t, http.StatusUnauthorized, code)
		assert.Equal(t, "Token revoked", env.Message)
	})

	t.Run("logout spends refresh tokens", func(t *testing.T) {
		_, r := newTestServer(t)
		pair := login(t, r)
		code, _ := do[any](t, r, http.MethodPost, "/auth/logout", nil, pair.AccessToken)
		require.Equal(t, http.StatusOK, code)

		code, _ = do[any](t, r, http.MethodPost, "/auth/refresh",
			models.RefreshRequest{RefreshToken: pair.RefreshToken}, "")
		assert.Equal(t, http.StatusUnauthorized, code)
	})

	t.Run("profile update applies only present fields", func(t *testing.T) {
		_, r := newTestServer(t)
		pair := login(t, r)
		phone := "0901234567"
		code, env := do[models.User](t, r, http.MethodPut, "/user/profile",
			models.ProfileUpdate{Phone: &phone}, pair.AccessToken)
		require.Equal(t, http.StatusOK, code)
		assert.Equal(t, "Lan Nguyen", env.Data.FullName)
		assert.Equal(t, phone, env.Data.Phone)
	})
}

func TestListProducts(t *testing.T) {
	_, r := newTestServer(t)

	tests := []struct {
		name      string
		query     string
		wantTotal int
		check     func(t *testing.T, items []models.Product)
	}{
		{name: "default page", query: "", wantTotal: 25},
		{name: "category by slug", query: "?category=succulent", wantTotal: 5},
		{name: "category by id", query: "?category=cat-pots", wantTotal: 4},
		{name: "search is case insensitive", query: "?search=PALM", wantTotal: 2},
		{name: "care level", query: "?careLevel=hard", wantTotal: 3},
		{
			name: "price range uses sale price", query: "?minPrice=290000&maxPrice=300000", wantTotal: 1,
			check: func(t *testing.T, items []models.Product) {
				assert.Equal(t, "Monstera Deliciosa", items[0].Name)
			},
		},
		{
			name: "price ascending", query: "?sortBy=price_asc&limit=3", wantTotal: 25,
			check: func(t *testing.T, items []models.Product) {
				require.Len(t, items, 3)
				assert.Equal(t, "Echeveria Mix", items[0].Name)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, env := do[models.Page[models.Product]](t, r, http.MethodGet, "/products"+tt.query, nil, "")
			require.Equal(t, http.StatusOK, code)
			assert.Equal(t, tt.wantTotal, env.Data.Total)
			if tt.check != nil {
				tt.check(t, env.Data.Items)
			}
		})
	}

	t.Run("last page", func(t *testing.T) {
		code, env := do[models.Page[models.Product]](t, r, http.MethodGet, "/products?page=2&limit=20", nil, "")
		require.Equal(t, http.StatusOK, code)
		assert.Len(t, env.Data.Items, 5)
		assert.Equal(t, 2, env.Data.TotalPages)
	})

	t.Run("bad price", func(t *testing.T) {
		code, _ := do[any](t, r, http.MethodGet, "/products?minPrice=cheap", nil, "")
		assert.Equal(t, http.StatusBadRequest, code)
	})
}

func TestProductLookupAndReviews(t *testing.T) {
	_, r := newTestServer(t)

	code, env := do[models.Product](t, r, http.MethodGet, "/products/snake-plant", nil, "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "prod-002", env.Data.ID)

	code, _ = do[any](t, r, http.MethodGet, "/products/nope", nil, "")
	assert.Equal(t, http.StatusNotFound, code)

	code, reviews := do[models.Page[models.Review]](t, r, http.MethodGet, "/products/prod-004/reviews", nil, "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, 3, reviews.Data.Total)
	assert.Equal(t, 10, reviews.Data.Limit)

	code, cats := do[[]models.Category](t, r, http.MethodGet, "/categories", nil, "")
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, cats.Data, 4)
}

func TestFailureInjection(t *testing.T) {
	srv, r := newTestServer(t)
	srv.FailNext("GET /categories", http.StatusServiceUnavailable, "maintenance")

	code, env := do[any](t, r, http.MethodGet, "/categories", nil, "")
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, "maintenance", env.Message)

	code, _ = do[any](t, r, http.MethodGet, "/categories", nil, "")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, 2, srv.Calls("GET /categories"))
}

func designUpload(t *testing.T, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("roomImage", "room.jpg")
	require.NoError(t, err)
	_, err = part.Write([]byte("jpeg-bytes"))
	require.NoError(t, err)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestDesigns(t *testing.T) {
	_, r := newTestServer(t)
	pair := login(t, r)

	post := func(fields map[string]string) *httptest.ResponseRecorder {
		body, contentType := designUpload(t, fields)
		req := httptest.NewRequest(http.MethodPost, "/ai/design", body)
		req.Header.Set("Content-Type", contentType)
		req.Header.Set("Authorization", "Bearer "+pair.AccessToken)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	t.Run("form validation", func(t *testing.T) {
		tests := []struct {
			name    string
			fields  map[string]string
			message string
		}{
			{"unknown style", map[string]string{"roomType": "bedroom", "style": "baroque"}, "style is invalid"},
			{"missing room type", map[string]string{"style": "zen"}, "roomType is invalid"},
			{"unknown budget", map[string]string{"roomType": "office", "style": "zen", "budget": "lavish"}, "budget is invalid"},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				w := post(tt.fields)
				assert.Equal(t, http.StatusBadRequest, w.Code)
				var resp envelope[any]
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
				assert.Equal(t, tt.message, resp.Message)
			})
		}
	})

	w := post(map[string]string{"roomType": "living_room", "style": "modern", "budget": "low"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created envelope[models.DesignResult]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Len(t, created.Data.SuggestedProducts, 3)
	for _, p := range created.Data.SuggestedProducts {
		assert.True(t, p.SaleablePrice().LessThanOrEqual(p.Price))
	}

	code, history := do[[]models.DesignResult](t, r, http.MethodGet, "/ai/design", nil, pair.AccessToken)
	require.Equal(t, http.StatusOK, code)
	require.Len(t, history.Data, 1)
	assert.Equal(t, created.Data.ID, history.Data[0].ID)

	code, one := do[models.DesignResult](t, r, http.MethodGet, "/ai/design/"+created.Data.ID, nil, pair.AccessToken)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, created.Data.ID, one.Data.ID)

	code, _ = do[any](t, r, http.MethodGet, "/ai/design/missing", nil, pair.AccessToken)
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = do[any](t, r, http.MethodGet, "/ai/design", nil, "")
	assert.Equal(t, http.StatusUnauthorized, code)
}
