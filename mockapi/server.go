// Package mockapi is an in-memory implementation of the storefront HTTP API.
// It backs the integration tests and the agent's offline dev mode.
package mockapi

import (
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/plant-decor/KLTN-PlantDecor-Mobile/models"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const userContextKey = "userID"

var (
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

type account struct {
	user         models.User
	passwordHash []byte
}

type injectedFailure struct {
	status  int
	message string
}

// Server holds all storefront state behind one mutex.
type Server struct {
	mu          sync.Mutex
	tokens      *TokenService
	log         *zap.Logger
	epoch       int
	accounts    map[string]*account // by email
	byID        map[string]*account
	refreshJTIs map[string]string // live refresh jti -> user id
	products    []models.Product
	categories  []models.Category
	reviews     map[string][]models.Review
	designs     map[string][]models.DesignResult // by user id, newest first
	failures    map[string][]injectedFailure
	calls       map[string]int
}

// Options tunes the mock storefront. Zero values fall back to defaults.
type Options struct {
	Secret     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// New creates a storefront seeded with the demo catalog and no accounts.
func New(opts Options, log *zap.Logger) *Server {
	if opts.Secret == "" {
		opts.Secret = "plantdecor-dev-secret"
	}
	if opts.AccessTTL == 0 {
		opts.AccessTTL = 15 * time.Minute
	}
	if opts.RefreshTTL == 0 {
		opts.RefreshTTL = 7 * 24 * time.Hour
	}
	products, categories := SeedCatalog()
	return &Server{
		tokens:      NewTokenService(opts.Secret, opts.AccessTTL, opts.RefreshTTL),
		log:         log,
		accounts:    make(map[string]*account),
		byID:        make(map[string]*account),
		refreshJTIs: make(map[string]string),
		products:    products,
		categories:  categories,
		reviews:     seedReviews(products),
		designs:     make(map[string][]models.DesignResult),
		failures:    make(map[string][]injectedFailure),
		calls:       make(map[string]int),
	}
}

// Router wires every storefront endpoint onto a fresh gin engine.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.countCalls())

	r.POST("/auth/login", s.Login)
	r.POST("/auth/register", s.Register)
	r.POST("/auth/refresh", s.Refresh)

	r.GET("/products", s.ListProducts)
	r.GET("/products/:id", s.GetProduct)
	r.GET("/products/:id/reviews", s.ListReviews)
	r.GET("/categories", s.ListCategories)

	protected := r.Group("/")
	protected.Use(s.AuthMiddleware())
	{
		protected.POST("/auth/logout", s.Logout)
		protected.GET("/user/profile", s.GetProfile)
		protected.PUT("/user/profile", s.UpdateProfile)
		protected.POST("/ai/design", s.CreateDesign)
		protected.GET("/ai/design", s.ListDesigns)
		protected.GET("/ai/design/:id", s.GetDesign)
	}
	return r
}

func ok(c *gin.Context, status int, data interface{}) {
	c.JSON(status, gin.H{"success": true, "data": data})
}

func fail(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{"success": false, "message": message})
}

// countCalls records hits per route and serves injected failures.
func (s *Server) countCalls() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.Request.Method + " " + c.FullPath()
		s.mu.Lock()
		s.calls[key]++
		var injected *injectedFailure
		if queue := s.failures[key]; len(queue) > 0 {
			injected = &queue[0]
			s.failures[key] = queue[1:]
		}
		s.mu.Unlock()

		if injected != nil {
			fail(c, injected.status, injected.message)
			return
		}
		c.Next()
	}
}

// FailNext makes the next call to route ("GET /products") answer with
// status and message.
func (s *Server) FailNext(route string, status int, message string) {
	s.mu.Lock()
	s.failures[route] = append(s.failures[route], injectedFailure{status: status, message: message})
	s.mu.Unlock()
}

// Calls reports how many requests hit route.
func (s *Server) Calls(route string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[route]
}

// RevokeAccessTokens invalidates every access token issued so far. Refresh
// tokens stay valid.
func (s *Server) RevokeAccessTokens() {
	s.mu.Lock()
	s.epoch++
	s.mu.Unlock()
}

// RevokeRefreshTokens invalidates every refresh token issued so far.
func (s *Server) RevokeRefreshTokens() {
	s.mu.Lock()
	s.refreshJTIs = make(map[string]string)
	s.mu.Unlock()
}

// CreateAccount registers a user directly, for seeding.
func (s *Server) CreateAccount(email, password, fullName string) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.createAccountLocked(models.RegisterRequest{Email: email, Password: password, FullName: fullName})
}

func (s *Server) createAccountLocked(req models.RegisterRequest) (models.User, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if _, exists := s.accounts[email]; exists {
		return models.User{}, ErrEmailTaken
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.MinCost)
	if err != nil {
		return models.User{}, err
	}
	acc := &account{
		user: models.User{
			ID:        uuid.NewString(),
			Email:     email,
			FullName:  req.FullName,
			Phone:     req.Phone,
			CreatedAt: time.Now().UTC(),
		},
		passwordHash: hash,
	}
	s.accounts[email] = acc
	s.byID[acc.user.ID] = acc
	return acc.user, nil
}

func (s *Server) issueLocked(user models.User) (models.TokenPair, error) {
	pair, jti, err := s.tokens.GenerateTokenPair(user.ID, user.Email, s.epoch)
	if err != nil {
		return models.TokenPair{}, err
	}
	s.refreshJTIs[jti] = user.ID
	return pair, nil
}

// AuthMiddleware requires a valid access token of the current epoch.
func (s *Server) AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		tokenStr := strings.TrimPrefix(header, "Bearer ")
		if header == "" || tokenStr == header {
			fail(c, http.StatusUnauthorized, "Missing token")
			return
		}

		claims, err := s.tokens.ValidateToken(tokenStr, "access")
		if err != nil {
			fail(c, http.StatusUnauthorized, "Invalid or expired token")
			return
		}

		s.mu.Lock()
		epoch := s.epoch
		s.mu.Unlock()
		if ep, _ := claims["ep"].(float64); int(ep) != epoch {
			fail(c, http.StatusUnauthorized, "Token revoked")
			return
		}

		sub, _ := claims["sub"].(string)
		c.Set(userContextKey, sub)
		c.Next()
	}
}

func (s *Server) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "Email and password are required")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	acc, exists := s.accounts[strings.ToLower(strings.TrimSpace(req.Email))]
	if !exists || bcrypt.CompareHashAndPassword(acc.passwordHash, []byte(req.Password)) != nil {
		fail(c, http.StatusUnauthorized, "Invalid email or password")
		return
	}

	pair, err := s.issueLocked(acc.user)
	if err != nil {
		s.log.Error("issue tokens", zap.Error(err))
		fail(c, http.StatusInternalServerError, "Internal server error")
		return
	}
	ok(c, http.StatusOK, models.AuthResult{User: acc.user, Tokens: pair})
}

func (s *Server) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "Invalid registration data")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	user, err := s.createAccountLocked(req)
	if errors.Is(err, ErrEmailTaken) {
		fail(c, http.StatusConflict, "Email is already registered")
		return
	}
	if err != nil {
		s.log.Error("create account", zap.Error(err))
		fail(c, http.StatusInternalServerError, "Internal server error")
		return
	}

	pair, err := s.issueLocked(user)
	if err != nil {
		fail(c, http.StatusInternalServerError, "Internal server error")
		return
	}
	ok(c, http.StatusCreated, models.AuthResult{User: user, Tokens: pair})
}

// Refresh rotates the pair: the presented refresh token is spent.
func (s *Server) Refresh(c *gin.Context) {
	var req models.RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.RefreshToken == "" {
		fail(c, http.StatusBadRequest, "Refresh token is required")
		return
	}

	claims, err := s.tokens.ValidateToken(req.RefreshToken, "refresh")
	if err != nil {
		fail(c, http.StatusUnauthorized, "Invalid or expired refresh token")
		return
	}
	jti, _ := claims["jti"].(string)

	s.mu.Lock()
	defer s.mu.Unlock()
	userID, live := s.refreshJTIs[jti]
	if !live {
		fail(c, http.StatusUnauthorized, "Refresh token has been revoked")
		return
	}
	delete(s.refreshJTIs, jti)

	acc, exists := s.byID[userID]
	if !exists {
		fail(c, http.StatusUnauthorized, "Unknown user")
		return
	}
	pair, err := s.issueLocked(acc.user)
	if err != nil {
		fail(c, http.StatusInternalServerError, "Internal server error")
		return
	}
	ok(c, http.StatusOK, pair)
}

// Logout spends every refresh token of the caller.
func (s *Server) Logout(c *gin.Context) {
	userID := c.GetString(userContextKey)
	s.mu.Lock()
	for jti, owner := range s.refreshJTIs {
		if owner == userID {
			delete(s.refreshJTIs, jti)
		}
	}
	s.mu.Unlock()
	ok(c, http.StatusOK, nil)
}

func (s *Server) currentAccount(c *gin.Context) (*account, bool) {
	acc, exists := s.byID[c.GetString(userContextKey)]
	if !exists {
		fail(c, http.StatusNotFound, "User not found")
	}
	return acc, exists
}

func (s *Server) GetProfile(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	acc, exists := s.currentAccount(c)
	if !exists {
		return
	}
	ok(c, http.StatusOK, acc.user)
}

func (s *Server) UpdateProfile(c *gin.Context) {
	var patch models.ProfileUpdate
	if err := c.ShouldBindJSON(&patch); err != nil {
		fail(c, http.StatusBadRequest, "Invalid profile data")
		return
	}
	if patch.FullName != nil && strings.TrimSpace(*patch.FullName) == "" {
		fail(c, http.StatusBadRequest, "Full name cannot be empty")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	acc, exists := s.currentAccount(c)
	if !exists {
		return
	}
	if patch.FullName != nil {
		acc.user.FullName = *patch.FullName
	}
	if patch.Phone != nil {
		acc.user.Phone = *patch.Phone
	}
	if patch.Avatar != nil {
		acc.user.Avatar = *patch.Avatar
	}
	if patch.Address != nil {
		addr := *patch.Address
		acc.user.Address = &addr
	}
	ok(c, http.StatusOK, acc.user)
}
