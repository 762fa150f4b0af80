package clients

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/plant-decor/KLTN-PlantDecor-Mobile/common/logger"
	"github.com/plant-decor/KLTN-PlantDecor-Mobile/database"
	"github.com/plant-decor/KLTN-PlantDecor-Mobile/models"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// ErrNoRefreshToken is returned by HandleUnauthorized when nothing is stored
// to refresh with.
var ErrNoRefreshToken = errors.New("no refresh token stored")

// Refresher exchanges a refresh token for a new pair. The exchange must not
// go through the 401 pipeline.
type Refresher interface {
	Refresh(ctx context.Context, refreshToken string) (models.TokenPair, error)
}

// TokenManager owns the persisted credential pair and the cached user.
type TokenManager struct {
	store        database.CredentialStore
	log          *zap.Logger
	singleFlight bool
	group        singleflight.Group
}

// NewTokenManager creates a manager over store. With singleFlight set,
// concurrent 401s share one refresh exchange.
func NewTokenManager(store database.CredentialStore, log *zap.Logger, singleFlight bool) *TokenManager {
	return &TokenManager{
		store:        store,
		log:          log,
		singleFlight: singleFlight,
	}
}

// AccessToken returns "" when no token is stored or storage fails.
func (tm *TokenManager) AccessToken(ctx context.Context) string {
	return tm.read(ctx, database.KeyAccessToken)
}

func (tm *TokenManager) read(ctx context.Context, key string) string {
	v, ok, err := tm.store.Get(ctx, key)
	if err != nil {
		logger.For(ctx, tm.log).Warn("failed to read credential", zap.String("key", key), zap.Error(err))
		return ""
	}
	if !ok {
		return ""
	}
	return v
}

// HasAccessToken reports whether an access token is stored.
func (tm *TokenManager) HasAccessToken(ctx context.Context) bool {
	return tm.AccessToken(ctx) != ""
}

// Attach sets the bearer header when an access token exists and returns the
// token it attached.
func (tm *TokenManager) Attach(ctx context.Context, req *http.Request) string {
	token := tm.AccessToken(ctx)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return token
}

// SaveTokens persists both tokens. When the second write fails the first is
// rolled back so a half-written pair is never left behind.
func (tm *TokenManager) SaveTokens(ctx context.Context, pair models.TokenPair) error {
	if err := tm.store.Set(ctx, database.KeyAccessToken, pair.AccessToken); err != nil {
		return fmt.Errorf("save access token: %w", err)
	}
	if err := tm.store.Set(ctx, database.KeyRefreshToken, pair.RefreshToken); err != nil {
		if clearErr := tm.ClearTokens(ctx); clearErr != nil {
			logger.For(ctx, tm.log).Error("failed to roll back access token", zap.Error(clearErr))
		}
		return fmt.Errorf("save refresh token: %w", err)
	}
	return nil
}

// ClearTokens deletes the access and refresh tokens, keeping the cached user.
func (tm *TokenManager) ClearTokens(ctx context.Context) error {
	return tm.store.Delete(ctx, database.KeyAccessToken, database.KeyRefreshToken)
}

// ClearAll removes the tokens and the cached user.
func (tm *TokenManager) ClearAll(ctx context.Context) error {
	return tm.store.Delete(ctx, database.KeyAccessToken, database.KeyRefreshToken, database.KeyUserData)
}

// SaveUser caches user as JSON next to the tokens.
func (tm *TokenManager) SaveUser(ctx context.Context, user models.User) error {
	b, err := json.Marshal(user)
	if err != nil {
		return err
	}
	return tm.store.Set(ctx, database.KeyUserData, string(b))
}

// LoadUser returns nil when no user is cached.
func (tm *TokenManager) LoadUser(ctx context.Context) (*models.User, error) {
	raw, ok, err := tm.store.Get(ctx, database.KeyUserData)
	if err != nil || !ok {
		return nil, err
	}
	var u models.User
	if err := json.Unmarshal([]byte(raw), &u); err != nil {
		return nil, fmt.Errorf("decode cached user: %w", err)
	}
	return &u, nil
}

// AccessTokenExpiry reads the exp claim without verifying the signature; the
// server remains the authority on validity.
func (tm *TokenManager) AccessTokenExpiry(ctx context.Context) (time.Time, bool) {
	token := tm.AccessToken(ctx)
	if token == "" {
		return time.Time{}, false
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}
	exp, ok := claims["exp"].(float64)
	if !ok {
		return time.Time{}, false
	}
	return time.Unix(int64(exp), 0), true
}

// HandleUnauthorized refreshes the credential pair after a 401 and returns
// the access token to retry with. staleToken is the token the failed request
// carried.
//
// A missing refresh token or a failed exchange deletes both tokens; the
// former is reported as ErrNoRefreshToken. A cancelled exchange leaves the
// stored pair alone.
//
// In single-flight mode the shared exchange is detached from the caller that
// started it, so a caller going away only abandons its own wait.
func (tm *TokenManager) HandleUnauthorized(ctx context.Context, staleToken string, refresher Refresher) (string, error) {
	if !tm.singleFlight {
		return tm.refresh(ctx, refresher)
	}

	// another request already rotated the pair
	if current := tm.AccessToken(ctx); current != "" && current != staleToken {
		return current, nil
	}

	ch := tm.group.DoChan("refresh", func() (interface{}, error) {
		// still bounded by the client's per-call timeout
		return tm.refresh(context.WithoutCancel(ctx), refresher)
	})
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-ch:
		if res.Shared {
			logger.For(ctx, tm.log).Debug("joined in-flight token refresh")
		}
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	}
}

func (tm *TokenManager) refresh(ctx context.Context, refresher Refresher) (string, error) {
	refreshToken := tm.read(ctx, database.KeyRefreshToken)
	if refreshToken == "" {
		tm.discard(ctx)
		return "", ErrNoRefreshToken
	}

	pair, err := refresher.Refresh(ctx, refreshToken)
	if err == nil {
		err = tm.SaveTokens(ctx, pair)
	}
	if err != nil {
		if ctx.Err() != nil || errors.Is(err, context.Canceled) {
			return "", fmt.Errorf("refresh abandoned: %w", err)
		}
		tm.discard(ctx)
		return "", fmt.Errorf("refresh tokens: %w", err)
	}

	logger.For(ctx, tm.log).Info("access token refreshed")
	return pair.AccessToken, nil
}

func (tm *TokenManager) discard(ctx context.Context) {
	if err := tm.ClearTokens(ctx); err != nil {
		logger.For(ctx, tm.log).Error("failed to clear tokens after refresh failure", zap.Error(err))
	}
}
