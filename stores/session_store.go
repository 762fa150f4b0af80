package stores

import (
	"context"
	"fmt"
	"sync"

	"github.com/plant-decor/KLTN-PlantDecor-Mobile/clients"
	"github.com/plant-decor/KLTN-PlantDecor-Mobile/common/logger"
	"github.com/plant-decor/KLTN-PlantDecor-Mobile/models"
	"go.uber.org/zap"
)

// SessionStatus is the lifecycle stage of the session.
type SessionStatus string

const (
	StatusAnonymous     SessionStatus = "anonymous"
	StatusLoading       SessionStatus = "loading"
	StatusAuthenticated SessionStatus = "authenticated"
	// StatusError is an anonymous session carrying the last failure.
	StatusError SessionStatus = "error"
)

const (
	msgLoginFailed    = "Login failed. Please try again."
	msgRegisterFailed = "Registration failed. Please try again."
	msgUpdateFailed   = "Profile update failed. Please try again."
)

// SessionState is the view of the session handed to the UI.
type SessionState struct {
	Status          SessionStatus `json:"status"`
	User            *models.User  `json:"user,omitempty"`
	IsAuthenticated bool          `json:"isAuthenticated"`
	IsLoading       bool          `json:"isLoading"`
	Error           string        `json:"error,omitempty"`
}

// SessionStore holds the signed-in user. Credentials live in the token
// manager; the session is rebuilt from them by CheckAuth.
type SessionStore struct {
	mu     sync.Mutex
	state  SessionState
	api    *clients.APIClient
	tokens *clients.TokenManager
	log    *zap.Logger
}

// NewSessionStore creates an anonymous session backed by the client's
// token manager.
func NewSessionStore(api *clients.APIClient, log *zap.Logger) *SessionStore {
	return &SessionStore{
		state:  SessionState{Status: StatusAnonymous},
		api:    api,
		tokens: api.Tokens(),
		log:    log,
	}
}

// Snapshot returns a copy safe to hand to the UI.
func (s *SessionStore) Snapshot() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.state
	if s.state.User != nil {
		u := *s.state.User
		out.User = &u
	}
	return out
}

func (s *SessionStore) update(fn func(st *SessionState)) {
	s.mu.Lock()
	fn(&s.state)
	s.mu.Unlock()
}

// Login signs in with email and password and persists the returned tokens.
// On failure nothing is persisted and the session is left in StatusError.
func (s *SessionStore) Login(ctx context.Context, email, password string) error {
	return s.authenticate(ctx, "/auth/login", models.LoginRequest{Email: email, Password: password}, msgLoginFailed)
}

// Register creates an account and signs it in, like Login.
func (s *SessionStore) Register(ctx context.Context, req models.RegisterRequest) error {
	return s.authenticate(ctx, "/auth/register", req, msgRegisterFailed)
}

func (s *SessionStore) authenticate(ctx context.Context, path string, body interface{}, fallback string) error {
	s.update(func(st *SessionState) {
		st.Status = StatusLoading
		st.IsLoading = true
		st.Error = ""
	})

	var res models.AuthResult
	err := s.api.Post(ctx, path, body, &res)
	if err == nil {
		err = s.tokens.SaveTokens(ctx, res.Tokens)
	}
	if err != nil {
		msg := clients.UserMessage(err, fallback)
		s.update(func(st *SessionState) {
			*st = SessionState{Status: StatusError, Error: msg}
		})
		return err
	}

	s.cacheUser(ctx, res.User)
	user := res.User
	s.update(func(st *SessionState) {
		*st = SessionState{Status: StatusAuthenticated, User: &user, IsAuthenticated: true}
	})
	return nil
}

// Logout always ends with no credentials and an anonymous session. The
// remote call is best-effort; only a local storage failure is returned.
func (s *SessionStore) Logout(ctx context.Context) error {
	s.update(func(st *SessionState) { st.IsLoading = true })

	if err := s.api.Post(ctx, "/auth/logout", nil, nil); err != nil {
		logger.For(ctx, s.log).Warn("remote logout failed", zap.Error(err))
	}

	err := s.tokens.ClearAll(ctx)
	s.update(func(st *SessionState) {
		*st = SessionState{Status: StatusAnonymous}
	})
	if err != nil {
		return fmt.Errorf("clear credentials: %w", err)
	}
	return nil
}

// FetchProfile replaces the user on success. On failure the session is left
// as it was, apart from the loading flag.
func (s *SessionStore) FetchProfile(ctx context.Context) error {
	s.update(func(st *SessionState) { st.IsLoading = true })

	user, err := s.fetchProfile(ctx)
	if err != nil {
		s.update(func(st *SessionState) { st.IsLoading = false })
		return err
	}

	s.update(func(st *SessionState) {
		st.User = user
		st.IsLoading = false
	})
	return nil
}

func (s *SessionStore) fetchProfile(ctx context.Context) (*models.User, error) {
	var user models.User
	if err := s.api.Get(ctx, "/user/profile", nil, &user); err != nil {
		return nil, err
	}
	s.cacheUser(ctx, user)
	return &user, nil
}

// CheckAuth rebuilds the session at startup. The cached user is shown while
// the profile is verified.
func (s *SessionStore) CheckAuth(ctx context.Context) bool {
	if !s.tokens.HasAccessToken(ctx) {
		s.update(func(st *SessionState) { *st = SessionState{Status: StatusAnonymous} })
		return false
	}

	cached, err := s.tokens.LoadUser(ctx)
	if err != nil {
		logger.For(ctx, s.log).Warn("ignoring unreadable cached user", zap.Error(err))
	}
	s.update(func(st *SessionState) {
		*st = SessionState{Status: StatusLoading, User: cached, IsLoading: true}
	})

	if exp, ok := s.tokens.AccessTokenExpiry(ctx); ok {
		logger.For(ctx, s.log).Debug("restoring session", zap.Time("access_token_expires", exp))
	}

	user, err := s.fetchProfile(ctx)
	if err != nil {
		logger.For(ctx, s.log).Info("stored session rejected", zap.Error(err))
		s.update(func(st *SessionState) { *st = SessionState{Status: StatusAnonymous} })
		return false
	}

	s.update(func(st *SessionState) {
		*st = SessionState{Status: StatusAuthenticated, User: user, IsAuthenticated: true}
	})
	return true
}

// UpdateProfile sends only the changed fields and keeps the server's copy.
func (s *SessionStore) UpdateProfile(ctx context.Context, patch models.ProfileUpdate) error {
	s.update(func(st *SessionState) {
		st.IsLoading = true
		st.Error = ""
	})

	var user models.User
	if err := s.api.Put(ctx, "/user/profile", patch, &user); err != nil {
		msg := clients.UserMessage(err, msgUpdateFailed)
		s.update(func(st *SessionState) {
			st.IsLoading = false
			st.Error = msg
		})
		return err
	}

	s.cacheUser(ctx, user)
	s.update(func(st *SessionState) {
		st.User = &user
		st.IsLoading = false
	})
	return nil
}

// SetUser replaces the user without a network call; nil signs the session out
// locally.
func (s *SessionStore) SetUser(user *models.User) {
	s.update(func(st *SessionState) {
		if user == nil {
			*st = SessionState{Status: StatusAnonymous}
			return
		}
		u := *user
		st.User = &u
		st.IsAuthenticated = true
		st.Status = StatusAuthenticated
	})
}

// ClearError drops the last failure; an error session becomes anonymous.
func (s *SessionStore) ClearError() {
	s.update(func(st *SessionState) {
		st.Error = ""
		if st.Status == StatusError {
			st.Status = StatusAnonymous
		}
	})
}

func (s *SessionStore) cacheUser(ctx context.Context, user models.User) {
	if err := s.tokens.SaveUser(ctx, user); err != nil {
		logger.For(ctx, s.log).Warn("failed to cache user", zap.Error(err))
	}
}
