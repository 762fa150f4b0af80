package stores

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/plant-decor/KLTN-PlantDecor-Mobile/clients"
	"github.com/plant-decor/KLTN-PlantDecor-Mobile/database"
	"github.com/plant-decor/KLTN-PlantDecor-Mobile/mockapi"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const (
	testEmail    = "lan@plantdecor.vn"
	testPassword = "secret123"
)

type harness struct {
	srv    *mockapi.Server
	url    string
	api    *clients.APIClient
	store  *database.MemoryStore
	tokens *clients.TokenManager
}

// newHarness starts the in-memory storefront. wrap, when set, sits in front
// of the router so tests can hold individual requests.
func newHarness(t *testing.T, wrap func(http.Handler) http.Handler) *harness {
	t.Helper()
	gin.SetMode(gin.TestMode)

	srv := mockapi.New(mockapi.Options{Secret: "stores-test"}, zap.NewNop())
	_, err := srv.CreateAccount(testEmail, testPassword, "Lan Nguyen")
	require.NoError(t, err)

	var handler http.Handler = srv.Router()
	if wrap != nil {
		handler = wrap(handler)
	}
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)

	store := database.NewMemoryStore()
	tm := clients.NewTokenManager(store, zap.NewNop(), true)
	return &harness{
		srv:    srv,
		url:    ts.URL,
		api:    clients.NewAPIClient(ts.URL, 2*time.Second, tm, zap.NewNop()),
		store:  store,
		tokens: tm,
	}
}

func (h *harness) signIn(t *testing.T) *SessionStore {
	t.Helper()
	session := NewSessionStore(h.api, zap.NewNop())
	require.NoError(t, session.Login(context.Background(), testEmail, testPassword))
	return session
}

func stored(t *testing.T, store database.CredentialStore, key string) (string, bool) {
	t.Helper()
	v, found, err := store.Get(context.Background(), key)
	require.NoError(t, err)
	return v, found
}
