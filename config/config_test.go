package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"API_BASE_URL", "API_TIMEOUT", "DESIGN_TIMEOUT", "REFRESH_SINGLE_FLIGHT", "MAX_CART_QUANTITY", "CREDENTIAL_STORE"} {
		t.Setenv(key, "")
	}

	cfg := Load()

	assert.Equal(t, "http://localhost:3000/api", cfg.APIBaseURL)
	assert.Equal(t, 15*time.Second, cfg.APITimeout)
	assert.Equal(t, 60*time.Second, cfg.DesignTimeout)
	assert.True(t, cfg.RefreshSingleFlight)
	assert.Equal(t, 99, cfg.MaxCartQuantity)
	assert.Equal(t, 20, cfg.ItemsPerPage)
	assert.Equal(t, "sqlite", cfg.CredentialStore)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("API_BASE_URL", "https://api.plantdecor.vn/api/")
	t.Setenv("API_TIMEOUT", "3s")
	t.Setenv("REFRESH_SINGLE_FLIGHT", "false")
	t.Setenv("MAX_CART_QUANTITY", "not-a-number")
	t.Setenv("ALLOWED_ORIGINS", "http://a.test/, http://b.test")

	cfg := Load()

	assert.Equal(t, "https://api.plantdecor.vn/api", cfg.APIBaseURL)
	assert.Equal(t, 3*time.Second, cfg.APITimeout)
	assert.False(t, cfg.RefreshSingleFlight)
	assert.Equal(t, 99, cfg.MaxCartQuantity)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.AllowedOrigins)
}
