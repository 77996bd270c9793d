package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/de-tools/growth-atlas/pkg/models/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("env settings", func(t *testing.T) {
		t.Setenv("GROWTH_SHOP_DOMAIN", "shop.example.com")
		t.Setenv("GROWTH_API_KEY", "secret")
		t.Setenv("GROWTH_ACCOUNT_REGION_MAP", `{"act_1": "uk"}`)

		settings, err := Load("")
		require.NoError(t, err)
		require.NoError(t, settings.Validate())

		assert.Equal(t, "shop.example.com", settings.ShopDomain)
		assert.Equal(t, domain.RegionUK, settings.AccountRegionMap["act_1"])
		assert.NotEmpty(t, settings.APIBase)
	})

	t.Run("missing shop domain fails validation", func(t *testing.T) {
		settings := &Settings{APIKey: "secret"}
		err := settings.Validate()
		var cfgErr *domain.ConfigurationError
		require.ErrorAs(t, err, &cfgErr)
		assert.Contains(t, cfgErr.Setting, "SHOP_DOMAIN")
	})

	t.Run("malformed account map rejected", func(t *testing.T) {
		t.Setenv("GROWTH_ACCOUNT_REGION_MAP", "not-json")
		_, err := Load("")
		var cfgErr *domain.ConfigurationError
		require.ErrorAs(t, err, &cfgErr)
	})

	t.Run("unknown region in account map rejected", func(t *testing.T) {
		t.Setenv("GROWTH_ACCOUNT_REGION_MAP", `{"act_1": "EU"}`)
		_, err := Load("")
		require.Error(t, err)
	})
}

func TestLoadAccountRegionMap(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "accounts.ini")
	require.NoError(t, os.WriteFile(path, []byte("[accounts]\nact_1 = US\nact_2 = au\n"), 0o600))

	m, err := LoadAccountRegionMap(path)
	require.NoError(t, err)
	assert.Equal(t, domain.RegionUS, m["act_1"])
	assert.Equal(t, domain.RegionAU, m["act_2"])

	t.Run("unknown region fails", func(t *testing.T) {
		bad := filepath.Join(dir, "bad.ini")
		require.NoError(t, os.WriteFile(bad, []byte("[accounts]\nact_1 = EU\n"), 0o600))
		_, err := LoadAccountRegionMap(bad)
		assert.Error(t, err)
	})
}
