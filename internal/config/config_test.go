package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tournevent/bringrate/internal/config"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("BRING_USE_MOCK", "true")

	cfg, err := config.Load(filepath.Join(t.TempDir(), "missing.env"))

	require.NoError(t, err)
	assert.Equal(t, 80, cfg.Port)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "https://api.bring.com/shippingguide", cfg.BringBaseURL)
	assert.Equal(t, 30*time.Second, cfg.BringTimeout)
	assert.True(t, cfg.BringUseMock)
	assert.False(t, cfg.OTELEnabled)
	assert.Equal(t, "bringrate", cfg.ServiceName)
}

func TestLoad_RequiresCredentials(t *testing.T) {
	t.Setenv("BRING_USE_MOCK", "false")
	t.Setenv("BRING_API_UID", "")
	t.Setenv("BRING_API_KEY", "")

	_, err := config.Load(filepath.Join(t.TempDir(), "missing.env"))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "BRING_API_UID")
}

func TestLoad_DotEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("BRING_API_UID=shop@example.com\nBRING_API_KEY=secret\nPORT=9090\n"), 0o600))
	t.Setenv("BRING_USE_MOCK", "false")
	// t.Setenv restores the variables godotenv sets.
	t.Setenv("BRING_API_UID", "")
	t.Setenv("BRING_API_KEY", "")
	t.Setenv("PORT", "")
	os.Unsetenv("BRING_API_UID")
	os.Unsetenv("BRING_API_KEY")
	os.Unsetenv("PORT")

	cfg, err := config.Load(path)

	require.NoError(t, err)
	assert.Equal(t, "shop@example.com", cfg.BringAPIUID)
	assert.Equal(t, "secret", cfg.BringAPIKey)
	assert.Equal(t, 9090, cfg.Port)
}

func TestConfig_Attributes(t *testing.T) {
	cfg := &config.Config{ServiceName: "bringrate", Version: "1.2.3", BringUseMock: true}
	attrs := cfg.Attributes()
	assert.Len(t, attrs, 4)
	assert.Equal(t, "bringrate", attrs[0].Value.AsString())
}
