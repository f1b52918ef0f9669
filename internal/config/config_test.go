package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "config.toml"))
	require.NoError(t, err)
	assert.Equal(t, Defaults(), cfg)
	assert.NoError(t, cfg.Validate())
}

func TestLoadOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[data]
dir = "/var/lib/atlas"

[classifier]
provider = "openai"
model = "gpt-4o-mini"
api_key_env = "OPENAI_API_KEY"

[retry]
max_retries = 3
base_delay = "250ms"

[catalog.continent_quota]
EU = 2
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/var/lib/atlas", cfg.Data.Dir)
	assert.Equal(t, "openai", cfg.Classifier.Provider)
	assert.Equal(t, 3, cfg.Retry.MaxRetries)
	assert.Equal(t, 250*time.Millisecond, cfg.Retry.BaseDelay.Duration)
	assert.Equal(t, 250*time.Millisecond, cfg.Retry.MaxJitter.Duration)
	assert.Equal(t, 2, cfg.Catalog.ContinentQuota["EU"])
	assert.Equal(t, 8080, cfg.Server.Port)
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := map[string]string{
		"unknown provider": "[classifier]\nprovider = \"cohere\"\n",
		"bad port":         "[server]\nport = 0\n",
		"bad duration":     "[retry]\nbase_delay = \"soon\"\n",
		"zero base delay":  "[retry]\nbase_delay = \"0s\"\n",
		"bad log level":    "[log]\nlevel = \"loud\"\n",
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.toml")
			require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
			_, err := Load(path)
			assert.Error(t, err)
		})
	}
}

func TestRequireCredentials(t *testing.T) {
	cfg := Defaults()
	cfg.Places.APIKeyEnv = "ATLAS_TEST_PLACES_KEY"
	cfg.Classifier.APIKeyEnv = "ATLAS_TEST_LLM_KEY"

	t.Setenv("ATLAS_TEST_PLACES_KEY", "")
	t.Setenv("ATLAS_TEST_LLM_KEY", "")
	err := cfg.RequireCredentials()
	require.ErrorIs(t, err, ErrMissingCredential)
	assert.Contains(t, err.Error(), "ATLAS_TEST_PLACES_KEY")
	assert.Contains(t, err.Error(), "ATLAS_TEST_LLM_KEY")

	t.Setenv("ATLAS_TEST_PLACES_KEY", "p")
	t.Setenv("ATLAS_TEST_LLM_KEY", "k")
	assert.NoError(t, cfg.RequireCredentials())
	assert.Equal(t, "k", cfg.ClassifierAPIKey())
}
