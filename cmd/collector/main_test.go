package main

import (
	"os"
	"path/filepath"
	"testing"

	"jobcollect-engine/internal/config"
	"jobcollect-engine/internal/secrets"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"
)

const messyConfig = `search:
  terms: ["  QA Engineer ", "qa engineer", "SDET"]
  locations:
    - {location: " Recife ", country: "Brazil"}
  platforms: ["Indeed", "indeed"]
scraping:
  verbose: 0
  delay_between_searches: 10
sources:
  jobspy:
    keyring_account: "jobcollect:cli-test"
    api_key_env: "JOBCOLLECT_CLI_TEST_KEY"
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	return p
}

func TestNormalizeConfigRewritesFileAndKeepsBackup(t *testing.T) {
	p := writeConfig(t, messyConfig)

	require.Equal(t, 0, run([]string{"--config", p, "--normalize-config", "--verbose", "2"}))

	got, err := config.Load(p)
	require.NoError(t, err)
	assert.Equal(t, []string{"QA Engineer", "SDET"}, got.Search.Terms)
	assert.Equal(t, []string{"indeed"}, got.Search.Platforms)
	assert.Equal(t, "Recife", got.Search.Locations[0].Location)
	// the --verbose override applies to this run only
	assert.Equal(t, 0, got.Scraping.Verbose)

	bak, err := os.ReadFile(p + ".bak")
	require.NoError(t, err)
	assert.Equal(t, messyConfig, string(bak))
}

func TestNormalizeConfigRefusesInvalidFile(t *testing.T) {
	p := writeConfig(t, "search:\n  terms: []\nscraping:\n  verbose: 0\n")

	assert.Equal(t, 1, run([]string{"--config", p, "--normalize-config"}))
	_, err := os.Stat(p + ".bak")
	assert.True(t, os.IsNotExist(err))
}

func TestAPIKeySaveAndDelete(t *testing.T) {
	keyring.MockInit()
	t.Setenv("JOBCOLLECT_CLI_TEST_KEY", " secret-key ")
	p := writeConfig(t, messyConfig)

	require.Equal(t, 0, run([]string{"--config", p, "--save-api-key"}))
	key, err := keyring.Get(secrets.KeyringService, "jobcollect:cli-test")
	require.NoError(t, err)
	assert.Equal(t, "secret-key", key)

	require.Equal(t, 0, run([]string{"--config", p, "--delete-api-key"}))
	_, err = keyring.Get(secrets.KeyringService, "jobcollect:cli-test")
	assert.ErrorIs(t, err, keyring.ErrNotFound)

	// nothing left to remove
	assert.Equal(t, 1, run([]string{"--config", p, "--delete-api-key"}))
}

func TestUnknownFlagIsUsageError(t *testing.T) {
	assert.Equal(t, 2, run([]string{"--no-such-flag"}))
}
