package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadConfig_MissingFileUsesDefaults(t *testing.T) {
	c, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	assert.Equal(t, 10, c.Screener.Concurrency)
	assert.Equal(t, 50.0, c.Screener.MinScore)
	assert.Equal(t, "sp500", c.Screener.DefaultUniverse)
	assert.True(t, c.Screener.EnrichShortInterest)
	assert.True(t, c.Screener.EnrichSocial)
	assert.Equal(t, []string{"wallstreetbets", "stocks", "investing"}, c.Sources.Reddit.Subreddits)
	assert.Equal(t, ":8000", c.Server.Addr)
	assert.Equal(t, 60.0, c.Digest.MinScore)
}

func TestLoadConfig_FileOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
screener:
  concurrency: 4
  min_score: 65
  default_universe: nasdaq100
  enrich_social: false
sources:
  timeout_seconds: 5
  finviz:
    requests_per_second: 0.5
server:
  addr: 127.0.0.1:9000
digest:
  enabled: true
  schedule: "0 30 8 * * *"
`)
	c, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 4, c.Screener.Concurrency)
	assert.Equal(t, 65.0, c.Screener.MinScore)
	assert.Equal(t, "nasdaq100", c.Screener.DefaultUniverse)
	assert.True(t, c.Screener.EnrichShortInterest)
	assert.False(t, c.Screener.EnrichSocial)
	assert.Equal(t, 0.5, c.Sources.Finviz.RequestsPerSecond)
	assert.Equal(t, "127.0.0.1:9000", c.Server.Addr)
	assert.Equal(t, int64(5), int64(c.Timeout().Seconds()))
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("SCREENER_CONCURRENCY", "3")
	t.Setenv("SCREENER_MIN_SCORE", "72.5")
	t.Setenv("REDDIT_CLIENT_ID", "id")
	t.Setenv("REDDIT_CLIENT_SECRET", "secret")

	c, err := LoadConfig(writeConfig(t, "screener:\n  concurrency: 8\n"))
	require.NoError(t, err)

	assert.Equal(t, 3, c.Screener.Concurrency)
	assert.Equal(t, 72.5, c.Screener.MinScore)
	assert.Equal(t, "id", c.Sources.Reddit.ClientID)
	assert.Equal(t, "secret", c.Sources.Reddit.ClientSecret)
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := map[string]string{
		"concurrency": "screener:\n  concurrency: 500\n",
		"min score":   "screener:\n  min_score: 120\n",
		"universe":    "screener:\n  default_universe: ftse\n",
		"schedule":    "digest:\n  enabled: true\n  schedule: \"every tuesday\"\n",
		"yaml":        "screener: [",
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, body))
			assert.Error(t, err)
		})
	}
}
