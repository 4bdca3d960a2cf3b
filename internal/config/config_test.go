package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTemp(t *testing.T, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(writeTemp(t, "pairs: []\n"))
	require.NoError(t, err)

	assert.Equal(t, []string{"BTC-USDT", "ETH-USDT"}, cfg.Pairs)
	assert.Equal(t, []string{"binance", "okx", "kucoin", "bitmart"}, cfg.Venues)
	assert.Equal(t, 100, cfg.Depth)
	assert.Equal(t, 6000, cfg.HTTP.TimeoutMs)
	assert.Equal(t, "file", cfg.History.Backend)
	assert.Equal(t, 1000, cfg.History.MaxPerFile)
	assert.Equal(t, "quote:snap:", cfg.Redis.SnapNS)
}

func TestLoad_Values(t *testing.T) {
	cfg, err := Load(writeTemp(t, `
pairs: ["SOL-USDT"]
venues: ["okx"]
depth: 50
timings:
  poll_interval_ms: 250
history:
  backend: s3
  s3:
    region: us-east-1
    bucket: books
`))
	require.NoError(t, err)

	assert.Equal(t, []string{"SOL-USDT"}, cfg.Pairs)
	assert.Equal(t, []string{"okx"}, cfg.Venues)
	assert.Equal(t, 50, cfg.Depth)
	assert.Equal(t, 250, cfg.Timings.PollIntervalMs)
	assert.Equal(t, "s3", cfg.History.Backend)
	assert.Equal(t, "books", cfg.History.S3.Bucket)
	assert.Equal(t, 250*1000000, int(cfg.PollInterval()))
}

func TestLoad_EnvSecrets(t *testing.T) {
	t.Setenv("XETRADE_S3_SECRET_KEY", "sekrit")
	cfg, err := Load(writeTemp(t, "pairs: [\"BTC-USDT\"]\n"))
	require.NoError(t, err)
	assert.Equal(t, "sekrit", cfg.History.S3.SecretKey)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
