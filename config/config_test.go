package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	path := writeConfig(t, "server:\n  port: 9000\n")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, "sqlite", cfg.Database.Mode)
	assert.Equal(t, int64(100), cfg.Game.EarnAmount)
	assert.Equal(t, 0.6, cfg.Game.SellRate)
	assert.Equal(t, 3, cfg.Game.MaxCharacters)
	assert.Equal(t, 5*time.Minute, cfg.Game.RankingRefresh)
	assert.Equal(t, 72*time.Hour, cfg.Security.JWTTTLH)
}

func TestLoad_Overrides(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 8081
  debug: true
  admin_key: supersecret
database:
  mode: mysql
  mysql_dsn: user:pass@tcp(localhost:3306)/game
game:
  earn_amount: 250
  sell_rate: 0.5
security:
  jwt_secret: abc
  rate_limit_rps: 10
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.True(t, cfg.Server.Debug)
	assert.Equal(t, "supersecret", cfg.Server.AdminKey)
	assert.Equal(t, "mysql", cfg.Database.Mode)
	assert.Equal(t, int64(250), cfg.Game.EarnAmount)
	assert.Equal(t, 0.5, cfg.Game.SellRate)
	assert.Equal(t, float64(10), cfg.Security.RateLimitRPS)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}
