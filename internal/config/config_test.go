package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Store.Type)
	assert.Equal(t, "file", cfg.Document.Type)
	assert.Equal(t, 100, cfg.Quota.DailyLimit)
	assert.Equal(t, 10*time.Second, cfg.Grading.Timeout)
	assert.Equal(t, time.Second, cfg.Grading.CallDelay)
	assert.Equal(t, "0.0.0.0:8080", cfg.Server.Address())
	assert.Equal(t, filepath.Join("data", "oauthtoken"), cfg.TokenFile())
	assert.Equal(t, filepath.Join("data", "imports"), cfg.Data.ImportPath())
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("STORE_TYPE", "postgres")
	t.Setenv("QUOTA_DAILY_LIMIT", "250")
	t.Setenv("API_KEYS", "a,b")
	t.Setenv("IMAGE_DIR", "/srv/images")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "postgres", cfg.Store.Type)
	assert.Equal(t, 250, cfg.Quota.DailyLimit)
	assert.Equal(t, []string{"a", "b"}, cfg.Auth.APIKeys)
	assert.Equal(t, "/srv/images", cfg.Data.ImagePath())
}

func TestLoadRejectsUnknownBackends(t *testing.T) {
	t.Setenv("STORE_TYPE", "oracle")
	_, err := Load()
	assert.ErrorContains(t, err, "STORE_TYPE")
}

func TestDSNs(t *testing.T) {
	s := StoreConfig{Host: "db", Name: "inv", User: "tcg", Password: "p@ss", SSLMode: "disable"}

	assert.Equal(t, "postgres://tcg:p%40ss@db:5432/inv?sslmode=disable", s.PostgresDSN())

	dsn := s.MySQLDSN()
	assert.Contains(t, dsn, "tcg:p@ss@tcp(db:3306)/inv")
	assert.Contains(t, dsn, "clientFoundRows=true")

	s.Port = 3307
	assert.Contains(t, s.MySQLDSN(), "tcp(db:3307)")
}
