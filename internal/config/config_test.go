package config

import (
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestLoadDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", testSecret)

	cfg, err := Load("does-not-exist.env")
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.HTTPPort)
	assert.Equal(t, 24*time.Hour, cfg.SessionTTL)
	assert.Equal(t, "db", cfg.SessionBackend)
	assert.Equal(t, 100, cfg.DashboardWindow)
	assert.Equal(t, 1000, cfg.AnalyticsWindow)
	assert.Equal(t, "placeholder", cfg.KPI.Mode)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "Europe/Istanbul", cfg.Location().String())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("JWT_SECRET", testSecret)
	t.Setenv("KPI_MODE", "coefficients")
	t.Setenv("SESSION_TTL", "30m")
	t.Setenv("ANALYTICS_WINDOW", "5000")

	cfg, err := Load("does-not-exist.env")
	require.NoError(t, err)
	assert.Equal(t, "coefficients", cfg.KPI.Mode)
	assert.Equal(t, 30*time.Minute, cfg.SessionTTL)
	assert.Equal(t, 5000, cfg.AnalyticsWindow)
}

func TestLoadRejectsShortSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "kisa")
	_, err := Load("does-not-exist.env")
	assert.Error(t, err)
}

func TestLoadRejectsUnknownKPIMode(t *testing.T) {
	t.Setenv("JWT_SECRET", testSecret)
	t.Setenv("KPI_MODE", "magic")
	_, err := Load("does-not-exist.env")
	assert.Error(t, err)
}

func TestInsecureDefaultsAreWarned(t *testing.T) {
	t.Setenv("JWT_SECRET", testSecret)
	t.Setenv("DATABASE_DSN", "")
	t.Setenv("CORS_ALLOWED_ORIGINS", "")
	hook := test.NewGlobal()
	defer hook.Reset()

	cfg, err := Load("does-not-exist.env")
	require.NoError(t, err)
	assert.Equal(t, defaultDSN, cfg.DatabaseDSN)
	assert.Equal(t, defaultCORSOrigins, cfg.CORSOrigins)

	var warned []string
	for _, e := range hook.AllEntries() {
		if e.Level == logrus.WarnLevel {
			warned = append(warned, e.Message)
		}
	}
	require.Len(t, warned, 2)
	assert.Contains(t, warned[0], "DATABASE_DSN")
	assert.Contains(t, warned[1], "CORS_ALLOWED_ORIGINS")

	hook.Reset()
	t.Setenv("DATABASE_DSN", "host=db user=app dbname=medwaste")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://panel.example.org")
	_, err = Load("does-not-exist.env")
	require.NoError(t, err)
	assert.Empty(t, hook.AllEntries())
}
