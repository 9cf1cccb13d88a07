package logger

import (
	"bytes"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"medwaste-backend/internal/config"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitRejectsBadLevel(t *testing.T) {
	_, err := Init(config.LogConfig{Level: "chatty", Output: "stdout"})
	assert.Error(t, err)
}

func TestInitFileOutput(t *testing.T) {
	dir := t.TempDir()
	l, err := Init(config.LogConfig{
		Level: "debug", Format: "json", Output: "file",
		Path: dir, File: "app.log", MaxSize: 1, MaxBackups: 1, MaxAge: 1,
	})
	require.NoError(t, err)
	assert.Equal(t, logrus.DebugLevel, l.GetLevel())
	assert.Same(t, l, L())

	l.Info("deneme")
	assert.FileExists(t, filepath.Join(dir, "app.log"))
}

func TestAccessLogWritesStatus(t *testing.T) {
	l, err := Init(config.LogConfig{Level: "debug", Format: "json", Output: "stdout"})
	require.NoError(t, err)
	var buf bytes.Buffer
	l.SetOutput(&buf)

	app := fiber.New()
	app.Use(AccessLog())
	app.Get("/missing", func(c *fiber.Ctx) error {
		return fiber.NewError(fiber.StatusNotFound, "yok")
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/missing", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	assert.Contains(t, buf.String(), `"status":404`)
	assert.Contains(t, buf.String(), `"path":"/missing"`)
}
