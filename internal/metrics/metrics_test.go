package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDomainCounters(t *testing.T) {
	m := New()
	m.CollectionCreated("medical")
	m.CollectionCreated("medical")
	m.WeighIn(true)
	m.IssueReported("technical")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.collectionsCreated.WithLabelValues("medical")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.weighIns.WithLabelValues("manual")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.weighIns.WithLabelValues("scale")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.issuesReported.WithLabelValues("technical")))
}

func TestMiddlewareAndEndpoint(t *testing.T) {
	m := New()
	app := fiber.New()
	app.Use(m.Middleware())
	app.Get("/metrics", m.Handler())
	app.Get("/api/items/:id", func(c *fiber.Ctx) error { return c.SendString("ok") })

	for _, id := range []string{"1", "2"} {
		resp, err := app.Test(httptest.NewRequest("GET", "/api/items/"+id, nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	}
	assert.Equal(t, 2.0, testutil.ToFloat64(m.requests.WithLabelValues("GET", "/api/items/:id", "200")))

	resp, err := app.Test(httptest.NewRequest("GET", "/metrics", nil))
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(body), "medwaste_http_requests_total"))
}
