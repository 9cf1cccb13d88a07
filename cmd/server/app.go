package main

import (
	"strings"
	"time"

	"medwaste-backend/internal/admin"
	"medwaste-backend/internal/analytics"
	"medwaste-backend/internal/apperr"
	"medwaste-backend/internal/audit"
	"medwaste-backend/internal/auth"
	"medwaste-backend/internal/collection"
	"medwaste-backend/internal/config"
	"medwaste-backend/internal/dashboard"
	"medwaste-backend/internal/issue"
	"medwaste-backend/internal/logger"
	"medwaste-backend/internal/metrics"
	"medwaste-backend/internal/pricing"
	"medwaste-backend/internal/store"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/sirupsen/logrus"
)

type services struct {
	auth       *auth.Service
	audit      *audit.Service
	pricing    *pricing.Service
	dashboard  *dashboard.Service
	analytics  *analytics.Service
	collection *collection.Service
	issue      *issue.Service
	admin      *admin.Service
	metrics    *metrics.Metrics
}

func newSessionStore(cfg *config.Config, st *store.Store) auth.SessionStore {
	if cfg.SessionBackend == "memory" {
		return auth.NewMemorySessionStore()
	}
	return st.Sessions()
}

func buildServices(cfg *config.Config, st *store.Store) *services {
	m := metrics.New()
	rec := audit.NewService(st)
	builder := analytics.Builder{
		KPI:      analytics.NewKPICalculator(cfg.KPI),
		Location: cfg.Location(),
	}

	return &services{
		auth:       auth.NewService(st, newSessionStore(cfg, st), cfg.JWTSecret, cfg.SessionTTL),
		audit:      rec,
		pricing:    pricing.NewService(st),
		dashboard:  dashboard.NewService(st, cfg.DashboardWindow),
		analytics:  analytics.NewService(st, builder, cfg.AnalyticsWindow),
		collection: collection.NewService(st, rec, m, cfg.CollectionListLimit),
		issue:      issue.NewService(st, rec, m),
		admin:      admin.NewService(st, rec),
		metrics:    m,
	}
}

func splitOrigins(raw string) string {
	parts := strings.Split(raw, ",")
	origins := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			origins = append(origins, p)
		}
	}
	return strings.Join(origins, ",")
}

func newApp(cfg *config.Config, svc *services) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "medwaste-backend",
		ErrorHandler: apperr.ErrorHandler,
	})

	app.Use(recover.New(recover.Config{
		EnableStackTrace: true,
		StackTraceHandler: func(c *fiber.Ctx, e interface{}) {
			logger.WithRequest(c).WithField("panic", e).Error("Panic yakalandı")
		},
	}))
	app.Use(requestid.New())

	app.Use(cors.New(cors.Config{
		AllowOrigins:     splitOrigins(cfg.CORSOrigins),
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Request-ID",
		AllowMethods:     "GET,POST,PUT,PATCH,DELETE,OPTIONS",
		AllowCredentials: true,
		ExposeHeaders:    "X-Request-ID",
	}))

	if cfg.RateLimitMax > 0 {
		app.Use(limiter.New(limiter.Config{
			Max:        cfg.RateLimitMax,
			Expiration: cfg.RateLimitWindow,
			KeyGenerator: func(c *fiber.Ctx) string {
				return c.IP()
			},
			LimitReached: func(c *fiber.Ctx) error {
				return fiber.NewError(fiber.StatusTooManyRequests, "Çok fazla istek, lütfen biraz sonra tekrar deneyin")
			},
			Next: func(c *fiber.Ctx) bool {
				return c.Path() == "/health" || c.Path() == "/metrics" || c.Method() == fiber.MethodOptions
			},
		}))
		logger.L().WithFields(logrus.Fields{
			"max":    cfg.RateLimitMax,
			"window": cfg.RateLimitWindow.String(),
		}).Info("Rate limit aktif")
	}

	app.Use(logger.AccessLog())
	if cfg.MetricsEnabled {
		app.Use(svc.metrics.Middleware())
		app.Get("/metrics", svc.metrics.Handler())
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "time": time.Now().Format(time.RFC3339)})
	})

	registerRoutes(app, cfg, svc)
	return app
}
