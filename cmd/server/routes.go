package main

import (
	"medwaste-backend/internal/admin"
	"medwaste-backend/internal/analytics"
	"medwaste-backend/internal/audit"
	"medwaste-backend/internal/auth"
	"medwaste-backend/internal/collection"
	"medwaste-backend/internal/config"
	"medwaste-backend/internal/dashboard"
	"medwaste-backend/internal/issue"
	"medwaste-backend/internal/pricing"

	"github.com/gofiber/fiber/v2"
)

func registerRoutes(app *fiber.App, cfg *config.Config, svc *services) {
	loc := cfg.Location()
	api := app.Group("/api")

	// Public auth
	api.Post("/auth/login", auth.LoginHandler(svc.auth, cfg.SessionCookieName))

	// Protected
	protected := api.Group("", auth.SessionMiddleware(svc.auth, cfg.SessionCookieName))

	protected.Get("/auth/me", auth.MeHandler(svc.auth))
	protected.Post("/auth/logout", auth.LogoutHandler(svc.auth, cfg.SessionCookieName))

	// Özet ekranları
	protected.Get("/dashboard/summary", dashboard.SummaryHandler(svc.dashboard))
	protected.Get("/analytics", analytics.ReportHandler(svc.analytics))

	// Hastaneler
	protected.Get("/hospitals", admin.ListHospitalsHandler(svc.admin))
	protected.Get("/hospitals/:id", admin.GetHospitalHandler(svc.admin))
	protected.Post("/hospitals", auth.Require(auth.ActionManageHospitals), admin.CreateHospitalHandler(svc.admin))
	protected.Put("/hospitals/:id", auth.Require(auth.ActionManageHospitals), admin.UpdateHospitalHandler(svc.admin))

	// Atık türleri ve fiyat geçmişi
	protected.Get("/waste-types", admin.ListWasteTypesHandler(svc.admin))
	protected.Get("/waste-types/:id/rate", pricing.RateHandler(svc.pricing, loc))
	protected.Get("/waste-type-costs", admin.ListWasteTypeCostsHandler(svc.admin))
	protected.Put("/waste-type-costs", auth.Require(auth.ActionManageCosts), admin.UpsertWasteTypeCostHandler(svc.admin, loc))

	// Lokasyonlar
	protected.Get("/location-categories", admin.ListLocationCategoriesHandler(svc.admin))
	protected.Post("/location-categories", auth.Require(auth.ActionManageLocationCategories), admin.CreateLocationCategoryHandler(svc.admin))
	protected.Put("/location-categories/:id", auth.Require(auth.ActionManageLocationCategories), admin.UpdateLocationCategoryHandler(svc.admin))
	protected.Get("/locations", admin.ListLocationsHandler(svc.admin))
	protected.Post("/locations", auth.Require(auth.ActionManageLocations), admin.CreateLocationHandler(svc.admin))
	protected.Patch("/locations/:id", auth.Require(auth.ActionManageLocations), admin.UpdateLocationHandler(svc.admin))

	// Operasyonel katsayılar
	protected.Get("/coefficients", admin.ListCoefficientsHandler(svc.admin))
	protected.Put("/coefficients", auth.Require(auth.ActionManageCoefficients), admin.UpsertCoefficientHandler(svc.admin))

	// Atık toplama
	protected.Get("/collections", collection.ListCollectionsHandler(svc.collection))
	protected.Post("/collections", auth.Require(auth.ActionRecordCollections), collection.CreateCollectionHandler(svc.collection))
	protected.Post("/collections/:tag/weigh", auth.Require(auth.ActionRecordCollections), collection.WeighCollectionHandler(svc.collection))
	protected.Post("/collections/:tag/cancel", auth.Require(auth.ActionCancelCollections), collection.CancelCollectionHandler(svc.collection))

	// Uygunsuzluk bildirimleri
	protected.Get("/issues", issue.ListIssuesHandler(svc.issue))
	protected.Post("/issues", auth.Require(auth.ActionReportIssues), issue.CreateIssueHandler(svc.issue))
	protected.Post("/issues/:id/resolve", auth.Require(auth.ActionResolveIssues), issue.ResolveIssueHandler(svc.issue))

	// Audit logs
	protected.Get("/audit-logs", auth.Require(auth.ActionViewAudit), audit.ListAuditLogsHandler(svc.audit))
}
