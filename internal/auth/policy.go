package auth

import (
	"medwaste-backend/internal/apperr"
	"medwaste-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type Action string

const (
	ActionManageHospitals          Action = "manage_hospitals"
	ActionManageLocationCategories Action = "manage_location_categories"
	ActionManageLocations          Action = "manage_locations"
	ActionManageCoefficients       Action = "manage_coefficients"
	ActionManageCosts              Action = "manage_costs"
	ActionResolveIssues            Action = "resolve_issues"
	ActionCancelCollections        Action = "cancel_collections"
	ActionRecordCollections        Action = "record_collections"
	ActionReportIssues             Action = "report_issues"
	ActionViewAudit                Action = "view_audit"
)

var (
	hqOnly          = []models.Role{models.RoleHQ}
	managerOrAbove  = []models.Role{models.RoleHQ, models.RoleHospitalManager}
	everyFieldRole  = []models.Role{models.RoleHQ, models.RoleHospitalManager, models.RoleCollector}
	ErrNotPermitted = apperr.Forbidden("Bu işlem için yetkiniz yok")
)

var policy = map[Action][]models.Role{
	ActionManageHospitals:          hqOnly,
	ActionManageLocationCategories: hqOnly,
	ActionViewAudit:                hqOnly,
	ActionManageLocations:          managerOrAbove,
	ActionManageCoefficients:       managerOrAbove,
	ActionManageCosts:              managerOrAbove,
	ActionResolveIssues:            managerOrAbove,
	ActionCancelCollections:        managerOrAbove,
	ActionRecordCollections:        everyFieldRole,
	ActionReportIssues:             everyFieldRole,
}

// Can rol kümesinin verilen işleme izin verip vermediğini söyler. Tanımsız işlem reddedilir.
func Can(roles []models.Role, action Action) bool {
	allowed, ok := policy[action]
	if !ok {
		return false
	}
	for _, r := range roles {
		for _, a := range allowed {
			if r == a {
				return true
			}
		}
	}
	return false
}

// Require rota seviyesinde yetki kontrolü.
func Require(action Action) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := IdentityFrom(c)
		if err != nil {
			return err
		}
		if !Can(id.Roles, action) {
			return ErrNotPermitted
		}
		return c.Next()
	}
}
