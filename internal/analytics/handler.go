package analytics

import (
	"medwaste-backend/internal/auth"

	"github.com/gofiber/fiber/v2"
)

// GET /api/analytics?hospital_id=1
func ReportHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		_, scope, err := auth.ScopeFromRequest(c)
		if err != nil {
			return err
		}

		report, err := svc.Report(c.UserContext(), scope)
		if err != nil {
			return err
		}
		return c.JSON(report)
	}
}
