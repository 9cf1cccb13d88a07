package dashboard

import (
	"medwaste-backend/internal/auth"

	"github.com/gofiber/fiber/v2"
)

// GET /api/dashboard/summary?hospital_id=1
func SummaryHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		_, scope, err := auth.ScopeFromRequest(c)
		if err != nil {
			return err
		}

		summary, err := svc.Summary(c.UserContext(), scope)
		if err != nil {
			return err
		}
		return c.JSON(summary)
	}
}
