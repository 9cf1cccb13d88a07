package apperr

import (
	"errors"

	"medwaste-backend/internal/logger"

	"github.com/gofiber/fiber/v2"
)

// ErrorHandler fiber.Config.ErrorHandler olarak kullanılır. Beklenmeyen hatalar
// loglanır, istemciye genel mesaj döner.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return c.Status(fe.Code).JSON(fiber.Map{
			"error": fe.Message,
		})
	}

	var ae *Error
	if errors.As(err, &ae) && ae.Kind != KindInternal {
		body := fiber.Map{"error": ae.Message}
		if len(ae.Fields) > 0 {
			body["fields"] = ae.Fields
		}
		return c.Status(ae.Status()).JSON(body)
	}

	logger.WithRequest(c).WithError(err).Error("beklenmeyen hata")
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": "Beklenmeyen sunucu hatası",
	})
}
