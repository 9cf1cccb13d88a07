package auth

import (
	"strings"

	"medwaste-backend/internal/logger"

	"github.com/gofiber/fiber/v2"
)

// tokenFromRequest önce Authorization başlığına, sonra oturum çerezine bakar.
func tokenFromRequest(c *fiber.Ctx, cookieName string) (string, error) {
	if authHeader := c.Get(fiber.HeaderAuthorization); authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" || strings.TrimSpace(parts[1]) == "" {
			return "", fiber.NewError(fiber.StatusUnauthorized, "Authorization formatı 'Bearer <token>' olmalı")
		}
		return strings.TrimSpace(parts[1]), nil
	}
	if cookieName != "" {
		if v := c.Cookies(cookieName); v != "" {
			return v, nil
		}
	}
	return "", fiber.NewError(fiber.StatusUnauthorized, "Oturum bilgisi eksik")
}

func SessionMiddleware(svc *Service, cookieName string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, err := tokenFromRequest(c, cookieName)
		if err != nil {
			return err
		}

		id, err := svc.Authenticate(c.UserContext(), token)
		if err != nil {
			return err
		}

		c.Locals(CtxIdentityKey, id)
		c.Locals(logger.CtxUserIDKey, id.UserID)

		return c.Next()
	}
}
