package auth

import (
	"time"

	"medwaste-backend/internal/apperr"
	"medwaste-backend/internal/logger"
	"medwaste-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type HospitalMembershipResponse struct {
	ID        uint   `json:"id"`
	Code      string `json:"code"`
	Name      string `json:"name"`
	Color     string `json:"color"`
	IsDefault bool   `json:"is_default"`
}

type UserResponse struct {
	ID          uint                         `json:"id"`
	Username    string                       `json:"username"`
	Email       string                       `json:"email"`
	FirstName   string                       `json:"first_name"`
	LastName    string                       `json:"last_name"`
	DisplayName string                       `json:"display_name"`
	Roles       []models.Role                `json:"roles"`
	Hospitals   []HospitalMembershipResponse `json:"hospitals"`
}

type LoginResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      UserResponse `json:"user"`
}

func toUserResponse(u *models.User) UserResponse {
	resp := UserResponse{
		ID:          u.ID,
		Username:    u.Username,
		Email:       u.Email,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		DisplayName: u.DisplayName(),
		Roles:       u.RoleSet(),
		Hospitals:   make([]HospitalMembershipResponse, 0, len(u.Hospitals)),
	}
	if resp.Roles == nil {
		resp.Roles = []models.Role{}
	}
	for _, m := range u.Hospitals {
		resp.Hospitals = append(resp.Hospitals, HospitalMembershipResponse{
			ID:        m.HospitalID,
			Code:      m.Hospital.Code,
			Name:      m.Hospital.Name,
			Color:     m.Hospital.Color,
			IsDefault: m.IsDefault,
		})
	}
	return resp
}

func LoginHandler(svc *Service, cookieName string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body LoginRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}
		if err := apperr.Validate(&body); err != nil {
			return err
		}

		res, err := svc.Login(c.UserContext(), body.Username, body.Password)
		if err != nil {
			if apperr.IsKind(err, apperr.KindUnauthorized) {
				logger.WithRequest(c).WithField("username", body.Username).Info("başarısız giriş denemesi")
			}
			return err
		}

		if cookieName != "" {
			c.Cookie(&fiber.Cookie{
				Name:     cookieName,
				Value:    res.Token,
				Path:     "/",
				Expires:  res.ExpiresAt,
				HTTPOnly: true,
				SameSite: fiber.CookieSameSiteLaxMode,
			})
		}

		// Login yanıtındaki üyelikler hastane adını içersin
		user, err := svc.Profile(c.UserContext(), res.User.ID)
		if err != nil {
			user = res.User
		}

		return c.JSON(LoginResponse{
			Token:     res.Token,
			ExpiresAt: res.ExpiresAt,
			User:      toUserResponse(user),
		})
	}
}

func MeHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := IdentityFrom(c)
		if err != nil {
			return err
		}
		u, err := svc.Profile(c.UserContext(), id.UserID)
		if err != nil {
			return err
		}
		return c.JSON(toUserResponse(u))
	}
}

func LogoutHandler(svc *Service, cookieName string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := IdentityFrom(c)
		if err != nil {
			return err
		}
		if err := svc.Logout(c.UserContext(), id.SessionID); err != nil {
			return err
		}
		if cookieName != "" {
			c.ClearCookie(cookieName)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}
