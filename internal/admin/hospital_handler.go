package admin

import (
	"strings"

	"medwaste-backend/internal/apperr"
	"medwaste-backend/internal/auth"
	"medwaste-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type HospitalResponse struct {
	ID        uint   `json:"id"`
	Code      string `json:"code"`
	Name      string `json:"name"`
	Color     string `json:"color"`
	IsActive  bool   `json:"is_active"`
	CreatedAt string `json:"created_at"`
}

type CreateHospitalRequest struct {
	Code     string `json:"code" validate:"required,max=20,alphanum"`
	Name     string `json:"name" validate:"required,max=150"`
	Color    string `json:"color" validate:"omitempty,hexcolor"`
	IsActive *bool  `json:"is_active"` // varsayılan: true
}

type UpdateHospitalRequest struct {
	Name     *string `json:"name" validate:"omitempty,max=150"`
	Color    *string `json:"color" validate:"omitempty,hexcolor"`
	IsActive *bool   `json:"is_active"`
}

func toHospitalResponse(h models.Hospital) HospitalResponse {
	return HospitalResponse{
		ID:        h.ID,
		Code:      h.Code,
		Name:      h.Name,
		Color:     h.Color,
		IsActive:  h.IsActive,
		CreatedAt: h.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}

func hospitalIDParam(c *fiber.Ctx) (uint, error) {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, "Geçersiz hastane ID")
	}
	return uint(id), nil
}

// ----------------------------------------
// HASTANE CRUD
// ----------------------------------------

// GET /api/hospitals?include_inactive=true
func ListHospitalsHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := auth.IdentityFrom(c)
		if err != nil {
			return err
		}

		hospitals, err := svc.ListHospitals(c.UserContext(), id, c.QueryBool("include_inactive"))
		if err != nil {
			return err
		}

		res := make([]HospitalResponse, 0, len(hospitals))
		for _, h := range hospitals {
			res = append(res, toHospitalResponse(h))
		}
		return c.JSON(res)
	}
}

// GET /api/hospitals/:id
func GetHospitalHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := auth.IdentityFrom(c)
		if err != nil {
			return err
		}
		hid, err := hospitalIDParam(c)
		if err != nil {
			return err
		}

		h, err := svc.GetHospital(c.UserContext(), id, hid)
		if err != nil {
			return err
		}
		return c.JSON(toHospitalResponse(*h))
	}
}

// POST /api/hospitals
func CreateHospitalHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := auth.IdentityFrom(c)
		if err != nil {
			return err
		}

		var body CreateHospitalRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz veri gönderildi")
		}
		body.Code = strings.ToUpper(strings.TrimSpace(body.Code))
		body.Name = strings.TrimSpace(body.Name)
		if err := apperr.Validate(&body); err != nil {
			return err
		}

		active := true
		if body.IsActive != nil {
			active = *body.IsActive
		}
		h, err := svc.CreateHospital(c.UserContext(), id, HospitalInput{
			Code:     body.Code,
			Name:     body.Name,
			Color:    body.Color,
			IsActive: active,
		})
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(toHospitalResponse(*h))
	}
}

// PUT /api/hospitals/:id
func UpdateHospitalHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := auth.IdentityFrom(c)
		if err != nil {
			return err
		}
		hid, err := hospitalIDParam(c)
		if err != nil {
			return err
		}

		var body UpdateHospitalRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz veri gönderildi")
		}
		if body.Name != nil {
			name := strings.TrimSpace(*body.Name)
			if name == "" {
				return fiber.NewError(fiber.StatusBadRequest, "Hastane adı boş olamaz")
			}
			body.Name = &name
		}
		if err := apperr.Validate(&body); err != nil {
			return err
		}

		h, err := svc.UpdateHospital(c.UserContext(), id, hid, HospitalPatch{
			Name:     body.Name,
			Color:    body.Color,
			IsActive: body.IsActive,
		})
		if err != nil {
			return err
		}
		return c.JSON(toHospitalResponse(*h))
	}
}
