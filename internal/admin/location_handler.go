package admin

import (
	"strings"

	"medwaste-backend/internal/apperr"
	"medwaste-backend/internal/auth"
	"medwaste-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type LocationResponse struct {
	ID           uint    `json:"id"`
	HospitalID   uint    `json:"hospital_id"`
	Code         string  `json:"code"`
	CategoryID   *uint   `json:"category_id"`
	CategoryName *string `json:"category_name"`
	Label        string  `json:"label"`
	IsActive     bool    `json:"is_active"`
	CreatedAt    string  `json:"created_at"`
}

type CreateLocationRequest struct {
	HospitalID *uint  `json:"hospital_id"` // yoksa varsayılan hastane
	CategoryID *uint  `json:"category_id"`
	Label      string `json:"label" validate:"max=150"`
}

type UpdateLocationRequest struct {
	IsActive *bool `json:"is_active"`
}

type CoefficientResponse struct {
	ID           uint    `json:"id"`
	HospitalID   uint    `json:"hospital_id"`
	CategoryID   uint    `json:"category_id"`
	CategoryCode string  `json:"category_code"`
	Period       string  `json:"period"`
	Value        float64 `json:"value"`
	UpdatedAt    string  `json:"updated_at"`
}

type UpsertCoefficientRequest struct {
	HospitalID uint     `json:"hospital_id" validate:"required"`
	CategoryID uint     `json:"category_id" validate:"required"`
	Period     string   `json:"period" validate:"required,period"`
	Value      *float64 `json:"value" validate:"required"`
}

func toLocationResponse(l models.Location) LocationResponse {
	res := LocationResponse{
		ID:         l.ID,
		HospitalID: l.HospitalID,
		Code:       l.Code,
		CategoryID: l.CategoryID,
		Label:      l.Label,
		IsActive:   l.IsActive,
		CreatedAt:  l.CreatedAt.Format("2006-01-02 15:04:05"),
	}
	if l.Category != nil {
		name := l.Category.Name
		res.CategoryName = &name
	}
	return res
}

func toCoefficientResponse(r models.OperationalCoefficient) CoefficientResponse {
	return CoefficientResponse{
		ID:           r.ID,
		HospitalID:   r.HospitalID,
		CategoryID:   r.CategoryID,
		CategoryCode: r.Category.Code,
		Period:       r.Period,
		Value:        r.Value,
		UpdatedAt:    r.UpdatedAt.Format("2006-01-02 15:04:05"),
	}
}

// ----------------------------------------
// LOKASYONLAR
// ----------------------------------------

// GET /api/locations?hospital_id=1
func ListLocationsHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		_, scope, err := auth.ScopeFromRequest(c)
		if err != nil {
			return err
		}

		locs, err := svc.ListLocations(c.UserContext(), scope)
		if err != nil {
			return err
		}

		res := make([]LocationResponse, 0, len(locs))
		for _, l := range locs {
			res = append(res, toLocationResponse(l))
		}
		return c.JSON(res)
	}
}

// POST /api/locations
func CreateLocationHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := auth.IdentityFrom(c)
		if err != nil {
			return err
		}

		var body CreateLocationRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz veri gönderildi")
		}
		body.Label = strings.TrimSpace(body.Label)
		if err := apperr.Validate(&body); err != nil {
			return err
		}

		hospitalID := body.HospitalID
		if hospitalID == nil {
			if id.DefaultHospitalID == nil {
				return auth.ErrNoHospital
			}
			hospitalID = id.DefaultHospitalID
		}

		loc, err := svc.CreateLocation(c.UserContext(), id, LocationInput{
			HospitalID: *hospitalID,
			CategoryID: body.CategoryID,
			Label:      body.Label,
		})
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(toLocationResponse(*loc))
	}
}

// PATCH /api/locations/:id
func UpdateLocationHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := auth.IdentityFrom(c)
		if err != nil {
			return err
		}
		locID, err := c.ParamsInt("id")
		if err != nil || locID <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz lokasyon ID")
		}

		var body UpdateLocationRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz veri gönderildi")
		}
		if body.IsActive == nil {
			return fiber.NewError(fiber.StatusBadRequest, "is_active zorunlu")
		}

		loc, err := svc.SetLocationActive(c.UserContext(), id, uint(locID), *body.IsActive)
		if err != nil {
			return err
		}
		return c.JSON(toLocationResponse(*loc))
	}
}

// ----------------------------------------
// OPERASYONEL KATSAYILAR
// ----------------------------------------

// GET /api/coefficients?hospital_id=1&period=2025-03
func ListCoefficientsHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		_, scope, err := auth.ScopeFromRequest(c)
		if err != nil {
			return err
		}
		period := c.Query("period")
		if period != "" {
			if err := apperr.Validate(struct {
				Period string `json:"period" validate:"period"`
			}{period}); err != nil {
				return err
			}
		}

		rows, err := svc.ListCoefficients(c.UserContext(), scope, period)
		if err != nil {
			return err
		}

		res := make([]CoefficientResponse, 0, len(rows))
		for _, r := range rows {
			res = append(res, toCoefficientResponse(r))
		}
		return c.JSON(res)
	}
}

// PUT /api/coefficients
func UpsertCoefficientHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := auth.IdentityFrom(c)
		if err != nil {
			return err
		}

		var body UpsertCoefficientRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz veri gönderildi")
		}
		body.Period = strings.TrimSpace(body.Period)
		if err := apperr.Validate(&body); err != nil {
			return err
		}

		row, err := svc.UpsertCoefficient(c.UserContext(), id, CoefficientInput{
			HospitalID: body.HospitalID,
			CategoryID: body.CategoryID,
			Period:     body.Period,
			Value:      *body.Value,
		})
		if err != nil {
			return err
		}
		return c.JSON(toCoefficientResponse(*row))
	}
}
