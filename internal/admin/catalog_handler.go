package admin

import (
	"strings"
	"time"

	"medwaste-backend/internal/apperr"
	"medwaste-backend/internal/auth"
	"medwaste-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

type WasteTypeResponse struct {
	ID        uint            `json:"id"`
	Code      string          `json:"code"`
	Name      string          `json:"name"`
	Color     string          `json:"color"`
	CostPerKg decimal.Decimal `json:"cost_per_kg"` // tarihli fiyat yoksa kullanılan sabit fiyat
}

type WasteTypeCostResponse struct {
	ID            uint            `json:"id"`
	WasteTypeID   uint            `json:"waste_type_id"`
	EffectiveFrom string          `json:"effective_from"`
	CostPerKg     decimal.Decimal `json:"cost_per_kg"`
	UpdatedAt     string          `json:"updated_at"`
}

type UpsertWasteTypeCostRequest struct {
	WasteTypeID   uint             `json:"waste_type_id" validate:"required"`
	EffectiveFrom string           `json:"effective_from" validate:"required,datetime=2006-01-02"`
	CostPerKg     *decimal.Decimal `json:"cost_per_kg"`
}

type LocationCategoryResponse struct {
	ID                   uint    `json:"id"`
	Code                 string  `json:"code"`
	Name                 string  `json:"name"`
	Unit                 string  `json:"unit"`
	ReferenceWasteFactor float64 `json:"reference_waste_factor"`
	CreatedAt            string  `json:"created_at"`
}

type CreateLocationCategoryRequest struct {
	Code                 string  `json:"code" validate:"required,max=50"`
	Name                 string  `json:"name" validate:"required,max=100"`
	Unit                 string  `json:"unit" validate:"max=50"`
	ReferenceWasteFactor float64 `json:"reference_waste_factor" validate:"gte=0"`
}

type UpdateLocationCategoryRequest struct {
	Name                 *string  `json:"name" validate:"omitempty,max=100"`
	Unit                 *string  `json:"unit" validate:"omitempty,max=50"`
	ReferenceWasteFactor *float64 `json:"reference_waste_factor" validate:"omitempty,gte=0"`
}

func toCostResponse(c models.WasteTypeCost) WasteTypeCostResponse {
	return WasteTypeCostResponse{
		ID:            c.ID,
		WasteTypeID:   c.WasteTypeID,
		EffectiveFrom: c.EffectiveFrom.Format("2006-01-02"),
		CostPerKg:     c.CostPerKg,
		UpdatedAt:     c.UpdatedAt.Format("2006-01-02 15:04:05"),
	}
}

func toCategoryResponse(cat models.LocationCategory) LocationCategoryResponse {
	return LocationCategoryResponse{
		ID:                   cat.ID,
		Code:                 cat.Code,
		Name:                 cat.Name,
		Unit:                 cat.Unit,
		ReferenceWasteFactor: cat.ReferenceWasteFactor,
		CreatedAt:            cat.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}

// ----------------------------------------
// ATIK TÜRLERİ
// ----------------------------------------

// GET /api/waste-types
func ListWasteTypesHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		types, err := svc.ListWasteTypes(c.UserContext())
		if err != nil {
			return err
		}

		res := make([]WasteTypeResponse, 0, len(types))
		for _, wt := range types {
			res = append(res, WasteTypeResponse{
				ID:        wt.ID,
				Code:      wt.Code,
				Name:      wt.Name,
				Color:     wt.Color,
				CostPerKg: wt.CostPerKg,
			})
		}
		return c.JSON(res)
	}
}

// GET /api/waste-type-costs?waste_type_id=2
func ListWasteTypeCostsHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var wasteTypeID *uint
		if raw := c.Query("waste_type_id"); raw != "" {
			v := c.QueryInt("waste_type_id")
			if v <= 0 {
				return fiber.NewError(fiber.StatusBadRequest, "waste_type_id geçersiz")
			}
			id := uint(v)
			wasteTypeID = &id
		}

		costs, err := svc.ListWasteTypeCosts(c.UserContext(), wasteTypeID)
		if err != nil {
			return err
		}

		res := make([]WasteTypeCostResponse, 0, len(costs))
		for _, cost := range costs {
			res = append(res, toCostResponse(cost))
		}
		return c.JSON(res)
	}
}

// PUT /api/waste-type-costs
func UpsertWasteTypeCostHandler(svc *Service, loc *time.Location) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := auth.IdentityFrom(c)
		if err != nil {
			return err
		}

		var body UpsertWasteTypeCostRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz veri gönderildi")
		}
		if err := apperr.Validate(&body); err != nil {
			return err
		}
		if body.CostPerKg == nil {
			return fiber.NewError(fiber.StatusBadRequest, "cost_per_kg zorunlu")
		}
		from, err := time.ParseInLocation("2006-01-02", body.EffectiveFrom, loc)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Tarih formatı 'YYYY-MM-DD' olmalı")
		}

		cost, err := svc.UpsertWasteTypeCost(c.UserContext(), id, CostInput{
			WasteTypeID:   body.WasteTypeID,
			EffectiveFrom: from,
			CostPerKg:     *body.CostPerKg,
		})
		if err != nil {
			return err
		}
		return c.JSON(toCostResponse(*cost))
	}
}

// ----------------------------------------
// LOKASYON KATEGORİLERİ
// ----------------------------------------

// GET /api/location-categories
func ListLocationCategoriesHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		cats, err := svc.ListLocationCategories(c.UserContext())
		if err != nil {
			return err
		}

		res := make([]LocationCategoryResponse, 0, len(cats))
		for _, cat := range cats {
			res = append(res, toCategoryResponse(cat))
		}
		return c.JSON(res)
	}
}

// POST /api/location-categories
func CreateLocationCategoryHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := auth.IdentityFrom(c)
		if err != nil {
			return err
		}

		var body CreateLocationCategoryRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz veri gönderildi")
		}
		body.Code = strings.ToLower(strings.TrimSpace(body.Code))
		body.Name = strings.TrimSpace(body.Name)
		body.Unit = strings.TrimSpace(body.Unit)
		if err := apperr.Validate(&body); err != nil {
			return err
		}

		cat, err := svc.CreateLocationCategory(c.UserContext(), id, CategoryInput{
			Code:                 body.Code,
			Name:                 body.Name,
			Unit:                 body.Unit,
			ReferenceWasteFactor: body.ReferenceWasteFactor,
		})
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(toCategoryResponse(*cat))
	}
}

// PUT /api/location-categories/:id
func UpdateLocationCategoryHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := auth.IdentityFrom(c)
		if err != nil {
			return err
		}
		catID, err := c.ParamsInt("id")
		if err != nil || catID <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz kategori ID")
		}

		var body UpdateLocationCategoryRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz veri gönderildi")
		}
		if body.Name != nil {
			name := strings.TrimSpace(*body.Name)
			if name == "" {
				return fiber.NewError(fiber.StatusBadRequest, "Kategori adı boş olamaz")
			}
			body.Name = &name
		}
		if err := apperr.Validate(&body); err != nil {
			return err
		}

		cat, err := svc.UpdateLocationCategory(c.UserContext(), id, uint(catID), CategoryPatch{
			Name:                 body.Name,
			Unit:                 body.Unit,
			ReferenceWasteFactor: body.ReferenceWasteFactor,
		})
		if err != nil {
			return err
		}
		return c.JSON(toCategoryResponse(*cat))
	}
}
