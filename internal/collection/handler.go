package collection

import (
	"strings"
	"time"

	"medwaste-backend/internal/apperr"
	"medwaste-backend/internal/auth"
	"medwaste-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type CreateCollectionRequest struct {
	HospitalID    *uint  `json:"hospital_id"` // yoksa kullanıcının varsayılan hastanesi
	WasteTypeCode string `json:"waste_type_code" validate:"required"`
	LocationCode  string `json:"location_code"`
	TagCode       string `json:"tag_code" validate:"omitempty,max=64,tagcode"`
}

type WeighRequest struct {
	WeightKg       float64 `json:"weight_kg" validate:"gt=0,lt=100000"`
	IsManualWeight bool    `json:"is_manual_weight"`
}

type CollectionResponse struct {
	ID             uint                    `json:"id"`
	HospitalID     uint                    `json:"hospital_id"`
	HospitalName   string                  `json:"hospital_name"`
	LocationID     *uint                   `json:"location_id"`
	LocationCode   *string                 `json:"location_code"`
	WasteTypeID    uint                    `json:"waste_type_id"`
	WasteTypeCode  string                  `json:"waste_type_code"`
	WasteTypeName  string                  `json:"waste_type_name"`
	TagCode        string                  `json:"tag_code"`
	CollectedByID  *uint                   `json:"collected_by_id"`
	CollectedAt    time.Time               `json:"collected_at"`
	WeighedAt      *time.Time              `json:"weighed_at"`
	Status         models.CollectionStatus `json:"status"`
	WeightKg       *float64                `json:"weight_kg"`
	IsManualWeight bool                    `json:"is_manual_weight"`
}

func toResponse(wc *models.WasteCollection) CollectionResponse {
	resp := CollectionResponse{
		ID:             wc.ID,
		HospitalID:     wc.HospitalID,
		HospitalName:   wc.Hospital.Name,
		LocationID:     wc.LocationID,
		WasteTypeID:    wc.WasteTypeID,
		WasteTypeCode:  wc.WasteType.Code,
		WasteTypeName:  wc.WasteType.Name,
		TagCode:        wc.TagCode,
		CollectedByID:  wc.CollectedByID,
		CollectedAt:    wc.CollectedAt,
		WeighedAt:      wc.WeighedAt,
		Status:         wc.Status,
		WeightKg:       wc.WeightKg,
		IsManualWeight: wc.IsManualWeight,
	}
	if wc.Location != nil {
		code := wc.Location.Code
		resp.LocationCode = &code
	}
	return resp
}

// GET /api/collections?hospital_id=1&status=pending
func ListCollectionsHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		_, scope, err := auth.ScopeFromRequest(c)
		if err != nil {
			return err
		}

		rows, err := svc.List(c.UserContext(), scope, c.Query("status"))
		if err != nil {
			return err
		}

		resp := make([]CollectionResponse, 0, len(rows))
		for i := range rows {
			resp = append(resp, toResponse(&rows[i]))
		}
		return c.JSON(resp)
	}
}

// POST /api/collections
func CreateCollectionHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := auth.IdentityFrom(c)
		if err != nil {
			return err
		}

		var body CreateCollectionRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}
		body.WasteTypeCode = strings.TrimSpace(body.WasteTypeCode)
		body.LocationCode = strings.TrimSpace(body.LocationCode)
		body.TagCode = strings.TrimSpace(body.TagCode)
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

		wc, err := svc.Create(c.UserContext(), id, CreateInput{
			HospitalID:    *hospitalID,
			WasteTypeCode: body.WasteTypeCode,
			LocationCode:  body.LocationCode,
			TagCode:       body.TagCode,
		})
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(toResponse(wc))
	}
}

// POST /api/collections/:tag/weigh
func WeighCollectionHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := auth.IdentityFrom(c)
		if err != nil {
			return err
		}

		var body WeighRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}
		if err := apperr.Validate(&body); err != nil {
			return err
		}

		wc, err := svc.Weigh(c.UserContext(), id, c.Params("tag"), WeighInput{
			WeightKg: body.WeightKg,
			IsManual: body.IsManualWeight,
		})
		if err != nil {
			return err
		}
		return c.JSON(toResponse(wc))
	}
}

// POST /api/collections/:tag/cancel
func CancelCollectionHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := auth.IdentityFrom(c)
		if err != nil {
			return err
		}

		wc, err := svc.Cancel(c.UserContext(), id, c.Params("tag"))
		if err != nil {
			return err
		}
		return c.JSON(toResponse(wc))
	}
}
