package pricing

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

type RateResponse struct {
	WasteTypeID   uint            `json:"waste_type_id"`
	Date          string          `json:"date"`
	CostPerKg     decimal.Decimal `json:"cost_per_kg"`
	EffectiveFrom *string         `json:"effective_from"`
	Source        string          `json:"source"` // history | default
}

// GET /api/waste-types/:id/rate?date=2025-02-15
func RateHandler(svc *Service, loc *time.Location) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz atık türü ID")
		}

		on := time.Now().In(loc)
		if ds := c.Query("date"); ds != "" {
			on, err = time.ParseInLocation("2006-01-02", ds, loc)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "Tarih formatı 'YYYY-MM-DD' olmalı")
			}
		}

		rate, err := svc.ResolveRate(c.UserContext(), uint(id), on)
		if err != nil {
			return err
		}

		resp := RateResponse{
			WasteTypeID: uint(id),
			Date:        on.Format("2006-01-02"),
			CostPerKg:   rate.CostPerKg,
			Source:      "history",
		}
		if rate.IsFallback() {
			resp.Source = "default"
		} else {
			from := rate.EffectiveFrom.Format("2006-01-02")
			resp.EffectiveFrom = &from
		}
		return c.JSON(resp)
	}
}
