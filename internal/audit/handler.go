package audit

import (
	"strconv"

	"medwaste-backend/internal/auth"
	"medwaste-backend/internal/models"
	"medwaste-backend/internal/store"

	"github.com/gofiber/fiber/v2"
)

const defaultListLimit = 200

type AuditLogResponse struct {
	ID          uint               `json:"id"`
	CreatedAt   string             `json:"created_at"`
	HospitalID  *uint              `json:"hospital_id"`
	UserID      uint               `json:"user_id"`
	UserName    string             `json:"user_name"`
	EntityType  string             `json:"entity_type"`
	EntityID    uint               `json:"entity_id"`
	Action      models.AuditAction `json:"action"`
	Description string             `json:"description"`
}

func optionalUint(c *fiber.Ctx, key string) (*uint, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || v == 0 {
		return nil, fiber.NewError(fiber.StatusBadRequest, key+" geçersiz")
	}
	id := uint(v)
	return &id, nil
}

// GET /api/audit-logs?entity_type=waste_collection&entity_id=1&hospital_id=1&user_id=2
func ListAuditLogsHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		hospitalID, err := auth.ParseHospitalQuery(c)
		if err != nil {
			return err
		}
		f := store.AuditFilter{
			HospitalID: hospitalID,
			EntityType: c.Query("entity_type"),
			Limit:      c.QueryInt("limit", defaultListLimit),
		}
		if f.EntityID, err = optionalUint(c, "entity_id"); err != nil {
			return err
		}
		if f.UserID, err = optionalUint(c, "user_id"); err != nil {
			return err
		}

		logs, err := svc.List(c.UserContext(), f)
		if err != nil {
			return err
		}

		resp := make([]AuditLogResponse, 0, len(logs))
		for _, log := range logs {
			resp = append(resp, AuditLogResponse{
				ID:          log.ID,
				CreatedAt:   log.CreatedAt.Format("2006-01-02 15:04:05"),
				HospitalID:  log.HospitalID,
				UserID:      log.UserID,
				UserName:    log.UserName,
				EntityType:  log.EntityType,
				EntityID:    log.EntityID,
				Action:      log.Action,
				Description: log.Description,
			})
		}

		return c.JSON(resp)
	}
}
