package issue

import (
	"strings"
	"time"

	"medwaste-backend/internal/apperr"
	"medwaste-backend/internal/auth"
	"medwaste-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type CreateIssueRequest struct {
	HospitalID   *uint    `json:"hospital_id"`
	Category     string   `json:"category" validate:"required"`
	Description  string   `json:"description" validate:"required,max=2000"`
	TagCode      string   `json:"tag_code" validate:"omitempty,max=64"`
	LocationCode string   `json:"location_code"`
	Photos       []string `json:"photos" validate:"max=10,dive,max=500"`
}

type IssueResponse struct {
	ID           uint                 `json:"id"`
	HospitalID   uint                 `json:"hospital_id"`
	HospitalName string               `json:"hospital_name"`
	CollectionID *uint                `json:"collection_id"`
	TagCode      *string              `json:"tag_code"`
	LocationID   *uint                `json:"location_id"`
	Category     models.IssueCategory `json:"category"`
	Description  string               `json:"description"`
	ReportedByID uint                 `json:"reported_by_id"`
	ReporterName string               `json:"reporter_name"`
	Photos       []string             `json:"photos"`
	ReportedAt   time.Time            `json:"reported_at"`
	IsResolved   bool                 `json:"is_resolved"`
	ResolvedAt   *time.Time           `json:"resolved_at"`
}

func toResponse(v View) IssueResponse {
	photos := []string(v.Photos)
	if photos == nil {
		photos = []string{}
	}
	return IssueResponse{
		ID:           v.ID,
		HospitalID:   v.HospitalID,
		HospitalName: v.HospitalName,
		CollectionID: v.CollectionID,
		TagCode:      v.TagCode,
		LocationID:   v.LocationID,
		Category:     v.Category,
		Description:  v.Description,
		ReportedByID: v.ReportedByID,
		ReporterName: v.ReporterName,
		Photos:       photos,
		ReportedAt:   v.ReportedAt,
		IsResolved:   v.IsResolved,
		ResolvedAt:   v.ResolvedAt,
	}
}

// GET /api/issues?hospital_id=1&status=open
func ListIssuesHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		_, scope, err := auth.ScopeFromRequest(c)
		if err != nil {
			return err
		}

		views, err := svc.List(c.UserContext(), scope, c.Query("status"))
		if err != nil {
			return err
		}

		resp := make([]IssueResponse, 0, len(views))
		for _, v := range views {
			resp = append(resp, toResponse(v))
		}
		return c.JSON(resp)
	}
}

// POST /api/issues
func CreateIssueHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := auth.IdentityFrom(c)
		if err != nil {
			return err
		}

		var body CreateIssueRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}
		body.Description = strings.TrimSpace(body.Description)
		body.TagCode = strings.TrimSpace(body.TagCode)
		body.LocationCode = strings.TrimSpace(body.LocationCode)
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

		is, err := svc.Create(c.UserContext(), id, CreateInput{
			HospitalID:   *hospitalID,
			Category:     models.IssueCategory(body.Category),
			Description:  body.Description,
			TagCode:      body.TagCode,
			LocationCode: body.LocationCode,
			Photos:       body.Photos,
		})
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(toResponse(View{
			Issue:        *is,
			HospitalName: is.Hospital.Name,
			ReporterName: id.DisplayName,
		}))
	}
}

// POST /api/issues/:id/resolve
func ResolveIssueHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := auth.IdentityFrom(c)
		if err != nil {
			return err
		}
		issueID, err := c.ParamsInt("id")
		if err != nil || issueID <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz bildirim ID")
		}

		is, err := svc.Resolve(c.UserContext(), id, uint(issueID))
		if err != nil {
			return err
		}
		view, err := svc.Detail(c.UserContext(), is)
		if err != nil {
			return err
		}
		return c.JSON(toResponse(view))
	}
}
