package auth

import (
	"medwaste-backend/internal/apperr"
	"medwaste-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

const CtxIdentityKey = "identity"

// Identity: oturumdan çözülen çağıran kullanıcı.
type Identity struct {
	UserID            uint
	Username          string
	DisplayName       string
	Roles             []models.Role
	HospitalIDs       []uint
	DefaultHospitalID *uint
	SessionID         string
}

func NewIdentity(u *models.User, sessionID string) *Identity {
	id := &Identity{
		UserID:      u.ID,
		Username:    u.Username,
		DisplayName: u.DisplayName(),
		Roles:       u.RoleSet(),
		SessionID:   sessionID,
	}
	for _, m := range u.Hospitals {
		id.HospitalIDs = append(id.HospitalIDs, m.HospitalID)
		if m.IsDefault && id.DefaultHospitalID == nil {
			hid := m.HospitalID
			id.DefaultHospitalID = &hid
		}
	}
	if id.DefaultHospitalID == nil && len(id.HospitalIDs) > 0 {
		hid := id.HospitalIDs[0]
		id.DefaultHospitalID = &hid
	}
	return id
}

func (i *Identity) HasRole(role models.Role) bool {
	for _, r := range i.Roles {
		if r == role {
			return true
		}
	}
	return false
}

func (i *Identity) IsHQ() bool { return i.HasRole(models.RoleHQ) }

// CanSeeHospital: HQ tüm hastaneleri, diğerleri yalnızca üyesi olduklarını görür.
func (i *Identity) CanSeeHospital(hospitalID uint) bool {
	if i.IsHQ() {
		return true
	}
	for _, h := range i.HospitalIDs {
		if h == hospitalID {
			return true
		}
	}
	return false
}

// IdentityFrom middleware'in yerleştirdiği kimliği okur.
func IdentityFrom(c *fiber.Ctx) (*Identity, error) {
	id, ok := c.Locals(CtxIdentityKey).(*Identity)
	if !ok || id == nil {
		return nil, apperr.Unauthorized("Oturum bulunamadı")
	}
	return id, nil
}
