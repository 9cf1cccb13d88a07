package auth

import (
	"strconv"

	"medwaste-backend/internal/apperr"

	"github.com/gofiber/fiber/v2"
)

var (
	ErrHospitalForbidden = apperr.Forbidden("Bu hastaneye erişim yetkiniz yok")
	ErrNoHospital        = apperr.Forbidden("Kullanıcıya atanmış hastane bulunamadı")
)

// ResolveScope okuma kapsamını belirler. nil dönüşü "tüm hastaneler" demektir
// ve yalnızca HQ için mümkündür.
func ResolveScope(id *Identity, requested *uint) (*uint, error) {
	if requested != nil {
		if !id.CanSeeHospital(*requested) {
			return nil, ErrHospitalForbidden
		}
		return requested, nil
	}
	if id.IsHQ() {
		return nil, nil
	}
	if id.DefaultHospitalID == nil {
		return nil, ErrNoHospital
	}
	hid := *id.DefaultHospitalID
	return &hid, nil
}

// RequireHospital yazma işlemlerinde hedef hastanenin kapsamda olduğunu doğrular.
func RequireHospital(id *Identity, hospitalID uint) error {
	if !id.CanSeeHospital(hospitalID) {
		return ErrHospitalForbidden
	}
	return nil
}

// ParseHospitalQuery ?hospital_id= parametresini okur; yoksa nil.
func ParseHospitalQuery(c *fiber.Ctx) (*uint, error) {
	raw := c.Query("hospital_id")
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || v == 0 {
		return nil, fiber.NewError(fiber.StatusBadRequest, "hospital_id geçersiz")
	}
	hid := uint(v)
	return &hid, nil
}

// ScopeFromRequest: kimlik + hospital_id parametresinden kapsam.
func ScopeFromRequest(c *fiber.Ctx) (*Identity, *uint, error) {
	id, err := IdentityFrom(c)
	if err != nil {
		return nil, nil, err
	}
	requested, err := ParseHospitalQuery(c)
	if err != nil {
		return nil, nil, err
	}
	scope, err := ResolveScope(id, requested)
	if err != nil {
		return nil, nil, err
	}
	return id, scope, nil
}
