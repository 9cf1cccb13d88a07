// Package admin hastane, atık türü fiyatı, lokasyon ve katsayı gibi katalog
// kayıtlarının yönetimini toplar.
package admin

import (
	"context"
	"errors"
	"fmt"
	"time"

	"medwaste-backend/internal/apperr"
	"medwaste-backend/internal/audit"
	"medwaste-backend/internal/auth"
	"medwaste-backend/internal/models"
	"medwaste-backend/internal/store"
	"medwaste-backend/internal/tagcode"

	"github.com/shopspring/decimal"
)

const maxCodeAttempts = 5

var (
	ErrHospitalNotFound    = apperr.NotFound("Hastane bulunamadı")
	ErrDuplicateHospital   = apperr.Conflict("Bu hastane kodu zaten kayıtlı")
	ErrWasteTypeNotFound   = apperr.NotFound("Atık türü bulunamadı")
	ErrCategoryNotFound    = apperr.NotFound("Lokasyon kategorisi bulunamadı")
	ErrDuplicateCategory   = apperr.Conflict("Bu kategori kodu zaten kayıtlı")
	ErrLocationNotFound    = apperr.NotFound("Lokasyon bulunamadı")
	ErrNegativeCoefficient = apperr.Invalid("Katsayı negatif olamaz")
	errCodeSpaceExhausted  = errors.New("benzersiz lokasyon kodu üretilemedi")
)

type Repository interface {
	ListHospitals(ctx context.Context, includeInactive bool) ([]models.Hospital, error)
	GetHospital(ctx context.Context, id uint) (*models.Hospital, error)
	CreateHospital(ctx context.Context, h *models.Hospital) error
	SaveHospital(ctx context.Context, h *models.Hospital) error

	ListWasteTypes(ctx context.Context) ([]models.WasteType, error)
	GetWasteType(ctx context.Context, id uint) (*models.WasteType, error)
	ListWasteTypeCosts(ctx context.Context, wasteTypeID *uint) ([]models.WasteTypeCost, error)
	UpsertWasteTypeCost(ctx context.Context, cost *models.WasteTypeCost) error

	ListLocationCategories(ctx context.Context) ([]models.LocationCategory, error)
	GetLocationCategory(ctx context.Context, id uint) (*models.LocationCategory, error)
	CreateLocationCategory(ctx context.Context, cat *models.LocationCategory) error
	SaveLocationCategory(ctx context.Context, cat *models.LocationCategory) error

	ListLocations(ctx context.Context, hospitalID *uint) ([]models.Location, error)
	GetLocation(ctx context.Context, id uint) (*models.Location, error)
	CreateLocation(ctx context.Context, loc *models.Location) error
	SetLocationActive(ctx context.Context, id uint, active bool) error

	ListCoefficients(ctx context.Context, f store.CoefficientFilter) ([]models.OperationalCoefficient, error)
	UpsertCoefficient(ctx context.Context, c *models.OperationalCoefficient) error
}

type Service struct {
	repo    Repository
	audit   audit.Recorder
	now     func() time.Time
	newCode func(prefix string, now time.Time) string
}

func NewService(repo Repository, rec audit.Recorder) *Service {
	return &Service{repo: repo, audit: rec, now: time.Now, newCode: tagcode.New}
}

// ----------------------------------------
// HASTANELER
// ----------------------------------------

// ListHospitals: HQ tüm hastaneleri, diğer roller yalnızca üyesi olduklarını görür.
// Pasif hastaneler yalnızca HQ için ve istenirse listelenir.
func (s *Service) ListHospitals(ctx context.Context, actor *auth.Identity, includeInactive bool) ([]models.Hospital, error) {
	hospitals, err := s.repo.ListHospitals(ctx, includeInactive && actor.IsHQ())
	if err != nil {
		return nil, err
	}
	if actor.IsHQ() {
		return hospitals, nil
	}
	visible := make([]models.Hospital, 0, len(hospitals))
	for _, h := range hospitals {
		if actor.CanSeeHospital(h.ID) {
			visible = append(visible, h)
		}
	}
	return visible, nil
}

func (s *Service) GetHospital(ctx context.Context, actor *auth.Identity, id uint) (*models.Hospital, error) {
	if err := auth.RequireHospital(actor, id); err != nil {
		return nil, err
	}
	return s.hospital(ctx, id)
}

func (s *Service) hospital(ctx context.Context, id uint) (*models.Hospital, error) {
	h, err := s.repo.GetHospital(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrHospitalNotFound
		}
		return nil, err
	}
	return h, nil
}

type HospitalInput struct {
	Code     string
	Name     string
	Color    string
	IsActive bool
}

func (s *Service) CreateHospital(ctx context.Context, actor *auth.Identity, in HospitalInput) (*models.Hospital, error) {
	h := &models.Hospital{Code: in.Code, Name: in.Name, Color: in.Color, IsActive: in.IsActive}
	if err := s.repo.CreateHospital(ctx, h); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, ErrDuplicateHospital
		}
		return nil, err
	}

	s.audit.Record(ctx, audit.LogOptions{
		HospitalID:  &h.ID,
		Actor:       actor,
		EntityType:  "hospital",
		EntityID:    h.ID,
		Action:      models.AuditActionCreate,
		Description: fmt.Sprintf("Hastane oluşturuldu: %s", h.Code),
		After:       h,
	})
	return h, nil
}

// HospitalPatch: nil alanlar değişmez. Kod sabittir.
type HospitalPatch struct {
	Name     *string
	Color    *string
	IsActive *bool
}

func (s *Service) UpdateHospital(ctx context.Context, actor *auth.Identity, id uint, p HospitalPatch) (*models.Hospital, error) {
	h, err := s.hospital(ctx, id)
	if err != nil {
		return nil, err
	}
	before := *h
	if p.Name != nil {
		h.Name = *p.Name
	}
	if p.Color != nil {
		h.Color = *p.Color
	}
	if p.IsActive != nil {
		h.IsActive = *p.IsActive
	}
	if err := s.repo.SaveHospital(ctx, h); err != nil {
		return nil, err
	}

	s.audit.Record(ctx, audit.LogOptions{
		HospitalID:  &h.ID,
		Actor:       actor,
		EntityType:  "hospital",
		EntityID:    h.ID,
		Action:      models.AuditActionUpdate,
		Description: fmt.Sprintf("Hastane güncellendi: %s", h.Code),
		Before:      before,
		After:       h,
	})
	return h, nil
}

// ----------------------------------------
// ATIK TÜRLERİ VE FİYAT GEÇMİŞİ
// ----------------------------------------

func (s *Service) ListWasteTypes(ctx context.Context) ([]models.WasteType, error) {
	return s.repo.ListWasteTypes(ctx)
}

func (s *Service) ListWasteTypeCosts(ctx context.Context, wasteTypeID *uint) ([]models.WasteTypeCost, error) {
	return s.repo.ListWasteTypeCosts(ctx, wasteTypeID)
}

type CostInput struct {
	WasteTypeID   uint
	EffectiveFrom time.Time
	CostPerKg     decimal.Decimal
}

// UpsertWasteTypeCost aynı tür ve tarih için tek satır tutar; varsa fiyatı günceller.
// Negatif fiyat alacak anlamına gelir ve kabul edilir.
func (s *Service) UpsertWasteTypeCost(ctx context.Context, actor *auth.Identity, in CostInput) (*models.WasteTypeCost, error) {
	wt, err := s.repo.GetWasteType(ctx, in.WasteTypeID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrWasteTypeNotFound
		}
		return nil, err
	}

	y, m, d := in.EffectiveFrom.Date()
	cost := &models.WasteTypeCost{
		WasteTypeID:   wt.ID,
		EffectiveFrom: time.Date(y, m, d, 0, 0, 0, 0, in.EffectiveFrom.Location()),
		CostPerKg:     in.CostPerKg,
	}
	if err := s.repo.UpsertWasteTypeCost(ctx, cost); err != nil {
		return nil, err
	}

	s.audit.Record(ctx, audit.LogOptions{
		Actor:       actor,
		EntityType:  "waste_type_cost",
		EntityID:    cost.ID,
		Action:      models.AuditActionUpsert,
		Description: fmt.Sprintf("%s fiyatı %s tarihinden itibaren %s", wt.Code, cost.EffectiveFrom.Format("2006-01-02"), cost.CostPerKg.StringFixed(2)),
		After:       cost,
	})
	return cost, nil
}

// ----------------------------------------
// LOKASYON KATEGORİLERİ
// ----------------------------------------

func (s *Service) ListLocationCategories(ctx context.Context) ([]models.LocationCategory, error) {
	return s.repo.ListLocationCategories(ctx)
}

type CategoryInput struct {
	Code                 string
	Name                 string
	Unit                 string
	ReferenceWasteFactor float64
}

func (s *Service) CreateLocationCategory(ctx context.Context, actor *auth.Identity, in CategoryInput) (*models.LocationCategory, error) {
	cat := &models.LocationCategory{
		Code:                 in.Code,
		Name:                 in.Name,
		Unit:                 in.Unit,
		ReferenceWasteFactor: in.ReferenceWasteFactor,
	}
	if err := s.repo.CreateLocationCategory(ctx, cat); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, ErrDuplicateCategory
		}
		return nil, err
	}

	s.audit.Record(ctx, audit.LogOptions{
		Actor:       actor,
		EntityType:  "location_category",
		EntityID:    cat.ID,
		Action:      models.AuditActionCreate,
		Description: fmt.Sprintf("Lokasyon kategorisi oluşturuldu: %s", cat.Code),
		After:       cat,
	})
	return cat, nil
}

type CategoryPatch struct {
	Name                 *string
	Unit                 *string
	ReferenceWasteFactor *float64
}

func (s *Service) UpdateLocationCategory(ctx context.Context, actor *auth.Identity, id uint, p CategoryPatch) (*models.LocationCategory, error) {
	cat, err := s.category(ctx, id)
	if err != nil {
		return nil, err
	}
	before := *cat
	if p.Name != nil {
		cat.Name = *p.Name
	}
	if p.Unit != nil {
		cat.Unit = *p.Unit
	}
	if p.ReferenceWasteFactor != nil {
		cat.ReferenceWasteFactor = *p.ReferenceWasteFactor
	}
	if err := s.repo.SaveLocationCategory(ctx, cat); err != nil {
		return nil, err
	}

	s.audit.Record(ctx, audit.LogOptions{
		Actor:       actor,
		EntityType:  "location_category",
		EntityID:    cat.ID,
		Action:      models.AuditActionUpdate,
		Description: fmt.Sprintf("Lokasyon kategorisi güncellendi: %s", cat.Code),
		Before:      before,
		After:       cat,
	})
	return cat, nil
}

func (s *Service) category(ctx context.Context, id uint) (*models.LocationCategory, error) {
	cat, err := s.repo.GetLocationCategory(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, err
	}
	return cat, nil
}

// ----------------------------------------
// LOKASYONLAR
// ----------------------------------------

func (s *Service) ListLocations(ctx context.Context, scope *uint) ([]models.Location, error) {
	return s.repo.ListLocations(ctx, scope)
}

type LocationInput struct {
	HospitalID uint
	CategoryID *uint
	Label      string
}

// CreateLocation kodu sunucuda <HASTANEKODU>-<base36 zaman>-<4 hex> biçiminde üretir,
// çakışmada yeniden dener.
func (s *Service) CreateLocation(ctx context.Context, actor *auth.Identity, in LocationInput) (*models.Location, error) {
	if err := auth.RequireHospital(actor, in.HospitalID); err != nil {
		return nil, err
	}
	hospital, err := s.hospital(ctx, in.HospitalID)
	if err != nil {
		return nil, err
	}
	var cat *models.LocationCategory
	if in.CategoryID != nil {
		if cat, err = s.category(ctx, *in.CategoryID); err != nil {
			return nil, err
		}
	}

	loc := &models.Location{
		HospitalID: hospital.ID,
		CategoryID: in.CategoryID,
		Label:      in.Label,
		IsActive:   true,
	}
	for attempt := 0; ; attempt++ {
		if attempt == maxCodeAttempts {
			return nil, errCodeSpaceExhausted
		}
		loc.ID = 0
		loc.Code = s.newCode(hospital.Code, s.now())
		err := s.repo.CreateLocation(ctx, loc)
		if err == nil {
			break
		}
		if !errors.Is(err, store.ErrDuplicate) {
			return nil, err
		}
	}
	loc.Category = cat

	s.audit.Record(ctx, audit.LogOptions{
		HospitalID:  &loc.HospitalID,
		Actor:       actor,
		EntityType:  "location",
		EntityID:    loc.ID,
		Action:      models.AuditActionCreate,
		Description: fmt.Sprintf("Lokasyon oluşturuldu: %s", loc.Code),
		After:       loc,
	})
	return loc, nil
}

func (s *Service) SetLocationActive(ctx context.Context, actor *auth.Identity, id uint, active bool) (*models.Location, error) {
	loc, err := s.repo.GetLocation(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrLocationNotFound
		}
		return nil, err
	}
	if err := auth.RequireHospital(actor, loc.HospitalID); err != nil {
		return nil, err
	}
	before := *loc
	if err := s.repo.SetLocationActive(ctx, id, active); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrLocationNotFound
		}
		return nil, err
	}
	loc.IsActive = active

	s.audit.Record(ctx, audit.LogOptions{
		HospitalID:  &loc.HospitalID,
		Actor:       actor,
		EntityType:  "location",
		EntityID:    loc.ID,
		Action:      models.AuditActionUpdate,
		Description: fmt.Sprintf("Lokasyon aktifliği değişti: %s → %t", loc.Code, active),
		Before:      before,
		After:       loc,
	})
	return loc, nil
}

// ----------------------------------------
// OPERASYONEL KATSAYILAR
// ----------------------------------------

func (s *Service) ListCoefficients(ctx context.Context, scope *uint, period string) ([]models.OperationalCoefficient, error) {
	return s.repo.ListCoefficients(ctx, store.CoefficientFilter{HospitalID: scope, Period: period})
}

type CoefficientInput struct {
	HospitalID uint
	CategoryID uint
	Period     string // YYYY-MM
	Value      float64
}

// UpsertCoefficient (hastane, kategori, dönem) için tek değer tutar; son yazan kazanır.
func (s *Service) UpsertCoefficient(ctx context.Context, actor *auth.Identity, in CoefficientInput) (*models.OperationalCoefficient, error) {
	if in.Value < 0 {
		return nil, ErrNegativeCoefficient
	}
	if err := auth.RequireHospital(actor, in.HospitalID); err != nil {
		return nil, err
	}
	if _, err := s.hospital(ctx, in.HospitalID); err != nil {
		return nil, err
	}
	cat, err := s.category(ctx, in.CategoryID)
	if err != nil {
		return nil, err
	}

	row := &models.OperationalCoefficient{
		HospitalID: in.HospitalID,
		CategoryID: cat.ID,
		Period:     in.Period,
		Value:      in.Value,
	}
	if err := s.repo.UpsertCoefficient(ctx, row); err != nil {
		return nil, err
	}
	row.Category = *cat

	s.audit.Record(ctx, audit.LogOptions{
		HospitalID:  &row.HospitalID,
		Actor:       actor,
		EntityType:  "operational_coefficient",
		EntityID:    row.ID,
		Action:      models.AuditActionUpsert,
		Description: fmt.Sprintf("%s %s katsayısı: %g", in.Period, cat.Code, in.Value),
		After:       row,
	})
	return row, nil
}
