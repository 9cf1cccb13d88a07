// Package collection atık toplama kayıtlarının oluşturulması, tartımı ve
// iptalini yönetir.
package collection

import (
	"context"
	"errors"
	"fmt"
	"time"

	"medwaste-backend/internal/apperr"
	"medwaste-backend/internal/audit"
	"medwaste-backend/internal/auth"
	"medwaste-backend/internal/logger"
	"medwaste-backend/internal/models"
	"medwaste-backend/internal/store"
	"medwaste-backend/internal/tagcode"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

const maxTagAttempts = 5

var (
	ErrHospitalNotFound  = apperr.NotFound("Hastane bulunamadı")
	ErrHospitalInactive  = apperr.Invalid("Hastane pasif durumda")
	ErrInvalidWasteType  = apperr.Invalid("Geçersiz atık türü")
	ErrTagNotFound       = apperr.NotFound("Etiket bulunamadı")
	ErrDuplicateTag      = apperr.Conflict("Bu etiket kodu zaten kullanılıyor")
	ErrAlreadyWeighed    = apperr.Conflict("Bu toplama zaten tartılmış")
	ErrCollectionClosed  = apperr.Conflict("İptal edilmiş toplama güncellenemez")
	ErrInvalidStatus     = apperr.Invalid("Geçersiz durum filtresi")
	ErrInvalidTag        = apperr.Invalid("Etiket kodu yalnızca harf, rakam, '.', '_' ve '-' içerebilir")
	errTagSpaceExhausted = errors.New("benzersiz etiket kodu üretilemedi")
)

type Repository interface {
	GetHospital(ctx context.Context, id uint) (*models.Hospital, error)
	GetWasteTypeByCode(ctx context.Context, code string) (*models.WasteType, error)
	GetLocationByCode(ctx context.Context, code string) (*models.Location, error)
	CreateCollection(ctx context.Context, c *models.WasteCollection) error
	FindCollectionByTag(ctx context.Context, tag string) (*models.WasteCollection, error)
	CompleteCollection(ctx context.Context, id uint, weightKg float64, manual bool, at time.Time) error
	CancelCollection(ctx context.Context, id uint) error
	ListCollections(ctx context.Context, f store.CollectionFilter) ([]models.WasteCollection, error)
}

// Counters: toplama olaylarının metrik sayaçları.
type Counters interface {
	CollectionCreated(wasteTypeCode string)
	WeighIn(manual bool)
	CollectionCancelled()
}

type Service struct {
	repo      Repository
	audit     audit.Recorder
	counters  Counters
	listLimit int
	now       func() time.Time
	newTag    func(now time.Time) string
}

func NewService(repo Repository, rec audit.Recorder, counters Counters, listLimit int) *Service {
	return &Service{
		repo:      repo,
		audit:     rec,
		counters:  counters,
		listLimit: listLimit,
		now:       time.Now,
		newTag: func(now time.Time) string {
			return tagcode.New(tagcode.CollectionPrefix, now)
		},
	}
}

type CreateInput struct {
	HospitalID    uint
	WasteTypeCode string
	LocationCode  string
	TagCode       string // boşsa sunucu üretir
}

func (s *Service) Create(ctx context.Context, actor *auth.Identity, in CreateInput) (*models.WasteCollection, error) {
	if in.TagCode != "" && !tagcode.Valid(in.TagCode) {
		return nil, ErrInvalidTag
	}
	if err := auth.RequireHospital(actor, in.HospitalID); err != nil {
		return nil, err
	}

	hospital, err := s.repo.GetHospital(ctx, in.HospitalID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrHospitalNotFound
		}
		return nil, err
	}
	if !hospital.IsActive {
		return nil, ErrHospitalInactive
	}

	wasteType, err := s.repo.GetWasteTypeByCode(ctx, in.WasteTypeCode)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrInvalidWasteType
		}
		return nil, err
	}

	now := s.now()
	collectorID := actor.UserID
	wc := &models.WasteCollection{
		HospitalID:    hospital.ID,
		WasteTypeID:   wasteType.ID,
		CollectedByID: &collectorID,
		CollectedAt:   now,
		Status:        models.CollectionPending,
	}

	// Eşleşmeyen ya da başka hastaneye ait lokasyon kodu isteği düşürmez
	if in.LocationCode != "" {
		loc, err := s.repo.GetLocationByCode(ctx, in.LocationCode)
		switch {
		case err == nil && loc.HospitalID == hospital.ID:
			wc.LocationID = &loc.ID
			wc.Location = loc
		case err == nil || errors.Is(err, store.ErrNotFound):
			logger.L().WithFields(logrus.Fields{
				"location_code": in.LocationCode,
				"hospital_id":   hospital.ID,
			}).Debug("lokasyon kodu eşleşmedi, toplama lokasyonsuz kaydediliyor")
		default:
			return nil, err
		}
	}

	if err := s.insert(ctx, wc, in.TagCode, now); err != nil {
		return nil, err
	}
	wc.Hospital = *hospital
	wc.WasteType = *wasteType

	s.counters.CollectionCreated(wasteType.Code)
	s.audit.Record(ctx, audit.LogOptions{
		HospitalID:  &wc.HospitalID,
		Actor:       actor,
		EntityType:  "waste_collection",
		EntityID:    wc.ID,
		Action:      models.AuditActionCreate,
		Description: fmt.Sprintf("Toplama oluşturuldu: %s (%s)", wc.TagCode, wasteType.Code),
		After:       wc,
	})
	return wc, nil
}

// insert istemci etiketini olduğu gibi dener; sunucu etiketinde çakışma olursa
// yeniden üretir.
func (s *Service) insert(ctx context.Context, wc *models.WasteCollection, clientTag string, now time.Time) error {
	if clientTag != "" {
		wc.TagCode = clientTag
		err := s.repo.CreateCollection(ctx, wc)
		if errors.Is(err, store.ErrDuplicate) {
			return ErrDuplicateTag
		}
		return err
	}

	for attempt := 0; attempt < maxTagAttempts; attempt++ {
		wc.TagCode = s.newTag(now)
		err := s.repo.CreateCollection(ctx, wc)
		if err == nil {
			return nil
		}
		if !errors.Is(err, store.ErrDuplicate) {
			return err
		}
		wc.ID = 0
	}
	return errTagSpaceExhausted
}

type WeighInput struct {
	WeightKg float64
	IsManual bool
}

// Weigh etiketle bulunan bekleyen toplamayı tartar ve tamamlar.
func (s *Service) Weigh(ctx context.Context, actor *auth.Identity, tag string, in WeighInput) (*models.WasteCollection, error) {
	wc, err := s.findForUpdate(ctx, actor, tag)
	if err != nil {
		return nil, err
	}
	before := *wc

	// numeric(10,3) kolonunun sakladığı değer
	weight := roundWeight(in.WeightKg)
	at := s.now()
	if err := s.repo.CompleteCollection(ctx, wc.ID, weight, in.IsManual, at); err != nil {
		if errors.Is(err, store.ErrNotPending) {
			return nil, ErrAlreadyWeighed
		}
		return nil, err
	}
	wc.WeightKg = &weight
	wc.IsManualWeight = in.IsManual
	wc.WeighedAt = &at
	wc.Status = models.CollectionCompleted

	s.counters.WeighIn(in.IsManual)
	s.audit.Record(ctx, audit.LogOptions{
		HospitalID:  &wc.HospitalID,
		Actor:       actor,
		EntityType:  "waste_collection",
		EntityID:    wc.ID,
		Action:      models.AuditActionWeigh,
		Description: fmt.Sprintf("Tartım: %s - %.3f kg", wc.TagCode, weight),
		Before:      before,
		After:       wc,
	})
	return wc, nil
}

func roundWeight(kg float64) float64 {
	return decimal.NewFromFloat(kg).Round(3).InexactFloat64()
}

// Cancel bekleyen toplamayı iptal eder.
func (s *Service) Cancel(ctx context.Context, actor *auth.Identity, tag string) (*models.WasteCollection, error) {
	wc, err := s.findForUpdate(ctx, actor, tag)
	if err != nil {
		return nil, err
	}
	before := *wc

	if err := s.repo.CancelCollection(ctx, wc.ID); err != nil {
		if errors.Is(err, store.ErrNotPending) {
			return nil, ErrAlreadyWeighed
		}
		return nil, err
	}
	wc.Status = models.CollectionCancelled

	s.counters.CollectionCancelled()
	s.audit.Record(ctx, audit.LogOptions{
		HospitalID:  &wc.HospitalID,
		Actor:       actor,
		EntityType:  "waste_collection",
		EntityID:    wc.ID,
		Action:      models.AuditActionCancel,
		Description: fmt.Sprintf("Toplama iptal edildi: %s", wc.TagCode),
		Before:      before,
		After:       wc,
	})
	return wc, nil
}

func (s *Service) findForUpdate(ctx context.Context, actor *auth.Identity, tag string) (*models.WasteCollection, error) {
	wc, err := s.repo.FindCollectionByTag(ctx, tag)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrTagNotFound
		}
		return nil, err
	}
	if err := auth.RequireHospital(actor, wc.HospitalID); err != nil {
		return nil, err
	}
	switch wc.Status {
	case models.CollectionCompleted:
		return nil, ErrAlreadyWeighed
	case models.CollectionCancelled:
		return nil, ErrCollectionClosed
	}
	return wc, nil
}

// List kapsamdaki toplamaları en yeni önce, listLimit ile sınırlı döndürür.
func (s *Service) List(ctx context.Context, scope *uint, status string) ([]models.WasteCollection, error) {
	st := models.CollectionStatus(status)
	switch st {
	case "", models.CollectionPending, models.CollectionCompleted, models.CollectionCancelled:
	default:
		return nil, ErrInvalidStatus
	}
	return s.repo.ListCollections(ctx, store.CollectionFilter{HospitalID: scope, Status: st, Limit: s.listLimit})
}
