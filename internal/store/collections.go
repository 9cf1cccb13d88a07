package store

import (
	"context"
	"time"

	"medwaste-backend/internal/models"
)

type CollectionFilter struct {
	HospitalID *uint
	Status     models.CollectionStatus
	Limit      int
}

// ListCollections en yeni toplama önce olacak şekilde, Limit ile sınırlı okur.
func (s *Store) ListCollections(ctx context.Context, f CollectionFilter) ([]models.WasteCollection, error) {
	q := s.db.WithContext(ctx).
		Preload("Hospital").
		Preload("WasteType").
		Preload("Location").
		Order("collected_at DESC, id DESC")
	if f.HospitalID != nil {
		q = q.Where("hospital_id = ?", *f.HospitalID)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}
	var rows []models.WasteCollection
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// CreateCollection: etiket kodu çakışırsa ErrDuplicate.
func (s *Store) CreateCollection(ctx context.Context, c *models.WasteCollection) error {
	return translate(s.db.WithContext(ctx).Omit("Hospital", "Location", "WasteType", "CollectedBy").Create(c).Error)
}

func (s *Store) FindCollectionByTag(ctx context.Context, tag string) (*models.WasteCollection, error) {
	var c models.WasteCollection
	err := s.db.WithContext(ctx).
		Preload("Hospital").
		Preload("WasteType").
		Where("tag_code = ?", tag).
		First(&c).Error
	if err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

// CompleteCollection tartım bilgisini yazar; yalnızca pending kayıt güncellenir.
func (s *Store) CompleteCollection(ctx context.Context, id uint, weightKg float64, manual bool, at time.Time) error {
	res := s.db.WithContext(ctx).Model(&models.WasteCollection{}).
		Where("id = ? AND status = ?", id, models.CollectionPending).
		Updates(map[string]interface{}{
			"weight_kg":        weightKg,
			"is_manual_weight": manual,
			"weighed_at":       at,
			"status":           models.CollectionCompleted,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotPending
	}
	return nil
}

func (s *Store) CancelCollection(ctx context.Context, id uint) error {
	res := s.db.WithContext(ctx).Model(&models.WasteCollection{}).
		Where("id = ? AND status = ?", id, models.CollectionPending).
		Update("status", models.CollectionCancelled)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotPending
	}
	return nil
}
