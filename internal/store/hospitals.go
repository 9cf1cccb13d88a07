package store

import (
	"context"

	"medwaste-backend/internal/models"

	"gorm.io/gorm/clause"
)

func (s *Store) ListHospitals(ctx context.Context, includeInactive bool) ([]models.Hospital, error) {
	q := s.db.WithContext(ctx).Order("name ASC")
	if !includeInactive {
		q = q.Where("is_active = ?", true)
	}
	var hospitals []models.Hospital
	if err := q.Find(&hospitals).Error; err != nil {
		return nil, err
	}
	return hospitals, nil
}

func (s *Store) GetHospital(ctx context.Context, id uint) (*models.Hospital, error) {
	var h models.Hospital
	if err := s.db.WithContext(ctx).First(&h, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &h, nil
}

func (s *Store) CreateHospital(ctx context.Context, h *models.Hospital) error {
	return translate(s.db.WithContext(ctx).Create(h).Error)
}

func (s *Store) SaveHospital(ctx context.Context, h *models.Hospital) error {
	return translate(s.db.WithContext(ctx).Save(h).Error)
}

// UpsertHospitalByCode: seed için, kod üzerinden ekle/güncelle.
func (s *Store) UpsertHospitalByCode(ctx context.Context, h *models.Hospital) error {
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "code"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "color", "is_active", "updated_at"}),
	}).Create(h).Error
}
