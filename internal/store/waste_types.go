package store

import (
	"context"

	"medwaste-backend/internal/models"

	"gorm.io/gorm/clause"
)

func (s *Store) ListWasteTypes(ctx context.Context) ([]models.WasteType, error) {
	var types []models.WasteType
	if err := s.db.WithContext(ctx).Order("id ASC").Find(&types).Error; err != nil {
		return nil, err
	}
	return types, nil
}

func (s *Store) GetWasteType(ctx context.Context, id uint) (*models.WasteType, error) {
	var wt models.WasteType
	if err := s.db.WithContext(ctx).First(&wt, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &wt, nil
}

func (s *Store) GetWasteTypeByCode(ctx context.Context, code string) (*models.WasteType, error) {
	var wt models.WasteType
	if err := s.db.WithContext(ctx).Where("code = ?", code).First(&wt).Error; err != nil {
		return nil, translate(err)
	}
	return &wt, nil
}

func (s *Store) UpsertWasteTypeByCode(ctx context.Context, wt *models.WasteType) error {
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "code"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "color", "cost_per_kg", "updated_at"}),
	}).Create(wt).Error
}

// ListWasteTypeCosts: wasteTypeID nil ise tüm geçmiş. Her tür için en yeni tarih önce gelir.
func (s *Store) ListWasteTypeCosts(ctx context.Context, wasteTypeID *uint) ([]models.WasteTypeCost, error) {
	q := s.db.WithContext(ctx).Order("waste_type_id ASC, effective_from DESC")
	if wasteTypeID != nil {
		q = q.Where("waste_type_id = ?", *wasteTypeID)
	}
	var costs []models.WasteTypeCost
	if err := q.Find(&costs).Error; err != nil {
		return nil, err
	}
	return costs, nil
}

// UpsertWasteTypeCost (waste_type_id, effective_from) anahtarıyla atomik ekle/güncelle.
func (s *Store) UpsertWasteTypeCost(ctx context.Context, cost *models.WasteTypeCost) error {
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "waste_type_id"}, {Name: "effective_from"}},
		DoUpdates: clause.AssignmentColumns([]string{"cost_per_kg", "updated_at"}),
	}).Create(cost).Error
}
