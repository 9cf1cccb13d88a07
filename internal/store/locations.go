package store

import (
	"context"

	"medwaste-backend/internal/models"

	"gorm.io/gorm/clause"
)

func (s *Store) ListLocationCategories(ctx context.Context) ([]models.LocationCategory, error) {
	var cats []models.LocationCategory
	if err := s.db.WithContext(ctx).Order("name ASC").Find(&cats).Error; err != nil {
		return nil, err
	}
	return cats, nil
}

func (s *Store) GetLocationCategory(ctx context.Context, id uint) (*models.LocationCategory, error) {
	var cat models.LocationCategory
	if err := s.db.WithContext(ctx).First(&cat, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &cat, nil
}

func (s *Store) CreateLocationCategory(ctx context.Context, cat *models.LocationCategory) error {
	return translate(s.db.WithContext(ctx).Create(cat).Error)
}

func (s *Store) SaveLocationCategory(ctx context.Context, cat *models.LocationCategory) error {
	return translate(s.db.WithContext(ctx).Save(cat).Error)
}

func (s *Store) UpsertLocationCategoryByCode(ctx context.Context, cat *models.LocationCategory) error {
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "code"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "unit", "reference_waste_factor", "updated_at"}),
	}).Create(cat).Error
}

func (s *Store) ListLocations(ctx context.Context, hospitalID *uint) ([]models.Location, error) {
	q := s.db.WithContext(ctx).Preload("Category").Order("hospital_id ASC, code ASC")
	if hospitalID != nil {
		q = q.Where("hospital_id = ?", *hospitalID)
	}
	var locs []models.Location
	if err := q.Find(&locs).Error; err != nil {
		return nil, err
	}
	return locs, nil
}

func (s *Store) GetLocation(ctx context.Context, id uint) (*models.Location, error) {
	var loc models.Location
	if err := s.db.WithContext(ctx).Preload("Category").First(&loc, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &loc, nil
}

func (s *Store) GetLocationByCode(ctx context.Context, code string) (*models.Location, error) {
	var loc models.Location
	if err := s.db.WithContext(ctx).Where("code = ?", code).First(&loc).Error; err != nil {
		return nil, translate(err)
	}
	return &loc, nil
}

func (s *Store) CreateLocation(ctx context.Context, loc *models.Location) error {
	return translate(s.db.WithContext(ctx).Create(loc).Error)
}

func (s *Store) SetLocationActive(ctx context.Context, id uint, active bool) error {
	res := s.db.WithContext(ctx).Model(&models.Location{}).Where("id = ?", id).Update("is_active", active)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

type CoefficientFilter struct {
	HospitalID *uint
	CategoryID *uint
	Period     string
}

func (s *Store) ListCoefficients(ctx context.Context, f CoefficientFilter) ([]models.OperationalCoefficient, error) {
	q := s.db.WithContext(ctx).Preload("Category").Order("period DESC, hospital_id ASC, category_id ASC")
	if f.HospitalID != nil {
		q = q.Where("hospital_id = ?", *f.HospitalID)
	}
	if f.CategoryID != nil {
		q = q.Where("category_id = ?", *f.CategoryID)
	}
	if f.Period != "" {
		q = q.Where("period = ?", f.Period)
	}
	var rows []models.OperationalCoefficient
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// UpsertCoefficient (hospital_id, category_id, period) anahtarıyla atomik ekle/güncelle.
func (s *Store) UpsertCoefficient(ctx context.Context, c *models.OperationalCoefficient) error {
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "hospital_id"}, {Name: "category_id"}, {Name: "period"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(c).Error
}
