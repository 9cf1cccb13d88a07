package store

import (
	"context"

	"medwaste-backend/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func (s *Store) FindUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var u models.User
	err := s.db.WithContext(ctx).
		Preload("Roles").
		Preload("Hospitals").
		Where("username = ?", username).
		First(&u).Error
	if err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

// GetUserWithAccess kullanıcıyı rolleri ve hastane üyelikleriyle birlikte getirir.
func (s *Store) GetUserWithAccess(ctx context.Context, id uint) (*models.User, error) {
	var u models.User
	err := s.db.WithContext(ctx).
		Preload("Roles").
		Preload("Hospitals", func(db *gorm.DB) *gorm.DB { return db.Order("is_default DESC, hospital_id ASC") }).
		Preload("Hospitals.Hospital").
		First(&u, "id = ?", id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (s *Store) ListUsersByIDs(ctx context.Context, ids []uint) ([]models.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var users []models.User
	if err := s.db.WithContext(ctx).Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// UpsertUser: seed için. Kullanıcı adına göre ekler/günceller, rol ve hastane listesini yeniden yazar.
func (s *Store) UpsertUser(ctx context.Context, u *models.User, roles []models.Role, hospitals []models.UserHospital) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "username"}},
			DoUpdates: clause.AssignmentColumns([]string{"email", "first_name", "last_name", "password_hash", "is_active", "updated_at"}),
		}).Create(u).Error; err != nil {
			return err
		}

		if err := tx.Where("user_id = ?", u.ID).Delete(&models.UserRole{}).Error; err != nil {
			return err
		}
		for _, r := range roles {
			if err := tx.Create(&models.UserRole{UserID: u.ID, Role: r}).Error; err != nil {
				return err
			}
		}

		if err := tx.Where("user_id = ?", u.ID).Delete(&models.UserHospital{}).Error; err != nil {
			return err
		}
		for _, h := range hospitals {
			row := models.UserHospital{UserID: u.ID, HospitalID: h.HospitalID, IsDefault: h.IsDefault}
			if err := tx.Omit("Hospital").Create(&row).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
