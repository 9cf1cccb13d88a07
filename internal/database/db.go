package database

import (
	"fmt"
	"time"

	"medwaste-backend/internal/config"
	"medwaste-backend/internal/logger"
	"medwaste-backend/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Open Postgres bağlantısını açar. Unique ihlalleri gorm.ErrDuplicatedKey olarak döner.
func Open(cfg *config.Config) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DatabaseDSN), &gorm.Config{
		TranslateError: true,
		Logger: gormlogger.New(logger.L(), gormlogger.Config{
			SlowThreshold:             500 * time.Millisecond,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
		}),
	})
	if err != nil {
		return nil, fmt.Errorf("veritabanına bağlanılamadı: %w", err)
	}
	return db, nil
}

// Models: AutoMigrate sırası (bağımlılıklar önce).
func Models() []any {
	return []any{
		&models.Hospital{},
		&models.User{},
		&models.UserRole{},
		&models.UserHospital{},
		&models.Session{},
		&models.WasteType{},
		&models.WasteTypeCost{},
		&models.LocationCategory{},
		&models.Location{},
		&models.OperationalCoefficient{},
		&models.WasteCollection{},
		&models.Issue{},
		&models.AuditLog{},
	}
}

func Migrate(db *gorm.DB) error {
	// Eski kurulumlarda etiket kodu tekil değildi; index eklenmeden önce çakışmalar raporlanır
	if db.Migrator().HasTable(&models.WasteCollection{}) &&
		!db.Migrator().HasIndex(&models.WasteCollection{}, "idx_waste_collections_tag_code") {
		var dup int64
		db.Raw(`SELECT COUNT(*) FROM (
			SELECT tag_code FROM waste_collections GROUP BY tag_code HAVING COUNT(*) > 1
		) d`).Scan(&dup)
		if dup > 0 {
			return fmt.Errorf("waste_collections tablosunda %d adet tekrar eden etiket kodu var, tekil index eklenemez", dup)
		}
	}

	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("AutoMigrate hatası: %w", err)
	}

	logger.L().Info("Veritabanı migration tamamlandı")
	return nil
}
