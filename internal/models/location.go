package models

import "time"

// LocationCategory: global lokasyon kategorisi (servis, ameliyathane...).
// ReferenceWasteFactor birim başına beklenen kg değeridir.
type LocationCategory struct {
	ID                   uint    `gorm:"primaryKey"`
	Code                 string  `gorm:"size:50;not null;uniqueIndex"`
	Name                 string  `gorm:"size:100;not null"`
	Unit                 string  `gorm:"size:50"` // ör: "yatış günü", "ameliyat"
	ReferenceWasteFactor float64 `gorm:"not null;default:0"`
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

type Location struct {
	ID         uint `gorm:"primaryKey"`
	HospitalID uint `gorm:"index;not null"`
	Hospital   Hospital
	Code       string `gorm:"size:60;not null;uniqueIndex"` // sunucuda üretilir
	CategoryID *uint  `gorm:"index"`
	Category   *LocationCategory
	Label      string `gorm:"size:150"`
	IsActive   bool   `gorm:"not null"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// OperationalCoefficient: HBYS'den gelen aylık sayım (yatış günü, ameliyat sayısı...).
// Period "YYYY-MM" formatındadır.
type OperationalCoefficient struct {
	ID         uint `gorm:"primaryKey"`
	HospitalID uint `gorm:"not null;uniqueIndex:idx_coefficient_key"`
	Hospital   Hospital
	CategoryID uint `gorm:"not null;uniqueIndex:idx_coefficient_key"`
	Category   LocationCategory
	Period     string  `gorm:"size:7;not null;uniqueIndex:idx_coefficient_key"`
	Value      float64 `gorm:"not null"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
