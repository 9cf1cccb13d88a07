package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Referans kurulumdaki atık türü kodları. Küme açıktır, yenileri eklenebilir.
const (
	WasteCodeMedical   = "medical"
	WasteCodeHazardous = "hazardous"
	WasteCodeDomestic  = "domestic"
	WasteCodeRecycle   = "recycle"
)

type WasteType struct {
	ID    uint   `gorm:"primaryKey"`
	Code  string `gorm:"size:30;not null;uniqueIndex"`
	Name  string `gorm:"size:100;not null"`
	Color string `gorm:"size:20"`

	// Eski sabit birim fiyat. Tarihli fiyat bulunamazsa kullanılır.
	CostPerKg decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// WasteTypeCost: EffectiveFrom gününden itibaren geçerli kg fiyatı.
// Negatif değer geri ödeme/alacak anlamına gelir (ör. geri dönüşüm).
type WasteTypeCost struct {
	ID            uint `gorm:"primaryKey"`
	WasteTypeID   uint `gorm:"not null;uniqueIndex:idx_waste_type_cost_effective"`
	WasteType     WasteType
	EffectiveFrom time.Time       `gorm:"type:date;not null;uniqueIndex:idx_waste_type_cost_effective"`
	CostPerKg     decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
