package models

import "time"

type CollectionStatus string

const (
	CollectionPending   CollectionStatus = "pending"
	CollectionCompleted CollectionStatus = "completed"
	CollectionCancelled CollectionStatus = "cancelled"
)

// WasteCollection: etiketlenmiş tek bir atık toplama olayı.
// pending iken WeightKg ve WeighedAt nil, completed iken ikisi de doludur.
type WasteCollection struct {
	ID             uint `gorm:"primaryKey"`
	HospitalID     uint `gorm:"index;not null"`
	Hospital       Hospital
	LocationID     *uint `gorm:"index"`
	Location       *Location
	WasteTypeID    uint `gorm:"index;not null"`
	WasteType      WasteType
	TagCode        string `gorm:"size:64;not null;uniqueIndex"`
	CollectedByID  *uint
	CollectedBy    *User
	CollectedAt    time.Time `gorm:"index;not null"`
	WeighedAt      *time.Time
	Status         CollectionStatus `gorm:"size:20;not null;default:pending;index"`
	WeightKg       *float64         `gorm:"type:numeric(10,3)"`
	IsManualWeight bool             `gorm:"not null;default:false"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Weight: tartılmamış kayıtlar toplamlara 0 olarak girer.
func (w WasteCollection) Weight() float64 {
	if w.WeightKg == nil {
		return 0
	}
	return *w.WeightKg
}
