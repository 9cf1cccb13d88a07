package models

import "time"

// Hospital: atık toplanan sağlık tesisi. Silinmez, IsActive ile pasife alınır.
type Hospital struct {
	ID        uint   `gorm:"primaryKey"`
	Code      string `gorm:"size:20;not null;uniqueIndex"`
	Name      string `gorm:"size:150;not null"`
	Color     string `gorm:"size:20"` // grafiklerde kullanılan renk (#RRGGBB)
	IsActive  bool   `gorm:"not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
