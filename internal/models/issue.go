package models

import (
	"time"

	"gorm.io/datatypes"
)

type IssueCategory string

const (
	IssueSegregation   IssueCategory = "segregation"
	IssueNonCompliance IssueCategory = "non_compliance"
	IssueTechnical     IssueCategory = "technical"
	IssueOther         IssueCategory = "other"
)

// IssueCategories sabit sırayla tüm kategoriler.
var IssueCategories = []IssueCategory{IssueSegregation, IssueNonCompliance, IssueTechnical, IssueOther}

func (c IssueCategory) Valid() bool {
	for _, v := range IssueCategories {
		if v == c {
			return true
		}
	}
	return false
}

// Issue: sahada bildirilen uygunsuzluk. Bir kez çözülür, yeniden açılmaz.
type Issue struct {
	ID           uint `gorm:"primaryKey"`
	HospitalID   uint `gorm:"index;not null"`
	Hospital     Hospital
	CollectionID *uint `gorm:"index"`
	Collection   *WasteCollection
	TagCode      *string `gorm:"size:64"` // bildirim anındaki etiket metni
	LocationID   *uint
	Location     *Location
	Category     IssueCategory               `gorm:"size:30;not null"`
	Description  string                      `gorm:"type:text;not null"`
	ReportedByID uint                        `gorm:"index;not null"`
	Photos       datatypes.JSONSlice[string] `gorm:"type:jsonb"`
	ReportedAt   time.Time                   `gorm:"index;not null"`
	IsResolved   bool                        `gorm:"not null;default:false;index"`
	ResolvedAt   *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
