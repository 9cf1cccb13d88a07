package models

import "time"

type Role string

const (
	RoleHQ              Role = "HQ"
	RoleHospitalManager Role = "HOSPITAL_MANAGER"
	RoleCollector       Role = "COLLECTOR"
)

func (r Role) Valid() bool {
	return r == RoleHQ || r == RoleHospitalManager || r == RoleCollector
}

type User struct {
	ID           uint   `gorm:"primaryKey"`
	Username     string `gorm:"size:100;uniqueIndex;not null"`
	Email        string `gorm:"size:150"`
	FirstName    string `gorm:"size:100"`
	LastName     string `gorm:"size:100"`
	PasswordHash string `gorm:"size:255;not null"`
	IsActive     bool   `gorm:"not null"`
	CreatedAt    time.Time
	UpdatedAt    time.Time

	Roles     []UserRole
	Hospitals []UserHospital
}

type UserRole struct {
	ID     uint `gorm:"primaryKey"`
	UserID uint `gorm:"not null;uniqueIndex:idx_user_role"`
	Role   Role `gorm:"size:30;not null;uniqueIndex:idx_user_role"`
}

type UserHospital struct {
	ID         uint `gorm:"primaryKey"`
	UserID     uint `gorm:"not null;uniqueIndex:idx_user_hospital"`
	HospitalID uint `gorm:"not null;uniqueIndex:idx_user_hospital"`
	Hospital   Hospital
	IsDefault  bool `gorm:"not null;default:false"`
}

func (u User) RoleSet() []Role {
	roles := make([]Role, 0, len(u.Roles))
	for _, r := range u.Roles {
		roles = append(roles, r.Role)
	}
	return roles
}

// DisplayName: ad soyad, yoksa kullanıcı adı.
func (u User) DisplayName() string {
	name := u.FirstName
	if u.LastName != "" {
		if name != "" {
			name += " "
		}
		name += u.LastName
	}
	if name == "" {
		return u.Username
	}
	return name
}

// Session: sunucuda tutulan oturum. ID istemciye imzalı token içinde gider.
type Session struct {
	ID        string    `gorm:"primaryKey;size:36"`
	UserID    uint      `gorm:"index;not null"`
	ExpiresAt time.Time `gorm:"index;not null"`
	CreatedAt time.Time
}
