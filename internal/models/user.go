package models

import (
	"time"

	"shiftly/internal/domain"

	"gorm.io/gorm"
)

type User struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	Email        string         `gorm:"uniqueIndex;size:255;not null" json:"email"`
	PasswordHash string         `gorm:"size:255" json:"-"`
	Role         string         `gorm:"size:20;not null;index" json:"role"` // BUSINESS | WORKER | ADMIN
	FullName     string         `gorm:"size:128" json:"full_name"`
	CompanyName  string         `gorm:"size:128" json:"company_name,omitempty"` // businesses only
	Phone        string         `gorm:"size:20" json:"phone"`
	KYCVerified  bool           `gorm:"default:false" json:"kyc_verified"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

func (u *User) IsBusiness() bool { return u.Role == domain.RoleBusiness }
func (u *User) IsWorker() bool   { return u.Role == domain.RoleWorker }

func (User) TableName() string {
	return "users"
}
