package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Role string

const (
	RoleIntern     Role = "intern"
	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "superadmin"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleIntern, RoleAdmin, RoleSuperAdmin:
		return true
	}
	return false
}

// User is the single account entity; interns, admins and the super-admin
// are distinguished by Role.
type User struct {
	ID              uint64          `gorm:"primarykey" json:"id"`
	Username        string          `gorm:"type:varchar(100);uniqueIndex;not null" json:"username"`
	PasswordHash    string          `gorm:"type:varchar(255);not null" json:"-"`
	Role            Role            `gorm:"type:varchar(20);not null;default:'intern';index" json:"role"`
	Name            string          `gorm:"type:varchar(255);not null" json:"name"`
	Email           string          `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	MobileNumber    string          `gorm:"type:varchar(50)" json:"mobile_number"`
	Department      string          `gorm:"type:varchar(255)" json:"department"`
	TeamID          *uint64         `gorm:"index" json:"team_id"`
	Progress        int             `gorm:"not null;default:0" json:"progress"`
	IsActive        bool            `gorm:"not null;default:true" json:"is_active"`
	AttendanceCount int             `gorm:"not null;default:0" json:"attendance_count"`
	StartDate       *datatypes.Date `json:"start_date"`
	EndDate         *datatypes.Date `json:"end_date"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
	DeletedAt       gorm.DeletedAt  `gorm:"index" json:"-"`

	// Relations
	Certificate *Certificate `gorm:"foreignKey:UserID" json:"-"`
}
