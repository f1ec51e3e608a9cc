package models

import (
	"time"

	"gorm.io/datatypes"
)

// Certificate is one-to-one with a User. It is created unissued when the
// intern is provisioned and flips to issued exactly once.
type Certificate struct {
	ID             uint64          `gorm:"primarykey" json:"id"`
	UserID         uint64          `gorm:"uniqueIndex;not null" json:"user_id"`
	IsGenerated    bool            `gorm:"not null;default:false" json:"is_generated"`
	IssuedDate     *datatypes.Date `json:"issued_date"`
	CertificateURL string          `gorm:"type:varchar(255)" json:"certificate_url"`
	Serial         string          `gorm:"type:varchar(36)" json:"serial"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`

	// Relations
	User User `gorm:"foreignKey:UserID" json:"-"`
}
