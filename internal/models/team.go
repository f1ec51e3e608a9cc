package models

import (
	"time"

	"gorm.io/gorm"
)

type Team struct {
	ID        uint64         `gorm:"primarykey" json:"id"`
	Name      string         `gorm:"type:varchar(255);not null" json:"name"`
	AdminID   uint64         `gorm:"not null;index" json:"admin_id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Admin   User   `gorm:"foreignKey:AdminID" json:"admin,omitempty"`
	Members []User `gorm:"foreignKey:TeamID" json:"members,omitempty"`
}
