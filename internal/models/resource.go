package models

import (
	"time"

	"gorm.io/gorm"
)

type ResourceType string

const (
	ResourceMeetingLink ResourceType = "meeting_link"
	ResourcePDF         ResourceType = "pdf"
	ResourceDoc         ResourceType = "doc"
	ResourceNote        ResourceType = "note"
)

// Valid reports whether t is a known resource type.
func (t ResourceType) Valid() bool {
	switch t {
	case ResourceMeetingLink, ResourcePDF, ResourceDoc, ResourceNote:
		return true
	}
	return false
}

// IsDocument reports whether t refers to an uploaded file.
func (t ResourceType) IsDocument() bool {
	return t == ResourcePDF || t == ResourceDoc
}

type Resource struct {
	ID          uint64         `gorm:"primarykey" json:"id"`
	Title       string         `gorm:"type:varchar(255);not null" json:"title"`
	Type        ResourceType   `gorm:"type:varchar(20);not null;index" json:"type"`
	Link        string         `gorm:"type:text" json:"link"`
	FileURL     string         `gorm:"type:text" json:"file_url"`
	Description string         `gorm:"type:text" json:"description"`
	UploadedBy  uint64         `gorm:"not null;index" json:"uploaded_by"`
	TeamID      uint64         `gorm:"not null;index" json:"team_id"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Uploader User `gorm:"foreignKey:UploadedBy" json:"-"`
}
