package models

import "time"

type NotificationType string

const (
	NotificationTaskAssigned     NotificationType = "task_assigned"
	NotificationTaskUpdated      NotificationType = "task_updated"
	NotificationResourceUploaded NotificationType = "resource_uploaded"
	NotificationMeetingScheduled NotificationType = "meeting_scheduled"
	NotificationCertificateReady NotificationType = "certificate_ready"
)

type Notification struct {
	ID        uint64           `gorm:"primarykey" json:"id"`
	UserID    uint64           `gorm:"not null;index" json:"user_id"`
	Type      NotificationType `gorm:"type:varchar(40);not null" json:"type"`
	Title     string           `gorm:"type:varchar(255);not null" json:"title"`
	Message   string           `gorm:"type:text;not null" json:"message"`
	IsRead    bool             `gorm:"not null;default:false;index" json:"is_read"`
	CreatedAt time.Time        `gorm:"index" json:"created_at"`
}
