package repository

import (
	"gorm.io/datatypes"

	"github.com/yukikurage/intern-management-api/internal/models"
)

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create creates a new user
	Create(user *models.User) error

	// CreateWithCertificate creates a user and, for interns, their unissued
	// certificate within a single transaction.
	CreateWithCertificate(user *models.User) error

	// FindByID finds a user by ID
	FindByID(id uint64) (*models.User, error)

	// FindByUsername finds a user by username
	FindByUsername(username string) (*models.User, error)

	// List retrieves users matching the filter
	List(filter UserFilter) ([]models.User, error)

	// Update writes the given columns to the user row
	Update(id uint64, columns map[string]interface{}) error

	// IncrementAttendance atomically adds one attended day
	IncrementAttendance(id uint64) error

	// SetProgress persists a recomputed progress value
	SetProgress(id uint64, progress int) error

	// Deactivate flips is_active to false; it reports whether this call changed the row
	Deactivate(id uint64) (bool, error)

	// ExistingUsernames returns which of the given usernames already exist
	ExistingUsernames(usernames []string) (map[string]bool, error)
}

// UserFilter holds filtering options for listing users
type UserFilter struct {
	Role       *models.Role
	TeamID     *uint64
	ActiveOnly bool
}

// TeamRepository defines the interface for team data access
type TeamRepository interface {
	// Create creates a new team
	Create(team *models.Team) error

	// FindByID finds a team by ID with optional preloading
	FindByID(id uint64, preload ...string) (*models.Team, error)

	// FindByAdmin finds the team owned by an admin
	FindByAdmin(adminID uint64) (*models.Team, error)

	// List lists all teams
	List() ([]models.Team, error)

	// Update updates a team
	Update(team *models.Team) error

	// Delete soft deletes a team and detaches its members
	Delete(id uint64) error

	// SetMember attaches or detaches (teamID nil) a user
	SetMember(userID uint64, teamID *uint64) error
}

// TaskRepository defines the interface for task data access
type TaskRepository interface {
	// Create creates a new task
	Create(task *models.Task) error

	// FindByID finds a task by ID
	FindByID(id uint64) (*models.Task, error)

	// ListForUser lists tasks assigned to the user plus team tasks of their team
	ListForUser(userID uint64, teamID *uint64) ([]models.Task, error)

	// List retrieves tasks with filtering and pagination
	List(filter TaskFilter) ([]models.Task, int64, error)

	// Update updates a task
	Update(task *models.Task) error

	// Delete soft deletes a task
	Delete(id uint64) error
}

// TaskFilter holds filtering options for listing tasks
type TaskFilter struct {
	TeamIDs       []uint64
	AllTeams      bool
	Status        *models.TaskStatus
	AssignedBy    *uint64
	AssignedTo    *uint64
	DueDateFrom   *datatypes.Date
	DueDateTo     *datatypes.Date
	SortByDueDate bool
	Page          int
	PageSize      int
}

// ResourceRepository defines the interface for resource data access
type ResourceRepository interface {
	// Create creates a new resource
	Create(resource *models.Resource) error

	// FindByID finds a resource by ID
	FindByID(id uint64) (*models.Resource, error)

	// List lists resources, optionally restricted to a team and a type
	List(teamID *uint64, resourceType *models.ResourceType) ([]models.Resource, error)
}

// CertificateRepository defines the interface for certificate data access
type CertificateRepository interface {
	// Create creates a new certificate
	Create(cert *models.Certificate) error

	// FindByID finds a certificate by ID
	FindByID(id uint64) (*models.Certificate, error)

	// FindByUser finds the certificate belonging to a user
	FindByUser(userID uint64) (*models.Certificate, error)

	// List lists all certificates with their users
	List(teamID *uint64) ([]models.Certificate, error)

	// MarkIssued flips an unissued certificate to issued. The update is
	// conditional on is_generated being false; the boolean reports whether
	// this call performed the flip.
	MarkIssued(id uint64, issuedDate datatypes.Date, url, serial string) (bool, error)
}

// NotificationRepository defines the interface for notification data access
type NotificationRepository interface {
	// Create creates a new notification
	Create(n *models.Notification) error

	// CreateBatch creates several notifications in one insert
	CreateBatch(ns []models.Notification) error

	// FindByID finds a notification by ID
	FindByID(id uint64) (*models.Notification, error)

	// ListByUser lists a user's notifications, newest first
	ListByUser(userID uint64, unreadOnly bool, limit int) ([]models.Notification, error)

	// CountUnread counts a user's unread notifications
	CountUnread(userID uint64) (int64, error)

	// MarkRead marks one notification as read
	MarkRead(id uint64) error

	// MarkAllRead marks all of a user's notifications as read
	MarkAllRead(userID uint64) (int64, error)
}
