package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type TaskStatus string

const (
	TaskStatusTodo       TaskStatus = "todo"
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusInProgress TaskStatus = "in-progress"
	TaskStatusCompleted  TaskStatus = "completed"
)

// Valid reports whether s is a known status.
func (s TaskStatus) Valid() bool {
	switch s {
	case TaskStatusTodo, TaskStatusPending, TaskStatusInProgress, TaskStatusCompleted:
		return true
	}
	return false
}

// NotStarted reports whether s is one of the two "not started" spellings.
func (s TaskStatus) NotStarted() bool {
	return s == TaskStatusTodo || s == TaskStatusPending
}

type TaskPriority string

const (
	PriorityLow    TaskPriority = "low"
	PriorityMedium TaskPriority = "medium"
	PriorityHigh   TaskPriority = "high"
)

// Valid reports whether p is a known priority.
func (p TaskPriority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// Task is either assigned to one intern (AssignedTo set) or to the whole
// team (IsTeamTask true, AssignedTo nil).
type Task struct {
	ID          uint64          `gorm:"primarykey" json:"id"`
	Title       string          `gorm:"not null" json:"title"`
	Description string          `gorm:"type:text" json:"description"`
	Priority    TaskPriority    `gorm:"type:varchar(20);not null;default:'medium'" json:"priority"`
	Status      TaskStatus      `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	DueDate     *datatypes.Date `json:"due_date"`
	AssignedBy  uint64          `gorm:"not null;index" json:"assigned_by"`
	AssignedTo  *uint64         `gorm:"index" json:"assigned_to"`
	IsTeamTask  bool            `gorm:"not null;default:false" json:"is_team_task"`
	TeamID      uint64          `gorm:"not null;index" json:"team_id"`
	CompletedAt *time.Time      `json:"completed_at"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
	DeletedAt   gorm.DeletedAt  `gorm:"index" json:"-"`

	// Relations
	Assigner User  `gorm:"foreignKey:AssignedBy" json:"-"`
	Assignee *User `gorm:"foreignKey:AssignedTo" json:"-"`
	Team     Team  `gorm:"foreignKey:TeamID" json:"-"`
}
