package dto

import (
	"time"

	"github.com/yukikurage/intern-management-api/internal/clock"
	"github.com/yukikurage/intern-management-api/internal/models"
)

// TaskDTO represents a task in API responses
type TaskDTO struct {
	ID          uint64              `json:"id"`
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Priority    models.TaskPriority `json:"priority"`
	Status      models.TaskStatus   `json:"status"`
	DueDate     string              `json:"due_date"`
	AssignedBy  uint64              `json:"assigned_by"`
	AssignedTo  *uint64             `json:"assigned_to"`
	IsTeamTask  bool                `json:"is_team_task"`
	TeamID      uint64              `json:"team_id"`
	CompletedAt *time.Time          `json:"completed_at"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
	Assigner    *UserSummaryDTO     `json:"assigner,omitempty"`
	Assignee    *UserSummaryDTO     `json:"assignee,omitempty"`
}

// TaskListResponse represents a paginated list of tasks
type TaskListResponse struct {
	Tasks      []TaskDTO `json:"tasks"`
	Page       int       `json:"page"`
	PageSize   int       `json:"page_size"`
	TotalCount int64     `json:"total_count"`
	TotalPages int       `json:"total_pages"`
}

type CreateTaskRequest struct {
	Title       string              `json:"title" binding:"required"`
	Description string              `json:"description"`
	Priority    models.TaskPriority `json:"priority"`
	Status      models.TaskStatus   `json:"status"`
	DueDate     *string             `json:"due_date"`
	AssignedTo  *uint64             `json:"assigned_to"`
	IsTeamTask  bool                `json:"is_team_task"`
	TeamID      *uint64             `json:"team_id"`
}

// UpdateTaskRequest carries the fields to change. A due_date of "" clears it.
type UpdateTaskRequest struct {
	Title       *string              `json:"title"`
	Description *string              `json:"description"`
	Priority    *models.TaskPriority `json:"priority"`
	Status      *models.TaskStatus   `json:"status"`
	DueDate     *string              `json:"due_date"`
}

type GenerateTasksRequest struct {
	Text string `json:"text" binding:"required"`
}

// GeneratedTaskDTO is a draft produced by the AI helper
type GeneratedTaskDTO struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Priority    string `json:"priority"`
	DueDate     string `json:"due_date"`
}

// Conversion functions

// ToTaskDTO converts a Task model to TaskDTO
func ToTaskDTO(task models.Task) TaskDTO {
	dto := TaskDTO{
		ID:          task.ID,
		Title:       task.Title,
		Description: task.Description,
		Priority:    task.Priority,
		Status:      task.Status,
		DueDate:     clock.FormatDate(task.DueDate),
		AssignedBy:  task.AssignedBy,
		AssignedTo:  task.AssignedTo,
		IsTeamTask:  task.IsTeamTask,
		TeamID:      task.TeamID,
		CompletedAt: task.CompletedAt,
		CreatedAt:   task.CreatedAt,
		UpdatedAt:   task.UpdatedAt,
	}

	if task.Assigner.ID != 0 {
		assigner := ToUserSummaryDTO(task.Assigner)
		dto.Assigner = &assigner
	}
	if task.Assignee != nil && task.Assignee.ID != 0 {
		assignee := ToUserSummaryDTO(*task.Assignee)
		dto.Assignee = &assignee
	}

	return dto
}

// ToTaskListResponse converts a page of tasks
func ToTaskListResponse(tasks []models.Task, page, pageSize int, totalCount int64) TaskListResponse {
	dtos := make([]TaskDTO, len(tasks))
	for i, task := range tasks {
		dtos[i] = ToTaskDTO(task)
	}

	totalPages := 0
	if pageSize > 0 {
		totalPages = int((totalCount + int64(pageSize) - 1) / int64(pageSize))
	}

	return TaskListResponse{
		Tasks:      dtos,
		Page:       page,
		PageSize:   pageSize,
		TotalCount: totalCount,
		TotalPages: totalPages,
	}
}

// ToGeneratedTaskDTO formats a drafted task; due dates are rendered as
// calendar days.
func ToGeneratedTaskDTO(title, description, priority string, due *time.Time) GeneratedTaskDTO {
	dto := GeneratedTaskDTO{
		Title:       title,
		Description: description,
		Priority:    priority,
	}
	if due != nil {
		d := clock.ToDate(*due)
		dto.DueDate = clock.FormatDate(&d)
	}
	return dto
}
