package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/yukikurage/intern-management-api/internal/clock"
	"github.com/yukikurage/intern-management-api/internal/constants"
	"github.com/yukikurage/intern-management-api/internal/models"
	"github.com/yukikurage/intern-management-api/internal/repository"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var (
	ErrTitleEmpty             = errors.New("title cannot be empty")
	ErrInvalidTaskAssignee    = errors.New("assignee must be an intern of the task's team")
	ErrNoTeam                 = errors.New("a team is required")
	ErrAIServiceNotConfigured = errors.New("AI service is not configured")
	ErrAINoTasksGenerated     = errors.New("AI did not generate any tasks")
	ErrAINoValidTasks         = errors.New("no valid tasks could be created from AI output")
)

// TaskService handles task business logic
type TaskService struct {
	taskRepo  repository.TaskRepository
	userRepo  repository.UserRepository
	teamRepo  repository.TeamRepository
	notifier  Notifier
	refresher *InternRefresher
	drafter   TaskDrafter
	clock     clock.Clock
	logger    *slog.Logger
}

// NewTaskService creates a new TaskService. drafter may be nil when no AI
// backend is configured.
func NewTaskService(
	taskRepo repository.TaskRepository,
	userRepo repository.UserRepository,
	teamRepo repository.TeamRepository,
	notifier Notifier,
	refresher *InternRefresher,
	drafter TaskDrafter,
	clk clock.Clock,
	logger *slog.Logger,
) *TaskService {
	return &TaskService{
		taskRepo:  taskRepo,
		userRepo:  userRepo,
		teamRepo:  teamRepo,
		notifier:  notifier,
		refresher: refresher,
		drafter:   drafter,
		clock:     clk,
		logger:    logger,
	}
}

// ListTasksInput represents filters for listing tasks
type ListTasksInput struct {
	TeamID        *uint64
	Status        *models.TaskStatus
	AssignedTo    *uint64
	DueToday      bool
	SortByDueDate bool
	Page          int
	PageSize      int
}

// CreateTaskInput represents input for creating a task
type CreateTaskInput struct {
	Title       string `validate:"required,max=255"`
	Description string
	Priority    models.TaskPriority
	Status      models.TaskStatus
	DueDate     *datatypes.Date
	AssignedTo  *uint64
	IsTeamTask  bool
	TeamID      *uint64
}

// UpdateTaskInput represents input for updating a task
type UpdateTaskInput struct {
	Title        *string
	Description  *string
	Priority     *models.TaskPriority
	Status       *models.TaskStatus
	DueDate      *datatypes.Date
	ClearDueDate bool
}

// statusOnly reports whether the update touches nothing but the status.
func (in UpdateTaskInput) statusOnly() bool {
	return in.Title == nil && in.Description == nil && in.Priority == nil &&
		in.DueDate == nil && !in.ClearDueDate
}

// ListTasks returns tasks visible to actor. Interns see their own tasks plus
// their team's team tasks; admins see their team; the super-admin sees all.
func (s *TaskService) ListTasks(actor *models.User, input ListTasksInput) ([]models.Task, int64, error) {
	if input.Status != nil && !input.Status.Valid() {
		return nil, 0, newValidationError("status", "must be one of [todo pending in-progress completed]")
	}

	if actor.Role == models.RoleIntern {
		return s.listForIntern(actor, input)
	}

	filter := repository.TaskFilter{
		Status:        input.Status,
		AssignedTo:    input.AssignedTo,
		SortByDueDate: input.SortByDueDate,
		Page:          input.Page,
		PageSize:      input.PageSize,
	}

	switch {
	case actor.Role == models.RoleSuperAdmin && input.TeamID == nil:
		filter.AllTeams = true
	case actor.Role == models.RoleSuperAdmin:
		filter.TeamIDs = []uint64{*input.TeamID}
	default:
		if actor.TeamID == nil {
			return []models.Task{}, 0, nil
		}
		if input.TeamID != nil && *input.TeamID != *actor.TeamID {
			return nil, 0, ErrPermissionDenied
		}
		filter.TeamIDs = []uint64{*actor.TeamID}
	}

	if input.DueToday {
		today := clock.Today(s.clock)
		tomorrow := datatypes.Date(time.Time(today).AddDate(0, 0, 1))
		filter.DueDateFrom = &today
		filter.DueDateTo = &tomorrow
	}

	tasks, total, err := s.taskRepo.List(filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list tasks: %w", err)
	}

	return tasks, total, nil
}

func (s *TaskService) listForIntern(actor *models.User, input ListTasksInput) ([]models.Task, int64, error) {
	tasks, err := s.taskRepo.ListForUser(actor.ID, actor.TeamID)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list tasks: %w", err)
	}

	today := clock.Today(s.clock)
	filtered := make([]models.Task, 0, len(tasks))
	for _, t := range tasks {
		if input.Status != nil && !sameStatus(t.Status, *input.Status) {
			continue
		}
		if input.DueToday && (t.DueDate == nil || clock.FormatDate(t.DueDate) != clock.FormatDate(&today)) {
			continue
		}
		filtered = append(filtered, t)
	}

	return filtered, int64(len(filtered)), nil
}

// GetTask returns a task visible to actor
func (s *TaskService) GetTask(actor *models.User, taskID uint64) (*models.Task, error) {
	task, err := s.findTask(taskID)
	if err != nil {
		return nil, err
	}

	if !s.canViewTask(actor, task) {
		return nil, ErrPermissionDenied
	}
	return task, nil
}

// CreateTask creates a task for one intern or for the whole team and
// notifies the interns it was assigned to.
func (s *TaskService) CreateTask(ctx context.Context, actor *models.User, input CreateTaskInput) (*models.Task, error) {
	input.Title = strings.TrimSpace(input.Title)
	if err := validateInput(input); err != nil {
		return nil, err
	}
	if input.Priority == "" {
		input.Priority = models.PriorityMedium
	}
	if !input.Priority.Valid() {
		return nil, newValidationError("priority", "must be one of [low medium high]")
	}
	if input.Status == "" {
		input.Status = models.TaskStatusPending
	}
	if !input.Status.Valid() {
		return nil, newValidationError("status", "must be one of [todo pending in-progress completed]")
	}

	team, err := s.resolveTeam(actor, input.TeamID)
	if err != nil {
		return nil, err
	}

	if input.IsTeamTask {
		if input.AssignedTo != nil {
			return nil, newValidationError("assigned_to", "must be empty for a team task")
		}
	} else {
		if input.AssignedTo == nil {
			return nil, newValidationError("assigned_to", "is required for an individual task")
		}
		if err := s.ensureAssignable(*input.AssignedTo, team.ID); err != nil {
			return nil, err
		}
	}

	task := &models.Task{
		Title:       input.Title,
		Description: input.Description,
		Priority:    input.Priority,
		Status:      input.Status,
		DueDate:     input.DueDate,
		AssignedBy:  actor.ID,
		AssignedTo:  input.AssignedTo,
		IsTeamTask:  input.IsTeamTask,
		TeamID:      team.ID,
	}
	if task.Status == models.TaskStatusCompleted {
		now := s.clock.Now()
		task.CompletedAt = &now
	}

	if err := s.taskRepo.Create(task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	affected, err := s.affectedInterns(task)
	if err != nil {
		return nil, err
	}

	s.notifier.EmitMany(ctx, affected, models.NotificationTaskAssigned,
		"New Task Assigned",
		fmt.Sprintf("You have been assigned a new task: %s", task.Title),
	)
	s.refresher.RefreshAll(ctx, affected)

	return task, nil
}

// UpdateTask updates an existing task. Interns may only move the status of
// tasks assigned to them or to their team; staff may edit everything.
func (s *TaskService) UpdateTask(ctx context.Context, actor *models.User, taskID uint64, input UpdateTaskInput) (*models.Task, error) {
	task, err := s.findTask(taskID)
	if err != nil {
		return nil, err
	}

	manager, err := s.canManageTask(actor, task)
	if err != nil {
		return nil, err
	}
	if !manager {
		if !s.canViewTask(actor, task) || !input.statusOnly() {
			return nil, ErrPermissionDenied
		}
	}

	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			return nil, ErrTitleEmpty
		}
		task.Title = title
	}
	if input.Description != nil {
		task.Description = *input.Description
	}
	if input.Priority != nil {
		if !input.Priority.Valid() {
			return nil, newValidationError("priority", "must be one of [low medium high]")
		}
		task.Priority = *input.Priority
	}
	if input.ClearDueDate {
		task.DueDate = nil
	} else if input.DueDate != nil {
		task.DueDate = input.DueDate
	}

	statusChanged := false
	if input.Status != nil {
		if !input.Status.Valid() {
			return nil, newValidationError("status", "must be one of [todo pending in-progress completed]")
		}
		statusChanged = s.applyStatus(task, *input.Status)
	}

	if err := s.taskRepo.Update(task); err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	affected, err := s.affectedInterns(task)
	if err != nil {
		return nil, err
	}

	if manager {
		s.notifier.EmitMany(ctx, excluding(affected, actor.ID), models.NotificationTaskUpdated,
			"Task Updated",
			fmt.Sprintf("Task \"%s\" was updated", task.Title),
		)
	} else if statusChanged && task.AssignedBy != actor.ID {
		s.notifier.Emit(ctx, task.AssignedBy, models.NotificationTaskUpdated,
			"Task Status Changed",
			fmt.Sprintf("%s moved \"%s\" to %s", actor.Name, task.Title, task.Status),
		)
	}

	if statusChanged {
		s.refresher.RefreshAll(ctx, affected)
	}

	return task, nil
}

// applyStatus sets the status and keeps CompletedAt in step with it. It
// reports whether the status actually changed.
func (s *TaskService) applyStatus(task *models.Task, status models.TaskStatus) bool {
	if task.Status == status {
		return false
	}

	wasCompleted := task.Status == models.TaskStatusCompleted
	task.Status = status

	switch {
	case status == models.TaskStatusCompleted:
		now := s.clock.Now()
		task.CompletedAt = &now
	case wasCompleted:
		task.CompletedAt = nil
	}
	return true
}

// DeleteTask deletes a task and refreshes the interns it counted for
func (s *TaskService) DeleteTask(ctx context.Context, actor *models.User, taskID uint64) error {
	task, err := s.findTask(taskID)
	if err != nil {
		return err
	}

	manager, err := s.canManageTask(actor, task)
	if err != nil {
		return err
	}
	if !manager {
		return ErrPermissionDenied
	}

	affected, err := s.affectedInterns(task)
	if err != nil {
		return err
	}

	if err := s.taskRepo.Delete(taskID); err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}

	s.refresher.RefreshAll(ctx, affected)
	return nil
}

// GenerateTasks uses AI to draft tasks from text. Drafts are returned for
// review and are not persisted.
func (s *TaskService) GenerateTasks(ctx context.Context, actor *models.User, text string) ([]GeneratedTask, error) {
	if !isStaff(actor) {
		return nil, ErrPermissionDenied
	}
	if strings.TrimSpace(text) == "" {
		return nil, newValidationError("text", "is required")
	}
	if s.drafter == nil {
		return nil, ErrAIServiceNotConfigured
	}

	now := s.clock.Now()
	aiTasks, err := s.drafter.DraftTasks(ctx, text, now)
	if err != nil {
		return nil, fmt.Errorf("failed to generate tasks: %w", err)
	}

	if len(aiTasks) == 0 {
		return nil, ErrAINoTasksGenerated
	}
	if len(aiTasks) > constants.MaxAIGeneratedTasks {
		return nil, fmt.Errorf("AI generated too many tasks (max %d)", constants.MaxAIGeneratedTasks)
	}

	validTasks := make([]GeneratedTask, 0, len(aiTasks))
	cutoff := now.Add(-24 * time.Hour)
	for _, aiTask := range aiTasks {
		if strings.TrimSpace(aiTask.Title) == "" {
			continue
		}

		if aiTask.DueDate != nil && aiTask.DueDate.Before(cutoff) {
			aiTask.DueDate = nil
		}
		if !models.TaskPriority(aiTask.Priority).Valid() {
			aiTask.Priority = string(models.PriorityMedium)
		}

		validTasks = append(validTasks, aiTask)
	}

	if len(validTasks) == 0 {
		return nil, ErrAINoValidTasks
	}

	return validTasks, nil
}

func (s *TaskService) findTask(taskID uint64) (*models.Task, error) {
	task, err := s.taskRepo.FindByID(taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}
	return task, nil
}

// resolveTeam picks the team a new task belongs to and checks the actor
// manages it.
func (s *TaskService) resolveTeam(actor *models.User, teamID *uint64) (*models.Team, error) {
	return resolveManagedTeam(s.teamRepo, actor, teamID)
}

// ensureAssignable verifies the user is an intern of the team.
func (s *TaskService) ensureAssignable(userID, teamID uint64) error {
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrInvalidTaskAssignee
		}
		return fmt.Errorf("failed to find assignee: %w", err)
	}
	if user.Role != models.RoleIntern || user.TeamID == nil || *user.TeamID != teamID {
		return ErrInvalidTaskAssignee
	}
	return nil
}

func (s *TaskService) canViewTask(actor *models.User, task *models.Task) bool {
	switch actor.Role {
	case models.RoleSuperAdmin:
		return true
	case models.RoleAdmin:
		return actor.TeamID != nil && *actor.TeamID == task.TeamID
	}
	if task.AssignedTo != nil && *task.AssignedTo == actor.ID {
		return true
	}
	return task.IsTeamTask && actor.TeamID != nil && *actor.TeamID == task.TeamID
}

func (s *TaskService) canManageTask(actor *models.User, task *models.Task) (bool, error) {
	if !isStaff(actor) {
		return false, nil
	}
	team, err := s.teamRepo.FindByID(task.TeamID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Orphaned by a deleted team; only the assigner and the super-admin keep control.
			return actor.Role == models.RoleSuperAdmin || task.AssignedBy == actor.ID, nil
		}
		return false, fmt.Errorf("failed to find team: %w", err)
	}
	return canManageTeam(actor, team), nil
}

// affectedInterns returns the interns whose progress counts the task.
func (s *TaskService) affectedInterns(task *models.Task) ([]uint64, error) {
	if !task.IsTeamTask {
		if task.AssignedTo == nil {
			return nil, nil
		}
		return []uint64{*task.AssignedTo}, nil
	}

	intern := models.RoleIntern
	members, err := s.userRepo.List(repository.UserFilter{Role: &intern, TeamID: &task.TeamID})
	if err != nil {
		return nil, fmt.Errorf("failed to list team interns: %w", err)
	}
	return internIDs(members), nil
}

// sameStatus compares statuses treating todo and pending as one.
func sameStatus(a, b models.TaskStatus) bool {
	if a.NotStarted() && b.NotStarted() {
		return true
	}
	return a == b
}

func excluding(ids []uint64, drop uint64) []uint64 {
	out := make([]uint64, 0, len(ids))
	for _, id := range ids {
		if id != drop {
			out = append(out, id)
		}
	}
	return out
}
