package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/yukikurage/intern-management-api/internal/models"
	"github.com/yukikurage/intern-management-api/internal/progress"
	"github.com/yukikurage/intern-management-api/internal/repository"
	"gorm.io/gorm"
)

// ProgressService recomputes and persists intern progress.
type ProgressService struct {
	userRepo repository.UserRepository
	taskRepo repository.TaskRepository
	policy   progress.Policy
}

// NewProgressService creates a new ProgressService.
func NewProgressService(userRepo repository.UserRepository, taskRepo repository.TaskRepository, policy progress.Policy) *ProgressService {
	return &ProgressService{
		userRepo: userRepo,
		taskRepo: taskRepo,
		policy:   policy.Normalize(),
	}
}

// Policy returns the formula constants in use.
func (s *ProgressService) Policy() progress.Policy {
	return s.policy
}

// Recompute reloads the intern's tasks and attendance, stores the new
// progress value and returns it.
func (s *ProgressService) Recompute(ctx context.Context, userID uint64) (int, error) {
	user, tasks, err := s.load(userID)
	if err != nil {
		return 0, err
	}

	value := s.policy.Compute(progress.Count(tasks), user.AttendanceCount)
	if err := s.userRepo.SetProgress(user.ID, value); err != nil {
		return 0, fmt.Errorf("failed to store progress: %w", err)
	}

	return value, nil
}

// Summary returns the dashboard view of an intern's standing without
// writing anything.
func (s *ProgressService) Summary(userID uint64) (*progress.Summary, error) {
	user, tasks, err := s.load(userID)
	if err != nil {
		return nil, err
	}

	summary := s.policy.Summarize(tasks, user.AttendanceCount)
	return &summary, nil
}

// load fetches an intern and every task counting towards their progress.
func (s *ProgressService) load(userID uint64) (*models.User, []models.Task, error) {
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrUserNotFound
		}
		return nil, nil, fmt.Errorf("failed to find user: %w", err)
	}

	if user.Role != models.RoleIntern {
		return nil, nil, newValidationError("user_id", "progress is only tracked for interns")
	}

	tasks, err := s.taskRepo.ListForUser(user.ID, user.TeamID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list tasks: %w", err)
	}

	return user, tasks, nil
}
