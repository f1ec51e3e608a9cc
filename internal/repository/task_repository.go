package repository

import (
	"github.com/yukikurage/intern-management-api/internal/database"
	"github.com/yukikurage/intern-management-api/internal/models"
	"gorm.io/gorm"
)

// GormTaskRepository is a GORM implementation of TaskRepository
type GormTaskRepository struct {
	db *gorm.DB
}

// NewTaskRepository creates a new TaskRepository
func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &GormTaskRepository{db: db}
}

// Create creates a new task
func (r *GormTaskRepository) Create(task *models.Task) error {
	return r.db.Create(task).Error
}

// FindByID finds a task by ID
func (r *GormTaskRepository) FindByID(id uint64) (*models.Task, error) {
	var task models.Task
	if err := r.db.First(&task, id).Error; err != nil {
		return nil, err
	}
	return &task, nil
}

// ListForUser lists the user's individual tasks plus the team tasks of their team
func (r *GormTaskRepository) ListForUser(userID uint64, teamID *uint64) ([]models.Task, error) {
	query := r.db.Model(&models.Task{})
	if teamID != nil {
		query = query.Where(
			r.db.Where("assigned_to = ?", userID).
				Or("team_id = ? AND is_team_task = ?", *teamID, true),
		)
	} else {
		query = query.Where("assigned_to = ?", userID)
	}

	var tasks []models.Task
	if err := query.Order("created_at DESC, id DESC").Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

// List retrieves tasks with filtering and pagination
func (r *GormTaskRepository) List(filter TaskFilter) ([]models.Task, int64, error) {
	var tasks []models.Task

	if !filter.AllTeams && len(filter.TeamIDs) == 0 {
		return []models.Task{}, 0, nil
	}

	query := r.db.Model(&models.Task{})
	if !filter.AllTeams {
		query = query.Where("tasks.team_id IN ?", filter.TeamIDs)
	}

	// Apply filters
	if filter.Status != nil {
		if filter.Status.NotStarted() {
			query = query.Where("tasks.status IN ?", []models.TaskStatus{models.TaskStatusTodo, models.TaskStatusPending})
		} else {
			query = query.Where("tasks.status = ?", *filter.Status)
		}
	}
	if filter.AssignedBy != nil {
		query = query.Where("tasks.assigned_by = ?", *filter.AssignedBy)
	}
	if filter.AssignedTo != nil {
		query = query.Where("tasks.assigned_to = ?", *filter.AssignedTo)
	}
	if filter.DueDateFrom != nil {
		query = query.Where("tasks.due_date >= ?", *filter.DueDateFrom)
	}
	if filter.DueDateTo != nil {
		query = query.Where("tasks.due_date < ?", *filter.DueDateTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	listQuery := query
	if filter.SortByDueDate {
		listQuery = listQuery.Order("CASE WHEN tasks.due_date IS NULL THEN 1 ELSE 0 END, tasks.due_date ASC")
	} else {
		listQuery = listQuery.Order("tasks.created_at DESC, tasks.id DESC")
	}

	if err := listQuery.Scopes(database.Paginate(filter.Page, filter.PageSize)).Find(&tasks).Error; err != nil {
		return nil, 0, err
	}

	return tasks, total, nil
}

// Update updates a task
func (r *GormTaskRepository) Update(task *models.Task) error {
	return r.db.Save(task).Error
}

// Delete soft deletes a task
func (r *GormTaskRepository) Delete(id uint64) error {
	return r.db.Delete(&models.Task{}, id).Error
}
