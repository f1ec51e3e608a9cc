package repository

import (
	"errors"
	"fmt"

	"github.com/yukikurage/intern-management-api/internal/models"
	"gorm.io/gorm"
)

// GormUserRepository is a GORM implementation of UserRepository
type GormUserRepository struct {
	db *gorm.DB
}

var (
	// ErrCreateUser is returned when creating a user fails inside the provisioning transaction.
	ErrCreateUser = errors.New("user repository: create user failed")
	// ErrCreateCertificate is returned when creating the intern's certificate fails inside the provisioning transaction.
	ErrCreateCertificate = errors.New("user repository: create certificate failed")
)

// NewUserRepository creates a new UserRepository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &GormUserRepository{db: db}
}

// Create creates a new user
func (r *GormUserRepository) Create(user *models.User) error {
	return r.db.Create(user).Error
}

// CreateWithCertificate creates a user and, for interns, an unissued certificate atomically.
func (r *GormUserRepository) CreateWithCertificate(user *models.User) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(user).Error; err != nil {
			return fmt.Errorf("%w: %v", ErrCreateUser, err)
		}

		if user.Role != models.RoleIntern {
			return nil
		}

		cert := &models.Certificate{UserID: user.ID}
		if err := tx.Create(cert).Error; err != nil {
			return fmt.Errorf("%w: %v", ErrCreateCertificate, err)
		}
		user.Certificate = cert

		return nil
	})
}

// FindByID finds a user by ID
func (r *GormUserRepository) FindByID(id uint64) (*models.User, error) {
	var user models.User
	if err := r.db.First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByUsername finds a user by username
func (r *GormUserRepository) FindByUsername(username string) (*models.User, error) {
	var user models.User
	if err := r.db.Where("username = ?", username).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// List retrieves users matching the filter
func (r *GormUserRepository) List(filter UserFilter) ([]models.User, error) {
	query := r.db.Model(&models.User{})

	if filter.Role != nil {
		query = query.Where("role = ?", *filter.Role)
	}
	if filter.TeamID != nil {
		query = query.Where("team_id = ?", *filter.TeamID)
	}
	if filter.ActiveOnly {
		query = query.Where("is_active = ?", true)
	}

	var users []models.User
	if err := query.Order("id ASC").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// Update writes the given columns to the user row
func (r *GormUserRepository) Update(id uint64, columns map[string]interface{}) error {
	if len(columns) == 0 {
		return nil
	}
	return r.db.Model(&models.User{}).Where("id = ?", id).Updates(columns).Error
}

// IncrementAttendance atomically adds one attended day
func (r *GormUserRepository) IncrementAttendance(id uint64) error {
	result := r.db.Model(&models.User{}).
		Where("id = ?", id).
		UpdateColumn("attendance_count", gorm.Expr("attendance_count + ?", 1))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// SetProgress persists a recomputed progress value
func (r *GormUserRepository) SetProgress(id uint64, progress int) error {
	return r.db.Model(&models.User{}).
		Where("id = ?", id).
		UpdateColumn("progress", progress).Error
}

// Deactivate flips is_active to false and reports whether this call changed the row
func (r *GormUserRepository) Deactivate(id uint64) (bool, error) {
	result := r.db.Model(&models.User{}).
		Where("id = ? AND is_active = ?", id, true).
		UpdateColumn("is_active", false)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// ExistingUsernames returns the subset of usernames already taken
func (r *GormUserRepository) ExistingUsernames(usernames []string) (map[string]bool, error) {
	existing := make(map[string]bool, len(usernames))
	if len(usernames) == 0 {
		return existing, nil
	}

	var found []string
	if err := r.db.Model(&models.User{}).
		Where("username IN ?", usernames).
		Pluck("username", &found).Error; err != nil {
		return nil, err
	}
	for _, u := range found {
		existing[u] = true
	}
	return existing, nil
}
