package repository

import (
	"github.com/yukikurage/intern-management-api/internal/models"
	"gorm.io/gorm"
)

// GormTeamRepository is a GORM implementation of TeamRepository
type GormTeamRepository struct {
	db *gorm.DB
}

// NewTeamRepository creates a new TeamRepository
func NewTeamRepository(db *gorm.DB) TeamRepository {
	return &GormTeamRepository{db: db}
}

// Create creates a new team and attaches the owning admin to it
func (r *GormTeamRepository) Create(team *models.Team) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(team).Error; err != nil {
			return err
		}

		return tx.Model(&models.User{}).
			Where("id = ?", team.AdminID).
			UpdateColumn("team_id", team.ID).Error
	})
}

// FindByID finds a team by ID with optional preloading
func (r *GormTeamRepository) FindByID(id uint64, preload ...string) (*models.Team, error) {
	var team models.Team
	query := r.db

	for _, p := range preload {
		query = query.Preload(p)
	}

	if err := query.First(&team, id).Error; err != nil {
		return nil, err
	}
	return &team, nil
}

// FindByAdmin finds the team owned by an admin
func (r *GormTeamRepository) FindByAdmin(adminID uint64) (*models.Team, error) {
	var team models.Team
	if err := r.db.Where("admin_id = ?", adminID).First(&team).Error; err != nil {
		return nil, err
	}
	return &team, nil
}

// List lists all teams with their admins
func (r *GormTeamRepository) List() ([]models.Team, error) {
	var teams []models.Team
	if err := r.db.Preload("Admin").Order("id ASC").Find(&teams).Error; err != nil {
		return nil, err
	}
	return teams, nil
}

// Update updates a team
func (r *GormTeamRepository) Update(team *models.Team) error {
	return r.db.Save(team).Error
}

// Delete detaches all members and soft deletes the team in a transaction
func (r *GormTeamRepository) Delete(id uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.User{}).
			Where("team_id = ?", id).
			UpdateColumn("team_id", nil).Error; err != nil {
			return err
		}

		return tx.Delete(&models.Team{}, id).Error
	})
}

// SetMember attaches a user to a team, or detaches them when teamID is nil
func (r *GormTeamRepository) SetMember(userID uint64, teamID *uint64) error {
	return r.db.Model(&models.User{}).
		Where("id = ?", userID).
		UpdateColumn("team_id", teamID).Error
}
