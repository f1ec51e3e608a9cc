package repository

import (
	"github.com/yukikurage/intern-management-api/internal/models"
	"gorm.io/gorm"
)

// GormResourceRepository is a GORM implementation of ResourceRepository
type GormResourceRepository struct {
	db *gorm.DB
}

// NewResourceRepository creates a new ResourceRepository
func NewResourceRepository(db *gorm.DB) ResourceRepository {
	return &GormResourceRepository{db: db}
}

// Create creates a new resource
func (r *GormResourceRepository) Create(resource *models.Resource) error {
	return r.db.Create(resource).Error
}

// FindByID finds a resource by ID
func (r *GormResourceRepository) FindByID(id uint64) (*models.Resource, error) {
	var resource models.Resource
	if err := r.db.First(&resource, id).Error; err != nil {
		return nil, err
	}
	return &resource, nil
}

// List lists resources, newest first
func (r *GormResourceRepository) List(teamID *uint64, resourceType *models.ResourceType) ([]models.Resource, error) {
	query := r.db.Model(&models.Resource{})
	if teamID != nil {
		query = query.Where("team_id = ?", *teamID)
	}
	if resourceType != nil {
		query = query.Where("type = ?", *resourceType)
	}

	var resources []models.Resource
	if err := query.Order("created_at DESC, id DESC").Find(&resources).Error; err != nil {
		return nil, err
	}
	return resources, nil
}
