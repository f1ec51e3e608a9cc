package repository

import (
	"github.com/yukikurage/intern-management-api/internal/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// GormCertificateRepository is a GORM implementation of CertificateRepository
type GormCertificateRepository struct {
	db *gorm.DB
}

// NewCertificateRepository creates a new CertificateRepository
func NewCertificateRepository(db *gorm.DB) CertificateRepository {
	return &GormCertificateRepository{db: db}
}

// Create creates a new certificate
func (r *GormCertificateRepository) Create(cert *models.Certificate) error {
	return r.db.Create(cert).Error
}

// FindByID finds a certificate by ID
func (r *GormCertificateRepository) FindByID(id uint64) (*models.Certificate, error) {
	var cert models.Certificate
	if err := r.db.First(&cert, id).Error; err != nil {
		return nil, err
	}
	return &cert, nil
}

// FindByUser finds the certificate belonging to a user
func (r *GormCertificateRepository) FindByUser(userID uint64) (*models.Certificate, error) {
	var cert models.Certificate
	if err := r.db.Where("user_id = ?", userID).First(&cert).Error; err != nil {
		return nil, err
	}
	return &cert, nil
}

// List lists certificates with their users, optionally limited to a team
func (r *GormCertificateRepository) List(teamID *uint64) ([]models.Certificate, error) {
	query := r.db.Model(&models.Certificate{}).Select("certificates.*").Preload("User")
	if teamID != nil {
		query = query.Joins("JOIN users ON users.id = certificates.user_id").
			Where("users.team_id = ?", *teamID)
	}

	var certs []models.Certificate
	if err := query.Order("certificates.id ASC").Find(&certs).Error; err != nil {
		return nil, err
	}
	return certs, nil
}

// MarkIssued flips is_generated from false to true in a single conditional update
func (r *GormCertificateRepository) MarkIssued(id uint64, issuedDate datatypes.Date, url, serial string) (bool, error) {
	result := r.db.Model(&models.Certificate{}).
		Where("id = ? AND is_generated = ?", id, false).
		Updates(map[string]interface{}{
			"is_generated":    true,
			"issued_date":     issuedDate,
			"certificate_url": url,
			"serial":          serial,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}
