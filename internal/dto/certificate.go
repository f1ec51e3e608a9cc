package dto

import (
	"github.com/yukikurage/intern-management-api/internal/clock"
	"github.com/yukikurage/intern-management-api/internal/models"
)

// CertificateDTO represents a certificate in API responses
type CertificateDTO struct {
	ID             uint64          `json:"id"`
	UserID         uint64          `json:"user_id"`
	IsGenerated    bool            `json:"is_generated"`
	IssuedDate     string          `json:"issued_date"`
	CertificateURL string          `json:"certificate_url"`
	Serial         string          `json:"serial,omitempty"`
	Intern         *UserSummaryDTO `json:"intern,omitempty"`
}

// CertificateDocumentDTO is the data a client renders as the printable
// certificate.
type CertificateDocumentDTO struct {
	CertificateID  uint64 `json:"certificate_id"`
	Serial         string `json:"serial"`
	InternName     string `json:"intern_name"`
	Department     string `json:"department"`
	StartDate      string `json:"start_date"`
	EndDate        string `json:"end_date"`
	IssuedDate     string `json:"issued_date"`
	Progress       int    `json:"progress"`
	CompletedTasks int    `json:"completed_tasks"`
	TotalTasks     int    `json:"total_tasks"`
	AttendanceDays int    `json:"attendance_days"`
}

func ToCertificateDTO(cert models.Certificate) CertificateDTO {
	dto := CertificateDTO{
		ID:             cert.ID,
		UserID:         cert.UserID,
		IsGenerated:    cert.IsGenerated,
		IssuedDate:     clock.FormatDate(cert.IssuedDate),
		CertificateURL: cert.CertificateURL,
		Serial:         cert.Serial,
	}
	if cert.User.ID != 0 {
		intern := ToUserSummaryDTO(cert.User)
		dto.Intern = &intern
	}
	return dto
}

func ToCertificateDTOs(certs []models.Certificate) []CertificateDTO {
	dtos := make([]CertificateDTO, len(certs))
	for i, c := range certs {
		dtos[i] = ToCertificateDTO(c)
	}
	return dtos
}

// ToCertificateDocumentDTO flattens an issued certificate and its intern.
func ToCertificateDocumentDTO(cert models.Certificate, intern models.User, completed, total int) CertificateDocumentDTO {
	return CertificateDocumentDTO{
		CertificateID:  cert.ID,
		Serial:         cert.Serial,
		InternName:     intern.Name,
		Department:     intern.Department,
		StartDate:      clock.FormatDate(intern.StartDate),
		EndDate:        clock.FormatDate(intern.EndDate),
		IssuedDate:     clock.FormatDate(cert.IssuedDate),
		Progress:       intern.Progress,
		CompletedTasks: completed,
		TotalTasks:     total,
		AttendanceDays: intern.AttendanceCount,
	}
}
