package dto

import (
	"time"

	"github.com/yukikurage/intern-management-api/internal/models"
)

// ResourceDTO represents a resource or meeting link in API responses
type ResourceDTO struct {
	ID          uint64              `json:"id"`
	Title       string              `json:"title"`
	Type        models.ResourceType `json:"type"`
	Link        string              `json:"link,omitempty"`
	FileURL     string              `json:"file_url,omitempty"`
	Description string              `json:"description,omitempty"`
	UploadedBy  uint64              `json:"uploaded_by"`
	TeamID      uint64              `json:"team_id"`
	CreatedAt   time.Time           `json:"created_at"`
}

type CreateResourceRequest struct {
	Title       string              `json:"title" binding:"required"`
	Type        models.ResourceType `json:"type" binding:"required"`
	Link        string              `json:"link"`
	FileURL     string              `json:"file_url"`
	Description string              `json:"description"`
	TeamID      *uint64             `json:"team_id"`
}

func ToResourceDTO(r models.Resource) ResourceDTO {
	return ResourceDTO{
		ID:          r.ID,
		Title:       r.Title,
		Type:        r.Type,
		Link:        r.Link,
		FileURL:     r.FileURL,
		Description: r.Description,
		UploadedBy:  r.UploadedBy,
		TeamID:      r.TeamID,
		CreatedAt:   r.CreatedAt,
	}
}

func ToResourceDTOs(resources []models.Resource) []ResourceDTO {
	dtos := make([]ResourceDTO, len(resources))
	for i, r := range resources {
		dtos[i] = ToResourceDTO(r)
	}
	return dtos
}
