package dto

import (
	"time"

	"github.com/yukikurage/intern-management-api/internal/models"
)

// TeamDTO represents a team in API responses
type TeamDTO struct {
	ID        uint64           `json:"id"`
	Name      string           `json:"name"`
	AdminID   uint64           `json:"admin_id"`
	Admin     *UserSummaryDTO  `json:"admin,omitempty"`
	Members   []UserSummaryDTO `json:"members,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
}

type CreateTeamRequest struct {
	Name    string  `json:"name" binding:"required"`
	AdminID *uint64 `json:"admin_id"`
}

type UpdateTeamRequest struct {
	Name string `json:"name" binding:"required"`
}

type AddMemberRequest struct {
	UserID uint64 `json:"user_id" binding:"required"`
}

// ToTeamDTO converts a Team model; the admin and members are included only
// when they were preloaded.
func ToTeamDTO(team models.Team) TeamDTO {
	dto := TeamDTO{
		ID:        team.ID,
		Name:      team.Name,
		AdminID:   team.AdminID,
		CreatedAt: team.CreatedAt,
	}
	if team.Admin.ID != 0 {
		admin := ToUserSummaryDTO(team.Admin)
		dto.Admin = &admin
	}
	if len(team.Members) > 0 {
		dto.Members = make([]UserSummaryDTO, len(team.Members))
		for i, m := range team.Members {
			dto.Members[i] = ToUserSummaryDTO(m)
		}
	}
	return dto
}

func ToTeamDTOs(teams []models.Team) []TeamDTO {
	dtos := make([]TeamDTO, len(teams))
	for i, t := range teams {
		dtos[i] = ToTeamDTO(t)
	}
	return dtos
}
