package dto

import (
	"time"

	"github.com/yukikurage/intern-management-api/internal/clock"
	"github.com/yukikurage/intern-management-api/internal/models"
)

// UserDTO represents a user in API responses
type UserDTO struct {
	ID              uint64      `json:"id"`
	Username        string      `json:"username"`
	Role            models.Role `json:"role"`
	Name            string      `json:"name"`
	Email           string      `json:"email"`
	MobileNumber    string      `json:"mobile_number"`
	Department      string      `json:"department"`
	TeamID          *uint64     `json:"team_id"`
	Progress        int         `json:"progress"`
	IsActive        bool        `json:"is_active"`
	AttendanceCount int         `json:"attendance_count"`
	StartDate       string      `json:"start_date"`
	EndDate         string      `json:"end_date"`
	CreatedAt       time.Time   `json:"created_at"`
}

// UserSummaryDTO is the compact form embedded in other resources
type UserSummaryDTO struct {
	ID       uint64      `json:"id"`
	Username string      `json:"username"`
	Name     string      `json:"name"`
	Role     models.Role `json:"role"`
}

// CreateUserRequest is the body of POST /api/users and one row of an import
type CreateUserRequest struct {
	Username     string      `json:"username"`
	Password     string      `json:"password"`
	Role         models.Role `json:"role"`
	Name         string      `json:"name"`
	Email        string      `json:"email"`
	MobileNumber string      `json:"mobile_number"`
	Department   string      `json:"department"`
	TeamID       *uint64     `json:"team_id"`
	StartDate    *string     `json:"start_date"`
	EndDate      *string     `json:"end_date"`
}

// ImportUsersRequest is the body of POST /api/users/import
type ImportUsersRequest struct {
	Users []CreateUserRequest `json:"users" binding:"required"`
}

// UpdateUserRequest carries the profile fields a caller may change. Absent
// fields are left untouched; an empty end_date makes the internship
// open-ended again.
type UpdateUserRequest struct {
	Name         *string `json:"name"`
	Email        *string `json:"email"`
	MobileNumber *string `json:"mobile_number"`
	Department   *string `json:"department"`
	Password     *string `json:"password"`
	StartDate    *string `json:"start_date"`
	EndDate      *string `json:"end_date"`
	IsActive     *bool   `json:"is_active"`
}

// CreateUserResponse returns the new account and, when one was generated,
// its temporary password.
type CreateUserResponse struct {
	User              UserDTO `json:"user"`
	TemporaryPassword string  `json:"temporary_password,omitempty"`
}

// ToUserDTO converts a User model to UserDTO
func ToUserDTO(user models.User) UserDTO {
	return UserDTO{
		ID:              user.ID,
		Username:        user.Username,
		Role:            user.Role,
		Name:            user.Name,
		Email:           user.Email,
		MobileNumber:    user.MobileNumber,
		Department:      user.Department,
		TeamID:          user.TeamID,
		Progress:        user.Progress,
		IsActive:        user.IsActive,
		AttendanceCount: user.AttendanceCount,
		StartDate:       clock.FormatDate(user.StartDate),
		EndDate:         clock.FormatDate(user.EndDate),
		CreatedAt:       user.CreatedAt,
	}
}

// ToUserDTOs converts a slice of users
func ToUserDTOs(users []models.User) []UserDTO {
	dtos := make([]UserDTO, len(users))
	for i, u := range users {
		dtos[i] = ToUserDTO(u)
	}
	return dtos
}

// ToUserSummaryDTO converts a User model to its compact form
func ToUserSummaryDTO(user models.User) UserSummaryDTO {
	return UserSummaryDTO{
		ID:       user.ID,
		Username: user.Username,
		Name:     user.Name,
		Role:     user.Role,
	}
}
