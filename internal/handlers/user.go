package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/intern-management-api/internal/dto"
	apierrors "github.com/yukikurage/intern-management-api/internal/errors"
	"github.com/yukikurage/intern-management-api/internal/models"
	"github.com/yukikurage/intern-management-api/internal/services"
)

// UserHandler serves intern and staff account endpoints.
type UserHandler struct {
	users    *services.UserService
	progress *services.ProgressService
}

func NewUserHandler(users *services.UserService, progress *services.ProgressService) *UserHandler {
	return &UserHandler{
		users:    users,
		progress: progress,
	}
}

// ListUsers returns the accounts visible to the caller
// Can filter by role, team_id and active_only
func (h *UserHandler) ListUsers(c *gin.Context) {
	actor, ok := currentUser(c)
	if !ok {
		return
	}

	var input services.ListUsersInput
	if raw := c.Query("role"); raw != "" {
		role := models.Role(raw)
		if !role.Valid() {
			apierrors.BadRequest(c, "Invalid role")
			return
		}
		input.Role = &role
	}
	teamID, ok := parseOptionalUint(c, "team_id")
	if !ok {
		return
	}
	input.TeamID = teamID
	input.ActiveOnly, _ = strconv.ParseBool(c.Query("active_only"))

	users, err := h.users.List(actor, input)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"users": dto.ToUserDTOs(users),
	})
}

// CreateUser provisions a single account
func (h *UserHandler) CreateUser(c *gin.Context) {
	actor, ok := currentUser(c)
	if !ok {
		return
	}

	var req dto.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	input, err := toProvisionInput(req, "")
	if err != nil {
		respondError(c, err)
		return
	}

	result, err := h.users.Provision(c.Request.Context(), actor, input)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.CreateUserResponse{
		User:              dto.ToUserDTO(*result.User),
		TemporaryPassword: result.TemporaryPassword,
	})
}

// ImportUsers provisions a batch of accounts and reports which rows were
// skipped.
func (h *UserHandler) ImportUsers(c *gin.Context) {
	actor, ok := currentUser(c)
	if !ok {
		return
	}

	var req dto.ImportUsersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	rows := make([]services.ProvisionUserInput, len(req.Users))
	for i, r := range req.Users {
		input, err := toProvisionInput(r, fmt.Sprintf("users[%d].", i))
		if err != nil {
			respondError(c, err)
			return
		}
		rows[i] = input
	}

	report, err := h.users.Import(c.Request.Context(), actor, rows)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}

// GetUser returns a single account
func (h *UserHandler) GetUser(c *gin.Context) {
	actor, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	user, err := h.users.Get(actor, id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToUserDTO(*user))
}

// UpdateUser patches profile fields
func (h *UserHandler) UpdateUser(c *gin.Context) {
	actor, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	start, err := parseDate("start_date", req.StartDate)
	if err != nil {
		respondError(c, err)
		return
	}
	end, err := parseDate("end_date", req.EndDate)
	if err != nil {
		respondError(c, err)
		return
	}

	user, err := h.users.Update(c.Request.Context(), actor, id, services.UpdateUserInput{
		Name:         req.Name,
		Email:        req.Email,
		MobileNumber: req.MobileNumber,
		Department:   req.Department,
		Password:     req.Password,
		StartDate:    start,
		EndDate:      end,
		ClearEndDate: req.EndDate != nil && *req.EndDate == "",
		IsActive:     req.IsActive,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToUserDTO(*user))
}

// MarkAttendance records one day of attendance for an intern
func (h *UserHandler) MarkAttendance(c *gin.Context) {
	actor, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	user, err := h.users.MarkAttendance(c.Request.Context(), actor, id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToUserDTO(*user))
}

// GetProgress returns the dashboard summary of an intern
func (h *UserHandler) GetProgress(c *gin.Context) {
	actor, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if _, err := h.users.Get(actor, id); err != nil {
		respondError(c, err)
		return
	}

	summary, err := h.progress.Summary(id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, summary)
}

func toProvisionInput(req dto.CreateUserRequest, prefix string) (services.ProvisionUserInput, error) {
	start, err := parseDate(prefix+"start_date", req.StartDate)
	if err != nil {
		return services.ProvisionUserInput{}, err
	}
	end, err := parseDate(prefix+"end_date", req.EndDate)
	if err != nil {
		return services.ProvisionUserInput{}, err
	}

	return services.ProvisionUserInput{
		Username:     req.Username,
		Password:     req.Password,
		Role:         req.Role,
		Name:         req.Name,
		Email:        req.Email,
		MobileNumber: req.MobileNumber,
		Department:   req.Department,
		TeamID:       req.TeamID,
		StartDate:    start,
		EndDate:      end,
	}, nil
}
