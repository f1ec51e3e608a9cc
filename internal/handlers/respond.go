package handlers

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/intern-management-api/internal/clock"
	apierrors "github.com/yukikurage/intern-management-api/internal/errors"
	"github.com/yukikurage/intern-management-api/internal/middleware"
	"github.com/yukikurage/intern-management-api/internal/models"
	"github.com/yukikurage/intern-management-api/internal/services"
	"gorm.io/datatypes"
)

// respondError maps a service error onto an API error response. Errors that
// do not map to a client fault are attached to the context for the request
// logger and reported as 500.
func respondError(c *gin.Context, err error) {
	var ve *services.ValidationError
	if errors.As(err, &ve) {
		apierrors.ValidationFailed(c, ve.Fields)
		return
	}

	switch {
	case errors.Is(err, services.ErrInvalidCredentials):
		apierrors.InvalidCredentials(c, err.Error())
	case errors.Is(err, services.ErrAccountInactive):
		apierrors.AccountInactive(c, err.Error())
	case errors.Is(err, services.ErrPermissionDenied):
		apierrors.Forbidden(c, "")
	case errors.Is(err, services.ErrUserNotFound),
		errors.Is(err, services.ErrTeamNotFound),
		errors.Is(err, services.ErrTaskNotFound),
		errors.Is(err, services.ErrResourceNotFound),
		errors.Is(err, services.ErrCertificateNotFound),
		errors.Is(err, services.ErrNotificationNotFound):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, services.ErrUsernameTaken):
		apierrors.AlreadyExists(c, err.Error())
	case errors.Is(err, services.ErrAdminAlreadyOwns),
		errors.Is(err, services.ErrAlreadyInTeam),
		errors.Is(err, services.ErrInternInactive),
		errors.Is(err, services.ErrCertificateNotIssued):
		apierrors.Conflict(c, err.Error())
	case errors.Is(err, services.ErrInvalidTeamName),
		errors.Is(err, services.ErrNotTeamMember),
		errors.Is(err, services.ErrTitleEmpty),
		errors.Is(err, services.ErrInvalidTaskAssignee),
		errors.Is(err, services.ErrNoTeam),
		errors.Is(err, services.ErrAINoTasksGenerated),
		errors.Is(err, services.ErrAINoValidTasks):
		apierrors.BadRequest(c, err.Error())
	case errors.Is(err, services.ErrAIServiceNotConfigured):
		apierrors.ServiceUnavailable(c, err.Error())
	default:
		_ = c.Error(err)
		apierrors.InternalError(c, "")
	}
}

// currentUser returns the authenticated account or writes a 401.
func currentUser(c *gin.Context) (*models.User, bool) {
	user, ok := middleware.GetCurrentUser(c)
	if !ok {
		apierrors.Unauthorized(c, "Not authenticated")
		return nil, false
	}
	return user, true
}

// parseIDParam reads a numeric path parameter or writes a 400.
func parseIDParam(c *gin.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid "+name)
		return 0, false
	}
	return id, true
}

// parseOptionalUint reads an optional numeric query parameter.
func parseOptionalUint(c *gin.Context, name string) (*uint64, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	v, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid "+name)
		return nil, false
	}
	return &v, true
}

// parseDate converts an optional YYYY-MM-DD string. An empty string is
// treated as absent.
func parseDate(field string, value *string) (*datatypes.Date, error) {
	if value == nil || *value == "" {
		return nil, nil
	}
	d, err := clock.ParseDate(*value)
	if err != nil {
		return nil, &services.ValidationError{Fields: map[string]string{
			field: "must be a date in YYYY-MM-DD format",
		}}
	}
	return &d, nil
}
