package middleware

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/intern-management-api/internal/constants"
	apierrors "github.com/yukikurage/intern-management-api/internal/errors"
	"github.com/yukikurage/intern-management-api/internal/models"
	"github.com/yukikurage/intern-management-api/internal/services"
)

// TeamFinder loads a team with its members on behalf of an actor.
type TeamFinder interface {
	GetTeamWithMembers(actor *models.User, teamID uint64) (*models.Team, error)
}

// RequireTeamAccess loads the team named by the :id parameter into the
// context, rejecting callers outside the team.
func RequireTeamAccess(teams TeamFinder) gin.HandlerFunc {
	return func(c *gin.Context) {
		teamID, err := strconv.ParseUint(c.Param("id"), 10, 64)
		if err != nil {
			apierrors.BadRequest(c, "Invalid team ID")
			c.Abort()
			return
		}

		user, ok := GetCurrentUser(c)
		if !ok {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}

		team, err := teams.GetTeamWithMembers(user, teamID)
		switch {
		case err == nil:
		case errors.Is(err, services.ErrTeamNotFound):
			apierrors.NotFound(c, "Team not found")
			c.Abort()
			return
		case errors.Is(err, services.ErrPermissionDenied):
			apierrors.Forbidden(c, "You are not a member of this team")
			c.Abort()
			return
		default:
			apierrors.InternalError(c, "")
			c.Abort()
			return
		}

		c.Set(constants.ContextKeyTeam, team)
		c.Next()
	}
}

// GetTeam retrieves the team loaded by RequireTeamAccess.
func GetTeam(c *gin.Context) (*models.Team, bool) {
	v, exists := c.Get(constants.ContextKeyTeam)
	if !exists {
		return nil, false
	}
	team, ok := v.(*models.Team)
	return team, ok
}
