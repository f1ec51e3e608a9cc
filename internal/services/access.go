package services

import (
	"errors"
	"fmt"

	"github.com/yukikurage/intern-management-api/internal/models"
	"github.com/yukikurage/intern-management-api/internal/repository"
	"gorm.io/gorm"
)

// canViewUser reports whether actor may read target's profile, progress
// and certificate. Admins see every intern; the super-admin sees everyone.
func canViewUser(actor, target *models.User) bool {
	switch {
	case actor.ID == target.ID:
		return true
	case actor.Role == models.RoleSuperAdmin:
		return true
	case actor.Role == models.RoleAdmin:
		return target.Role == models.RoleIntern
	}
	return false
}

// canManageTeam reports whether actor may change team or its content.
func canManageTeam(actor *models.User, team *models.Team) bool {
	return actor.Role == models.RoleSuperAdmin || team.AdminID == actor.ID
}

// isStaff reports whether the user is an admin or the super-admin.
func isStaff(u *models.User) bool {
	return u.Role == models.RoleAdmin || u.Role == models.RoleSuperAdmin
}

// resolveManagedTeam returns the given team, or the actor's own team when
// teamID is nil, after checking the actor manages it.
func resolveManagedTeam(teamRepo repository.TeamRepository, actor *models.User, teamID *uint64) (*models.Team, error) {
	if !isStaff(actor) {
		return nil, ErrPermissionDenied
	}
	if teamID == nil {
		teamID = actor.TeamID
	}
	if teamID == nil {
		return nil, ErrNoTeam
	}

	team, err := teamRepo.FindByID(*teamID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("failed to find team: %w", err)
	}
	if !canManageTeam(actor, team) {
		return nil, ErrPermissionDenied
	}
	return team, nil
}

// canManageUser reports whether actor may change target's attendance,
// dates, status or certificate. Admins manage only interns of the team they
// own; the super-admin manages everyone.
func canManageUser(teamRepo repository.TeamRepository, actor, target *models.User) (bool, error) {
	switch actor.Role {
	case models.RoleSuperAdmin:
		return true, nil
	case models.RoleAdmin:
	default:
		return false, nil
	}
	if target.Role != models.RoleIntern || target.TeamID == nil {
		return false, nil
	}

	team, err := teamRepo.FindByID(*target.TeamID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("failed to find team: %w", err)
	}
	return canManageTeam(actor, team), nil
}
