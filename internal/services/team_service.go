package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/yukikurage/intern-management-api/internal/models"
	"github.com/yukikurage/intern-management-api/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrInvalidTeamName  = errors.New("team name cannot be empty")
	ErrAdminAlreadyOwns = errors.New("admin already owns a team")
	ErrNotTeamMember    = errors.New("user is not a member of this team")
	ErrAlreadyInTeam    = errors.New("user already belongs to a team")
)

// TeamService provides business logic for team operations.
type TeamService struct {
	teamRepo  repository.TeamRepository
	userRepo  repository.UserRepository
	refresher *InternRefresher
	logger    *slog.Logger
}

// NewTeamService creates a new TeamService.
func NewTeamService(teamRepo repository.TeamRepository, userRepo repository.UserRepository, refresher *InternRefresher, logger *slog.Logger) *TeamService {
	return &TeamService{
		teamRepo:  teamRepo,
		userRepo:  userRepo,
		refresher: refresher,
		logger:    logger,
	}
}

// CreateTeamInput represents parameters to create a new team.
// AdminID is only honoured for the super-admin; admins always own the
// teams they create.
type CreateTeamInput struct {
	Name    string
	AdminID *uint64
}

// CreateTeam creates a new team owned by an admin.
func (s *TeamService) CreateTeam(ctx context.Context, actor *models.User, input CreateTeamInput) (*models.Team, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrInvalidTeamName
	}

	adminID := actor.ID
	switch actor.Role {
	case models.RoleAdmin:
	case models.RoleSuperAdmin:
		if input.AdminID == nil {
			return nil, newValidationError("admin_id", "is required")
		}
		admin, err := s.userRepo.FindByID(*input.AdminID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrUserNotFound
			}
			return nil, fmt.Errorf("failed to find admin: %w", err)
		}
		if admin.Role != models.RoleAdmin {
			return nil, newValidationError("admin_id", "must reference an admin")
		}
		adminID = admin.ID
	default:
		return nil, ErrPermissionDenied
	}

	if _, err := s.teamRepo.FindByAdmin(adminID); err == nil {
		return nil, ErrAdminAlreadyOwns
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check admin team: %w", err)
	}

	team := &models.Team{
		Name:    name,
		AdminID: adminID,
	}
	if err := s.teamRepo.Create(team); err != nil {
		return nil, fmt.Errorf("failed to create team: %w", err)
	}

	s.logger.InfoContext(ctx, "team created", "team_id", team.ID, "admin_id", adminID)
	return team, nil
}

// ListTeams returns every team for the super-admin and the caller's own
// team for everyone else.
func (s *TeamService) ListTeams(actor *models.User) ([]models.Team, error) {
	if actor.Role == models.RoleSuperAdmin {
		teams, err := s.teamRepo.List()
		if err != nil {
			return nil, fmt.Errorf("failed to list teams: %w", err)
		}
		return teams, nil
	}

	if actor.TeamID == nil {
		return []models.Team{}, nil
	}
	team, err := s.teamRepo.FindByID(*actor.TeamID, "Admin")
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return []models.Team{}, nil
		}
		return nil, fmt.Errorf("failed to find team: %w", err)
	}
	return []models.Team{*team}, nil
}

// GetTeamWithMembers returns a team and all of its members.
func (s *TeamService) GetTeamWithMembers(actor *models.User, teamID uint64) (*models.Team, error) {
	team, err := s.teamRepo.FindByID(teamID, "Admin", "Members")
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("failed to find team: %w", err)
	}

	member := actor.TeamID != nil && *actor.TeamID == team.ID
	if !member && !canManageTeam(actor, team) {
		return nil, ErrPermissionDenied
	}
	return team, nil
}

// UpdateTeamName updates a team's name.
func (s *TeamService) UpdateTeamName(actor *models.User, teamID uint64, name string) (*models.Team, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrInvalidTeamName
	}

	team, err := s.findManaged(actor, teamID)
	if err != nil {
		return nil, err
	}

	team.Name = name
	if err := s.teamRepo.Update(team); err != nil {
		return nil, fmt.Errorf("failed to update team: %w", err)
	}
	return team, nil
}

// DeleteTeam removes a team and detaches its members.
func (s *TeamService) DeleteTeam(ctx context.Context, actor *models.User, teamID uint64) error {
	team, err := s.findManaged(actor, teamID)
	if err != nil {
		return err
	}

	members, err := s.userRepo.List(repository.UserFilter{TeamID: &team.ID})
	if err != nil {
		return fmt.Errorf("failed to list team members: %w", err)
	}

	if err := s.teamRepo.Delete(team.ID); err != nil {
		return fmt.Errorf("failed to delete team: %w", err)
	}

	// Team tasks no longer count towards the former members.
	s.refresher.RefreshAll(ctx, internIDs(members))
	s.logger.InfoContext(ctx, "team deleted", "team_id", team.ID, "actor_id", actor.ID)
	return nil
}

// AddMember attaches an intern to the team and refreshes their progress,
// since the team's tasks now count towards it.
func (s *TeamService) AddMember(ctx context.Context, actor *models.User, teamID, userID uint64) error {
	team, err := s.findManaged(actor, teamID)
	if err != nil {
		return err
	}

	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to find user: %w", err)
	}
	if user.Role != models.RoleIntern {
		return newValidationError("user_id", "only interns can be added to a team")
	}
	if user.TeamID != nil {
		if *user.TeamID == team.ID {
			return nil
		}
		return ErrAlreadyInTeam
	}

	if err := s.teamRepo.SetMember(user.ID, &team.ID); err != nil {
		return fmt.Errorf("failed to add team member: %w", err)
	}

	s.refresher.RefreshAll(ctx, []uint64{user.ID})
	return nil
}

// RemoveMember detaches an intern from the team.
func (s *TeamService) RemoveMember(ctx context.Context, actor *models.User, teamID, userID uint64) error {
	team, err := s.findManaged(actor, teamID)
	if err != nil {
		return err
	}

	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to find user: %w", err)
	}
	if user.TeamID == nil || *user.TeamID != team.ID {
		return ErrNotTeamMember
	}
	if user.ID == team.AdminID {
		return newValidationError("user_id", "the team admin cannot be removed")
	}

	if err := s.teamRepo.SetMember(user.ID, nil); err != nil {
		return fmt.Errorf("failed to remove team member: %w", err)
	}

	s.refresher.RefreshAll(ctx, []uint64{user.ID})
	return nil
}

// findManaged loads a team the actor is allowed to manage.
func (s *TeamService) findManaged(actor *models.User, teamID uint64) (*models.Team, error) {
	team, err := s.teamRepo.FindByID(teamID)
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

// internIDs returns the ids of the interns among users.
func internIDs(users []models.User) []uint64 {
	ids := make([]uint64, 0, len(users))
	for _, u := range users {
		if u.Role == models.RoleIntern {
			ids = append(ids, u.ID)
		}
	}
	return ids
}
