package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/yukikurage/intern-management-api/internal/constants"
	"github.com/yukikurage/intern-management-api/internal/models"
	"github.com/yukikurage/intern-management-api/internal/repository"
	"github.com/yukikurage/intern-management-api/internal/utils"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var (
	ErrUsernameTaken  = errors.New("username already exists")
	ErrInternInactive = errors.New("intern is inactive")
)

// UserService manages accounts, intern profiles and attendance.
type UserService struct {
	userRepo  repository.UserRepository
	teamRepo  repository.TeamRepository
	refresher *InternRefresher
	logger    *slog.Logger
}

// NewUserService creates a new UserService.
func NewUserService(userRepo repository.UserRepository, teamRepo repository.TeamRepository, refresher *InternRefresher, logger *slog.Logger) *UserService {
	return &UserService{
		userRepo:  userRepo,
		teamRepo:  teamRepo,
		refresher: refresher,
		logger:    logger,
	}
}

// ProvisionUserInput describes a new account. An empty Password yields a
// generated temporary one.
type ProvisionUserInput struct {
	Username     string `validate:"required,min=3,max=100"`
	Password     string `validate:"omitempty,min=8"`
	Role         models.Role
	Name         string `validate:"required,max=255"`
	Email        string `validate:"required,email"`
	MobileNumber string `validate:"max=50"`
	Department   string `validate:"max=255"`
	TeamID       *uint64
	StartDate    *datatypes.Date
	EndDate      *datatypes.Date
}

// ProvisionResult carries the created user and the temporary password when
// one was generated.
type ProvisionResult struct {
	User              *models.User
	TemporaryPassword string
}

// Provision creates an account. Interns get an unissued certificate in the
// same transaction.
func (s *UserService) Provision(ctx context.Context, actor *models.User, input ProvisionUserInput) (*ProvisionResult, error) {
	input.Username = strings.TrimSpace(input.Username)
	input.Name = strings.TrimSpace(input.Name)
	input.Email = strings.TrimSpace(input.Email)
	if input.Role == "" {
		input.Role = models.RoleIntern
	}

	if err := validateInput(input); err != nil {
		return nil, err
	}
	if err := validateDates(input.StartDate, input.EndDate); err != nil {
		return nil, err
	}
	if err := s.checkProvisionRole(actor, input.Role); err != nil {
		return nil, err
	}

	teamID := input.TeamID
	if teamID == nil && actor.Role == models.RoleAdmin && input.Role == models.RoleIntern {
		teamID = actor.TeamID
	}
	if teamID != nil {
		team, err := s.teamRepo.FindByID(*teamID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrTeamNotFound
			}
			return nil, fmt.Errorf("failed to find team: %w", err)
		}
		if !canManageTeam(actor, team) {
			return nil, ErrPermissionDenied
		}
	}

	if _, err := s.userRepo.FindByUsername(input.Username); err == nil {
		return nil, ErrUsernameTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check username: %w", err)
	}

	result := &ProvisionResult{}
	password := input.Password
	if password == "" {
		generated, err := utils.GenerateTemporaryPassword()
		if err != nil {
			return nil, err
		}
		password = generated
		result.TemporaryPassword = generated
	}

	hashed, err := hashPassword(password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Username:     input.Username,
		PasswordHash: hashed,
		Role:         input.Role,
		Name:         input.Name,
		Email:        input.Email,
		MobileNumber: input.MobileNumber,
		Department:   input.Department,
		TeamID:       teamID,
		IsActive:     true,
		StartDate:    input.StartDate,
		EndDate:      input.EndDate,
	}

	if err := s.userRepo.CreateWithCertificate(user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.InfoContext(ctx, "user provisioned", "user_id", user.ID, "role", user.Role, "actor_id", actor.ID)
	result.User = user
	return result, nil
}

// checkProvisionRole enforces who may create which role: admins create
// interns, the super-admin creates interns and admins.
func (s *UserService) checkProvisionRole(actor *models.User, role models.Role) error {
	if !role.Valid() {
		return newValidationError("role", "must be one of [intern admin superadmin]")
	}
	switch actor.Role {
	case models.RoleSuperAdmin:
		if role == models.RoleSuperAdmin {
			return ErrPermissionDenied
		}
		return nil
	case models.RoleAdmin:
		if role != models.RoleIntern {
			return ErrPermissionDenied
		}
		return nil
	}
	return ErrPermissionDenied
}

// ImportedUser is one row that was imported.
type ImportedUser struct {
	Row               int    `json:"row"`
	UserID            uint64 `json:"user_id"`
	Username          string `json:"username"`
	TemporaryPassword string `json:"temporary_password,omitempty"`
}

// SkippedRow is one row that was not imported, with the reason.
type SkippedRow struct {
	Row      int    `json:"row"`
	Username string `json:"username"`
	Reason   string `json:"reason"`
}

// ImportReport summarises a bulk import.
type ImportReport struct {
	Imported []ImportedUser `json:"imported"`
	Skipped  []SkippedRow   `json:"skipped"`
}

// Import provisions interns in bulk. Rows without a username, name or email
// and rows whose username already exists are skipped, never failed.
func (s *UserService) Import(ctx context.Context, actor *models.User, rows []ProvisionUserInput) (*ImportReport, error) {
	if len(rows) == 0 {
		return nil, newValidationError("rows", "is required")
	}
	if len(rows) > constants.MaxImportRows {
		return nil, newValidationError("rows", fmt.Sprintf("must contain at most %d rows", constants.MaxImportRows))
	}
	if !isStaff(actor) {
		return nil, ErrPermissionDenied
	}

	usernames := make([]string, 0, len(rows))
	for _, row := range rows {
		if name := strings.TrimSpace(row.Username); name != "" {
			usernames = append(usernames, name)
		}
	}
	existing, err := s.userRepo.ExistingUsernames(usernames)
	if err != nil {
		return nil, fmt.Errorf("failed to check usernames: %w", err)
	}

	report := &ImportReport{
		Imported: []ImportedUser{},
		Skipped:  []SkippedRow{},
	}
	seen := make(map[string]bool, len(rows))

	for i, row := range rows {
		rowNumber := i + 1
		username := strings.TrimSpace(row.Username)

		if username == "" || strings.TrimSpace(row.Name) == "" || strings.TrimSpace(row.Email) == "" {
			report.Skipped = append(report.Skipped, SkippedRow{Row: rowNumber, Username: username, Reason: "missing username, name or email"})
			continue
		}
		if existing[username] || seen[username] {
			report.Skipped = append(report.Skipped, SkippedRow{Row: rowNumber, Username: username, Reason: "username already exists"})
			continue
		}
		seen[username] = true

		row.Role = models.RoleIntern
		result, err := s.Provision(ctx, actor, row)
		if err != nil {
			s.logger.WarnContext(ctx, "skipping import row", "row", rowNumber, "username", username, "error", err)
			report.Skipped = append(report.Skipped, SkippedRow{Row: rowNumber, Username: username, Reason: err.Error()})
			continue
		}

		report.Imported = append(report.Imported, ImportedUser{
			Row:               rowNumber,
			UserID:            result.User.ID,
			Username:          username,
			TemporaryPassword: result.TemporaryPassword,
		})
	}

	s.logger.InfoContext(ctx, "user import finished",
		"imported", len(report.Imported),
		"skipped", len(report.Skipped),
		"actor_id", actor.ID,
	)
	return report, nil
}

// Get returns a user visible to actor.
func (s *UserService) Get(actor *models.User, id uint64) (*models.User, error) {
	user, err := s.find(id)
	if err != nil {
		return nil, err
	}
	if !canViewUser(actor, user) {
		return nil, ErrPermissionDenied
	}
	return user, nil
}

// ListUsersInput represents filters for listing users
type ListUsersInput struct {
	Role       *models.Role
	TeamID     *uint64
	ActiveOnly bool
}

// List returns users visible to actor. Admins only ever see interns.
func (s *UserService) List(actor *models.User, input ListUsersInput) ([]models.User, error) {
	if !isStaff(actor) {
		return nil, ErrPermissionDenied
	}
	if input.Role != nil && !input.Role.Valid() {
		return nil, newValidationError("role", "must be one of [intern admin superadmin]")
	}

	filter := repository.UserFilter{
		Role:       input.Role,
		TeamID:     input.TeamID,
		ActiveOnly: input.ActiveOnly,
	}
	if actor.Role == models.RoleAdmin {
		intern := models.RoleIntern
		filter.Role = &intern
	}

	users, err := s.userRepo.List(filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

// UpdateUserInput lists every field a profile update may touch. Nil means
// unchanged; progress is derived and can never be set here.
type UpdateUserInput struct {
	Name         *string `validate:"omitempty,min=1,max=255"`
	Email        *string `validate:"omitempty,email"`
	MobileNumber *string `validate:"omitempty,max=50"`
	Department   *string `validate:"omitempty,max=255"`
	Password     *string `validate:"omitempty,min=8"`
	StartDate    *datatypes.Date
	EndDate      *datatypes.Date
	ClearEndDate bool
	IsActive     *bool
}

// Update applies a profile update. Users edit their own contact details and
// password; staff additionally manage dates and the active flag.
func (s *UserService) Update(ctx context.Context, actor *models.User, id uint64, input UpdateUserInput) (*models.User, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	user, err := s.find(id)
	if err != nil {
		return nil, err
	}

	self := actor.ID == user.ID
	staff, err := canManageUser(s.teamRepo, actor, user)
	if err != nil {
		return nil, err
	}
	if !self && !staff {
		return nil, ErrPermissionDenied
	}
	if !staff && (input.StartDate != nil || input.EndDate != nil || input.ClearEndDate || input.IsActive != nil) {
		return nil, ErrPermissionDenied
	}
	if input.ClearEndDate && input.EndDate != nil {
		return nil, newValidationError("end_date", "cannot set and clear the end date at once")
	}

	start, end := user.StartDate, user.EndDate
	if input.StartDate != nil {
		start = input.StartDate
	}
	if input.EndDate != nil {
		end = input.EndDate
	}
	if input.ClearEndDate {
		end = nil
	}
	if err := validateDates(start, end); err != nil {
		return nil, err
	}

	columns := map[string]interface{}{}
	if input.Name != nil {
		columns["name"] = strings.TrimSpace(*input.Name)
	}
	if input.Email != nil {
		columns["email"] = strings.TrimSpace(*input.Email)
	}
	if input.MobileNumber != nil {
		columns["mobile_number"] = *input.MobileNumber
	}
	if input.Department != nil {
		columns["department"] = *input.Department
	}
	if input.Password != nil {
		hashed, err := hashPassword(*input.Password)
		if err != nil {
			return nil, err
		}
		columns["password_hash"] = hashed
	}
	if input.StartDate != nil {
		columns["start_date"] = *input.StartDate
	}
	if input.EndDate != nil {
		columns["end_date"] = *input.EndDate
	}
	if input.ClearEndDate {
		columns["end_date"] = nil
	}
	if input.IsActive != nil {
		columns["is_active"] = *input.IsActive
	}

	if err := s.userRepo.Update(user.ID, columns); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	s.logger.DebugContext(ctx, "user updated", "user_id", user.ID, "fields", len(columns))
	return s.find(user.ID)
}

// MarkAttendance records one attended day for an intern, then recomputes
// their progress and re-checks certificate eligibility.
func (s *UserService) MarkAttendance(ctx context.Context, actor *models.User, id uint64) (*models.User, error) {
	user, err := s.find(id)
	if err != nil {
		return nil, err
	}
	if actor.ID != user.ID {
		allowed, err := canManageUser(s.teamRepo, actor, user)
		if err != nil {
			return nil, err
		}
		if !allowed {
			return nil, ErrPermissionDenied
		}
	}
	if user.Role != models.RoleIntern {
		return nil, newValidationError("user_id", "attendance is only tracked for interns")
	}
	if !user.IsActive {
		return nil, ErrInternInactive
	}

	if err := s.userRepo.IncrementAttendance(user.ID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to record attendance: %w", err)
	}

	if _, _, err := s.refresher.Refresh(ctx, user.ID); err != nil {
		return nil, err
	}

	return s.find(user.ID)
}

func (s *UserService) find(id uint64) (*models.User, error) {
	user, err := s.userRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return user, nil
}

// validateDates rejects an internship that ends before it starts.
func validateDates(start, end *datatypes.Date) error {
	if start == nil || end == nil {
		return nil
	}
	if time.Time(*end).Before(time.Time(*start)) {
		return newValidationError("end_date", "must not be before start_date")
	}
	return nil
}
