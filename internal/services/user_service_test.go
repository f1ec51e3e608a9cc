package services

import (
	"context"

	"github.com/yukikurage/intern-management-api/internal/clock"
	"github.com/yukikurage/intern-management-api/internal/models"
)

func (s *ServiceTestSuite) TestProvision_InternGetsCertificateAndTemporaryPassword() {
	ctx := context.Background()

	result, err := s.users.Provision(ctx, s.admin, ProvisionUserInput{
		Username: "sarah",
		Name:     "Sarah Johnson",
		Email:    "sarah.johnson@example.com",
	})
	s.Require().NoError(err)
	s.NotEmpty(result.TemporaryPassword)
	s.Equal(models.RoleIntern, result.User.Role)
	s.Require().NotNil(result.User.TeamID)
	s.Equal(s.team.ID, *result.User.TeamID)

	cert, err := s.certRepo.FindByUser(result.User.ID)
	s.Require().NoError(err)
	s.False(cert.IsGenerated)

	user, err := s.auth.Login(LoginInput{Username: "sarah", Password: result.TemporaryPassword})
	s.Require().NoError(err)
	s.Equal(result.User.ID, user.ID)
	s.NotEqual(result.TemporaryPassword, user.PasswordHash)
}

func (s *ServiceTestSuite) TestProvision_Rules() {
	ctx := context.Background()

	_, err := s.users.Provision(ctx, s.admin, ProvisionUserInput{Username: "boss", Name: "Boss", Email: "boss@example.com", Role: models.RoleAdmin})
	s.ErrorIs(err, ErrPermissionDenied)

	result, err := s.users.Provision(ctx, s.superAdmin, ProvisionUserInput{Username: "boss", Name: "Boss", Email: "boss@example.com", Role: models.RoleAdmin, Password: "longenough"})
	s.Require().NoError(err)
	s.Empty(result.TemporaryPassword)
	_, err = s.certRepo.FindByUser(result.User.ID)
	s.Error(err)

	_, err = s.users.Provision(ctx, s.superAdmin, ProvisionUserInput{Username: "boss", Name: "Boss 2", Email: "boss2@example.com"})
	s.ErrorIs(err, ErrUsernameTaken)

	_, err = s.users.Provision(ctx, s.admin, ProvisionUserInput{Username: "x", Name: "X", Email: "not-an-email"})
	s.Require().True(IsValidationError(err))
	var ve *ValidationError
	s.ErrorAs(err, &ve)
	s.Contains(ve.Fields, "username")
	s.Contains(ve.Fields, "email")

	start, _ := clock.ParseDate("2024-09-01")
	end, _ := clock.ParseDate("2024-06-01")
	_, err = s.users.Provision(ctx, s.admin, ProvisionUserInput{Username: "backwards", Name: "B", Email: "b@example.com", StartDate: &start, EndDate: &end})
	s.True(IsValidationError(err))

	intern := s.createIntern("intern", 0)
	_, err = s.users.Provision(ctx, intern, ProvisionUserInput{Username: "friend", Name: "F", Email: "f@example.com"})
	s.ErrorIs(err, ErrPermissionDenied)
}

func (s *ServiceTestSuite) TestImport_SkipsIncompleteAndExistingRows() {
	s.createIntern("existing", 0)

	report, err := s.users.Import(context.Background(), s.admin, []ProvisionUserInput{
		{Username: "john_doe", Name: "John Doe", Email: "john.doe@example.com", Department: "Marketing"},
		{Username: "existing", Name: "Again", Email: "again@example.com"},
		{Username: "no_email", Name: "No Email"},
		{Username: "alice_smith", Name: "Alice Smith", Email: "alice.smith@example.com"},
		{Username: "alice_smith", Name: "Alice Twin", Email: "alice.twin@example.com"},
	})
	s.Require().NoError(err)

	s.Require().Len(report.Imported, 2)
	s.Equal("john_doe", report.Imported[0].Username)
	s.NotEmpty(report.Imported[0].TemporaryPassword)
	s.Equal(4, report.Imported[1].Row)

	s.Require().Len(report.Skipped, 3)
	s.Equal(2, report.Skipped[0].Row)
	s.Equal(3, report.Skipped[1].Row)
	s.Equal(5, report.Skipped[2].Row)

	_, err = s.users.Import(context.Background(), s.admin, nil)
	s.True(IsValidationError(err))
}

func (s *ServiceTestSuite) TestUpdateUser_ExplicitFields() {
	ctx := context.Background()
	intern := s.createIntern("intern", 0)

	name := "Renamed Intern"
	updated, err := s.users.Update(ctx, intern, intern.ID, UpdateUserInput{Name: &name})
	s.Require().NoError(err)
	s.Equal("Renamed Intern", updated.Name)

	inactive := false
	_, err = s.users.Update(ctx, intern, intern.ID, UpdateUserInput{IsActive: &inactive})
	s.ErrorIs(err, ErrPermissionDenied)

	end, _ := clock.ParseDate("2024-12-31")
	updated, err = s.users.Update(ctx, s.admin, intern.ID, UpdateUserInput{EndDate: &end, IsActive: &inactive})
	s.Require().NoError(err)
	s.Equal("2024-12-31", clock.FormatDate(updated.EndDate))
	s.False(updated.IsActive)

	badEmail := "nope"
	_, err = s.users.Update(ctx, s.admin, intern.ID, UpdateUserInput{Email: &badEmail})
	s.True(IsValidationError(err))

	password := "brand-new-secret"
	_, err = s.users.Update(ctx, intern, intern.ID, UpdateUserInput{Password: &password})
	s.Require().NoError(err)
	_, err = s.auth.Login(LoginInput{Username: "intern", Password: password})
	s.NoError(err)

	other := s.createIntern("other", 0)
	_, err = s.users.Update(ctx, other, intern.ID, UpdateUserInput{Name: &name})
	s.ErrorIs(err, ErrPermissionDenied)
}

func (s *ServiceTestSuite) TestUpdateUser_ClearEndDate() {
	ctx := context.Background()
	intern := s.createIntern("intern", 0)

	end, _ := clock.ParseDate("2024-08-30")
	updated, err := s.users.Update(ctx, s.admin, intern.ID, UpdateUserInput{EndDate: &end})
	s.Require().NoError(err)
	s.Require().NotNil(updated.EndDate)

	_, err = s.users.Update(ctx, intern, intern.ID, UpdateUserInput{ClearEndDate: true})
	s.ErrorIs(err, ErrPermissionDenied)

	_, err = s.users.Update(ctx, s.admin, intern.ID, UpdateUserInput{EndDate: &end, ClearEndDate: true})
	s.True(IsValidationError(err))

	updated, err = s.users.Update(ctx, s.admin, intern.ID, UpdateUserInput{ClearEndDate: true})
	s.Require().NoError(err)
	s.Nil(updated.EndDate)
	s.Nil(s.reload(intern.ID).EndDate)
}

func (s *ServiceTestSuite) TestUpdateUser_OtherTeamAdminDenied() {
	ctx := context.Background()
	intern := s.createIntern("intern", 0)
	rival := s.createRivalAdmin()

	inactive := false
	_, err := s.users.Update(ctx, rival, intern.ID, UpdateUserInput{IsActive: &inactive})
	s.ErrorIs(err, ErrPermissionDenied)

	end, _ := clock.ParseDate("2024-08-01")
	_, err = s.users.Update(ctx, rival, intern.ID, UpdateUserInput{EndDate: &end})
	s.ErrorIs(err, ErrPermissionDenied)

	name := "Hijacked"
	_, err = s.users.Update(ctx, rival, intern.ID, UpdateUserInput{Name: &name})
	s.ErrorIs(err, ErrPermissionDenied)

	unchanged := s.reload(intern.ID)
	s.True(unchanged.IsActive)
	s.Nil(unchanged.EndDate)
	s.Equal("intern", unchanged.Name)

	updated, err := s.users.Update(ctx, s.superAdmin, intern.ID, UpdateUserInput{IsActive: &inactive})
	s.Require().NoError(err)
	s.False(updated.IsActive)
}

func (s *ServiceTestSuite) TestMarkAttendance_OtherTeamAdminDenied() {
	ctx := context.Background()
	intern := s.createIntern("intern", 0)
	rival := s.createRivalAdmin()

	_, err := s.users.MarkAttendance(ctx, rival, intern.ID)
	s.ErrorIs(err, ErrPermissionDenied)
	s.Equal(0, s.reload(intern.ID).AttendanceCount)

	updated, err := s.users.MarkAttendance(ctx, s.admin, intern.ID)
	s.Require().NoError(err)
	s.Equal(1, updated.AttendanceCount)

	updated, err = s.users.MarkAttendance(ctx, s.superAdmin, intern.ID)
	s.Require().NoError(err)
	s.Equal(2, updated.AttendanceCount)
}

func (s *ServiceTestSuite) TestMarkAttendance_RecomputesAndIssues() {
	ctx := context.Background()
	intern := s.createIntern("intern", 19)
	s.createTask(intern, models.TaskStatusCompleted)
	s.Equal(93, s.reload(intern.ID).Progress)

	updated, err := s.users.MarkAttendance(ctx, intern, intern.ID)
	s.Require().NoError(err)
	s.Equal(20, updated.AttendanceCount)
	s.Equal(93, updated.Progress)

	cert, err := s.certRepo.FindByUser(intern.ID)
	s.Require().NoError(err)
	s.True(cert.IsGenerated)
	s.Len(s.notificationsOf(intern.ID, models.NotificationCertificateReady), 1)

	_, err = s.users.MarkAttendance(ctx, s.admin, s.admin.ID)
	s.True(IsValidationError(err))

	other := s.createIntern("other", 0)
	_, err = s.users.MarkAttendance(ctx, other, intern.ID)
	s.ErrorIs(err, ErrPermissionDenied)

	_, err = s.users.MarkAttendance(ctx, s.admin, 9999)
	s.ErrorIs(err, ErrUserNotFound)
}

func (s *ServiceTestSuite) TestMarkAttendance_InactiveIntern() {
	intern := s.createIntern("finished", 5)
	_, err := s.userRepo.Deactivate(intern.ID)
	s.Require().NoError(err)

	_, err = s.users.MarkAttendance(context.Background(), s.admin, intern.ID)
	s.ErrorIs(err, ErrInternInactive)
}

func (s *ServiceTestSuite) TestListAndGetUsers() {
	intern := s.createIntern("intern", 0)

	users, err := s.users.List(s.admin, ListUsersInput{})
	s.Require().NoError(err)
	s.Require().Len(users, 1)
	s.Equal(intern.ID, users[0].ID)

	everyone, err := s.users.List(s.superAdmin, ListUsersInput{})
	s.Require().NoError(err)
	s.Len(everyone, 3)

	_, err = s.users.List(intern, ListUsersInput{})
	s.ErrorIs(err, ErrPermissionDenied)

	_, err = s.users.Get(intern, s.admin.ID)
	s.ErrorIs(err, ErrPermissionDenied)

	me, err := s.users.Get(intern, intern.ID)
	s.Require().NoError(err)
	s.Equal("intern", me.Username)
}

func (s *ServiceTestSuite) TestProgressSummary() {
	intern := s.createIntern("intern", 30)
	s.createTask(intern, models.TaskStatusCompleted)
	s.createTask(intern, models.TaskStatusInProgress)

	summary, err := s.progress.Summary(intern.ID)
	s.Require().NoError(err)
	s.Equal(60, summary.Progress)
	s.Equal(1, summary.ActiveTasks)
	s.False(summary.IsEligibleForCertificate)

	_, err = s.progress.Recompute(context.Background(), s.admin.ID)
	s.True(IsValidationError(err))
}

func (s *ServiceTestSuite) TestLogin() {
	_, err := s.auth.Login(LoginInput{Username: "admin", Password: "wrong-password"})
	s.ErrorIs(err, ErrInvalidCredentials)

	_, err = s.auth.Login(LoginInput{Username: "ghost", Password: "password123"})
	s.ErrorIs(err, ErrInvalidCredentials)

	_, err = s.auth.Login(LoginInput{Username: "", Password: ""})
	s.True(IsValidationError(err))

	user, err := s.auth.Login(LoginInput{Username: " admin ", Password: "password123"})
	s.Require().NoError(err)
	s.Equal(models.RoleAdmin, user.Role)

	inactive := false
	_, err = s.users.Update(context.Background(), s.superAdmin, s.admin.ID, UpdateUserInput{IsActive: &inactive})
	s.Require().NoError(err)
	_, err = s.auth.Login(LoginInput{Username: "admin", Password: "password123"})
	s.ErrorIs(err, ErrAccountInactive)
}
