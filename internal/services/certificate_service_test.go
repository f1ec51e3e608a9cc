package services

import (
	"context"
	"regexp"
	"sync"

	"github.com/yukikurage/intern-management-api/internal/clock"
	"github.com/yukikurage/intern-management-api/internal/models"
)

func (s *ServiceTestSuite) TestCompletingLastTaskIssuesCertificateOnce() {
	ctx := context.Background()
	intern := s.createIntern("sarah", 25)
	// The pending task goes first so the intern is never eligible on the way.
	last := s.createTask(intern, models.TaskStatusPending)
	for i := 0; i < 3; i++ {
		s.createTask(intern, models.TaskStatusCompleted)
	}

	s.Equal(77, s.reload(intern.ID).Progress)
	cert, err := s.certRepo.FindByUser(intern.ID)
	s.Require().NoError(err)
	s.False(cert.IsGenerated)

	completed := models.TaskStatusCompleted
	_, err = s.tasks.UpdateTask(ctx, intern, last.ID, UpdateTaskInput{Status: &completed})
	s.Require().NoError(err)

	s.Equal(97, s.reload(intern.ID).Progress)

	cert, err = s.certRepo.FindByUser(intern.ID)
	s.Require().NoError(err)
	s.True(cert.IsGenerated)
	s.Equal("2024-08-31", clock.FormatDate(cert.IssuedDate))
	s.Equal(CertificateURL(cert.ID), cert.CertificateURL)
	s.Equal(CertificateSerial(cert.ID), cert.Serial)
	s.Len(s.notificationsOf(intern.ID, models.NotificationCertificateReady), 1)

	issued, err := s.certificates.CheckAndIssue(ctx, intern.ID)
	s.Require().NoError(err)
	s.False(issued)
	s.Len(s.notificationsOf(intern.ID, models.NotificationCertificateReady), 1)
}

func (s *ServiceTestSuite) TestCheckAndIssue_IneligibleDoesNothing() {
	intern := s.createIntern("low-attendance", 19)
	s.createTask(intern, models.TaskStatusCompleted)

	issued, err := s.certificates.CheckAndIssue(context.Background(), intern.ID)
	s.Require().NoError(err)
	s.False(issued)

	cert, err := s.certRepo.FindByUser(intern.ID)
	s.Require().NoError(err)
	s.False(cert.IsGenerated)
	s.Empty(s.notificationsOf(intern.ID, models.NotificationCertificateReady))
}

func (s *ServiceTestSuite) TestCheckAndIssue_ZeroTasksIsNotAnError() {
	intern := s.createIntern("no-tasks", 100)

	issued, err := s.certificates.CheckAndIssue(context.Background(), intern.ID)
	s.Require().NoError(err)
	s.False(issued)

	value, err := s.progress.Recompute(context.Background(), intern.ID)
	s.Require().NoError(err)
	s.Equal(20, value)
}

func (s *ServiceTestSuite) TestCheckAndIssue_UnknownUser() {
	_, err := s.certificates.CheckAndIssue(context.Background(), 9999)
	s.ErrorIs(err, ErrUserNotFound)
}

func (s *ServiceTestSuite) TestCheckAndIssue_ConcurrentCallsNotifyOnce() {
	intern := s.createIntern("racer", 30)
	s.createTask(intern, models.TaskStatusCompleted)

	// The task hook may already have issued it; reset to race from scratch.
	s.Require().NoError(s.db.Model(&models.Certificate{}).Where("user_id = ?", intern.ID).
		Updates(map[string]interface{}{"is_generated": false, "issued_date": nil}).Error)
	s.Require().NoError(s.db.Where("user_id = ?", intern.ID).Delete(&models.Notification{}).Error)

	var wg sync.WaitGroup
	results := make(chan bool, 4)
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			issued, err := s.certificates.CheckAndIssue(context.Background(), intern.ID)
			s.NoError(err)
			results <- issued
		}()
	}
	wg.Wait()
	close(results)

	wins := 0
	for issued := range results {
		if issued {
			wins++
		}
	}
	s.Equal(1, wins)
	s.Len(s.notificationsOf(intern.ID, models.NotificationCertificateReady), 1)
}

func (s *ServiceTestSuite) TestIssueManually_SkipsEligibilityAndIsIdempotent() {
	ctx := context.Background()
	intern := s.createIntern("manual", 0)
	cert, err := s.certRepo.FindByUser(intern.ID)
	s.Require().NoError(err)

	issuedCert, issued, err := s.certificates.IssueManually(ctx, s.admin, cert.ID)
	s.Require().NoError(err)
	s.True(issued)
	s.True(issuedCert.IsGenerated)

	_, issued, err = s.certificates.IssueManually(ctx, s.admin, cert.ID)
	s.Require().NoError(err)
	s.False(issued)
	s.Len(s.notificationsOf(intern.ID, models.NotificationCertificateReady), 1)

	_, _, err = s.certificates.IssueManually(ctx, s.admin, 9999)
	s.ErrorIs(err, ErrCertificateNotFound)
}

func (s *ServiceTestSuite) TestIssueManually_OnlyOwningAdminOrSuperAdmin() {
	ctx := context.Background()
	intern := s.createIntern("manual", 0)
	rival := s.createRivalAdmin()
	cert, err := s.certRepo.FindByUser(intern.ID)
	s.Require().NoError(err)

	_, issued, err := s.certificates.IssueManually(ctx, rival, cert.ID)
	s.ErrorIs(err, ErrPermissionDenied)
	s.False(issued)

	_, _, err = s.certificates.IssueManually(ctx, intern, cert.ID)
	s.ErrorIs(err, ErrPermissionDenied)

	cert, err = s.certRepo.FindByUser(intern.ID)
	s.Require().NoError(err)
	s.False(cert.IsGenerated)
	s.Empty(s.notificationsOf(intern.ID, models.NotificationCertificateReady))

	_, issued, err = s.certificates.IssueManually(ctx, s.superAdmin, cert.ID)
	s.Require().NoError(err)
	s.True(issued)
}

func (s *ServiceTestSuite) TestDownload() {
	intern := s.createIntern("grad", 30)
	other := s.createIntern("other", 0)
	s.createTask(intern, models.TaskStatusCompleted)

	cert, err := s.certRepo.FindByUser(intern.ID)
	s.Require().NoError(err)

	_, err = s.certificates.Download(other, cert.ID)
	s.ErrorIs(err, ErrPermissionDenied)

	otherCert, err := s.certRepo.FindByUser(other.ID)
	s.Require().NoError(err)
	_, err = s.certificates.Download(other, otherCert.ID)
	s.ErrorIs(err, ErrCertificateNotIssued)

	doc, err := s.certificates.Download(intern, cert.ID)
	s.Require().NoError(err)
	s.Equal("grad", doc.Intern.Username)
	s.Equal(1, doc.CompletedTasks)
	s.Equal(1, doc.TotalTasks)

	_, err = s.certificates.Download(s.admin, cert.ID)
	s.NoError(err)
}

func (s *ServiceTestSuite) TestListCertificates_ScopedToTeam() {
	s.createIntern("in-team", 0)
	s.createUser("unassigned", models.RoleIntern)

	mine, err := s.certificates.List(s.admin)
	s.Require().NoError(err)
	s.Len(mine, 1)

	all, err := s.certificates.List(s.superAdmin)
	s.Require().NoError(err)
	s.Len(all, 2)
}

func (s *ServiceTestSuite) TestCertificateSerial_Deterministic() {
	s.Equal(CertificateSerial(7), CertificateSerial(7))
	s.NotEqual(CertificateSerial(7), CertificateSerial(8))
	s.Regexp(regexp.MustCompile(`^[0-9a-f-]{36}$`), CertificateSerial(7))
	s.Equal("/api/certificates/7/download", CertificateURL(7))
}
