package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/google/uuid"
	"github.com/yukikurage/intern-management-api/internal/clock"
	"github.com/yukikurage/intern-management-api/internal/models"
	"github.com/yukikurage/intern-management-api/internal/progress"
	"github.com/yukikurage/intern-management-api/internal/repository"
	"gorm.io/gorm"
)

// certificateNamespace seeds the UUIDv5 certificate serials, so the serial
// of a certificate is a pure function of its id.
var certificateNamespace = uuid.MustParse("5f0c7d3e-8a42-4c59-9d1e-2b7a6f3c1e90")

// CertificateURL returns the download path of a certificate.
func CertificateURL(id uint64) string {
	return fmt.Sprintf("/api/certificates/%d/download", id)
}

// CertificateSerial returns the serial stamped on a certificate.
func CertificateSerial(id uint64) string {
	return uuid.NewSHA1(certificateNamespace, []byte(strconv.FormatUint(id, 10))).String()
}

// CertificateService decides eligibility and issues certificates.
type CertificateService struct {
	certRepo repository.CertificateRepository
	userRepo repository.UserRepository
	taskRepo repository.TaskRepository
	teamRepo repository.TeamRepository
	policy   progress.Policy
	notifier Notifier
	clock    clock.Clock
	logger   *slog.Logger
}

// NewCertificateService creates a new CertificateService.
func NewCertificateService(
	certRepo repository.CertificateRepository,
	userRepo repository.UserRepository,
	taskRepo repository.TaskRepository,
	teamRepo repository.TeamRepository,
	policy progress.Policy,
	notifier Notifier,
	clk clock.Clock,
	logger *slog.Logger,
) *CertificateService {
	return &CertificateService{
		certRepo: certRepo,
		userRepo: userRepo,
		taskRepo: taskRepo,
		teamRepo: teamRepo,
		policy:   policy.Normalize(),
		notifier: notifier,
		clock:    clk,
		logger:   logger,
	}
}

// CheckAndIssue issues the intern's certificate if they are eligible and it
// has not been issued yet. It reports whether this call issued it.
func (s *CertificateService) CheckAndIssue(ctx context.Context, userID uint64) (bool, error) {
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, ErrUserNotFound
		}
		return false, fmt.Errorf("failed to find user: %w", err)
	}
	if user.Role != models.RoleIntern {
		return false, nil
	}

	tasks, err := s.taskRepo.ListForUser(user.ID, user.TeamID)
	if err != nil {
		return false, fmt.Errorf("failed to list tasks: %w", err)
	}
	if !s.policy.IsEligible(progress.Count(tasks), user.AttendanceCount) {
		return false, nil
	}

	cert, err := s.certRepo.FindByUser(user.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.WarnContext(ctx, "eligible intern has no certificate record", "user_id", user.ID)
			return false, nil
		}
		return false, fmt.Errorf("failed to find certificate: %w", err)
	}
	if cert.IsGenerated {
		return false, nil
	}

	return s.issue(ctx, cert)
}

// IssueManually issues a certificate regardless of eligibility. Issuing an
// already issued certificate is a no-op. Admins may only issue certificates
// of their own team's interns.
func (s *CertificateService) IssueManually(ctx context.Context, actor *models.User, certificateID uint64) (*models.Certificate, bool, error) {
	cert, err := s.findCertificate(certificateID)
	if err != nil {
		return nil, false, err
	}

	intern, err := s.userRepo.FindByID(cert.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, ErrUserNotFound
		}
		return nil, false, fmt.Errorf("failed to find user: %w", err)
	}
	allowed, err := canManageUser(s.teamRepo, actor, intern)
	if err != nil {
		return nil, false, err
	}
	if !allowed {
		return nil, false, ErrPermissionDenied
	}

	issued := false
	if !cert.IsGenerated {
		issued, err = s.issue(ctx, cert)
		if err != nil {
			return nil, false, err
		}
	}

	cert, err = s.findCertificate(certificateID)
	if err != nil {
		return nil, false, err
	}
	return cert, issued, nil
}

// issue flips the certificate to issued and notifies the intern when this
// call won the flip.
func (s *CertificateService) issue(ctx context.Context, cert *models.Certificate) (bool, error) {
	flipped, err := s.certRepo.MarkIssued(cert.ID, clock.Today(s.clock), CertificateURL(cert.ID), CertificateSerial(cert.ID))
	if err != nil {
		return false, fmt.Errorf("failed to issue certificate: %w", err)
	}
	if !flipped {
		return false, nil
	}

	s.logger.InfoContext(ctx, "certificate issued", "user_id", cert.UserID, "certificate_id", cert.ID)
	s.notifier.Emit(ctx, cert.UserID, models.NotificationCertificateReady,
		"Certificate Ready",
		"Congratulations! Your internship completion certificate is ready for download.",
	)
	return true, nil
}

// GetForUser returns the certificate of a user as seen by actor.
func (s *CertificateService) GetForUser(actor *models.User, userID uint64) (*models.Certificate, error) {
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if !canViewUser(actor, user) {
		return nil, ErrPermissionDenied
	}

	cert, err := s.certRepo.FindByUser(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCertificateNotFound
		}
		return nil, fmt.Errorf("failed to find certificate: %w", err)
	}
	return cert, nil
}

// List returns every certificate visible to actor: the admin's team, or all
// of them for the super-admin.
func (s *CertificateService) List(actor *models.User) ([]models.Certificate, error) {
	var teamID *uint64
	if actor.Role != models.RoleSuperAdmin {
		if actor.TeamID == nil {
			return []models.Certificate{}, nil
		}
		teamID = actor.TeamID
	}

	certs, err := s.certRepo.List(teamID)
	if err != nil {
		return nil, fmt.Errorf("failed to list certificates: %w", err)
	}
	return certs, nil
}

// Document is the printable content of an issued certificate.
type Document struct {
	Certificate    *models.Certificate
	Intern         *models.User
	CompletedTasks int
	TotalTasks     int
}

// Download returns the document of an issued certificate.
func (s *CertificateService) Download(actor *models.User, certificateID uint64) (*Document, error) {
	cert, err := s.findCertificate(certificateID)
	if err != nil {
		return nil, err
	}

	intern, err := s.userRepo.FindByID(cert.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if !canViewUser(actor, intern) {
		return nil, ErrPermissionDenied
	}
	if !cert.IsGenerated {
		return nil, ErrCertificateNotIssued
	}

	tasks, err := s.taskRepo.ListForUser(intern.ID, intern.TeamID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	tally := progress.Count(tasks)

	return &Document{
		Certificate:    cert,
		Intern:         intern,
		CompletedTasks: tally.Completed,
		TotalTasks:     tally.Total,
	}, nil
}

func (s *CertificateService) findCertificate(id uint64) (*models.Certificate, error) {
	cert, err := s.certRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCertificateNotFound
		}
		return nil, fmt.Errorf("failed to find certificate: %w", err)
	}
	return cert, nil
}
