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

// ResourceService manages shared resources and meeting links.
type ResourceService struct {
	resourceRepo repository.ResourceRepository
	userRepo     repository.UserRepository
	teamRepo     repository.TeamRepository
	notifier     Notifier
	logger       *slog.Logger
}

// NewResourceService creates a new ResourceService.
func NewResourceService(
	resourceRepo repository.ResourceRepository,
	userRepo repository.UserRepository,
	teamRepo repository.TeamRepository,
	notifier Notifier,
	logger *slog.Logger,
) *ResourceService {
	return &ResourceService{
		resourceRepo: resourceRepo,
		userRepo:     userRepo,
		teamRepo:     teamRepo,
		notifier:     notifier,
		logger:       logger,
	}
}

// CreateResourceInput represents input for sharing a resource.
type CreateResourceInput struct {
	Title       string `validate:"required,max=255"`
	Type        models.ResourceType
	Link        string `validate:"omitempty,url"`
	FileURL     string
	Description string
	TeamID      *uint64
}

// CreateResource shares a resource with a team and notifies its interns.
// Meeting links need a link, documents need a file URL.
func (s *ResourceService) CreateResource(ctx context.Context, actor *models.User, input CreateResourceInput) (*models.Resource, error) {
	input.Title = strings.TrimSpace(input.Title)
	input.Link = strings.TrimSpace(input.Link)
	input.FileURL = strings.TrimSpace(input.FileURL)

	if err := validateInput(input); err != nil {
		return nil, err
	}
	if !input.Type.Valid() {
		return nil, newValidationError("type", "must be one of [meeting_link pdf doc note]")
	}
	switch {
	case input.Type == models.ResourceMeetingLink && input.Link == "":
		return nil, newValidationError("link", "is required for a meeting link")
	case input.Type.IsDocument() && input.FileURL == "":
		return nil, newValidationError("file_url", "is required for a document")
	case input.Type == models.ResourceNote && strings.TrimSpace(input.Description) == "":
		return nil, newValidationError("description", "is required for a note")
	}

	team, err := resolveManagedTeam(s.teamRepo, actor, input.TeamID)
	if err != nil {
		return nil, err
	}

	resource := &models.Resource{
		Title:       input.Title,
		Type:        input.Type,
		Link:        input.Link,
		FileURL:     input.FileURL,
		Description: input.Description,
		UploadedBy:  actor.ID,
		TeamID:      team.ID,
	}
	if err := s.resourceRepo.Create(resource); err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	intern := models.RoleIntern
	members, err := s.userRepo.List(repository.UserFilter{Role: &intern, TeamID: &team.ID, ActiveOnly: true})
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to list team interns for notification", "team_id", team.ID, "error", err)
		return resource, nil
	}

	if resource.Type == models.ResourceMeetingLink {
		s.notifier.EmitMany(ctx, internIDs(members), models.NotificationMeetingScheduled,
			"New Meeting Scheduled",
			fmt.Sprintf("You have been invited to: %s", resource.Title),
		)
	} else {
		s.notifier.EmitMany(ctx, internIDs(members), models.NotificationResourceUploaded,
			"New Resource Available",
			fmt.Sprintf("%s shared a new resource: %s", actor.Name, resource.Title),
		)
	}

	return resource, nil
}

// ListResourcesInput represents filters for listing resources
type ListResourcesInput struct {
	TeamID *uint64
	Type   *models.ResourceType
}

// ListResources returns resources of the caller's team, or of any team for
// the super-admin.
func (s *ResourceService) ListResources(actor *models.User, input ListResourcesInput) ([]models.Resource, error) {
	if input.Type != nil && !input.Type.Valid() {
		return nil, newValidationError("type", "must be one of [meeting_link pdf doc note]")
	}

	teamID := input.TeamID
	if actor.Role != models.RoleSuperAdmin {
		if actor.TeamID == nil {
			return []models.Resource{}, nil
		}
		if teamID != nil && *teamID != *actor.TeamID {
			return nil, ErrPermissionDenied
		}
		teamID = actor.TeamID
	}

	resources, err := s.resourceRepo.List(teamID, input.Type)
	if err != nil {
		return nil, fmt.Errorf("failed to list resources: %w", err)
	}
	return resources, nil
}

// ListMeetings returns the meeting links visible to actor.
func (s *ResourceService) ListMeetings(actor *models.User) ([]models.Resource, error) {
	meeting := models.ResourceMeetingLink
	return s.ListResources(actor, ListResourcesInput{Type: &meeting})
}

// GetResource returns one resource visible to actor.
func (s *ResourceService) GetResource(actor *models.User, id uint64) (*models.Resource, error) {
	resource, err := s.resourceRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrResourceNotFound
		}
		return nil, fmt.Errorf("failed to find resource: %w", err)
	}

	if actor.Role != models.RoleSuperAdmin && (actor.TeamID == nil || *actor.TeamID != resource.TeamID) {
		return nil, ErrPermissionDenied
	}
	return resource, nil
}
