package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/yukikurage/intern-management-api/internal/clock"
	"github.com/yukikurage/intern-management-api/internal/constants"
	"github.com/yukikurage/intern-management-api/internal/models"
	"github.com/yukikurage/intern-management-api/internal/repository"
	"gorm.io/gorm"
)

// Notifier creates in-app alerts as a side effect of other mutations.
// Implementations never fail the caller; write errors are logged.
type Notifier interface {
	Emit(ctx context.Context, userID uint64, typ models.NotificationType, title, message string)
	EmitMany(ctx context.Context, userIDs []uint64, typ models.NotificationType, title, message string)
}

// NotificationService writes and reads notifications.
type NotificationService struct {
	repo   repository.NotificationRepository
	clock  clock.Clock
	logger *slog.Logger
}

// NewNotificationService creates a new NotificationService.
func NewNotificationService(repo repository.NotificationRepository, clk clock.Clock, logger *slog.Logger) *NotificationService {
	return &NotificationService{
		repo:   repo,
		clock:  clk,
		logger: logger,
	}
}

// Emit writes one notification. A failed write is logged and swallowed so
// the mutation it accompanies is not rolled back.
func (s *NotificationService) Emit(ctx context.Context, userID uint64, typ models.NotificationType, title, message string) {
	n := &models.Notification{
		UserID:    userID,
		Type:      typ,
		Title:     title,
		Message:   message,
		CreatedAt: s.clock.Now(),
	}
	if err := s.repo.Create(n); err != nil {
		s.logger.ErrorContext(ctx, "failed to emit notification",
			"user_id", userID,
			"type", typ,
			"error", err,
		)
	}
}

// EmitMany writes the same notification for several users in one insert.
func (s *NotificationService) EmitMany(ctx context.Context, userIDs []uint64, typ models.NotificationType, title, message string) {
	if len(userIDs) == 0 {
		return
	}

	now := s.clock.Now()
	batch := make([]models.Notification, 0, len(userIDs))
	for _, id := range uniqueUint64(userIDs) {
		batch = append(batch, models.Notification{
			UserID:    id,
			Type:      typ,
			Title:     title,
			Message:   message,
			CreatedAt: now,
		})
	}

	if err := s.repo.CreateBatch(batch); err != nil {
		s.logger.ErrorContext(ctx, "failed to emit notifications",
			"recipients", len(batch),
			"type", typ,
			"error", err,
		)
	}
}

// ListForUser returns the user's notifications, newest first.
func (s *NotificationService) ListForUser(userID uint64, unreadOnly bool, limit int) ([]models.Notification, error) {
	if limit <= 0 || limit > constants.MaxPageSize {
		limit = constants.DefaultNotificationList
	}

	notifications, err := s.repo.ListByUser(userID, unreadOnly, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	return notifications, nil
}

// UnreadCount returns how many notifications the user has not read.
func (s *NotificationService) UnreadCount(userID uint64) (int64, error) {
	count, err := s.repo.CountUnread(userID)
	if err != nil {
		return 0, fmt.Errorf("failed to count unread notifications: %w", err)
	}
	return count, nil
}

// MarkRead marks a notification as read. Only its owner may do so.
func (s *NotificationService) MarkRead(id, actorID uint64) (*models.Notification, error) {
	n, err := s.repo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotificationNotFound
		}
		return nil, fmt.Errorf("failed to find notification: %w", err)
	}

	if n.UserID != actorID {
		return nil, ErrPermissionDenied
	}

	if !n.IsRead {
		if err := s.repo.MarkRead(id); err != nil {
			return nil, fmt.Errorf("failed to mark notification read: %w", err)
		}
		n.IsRead = true
	}

	return n, nil
}

// MarkAllRead marks every notification of the user as read and returns how
// many changed.
func (s *NotificationService) MarkAllRead(userID uint64) (int64, error) {
	updated, err := s.repo.MarkAllRead(userID)
	if err != nil {
		return 0, fmt.Errorf("failed to mark notifications read: %w", err)
	}
	return updated, nil
}

// uniqueUint64 removes duplicate values from a slice of uint64
func uniqueUint64(values []uint64) []uint64 {
	seen := make(map[uint64]struct{}, len(values))
	result := make([]uint64, 0, len(values))

	for _, v := range values {
		if _, exists := seen[v]; exists {
			continue
		}
		seen[v] = struct{}{}
		result = append(result, v)
	}

	return result
}
