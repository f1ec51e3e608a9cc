package services

import (
	"bytes"
	"context"
	"log/slog"
	"time"

	"github.com/yukikurage/intern-management-api/internal/models"
)

func (s *ServiceTestSuite) TestNotifications_ReadFlow() {
	ctx := context.Background()
	intern := s.createIntern("intern", 0)
	other := s.createIntern("other", 0)

	s.notifications.Emit(ctx, intern.ID, models.NotificationTaskAssigned, "First", "first message")
	s.clock.Advance(time.Minute)
	s.notifications.Emit(ctx, intern.ID, models.NotificationTaskUpdated, "Second", "second message")

	list, err := s.notifications.ListForUser(intern.ID, false, 0)
	s.Require().NoError(err)
	s.Require().Len(list, 2)
	s.Equal("Second", list[0].Title)

	count, err := s.notifications.UnreadCount(intern.ID)
	s.Require().NoError(err)
	s.Equal(int64(2), count)

	_, err = s.notifications.MarkRead(list[0].ID, other.ID)
	s.ErrorIs(err, ErrPermissionDenied)

	read, err := s.notifications.MarkRead(list[0].ID, intern.ID)
	s.Require().NoError(err)
	s.True(read.IsRead)

	unread, err := s.notifications.ListForUser(intern.ID, true, 10)
	s.Require().NoError(err)
	s.Require().Len(unread, 1)
	s.Equal("First", unread[0].Title)

	updated, err := s.notifications.MarkAllRead(intern.ID)
	s.Require().NoError(err)
	s.Equal(int64(1), updated)

	_, err = s.notifications.MarkRead(9999, intern.ID)
	s.ErrorIs(err, ErrNotificationNotFound)
}

func (s *ServiceTestSuite) TestNotifications_EmitManyDeduplicates() {
	intern := s.createIntern("intern", 0)

	s.notifications.EmitMany(context.Background(), []uint64{intern.ID, intern.ID}, models.NotificationMeetingScheduled, "Sync", "Weekly sync")
	s.notifications.EmitMany(context.Background(), nil, models.NotificationMeetingScheduled, "Nobody", "ignored")

	s.Len(s.notificationsOf(intern.ID, models.NotificationMeetingScheduled), 1)
}

func (s *ServiceTestSuite) TestNotifications_WriteFailureIsLogged() {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	broken := NewNotificationService(failingNotificationRepo{}, s.clock, logger)

	s.NotPanics(func() {
		broken.Emit(context.Background(), 1, models.NotificationTaskAssigned, "t", "m")
		broken.EmitMany(context.Background(), []uint64{1, 2}, models.NotificationTaskAssigned, "t", "m")
	})
	s.Contains(buf.String(), "failed to emit notification")
	s.Contains(buf.String(), "disk full")
}
