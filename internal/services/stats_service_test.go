package services

import (
	"context"
	"errors"
	"time"

	"github.com/yukikurage/intern-management-api/internal/models"
	"github.com/yukikurage/intern-management-api/internal/repository"
)

// memoryStatsCache is a map-backed StatsCache.
type memoryStatsCache struct {
	values map[string]Stats
	sets   int
}

func (m *memoryStatsCache) Get(_ context.Context, key string, dst interface{}) error {
	v, ok := m.values[key]
	if !ok {
		return errors.New("miss")
	}
	*dst.(*Stats) = v
	return nil
}

func (m *memoryStatsCache) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	m.values[key] = *value.(*Stats)
	m.sets++
	return nil
}

func (s *ServiceTestSuite) newStatsService(cache StatsCache) *StatsService {
	key := func(teamID *uint64) string {
		if teamID == nil {
			return "all"
		}
		return "team"
	}
	return NewStatsService(
		s.userRepo, s.teamRepo, s.taskRepo,
		repository.NewResourceRepository(s.db), s.certRepo,
		cache, key, time.Minute, s.notifications.logger,
	)
}

func (s *ServiceTestSuite) TestStats_AdminSeesOwnTeam() {
	ctx := context.Background()
	first := s.createIntern("first", 30)
	second := s.createIntern("second", 0)
	s.createUser("unassigned", models.RoleIntern)
	s.createTask(first, models.TaskStatusCompleted)
	s.createTask(second, models.TaskStatusPending)
	_, err := s.resources.CreateResource(ctx, s.admin, CreateResourceInput{Title: "Sync", Type: models.ResourceMeetingLink, Link: "https://meet.example.com/a"})
	s.Require().NoError(err)

	stats, err := s.newStatsService(nil).GetStats(ctx, s.admin)
	s.Require().NoError(err)

	s.Equal(2, stats.TotalInterns)
	s.Equal(2, stats.ActiveInterns)
	s.Equal(1, stats.ActiveTasks)
	s.Equal(1, stats.TotalMeetings)
	s.Equal(1, stats.CertificatesIssued)
	s.Equal(50, stats.AverageProgress)
	s.Equal(50, stats.Tasks.CompletionRate)
	s.Empty(stats.Teams)
}

func (s *ServiceTestSuite) TestStats_SuperAdminSeesTeamsAndUsesCache() {
	ctx := context.Background()
	intern := s.createIntern("intern", 0)
	s.createTask(intern, models.TaskStatusCompleted)

	cache := &memoryStatsCache{values: map[string]Stats{}}
	service := s.newStatsService(cache)

	stats, err := service.GetStats(ctx, s.superAdmin)
	s.Require().NoError(err)
	s.Require().Len(stats.Teams, 1)
	s.Equal("Engineering", stats.Teams[0].Name)
	s.Equal("admin", stats.Teams[0].AdminName)
	s.Equal(1, stats.Teams[0].Interns)
	s.Equal(100, stats.Teams[0].Tasks.CompletionRate)

	s.createTask(intern, models.TaskStatusPending)
	cached, err := service.GetStats(ctx, s.superAdmin)
	s.Require().NoError(err)
	s.Equal(stats.Tasks.Total, cached.Tasks.Total)
	s.Equal(1, cache.sets)

	_, err = service.GetStats(ctx, intern)
	s.ErrorIs(err, ErrPermissionDenied)
}
