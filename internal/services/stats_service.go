package services

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/yukikurage/intern-management-api/internal/models"
	"github.com/yukikurage/intern-management-api/internal/progress"
	"github.com/yukikurage/intern-management-api/internal/repository"
)

// StatsCache stores computed statistics between requests. Get returns an
// error on a miss.
type StatsCache interface {
	Get(ctx context.Context, key string, dst interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

// TeamSummary is the per-team block of the super-admin dashboard.
type TeamSummary struct {
	TeamID          uint64             `json:"team_id"`
	Name            string             `json:"name"`
	AdminID         uint64             `json:"admin_id"`
	AdminName       string             `json:"admin_name"`
	Interns         int                `json:"interns"`
	AverageProgress int                `json:"average_progress"`
	Tasks           progress.TeamStats `json:"tasks"`
}

// Stats is the admin dashboard aggregate.
type Stats struct {
	TotalInterns       int                `json:"total_interns"`
	ActiveInterns      int                `json:"active_interns"`
	ActiveTasks        int                `json:"active_tasks"`
	TotalMeetings      int                `json:"total_meetings"`
	CertificatesIssued int                `json:"certificates_issued"`
	AverageProgress    int                `json:"average_progress"`
	Tasks              progress.TeamStats `json:"tasks"`
	Teams              []TeamSummary      `json:"teams,omitempty"`
}

// StatsService builds dashboard statistics.
type StatsService struct {
	userRepo     repository.UserRepository
	teamRepo     repository.TeamRepository
	taskRepo     repository.TaskRepository
	resourceRepo repository.ResourceRepository
	certRepo     repository.CertificateRepository
	cache        StatsCache
	cacheKey     func(teamID *uint64) string
	ttl          time.Duration
	logger       *slog.Logger
}

// NewStatsService creates a new StatsService. cache may be nil.
func NewStatsService(
	userRepo repository.UserRepository,
	teamRepo repository.TeamRepository,
	taskRepo repository.TaskRepository,
	resourceRepo repository.ResourceRepository,
	certRepo repository.CertificateRepository,
	cache StatsCache,
	cacheKey func(teamID *uint64) string,
	ttl time.Duration,
	logger *slog.Logger,
) *StatsService {
	return &StatsService{
		userRepo:     userRepo,
		teamRepo:     teamRepo,
		taskRepo:     taskRepo,
		resourceRepo: resourceRepo,
		certRepo:     certRepo,
		cache:        cache,
		cacheKey:     cacheKey,
		ttl:          ttl,
		logger:       logger,
	}
}

// GetStats returns statistics for the admin's team, or for every team plus
// per-team summaries for the super-admin.
func (s *StatsService) GetStats(ctx context.Context, actor *models.User) (*Stats, error) {
	var teamID *uint64
	switch actor.Role {
	case models.RoleSuperAdmin:
	case models.RoleAdmin:
		if actor.TeamID == nil {
			return &Stats{}, nil
		}
		teamID = actor.TeamID
	default:
		return nil, ErrPermissionDenied
	}

	key := ""
	if s.cache != nil && s.cacheKey != nil {
		key = s.cacheKey(teamID)
		var cached Stats
		if err := s.cache.Get(ctx, key, &cached); err == nil {
			return &cached, nil
		}
	}

	stats, err := s.compute(teamID)
	if err != nil {
		return nil, err
	}

	if key != "" {
		if err := s.cache.Set(ctx, key, stats, s.ttl); err != nil {
			s.logger.WarnContext(ctx, "failed to cache stats", "key", key, "error", err)
		}
	}
	return stats, nil
}

func (s *StatsService) compute(teamID *uint64) (*Stats, error) {
	intern := models.RoleIntern
	interns, err := s.userRepo.List(repository.UserFilter{Role: &intern, TeamID: teamID})
	if err != nil {
		return nil, fmt.Errorf("failed to list interns: %w", err)
	}

	filter := repository.TaskFilter{AllTeams: teamID == nil}
	if teamID != nil {
		filter.TeamIDs = []uint64{*teamID}
	}
	tasks, _, err := s.taskRepo.List(filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}

	meeting := models.ResourceMeetingLink
	meetings, err := s.resourceRepo.List(teamID, &meeting)
	if err != nil {
		return nil, fmt.Errorf("failed to list meetings: %w", err)
	}

	certs, err := s.certRepo.List(teamID)
	if err != nil {
		return nil, fmt.Errorf("failed to list certificates: %w", err)
	}

	taskStats := progress.Team(tasks)
	stats := &Stats{
		TotalInterns:    len(interns),
		ActiveTasks:     taskStats.Active(),
		TotalMeetings:   len(meetings),
		AverageProgress: averageProgress(interns),
		Tasks:           taskStats,
	}
	for _, u := range interns {
		if u.IsActive {
			stats.ActiveInterns++
		}
	}
	for _, c := range certs {
		if c.IsGenerated {
			stats.CertificatesIssued++
		}
	}

	if teamID == nil {
		teams, err := s.teamRepo.List()
		if err != nil {
			return nil, fmt.Errorf("failed to list teams: %w", err)
		}
		stats.Teams = summarizeTeams(teams, interns, tasks)
	}

	return stats, nil
}

func summarizeTeams(teams []models.Team, interns []models.User, tasks []models.Task) []TeamSummary {
	internsByTeam := make(map[uint64][]models.User)
	for _, u := range interns {
		if u.TeamID != nil {
			internsByTeam[*u.TeamID] = append(internsByTeam[*u.TeamID], u)
		}
	}
	tasksByTeam := make(map[uint64][]models.Task)
	for _, t := range tasks {
		tasksByTeam[t.TeamID] = append(tasksByTeam[t.TeamID], t)
	}

	summaries := make([]TeamSummary, 0, len(teams))
	for _, team := range teams {
		members := internsByTeam[team.ID]
		summaries = append(summaries, TeamSummary{
			TeamID:          team.ID,
			Name:            team.Name,
			AdminID:         team.AdminID,
			AdminName:       team.Admin.Name,
			Interns:         len(members),
			AverageProgress: averageProgress(members),
			Tasks:           progress.Team(tasksByTeam[team.ID]),
		})
	}
	return summaries
}

func averageProgress(users []models.User) int {
	if len(users) == 0 {
		return 0
	}
	sum := 0
	for _, u := range users {
		sum += u.Progress
	}
	return int(math.Round(float64(sum) / float64(len(users))))
}
