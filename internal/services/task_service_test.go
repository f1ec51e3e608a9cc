package services

import (
	"context"
	"errors"
	"time"

	"github.com/yukikurage/intern-management-api/internal/clock"
	"github.com/yukikurage/intern-management-api/internal/models"
)

func (s *ServiceTestSuite) TestCreateTask_Invariants() {
	ctx := context.Background()
	intern := s.createIntern("intern", 0)
	outsider := s.createUser("outsider", models.RoleIntern)

	_, err := s.tasks.CreateTask(ctx, s.admin, CreateTaskInput{Title: "team", IsTeamTask: true, AssignedTo: &intern.ID})
	s.True(IsValidationError(err))

	_, err = s.tasks.CreateTask(ctx, s.admin, CreateTaskInput{Title: "nobody"})
	s.True(IsValidationError(err))

	_, err = s.tasks.CreateTask(ctx, s.admin, CreateTaskInput{Title: "foreign", AssignedTo: &outsider.ID})
	s.ErrorIs(err, ErrInvalidTaskAssignee)

	_, err = s.tasks.CreateTask(ctx, s.admin, CreateTaskInput{Title: "  ", AssignedTo: &intern.ID})
	s.True(IsValidationError(err))

	_, err = s.tasks.CreateTask(ctx, s.admin, CreateTaskInput{Title: "bad", AssignedTo: &intern.ID, Priority: "urgent"})
	s.True(IsValidationError(err))

	_, err = s.tasks.CreateTask(ctx, intern, CreateTaskInput{Title: "self", AssignedTo: &intern.ID})
	s.ErrorIs(err, ErrPermissionDenied)
}

func (s *ServiceTestSuite) TestCreateTask_DefaultsAndNotification() {
	intern := s.createIntern("intern", 0)

	task := s.createTask(intern, "")
	s.Equal(models.TaskStatusPending, task.Status)
	s.Equal(models.PriorityMedium, task.Priority)
	s.Equal(s.team.ID, task.TeamID)
	s.Equal(s.admin.ID, task.AssignedBy)
	s.Nil(task.CompletedAt)

	assigned := s.notificationsOf(intern.ID, models.NotificationTaskAssigned)
	s.Require().Len(assigned, 1)
	s.Contains(assigned[0].Message, task.Title)
}

func (s *ServiceTestSuite) TestCreateTask_TeamTaskNotifiesEveryIntern() {
	first := s.createIntern("first", 0)
	second := s.createIntern("second", 0)

	task, err := s.tasks.CreateTask(context.Background(), s.admin, CreateTaskInput{Title: "Read the handbook", IsTeamTask: true})
	s.Require().NoError(err)
	s.Nil(task.AssignedTo)

	s.Len(s.notificationsOf(first.ID, models.NotificationTaskAssigned), 1)
	s.Len(s.notificationsOf(second.ID, models.NotificationTaskAssigned), 1)
	s.Empty(s.notificationsOf(s.admin.ID, models.NotificationTaskAssigned))
}

func (s *ServiceTestSuite) TestCreateTask_SucceedsWhenNotificationWriteFails() {
	intern := s.createIntern("intern", 0)
	broken := NewNotificationService(failingNotificationRepo{}, s.clock, s.notifications.logger)
	tasks := NewTaskService(s.taskRepo, s.userRepo, s.teamRepo, broken, s.refresher, nil, s.clock, s.notifications.logger)

	task, err := tasks.CreateTask(context.Background(), s.admin, CreateTaskInput{Title: "still saved", AssignedTo: &intern.ID})
	s.Require().NoError(err)

	stored, err := s.taskRepo.FindByID(task.ID)
	s.Require().NoError(err)
	s.Equal("still saved", stored.Title)
}

func (s *ServiceTestSuite) TestUpdateTask_CompletedAtFollowsStatus() {
	ctx := context.Background()
	intern := s.createIntern("intern", 0)
	task := s.createTask(intern, models.TaskStatusPending)

	completed := models.TaskStatusCompleted
	updated, err := s.tasks.UpdateTask(ctx, intern, task.ID, UpdateTaskInput{Status: &completed})
	s.Require().NoError(err)
	s.Require().NotNil(updated.CompletedAt)
	s.True(updated.CompletedAt.Equal(s.clock.Now()))
	s.Equal(80, s.reload(intern.ID).Progress)

	inProgress := models.TaskStatusInProgress
	updated, err = s.tasks.UpdateTask(ctx, intern, task.ID, UpdateTaskInput{Status: &inProgress})
	s.Require().NoError(err)
	s.Nil(updated.CompletedAt)
	s.Equal(0, s.reload(intern.ID).Progress)

	// the assigner hears about status moves made by the intern
	s.Len(s.notificationsOf(s.admin.ID, models.NotificationTaskUpdated), 2)
}

func (s *ServiceTestSuite) TestUpdateTask_InternMayOnlyMoveStatus() {
	ctx := context.Background()
	intern := s.createIntern("intern", 0)
	other := s.createIntern("other", 0)
	task := s.createTask(intern, models.TaskStatusPending)

	title := "renamed"
	_, err := s.tasks.UpdateTask(ctx, intern, task.ID, UpdateTaskInput{Title: &title})
	s.ErrorIs(err, ErrPermissionDenied)

	completed := models.TaskStatusCompleted
	_, err = s.tasks.UpdateTask(ctx, other, task.ID, UpdateTaskInput{Status: &completed})
	s.ErrorIs(err, ErrPermissionDenied)

	updated, err := s.tasks.UpdateTask(ctx, s.admin, task.ID, UpdateTaskInput{Title: &title})
	s.Require().NoError(err)
	s.Equal("renamed", updated.Title)
	s.Len(s.notificationsOf(intern.ID, models.NotificationTaskUpdated), 1)

	_, err = s.tasks.UpdateTask(ctx, s.admin, 9999, UpdateTaskInput{Title: &title})
	s.ErrorIs(err, ErrTaskNotFound)
}

func (s *ServiceTestSuite) TestUpdateTask_TeamTaskCompletionRefreshesAllInterns() {
	ctx := context.Background()
	first := s.createIntern("first", 30)
	second := s.createIntern("second", 30)

	task, err := s.tasks.CreateTask(ctx, s.admin, CreateTaskInput{Title: "Team retro", IsTeamTask: true})
	s.Require().NoError(err)

	completed := models.TaskStatusCompleted
	_, err = s.tasks.UpdateTask(ctx, first, task.ID, UpdateTaskInput{Status: &completed})
	s.Require().NoError(err)

	s.Equal(100, s.reload(first.ID).Progress)
	s.Equal(100, s.reload(second.ID).Progress)

	for _, id := range []uint64{first.ID, second.ID} {
		cert, err := s.certRepo.FindByUser(id)
		s.Require().NoError(err)
		s.True(cert.IsGenerated)
	}
}

func (s *ServiceTestSuite) TestDeleteTask_RecomputesProgress() {
	ctx := context.Background()
	intern := s.createIntern("intern", 0)
	s.createTask(intern, models.TaskStatusCompleted)
	pending := s.createTask(intern, models.TaskStatusPending)
	s.Equal(40, s.reload(intern.ID).Progress)

	s.ErrorIs(s.tasks.DeleteTask(ctx, intern, pending.ID), ErrPermissionDenied)
	s.Require().NoError(s.tasks.DeleteTask(ctx, s.admin, pending.ID))
	s.Equal(80, s.reload(intern.ID).Progress)

	s.ErrorIs(s.tasks.DeleteTask(ctx, s.admin, pending.ID), ErrTaskNotFound)
}

func (s *ServiceTestSuite) TestListTasks_Visibility() {
	first := s.createIntern("first", 0)
	second := s.createIntern("second", 0)
	s.createTask(first, models.TaskStatusPending)
	s.createTask(second, models.TaskStatusCompleted)
	_, err := s.tasks.CreateTask(context.Background(), s.admin, CreateTaskInput{Title: "team", IsTeamTask: true})
	s.Require().NoError(err)

	mine, total, err := s.tasks.ListTasks(first, ListTasksInput{})
	s.Require().NoError(err)
	s.Equal(int64(2), total)
	s.Len(mine, 2)

	todo := models.TaskStatusTodo
	notStarted, _, err := s.tasks.ListTasks(first, ListTasksInput{Status: &todo})
	s.Require().NoError(err)
	s.Len(notStarted, 2)

	all, total, err := s.tasks.ListTasks(s.admin, ListTasksInput{})
	s.Require().NoError(err)
	s.Equal(int64(3), total)
	s.Len(all, 3)

	page, total, err := s.tasks.ListTasks(s.superAdmin, ListTasksInput{Page: 2, PageSize: 2})
	s.Require().NoError(err)
	s.Equal(int64(3), total)
	s.Len(page, 1)

	otherTeam := uint64(9999)
	_, _, err = s.tasks.ListTasks(s.admin, ListTasksInput{TeamID: &otherTeam})
	s.ErrorIs(err, ErrPermissionDenied)
}

func (s *ServiceTestSuite) TestListTasks_DueToday() {
	intern := s.createIntern("intern", 0)
	today := clock.Today(s.clock)
	tomorrow := clock.ToDate(s.clock.Now().Add(24 * time.Hour))

	_, err := s.tasks.CreateTask(context.Background(), s.admin, CreateTaskInput{Title: "today", AssignedTo: &intern.ID, DueDate: &today})
	s.Require().NoError(err)
	_, err = s.tasks.CreateTask(context.Background(), s.admin, CreateTaskInput{Title: "tomorrow", AssignedTo: &intern.ID, DueDate: &tomorrow})
	s.Require().NoError(err)

	due, _, err := s.tasks.ListTasks(s.admin, ListTasksInput{DueToday: true})
	s.Require().NoError(err)
	s.Require().Len(due, 1)
	s.Equal("today", due[0].Title)

	due, _, err = s.tasks.ListTasks(intern, ListTasksInput{DueToday: true})
	s.Require().NoError(err)
	s.Require().Len(due, 1)
	s.Equal("today", due[0].Title)
}

func (s *ServiceTestSuite) TestGenerateTasks() {
	ctx := context.Background()
	past := s.clock.Now().Add(-72 * time.Hour)
	future := s.clock.Now().Add(72 * time.Hour)
	s.drafter.tasks = []GeneratedTask{
		{Title: "Write onboarding notes", Priority: "high", DueDate: &future},
		{Title: "  "},
		{Title: "Fix flaky test", Priority: "whenever", DueDate: &past},
	}

	drafts, err := s.tasks.GenerateTasks(ctx, s.admin, "notes from the weekly sync")
	s.Require().NoError(err)
	s.Require().Len(drafts, 2)
	s.Equal("high", drafts[0].Priority)
	s.NotNil(drafts[0].DueDate)
	s.Equal("medium", drafts[1].Priority)
	s.Nil(drafts[1].DueDate)

	intern := s.createIntern("intern", 0)
	_, err = s.tasks.GenerateTasks(ctx, intern, "anything")
	s.ErrorIs(err, ErrPermissionDenied)

	s.drafter.tasks = nil
	_, err = s.tasks.GenerateTasks(ctx, s.admin, "nothing actionable")
	s.ErrorIs(err, ErrAINoTasksGenerated)

	s.drafter.err = errors.New("rate limited")
	_, err = s.tasks.GenerateTasks(ctx, s.admin, "notes")
	s.Error(err)

	noAI := NewTaskService(s.taskRepo, s.userRepo, s.teamRepo, s.notifications, s.refresher, nil, s.clock, s.notifications.logger)
	_, err = noAI.GenerateTasks(ctx, s.admin, "notes")
	s.ErrorIs(err, ErrAIServiceNotConfigured)
}
