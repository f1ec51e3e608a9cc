package handlers

import (
	"fmt"
	"net/http"

	"github.com/yukikurage/intern-management-api/internal/dto"
)

func (s *APITestSuite) TestNotifications_ReadFlow() {
	intern := s.createIntern("intern", 0)
	adminCookies := s.login("admin")
	for i := 0; i < 2; i++ {
		w := s.do(http.MethodPost, "/api/tasks", map[string]interface{}{
			"title":       fmt.Sprintf("Task %d", i),
			"assigned_to": intern.ID,
		}, adminCookies)
		s.Require().Equal(http.StatusCreated, w.Code)
	}

	cookies := s.login("intern")

	w := s.do(http.MethodGet, "/api/notifications/unread-count", nil, cookies)
	s.Require().Equal(http.StatusOK, w.Code)
	var count struct {
		Unread int64 `json:"unread"`
	}
	s.decode(w, &count)
	s.Equal(int64(2), count.Unread)

	w = s.do(http.MethodGet, "/api/notifications?limit=1", nil, cookies)
	s.Require().Equal(http.StatusOK, w.Code)
	var list struct {
		Notifications []dto.NotificationDTO `json:"notifications"`
	}
	s.decode(w, &list)
	s.Require().Len(list.Notifications, 1)

	w = s.do(http.MethodPatch, fmt.Sprintf("/api/notifications/%d/read", list.Notifications[0].ID), nil, adminCookies)
	s.Equal(http.StatusForbidden, w.Code)

	w = s.do(http.MethodPatch, fmt.Sprintf("/api/notifications/%d/read", list.Notifications[0].ID), nil, cookies)
	s.Require().Equal(http.StatusOK, w.Code)
	var read dto.NotificationDTO
	s.decode(w, &read)
	s.True(read.IsRead)

	w = s.do(http.MethodPatch, "/api/notifications/read-all", nil, cookies)
	s.Require().Equal(http.StatusOK, w.Code)
	var updated struct {
		Updated int64 `json:"updated"`
	}
	s.decode(w, &updated)
	s.Equal(int64(1), updated.Updated)

	w = s.do(http.MethodGet, "/api/notifications?unread_only=true", nil, cookies)
	s.Require().Equal(http.StatusOK, w.Code)
	s.decode(w, &list)
	s.Empty(list.Notifications)
}

func (s *APITestSuite) TestNotifications_PollConfigIsPublic() {
	w := s.do(http.MethodGet, "/api/notifications/poll-config", nil, nil)
	s.Require().Equal(http.StatusOK, w.Code)
	s.JSONEq(`{"interval_seconds":5}`, w.Body.String())

	w = s.do(http.MethodGet, "/api/notifications", nil, nil)
	s.Equal(http.StatusUnauthorized, w.Code)
}
