package handlers

import (
	"fmt"
	"net/http"

	"github.com/yukikurage/intern-management-api/internal/dto"
	"github.com/yukikurage/intern-management-api/internal/models"
)

func (s *APITestSuite) TestCreateTeam() {
	s.createUser("second-admin", models.RoleAdmin)

	w := s.do(http.MethodPost, "/api/teams", map[string]string{"name": "Design"}, s.login("second-admin"))
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())

	var team dto.TeamDTO
	s.decode(w, &team)
	s.Equal("Design", team.Name)

	w = s.do(http.MethodPost, "/api/teams", map[string]string{"name": "Another"}, s.login("admin"))
	s.Equal(http.StatusConflict, w.Code)

	w = s.do(http.MethodPost, "/api/teams", map[string]string{}, s.login("admin"))
	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *APITestSuite) TestGetTeam_MembersOnly() {
	s.createIntern("member", 0)
	s.createUser("loner", models.RoleIntern)

	w := s.do(http.MethodGet, fmt.Sprintf("/api/teams/%d", s.team.ID), nil, s.login("member"))
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	var team dto.TeamDTO
	s.decode(w, &team)
	s.Require().NotNil(team.Admin)
	s.Equal("admin", team.Admin.Username)
	s.Len(team.Members, 2)

	w = s.do(http.MethodGet, fmt.Sprintf("/api/teams/%d", s.team.ID), nil, s.login("loner"))
	s.Equal(http.StatusForbidden, w.Code)

	w = s.do(http.MethodGet, "/api/teams/9999", nil, s.login("Watcher"))
	s.Equal(http.StatusNotFound, w.Code)
}

func (s *APITestSuite) TestTeamMembership() {
	newcomer := s.createUser("newcomer", models.RoleIntern)
	cookies := s.login("admin")

	w := s.do(http.MethodPost, fmt.Sprintf("/api/teams/%d/members", s.team.ID), map[string]uint64{"user_id": newcomer.ID}, cookies)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	s.Require().NotNil(s.reload(newcomer.ID).TeamID)

	w = s.do(http.MethodDelete, fmt.Sprintf("/api/teams/%d/members/%d", s.team.ID, newcomer.ID), nil, cookies)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	s.Nil(s.reload(newcomer.ID).TeamID)

	w = s.do(http.MethodDelete, fmt.Sprintf("/api/teams/%d/members/%d", s.team.ID, newcomer.ID), nil, cookies)
	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *APITestSuite) TestUpdateAndDeleteTeam() {
	cookies := s.login("admin")

	w := s.do(http.MethodPatch, fmt.Sprintf("/api/teams/%d", s.team.ID), map[string]string{"name": "Platform"}, cookies)
	s.Require().Equal(http.StatusOK, w.Code)
	var team dto.TeamDTO
	s.decode(w, &team)
	s.Equal("Platform", team.Name)

	w = s.do(http.MethodGet, "/api/teams", nil, cookies)
	s.Require().Equal(http.StatusOK, w.Code)
	s.Contains(w.Body.String(), "Platform")

	w = s.do(http.MethodDelete, fmt.Sprintf("/api/teams/%d", s.team.ID), nil, cookies)
	s.Equal(http.StatusOK, w.Code)
}
