package handlers

import (
	"fmt"
	"net/http"

	"github.com/yukikurage/intern-management-api/internal/dto"
	apierrors "github.com/yukikurage/intern-management-api/internal/errors"
	"github.com/yukikurage/intern-management-api/internal/models"
	"github.com/yukikurage/intern-management-api/internal/progress"
	"github.com/yukikurage/intern-management-api/internal/services"
)

func (s *APITestSuite) TestCreateUser_ProvisionsInternWithTemporaryPassword() {
	cookies := s.login("admin")

	w := s.do(http.MethodPost, "/api/users", map[string]interface{}{
		"username":   "sarah",
		"name":       "Sarah Connor",
		"email":      "sarah@example.com",
		"start_date": "2024-06-01",
		"end_date":   "2024-08-30",
	}, cookies)
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())

	var resp dto.CreateUserResponse
	s.decode(w, &resp)
	s.Equal(models.RoleIntern, resp.User.Role)
	s.Equal("2024-08-30", resp.User.EndDate)
	s.Require().NotNil(resp.User.TeamID)
	s.Equal(s.team.ID, *resp.User.TeamID)
	s.Regexp(`^[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}$`, resp.TemporaryPassword)

	w = s.do(http.MethodPost, "/api/auth/login", map[string]string{
		"username": "sarah",
		"password": resp.TemporaryPassword,
	}, nil)
	s.Equal(http.StatusOK, w.Code)
}

func (s *APITestSuite) TestCreateUser_Validation() {
	cookies := s.login("admin")

	w := s.do(http.MethodPost, "/api/users", map[string]interface{}{
		"username": "sarah",
		"name":     "Sarah",
		"email":    "not-an-email",
	}, cookies)
	s.Require().Equal(http.StatusBadRequest, w.Code)

	var body apierrors.APIError
	s.decode(w, &body)
	s.Equal(apierrors.ErrCodeValidationFailed, body.Code)
	s.Contains(body.Details, "email")

	w = s.do(http.MethodPost, "/api/users", map[string]interface{}{
		"username":   "sarah",
		"name":       "Sarah",
		"email":      "sarah@example.com",
		"start_date": "01/06/2024",
	}, cookies)
	s.Equal(http.StatusBadRequest, w.Code)
	s.Contains(w.Body.String(), "start_date")

	w = s.do(http.MethodPost, "/api/users", map[string]interface{}{
		"username": "admin",
		"name":     "Dup",
		"email":    "dup@example.com",
	}, cookies)
	s.Equal(http.StatusConflict, w.Code)
}

func (s *APITestSuite) TestCreateUser_InternForbidden() {
	s.createIntern("intern", 0)
	cookies := s.login("intern")

	w := s.do(http.MethodPost, "/api/users", map[string]interface{}{
		"username": "other",
		"name":     "Other",
		"email":    "other@example.com",
	}, cookies)
	s.Equal(http.StatusForbidden, w.Code)

	w = s.do(http.MethodGet, "/api/users", nil, cookies)
	s.Equal(http.StatusForbidden, w.Code)
}

func (s *APITestSuite) TestImportUsers_ReportsSkippedRows() {
	cookies := s.login("admin")

	w := s.do(http.MethodPost, "/api/users/import", map[string]interface{}{
		"users": []map[string]interface{}{
			{"username": "alpha", "name": "Alpha", "email": "alpha@example.com"},
			{"username": "admin", "name": "Taken", "email": "taken@example.com"},
			{"username": "", "name": "Nameless", "email": "n@example.com"},
		},
	}, cookies)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	var report services.ImportReport
	s.decode(w, &report)
	s.Require().Len(report.Imported, 1)
	s.Equal("alpha", report.Imported[0].Username)
	s.Len(report.Skipped, 2)
}

func (s *APITestSuite) TestListAndGetUsers() {
	intern := s.createIntern("intern", 0)
	other := s.createIntern("other", 0)
	adminCookies := s.login("admin")

	w := s.do(http.MethodGet, "/api/users?role=intern", nil, adminCookies)
	s.Require().Equal(http.StatusOK, w.Code)
	var list struct {
		Users []dto.UserDTO `json:"users"`
	}
	s.decode(w, &list)
	s.Len(list.Users, 2)

	w = s.do(http.MethodGet, "/api/users?role=bogus", nil, adminCookies)
	s.Equal(http.StatusBadRequest, w.Code)

	internCookies := s.login("intern")
	w = s.do(http.MethodGet, fmt.Sprintf("/api/users/%d", intern.ID), nil, internCookies)
	s.Equal(http.StatusOK, w.Code)

	w = s.do(http.MethodGet, fmt.Sprintf("/api/users/%d", other.ID), nil, internCookies)
	s.Equal(http.StatusForbidden, w.Code)

	w = s.do(http.MethodGet, "/api/users/9999", nil, adminCookies)
	s.Equal(http.StatusNotFound, w.Code)

	w = s.do(http.MethodGet, "/api/users/abc", nil, adminCookies)
	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *APITestSuite) TestUpdateUser_InternCannotChangeDates() {
	intern := s.createIntern("intern", 0)
	cookies := s.login("intern")

	w := s.do(http.MethodPatch, fmt.Sprintf("/api/users/%d", intern.ID), map[string]interface{}{
		"department": "Research",
	}, cookies)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	var updated dto.UserDTO
	s.decode(w, &updated)
	s.Equal("Research", updated.Department)
	s.Equal(0, updated.Progress)

	w = s.do(http.MethodPatch, fmt.Sprintf("/api/users/%d", intern.ID), map[string]interface{}{
		"end_date": "2025-01-01",
	}, cookies)
	s.Equal(http.StatusForbidden, w.Code)
}

func (s *APITestSuite) TestMarkAttendance_IssuesCertificate() {
	intern := s.createIntern("intern", 19)
	task := &models.Task{
		Title:      "Done",
		Status:     models.TaskStatusCompleted,
		AssignedBy: s.admin.ID,
		AssignedTo: &intern.ID,
		TeamID:     s.team.ID,
	}
	s.Require().NoError(s.db.Create(task).Error)
	cookies := s.login("intern")

	w := s.do(http.MethodPost, fmt.Sprintf("/api/users/%d/attendance", intern.ID), nil, cookies)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	var updated dto.UserDTO
	s.decode(w, &updated)
	s.Equal(20, updated.AttendanceCount)
	s.Equal(93, updated.Progress)

	w = s.do(http.MethodGet, fmt.Sprintf("/api/users/%d/progress", intern.ID), nil, cookies)
	s.Require().Equal(http.StatusOK, w.Code)
	var summary progress.Summary
	s.decode(w, &summary)
	s.True(summary.IsEligibleForCertificate)
	s.Equal(1, summary.CompletedTasks)

	w = s.do(http.MethodGet, fmt.Sprintf("/api/certificates/user/%d", intern.ID), nil, cookies)
	s.Require().Equal(http.StatusOK, w.Code)
	var cert dto.CertificateDTO
	s.decode(w, &cert)
	s.True(cert.IsGenerated)
	s.Equal("2024-08-31", cert.IssuedDate)
	s.Equal(fmt.Sprintf("/api/certificates/%d/download", cert.ID), cert.CertificateURL)
}

func (s *APITestSuite) TestUpdateUser_EmptyEndDateClearsIt() {
	intern := s.createIntern("intern", 0)
	cookies := s.login("admin")

	w := s.do(http.MethodPatch, fmt.Sprintf("/api/users/%d", intern.ID), map[string]interface{}{
		"end_date": "2024-08-30",
	}, cookies)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	var updated dto.UserDTO
	s.decode(w, &updated)
	s.Equal("2024-08-30", updated.EndDate)

	w = s.do(http.MethodPatch, fmt.Sprintf("/api/users/%d", intern.ID), map[string]interface{}{
		"end_date": "",
	}, cookies)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	var cleared dto.UserDTO
	s.decode(w, &cleared)
	s.Empty(cleared.EndDate)
	s.Nil(s.reload(intern.ID).EndDate)
}
