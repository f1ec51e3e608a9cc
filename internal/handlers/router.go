package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/intern-management-api/internal/middleware"
	"github.com/yukikurage/intern-management-api/internal/models"
)

// Handlers groups every HTTP handler of the API.
type Handlers struct {
	Auth          *AuthHandler
	Users         *UserHandler
	Teams         *TeamHandler
	Tasks         *TaskHandler
	Resources     *ResourceHandler
	Certificates  *CertificateHandler
	Notifications *NotificationHandler
	Stats         *StatsHandler
}

// Guards are the access middlewares the routes depend on.
type Guards struct {
	Auth       gin.HandlerFunc
	TaskAccess gin.HandlerFunc
	TeamAccess gin.HandlerFunc
}

// RegisterRoutes mounts the health check and the /api tree on r.
func RegisterRoutes(r *gin.Engine, h Handlers, g Guards) {
	staff := middleware.RequireStaff()
	superAdmin := middleware.RequireRole(models.RoleSuperAdmin)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "Intern Management API is running",
		})
	})

	api := r.Group("/api")

	// Auth routes (public)
	auth := api.Group("/auth")
	{
		auth.POST("/login", h.Auth.Login)
		auth.POST("/logout", h.Auth.Logout)
		auth.GET("/me", g.Auth, h.Auth.GetCurrentUser)
	}

	users := api.Group("/users")
	users.Use(g.Auth)
	{
		users.GET("", staff, h.Users.ListUsers)
		users.POST("", staff, h.Users.CreateUser)
		users.POST("/import", staff, h.Users.ImportUsers)
		users.GET("/:id", h.Users.GetUser)
		users.PATCH("/:id", h.Users.UpdateUser)
		users.POST("/:id/attendance", h.Users.MarkAttendance)
		users.GET("/:id/progress", h.Users.GetProgress)
	}

	teams := api.Group("/teams")
	teams.Use(g.Auth)
	{
		teams.GET("", h.Teams.ListTeams)
		teams.POST("", staff, h.Teams.CreateTeam)
		teams.GET("/:id", g.TeamAccess, h.Teams.GetTeam)
		teams.PATCH("/:id", staff, h.Teams.UpdateTeam)
		teams.DELETE("/:id", staff, h.Teams.DeleteTeam)
		teams.POST("/:id/members", staff, h.Teams.AddMember)
		teams.DELETE("/:id/members/:user_id", staff, h.Teams.RemoveMember)
	}

	tasks := api.Group("/tasks")
	tasks.Use(g.Auth)
	{
		tasks.GET("", h.Tasks.ListTasks)
		tasks.POST("", staff, h.Tasks.CreateTask)
		tasks.POST("/generate", staff, h.Tasks.GenerateTasks)
		tasks.GET("/:id", g.TaskAccess, h.Tasks.GetTask)
		tasks.PATCH("/:id", g.TaskAccess, h.Tasks.UpdateTask)
		tasks.DELETE("/:id", staff, g.TaskAccess, h.Tasks.DeleteTask)
	}

	resources := api.Group("/resources")
	resources.Use(g.Auth)
	{
		resources.GET("", h.Resources.ListResources)
		resources.POST("", staff, h.Resources.CreateResource)
		resources.GET("/:id", h.Resources.GetResource)
	}
	api.GET("/meetings", g.Auth, h.Resources.ListMeetings)

	certificates := api.Group("/certificates")
	certificates.Use(g.Auth)
	{
		certificates.GET("", staff, h.Certificates.ListCertificates)
		certificates.GET("/user/:userId", h.Certificates.GetUserCertificate)
		certificates.POST("/:id/issue", staff, h.Certificates.IssueCertificate)
		certificates.GET("/:id/download", h.Certificates.DownloadCertificate)
	}

	notifications := api.Group("/notifications")
	{
		notifications.GET("/poll-config", h.Notifications.PollConfig)
		notifications.GET("", g.Auth, h.Notifications.ListNotifications)
		notifications.GET("/unread-count", g.Auth, h.Notifications.UnreadCount)
		notifications.PATCH("/read-all", g.Auth, h.Notifications.MarkAllRead)
		notifications.PATCH("/:id/read", g.Auth, h.Notifications.MarkRead)
	}

	api.GET("/stats", g.Auth, staff, h.Stats.GetStats)
	api.GET("/admin/stats", g.Auth, superAdmin, h.Stats.GetStats)
}
