package constants

// Session and context keys
const (
	SessionCookieName   = "intern_session"
	ContextKeyUserID    = "user_id"
	ContextKeyUser      = "current_user"
	ContextKeyTask      = "task"
	ContextKeyTeam      = "team"
	SessionMaxAgeSecond = 86400 * 7
)

// Pagination
const (
	MinPageSize     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Limits
const (
	MinPasswordLength       = 8
	TemporaryPasswordBytes  = 6
	MaxAIGeneratedTasks     = 20
	MaxImportRows           = 500
	DefaultNotificationList = 50
)
