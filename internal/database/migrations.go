package database

import (
	"fmt"
	"log/slog"

	"github.com/yukikurage/intern-management-api/internal/models"
	"gorm.io/gorm"
)

// AddIndexes adds the composite indexes the dashboards and the reconciler query by.
func AddIndexes(db *gorm.DB) error {
	indexes := []struct {
		model   interface{}
		table   string
		name    string
		columns string
	}{
		// Reconciler scans interns by role and activity
		{&models.User{}, "users", "idx_users_role_active", "role, is_active"},

		// Task lookups for an intern's own and team tasks
		{&models.Task{}, "tasks", "idx_tasks_team_team_task", "team_id, is_team_task"},
		{&models.Task{}, "tasks", "idx_tasks_assigned_status", "assigned_to, status"},

		// Resource listing per team and type
		{&models.Resource{}, "resources", "idx_resources_team_type", "team_id, type"},

		// Notification polling, newest first
		{&models.Notification{}, "notifications", "idx_notifications_user_created", "user_id, created_at"},
		{&models.Notification{}, "notifications", "idx_notifications_user_read", "user_id, is_read"},
	}

	migrator := db.Migrator()
	for _, idx := range indexes {
		if migrator.HasIndex(idx.model, idx.name) {
			slog.Debug("Index already exists, skipping", "index", idx.name)
			continue
		}

		sql := fmt.Sprintf("CREATE INDEX %s ON %s (%s)", idx.name, idx.table, idx.columns)
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("failed to create index %s: %w", idx.name, err)
		}

		slog.Info("Created index", "index", idx.name, "table", idx.table, "columns", idx.columns)
	}

	return nil
}

// MigrateDatabase runs the migrations that AutoMigrate does not cover.
func MigrateDatabase(db *gorm.DB) error {
	if err := AddIndexes(db); err != nil {
		return fmt.Errorf("failed to add indexes: %w", err)
	}

	return nil
}
