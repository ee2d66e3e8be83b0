package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

func Migrate(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS user_progress (
			key TEXT PRIMARY KEY,
			total_xp INTEGER DEFAULT 0,
			current_level INTEGER DEFAULT 1,
			tasks_completed INTEGER DEFAULT 0,
			current_streak INTEGER DEFAULT 0,
			longest_streak INTEGER DEFAULT 0,
			last_completion_date DATETIME
		);`,
		`CREATE TABLE IF NOT EXISTS task_templates (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			title TEXT NOT NULL,
			category TEXT,
			recurrence TEXT NOT NULL,
			effort_type TEXT,
			location_type TEXT,

			base_xp_low INTEGER NOT NULL DEFAULT 10,
			base_xp_medium INTEGER NOT NULL DEFAULT 20,
			base_xp_high INTEGER NOT NULL DEFAULT 30,

			is_active INTEGER DEFAULT 1,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);`,
		`CREATE TABLE IF NOT EXISTS subtasks (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			template_id INTEGER NOT NULL,
			description TEXT NOT NULL,
			tier INTEGER NOT NULL,
			display_order INTEGER NOT NULL,
			FOREIGN KEY(template_id) REFERENCES task_templates(id)
		);`,
		`CREATE TABLE IF NOT EXISTS task_instances (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			template_id INTEGER NOT NULL,
			selected_tier INTEGER NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			completed_at DATETIME,
			xp_earned INTEGER DEFAULT 0,
			FOREIGN KEY(template_id) REFERENCES task_templates(id)
		);`,
		`CREATE TABLE IF NOT EXISTS subtask_completions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			instance_id INTEGER NOT NULL,
			subtask_id INTEGER NOT NULL,
			completed INTEGER DEFAULT 0,
			FOREIGN KEY(instance_id) REFERENCES task_instances(id),
			FOREIGN KEY(subtask_id) REFERENCES subtasks(id)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_subtasks_template_id ON subtasks(template_id);`,
		`CREATE INDEX IF NOT EXISTS idx_task_instances_template_id ON task_instances(template_id);`,
		`CREATE INDEX IF NOT EXISTS idx_task_instances_created_at ON task_instances(created_at);`,
		`CREATE INDEX IF NOT EXISTS idx_subtask_completions_instance_id ON subtask_completions(instance_id);`,
		// Upgrades must never double-seed a checklist row.
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_subtask_completions_instance_subtask ON subtask_completions(instance_id, subtask_id);`,
	}

	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}

	// Columns added after the first release (ignore if already present).
	alterStmts := []string{
		`ALTER TABLE task_templates ADD COLUMN effort_type TEXT;`,
		`ALTER TABLE task_templates ADD COLUMN location_type TEXT;`,
	}
	for _, stmt := range alterStmts {
		_, err := db.ExecContext(ctx, stmt)
		if err != nil && !strings.Contains(err.Error(), "duplicate column") {
			return fmt.Errorf("migrate alter: %w", err)
		}
	}

	return nil
}
