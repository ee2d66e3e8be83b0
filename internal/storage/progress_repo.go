package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

const MainProgressKey = "main_user"

type ProgressRepo struct {
	q Execer
}

func NewProgressRepo(db *sql.DB) *ProgressRepo {
	return &ProgressRepo{q: db}
}

// InTx returns a repo bound to the given transaction.
func (r *ProgressRepo) InTx(tx *sql.Tx) *ProgressRepo {
	return &ProgressRepo{q: tx}
}

func (r *ProgressRepo) Get(ctx context.Context, key string) (*Progress, error) {
	row := r.q.QueryRowContext(ctx, `
		SELECT key, total_xp, current_level, tasks_completed, current_streak, longest_streak, last_completion_date
		FROM user_progress
		WHERE key = ?
	`, key)

	var (
		p    Progress
		last sql.NullTime
	)
	if err := row.Scan(&p.Key, &p.TotalXP, &p.CurrentLevel, &p.TasksCompleted, &p.CurrentStreak, &p.LongestStreak, &last); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("progress get: %w", err)
	}
	if last.Valid {
		v := last.Time
		p.LastCompletionDate = &v
	}
	return &p, nil
}

func (r *ProgressRepo) GetOrCreateMain(ctx context.Context) (*Progress, error) {
	p, err := r.Get(ctx, MainProgressKey)
	if err != nil {
		return nil, err
	}
	if p != nil {
		return p, nil
	}

	if _, err := r.q.ExecContext(ctx, `
		INSERT INTO user_progress (key, total_xp, current_level, tasks_completed)
		VALUES (?, 0, 1, 0)
	`, MainProgressKey); err != nil {
		return nil, fmt.Errorf("progress insert: %w", err)
	}
	return r.Get(ctx, MainProgressKey)
}

func (r *ProgressRepo) Update(ctx context.Context, p *Progress) error {
	var last *time.Time
	if p.LastCompletionDate != nil {
		v := *p.LastCompletionDate
		last = &v
	}
	_, err := r.q.ExecContext(ctx, `
		UPDATE user_progress
		SET total_xp = ?, current_level = ?, tasks_completed = ?,
			current_streak = ?, longest_streak = ?, last_completion_date = ?
		WHERE key = ?
	`, p.TotalXP, p.CurrentLevel, p.TasksCompleted, p.CurrentStreak, p.LongestStreak, last, p.Key)
	if err != nil {
		return fmt.Errorf("progress update: %w", err)
	}
	return nil
}
