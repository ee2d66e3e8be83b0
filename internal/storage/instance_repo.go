package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

type InstanceRepo struct {
	q Execer
}

func NewInstanceRepo(db *sql.DB) *InstanceRepo {
	return &InstanceRepo{q: db}
}

func (r *InstanceRepo) InTx(tx *sql.Tx) *InstanceRepo {
	return &InstanceRepo{q: tx}
}

func (r *InstanceRepo) Insert(ctx context.Context, templateID int64, tier int, createdAt time.Time) (int64, error) {
	res, err := r.q.ExecContext(ctx, `
		INSERT INTO task_instances (template_id, selected_tier, created_at)
		VALUES (?, ?, ?)
	`, templateID, tier, createdAt)
	if err != nil {
		return 0, fmt.Errorf("instance insert: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("instance last insert id: %w", err)
	}
	return id, nil
}

func (r *InstanceRepo) Get(ctx context.Context, id int64) (*TaskInstance, error) {
	row := r.q.QueryRowContext(ctx, `
		SELECT id, template_id, selected_tier, created_at, completed_at, xp_earned
		FROM task_instances
		WHERE id = ?
	`, id)

	inst, err := scanInstance(row)
	if err != nil || inst == nil {
		return inst, err
	}
	comps, err := r.ListCompletions(ctx, id)
	if err != nil {
		return nil, err
	}
	inst.Completions = comps
	return inst, nil
}

// ListCreatedBetween returns instances created in [from, to), oldest first.
func (r *InstanceRepo) ListCreatedBetween(ctx context.Context, from, to time.Time) ([]TaskInstance, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT id, template_id, selected_tier, created_at, completed_at, xp_earned
		FROM task_instances
		WHERE created_at >= ? AND created_at < ?
		ORDER BY created_at ASC, id ASC
	`, from, to)
	if err != nil {
		return nil, fmt.Errorf("instance list: %w", err)
	}
	defer rows.Close()

	out, err := collectInstances(rows)
	if err != nil {
		return nil, err
	}
	for i := range out {
		comps, err := r.ListCompletions(ctx, out[i].ID)
		if err != nil {
			return nil, err
		}
		out[i].Completions = comps
	}
	return out, nil
}

// ListCompletedSince returns instances completed at or after the cutoff.
func (r *InstanceRepo) ListCompletedSince(ctx context.Context, since time.Time) ([]TaskInstance, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT id, template_id, selected_tier, created_at, completed_at, xp_earned
		FROM task_instances
		WHERE completed_at IS NOT NULL AND completed_at >= ?
		ORDER BY completed_at DESC
	`, since)
	if err != nil {
		return nil, fmt.Errorf("instance completed list: %w", err)
	}
	defer rows.Close()

	return collectInstances(rows)
}

func (r *InstanceRepo) SetTier(ctx context.Context, id int64, tier int) error {
	_, err := r.q.ExecContext(ctx, `UPDATE task_instances SET selected_tier = ? WHERE id = ?`, tier, id)
	if err != nil {
		return fmt.Errorf("instance set tier: %w", err)
	}
	return nil
}

func (r *InstanceRepo) MarkCompleted(ctx context.Context, id int64, completedAt time.Time, xpEarned int) error {
	_, err := r.q.ExecContext(ctx, `
		UPDATE task_instances
		SET completed_at = ?, xp_earned = ?
		WHERE id = ?
	`, completedAt, xpEarned, id)
	if err != nil {
		return fmt.Errorf("instance mark completed: %w", err)
	}
	return nil
}

// DeleteCascade removes an instance and its completion rows.
func (r *InstanceRepo) DeleteCascade(ctx context.Context, id int64) error {
	if _, err := r.q.ExecContext(ctx, `DELETE FROM subtask_completions WHERE instance_id = ?`, id); err != nil {
		return fmt.Errorf("completion delete: %w", err)
	}
	if _, err := r.q.ExecContext(ctx, `DELETE FROM task_instances WHERE id = ?`, id); err != nil {
		return fmt.Errorf("instance delete: %w", err)
	}
	return nil
}

// InsertCompletion seeds one unchecked checklist row. The unique index on
// (instance_id, subtask_id) makes re-seeding a no-op.
func (r *InstanceRepo) InsertCompletion(ctx context.Context, instanceID, subtaskID int64) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO subtask_completions (instance_id, subtask_id, completed)
		VALUES (?, ?, 0)
		ON CONFLICT(instance_id, subtask_id) DO NOTHING
	`, instanceID, subtaskID)
	if err != nil {
		return fmt.Errorf("completion insert: %w", err)
	}
	return nil
}

func (r *InstanceRepo) GetCompletion(ctx context.Context, completionID int64) (*SubTaskCompletion, error) {
	row := r.q.QueryRowContext(ctx, `
		SELECT id, instance_id, subtask_id, completed
		FROM subtask_completions
		WHERE id = ?
	`, completionID)

	var (
		c    SubTaskCompletion
		done int
	)
	if err := row.Scan(&c.ID, &c.InstanceID, &c.SubtaskID, &done); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("completion get: %w", err)
	}
	c.Completed = done != 0
	return &c, nil
}

func (r *InstanceRepo) SetCompletionState(ctx context.Context, completionID int64, completed bool) error {
	_, err := r.q.ExecContext(ctx, `UPDATE subtask_completions SET completed = ? WHERE id = ?`, boolToInt(completed), completionID)
	if err != nil {
		return fmt.Errorf("completion set state: %w", err)
	}
	return nil
}

func (r *InstanceRepo) ListCompletions(ctx context.Context, instanceID int64) ([]SubTaskCompletion, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT sc.id, sc.instance_id, sc.subtask_id, sc.completed
		FROM subtask_completions sc
		JOIN subtasks st ON st.id = sc.subtask_id
		WHERE sc.instance_id = ?
		ORDER BY st.display_order ASC, st.id ASC
	`, instanceID)
	if err != nil {
		return nil, fmt.Errorf("completion list: %w", err)
	}
	defer rows.Close()

	var out []SubTaskCompletion
	for rows.Next() {
		var (
			c    SubTaskCompletion
			done int
		)
		if err := rows.Scan(&c.ID, &c.InstanceID, &c.SubtaskID, &done); err != nil {
			return nil, fmt.Errorf("completion scan: %w", err)
		}
		c.Completed = done != 0
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("completion rows: %w", err)
	}
	return out, nil
}

// WeeklyTotals returns completion count and summed XP since the cutoff.
func (r *InstanceRepo) WeeklyTotals(ctx context.Context, since time.Time) (count int, points int, err error) {
	row := r.q.QueryRowContext(ctx, `
		SELECT COUNT(*), COALESCE(SUM(xp_earned), 0)
		FROM task_instances
		WHERE completed_at IS NOT NULL AND completed_at >= ?
	`, since)
	if err := row.Scan(&count, &points); err != nil {
		return 0, 0, fmt.Errorf("weekly totals: %w", err)
	}
	return count, points, nil
}

// CategoryCounts returns per-category completion counts since the cutoff.
func (r *InstanceRepo) CategoryCounts(ctx context.Context, since time.Time) (map[string]int, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT t.category, COUNT(*)
		FROM task_instances i
		JOIN task_templates t ON t.id = i.template_id
		WHERE i.completed_at IS NOT NULL AND i.completed_at >= ? AND t.category IS NOT NULL
		GROUP BY t.category
	`, since)
	if err != nil {
		return nil, fmt.Errorf("category counts: %w", err)
	}
	defer rows.Close()

	out := map[string]int{}
	for rows.Next() {
		var (
			cat string
			n   int
		)
		if err := rows.Scan(&cat, &n); err != nil {
			return nil, fmt.Errorf("category counts scan: %w", err)
		}
		out[cat] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("category counts rows: %w", err)
	}
	return out, nil
}

func scanInstance(row scanner) (*TaskInstance, error) {
	var (
		inst      TaskInstance
		completed sql.NullTime
	)
	if err := row.Scan(&inst.ID, &inst.TemplateID, &inst.SelectedTier, &inst.CreatedAt, &completed, &inst.XPEarned); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("instance scan: %w", err)
	}
	if completed.Valid {
		v := completed.Time
		inst.CompletedAt = &v
	}
	return &inst, nil
}

func collectInstances(rows *sql.Rows) ([]TaskInstance, error) {
	var out []TaskInstance
	for rows.Next() {
		inst, err := scanInstance(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *inst)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("instance rows: %w", err)
	}
	return out, nil
}
