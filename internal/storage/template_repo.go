package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

type TemplateRepo struct {
	q Execer
}

func NewTemplateRepo(db *sql.DB) *TemplateRepo {
	return &TemplateRepo{q: db}
}

func (r *TemplateRepo) InTx(tx *sql.Tx) *TemplateRepo {
	return &TemplateRepo{q: tx}
}

type TemplateInsert struct {
	Title        string
	Category     string
	Recurrence   string
	EffortType   string
	LocationType string
	BaseXPLow    int
	BaseXPMedium int
	BaseXPHigh   int
}

type SubTaskInsert struct {
	Description  string
	Tier         int
	DisplayOrder int
}

func (r *TemplateRepo) Insert(ctx context.Context, in TemplateInsert, subtasks []SubTaskInsert) (int64, error) {
	res, err := r.q.ExecContext(ctx, `
		INSERT INTO task_templates (
			title, category, recurrence, effort_type, location_type,
			base_xp_low, base_xp_medium, base_xp_high
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, in.Title, in.Category, in.Recurrence, in.EffortType, in.LocationType, in.BaseXPLow, in.BaseXPMedium, in.BaseXPHigh)
	if err != nil {
		return 0, fmt.Errorf("template insert: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("template last insert id: %w", err)
	}
	if err := r.insertSubtasks(ctx, id, subtasks); err != nil {
		return 0, err
	}
	return id, nil
}

func (r *TemplateRepo) insertSubtasks(ctx context.Context, templateID int64, subtasks []SubTaskInsert) error {
	for _, st := range subtasks {
		_, err := r.q.ExecContext(ctx, `
			INSERT INTO subtasks (template_id, description, tier, display_order)
			VALUES (?, ?, ?, ?)
		`, templateID, st.Description, st.Tier, st.DisplayOrder)
		if err != nil {
			return fmt.Errorf("subtask insert: %w", err)
		}
	}
	return nil
}

func (r *TemplateRepo) Get(ctx context.Context, id int64) (*TaskTemplate, error) {
	row := r.q.QueryRowContext(ctx, `
		SELECT id, title, category, recurrence, effort_type, location_type,
			base_xp_low, base_xp_medium, base_xp_high, is_active, created_at
		FROM task_templates
		WHERE id = ?
	`, id)

	t, err := scanTemplate(row)
	if err != nil || t == nil {
		return t, err
	}
	subs, err := r.ListSubtasks(ctx, id)
	if err != nil {
		return nil, err
	}
	t.Subtasks = subs
	return t, nil
}

// TemplateFilter narrows List. Zero-value fields are ignored.
type TemplateFilter struct {
	Category        string
	EffortType      string
	LocationType    string
	Recurrence      string
	IncludeInactive bool
}

func (r *TemplateRepo) List(ctx context.Context, f TemplateFilter) ([]TaskTemplate, error) {
	query := `
		SELECT id, title, category, recurrence, effort_type, location_type,
			base_xp_low, base_xp_medium, base_xp_high, is_active, created_at
		FROM task_templates
		WHERE 1 = 1`
	var params []any

	if !f.IncludeInactive {
		query += ` AND is_active = 1`
	}
	if f.Category != "" {
		query += ` AND category = ?`
		params = append(params, f.Category)
	}
	if f.EffortType != "" {
		query += ` AND effort_type = ?`
		params = append(params, f.EffortType)
	}
	if f.LocationType != "" {
		query += ` AND location_type = ?`
		params = append(params, f.LocationType)
	}
	if f.Recurrence != "" {
		query += ` AND recurrence = ?`
		params = append(params, f.Recurrence)
	}
	query += ` ORDER BY base_xp_high DESC, id ASC`

	rows, err := r.q.QueryContext(ctx, query, params...)
	if err != nil {
		return nil, fmt.Errorf("template list: %w", err)
	}
	defer rows.Close()

	var out []TaskTemplate
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("template list rows: %w", err)
	}

	for i := range out {
		subs, err := r.ListSubtasks(ctx, out[i].ID)
		if err != nil {
			return nil, err
		}
		out[i].Subtasks = subs
	}
	return out, nil
}

func (r *TemplateRepo) ListSubtasks(ctx context.Context, templateID int64) ([]SubTask, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT id, template_id, description, tier, display_order
		FROM subtasks
		WHERE template_id = ?
		ORDER BY display_order ASC, id ASC
	`, templateID)
	if err != nil {
		return nil, fmt.Errorf("subtask list: %w", err)
	}
	defer rows.Close()

	var out []SubTask
	for rows.Next() {
		var st SubTask
		if err := rows.Scan(&st.ID, &st.TemplateID, &st.Description, &st.Tier, &st.DisplayOrder); err != nil {
			return nil, fmt.Errorf("subtask scan: %w", err)
		}
		out = append(out, st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("subtask rows: %w", err)
	}
	return out, nil
}

// UpdateFields updates the template row and wholesale-replaces its subtasks.
func (r *TemplateRepo) UpdateFields(ctx context.Context, id int64, in TemplateInsert, subtasks []SubTaskInsert) error {
	_, err := r.q.ExecContext(ctx, `
		UPDATE task_templates
		SET title = ?, category = ?, recurrence = ?, effort_type = ?, location_type = ?,
			base_xp_low = ?, base_xp_medium = ?, base_xp_high = ?
		WHERE id = ?
	`, in.Title, in.Category, in.Recurrence, in.EffortType, in.LocationType, in.BaseXPLow, in.BaseXPMedium, in.BaseXPHigh, id)
	if err != nil {
		return fmt.Errorf("template update: %w", err)
	}
	if _, err := r.q.ExecContext(ctx, `DELETE FROM subtasks WHERE template_id = ?`, id); err != nil {
		return fmt.Errorf("subtask delete: %w", err)
	}
	return r.insertSubtasks(ctx, id, subtasks)
}

func (r *TemplateRepo) SetActive(ctx context.Context, id int64, active bool) error {
	_, err := r.q.ExecContext(ctx, `UPDATE task_templates SET is_active = ? WHERE id = ?`, boolToInt(active), id)
	if err != nil {
		return fmt.Errorf("template set active: %w", err)
	}
	return nil
}

// DeleteCascade removes a template, its subtasks, and every derived
// instance with its completion rows. The template owns the lot.
func (r *TemplateRepo) DeleteCascade(ctx context.Context, id int64) error {
	stmts := []struct {
		label string
		query string
	}{
		{"completion cascade delete", `
			DELETE FROM subtask_completions
			WHERE instance_id IN (SELECT id FROM task_instances WHERE template_id = ?)`},
		{"instance cascade delete", `DELETE FROM task_instances WHERE template_id = ?`},
		{"subtask cascade delete", `DELETE FROM subtasks WHERE template_id = ?`},
		{"template delete", `DELETE FROM task_templates WHERE id = ?`},
	}
	for _, s := range stmts {
		if _, err := r.q.ExecContext(ctx, s.query, id); err != nil {
			return fmt.Errorf("%s: %w", s.label, err)
		}
	}
	return nil
}

func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTemplate(row scanner) (*TaskTemplate, error) {
	var (
		t         TaskTemplate
		category  sql.NullString
		effort    sql.NullString
		location  sql.NullString
		isActive  int
		createdAt time.Time
	)
	if err := row.Scan(
		&t.ID, &t.Title, &category, &t.Recurrence, &effort, &location,
		&t.BaseXPLow, &t.BaseXPMedium, &t.BaseXPHigh, &isActive, &createdAt,
	); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("template scan: %w", err)
	}
	t.Category = category.String
	t.EffortType = effort.String
	t.LocationType = location.String
	t.Active = isActive != 0
	t.CreatedAt = createdAt
	return &t, nil
}
