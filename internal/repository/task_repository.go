package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ============================================
// PostgreSQL Task Repository
// ============================================

type pgTaskRepository struct {
	pool *pgxpool.Pool
}

const taskColumns = `
	t.id, t.project_id, t.title, t.description, t.status, t.priority,
	t.assignee_id, t.creator_id, t.due_date, t.created_at, t.updated_at,
	a.id, a.name, a.email, a.role
`

const taskFrom = `
	FROM tasks t
	LEFT JOIN users a ON t.assignee_id = a.id
`

func (r *pgTaskRepository) Create(ctx context.Context, task *Task) error {
	if task.Status == "" {
		task.Status = "todo"
	}
	if task.Priority == "" {
		task.Priority = "medium"
	}
	query := `
		INSERT INTO tasks (project_id, title, description, status, priority, assignee_id, creator_id, due_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at
	`
	return r.pool.QueryRow(ctx, query,
		task.ProjectID, task.Title, task.Description, task.Status,
		task.Priority, task.AssigneeID, task.CreatorID, task.DueDate,
	).Scan(&task.ID, &task.CreatedAt, &task.UpdatedAt)
}

func scanTask(row pgx.Row) (*Task, error) {
	task := &Task{}
	var assigneeID, assigneeName, assigneeEmail, assigneeRole *string

	err := row.Scan(
		&task.ID, &task.ProjectID, &task.Title, &task.Description, &task.Status, &task.Priority,
		&task.AssigneeID, &task.CreatorID, &task.DueDate, &task.CreatedAt, &task.UpdatedAt,
		&assigneeID, &assigneeName, &assigneeEmail, &assigneeRole,
	)
	if err != nil {
		return nil, err
	}

	if assigneeID != nil {
		task.Assignee = &User{ID: *assigneeID, Name: *assigneeName, Email: *assigneeEmail, Role: *assigneeRole}
	}
	return task, nil
}

func (r *pgTaskRepository) FindByID(ctx context.Context, id string) (*Task, error) {
	query := `SELECT ` + taskColumns + taskFrom + ` WHERE t.id = $1`
	task, err := scanTask(r.pool.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return task, nil
}

func (r *pgTaskRepository) queryTasks(ctx context.Context, query string, args ...interface{}) ([]*Task, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []*Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	return tasks, nil
}

func (r *pgTaskRepository) FindByProjectID(ctx context.Context, projectID string) ([]*Task, error) {
	query := `SELECT ` + taskColumns + taskFrom + ` WHERE t.project_id = $1 ORDER BY t.created_at`
	return r.queryTasks(ctx, query, projectID)
}

func (r *pgTaskRepository) FindByStatus(ctx context.Context, projectID, status string) ([]*Task, error) {
	query := `SELECT ` + taskColumns + taskFrom + ` WHERE t.project_id = $1 AND t.status = $2 ORDER BY t.created_at`
	return r.queryTasks(ctx, query, projectID, status)
}

func (r *pgTaskRepository) FindByAssignee(ctx context.Context, assigneeID string) ([]*Task, error) {
	query := `SELECT ` + taskColumns + taskFrom + ` WHERE t.assignee_id = $1 ORDER BY t.created_at DESC`
	return r.queryTasks(ctx, query, assigneeID)
}

func (r *pgTaskRepository) FindOverdue(ctx context.Context) ([]*Task, error) {
	query := `SELECT ` + taskColumns + taskFrom + ` WHERE t.due_date < NOW() AND t.status != 'done'`
	return r.queryTasks(ctx, query)
}

func (r *pgTaskRepository) Update(ctx context.Context, task *Task) error {
	query := `
		UPDATE tasks SET
			title = $2, description = $3, status = $4, priority = $5,
			assignee_id = $6, due_date = $7, updated_at = NOW()
		WHERE id = $1
	`
	_, err := r.pool.Exec(ctx, query,
		task.ID, task.Title, task.Description, task.Status, task.Priority,
		task.AssigneeID, task.DueDate,
	)
	return err
}

func (r *pgTaskRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM tasks WHERE id = $1`
	_, err := r.pool.Exec(ctx, query, id)
	return err
}

// CountByStatus is the aggregate-query side of the progress computation.
// Its result must agree with an in-memory reduction over FindByProjectID.
func (r *pgTaskRepository) CountByStatus(ctx context.Context, projectID string) (*StatusCounts, error) {
	query := `
		SELECT
			COUNT(*) AS total,
			COUNT(*) FILTER (WHERE status = 'todo') AS todo,
			COUNT(*) FILTER (WHERE status = 'in_progress') AS in_progress,
			COUNT(*) FILTER (WHERE status = 'done') AS done
		FROM tasks WHERE project_id = $1
	`
	counts := &StatusCounts{}
	err := r.pool.QueryRow(ctx, query, projectID).Scan(
		&counts.Total, &counts.Todo, &counts.InProgress, &counts.Done,
	)
	if err != nil {
		return nil, err
	}
	return counts, nil
}
