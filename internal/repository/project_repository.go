package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ============================================
// PostgreSQL Project Repository
// ============================================

type pgProjectRepository struct {
	pool *pgxpool.Pool
}

func (r *pgProjectRepository) Create(ctx context.Context, project *Project) error {
	query := `
		INSERT INTO projects (name, description, status, start_date, end_date, creator_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`
	return r.pool.QueryRow(ctx, query,
		project.Name, project.Description, project.Status,
		project.StartDate, project.EndDate, project.CreatorID,
	).Scan(&project.ID, &project.CreatedAt, &project.UpdatedAt)
}

func (r *pgProjectRepository) FindByID(ctx context.Context, id string) (*Project, error) {
	query := `
		SELECT id, name, description, status, start_date, end_date, creator_id, created_at, updated_at
		FROM projects WHERE id = $1
	`
	p := &Project{}
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&p.ID, &p.Name, &p.Description, &p.Status, &p.StartDate,
		&p.EndDate, &p.CreatorID, &p.CreatedAt, &p.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *pgProjectRepository) FindAll(ctx context.Context) ([]*Project, error) {
	query := `
		SELECT id, name, description, status, start_date, end_date, creator_id, created_at, updated_at
		FROM projects ORDER BY name
	`
	return r.queryProjects(ctx, query)
}

// FindVisibleByUser applies the same predicate the single-object guard uses:
// creator or membership row. Admin callers go through FindAll instead.
func (r *pgProjectRepository) FindVisibleByUser(ctx context.Context, userID string) ([]*Project, error) {
	query := `
		SELECT DISTINCT p.id, p.name, p.description, p.status, p.start_date, p.end_date,
		       p.creator_id, p.created_at, p.updated_at
		FROM projects p
		LEFT JOIN project_members pm ON p.id = pm.project_id
		WHERE p.creator_id = $1 OR pm.user_id = $1
		ORDER BY p.name
	`
	return r.queryProjects(ctx, query, userID)
}

func (r *pgProjectRepository) queryProjects(ctx context.Context, query string, args ...interface{}) ([]*Project, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var projects []*Project
	for rows.Next() {
		p := &Project{}
		if err := rows.Scan(
			&p.ID, &p.Name, &p.Description, &p.Status, &p.StartDate,
			&p.EndDate, &p.CreatorID, &p.CreatedAt, &p.UpdatedAt,
		); err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	return projects, nil
}

func (r *pgProjectRepository) Update(ctx context.Context, project *Project) error {
	query := `
		UPDATE projects SET name = $2, description = $3, status = $4, start_date = $5, end_date = $6, updated_at = NOW()
		WHERE id = $1
	`
	_, err := r.pool.Exec(ctx, query,
		project.ID, project.Name, project.Description, project.Status,
		project.StartDate, project.EndDate,
	)
	return err
}

// UpdateWithMembers writes the project row and replaces its roster inside one
// transaction: either both land or neither does.
func (r *pgProjectRepository) UpdateWithMembers(ctx context.Context, project *Project, members []*ProjectMember) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	updateQuery := `
		UPDATE projects SET name = $2, description = $3, status = $4, start_date = $5, end_date = $6, updated_at = NOW()
		WHERE id = $1
	`
	if _, err := tx.Exec(ctx, updateQuery,
		project.ID, project.Name, project.Description, project.Status,
		project.StartDate, project.EndDate,
	); err != nil {
		return err
	}

	if _, err := tx.Exec(ctx, `DELETE FROM project_members WHERE project_id = $1`, project.ID); err != nil {
		return err
	}

	insertQuery := `
		INSERT INTO project_members (project_id, user_id, role)
		VALUES ($1, $2, $3)
		ON CONFLICT (project_id, user_id) DO UPDATE SET role = $3
	`
	for _, m := range members {
		if _, err := tx.Exec(ctx, insertQuery, project.ID, m.UserID, m.Role); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func (r *pgProjectRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM projects WHERE id = $1`
	_, err := r.pool.Exec(ctx, query, id)
	return err
}

func (r *pgProjectRepository) AddMember(ctx context.Context, member *ProjectMember) error {
	query := `
		INSERT INTO project_members (project_id, user_id, role)
		VALUES ($1, $2, $3)
		ON CONFLICT (project_id, user_id) DO UPDATE SET role = $3
		RETURNING id, joined_at
	`
	return r.pool.QueryRow(ctx, query, member.ProjectID, member.UserID, member.Role).
		Scan(&member.ID, &member.JoinedAt)
}

func (r *pgProjectRepository) FindMembers(ctx context.Context, projectID string) ([]*ProjectMember, error) {
	query := `
		SELECT pm.id, pm.project_id, pm.user_id, pm.role, pm.joined_at,
		       u.id, u.email, u.name, u.role
		FROM project_members pm
		JOIN users u ON pm.user_id = u.id
		WHERE pm.project_id = $1
		ORDER BY pm.joined_at
	`
	rows, err := r.pool.Query(ctx, query, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []*ProjectMember
	for rows.Next() {
		m := &ProjectMember{User: &User{}}
		if err := rows.Scan(
			&m.ID, &m.ProjectID, &m.UserID, &m.Role, &m.JoinedAt,
			&m.User.ID, &m.User.Email, &m.User.Name, &m.User.Role,
		); err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	return members, nil
}

func (r *pgProjectRepository) FindMember(ctx context.Context, projectID, userID string) (*ProjectMember, error) {
	query := `
		SELECT id, project_id, user_id, role, joined_at
		FROM project_members WHERE project_id = $1 AND user_id = $2
	`
	m := &ProjectMember{}
	err := r.pool.QueryRow(ctx, query, projectID, userID).Scan(
		&m.ID, &m.ProjectID, &m.UserID, &m.Role, &m.JoinedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return m, nil
}

func (r *pgProjectRepository) UpdateMemberRole(ctx context.Context, projectID, userID, role string) error {
	query := `UPDATE project_members SET role = $3 WHERE project_id = $1 AND user_id = $2`
	_, err := r.pool.Exec(ctx, query, projectID, userID, role)
	return err
}

func (r *pgProjectRepository) RemoveMember(ctx context.Context, projectID, userID string) error {
	query := `DELETE FROM project_members WHERE project_id = $1 AND user_id = $2`
	_, err := r.pool.Exec(ctx, query, projectID, userID)
	return err
}
