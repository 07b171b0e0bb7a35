package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ============================================
// PostgreSQL Comment Repository
// ============================================

type pgCommentRepository struct {
	pool *pgxpool.Pool
}

func (r *pgCommentRepository) Create(ctx context.Context, comment *Comment) error {
	query := `
		INSERT INTO comments (task_id, author_id, content)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at
	`
	return r.pool.QueryRow(ctx, query, comment.TaskID, comment.AuthorID, comment.Content).
		Scan(&comment.ID, &comment.CreatedAt, &comment.UpdatedAt)
}

func (r *pgCommentRepository) FindByID(ctx context.Context, id string) (*Comment, error) {
	query := `
		SELECT c.id, c.task_id, c.author_id, c.content, c.created_at, c.updated_at,
		       u.id, u.name, u.email, u.role
		FROM comments c
		JOIN users u ON c.author_id = u.id
		WHERE c.id = $1
	`
	c := &Comment{Author: &User{}}
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&c.ID, &c.TaskID, &c.AuthorID, &c.Content, &c.CreatedAt, &c.UpdatedAt,
		&c.Author.ID, &c.Author.Name, &c.Author.Email, &c.Author.Role,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (r *pgCommentRepository) FindByTaskID(ctx context.Context, taskID string) ([]*Comment, error) {
	query := `
		SELECT c.id, c.task_id, c.author_id, c.content, c.created_at, c.updated_at,
		       u.id, u.name, u.email, u.role
		FROM comments c
		JOIN users u ON c.author_id = u.id
		WHERE c.task_id = $1
		ORDER BY c.created_at
	`
	rows, err := r.pool.Query(ctx, query, taskID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var comments []*Comment
	for rows.Next() {
		c := &Comment{Author: &User{}}
		if err := rows.Scan(
			&c.ID, &c.TaskID, &c.AuthorID, &c.Content, &c.CreatedAt, &c.UpdatedAt,
			&c.Author.ID, &c.Author.Name, &c.Author.Email, &c.Author.Role,
		); err != nil {
			return nil, err
		}
		comments = append(comments, c)
	}
	return comments, nil
}

func (r *pgCommentRepository) Update(ctx context.Context, comment *Comment) error {
	query := `UPDATE comments SET content = $2, updated_at = NOW() WHERE id = $1`
	_, err := r.pool.Exec(ctx, query, comment.ID, comment.Content)
	return err
}

func (r *pgCommentRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM comments WHERE id = $1`
	_, err := r.pool.Exec(ctx, query, id)
	return err
}
