package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"blogapi/internal/model"
	"blogapi/internal/repository"
)

// BlogPostgres is a PostgreSQL implementation of repository.BlogRepository.
// It uses database/sql with parameterized queries and contains no business logic.
// Tags are stored as a JSONB array; the seq column preserves insertion order.
type BlogPostgres struct {
	db *sql.DB
}

// NewBlogPostgres creates a new BlogPostgres repository.
func NewBlogPostgres(db *sql.DB) *BlogPostgres {
	return &BlogPostgres{db: db}
}

var _ repository.BlogRepository = (*BlogPostgres)(nil)

const selectColumns = `id, title, content, author, tags, created_at, updated_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanPost(s scanner) (*model.BlogPost, error) {
	var (
		p       model.BlogPost
		tags    []byte
		updated sql.NullTime
	)
	if err := s.Scan(&p.ID, &p.Title, &p.Content, &p.Author, &tags, &p.CreatedAt, &updated); err != nil {
		return nil, err
	}
	p.Tags = []string{}
	if len(tags) > 0 {
		if err := json.Unmarshal(tags, &p.Tags); err != nil {
			return nil, fmt.Errorf("decode tags: %w", err)
		}
	}
	p.CreatedAt = p.CreatedAt.UTC()
	if updated.Valid {
		u := updated.Time.UTC()
		p.UpdatedAt = &u
	}
	return &p, nil
}

func encodeTags(tags []string) (string, error) {
	if tags == nil {
		tags = []string{}
	}
	b, err := json.Marshal(tags)
	if err != nil {
		return "", fmt.Errorf("encode tags: %w", err)
	}
	return string(b), nil
}

func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// Insert stores a new row under a freshly generated UUID and returns the stored record.
func (r *BlogPostgres) Insert(ctx context.Context, post *model.BlogPost) (*model.BlogPost, error) {
	const q = `
		INSERT INTO blog_posts (id, title, content, author, tags, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5::jsonb, $6, $7)
		RETURNING ` + selectColumns
	tags, err := encodeTags(post.Tags)
	if err != nil {
		return nil, err
	}
	row := r.db.QueryRowContext(ctx, q,
		uuid.NewString(),
		post.Title,
		post.Content,
		post.Author,
		tags,
		post.CreatedAt,
		post.UpdatedAt,
	)
	return scanPost(row)
}

// FindByID fetches a single post by its UUID.
func (r *BlogPostgres) FindByID(ctx context.Context, id string) (*model.BlogPost, error) {
	if !validID(id) {
		return nil, repository.ErrInvalidID
	}
	const q = `SELECT ` + selectColumns + ` FROM blog_posts WHERE id = $1`
	p, err := scanPost(r.db.QueryRowContext(ctx, q, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return p, nil
}

// List returns up to limit posts ordered by insertion.
func (r *BlogPostgres) List(ctx context.Context, limit int) ([]model.BlogPost, error) {
	const q = `SELECT ` + selectColumns + ` FROM blog_posts ORDER BY seq ASC LIMIT $1`
	rows, err := r.db.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.BlogPost, 0)
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// Update overwrites present fields via COALESCE, always sets updated_at and
// returns the row as written.
func (r *BlogPostgres) Update(ctx context.Context, id string, in model.UpdateBlogInput, updatedAt time.Time) (repository.UpdateResult, error) {
	if !validID(id) {
		return repository.UpdateResult{}, repository.ErrInvalidID
	}
	const q = `
		UPDATE blog_posts SET
			title      = COALESCE($2, title),
			content    = COALESCE($3, content),
			author     = COALESCE($4, author),
			tags       = COALESCE($5::jsonb, tags),
			updated_at = $6
		WHERE id = $1
		RETURNING ` + selectColumns
	var tags any
	if in.Tags != nil {
		enc, err := encodeTags(*in.Tags)
		if err != nil {
			return repository.UpdateResult{}, err
		}
		tags = enc
	}
	post, err := scanPost(r.db.QueryRowContext(ctx, q, id, in.Title, in.Content, in.Author, tags, updatedAt))
	if errors.Is(err, sql.ErrNoRows) {
		return repository.UpdateResult{}, nil
	}
	if err != nil {
		return repository.UpdateResult{}, err
	}
	return repository.UpdateResult{MatchedCount: 1, ModifiedCount: 1, Post: post}, nil
}

// Delete removes a post by id and reports the number of deleted rows.
func (r *BlogPostgres) Delete(ctx context.Context, id string) (int64, error) {
	if !validID(id) {
		return 0, repository.ErrInvalidID
	}
	const q = `DELETE FROM blog_posts WHERE id = $1`
	res, err := r.db.ExecContext(ctx, q, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// Ping checks database connectivity.
func (r *BlogPostgres) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}
