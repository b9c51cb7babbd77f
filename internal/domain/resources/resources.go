package resources

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/microcosm-cc/bluemonday"
)

const (
	TypeArticle  = "article"
	TypeVideo    = "video"
	TypeTemplate = "template"
	TypeGuide    = "guide"
)

var Types = []string{TypeArticle, TypeVideo, TypeTemplate, TypeGuide}

var ErrNotFound = errors.New("not found")

// contentPolicy allows basic formatting in resource content while stripping
// scriptable markup.
var contentPolicy = bluemonday.UGCPolicy()

type Resource struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Content     string    `json:"content"`
	Type        string    `json:"type"`
	AuthorID    *string   `json:"authorId"`
	Tags        []string  `json:"tags"`
	IsPublic    bool      `json:"isPublic"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type Details struct {
	Title       string
	Description string
	Content     string
	Type        string
	AuthorID    *string
	Tags        []string
	IsPublic    bool
}

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

const resourceColumns = "id, title, description, content, type, author_id, tags, is_public, created_at, updated_at"

func scanResource(row pgx.Row) (Resource, error) {
	var r Resource
	err := row.Scan(&r.ID, &r.Title, &r.Description, &r.Content, &r.Type, &r.AuthorID, &r.Tags, &r.IsPublic, &r.CreatedAt, &r.UpdatedAt)
	return r, err
}

// List returns public resources plus, when authorID is set, that author's
// private ones.
func (s *Store) List(ctx context.Context, authorID string) ([]Resource, error) {
	query := "SELECT " + resourceColumns + " FROM resources WHERE is_public"
	args := []any{}
	if authorID != "" {
		query += " OR author_id = $1"
		args = append(args, authorID)
	}
	query += " ORDER BY created_at DESC"

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var resources []Resource
	for rows.Next() {
		r, err := scanResource(rows)
		if err != nil {
			return nil, err
		}
		resources = append(resources, r)
	}
	return resources, rows.Err()
}

func (s *Store) Get(ctx context.Context, resourceID string) (Resource, error) {
	r, err := scanResource(s.DB.QueryRow(ctx, "SELECT "+resourceColumns+" FROM resources WHERE id = $1", resourceID))
	if errors.Is(err, pgx.ErrNoRows) {
		return Resource{}, ErrNotFound
	}
	if err != nil {
		return Resource{}, err
	}
	return r, nil
}

func (s *Store) Create(ctx context.Context, details Details) (string, error) {
	details.Content = sanitize(details.Content)
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO resources (title, description, content, type, author_id, tags, is_public)
    VALUES ($1,$2,$3,$4,$5,$6,$7)
    RETURNING id
  `, details.Title, details.Description, details.Content, details.Type, details.AuthorID, details.Tags, details.IsPublic).Scan(&id)
	return id, err
}

func (s *Store) Update(ctx context.Context, resourceID string, details Details) error {
	details.Content = sanitize(details.Content)
	tag, err := s.DB.Exec(ctx, `
    UPDATE resources
    SET title = $1, description = $2, content = $3, type = $4, tags = $5, is_public = $6, updated_at = now()
    WHERE id = $7
  `, details.Title, details.Description, details.Content, details.Type, details.Tags, details.IsPublic, resourceID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, resourceID string) error {
	tag, err := s.DB.Exec(ctx, "DELETE FROM resources WHERE id = $1", resourceID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func ValidType(resourceType string) bool {
	for _, t := range Types {
		if t == resourceType {
			return true
		}
	}
	return false
}

func sanitize(content string) string {
	return strings.TrimSpace(contentPolicy.Sanitize(content))
}
