package okr

import (
	"context"
)

const commentColumns = "id, objective_id, key_result_id, author_id, parent_comment_id, body, created_at"

func (s *Store) ListComments(ctx context.Context, objectiveID, keyResultID string) ([]Comment, error) {
	query := "SELECT " + commentColumns + " FROM comments WHERE "
	var arg string
	if keyResultID != "" {
		query += "key_result_id = $1"
		arg = keyResultID
	} else {
		query += "objective_id = $1"
		arg = objectiveID
	}
	query += " ORDER BY created_at"

	rows, err := s.DB.Query(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var comments []Comment
	for rows.Next() {
		var c Comment
		if err := rows.Scan(&c.ID, &c.ObjectiveID, &c.KeyResultID, &c.AuthorID, &c.ParentCommentID, &c.Body, &c.CreatedAt); err != nil {
			return nil, err
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}

func (s *Store) CreateComment(ctx context.Context, objectiveID, keyResultID *string, authorID string, parentCommentID *string, body string) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO comments (objective_id, key_result_id, author_id, parent_comment_id, body)
    VALUES ($1,$2,$3,$4,$5)
    RETURNING id
  `, objectiveID, keyResultID, authorID, parentCommentID, body).Scan(&id)
	return id, err
}

// CommentParents returns the parent map for the thread the given comment
// belongs to, for the reply-depth walk.
func (s *Store) CommentParents(ctx context.Context, objectiveID, keyResultID *string) (map[string]string, error) {
	query := "SELECT id, parent_comment_id FROM comments WHERE parent_comment_id IS NOT NULL AND "
	var arg any
	if keyResultID != nil {
		query += "key_result_id = $1"
		arg = *keyResultID
	} else if objectiveID != nil {
		query += "objective_id = $1"
		arg = *objectiveID
	} else {
		return map[string]string{}, nil
	}

	rows, err := s.DB.Query(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	parents := map[string]string{}
	for rows.Next() {
		var id, parent string
		if err := rows.Scan(&id, &parent); err != nil {
			return nil, err
		}
		parents[id] = parent
	}
	return parents, rows.Err()
}
