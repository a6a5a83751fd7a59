package database

import (
	"context"
	"fmt"
	"time"

	"lendit/internal/models"
)

func (db *DB) CreateComment(ctx context.Context, comment *models.Comment) error {
	now := time.Now().UTC()
	result, err := db.ExecContext(ctx,
		`INSERT INTO comments (item_id, author_id, text, created_at) VALUES (?, ?, ?, ?)`,
		comment.ItemID, comment.AuthorID, comment.Text, now)
	if err != nil {
		return fmt.Errorf("insert comment: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("last insert id: %w", err)
	}
	comment.ID = id
	comment.CreatedAt = now
	return nil
}

func (db *DB) ListCommentsByItem(ctx context.Context, itemID int64) ([]models.Comment, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT c.id, c.item_id, c.author_id, u.name, c.text, c.created_at
         FROM comments c
         JOIN users u ON u.id = c.author_id
         WHERE c.item_id = ?
         ORDER BY c.created_at DESC`, itemID)
	if err != nil {
		return nil, fmt.Errorf("query comments: %w", err)
	}
	defer rows.Close()

	var comments []models.Comment
	for rows.Next() {
		var c models.Comment
		if err := rows.Scan(&c.ID, &c.ItemID, &c.AuthorID, &c.AuthorName, &c.Text, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan comment: %w", err)
		}
		comments = append(comments, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate comments: %w", err)
	}
	return comments, nil
}
