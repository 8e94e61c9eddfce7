package repository

import (
	"context"
	"fmt"

	"github.com/launchboard/launch-board/internal/models"
)

// CreateComment вставляет новый комментарий и возвращает его вместе с
// назначенными базой ID и датой создания.
func (s *Storage) CreateComment(ctx context.Context, comment models.Comment) (*models.Comment, error) {
	const op = "storage.CreateComment"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO comments (content, author_uid, product_id, week_id)
			  VALUES ($1, $2, $3, $4)
			  RETURNING id, created_at`
	row := s.DB.QueryRowContext(ctx, query,
		comment.Content, comment.AuthorUID, comment.ProductID, comment.WeekID)
	if err := row.Scan(&comment.ID, &comment.CreatedAt); err != nil {
		return nil, fmt.Errorf("%s: %w", op, mapError(err))
	}
	return &comment, nil
}

// ListCommentsByProduct возвращает комментарии продукта в порядке создания.
func (s *Storage) ListCommentsByProduct(ctx context.Context, productID int, limit, offset int) ([]*models.Comment, error) {
	const op = "storage.ListCommentsByProduct"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, content, author_uid, product_id, week_id, created_at
			  FROM comments
			  WHERE product_id = $1
			  ORDER BY created_at
			  LIMIT $2 OFFSET $3`
	rows, err := s.DB.QueryContext(ctx, query, productID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Comment
	for rows.Next() {
		var item models.Comment
		if err := rows.Scan(&item.ID, &item.Content, &item.AuthorUID,
			&item.ProductID, &item.WeekID, &item.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &item)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}
