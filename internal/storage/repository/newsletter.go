package repository

import (
	"context"
	"fmt"

	"github.com/launchboard/launch-board/internal/models"
)

// UpsertSubscriber сохраняет подписчика рассылки. Повторная подписка того же
// адреса обновляет статус и источник вместо создания дубликата.
func (s *Storage) UpsertSubscriber(ctx context.Context, subscriber models.NewsletterSubscriber) (int, error) {
	const op = "storage.UpsertSubscriber"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO newsletter_subscribers (email, status, source)
			  VALUES ($1, $2, $3)
			  ON CONFLICT (email)
			  DO UPDATE SET status = EXCLUDED.status, source = EXCLUDED.source
			  RETURNING id`
	var newID int
	err := s.DB.QueryRowContext(ctx, query,
		subscriber.Email, subscriber.Status, subscriber.Source).Scan(&newID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, mapError(err))
	}
	return newID, nil
}
