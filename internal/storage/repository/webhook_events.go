package repository

import (
	"context"
	"errors"
	"fmt"
)

// RecordWebhookEvent фиксирует доставку вебхука в журнале событий и сообщает,
// нужно ли её обрабатывать. Новая запись и запись, чья прошлая обработка
// завершилась ошибкой, забираются в работу (повторная попытка сбрасывает
// отметку об ошибке). Событие, которое уже обрабатывается или обработано
// успешно, считается дубликатом: провайдер повторяет только доставки,
// получившие не-2xx ответ.
func (s *Storage) RecordWebhookEvent(ctx context.Context, provider, eventID, eventType string, payload []byte) (int, bool, error) {
	const op = "storage.RecordWebhookEvent"
	select {
	case <-ctx.Done():
		return 0, false, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO webhook_events (provider, event_id, event_type, payload)
			  VALUES ($1, $2, $3, $4)
			  ON CONFLICT (provider, event_id) DO UPDATE
			  SET processed_at = NULL, processing_error = ''
			  WHERE webhook_events.processing_error <> ''
			  RETURNING id`
	var newID int
	err := s.DB.QueryRowContext(ctx, query, provider, eventID, eventType, payload).Scan(&newID)
	if err != nil {
		if errors.Is(mapError(err), ErrNotFound) {
			// Событие уже в журнале и не требует повторной обработки.
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("%s: %w", op, err)
	}
	return newID, true, nil
}

// MarkWebhookEventProcessed отмечает событие обработанным, сохраняя текст
// ошибки обработки, если она была.
func (s *Storage) MarkWebhookEventProcessed(ctx context.Context, id int, processingError string) error {
	const op = "storage.MarkWebhookEventProcessed"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE webhook_events
			  SET processed_at = NOW(), processing_error = $1
			  WHERE id = $2`
	_, err := s.DB.ExecContext(ctx, query, processingError, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
