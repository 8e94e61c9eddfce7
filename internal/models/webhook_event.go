package models

import "time"

// WebhookEvent запись журнала обработанных вебхуков провайдера.
// Пара (provider, event_id) уникальна: повторная доставка одного события
// фиксируется журналом и не обрабатывается второй раз.
type WebhookEvent struct {
	ID              int        `json:"id"`
	Provider        string     `json:"provider"`
	EventID         string     `json:"event_id"`
	EventType       string     `json:"event_type"`
	Payload         []byte     `json:"payload"`
	ProcessedAt     *time.Time `json:"processed_at,omitempty"`
	ProcessingError string     `json:"processing_error,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}
