package models

import "time"

// NewsletterSubscriber представляет подписчика еженедельной рассылки.
type NewsletterSubscriber struct {
	ID        int       `json:"id"`
	Email     string    `json:"email"`
	Status    string    `json:"status"` // subscribed или unsubscribed
	Source    string    `json:"source"` // Откуда пришла подписка: landing, footer и т.д.
	CreatedAt time.Time `json:"created_at"`
}

// DummySubscriber используется для приёма данных из JSON-запроса подписки на рассылку.
type DummySubscriber struct {
	Email  string `json:"email" validate:"required,email"`
	Source string `json:"source" validate:"omitempty"`
}
