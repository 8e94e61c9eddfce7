// Package services содержит бизнес-логику подписки на еженедельную рассылку.
package services

import (
	"context"
	"fmt"

	"github.com/launchboard/launch-board/internal/models"
)

// SubscriberRepository определяет методы хранилища подписчиков.
type SubscriberRepository interface {
	// UpsertSubscriber сохраняет подписчика, обновляя статус при повторной подписке.
	UpsertSubscriber(ctx context.Context, subscriber models.NewsletterSubscriber) (int, error)
}

// NewsletterService реализует подписку на рассылку.
type NewsletterService struct {
	repo SubscriberRepository
}

// New создает новый экземпляр NewsletterService.
func New(repo SubscriberRepository) *NewsletterService {
	return &NewsletterService{repo: repo}
}

// Subscribe подписывает адрес на рассылку и возвращает ID записи.
func (s *NewsletterService) Subscribe(ctx context.Context, req models.DummySubscriber) (int, error) {
	subscriber := models.NewsletterSubscriber{
		Email:  req.Email,
		Status: "subscribed",
		Source: req.Source,
	}
	id, err := s.repo.UpsertSubscriber(ctx, subscriber)
	if err != nil {
		return 0, fmt.Errorf("failed to upsert subscriber: %w", err)
	}
	return id, nil
}
