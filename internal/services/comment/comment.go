// Package services содержит бизнес-логику создания комментариев
// и уведомления владельцев продуктов.
package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/launchboard/launch-board/internal/lib/rabbitmq"
	"github.com/launchboard/launch-board/internal/lib/sl"
	"github.com/launchboard/launch-board/internal/models"
)

// CommentRepository определяет методы для работы с комментариями в хранилище.
type CommentRepository interface {
	// CreateComment вставляет комментарий и возвращает его с ID и датой.
	CreateComment(ctx context.Context, comment models.Comment) (*models.Comment, error)
	// ListCommentsByProduct возвращает комментарии продукта.
	ListCommentsByProduct(ctx context.Context, productID int, limit, offset int) ([]*models.Comment, error)
	// GetProductOwner возвращает владельца продукта и название продукта.
	GetProductOwner(ctx context.Context, productID int) (*models.User, string, error)
}

// Publisher описывает публикацию уведомлений в брокер.
type Publisher interface {
	Publish(exchange, routingKey string, message any) error
}

// CommentService реализует создание комментариев. Уведомление владельцу
// уходит через очередь; его сбой логируется и никогда не виден автору
// комментария — единственная видимая пользователю операция, которая может
// упасть, это сама запись комментария.
type CommentService struct {
	repo      CommentRepository
	publisher Publisher
	log       *slog.Logger
}

// NewCommentService создает новый экземпляр CommentService.
func NewCommentService(repo CommentRepository, publisher Publisher, log *slog.Logger) *CommentService {
	return &CommentService{
		repo:      repo,
		publisher: publisher,
		log:       log,
	}
}

// Create вставляет комментарий и, если автор не владелец продукта,
// публикует уведомление владельцу.
func (s *CommentService) Create(ctx context.Context, authorUID, authorUsername string, req models.DummyComment) (*models.Comment, error) {
	comment := models.Comment{
		Content:   req.Content,
		AuthorUID: authorUID,
		ProductID: req.ProductID,
		WeekID:    req.WeekID,
	}
	created, err := s.repo.CreateComment(ctx, comment)
	if err != nil {
		return nil, fmt.Errorf("failed to create comment: %w", err)
	}

	owner, productName, err := s.repo.GetProductOwner(ctx, req.ProductID)
	if err != nil {
		s.log.Error("failed to resolve product owner for notification", sl.Err(err))
		return created, nil
	}
	if owner.UID == authorUID {
		return created, nil
	}

	info := models.CommentInfo{
		Email:          owner.Email,
		OwnerUsername:  owner.Username,
		ProductName:    productName,
		AuthorUsername: authorUsername,
		Content:        created.Content,
	}
	if err := s.publisher.Publish(rabbitmq.Exchange, rabbitmq.RoutingKeyComment, info); err != nil {
		s.log.Error("failed to publish comment notification", sl.Err(err))
	}
	return created, nil
}

// List возвращает комментарии продукта с пагинацией.
func (s *CommentService) List(ctx context.Context, productID int, limit, offset int) ([]*models.Comment, error) {
	return s.repo.ListCommentsByProduct(ctx, productID, limit, offset)
}
